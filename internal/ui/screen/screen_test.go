package screen

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andres-erbsen/clock"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rovshanmuradov/token-pulse/internal/domain"
	"github.com/rovshanmuradov/token-pulse/internal/engine"
	"github.com/rovshanmuradov/token-pulse/internal/export"
	"github.com/rovshanmuradov/token-pulse/internal/logger"
	"github.com/rovshanmuradov/token-pulse/internal/source"
	"github.com/rovshanmuradov/token-pulse/internal/ui"
	"github.com/rovshanmuradov/token-pulse/internal/ui/router"
	"github.com/rovshanmuradov/token-pulse/internal/ui/state"
	"github.com/rovshanmuradov/token-pulse/internal/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

var names = []string{"PEPE1", "DOGE2", "BONK3"}

func newEngine(t *testing.T, mock *clock.Mock) *engine.Engine {
	t.Helper()
	src := source.Func(func(_ context.Context, c domain.Category) ([]domain.Token, error) {
		out := make([]domain.Token, len(names))
		for i, name := range names {
			out[i] = domain.Token{
				ID:             fmt.Sprintf("%s-%d", c, i),
				Name:           name,
				Symbol:         name[:4],
				Age:            float64(i + 1),
				Price:          0.01,
				PriceChange24h: float64(10 - i),
				MarketCap:      float64(1000 * (3 - i)),
			}
		}
		return out, nil
	})
	eng, err := engine.New(engine.Options{
		Source: src,
		Logger: zaptest.NewLogger(t),
		Clock:  mock,
		Rand:   rand.New(rand.NewPCG(1, 2)),
	})
	require.NoError(t, err)
	t.Cleanup(eng.Stop)
	return eng
}

func newPulse(t *testing.T, seed bool) (*PulseScreen, *engine.Engine, *clock.Mock) {
	t.Helper()
	mock := clock.NewMock()
	eng := newEngine(t, mock)
	if seed {
		require.NoError(t, eng.Seed(context.Background()))
	}
	s := NewPulseScreen(eng, state.NewViewCache(zaptest.NewLogger(t), view.DefaultSpec()), nil, nil)
	s.SetSize(160, 30)
	return s, eng, mock
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func ids(s *PulseScreen) []string {
	out := make([]string, len(s.rows))
	for i, r := range s.rows {
		out[i] = r.Token.ID
	}
	return out
}

func TestPulseShowsLoadingBeforeSeed(t *testing.T) {
	s, eng, _ := newPulse(t, false)

	v := s.View()
	assert.Contains(t, v, "Token Discovery - Pulse")
	assert.Contains(t, v, "Loading...")

	require.NoError(t, eng.Seed(context.Background()))
	s.Update(ui.TokensLoadedMsg{})
	v = s.View()
	assert.NotContains(t, v, "Loading...")
	assert.Contains(t, v, "PEPE1")
	assert.Contains(t, v, "New Pairs (3)")
}

func TestPulseLoadFailure(t *testing.T) {
	s, _, _ := newPulse(t, false)

	s.Update(ui.LoadFailedMsg{Err: errors.New("source down")})
	assert.Contains(t, s.View(), "source down")
}

func TestPulseTabSwitching(t *testing.T) {
	s, eng, _ := newPulse(t, true)
	assert.Equal(t, []string{"new-pairs-0", "new-pairs-1", "new-pairs-2"}, ids(s))

	s.Update(runes("3"))
	assert.Equal(t, domain.CategoryMigrated, eng.Active())
	assert.Equal(t, "migrated-0", s.rows[0].Token.ID)

	s.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, domain.CategoryNewPairs, eng.Active())

	s.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, domain.CategoryMigrated, eng.Active())
}

func TestPulseSortKeys(t *testing.T) {
	s, eng, _ := newPulse(t, true)

	// age asc, then market cap asc reverses the fixture order
	s.Update(runes("s"))
	spec := s.cache.Get(eng.Active()).Spec
	assert.Equal(t, domain.FieldMarketCap, spec.SortField)
	assert.Equal(t, view.Asc, spec.Direction)
	assert.Equal(t, []string{"new-pairs-2", "new-pairs-1", "new-pairs-0"}, ids(s))
	assert.Contains(t, s.View(), "Market Cap ▲")

	s.Update(runes("o"))
	assert.Equal(t, view.Desc, s.cache.Get(eng.Active()).Spec.Direction)
	assert.Equal(t, []string{"new-pairs-0", "new-pairs-1", "new-pairs-2"}, ids(s))

	s.Update(runes("S"))
	assert.Equal(t, domain.FieldAge, s.cache.Get(eng.Active()).Spec.SortField)

	// sort survives a tab round trip, other tabs keep the default
	s.Update(runes("2"))
	assert.Equal(t, domain.FieldAge, s.cache.Get(domain.CategoryFinalStretch).Spec.SortField)
	s.Update(runes("1"))
	assert.Equal(t, domain.FieldAge, s.cache.Get(domain.CategoryNewPairs).Spec.SortField)
}

func TestPulseSelectionFollowsToken(t *testing.T) {
	s, eng, _ := newPulse(t, true)

	s.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, "new-pairs-1", s.cache.Get(eng.Active()).Selected)

	s.Update(runes("s"))
	row, ok := s.selected()
	require.True(t, ok)
	assert.Equal(t, "new-pairs-1", row.Token.ID)
}

func TestPulseFilter(t *testing.T) {
	s, eng, _ := newPulse(t, true)

	s.Update(runes("/"))
	require.True(t, s.filtering)
	s.Update(runes("do"))
	assert.Equal(t, []string{"new-pairs-1"}, ids(s))

	// typing does not trigger bindings while filtering
	assert.Equal(t, domain.CategoryNewPairs, eng.Active())

	s.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, s.filtering)
	assert.Contains(t, s.View(), "filter: do")

	// the filter applies to every tab
	s.Update(runes("2"))
	assert.Equal(t, []string{"final-stretch-1"}, ids(s))

	s.Update(runes("/"))
	s.Update(runes("x"))
	assert.Empty(t, s.rows)
	assert.Contains(t, s.View(), `No tokens match "dox"`)
	s.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, []string{"final-stretch-1"}, ids(s))
}

func TestPulseHighlightsMutatedRow(t *testing.T) {
	s, eng, mock := newPulse(t, true)

	res, err := eng.Tick(context.Background())
	require.NoError(t, err)
	require.True(t, res.Applied)

	s.Update(ui.TokenMutatedMsg{Category: res.Category, ID: res.Mutation.After.ID})
	var found bool
	for _, r := range s.rows {
		if r.Token.ID == res.Mutation.After.ID {
			found = r.Highlighted
		}
	}
	assert.True(t, found)

	mock.Add(eng.HighlightWindow())
	_, cmd := s.Update(refreshMsg{})
	assert.NotNil(t, cmd)
	for _, r := range s.rows {
		assert.False(t, r.Highlighted, r.Token.ID)
	}
}

func TestPulseStatusLine(t *testing.T) {
	mock := clock.NewMock()
	eng := newEngine(t, mock)
	buf := logger.NewLogBuffer(10)
	buf.Add(logger.LogEntry{Level: zapcore.WarnLevel, Message: "UI update statistics"})

	s := NewPulseScreen(eng, state.NewViewCache(zaptest.NewLogger(t), view.DefaultSpec()), nil, buf)
	assert.Contains(t, s.View(), "[WARN] UI update statistics")

	s.Update(ui.QuickBuyMsg{Intent: domain.QuickBuyIntent{AmountSOL: 0.25, Token: domain.Token{Symbol: "PEPE"}}})
	assert.Contains(t, s.View(), "Quick buy queued: 0.25 SOL of PEPE")
}

func TestPulseListensOnBus(t *testing.T) {
	mock := clock.NewMock()
	eng := newEngine(t, mock)
	bus := make(chan tea.Msg, 1)
	s := NewPulseScreen(eng, state.NewViewCache(zaptest.NewLogger(t), view.DefaultSpec()), bus, nil)

	_, cmd := s.Update(ui.CategoryChangedMsg{})
	require.NotNil(t, cmd)
	bus <- ui.TokensLoadedMsg{}
	assert.Equal(t, ui.TokensLoadedMsg{}, cmd())
}

func TestQuickBuyFlow(t *testing.T) {
	s, eng, _ := newPulse(t, true)
	s.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, cmd := s.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	push, ok := cmd().(router.PushMsg)
	require.True(t, ok)
	q, ok := push.Screen.(*QuickBuyScreen)
	require.True(t, ok)
	assert.Equal(t, "new-pairs-1", q.token.ID)

	q.Init()
	q.SetSize(100, 30)
	v := q.View()
	assert.Contains(t, v, "Quick Buy")
	assert.Contains(t, v, "DOGE2")
	assert.Contains(t, v, "$0.01000000")
	assert.Contains(t, v, "0.25")

	_, cmd = q.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, router.PopMsg{}, cmd())
	assert.Equal(t, domain.CategoryNewPairs, eng.Active())
}

type fakeBuyer struct {
	err    error
	amount float64
}

func (f *fakeBuyer) RequestQuickBuy(_ domain.Category, _ string, amount float64) (domain.QuickBuyIntent, error) {
	f.amount = amount
	return domain.QuickBuyIntent{}, f.err
}

func TestQuickBuyErrors(t *testing.T) {
	tok := domain.Token{ID: "migrated-1", Name: "DOGE2", Symbol: "DOGE", Price: 0.5}

	tests := []struct {
		name  string
		input string
		err   error
		want  string
	}{
		{"not a number", "abc", nil, "amount must be a number"},
		{"rejected amount", "-1", engine.ErrInvalidAmount, "amount must be greater than zero"},
		{"token gone", "1", &domain.NotFoundError{Category: domain.CategoryMigrated, ID: "migrated-1"}, "token is no longer listed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buyer := &fakeBuyer{err: tt.err}
			q := NewQuickBuyScreen(buyer, domain.CategoryMigrated, tok, 0)
			q.Init()
			q.amount.SetValue(tt.input)

			_, cmd := q.Update(tea.KeyMsg{Type: tea.KeyEnter})
			assert.Nil(t, cmd)
			assert.Contains(t, q.View(), tt.want)

			// typing clears the error
			q.Update(runes("5"))
			assert.NotContains(t, q.View(), tt.want)
		})
	}
}

func TestQuickBuyCustomAmount(t *testing.T) {
	buyer := &fakeBuyer{}
	q := NewQuickBuyScreen(buyer, domain.CategoryNewPairs, domain.Token{ID: "new-pairs-0"}, 0)
	q.Init()

	q.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	q.Update(runes("5"))
	_, cmd := q.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, 0.5, buyer.amount)

	// q types into the amount rather than quitting
	q.Update(runes("q"))
	assert.Equal(t, "0.5q", q.amount.Value())
}

func TestPulseExport(t *testing.T) {
	s, _, mock := newPulse(t, true)

	// without an exporter the key does nothing
	s.Update(runes("e"))
	assert.Empty(t, s.notice)

	dir := t.TempDir()
	s.SetExporter(export.NewExporter(zaptest.NewLogger(t), mock), dir, export.FormatCSV)
	s.Update(runes("s"))
	s.Update(runes("e"))

	require.Contains(t, s.notice, "Exported 3 tokens to ")
	files, err := filepath.Glob(filepath.Join(dir, "tokens_new-pairs_*.csv"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	content, err := os.ReadFile(files[0])
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 4)
	// same order as the screen: market cap ascending
	assert.True(t, strings.HasPrefix(lines[1], "new-pairs-2,"))
	assert.Contains(t, s.View(), "Exported 3 tokens")
}

func TestLogsScreen(t *testing.T) {
	buf := logger.NewLogBuffer(10)
	buf.Add(logger.LogEntry{Level: zapcore.WarnLevel, Logger: "feed", Message: "Tick skipped", Fields: map[string]interface{}{"category": "migrated", "attempt": 2}})
	buf.Add(logger.LogEntry{Level: zapcore.ErrorLevel, Logger: "source", Message: "Load failed"})

	s, _, _ := newPulse(t, true)
	s.SetLogSource(buf)
	_, cmd := s.Update(runes("L"))
	require.NotNil(t, cmd)
	push, ok := cmd().(router.PushMsg)
	require.True(t, ok)
	l, ok := push.Screen.(*LogsScreen)
	require.True(t, ok)
	l.SetSize(160, 20)

	assert.Len(t, l.entries, 2)
	v := l.View()
	assert.Contains(t, v, "Tick skipped")
	assert.Contains(t, v, "attempt=2 category=migrated")
	assert.Contains(t, v, "Level: all")
	assert.Equal(t, 1, l.table.GetSelectedRow(), "tail follows the newest entry")

	// warn+ keeps both, error+ keeps one
	l.Update(runes("v"))
	assert.Len(t, l.entries, 2)
	l.Update(runes("v"))
	assert.Len(t, l.entries, 1)
	assert.Equal(t, "Load failed", l.entries[0].Message)
	l.Update(runes("v"))

	// clear hides what is there, new entries show up on the next refresh
	l.Update(runes("c"))
	assert.Empty(t, l.entries)
	buf.Add(logger.LogEntry{Level: zapcore.WarnLevel, Message: "Late warning"})
	l.Update(refreshMsg{})
	require.Len(t, l.entries, 1)
	assert.Equal(t, "Late warning", l.entries[0].Message)

	l.Update(runes("t"))
	assert.NotContains(t, l.View(), "Tail")
}

func TestPulseLogsKeyWithoutSource(t *testing.T) {
	s, _, _ := newPulse(t, true)
	_, cmd := s.Update(runes("L"))
	assert.Nil(t, cmd)
}
