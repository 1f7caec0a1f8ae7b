package ui

import (
	"context"
	"io"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type boomMsg struct{}

// mockModel quits on its first message, or panics on it
type mockModel struct {
	panicOnUpdate bool
	panicOnView   bool
	updateCount   int32
	viewCount     int32
}

func (m *mockModel) Init() tea.Cmd {
	return func() tea.Msg { return boomMsg{} }
}

func (m *mockModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	atomic.AddInt32(&m.updateCount, 1)
	if _, ok := msg.(boomMsg); ok {
		if m.panicOnUpdate {
			panic("update panic test")
		}
		return m, tea.Quit
	}
	return m, nil
}

func (m *mockModel) View() string {
	if atomic.AddInt32(&m.viewCount, 1) > 3 && m.panicOnView {
		panic("view panic test")
	}
	return "Test UI"
}

func headless() []tea.ProgramOption {
	return []tea.ProgramOption{
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
		tea.WithoutSignalHandler(),
	}
}

func TestRecoveryHandlerNormalExit(t *testing.T) {
	handler := NewRecoveryHandler(zap.NewNop(), func() (tea.Model, []tea.ProgramOption) {
		return &mockModel{}, headless()
	})

	require.NoError(t, handler.RunWithRecovery(context.Background()))
	assert.Equal(t, 0, handler.GetRestartCount())
}

func TestRecoveryHandlerRestartsAfterPanic(t *testing.T) {
	var runs int32
	handler := NewRecoveryHandler(zap.NewNop(), func() (tea.Model, []tea.ProgramOption) {
		first := atomic.AddInt32(&runs, 1) == 1
		return &mockModel{panicOnUpdate: first}, headless()
	})
	handler.restartDelay = 10 * time.Millisecond

	require.NoError(t, handler.RunWithRecovery(context.Background()))
	assert.Equal(t, 1, handler.GetRestartCount())
	assert.Equal(t, int32(2), atomic.LoadInt32(&runs))
}

func TestRecoveryHandlerGivesUp(t *testing.T) {
	handler := NewRecoveryHandler(zap.NewNop(), func() (tea.Model, []tea.ProgramOption) {
		return &mockModel{panicOnUpdate: true}, headless()
	})
	handler.restartDelay = time.Millisecond
	handler.maxRestarts = 2

	err := handler.RunWithRecovery(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too many times")
	assert.Equal(t, 3, handler.GetRestartCount())
}

func TestRecoveryHandlerStopsOnContext(t *testing.T) {
	handler := NewRecoveryHandler(zap.NewNop(), func() (tea.Model, []tea.ProgramOption) {
		return &mockModel{panicOnUpdate: true}, headless()
	})
	handler.restartDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- handler.RunWithRecovery(ctx) }()

	require.Eventually(t, func() bool { return handler.GetRestartCount() == 1 }, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("RunWithRecovery ignored cancellation")
	}
}

func TestSafeUIWrapper(t *testing.T) {
	model := &mockModel{panicOnView: true, panicOnUpdate: true}
	wrapper := NewSafeUIWrapper(model, zap.NewNop())

	assert.NotNil(t, wrapper.Init())

	next, cmd := wrapper.Update(boomMsg{})
	assert.Same(t, wrapper, next)
	assert.Nil(t, cmd)

	assert.Equal(t, "Test UI", wrapper.View())

	atomic.StoreInt32(&model.viewCount, 10)
	assert.Equal(t, "UI Error: View crashed. Press Ctrl+C to exit.", wrapper.View())
}
