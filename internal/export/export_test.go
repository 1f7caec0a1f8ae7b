package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/andres-erbsen/clock"
	"github.com/rovshanmuradov/token-pulse/internal/domain"
	"github.com/rovshanmuradov/token-pulse/internal/engine"
	"github.com/rovshanmuradov/token-pulse/internal/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func generateTestRows() []engine.Row {
	return []engine.Row{
		{
			Token: domain.Token{
				ID: "new-pairs-0", Name: "Pepe One", Symbol: "PEPE", Platform: domain.PlatformPumpFun,
				Age: 3, MarketCap: 1500, Volume24h: 200, Holders: 12, Price: 0.5, PriceChange24h: 12.5,
			},
			Highlighted: true,
			Trend:       engine.TrendUp,
			HasPrevious: true,
			Previous:    10,
		},
		{
			Token: domain.Token{
				ID: "new-pairs-1", Name: "Doge Two", Symbol: "DOGE", Platform: domain.PlatformRaydium,
				Age: 8, MarketCap: 500, Volume24h: 100, Holders: 4, Price: 0.25, PriceChange24h: -4,
			},
		},
		{
			Token: domain.Token{
				ID: "new-pairs-2", Name: "Flat Three", Symbol: "FLAT", Price: 1,
			},
		},
	}
}

func testSnapshot(rows []engine.Row) Snapshot {
	spec := view.DefaultSpec()
	spec.Filter = "e"
	return Snapshot{
		ExportTime: time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC),
		Spec:       spec,
		Rows:       rows,
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat("json")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)
	assert.Equal(t, "application/json", f.ContentType())

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestWriteCSV(t *testing.T) {
	exporter := NewExporter(zaptest.NewLogger(t), nil)

	var buf bytes.Buffer
	require.NoError(t, exporter.Write(&buf, FormatCSV, testSnapshot(generateTestRows())))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, CSVHeaders(), records[0])

	first := records[1]
	assert.Equal(t, "new-pairs-0", first[0])
	assert.Equal(t, "pumpfun", first[4])
	assert.Equal(t, "1500", first[6])
	assert.Equal(t, "12.5", first[17])
	assert.Equal(t, "up", first[18])
	assert.Equal(t, "true", first[19])

	assert.Equal(t, "-4", records[2][17])
	assert.Equal(t, "flat", records[3][18])
}

func TestWriteJSON(t *testing.T) {
	exporter := NewExporter(zaptest.NewLogger(t), nil)

	var buf bytes.Buffer
	require.NoError(t, exporter.Write(&buf, FormatJSON, testSnapshot(generateTestRows())))

	var doc struct {
		Category  string  `json:"category"`
		Filter    string  `json:"filter"`
		SortField string  `json:"sort_field"`
		Summary   Summary `json:"summary"`
		Tokens    []struct {
			ID          string `json:"id"`
			Highlighted bool   `json:"highlighted"`
			Trend       string `json:"trend"`
		} `json:"tokens"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, string(domain.CategoryNewPairs), doc.Category)
	assert.Equal(t, "e", doc.Filter)
	assert.Equal(t, domain.FieldAge, doc.SortField)
	require.Len(t, doc.Tokens, 3)
	assert.True(t, doc.Tokens[0].Highlighted)
	assert.Equal(t, "up", doc.Tokens[0].Trend)
	assert.Equal(t, 3, doc.Summary.TokenCount)
}

func TestSummarize(t *testing.T) {
	s := Summarize(generateTestRows())

	assert.Equal(t, 3, s.TokenCount)
	assert.Equal(t, 1, s.Gainers)
	assert.Equal(t, 1, s.Losers)
	assert.Equal(t, 1, s.Highlighted)
	assert.InDelta(t, 2000, s.TotalMarketCap, 1e-9)
	assert.InDelta(t, 300, s.TotalVolume24h, 1e-9)
	assert.InDelta(t, 8.5/3, s.AvgChange24h, 1e-9)
	assert.Equal(t, "PEPE", s.TopGainer)
	assert.Equal(t, "DOGE", s.TopLoser)

	assert.Equal(t, Summary{}, Summarize(nil))
}

func TestExportToFile(t *testing.T) {
	mock := clock.NewMock()
	mock.Set(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	exporter := NewExporter(zaptest.NewLogger(t), mock)
	dir := filepath.Join(t.TempDir(), "nested", "exports")

	snap := Snapshot{Spec: view.DefaultSpec(), Rows: generateTestRows()}
	path, err := exporter.ExportToFile(snap, FormatCSV, dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "tokens_new-pairs_20260102_030405.csv"), path)
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "new-pairs-1,Doge Two,DOGE")
}

func TestExportUnsupportedFormat(t *testing.T) {
	exporter := NewExporter(zaptest.NewLogger(t), nil)
	err := exporter.Write(&bytes.Buffer{}, Format("xml"), testSnapshot(nil))
	assert.ErrorContains(t, err, "unsupported format")
}
