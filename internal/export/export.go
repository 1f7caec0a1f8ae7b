// Package export writes snapshots of a projected token table as CSV or JSON.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/andres-erbsen/clock"
	"github.com/rovshanmuradov/token-pulse/internal/domain"
	"github.com/rovshanmuradov/token-pulse/internal/engine"
	"github.com/rovshanmuradov/token-pulse/internal/view"
	"go.uber.org/zap"
)

// Format represents export file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat accepts "csv" or "json". An empty string means CSV.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// ContentType is the HTTP media type of the format
func (f Format) ContentType() string {
	if f == FormatJSON {
		return "application/json"
	}
	return "text/csv"
}

// Snapshot is one projected view of a tab
type Snapshot struct {
	ExportTime time.Time
	Spec       view.Spec
	Rows       []engine.Row
}

// Summary contains aggregate figures for an exported view
type Summary struct {
	TokenCount     int     `json:"token_count"`
	Gainers        int     `json:"gainers"`
	Losers         int     `json:"losers"`
	Highlighted    int     `json:"highlighted"`
	TotalMarketCap float64 `json:"total_market_cap"`
	TotalVolume24h float64 `json:"total_volume_24h"`
	AvgChange24h   float64 `json:"avg_change_24h"`
	TopGainer      string  `json:"top_gainer,omitempty"`
	TopLoser       string  `json:"top_loser,omitempty"`
}

type rowRecord struct {
	domain.Token
	Highlighted bool   `json:"highlighted"`
	Trend       string `json:"trend"`
}

type document struct {
	ExportTime time.Time       `json:"export_time"`
	Category   domain.Category `json:"category"`
	Filter     string          `json:"filter,omitempty"`
	SortField  string          `json:"sort_field"`
	Direction  view.Direction  `json:"direction"`
	Summary    Summary         `json:"summary"`
	Tokens     []rowRecord     `json:"tokens"`
}

var csvHeaders = []string{
	"id", "name", "symbol", "contract_address", "platform",
	"age_minutes", "market_cap", "liquidity", "volume_24h", "holders",
	"dev_percent", "snipers_percent", "pro_traders_percent",
	"transactions", "buys", "sells",
	"price", "price_change_24h", "trend", "highlighted",
}

// CSVHeaders returns the header row of a CSV export
func CSVHeaders() []string {
	out := make([]string, len(csvHeaders))
	copy(out, csvHeaders)
	return out
}

// Exporter handles snapshot export operations
type Exporter struct {
	logger *zap.Logger
	clock  clock.Clock
}

// NewExporter creates a new exporter. A nil clock uses the wall clock.
func NewExporter(logger *zap.Logger, clk clock.Clock) *Exporter {
	if clk == nil {
		clk = clock.New()
	}
	return &Exporter{
		logger: logger.Named("export"),
		clock:  clk,
	}
}

// Write encodes snap to w
func (e *Exporter) Write(w io.Writer, format Format, snap Snapshot) error {
	if snap.ExportTime.IsZero() {
		snap.ExportTime = e.clock.Now()
	}
	switch format {
	case FormatCSV:
		return writeCSV(w, snap.Rows)
	case FormatJSON:
		return writeJSON(w, snap)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// ExportToFile writes snap into dir, creating it if needed, and returns the
// file path
func (e *Exporter) ExportToFile(snap Snapshot, format Format, dir string) (string, error) {
	if snap.ExportTime.IsZero() {
		snap.ExportTime = e.clock.Now()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	outputPath := filepath.Join(dir, Filename(snap, format))
	file, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}

	werr := e.Write(file, format, snap)
	cerr := file.Close()
	if werr != nil {
		return "", werr
	}
	if cerr != nil {
		return "", fmt.Errorf("failed to close export file: %w", cerr)
	}

	e.logger.Info("Tokens exported",
		zap.String("file", outputPath),
		zap.String("category", string(snap.Spec.Category)),
		zap.Int("count", len(snap.Rows)),
		zap.String("format", string(format)))

	return outputPath, nil
}

// Filename names an export after its tab and time
func Filename(snap Snapshot, format Format) string {
	return fmt.Sprintf("tokens_%s_%s.%s",
		snap.Spec.Category, snap.ExportTime.Format("20060102_150405"), format)
}

func writeCSV(w io.Writer, rows []engine.Row) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeaders); err != nil {
		return fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(csvRecord(row)); err != nil {
			return fmt.Errorf("failed to write token %s: %w", row.Token.ID, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func csvRecord(row engine.Row) []string {
	t := row.Token
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return []string{
		t.ID, t.Name, t.Symbol, t.ContractAddress, string(t.Platform),
		f(t.Age), f(t.MarketCap), f(t.Liquidity), f(t.Volume24h), strconv.Itoa(t.Holders),
		f(t.DevHoldingPercent), f(t.SnipersPercent), f(t.ProTradersPercent),
		strconv.Itoa(t.Transactions), strconv.Itoa(t.Buys), strconv.Itoa(t.Sells),
		f(t.Price), f(t.PriceChange24h), row.Trend.String(), strconv.FormatBool(row.Highlighted),
	}
}

func writeJSON(w io.Writer, snap Snapshot) error {
	doc := document{
		ExportTime: snap.ExportTime,
		Category:   snap.Spec.Category,
		Filter:     snap.Spec.Filter,
		SortField:  snap.Spec.SortField,
		Direction:  snap.Spec.Direction,
		Summary:    Summarize(snap.Rows),
		Tokens:     make([]rowRecord, len(snap.Rows)),
	}
	for i, row := range snap.Rows {
		doc.Tokens[i] = rowRecord{Token: row.Token, Highlighted: row.Highlighted, Trend: row.Trend.String()}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// Summarize calculates aggregate figures over rows
func Summarize(rows []engine.Row) Summary {
	summary := Summary{TokenCount: len(rows)}
	if len(rows) == 0 {
		return summary
	}

	var totalChange float64
	best, worst := rows[0].Token, rows[0].Token
	for _, row := range rows {
		t := row.Token
		summary.TotalMarketCap += t.MarketCap
		summary.TotalVolume24h += t.Volume24h
		totalChange += t.PriceChange24h

		if t.PriceChange24h > 0 {
			summary.Gainers++
		} else if t.PriceChange24h < 0 {
			summary.Losers++
		}
		if row.Highlighted {
			summary.Highlighted++
		}
		if t.PriceChange24h > best.PriceChange24h {
			best = t
		}
		if t.PriceChange24h < worst.PriceChange24h {
			worst = t
		}
	}

	summary.AvgChange24h = totalChange / float64(len(rows))
	if best.PriceChange24h > 0 {
		summary.TopGainer = best.Symbol
	}
	if worst.PriceChange24h < 0 {
		summary.TopLoser = worst.Symbol
	}
	return summary
}
