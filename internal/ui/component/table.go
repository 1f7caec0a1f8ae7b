package component

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/token-pulse/internal/ui/style"
)

// TableColumn represents a column configuration
type TableColumn struct {
	Header string
	Width  int
	Align  lipgloss.Position
}

// TableCell is one cell. A cell with Styled set keeps its own colors even
// on the selected row.
type TableCell struct {
	Text   string
	Style  lipgloss.Style
	Styled bool
}

// Cell is a plain cell
func Cell(text string) TableCell {
	return TableCell{Text: text}
}

// StyledCell is a cell with its own style
func StyledCell(text string, s lipgloss.Style) TableCell {
	return TableCell{Text: text, Style: s, Styled: true}
}

// TableRow represents a row of data
type TableRow struct {
	Cells []TableCell
	Style lipgloss.Style
}

// Table represents a data table component
type Table struct {
	columns     []TableColumn
	rows        []TableRow
	width       int
	height      int
	selectedRow int
	offset      int

	// sort indicator, -1 for none
	sortColumn int
	sortAsc    bool

	// Styling
	headerStyle      lipgloss.Style
	sortHeaderStyle  lipgloss.Style
	rowStyle         lipgloss.Style
	selectedRowStyle lipgloss.Style
	borderStyle      lipgloss.Style
	emptyText        string

	// Configuration
	showBorder  bool
	showHeaders bool
	selectable  bool
	zebra       bool
}

// NewTable creates a new table component
func NewTable() *Table {
	palette := style.DefaultPalette()

	return &Table{
		columns:    make([]TableColumn, 0),
		rows:       make([]TableRow, 0),
		sortColumn: -1,

		headerStyle: lipgloss.NewStyle().
			Foreground(palette.Secondary).
			Bold(true),

		sortHeaderStyle: lipgloss.NewStyle().
			Foreground(palette.Primary).
			Bold(true).
			Underline(true),

		rowStyle: lipgloss.NewStyle().
			Foreground(palette.Text),

		selectedRowStyle: lipgloss.NewStyle().
			Foreground(palette.Background).
			Background(palette.Primary),

		borderStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.TextMuted),

		emptyText: "No tokens",

		showBorder:  true,
		showHeaders: true,
		selectable:  true,
	}
}

// AddColumn adds a column to the table
func (t *Table) AddColumn(header string, width int, align lipgloss.Position) *Table {
	t.columns = append(t.columns, TableColumn{
		Header: header,
		Width:  width,
		Align:  align,
	})
	return t
}

// SetRows replaces all rows. The selection is clamped to the new length.
func (t *Table) SetRows(rows [][]TableCell) *Table {
	t.rows = make([]TableRow, len(rows))
	for i, cells := range rows {
		t.rows[i] = TableRow{Cells: cells, Style: t.rowStyle}
	}
	t.clampSelection()
	return t
}

// SetRowStyle sets a custom style for a specific row
func (t *Table) SetRowStyle(rowIndex int, style lipgloss.Style) *Table {
	if rowIndex >= 0 && rowIndex < len(t.rows) {
		t.rows[rowIndex].Style = style
	}
	return t
}

// SetSort marks a column header with the sort direction. Pass -1 to clear.
func (t *Table) SetSort(column int, asc bool) *Table {
	t.sortColumn = column
	t.sortAsc = asc
	return t
}

// SetEmptyText sets what is shown instead of rows when there are none
func (t *Table) SetEmptyText(text string) *Table {
	t.emptyText = text
	return t
}

// SetSize sets the table dimensions. A height of zero shows every row.
func (t *Table) SetSize(width, height int) *Table {
	t.width = width
	t.height = height
	t.clampSelection()
	return t
}

// SetSelectedRow sets the currently selected row
func (t *Table) SetSelectedRow(index int) *Table {
	if index >= 0 && index < len(t.rows) {
		t.selectedRow = index
		t.scrollToSelection()
	}
	return t
}

// GetSelectedRow returns the currently selected row index
func (t *Table) GetSelectedRow() int {
	return t.selectedRow
}

// MoveUp moves selection up
func (t *Table) MoveUp() *Table {
	if t.selectable && t.selectedRow > 0 {
		t.selectedRow--
		t.scrollToSelection()
	}
	return t
}

// MoveDown moves selection down
func (t *Table) MoveDown() *Table {
	if t.selectable && t.selectedRow < len(t.rows)-1 {
		t.selectedRow++
		t.scrollToSelection()
	}
	return t
}

// SetShowBorder enables/disables table border
func (t *Table) SetShowBorder(show bool) *Table {
	t.showBorder = show
	return t
}

// SetZebra enables/disables alternating row colors
func (t *Table) SetZebra(zebra bool) *Table {
	t.zebra = zebra
	return t
}

// View renders the table
func (t *Table) View() string {
	if len(t.columns) == 0 {
		return "No columns defined"
	}

	var content strings.Builder
	t.calculateColumnWidths()

	if t.showHeaders {
		var headerRow strings.Builder
		for i, col := range t.columns {
			header, hs := col.Header, t.headerStyle
			if i == t.sortColumn {
				hs = t.sortHeaderStyle
				if t.sortAsc {
					header += " ▲"
				} else {
					header += " ▼"
				}
			}
			headerRow.WriteString(t.renderCell(header, col.Width, col.Align, hs))
			if i < len(t.columns)-1 {
				headerRow.WriteString("│")
			}
		}
		content.WriteString(headerRow.String())
		content.WriteString("\n")

		var separator strings.Builder
		for i, col := range t.columns {
			separator.WriteString(strings.Repeat("─", col.Width))
			if i < len(t.columns)-1 {
				separator.WriteString("┼")
			}
		}
		content.WriteString(separator.String())
		content.WriteString("\n")
	}

	if len(t.rows) == 0 {
		content.WriteString(style.MutedStyle.Render(t.emptyText))
	}

	palette := style.DefaultPalette()
	end := t.offset + t.visibleRows()
	if end > len(t.rows) {
		end = len(t.rows)
	}
	for rowIndex := t.offset; rowIndex < end; rowIndex++ {
		row := t.rows[rowIndex]
		var rowStr strings.Builder

		rowStyle := row.Style
		selected := t.selectable && rowIndex == t.selectedRow
		if selected {
			rowStyle = t.selectedRowStyle
		} else if t.zebra && rowIndex%2 == 1 {
			rowStyle = rowStyle.Background(palette.BackgroundAlt)
		}

		for i, col := range t.columns {
			cell := TableCell{}
			if i < len(row.Cells) {
				cell = row.Cells[i]
			}

			cs := rowStyle
			if cell.Styled {
				cs = cell.Style.Inherit(rowStyle)
			}
			rowStr.WriteString(t.renderCell(cell.Text, col.Width, col.Align, cs))

			if i < len(t.columns)-1 {
				rowStr.WriteString("│")
			}
		}

		content.WriteString(rowStr.String())
		if rowIndex < end-1 {
			content.WriteString("\n")
		}
	}

	result := content.String()
	if t.showBorder {
		result = t.borderStyle.Render(result)
	}
	return result
}

// renderCell pads and truncates a cell to its column width
func (t *Table) renderCell(content string, width int, align lipgloss.Position, style lipgloss.Style) string {
	inner := width - 2
	if inner < 1 {
		inner = 1
	}
	runes := []rune(content)
	if len(runes) > inner {
		if inner > 3 {
			content = string(runes[:inner-1]) + "…"
		} else {
			content = string(runes[:inner])
		}
	}

	return style.Padding(0, 1).Width(width).MaxWidth(width).Align(align).Render(content)
}

// calculateColumnWidths spreads the remaining width over columns without
// an explicit width
func (t *Table) calculateColumnWidths() {
	if t.width <= 0 {
		return
	}

	totalExplicitWidth := 0
	autoWidthColumns := 0
	for _, col := range t.columns {
		if col.Width > 0 {
			totalExplicitWidth += col.Width
		} else {
			autoWidthColumns++
		}
	}

	separatorWidth := len(t.columns) - 1
	availableWidth := t.width - totalExplicitWidth - separatorWidth

	if autoWidthColumns > 0 && availableWidth > 0 {
		autoWidth := availableWidth / autoWidthColumns
		for i := range t.columns {
			if t.columns[i].Width <= 0 {
				t.columns[i].Width = autoWidth
			}
		}
	}
}

// visibleRows is how many data rows fit in the height
func (t *Table) visibleRows() int {
	if t.height <= 0 {
		return len(t.rows)
	}
	n := t.height
	if t.showHeaders {
		n -= 2
	}
	if t.showBorder {
		n -= 2
	}
	if n < 1 {
		n = 1
	}
	return n
}

func (t *Table) scrollToSelection() {
	visible := t.visibleRows()
	if t.selectedRow < t.offset {
		t.offset = t.selectedRow
	}
	if t.selectedRow >= t.offset+visible {
		t.offset = t.selectedRow - visible + 1
	}
	if t.offset < 0 {
		t.offset = 0
	}
}

func (t *Table) clampSelection() {
	if t.selectedRow >= len(t.rows) {
		t.selectedRow = len(t.rows) - 1
	}
	if t.selectedRow < 0 {
		t.selectedRow = 0
	}
	if max := len(t.rows) - t.visibleRows(); t.offset > max {
		t.offset = max
	}
	if t.offset < 0 {
		t.offset = 0
	}
	t.scrollToSelection()
}

// GetRowCount returns the number of rows
func (t *Table) GetRowCount() int {
	return len(t.rows)
}

// Offset is the index of the first visible row
func (t *Table) Offset() int {
	return t.offset
}
