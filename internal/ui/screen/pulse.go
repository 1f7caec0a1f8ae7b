package screen

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/token-pulse/internal/domain"
	"github.com/rovshanmuradov/token-pulse/internal/engine"
	"github.com/rovshanmuradov/token-pulse/internal/export"
	"github.com/rovshanmuradov/token-pulse/internal/logger"
	"github.com/rovshanmuradov/token-pulse/internal/ui"
	"github.com/rovshanmuradov/token-pulse/internal/ui/component"
	"github.com/rovshanmuradov/token-pulse/internal/ui/format"
	"github.com/rovshanmuradov/token-pulse/internal/ui/router"
	"github.com/rovshanmuradov/token-pulse/internal/ui/state"
	"github.com/rovshanmuradov/token-pulse/internal/ui/style"
	"github.com/rovshanmuradov/token-pulse/internal/view"
)

// RefreshInterval redraws the table often enough for a highlight window to
// end on time
const RefreshInterval = 250 * time.Millisecond

// Engine is what the screens need from the state engine
type Engine interface {
	Rows(spec view.Spec) ([]engine.Row, error)
	Token(category domain.Category, id string) (domain.Token, error)
	Active() domain.Category
	SetActive(category domain.Category) error
	NextCategory() domain.Category
	PrevCategory() domain.Category
	Categories() []domain.Category
	Loaded() bool
	Counts() map[domain.Category]int
	RequestQuickBuy(category domain.Category, id string, amount float64) (domain.QuickBuyIntent, error)
}

// StatusSource supplies the latest warning for the status line
type StatusSource interface {
	Last() (logger.LogEntry, bool)
}

type refreshMsg time.Time

type column struct {
	header string
	field  string
	width  int
	align  lipgloss.Position
}

var pulseColumns = []column{
	{"Token", domain.FieldName, 22, lipgloss.Left},
	{"Age", domain.FieldAge, 7, lipgloss.Right},
	{"Market Cap", domain.FieldMarketCap, 14, lipgloss.Right},
	{"Liquidity", domain.FieldLiquidity, 13, lipgloss.Right},
	{"Volume 24h", domain.FieldVolume24h, 14, lipgloss.Right},
	{"Holders", domain.FieldHolders, 11, lipgloss.Right},
	{"Dev %", domain.FieldDevHoldingPercent, 9, lipgloss.Right},
	{"Snipers %", domain.FieldSnipersPercent, 13, lipgloss.Right},
	{"Pro %", domain.FieldProTradersPercent, 9, lipgloss.Right},
	{"TXs", domain.FieldTransactions, 7, lipgloss.Right},
	{"Buys", domain.FieldBuys, 8, lipgloss.Right},
	{"Sells", domain.FieldSells, 9, lipgloss.Right},
	{"24h %", domain.FieldPriceChange24h, 11, lipgloss.Right},
}

// Concentration above these is flagged
const (
	devWarnPercent     = 10
	snipersWarnPercent = 20
)

// PulseScreen is the live token table with one tab per category
type PulseScreen struct {
	width  int
	height int
	keyMap ui.KeyMap

	engine Engine
	bus    <-chan tea.Msg
	status StatusSource
	cache  *state.ViewCache

	// UI components
	table   *component.Table
	tabs    *component.Tabs
	helpBar *component.HelpBar
	filter  textinput.Model

	// State
	rows      []engine.Row
	filtering bool
	loadErr   error
	notice    string
	noticeOK  bool

	// filter text to restore when editing is cancelled
	filterBefore string
	// pre-filled in the quick buy dialog
	quickBuyAmount float64

	exporter     *export.Exporter
	exportDir    string
	exportFormat export.Format

	logs LogSource

	titleStyle lipgloss.Style
}

// NewPulseScreen builds the table screen. bus and status may be nil.
func NewPulseScreen(eng Engine, cache *state.ViewCache, bus <-chan tea.Msg, status StatusSource) *PulseScreen {
	palette := style.DefaultPalette()

	filter := textinput.New()
	filter.Prompt = "/ "
	filter.Placeholder = "name or symbol"
	filter.CharLimit = 32

	s := &PulseScreen{
		keyMap: ui.DefaultKeyMap(),
		engine: eng,
		bus:    bus,
		status: status,
		cache:  cache,
		filter: filter,

		quickBuyAmount: domain.DefaultQuickBuyAmount,

		titleStyle: lipgloss.NewStyle().
			Foreground(palette.Primary).
			Bold(true).
			Padding(0, 1),
	}

	s.initializeTable()
	s.initializeHelpBar()
	s.tabs = component.NewTabs()
	s.refresh()
	return s
}

// SetQuickBuyAmount changes the amount the quick buy dialog starts with
func (s *PulseScreen) SetQuickBuyAmount(amount float64) *PulseScreen {
	if amount > 0 {
		s.quickBuyAmount = amount
	}
	return s
}

// SetExporter enables the export key. Snapshots of the visible tab are
// written into dir.
func (s *PulseScreen) SetExporter(exp *export.Exporter, dir string, format export.Format) *PulseScreen {
	s.exporter = exp
	s.exportDir = dir
	s.exportFormat = format
	return s
}

// SetLogSource enables the logs key
func (s *PulseScreen) SetLogSource(src LogSource) *PulseScreen {
	s.logs = src
	return s
}

func (s *PulseScreen) initializeTable() {
	s.table = component.NewTable().SetEmptyText("Loading...")
	for _, c := range pulseColumns {
		s.table.AddColumn(c.header, c.width, c.align)
	}
}

func (s *PulseScreen) initializeHelpBar() {
	s.helpBar = component.NewHelpBar().
		SetKeyBindings(s.keyMap.ContextualHelp(ui.RoutePulse)).
		SetGroups(s.keyMap.FullHelp())
}

func tick() tea.Cmd {
	return tea.Tick(RefreshInterval, func(t time.Time) tea.Msg { return refreshMsg(t) })
}

// Init starts the redraw ticker and the bus listener
func (s *PulseScreen) Init() tea.Cmd {
	cmds := []tea.Cmd{tick()}
	if s.bus != nil {
		cmds = append(cmds, ui.ListenBus(s.bus))
	}
	return tea.Batch(cmds...)
}

// SetSize implements router.Screen
func (s *PulseScreen) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.helpBar.SetWidth(width)
	// title, tabs, filter, status and help take the rest
	s.table.SetSize(width, height-7)
}

// Update implements router.Screen
func (s *PulseScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case refreshMsg:
		s.refresh()
		return s, tick()

	case ui.TokensLoadedMsg:
		s.loadErr = nil
		s.refresh()
		return s, s.listen()

	case ui.LoadFailedMsg:
		s.loadErr = msg.Err
		s.table.SetEmptyText("Failed to load tokens: " + msg.Err.Error())
		return s, s.listen()

	case ui.TokenMutatedMsg, ui.CategoryChangedMsg:
		s.refresh()
		return s, s.listen()

	case ui.QuickBuyMsg:
		s.setNotice(fmt.Sprintf("Quick buy queued: %s SOL of %s",
			strconv.FormatFloat(msg.Intent.AmountSOL, 'f', -1, 64), msg.Intent.Token.Symbol), true)
		return s, s.listen()

	case tea.KeyMsg:
		if s.filtering {
			return s, s.updateFilter(msg)
		}
		return s, s.handleKey(msg)
	}
	return s, nil
}

func (s *PulseScreen) listen() tea.Cmd {
	if s.bus == nil {
		return nil
	}
	return ui.ListenBus(s.bus)
}

func (s *PulseScreen) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, s.keyMap.Quit):
		return tea.Quit

	case key.Matches(msg, s.keyMap.Up):
		s.table.MoveUp()
		s.saveSelection()

	case key.Matches(msg, s.keyMap.Down):
		s.table.MoveDown()
		s.saveSelection()

	case key.Matches(msg, s.keyMap.NextTab):
		s.engine.NextCategory()
		s.refresh()

	case key.Matches(msg, s.keyMap.PrevTab):
		s.engine.PrevCategory()
		s.refresh()

	case key.Matches(msg, s.keyMap.NewPairs):
		s.switchTo(domain.CategoryNewPairs)

	case key.Matches(msg, s.keyMap.Final):
		s.switchTo(domain.CategoryFinalStretch)

	case key.Matches(msg, s.keyMap.Migrated):
		s.switchTo(domain.CategoryMigrated)

	case key.Matches(msg, s.keyMap.Filter):
		s.filtering = true
		s.filterBefore = s.cache.Get(s.engine.Active()).Spec.Filter
		s.filter.SetValue(s.filterBefore)
		s.filter.CursorEnd()
		return s.filter.Focus()

	case key.Matches(msg, s.keyMap.SortNext):
		s.cycleSort(1)

	case key.Matches(msg, s.keyMap.SortPrev):
		s.cycleSort(-1)

	case key.Matches(msg, s.keyMap.Flip):
		cat := s.engine.Active()
		st := s.cache.Get(cat)
		st.Spec.Direction = st.Spec.Direction.Flip()
		s.cache.Save(cat, st)
		s.refresh()

	case key.Matches(msg, s.keyMap.Export):
		s.exportView()

	case key.Matches(msg, s.keyMap.Logs):
		if s.logs != nil {
			return router.Push(NewLogsScreen(s.logs))
		}

	case key.Matches(msg, s.keyMap.QuickBuy):
		return s.openQuickBuy()

	case key.Matches(msg, s.keyMap.Help):
		s.helpBar.Toggle()
	}
	return nil
}

// updateFilter feeds the text input. The filter applies as the user types;
// esc restores the text from before editing started.
func (s *PulseScreen) updateFilter(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		s.filtering = false
		s.filter.Blur()
		return nil
	case tea.KeyEsc:
		s.filtering = false
		s.filter.Blur()
		s.cache.SetFilter(s.filterBefore)
		s.refresh()
		return nil
	case tea.KeyCtrlC:
		return tea.Quit
	}

	var cmd tea.Cmd
	s.filter, cmd = s.filter.Update(msg)
	s.cache.SetFilter(s.filter.Value())
	s.refresh()
	return cmd
}

func (s *PulseScreen) switchTo(cat domain.Category) {
	// categories come from the closed set, so this cannot fail
	_ = s.engine.SetActive(cat)
	s.refresh()
}

func (s *PulseScreen) cycleSort(delta int) {
	cat := s.engine.Active()
	st := s.cache.Get(cat)
	idx := columnIndex(st.Spec.SortField)
	next := (idx + delta + len(pulseColumns)) % len(pulseColumns)
	st.Spec = st.Spec.WithSort(pulseColumns[next].field)
	s.cache.Save(cat, st)
	s.refresh()
}

func (s *PulseScreen) saveSelection() {
	cat := s.engine.Active()
	st := s.cache.Get(cat)
	if i := s.table.GetSelectedRow(); i < len(s.rows) {
		st.Selected = s.rows[i].Token.ID
	}
	s.cache.Save(cat, st)
}

func (s *PulseScreen) selected() (engine.Row, bool) {
	i := s.table.GetSelectedRow()
	if i < 0 || i >= len(s.rows) {
		return engine.Row{}, false
	}
	return s.rows[i], true
}

func (s *PulseScreen) openQuickBuy() tea.Cmd {
	row, ok := s.selected()
	if !ok {
		return nil
	}
	cat := s.engine.Active()
	tok, err := s.engine.Token(cat, row.Token.ID)
	if err != nil {
		s.setNotice(err.Error(), false)
		return nil
	}
	return router.Push(NewQuickBuyScreen(s.engine, cat, tok, s.quickBuyAmount))
}

// exportView writes the rows currently on screen, in screen order
func (s *PulseScreen) exportView() {
	if s.exporter == nil {
		return
	}
	spec := s.cache.Get(s.engine.Active()).Spec
	path, err := s.exporter.ExportToFile(export.Snapshot{Spec: spec, Rows: s.rows}, s.exportFormat, s.exportDir)
	if err != nil {
		s.setNotice("✗ export failed: "+err.Error(), false)
		return
	}
	s.setNotice(fmt.Sprintf("Exported %d tokens to %s", len(s.rows), path), true)
}

// refresh re-projects the active tab from the engine
func (s *PulseScreen) refresh() {
	cat := s.engine.Active()
	st := s.cache.Get(cat)

	rows, err := s.engine.Rows(st.Spec)
	if err != nil {
		s.setNotice(err.Error(), false)
		return
	}
	s.rows = rows

	cells := make([][]component.TableCell, len(rows))
	selected := 0
	for i, row := range rows {
		cells[i] = rowCells(row)
		if row.Token.ID == st.Selected {
			selected = i
		}
	}
	if s.loadErr == nil {
		s.table.SetEmptyText(s.emptyText(st.Spec))
	}
	s.table.SetRows(cells).
		SetSelectedRow(selected).
		SetSort(columnIndex(st.Spec.SortField), st.Spec.Direction == view.Asc)

	counts := s.engine.Counts()
	tabs := make([]component.Tab, 0, 3)
	for _, c := range s.engine.Categories() {
		tabs = append(tabs, component.Tab{Key: string(c), Label: c.Label(), Count: counts[c]})
	}
	s.tabs.SetTabs(tabs).SetActive(string(cat))
}

func (s *PulseScreen) emptyText(spec view.Spec) string {
	if !s.engine.Loaded() {
		return "Loading..."
	}
	if spec.Filter != "" {
		return fmt.Sprintf("No tokens match %q", spec.Filter)
	}
	return "No tokens"
}

func columnIndex(field string) int {
	for i, c := range pulseColumns {
		if c.field == field {
			return i
		}
	}
	return -1
}

func rowCells(row engine.Row) []component.TableCell {
	palette := style.DefaultPalette()
	t := row.Token
	return []component.TableCell{
		component.Cell(fmt.Sprintf("%s %s", t.Name, t.Symbol)),
		component.Cell(format.Age(t.Age)),
		component.Cell(format.Currency(t.MarketCap)),
		component.Cell(format.Currency(t.Liquidity)),
		component.Cell(format.Currency(t.Volume24h)),
		component.Cell(strconv.Itoa(t.Holders)),
		component.StyledCell(format.Percent(t.DevHoldingPercent), palette.Percent(t.DevHoldingPercent, devWarnPercent)),
		component.StyledCell(format.Percent(t.SnipersPercent), palette.Percent(t.SnipersPercent, snipersWarnPercent)),
		component.Cell(format.Percent(t.ProTradersPercent)),
		component.Cell(strconv.Itoa(t.Transactions)),
		component.Cell(strconv.Itoa(t.Buys)),
		component.Cell(strconv.Itoa(t.Sells)),
		component.StyledCell(format.Change(t.PriceChange24h), palette.Change(t.PriceChange24h, row.Highlighted)),
	}
}

// View implements router.Screen
func (s *PulseScreen) View() string {
	var b strings.Builder

	b.WriteString(s.titleStyle.Render("Token Discovery - Pulse"))
	b.WriteString("\n")
	b.WriteString(s.tabs.View())
	b.WriteString("\n")

	spec := s.cache.Get(s.engine.Active()).Spec
	switch {
	case s.filtering:
		b.WriteString(s.filter.View())
	case spec.Filter != "":
		b.WriteString(style.MutedStyle.Render("filter: " + spec.Filter))
	}
	b.WriteString("\n")

	b.WriteString(s.table.View())
	b.WriteString("\n")
	b.WriteString(s.statusLine())
	b.WriteString("\n")
	b.WriteString(s.helpBar.View())

	return b.String()
}

func (s *PulseScreen) setNotice(text string, ok bool) {
	s.notice = text
	s.noticeOK = ok
}

func (s *PulseScreen) statusLine() string {
	if s.loadErr != nil {
		return style.ErrorStyle.Render("✗ " + s.loadErr.Error())
	}
	if s.notice != "" {
		if s.noticeOK {
			return style.SuccessStyle.Render(s.notice)
		}
		return style.ErrorStyle.Render(s.notice)
	}
	if s.status != nil {
		if e, ok := s.status.Last(); ok {
			return style.WarningStyle.Render(fmt.Sprintf("[%s] %s", e.Level.CapitalString(), e.Message))
		}
	}
	return ""
}
