package screen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/token-pulse/internal/logger"
	"github.com/rovshanmuradov/token-pulse/internal/ui"
	"github.com/rovshanmuradov/token-pulse/internal/ui/component"
	"github.com/rovshanmuradov/token-pulse/internal/ui/router"
	"github.com/rovshanmuradov/token-pulse/internal/ui/style"
	"go.uber.org/zap/zapcore"
)

// LogSource is the in-memory ring the logs screen reads
type LogSource interface {
	GetRecentLogs(limit int) []logger.LogEntry
	GetStats() uint64
}

// levelFilters are cycled by the level key
var levelFilters = []struct {
	min   zapcore.Level
	label string
}{
	{zapcore.DebugLevel, "all"},
	{zapcore.WarnLevel, "warn+"},
	{zapcore.ErrorLevel, "error+"},
}

// LogsScreen shows the entries captured for the status line
type LogsScreen struct {
	width  int
	height int
	keyMap ui.KeyMap

	source  LogSource
	table   *component.Table
	helpBar *component.HelpBar

	// State
	entries  []logger.LogEntry
	level    int
	tailMode bool
	// entries added before this count are hidden after a clear
	clearedAt uint64

	// Styling
	statusStyle lipgloss.Style
	warnStyle   lipgloss.Style
	errorStyle  lipgloss.Style
}

// NewLogsScreen creates the log viewer. It redraws on the refresh ticks the
// pulse screen broadcasts underneath it.
func NewLogsScreen(source LogSource) *LogsScreen {
	palette := style.DefaultPalette()
	keyMap := ui.DefaultKeyMap()

	s := &LogsScreen{
		keyMap:   keyMap,
		source:   source,
		tailMode: true,

		statusStyle: lipgloss.NewStyle().
			Foreground(palette.TextSecondary).
			Padding(0, 1),

		warnStyle:  lipgloss.NewStyle().Foreground(palette.Warning),
		errorStyle: lipgloss.NewStyle().Foreground(palette.Down).Bold(true),
	}

	s.table = component.NewTable().
		AddColumn("Time", 10, lipgloss.Left).
		AddColumn("Level", 7, lipgloss.Left).
		AddColumn("Logger", 14, lipgloss.Left).
		AddColumn("Message", 40, lipgloss.Left).
		AddColumn("Fields", 40, lipgloss.Left).
		SetEmptyText("No log entries")
	s.helpBar = component.NewHelpBar().SetKeyBindings(keyMap.ContextualHelp(ui.RouteLogs))

	s.reload()
	return s
}

// Init implements router.Screen
func (s *LogsScreen) Init() tea.Cmd { return nil }

// SetSize implements router.Screen
func (s *LogsScreen) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.helpBar.SetWidth(width)
	// header with its margin, status and help
	s.table.SetSize(width, height-5)
}

// Update implements router.Screen
func (s *LogsScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case refreshMsg:
		s.reload()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, s.keyMap.Quit):
			return s, tea.Quit

		case key.Matches(msg, s.keyMap.Up):
			s.table.MoveUp()
			s.tailMode = false

		case key.Matches(msg, s.keyMap.Down):
			s.table.MoveDown()

		case key.Matches(msg, s.keyMap.Level):
			s.level = (s.level + 1) % len(levelFilters)
			s.reload()

		case key.Matches(msg, s.keyMap.Tail):
			s.tailMode = !s.tailMode
			s.reload()

		case key.Matches(msg, s.keyMap.Clear):
			s.clearedAt = s.source.GetStats()
			s.reload()
		}
	}
	return s, nil
}

// reload re-reads the ring and applies the level filter
func (s *LogsScreen) reload() {
	fresh := s.source.GetStats() - s.clearedAt
	var all []logger.LogEntry
	if fresh > 0 {
		all = s.source.GetRecentLogs(int(fresh))
	}

	floor := levelFilters[s.level].min
	s.entries = s.entries[:0]
	for _, e := range all {
		if e.Level >= floor {
			s.entries = append(s.entries, e)
		}
	}

	rows := make([][]component.TableCell, len(s.entries))
	for i, e := range s.entries {
		lvl := component.StyledCell(e.Level.CapitalString(), s.levelStyle(e.Level))
		rows[i] = []component.TableCell{
			component.Cell(e.Timestamp.Format("15:04:05")),
			lvl,
			component.Cell(e.Logger),
			component.Cell(e.Message),
			component.Cell(formatFields(e.Fields)),
		}
	}
	s.table.SetRows(rows)
	if s.tailMode && len(rows) > 0 {
		s.table.SetSelectedRow(len(rows) - 1)
	}
}

func (s *LogsScreen) levelStyle(level zapcore.Level) lipgloss.Style {
	if level >= zapcore.ErrorLevel {
		return s.errorStyle
	}
	if level == zapcore.WarnLevel {
		return s.warnStyle
	}
	return style.MutedStyle
}

// formatFields renders fields as key=value pairs in key order
func formatFields(fields map[string]interface{}) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, fields[k])
	}
	return strings.Join(parts, " ")
}

// View implements router.Screen
func (s *LogsScreen) View() string {
	var b strings.Builder

	b.WriteString(style.HeaderStyle.Render("Logs"))
	b.WriteString("\n")
	b.WriteString(s.table.View())
	b.WriteString("\n")

	status := []string{
		fmt.Sprintf("Shown: %d", len(s.entries)),
		"Level: " + levelFilters[s.level].label,
	}
	if s.tailMode {
		status = append(status, "Tail")
	}
	b.WriteString(s.statusStyle.Render(strings.Join(status, " • ")))
	b.WriteString("\n")
	b.WriteString(s.helpBar.View())
	return b.String()
}
