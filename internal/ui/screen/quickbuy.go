package screen

import (
	"errors"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/token-pulse/internal/domain"
	"github.com/rovshanmuradov/token-pulse/internal/engine"
	"github.com/rovshanmuradov/token-pulse/internal/ui"
	"github.com/rovshanmuradov/token-pulse/internal/ui/component"
	"github.com/rovshanmuradov/token-pulse/internal/ui/format"
	"github.com/rovshanmuradov/token-pulse/internal/ui/router"
	"github.com/rovshanmuradov/token-pulse/internal/ui/style"
)

// QuickBuyer records quick buy intents
type QuickBuyer interface {
	RequestQuickBuy(category domain.Category, id string, amount float64) (domain.QuickBuyIntent, error)
}

// QuickBuyScreen is the dialog opened on a row. It shows the token as it
// was when opened and asks for a SOL amount.
type QuickBuyScreen struct {
	width  int
	height int
	keyMap ui.KeyMap

	buyer    QuickBuyer
	category domain.Category
	token    domain.Token

	amount  textinput.Model
	helpBar *component.HelpBar
	err     string
}

// NewQuickBuyScreen opens the dialog pre-filled with amount SOL, or the
// default amount when amount is not positive.
func NewQuickBuyScreen(buyer QuickBuyer, category domain.Category, token domain.Token, amount float64) *QuickBuyScreen {
	if amount <= 0 {
		amount = domain.DefaultQuickBuyAmount
	}
	input := textinput.New()
	input.Prompt = ""
	input.CharLimit = 16
	input.SetValue(strconv.FormatFloat(amount, 'f', -1, 64))
	input.CursorEnd()

	keyMap := ui.DefaultKeyMap()
	return &QuickBuyScreen{
		keyMap:   keyMap,
		buyer:    buyer,
		category: category,
		token:    token,
		amount:   input,
		helpBar:  component.NewHelpBar().SetKeyBindings(keyMap.ContextualHelp(ui.RouteQuickBuy)),
	}
}

// Init focuses the amount input
func (q *QuickBuyScreen) Init() tea.Cmd {
	return q.amount.Focus()
}

// SetSize implements router.Screen
func (q *QuickBuyScreen) SetSize(width, height int) {
	q.width = width
	q.height = height
}

// Update implements router.Screen
func (q *QuickBuyScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return q, nil
	}

	switch {
	case km.Type == tea.KeyCtrlC:
		return q, tea.Quit
	case key.Matches(km, q.keyMap.Confirm):
		return q, q.submit()
	}

	var cmd tea.Cmd
	q.amount, cmd = q.amount.Update(km)
	q.err = ""
	return q, cmd
}

// submit records the intent and closes the dialog. The pulse screen learns
// about it from the event bus.
func (q *QuickBuyScreen) submit() tea.Cmd {
	amount, err := strconv.ParseFloat(strings.TrimSpace(q.amount.Value()), 64)
	if err != nil {
		q.err = "amount must be a number"
		return nil
	}
	if _, err := q.buyer.RequestQuickBuy(q.category, q.token.ID, amount); err != nil {
		switch {
		case errors.Is(err, engine.ErrInvalidAmount):
			q.err = "amount must be greater than zero"
		case errors.Is(err, domain.ErrNotFound):
			q.err = "token is no longer listed"
		default:
			q.err = err.Error()
		}
		return nil
	}
	return router.Pop
}

// View implements router.Screen
func (q *QuickBuyScreen) View() string {
	palette := style.DefaultPalette()
	t := q.token

	row := func(label, value string) string {
		return style.FormLabelStyle.Render(label) + style.FormValueStyle.Render(value)
	}

	lines := []string{
		style.TitleStyle.Render("Quick Buy"),
		row("Token", t.Name),
		row("Symbol", t.Symbol),
		row("Contract", format.ShortAddress(t.ContractAddress)),
		row("Price", format.Price(t.Price)),
		row("Market Cap", format.Currency(t.MarketCap)),
		style.FormLabelStyle.Render("24h Change") + palette.Change(t.PriceChange24h, false).Render(format.Change(t.PriceChange24h)),
		"",
		style.FormLabelStyle.Render("Amount (SOL)") + q.amount.View(),
	}
	if q.err != "" {
		lines = append(lines, style.ErrorStyle.Render(q.err))
	}
	lines = append(lines, "", style.ButtonStyle.Render("Buy "+t.Symbol), "", q.helpBar.View())

	if q.width <= 0 || q.height <= 0 {
		return style.DialogStyle.Render(strings.Join(lines, "\n"))
	}
	box := style.DialogStyle.Width(style.AdaptiveWidth(q.width, 50)).Render(strings.Join(lines, "\n"))
	return lipgloss.Place(q.width, q.height, lipgloss.Center, lipgloss.Center, box)
}
