package router

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Screen represents a screen that can be navigated to
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)
	View() string
	SetSize(width, height int)
}

// PushMsg asks the router to open a screen on top of the stack
type PushMsg struct {
	Screen Screen
}

// PopMsg asks the router to close the top screen
type PopMsg struct{}

// Push returns a command that opens s
func Push(s Screen) tea.Cmd {
	return func() tea.Msg { return PushMsg{Screen: s} }
}

// Pop returns a command that closes the top screen
func Pop() tea.Msg { return PopMsg{} }

// Router manages navigation between screens using a stack. Keys go to the
// top screen only; every other message reaches the whole stack so screens
// underneath keep refreshing.
type Router struct {
	stack  []Screen
	width  int
	height int
}

// New creates a new router with the initial screen
func New(initialScreen Screen) *Router {
	return &Router{
		stack: []Screen{initialScreen},
	}
}

// Init initializes the router
func (r *Router) Init() tea.Cmd {
	if len(r.stack) == 0 {
		return nil
	}
	return r.stack[len(r.stack)-1].Init()
}

// Update processes messages and updates the screens
func (r *Router) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case PushMsg:
		return r, r.push(msg.Screen)

	case PopMsg:
		r.pop()
		return r, nil

	case tea.WindowSizeMsg:
		r.width, r.height = msg.Width, msg.Height
		for _, s := range r.stack {
			s.SetSize(msg.Width, msg.Height)
		}
		return r, nil

	case tea.KeyMsg:
		if msg.String() == "esc" && len(r.stack) > 1 {
			r.pop()
			return r, nil
		}
		top := len(r.stack) - 1
		if top < 0 {
			return r, nil
		}
		updated, cmd := r.stack[top].Update(msg)
		r.stack[top] = updated
		return r, cmd
	}

	cmds := make([]tea.Cmd, 0, len(r.stack))
	for i, s := range r.stack {
		updated, cmd := s.Update(msg)
		r.stack[i] = updated
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return r, tea.Batch(cmds...)
}

// View renders the top screen
func (r *Router) View() string {
	if len(r.stack) == 0 {
		return "No screen available"
	}
	return r.stack[len(r.stack)-1].View()
}

func (r *Router) push(screen Screen) tea.Cmd {
	screen.SetSize(r.width, r.height)
	r.stack = append(r.stack, screen)
	return screen.Init()
}

// pop keeps the root screen. The screen underneath is not re-initialised,
// it has been receiving updates all along.
func (r *Router) pop() {
	if len(r.stack) <= 1 {
		return
	}
	r.stack = r.stack[:len(r.stack)-1]
}

// Current returns the current screen
func (r *Router) Current() Screen {
	if len(r.stack) == 0 {
		return nil
	}
	return r.stack[len(r.stack)-1]
}

// Depth returns the current navigation depth
func (r *Router) Depth() int {
	return len(r.stack)
}
