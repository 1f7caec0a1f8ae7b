package component

import (
	"fmt"
	"strings"

	"github.com/rovshanmuradov/token-pulse/internal/ui/style"
)

// Tab is one entry of the tab strip
type Tab struct {
	Key   string
	Label string
	Count int
}

// Tabs renders a horizontal strip with one active tab
type Tabs struct {
	tabs   []Tab
	active string
}

func NewTabs() *Tabs {
	return &Tabs{}
}

// SetTabs replaces the entries, keeping the active key
func (t *Tabs) SetTabs(tabs []Tab) *Tabs {
	t.tabs = tabs
	return t
}

// SetActive marks the tab with the given key
func (t *Tabs) SetActive(key string) *Tabs {
	t.active = key
	return t
}

// Active returns the key of the active tab
func (t *Tabs) Active() string {
	return t.active
}

func (t *Tabs) View() string {
	parts := make([]string, 0, len(t.tabs))
	for _, tab := range t.tabs {
		label := tab.Label + style.TabCountStyle.Render(fmt.Sprintf(" (%d)", tab.Count))
		if tab.Key == t.active {
			label = style.TabActiveStyle.Render(fmt.Sprintf("%s (%d)", tab.Label, tab.Count))
		} else {
			label = style.TabStyle.Render(label)
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, " ")
}
