// Package ui provides the terminal UI components built on Bubbletea.
package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	menuTitleStyle    = lipgloss.NewStyle().MarginLeft(2).Bold(true).Foreground(ColorBlue)
	itemStyle         = lipgloss.NewStyle().PaddingLeft(4)
	selectedItemStyle = lipgloss.NewStyle().PaddingLeft(2).Foreground(ColorBlue)
	itemDescStyle     = lipgloss.NewStyle().Foreground(ColorGray)
	paginationStyle   = list.DefaultStyles().PaginationStyle.PaddingLeft(4)
	menuHelpStyle     = list.DefaultStyles().HelpStyle.PaddingLeft(4).PaddingBottom(1)
	quitTextStyle     = lipgloss.NewStyle().Margin(1, 0, 2, 4)
)

// MenuItem is one selectable action in the menu
type MenuItem struct {
	title       string
	description string
	action      string
}

// NewMenuItem creates a menu item with an action identifier
func NewMenuItem(title, description, action string) MenuItem {
	return MenuItem{
		title:       title,
		description: description,
		action:      action,
	}
}

// Title returns the menu item title
func (i MenuItem) Title() string { return i.title }

// Description returns the menu item description
func (i MenuItem) Description() string { return i.description }

// FilterValue returns the value to filter on
func (i MenuItem) FilterValue() string { return i.title }

// Action returns the action identifier for this menu item
func (i MenuItem) Action() string { return i.action }

// MenuModel is the interactive action menu
type MenuModel struct {
	list     list.Model
	choice   string
	quitting bool
}

// NewMenu creates a menu with the given title and items
func NewMenu(title string, items []MenuItem) MenuModel {
	const defaultWidth = 80

	listItems := make([]list.Item, len(items))
	for i, item := range items {
		listItems[i] = item
	}

	height := len(items) + 6

	l := list.New(listItems, menuItemDelegate{}, defaultWidth, height)
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = menuTitleStyle
	l.Styles.PaginationStyle = paginationStyle
	l.Styles.HelpStyle = menuHelpStyle

	return MenuModel{list: l}
}

// Init initializes the menu model
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles menu input
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)

		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", keyCtrlC, keyEsc:
			m.quitting = true

			return m, tea.Quit

		case keyEnter:
			if item, ok := m.list.SelectedItem().(MenuItem); ok {
				m.choice = item.Action()
			}

			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)

	return m, cmd
}

// View renders the menu
func (m MenuModel) View() string {
	if m.quitting && m.choice == "" {
		return quitTextStyle.Render("Canceled")
	}

	return "\n" + m.list.View()
}

// Choice returns the selected action, empty if the menu was canceled
func (m MenuModel) Choice() string {
	return m.choice
}

// menuItemDelegate renders menu items with their descriptions inline
type menuItemDelegate struct{}

func (d menuItemDelegate) Height() int                             { return 1 }
func (d menuItemDelegate) Spacing() int                            { return 0 }
func (d menuItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d menuItemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(MenuItem)
	if !ok {
		return
	}

	line := item.Title()
	if item.Description() != "" {
		line += itemDescStyle.Render("  " + item.Description())
	}

	fn := itemStyle.Render
	if index == m.Index() {
		fn = func(s ...string) string {
			return selectedItemStyle.Render("▸ " + s[0])
		}
	}

	//nolint:errcheck // Error writing to writer is not actionable in render function
	fmt.Fprint(w, fn(line))
}
