package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/pocket-arcade/internal/core"
	"github.com/vovakirdan/pocket-arcade/internal/registry"
	"github.com/vovakirdan/pocket-arcade/internal/session"
	"github.com/vovakirdan/pocket-arcade/internal/storage"
)

// MenuItem is one entry of the game picker.
type MenuItem struct {
	GameID string
	Title  string
	Toy    bool
	Best   string // formatted best score, empty for toys and unplayed games
}

// MenuModel lets the player pick a game or open the scoreboard.
type MenuModel struct {
	items  []MenuItem
	cursor int
	config core.RuntimeConfig

	quitting   bool
	picked     *MenuItem
	showScores bool
}

var (
	menuTitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	menuHeadingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("99")).Underline(true)
	menuItemStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	menuCurStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	menuDimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	menuPanel        = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("62")).
				Padding(1, 3)
)

// NewMenuModel lists every registered game, ranked games first. Best
// scores come from store when it is set.
func NewMenuModel(store *storage.Store, cfg core.RuntimeConfig) MenuModel {
	var ranked, toys []MenuItem
	for _, g := range registry.List() {
		if g.Order == session.Unranked {
			toys = append(toys, MenuItem{GameID: g.ID, Title: g.Title, Toy: true})
			continue
		}
		item := MenuItem{GameID: g.ID, Title: g.Title}
		if store != nil {
			if best, ok, err := store.BestScore(g.ID, g.Order); err == nil && ok {
				item.Best = registry.FormatScore(g.ID, best)
			}
		}
		ranked = append(ranked, item)
	}
	return MenuModel{items: append(ranked, toys...), config: cfg}
}

func (m MenuModel) Init() tea.Cmd { return nil }

func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.config.ScreenW, m.config.ScreenH = msg.Width, msg.Height
	case tea.KeyMsg:
		return m.onKey(MapKeyToMenuAction(msg))
	}
	return m, nil
}

func (m MenuModel) onKey(action MenuAction) (tea.Model, tea.Cmd) {
	n := len(m.items)
	switch action {
	case MenuActionQuit:
		m.quitting = true
		return m, tea.Quit
	case MenuActionUp:
		if n > 0 {
			m.cursor = (m.cursor - 1 + n) % n
		}
	case MenuActionDown:
		if n > 0 {
			m.cursor = (m.cursor + 1) % n
		}
	case MenuActionSelect:
		if n > 0 {
			item := m.items[m.cursor]
			m.picked = &item
		}
	case MenuActionScoreboard:
		m.showScores = true
	}
	return m, nil
}

func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	var list strings.Builder
	heading := ""
	for i, item := range m.items {
		if h := sectionOf(item); h != heading {
			if heading != "" {
				list.WriteString("\n")
			}
			heading = h
			list.WriteString(menuHeadingStyle.Render(h) + "\n")
		}
		style, mark := menuItemStyle, "  "
		if i == m.cursor {
			style, mark = menuCurStyle, "▸ "
		}
		line := style.Render(fmt.Sprintf("%s%-16s", mark, item.Title))
		if item.Best != "" {
			line += menuDimStyle.Render("best " + item.Best)
		}
		list.WriteString(line + "\n")
	}

	w := m.config.ScreenW
	lines := []string{
		"",
		centerText(menuTitleStyle.Render("P O C K E T   A R C A D E"), w),
		"",
		centerBlock(menuPanel.Render(strings.TrimRight(list.String(), "\n")), w),
		"",
		centerText(menuDimStyle.Render("↑/↓ move · enter play · tab scores · q quit"), w),
	}
	return strings.Join(lines, "\n") + "\n"
}

func sectionOf(item MenuItem) string {
	if item.Toy {
		return "Toys"
	}
	return "Games"
}

// Selected returns the picked entry, or nil before a pick.
func (m MenuModel) Selected() *MenuItem { return m.picked }

// IsQuitting reports whether the player quit from the menu.
func (m MenuModel) IsQuitting() bool { return m.quitting }

// WantsScoreboard reports whether the player asked for the scoreboard.
func (m MenuModel) WantsScoreboard() bool { return m.showScores }

// Config returns the runtime config updated with the last window size.
func (m MenuModel) Config() core.RuntimeConfig { return m.config }

// Items returns the menu entries in display order.
func (m MenuModel) Items() []MenuItem { return m.items }

// centerText pads a single line so it sits in the middle of width.
func centerText(text string, width int) string {
	w := lipgloss.Width(text)
	if w >= width {
		return text
	}
	return strings.Repeat(" ", (width-w)/2) + text
}

// centerBlock centers every line of a multi-line block as one unit.
func centerBlock(block string, width int) string {
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, block)
}
