package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/pocket-arcade/internal/core"
)

// binding ties a key binding to the game action it produces.
type binding struct {
	key    key.Binding
	action core.Action
}

// KeyMap holds the in-game key bindings. The same keys drive the virtual
// device (arrows tilt, S shakes, B blows, M opens the mouth) and the games.
type KeyMap struct {
	Move    key.Binding
	Tap     key.Binding
	Lanes   key.Binding
	Shake   key.Binding
	Blow    key.Binding
	Mouth   key.Binding
	Cycle   key.Binding
	Clear   key.Binding
	Grow    key.Binding
	Shrink  key.Binding
	Confirm key.Binding
	Pause   key.Binding
	Restart key.Binding
	Back    key.Binding
	Quit    key.Binding

	actions []binding
}

// DefaultKeyMap returns the default in-game bindings.
func DefaultKeyMap() KeyMap {
	k := KeyMap{
		Move:    key.NewBinding(key.WithKeys("up", "down", "left", "right", "h", "l"), key.WithHelp("arrows", "tilt / cursor")),
		Tap:     key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "tap")),
		Lanes:   key.NewBinding(key.WithKeys("d", "f", "j", "k", "1", "2", "3", "4"), key.WithHelp("dfjk", "lanes")),
		Shake:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "shake")),
		Blow:    key.NewBinding(key.WithKeys("b", "v"), key.WithHelp("b", "blow")),
		Mouth:   key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mouth")),
		Cycle:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "cycle")),
		Clear:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear")),
		Grow:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "bigger")),
		Shrink:  key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "smaller")),
		Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "start")),
		Pause:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause")),
		Restart: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "restart")),
		Back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "menu")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}

	one := func(action core.Action, keys ...string) binding {
		return binding{key: key.NewBinding(key.WithKeys(keys...)), action: action}
	}
	k.actions = []binding{
		one(core.ActionLeft, "left", "h"),
		one(core.ActionRight, "right", "l"),
		one(core.ActionUp, "up"),
		one(core.ActionDown, "down"),
		one(core.ActionTap, " "),
		one(core.ActionLane1, "d", "1"),
		one(core.ActionLane2, "f", "2"),
		one(core.ActionLane3, "j", "3"),
		one(core.ActionLane4, "k", "4"),
		{k.Shake, core.ActionShake},
		{k.Blow, core.ActionBlow},
		{k.Mouth, core.ActionMouth},
		{k.Cycle, core.ActionCycle},
		{k.Clear, core.ActionClear},
		{k.Grow, core.ActionGrow},
		{k.Shrink, core.ActionShrink},
		{k.Confirm, core.ActionConfirm},
		{k.Pause, core.ActionPause},
		{k.Restart, core.ActionRestart},
		{k.Back, core.ActionBack},
		{k.Quit, core.ActionQuit},
	}
	return k
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Move, k.Tap, k.Pause, k.Back, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Move, k.Tap, k.Lanes, k.Confirm},
		{k.Shake, k.Blow, k.Mouth},
		{k.Cycle, k.Clear, k.Grow, k.Shrink},
		{k.Pause, k.Restart, k.Back, k.Quit},
	}
}

// Action translates a key message to a game action.
func (k KeyMap) Action(msg tea.KeyMsg) core.Action {
	for _, b := range k.actions {
		if key.Matches(msg, b.key) {
			return b.action
		}
	}
	return core.ActionNone
}

// MapKeyToFrame adds the action for msg to frame. Returns true if the key
// was a quit request.
func (k KeyMap) MapKeyToFrame(msg tea.KeyMsg, frame *core.InputFrame) bool {
	action := k.Action(msg)
	if action == core.ActionQuit {
		return true
	}
	if action != core.ActionNone {
		frame.Set(action)
	}
	return false
}

// MapMouseToFrame records left-button presses as taps and left-button
// motion as drags.
func MapMouseToFrame(msg tea.MouseMsg, frame *core.InputFrame) {
	if msg.Button != tea.MouseButtonLeft {
		return
	}
	switch msg.Action {
	case tea.MouseActionPress:
		frame.Tap(msg.X, msg.Y)
	case tea.MouseActionMotion:
		frame.Drag(msg.X, msg.Y)
	}
}

// MenuAction represents a menu-specific action derived from input.
type MenuAction int

const (
	MenuActionNone MenuAction = iota
	MenuActionUp
	MenuActionDown
	MenuActionSelect
	MenuActionScoreboard
	MenuActionBack
	MenuActionQuit
)

// MapKeyToMenuAction translates a key to a menu action.
func MapKeyToMenuAction(msg tea.KeyMsg) MenuAction {
	switch msg.String() {
	case "ctrl+c", "q":
		return MenuActionQuit
	case "w", "up", "k":
		return MenuActionUp
	case "s", "down", "j":
		return MenuActionDown
	case "enter", " ":
		return MenuActionSelect
	case "tab":
		return MenuActionScoreboard
	case "b", "esc":
		return MenuActionBack
	}
	return MenuActionNone
}
