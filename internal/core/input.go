package core

// Action represents a semantic game action, abstracted from physical key presses.
// Games work with intents; the platform owns the key bindings.
type Action int

const (
	ActionNone    Action = iota
	ActionLeft           // Left arrow, H - move cursor / tilt left
	ActionRight          // Right arrow, L - move cursor / tilt right
	ActionUp             // Up arrow - move cursor / tilt forward
	ActionDown           // Down arrow - move cursor / tilt back
	ActionTap            // Space - tap at the cursor (pop, wipe, rake)
	ActionLane1          // D, 1 - rhythm lane 1
	ActionLane2          // F, 2 - rhythm lane 2
	ActionLane3          // J, 3 - rhythm lane 3
	ActionLane4          // K, 4 - rhythm lane 4
	ActionShake          // S - shake the device
	ActionBlow           // B, V - blow into the microphone
	ActionMouth          // M - toggle mouth open
	ActionCycle          // C - cycle a visual option (mirror frame)
	ActionClear          // X - clear drawings
	ActionGrow           // + - bigger tool
	ActionShrink         // - - smaller tool
	ActionConfirm        // Enter - start / confirm
	ActionBack           // Esc - go back to menu
	ActionRestart        // R - restart after game over
	ActionQuit           // Q, Ctrl+C - exit game/session
	ActionPause          // P - pause/unpause game
)

var actionNames = map[Action]string{
	ActionNone:    "None",
	ActionLeft:    "Left",
	ActionRight:   "Right",
	ActionUp:      "Up",
	ActionDown:    "Down",
	ActionTap:     "Tap",
	ActionLane1:   "Lane1",
	ActionLane2:   "Lane2",
	ActionLane3:   "Lane3",
	ActionLane4:   "Lane4",
	ActionShake:   "Shake",
	ActionBlow:    "Blow",
	ActionMouth:   "Mouth",
	ActionCycle:   "Cycle",
	ActionClear:   "Clear",
	ActionGrow:    "Grow",
	ActionShrink:  "Shrink",
	ActionConfirm: "Confirm",
	ActionBack:    "Back",
	ActionRestart: "Restart",
	ActionQuit:    "Quit",
	ActionPause:   "Pause",
}

// String returns a human-readable name for the action.
func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "Unknown"
}

// Lane returns the zero-based rhythm lane for a lane action.
func (a Action) Lane() (int, bool) {
	if a >= ActionLane1 && a <= ActionLane4 {
		return int(a - ActionLane1), true
	}
	return 0, false
}

// InputFrame is the input collected during one simulation tick.
type InputFrame struct {
	// Actions maps action types to whether they were triggered this frame.
	Actions map[Action]bool

	// Taps are mouse presses in screen cells, in arrival order.
	Taps []Point

	// Drags are mouse motion samples with a button held, in arrival order.
	Drags []Point
}

// NewInputFrame creates an empty input frame.
func NewInputFrame() InputFrame {
	return InputFrame{
		Actions: make(map[Action]bool),
	}
}

// Set marks an action as triggered for this frame.
func (f *InputFrame) Set(a Action) {
	if f.Actions == nil {
		f.Actions = make(map[Action]bool)
	}
	f.Actions[a] = true
}

// Has returns true if the given action was triggered this frame.
func (f InputFrame) Has(a Action) bool {
	if f.Actions == nil {
		return false
	}
	return f.Actions[a]
}

// Tap records a mouse press at (x, y).
func (f *InputFrame) Tap(x, y int) {
	f.Taps = append(f.Taps, Point{X: x, Y: y})
}

// Drag records a mouse drag sample at (x, y).
func (f *InputFrame) Drag(x, y int) {
	f.Drags = append(f.Drags, Point{X: x, Y: y})
}

// Lanes returns the rhythm lanes pressed this frame in lane order.
func (f InputFrame) Lanes() []int {
	var lanes []int
	for a := ActionLane1; a <= ActionLane4; a++ {
		if f.Has(a) {
			lane, _ := a.Lane()
			lanes = append(lanes, lane)
		}
	}
	return lanes
}

// Empty reports whether nothing happened this frame.
func (f InputFrame) Empty() bool {
	return len(f.Actions) == 0 && len(f.Taps) == 0 && len(f.Drags) == 0
}

// Clear resets all input for the next frame.
func (f *InputFrame) Clear() {
	for k := range f.Actions {
		delete(f.Actions, k)
	}
	f.Taps = f.Taps[:0]
	f.Drags = f.Drags[:0]
}

// Clone creates a deep copy of this input frame.
func (f InputFrame) Clone() InputFrame {
	clone := NewInputFrame()
	for k, v := range f.Actions {
		clone.Actions[k] = v
	}
	clone.Taps = append([]Point(nil), f.Taps...)
	clone.Drags = append([]Point(nil), f.Drags...)
	return clone
}
