// Package gesture turns per-frame landmark samples into rate-limited game commands.
package gesture

// Action is a discrete game command.
type Action string

const (
	// Neutral is the only action treated as "no input".
	Neutral Action = "NEUTRAL"
	Jump    Action = "JUMP"
	Duck    Action = "DUCK"
	Left    Action = "LEFT"
	Right   Action = "RIGHT"
	Pause   Action = "PAUSE"
)

// Movements are the actions counted in session statistics.
var Movements = []Action{Jump, Duck, Left, Right}

// IsNeutral reports whether a is NEUTRAL (or unset).
func (a Action) IsNeutral() bool {
	return a == Neutral || a == ""
}

// String implements fmt.Stringer.
func (a Action) String() string {
	if a == "" {
		return string(Neutral)
	}
	return string(a)
}

// KeyMap maps actions to the key names understood by the keyboard effector.
type KeyMap map[Action]string

// DefaultKeyMap returns arrow keys for movement and escape for pause.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Jump:  "up",
		Duck:  "down",
		Left:  "left",
		Right: "right",
		Pause: "esc",
	}
}

// Key returns the key bound to a, or false if a has no binding.
func (m KeyMap) Key(a Action) (string, bool) {
	k, ok := m[a]
	return k, ok && k != ""
}
