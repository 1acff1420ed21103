package gesture

import (
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultCooldown is the minimum interval between two accepted fires.
const DefaultCooldown = 150 * time.Millisecond

// KeySink receives the key for every accepted fire.
type KeySink interface {
	Press(key string) error
}

// GateState is the debounce memory carried between frames.
type GateState struct {
	// LastEffective is the last action the gate let through, or NEUTRAL.
	LastEffective Action
	// LastFire is when the gate last fired; zero means never.
	LastFire time.Time
}

// Evaluate runs one gate step and returns the next state, the effective
// action and whether the action fired.
//
// A non-NEUTRAL action fires only if the last effective action is NEUTRAL and
// the cooldown has elapsed since the last fire. A candidate held back by the
// cooldown leaves LastEffective at NEUTRAL, so the next frame retries without
// another return to neutral.
func (s GateState) Evaluate(raw Action, now time.Time, cooldown time.Duration) (GateState, Action, bool) {
	if raw.IsNeutral() {
		s.LastEffective = Neutral
		return s, Neutral, false
	}
	if !s.LastEffective.IsNeutral() {
		return s, Neutral, false
	}
	if !s.LastFire.IsZero() && now.Sub(s.LastFire) < cooldown {
		return s, Neutral, false
	}

	s.LastEffective = raw
	s.LastFire = now
	return s, raw, true
}

// Gate owns a GateState for one game session, counts accepted fires and
// forwards the mapped key to a sink.
type Gate struct {
	state    GateState
	cooldown time.Duration
	keys     KeyMap
	sink     KeySink
	stats    ActionStats
	onFire   func(Action)
}

// NewGate creates a Gate. A nil sink discards keys; a nil key map uses DefaultKeyMap.
func NewGate(cooldown time.Duration, sink KeySink, keys KeyMap) *Gate {
	if cooldown < 0 {
		cooldown = 0
	}
	if keys == nil {
		keys = DefaultKeyMap()
	}
	return &Gate{
		state:    GateState{LastEffective: Neutral},
		cooldown: cooldown,
		keys:     keys,
		sink:     sink,
		stats:    NewActionStats(),
	}
}

// OnFire registers a callback invoked after every accepted fire.
func (g *Gate) OnFire(fn func(Action)) {
	g.onFire = fn
}

// Evaluate gates one raw action at time now and returns the effective action.
// Sink failures are logged and do not roll back the stats or the cooldown.
func (g *Gate) Evaluate(raw Action, now time.Time) Action {
	next, out, fired := g.state.Evaluate(raw, now, g.cooldown)
	g.state = next
	if !fired {
		return out
	}

	g.stats.Record(out)

	if key, ok := g.keys.Key(out); ok && g.sink != nil {
		if err := g.sink.Press(key); err != nil {
			log.Warn().Err(err).Str("action", out.String()).Str("key", key).Msg("key press failed")
		}
	}
	if g.onFire != nil {
		g.onFire(out)
	}
	return out
}

// State returns a copy of the gate state.
func (g *Gate) State() GateState {
	return g.state
}

// Cooldown returns the configured cooldown.
func (g *Gate) Cooldown() time.Duration {
	return g.cooldown
}

// Stats returns a copy of the accumulated statistics.
func (g *Gate) Stats() ActionStats {
	return g.stats.Clone()
}
