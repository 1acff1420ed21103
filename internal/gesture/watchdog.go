package gesture

import "time"

// DefaultSilenceTimeout is how long tracking may be lost before auto-pause.
const DefaultSilenceTimeout = 2 * time.Second

// PresenceState tracks when a user was last detected.
type PresenceState struct {
	LastSeen time.Time
	Paused   bool
}

// Update records whether a sample was present at now. It returns the next
// state and whether this call started a pause episode, which happens at most
// once per episode.
func (s PresenceState) Update(present bool, now time.Time, timeout time.Duration) (PresenceState, bool) {
	if present {
		s.LastSeen = now
		s.Paused = false
		return s, false
	}
	if s.Paused {
		return s, false
	}
	if now.Sub(s.LastSeen) > timeout {
		s.Paused = true
		return s, true
	}
	return s, false
}

// Watchdog owns a PresenceState for one session.
type Watchdog struct {
	state   PresenceState
	timeout time.Duration
}

// NewWatchdog creates a Watchdog whose silence clock starts at start.
func NewWatchdog(timeout time.Duration, start time.Time) *Watchdog {
	if timeout <= 0 {
		timeout = DefaultSilenceTimeout
	}
	return &Watchdog{
		state:   PresenceState{LastSeen: start},
		timeout: timeout,
	}
}

// Update records presence at now. It returns whether the session is paused
// and whether the pause began on this call.
func (w *Watchdog) Update(present bool, now time.Time) (paused, began bool) {
	w.state, began = w.state.Update(present, now, w.timeout)
	return w.state.Paused, began
}

// State returns a copy of the presence state.
func (w *Watchdog) State() PresenceState {
	return w.state
}
