package calibration

import (
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ayusman/airrunner/internal/gesture"
)

// Phase is the stage of a calibration session.
type Phase string

const (
	PhasePrepare Phase = "prepare"
	PhaseRecord  Phase = "record"
	PhaseDone    Phase = "done"
	PhaseFailed  Phase = "failed"
	PhaseAborted Phase = "aborted"
)

// Terminal reports whether no further samples are accepted.
func (p Phase) Terminal() bool {
	return p == PhaseDone || p == PhaseFailed || p == PhaseAborted
}

var (
	// ErrAborted is returned by Result after Cancel.
	ErrAborted = errors.New("calibration aborted")
	// ErrNotFinished is returned by Result before the last step completes.
	ErrNotFinished = errors.New("calibration not finished")
)

// Config holds phase durations and the frame size used for pixel conversion.
type Config struct {
	Prepare     time.Duration
	Record      time.Duration
	FrameWidth  int
	FrameHeight int
}

// DefaultConfig returns 3 s phases on a 640x480 frame.
func DefaultConfig() Config {
	return Config{
		Prepare:     3 * time.Second,
		Record:      3 * time.Second,
		FrameWidth:  640,
		FrameHeight: 480,
	}
}

// Progress describes where a session is, for display.
type Progress struct {
	Step      gesture.Action `json:"step"`
	StepIndex int            `json:"stepIndex"`
	Steps     int            `json:"steps"`
	Phase     Phase          `json:"phase"`
	Remaining time.Duration  `json:"remaining"`
	Samples   int            `json:"samples"`
	Present   bool           `json:"present"`
}

// Session is the guided recording state machine. It is driven by the
// processing loop and is not safe for concurrent use.
type Session struct {
	cfg     Config
	step    int
	phase   Phase
	started bool
	// phaseStart is shifted forward while Prepare is held.
	phaseStart time.Time
	lastTick   time.Time
	present    bool

	record *Record
	// counts is kept after a successful derive releases record.
	counts map[gesture.Action]int
	result gesture.ThresholdSet
	err    error

	onPhase func(Progress)
}

// NewSession returns a session positioned at the first step's Prepare phase.
// Zero durations or frame dimensions fall back to DefaultConfig values.
func NewSession(cfg Config) *Session {
	def := DefaultConfig()
	if cfg.Prepare <= 0 {
		cfg.Prepare = def.Prepare
	}
	if cfg.Record <= 0 {
		cfg.Record = def.Record
	}
	if cfg.FrameWidth <= 0 || cfg.FrameHeight <= 0 {
		cfg.FrameWidth, cfg.FrameHeight = def.FrameWidth, def.FrameHeight
	}
	return &Session{
		cfg:    cfg,
		phase:  PhasePrepare,
		record: NewRecord(),
	}
}

// OnPhase registers fn to be called on every phase change.
func (s *Session) OnPhase(fn func(Progress)) {
	s.onPhase = fn
}

// Observe advances the session by one frame. sample is nil when no control
// point was detected in the frame.
func (s *Session) Observe(sample *gesture.Sample, now time.Time) Progress {
	if s.phase.Terminal() {
		return s.progress(now)
	}
	if !s.started {
		s.started = true
		s.phaseStart = now
		s.lastTick = now
	}
	elapsed := now.Sub(s.lastTick)
	if elapsed < 0 {
		elapsed = 0
	}
	s.lastTick = now
	s.present = sample != nil

	switch s.phase {
	case PhasePrepare:
		if sample == nil {
			s.phaseStart = s.phaseStart.Add(elapsed)
		}
		if now.Sub(s.phaseStart) >= s.cfg.Prepare {
			s.enter(PhaseRecord, now)
		}
	case PhaseRecord:
		if now.Sub(s.phaseStart) >= s.cfg.Record {
			s.advance(now)
			break
		}
		if sample != nil {
			s.record.Add(Steps[s.step], Point{
				X: sample.X * float64(s.cfg.FrameWidth),
				Y: sample.Y * float64(s.cfg.FrameHeight),
			})
		}
	}
	return s.progress(now)
}

// Cancel aborts the session and discards everything recorded.
func (s *Session) Cancel() {
	if s.phase.Terminal() {
		return
	}
	s.record = nil
	s.err = ErrAborted
	s.enter(PhaseAborted, s.lastTick)
}

// Result returns the derived thresholds once the session has finished.
func (s *Session) Result() (gesture.ThresholdSet, error) {
	switch s.phase {
	case PhaseDone:
		return s.result, nil
	case PhaseFailed, PhaseAborted:
		return gesture.ThresholdSet{}, s.err
	default:
		return gesture.ThresholdSet{}, ErrNotFinished
	}
}

// Phase returns the current phase.
func (s *Session) Phase() Phase {
	return s.phase
}

// Counts returns the number of points recorded per step so far.
func (s *Session) Counts() map[gesture.Action]int {
	if s.counts != nil {
		return s.counts
	}
	if s.record == nil {
		return map[gesture.Action]int{}
	}
	return s.record.Counts()
}

func (s *Session) advance(now time.Time) {
	if s.step+1 < len(Steps) {
		s.step++
		s.enter(PhasePrepare, now)
		return
	}
	s.result, s.err = Derive(s.record, s.cfg.FrameWidth, s.cfg.FrameHeight)
	if s.err != nil {
		log.Warn().Err(s.err).Interface("counts", s.record.Counts()).Msg("calibration derive failed")
		s.enter(PhaseFailed, now)
		return
	}
	log.Info().
		Float64("jump", s.result.Jump).
		Float64("duck", s.result.Duck).
		Float64("left", s.result.Left).
		Float64("right", s.result.Right).
		Msg("calibration derived thresholds")
	s.counts = s.record.Counts()
	s.record = nil
	s.enter(PhaseDone, now)
}

func (s *Session) enter(p Phase, now time.Time) {
	s.phase = p
	s.phaseStart = now
	if s.onPhase != nil {
		s.onPhase(s.progress(now))
	}
}

func (s *Session) progress(now time.Time) Progress {
	p := Progress{
		Step:      Steps[s.step],
		StepIndex: s.step,
		Steps:     len(Steps),
		Phase:     s.phase,
		Present:   s.present,
	}
	var limit time.Duration
	switch s.phase {
	case PhasePrepare:
		limit = s.cfg.Prepare
	case PhaseRecord:
		limit = s.cfg.Record
	}
	if limit > 0 {
		p.Remaining = limit - now.Sub(s.phaseStart)
		if p.Remaining < 0 {
			p.Remaining = 0
		}
	}
	if s.record != nil {
		p.Samples = len(s.record.Points(Steps[s.step]))
	}
	return p
}
