// Package app runs AirRunner's frame loop: game sessions that turn body or
// hand position into key presses, and the guided calibration that tunes the
// trigger lines.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ayusman/airrunner/internal/calibration"
	"github.com/ayusman/airrunner/internal/capture"
	"github.com/ayusman/airrunner/internal/detector"
	"github.com/ayusman/airrunner/internal/effector"
	"github.com/ayusman/airrunner/internal/gesture"
	"github.com/ayusman/airrunner/internal/plugin"
	"github.com/ayusman/airrunner/internal/store"
)

// Defaults for unset Config fields.
const (
	DefaultFrameInterval = time.Second / capture.DefaultFPS
	DefaultCountdown     = 4 * time.Second
	// MaxFrameFailures consecutive camera or detector errors end the run.
	MaxFrameFailures = 30
)

var (
	// ErrSessionRunning is returned when a session or calibration is already active.
	ErrSessionRunning = errors.New("a session or calibration is already running")
	// ErrNoSession is returned when stopping while no game session runs.
	ErrNoSession = errors.New("no game session running")
	// ErrNoCalibration is returned when canceling while no calibration runs.
	ErrNoCalibration = errors.New("no calibration running")
	// ErrFrameSource is recorded when the camera or detector keeps failing.
	ErrFrameSource = errors.New("camera or detector unavailable")
)

// Config wires the application. Store is required; everything else has a
// working default.
type Config struct {
	Store    *store.Store
	Plugins  *plugin.Manager
	Executor *plugin.Executor

	// Camera is used as-is when set. Otherwise a mirrored camera is opened
	// per run on CameraIndex, or on the stored camera_index when CameraIndex
	// is negative.
	Camera      capture.Camera
	CameraIndex int

	// NewDetector builds the landmark detector for a mode. The default runs
	// the MediaPipe service.
	NewDetector func(detector.Mode) (detector.Detector, error)

	// Keys and Cues override the plugin-backed effect queues.
	Keys gesture.KeySink
	Cues CueSink

	FrameInterval  time.Duration
	Countdown      time.Duration
	SilenceTimeout time.Duration
	Calibration    calibration.Config
	QueueSize      int

	// Now is the clock; tests inject a fake one.
	Now func() time.Time
}

// run is the state of one session or calibration. It is only touched with
// App.mu held.
type run struct {
	kind       Kind
	mode       detector.Mode
	camera     capture.Camera
	detector   detector.Detector
	classifier *gesture.Classifier
	thresholds gesture.ThresholdSet
	sound      bool
	started    time.Time
	readyUntil time.Time

	gate     *gesture.Gate
	watchdog *gesture.Watchdog
	paused   bool

	calib *calibration.Session

	failures int
}

// App owns the frame loop and the active run.
type App struct {
	cfg  Config
	keys gesture.KeySink
	cues CueSink
	own  dispatchers

	mu              sync.Mutex
	run             *run
	detectors       map[detector.Mode]detector.Detector
	lastAction      gesture.Action
	lastState       FrameState
	lastReport      *gesture.Report
	lastCalibration *CalibrationOutcome
	lastErr         error

	frameMu sync.RWMutex
	jpeg    []byte

	subMu sync.Mutex
	subs  map[chan FrameState]struct{}
}

// New creates an App. The frame loop does not run until Run is called.
func New(cfg Config) (*App, error) {
	if cfg.Store == nil {
		return nil, errors.New("app: store is required")
	}
	if cfg.FrameInterval <= 0 {
		cfg.FrameInterval = DefaultFrameInterval
	}
	if cfg.Countdown < 0 {
		cfg.Countdown = 0
	}
	if cfg.SilenceTimeout <= 0 {
		cfg.SilenceTimeout = gesture.DefaultSilenceTimeout
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = effector.DefaultQueueSize
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewDetector == nil {
		cfg.NewDetector = defaultDetector
	}

	a := &App{
		cfg:       cfg,
		keys:      cfg.Keys,
		cues:      cfg.Cues,
		detectors: make(map[detector.Mode]detector.Detector),
		subs:      make(map[chan FrameState]struct{}),
	}
	if a.keys == nil {
		d := pluginDispatcher(cfg.Plugins, cfg.Executor, "keyboard", effector.Keyboard, cfg.QueueSize)
		a.keys = d
		a.own = append(a.own, d)
	}
	if a.cues == nil {
		d := pluginDispatcher(cfg.Plugins, cfg.Executor, "sound", effector.Sound, cfg.QueueSize)
		a.cues = d
		a.own = append(a.own, d)
	}
	return a, nil
}

// defaultDetector uses MediaPipe and falls back to a detector that never
// sees anyone, so the UI still runs without the Python service.
func defaultDetector(mode detector.Mode) (detector.Detector, error) {
	cfg := detector.DefaultConfig()
	cfg.Mode = mode
	mp, err := detector.NewMediaPipeDetector(cfg)
	if err != nil {
		log.Warn().Err(err).Msg("MediaPipe not available, using mock detector")
		return detector.NewMockDetector(), nil
	}
	return mp, nil
}

// StartSession begins a game session in mode, or in the stored mode when
// mode is empty. Input is ignored until the READY countdown ends.
func (a *App) StartSession(mode detector.Mode) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.run != nil {
		return ErrSessionRunning
	}
	settings, err := a.cfg.Store.Settings().Load()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	r, err := a.prepareRunLocked(KindSession, mode, settings)
	if err != nil {
		return err
	}

	r.readyUntil = r.started.Add(a.cfg.Countdown)
	r.gate = gesture.NewGate(settings.Cooldown(), a.keys, nil)
	r.watchdog = gesture.NewWatchdog(a.cfg.SilenceTimeout, r.readyUntil)
	if r.sound {
		r.gate.OnFire(func(act gesture.Action) { a.cue(cueFor(act)) })
	}

	a.run = r
	a.lastState = FrameState{}
	a.lastErr = nil
	if r.sound {
		a.cue(CueStart)
	}
	log.Info().
		Str("mode", string(r.mode)).
		Interface("thresholds", r.thresholds).
		Dur("cooldown", settings.Cooldown()).
		Msg("session started")
	return nil
}

// StopSession ends the game session, saves it to history and returns its
// report. The report is returned even when saving fails.
func (a *App) StopSession() (gesture.Report, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.run == nil || a.run.kind != KindSession {
		return gesture.Report{}, ErrNoSession
	}
	return a.finishSessionLocked(a.cfg.Now())
}

// StartCalibration begins the guided calibration in mode, or in the stored
// mode when mode is empty.
func (a *App) StartCalibration(mode detector.Mode) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.run != nil {
		return ErrSessionRunning
	}
	settings, err := a.cfg.Store.Settings().Load()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	r, err := a.prepareRunLocked(KindCalibration, mode, settings)
	if err != nil {
		return err
	}

	calCfg := a.cfg.Calibration
	calCfg.FrameWidth, calCfg.FrameHeight = r.camera.Size()
	r.calib = calibration.NewSession(calCfg)
	r.calib.OnPhase(func(p calibration.Progress) {
		log.Info().
			Str("step", string(p.Step)).
			Str("phase", string(p.Phase)).
			Int("samples", p.Samples).
			Msg("calibration phase")
		if r.sound && p.Phase == calibration.PhasePrepare {
			a.cue(CueCountdown)
		}
	})

	a.run = r
	a.lastState = FrameState{}
	a.lastErr = nil
	if r.sound {
		a.cue(CueCountdown)
	}
	log.Info().Str("mode", string(r.mode)).Msg("calibration started")
	return nil
}

// CancelCalibration aborts the running calibration. Nothing is saved.
func (a *App) CancelCalibration() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	r := a.run
	if r == nil || r.kind != KindCalibration {
		return ErrNoCalibration
	}
	r.calib.Cancel()
	a.finishCalibrationLocked(r, a.cfg.Now())
	return nil
}

// SetThresholds validates and stores t, and applies it to the running
// session immediately.
func (a *App) SetThresholds(t gesture.ThresholdSet) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if err := a.cfg.Store.Settings().SaveThresholds(t); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.run != nil && a.run.kind == KindSession {
		a.run.thresholds = t
	}
	return nil
}

// Status returns a snapshot for the API and the tray.
func (a *App) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := Status{
		Kind:            KindIdle,
		LastAction:      a.lastAction,
		LastCalibration: a.lastCalibration,
		LastReport:      a.lastReport,
	}
	if s.LastAction == "" {
		s.LastAction = gesture.Neutral
	}
	if a.lastErr != nil {
		s.LastError = a.lastErr.Error()
	}

	r := a.run
	if r == nil {
		return s
	}
	started := r.started
	s.Kind = r.kind
	s.Mode = r.mode
	s.StartedAt = &started
	switch r.kind {
	case KindSession:
		s.Paused = r.paused
		s.Stats = a.statsLocked(r, a.cfg.Now()).Report()
	case KindCalibration:
		s.Calibration = a.lastState.Calibration
	}
	return s
}

// LatestJPEG returns the most recent annotated frame, or nil.
func (a *App) LatestJPEG() []byte {
	a.frameMu.RLock()
	defer a.frameMu.RUnlock()
	return a.jpeg
}

// Subscribe returns a channel receiving every published FrameState and a
// function that unsubscribes. Slow subscribers miss frames.
func (a *App) Subscribe() (<-chan FrameState, func()) {
	ch := make(chan FrameState, 8)
	a.subMu.Lock()
	a.subs[ch] = struct{}{}
	a.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			a.subMu.Lock()
			delete(a.subs, ch)
			a.subMu.Unlock()
			close(ch)
		})
	}
}

// Close ends any run, drains the effect queues and releases detectors.
func (a *App) Close(ctx context.Context) error {
	a.mu.Lock()
	if r := a.run; r != nil {
		switch r.kind {
		case KindSession:
			if _, err := a.finishSessionLocked(a.cfg.Now()); err != nil {
				log.Warn().Err(err).Msg("failed to save session on shutdown")
			}
		case KindCalibration:
			r.calib.Cancel()
			a.finishCalibrationLocked(r, a.cfg.Now())
		}
	}
	var errs []error
	for mode, d := range a.detectors {
		if err := d.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s detector: %w", mode, err))
		}
	}
	a.detectors = make(map[detector.Mode]detector.Detector)
	a.mu.Unlock()

	a.own.close(ctx)
	return errors.Join(errs...)
}

// prepareRunLocked resolves the mode, detector and camera for a new run and
// opens the camera.
func (a *App) prepareRunLocked(kind Kind, mode detector.Mode, settings store.Settings) (*run, error) {
	if mode == "" {
		mode = settings.Mode
	}
	mode, err := detector.ParseMode(string(mode))
	if err != nil {
		return nil, err
	}

	det, err := a.detectorLocked(mode)
	if err != nil {
		return nil, err
	}

	cam := a.cfg.Camera
	if cam == nil {
		c := capture.DefaultConfig()
		c.DeviceID = settings.CameraIndex
		if a.cfg.CameraIndex >= 0 {
			c.DeviceID = a.cfg.CameraIndex
		}
		cam = capture.NewCamera(c)
	}
	if err := cam.Open(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFrameSource, err)
	}

	return &run{
		kind:       kind,
		mode:       mode,
		camera:     cam,
		detector:   det,
		classifier: gesture.NewClassifier(gesture.ExtractorFor(mode)),
		thresholds: settings.Thresholds(),
		sound:      settings.SoundEnabled,
		started:    a.cfg.Now(),
	}, nil
}

func (a *App) detectorLocked(mode detector.Mode) (detector.Detector, error) {
	if d, ok := a.detectors[mode]; ok {
		return d, nil
	}
	d, err := a.cfg.NewDetector(mode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFrameSource, err)
	}
	a.detectors[mode] = d
	return d, nil
}

// statsLocked returns the session statistics with the time played so far.
// Time spent in the READY countdown does not count.
func (a *App) statsLocked(r *run, now time.Time) gesture.ActionStats {
	stats := r.gate.Stats()
	if now.After(r.readyUntil) {
		stats.Duration = now.Sub(r.readyUntil)
	}
	return stats
}

func (a *App) finishSessionLocked(now time.Time) (gesture.Report, error) {
	r := a.run
	a.run = nil
	a.closeCamera(r)

	report := a.statsLocked(r, now).Report()
	a.lastReport = &report
	log.Info().
		Int("jump", report.Jump).
		Int("duck", report.Duck).
		Int("left", report.Left).
		Int("right", report.Right).
		Int("seconds", report.TotalTime).
		Msg("session stopped")

	rec := store.NewSessionRecord(string(r.mode), report)
	if err := a.cfg.Store.Sessions().Create(rec); err != nil {
		return report, fmt.Errorf("save session: %w", err)
	}
	return report, nil
}

// finishCalibrationLocked applies a successful result and records the
// outcome. Aborted and failed calibrations write nothing.
func (a *App) finishCalibrationLocked(r *run, now time.Time) {
	a.run = nil
	a.closeCamera(r)

	outcome := &CalibrationOutcome{At: now}
	a.lastCalibration = outcome

	t, err := r.calib.Result()
	if err == nil {
		err = a.applyCalibrationLocked(r, t)
	}
	if err != nil {
		outcome.Error = err.Error()
		if !errors.Is(err, calibration.ErrAborted) && r.sound {
			a.cue(CueAlert)
		}
		log.Warn().Err(err).Msg("calibration ended without a result")
		return
	}

	outcome.Success = true
	outcome.Thresholds = &t
	if r.sound {
		a.cue(CueSuccess)
	}
}

func (a *App) applyCalibrationLocked(r *run, t gesture.ThresholdSet) error {
	if err := a.cfg.Store.Settings().SaveThresholds(t); err != nil {
		return fmt.Errorf("save thresholds: %w", err)
	}
	counts := make(map[string]int)
	for step, n := range r.calib.Counts() {
		counts[string(step)] = n
	}
	rec := &store.CalibrationRecord{Mode: string(r.mode), Thresholds: t, Counts: counts}
	if err := a.cfg.Store.Calibrations().Create(rec); err != nil {
		// The thresholds are already applied; only the history entry is lost.
		log.Warn().Err(err).Msg("failed to record calibration")
	}
	return nil
}

func (a *App) closeCamera(r *run) {
	if err := r.camera.Close(); err != nil {
		log.Warn().Err(err).Msg("error closing camera")
	}
}

func (a *App) cue(name string) {
	if a.cues == nil {
		return
	}
	if err := a.cues.Play(name); err != nil {
		log.Debug().Err(err).Str("cue", name).Msg("cue not played")
	}
}
