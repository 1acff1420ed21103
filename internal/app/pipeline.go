package app

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gocv.io/x/gocv"

	"github.com/ayusman/airrunner/internal/calibration"
	"github.com/ayusman/airrunner/internal/capture"
	"github.com/ayusman/airrunner/internal/detector"
	"github.com/ayusman/airrunner/internal/gesture"
)

// Run drives the frame loop until ctx is done. Frames are only read while a
// session or calibration is active.
func (a *App) Run(ctx context.Context) error {
	ticker := time.NewTicker(a.cfg.FrameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			a.tick()
		}
	}
}

// tick reads and detects one frame without holding the lock, then applies
// it to the run it was read for.
func (a *App) tick() {
	a.mu.Lock()
	r := a.run
	a.mu.Unlock()
	if r == nil {
		return
	}

	frame, err := r.camera.ReadFrame()
	if frame != nil {
		defer frame.Close()
	}
	var dets []detector.Landmarks
	if err == nil {
		dets, err = r.detector.Detect(frame)
	}

	a.mu.Lock()
	state, ok := a.processLocked(r, dets, err, a.cfg.Now())
	a.mu.Unlock()
	if !ok {
		return
	}

	if frame != nil {
		a.render(frame, state)
	}
	a.publish(state)
}

// processLocked applies one frame's detections to r. It reports false when
// the frame produced no state, either because r is no longer the active run
// or because the frame failed.
func (a *App) processLocked(r *run, dets []detector.Landmarks, frameErr error, now time.Time) (FrameState, bool) {
	if r == nil || a.run != r {
		return FrameState{}, false
	}

	if frameErr != nil {
		r.failures++
		log.Debug().Err(frameErr).Int("failures", r.failures).Msg("frame failed")
		if r.failures >= MaxFrameFailures {
			a.lastErr = fmt.Errorf("%w: %v", ErrFrameSource, frameErr)
			log.Error().Err(frameErr).Str("kind", string(r.kind)).Msg("too many frame failures, stopping")
			a.abortLocked(r, now)
		}
		return FrameState{}, false
	}
	r.failures = 0

	var st FrameState
	switch r.kind {
	case KindSession:
		st = a.stepSession(r, dets, now)
	case KindCalibration:
		st = a.stepCalibration(r, dets, now)
	}
	a.lastState = st
	return st, true
}

func (a *App) abortLocked(r *run, now time.Time) {
	switch r.kind {
	case KindSession:
		if _, err := a.finishSessionLocked(now); err != nil {
			log.Warn().Err(err).Msg("failed to save aborted session")
		}
	case KindCalibration:
		r.calib.Cancel()
		a.finishCalibrationLocked(r, now)
	}
}

// stepSession runs classification, the presence watchdog and the gate for
// one frame. Before the READY countdown ends the frame is only displayed.
func (a *App) stepSession(r *run, dets []detector.Landmarks, now time.Time) FrameState {
	raw, sample := r.classifier.Classify(dets, r.thresholds)
	st := FrameState{
		Kind:       KindSession,
		Mode:       r.mode,
		Raw:        raw,
		Action:     gesture.Neutral,
		Point:      sample,
		Thresholds: r.thresholds,
		Time:       now,
	}

	if now.Before(r.readyUntil) {
		st.Countdown = int(math.Ceil(r.readyUntil.Sub(now).Seconds()))
		st.Stats = a.statsLocked(r, now).Report()
		return st
	}

	paused, began := r.watchdog.Update(sample != nil, now)
	switch {
	case began:
		log.Info().Dur("timeout", a.cfg.SilenceTimeout).Msg("tracking lost, pausing game")
		if key, ok := gesture.DefaultKeyMap().Key(gesture.Pause); ok {
			if err := a.keys.Press(key); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("pause key press failed")
			}
		}
		if r.sound {
			a.cue(CueAlert)
		}
		a.lastAction = gesture.Pause
	case r.paused && !paused:
		log.Info().Msg("tracking regained")
	}
	r.paused = paused

	if paused {
		st.Action = gesture.Pause
	} else {
		st.Action = r.gate.Evaluate(raw, now)
		st.Fired = !st.Action.IsNeutral()
		if st.Fired {
			a.lastAction = st.Action
			log.Debug().Str("action", st.Action.String()).Msg("action fired")
		}
	}
	st.Paused = r.paused
	st.Stats = a.statsLocked(r, now).Report()
	return st
}

// stepCalibration feeds one frame to the calibration session and finishes
// the run when the session reaches a terminal phase.
func (a *App) stepCalibration(r *run, dets []detector.Landmarks, now time.Time) FrameState {
	raw, sample := r.classifier.Classify(dets, r.thresholds)
	p := r.calib.Observe(sample, now)
	st := FrameState{
		Kind:        KindCalibration,
		Mode:        r.mode,
		Raw:         raw,
		Action:      gesture.Neutral,
		Point:       sample,
		Thresholds:  r.thresholds,
		Calibration: &p,
		Time:        now,
	}
	if p.Phase.Terminal() {
		a.finishCalibrationLocked(r, now)
		if o := a.lastCalibration; o != nil && o.Thresholds != nil {
			st.Thresholds = *o.Thresholds
		}
	}
	return st
}

// render draws the overlay on frame and keeps it as the latest JPEG.
func (a *App) render(frame *gocv.Mat, st FrameState) {
	capture.Draw(frame, overlayFor(st))
	data, err := capture.EncodeJPEG(frame)
	if err != nil {
		log.Debug().Err(err).Msg("failed to encode frame")
		return
	}
	a.frameMu.Lock()
	a.jpeg = data
	a.frameMu.Unlock()
}

func overlayFor(st FrameState) capture.Overlay {
	o := capture.Overlay{
		Thresholds: st.Thresholds,
		Point:      st.Point,
		Action:     st.Action,
	}
	switch {
	case st.Countdown > 0:
		o.Banner = strconv.Itoa(st.Countdown)
		o.Status = "READY"
	case st.Paused:
		o.Banner = "PAUSED"
	case st.Calibration != nil:
		p := st.Calibration
		o.Status = fmt.Sprintf("CALIBRATING %s %d/%d", p.Step, p.StepIndex+1, p.Steps)
		switch p.Phase {
		case calibration.PhasePrepare:
			o.Banner = fmt.Sprintf("%s %d", p.Step, int(math.Ceil(p.Remaining.Seconds())))
		case calibration.PhaseRecord:
			o.Banner = "HOLD"
		default:
			o.Banner = strings.ToUpper(string(p.Phase))
		}
	default:
		o.Status = fmt.Sprintf("J %d  D %d  L %d  R %d",
			st.Stats.Jump, st.Stats.Duck, st.Stats.Left, st.Stats.Right)
	}
	return o
}

// publish sends st to every subscriber that has room for it.
func (a *App) publish(st FrameState) {
	a.subMu.Lock()
	defer a.subMu.Unlock()
	for ch := range a.subs {
		select {
		case ch <- st:
		default:
		}
	}
}
