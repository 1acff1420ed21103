package server

import (
	"sync"

	"github.com/ayusman/airrunner/internal/app"
	"github.com/ayusman/airrunner/internal/detector"
	"github.com/ayusman/airrunner/internal/gesture"
)

// fakeRuntime is an in-memory Runtime for handler tests.
type fakeRuntime struct {
	mu         sync.Mutex
	status     app.Status
	jpeg       []byte
	thresholds gesture.ThresholdSet
	subs       []chan app.FrameState
}

func (f *fakeRuntime) StartSession(mode detector.Mode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.status.Kind == app.KindSession {
		return app.ErrSessionRunning
	}
	f.status.Kind = app.KindSession
	f.status.Mode = mode
	return nil
}

func (f *fakeRuntime) StopSession() (gesture.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.status.Kind != app.KindSession {
		return gesture.Report{}, app.ErrNoSession
	}
	f.status.Kind = app.KindIdle
	return gesture.Report{Jump: 2, TotalTime: 12}, nil
}

func (f *fakeRuntime) StartCalibration(mode detector.Mode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status.Kind = app.KindCalibration
	return nil
}

func (f *fakeRuntime) CancelCalibration() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status.Kind = app.KindIdle
	return nil
}

func (f *fakeRuntime) SetThresholds(t gesture.ThresholdSet) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.thresholds = t
	return nil
}

func (f *fakeRuntime) Status() app.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

func (f *fakeRuntime) LatestJPEG() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.jpeg
}

func (f *fakeRuntime) Subscribe() (<-chan app.FrameState, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan app.FrameState, 4)
	f.subs = append(f.subs, ch)
	return ch, func() {}
}

// publish sends st to every subscriber and reports how many there were.
func (f *fakeRuntime) publish(st app.FrameState) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.subs {
		ch <- st
	}
	return len(f.subs)
}

func (f *fakeRuntime) subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}
