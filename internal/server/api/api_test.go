package api

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/ayusman/airrunner/internal/app"
	"github.com/ayusman/airrunner/internal/detector"
	"github.com/ayusman/airrunner/internal/gesture"
	"github.com/ayusman/airrunner/internal/store"
)

// newTestStore creates a Store with a temporary database for testing.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// fakeController records calls and returns canned results.
type fakeController struct {
	mu         sync.Mutex
	status     app.Status
	startErr   error
	stopErr    error
	cancelErr  error
	report     gesture.Report
	modes      []detector.Mode
	thresholds []gesture.ThresholdSet
}

func (f *fakeController) StartSession(mode detector.Mode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.modes = append(f.modes, mode)
	if f.startErr == nil {
		f.status.Kind = app.KindSession
	}
	return f.startErr
}

func (f *fakeController) StopSession() (gesture.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.report, f.stopErr
}

func (f *fakeController) StartCalibration(mode detector.Mode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.modes = append(f.modes, mode)
	if f.startErr == nil {
		f.status.Kind = app.KindCalibration
	}
	return f.startErr
}

func (f *fakeController) CancelCalibration() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cancelErr == nil {
		f.status.Kind = app.KindIdle
	}
	return f.cancelErr
}

func (f *fakeController) SetThresholds(t gesture.ThresholdSet) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.thresholds = append(f.thresholds, t)
	return nil
}

func (f *fakeController) Status() app.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}
