package effector

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/ayusman/airrunner/internal/gesture"
)

type recorder struct {
	mu   sync.Mutex
	args []string
}

func (r *recorder) Do(_ context.Context, arg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.args = append(r.args, arg)
	return nil
}

func (r *recorder) got() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.args)
}

var _ gesture.KeySink = (*Dispatcher)(nil)

func closeNow(t *testing.T, d *Dispatcher) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.Close(ctx); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}

func TestDispatcher_DeliversInOrder(t *testing.T) {
	rec := &recorder{}
	d := NewDispatcher("keys", rec, 8, time.Second)

	for _, k := range []string{"up", "down", "left", "right", "esc"} {
		if err := d.Press(k); err != nil {
			t.Fatalf("Press(%s) error = %v", k, err)
		}
	}
	closeNow(t, d)

	want := []string{"up", "down", "left", "right", "esc"}
	if got := rec.got(); !slices.Equal(got, want) {
		t.Errorf("delivered %v, want %v", got, want)
	}
	if s := d.Stats(); s.Sent != 5 || s.Failed != 0 || s.Dropped != 0 {
		t.Errorf("Stats() = %+v", s)
	}
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	blocking := TargetFunc(func(ctx context.Context, arg string) error {
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
		return nil
	})
	d := NewDispatcher("keys", blocking, 2, 0)

	// First item occupies the worker; two more fill the queue.
	if err := d.Press("a"); err != nil {
		t.Fatal(err)
	}
	<-started
	for _, k := range []string{"b", "c"} {
		if err := d.Press(k); err != nil {
			t.Fatalf("Press(%s) error = %v", k, err)
		}
	}

	done := make(chan error, 1)
	go func() { done <- d.Press("d") }()
	select {
	case err := <-done:
		if !errors.Is(err, ErrQueueFull) {
			t.Errorf("Press(d) error = %v, want ErrQueueFull", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Press blocked on a full queue")
	}

	close(release)
	closeNow(t, d)
	if s := d.Stats(); s.Sent != 3 || s.Dropped != 1 {
		t.Errorf("Stats() = %+v, want 3 sent 1 dropped", s)
	}
}

func TestDispatcher_FailuresAreSwallowed(t *testing.T) {
	failing := TargetFunc(func(context.Context, string) error {
		return errors.New("osascript not found")
	})
	d := NewDispatcher("keys", failing, 4, time.Second)

	if err := d.Press("up"); err != nil {
		t.Fatalf("Press() error = %v, want nil", err)
	}
	closeNow(t, d)
	if s := d.Stats(); s.Failed != 1 || s.Sent != 0 {
		t.Errorf("Stats() = %+v, want 1 failed", s)
	}
}

func TestDispatcher_TimeoutReachesTarget(t *testing.T) {
	var deadline bool
	target := TargetFunc(func(ctx context.Context, _ string) error {
		_, deadline = ctx.Deadline()
		return nil
	})
	d := NewDispatcher("cues", target, 1, 50*time.Millisecond)
	if err := d.Play("alert"); err != nil {
		t.Fatal(err)
	}
	closeNow(t, d)
	if !deadline {
		t.Error("target context had no deadline")
	}
}

func TestDispatcher_SubmitAfterClose(t *testing.T) {
	d := NewDispatcher("keys", &recorder{}, 1, 0)
	closeNow(t, d)
	closeNow(t, d)

	if err := d.Press("up"); !errors.Is(err, ErrClosed) {
		t.Errorf("Press() after Close error = %v, want ErrClosed", err)
	}
}

func TestDispatcher_CloseHonorsContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	d := NewDispatcher("keys", TargetFunc(func(context.Context, string) error {
		<-release
		return nil
	}), 1, 0)
	if err := d.Press("up"); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := d.Close(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Close() error = %v, want deadline exceeded", err)
	}
}
