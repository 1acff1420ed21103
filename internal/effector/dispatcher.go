package effector

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultQueueSize is how many effects may wait before new ones are dropped.
const DefaultQueueSize = 16

var (
	// ErrQueueFull is returned when an effect is dropped.
	ErrQueueFull = errors.New("effect queue full")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("dispatcher closed")
)

// Stats counts what happened to submitted effects.
type Stats struct {
	Sent    int64 `json:"sent"`
	Failed  int64 `json:"failed"`
	Dropped int64 `json:"dropped"`
}

// Dispatcher hands effects to a single worker over a bounded queue. Submit
// never blocks; failures are logged by the worker and never reported back.
type Dispatcher struct {
	name    string
	target  Target
	timeout time.Duration
	queue   chan string

	mu     sync.RWMutex
	closed bool
	done   chan struct{}

	sent    atomic.Int64
	failed  atomic.Int64
	dropped atomic.Int64
}

// NewDispatcher starts a worker delivering to target. Each delivery is
// bounded by timeout when it is positive.
func NewDispatcher(name string, target Target, queueSize int, timeout time.Duration) *Dispatcher {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	d := &Dispatcher{
		name:    name,
		target:  target,
		timeout: timeout,
		queue:   make(chan string, queueSize),
		done:    make(chan struct{}),
	}
	go d.run()
	return d
}

// Submit enqueues arg, or drops it when the queue is full.
func (d *Dispatcher) Submit(arg string) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrClosed
	}
	select {
	case d.queue <- arg:
		return nil
	default:
		d.dropped.Add(1)
		log.Warn().Str("dispatcher", d.name).Str("arg", arg).Msg("effect dropped, queue full")
		return ErrQueueFull
	}
}

// Press submits a key. It satisfies gesture.KeySink.
func (d *Dispatcher) Press(key string) error {
	return d.Submit(key)
}

// Play submits an audio cue.
func (d *Dispatcher) Play(cue string) error {
	return d.Submit(cue)
}

// Stats returns delivery counters.
func (d *Dispatcher) Stats() Stats {
	return Stats{
		Sent:    d.sent.Load(),
		Failed:  d.failed.Load(),
		Dropped: d.dropped.Load(),
	}
}

// Close stops accepting effects, delivers what is queued and waits for the
// worker to finish or ctx to expire.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for arg := range d.queue {
		d.deliver(arg)
	}
}

func (d *Dispatcher) deliver(arg string) {
	ctx := context.Background()
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}
	if err := d.target.Do(ctx, arg); err != nil {
		d.failed.Add(1)
		log.Warn().Err(err).Str("dispatcher", d.name).Str("arg", arg).Msg("effect failed")
		return
	}
	d.sent.Add(1)
}
