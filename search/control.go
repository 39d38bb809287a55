// Package search holds the cancellation and progress contract shared by the sequence generator
// and the trajectory solver.
package search

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/ChristopherRabotin/mga"
)

// ErrCancelled is returned by a search which observed a cancellation request.
// It is an outcome, not a failure.
var ErrCancelled = errors.New("search cancelled")

// DefaultBuffer is the number of snapshots a Reporter queues before dropping.
const DefaultBuffer = 64

// FlushTimeout bounds how long Close waits for the queued snapshots to be delivered.
const FlushTimeout = 200 * time.Millisecond

// Progress is a snapshot of a running search.
type Progress struct {
	Evaluated int64   // Non-decreasing
	Total     int64   // Known or estimated total, zero if unknown
	Best      float64 // Best objective so far (non-increasing), NaN when not applicable
}

// Percent returns the completion percentage, capped to 100.
func (p Progress) Percent() float64 {
	if p.Total <= 0 {
		return 0
	}
	return math.Min(100, 100*float64(p.Evaluated)/float64(p.Total))
}

func (p Progress) String() string {
	if math.IsNaN(p.Best) {
		return fmt.Sprintf("%d/%d (%.1f%%)", p.Evaluated, p.Total, p.Percent())
	}
	return fmt.Sprintf("%d/%d (%.1f%%) best=%.6f", p.Evaluated, p.Total, p.Percent(), p.Best)
}

// ProgressFunc receives progress snapshots.
type ProgressFunc func(Progress)

// Checkpoint returns ErrCancelled once ctx is done.
func Checkpoint(ctx context.Context) error {
	if ctx.Err() != nil {
		return ErrCancelled
	}
	return nil
}

// Reporter delivers snapshots to a ProgressFunc from its own goroutine, so that the search never
// waits on the callback. When the queue is full the snapshot is dropped; a panicking callback is
// logged and does not stop the delivery.
type Reporter struct {
	fn      ProgressFunc
	queue   chan Progress
	done    chan struct{}
	logger  log.Logger
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Int64
	// abandoned is set once Close gave up waiting; the remaining snapshots are then dropped.
	abandoned atomic.Bool
}

// NewReporter starts the delivery goroutine. A nil fn yields a reporter which discards everything.
func NewReporter(fn ProgressFunc, buffer int, logger log.Logger) *Reporter {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	r := &Reporter{fn: fn, queue: make(chan Progress, buffer), done: make(chan struct{}), logger: mga.LoggerOrNop(logger)}
	go r.deliver()
	return r
}

func (r *Reporter) deliver() {
	defer close(r.done)
	for p := range r.queue {
		if r.abandoned.Load() {
			r.dropped.Add(1)
			continue
		}
		r.call(p)
	}
}

func (r *Reporter) call(p Progress) {
	defer func() {
		if rec := recover(); rec != nil {
			level.Warn(r.logger).Log("msg", "progress callback panicked", "panic", fmt.Sprint(rec))
		}
	}()
	if r.fn != nil {
		r.fn(p)
	}
}

// Report queues a snapshot without blocking. It is a no-op after Close.
func (r *Reporter) Report(p Progress) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return
	}
	select {
	case r.queue <- p:
	default:
		r.dropped.Add(1)
	}
}

// Dropped returns the number of snapshots dropped because the queue was full.
func (r *Reporter) Dropped() int64 {
	return r.dropped.Load()
}

// Close stops accepting snapshots and waits at most FlushTimeout for the queued ones to be
// delivered. A callback which does not return in time is left running on its own goroutine and the
// snapshots still queued behind it are dropped.
func (r *Reporter) Close() {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()
	if r.abandoned.Load() {
		return
	}
	timer := time.NewTimer(FlushTimeout)
	defer timer.Stop()
	select {
	case <-r.done:
	case <-timer.C:
		r.abandoned.Store(true)
		level.Warn(r.logger).Log("msg", "progress callback did not return, dropping pending snapshots", "queued", len(r.queue))
	}
}
