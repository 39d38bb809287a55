package search

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/oklog/ulid/v2"

	"github.com/ChristopherRabotin/mga"
)

// Status is the final state of a job.
type Status uint8

const (
	// Running is the status of a job which has not completed yet.
	Running Status = iota
	// Succeeded jobs carry a value.
	Succeeded
	// Cancelled jobs observed a cancellation request. They carry neither a value nor an error.
	Cancelled
	// Failed jobs carry an error.
	Failed
)

func (s Status) String() string {
	switch s {
	case Running:
		return "running"
	case Succeeded:
		return "succeeded"
	case Cancelled:
		return "cancelled"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", s)
	}
}

// Outcome is the result of a job.
type Outcome[T any] struct {
	Status Status
	Value  T
	Err    error
}

// Job runs a blocking search on its own goroutine.
type Job[T any] struct {
	id      ulid.ULID
	cancel  context.CancelFunc
	done    chan struct{}
	once    sync.Once
	outcome Outcome[T]
}

// Start runs fn in the background with a cancellable child of ctx.
// fn returning ErrCancelled (possibly wrapped) yields the Cancelled status.
func Start[T any](ctx context.Context, logger log.Logger, name string, fn func(ctx context.Context) (T, error)) *Job[T] {
	ctx, cancel := context.WithCancel(ctx)
	j := &Job[T]{id: ulid.Make(), cancel: cancel, done: make(chan struct{})}
	logger = log.With(mga.LoggerOrNop(logger), "job", name, "run", j.id.String())
	go func() {
		defer close(j.done)
		defer cancel()
		start := time.Now()
		level.Debug(logger).Log("msg", "started")
		j.outcome = run(ctx, fn)
		switch j.outcome.Status {
		case Succeeded:
			level.Info(logger).Log("msg", "succeeded", "elapsed", time.Since(start))
		case Cancelled:
			level.Info(logger).Log("msg", "cancelled", "elapsed", time.Since(start))
		default:
			level.Warn(logger).Log("msg", "failed", "err", j.outcome.Err, "elapsed", time.Since(start))
		}
	}()
	return j
}

func run[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) (out Outcome[T]) {
	defer func() {
		if rec := recover(); rec != nil {
			out = Outcome[T]{Status: Failed, Err: fmt.Errorf("search panicked: %v", rec)}
		}
	}()
	v, err := fn(ctx)
	switch {
	case err == nil:
		return Outcome[T]{Status: Succeeded, Value: v}
	case errors.Is(err, ErrCancelled):
		return Outcome[T]{Status: Cancelled}
	default:
		return Outcome[T]{Status: Failed, Err: err}
	}
}

// ID returns the run identifier of this job.
func (j *Job[T]) ID() ulid.ULID {
	return j.id
}

// Cancel requests cancellation. It is idempotent and a no-op once the job completed.
func (j *Job[T]) Cancel() {
	j.once.Do(j.cancel)
}

// Done is closed when the job completes.
func (j *Job[T]) Done() <-chan struct{} {
	return j.done
}

// Status returns Running until the job completes, and then its final status.
func (j *Job[T]) Status() Status {
	select {
	case <-j.done:
		return j.outcome.Status
	default:
		return Running
	}
}

// Wait blocks until the job completes and returns its outcome.
func (j *Job[T]) Wait() Outcome[T] {
	<-j.done
	return j.outcome
}
