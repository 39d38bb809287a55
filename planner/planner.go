// Package planner exposes the sequence generation and the trajectory search as cancellable background
// jobs, with at most one job of each kind in flight.
package planner

import (
	"context"
	"math"
	"sync"

	"github.com/go-kit/log"

	"github.com/ChristopherRabotin/mga"
	"github.com/ChristopherRabotin/mga/search"
	"github.com/ChristopherRabotin/mga/sequence"
	"github.com/ChristopherRabotin/mga/solver"
)

// Planner runs searches against one system.
type Planner struct {
	sys    *mga.System
	cfg    mga.Config
	logger log.Logger

	mu        sync.Mutex
	sequences *search.Job[[]mga.Sequence]
	traj      *search.Job[*mga.Trajectory]
	solver    *solver.Solver
}

// New returns a planner. A nil logger discards everything.
func New(sys *mga.System, cfg mga.Config, logger log.Logger) *Planner {
	return &Planner{sys: sys, cfg: cfg, logger: mga.LoggerOrNop(logger)}
}

// System returns the system searched by this planner.
func (p *Planner) System() *mga.System {
	return p.sys
}

// GenerateSequences starts the enumeration of the sequences in the background. Invalid parameters
// are reported immediately. Any previous generation is cancelled first.
func (p *Planner) GenerateSequences(params sequence.Parameters, onProgress search.ProgressFunc) (*search.Job[[]mga.Sequence], error) {
	gen, err := sequence.New(p.sys, params, p.logger)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sequences != nil {
		p.sequences.Cancel()
	}
	p.sequences = search.Start(context.Background(), p.logger, "sequences", func(ctx context.Context) ([]mga.Sequence, error) {
		return gen.Generate(ctx, onProgress)
	})
	return p.sequences, nil
}

// CancelSequenceGeneration cancels the in-flight generation, if any.
func (p *Planner) CancelSequenceGeneration() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sequences != nil {
		p.sequences.Cancel()
	}
}

// SearchOptimalTrajectory starts the trajectory search of seq in the background. Invalid inputs are
// reported immediately. Any previous search is cancelled first.
func (p *Planner) SearchOptimalTrajectory(seq mga.Sequence, c solver.Constraints, onProgress search.ProgressFunc) (*search.Job[*mga.Trajectory], error) {
	s, err := solver.New(p.sys, seq, c, p.cfg.Solver, p.logger)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.traj != nil {
		p.traj.Cancel()
	}
	p.solver = s
	p.traj = search.Start(context.Background(), p.logger, "trajectory", func(ctx context.Context) (*mga.Trajectory, error) {
		return s.Run(ctx, onProgress)
	})
	return p.traj, nil
}

// CancelTrajectorySearch cancels the in-flight trajectory search, if any.
func (p *Planner) CancelTrajectorySearch() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.traj != nil {
		p.traj.Cancel()
	}
}

// CurrentBestDeltaV returns the best feasible Δv of the latest trajectory search, during or after it,
// and false if there is none.
func (p *Planner) CurrentBestDeltaV() (float64, bool) {
	p.mu.Lock()
	s := p.solver
	p.mu.Unlock()
	if s == nil {
		return math.NaN(), false
	}
	return s.Best()
}
