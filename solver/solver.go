// Package solver searches the departure date, the legs durations and the flyby geometry which minimize
// the total Δv of a flyby sequence.
package solver

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat/distmv"

	"github.com/ChristopherRabotin/mga"
	"github.com/ChristopherRabotin/mga/search"
)

// seedCheckpoint is the number of seed samples evaluated between two cancellation checks.
const seedCheckpoint = 100

// Solver optimizes one sequence. A Solver runs at most once at a time.
type Solver struct {
	sys     *mga.System
	seq     mga.Sequence
	c       Constraints
	cfg     mga.SolverConfig
	problem *problem
	logger  log.Logger

	evaluations atomic.Int64
	bestBits    atomic.Uint64 // math.Float64bits of the best feasible Δv
	mu          sync.Mutex
	bestX       []float64
}

// New validates the inputs and prepares a solver.
func New(sys *mga.System, seq mga.Sequence, c Constraints, cfg mga.SolverConfig, logger log.Logger) (*Solver, error) {
	if err := Validate(sys, seq, c); err != nil {
		return nil, err
	}
	if err := (mga.Config{Solver: cfg, Log: mga.LogConfig{Format: "logfmt"}}).Validate(); err != nil {
		return nil, err
	}
	s := &Solver{
		sys:     sys,
		seq:     seq.Clone(),
		c:       c,
		cfg:     cfg,
		problem: newProblem(sys, seq, c),
		logger:  log.With(mga.LoggerOrNop(logger), "subsys", "solver", "sequence", sys.SequenceNames(seq)),
	}
	s.bestBits.Store(math.Float64bits(math.Inf(1)))
	return s, nil
}

// Dim returns the number of decision variables.
func (s *Solver) Dim() int {
	return s.problem.dim
}

// Best returns the best feasible Δv found so far, and false if none was found yet.
// It is safe to call during and after Run.
func (s *Solver) Best() (float64, bool) {
	b := math.Float64frombits(s.bestBits.Load())
	return b, !math.IsInf(b, 1)
}

// Evaluations returns the number of objective evaluations so far.
func (s *Solver) Evaluations() int64 {
	return s.evaluations.Load()
}

// objective evaluates x and records it when it is the best feasible candidate so far.
// It is called concurrently by the optimizer.
func (s *Solver) objective(x []float64) float64 {
	s.evaluations.Add(1)
	cand := s.problem.evaluate(x)
	f := cand.objective()
	if cand.feasible() {
		s.offer(x, f)
	}
	return f
}

func (s *Solver) offer(x []float64, f float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if best, _ := s.Best(); f < best {
		s.bestX = append(s.bestX[:0], x...)
		s.bestBits.Store(math.Float64bits(f))
	}
}

// seed draws uniform samples over the decision box and returns the best one, porkchop style.
func (s *Solver) seed(ctx context.Context) ([]float64, error) {
	dim := s.problem.dim
	uniform := distmv.NewUnitUniform(dim, nil)
	best := make([]float64, dim)
	for i := range best {
		best[i] = 0.5
	}
	bestF := s.objective(best)
	x := make([]float64, dim)
	for i := 0; i < s.cfg.SeedSamples; i++ {
		if i%seedCheckpoint == 0 {
			if err := search.Checkpoint(ctx); err != nil {
				return nil, err
			}
		}
		uniform.Rand(x)
		if f := s.objective(x); f < bestF {
			bestF = f
			copy(best, x)
		}
	}
	level.Debug(s.logger).Log("msg", "seeded", "samples", s.cfg.SeedSamples, "objective", bestF)
	return best, nil
}

// recorder is the per generation checkpoint of the optimizer.
type recorder struct {
	ctx         context.Context
	s           *Solver
	reporter    *search.Reporter
	generations int64
	last        float64
}

func (r *recorder) Init() error {
	r.last = math.Inf(1)
	return nil
}

func (r *recorder) Record(loc *optimize.Location, op optimize.Operation, stats *optimize.Stats) error {
	if op != optimize.MajorIteration {
		return nil
	}
	r.generations++
	best, _ := r.s.Best()
	// The tracked minimum cannot increase, this only guards against a concurrent offer racing the load.
	best = math.Min(best, r.last)
	r.last = best
	r.reporter.Report(search.Progress{Evaluated: r.generations, Total: int64(r.s.cfg.MaxGenerations), Best: best})
	return search.Checkpoint(r.ctx)
}

// Run seeds and refines the decision vector with CMA-ES, reporting a snapshot per generation, and
// materializes the best feasible candidate. It returns search.ErrCancelled once ctx is cancelled and
// an infeasible error when no feasible candidate was found.
func (s *Solver) Run(ctx context.Context, onProgress search.ProgressFunc) (*mga.Trajectory, error) {
	start := time.Now()
	reporter := search.NewReporter(onProgress, search.DefaultBuffer, s.logger)
	defer reporter.Close()
	level.Info(s.logger).Log("msg", "optimizing", "dim", s.problem.dim, "generations", s.cfg.MaxGenerations)

	initX, err := s.seed(ctx)
	if err != nil {
		return nil, err
	}
	problem := optimize.Problem{Func: s.objective}
	rec := &recorder{ctx: ctx, s: s, reporter: reporter}
	settings := &optimize.Settings{
		MajorIterations: s.cfg.MaxGenerations,
		Converger: &optimize.FunctionConverge{
			Absolute:   s.cfg.Tolerance,
			Iterations: s.cfg.StallGenerations,
		},
		Recorder:   rec,
		Concurrent: s.cfg.Workers,
	}
	method := &optimize.CmaEsChol{
		InitStepSize: s.cfg.InitStepSize,
		Population:   s.cfg.Population,
	}
	result, err := optimize.Minimize(problem, initX, settings, method)
	if ctx.Err() != nil || errors.Is(err, search.ErrCancelled) {
		return nil, search.ErrCancelled
	}
	if err != nil {
		// The best feasible candidate so far is still valid.
		level.Debug(s.logger).Log("msg", "optimizer stopped", "err", err)
	}
	best, ok := s.Best()
	if !ok {
		return nil, mga.NewInfeasible("no feasible trajectory for %s after %d evaluations", s.sys.SequenceNames(s.seq), s.Evaluations())
	}
	traj, err := s.materialize()
	if err != nil {
		return nil, err
	}
	if total := int64(s.cfg.MaxGenerations); rec.generations < total {
		// Converged before the budget.
		reporter.Report(search.Progress{Evaluated: total, Total: total, Best: best})
	}
	fields := []interface{}{"msg", "optimized", "Δv", best, "generations", rec.generations, "evaluations", s.Evaluations(), "elapsed", time.Since(start)}
	if result != nil {
		fields = append(fields, "status", result.Status)
	}
	level.Info(s.logger).Log(fields...)
	return traj, nil
}

// materialize recomputes the best candidate into a trajectory.
func (s *Solver) materialize() (*mga.Trajectory, error) {
	s.mu.Lock()
	x := append([]float64(nil), s.bestX...)
	s.mu.Unlock()
	cand := s.problem.evaluate(x)
	if !cand.feasible() {
		return nil, mga.NewNumerical("best candidate of %s is not reproducible: %s", s.seq, cand.reason)
	}
	return &mga.Trajectory{
		Sequence:  s.seq.Clone(),
		Maneuvers: cand.maneuvers,
		Legs:      cand.legs,
		Dates:     cand.dates,
		TotalΔV:   cand.total,
	}, nil
}

// Run validates the inputs and optimizes the sequence; see Solver.Run.
func Run(ctx context.Context, sys *mga.System, seq mga.Sequence, c Constraints, cfg mga.SolverConfig, onProgress search.ProgressFunc) (*mga.Trajectory, error) {
	s, err := New(sys, seq, c, cfg, nil)
	if err != nil {
		return nil, err
	}
	return s.Run(ctx, onProgress)
}
