// Package sequence enumerates the flyby sequences between two bodies of a system.
package sequence

import (
	"context"
	"math"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/ChristopherRabotin/mga"
	"github.com/ChristopherRabotin/mga/search"
)

// Parameters bound the enumeration. All bounds are inclusive.
type Parameters struct {
	Departure   mga.BodyID
	Destination mga.BodyID
	// MaxSwingBys caps the number of gravity assists, resonant ones included.
	MaxSwingBys int
	// MaxResonant caps the number of resonant swing-bys, i.e. returns to the body just visited.
	MaxResonant int
	// MaxBackLegs caps the number of legs toward the attractor.
	MaxBackLegs int
	// MaxBackSpacing caps the number of legs between two consecutive back legs.
	MaxBackSpacing int
}

// Validate checks the parameters against the system.
func Validate(sys *mga.System, p Parameters) error {
	if sys == nil {
		return mga.NewPrecondition("no system")
	}
	if _, ok := sys.Body(p.Departure); !ok {
		return mga.NewPrecondition("unknown departure body %d", p.Departure)
	}
	if _, ok := sys.Body(p.Destination); !ok {
		return mga.NewPrecondition("unknown destination body %d", p.Destination)
	}
	if p.Departure == p.Destination {
		return mga.NewPrecondition("departure and destination are both %s", sys.SequenceNames(mga.Sequence{p.Departure}))
	}
	if _, ok := sys.CommonAttractor(p.Departure, p.Destination); !ok {
		return mga.NewPrecondition("%s do not orbit the same attractor", sys.SequenceNames(mga.Sequence{p.Departure, p.Destination}))
	}
	if p.MaxSwingBys < 0 || p.MaxResonant < 0 || p.MaxBackLegs < 0 || p.MaxBackSpacing < 0 {
		return mga.NewPrecondition("bounds must be non-negative: %+v", p)
	}
	return nil
}

// state is a node of the search tree, without its path.
type state struct {
	body     mga.BodyID
	assists  int
	resonant int
	backLegs int
	gap      int // Legs since the previous back leg, -1 before the first one
}

// Generator enumerates the admissible sequences of one set of parameters.
type Generator struct {
	sys      *mga.System
	params   Parameters
	bodies   map[mga.BodyID]mga.Body
	siblings map[mga.BodyID][]mga.BodyID
	logger   log.Logger
}

// New validates the parameters and prepares a generator.
func New(sys *mga.System, p Parameters, logger log.Logger) (*Generator, error) {
	if err := Validate(sys, p); err != nil {
		return nil, err
	}
	g := &Generator{
		sys:      sys,
		params:   p,
		bodies:   make(map[mga.BodyID]mga.Body),
		siblings: make(map[mga.BodyID][]mga.BodyID),
		logger:   log.With(mga.LoggerOrNop(logger), "subsys", "sequence"),
	}
	dep, _ := sys.Body(p.Departure)
	g.bodies[dep.ID] = dep
	g.siblings[dep.ID] = nil
	for _, id := range sys.Siblings(dep.ID) {
		g.bodies[id], _ = sys.Body(id)
		if id != p.Destination {
			g.siblings[dep.ID] = append(g.siblings[dep.ID], id)
		}
	}
	for id := range g.bodies {
		if id == dep.ID {
			continue
		}
		for _, sib := range sys.Siblings(id) {
			if sib != p.Destination {
				g.siblings[id] = append(g.siblings[id], sib)
			}
		}
	}
	return g, nil
}

// leg returns the state after flying from s.body to next, and false when a back leg bound forbids it.
func (g *Generator) leg(s state, next mga.BodyID) (state, bool) {
	n := s
	n.body = next
	if mga.IsBackLeg(g.bodies[s.body], g.bodies[next]) {
		if s.backLegs >= g.params.MaxBackLegs || s.gap > g.params.MaxBackSpacing {
			return n, false
		}
		n.backLegs++
		n.gap = 0
	} else if s.gap >= 0 {
		// Saturated: any value above the bound forbids the next back leg all the same.
		n.gap = min(s.gap+1, g.params.MaxBackSpacing+1)
	}
	return n, true
}

// flyby returns the state after a gravity assist at next, and false when a bound forbids it.
func (g *Generator) flyby(s state, next mga.BodyID) (state, bool) {
	if s.assists >= g.params.MaxSwingBys {
		return s, false
	}
	resonant := next == s.body
	if resonant && s.resonant >= g.params.MaxResonant {
		return s, false
	}
	n, ok := g.leg(s, next)
	if !ok {
		return s, false
	}
	n.assists++
	if resonant {
		n.resonant++
	}
	return n, true
}

// candidates lists the flyby bodies reachable from cur: cur itself first (resonant), then its siblings
// other than the destination, inner ones first.
func (g *Generator) candidates(cur mga.BodyID) []mga.BodyID {
	return append([]mga.BodyID{cur}, g.siblings[cur]...)
}

func (g *Generator) root() state {
	return state{body: g.params.Departure, gap: -1}
}

// Count returns the number of sequences Generate returns, saturated at math.MaxInt64.
func (g *Generator) Count() int64 {
	memo := make(map[state]int64)
	var count func(s state) int64
	count = func(s state) int64 {
		if c, ok := memo[s]; ok {
			return c
		}
		var c int64
		if _, ok := g.leg(s, g.params.Destination); ok {
			c = 1
		}
		for _, next := range g.candidates(s.body) {
			if n, ok := g.flyby(s, next); ok {
				c = saturatedAdd(c, count(n))
			}
		}
		memo[s] = c
		return c
	}
	return count(g.root())
}

func saturatedAdd(a, b int64) int64 {
	if a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}

// Generate enumerates the sequences depth first, in discovery order. Cancellation is checked at every
// branch and yields search.ErrCancelled without any partial result. Progress snapshots count the
// sequences found against Count.
func (g *Generator) Generate(ctx context.Context, onProgress search.ProgressFunc) ([]mga.Sequence, error) {
	start := time.Now()
	total := g.Count()
	reporter := search.NewReporter(onProgress, search.DefaultBuffer, g.logger)
	defer reporter.Close()
	level.Debug(g.logger).Log("msg", "enumerating", "from", g.params.Departure, "to", g.params.Destination, "total", total)

	var found []mga.Sequence
	path := mga.Sequence{g.params.Departure}
	var explore func(s state) error
	explore = func(s state) error {
		if err := search.Checkpoint(ctx); err != nil {
			return err
		}
		if _, ok := g.leg(s, g.params.Destination); ok {
			seq := append(path.Clone(), g.params.Destination)
			found = append(found, seq)
			reporter.Report(search.Progress{Evaluated: int64(len(found)), Total: total, Best: math.NaN()})
		}
		for _, next := range g.candidates(s.body) {
			n, ok := g.flyby(s, next)
			if !ok {
				continue
			}
			path = append(path, next)
			err := explore(n)
			path = path[:len(path)-1]
			if err != nil {
				return err
			}
		}
		return nil
	}
	if err := explore(g.root()); err != nil {
		level.Info(g.logger).Log("msg", "enumeration cancelled", "found", len(found), "total", total)
		return nil, err
	}
	level.Info(g.logger).Log("msg", "enumeration done", "sequences", len(found), "elapsed", time.Since(start))
	return found, nil
}

// Count returns the number of admissible sequences.
func Count(sys *mga.System, p Parameters) (int64, error) {
	g, err := New(sys, p, nil)
	if err != nil {
		return 0, err
	}
	return g.Count(), nil
}

// Generate enumerates the admissible sequences; see Generator.Generate.
func Generate(ctx context.Context, sys *mga.System, p Parameters, onProgress search.ProgressFunc) ([]mga.Sequence, error) {
	g, err := New(sys, p, nil)
	if err != nil {
		return nil, err
	}
	return g.Generate(ctx, onProgress)
}
