package solver

import (
	"math"
	"time"

	"github.com/ChristopherRabotin/mga"
)

const (
	// penalty is added to the Δv of infeasible candidates, in km/s.
	penalty = 1e3
	// failure is the objective of candidates on which a primitive failed.
	failure = 10 * penalty

	minTOFFactor = 0.1
	maxTOFFactor = 2.0
)

// resonances are the (body revolutions, spacecraft revolutions) pairs of resonant legs.
var resonances = [][2]int{{1, 1}, {2, 1}, {3, 2}, {3, 1}, {4, 3}, {2, 3}}

func minResonantBodyRevs() float64 {
	m := math.Inf(1)
	for _, r := range resonances {
		m = math.Min(m, float64(r[0]))
	}
	return m
}

// hohmannTOF is the Hohmann time of flight between the mean orbits of two siblings.
func hohmannTOF(from, to mga.Body) time.Duration {
	_, _, tof := mga.Hohmann(from.Elements.A, to.Elements.A, from.AttractorGM())
	return tof
}

// fold maps any real onto [0;1] with a triangle wave, so that the unconstrained optimizer never leaves
// the box and the objective stays continuous at its edges.
func fold(v float64) float64 {
	m := math.Mod(v, 2)
	if m < 0 {
		m += 2
	}
	if m > 1 {
		m = 2 - m
	}
	return m
}

// legVars locates the decision variables of a leg.
type legVars struct {
	from, to  mga.Body
	resonant  bool
	index     int           // First variable of the leg
	hohmann   time.Duration // Direct legs only
	vInfIndex int           // Departure V infinity of a resonant first leg, -1 otherwise
}

// problem is the decision space and the objective of one sequence. It is read-only once built,
// hence the objective is safe for concurrent use.
type problem struct {
	seq    mga.Sequence
	c      Constraints
	legs   []legVars
	μ      float64
	window time.Duration
	dim    int
	origin mga.Body
	dest   mga.Body
	flybys []mga.Body // Intermediate bodies
}

// newProblem lays out the decision vector: the departure date, then for each direct leg its time of
// flight, for each resonant leg its resonance and its crank angle, and the departure V infinity when
// the first leg is resonant.
func newProblem(sys *mga.System, seq mga.Sequence, c Constraints) *problem {
	p := &problem{seq: seq.Clone(), c: c, window: c.End.Sub(c.Start), dim: 1}
	attractor, _ := sys.CommonAttractor(seq...)
	star, _ := sys.Body(attractor)
	p.μ = star.GM()
	p.origin, _ = sys.Body(seq.Origin())
	p.dest, _ = sys.Body(seq.Destination())
	for k := 0; k < seq.Legs(); k++ {
		from, _ := sys.Body(seq[k])
		to, _ := sys.Body(seq[k+1])
		lv := legVars{from: from, to: to, resonant: seq.IsResonantLeg(k), index: p.dim, vInfIndex: -1}
		if lv.resonant {
			p.dim += 2
			if k == 0 {
				lv.vInfIndex = p.dim
				p.dim++
			}
		} else {
			lv.hohmann = hohmannTOF(from, to)
			p.dim++
		}
		p.legs = append(p.legs, lv)
		if k > 0 {
			p.flybys = append(p.flybys, from)
		}
	}
	return p
}

// candidate is the evaluation of a decision vector.
type candidate struct {
	failed    bool
	reason    string
	violation float64 // Normalized sum of constraint violations, zero when feasible
	total     float64 // km/s
	dates     []time.Time
	legs      []mga.Leg
	maneuvers []mga.Maneuver
}

func (c *candidate) feasible() bool {
	return !c.failed && c.violation == 0
}

func (c *candidate) objective() float64 {
	switch {
	case c.failed:
		return failure
	case c.violation > 0:
		return c.total + penalty*(1+math.Min(c.violation, 1))
	default:
		return c.total
	}
}

func (c *candidate) fail(reason string) *candidate {
	c.failed = true
	c.reason = reason
	return c
}

func (c *candidate) violate(reason string, amount float64) {
	if c.reason == "" {
		c.reason = reason
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		amount = 1
	}
	c.violation += math.Max(amount, 1e-12)
}

// evaluate realizes the decision vector x with patched conics.
func (p *problem) evaluate(x []float64) *candidate {
	c := &candidate{}
	u := make([]float64, len(x))
	for i, v := range x {
		u[i] = fold(v)
	}
	dt := p.c.Start.Add(time.Duration(u[0] * float64(p.window)))
	c.dates = append(c.dates, dt)

	var vInfIn []float64
	for k, lv := range p.legs {
		R1, V1, err := lv.from.StateAt(dt)
		if err != nil {
			return c.fail(err.Error())
		}
		leg := mga.Leg{From: lv.from.ID, To: lv.to.ID, Departure: dt}
		if lv.resonant {
			r := resonances[min(int(u[lv.index]*float64(len(resonances))), len(resonances)-1)]
			ψ := 2 * math.Pi * u[lv.index+1]
			vInf := 0.0
			if lv.vInfIndex >= 0 {
				vInf = u[lv.vInfIndex] * p.c.MaxDepartureVInf
			} else {
				vInf = mga.Norm(vInfIn)
			}
			P := lv.from.Period()
			vOut, ok := resonantVInf(R1, V1, vInf, ψ, float64(r[0])/float64(r[1])*P.Seconds(), p.μ)
			if !ok {
				c.violate("resonance not reachable", 1)
				vOut = mga.Scale(vInf, mga.Unit(V1))
			}
			leg.Resonance = r
			leg.VInfOut = vOut
			// Both the body and the spacecraft are back at the same state after N body revolutions.
			leg.VInfIn = vOut
			dt = dt.Add(time.Duration(r[0]) * P)
		} else {
			tof := time.Duration((minTOFFactor + (maxTOFFactor-minTOFFactor)*u[lv.index]) * float64(lv.hohmann))
			dt = dt.Add(tof)
			R2, V2, err := lv.to.StateAt(dt)
			if err != nil {
				return c.fail(err.Error())
			}
			Vi, Vf, err := mga.LambertRV(R1, R2, tof, p.μ)
			if err != nil {
				return c.fail(err.Error())
			}
			leg.VInfOut = mga.Sub(Vi, V1)
			leg.VInfIn = mga.Sub(Vf, V2)
		}
		leg.Arrival = dt
		c.legs = append(c.legs, leg)
		c.dates = append(c.dates, dt)
		if k == 0 && p.c.MaxDepartureVInf > 0 {
			if v := mga.Norm(leg.VInfOut); v > p.c.MaxDepartureVInf {
				c.violate("departure V infinity too high", (v-p.c.MaxDepartureVInf)/p.c.MaxDepartureVInf)
			}
		}
		vInfIn = leg.VInfIn
	}
	if p.c.MaxDuration > 0 {
		if d := dt.Sub(c.dates[0]); d > p.c.MaxDuration {
			c.violate("mission too long", float64(d-p.c.MaxDuration)/float64(p.c.MaxDuration))
		}
	}
	return p.burns(c)
}

// burns computes the departure, flyby and insertion maneuvers of a realized candidate.
func (p *problem) burns(c *candidate) *candidate {
	first := c.legs[0]
	rPark := p.origin.Radius + p.c.OriginAltitude
	dep := mga.Maneuver{Kind: mga.Departure, Body: p.origin.ID, Date: c.dates[0], Periapsis: rPark}
	dep.Magnitude = mga.EscapeΔv(mga.Norm(first.VInfOut), rPark, p.origin.GM())
	if err := p.orient(&dep, p.origin, first.VInfOut); err != nil {
		return c.fail(err.Error())
	}
	c.maneuvers = append(c.maneuvers, dep)

	for k, body := range p.flybys {
		in, out := c.legs[k].VInfIn, c.legs[k+1].VInfOut
		rP, Δv, err := mga.PoweredFlyby(in, out, body.GM())
		if err != nil {
			return c.fail(err.Error())
		}
		floor := body.Radius + p.c.MinFlybyAltitude
		if rP < floor {
			c.violate("flyby periapsis too low", (floor-rP)/floor)
		}
		if rP > body.SOI {
			c.violate("flyby periapsis outside of the sphere of influence", (rP-body.SOI)/body.SOI)
		}
		fb := mga.Maneuver{Kind: mga.Flyby, Body: body.ID, Date: c.dates[k+1], Magnitude: Δv, Periapsis: rP}
		if err := p.orient(&fb, body, mga.Sub(out, in)); err != nil {
			return c.fail(err.Error())
		}
		c.maneuvers = append(c.maneuvers, fb)
	}

	if !p.c.NoInsertion {
		last := c.legs[len(c.legs)-1]
		rPark := p.dest.Radius + p.c.DestinationAltitude
		ins := mga.Maneuver{Kind: mga.Insertion, Body: p.dest.ID, Date: c.dates[len(c.dates)-1], Periapsis: rPark}
		ins.Magnitude = mga.EscapeΔv(mga.Norm(last.VInfIn), rPark, p.dest.GM())
		if err := p.orient(&ins, p.dest, mga.Scale(-1, last.VInfIn)); err != nil {
			return c.fail(err.Error())
		}
		c.maneuvers = append(c.maneuvers, ins)
	}
	for _, m := range c.maneuvers {
		c.total += m.Magnitude
	}
	if math.IsNaN(c.total) || math.IsInf(c.total, 0) {
		return c.fail("non finite Δv")
	}
	return c
}

// orient sets the position of the maneuver and decomposes its Δv, along dir, in the prograde, normal
// and radial frame of the body's orbit.
func (p *problem) orient(m *mga.Maneuver, b mga.Body, dir []float64) error {
	R, V, err := b.StateAt(m.Date)
	if err != nil {
		return err
	}
	m.R = R
	Δv := mga.Scale(m.Magnitude, mga.Unit(dir))
	m.Prograde, m.Normal, m.Radial = mga.PNR(Δv, R, V)
	return nil
}

// resonantVInf returns the V infinity leaving a body at R, V such that the spacecraft period is T.
// The V infinity keeps the magnitude vInf and is cranked by ψ about the body velocity, in the
// velocity-normal-conormal frame of the body.
func resonantVInf(R, V []float64, vInf, ψ, T, μ float64) ([]float64, bool) {
	if vInf < 1e-9 {
		return nil, false
	}
	aRes := math.Pow(μ*math.Pow(T/(2*math.Pi), 2), 1/3.)
	v2 := μ * (2/mga.Norm(R) - 1/aRes)
	if v2 <= 0 {
		return nil, false
	}
	vBody := mga.Norm(V)
	cosθ := (v2 - vInf*vInf - vBody*vBody) / (-2 * vInf * vBody)
	if math.Abs(cosθ) > 1 {
		return nil, false
	}
	θ := math.Acos(cosθ)
	sψ, cψ := math.Sincos(ψ)
	vnc := []float64{vInf * math.Cos(math.Pi-θ), vInf * math.Sin(math.Pi-θ) * cψ, -vInf * math.Sin(math.Pi-θ) * sψ}
	vHat := mga.Unit(V)
	nHat := mga.Unit(mga.Cross(R, V))
	cHat := mga.Cross(vHat, nHat)
	out := mga.Scale(vnc[0], vHat)
	out = mga.Add(out, mga.Scale(vnc[1], nHat))
	return mga.Add(out, mga.Scale(vnc[2], cHat)), true
}
