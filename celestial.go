package mga

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

const (
	// AU is one astronomical unit in kilometers.
	AU = 1.49597870700e8
)

// BodyID identifies a body in a System.
type BodyID int

// NoBody is the attractor of the central star.
const NoBody BodyID = -1

// Body defines a celestial object orbiting its attractor on a Keplerian orbit.
type Body struct {
	ID        BodyID
	Name      string
	Attractor BodyID
	Radius    float64 // km
	SOI       float64 // Sphere of influence radius in km, with respect to the attractor
	Elements  Elements
	μ         float64
	μParent   float64 // Set when the body is added to a System
}

// NewBody returns a body of gravitational parameter μ. A zero SOI is computed when the system is built.
func NewBody(id BodyID, name string, attractor BodyID, μ, radius, soi float64, el Elements) Body {
	return Body{ID: id, Name: name, Attractor: attractor, Radius: radius, SOI: soi, Elements: el, μ: μ}
}

// GM returns μ (which is unexported because it's a lowercase letter)
func (b Body) GM() float64 {
	return b.μ
}

// AttractorGM returns μ of the attractor, zero for the star or a body not added to a System.
func (b Body) AttractorGM() float64 {
	return b.μParent
}

// IsStar returns whether this body is the central body of its system.
func (b Body) IsStar() bool {
	return b.Attractor == NoBody
}

// String implements the Stringer interface.
func (b Body) String() string {
	return b.Name + " body"
}

// Period returns the orbital period of the body about its attractor, zero for the star.
func (b Body) Period() time.Duration {
	if b.IsStar() {
		return 0
	}
	return b.Elements.Period(b.μParent)
}

// StateAt returns the position and velocity at dt with respect to the attractor.
// The star is always at the origin.
func (b Body) StateAt(dt time.Time) (R, V []float64, err error) {
	if b.IsStar() {
		return []float64{0, 0, 0}, []float64{0, 0, 0}, nil
	}
	return b.Elements.StateAt(dt, b.μParent)
}

// OrbitAt returns the osculating orbit of the body at dt.
func (b Body) OrbitAt(dt time.Time) (*Orbit, error) {
	if b.IsStar() {
		return nil, NewNumerical("%s does not orbit anything", b.Name)
	}
	return b.Elements.OrbitAt(dt, b.μParent)
}

// System is an immutable tree of bodies orbiting a single star. It is safe for concurrent reads.
type System struct {
	bodies   map[BodyID]Body
	names    map[string]BodyID
	children map[BodyID][]BodyID
	order    []BodyID
	star     BodyID
}

// NewSystem builds a system from its bodies, exactly one of which must be the star.
// The bodies are copied.
func NewSystem(bodies []Body) (*System, error) {
	s := &System{
		bodies:   make(map[BodyID]Body, len(bodies)),
		names:    make(map[string]BodyID, len(bodies)),
		children: make(map[BodyID][]BodyID),
		star:     NoBody,
	}
	for _, b := range bodies {
		if b.ID == NoBody {
			return nil, NewPrecondition("body %q uses the reserved identifier %d", b.Name, NoBody)
		}
		if _, dup := s.bodies[b.ID]; dup {
			return nil, NewPrecondition("duplicate body identifier %d", b.ID)
		}
		key := strings.ToLower(strings.TrimSpace(b.Name))
		if key == "" {
			return nil, NewPrecondition("body %d has no name", b.ID)
		}
		if _, dup := s.names[key]; dup {
			return nil, NewPrecondition("duplicate body name %q", b.Name)
		}
		if !(b.μ > 0) || !(b.Radius > 0) {
			return nil, NewPrecondition("%s must have a positive gravitational parameter and radius", b.Name)
		}
		if b.IsStar() {
			if s.star != NoBody {
				return nil, NewPrecondition("both %s and %s are central bodies", s.bodies[s.star].Name, b.Name)
			}
			s.star = b.ID
		} else if !(b.Elements.A > 0) || b.Elements.E < 0 || b.Elements.E >= 1 {
			return nil, NewPrecondition("%s must be on a closed orbit (a=%f, e=%f)", b.Name, b.Elements.A, b.Elements.E)
		}
		s.bodies[b.ID] = b
		s.names[key] = b.ID
		s.order = append(s.order, b.ID)
	}
	if s.star == NoBody {
		return nil, NewPrecondition("system has no central body")
	}
	for _, id := range s.order {
		b := s.bodies[id]
		if b.IsStar() {
			b.SOI = math.Inf(1)
			s.bodies[id] = b
			continue
		}
		parent, ok := s.bodies[b.Attractor]
		if !ok {
			return nil, NewPrecondition("%s orbits unknown body %d", b.Name, b.Attractor)
		}
		// Walk up: a cycle never reaches the star.
		cur, depth := b, 0
		for !cur.IsStar() {
			if depth > len(s.order) {
				return nil, NewPrecondition("%s is part of an attractor cycle", b.Name)
			}
			next, ok := s.bodies[cur.Attractor]
			if !ok {
				return nil, NewPrecondition("%s orbits unknown body %d", cur.Name, cur.Attractor)
			}
			cur = next
			depth++
		}
		b.μParent = parent.μ
		if b.SOI <= 0 {
			b.SOI = b.Elements.A * math.Pow(b.μ/parent.μ, 2./5)
		}
		s.bodies[id] = b
		s.children[b.Attractor] = append(s.children[b.Attractor], id)
	}
	return s, nil
}

// Body returns the body of that identifier.
func (s *System) Body(id BodyID) (Body, bool) {
	b, ok := s.bodies[id]
	return b, ok
}

// ByName returns the body of that name, ignoring case.
func (s *System) ByName(name string) (Body, bool) {
	id, ok := s.names[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Body{}, false
	}
	return s.bodies[id], true
}

// Star returns the central body.
func (s *System) Star() Body {
	return s.bodies[s.star]
}

// Bodies returns all the bodies in construction order.
func (s *System) Bodies() []Body {
	out := make([]Body, len(s.order))
	for i, id := range s.order {
		out[i] = s.bodies[id]
	}
	return out
}

// Children returns the bodies directly orbiting id.
func (s *System) Children(id BodyID) []BodyID {
	return append([]BodyID(nil), s.children[id]...)
}

// Siblings returns the other bodies orbiting the attractor of id, sorted by semi major axis.
func (s *System) Siblings(id BodyID) []BodyID {
	b, ok := s.bodies[id]
	if !ok || b.IsStar() {
		return nil
	}
	var out []BodyID
	for _, c := range s.children[b.Attractor] {
		if c != id {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return s.bodies[out[i]].Elements.A < s.bodies[out[j]].Elements.A
	})
	return out
}

// Ancestors returns the attractors of id, from its own up to the star.
func (s *System) Ancestors(id BodyID) []BodyID {
	var out []BodyID
	b, ok := s.bodies[id]
	for ok && !b.IsStar() {
		out = append(out, b.Attractor)
		b, ok = s.bodies[b.Attractor]
	}
	return out
}

// CommonAttractor returns the attractor shared by all the provided bodies.
// It returns false if any body is unknown, is the star, or orbits a different attractor.
func (s *System) CommonAttractor(ids ...BodyID) (BodyID, bool) {
	common := NoBody
	for i, id := range ids {
		b, ok := s.bodies[id]
		if !ok || b.IsStar() {
			return NoBody, false
		}
		if i == 0 {
			common = b.Attractor
		} else if b.Attractor != common {
			return NoBody, false
		}
	}
	return common, common != NoBody
}

// SequenceNames renders a sequence with body names, e.g. "Earth-Venus-Earth-Jupiter".
func (s *System) SequenceNames(seq Sequence) string {
	names := make([]string, len(seq))
	for i, id := range seq {
		if b, ok := s.bodies[id]; ok {
			names[i] = b.Name
		} else {
			names[i] = fmt.Sprintf("%d", id)
		}
	}
	return strings.Join(names, "-")
}

/* Built-in solar system */

// Identifiers of the built-in solar system, after the NAIF numbering.
const (
	MercuryID  BodyID = 1
	VenusID    BodyID = 2
	EarthID    BodyID = 3
	MarsID     BodyID = 4
	JupiterID  BodyID = 5
	SaturnID   BodyID = 6
	UranusID   BodyID = 7
	NeptuneID  BodyID = 8
	SunID      BodyID = 10
	MoonID     BodyID = 301
	IoID       BodyID = 501
	EuropaID   BodyID = 502
	GanymedeID BodyID = 503
	CallistoID BodyID = 504
)

// planetElements converts the JPL approximate mean elements (a in AU, angles in degrees, L the mean
// longitude and ϖ the longitude of perihelion) at J2000.
func planetElements(a, e, i, L, ϖ, Ω float64) Elements {
	return Elements{A: a * AU, E: e, I: i * deg2rad, RAAN: wrap2π(Ω * deg2rad), ArgPeri: wrap2π((ϖ - Ω) * deg2rad), M0: wrap2π((L - ϖ) * deg2rad), Epoch: J2000}
}

// moonElements builds elements from a in km and angles in degrees at J2000.
func moonElements(a, e, i, Ω, ω, M float64) Elements {
	return Elements{A: a, E: e, I: i * deg2rad, RAAN: Ω * deg2rad, ArgPeri: ω * deg2rad, M0: M * deg2rad, Epoch: J2000}
}

// SolarSystem returns the Sun, the eight planets, the Moon and the Galilean moons on their mean orbits.
// Planets are heliocentric in the ecliptic frame; moons orbit their planet.
func SolarSystem() *System {
	bodies := []Body{
		NewBody(SunID, "Sun", NoBody, 1.32712440018e11, 695700, 0, Elements{}),
		NewBody(MercuryID, "Mercury", SunID, 2.2032e4, 2439.7, 0, planetElements(0.38709927, 0.20563593, 7.00497902, 252.25032350, 77.45779628, 48.33076593)),
		NewBody(VenusID, "Venus", SunID, 3.24859e5, 6051.8, 0, planetElements(0.72333566, 0.00677672, 3.39467605, 181.97909950, 131.60246718, 76.67984255)),
		NewBody(EarthID, "Earth", SunID, 3.986004418e5, 6378.1363, 924645.0, planetElements(1.00000261, 0.01671123, 0, 100.46457166, 102.93768193, 0)),
		NewBody(MarsID, "Mars", SunID, 4.282837e4, 3396.19, 576000, planetElements(1.52371034, 0.09339410, 1.84969142, -4.55343205, -23.94362959, 49.55953891)),
		NewBody(JupiterID, "Jupiter", SunID, 1.26686534e8, 71492, 48.2e6, planetElements(5.20288700, 0.04838624, 1.30439695, 34.39644051, 14.72847983, 100.47390909)),
		NewBody(SaturnID, "Saturn", SunID, 3.7931187e7, 60268, 0, planetElements(9.53667594, 0.05386179, 2.48599187, 49.95424423, 92.59887831, 113.66242448)),
		NewBody(UranusID, "Uranus", SunID, 5.793939e6, 25559, 0, planetElements(19.18916464, 0.04725744, 0.77263783, 313.23810451, 170.95427630, 74.01692503)),
		NewBody(NeptuneID, "Neptune", SunID, 6.836529e6, 24764, 0, planetElements(30.06992276, 0.00859048, 1.77004347, -55.12002969, 44.96476227, 131.78422574)),
		NewBody(MoonID, "Moon", EarthID, 4902.8, 1737.4, 0, moonElements(384400, 0.0549, 5.145, 125.08, 318.15, 135.27)),
		NewBody(IoID, "Io", JupiterID, 5959.9, 1821.6, 0, moonElements(421700, 0.0041, 0.05, 43.977, 84.129, 342.021)),
		NewBody(EuropaID, "Europa", JupiterID, 3202.7, 1560.8, 0, moonElements(671034, 0.009, 0.47, 219.106, 88.970, 171.016)),
		NewBody(GanymedeID, "Ganymede", JupiterID, 9887.8, 2634.1, 0, moonElements(1070412, 0.0013, 0.20, 63.552, 192.417, 317.540)),
		NewBody(CallistoID, "Callisto", JupiterID, 7179.3, 2410.3, 0, moonElements(1882709, 0.0074, 0.19, 298.848, 52.643, 181.408)),
	}
	sys, err := NewSystem(bodies)
	if err != nil {
		panic(fmt.Errorf("built-in solar system is invalid: %s", err))
	}
	return sys
}
