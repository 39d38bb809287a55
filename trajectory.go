package mga

import (
	"fmt"
	"strings"
	"time"
)

// ManeuverKind is the kind of an impulsive maneuver.
type ManeuverKind uint8

const (
	// Departure is the escape burn from the parking orbit about the origin.
	Departure ManeuverKind = iota + 1
	// Flyby is the periapsis burn of a powered gravity assist.
	Flyby
	// Insertion is the capture burn into the parking orbit about the destination.
	Insertion
)

func (k ManeuverKind) String() string {
	switch k {
	case Departure:
		return "departure"
	case Flyby:
		return "flyby"
	case Insertion:
		return "insertion"
	default:
		return fmt.Sprintf("ManeuverKind(%d)", k)
	}
}

// Maneuver is an impulsive burn at a body.
// The ΔV components are expressed in the prograde, normal and radial frame of the body's own orbit.
type Maneuver struct {
	Kind      ManeuverKind
	Body      BodyID
	Date      time.Time
	R         []float64 // Body position in the attractor frame, km
	Prograde  float64
	Normal    float64
	Radial    float64
	Magnitude float64 // km/s
	Periapsis float64 // Radius of periapsis of the hyperbola, km
}

// ΔV returns the (prograde, normal, radial) vector.
func (m Maneuver) ΔV() []float64 {
	return []float64{m.Prograde, m.Normal, m.Radial}
}

func (m Maneuver) String() string {
	return fmt.Sprintf("%s at %d on %s: |Δv|=%.4f km/s (P=%.4f N=%.4f R=%.4f) rP=%.1f km", m.Kind, m.Body, m.Date.UTC().Format(time.RFC3339), m.Magnitude, m.Prograde, m.Normal, m.Radial, m.Periapsis)
}

// Leg is the heliocentric (or planetocentric) arc between two encounters.
type Leg struct {
	From, To  BodyID
	Departure time.Time
	Arrival   time.Time
	VInfOut   []float64 // Hyperbolic excess velocity leaving From
	VInfIn    []float64 // Hyperbolic excess velocity reaching To
	// Resonance is the number of body and spacecraft revolutions of a resonant leg, zero otherwise.
	Resonance [2]int
}

// TOF returns the time of flight of the leg.
func (l Leg) TOF() time.Duration {
	return l.Arrival.Sub(l.Departure)
}

// Trajectory is the realization of a sequence.
type Trajectory struct {
	Sequence  Sequence
	Maneuvers []Maneuver
	Legs      []Leg
	Dates     []time.Time // Encounter dates, one per body of the sequence
	TotalΔV   float64
}

// Departure returns the launch date.
func (t Trajectory) Departure() time.Time {
	return t.Dates[0]
}

// Arrival returns the date of arrival at the destination.
func (t Trajectory) Arrival() time.Time {
	return t.Dates[len(t.Dates)-1]
}

// Duration returns the total mission duration.
func (t Trajectory) Duration() time.Duration {
	return t.Arrival().Sub(t.Departure())
}

func (t Trajectory) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: Δv=%.4f km/s over %.1f days\n", t.Sequence, t.TotalΔV, t.Duration().Hours()/24)
	for _, m := range t.Maneuvers {
		fmt.Fprintf(&b, "  %s\n", m)
	}
	return b.String()
}
