package solver

import (
	"time"

	"github.com/ChristopherRabotin/mga"
)

// Constraints define the envelope of the trajectory search.
type Constraints struct {
	// Start and End bound the departure date.
	Start, End time.Time
	// OriginAltitude and DestinationAltitude are the altitudes of the circular parking orbits, in km.
	OriginAltitude      float64
	DestinationAltitude float64
	// MinFlybyAltitude is the lowest flyby periapsis altitude, in km.
	MinFlybyAltitude float64
	// MaxDuration caps the mission duration, zero for no cap.
	MaxDuration time.Duration
	// MaxDepartureVInf caps the departure hyperbolic excess speed in km/s, zero for no cap.
	// It is required when the first leg is resonant, since it then bounds a decision variable.
	MaxDepartureVInf float64
	// NoInsertion ends the trajectory with a flyby of the destination instead of a capture.
	NoInsertion bool
}

// Validate checks the sequence and the constraints against the system. It does not run any evaluation.
func Validate(sys *mga.System, seq mga.Sequence, c Constraints) error {
	if sys == nil {
		return mga.NewPrecondition("no system")
	}
	if len(seq) < 2 {
		return mga.NewPrecondition("sequence %q needs at least an origin and a destination", seq)
	}
	for _, id := range seq {
		if _, ok := sys.Body(id); !ok {
			return mga.NewPrecondition("unknown body %d in sequence %s", id, seq)
		}
	}
	if seq.Origin() == seq.Destination() {
		return mga.NewPrecondition("origin and destination of %s are the same body", sys.SequenceNames(seq))
	}
	if _, ok := sys.CommonAttractor(seq...); !ok {
		return mga.NewPrecondition("bodies of %s do not all orbit the same attractor", sys.SequenceNames(seq))
	}
	if c.Start.IsZero() || c.End.IsZero() {
		return mga.NewPrecondition("departure window is not set")
	}
	if c.End.Before(c.Start) {
		return mga.NewPrecondition("departure window ends (%s) before it starts (%s)", c.End.Format(time.RFC3339), c.Start.Format(time.RFC3339))
	}
	if c.OriginAltitude < 0 || c.DestinationAltitude < 0 || c.MinFlybyAltitude < 0 {
		return mga.NewPrecondition("altitudes must be non-negative")
	}
	if c.MaxDuration < 0 {
		return mga.NewPrecondition("maximum duration must be non-negative, got %s", c.MaxDuration)
	}
	if c.MaxDepartureVInf < 0 {
		return mga.NewPrecondition("maximum departure V infinity must be non-negative, got %f", c.MaxDepartureVInf)
	}
	if seq.IsResonantLeg(0) && c.MaxDepartureVInf == 0 {
		return mga.NewPrecondition("a resonant first leg requires a maximum departure V infinity")
	}
	if c.MaxDuration > 0 {
		if shortest := shortestDuration(sys, seq); shortest > c.MaxDuration {
			return mga.NewPrecondition("%s needs at least %.1f days, more than the %.1f days allowed", sys.SequenceNames(seq), shortest.Hours()/24, c.MaxDuration.Hours()/24)
		}
	}
	return nil
}

// shortestDuration is the sum of the shortest admissible time of flight of each leg.
func shortestDuration(sys *mga.System, seq mga.Sequence) time.Duration {
	var d time.Duration
	for k := 0; k < seq.Legs(); k++ {
		from, _ := sys.Body(seq[k])
		to, _ := sys.Body(seq[k+1])
		if seq.IsResonantLeg(k) {
			d += time.Duration(float64(from.Period()) * minResonantBodyRevs())
		} else {
			d += time.Duration(float64(hohmannTOF(from, to)) * minTOFFactor)
		}
	}
	return d
}
