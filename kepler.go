package mga

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/kepler"
	"github.com/soniakeys/unit"
)

// J2000 is the reference epoch of the built-in system.
var J2000 = julian.JDToTime(2451545.0)

// keplerPlaces is the number of decimal places requested from the Kepler equation solver.
const keplerPlaces = 12

// Elements are the osculating elements of a closed orbit at a given epoch. Angles are in radians.
type Elements struct {
	A, E, I float64
	RAAN    float64
	ArgPeri float64
	M0      float64 // Mean anomaly at Epoch
	Epoch   time.Time
}

// MeanMotion returns the mean motion in radians per second about a body of parameter μ.
func (el Elements) MeanMotion(μ float64) float64 {
	return math.Sqrt(μ / math.Pow(el.A, 3))
}

// Period returns the orbital period about a body of parameter μ.
func (el Elements) Period(μ float64) time.Duration {
	return secondsToDuration(2 * math.Pi / el.MeanMotion(μ))
}

// OrbitAt returns the osculating orbit at dt, propagated with two-body dynamics.
func (el Elements) OrbitAt(dt time.Time, μ float64) (*Orbit, error) {
	if el.A <= 0 || el.E < 0 || el.E >= 1 {
		return nil, NewNumerical("elements a=%f e=%f do not define a closed orbit", el.A, el.E)
	}
	M := wrap2π(el.M0 + el.MeanMotion(μ)*dt.Sub(el.Epoch).Seconds())
	E, err := EccentricAnomaly(el.E, M)
	if err != nil {
		return nil, err
	}
	ν := kepler.True(unit.Angle(E), el.E).Rad()
	return NewOrbitFromOE(el.A, el.E, el.I, el.RAAN, el.ArgPeri, ν, μ), nil
}

// StateAt returns the position and velocity at dt in the frame of the orbited body.
func (el Elements) StateAt(dt time.Time, μ float64) (R, V []float64, err error) {
	o, err := el.OrbitAt(dt, μ)
	if err != nil {
		return nil, nil, err
	}
	R, V = o.RV()
	return R, V, nil
}

// EccentricAnomaly solves Kepler's equation M = E - e sin E for E.
// Newton iterations are tried first, and the always converging binary search of Meeus is the fallback.
func EccentricAnomaly(e, M float64) (float64, error) {
	if e < 0 || e >= 1 {
		return math.NaN(), NewNumerical("Kepler's equation needs 0 <= e < 1, got %f", e)
	}
	E, err := kepler.Kepler2(e, unit.Angle(M), keplerPlaces)
	if err != nil || math.IsNaN(E.Rad()) {
		E = kepler.Kepler3(e, unit.Angle(M))
	}
	return E.Rad(), nil
}
