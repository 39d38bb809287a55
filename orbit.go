package mga

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats/scalar"
)

const (
	eccentricityε = 5e-5                         // 0.00005
	angleε        = (5e-3 / 360) * (2 * math.Pi) // 0.005 degrees
)

// Orbit defines an orbit via its orbital elements about a body of gravitational parameter μ.
// All angles are in radians.
//
// For near circular orbits (e < 5e-5), ω is zero and ν stores the argument of latitude.
// For near equatorial orbits (i < 0.005 deg), Ω is zero and ω stores the longitude of periapsis.
// Both hold at once for circular equatorial orbits, where ν is then the true longitude.
type Orbit struct {
	a, e, i, Ω, ω, ν float64
	μ                float64
}

// GM returns the gravitational parameter of the orbited body.
func (o Orbit) GM() float64 {
	return o.μ
}

// Energyξ returns the specific mechanical energy ξ.
func (o Orbit) Energyξ() float64 {
	return -o.μ / (2 * o.a)
}

// SemiMajorAxis returns a, which is negative for hyperbolic orbits.
func (o Orbit) SemiMajorAxis() float64 {
	return o.a
}

// Eccentricity returns e.
func (o Orbit) Eccentricity() float64 {
	return o.e
}

// Inclination returns i.
func (o Orbit) Inclination() float64 {
	return o.i
}

// TrueAnomaly returns ν.
func (o Orbit) TrueAnomaly() float64 {
	return o.ν
}

// Tildeω returns the longitude of periapsis.
func (o Orbit) Tildeω() float64 {
	return math.Mod(o.ω+o.Ω, 2*math.Pi)
}

// TrueLongλ returns the *approximate* true longitude (cf. Vallado page 103).
func (o Orbit) TrueLongλ() float64 {
	return math.Mod(o.ω+o.Ω+o.ν, 2*math.Pi)
}

// ArgLatitudeU returns the argument of latitude.
func (o Orbit) ArgLatitudeU() float64 {
	return math.Mod(o.ν+o.ω, 2*math.Pi)
}

// SemiParameter returns the semi parameter p.
func (o Orbit) SemiParameter() float64 {
	return o.a * (1 - o.e*o.e)
}

// Apoapsis returns the apoapsis.
func (o Orbit) Apoapsis() float64 {
	return o.a * (1 + o.e)
}

// Periapsis returns the periapsis.
func (o Orbit) Periapsis() float64 {
	return o.a * (1 - o.e)
}

// Period returns the period of this orbit, or zero if it is not closed.
func (o Orbit) Period() time.Duration {
	if o.e >= 1 {
		return 0
	}
	return secondsToDuration(2 * math.Pi * math.Sqrt(math.Pow(o.a, 3)/o.μ))
}

// RNorm returns the norm of the radius vector, but without computing the radius vector.
func (o Orbit) RNorm() float64 {
	return o.SemiParameter() / (1 + o.e*math.Cos(o.ν))
}

// VNorm returns the norm of the velocity vector, but without computing the velocity vector.
func (o Orbit) VNorm() float64 {
	if scalar.EqualWithinAbs(o.e, 1, eccentricityε) {
		return math.Sqrt(2 * o.μ / o.RNorm())
	}
	return math.Sqrt(2 * (o.μ/o.RNorm() + o.Energyξ()))
}

// RV returns the radius and velocity vectors in the frame of the orbited body.
func (o Orbit) RV() ([]float64, []float64) {
	p := o.SemiParameter()
	sinν, cosν := math.Sincos(o.ν)
	R := []float64{p * cosν / (1 + o.e*cosν), p * sinν / (1 + o.e*cosν), 0}
	vp := math.Sqrt(o.μ / p)
	V := []float64{-vp * sinν, vp * (o.e + cosν), 0}
	return PQW2ECI(o.i, o.ω, o.Ω, R), PQW2ECI(o.i, o.ω, o.Ω, V)
}

// R returns the radius vector.
func (o Orbit) R() []float64 {
	R, _ := o.RV()
	return R
}

// V returns the velocity vector.
func (o Orbit) V() []float64 {
	_, V := o.RV()
	return V
}

// H returns the orbital angular momentum vector.
func (o Orbit) H() []float64 {
	return Cross(o.RV())
}

// Elements returns the nine orbital elements which work in all types of orbits
func (o Orbit) Elements() (a, e, i, Ω, ω, ν, λ, tildeω, u float64) {
	return o.a, o.e, o.i, o.Ω, o.ω, o.ν, o.TrueLongλ(), o.Tildeω(), o.ArgLatitudeU()
}

// String implements the stringer interface (hence the value receiver)
func (o Orbit) String() string {
	if o.e < eccentricityε {
		// Circular orbit
		if o.i > angleε {
			return fmt.Sprintf("a=%.1f e=%.4f i=%.3f Ω=%.3f u=%.3f", o.a, o.e, Rad2deg(o.i), Rad2deg(o.Ω), Rad2deg(o.ArgLatitudeU()))
		}
		// Equatorial
		return fmt.Sprintf("a=%.1f e=%.4f i=%.3f λ=%.3f", o.a, o.e, Rad2deg(o.i), Rad2deg(o.TrueLongλ()))
	}
	return fmt.Sprintf("a=%.1f e=%.4f i=%.3f Ω=%.3f ω=%.3f ν=%.3f", o.a, o.e, Rad2deg(o.i), Rad2deg(o.Ω), Rad2deg(o.ω), Rad2deg(o.ν))
}

// NewOrbitFromOE creates an orbit from the orbital elements. Angles are in radians.
func NewOrbitFromOE(a, e, i, Ω, ω, ν, μ float64) *Orbit {
	return &Orbit{a, e, i, wrap2π(Ω), wrap2π(ω), wrap2π(ν), μ}
}

// NewOrbitFromRV returns orbital elements from the R and V vectors.
// The singular circular and equatorial cases are handled as documented on Orbit.
func NewOrbitFromRV(R, V []float64, μ float64) (*Orbit, error) {
	r := Norm(R)
	v := Norm(V)
	if r < zeroε {
		return nil, NewNumerical("zero radius vector")
	}
	// From Vallado's RV2COE, page 113
	hVec := Cross(R, V)
	h := Norm(hVec)
	if h < zeroε {
		return nil, NewNumerical("rectilinear trajectory (R and V are colinear)")
	}
	n := Cross([]float64{0, 0, 1}, hVec)
	ξ := (v*v)/2 - μ/r
	a := -μ / (2 * ξ)
	eVec := make([]float64, 3)
	rv := Dot(R, V)
	for j := 0; j < 3; j++ {
		eVec[j] = ((v*v-μ/r)*R[j] - rv*V[j]) / μ
	}
	e := Norm(eVec)
	i := math.Acos(clampUnit(hVec[2] / h))
	circular := e < eccentricityε
	equatorial := i < angleε || math.Pi-i < angleε

	var Ω, ω, ν float64
	switch {
	case circular && equatorial:
		// True longitude, measured from the x axis.
		ν = math.Atan2(R[1], R[0])
		if hVec[2] < 0 {
			ν = -ν
		}
	case circular:
		Ω = math.Atan2(n[1], n[0])
		// Argument of latitude.
		ν = math.Acos(clampUnit(Dot(n, R) / (Norm(n) * r)))
		if R[2] < 0 {
			ν = 2*math.Pi - ν
		}
	case equatorial:
		// Longitude of periapsis.
		ω = math.Atan2(eVec[1], eVec[0])
		if hVec[2] < 0 {
			ω = -ω
		}
		ν = trueAnomaly(eVec, e, R, r, rv)
	default:
		Ω = math.Atan2(n[1], n[0])
		ω = math.Acos(clampUnit(Dot(n, eVec) / (Norm(n) * e)))
		if eVec[2] < 0 {
			ω = 2*math.Pi - ω
		}
		ν = trueAnomaly(eVec, e, R, r, rv)
	}
	return NewOrbitFromOE(a, e, i, Ω, ω, ν, μ), nil
}

func trueAnomaly(eVec []float64, e float64, R []float64, r, rv float64) float64 {
	// cosν may be slightly out of [-1;1] due to rounding, which would lead Acos to NaN.
	ν := math.Acos(clampUnit(Dot(eVec, R) / (e * r)))
	if rv < 0 {
		ν = 2*math.Pi - ν
	}
	return ν
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
