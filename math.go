package mga

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
)

const (
	deg2rad = math.Pi / 180
	// zeroε is the threshold under which a vector norm is considered null.
	zeroε = 1e-12
)

// Norm returns the norm of a given vector which is supposed to be 3x1.
func Norm(v []float64) float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

// Unit returns the unit vector of a given vector, or the null vector if its norm is null.
func Unit(a []float64) (b []float64) {
	n := Norm(a)
	if scalar.EqualWithinAbs(n, 0, zeroε) {
		return []float64{0, 0, 0}
	}
	b = make([]float64, len(a))
	floats.ScaleTo(b, 1/n, a)
	return
}

// sign returns the sign of a given number.
func sign(v float64) float64 {
	if scalar.EqualWithinAbs(v, 0, zeroε) {
		return 1
	}
	return v / math.Abs(v)
}

// Dot performs the inner product.
func Dot(a, b []float64) float64 {
	return floats.Dot(a, b)
}

// Cross performs the cross product.
func Cross(a, b []float64) []float64 {
	return []float64{a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0]} // Cross product R x V.
}

// Sub returns a-b as a new slice.
func Sub(a, b []float64) []float64 {
	return floats.SubTo(make([]float64, len(a)), a, b)
}

// Add returns a+b as a new slice.
func Add(a, b []float64) []float64 {
	return floats.AddTo(make([]float64, len(a)), a, b)
}

// Scale returns s*a as a new slice.
func Scale(s float64, a []float64) []float64 {
	return floats.ScaleTo(make([]float64, len(a)), s, a)
}

// clampUnit brings a cosine back within [-1;1] when rounding pushed it out.
func clampUnit(c float64) float64 {
	if math.Abs(c) > 1 {
		return sign(c)
	}
	return c
}

// Deg2rad converts degrees to radians, and enforced only positive numbers.
func Deg2rad(a float64) float64 {
	if a < 0 {
		a += 360
	}
	return math.Mod(a*deg2rad, 2*math.Pi)
}

// Rad2deg converts radians to degrees, and enforced only positive numbers.
func Rad2deg(a float64) float64 {
	if a < 0 {
		a += 2 * math.Pi
	}
	return math.Mod(a/deg2rad, 360)
}

// wrap2π returns the angle in [0;2π).
func wrap2π(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}
