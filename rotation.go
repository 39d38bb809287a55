package mga

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// PQW2ECI converts a vector from the perifocal frame to the frame of the orbited body.
func PQW2ECI(i, ω, Ω float64, vI []float64) []float64 {
	return Rot313Vec(-ω, -i, -Ω, vI)
}

// Rot313Vec rotates the given vector with a 3-1-3 Euler rotation.
func Rot313Vec(θ1, θ2, θ3 float64, vI []float64) []float64 {
	return MxV33(R3R1R3(θ1, θ2, θ3), vI)
}

// R3R1R3 performs a 3-1-3 Euler parameter rotation.
// From Schaub and Junkins (the one in Vallado is wrong... surprinsingly, right? =/)
func R3R1R3(θ1, θ2, θ3 float64) *mat.Dense {
	sθ1, cθ1 := math.Sincos(θ1)
	sθ2, cθ2 := math.Sincos(θ2)
	sθ3, cθ3 := math.Sincos(θ3)
	return mat.NewDense(3, 3, []float64{cθ3*cθ1 - sθ3*cθ2*sθ1, cθ3*sθ1 + sθ3*cθ2*cθ1, sθ3 * sθ2,
		-sθ3*cθ1 - cθ3*cθ2*sθ1, -sθ3*sθ1 + cθ3*cθ2*cθ1, cθ3 * sθ2,
		sθ2 * sθ1, -sθ2 * cθ1, cθ2})
}

// MxV33 multiplies a matrix with a vector. Note that there is no dimension check!
func MxV33(m mat.Matrix, v []float64) []float64 {
	var rVec mat.VecDense
	rVec.MulVec(m, mat.NewVecDense(len(v), v))
	return []float64{rVec.AtVec(0), rVec.AtVec(1), rVec.AtVec(2)}
}

// PNRFrame returns the direction cosine matrix whose rows are the prograde, normal and radial
// unit vectors of a body at R moving at V.
//
// The frame degrades gracefully:
//   - if V is null, prograde is the direction of a prograde circular orbit at R (ẑ × R);
//   - if R and V are colinear (or R is null), normal is ẑ made orthogonal to prograde,
//     or x̂ when prograde is along ẑ.
func PNRFrame(R, V []float64) *mat.Dense {
	p := Unit(V)
	if Norm(p) == 0 {
		p = Unit(Cross([]float64{0, 0, 1}, R))
		if Norm(p) == 0 {
			p = []float64{1, 0, 0}
		}
	}
	n := Unit(Cross(R, V))
	if Norm(n) == 0 {
		z := []float64{0, 0, 1}
		n = Unit(Sub(z, Scale(Dot(z, p), p)))
		if Norm(n) == 0 {
			n = Unit(Sub([]float64{1, 0, 0}, Scale(p[0], p)))
		}
	}
	r := Cross(p, n)
	return mat.NewDense(3, 3, []float64{p[0], p[1], p[2], n[0], n[1], n[2], r[0], r[1], r[2]})
}

// PNR decomposes Δv into its prograde, normal and radial (outward) components with respect to
// the orbit defined by R and V. See PNRFrame for the degenerate cases.
func PNR(Δv, R, V []float64) (prograde, normal, radial float64) {
	c := MxV33(PNRFrame(R, V), Δv)
	return c[0], c[1], c[2]
}

// FromPNR is the inverse of PNR.
func FromPNR(prograde, normal, radial float64, R, V []float64) []float64 {
	return MxV33(PNRFrame(R, V).T(), []float64{prograde, normal, radial})
}
