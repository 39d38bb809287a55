package mga

import (
	"math"
)

// flybyBisections bounds the periapsis search of a powered flyby.
const flybyBisections = 200

// GATurnAngle computes the turn angle about a body of parameter μ based on the radius of periapsis.
func GATurnAngle(vInf, rP, μ float64) float64 {
	ρ := math.Acos(1 / (1 + math.Pow(vInf, 2)*(rP/μ)))
	return math.Pi - 2*ρ
}

// GAFromVinf computes unpowered gravity assist parameters about a body of parameter μ from the V infinity
// vectors: the turn angle ψ, the radius of periapsis and the B-plane components.
// All angles are in radians!
func GAFromVinf(vInfInVec, vInfOutVec []float64, μ float64) (ψ, rP, bT, bR, B, θ float64) {
	vInfIn := Norm(vInfInVec)
	vInfOut := Norm(vInfOutVec)
	ψ = math.Acos(clampUnit(Dot(vInfInVec, vInfOutVec) / (vInfIn * vInfOut)))
	rP = (μ / math.Pow(vInfIn, 2)) * (1/math.Cos((math.Pi-ψ)/2) - 1)
	k := []float64{0, 0, 1}
	sHat := Unit(vInfInVec)
	tHat := Unit(Cross(sHat, k))
	rHat := Unit(Cross(sHat, tHat))
	hHat := Unit(Cross(vInfInVec, vInfOutVec))
	bVec := Unit(Cross(sHat, hHat))
	bVal := (μ / math.Pow(vInfIn, 2)) * math.Sqrt(math.Pow(1+math.Pow(vInfIn, 2)*(rP/μ), 2)-1)
	for i := 0; i < 3; i++ {
		bVec[i] *= bVal
	}
	bT = Dot(bVec, tHat)
	bR = Dot(bVec, rHat)
	B = Norm(bVec)
	θ = math.Atan2(bT, bR)
	return
}

// PoweredFlyby returns the radius of periapsis and the impulsive Δv applied at periapsis required to turn
// vInfIn into vInfOut about a body of parameter μ. The magnitudes of the V infinity may differ: the
// periapsis is the one for which the incoming and outgoing hyperbolas together achieve the turn angle.
// A null turn angle leads to an infinite periapsis and the Δv is the difference of the magnitudes.
func PoweredFlyby(vInfIn, vInfOut []float64, μ float64) (rP, Δv float64, err error) {
	vi := Norm(vInfIn)
	vo := Norm(vInfOut)
	if vi < zeroε || vo < zeroε {
		return math.NaN(), math.NaN(), NewNumerical("flyby with a null V infinity")
	}
	δ := math.Acos(clampUnit(Dot(vInfIn, vInfOut) / (vi * vo)))
	if δ < 1e-9 {
		return math.Inf(1), math.Abs(vo - vi), nil
	}
	// Half turn of each hyperbola minus the requested turn: π-δ at rP = 0, then strictly decreasing.
	residual := func(rp float64) float64 {
		return math.Asin(1/(1+rp*vi*vi/μ)) + math.Asin(1/(1+rp*vo*vo/μ)) - δ
	}
	lo, hi := 0.0, μ/(vi*vo)
	for it := 0; residual(hi) > 0; it++ {
		if it > flybyBisections {
			return math.NaN(), math.NaN(), NewNumerical("could not bracket the flyby periapsis")
		}
		lo = hi
		hi *= 2
	}
	for it := 0; it < flybyBisections && hi-lo > 1e-9*hi; it++ {
		mid := (lo + hi) / 2
		if residual(mid) > 0 {
			lo = mid
		} else {
			hi = mid
		}
	}
	rP = (lo + hi) / 2
	Δv = math.Abs(math.Sqrt(vo*vo+2*μ/rP) - math.Sqrt(vi*vi+2*μ/rP))
	return rP, Δv, nil
}

// Deflect returns the outgoing V infinity of an unpowered flyby at periapsis rP about a body of
// parameter μ. β is the angle of the B-plane vector from the T axis (ecliptic reference), which selects
// the plane of the flyby.
func Deflect(vInfIn []float64, rP, β, μ float64) []float64 {
	vi := Norm(vInfIn)
	δ := GATurnAngle(vi, rP, μ)
	sHat := Unit(vInfIn)
	tHat := Unit(Cross(sHat, []float64{0, 0, 1}))
	if Norm(tHat) == 0 {
		tHat = []float64{1, 0, 0}
	}
	rHat := Cross(sHat, tHat)
	sβ, cβ := math.Sincos(β)
	// Rotation axis, orthogonal to the incoming V infinity.
	k := Add(Scale(cβ, tHat), Scale(sβ, rHat))
	sδ, cδ := math.Sincos(δ)
	return Add(Scale(cδ, vInfIn), Scale(sδ, Cross(k, vInfIn)))
}

// EscapeΔv returns the Δv needed to leave a circular parking orbit of radius rPark about a body of
// parameter μ with a hyperbolic excess speed vInf. It is also the capture Δv into that orbit.
func EscapeΔv(vInf, rPark, μ float64) float64 {
	return math.Sqrt(vInf*vInf+2*μ/rPark) - math.Sqrt(μ/rPark)
}
