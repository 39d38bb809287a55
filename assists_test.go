package mga

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

func TestGravityAssistRoundTrip(t *testing.T) {
	vInfIn := []float64{-4.92205, 5.36316, -2.2216}
	rP := 6378.1363 + 1200
	for _, β := range []float64{0, 0.7, math.Pi / 2, 2.5, -1} {
		vInfOut := Deflect(vInfIn, rP, β, μEarth)
		if !scalar.EqualWithinRel(Norm(vInfOut), Norm(vInfIn), 1e-12) {
			t.Fatalf("β=%f: unpowered flyby changed |v∞|: %f != %f", β, Norm(vInfOut), Norm(vInfIn))
		}
		ψ, rPga, _, _, B, _ := GAFromVinf(vInfIn, vInfOut, μEarth)
		if exp := GATurnAngle(Norm(vInfIn), rP, μEarth); !scalar.EqualWithinAbs(ψ, exp, 1e-9) {
			t.Fatalf("β=%f: turn angle %f != %f", β, ψ, exp)
		}
		if !scalar.EqualWithinRel(rPga, rP, 1e-6) {
			t.Fatalf("β=%f: rP %f != %f", β, rPga, rP)
		}
		if B <= rP {
			t.Fatalf("β=%f: B=%f cannot be smaller than the periapsis", β, B)
		}
		rPpow, Δv, err := PoweredFlyby(vInfIn, vInfOut, μEarth)
		if err != nil {
			t.Fatal(err)
		}
		if !scalar.EqualWithinRel(rPpow, rP, 1e-6) {
			t.Fatalf("β=%f: powered flyby rP %f != %f", β, rPpow, rP)
		}
		if Δv > 1e-9 {
			t.Fatalf("β=%f: unpowered flyby needs Δv=%g", β, Δv)
		}
	}
}

func TestPoweredFlyby(t *testing.T) {
	vi := []float64{5, 0, 0}
	vo := []float64{6 * math.Cos(0.5), 6 * math.Sin(0.5), 0}
	rP, Δv, err := PoweredFlyby(vi, vo, μEarth)
	if err != nil {
		t.Fatal(err)
	}
	ei := 1 + rP*25/μEarth
	eo := 1 + rP*36/μEarth
	if turn := math.Asin(1/ei) + math.Asin(1/eo); !scalar.EqualWithinAbs(turn, 0.5, 1e-8) {
		t.Fatalf("periapsis does not achieve the turn: %f", turn)
	}
	if exp := math.Sqrt(36+2*μEarth/rP) - math.Sqrt(25+2*μEarth/rP); !scalar.EqualWithinAbs(Δv, exp, 1e-12) {
		t.Fatalf("Δv=%f exp %f", Δv, exp)
	}
	if Δv <= 0 || Δv >= 1 {
		t.Fatalf("Δv at periapsis must be less than the change of v∞: %f", Δv)
	}
	// No turn at all: the flyby happens at infinity.
	rP, Δv, err = PoweredFlyby(vi, []float64{7, 0, 0}, μEarth)
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsInf(rP, 1) || Δv != 2 {
		t.Fatalf("expected an infinite periapsis and Δv=2, got rP=%f Δv=%f", rP, Δv)
	}
	if _, _, err = PoweredFlyby([]float64{0, 0, 0}, vo, μEarth); !IsKind(err, KindNumerical) {
		t.Fatalf("expected a numerical error, got %v", err)
	}
}

func TestEscapeΔv(t *testing.T) {
	if Δv := EscapeΔv(3, 6378.1363+200, μEarth); !scalar.EqualWithinAbs(Δv, 3.6257980841, 1e-9) {
		t.Fatalf("escape Δv=%f", Δv)
	}
	// With no excess speed, the Δv is the one to reach the escape velocity.
	r := 7000.0
	if Δv := EscapeΔv(0, r, μEarth); !scalar.EqualWithinAbs(Δv, (math.Sqrt2-1)*math.Sqrt(μEarth/r), 1e-12) {
		t.Fatalf("escape Δv=%f", Δv)
	}
}
