package mga

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
)

func TestCross(t *testing.T) {
	i := []float64{1, 0, 0}
	j := []float64{0, 1, 0}
	k := []float64{0, 0, 1}
	if !floats.Equal(Cross(i, j), k) {
		t.Fatal("i x j != k")
	}
	if !floats.Equal(Cross(j, k), i) {
		t.Fatal("j x k != i")
	}
	if !floats.Equal(Cross([]float64{2, 3, 4}, []float64{5, 6, 7}), []float64{-3, 6, -3}) {
		t.Fatal("cross fail")
	}
	// From Vallado
	if !floats.EqualApprox(Cross([]float64{6524.834, 6862.875, 6448.296}, []float64{4.901327, 5.533756, -1.976341}), []float64{-4.924667792015100e4, 4.450050424118601e4, 0.246964476137900e4}, 1e-8) {
		t.Fatal("cross fail")
	}
}

func TestAngles(t *testing.T) {
	for i := 0.0; i < 360; i += 0.5 {
		if !scalar.EqualWithinAbs(Rad2deg(Deg2rad(i)), i, 1e-10) {
			t.Fatalf("incorrect conversion for %3.2f", i)
		}
	}
	if !scalar.EqualWithinAbs(Deg2rad(-90), 3*math.Pi/2, 1e-12) {
		t.Fatalf("negative angle not wrapped: %f", Deg2rad(-90))
	}
	if !scalar.EqualWithinAbs(Rad2deg(-math.Pi/2), 270, 1e-12) {
		t.Fatalf("negative angle not wrapped: %f", Rad2deg(-math.Pi/2))
	}
	for _, a := range []float64{-7, -math.Pi, 0, 1, 2 * math.Pi, 13} {
		w := wrap2π(a)
		if w < 0 || w >= 2*math.Pi || !scalar.EqualWithinAbs(math.Sin(w), math.Sin(a), 1e-12) {
			t.Fatalf("wrap2π(%f) = %f", a, w)
		}
	}
}

func TestVectors(t *testing.T) {
	a := []float64{3, 4, 12}
	if Norm(a) != 13 {
		t.Fatalf("|a| = %f", Norm(a))
	}
	if !scalar.EqualWithinAbs(Norm(Unit(a)), 1, 1e-15) {
		t.Fatal("unit vector is not unit")
	}
	if !floats.Equal(Unit([]float64{0, 0, 0}), []float64{0, 0, 0}) {
		t.Fatal("unit of the null vector must be null")
	}
	b := []float64{1, -1, 2}
	if !floats.Equal(Sub(Add(a, b), b), a) {
		t.Fatal("a+b-b != a")
	}
	if !floats.Equal(Scale(2, b), []float64{2, -2, 4}) {
		t.Fatal("invalid scaling")
	}
	if Dot(a, Cross(a, b)) != 0 {
		t.Fatal("cross product not orthogonal")
	}
	if sign(-2) != -1 || sign(0) != 1 || sign(3) != 1 {
		t.Fatal("invalid sign")
	}
	if clampUnit(1+1e-15) != 1 || clampUnit(-1-1e-15) != -1 || clampUnit(0.5) != 0.5 {
		t.Fatal("invalid clamp")
	}
}
