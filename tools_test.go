package mga

import (
	"math"
	"testing"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"
)

const μSun = 1.32712440017987e11

func TestLambertVallado(t *testing.T) {
	// From Vallado 4th edition, page 497
	Ri := mat.NewVecDense(3, []float64{15945.34, 0, 0})
	Rf := mat.NewVecDense(3, []float64{12214.83899, 10249.46731, 0})
	ViExp := mat.NewVecDense(3, []float64{2.058913, 2.915965, 0})
	VfExp := mat.NewVecDense(3, []float64{-3.451565, 0.910315, 0})
	for _, dm := range []TransferType{TTypeAuto, TType1} {
		Vi, Vf, ψ, err := Lambert(Ri, Rf, 76.0*time.Minute, dm, 3.98600433e5)
		if err != nil {
			t.Fatalf("err %s", err)
		}
		if !mat.EqualApprox(Vi, ViExp, 1e-6) {
			t.Logf("ψ=%f", ψ)
			t.Logf("\nGot %+v\nExp %+v\n", mat.Formatted(Vi.T()), mat.Formatted(ViExp.T()))
			t.Fatalf("[%s] incorrect Vi computed", dm)
		}
		if !mat.EqualApprox(Vf, VfExp, 1e-6) {
			t.Logf("ψ=%f", ψ)
			t.Logf("\nGot %+v\nExp %+v\n", mat.Formatted(Vf.T()), mat.Formatted(VfExp.T()))
			t.Fatalf("[%s] incorrect Vf computed", dm)
		}
	}
	// Test with dm=-1
	ViExp = mat.NewVecDense(3, []float64{-3.811158, -2.003854, 0})
	VfExp = mat.NewVecDense(3, []float64{4.207569, 0.914724, 0})
	Vi, Vf, ψ, err := Lambert(Ri, Rf, 76.0*time.Minute, TType2, 3.98600433e5)
	if err != nil {
		t.Fatalf("err %s", err)
	}
	if !mat.EqualApprox(Vi, ViExp, 1e-6) || !mat.EqualApprox(Vf, VfExp, 1e-6) {
		t.Logf("ψ=%f", ψ)
		t.Fatalf("[%s] incorrect velocities computed\nVi=%+v\nVf=%+v", TType2, mat.Formatted(Vi.T()), mat.Formatted(Vf.T()))
	}
}

func TestLambertErrors(t *testing.T) {
	Rf := mat.NewVecDense(3, []float64{12214.83899, 10249.46731, 0})
	if _, _, _, err := Lambert(mat.NewVecDense(2, []float64{15945.34, 0}), Rf, 76.0*time.Minute, TType2, μEarth); !IsKind(err, KindNumerical) {
		t.Fatal("err should be numerical if the R vectors are of different dimensions")
	}
	Ri := mat.NewVecDense(3, []float64{15945.34, 0, 0})
	if _, _, _, err := Lambert(Ri, Rf, -time.Minute, TTypeAuto, μEarth); !IsKind(err, KindNumerical) {
		t.Fatal("err should be numerical for a negative time of flight")
	}
	if _, _, _, err := Lambert(mat.NewVecDense(3, nil), Rf, time.Hour, TTypeAuto, μEarth); !IsKind(err, KindNumerical) {
		t.Fatal("err should be numerical for a null radius")
	}
}

func TestLambertDavisMars2Jupiter(t *testing.T) {
	// From Dr. Davis' ASEN 6008 IMD course at CU.
	Ri := []float64{170145121.3, -117637192.8, -6642044.272}
	Rf := []float64{-803451694.7, 121525767.1, 17465211.78}
	Vi, Vf, err := LambertRV(Ri, Rf, 1200*24*time.Hour, μSun)
	if err != nil {
		t.Fatalf("err = %s", err)
	}
	ViExp := []float64{13.74077736, 28.83099312, 0.691285008}
	VfExp := []float64{-0.883933069, -7.983627014, -0.2407705978}
	if !floats.EqualApprox(Vi, ViExp, 1e-6) {
		t.Fatalf("incorrect Vi computed\nGot %+v\nExp %+v", Vi, ViExp)
	}
	if !floats.EqualApprox(Vf, VfExp, 1e-6) {
		t.Fatalf("incorrect Vf computed\nGot %+v\nExp %+v", Vf, VfExp)
	}
}

func TestLambertKeplerConsistency(t *testing.T) {
	// The Lambert arc between two points of a Keplerian orbit is that orbit.
	o := NewOrbitFromOE(1.3*AU, 0.2, 0.05, 0.4, 1.1, 0.3, μSun)
	R0, V0 := o.RV()
	el := Elements{A: o.a, E: o.e, I: o.i, RAAN: o.Ω, ArgPeri: o.ω, Epoch: J2000}
	E0 := 2 * math.Atan(math.Sqrt((1-o.e)/(1+o.e))*math.Tan(o.ν/2))
	el.M0 = E0 - o.e*math.Sin(E0)
	tof := 150 * 24 * time.Hour
	R1, V1, err := el.StateAt(J2000.Add(tof), μSun)
	if err != nil {
		t.Fatal(err)
	}
	Vi, Vf, err := LambertRV(R0, R1, tof, μSun)
	if err != nil {
		t.Fatal(err)
	}
	if !floats.EqualApprox(Vi, V0, 1e-6) || !floats.EqualApprox(Vf, V1, 1e-6) {
		t.Fatalf("Lambert and Kepler disagree:\nVi=%+v V0=%+v\nVf=%+v V1=%+v", Vi, V0, Vf, V1)
	}
}

func TestHohmann(t *testing.T) {
	// From Vallado, example 6-1.
	μ := 398600.4418
	rI, rF := 6569.4781, 42159.48
	vDep, vArr, tof := Hohmann(rI, rF, μ)
	if !scalar.EqualWithinAbs(vDep-math.Sqrt(μ/rI), 2.457038, 1e-6) {
		t.Fatalf("invalid initial Δv: %f", vDep-math.Sqrt(μ/rI))
	}
	if !scalar.EqualWithinAbs(math.Sqrt(μ/rF)-vArr, 1.478187, 1e-6) {
		t.Fatalf("invalid final Δv: %f", math.Sqrt(μ/rF)-vArr)
	}
	if !scalar.EqualWithinAbs(tof.Hours(), 5.256712, 1e-5) {
		t.Fatalf("invalid time of flight: %f h", tof.Hours())
	}
}
