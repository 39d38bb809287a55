package mga

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"
)

// TransferType defines the type of Lambert transfer
type TransferType uint8

const (
	// TTypeAuto lets the Lambert solver determine the type
	TTypeAuto TransferType = iota + 1
	// TType1 is transfer of type 1 (zero revolution, short way)
	TType1
	// TType2 is transfer of type 2 (zero revolution, long way)
	TType2
)

const (
	lambertε       = 1e-4                   // General epsilon
	lambertTε      = 1e-10                  // Relative time of flight epsilon
	lambertνε      = (5e-5 / 180) * math.Pi // 0.00005 degrees
	lambertMaxIter = 500
)

// Longway returns whether or not this is the long way.
func (t TransferType) Longway() bool {
	return t == TType2
}

func (t TransferType) String() string {
	switch t {
	case TTypeAuto:
		return "auto"
	case TType1:
		return "type-1"
	case TType2:
		return "type-2"
	default:
		return fmt.Sprintf("TransferType(%d)", t)
	}
}

// Hohmann computes an Hohmann transfer between two circular coplanar orbits of radii rI and rF.
// It returns the speed at departure and arrival on the transfer ellipse, and the time of flight.
// To get final computations:
// ΔvInit = vDepature - vI
// ΔvFinal = vArrival - vF
func Hohmann(rI, rF, μ float64) (vDeparture, vArrival float64, tof time.Duration) {
	aTransfer := 0.5 * (rI + rF)
	vDeparture = math.Sqrt((2 * μ / rI) - (μ / aTransfer))
	vArrival = math.Sqrt((2 * μ / rF) - (μ / aTransfer))
	tof = secondsToDuration(math.Pi * math.Sqrt(math.Pow(aTransfer, 3)/μ))
	return
}

// Lambert solves the Lambert boundary problem:
// Given the initial and final radii and a central body, it returns the needed initial and final velocities
// along with φ which is the square of the difference in eccentric anomaly. Note that the direction of motion
// is computed directly in this function to simplify the generation of Pork chop plots.
// Errors are of the numerical kind: the caller is expected to discard the transfer.
func Lambert(Ri, Rf *mat.VecDense, Δt0 time.Duration, ttype TransferType, μ float64) (Vi, Vf *mat.VecDense, φ float64, err error) {
	// Initialize return variables
	Vi = mat.NewVecDense(3, nil)
	Vf = mat.NewVecDense(3, nil)
	// Sanity checks
	if Ri.Len() != Rf.Len() || Ri.Len() != 3 {
		err = NewNumerical("initial and final radii must be 3x1 vectors")
		return
	}
	Δt0Sec := Δt0.Seconds()
	if Δt0Sec <= 0 {
		err = NewNumerical("time of flight must be positive, got %s", Δt0)
		return
	}
	rI := mat.Norm(Ri, 2)
	rF := mat.Norm(Rf, 2)
	if rI < zeroε || rF < zeroε {
		err = NewNumerical("zero radius in Lambert problem")
		return
	}
	cosΔν := clampUnit(mat.Dot(Ri, Rf) / (rI * rF))
	// Compute the direction of motion
	νI := math.Atan2(Ri.AtVec(1), Ri.AtVec(0))
	νF := math.Atan2(Rf.AtVec(1), Rf.AtVec(0))
	dm := 1.0
	if ttype == TType2 {
		dm = -1.0
	} else if ttype == TTypeAuto {
		Δν := νF - νI
		if Δν > 2*math.Pi {
			Δν -= 2 * math.Pi
		} else if Δν < 0 {
			Δν += 2 * math.Pi
		}
		if Δν > math.Pi {
			dm = -1.0
		} // We don't do the < math.Pi case because that's the initial value anyway.
	}

	A := dm * math.Sqrt(rI*rF*(1+cosΔν))
	if math.Abs(νF-νI) < lambertνε && scalar.EqualWithinAbs(A, 0, lambertε) {
		err = NewNumerical("cannot compute trajectory: Δν ~=0 and A ~=0")
		return
	}

	φup := 4 * math.Pow(math.Pi, 2)
	φlow := -4 * math.Pi
	// Initial guesses for c2 and c3
	c2 := 1 / 2.
	c3 := 1 / 6.
	var Δt, y float64
	Δt = math.Inf(-1)
	for iteration := 0; math.Abs(Δt-Δt0Sec) > lambertTε*Δt0Sec; iteration++ {
		if iteration > lambertMaxIter || φup-φlow < 1e-14 {
			err = NewNumerical("Lambert did not converge after %d iterations", iteration)
			return
		}
		y = rI + rF + A*(φ*c3-1)/math.Sqrt(c2)
		if A > 0 && y < 0 {
			tmpIt := 0
			for y < 0 {
				φ += 0.1
				y = rI + rF + A*(φ*c3-1)/math.Sqrt(c2)
				if tmpIt > lambertMaxIter {
					err = NewNumerical("did not converge after %d attempts to increase φ", lambertMaxIter)
					return
				}
				tmpIt++
			}
		}
		χ := math.Sqrt(y / c2)
		Δt = (math.Pow(χ, 3)*c3 + A*math.Sqrt(y)) / math.Sqrt(μ)
		if Δt <= Δt0Sec {
			φlow = φ
		} else {
			φup = φ
		}
		φ = (φup + φlow) / 2
		c2, c3 = stumpff(φ)
	}
	f := 1 - y/rI
	gDot := 1 - y/rF
	g := (A * math.Sqrt(y/μ))
	if scalar.EqualWithinAbs(g, 0, zeroε) {
		err = NewNumerical("degenerate Lambert transfer (g ~= 0)")
		return
	}
	// Compute velocities
	Rf2 := mat.NewVecDense(3, nil)
	Vi.AddScaledVec(Rf, -f, Ri)
	Vi.ScaleVec(1/g, Vi)
	Rf2.ScaleVec(gDot, Rf)
	Vf.AddScaledVec(Rf2, -1, Ri)
	Vf.ScaleVec(1/g, Vf)
	return
}

// stumpff returns the c2 and c3 Stumpff functions of φ.
func stumpff(φ float64) (c2, c3 float64) {
	if φ > lambertε {
		sφ := math.Sqrt(φ)
		ssφ, csφ := math.Sincos(sφ)
		c2 = (1 - csφ) / φ
		c3 = (sφ - ssφ) / math.Sqrt(math.Pow(φ, 3))
	} else if φ < -lambertε {
		sφ := math.Sqrt(-φ)
		c2 = (1 - math.Cosh(sφ)) / φ
		c3 = (math.Sinh(sφ) - sφ) / math.Sqrt(math.Pow(-φ, 3))
	} else {
		c2 = 1 / 2.
		c3 = 1 / 6.
	}
	return
}

// LambertRV is a convenience wrapper of Lambert on plain slices with automatic transfer type.
func LambertRV(Ri, Rf []float64, tof time.Duration, μ float64) (Vi, Vf []float64, err error) {
	vi, vf, _, err := Lambert(mat.NewVecDense(3, Ri), mat.NewVecDense(3, Rf), tof, TTypeAuto, μ)
	if err != nil {
		return nil, nil, err
	}
	Vi = []float64{vi.AtVec(0), vi.AtVec(1), vi.AtVec(2)}
	Vf = []float64{vf.AtVec(0), vf.AtVec(1), vf.AtVec(2)}
	for _, v := range append(Vi, Vf...) {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, nil, NewNumerical("Lambert produced a non finite velocity")
		}
	}
	return Vi, Vf, nil
}
