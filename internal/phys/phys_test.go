package phys

import (
	"errors"
	"math"
	"testing"
)

func TestStateVectorClone(t *testing.T) {
	s := StateVector{"position": 1.0, "velocity": -2.5}
	c := s.Clone()
	c["position"] = 9.0
	if s["position"] != 1.0 {
		t.Errorf("clone mutated original: position = %g", s["position"])
	}
	if c["velocity"] != -2.5 {
		t.Errorf("clone lost value: velocity = %g", c["velocity"])
	}
}

func TestStateVectorIsValid(t *testing.T) {
	cases := []struct {
		name  string
		state StateVector
		want  bool
	}{
		{"finite", StateVector{"x": 1, "v": -3}, true},
		{"empty", StateVector{}, true},
		{"nan", StateVector{"x": math.NaN()}, false},
		{"inf", StateVector{"x": math.Inf(1)}, false},
		{"neg_inf", StateVector{"x": math.Inf(-1)}, false},
	}
	for _, tc := range cases {
		if got := tc.state.IsValid(); got != tc.want {
			t.Errorf("%s: IsValid() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestStateVectorNorm(t *testing.T) {
	s := StateVector{"a": 3, "b": 4}
	if got := s.Norm(); math.Abs(got-5) > 1e-12 {
		t.Errorf("Norm() = %g, want 5", got)
	}
}

func TestEnergyContributionsSum(t *testing.T) {
	e := EnergyContributions{Kinetic: 1, Potential: 2, Thermal: 3,
		Chemical: 4, Electromagnetic: 5, Quantum: 6}.Sum()
	if e.Total != 21 {
		t.Errorf("Total = %g, want 21", e.Total)
	}
}

func TestEntropySignatureSum(t *testing.T) {
	sig := EntropySignature{Thermal: 0.5, Configurational: -0.25,
		Irreversible: 1.0}.Sum()
	if math.Abs(sig.Total-1.25) > 1e-12 {
		t.Errorf("Total = %g, want 1.25", sig.Total)
	}
}

func TestSessionDefaultBounds(t *testing.T) {
	sess := NewSession()

	if err := sess.CheckBound("temperature", 293.15); err != nil {
		t.Fatalf("valid temperature rejected: %v", err)
	}
	if err := sess.CheckBound("temperature", -5); !errors.Is(err, ErrBoundViolation) {
		t.Errorf("negative temperature: err = %v, want ErrBoundViolation", err)
	}
	if err := sess.CheckBound("mass", 0); !errors.Is(err, ErrBoundViolation) {
		t.Errorf("zero mass: err = %v, want ErrBoundViolation", err)
	}
	if err := sess.CheckBound("unregistered", -1e9); err != nil {
		t.Errorf("unregistered quantity should pass, got %v", err)
	}
}

func TestSessionRegisterBound(t *testing.T) {
	sess := NewSession()
	sess.RegisterBound("fraction", 0, 1)

	if err := sess.CheckBound("fraction", 0.5); err != nil {
		t.Fatalf("in-range value rejected: %v", err)
	}
	if err := sess.CheckBound("fraction", 1.5); !errors.Is(err, ErrBoundViolation) {
		t.Errorf("out-of-range value: err = %v, want ErrBoundViolation", err)
	}
}

func TestSessionErrorLog(t *testing.T) {
	sess := NewSession()
	sess.CheckBound("mass", -1)
	sess.Record(errors.New("pressure solve did not converge"))
	sess.Record(nil)

	if got := len(sess.Errors()); got != 2 {
		t.Fatalf("log length = %d, want 2", got)
	}

	sess.Reset()
	if got := len(sess.Errors()); got != 0 {
		t.Errorf("log length after Reset = %d, want 0", got)
	}
	// Bounds survive Reset.
	if err := sess.CheckBound("mass", -1); !errors.Is(err, ErrBoundViolation) {
		t.Errorf("bounds table lost after Reset: %v", err)
	}
}

func TestQuantityAddMatchingDims(t *testing.T) {
	a := Q(2.0, DimEnergy)
	b := Q(3.0, DimEnergy)
	sum, err := a.Add(b)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if sum.Value != 5.0 || sum.Dim != DimEnergy {
		t.Errorf("Add = %+v, want 5 J", sum)
	}
}

func TestQuantityAddDimensionMismatch(t *testing.T) {
	_, err := Q(1, DimEnergy).Add(Q(1, DimMomentum))
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("err = %v, want ErrDimensionMismatch", err)
	}
	_, err = Q(1, DimMass).Sub(Q(1, DimTemp))
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("err = %v, want ErrDimensionMismatch", err)
	}
}

func TestQuantityMulDiv(t *testing.T) {
	mass := Q(2.0, DimMass)
	vel := Q(3.0, DimVelocity)

	p := mass.Mul(vel)
	if p.Dim != DimMomentum || p.Value != 6.0 {
		t.Errorf("mass*velocity = %+v, want momentum 6", p)
	}

	e := p.Mul(vel) // m v^2 has energy dimensions
	if e.Dim != DimEnergy {
		t.Errorf("momentum*velocity dim = %v, want %v", e.Dim, DimEnergy)
	}

	ratio := e.Div(Q(300, DimTemp))
	if ratio.Dim != DimEntropy {
		t.Errorf("energy/temperature dim = %v, want %v", ratio.Dim, DimEntropy)
	}
}

func TestStepErrorUnwrap(t *testing.T) {
	inner := &StepError{Ring: "fluid", Time: 1.5, Wrapped: ErrNumericalInstability}
	if !errors.Is(inner, ErrNumericalInstability) {
		t.Errorf("StepError does not unwrap to its sentinel")
	}
}
