package solvers

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/san-kum/multiphys/internal/phys"
)

// gaussianPacket builds ψ(x) = exp(-(x-x0)²/2σ²)·exp(ik0x) on a periodic
// domain centered at zero.
func gaussianPacket(n int, length, x0, sigma, k0 float64) []complex128 {
	psi := make([]complex128, n)
	dx := length / float64(n)
	for i := range psi {
		x := (float64(i) - float64(n)/2) * dx
		env := math.Exp(-(x - x0) * (x - x0) / (2 * sigma * sigma))
		psi[i] = complex(env, 0) * cmplx.Exp(complex(0, k0*x))
	}
	return psi
}

func harmonicWell(n int, length, k float64) []float64 {
	v := make([]float64, n)
	dx := length / float64(n)
	for i := range v {
		x := (float64(i) - float64(n)/2) * dx
		v[i] = 0.5 * k * x * x
	}
	return v
}

func newTestQuantum(t *testing.T, n int) *Quantum1D {
	t.Helper()
	p := DefaultQuantumParams()
	q, err := NewQuantum1D("qm", phys.NewSession(), n, p,
		harmonicWell(n, p.Length, 1.0),
		gaussianPacket(n, p.Length, 2.0, 1.0, 0.0))
	if err != nil {
		t.Fatal(err)
	}
	return q
}

func TestQuantum1DNormConserved(t *testing.T) {
	q := newTestQuantum(t, 256)

	if math.Abs(q.Norm()-1) > 1e-12 {
		t.Fatalf("wavefunction not normalized at construction: %f", q.Norm())
	}

	for i := 0; i < 1000; i++ {
		if _, err := q.Step(0.001); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	// Every split-step factor is unitary, so the norm survives to rounding.
	if math.Abs(q.Norm()-1) > 1e-9 {
		t.Errorf("norm drifted to %.12f after 1000 steps", q.Norm())
	}
}

func TestQuantum1DEnergyStable(t *testing.T) {
	q := newTestQuantum(t, 256)

	e0 := q.Energy().Quantum
	for i := 0; i < 500; i++ {
		if _, err := q.Step(0.001); err != nil {
			t.Fatal(err)
		}
	}
	drift := math.Abs(q.Energy().Quantum-e0) / math.Max(math.Abs(e0), 1)
	if drift > 1e-3 {
		t.Errorf("energy drift %.3e too large for split-step propagation", drift)
	}
}

func TestQuantum1DPacketOscillatesInWell(t *testing.T) {
	// A displaced packet in a harmonic well swings back through center.
	q := newTestQuantum(t, 256)

	x0 := q.KinematicState()["mean_position"]
	if x0 <= 0.5 {
		t.Fatalf("packet should start displaced, got mean position %f", x0)
	}

	crossed := false
	for i := 0; i < 4000; i++ {
		if _, err := q.Step(0.002); err != nil {
			t.Fatal(err)
		}
		if q.KinematicState()["mean_position"] < 0 {
			crossed = true
			break
		}
	}
	if !crossed {
		t.Error("packet never crossed the well center")
	}
}

func TestQuantum1DRequiresPowerOfTwo(t *testing.T) {
	p := DefaultQuantumParams()
	_, err := NewQuantum1D("qm", phys.NewSession(), 100, p,
		make([]float64, 100), make([]complex128, 100))
	if err == nil {
		t.Fatal("non-power-of-two grid must be rejected")
	}
}

func TestQuantum1DAbsorbIsNoop(t *testing.T) {
	q := newTestQuantum(t, 64)
	if got := q.AbsorbEnergy(5.0); got != 0 {
		t.Errorf("unitary ring absorbed %f", got)
	}
}

func TestQuantum1DReset(t *testing.T) {
	q := newTestQuantum(t, 128)
	e0 := q.Energy().Quantum

	for i := 0; i < 200; i++ {
		q.Step(0.001)
	}
	q.Reset()

	if math.Abs(q.Energy().Quantum-e0) > 1e-12 {
		t.Error("reset must restore the initial wavefunction")
	}
	if math.Abs(q.Norm()-1) > 1e-12 {
		t.Error("reset state must stay normalized")
	}
}
