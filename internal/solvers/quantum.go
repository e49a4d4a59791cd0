package solvers

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/san-kum/multiphys/internal/phys"
)

// QuantumParams configures a 1D wavefunction ring in natural units
// (ħ = m = 1) on a periodic domain of the given length.
type QuantumParams struct {
	Length float64
	// PotentialScale multiplies the stored potential; coupling adjusts it.
	PotentialScale float64
}

func DefaultQuantumParams() QuantumParams {
	return QuantumParams{Length: 20.0, PotentialScale: 1.0}
}

// Quantum1D propagates a wavefunction by the split-step Fourier method:
// a kinetic half step applied in k-space, a potential full step in real
// space, then the second kinetic half step. Each factor is unitary, so the
// norm is conserved to rounding.
//
// The FFT requires a power-of-two grid.
type Quantum1D struct {
	id string
	p  QuantumParams

	n    int
	dx   float64
	k2   []float64 // squared wavenumbers, FFT ordering
	pot  []float64
	psi  []complex128
	psi0 []complex128
	sig  phys.EntropySignature
	time float64

	potScale float64
}

// NewQuantum1D builds a propagator over n grid points (n must be a power
// of two) with a real potential and initial wavefunction. The wavefunction
// is normalized at construction.
func NewQuantum1D(id string, sess *phys.Session, n int, p QuantumParams, potential []float64, psi0 []complex128) (*Quantum1D, error) {
	if n < 4 || n&(n-1) != 0 {
		return nil, fmt.Errorf("%w: grid size %d is not a power of two",
			phys.ErrConfiguration, n)
	}
	if len(potential) != n || len(psi0) != n {
		return nil, fmt.Errorf("%w: potential and wavefunction must have %d points",
			phys.ErrConfiguration, n)
	}

	dx := p.Length / float64(n)
	k2 := make([]float64, n)
	for i := 0; i < n; i++ {
		m := i
		if i > n/2 {
			m = i - n
		}
		k := 2 * math.Pi * float64(m) / p.Length
		k2[i] = k * k
	}

	q := &Quantum1D{
		id: id, p: p, n: n, dx: dx, k2: k2,
		pot:      cloneSlice(potential),
		psi:      make([]complex128, n),
		psi0:     make([]complex128, n),
		potScale: p.PotentialScale,
	}
	copy(q.psi, psi0)
	q.normalize()
	copy(q.psi0, q.psi)
	return q, nil
}

func (q *Quantum1D) ID() string { return q.id }

func (q *Quantum1D) normalize() {
	norm := math.Sqrt(q.Norm())
	if norm == 0 {
		return
	}
	for i := range q.psi {
		q.psi[i] /= complex(norm, 0)
	}
}

// Norm is ∫|ψ|² dx; unity for a normalized state.
func (q *Quantum1D) Norm() float64 {
	sum := 0.0
	for _, c := range q.psi {
		sum += real(c)*real(c) + imag(c)*imag(c)
	}
	return sum * q.dx
}

func (q *Quantum1D) Step(dt float64) (float64, error) {
	before := q.energyExpectation()

	// exp(-i k²/2 · dt/2) in k-space, both half steps.
	kinHalf := make([]complex128, q.n)
	for i, k2 := range q.k2 {
		kinHalf[i] = cmplx.Exp(complex(0, -0.25*k2*dt))
	}

	psiK := fft.FFT(q.psi)
	for i := range psiK {
		psiK[i] *= kinHalf[i]
	}
	q.psi = fft.IFFT(psiK)

	for i := range q.psi {
		q.psi[i] *= cmplx.Exp(complex(0, -q.potScale*q.pot[i]*dt))
	}

	psiK = fft.FFT(q.psi)
	for i := range psiK {
		psiK[i] *= kinHalf[i]
	}
	q.psi = fft.IFFT(psiK)

	for _, c := range q.psi {
		if cmplx.IsNaN(c) || cmplx.IsInf(c) {
			return 0, &phys.StepError{Ring: q.id, Time: q.time, Wrapped: phys.ErrNumericalInstability}
		}
	}

	q.time += dt
	return q.energyExpectation() - before, nil
}

// energyExpectation is <ψ|H|ψ> = Σ k²/2 |ψ_k|² + Σ V |ψ|².
func (q *Quantum1D) energyExpectation() float64 {
	psiK := fft.FFT(q.psi)
	nf := float64(q.n)

	kin := 0.0
	for i, c := range psiK {
		p2 := real(c)*real(c) + imag(c)*imag(c)
		kin += 0.5 * q.k2[i] * p2
	}
	// Parseval: Σ|ψ_k|² = n Σ|ψ|², so renormalize to the real-space sum.
	kin = kin / nf * q.dx

	pot := 0.0
	for i, c := range q.psi {
		pot += q.potScale * q.pot[i] * (real(c)*real(c) + imag(c)*imag(c))
	}
	pot *= q.dx

	return kin + pot
}

func (q *Quantum1D) Energy() phys.EnergyContributions {
	return phys.EnergyContributions{Quantum: q.energyExpectation()}.Sum()
}

func (q *Quantum1D) Entropy() phys.EntropySignature { return q.sig }

func (q *Quantum1D) KinematicState() map[string]float64 {
	// Position expectation over the periodic domain.
	x := 0.0
	for i, c := range q.psi {
		xi := (float64(i) - float64(q.n)/2) * q.dx
		x += xi * (real(c)*real(c) + imag(c)*imag(c))
	}
	return map[string]float64{
		"norm":          q.Norm(),
		"mean_position": x * q.dx,
		"time":          q.time,
	}
}

// AbsorbEnergy is a no-op: unitary evolution has no channel to take in
// classical energy.
func (q *Quantum1D) AbsorbEnergy(amount float64) float64 { return 0 }

func (q *Quantum1D) CouplingTo(targetID string) *phys.CouplingData { return nil }

// ReceiveCoupling lets a sibling modulate the potential strength, clamped
// to [0.5, 2]× the configured scale.
func (q *Quantum1D) ReceiveCoupling(sourceID string, data phys.CouplingData) {
	if s, ok := data.FieldValues["potential_scale"]; ok {
		q.potScale = clamp(s*q.p.PotentialScale, 0.5*q.p.PotentialScale, 2*q.p.PotentialScale)
	}
}

func (q *Quantum1D) Reset() {
	copy(q.psi, q.psi0)
	q.potScale = q.p.PotentialScale
	q.sig = phys.EntropySignature{}
	q.time = 0
}

func (q *Quantum1D) Serialize() map[string]float64 {
	return map[string]float64{
		"time":            q.time,
		"norm":            q.Norm(),
		"energy":          q.energyExpectation(),
		"potential_scale": q.potScale,
		"points":          float64(q.n),
	}
}
