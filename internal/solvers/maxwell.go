package solvers

import (
	"fmt"
	"math"

	"github.com/san-kum/multiphys/internal/grid"
	"github.com/san-kum/multiphys/internal/phys"
)

// MaxwellParams configures a 1D FDTD ring. Units are normalized:
// permittivity/permeability default to 1 so c_medium = 1.
type MaxwellParams struct {
	Length       float64
	Permittivity float64
	Permeability float64
}

func DefaultMaxwellParams() MaxwellParams {
	return MaxwellParams{Length: 1.0, Permittivity: 1.0, Permeability: 1.0}
}

// Maxwell1D advances 1D source-free Maxwell equations on a Yee grid:
// Ez lives on the n integer nodes, Hy on the n-1 half nodes, and the two
// fields leapfrog each other by half a timestep. Perfect-electric-conductor
// walls pin Ez at both ends.
//
// Stability requires dt < dx/c_medium; under that bound and a lossless
// medium the total field energy must not grow.
type Maxwell1D struct {
	id string
	g  grid.Uniform1D
	p  MaxwellParams

	Ez, Hy   []float64
	ezPrev   []float64 // Ez from the previous full step
	hyPrev   []float64 // Hy from the previous half step
	ez0, hy0 []float64
	epsEff   float64
	sig      phys.EntropySignature
	time     float64
}

func NewMaxwell1D(id string, sess *phys.Session, n int, p MaxwellParams, ez0 []float64) (*Maxwell1D, error) {
	if len(ez0) != n {
		return nil, fmt.Errorf("%w: initial Ez has %d points, grid has %d",
			phys.ErrConfiguration, len(ez0), n)
	}
	if p.Permittivity <= 0 || p.Permeability <= 0 {
		return nil, fmt.Errorf("%w: permittivity and permeability must be positive",
			phys.ErrBoundViolation)
	}
	g, err := grid.NewUniform1D(n, p.Length)
	if err != nil {
		return nil, err
	}
	m := &Maxwell1D{
		id: id, g: g, p: p,
		Ez: cloneSlice(ez0), Hy: make([]float64, n-1),
		ezPrev: make([]float64, n),
		hyPrev: make([]float64, n-1),
		ez0:    cloneSlice(ez0),
		hy0:    make([]float64, n-1),
		epsEff: p.Permittivity,
	}
	// PEC walls.
	m.Ez[0], m.Ez[n-1] = 0, 0
	m.ez0[0], m.ez0[n-1] = 0, 0
	copy(m.ezPrev, m.Ez)
	return m, nil
}

func (m *Maxwell1D) ID() string { return m.id }

// CourantLimit reports the stability bound dx/c for the current medium.
func (m *Maxwell1D) CourantLimit() float64 {
	c := 1 / math.Sqrt(m.epsEff*m.p.Permeability)
	return m.g.Dx / c
}

func (m *Maxwell1D) Step(dt float64) (float64, error) {
	before := m.fieldEnergy()
	dx := m.g.Dx

	// Half-cell-offset H update, then E a half step later.
	copy(m.ezPrev, m.Ez)
	copy(m.hyPrev, m.Hy)
	for i := range m.Hy {
		m.Hy[i] += dt / (m.p.Permeability * dx) * (m.Ez[i+1] - m.Ez[i])
	}
	for i := 1; i < m.g.N-1; i++ {
		m.Ez[i] += dt / (m.epsEff * dx) * (m.Hy[i] - m.Hy[i-1])
	}

	if !allFinite(m.Ez, m.Hy) {
		return 0, &phys.StepError{Ring: m.id, Time: m.time, Wrapped: phys.ErrNumericalInstability}
	}

	m.time += dt
	return m.fieldEnergy() - before, nil
}

// fieldEnergy is the discrete Yee invariant
// ½∫(ε·E(t)² + μ·H(t−dt/2)·H(t+dt/2)) dx. Both terms are centered on the
// same integer time: E is the pre-update sample bracketed by the two
// half-step H samples, and summation by parts under the PEC walls makes
// this quantity exactly constant for a lossless medium.
func (m *Maxwell1D) fieldEnergy() float64 {
	e := 0.0
	for _, v := range m.ezPrev {
		e += m.epsEff * v * v
	}
	for i, v := range m.Hy {
		e += m.p.Permeability * v * m.hyPrev[i]
	}
	return 0.5 * e * m.g.Dx
}

func (m *Maxwell1D) Energy() phys.EnergyContributions {
	return phys.EnergyContributions{Electromagnetic: m.fieldEnergy()}.Sum()
}

func (m *Maxwell1D) Entropy() phys.EntropySignature { return m.sig }

func (m *Maxwell1D) KinematicState() map[string]float64 {
	return map[string]float64{
		"max_e_field": maxAbs(m.Ez),
		"max_h_field": maxAbs(m.Hy),
		"time":        m.time,
	}
}

// AbsorbEnergy scales the fields to take in electromagnetic energy.
func (m *Maxwell1D) AbsorbEnergy(amount float64) float64 {
	e := m.fieldEnergy()
	if e <= 0 || e+amount <= 0 {
		return 0
	}
	factor := math.Sqrt((e + amount) / e)
	for i := range m.Ez {
		m.Ez[i] *= factor
		m.ezPrev[i] *= factor
	}
	for i := range m.Hy {
		m.Hy[i] *= factor
		m.hyPrev[i] *= factor
	}
	return amount
}

func (m *Maxwell1D) CouplingTo(targetID string) *phys.CouplingData {
	return &phys.CouplingData{
		SourceRing: m.id,
		TargetRing: targetID,
		FieldValues: map[string]float64{
			"field_energy": m.fieldEnergy(),
		},
	}
}

// ReceiveCoupling lets a thermal sibling polarize the medium: the
// effective permittivity tracks temperature, clamped to [1, 10]×ε.
func (m *Maxwell1D) ReceiveCoupling(sourceID string, data phys.CouplingData) {
	if T, ok := data.FieldValues["temperature"]; ok {
		scale := math.Max(T, 1) / referenceTemp
		m.epsEff = clamp(m.p.Permittivity*scale, m.p.Permittivity, 10*m.p.Permittivity)
	}
}

func (m *Maxwell1D) Reset() {
	copy(m.Ez, m.ez0)
	copy(m.ezPrev, m.ez0)
	copy(m.Hy, m.hy0)
	copy(m.hyPrev, m.hy0)
	m.epsEff = m.p.Permittivity
	m.sig = phys.EntropySignature{}
	m.time = 0
}

func (m *Maxwell1D) Serialize() map[string]float64 {
	return map[string]float64{
		"time":             m.time,
		"field_energy":     m.fieldEnergy(),
		"max_e_field":      maxAbs(m.Ez),
		"max_h_field":      maxAbs(m.Hy),
		"permittivity_eff": m.epsEff,
		"points":           float64(m.g.N),
	}
}
