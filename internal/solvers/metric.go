package solvers

import (
	"fmt"
	"math"

	"github.com/san-kum/multiphys/internal/phys"
)

// MetricParams configures a spacetime metric ring in geometrized units
// (G = c = 1): a central mass and a radial probe of the given test mass
// drifting at RadialRate.
type MetricParams struct {
	CentralMass float64
	ProbeMass   float64
	Radius      float64
	RadialRate  float64
}

func DefaultMetricParams() MetricParams {
	return MetricParams{CentralMass: 1.0, ProbeMass: 1e-3, Radius: 10.0, RadialRate: 0}
}

// Metric evaluates a Schwarzschild-like diagonal metric at the probe
// radius each step. A probe at or inside the Schwarzschild radius makes
// the metric non-invertible, which is fatal: the evaluation cannot
// continue past a singular metric.
type Metric struct {
	id     string
	p      MetricParams
	rs     float64 // Schwarzschild radius 2M
	radius float64
	sig    phys.EntropySignature
	time   float64
}

func NewMetric(id string, sess *phys.Session, p MetricParams) (*Metric, error) {
	if p.CentralMass <= 0 {
		return nil, fmt.Errorf("%w: central mass must be positive", phys.ErrBoundViolation)
	}
	rs := 2 * p.CentralMass
	if p.Radius <= rs {
		return nil, fmt.Errorf("%w: probe radius %g inside Schwarzschild radius %g",
			phys.ErrBoundViolation, p.Radius, rs)
	}
	return &Metric{id: id, p: p, rs: rs, radius: p.Radius}, nil
}

func (m *Metric) ID() string { return m.id }

// Components returns the diagonal metric at the current radius:
// g_tt, g_rr, g_θθ, g_φφ (equatorial plane).
func (m *Metric) Components() (gtt, grr, gthth, gphph float64) {
	f := 1 - m.rs/m.radius
	return -f, 1 / f, m.radius * m.radius, m.radius * m.radius
}

// Determinant of the diagonal metric; zero or non-finite means singular.
func (m *Metric) Determinant() float64 {
	gtt, grr, gthth, gphph := m.Components()
	return gtt * grr * gthth * gphph
}

// TimeDilation is dτ/dt = sqrt(1 - rs/r) for a static probe.
func (m *Metric) TimeDilation() float64 {
	return math.Sqrt(1 - m.rs/m.radius)
}

func (m *Metric) Step(dt float64) (float64, error) {
	before := m.potential()

	m.radius += m.p.RadialRate * dt
	if m.radius <= m.rs {
		return 0, &phys.StepError{Ring: m.id, Time: m.time, Wrapped: phys.ErrNumericalInstability}
	}
	det := m.Determinant()
	if det == 0 || math.IsNaN(det) || math.IsInf(det, 0) {
		return 0, &phys.StepError{Ring: m.id, Time: m.time, Wrapped: phys.ErrNumericalInstability}
	}

	m.time += dt
	return m.potential() - before, nil
}

// potential is the Newtonian-limit gravitational energy -Mm/r of the probe.
func (m *Metric) potential() float64 {
	return -m.p.CentralMass * m.p.ProbeMass / m.radius
}

func (m *Metric) Energy() phys.EnergyContributions {
	return phys.EnergyContributions{Potential: m.potential()}.Sum()
}

func (m *Metric) Entropy() phys.EntropySignature { return m.sig }

func (m *Metric) KinematicState() map[string]float64 {
	return map[string]float64{
		"radius":        m.radius,
		"time_dilation": m.TimeDilation(),
		"time":          m.time,
	}
}

// AbsorbEnergy raises the probe's orbit: ΔE = Mm/r² Δr. Energy that would
// push the probe inside the horizon is refused.
func (m *Metric) AbsorbEnergy(amount float64) float64 {
	dr := amount * m.radius * m.radius / (m.p.CentralMass * m.p.ProbeMass)
	if m.radius+dr <= m.rs {
		return 0
	}
	m.radius += dr
	return amount
}

func (m *Metric) CouplingTo(targetID string) *phys.CouplingData { return nil }

// ReceiveCoupling ignores payloads: the metric is background geometry.
func (m *Metric) ReceiveCoupling(sourceID string, data phys.CouplingData) {}

func (m *Metric) Reset() {
	m.radius = m.p.Radius
	m.sig = phys.EntropySignature{}
	m.time = 0
}

func (m *Metric) Serialize() map[string]float64 {
	gtt, grr, gthth, gphph := m.Components()
	return map[string]float64{
		"time":          m.time,
		"radius":        m.radius,
		"g_tt":          gtt,
		"g_rr":          grr,
		"g_thth":        gthth,
		"g_phph":        gphph,
		"determinant":   m.Determinant(),
		"time_dilation": m.TimeDilation(),
	}
}
