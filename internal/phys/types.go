package phys

import "math"

// StateVector maps named scalar fields (position, velocity, temperature,
// concentration, ...) to values. Key insertion order carries no meaning;
// the key set is stable for the lifetime of a simulation.
type StateVector map[string]float64

func (s StateVector) Clone() StateVector {
	c := make(StateVector, len(s))
	for k, v := range s {
		c[k] = v
	}
	return c
}

func (s StateVector) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s StateVector) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// EnergyContributions breaks a ring's total energy into physical channels.
// Total must equal the sum of the named parts; rings report zero for
// channels they do not model.
type EnergyContributions struct {
	Kinetic         float64
	Potential       float64
	Thermal         float64
	Chemical        float64
	Electromagnetic float64
	Quantum         float64
	Total           float64
}

// Sum fills Total from the named parts, keeping the invariant in one place.
func (e EnergyContributions) Sum() EnergyContributions {
	e.Total = e.Kinetic + e.Potential + e.Thermal + e.Chemical +
		e.Electromagnetic + e.Quantum
	return e
}

// EntropySignature tracks entropy channels for one ring. Irreversible never
// decreases across a dissipative step; Total accumulates for the ring's
// lifetime and clears only on Reset.
type EntropySignature struct {
	Thermal         float64
	Configurational float64
	Information     float64
	Irreversible    float64
	Total           float64
}

func (e EntropySignature) Sum() EntropySignature {
	e.Total = e.Thermal + e.Configurational + e.Information + e.Irreversible
	return e
}

// CouplingData is the payload one ring pushes to another along a registered
// edge, once per global step, before either ring advances.
type CouplingData struct {
	EnergyFlux  float64
	EntropyFlux float64
	SourceRing  string
	TargetRing  string
	FieldValues map[string]float64
}

// Ring is the capability contract every domain solver implements. A ring
// exclusively owns its internal arrays; nothing outside mutates them except
// through Step and ReceiveCoupling.
type Ring interface {
	ID() string

	// Step advances the domain by dt and returns the energy delta for the
	// step. Fatal numerical conditions (non-finite fields, singular metric)
	// halt the ring with an error.
	Step(dt float64) (float64, error)

	Energy() EnergyContributions
	Entropy() EntropySignature

	// KinematicState exposes representative positions/velocities or field
	// statistics as a flat view.
	KinematicState() map[string]float64

	// AbsorbEnergy offers energy to the ring and returns the amount it
	// actually absorbed.
	AbsorbEnergy(amount float64) float64

	// CouplingTo builds the payload this ring pushes toward targetID, or
	// nil when it has nothing to exchange this step.
	CouplingTo(targetID string) *CouplingData

	// ReceiveCoupling folds a sibling's payload into internally derived
	// effective parameters. Out-of-range input is clamped, never rejected.
	ReceiveCoupling(sourceID string, data CouplingData)

	// Reset restores the initial snapshot taken at construction.
	Reset()

	// Serialize flattens the ring's observable state to named scalars for
	// audit trails and persistence.
	Serialize() map[string]float64
}
