// Package ledger computes aggregate conserved quantities from named-field
// states and diffs two snapshots against tolerances. Drift is reported as
// data, never as an error: small numerical drift is expected in long runs
// and must be inspected, not treated as failure.
package ledger

import (
	"fmt"
	"math"

	"github.com/san-kum/multiphys/internal/phys"
)

// Canonical field names the ledger reads from a StateVector.
const (
	FieldMass         = "mass"
	FieldVelocity     = "velocity"
	FieldPosition     = "position"
	FieldTemperature  = "temperature"
	FieldSpecificHeat = "specific_heat"
)

// Schema resolves physical constants and field defaults once at
// construction; snapshot functions never chain per-access fallbacks.
type Schema struct {
	Gravity   float64
	DefaultCp float64
}

func DefaultSchema() Schema {
	return Schema{Gravity: 9.81, DefaultCp: 4186}
}

// Snapshot is an immutable record of aggregate conserved quantities at one
// instant.
type Snapshot struct {
	Energy   float64
	Momentum float64
	Mass     float64
	Entropy  float64
}

// Tolerances bound acceptable drift per conserved quantity. Energy and
// momentum are relative, mass absolute, entropy an absolute decrease.
type Tolerances struct {
	Energy   float64
	Momentum float64
	Mass     float64
	Entropy  float64
}

func DefaultTolerances() Tolerances {
	return Tolerances{Energy: 1e-6, Momentum: 1e-6, Mass: 1e-9, Entropy: 1e-9}
}

// Report is the outcome of a conservation check.
type Report struct {
	Valid      bool
	Errors     map[string]float64
	Violations []string
}

// Take computes a snapshot from a state. Each energy term is included only
// when its input fields are present: kinetic needs mass and velocity,
// potential needs mass and position, thermal needs mass and temperature.
func (sc Schema) Take(s phys.StateVector) Snapshot {
	var snap Snapshot

	m, hasMass := s[FieldMass]
	v, hasVel := s[FieldVelocity]
	h, hasPos := s[FieldPosition]
	T, hasTemp := s[FieldTemperature]

	cp := sc.DefaultCp
	if c, ok := s[FieldSpecificHeat]; ok {
		cp = c
	}

	if hasMass {
		snap.Mass = m
		if hasVel {
			snap.Energy += 0.5 * m * v * v
			snap.Momentum = m * v
		}
		if hasPos {
			snap.Energy += m * sc.Gravity * h
		}
		if hasTemp {
			snap.Energy += m * cp * T
			if T > 0 {
				snap.Entropy = m * cp * math.Log(T)
			}
		}
	}
	return snap
}

// Check diffs initial and final states against tolerances. Energy and
// momentum deltas are normalized by max(|initial|, |final|, 1).
func (sc Schema) Check(initial, final phys.StateVector, tol Tolerances) Report {
	si := sc.Take(initial)
	sf := sc.Take(final)
	return sc.CheckSnapshots(si, sf, tol, hasThermal(initial) || hasThermal(final))
}

// CheckSnapshots diffs two precomputed snapshots. thermal marks whether a
// temperature field was present, enabling the second-law check.
func (sc Schema) CheckSnapshots(si, sf Snapshot, tol Tolerances, thermal bool) Report {
	r := Report{
		Valid:  true,
		Errors: make(map[string]float64, 4),
	}

	dE := math.Abs(sf.Energy-si.Energy) / normScale(si.Energy, sf.Energy)
	r.Errors["energy"] = dE
	if dE > tol.Energy {
		r.Valid = false
		r.Violations = append(r.Violations,
			fmt.Sprintf("energy drift %.3e exceeds tolerance %.3e", dE, tol.Energy))
	}

	dP := math.Abs(sf.Momentum-si.Momentum) / normScale(si.Momentum, sf.Momentum)
	r.Errors["momentum"] = dP
	if dP > tol.Momentum {
		r.Valid = false
		r.Violations = append(r.Violations,
			fmt.Sprintf("momentum drift %.3e exceeds tolerance %.3e", dP, tol.Momentum))
	}

	dM := math.Abs(sf.Mass - si.Mass)
	r.Errors["mass"] = dM
	if dM > tol.Mass {
		r.Valid = false
		r.Violations = append(r.Violations,
			fmt.Sprintf("mass drift %.3e exceeds tolerance %.3e", dM, tol.Mass))
	}

	dS := sf.Entropy - si.Entropy
	r.Errors["entropy"] = dS
	if thermal && dS < -tol.Entropy {
		r.Valid = false
		r.Violations = append(r.Violations,
			fmt.Sprintf("second law violated: entropy decreased by %.3e", -dS))
	}

	return r
}

func normScale(a, b float64) float64 {
	return math.Max(math.Max(math.Abs(a), math.Abs(b)), 1)
}

func hasThermal(s phys.StateVector) bool {
	_, ok := s[FieldTemperature]
	return ok
}
