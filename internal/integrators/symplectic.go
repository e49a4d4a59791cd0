package integrators

import (
	"github.com/san-kum/multiphys/internal/ledger"
	"github.com/san-kum/multiphys/internal/phys"
)

// The symplectic variants follow the position/velocity naming convention of
// the ledger; every other field falls back to a forward-Euler update. No
// other field name is special-cased anywhere in this package.
const (
	fieldPosition = "position"
	fieldVelocity = "velocity"
)

// SymplecticEuler updates velocity first, then position using the updated
// velocity. The ordering is what makes the method energy-conserving on
// Hamiltonian-like systems.
type SymplecticEuler struct {
	audit
}

func NewSymplecticEuler() *SymplecticEuler {
	return &SymplecticEuler{audit: defaultAudit()}
}

func (se *SymplecticEuler) Name() string { return "symplectic" }

func (se *SymplecticEuler) Step(s phys.StateVector, f DerivFunc, t, dt float64) (phys.StateVector, ledger.Report) {
	d := f(s, t)
	result := make(phys.StateVector, len(s))
	for k, v := range s {
		result[k] = v + dt*d[k]
	}

	if _, ok := s[fieldVelocity]; ok {
		vNew := s[fieldVelocity] + dt*d[fieldVelocity]
		result[fieldVelocity] = vNew
		if _, ok := s[fieldPosition]; ok {
			result[fieldPosition] = s[fieldPosition] + dt*vNew
		}
	}
	return result, se.check(s, result)
}

// VelocityVerlet computes a half-step velocity, a full-step position, then
// completes the velocity update with a second derivative evaluation at the
// new position.
type VelocityVerlet struct {
	audit
}

func NewVelocityVerlet() *VelocityVerlet {
	return &VelocityVerlet{audit: defaultAudit()}
}

func (vv *VelocityVerlet) Name() string { return "verlet" }

func (vv *VelocityVerlet) Step(s phys.StateVector, f DerivFunc, t, dt float64) (phys.StateVector, ledger.Report) {
	d := f(s, t)
	result := make(phys.StateVector, len(s))
	for k, v := range s {
		result[k] = v + dt*d[k]
	}

	v0, hasVel := s[fieldVelocity]
	x0, hasPos := s[fieldPosition]
	if hasVel && hasPos {
		a1 := d[fieldVelocity]
		vHalf := v0 + 0.5*dt*a1
		xNew := x0 + dt*vHalf

		probe := s.Clone()
		probe[fieldPosition] = xNew
		probe[fieldVelocity] = vHalf
		a2 := f(probe, t+dt)[fieldVelocity]

		result[fieldPosition] = xNew
		result[fieldVelocity] = vHalf + 0.5*dt*a2
	}
	return result, vv.check(s, result)
}
