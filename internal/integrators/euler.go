package integrators

import (
	"github.com/san-kum/multiphys/internal/ledger"
	"github.com/san-kum/multiphys/internal/phys"
)

// Euler is the forward Euler method: one derivative evaluation per step.
type Euler struct {
	audit
}

func NewEuler() *Euler {
	return &Euler{audit: defaultAudit()}
}

func (e *Euler) Name() string { return "euler" }

func (e *Euler) Step(s phys.StateVector, f DerivFunc, t, dt float64) (phys.StateVector, ledger.Report) {
	result := axpy(s, f(s, t), dt)
	return result, e.check(s, result)
}

// Midpoint evaluates derivatives at the Euler-predicted half step.
type Midpoint struct {
	audit
}

func NewMidpoint() *Midpoint {
	return &Midpoint{audit: defaultAudit()}
}

func (m *Midpoint) Name() string { return "midpoint" }

func (m *Midpoint) Step(s phys.StateVector, f DerivFunc, t, dt float64) (phys.StateVector, ledger.Report) {
	half := axpy(s, f(s, t), dt*0.5)
	result := axpy(s, f(half, t+dt*0.5), dt)
	return result, m.check(s, result)
}
