package integrators

import (
	"github.com/san-kum/multiphys/internal/ledger"
	"github.com/san-kum/multiphys/internal/phys"
)

// RK4 is the classical 4th-order Runge-Kutta method with stage weights
// (1, 2, 2, 1)/6.
type RK4 struct {
	audit
}

func NewRK4() *RK4 {
	return &RK4{audit: defaultAudit()}
}

func (r *RK4) Name() string { return "rk4" }

func (r *RK4) Step(s phys.StateVector, f DerivFunc, t, dt float64) (phys.StateVector, ledger.Report) {
	k1 := f(s, t)
	k2 := f(axpy(s, k1, dt*0.5), t+dt*0.5)
	k3 := f(axpy(s, k2, dt*0.5), t+dt*0.5)
	k4 := f(axpy(s, k3, dt), t+dt)

	result := make(phys.StateVector, len(s))
	dt6 := dt / 6.0
	for k, v := range s {
		result[k] = v + dt6*(k1[k]+2*k2[k]+2*k3[k]+k4[k])
	}
	return result, r.check(s, result)
}
