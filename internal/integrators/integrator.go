// Package integrators provides explicit time-stepping strategies over
// named-scalar state vectors. Every step is audited by the conservation
// ledger before it is returned; the report travels with the new state so
// callers can inspect drift without the integrator deciding what is fatal.
package integrators

import (
	"fmt"
	"sort"
	"strings"

	"github.com/san-kum/multiphys/internal/ledger"
	"github.com/san-kum/multiphys/internal/phys"
)

// DerivFunc returns the time derivative of every field present in s.
// Fields absent from the returned map are treated as constant.
type DerivFunc func(s phys.StateVector, t float64) phys.StateVector

// Integrator advances a named-scalar state by one step and reports the
// conservation check of the transition.
type Integrator interface {
	Name() string
	Step(s phys.StateVector, f DerivFunc, t, dt float64) (phys.StateVector, ledger.Report)
}

// audit holds the shared ledger wiring every integrator embeds.
type audit struct {
	schema ledger.Schema
	tol    ledger.Tolerances
}

func defaultAudit() audit {
	return audit{schema: ledger.DefaultSchema(), tol: ledger.DefaultTolerances()}
}

func (a audit) check(before, after phys.StateVector) ledger.Report {
	return a.schema.Check(before, after, a.tol)
}

// axpy returns s + h*d over the fields of s.
func axpy(s phys.StateVector, d phys.StateVector, h float64) phys.StateVector {
	out := make(phys.StateVector, len(s))
	for k, v := range s {
		out[k] = v + h*d[k]
	}
	return out
}

var factories = map[string]func() Integrator{
	"euler":      func() Integrator { return NewEuler() },
	"midpoint":   func() Integrator { return NewMidpoint() },
	"rk4":        func() Integrator { return NewRK4() },
	"symplectic": func() Integrator { return NewSymplecticEuler() },
	"verlet":     func() Integrator { return NewVelocityVerlet() },
}

// New resolves an integrator by name. An unknown name is a configuration
// error; the message lists every valid name.
func New(name string) (Integrator, error) {
	fn, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown integrator %q (valid: %s)",
			phys.ErrConfiguration, name, strings.Join(Names(), ", "))
	}
	return fn(), nil
}

// Names lists the registered integrator names, sorted.
func Names() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
