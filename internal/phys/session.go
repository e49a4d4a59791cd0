package phys

import (
	"fmt"
	"math"
)

// Bound is a legal closed-open range for a named physical quantity.
type Bound struct {
	Min, Max float64
}

// Session owns per-run mutable bookkeeping: the physical-bounds table and
// the accumulated error log. One Session is created per simulation run and
// passed by reference; there is no package-level mutable state.
type Session struct {
	bounds map[string]Bound
	errLog []error
}

func NewSession() *Session {
	return &Session{
		bounds: map[string]Bound{
			"temperature":   {Min: 0, Max: math.Inf(1)},
			"mass":          {Min: 0, Max: math.Inf(1)},
			"concentration": {Min: 0, Max: math.Inf(1)},
			"density":       {Min: 0, Max: math.Inf(1)},
			"viscosity":     {Min: 0, Max: math.Inf(1)},
		},
		errLog: make([]error, 0),
	}
}

// RegisterBound adds or replaces the legal range for a quantity.
func (s *Session) RegisterBound(name string, min, max float64) {
	s.bounds[name] = Bound{Min: min, Max: max}
}

// CheckBound validates a value against its registered range. Quantities
// without a registered bound pass. A violation is fatal to the caller.
func (s *Session) CheckBound(name string, value float64) error {
	b, ok := s.bounds[name]
	if !ok {
		return nil
	}
	if value <= b.Min || value > b.Max {
		err := fmt.Errorf("%w: %s=%g outside (%g, %g]",
			ErrBoundViolation, name, value, b.Min, b.Max)
		s.errLog = append(s.errLog, err)
		return err
	}
	return nil
}

// Record appends a non-fatal condition to the session log.
func (s *Session) Record(err error) {
	if err != nil {
		s.errLog = append(s.errLog, err)
	}
}

// Errors returns a copy of the accumulated log.
func (s *Session) Errors() []error {
	out := make([]error, len(s.errLog))
	copy(out, s.errLog)
	return out
}

// Reset clears the error log; the bounds table persists.
func (s *Session) Reset() {
	s.errLog = s.errLog[:0]
}
