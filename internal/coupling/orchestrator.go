// Package coupling orchestrates multi-domain simulation: it owns the ring
// registry and the directed coupling graph and drives the global stepping
// protocol.
//
// A global step has two phases. First the full coupling exchange runs for
// every registered edge in registration order, so every ring sees only
// pre-step sibling data. Only then does every ring advance. The registry
// and edge list are append-only at setup and read-only during stepping;
// the whole package is single-threaded.
package coupling

import (
	"fmt"

	"github.com/san-kum/multiphys/internal/phys"
)

type edge struct {
	source, target string
}

// Snapshot aggregates conserved quantities across every registered ring
// at one instant. It is never mutated once produced.
type Snapshot struct {
	Energy  float64
	Entropy float64
	Time    float64
}

// Orchestrator holds the ring registry and coupling edges and advances
// the whole system one global step at a time.
type Orchestrator struct {
	order []string
	rings map[string]phys.Ring
	edges []edge
	sess  *phys.Session
	time  float64
	steps int
}

func New(sess *phys.Session) *Orchestrator {
	return &Orchestrator{
		rings: make(map[string]phys.Ring),
		sess:  sess,
	}
}

// AddRing registers a ring; duplicate ids are configuration errors.
func (o *Orchestrator) AddRing(r phys.Ring) error {
	id := r.ID()
	if _, exists := o.rings[id]; exists {
		return fmt.Errorf("%w: duplicate ring id %q", phys.ErrConfiguration, id)
	}
	o.rings[id] = r
	o.order = append(o.order, id)
	return nil
}

// Couple registers a directed edge. Both endpoints must already be
// registered: a dangling edge would silently drop physics, so it fails
// here instead of no-opping during stepping.
func (o *Orchestrator) Couple(sourceID, targetID string) error {
	if _, ok := o.rings[sourceID]; !ok {
		return fmt.Errorf("%w: coupling source %q is not registered",
			phys.ErrConfiguration, sourceID)
	}
	if _, ok := o.rings[targetID]; !ok {
		return fmt.Errorf("%w: coupling target %q is not registered",
			phys.ErrConfiguration, targetID)
	}
	o.edges = append(o.edges, edge{source: sourceID, target: targetID})
	return nil
}

// Step advances every ring by dt. The exchange phase completes for all
// edges before any ring steps; a source with no payload for an edge is a
// no-op. A fatal ring error aborts the global step.
func (o *Orchestrator) Step(dt float64) error {
	for _, e := range o.edges {
		src := o.rings[e.source]
		if data := src.CouplingTo(e.target); data != nil {
			o.rings[e.target].ReceiveCoupling(e.source, *data)
		}
	}

	for _, id := range o.order {
		if _, err := o.rings[id].Step(dt); err != nil {
			o.sess.Record(err)
			return err
		}
	}

	o.time += dt
	o.steps++
	return nil
}

// TotalEnergy sums the total energy contribution of every ring.
func (o *Orchestrator) TotalEnergy() float64 {
	sum := 0.0
	for _, id := range o.order {
		sum += o.rings[id].Energy().Total
	}
	return sum
}

// Snapshot aggregates energy and entropy across all rings.
func (o *Orchestrator) Snapshot() Snapshot {
	s := Snapshot{Time: o.time}
	for _, id := range o.order {
		s.Energy += o.rings[id].Energy().Total
		s.Entropy += o.rings[id].Entropy().Total
	}
	return s
}

// Ring returns a registered ring by id.
func (o *Orchestrator) Ring(id string) (phys.Ring, bool) {
	r, ok := o.rings[id]
	return r, ok
}

// Rings returns the registered rings in registration order.
func (o *Orchestrator) Rings() []phys.Ring {
	out := make([]phys.Ring, len(o.order))
	for i, id := range o.order {
		out[i] = o.rings[id]
	}
	return out
}

// RingIDs lists registered ring ids in registration order.
func (o *Orchestrator) RingIDs() []string {
	out := make([]string, len(o.order))
	copy(out, o.order)
	return out
}

// Steps reports how many global steps have completed.
func (o *Orchestrator) Steps() int { return o.steps }

// Time reports accumulated simulation time.
func (o *Orchestrator) Time() float64 { return o.time }

// Reset restores every ring to its initial snapshot and clears the clock.
func (o *Orchestrator) Reset() {
	for _, id := range o.order {
		o.rings[id].Reset()
	}
	o.time = 0
	o.steps = 0
	o.sess.Reset()
}

// Serialize flattens every ring's record under "<ring id>.<key>" for the
// audit-trail consumers.
func (o *Orchestrator) Serialize() map[string]float64 {
	out := map[string]float64{
		"time":         o.time,
		"total_energy": o.TotalEnergy(),
	}
	for _, id := range o.order {
		for k, v := range o.rings[id].Serialize() {
			out[id+"."+k] = v
		}
	}
	return out
}
