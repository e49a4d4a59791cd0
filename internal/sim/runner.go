package sim

import (
	"context"
	"fmt"

	"github.com/san-kum/multiphys/internal/config"
	"github.com/san-kum/multiphys/internal/coupling"
	"github.com/san-kum/multiphys/internal/ledger"
	"github.com/san-kum/multiphys/internal/phys"
)

// Observer receives the flattened record after each global step. Return
// false to stop the run early.
type Observer func(step int, record map[string]float64) bool

// Result collects the trace of one run plus the conservation audit.
type Result struct {
	Times      []float64
	Energy     []float64
	Entropy    []float64
	Records    []map[string]float64
	StepsTaken int

	// Audit diffs the first and last aggregate snapshots. Drift is data;
	// it never aborts a run.
	Audit  ledger.Report
	Errors []error
}

// Runner drives one scenario: it owns the orchestrator, tracks the trace,
// and produces the conservation audit at the end.
type Runner struct {
	cfg    *config.Config
	sess   *phys.Session
	orch   *coupling.Orchestrator
	schema ledger.Schema
	tol    ledger.Tolerances
}

func NewRunner(cfg *config.Config, sess *phys.Session, orch *coupling.Orchestrator) *Runner {
	schema := ledger.DefaultSchema()
	if cfg.Ledger.Gravity != 0 {
		schema.Gravity = cfg.Ledger.Gravity
	}
	if cfg.Ledger.SpecificHeat != 0 {
		schema.DefaultCp = cfg.Ledger.SpecificHeat
	}

	tol := ledger.DefaultTolerances()
	if cfg.Ledger.EnergyTol != 0 {
		tol.Energy = cfg.Ledger.EnergyTol
	}
	if cfg.Ledger.MomentumTol != 0 {
		tol.Momentum = cfg.Ledger.MomentumTol
	}
	if cfg.Ledger.MassTol != 0 {
		tol.Mass = cfg.Ledger.MassTol
	}

	return &Runner{cfg: cfg, sess: sess, orch: orch, schema: schema, tol: tol}
}

func (r *Runner) Orchestrator() *coupling.Orchestrator { return r.orch }
func (r *Runner) Session() *phys.Session               { return r.sess }
func (r *Runner) Config() *config.Config               { return r.cfg }

func (r *Runner) snapshot() ledger.Snapshot {
	s := r.orch.Snapshot()
	return ledger.Snapshot{Energy: s.Energy, Entropy: s.Entropy}
}

// Run advances the scenario to completion or until the context is
// cancelled. A fatal ring error ends the run; everything recorded so far
// is returned alongside the error.
func (r *Runner) Run(ctx context.Context, observe Observer) (*Result, error) {
	steps := r.cfg.Steps
	result := &Result{
		Times:   make([]float64, 0, steps+1),
		Energy:  make([]float64, 0, steps+1),
		Entropy: make([]float64, 0, steps+1),
		Records: make([]map[string]float64, 0, steps+1),
	}

	record := func() {
		snap := r.orch.Snapshot()
		result.Times = append(result.Times, snap.Time)
		result.Energy = append(result.Energy, snap.Energy)
		result.Entropy = append(result.Entropy, snap.Entropy)
		result.Records = append(result.Records, r.orch.Serialize())
	}

	initial := r.snapshot()
	prev := initial
	record()

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			result.Errors = r.sess.Errors()
			return result, ctx.Err()
		default:
		}

		if err := r.orch.Step(r.cfg.Dt); err != nil {
			result.Audit = r.schema.CheckSnapshots(initial, r.snapshot(), r.tol, true)
			result.Errors = r.sess.Errors()
			return result, err
		}
		result.StepsTaken++
		record()

		if r.cfg.Ledger.CheckEveryStep {
			cur := r.snapshot()
			if rep := r.schema.CheckSnapshots(prev, cur, r.tol, true); !rep.Valid {
				for _, v := range rep.Violations {
					r.sess.Record(fmt.Errorf("step %d: %s", i, v))
				}
			}
			prev = cur
		}

		if observe != nil && !observe(i, result.Records[len(result.Records)-1]) {
			break
		}
	}

	result.Audit = r.schema.CheckSnapshots(initial, r.snapshot(), r.tol, true)
	result.Errors = r.sess.Errors()
	return result, nil
}

// Reset returns the whole system to its initial snapshot.
func (r *Runner) Reset() {
	r.orch.Reset()
}
