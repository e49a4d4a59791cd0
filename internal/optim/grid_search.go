// Package optim searches scenario parameter space. The only strategy is
// exhaustive grid search; run counts stay small because every evaluation
// is a full simulation.
package optim

import (
	"context"
	"math"

	"github.com/san-kum/multiphys/internal/config"
	"github.com/san-kum/multiphys/internal/sim"
)

// Axis is one searched dimension: a scalar parameter of one ring, swept
// over evenly spaced values.
type Axis struct {
	Ring   string
	Param  string
	Min    float64
	Max    float64
	Points int
}

func (a Axis) values() []float64 {
	if a.Points < 2 {
		return []float64{a.Min}
	}
	out := make([]float64, a.Points)
	step := (a.Max - a.Min) / float64(a.Points-1)
	for i := range out {
		out[i] = a.Min + float64(i)*step
	}
	return out
}

// Cost scores one finished run; lower is better.
type Cost func(result *sim.Result) float64

// EnergyDriftCost scores by the final audit's relative energy drift. It
// is the default objective: the best parameters are the ones the
// conservation ledger complains about least.
func EnergyDriftCost(result *sim.Result) float64 {
	return result.Audit.Errors["energy"]
}

// GridSearch sweeps the axes' cartesian product over a base scenario.
type GridSearch struct {
	base *config.Config
	axes []Axis
}

func NewGridSearch(base *config.Config, axes []Axis) *GridSearch {
	return &GridSearch{base: base, axes: axes}
}

// Point is one evaluated grid cell.
type Point struct {
	Params map[string]float64 // "<ring>.<param>" -> value
	Cost   float64
}

// Search evaluates every cell and returns the best point plus the full
// table. Failed builds or runs score +Inf and stay in the table so a
// sweep into an unstable region is visible rather than silently skipped.
func (g *GridSearch) Search(ctx context.Context, cost Cost) (Point, []Point, error) {
	if cost == nil {
		cost = EnergyDriftCost
	}

	best := Point{Cost: math.Inf(1)}
	var table []Point

	var recurse func(depth int, assignment []float64) error
	recurse = func(depth int, assignment []float64) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if depth < len(g.axes) {
			for _, v := range g.axes[depth].values() {
				if err := recurse(depth+1, append(assignment, v)); err != nil {
					return err
				}
			}
			return nil
		}

		cfg := g.apply(assignment)
		p := Point{Params: make(map[string]float64, len(g.axes))}
		for i, a := range g.axes {
			p.Params[a.Ring+"."+a.Param] = assignment[i]
		}

		runner, err := sim.Build(cfg)
		if err != nil {
			p.Cost = math.Inf(1)
			table = append(table, p)
			return nil
		}
		result, err := runner.Run(ctx, nil)
		if err != nil {
			p.Cost = math.Inf(1)
			table = append(table, p)
			return nil
		}

		p.Cost = cost(result)
		table = append(table, p)
		if p.Cost < best.Cost {
			best = p
		}
		return nil
	}

	if err := recurse(0, nil); err != nil {
		return Point{}, table, err
	}
	return best, table, nil
}

// apply copies the base scenario with one grid cell's values substituted.
func (g *GridSearch) apply(assignment []float64) *config.Config {
	cfg := *g.base
	cfg.Rings = make([]config.RingConfig, len(g.base.Rings))
	for i, rc := range g.base.Rings {
		params := make(map[string]float64, len(rc.Params))
		for k, v := range rc.Params {
			params[k] = v
		}
		cfg.Rings[i] = config.RingConfig{ID: rc.ID, Type: rc.Type, Params: params}
	}

	for i, a := range g.axes {
		for j := range cfg.Rings {
			if cfg.Rings[j].ID == a.Ring {
				cfg.Rings[j].Params[a.Param] = assignment[i]
			}
		}
	}
	return &cfg
}
