package optim

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/multiphys/internal/config"
	"github.com/san-kum/multiphys/internal/sim"
)

func fallScenario() *config.Config {
	return &config.Config{
		Name: "fall", Dt: 0.01, Steps: 100, Integrator: "euler",
		Rings: []config.RingConfig{
			{ID: "ball", Type: "mechanics", Params: map[string]float64{
				"mass": 1.0, "position": 100.0, "velocity": 0.0,
			}},
		},
	}
}

func TestGridSearchFindsMinimum(t *testing.T) {
	// Euler's free-fall energy drift is proportional to g², so the
	// smallest gravity in the sweep must win under the drift objective.
	gs := NewGridSearch(fallScenario(), []Axis{
		{Ring: "ball", Param: "gravity", Min: 1.0, Max: 9.0, Points: 3},
	})

	best, table, err := gs.Search(context.Background(), nil)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(table) != 3 {
		t.Fatalf("table size = %d, want 3", len(table))
	}
	if got := best.Params["ball.gravity"]; got != 1.0 {
		t.Errorf("best gravity = %g, want 1.0", got)
	}
}

func TestGridSearchTwoAxes(t *testing.T) {
	gs := NewGridSearch(fallScenario(), []Axis{
		{Ring: "ball", Param: "gravity", Min: 1.0, Max: 5.0, Points: 2},
		{Ring: "ball", Param: "drag", Min: 0.0, Max: 0.5, Points: 2},
	})

	_, table, err := gs.Search(context.Background(), nil)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(table) != 4 {
		t.Errorf("table size = %d, want 4", len(table))
	}
}

func TestGridSearchBadCellScoresInf(t *testing.T) {
	// Negative mass fails ring construction; the cell must appear in the
	// table with an infinite cost instead of vanishing.
	gs := NewGridSearch(fallScenario(), []Axis{
		{Ring: "ball", Param: "mass", Min: -1.0, Max: 1.0, Points: 2},
	})

	best, table, err := gs.Search(context.Background(), nil)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(table) != 2 {
		t.Fatalf("table size = %d, want 2", len(table))
	}
	sawInf := false
	for _, p := range table {
		if math.IsInf(p.Cost, 1) {
			sawInf = true
		}
	}
	if !sawInf {
		t.Error("failed cell did not score +Inf")
	}
	if best.Params["ball.mass"] != 1.0 {
		t.Errorf("best mass = %g, want 1.0", best.Params["ball.mass"])
	}
}

func TestGridSearchContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gs := NewGridSearch(fallScenario(), []Axis{
		{Ring: "ball", Param: "gravity", Min: 1.0, Max: 9.0, Points: 3},
	})
	if _, _, err := gs.Search(ctx, nil); err == nil {
		t.Error("expected context error")
	}
}

func TestGridSearchCustomCost(t *testing.T) {
	// Maximize final kinetic energy by minimizing its negation: higher
	// gravity wins.
	cost := func(result *sim.Result) float64 {
		last := result.Records[len(result.Records)-1]
		return -last["ball.kinetic"]
	}

	gs := NewGridSearch(fallScenario(), []Axis{
		{Ring: "ball", Param: "gravity", Min: 1.0, Max: 9.0, Points: 3},
	})
	best, _, err := gs.Search(context.Background(), cost)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if best.Params["ball.gravity"] != 9.0 {
		t.Errorf("best gravity = %g, want 9.0", best.Params["ball.gravity"])
	}
}
