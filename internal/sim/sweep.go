package sim

import (
	"context"
	"sync"
)

// SweepResult is one refinement level of a convergence sweep.
type SweepResult struct {
	Dt          float64
	Steps       int
	EnergyDrift float64
	Result      *Result
}

// Sweep runs the same scenario at successively halved timesteps, each
// level in its own goroutine over an independently built system. The
// integration error of a consistent scheme must shrink with dt, so the
// drift column is the cheapest convergence diagnostic available.
func Sweep(ctx context.Context, base *Runner, levels int) ([]SweepResult, error) {
	if levels < 1 {
		levels = 1
	}

	results := make([]SweepResult, levels)
	errs := make([]error, levels)

	var wg sync.WaitGroup
	for i := 0; i < levels; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			cfg := *base.Config()
			cfg.Dt = base.Config().Dt / float64(int(1)<<idx)
			cfg.Steps = base.Config().Steps * (int(1) << idx)

			runner, err := Build(&cfg)
			if err != nil {
				errs[idx] = err
				return
			}
			res, err := runner.Run(ctx, nil)
			if err != nil {
				errs[idx] = err
				return
			}
			results[idx] = SweepResult{
				Dt:          cfg.Dt,
				Steps:       res.StepsTaken,
				EnergyDrift: res.Audit.Errors["energy"],
				Result:      res,
			}
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}
