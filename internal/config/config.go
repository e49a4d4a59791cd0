package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/multiphys/internal/phys"
)

const (
	DefaultDt    = 0.01
	DefaultSteps = 1000
)

// Config describes one simulation scenario: the rings to build, the
// coupling edges between them, and the stepping parameters.
type Config struct {
	Name       string           `yaml:"name"`
	Dt         float64          `yaml:"dt"`
	Steps      int              `yaml:"steps"`
	Integrator string           `yaml:"integrator"`
	Ledger     LedgerConfig     `yaml:"ledger"`
	Rings      []RingConfig     `yaml:"rings"`
	Couplings  []CouplingConfig `yaml:"couplings"`
}

// RingConfig names a solver type and its scalar parameters. Params keys
// are solver-specific; unknown keys are rejected at build time.
type RingConfig struct {
	ID     string             `yaml:"id"`
	Type   string             `yaml:"type"`
	Params map[string]float64 `yaml:"params"`
}

// CouplingConfig is one directed edge of the coupling graph.
type CouplingConfig struct {
	Source string `yaml:"source"`
	Target string `yaml:"target"`
}

// LedgerConfig overrides the conservation-audit constants. Zero values
// mean "use the schema default".
type LedgerConfig struct {
	Gravity        float64 `yaml:"gravity"`
	SpecificHeat   float64 `yaml:"specific_heat"`
	EnergyTol      float64 `yaml:"energy_tol"`
	MomentumTol    float64 `yaml:"momentum_tol"`
	MassTol        float64 `yaml:"mass_tol"`
	CheckEveryStep bool    `yaml:"check_every_step"`
}

func DefaultConfig() *Config {
	return &Config{
		Name:       "default",
		Dt:         DefaultDt,
		Steps:      DefaultSteps,
		Integrator: "rk4",
		Rings: []RingConfig{
			{ID: "ball", Type: "mechanics", Params: map[string]float64{
				"mass": 1.0, "position": 10.0, "velocity": 0.0, "drag": 0.5,
			}},
			{ID: "air", Type: "thermal0d", Params: map[string]float64{
				"mass": 1.0, "cp": 1.0, "temperature": 300, "env_temp": 300,
			}},
		},
		Couplings: []CouplingConfig{{Source: "ball", Target: "air"}},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{Dt: DefaultDt, Steps: DefaultSteps, Integrator: "rk4"}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the scenario's internal consistency: positive stepping
// parameters, unique ring ids, and coupling endpoints that name declared
// rings. Solver-level parameter validation happens when rings are built.
func (c *Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %g", phys.ErrConfiguration, c.Dt)
	}
	if c.Steps <= 0 {
		return fmt.Errorf("%w: steps must be positive, got %d", phys.ErrConfiguration, c.Steps)
	}
	if len(c.Rings) == 0 {
		return fmt.Errorf("%w: scenario declares no rings", phys.ErrConfiguration)
	}

	ids := make(map[string]bool, len(c.Rings))
	for _, r := range c.Rings {
		if r.ID == "" {
			return fmt.Errorf("%w: ring of type %q has empty id", phys.ErrConfiguration, r.Type)
		}
		if ids[r.ID] {
			return fmt.Errorf("%w: duplicate ring id %q", phys.ErrConfiguration, r.ID)
		}
		ids[r.ID] = true
	}

	for _, e := range c.Couplings {
		if !ids[e.Source] {
			return fmt.Errorf("%w: coupling source %q is not a declared ring",
				phys.ErrConfiguration, e.Source)
		}
		if !ids[e.Target] {
			return fmt.Errorf("%w: coupling target %q is not a declared ring",
				phys.ErrConfiguration, e.Target)
		}
	}
	return nil
}
