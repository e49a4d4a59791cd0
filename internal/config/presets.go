package config

// Presets are ready-to-run scenarios keyed by name. Each exercises a
// different slice of the solver catalogue and the coupling graph.
var Presets = map[string]*Config{
	"falling-ball": {
		Name: "falling-ball", Dt: 0.001, Steps: 2000, Integrator: "verlet",
		Rings: []RingConfig{
			{ID: "ball", Type: "mechanics", Params: map[string]float64{
				"mass": 1.0, "position": 10.0, "velocity": 0.0, "drag": 0.5,
			}},
			{ID: "air", Type: "thermal0d", Params: map[string]float64{
				"mass": 1.0, "cp": 1.0, "temperature": 300, "env_temp": 300,
			}},
		},
		Couplings: []CouplingConfig{{Source: "ball", Target: "air"}},
	},
	"exotherm": {
		Name: "exotherm", Dt: 0.01, Steps: 1000, Integrator: "rk4",
		Rings: []RingConfig{
			{ID: "reaction", Type: "kinetics", Params: map[string]float64{
				"concentration": 1.0, "vmax": 0.5, "km": 0.3, "enthalpy": 10.0,
			}},
			{ID: "bath", Type: "thermal0d", Params: map[string]float64{
				"mass": 1.0, "cp": 1.0, "temperature": 300, "env_temp": 300,
				"transfer": 0,
			}},
		},
		Couplings: []CouplingConfig{
			{Source: "reaction", Target: "bath"},
			{Source: "bath", Target: "reaction"},
		},
	},
	"heat-bar": {
		Name: "heat-bar", Dt: 0.0001, Steps: 1000, Integrator: "rk4",
		Rings: []RingConfig{
			{ID: "bar", Type: "heat1d", Params: map[string]float64{
				"nx": 101, "length": 1.0, "alpha": 0.01,
				"temp_left": 400, "temp_right": 300,
			}},
		},
	},
	"cavity": {
		Name: "cavity", Dt: 0.001, Steps: 500, Integrator: "rk4",
		Rings: []RingConfig{
			{ID: "flow", Type: "fluid2d", Params: map[string]float64{
				"nx": 32, "ny": 32, "length": 1.0,
				"density": 1.0, "viscosity": 0.01, "lid_velocity": 1.0,
			}},
			{ID: "plate", Type: "thermal0d", Params: map[string]float64{
				"mass": 1.0, "cp": 1.0, "temperature": 350, "env_temp": 300,
			}},
		},
		Couplings: []CouplingConfig{{Source: "plate", Target: "flow"}},
	},
	"waveguide": {
		Name: "waveguide", Dt: 0.0025, Steps: 2000, Integrator: "rk4",
		Rings: []RingConfig{
			{ID: "pulse", Type: "maxwell1d", Params: map[string]float64{
				"nx": 200, "length": 1.0, "permittivity": 1.0, "permeability": 1.0,
				"pulse_center": 0.5, "pulse_width": 0.05,
			}},
		},
	},
	"wavepacket": {
		Name: "wavepacket", Dt: 0.001, Steps: 1000, Integrator: "rk4",
		Rings: []RingConfig{
			{ID: "particle", Type: "quantum1d", Params: map[string]float64{
				"nx": 256, "length": 20.0, "center": -2.0, "width": 0.5,
				"momentum": 0.0, "well_strength": 1.0,
			}},
		},
	},
	"infall": {
		Name: "infall", Dt: 0.01, Steps: 500, Integrator: "rk4",
		Rings: []RingConfig{
			{ID: "spacetime", Type: "metric", Params: map[string]float64{
				"central_mass": 1.0, "radius": 10.0, "radial_rate": -0.01,
				"test_mass": 1.0,
			}},
		},
	},
}

func GetPreset(name string) *Config {
	return Presets[name]
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
