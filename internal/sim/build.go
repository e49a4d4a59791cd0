package sim

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/multiphys/internal/config"
	"github.com/san-kum/multiphys/internal/coupling"
	"github.com/san-kum/multiphys/internal/phys"
	"github.com/san-kum/multiphys/internal/solvers"
)

// params wraps a ring's scalar parameter map and records which keys the
// builder consumed, so misspelled keys surface as errors instead of
// silently falling back to defaults.
type params struct {
	m    map[string]float64
	used map[string]bool
}

func newParams(m map[string]float64) *params {
	return &params{m: m, used: make(map[string]bool, len(m))}
}

func (p *params) get(key string, def float64) float64 {
	p.used[key] = true
	if v, ok := p.m[key]; ok {
		return v
	}
	return def
}

func (p *params) getInt(key string, def int) int {
	return int(p.get(key, float64(def)))
}

func (p *params) unknown() []string {
	var out []string
	for k := range p.m {
		if !p.used[k] {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

type ringBuilder func(id string, sess *phys.Session, integrator string, p *params) (phys.Ring, error)

// ringBuilders maps config type names to constructors. The key set is the
// solver catalogue exposed to scenario files.
var ringBuilders = map[string]ringBuilder{
	"mechanics": buildMechanics,
	"thermal0d": buildThermal0D,
	"kinetics":  buildKinetics,
	"heat1d":    buildHeat1D,
	"heat2d":    buildHeat2D,
	"fluid2d":   buildFluid2D,
	"fluid3d":   buildFluid3D,
	"maxwell1d": buildMaxwell1D,
	"quantum1d": buildQuantum1D,
	"metric":    buildMetric,
}

// RingTypes lists the solver type names accepted in scenario files.
func RingTypes() []string {
	names := make([]string, 0, len(ringBuilders))
	for name := range ringBuilders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BuildRing constructs one ring from its scenario entry.
func BuildRing(rc config.RingConfig, sess *phys.Session, integrator string) (phys.Ring, error) {
	builder, ok := ringBuilders[rc.Type]
	if !ok {
		return nil, fmt.Errorf("%w: unknown ring type %q (valid: %v)",
			phys.ErrConfiguration, rc.Type, RingTypes())
	}
	p := newParams(rc.Params)
	r, err := builder(rc.ID, sess, integrator, p)
	if err != nil {
		return nil, fmt.Errorf("ring %q: %w", rc.ID, err)
	}
	if unknown := p.unknown(); len(unknown) != 0 {
		return nil, fmt.Errorf("%w: ring %q has unknown params %v",
			phys.ErrConfiguration, rc.ID, unknown)
	}
	return r, nil
}

func buildMechanics(id string, sess *phys.Session, integrator string, p *params) (phys.Ring, error) {
	mp := solvers.DefaultMechanicsParams()
	mp.Mass = p.get("mass", mp.Mass)
	mp.Gravity = p.get("gravity", mp.Gravity)
	mp.Friction = p.get("drag", mp.Friction)
	mp.Position = p.get("position", mp.Position)
	mp.Velocity = p.get("velocity", mp.Velocity)
	if integrator != "" {
		mp.Integrator = integrator
	}
	return solvers.NewMechanics(id, sess, mp)
}

func buildThermal0D(id string, sess *phys.Session, _ string, p *params) (phys.Ring, error) {
	tp := solvers.DefaultThermalParams()
	tp.Mass = p.get("mass", tp.Mass)
	tp.Cp = p.get("cp", tp.Cp)
	tp.Temperature = p.get("temperature", tp.Temperature)
	tp.EnvTemp = p.get("env_temp", tp.EnvTemp)
	tp.Transfer = p.get("transfer", tp.Transfer)
	return solvers.NewThermal0D(id, sess, tp)
}

func buildKinetics(id string, sess *phys.Session, _ string, p *params) (phys.Ring, error) {
	kp := solvers.DefaultKineticsParams()
	kp.Concentration = p.get("concentration", kp.Concentration)
	kp.VMax = p.get("vmax", kp.VMax)
	kp.KM = p.get("km", kp.KM)
	kp.EnthalpyPerUnit = p.get("enthalpy", kp.EnthalpyPerUnit)
	return solvers.NewKinetics(id, sess, kp)
}

func buildHeat1D(id string, sess *phys.Session, _ string, p *params) (phys.Ring, error) {
	hp := solvers.DefaultHeatParams()
	hp.Length = p.get("length", hp.Length)
	hp.Diffusivity = p.get("alpha", hp.Diffusivity)
	hp.Density = p.get("density", hp.Density)
	hp.Cp = p.get("cp", hp.Cp)
	n := p.getInt("nx", 101)

	// Linear ramp between the endpoint temperatures.
	left := p.get("temp_left", 400)
	right := p.get("temp_right", 300)
	initial := make([]float64, n)
	for i := range initial {
		f := float64(i) / float64(n-1)
		initial[i] = left + (right-left)*f
	}
	return solvers.NewHeat1D(id, sess, n, hp, initial)
}

func buildHeat2D(id string, sess *phys.Session, _ string, p *params) (phys.Ring, error) {
	hp := solvers.DefaultHeatParams()
	hp.Length = p.get("length", hp.Length)
	hp.Diffusivity = p.get("alpha", hp.Diffusivity)
	hp.Density = p.get("density", hp.Density)
	hp.Cp = p.get("cp", hp.Cp)
	nx := p.getInt("nx", 33)
	ny := p.getInt("ny", 33)

	// Hot square in a cool plate.
	base := p.get("temp_base", 300)
	hot := p.get("temp_hot", 400)
	initial := make([]float64, nx*ny)
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			initial[i*ny+j] = base
			if i > nx/3 && i < 2*nx/3 && j > ny/3 && j < 2*ny/3 {
				initial[i*ny+j] = hot
			}
		}
	}
	return solvers.NewHeat2D(id, sess, nx, ny, hp, initial)
}

func buildFluid2D(id string, sess *phys.Session, _ string, p *params) (phys.Ring, error) {
	fp := solvers.DefaultFluidParams()
	fp.Length = p.get("length", fp.Length)
	fp.Viscosity = p.get("viscosity", fp.Viscosity)
	fp.Density = p.get("density", fp.Density)
	nx := p.getInt("nx", 32)
	ny := p.getInt("ny", 32)

	// Lid-driven cavity: uniform x velocity along the top wall.
	lid := p.get("lid_velocity", 1.0)
	u0 := make([]float64, nx*ny)
	v0 := make([]float64, nx*ny)
	for i := 0; i < nx; i++ {
		u0[i*ny+ny-1] = lid
	}
	return solvers.NewFluid2D(id, sess, nx, ny, fp, u0, v0)
}

func buildFluid3D(id string, sess *phys.Session, _ string, p *params) (phys.Ring, error) {
	fp := solvers.DefaultFluidParams()
	fp.Length = p.get("length", fp.Length)
	fp.Viscosity = p.get("viscosity", fp.Viscosity)
	fp.Density = p.get("density", fp.Density)
	nx := p.getInt("nx", 16)
	ny := p.getInt("ny", 16)
	nz := p.getInt("nz", 16)

	lid := p.get("lid_velocity", 1.0)
	n := nx * ny * nz
	u0 := make([]float64, n)
	v0 := make([]float64, n)
	w0 := make([]float64, n)
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			u0[(i*ny+j)*nz+nz-1] = lid
		}
	}
	return solvers.NewFluid3D(id, sess, nx, ny, nz, fp, u0, v0, w0)
}

func buildMaxwell1D(id string, sess *phys.Session, _ string, p *params) (phys.Ring, error) {
	mp := solvers.DefaultMaxwellParams()
	mp.Length = p.get("length", mp.Length)
	mp.Permittivity = p.get("permittivity", mp.Permittivity)
	mp.Permeability = p.get("permeability", mp.Permeability)
	n := p.getInt("nx", 200)

	// Gaussian Ez pulse; the PEC walls zero the endpoints.
	center := p.get("pulse_center", 0.5) * mp.Length
	width := p.get("pulse_width", 0.05) * mp.Length
	ez0 := make([]float64, n)
	dx := mp.Length / float64(n-1)
	for i := range ez0 {
		x := float64(i) * dx
		ez0[i] = math.Exp(-(x - center) * (x - center) / (2 * width * width))
	}
	return solvers.NewMaxwell1D(id, sess, n, mp, ez0)
}

func buildQuantum1D(id string, sess *phys.Session, _ string, p *params) (phys.Ring, error) {
	qp := solvers.DefaultQuantumParams()
	qp.Length = p.get("length", qp.Length)
	qp.PotentialScale = p.get("potential_scale", qp.PotentialScale)
	n := p.getInt("nx", 256)

	// Gaussian packet in a harmonic well centered on the domain.
	center := p.get("center", -2.0)
	width := p.get("width", 0.5)
	k0 := p.get("momentum", 0.0)
	well := p.get("well_strength", 1.0)

	dx := qp.Length / float64(n)
	potential := make([]float64, n)
	psi0 := make([]complex128, n)
	for i := 0; i < n; i++ {
		x := -qp.Length/2 + float64(i)*dx
		potential[i] = 0.5 * well * x * x
		envelope := math.Exp(-(x - center) * (x - center) / (4 * width * width))
		psi0[i] = complex(envelope*math.Cos(k0*x), envelope*math.Sin(k0*x))
	}
	return solvers.NewQuantum1D(id, sess, n, qp, potential, psi0)
}

func buildMetric(id string, sess *phys.Session, _ string, p *params) (phys.Ring, error) {
	mp := solvers.DefaultMetricParams()
	mp.CentralMass = p.get("central_mass", mp.CentralMass)
	mp.ProbeMass = p.get("test_mass", mp.ProbeMass)
	mp.Radius = p.get("radius", mp.Radius)
	mp.RadialRate = p.get("radial_rate", mp.RadialRate)
	return solvers.NewMetric(id, sess, mp)
}

// Build assembles a validated scenario into a runnable system: a fresh
// session, every ring, and the coupling graph in declaration order.
func Build(cfg *config.Config) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sess := phys.NewSession()
	orch := coupling.New(sess)

	for _, rc := range cfg.Rings {
		r, err := BuildRing(rc, sess, cfg.Integrator)
		if err != nil {
			return nil, err
		}
		if err := orch.AddRing(r); err != nil {
			return nil, err
		}
	}
	for _, e := range cfg.Couplings {
		if err := orch.Couple(e.Source, e.Target); err != nil {
			return nil, err
		}
	}

	return NewRunner(cfg, sess, orch), nil
}
