package solvers

import (
	"fmt"
	"math"

	"github.com/san-kum/multiphys/internal/grid"
	"github.com/san-kum/multiphys/internal/phys"
)

// FluidParams configures an incompressible-flow ring.
type FluidParams struct {
	Length    float64
	Viscosity float64
	Density   float64

	// SOR pressure solve controls.
	Relaxation   float64
	PoissonTol   float64
	PoissonIters int
}

func DefaultFluidParams() FluidParams {
	return FluidParams{
		Length:       1.0,
		Viscosity:    0.01,
		Density:      1.0,
		Relaxation:   1.8,
		PoissonTol:   1e-10,
		PoissonIters: 500,
	}
}

// Fluid2D advances 2D incompressible Navier-Stokes by the projection
// method: advect/diffuse to a provisional velocity, solve the pressure
// Poisson equation by SOR, then subtract the pressure gradient to restore
// approximate zero divergence.
//
// Stability requires dt < dx/|v|max (CFL) and dt < dx²/(2ν); the caller
// owns both limits.
type Fluid2D struct {
	id string
	g  grid.Uniform2D
	p  FluidParams

	u, v   []float64
	p0u    []float64 // initial snapshots
	p0v    []float64
	press  []float64
	sig    phys.EntropySignature
	time   float64
	nuEff  float64
	sorEff int // iterations used by the last pressure solve

	// max|div| of the provisional and corrected fields from the last step
	divStarLast, divNewLast float64
}

func NewFluid2D(id string, sess *phys.Session, nx, ny int, p FluidParams, u0, v0 []float64) (*Fluid2D, error) {
	g, err := grid.NewUniform2D(nx, ny, p.Length, p.Length)
	if err != nil {
		return nil, err
	}
	if len(u0) != g.Len() || len(v0) != g.Len() {
		return nil, fmt.Errorf("%w: velocity fields must have %d points",
			phys.ErrConfiguration, g.Len())
	}
	if err := sess.CheckBound("viscosity", p.Viscosity); err != nil {
		return nil, err
	}
	if err := sess.CheckBound("density", p.Density); err != nil {
		return nil, err
	}
	return &Fluid2D{
		id: id, g: g, p: p,
		u: cloneSlice(u0), v: cloneSlice(v0),
		p0u: cloneSlice(u0), p0v: cloneSlice(v0),
		press: make([]float64, g.Len()),
		nuEff: p.Viscosity,
	}, nil
}

func (f *Fluid2D) ID() string { return f.id }

func (f *Fluid2D) Step(dt float64) (float64, error) {
	before := f.kineticEnergy()
	g := f.g

	// 1. Convective term (v·∇)v, central differences, one-sided at edges.
	dudx := g.DerivX(f.u, grid.Dirichlet)
	dudy := g.DerivY(f.u, grid.Dirichlet)
	dvdx := g.DerivX(f.v, grid.Dirichlet)
	dvdy := g.DerivY(f.v, grid.Dirichlet)

	// 2. Provisional velocity on interior points; boundaries held fixed.
	lapU := g.Laplacian(f.u, grid.Dirichlet)
	lapV := g.Laplacian(f.v, grid.Dirichlet)
	uStar := cloneSlice(f.u)
	vStar := cloneSlice(f.v)
	for i := 1; i < g.Nx-1; i++ {
		for j := 1; j < g.Ny-1; j++ {
			id := g.Idx(i, j)
			advU := f.u[id]*dudx[id] + f.v[id]*dudy[id]
			advV := f.u[id]*dvdx[id] + f.v[id]*dvdy[id]
			uStar[id] = f.u[id] + dt*(-advU+f.nuEff*lapU[id])
			vStar[id] = f.v[id] + dt*(-advV+f.nuEff*lapV[id])
		}
	}

	// 3. Pressure Poisson right-hand side.
	div := g.Divergence(uStar, vStar, grid.Dirichlet)
	f.divStarLast = maxAbs(div)
	rhs := make([]float64, g.Len())
	for i := range rhs {
		rhs[i] = f.p.Density / dt * div[i]
	}

	// 4. SOR solve; non-convergence keeps the best available field.
	f.sorEff = f.solvePressure(rhs)

	// 5. Projection.
	dpdx := g.DerivX(f.press, grid.Dirichlet)
	dpdy := g.DerivY(f.press, grid.Dirichlet)
	for i := 1; i < g.Nx-1; i++ {
		for j := 1; j < g.Ny-1; j++ {
			id := g.Idx(i, j)
			f.u[id] = uStar[id] - dt/f.p.Density*dpdx[id]
			f.v[id] = vStar[id] - dt/f.p.Density*dpdy[id]
		}
	}

	if !allFinite(f.u, f.v, f.press) {
		return 0, &phys.StepError{Ring: f.id, Time: f.time, Wrapped: phys.ErrNumericalInstability}
	}
	f.divNewLast = f.MaxDivergence()

	f.time += dt
	after := f.kineticEnergy()
	if after < before {
		// Viscous dissipation is irreversible.
		f.sig.Irreversible += (before - after) / referenceTemp
		f.sig = f.sig.Sum()
	}
	return after - before, nil
}

// solvePressure runs SOR sweeps on ∇²p = rhs until the maximum pointwise
// update falls below PoissonTol or the iteration cap is hit. Returns the
// number of sweeps executed.
func (f *Fluid2D) solvePressure(rhs []float64) int {
	g := f.g
	dx2, dy2 := g.Dx*g.Dx, g.Dy*g.Dy
	denom := 2 * (1/dx2 + 1/dy2)
	omega := f.p.Relaxation

	iters := 0
	for ; iters < f.p.PoissonIters; iters++ {
		maxUpdate := 0.0
		for i := 1; i < g.Nx-1; i++ {
			for j := 1; j < g.Ny-1; j++ {
				id := g.Idx(i, j)
				gs := ((f.press[g.Idx(i+1, j)]+f.press[g.Idx(i-1, j)])/dx2 +
					(f.press[g.Idx(i, j+1)]+f.press[g.Idx(i, j-1)])/dy2 -
					rhs[id]) / denom
				upd := omega * (gs - f.press[id])
				f.press[id] += upd
				if a := math.Abs(upd); a > maxUpdate {
					maxUpdate = a
				}
			}
		}
		f.applyPressureBC()
		if maxUpdate < f.p.PoissonTol {
			iters++
			break
		}
	}
	return iters
}

// applyPressureBC copies the interior neighbor onto each edge
// (zero-gradient), keeping the projection from injecting boundary
// divergence.
func (f *Fluid2D) applyPressureBC() {
	g := f.g
	for j := 0; j < g.Ny; j++ {
		f.press[g.Idx(0, j)] = f.press[g.Idx(1, j)]
		f.press[g.Idx(g.Nx-1, j)] = f.press[g.Idx(g.Nx-2, j)]
	}
	for i := 0; i < g.Nx; i++ {
		f.press[g.Idx(i, 0)] = f.press[g.Idx(i, 1)]
		f.press[g.Idx(i, g.Ny-1)] = f.press[g.Idx(i, g.Ny-2)]
	}
}

func (f *Fluid2D) kineticEnergy() float64 {
	sum := 0.0
	for i := range f.u {
		sum += f.u[i]*f.u[i] + f.v[i]*f.v[i]
	}
	return 0.5 * f.p.Density * sum * f.g.Dx * f.g.Dy
}

// MaxDivergence reports max|div(u,v)| over the grid.
func (f *Fluid2D) MaxDivergence() float64 {
	return maxAbs(f.g.Divergence(f.u, f.v, grid.Dirichlet))
}

// DivergenceBounds reports max|div| of the provisional and corrected
// fields from the last step; corrected must not exceed provisional.
func (f *Fluid2D) DivergenceBounds() (star, corrected float64) {
	return f.divStarLast, f.divNewLast
}

func (f *Fluid2D) Energy() phys.EnergyContributions {
	return phys.EnergyContributions{Kinetic: f.kineticEnergy()}.Sum()
}

func (f *Fluid2D) Entropy() phys.EntropySignature { return f.sig }

func (f *Fluid2D) KinematicState() map[string]float64 {
	return map[string]float64{
		"max_speed":      math.Max(maxAbs(f.u), maxAbs(f.v)),
		"max_divergence": f.MaxDivergence(),
		"time":           f.time,
	}
}

// AbsorbEnergy scales the velocity field to take in kinetic energy. A ring
// at rest cannot absorb.
func (f *Fluid2D) AbsorbEnergy(amount float64) float64 {
	ke := f.kineticEnergy()
	if ke <= 0 || ke+amount <= 0 {
		return 0
	}
	factor := math.Sqrt((ke + amount) / ke)
	for i := range f.u {
		f.u[i] *= factor
		f.v[i] *= factor
	}
	return amount
}

func (f *Fluid2D) CouplingTo(targetID string) *phys.CouplingData {
	return &phys.CouplingData{
		SourceRing: f.id,
		TargetRing: targetID,
		FieldValues: map[string]float64{
			"kinetic_energy": f.kineticEnergy(),
			"max_speed":      math.Max(maxAbs(f.u), maxAbs(f.v)),
		},
	}
}

// ReceiveCoupling lets a thermal sibling bias the effective viscosity:
// hotter fluid flows easier. The multiplier is clamped to [0.1, 10]×ν.
func (f *Fluid2D) ReceiveCoupling(sourceID string, data phys.CouplingData) {
	if T, ok := data.FieldValues["temperature"]; ok {
		scale := referenceTemp / math.Max(T, 1)
		f.nuEff = clamp(f.p.Viscosity*scale, 0.1*f.p.Viscosity, 10*f.p.Viscosity)
	}
}

func (f *Fluid2D) Reset() {
	copy(f.u, f.p0u)
	copy(f.v, f.p0v)
	for i := range f.press {
		f.press[i] = 0
	}
	f.sig = phys.EntropySignature{}
	f.time = 0
	f.nuEff = f.p.Viscosity
}

func (f *Fluid2D) Serialize() map[string]float64 {
	return map[string]float64{
		"time":           f.time,
		"kinetic_energy": f.kineticEnergy(),
		"max_divergence": f.MaxDivergence(),
		"viscosity_eff":  f.nuEff,
		"sor_iterations": float64(f.sorEff),
		"entropy_total":  f.sig.Total,
		"nx":             float64(f.g.Nx),
		"ny":             float64(f.g.Ny),
	}
}
