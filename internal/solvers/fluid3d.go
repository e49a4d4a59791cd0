package solvers

import (
	"fmt"
	"math"

	"github.com/san-kum/multiphys/internal/grid"
	"github.com/san-kum/multiphys/internal/phys"
)

// Fluid3D is the 3D projection solver. The algorithm is the 2D one with a
// third velocity component; see Fluid2D for the step structure.
type Fluid3D struct {
	id string
	g  grid.Uniform3D
	p  FluidParams

	u, v, w       []float64
	u0, v0, w0    []float64
	press         []float64
	sig           phys.EntropySignature
	time          float64
	nuEff         float64
	sorIterations int

	divStarLast, divNewLast float64
}

func NewFluid3D(id string, sess *phys.Session, nx, ny, nz int, p FluidParams, u0, v0, w0 []float64) (*Fluid3D, error) {
	g, err := grid.NewUniform3D(nx, ny, nz, p.Length, p.Length, p.Length)
	if err != nil {
		return nil, err
	}
	if len(u0) != g.Len() || len(v0) != g.Len() || len(w0) != g.Len() {
		return nil, fmt.Errorf("%w: velocity fields must have %d points",
			phys.ErrConfiguration, g.Len())
	}
	if err := sess.CheckBound("viscosity", p.Viscosity); err != nil {
		return nil, err
	}
	if err := sess.CheckBound("density", p.Density); err != nil {
		return nil, err
	}
	return &Fluid3D{
		id: id, g: g, p: p,
		u: cloneSlice(u0), v: cloneSlice(v0), w: cloneSlice(w0),
		u0: cloneSlice(u0), v0: cloneSlice(v0), w0: cloneSlice(w0),
		press: make([]float64, g.Len()),
		nuEff: p.Viscosity,
	}, nil
}

func (f *Fluid3D) ID() string { return f.id }

func (f *Fluid3D) Step(dt float64) (float64, error) {
	before := f.kineticEnergy()
	g := f.g

	dudx := g.DerivX(f.u, grid.Dirichlet)
	dudy := g.DerivY(f.u, grid.Dirichlet)
	dudz := g.DerivZ(f.u, grid.Dirichlet)
	dvdx := g.DerivX(f.v, grid.Dirichlet)
	dvdy := g.DerivY(f.v, grid.Dirichlet)
	dvdz := g.DerivZ(f.v, grid.Dirichlet)
	dwdx := g.DerivX(f.w, grid.Dirichlet)
	dwdy := g.DerivY(f.w, grid.Dirichlet)
	dwdz := g.DerivZ(f.w, grid.Dirichlet)

	lapU := g.Laplacian(f.u)
	lapV := g.Laplacian(f.v)
	lapW := g.Laplacian(f.w)

	uStar := cloneSlice(f.u)
	vStar := cloneSlice(f.v)
	wStar := cloneSlice(f.w)
	for i := 1; i < g.Nx-1; i++ {
		for j := 1; j < g.Ny-1; j++ {
			for k := 1; k < g.Nz-1; k++ {
				id := g.Idx(i, j, k)
				advU := f.u[id]*dudx[id] + f.v[id]*dudy[id] + f.w[id]*dudz[id]
				advV := f.u[id]*dvdx[id] + f.v[id]*dvdy[id] + f.w[id]*dvdz[id]
				advW := f.u[id]*dwdx[id] + f.v[id]*dwdy[id] + f.w[id]*dwdz[id]
				uStar[id] = f.u[id] + dt*(-advU+f.nuEff*lapU[id])
				vStar[id] = f.v[id] + dt*(-advV+f.nuEff*lapV[id])
				wStar[id] = f.w[id] + dt*(-advW+f.nuEff*lapW[id])
			}
		}
	}

	div := g.Divergence(uStar, vStar, wStar, grid.Dirichlet)
	f.divStarLast = maxAbs(div)
	rhs := make([]float64, g.Len())
	for i := range rhs {
		rhs[i] = f.p.Density / dt * div[i]
	}

	f.sorIterations = f.solvePressure(rhs)

	dpdx := g.DerivX(f.press, grid.Dirichlet)
	dpdy := g.DerivY(f.press, grid.Dirichlet)
	dpdz := g.DerivZ(f.press, grid.Dirichlet)
	for i := 1; i < g.Nx-1; i++ {
		for j := 1; j < g.Ny-1; j++ {
			for k := 1; k < g.Nz-1; k++ {
				id := g.Idx(i, j, k)
				f.u[id] = uStar[id] - dt/f.p.Density*dpdx[id]
				f.v[id] = vStar[id] - dt/f.p.Density*dpdy[id]
				f.w[id] = wStar[id] - dt/f.p.Density*dpdz[id]
			}
		}
	}

	if !allFinite(f.u, f.v, f.w, f.press) {
		return 0, &phys.StepError{Ring: f.id, Time: f.time, Wrapped: phys.ErrNumericalInstability}
	}
	f.divNewLast = f.MaxDivergence()

	f.time += dt
	after := f.kineticEnergy()
	if after < before {
		f.sig.Irreversible += (before - after) / referenceTemp
		f.sig = f.sig.Sum()
	}
	return after - before, nil
}

func (f *Fluid3D) solvePressure(rhs []float64) int {
	g := f.g
	dx2, dy2, dz2 := g.Dx*g.Dx, g.Dy*g.Dy, g.Dz*g.Dz
	denom := 2 * (1/dx2 + 1/dy2 + 1/dz2)
	omega := f.p.Relaxation

	iters := 0
	for ; iters < f.p.PoissonIters; iters++ {
		maxUpdate := 0.0
		for i := 1; i < g.Nx-1; i++ {
			for j := 1; j < g.Ny-1; j++ {
				for k := 1; k < g.Nz-1; k++ {
					id := g.Idx(i, j, k)
					gs := ((f.press[g.Idx(i+1, j, k)]+f.press[g.Idx(i-1, j, k)])/dx2 +
						(f.press[g.Idx(i, j+1, k)]+f.press[g.Idx(i, j-1, k)])/dy2 +
						(f.press[g.Idx(i, j, k+1)]+f.press[g.Idx(i, j, k-1)])/dz2 -
						rhs[id]) / denom
					upd := omega * (gs - f.press[id])
					f.press[id] += upd
					if a := math.Abs(upd); a > maxUpdate {
						maxUpdate = a
					}
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

func (f *Fluid3D) applyPressureBC() {
	g := f.g
	for j := 0; j < g.Ny; j++ {
		for k := 0; k < g.Nz; k++ {
			f.press[g.Idx(0, j, k)] = f.press[g.Idx(1, j, k)]
			f.press[g.Idx(g.Nx-1, j, k)] = f.press[g.Idx(g.Nx-2, j, k)]
		}
	}
	for i := 0; i < g.Nx; i++ {
		for k := 0; k < g.Nz; k++ {
			f.press[g.Idx(i, 0, k)] = f.press[g.Idx(i, 1, k)]
			f.press[g.Idx(i, g.Ny-1, k)] = f.press[g.Idx(i, g.Ny-2, k)]
		}
	}
	for i := 0; i < g.Nx; i++ {
		for j := 0; j < g.Ny; j++ {
			f.press[g.Idx(i, j, 0)] = f.press[g.Idx(i, j, 1)]
			f.press[g.Idx(i, j, g.Nz-1)] = f.press[g.Idx(i, j, g.Nz-2)]
		}
	}
}

func (f *Fluid3D) kineticEnergy() float64 {
	sum := 0.0
	for i := range f.u {
		sum += f.u[i]*f.u[i] + f.v[i]*f.v[i] + f.w[i]*f.w[i]
	}
	return 0.5 * f.p.Density * sum * f.g.Dx * f.g.Dy * f.g.Dz
}

func (f *Fluid3D) MaxDivergence() float64 {
	return maxAbs(f.g.Divergence(f.u, f.v, f.w, grid.Dirichlet))
}

// DivergenceBounds reports max|div| of the provisional and corrected
// fields from the last step.
func (f *Fluid3D) DivergenceBounds() (star, corrected float64) {
	return f.divStarLast, f.divNewLast
}

func (f *Fluid3D) Energy() phys.EnergyContributions {
	return phys.EnergyContributions{Kinetic: f.kineticEnergy()}.Sum()
}

func (f *Fluid3D) Entropy() phys.EntropySignature { return f.sig }

func (f *Fluid3D) KinematicState() map[string]float64 {
	return map[string]float64{
		"max_speed":      math.Max(maxAbs(f.u), math.Max(maxAbs(f.v), maxAbs(f.w))),
		"max_divergence": f.MaxDivergence(),
		"time":           f.time,
	}
}

func (f *Fluid3D) AbsorbEnergy(amount float64) float64 {
	ke := f.kineticEnergy()
	if ke <= 0 || ke+amount <= 0 {
		return 0
	}
	factor := math.Sqrt((ke + amount) / ke)
	for i := range f.u {
		f.u[i] *= factor
		f.v[i] *= factor
		f.w[i] *= factor
	}
	return amount
}

func (f *Fluid3D) CouplingTo(targetID string) *phys.CouplingData {
	return &phys.CouplingData{
		SourceRing: f.id,
		TargetRing: targetID,
		FieldValues: map[string]float64{
			"kinetic_energy": f.kineticEnergy(),
		},
	}
}

func (f *Fluid3D) ReceiveCoupling(sourceID string, data phys.CouplingData) {
	if T, ok := data.FieldValues["temperature"]; ok {
		scale := referenceTemp / math.Max(T, 1)
		f.nuEff = clamp(f.p.Viscosity*scale, 0.1*f.p.Viscosity, 10*f.p.Viscosity)
	}
}

func (f *Fluid3D) Reset() {
	copy(f.u, f.u0)
	copy(f.v, f.v0)
	copy(f.w, f.w0)
	for i := range f.press {
		f.press[i] = 0
	}
	f.sig = phys.EntropySignature{}
	f.time = 0
	f.nuEff = f.p.Viscosity
}

func (f *Fluid3D) Serialize() map[string]float64 {
	return map[string]float64{
		"time":           f.time,
		"kinetic_energy": f.kineticEnergy(),
		"max_divergence": f.MaxDivergence(),
		"viscosity_eff":  f.nuEff,
		"sor_iterations": float64(f.sorIterations),
		"nx":             float64(f.g.Nx),
		"ny":             float64(f.g.Ny),
		"nz":             float64(f.g.Nz),
	}
}
