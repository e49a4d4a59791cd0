package solvers

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/multiphys/internal/grid"
	"github.com/san-kum/multiphys/internal/phys"
)

// vortexField fills u,v with a Taylor-Green-like vortex that is smooth but
// not discretely divergence-free, so the projection has work to do.
func vortexField(g grid.Uniform2D) (u, v []float64) {
	u = make([]float64, g.Len())
	v = make([]float64, g.Len())
	for i := 0; i < g.Nx; i++ {
		for j := 0; j < g.Ny; j++ {
			x := float64(i) * g.Dx
			y := float64(j) * g.Dy
			id := g.Idx(i, j)
			u[id] = math.Sin(math.Pi*x) * math.Cos(math.Pi*y)
			v[id] = -math.Cos(math.Pi*x) * math.Sin(math.Pi*y)
		}
	}
	// Pin the walls so the held-fixed boundary convention is consistent.
	for i := 0; i < g.Nx; i++ {
		u[g.Idx(i, 0)], v[g.Idx(i, 0)] = 0, 0
		u[g.Idx(i, g.Ny-1)], v[g.Idx(i, g.Ny-1)] = 0, 0
	}
	for j := 0; j < g.Ny; j++ {
		u[g.Idx(0, j)], v[g.Idx(0, j)] = 0, 0
		u[g.Idx(g.Nx-1, j)], v[g.Idx(g.Nx-1, j)] = 0, 0
	}
	return u, v
}

func newTestFluid2D(t *testing.T, n int) *Fluid2D {
	t.Helper()
	p := DefaultFluidParams()
	g, _ := grid.NewUniform2D(n, n, p.Length, p.Length)
	u0, v0 := vortexField(g)
	f, err := NewFluid2D("fluid", phys.NewSession(), n, n, p, u0, v0)
	require.NoError(t, err)
	return f
}

func TestFluid2DProjectionReducesDivergence(t *testing.T) {
	f := newTestFluid2D(t, 17)

	// dt respects CFL (max|v|≈1, dx=1/16) and the viscous limit.
	dt := 0.002
	for i := 0; i < 20; i++ {
		_, err := f.Step(dt)
		require.NoError(t, err)

		star, corrected := f.DivergenceBounds()
		if corrected > star+1e-12 {
			t.Fatalf("step %d: corrected divergence %.3e exceeds provisional %.3e",
				i, corrected, star)
		}
	}
}

func TestFluid2DViscousDecay(t *testing.T) {
	f := newTestFluid2D(t, 17)

	ke0 := f.Energy().Kinetic
	for i := 0; i < 50; i++ {
		_, err := f.Step(0.002)
		require.NoError(t, err)
	}
	assert.Less(t, f.Energy().Kinetic, ke0,
		"a viscous unforced vortex must lose kinetic energy")
	assert.Positive(t, f.Entropy().Irreversible,
		"viscous dissipation must register as irreversible entropy")
}

func TestFluid2DPoissonConvergence(t *testing.T) {
	f := newTestFluid2D(t, 9)
	_, err := f.Step(0.001)
	require.NoError(t, err)

	iters := f.Serialize()["sor_iterations"]
	assert.Greater(t, iters, 0.0)
	assert.LessOrEqual(t, iters, float64(f.p.PoissonIters))
}

func TestFluid2DReset(t *testing.T) {
	f := newTestFluid2D(t, 9)
	ke0 := f.Energy().Kinetic

	for i := 0; i < 10; i++ {
		_, err := f.Step(0.002)
		require.NoError(t, err)
	}
	f.Reset()

	assert.InDelta(t, ke0, f.Energy().Kinetic, 1e-12)
	assert.Zero(t, f.Entropy().Total)
}

func TestFluid3DProjectionStep(t *testing.T) {
	p := DefaultFluidParams()
	n := 9
	g, _ := grid.NewUniform3D(n, n, n, p.Length, p.Length, p.Length)
	u0 := make([]float64, g.Len())
	v0 := make([]float64, g.Len())
	w0 := make([]float64, g.Len())
	for i := 1; i < n-1; i++ {
		for j := 1; j < n-1; j++ {
			for k := 1; k < n-1; k++ {
				x := float64(i) * g.Dx
				y := float64(j) * g.Dy
				z := float64(k) * g.Dz
				id := g.Idx(i, j, k)
				u0[id] = math.Sin(math.Pi*x) * math.Cos(math.Pi*y) * math.Cos(math.Pi*z)
				v0[id] = -math.Cos(math.Pi*x) * math.Sin(math.Pi*y) * math.Cos(math.Pi*z)
			}
		}
	}

	f, err := NewFluid3D("fluid3d", phys.NewSession(), n, n, n, p, u0, v0, w0)
	require.NoError(t, err)

	_, err = f.Step(0.002)
	require.NoError(t, err)
	star, corrected := f.DivergenceBounds()
	assert.LessOrEqual(t, corrected, star+1e-12,
		"projection must not increase divergence")

	for i := 0; i < 10; i++ {
		_, err := f.Step(0.002)
		require.NoError(t, err)
	}
	assert.True(t, f.Serialize()["kinetic_energy"] > 0)
}

func TestFluidCouplingAdjustsViscosity(t *testing.T) {
	f := newTestFluid2D(t, 9)

	// A hot sibling thins the fluid; the multiplier is clamped.
	f.ReceiveCoupling("thermal", phys.CouplingData{
		FieldValues: map[string]float64{"temperature": 1e9},
	})
	assert.InDelta(t, 0.1*f.p.Viscosity, f.nuEff, 1e-15)

	// Absurd cold input clamps at the other end instead of failing.
	f.ReceiveCoupling("thermal", phys.CouplingData{
		FieldValues: map[string]float64{"temperature": -40},
	})
	assert.LessOrEqual(t, f.nuEff, 10*f.p.Viscosity)
}

func TestFluid2DRejectsMismatchedFields(t *testing.T) {
	p := DefaultFluidParams()
	_, err := NewFluid2D("fluid", phys.NewSession(), 9, 9, p,
		make([]float64, 10), make([]float64, 81))
	require.Error(t, err)
}
