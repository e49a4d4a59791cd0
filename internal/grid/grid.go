package grid

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/multiphys/internal/phys"
)

// Boundary selects the edge policy for the difference operators.
type Boundary int

const (
	// Dirichlet holds the boundary value at zero; first derivatives fall
	// back to one-sided differences at the edges.
	Dirichlet Boundary = iota
	// Neumann enforces zero flux through ghost-point reflection
	// (f[-1] = f[1]), which conserves the integrated quantity exactly.
	Neumann
)

// Uniform1D is an immutable uniform mesh on [0, Length].
type Uniform1D struct {
	N      int
	Length float64
	Dx     float64
	X      []float64
}

// NewUniform1D builds a mesh over n points. The three-point stencils need
// at least one interior node, so n < 3 is a configuration error.
func NewUniform1D(n int, length float64) (Uniform1D, error) {
	if n < 3 {
		return Uniform1D{}, fmt.Errorf("%w: 1D grid needs at least 3 points, got %d",
			phys.ErrConfiguration, n)
	}
	x := make([]float64, n)
	floats.Span(x, 0, length)
	return Uniform1D{N: n, Length: length, Dx: length / float64(n-1), X: x}, nil
}

// Uniform2D is an immutable uniform mesh, row-major flattened.
type Uniform2D struct {
	Nx, Ny int
	Lx, Ly float64
	Dx, Dy float64
}

func NewUniform2D(nx, ny int, lx, ly float64) (Uniform2D, error) {
	if nx < 3 || ny < 3 {
		return Uniform2D{}, fmt.Errorf("%w: 2D grid needs at least 3 points per axis, got %dx%d",
			phys.ErrConfiguration, nx, ny)
	}
	return Uniform2D{
		Nx: nx, Ny: ny, Lx: lx, Ly: ly,
		Dx: lx / float64(nx-1), Dy: ly / float64(ny-1),
	}, nil
}

func (g Uniform2D) Len() int         { return g.Nx * g.Ny }
func (g Uniform2D) Idx(i, j int) int { return i*g.Ny + j }
func (g Uniform2D) Interior(i, j int) bool {
	return i > 0 && i < g.Nx-1 && j > 0 && j < g.Ny-1
}

// Uniform3D is an immutable uniform mesh, row-major flattened.
type Uniform3D struct {
	Nx, Ny, Nz int
	Lx, Ly, Lz float64
	Dx, Dy, Dz float64
}

func NewUniform3D(nx, ny, nz int, lx, ly, lz float64) (Uniform3D, error) {
	if nx < 3 || ny < 3 || nz < 3 {
		return Uniform3D{}, fmt.Errorf("%w: 3D grid needs at least 3 points per axis, got %dx%dx%d",
			phys.ErrConfiguration, nx, ny, nz)
	}
	return Uniform3D{
		Nx: nx, Ny: ny, Nz: nz, Lx: lx, Ly: ly, Lz: lz,
		Dx: lx / float64(nx-1), Dy: ly / float64(ny-1), Dz: lz / float64(nz-1),
	}, nil
}

func (g Uniform3D) Len() int            { return g.Nx * g.Ny * g.Nz }
func (g Uniform3D) Idx(i, j, k int) int { return (i*g.Ny+j)*g.Nz + k }
func (g Uniform3D) Interior(i, j, k int) bool {
	return i > 0 && i < g.Nx-1 && j > 0 && j < g.Ny-1 && k > 0 && k < g.Nz-1
}
