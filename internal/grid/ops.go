package grid

// Deriv1D computes df/dx by central differences. Dirichlet edges use
// one-sided differences; Neumann edges reflect through the ghost point,
// which makes the boundary derivative exactly zero.
func Deriv1D(f []float64, dx float64, bc Boundary) []float64 {
	n := len(f)
	out := make([]float64, n)
	if n < 2 {
		return out
	}
	for i := 1; i < n-1; i++ {
		out[i] = (f[i+1] - f[i-1]) / (2 * dx)
	}
	switch bc {
	case Neumann:
		out[0] = 0
		out[n-1] = 0
	default:
		out[0] = (f[1] - f[0]) / dx
		out[n-1] = (f[n-1] - f[n-2]) / dx
	}
	return out
}

// Laplacian1D computes d²f/dx². Neumann edges use the reflected ghost
// point f[-1]=f[1]; Dirichlet edges use the shifted three-point stencil.
func Laplacian1D(f []float64, dx float64, bc Boundary) []float64 {
	n := len(f)
	out := make([]float64, n)
	if n < 3 {
		return out
	}
	dx2 := dx * dx
	for i := 1; i < n-1; i++ {
		out[i] = (f[i+1] - 2*f[i] + f[i-1]) / dx2
	}
	switch bc {
	case Neumann:
		out[0] = 2 * (f[1] - f[0]) / dx2
		out[n-1] = 2 * (f[n-2] - f[n-1]) / dx2
	default:
		out[0] = (f[2] - 2*f[1] + f[0]) / dx2
		out[n-1] = (f[n-3] - 2*f[n-2] + f[n-1]) / dx2
	}
	return out
}

// DerivX computes df/dx on a flattened 2D field, one-sided at the edges.
func (g Uniform2D) DerivX(f []float64, bc Boundary) []float64 {
	out := make([]float64, g.Len())
	for j := 0; j < g.Ny; j++ {
		for i := 0; i < g.Nx; i++ {
			id := g.Idx(i, j)
			switch {
			case i > 0 && i < g.Nx-1:
				out[id] = (f[g.Idx(i+1, j)] - f[g.Idx(i-1, j)]) / (2 * g.Dx)
			case bc == Neumann:
				out[id] = 0
			case i == 0:
				out[id] = (f[g.Idx(1, j)] - f[id]) / g.Dx
			default:
				out[id] = (f[id] - f[g.Idx(g.Nx-2, j)]) / g.Dx
			}
		}
	}
	return out
}

// DerivY computes df/dy on a flattened 2D field, one-sided at the edges.
func (g Uniform2D) DerivY(f []float64, bc Boundary) []float64 {
	out := make([]float64, g.Len())
	for i := 0; i < g.Nx; i++ {
		for j := 0; j < g.Ny; j++ {
			id := g.Idx(i, j)
			switch {
			case j > 0 && j < g.Ny-1:
				out[id] = (f[g.Idx(i, j+1)] - f[g.Idx(i, j-1)]) / (2 * g.Dy)
			case bc == Neumann:
				out[id] = 0
			case j == 0:
				out[id] = (f[g.Idx(i, 1)] - f[id]) / g.Dy
			default:
				out[id] = (f[id] - f[g.Idx(i, g.Ny-2)]) / g.Dy
			}
		}
	}
	return out
}

// Laplacian computes ∇²f on a flattened 2D field. Edges follow the
// boundary policy per axis.
func (g Uniform2D) Laplacian(f []float64, bc Boundary) []float64 {
	out := make([]float64, g.Len())
	dx2, dy2 := g.Dx*g.Dx, g.Dy*g.Dy
	for i := 0; i < g.Nx; i++ {
		for j := 0; j < g.Ny; j++ {
			id := g.Idx(i, j)
			var lx, ly float64
			switch {
			case i > 0 && i < g.Nx-1:
				lx = (f[g.Idx(i+1, j)] - 2*f[id] + f[g.Idx(i-1, j)]) / dx2
			case bc == Neumann && i == 0:
				lx = 2 * (f[g.Idx(1, j)] - f[id]) / dx2
			case bc == Neumann:
				lx = 2 * (f[g.Idx(g.Nx-2, j)] - f[id]) / dx2
			case i == 0:
				lx = (f[g.Idx(2, j)] - 2*f[g.Idx(1, j)] + f[id]) / dx2
			default:
				lx = (f[g.Idx(g.Nx-3, j)] - 2*f[g.Idx(g.Nx-2, j)] + f[id]) / dx2
			}
			switch {
			case j > 0 && j < g.Ny-1:
				ly = (f[g.Idx(i, j+1)] - 2*f[id] + f[g.Idx(i, j-1)]) / dy2
			case bc == Neumann && j == 0:
				ly = 2 * (f[g.Idx(i, 1)] - f[id]) / dy2
			case bc == Neumann:
				ly = 2 * (f[g.Idx(i, g.Ny-2)] - f[id]) / dy2
			case j == 0:
				ly = (f[g.Idx(i, 2)] - 2*f[g.Idx(i, 1)] + f[id]) / dy2
			default:
				ly = (f[g.Idx(i, g.Ny-3)] - 2*f[g.Idx(i, g.Ny-2)] + f[id]) / dy2
			}
			out[id] = lx + ly
		}
	}
	return out
}

// Divergence computes ∂u/∂x + ∂v/∂y for a 2D velocity field.
func (g Uniform2D) Divergence(u, v []float64, bc Boundary) []float64 {
	du := g.DerivX(u, bc)
	dv := g.DerivY(v, bc)
	out := make([]float64, g.Len())
	for i := range out {
		out[i] = du[i] + dv[i]
	}
	return out
}

// DerivX computes df/dx on a flattened 3D field, one-sided at the edges.
func (g Uniform3D) DerivX(f []float64, bc Boundary) []float64 {
	out := make([]float64, g.Len())
	for i := 0; i < g.Nx; i++ {
		for j := 0; j < g.Ny; j++ {
			for k := 0; k < g.Nz; k++ {
				id := g.Idx(i, j, k)
				switch {
				case i > 0 && i < g.Nx-1:
					out[id] = (f[g.Idx(i+1, j, k)] - f[g.Idx(i-1, j, k)]) / (2 * g.Dx)
				case bc == Neumann:
					out[id] = 0
				case i == 0:
					out[id] = (f[g.Idx(1, j, k)] - f[id]) / g.Dx
				default:
					out[id] = (f[id] - f[g.Idx(g.Nx-2, j, k)]) / g.Dx
				}
			}
		}
	}
	return out
}

// DerivY computes df/dy on a flattened 3D field, one-sided at the edges.
func (g Uniform3D) DerivY(f []float64, bc Boundary) []float64 {
	out := make([]float64, g.Len())
	for i := 0; i < g.Nx; i++ {
		for j := 0; j < g.Ny; j++ {
			for k := 0; k < g.Nz; k++ {
				id := g.Idx(i, j, k)
				switch {
				case j > 0 && j < g.Ny-1:
					out[id] = (f[g.Idx(i, j+1, k)] - f[g.Idx(i, j-1, k)]) / (2 * g.Dy)
				case bc == Neumann:
					out[id] = 0
				case j == 0:
					out[id] = (f[g.Idx(i, 1, k)] - f[id]) / g.Dy
				default:
					out[id] = (f[id] - f[g.Idx(i, g.Ny-2, k)]) / g.Dy
				}
			}
		}
	}
	return out
}

// DerivZ computes df/dz on a flattened 3D field, one-sided at the edges.
func (g Uniform3D) DerivZ(f []float64, bc Boundary) []float64 {
	out := make([]float64, g.Len())
	for i := 0; i < g.Nx; i++ {
		for j := 0; j < g.Ny; j++ {
			for k := 0; k < g.Nz; k++ {
				id := g.Idx(i, j, k)
				switch {
				case k > 0 && k < g.Nz-1:
					out[id] = (f[g.Idx(i, j, k+1)] - f[g.Idx(i, j, k-1)]) / (2 * g.Dz)
				case bc == Neumann:
					out[id] = 0
				case k == 0:
					out[id] = (f[g.Idx(i, j, 1)] - f[id]) / g.Dz
				default:
					out[id] = (f[id] - f[g.Idx(i, j, g.Nz-2)]) / g.Dz
				}
			}
		}
	}
	return out
}

// Laplacian computes ∇²f on a flattened 3D field, interior points only;
// edge values are zero (the 3D solvers hold boundaries fixed).
func (g Uniform3D) Laplacian(f []float64) []float64 {
	out := make([]float64, g.Len())
	dx2, dy2, dz2 := g.Dx*g.Dx, g.Dy*g.Dy, g.Dz*g.Dz
	for i := 1; i < g.Nx-1; i++ {
		for j := 1; j < g.Ny-1; j++ {
			for k := 1; k < g.Nz-1; k++ {
				id := g.Idx(i, j, k)
				out[id] = (f[g.Idx(i+1, j, k)]-2*f[id]+f[g.Idx(i-1, j, k)])/dx2 +
					(f[g.Idx(i, j+1, k)]-2*f[id]+f[g.Idx(i, j-1, k)])/dy2 +
					(f[g.Idx(i, j, k+1)]-2*f[id]+f[g.Idx(i, j, k-1)])/dz2
			}
		}
	}
	return out
}

// Divergence computes ∂u/∂x + ∂v/∂y + ∂w/∂z for a 3D velocity field.
func (g Uniform3D) Divergence(u, v, w []float64, bc Boundary) []float64 {
	du := g.DerivX(u, bc)
	dv := g.DerivY(v, bc)
	dw := g.DerivZ(w, bc)
	out := make([]float64, g.Len())
	for i := range out {
		out[i] = du[i] + dv[i] + dw[i]
	}
	return out
}
