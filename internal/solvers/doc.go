// Package solvers provides the domain rings of the kernel: concrete
// numerical solvers that implement the [phys.Ring] capability contract.
//
//   - [Heat1D], [Heat2D]: explicit finite-difference thermal diffusion
//   - [Fluid2D], [Fluid3D]: incompressible Navier-Stokes, projection method
//   - [Maxwell1D]: Yee-grid FDTD leapfrog for 1D electromagnetic fields
//   - [Quantum1D]: split-step Fourier wavefunction propagation
//   - [Metric]: spacetime metric evaluation for a radial probe
//   - [Mechanics], [Thermal0D], [Kinetics]: zero-dimensional point domains
//
// Each ring exclusively owns its arrays, stores its initial snapshot for
// Reset, and halts with [phys.ErrNumericalInstability] when fields go
// non-finite. Stability limits (CFL, viscous) are the caller's
// responsibility; no solver clamps dt.
package solvers
