package solvers

import (
	"fmt"
	"math"

	"github.com/san-kum/multiphys/internal/grid"
	"github.com/san-kum/multiphys/internal/phys"
)

// HeatParams configures a diffusion ring.
type HeatParams struct {
	Length      float64
	Diffusivity float64
	Density     float64
	Cp          float64
	Boundary    grid.Boundary
}

func DefaultHeatParams() HeatParams {
	return HeatParams{
		Length:      1.0,
		Diffusivity: 0.01,
		Density:     1.0,
		Cp:          1.0,
		Boundary:    grid.Neumann,
	}
}

// Heat1D advances the 1D diffusion equation dT/dt = α ∇²T by explicit
// FTCS. Under Neumann boundaries the ghost-point reflection makes the
// trapezoid-integrated thermal energy exactly invariant, so the ring's
// conservation property is provable rather than empirical.
//
// Stability requires dt < dx²/(2α); the caller owns the limit.
type Heat1D struct {
	id   string
	g    grid.Uniform1D
	p    HeatParams
	T    []float64
	T0   []float64
	sig  phys.EntropySignature
	time float64

	// coupling-adjusted multiplier on α, clamped
	alphaScale float64
}

// NewHeat1D builds a diffusion ring over n points with an initial
// temperature field. The field length must match n and every temperature
// must satisfy the session bounds.
func NewHeat1D(id string, sess *phys.Session, n int, p HeatParams, initial []float64) (*Heat1D, error) {
	if len(initial) != n {
		return nil, fmt.Errorf("%w: initial field has %d points, grid has %d",
			phys.ErrConfiguration, len(initial), n)
	}
	if err := sess.CheckBound("density", p.Density); err != nil {
		return nil, err
	}
	for _, T := range initial {
		if err := sess.CheckBound("temperature", T); err != nil {
			return nil, err
		}
	}
	g, err := grid.NewUniform1D(n, p.Length)
	if err != nil {
		return nil, err
	}
	h := &Heat1D{
		id:         id,
		g:          g,
		p:          p,
		T:          cloneSlice(initial),
		T0:         cloneSlice(initial),
		alphaScale: 1.0,
	}
	return h, nil
}

func (h *Heat1D) ID() string { return h.id }

func (h *Heat1D) Step(dt float64) (float64, error) {
	before := h.thermalEnergy()

	lap := grid.Laplacian1D(h.T, h.g.Dx, h.p.Boundary)
	alpha := h.p.Diffusivity * h.alphaScale
	lo := 0
	hi := h.g.N
	if h.p.Boundary == grid.Dirichlet {
		// Zero-value boundaries are held fixed.
		lo, hi = 1, h.g.N-1
	}
	for i := lo; i < hi; i++ {
		h.T[i] += dt * alpha * lap[i]
	}

	if !allFinite(h.T) {
		return 0, &phys.StepError{Ring: h.id, Time: h.time, Wrapped: phys.ErrNumericalInstability}
	}

	h.time += dt
	after := h.thermalEnergy()
	h.accumulateEntropy()
	return after - before, nil
}

// thermalEnergy is the trapezoid integral of ρ·cp·T over the domain.
func (h *Heat1D) thermalEnergy() float64 {
	sum := 0.5 * (h.T[0] + h.T[h.g.N-1])
	for i := 1; i < h.g.N-1; i++ {
		sum += h.T[i]
	}
	return h.p.Density * h.p.Cp * sum * h.g.Dx
}

func (h *Heat1D) accumulateEntropy() {
	s := 0.0
	cellMass := h.p.Density * h.g.Dx
	for _, T := range h.T {
		if T > 0 {
			s += cellMass * h.p.Cp * math.Log(T)
		}
	}
	if s > h.sig.Thermal {
		// Diffusion toward uniformity only produces entropy.
		h.sig.Irreversible += s - h.sig.Thermal
	}
	h.sig.Thermal = s
	h.sig = h.sig.Sum()
}

func (h *Heat1D) Energy() phys.EnergyContributions {
	return phys.EnergyContributions{Thermal: h.thermalEnergy()}.Sum()
}

func (h *Heat1D) Entropy() phys.EntropySignature { return h.sig }

func (h *Heat1D) KinematicState() map[string]float64 {
	return map[string]float64{
		"mean_temperature": h.meanTemp(),
		"max_temperature":  maxAbs(h.T),
		"time":             h.time,
	}
}

func (h *Heat1D) meanTemp() float64 {
	sum := 0.0
	for _, T := range h.T {
		sum += T
	}
	return sum / float64(h.g.N)
}

// AbsorbEnergy raises the field uniformly; negative offers are absorbed
// only down to a non-negative field.
func (h *Heat1D) AbsorbEnergy(amount float64) float64 {
	dT := amount / (h.p.Density * h.p.Cp * h.p.Length)
	if dT < 0 {
		minT := h.T[0]
		for _, T := range h.T {
			if T < minT {
				minT = T
			}
		}
		if -dT > minT {
			dT = -minT
		}
	}
	for i := range h.T {
		h.T[i] += dT
	}
	return dT * h.p.Density * h.p.Cp * h.p.Length
}

func (h *Heat1D) CouplingTo(targetID string) *phys.CouplingData {
	return &phys.CouplingData{
		SourceRing: h.id,
		TargetRing: targetID,
		FieldValues: map[string]float64{
			"temperature": h.meanTemp(),
		},
	}
}

// ReceiveCoupling folds an energy flux into the field and lets a sibling
// temperature bias the effective diffusivity. Inputs are clamped.
func (h *Heat1D) ReceiveCoupling(sourceID string, data phys.CouplingData) {
	if data.EnergyFlux != 0 {
		h.AbsorbEnergy(data.EnergyFlux)
	}
	if T, ok := data.FieldValues["temperature"]; ok {
		ref := h.meanTemp()
		if ref > 0 {
			h.alphaScale = clamp(T/ref, 0.5, 2.0)
		}
	}
}

func (h *Heat1D) Reset() {
	copy(h.T, h.T0)
	h.sig = phys.EntropySignature{}
	h.time = 0
	h.alphaScale = 1.0
}

func (h *Heat1D) Serialize() map[string]float64 {
	return map[string]float64{
		"time":             h.time,
		"thermal_energy":   h.thermalEnergy(),
		"mean_temperature": h.meanTemp(),
		"max_temperature":  maxAbs(h.T),
		"entropy_total":    h.sig.Total,
		"diffusivity":      h.p.Diffusivity * h.alphaScale,
		"points":           float64(h.g.N),
	}
}

// Heat2D advances dT/dt = α ∇²T on a 2D uniform grid.
type Heat2D struct {
	id         string
	g          grid.Uniform2D
	p          HeatParams
	T          []float64
	T0         []float64
	sig        phys.EntropySignature
	time       float64
	alphaScale float64
}

func NewHeat2D(id string, sess *phys.Session, nx, ny int, p HeatParams, initial []float64) (*Heat2D, error) {
	g, err := grid.NewUniform2D(nx, ny, p.Length, p.Length)
	if err != nil {
		return nil, err
	}
	if len(initial) != g.Len() {
		return nil, fmt.Errorf("%w: initial field has %d points, grid has %d",
			phys.ErrConfiguration, len(initial), g.Len())
	}
	for _, T := range initial {
		if err := sess.CheckBound("temperature", T); err != nil {
			return nil, err
		}
	}
	return &Heat2D{
		id: id, g: g, p: p,
		T: cloneSlice(initial), T0: cloneSlice(initial),
		alphaScale: 1.0,
	}, nil
}

func (h *Heat2D) ID() string { return h.id }

func (h *Heat2D) Step(dt float64) (float64, error) {
	before := h.thermalEnergy()

	lap := h.g.Laplacian(h.T, h.p.Boundary)
	alpha := h.p.Diffusivity * h.alphaScale
	for i := 0; i < h.g.Nx; i++ {
		for j := 0; j < h.g.Ny; j++ {
			if h.p.Boundary == grid.Dirichlet && !h.g.Interior(i, j) {
				continue
			}
			id := h.g.Idx(i, j)
			h.T[id] += dt * alpha * lap[id]
		}
	}

	if !allFinite(h.T) {
		return 0, &phys.StepError{Ring: h.id, Time: h.time, Wrapped: phys.ErrNumericalInstability}
	}

	h.time += dt
	after := h.thermalEnergy()
	h.accumulateEntropy()
	return after - before, nil
}

func (h *Heat2D) accumulateEntropy() {
	s := 0.0
	cellMass := h.p.Density * h.g.Dx * h.g.Dy
	for _, T := range h.T {
		if T > 0 {
			s += cellMass * h.p.Cp * math.Log(T)
		}
	}
	if s > h.sig.Thermal {
		// Diffusion toward uniformity only produces entropy.
		h.sig.Irreversible += s - h.sig.Thermal
	}
	h.sig.Thermal = s
	h.sig = h.sig.Sum()
}

func (h *Heat2D) thermalEnergy() float64 {
	sum := 0.0
	for i := 0; i < h.g.Nx; i++ {
		wx := 1.0
		if i == 0 || i == h.g.Nx-1 {
			wx = 0.5
		}
		for j := 0; j < h.g.Ny; j++ {
			wy := 1.0
			if j == 0 || j == h.g.Ny-1 {
				wy = 0.5
			}
			sum += wx * wy * h.T[h.g.Idx(i, j)]
		}
	}
	return h.p.Density * h.p.Cp * sum * h.g.Dx * h.g.Dy
}

func (h *Heat2D) meanTemp() float64 {
	sum := 0.0
	for _, T := range h.T {
		sum += T
	}
	return sum / float64(len(h.T))
}

func (h *Heat2D) Energy() phys.EnergyContributions {
	return phys.EnergyContributions{Thermal: h.thermalEnergy()}.Sum()
}

func (h *Heat2D) Entropy() phys.EntropySignature { return h.sig }

func (h *Heat2D) KinematicState() map[string]float64 {
	return map[string]float64{
		"mean_temperature": h.meanTemp(),
		"max_temperature":  maxAbs(h.T),
		"time":             h.time,
	}
}

func (h *Heat2D) AbsorbEnergy(amount float64) float64 {
	area := h.p.Length * h.p.Length
	dT := amount / (h.p.Density * h.p.Cp * area)
	for i := range h.T {
		h.T[i] += dT
	}
	return amount
}

func (h *Heat2D) CouplingTo(targetID string) *phys.CouplingData {
	return &phys.CouplingData{
		SourceRing: h.id,
		TargetRing: targetID,
		FieldValues: map[string]float64{
			"temperature": h.meanTemp(),
		},
	}
}

func (h *Heat2D) ReceiveCoupling(sourceID string, data phys.CouplingData) {
	if data.EnergyFlux != 0 {
		h.AbsorbEnergy(math.Max(data.EnergyFlux, 0))
	}
}

func (h *Heat2D) Reset() {
	copy(h.T, h.T0)
	h.sig = phys.EntropySignature{}
	h.time = 0
	h.alphaScale = 1.0
}

func (h *Heat2D) Serialize() map[string]float64 {
	return map[string]float64{
		"time":             h.time,
		"thermal_energy":   h.thermalEnergy(),
		"mean_temperature": h.meanTemp(),
		"max_temperature":  maxAbs(h.T),
		"entropy_total":    h.sig.Total,
		"nx":               float64(h.g.Nx),
		"ny":               float64(h.g.Ny),
	}
}
