package solvers

import (
	"math"

	"github.com/san-kum/multiphys/internal/phys"
)

// Every solver satisfies the ring capability contract.
var (
	_ phys.Ring = (*Heat1D)(nil)
	_ phys.Ring = (*Heat2D)(nil)
	_ phys.Ring = (*Fluid2D)(nil)
	_ phys.Ring = (*Fluid3D)(nil)
	_ phys.Ring = (*Maxwell1D)(nil)
	_ phys.Ring = (*Quantum1D)(nil)
	_ phys.Ring = (*Metric)(nil)
	_ phys.Ring = (*Mechanics)(nil)
	_ phys.Ring = (*Thermal0D)(nil)
	_ phys.Ring = (*Kinetics)(nil)
)

// referenceTemp converts dissipated energy to irreversible entropy when a
// ring has no temperature field of its own.
const referenceTemp = 293.15

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func allFinite(fs ...[]float64) bool {
	for _, f := range fs {
		for _, v := range f {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}

func cloneSlice(f []float64) []float64 {
	c := make([]float64, len(f))
	copy(c, f)
	return c
}

func maxAbs(f []float64) float64 {
	m := 0.0
	for _, v := range f {
		if a := math.Abs(v); a > m {
			m = a
		}
	}
	return m
}
