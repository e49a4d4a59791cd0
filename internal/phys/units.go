package phys

import "fmt"

// Dim is a vector of base-dimension exponents: mass, length, time,
// temperature, current. Two quantities may be added only when their
// dimension vectors match exactly.
type Dim struct {
	Mass, Length, Time, Temp, Current int
}

var (
	Dimensionless = Dim{}
	DimMass       = Dim{Mass: 1}
	DimLength     = Dim{Length: 1}
	DimTime       = Dim{Time: 1}
	DimTemp       = Dim{Temp: 1}
	DimVelocity   = Dim{Length: 1, Time: -1}
	DimMomentum   = Dim{Mass: 1, Length: 1, Time: -1}
	DimEnergy     = Dim{Mass: 1, Length: 2, Time: -2}
	DimEntropy    = Dim{Mass: 1, Length: 2, Time: -2, Temp: -1}
)

func (d Dim) String() string {
	return fmt.Sprintf("[M^%d L^%d T^%d K^%d A^%d]",
		d.Mass, d.Length, d.Time, d.Temp, d.Current)
}

func (d Dim) mul(o Dim) Dim {
	return Dim{d.Mass + o.Mass, d.Length + o.Length, d.Time + o.Time,
		d.Temp + o.Temp, d.Current + o.Current}
}

func (d Dim) div(o Dim) Dim {
	return Dim{d.Mass - o.Mass, d.Length - o.Length, d.Time - o.Time,
		d.Temp - o.Temp, d.Current - o.Current}
}

// Quantity is a scalar with physical dimensions attached.
type Quantity struct {
	Value float64
	Dim   Dim
}

func Q(v float64, d Dim) Quantity { return Quantity{Value: v, Dim: d} }

// Add fails with ErrDimensionMismatch on incompatible dimensions; the
// result of continuing would be physically meaningless.
func (q Quantity) Add(o Quantity) (Quantity, error) {
	if q.Dim != o.Dim {
		return Quantity{}, fmt.Errorf("%w: %v + %v",
			ErrDimensionMismatch, q.Dim, o.Dim)
	}
	return Quantity{q.Value + o.Value, q.Dim}, nil
}

func (q Quantity) Sub(o Quantity) (Quantity, error) {
	if q.Dim != o.Dim {
		return Quantity{}, fmt.Errorf("%w: %v - %v",
			ErrDimensionMismatch, q.Dim, o.Dim)
	}
	return Quantity{q.Value - o.Value, q.Dim}, nil
}

func (q Quantity) Mul(o Quantity) Quantity {
	return Quantity{q.Value * o.Value, q.Dim.mul(o.Dim)}
}

func (q Quantity) Div(o Quantity) Quantity {
	return Quantity{q.Value / o.Value, q.Dim.div(o.Dim)}
}
