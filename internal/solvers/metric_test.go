package solvers

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/multiphys/internal/phys"
)

func TestMetricComponentsAtRadius(t *testing.T) {
	p := DefaultMetricParams() // M=1, rs=2, r=10
	m, err := NewMetric("metric", phys.NewSession(), p)
	if err != nil {
		t.Fatal(err)
	}

	gtt, grr, gthth, _ := m.Components()
	f := 1 - 2.0/10.0
	if math.Abs(gtt+f) > 1e-12 {
		t.Errorf("g_tt = %f, expected %f", gtt, -f)
	}
	if math.Abs(grr-1/f) > 1e-12 {
		t.Errorf("g_rr = %f, expected %f", grr, 1/f)
	}
	if gthth != 100 {
		t.Errorf("g_θθ = %f, expected 100", gthth)
	}
}

func TestMetricTimeDilation(t *testing.T) {
	m, err := NewMetric("metric", phys.NewSession(), DefaultMetricParams())
	if err != nil {
		t.Fatal(err)
	}

	want := math.Sqrt(1 - 0.2)
	if math.Abs(m.TimeDilation()-want) > 1e-12 {
		t.Errorf("time dilation %f, expected %f", m.TimeDilation(), want)
	}
}

func TestMetricRejectsRadiusInsideHorizon(t *testing.T) {
	p := DefaultMetricParams()
	p.Radius = 1.5 // inside rs=2
	if _, err := NewMetric("metric", phys.NewSession(), p); err == nil {
		t.Fatal("construction inside the Schwarzschild radius must fail")
	}
}

func TestMetricInfallHitsSingularity(t *testing.T) {
	p := DefaultMetricParams()
	p.Radius = 3.0
	p.RadialRate = -1.0
	m, err := NewMetric("metric", phys.NewSession(), p)
	if err != nil {
		t.Fatal(err)
	}

	var stepErr error
	for i := 0; i < 100; i++ {
		if _, stepErr = m.Step(0.05); stepErr != nil {
			break
		}
	}
	if stepErr == nil {
		t.Fatal("infalling probe must hit the singular metric")
	}
	if !errors.Is(stepErr, phys.ErrNumericalInstability) {
		t.Fatalf("singular metric must be a numerical-instability error, got %v", stepErr)
	}
}

func TestMetricDeterminantFinite(t *testing.T) {
	m, err := NewMetric("metric", phys.NewSession(), DefaultMetricParams())
	if err != nil {
		t.Fatal(err)
	}

	det := m.Determinant()
	if det == 0 || math.IsNaN(det) || math.IsInf(det, 0) {
		t.Errorf("determinant %f must be finite and non-zero outside horizon", det)
	}
}
