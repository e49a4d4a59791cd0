package solvers

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/multiphys/internal/phys"
)

func TestMechanicsFreeFallMatchesClosedForm(t *testing.T) {
	p := DefaultMechanicsParams()
	p.Friction = 0
	m, err := NewMechanics("body", phys.NewSession(), p)
	require.NoError(t, err)

	dt := 0.001
	steps := 1000
	for i := 0; i < steps; i++ {
		_, err := m.Step(dt)
		require.NoError(t, err)
	}

	tEnd := float64(steps) * dt
	wantPos := p.Position - 0.5*p.Gravity*tEnd*tEnd
	wantVel := -p.Gravity * tEnd
	assert.InDelta(t, wantPos, m.KinematicState()["position"], 1e-2)
	assert.InDelta(t, wantVel, m.KinematicState()["velocity"], 1e-6)
}

func TestMechanicsFrictionDissipates(t *testing.T) {
	p := DefaultMechanicsParams()
	p.Friction = 0.5
	p.Velocity = 5.0
	m, err := NewMechanics("body", phys.NewSession(), p)
	require.NoError(t, err)

	var dissipatedTotal float64
	for i := 0; i < 500; i++ {
		_, err := m.Step(0.001)
		require.NoError(t, err)
		if cd := m.CouplingTo("thermal"); cd != nil {
			assert.Positive(t, cd.EnergyFlux)
			dissipatedTotal += cd.EnergyFlux
		}
	}
	assert.Positive(t, dissipatedTotal, "friction must push dissipated energy to coupling")
	assert.Positive(t, m.Entropy().Irreversible)
}

func TestMechanicsLogsIntegratorDrift(t *testing.T) {
	sess := phys.NewSession()
	p := DefaultMechanicsParams()
	p.Friction = 0
	p.Integrator = "euler"
	m, err := NewMechanics("body", sess, p)
	require.NoError(t, err)

	// Euler gains ½g²dt² per free-fall step; at dt=0.1 that is far past
	// the audit tolerance.
	for i := 0; i < 5; i++ {
		_, err := m.Step(0.1)
		require.NoError(t, err)
	}
	require.Len(t, sess.Errors(), 1, "drift is logged once, not per step")
	assert.Contains(t, sess.Errors()[0].Error(), "body")

	// A tight step keeps the per-step drift under tolerance.
	quiet := phys.NewSession()
	m2, err := NewMechanics("body", quiet, p)
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		_, err := m2.Step(1e-4)
		require.NoError(t, err)
	}
	assert.Empty(t, quiet.Errors())
}

func TestMechanicsUnknownIntegratorFails(t *testing.T) {
	p := DefaultMechanicsParams()
	p.Integrator = "warpdrive"
	_, err := NewMechanics("body", phys.NewSession(), p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "warpdrive")
	assert.Contains(t, err.Error(), "symplectic")
}

func TestThermal0DCoolsTowardEnvironment(t *testing.T) {
	p := DefaultThermalParams() // 400K toward 300K
	th, err := NewThermal0D("mass", phys.NewSession(), p)
	require.NoError(t, err)

	prev := th.KinematicState()["temperature"]
	for i := 0; i < 10000; i++ {
		_, err := th.Step(0.01)
		require.NoError(t, err)
		cur := th.KinematicState()["temperature"]
		assert.LessOrEqual(t, cur, prev, "cooling must be monotone")
		assert.Greater(t, cur, p.EnvTemp-1e-9, "cooling must not undershoot the environment")
		prev = cur
	}
	assert.InDelta(t, p.EnvTemp, prev, 1.0)
}

func TestThermal0DEntropyProductionNonNegative(t *testing.T) {
	th, err := NewThermal0D("mass", phys.NewSession(), DefaultThermalParams())
	require.NoError(t, err)

	prev := th.Entropy().Irreversible
	for i := 0; i < 200; i++ {
		_, err := th.Step(0.01)
		require.NoError(t, err)
		cur := th.Entropy().Irreversible
		assert.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
	assert.Positive(t, prev, "heat crossing a finite temperature gap must produce entropy")
}

func TestThermal0DRejectsNonPositiveTemperature(t *testing.T) {
	p := DefaultThermalParams()
	p.Temperature = -10
	_, err := NewThermal0D("mass", phys.NewSession(), p)
	require.Error(t, err)
}

func TestKineticsConcentrationNonIncreasing(t *testing.T) {
	k, err := NewKinetics("species", phys.NewSession(), DefaultKineticsParams())
	require.NoError(t, err)

	prev := k.KinematicState()["concentration"]
	for i := 0; i < 2000; i++ {
		_, err := k.Step(0.01)
		require.NoError(t, err)
		cur := k.KinematicState()["concentration"]
		assert.LessOrEqual(t, cur, prev, "Michaelis-Menten decay is monotone")
		assert.GreaterOrEqual(t, cur, 0.0)
		prev = cur
	}
}

func TestKineticsEnergyBookkeeping(t *testing.T) {
	// Each step's released energy equals exactly the negative of the
	// chemical potential-energy delta.
	k, err := NewKinetics("species", phys.NewSession(), DefaultKineticsParams())
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		before := k.Energy().Chemical
		delta, err := k.Step(0.01)
		require.NoError(t, err)
		after := k.Energy().Chemical

		assert.InDelta(t, after-before, delta, 1e-12)
		assert.InDelta(t, -(after - before), k.Released(), 1e-12)
	}
}

func TestKineticsCouplingCarriesReleasedEnergy(t *testing.T) {
	k, err := NewKinetics("species", phys.NewSession(), DefaultKineticsParams())
	require.NoError(t, err)

	_, err = k.Step(0.01)
	require.NoError(t, err)

	cd := k.CouplingTo("thermal")
	require.NotNil(t, cd)
	assert.InDelta(t, k.Released(), cd.EnergyFlux, 1e-12)
	assert.Equal(t, "species", cd.SourceRing)
	assert.Equal(t, "thermal", cd.TargetRing)
}

func TestKineticsRateClamped(t *testing.T) {
	k, err := NewKinetics("species", phys.NewSession(), DefaultKineticsParams())
	require.NoError(t, err)

	k.ReceiveCoupling("thermal", phys.CouplingData{
		FieldValues: map[string]float64{"temperature": 1e15},
	})
	assert.LessOrEqual(t, k.rateScale, 10.0)

	k.ReceiveCoupling("thermal", phys.CouplingData{
		FieldValues: map[string]float64{"temperature": math.Inf(-1)},
	})
	assert.GreaterOrEqual(t, k.rateScale, 0.1)
}

func TestKineticsRejectsNonPositiveParams(t *testing.T) {
	p := DefaultKineticsParams()
	p.KM = 0
	_, err := NewKinetics("species", phys.NewSession(), p)
	require.Error(t, err)
}
