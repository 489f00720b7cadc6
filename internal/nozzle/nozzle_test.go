package nozzle

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEvaluator() Evaluator {
	return NewEvaluator(Nozzle{
		ThroatArea:     7.07e-4,
		ExpansionRatio: 4.0,
		DischargeCoeff: 1.0,
	})
}

func TestExitMachSatisfiesAreaRelation(t *testing.T) {
	e := testEvaluator()

	pt, err := e.Evaluate(5e6, 101325, 1.2, 1520)
	require.NoError(t, err)

	assert.Greater(t, pt.ExitMach, 1.0, "exit flow must be supersonic")
	assert.InEpsilon(t, e.Nozzle.ExpansionRatio, areaRatio(pt.ExitMach, 1.2), 1e-8)
}

func TestEvaluatePhysicalOrdering(t *testing.T) {
	e := testEvaluator()

	pt, err := e.Evaluate(5e6, 101325, 1.2, 1520)
	require.NoError(t, err)

	assert.Greater(t, pt.Thrust, 0.0)
	assert.Greater(t, pt.ExitVelocity, 0.0)
	assert.Less(t, pt.ExitPressure, 5e6, "exit pressure below chamber pressure")
	assert.Greater(t, pt.Isp, 0.0)

	// mdot = Cd * Pc * At / c*
	assert.InEpsilon(t, 5e6*7.07e-4/1520, pt.MassFlow, 1e-12)
	// F = mdot*Ve + (Pe - Pa)*Ae and Isp = F/(mdot*g0) must be consistent.
	f := pt.MassFlow*pt.ExitVelocity + (pt.ExitPressure-101325)*e.Nozzle.ExitArea()
	assert.InEpsilon(t, f, pt.Thrust, 1e-12)
	assert.InEpsilon(t, f/(pt.MassFlow*G0), pt.Isp, 1e-12)
}

func TestVacuumIspExceedsSeaLevel(t *testing.T) {
	e := testEvaluator()

	for _, pc := range []float64{1e6, 3e6, 7e6} {
		sea, err := e.Evaluate(pc, 101325, 1.2, 1520)
		require.NoError(t, err)
		vac, err := e.Evaluate(pc, 0, 1.2, 1520)
		require.NoError(t, err)

		assert.Greater(t, vac.Isp, sea.Isp, "Pc=%g", pc)
		assert.Greater(t, vac.Thrust, sea.Thrust, "Pc=%g", pc)
	}
}

func TestDischargeCoefficientScalesMassFlow(t *testing.T) {
	ideal := testEvaluator()

	lossy := NewEvaluator(Nozzle{ThroatArea: 7.07e-4, ExpansionRatio: 4.0, DischargeCoeff: 0.95})

	pi, err := ideal.Evaluate(5e6, 0, 1.2, 1520)
	require.NoError(t, err)
	pl, err := lossy.Evaluate(5e6, 0, 1.2, 1520)
	require.NoError(t, err)

	assert.InEpsilon(t, 0.95*pi.MassFlow, pl.MassFlow, 1e-12)
}

func TestEvaluateNonPhysical(t *testing.T) {
	e := testEvaluator()

	_, err := e.Evaluate(-1e5, 101325, 1.2, 1520)
	var npe *NonPhysicalError
	require.ErrorAs(t, err, &npe)

	_, err = e.Evaluate(math.NaN(), 101325, 1.2, 1520)
	assert.Error(t, err)

	// Deeply over-expanded at very low chamber pressure: thrust goes
	// negative and the evaluator refuses to clamp it.
	_, err = e.Evaluate(2e4, 101325, 1.2, 1520)
	require.ErrorAs(t, err, &npe)
	assert.Equal(t, "thrust", npe.Quantity)
}

func TestExhaustedMachIterationsSurfaceAsError(t *testing.T) {
	// A tolerance the bisection cannot meet in two iterations: the cap
	// overrun must be reported, never a silently unconverged Mach number.
	e := testEvaluator()
	e.MachTol = 1e-15
	e.MaxIter = 2

	_, err := e.Evaluate(5e6, 101325, 1.2, 1520)
	var ce *ConvergenceError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 2, ce.Iterations)
	assert.Greater(t, ce.LastResidual, 0.0)
}

func TestEvaluateRejectsSubUnityExpansion(t *testing.T) {
	e := NewEvaluator(Nozzle{ThroatArea: 7.07e-4, ExpansionRatio: 0.5, DischargeCoeff: 1})

	_, err := e.Evaluate(5e6, 101325, 1.2, 1520)
	assert.Error(t, err)
}

func TestNewEvaluatorDefaultsDischargeCoeff(t *testing.T) {
	e := NewEvaluator(Nozzle{ThroatArea: 1e-4, ExpansionRatio: 3})
	assert.Equal(t, 1.0, e.Nozzle.DischargeCoeff)
}
