package thermo

import (
	"math"

	"github.com/aerogramlab/aerogram/pkg/errors"
)

// Moist-ascent integration parameters. The step is in ln-pressure units;
// 0.005 corresponds to roughly 0.5% pressure change per step and keeps RK4
// well under the 0.1 °C tolerance the isopleth curves are held to.
const (
	// MoistStep is the fixed RK4 step in ln(p) for pseudoadiabatic ascent.
	MoistStep = 0.005

	// maxMoistSteps bounds a single integration. A full chart span
	// (1050 → 100 hPa) needs about 470 steps; anything near the cap means
	// the inputs are nonsense rather than the solver being slow.
	maxMoistSteps = 100000
)

// MoistAdiabatTemperature integrates the pseudoadiabat through
// (pFrom hPa, tFrom °C) to pressure pTo (hPa) and returns the temperature
// there. Both the isopleth generator and the parcel solver use this one
// integrator, so a parcel curve always lies on the corresponding moist
// isopleth.
//
// The integration is fixed-step fourth-order Runge–Kutta in x = ln(p),
// bounded by a hard step budget; exceeding it returns a
// COMPUTATION_STEP_BUDGET_EXCEEDED error instead of a silent approximation.
func MoistAdiabatTemperature(pFrom, tFrom, pTo float64) (float64, error) {
	if pFrom <= 0 || pTo <= 0 {
		return 0, errors.New(errors.ErrCodeInvalidPressure, "pressure must be positive, got %.2f -> %.2f hPa", pFrom, pTo)
	}
	if pFrom == pTo {
		return tFrom, nil
	}

	x0 := math.Log(pFrom)
	x1 := math.Log(pTo)
	span := x1 - x0

	n := int(math.Ceil(math.Abs(span) / MoistStep))
	if n > maxMoistSteps {
		return 0, errors.New(errors.ErrCodeStepBudget, "moist ascent %.2f -> %.2f hPa needs %d steps, budget is %d", pFrom, pTo, n, maxMoistSteps)
	}
	h := span / float64(n)

	f := func(x, t float64) float64 {
		return MoistLapseLogP(math.Exp(x), t)
	}

	x, t := x0, tFrom
	for i := 0; i < n; i++ {
		k1 := f(x, t)
		k2 := f(x+h/2, t+h*k1/2)
		k3 := f(x+h/2, t+h*k2/2)
		k4 := f(x+h, t+h*k3)
		t += h * (k1 + 2*k2 + 2*k3 + k4) / 6
		x += h
	}
	return t, nil
}
