// Package thermo provides the shared thermodynamic formulas used throughout
// the aerogram engine.
//
// # Consistency
//
// Every component that touches saturation (moist-adiabat integration,
// mixing-ratio isopleths, LCL solving) goes through the single
// [SaturationVaporPressure] implementation in this package. Mixing two
// saturation approximations across components produces isopleths and parcel
// curves that disagree at the same (pressure, temperature), which is a
// correctness bug rather than a stylistic choice. Keep it that way.
//
// # Conventions
//
// Unless noted otherwise, pressures are in hPa, temperatures in °C, and
// mixing ratios in kg/kg. Functions that operate on absolute temperature
// (potential temperature, equivalent potential temperature) return Kelvin.
//
// The saturation vapor pressure formula is Bolton (1980), accurate to within
// 0.1% over -35 °C to +35 °C, which is well inside the 0.1 °C tolerance the
// isopleth generator is held to.
package thermo

import "math"

// Physical constants.
const (
	// ReferencePressure is the standard reference pressure in hPa used for
	// potential temperature and as the anchor of moist adiabats.
	ReferencePressure = 1000.0

	// DryGasConstant is the specific gas constant of dry air in J/(kg·K).
	DryGasConstant = 287.04

	// SpecificHeatDryAir is the specific heat of dry air at constant
	// pressure in J/(kg·K).
	SpecificHeatDryAir = 1005.7

	// Kappa is the Poisson exponent R_d/c_p for dry air.
	Kappa = DryGasConstant / SpecificHeatDryAir

	// Epsilon is the ratio of the molecular weights of water vapor and
	// dry air.
	Epsilon = 0.622

	// ZeroCelsius is 0 °C in Kelvin.
	ZeroCelsius = 273.15
)

// SaturationVaporPressure returns the saturation vapor pressure in hPa over
// liquid water at temperature t (°C), using Bolton's (1980) approximation.
func SaturationVaporPressure(t float64) float64 {
	return 6.112 * math.Exp(17.67*t/(t+243.5))
}

// DewpointForVaporPressure inverts [SaturationVaporPressure]: it returns the
// temperature (°C) at which the saturation vapor pressure equals e (hPa).
func DewpointForVaporPressure(e float64) float64 {
	ln := math.Log(e / 6.112)
	return 243.5 * ln / (17.67 - ln)
}

// SaturationMixingRatio returns the saturation mixing ratio in kg/kg at
// pressure p (hPa) and temperature t (°C).
func SaturationMixingRatio(p, t float64) float64 {
	es := SaturationVaporPressure(t)
	return Epsilon * es / (p - es)
}

// VaporPressureForMixingRatio returns the vapor pressure (hPa) of air at
// pressure p (hPa) holding mixing ratio w (kg/kg).
func VaporPressureForMixingRatio(p, w float64) float64 {
	return p * w / (Epsilon + w)
}

// TemperatureOnMixingRatioLine returns the temperature (°C) at which the
// saturation mixing ratio at pressure p (hPa) equals w (kg/kg). This is the
// closed-form inversion used to draw mixing-ratio isopleths and to locate
// the LCL, and it shares the saturation formula with everything else.
func TemperatureOnMixingRatioLine(p, w float64) float64 {
	return DewpointForVaporPressure(VaporPressureForMixingRatio(p, w))
}

// PotentialTemperature returns the potential temperature θ in Kelvin of air
// at pressure p (hPa) and temperature t (°C).
func PotentialTemperature(p, t float64) float64 {
	return (t + ZeroCelsius) * math.Pow(ReferencePressure/p, Kappa)
}

// TemperatureOnDryAdiabat returns the temperature (°C) at pressure p (hPa)
// along the dry adiabat of potential temperature theta (K).
func TemperatureOnDryAdiabat(p, theta float64) float64 {
	return theta*math.Pow(p/ReferencePressure, Kappa) - ZeroCelsius
}

// LatentHeat returns the latent heat of vaporization in J/kg at temperature
// t (°C), with the standard linear temperature correction.
func LatentHeat(t float64) float64 {
	return 2.501e6 - 2370.0*t
}

// MoistLapseLogP returns dT/d(ln p) in °C along the pseudoadiabat through
// (p hPa, t °C). This is the right-hand side of the saturation-ascent ODE
// that the isopleth generator and parcel solver integrate; it has no closed
// form, hence the numerical stepping in those components.
func MoistLapseLogP(p, t float64) float64 {
	tk := t + ZeroCelsius
	ws := SaturationMixingRatio(p, t)
	lv := LatentHeat(t)

	num := DryGasConstant*tk + lv*ws
	den := SpecificHeatDryAir + lv*lv*ws*Epsilon/(DryGasConstant*tk*tk)
	return num / den
}

// EquivalentPotentialTemperature returns θe in Kelvin for a saturated parcel
// at pressure p (hPa) and temperature t (°C), following Bolton (1980).
// Saturation means the condensation temperature equals t and the mixing
// ratio is the saturation value, which is the case everywhere along a
// pseudoadiabat.
func EquivalentPotentialTemperature(p, t float64) float64 {
	tk := t + ZeroCelsius
	r := SaturationMixingRatio(p, t)

	theta := tk * math.Pow(ReferencePressure/p, Kappa*(1-0.28*r))
	return theta * math.Exp((3036.0/tk-1.78)*r*(1+0.81*r))
}
