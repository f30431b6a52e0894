package skewt

import (
	"math"

	"github.com/aerogramlab/aerogram/pkg/errors"
	"github.com/aerogramlab/aerogram/pkg/thermo"
)

// IsoplethKind tags the three structural curve families.
type IsoplethKind int

const (
	// DryAdiabat is a curve of constant potential temperature θ.
	DryAdiabat IsoplethKind = iota

	// MoistAdiabat is a pseudoadiabat of constant equivalent potential
	// temperature θe.
	MoistAdiabat

	// MixingRatioLine is a curve of constant saturation mixing ratio w.
	MixingRatioLine
)

// String returns the kind name used in serialized geometry.
func (k IsoplethKind) String() string {
	switch k {
	case DryAdiabat:
		return "dry_adiabat"
	case MoistAdiabat:
		return "moist_adiabat"
	case MixingRatioLine:
		return "mixing_ratio"
	default:
		return "unknown"
	}
}

// Isopleth is one reference curve: an ordered (descending pressure) sequence
// of physical-space samples tagged with the family and the constant value
// the curve holds (θ in K, θe in K, or w in kg/kg). Isopleths are immutable
// once generated and are regenerated per diagram configuration, never
// mutated.
type Isopleth struct {
	Kind   IsoplethKind
	Value  float64
	Points []PhysicalPoint
}

// GeneratorConfig parametrizes isopleth generation. Curves depend only on
// this configuration, not on any sounding.
type GeneratorConfig struct {
	// PTop and PBottom bound the sampled pressure range in hPa.
	PTop    float64
	PBottom float64

	// Samples is the number of pressure samples per curve, log-spaced.
	Samples int

	// DryAdiabatThetas lists potential temperatures in Kelvin.
	DryAdiabatThetas []float64

	// MoistAdiabatThetas lists equivalent potential temperatures in Kelvin.
	MoistAdiabatThetas []float64

	// MixingRatios lists saturation mixing ratios in kg/kg.
	MixingRatios []float64
}

// Validate checks the generation parameters.
func (c GeneratorConfig) Validate() error {
	if c.PTop <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "p_top must be positive, got %.1f", c.PTop)
	}
	if c.PBottom <= c.PTop {
		return errors.New(errors.ErrCodeInvalidConfig, "p_bottom %.1f must exceed p_top %.1f", c.PBottom, c.PTop)
	}
	if c.Samples < 2 {
		return errors.New(errors.ErrCodeInvalidConfig, "samples must be at least 2, got %d", c.Samples)
	}
	for _, w := range c.MixingRatios {
		if w <= 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "mixing ratio must be positive, got %v", w)
		}
	}
	return nil
}

// samplePressures returns the log-spaced pressure grid in descending order
// (PBottom first).
func (c GeneratorConfig) samplePressures() []float64 {
	lnTop := math.Log(c.PTop)
	lnBot := math.Log(c.PBottom)
	ps := make([]float64, c.Samples)
	for i := range ps {
		frac := float64(i) / float64(c.Samples-1)
		ps[i] = math.Exp(lnBot + frac*(lnTop-lnBot))
	}
	return ps
}

// Generate produces all three isopleth families for the configuration.
// Dry adiabats come first, then moist adiabats, then mixing-ratio lines.
func Generate(cfg GeneratorConfig) ([]Isopleth, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	out := make([]Isopleth, 0, len(cfg.DryAdiabatThetas)+len(cfg.MoistAdiabatThetas)+len(cfg.MixingRatios))
	out = append(out, GenerateDryAdiabats(cfg)...)

	moist, err := GenerateMoistAdiabats(cfg)
	if err != nil {
		return nil, err
	}
	out = append(out, moist...)
	out = append(out, GenerateMixingRatioLines(cfg)...)
	return out, nil
}

// GenerateDryAdiabats evaluates the closed-form dry adiabat for each
// configured θ across the pressure grid.
func GenerateDryAdiabats(cfg GeneratorConfig) []Isopleth {
	ps := cfg.samplePressures()
	out := make([]Isopleth, 0, len(cfg.DryAdiabatThetas))
	for _, theta := range cfg.DryAdiabatThetas {
		pts := make([]PhysicalPoint, len(ps))
		for i, p := range ps {
			pts[i] = PhysicalPoint{Pressure: p, Temperature: thermo.TemperatureOnDryAdiabat(p, theta)}
		}
		out = append(out, Isopleth{Kind: DryAdiabat, Value: theta, Points: pts})
	}
	return out
}

// GenerateMixingRatioLines solves the shared saturation formula for
// temperature at each grid pressure, for each configured mixing ratio.
// Closed form; no iteration.
func GenerateMixingRatioLines(cfg GeneratorConfig) []Isopleth {
	ps := cfg.samplePressures()
	out := make([]Isopleth, 0, len(cfg.MixingRatios))
	for _, w := range cfg.MixingRatios {
		pts := make([]PhysicalPoint, len(ps))
		for i, p := range ps {
			pts[i] = PhysicalPoint{Pressure: p, Temperature: thermo.TemperatureOnMixingRatioLine(p, w)}
		}
		out = append(out, Isopleth{Kind: MixingRatioLine, Value: w, Points: pts})
	}
	return out
}

// GenerateMoistAdiabats integrates one pseudoadiabat per configured θe.
// Each curve is anchored at the reference pressure, where the saturated
// temperature matching θe is found by bisection, then integrated across the
// grid with the shared RK4 stepper.
func GenerateMoistAdiabats(cfg GeneratorConfig) ([]Isopleth, error) {
	ps := cfg.samplePressures()
	out := make([]Isopleth, 0, len(cfg.MoistAdiabatThetas))
	for _, thetaE := range cfg.MoistAdiabatThetas {
		anchor, err := moistAnchorTemperature(thetaE)
		if err != nil {
			return nil, err
		}

		pts, err := traceMoistAdiabat(ps, anchor)
		if err != nil {
			return nil, err
		}
		out = append(out, Isopleth{Kind: MoistAdiabat, Value: thetaE, Points: pts})
	}
	return out, nil
}

// traceMoistAdiabat walks the descending-pressure grid, integrating from
// the reference-pressure anchor outward in both directions so each grid
// point is reached by cumulative short steps rather than one long jump.
func traceMoistAdiabat(ps []float64, anchorT float64) ([]PhysicalPoint, error) {
	pts := make([]PhysicalPoint, len(ps))

	// Descend: grid points with pressure above the reference level, walked
	// nearest-first so each hop is short.
	p, t := thermo.ReferencePressure, anchorT
	descEnd := 0
	for descEnd < len(ps) && ps[descEnd] > thermo.ReferencePressure {
		descEnd++
	}
	for i := descEnd - 1; i >= 0; i-- {
		next, err := thermo.MoistAdiabatTemperature(p, t, ps[i])
		if err != nil {
			return nil, err
		}
		p, t = ps[i], next
		pts[i] = PhysicalPoint{Pressure: p, Temperature: t}
	}

	// Ascend: indices with pressure <= reference, in descending pressure
	// order (which is grid order).
	p, t = thermo.ReferencePressure, anchorT
	for i := descEnd; i < len(ps); i++ {
		next, err := thermo.MoistAdiabatTemperature(p, t, ps[i])
		if err != nil {
			return nil, err
		}
		p, t = ps[i], next
		pts[i] = PhysicalPoint{Pressure: p, Temperature: t}
	}

	return pts, nil
}

// Anchor bisection bounds and tolerances. θe at the reference pressure is
// strictly increasing in temperature, so bisection is safe.
const (
	anchorTMin    = -90.0
	anchorTMax    = 60.0
	anchorTol     = 1e-6
	anchorMaxIter = 100
)

// moistAnchorTemperature finds the saturated temperature at the reference
// pressure whose equivalent potential temperature equals thetaE.
func moistAnchorTemperature(thetaE float64) (float64, error) {
	f := func(t float64) float64 {
		return thermo.EquivalentPotentialTemperature(thermo.ReferencePressure, t) - thetaE
	}

	lo, hi := anchorTMin, anchorTMax
	fLo, fHi := f(lo), f(hi)
	if fLo > 0 || fHi < 0 {
		return 0, errors.New(errors.ErrCodeNoConvergence, "θe %.1f K outside anchor range [%.0f, %.0f] °C", thetaE, anchorTMin, anchorTMax)
	}

	for i := 0; i < anchorMaxIter; i++ {
		mid := (lo + hi) / 2
		if hi-lo < anchorTol {
			return mid, nil
		}
		if f(mid) < 0 {
			lo = mid
		} else {
			hi = mid
		}
	}
	return 0, errors.New(errors.ErrCodeNoConvergence, "moist adiabat anchor for θe %.1f K did not converge in %d iterations", thetaE, anchorMaxIter)
}
