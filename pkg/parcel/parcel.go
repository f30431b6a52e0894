// Package parcel computes lifted-parcel ascent: the lifted condensation
// level and the full parcel temperature profile used for convective energy
// integration.
//
// A parcel lifted from the surface cools dry-adiabatically (conserving θ and
// its mixing ratio) until it saturates at the LCL, then follows the
// pseudoadiabat. Both segments use the shared formulas in pkg/thermo, so the
// parcel curve is consistent with the chart's isopleths by construction.
package parcel

import (
	"math"

	"github.com/aerogramlab/aerogram/pkg/errors"
	"github.com/aerogramlab/aerogram/pkg/skewt"
	"github.com/aerogramlab/aerogram/pkg/sounding"
	"github.com/aerogramlab/aerogram/pkg/thermo"
)

// LCL is the lifted condensation level: the single (pressure, temperature)
// point where a dry-adiabatically lifted parcel first saturates. It depends
// only on the surface pressure, temperature, and dewpoint.
type LCL struct {
	Pressure    float64 `json:"pressure"`    // hPa
	Temperature float64 `json:"temperature"` // °C
}

// LCL solver bounds. Bisection on pressure converges linearly; 100
// iterations on a ≤ 1100 hPa bracket reaches far below the 0.01 hPa
// tolerance, so hitting the cap means the bracket was bad.
const (
	lclPressureTol = 0.01
	lclMaxIter     = 100
	lclFloor       = 10.0 // hPa; no physical LCL is anywhere near this
)

// ComputeLCL finds where the dry adiabat through (p0, t0) intersects the
// saturation mixing-ratio line through (p0, td0), by bisection on pressure.
//
// Both curves are monotone in temperature as pressure falls, and the dry
// adiabat cools faster, so the bracket [lclFloor, p0] always contains
// exactly one crossing when td0 < t0. A saturated surface (td0 == t0) is its
// own LCL.
func ComputeLCL(p0, t0, td0 float64) (LCL, error) {
	if p0 <= 0 {
		return LCL{}, errors.New(errors.ErrCodeInvalidPressure, "surface pressure must be positive, got %.2f hPa", p0)
	}
	if td0 > t0 {
		return LCL{}, errors.New(errors.ErrCodeInvalidDewpoint, "surface dewpoint %.2f °C above temperature %.2f °C", td0, t0)
	}
	if td0 == t0 {
		return LCL{Pressure: p0, Temperature: t0}, nil
	}

	theta := thermo.PotentialTemperature(p0, t0)
	w0 := thermo.SaturationMixingRatio(p0, td0)

	// Positive while the parcel is still unsaturated at pressure p.
	depression := func(p float64) float64 {
		return thermo.TemperatureOnDryAdiabat(p, theta) - thermo.TemperatureOnMixingRatioLine(p, w0)
	}

	lo, hi := lclFloor, p0
	if depression(lo) > 0 {
		return LCL{}, errors.New(errors.ErrCodeNoConvergence, "no saturation above %.0f hPa for surface (%.1f hPa, %.1f/%.1f °C)", lclFloor, p0, t0, td0)
	}

	for i := 0; i < lclMaxIter; i++ {
		mid := (lo + hi) / 2
		if hi-lo < lclPressureTol {
			return LCL{Pressure: mid, Temperature: thermo.TemperatureOnDryAdiabat(mid, theta)}, nil
		}
		if depression(mid) > 0 {
			hi = mid
		} else {
			lo = mid
		}
	}
	return LCL{}, errors.New(errors.ErrCodeNoConvergence, "LCL bisection did not converge within %d iterations", lclMaxIter)
}

// Profile is the lifted-parcel temperature profile: samples at the
// sounding's pressure levels plus the LCL itself, ordered by descending
// pressure. It splits conceptually at the LCL into a dry-adiabatic and a
// pseudoadiabatic segment.
type Profile struct {
	LCL     LCL
	Samples []skewt.PhysicalPoint
}

// ComputeProfile lifts a parcel from the sounding's surface level through
// every sounding pressure level. Levels above the LCL follow the
// pseudoadiabat integrated stepwise from the LCL, so adjacent samples are
// reached by short integrations.
func ComputeProfile(snd *sounding.Profile) (*Profile, error) {
	sfc := snd.Surface()
	lcl, err := ComputeLCL(sfc.Pressure, sfc.Temperature, sfc.Dewpoint)
	if err != nil {
		return nil, err
	}

	theta := thermo.PotentialTemperature(sfc.Pressure, sfc.Temperature)
	samples := make([]skewt.PhysicalPoint, 0, snd.Len()+1)

	// Dry segment: surface down to (not below) the LCL pressure.
	i := 0
	for ; i < snd.Len() && snd.Levels[i].Pressure > lcl.Pressure; i++ {
		p := snd.Levels[i].Pressure
		samples = append(samples, skewt.PhysicalPoint{
			Pressure:    p,
			Temperature: thermo.TemperatureOnDryAdiabat(p, theta),
		})
	}

	// The LCL itself joins the two segments.
	samples = append(samples, skewt.PhysicalPoint{Pressure: lcl.Pressure, Temperature: lcl.Temperature})

	// Moist segment: integrate level to level starting at the LCL.
	p, t := lcl.Pressure, lcl.Temperature
	for ; i < snd.Len(); i++ {
		next := snd.Levels[i].Pressure
		if next == lcl.Pressure {
			continue
		}
		t, err = thermo.MoistAdiabatTemperature(p, t, next)
		if err != nil {
			return nil, err
		}
		p = next
		samples = append(samples, skewt.PhysicalPoint{Pressure: p, Temperature: t})
	}

	return &Profile{LCL: lcl, Samples: samples}, nil
}

// TemperatureAt returns the parcel temperature (°C) at pressure pr (hPa),
// interpolated linearly in log-pressure between samples. Out-of-range
// pressures clamp to the nearest sample.
func (pp *Profile) TemperatureAt(pr float64) float64 {
	s := pp.Samples
	if pr >= s[0].Pressure {
		return s[0].Temperature
	}
	if pr <= s[len(s)-1].Pressure {
		return s[len(s)-1].Temperature
	}
	for i := 1; i < len(s); i++ {
		if pr >= s[i].Pressure {
			lo, hi := s[i-1], s[i]
			frac := (math.Log(pr) - math.Log(lo.Pressure)) / (math.Log(hi.Pressure) - math.Log(lo.Pressure))
			return lo.Temperature + frac*(hi.Temperature-lo.Temperature)
		}
	}
	return s[len(s)-1].Temperature
}

// DrySegment returns the samples at or below the LCL (pressure >= LCL
// pressure), ending with the LCL point.
func (pp *Profile) DrySegment() []skewt.PhysicalPoint {
	for i, s := range pp.Samples {
		if s.Pressure < pp.LCL.Pressure {
			return pp.Samples[:i]
		}
	}
	return pp.Samples
}

// MoistSegment returns the samples from the LCL upward.
func (pp *Profile) MoistSegment() []skewt.PhysicalPoint {
	for i, s := range pp.Samples {
		if s.Pressure <= pp.LCL.Pressure {
			return pp.Samples[i:]
		}
	}
	return nil
}
