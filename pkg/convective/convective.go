// Package convective computes CAPE and CIN as signed buoyancy-area
// integrals between an environment profile and a lifted-parcel profile.
//
// Buoyancy is B(p) = Tparcel(p) − Tenv(p). Following the hydrostatic
// relation, the energy contribution of a layer is
//
//	dE = R_d · B · d(−ln p)   [J/kg]
//
// integrated from the LCL upward (buoyancy below the LCL is excluded by
// convention). Sign changes of B delimit regions: positive regions
// accumulate into CAPE, negative ones into CIN. Zero crossings between
// samples are located by linear interpolation in ln p; these are the level
// of free convection (first crossing into positive buoyancy) and the
// equilibrium level (last crossing out of it).
package convective

import (
	"math"

	"github.com/aerogramlab/aerogram/pkg/errors"
	"github.com/aerogramlab/aerogram/pkg/parcel"
	"github.com/aerogramlab/aerogram/pkg/skewt"
	"github.com/aerogramlab/aerogram/pkg/sounding"
	"github.com/aerogramlab/aerogram/pkg/thermo"
)

// RegionSign tags a buoyancy region.
type RegionSign int

const (
	// Positive marks a CAPE (positively buoyant) region.
	Positive RegionSign = iota

	// Negative marks a CIN (negatively buoyant) region.
	Negative
)

// String returns the sign tag used in serialized geometry.
func (s RegionSign) String() string {
	if s == Positive {
		return "positive"
	}
	return "negative"
}

// Region is one contiguous buoyancy region: its boundary polygon in
// physical space (parcel curve up, environment curve back down, so the
// renderer can shade it directly) and its signed area in J/kg.
type Region struct {
	Sign RegionSign
	// Energy is the signed area: > 0 for Positive regions, < 0 for
	// Negative ones.
	Energy float64
	// Boundary is the closed polygon outline, ordered: parcel samples by
	// decreasing pressure, then environment samples back by increasing
	// pressure. The first and last points coincide at a zero crossing or
	// integration bound.
	Boundary []skewt.PhysicalPoint
}

// Result holds the convective energy diagnostics for one sounding.
type Result struct {
	// CAPE is the total positive buoyancy area, ≥ 0 (J/kg).
	CAPE float64

	// CIN is the total negative buoyancy area, ≤ 0 (J/kg).
	CIN float64

	// LFC is the level of free convection: the bottom of the first
	// positive region, nil when buoyancy never turns positive.
	LFC *skewt.PhysicalPoint

	// EL is the equilibrium level: the top of the last positive region,
	// nil when there is no positive region.
	EL *skewt.PhysicalPoint

	// Regions lists every buoyancy region from the LCL to the profile
	// top, bottom-up.
	Regions []Region
}

// sample is one aligned (pressure, parcel, environment) triple.
type sample struct {
	p      float64 // hPa
	parcel float64 // °C
	env    float64 // °C
}

func (s sample) buoyancy() float64 { return s.parcel - s.env }

// Compute integrates buoyancy between env and the lifted parcel profile
// from the LCL to the top of the sounding.
func Compute(env *sounding.Profile, par *parcel.Profile) (Result, error) {
	samples := alignedSamples(env, par)
	if len(samples) < 2 {
		return Result{}, errors.New(errors.ErrCodeEmptyProfile, "fewer than 2 levels above the LCL")
	}

	var res Result
	acc := newRegionAccumulator(samples[0])

	for i := 1; i < len(samples); i++ {
		prev, cur := samples[i-1], samples[i]
		b0, b1 := prev.buoyancy(), cur.buoyancy()

		switch {
		case b0*b1 < 0:
			// Sign change: split the layer at the interpolated zero
			// crossing so each region's area is exact to the linear model.
			cross := zeroCrossing(prev, cur)
			acc.extend(cross)
			res.flush(acc)
			acc = newRegionAccumulator(cross)
			acc.extend(cur)
		case b1 == 0 && b0 != 0:
			// The sample itself sits on the zero line. Close the region
			// here; otherwise opposite-signed layers on either side of
			// an exact-zero sample would fold into one region.
			acc.extend(cur)
			res.flush(acc)
			acc = newRegionAccumulator(cur)
		default:
			acc.extend(cur)
		}
	}
	res.flush(acc)

	res.locateBoundaries()
	return res, nil
}

// alignedSamples merges the parcel samples above (and including) the LCL
// with the environment temperature interpolated at the same pressures.
func alignedSamples(env *sounding.Profile, par *parcel.Profile) []sample {
	moist := par.MoistSegment()
	out := make([]sample, 0, len(moist))
	top := env.Top().Pressure
	for _, m := range moist {
		if m.Pressure < top {
			break
		}
		out = append(out, sample{p: m.Pressure, parcel: m.Temperature, env: env.TemperatureAt(m.Pressure)})
	}
	return out
}

// zeroCrossing locates the pressure where buoyancy vanishes between two
// samples, linear in ln p, and evaluates both curves there (equal by
// construction of the crossing).
func zeroCrossing(a, b sample) sample {
	ba, bb := a.buoyancy(), b.buoyancy()
	frac := ba / (ba - bb)
	lnP := math.Log(a.p) + frac*(math.Log(b.p)-math.Log(a.p))
	t := a.parcel + frac*(b.parcel-a.parcel)
	return sample{p: math.Exp(lnP), parcel: t, env: t}
}

// regionAccumulator builds one region while its buoyancy sign holds.
type regionAccumulator struct {
	energy  float64
	parcels []skewt.PhysicalPoint
	envs    []skewt.PhysicalPoint
	last    sample
}

func newRegionAccumulator(start sample) *regionAccumulator {
	return &regionAccumulator{
		parcels: []skewt.PhysicalPoint{{Pressure: start.p, Temperature: start.parcel}},
		envs:    []skewt.PhysicalPoint{{Pressure: start.p, Temperature: start.env}},
		last:    start,
	}
}

// extend adds the trapezoid between the last sample and s.
func (a *regionAccumulator) extend(s sample) {
	mean := (a.last.buoyancy() + s.buoyancy()) / 2
	// d(−ln p) going upward: ln(p_lower) − ln(p_upper) > 0.
	a.energy += thermo.DryGasConstant * mean * (math.Log(a.last.p) - math.Log(s.p))
	a.parcels = append(a.parcels, skewt.PhysicalPoint{Pressure: s.p, Temperature: s.parcel})
	a.envs = append(a.envs, skewt.PhysicalPoint{Pressure: s.p, Temperature: s.env})
	a.last = s
}

// flush closes the accumulated region into the result. Regions with
// negligible area (numerical slivers at crossings) are dropped.
func (r *Result) flush(acc *regionAccumulator) {
	const minArea = 1e-9
	if math.Abs(acc.energy) < minArea || len(acc.parcels) < 2 {
		return
	}

	sign := Positive
	if acc.energy < 0 {
		sign = Negative
	}

	// Boundary: parcel curve up, environment curve back down, closed.
	boundary := make([]skewt.PhysicalPoint, 0, len(acc.parcels)+len(acc.envs))
	boundary = append(boundary, acc.parcels...)
	for i := len(acc.envs) - 1; i >= 0; i-- {
		boundary = append(boundary, acc.envs[i])
	}

	r.Regions = append(r.Regions, Region{Sign: sign, Energy: acc.energy, Boundary: boundary})
	if sign == Positive {
		r.CAPE += acc.energy
	} else {
		r.CIN += acc.energy
	}
}

// locateBoundaries sets LFC and EL from the first and last positive region.
func (r *Result) locateBoundaries() {
	for _, reg := range r.Regions {
		if reg.Sign != Positive {
			continue
		}
		if r.LFC == nil {
			bottom := reg.Boundary[0]
			r.LFC = &skewt.PhysicalPoint{Pressure: bottom.Pressure, Temperature: bottom.Temperature}
		}
		top := reg.Boundary[len(reg.Boundary)/2-1]
		r.EL = &skewt.PhysicalPoint{Pressure: top.Pressure, Temperature: top.Temperature}
	}
}
