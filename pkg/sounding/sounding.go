// Package sounding defines the atmospheric sounding profile consumed by the
// diagram engine.
//
// A [Profile] is an ordered sequence of vertical levels, sorted by strictly
// decreasing pressure (i.e. increasing height). Profiles are validated on
// construction and never mutated by the engine; every derived quantity
// (parcel profile, convective energy, barb placement) is a pure function of
// the profile and a diagram configuration.
//
// Missing samples (NaN) in an otherwise valid sounding are handled by an
// explicit [MissingPolicy]: either the whole profile is rejected, or the
// affected levels are dropped. There is no implicit default; callers choose.
package sounding

import (
	"math"
	"slices"
	"time"

	"github.com/aerogramlab/aerogram/pkg/errors"
)

// Level is one vertical sample of a sounding.
type Level struct {
	Pressure    float64 `json:"pressure" bson:"pressure"`       // hPa, > 0
	Height      float64 `json:"height" bson:"height"`           // m above sea level
	Temperature float64 `json:"temperature" bson:"temperature"` // °C
	Dewpoint    float64 `json:"dewpoint" bson:"dewpoint"`       // °C, ≤ Temperature
	U           float64 `json:"u_wind" bson:"u_wind"`           // m/s, eastward
	V           float64 `json:"v_wind" bson:"v_wind"`           // m/s, northward
}

// thermodynamicComplete reports whether the fields needed for parcel and
// isopleth work are present. Wind may be missing independently; barb and
// hodograph code skips levels without wind on its own.
func (l Level) thermodynamicComplete() bool {
	return !math.IsNaN(l.Pressure) && !math.IsNaN(l.Temperature) && !math.IsNaN(l.Dewpoint)
}

// HasWind reports whether both wind components are present.
func (l Level) HasWind() bool {
	return !math.IsNaN(l.U) && !math.IsNaN(l.V)
}

// MissingPolicy selects how NaN samples within a sounding are handled.
type MissingPolicy int

const (
	// SkipMissing drops levels with missing thermodynamic samples and
	// continues with the rest.
	SkipMissing MissingPolicy = iota

	// FailOnMissing rejects the whole profile with a DATA_MISSING_SAMPLE
	// error if any level has a missing thermodynamic sample.
	FailOnMissing
)

// String returns the policy name used in configuration files.
func (p MissingPolicy) String() string {
	switch p {
	case FailOnMissing:
		return "fail"
	default:
		return "skip"
	}
}

// ParseMissingPolicy converts a configuration string ("skip" or "fail") to a
// MissingPolicy.
func ParseMissingPolicy(s string) (MissingPolicy, error) {
	switch s {
	case "skip", "":
		return SkipMissing, nil
	case "fail":
		return FailOnMissing, nil
	default:
		return SkipMissing, errors.New(errors.ErrCodeInvalidConfig, "unknown missing policy %q (must be skip or fail)", s)
	}
}

// Profile is a validated sounding: levels sorted by strictly decreasing
// pressure, with station metadata. The engine only reads profiles; ownership
// stays with the caller.
type Profile struct {
	Station string    `json:"station" bson:"station"`
	Time    time.Time `json:"time" bson:"time"`
	Levels  []Level   `json:"levels" bson:"levels"`
}

// New validates levels and builds a Profile. Levels are sorted by descending
// pressure; the input slice is not modified.
//
// Validation order: the missing policy is applied first, then physical
// checks on the surviving levels: positive pressure, dewpoint not above
// temperature, strictly decreasing pressure (duplicate pressures are a
// monotonicity violation).
func New(station string, t time.Time, levels []Level, policy MissingPolicy) (*Profile, error) {
	if len(levels) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyProfile, "sounding has no levels")
	}

	kept := make([]Level, 0, len(levels))
	for i, l := range levels {
		if !l.thermodynamicComplete() {
			if policy == FailOnMissing {
				return nil, errors.New(errors.ErrCodeMissingData, "level %d has missing samples", i)
			}
			continue
		}
		kept = append(kept, l)
	}
	if len(kept) < 2 {
		return nil, errors.New(errors.ErrCodeEmptyProfile, "sounding has %d usable levels, need at least 2", len(kept))
	}

	slices.SortFunc(kept, func(a, b Level) int {
		switch {
		case a.Pressure > b.Pressure:
			return -1
		case a.Pressure < b.Pressure:
			return 1
		default:
			return 0
		}
	})

	for i, l := range kept {
		if l.Pressure <= 0 {
			return nil, errors.New(errors.ErrCodeInvalidPressure, "level %d: pressure must be positive, got %.2f hPa", i, l.Pressure)
		}
		if l.Dewpoint > l.Temperature {
			return nil, errors.New(errors.ErrCodeInvalidDewpoint, "level %d: dewpoint %.2f °C above temperature %.2f °C", i, l.Dewpoint, l.Temperature)
		}
		if i > 0 && l.Pressure >= kept[i-1].Pressure {
			return nil, errors.New(errors.ErrCodeNonMonotonic, "levels %d and %d share pressure %.2f hPa", i-1, i, l.Pressure)
		}
	}

	return &Profile{Station: station, Time: t, Levels: kept}, nil
}

// Surface returns the lowest level (highest pressure).
func (p *Profile) Surface() Level {
	return p.Levels[0]
}

// Top returns the highest level (lowest pressure).
func (p *Profile) Top() Level {
	return p.Levels[len(p.Levels)-1]
}

// Len returns the number of levels.
func (p *Profile) Len() int {
	return len(p.Levels)
}

// TemperatureAt returns the environment temperature (°C) at pressure pr
// (hPa), linearly interpolated in log-pressure between the bracketing
// levels. Pressures outside the profile range are clamped to the nearest
// end; interpolation in ln p matches how the energy integrals and zero
// crossings are computed.
func (p *Profile) TemperatureAt(pr float64) float64 {
	levels := p.Levels
	if pr >= levels[0].Pressure {
		return levels[0].Temperature
	}
	last := levels[len(levels)-1]
	if pr <= last.Pressure {
		return last.Temperature
	}

	// Levels are sorted by descending pressure; find the bracketing pair.
	i, _ := slices.BinarySearchFunc(levels, pr, func(l Level, target float64) int {
		switch {
		case l.Pressure > target:
			return -1
		case l.Pressure < target:
			return 1
		default:
			return 0
		}
	})
	if i == 0 {
		return levels[0].Temperature
	}
	lo, hi := levels[i-1], levels[i]
	if lo.Pressure == hi.Pressure {
		return lo.Temperature
	}

	frac := (math.Log(pr) - math.Log(lo.Pressure)) / (math.Log(hi.Pressure) - math.Log(lo.Pressure))
	return lo.Temperature + frac*(hi.Temperature-lo.Temperature)
}
