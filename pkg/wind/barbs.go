// Package wind derives renderer-ready wind geometry from a sounding:
// barb anchors along the diagram margin and the hodograph projection.
package wind

import (
	"math"

	"github.com/aerogramlab/aerogram/pkg/errors"
	"github.com/aerogramlab/aerogram/pkg/skewt"
	"github.com/aerogramlab/aerogram/pkg/sounding"
)

// BarbConfig controls which levels receive a barb and where the barb
// column sits in screen space.
type BarbConfig struct {
	// Stride subsamples the sounding: every Stride-th level gets a barb.
	Stride int `json:"stride" toml:"stride"`
	// MinPressure drops levels above this pressure (in hPa). Zero keeps
	// every level.
	MinPressure float64 `json:"min_pressure" toml:"min_pressure"`
	// XOffset is the horizontal screen coordinate of the barb column,
	// measured from the left edge of the diagram.
	XOffset float64 `json:"x_offset" toml:"x_offset"`
}

// DefaultBarbConfig places a barb at every other level down to the top
// of the diagram, in a column just inside the right margin.
func DefaultBarbConfig() BarbConfig {
	return BarbConfig{Stride: 2, MinPressure: 0, XOffset: 95}
}

func (c BarbConfig) Validate() error {
	if c.Stride < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "barb stride must be at least 1")
	}
	if c.MinPressure < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "barb minimum pressure cannot be negative")
	}
	return nil
}

// Barb is one placed wind glyph: a screen anchor plus the speed and
// meteorological direction the renderer needs to draw it.
type Barb struct {
	Anchor   skewt.ScreenPoint `json:"anchor" bson:"anchor"`
	Pressure float64           `json:"pressure" bson:"pressure"`
	// Speed is the wind magnitude in the units of the sounding's
	// components.
	Speed float64 `json:"speed" bson:"speed"`
	// Direction is the bearing the wind blows from, degrees clockwise
	// from north in [0, 360).
	Direction float64 `json:"direction" bson:"direction"`
}

// PlaceBarbs subsamples the sounding per cfg and anchors each selected
// level at the transform's height for its pressure. Levels with missing
// wind components are passed over without consuming a stride slot, so a
// fully wind-bearing N-level sounding yields ceil(N/Stride) barbs.
func PlaceBarbs(snd *sounding.Profile, tr *skewt.Transform, cfg BarbConfig) ([]Barb, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var barbs []Barb
	kept := 0
	for _, lv := range snd.Levels {
		if !lv.HasWind() {
			continue
		}
		if cfg.MinPressure > 0 && lv.Pressure < cfg.MinPressure {
			continue
		}
		if kept%cfg.Stride != 0 {
			kept++
			continue
		}
		kept++

		y, err := tr.YForPressure(lv.Pressure)
		if err != nil {
			return nil, err
		}
		barbs = append(barbs, Barb{
			Anchor:    skewt.ScreenPoint{X: cfg.XOffset, Y: y},
			Pressure:  lv.Pressure,
			Speed:     math.Hypot(lv.U, lv.V),
			Direction: meteorologicalDirection(lv.U, lv.V),
		})
	}
	return barbs, nil
}

// meteorologicalDirection converts (u, v) components to the bearing the
// wind blows from: 0 is northerly, 90 easterly, clockwise.
func meteorologicalDirection(u, v float64) float64 {
	if u == 0 && v == 0 {
		return 0
	}
	deg := math.Atan2(-u, -v) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	return deg
}
