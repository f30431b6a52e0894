package skewt

import (
	"math"

	"github.com/aerogramlab/aerogram/pkg/errors"
)

// ScreenPoint is a position in skewed log-pressure screen space.
// X carries skewed-temperature units (°C at the bottom edge), Y runs from 0
// at PBottom to Config.Height at PTop, increasing upward.
type ScreenPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PhysicalPoint is a (pressure, temperature) sample in physical space.
type PhysicalPoint struct {
	Pressure    float64 `json:"pressure"`    // hPa
	Temperature float64 `json:"temperature"` // °C
}

// Config holds the transform parameters of one diagram. There are no hidden
// defaults; use [DefaultConfig] for the conventional 45° chart and override
// fields explicitly.
type Config struct {
	// RotationDegrees controls how far isotherms tilt from vertical.
	// Classical skew-T charts use 45; some use 30. Must be in (0, 90).
	RotationDegrees float64 `json:"rotation_degrees" toml:"rotation_degrees"`

	// PTop and PBottom bound the displayed pressure range in hPa,
	// 0 < PTop < PBottom.
	PTop    float64 `json:"p_top" toml:"p_top"`
	PBottom float64 `json:"p_bottom" toml:"p_bottom"`

	// Height is the vertical screen extent the pressure range maps onto.
	Height float64 `json:"height" toml:"height"`
}

// DefaultConfig returns the conventional 45° chart over 1050–100 hPa.
func DefaultConfig() Config {
	return Config{
		RotationDegrees: 45,
		PTop:            100,
		PBottom:         1050,
		Height:          100,
	}
}

// Validate checks the configuration against its documented domain.
func (c Config) Validate() error {
	if c.RotationDegrees <= 0 || c.RotationDegrees >= 90 {
		return errors.New(errors.ErrCodeInvalidConfig, "rotation must be in (0, 90) degrees, got %.1f", c.RotationDegrees)
	}
	if c.PTop <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "p_top must be positive, got %.1f", c.PTop)
	}
	if c.PBottom <= c.PTop {
		return errors.New(errors.ErrCodeInvalidConfig, "p_bottom %.1f must exceed p_top %.1f", c.PBottom, c.PTop)
	}
	if c.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "height must be positive, got %.1f", c.Height)
	}
	return nil
}

// Transform maps between physical and skewed log-pressure screen space.
// A Transform is immutable and safe for concurrent use.
type Transform struct {
	cfg   Config
	skew  float64 // tan(rotation)
	yBot  float64 // -ln(PBottom)
	scale float64 // Height / (ln(PBottom) - ln(PTop))
}

// NewTransform builds a Transform from a validated configuration.
func NewTransform(cfg Config) (*Transform, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Transform{
		cfg:   cfg,
		skew:  math.Tan(cfg.RotationDegrees * math.Pi / 180),
		yBot:  -math.Log(cfg.PBottom),
		scale: cfg.Height / (math.Log(cfg.PBottom) - math.Log(cfg.PTop)),
	}, nil
}

// Config returns the configuration the transform was built from.
func (t *Transform) Config() Config {
	return t.cfg
}

// ToScreen maps (pressure hPa, temperature °C) to screen space.
// Pressure must be positive; values outside [PTop, PBottom] project beyond
// the frame rather than erroring, so curves may be clipped by the renderer.
func (t *Transform) ToScreen(pressure, temperature float64) (ScreenPoint, error) {
	if pressure <= 0 {
		return ScreenPoint{}, errors.New(errors.ErrCodeInvalidPressure, "pressure must be positive, got %.2f hPa", pressure)
	}
	y := (-math.Log(pressure) - t.yBot) * t.scale
	return ScreenPoint{
		X: temperature + t.skew*y,
		Y: y,
	}, nil
}

// ToPhysical is the exact analytic inverse of ToScreen.
func (t *Transform) ToPhysical(pt ScreenPoint) (pressure, temperature float64) {
	temperature = pt.X - t.skew*pt.Y
	pressure = math.Exp(-(pt.Y/t.scale + t.yBot))
	return pressure, temperature
}

// YForPressure returns the screen height of an isobar. Barb placement uses
// this to anchor glyphs on the margin at the level's pressure.
func (t *Transform) YForPressure(pressure float64) (float64, error) {
	if pressure <= 0 {
		return 0, errors.New(errors.ErrCodeInvalidPressure, "pressure must be positive, got %.2f hPa", pressure)
	}
	return (-math.Log(pressure) - t.yBot) * t.scale, nil
}

// ProjectPolyline maps a physical-space polyline into screen space.
func (t *Transform) ProjectPolyline(points []PhysicalPoint) ([]ScreenPoint, error) {
	out := make([]ScreenPoint, len(points))
	for i, p := range points {
		sp, err := t.ToScreen(p.Pressure, p.Temperature)
		if err != nil {
			return nil, err
		}
		out[i] = sp
	}
	return out, nil
}
