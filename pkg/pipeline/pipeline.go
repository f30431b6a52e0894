// Package pipeline runs the full sounding-to-geometry computation.
//
// The CLI and the HTTP API both drive the same Runner, so options,
// defaults, validation, and caching behave identically at every entry
// point.
//
// # Stages
//
//  1. Import: parse CSV bytes into a validated sounding
//  2. Compute: isopleths, lifted parcel, convective energy, wind
//  3. Assemble: project everything into a renderer-ready diagram
//  4. Export: serialize the diagram document as JSON
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{Station: "KOUN"}
//	result, err := runner.ExecuteCSV(ctx, csvBytes, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	doc := result.Document
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/aerogramlab/aerogram/pkg/cache"
	"github.com/aerogramlab/aerogram/pkg/diagram"
	"github.com/aerogramlab/aerogram/pkg/skewt"
	"github.com/aerogramlab/aerogram/pkg/sounding"
	"github.com/aerogramlab/aerogram/pkg/wind"
)

// Default diagram parameters, shared by CLI and API.
const (
	// DefaultRotation is the conventional 45° isotherm tilt.
	DefaultRotation = 45.0

	// DefaultPTop / DefaultPBottom bound the standard chart.
	DefaultPTop    = 100.0
	DefaultPBottom = 1050.0

	// DefaultHeight is the vertical screen extent of the chart.
	DefaultHeight = 100.0

	// DefaultSamples is the per-curve pressure sample count. 80 keeps
	// moist adiabats smooth at screen resolution without oversampling.
	DefaultSamples = 80

	// DefaultBarbStride places a barb at every other wind-bearing level.
	DefaultBarbStride = 2

	// DefaultRingIncrement spaces hodograph rings in wind-speed units.
	DefaultRingIncrement = 10.0
)

// Default isopleth families for the standard chart. Values in Kelvin
// for the adiabats, kg/kg for the mixing ratios.
var (
	DefaultDryAdiabatThetas   = rangeValues(250, 440, 10)
	DefaultMoistAdiabatThetas = rangeValues(280, 400, 10)
	DefaultMixingRatios       = []float64{0.0004, 0.001, 0.002, 0.004, 0.007, 0.010, 0.016, 0.024, 0.032}
)

func rangeValues(from, to, step float64) []float64 {
	var out []float64
	for v := from; v <= to; v += step {
		out = append(out, v)
	}
	return out
}

// Options contains all configuration for a pipeline run. The struct
// serializes for API requests and TOML configuration files.
type Options struct {
	// Sounding options
	Station       string `json:"station,omitempty" toml:"station"`
	MissingPolicy string `json:"missing_policy,omitempty" toml:"missing_policy"` // "skip" or "fail"

	// Transform options
	RotationDegrees float64 `json:"rotation_degrees,omitempty" toml:"rotation_degrees"`
	PTop            float64 `json:"p_top,omitempty" toml:"p_top"`
	PBottom         float64 `json:"p_bottom,omitempty" toml:"p_bottom"`
	Height          float64 `json:"height,omitempty" toml:"height"`

	// Isopleth options
	Samples            int       `json:"samples,omitempty" toml:"samples"`
	DryAdiabatThetas   []float64 `json:"dry_adiabat_thetas,omitempty" toml:"dry_adiabat_thetas"`
	MoistAdiabatThetas []float64 `json:"moist_adiabat_thetas,omitempty" toml:"moist_adiabat_thetas"`
	MixingRatios       []float64 `json:"mixing_ratios,omitempty" toml:"mixing_ratios"`

	// Wind options
	BarbStride      int     `json:"barb_stride,omitempty" toml:"barb_stride"`
	BarbMinPressure float64 `json:"barb_min_pressure,omitempty" toml:"barb_min_pressure"`
	RingIncrement   float64 `json:"ring_increment,omitempty" toml:"ring_increment"`

	// Export options
	EmbedSounding bool `json:"embed_sounding,omitempty" toml:"embed_sounding"`
	Compact       bool `json:"compact,omitempty" toml:"compact"`

	// Refresh bypasses the cache read (the result is still stored).
	Refresh bool `json:"refresh,omitempty" toml:"refresh"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-" toml:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-" toml:"-"`
}

// ValidateAndSetDefaults checks fields and applies defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	if o.RotationDegrees == 0 {
		o.RotationDegrees = DefaultRotation
	}
	if o.PTop == 0 {
		o.PTop = DefaultPTop
	}
	if o.PBottom == 0 {
		o.PBottom = DefaultPBottom
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Samples == 0 {
		o.Samples = DefaultSamples
	}
	if o.DryAdiabatThetas == nil {
		o.DryAdiabatThetas = DefaultDryAdiabatThetas
	}
	if o.MoistAdiabatThetas == nil {
		o.MoistAdiabatThetas = DefaultMoistAdiabatThetas
	}
	if o.MixingRatios == nil {
		o.MixingRatios = DefaultMixingRatios
	}
	if o.BarbStride == 0 {
		o.BarbStride = DefaultBarbStride
	}
	if o.BarbMinPressure == 0 {
		o.BarbMinPressure = o.PTop
	}
	if o.RingIncrement == 0 {
		o.RingIncrement = DefaultRingIncrement
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	if _, err := sounding.ParseMissingPolicy(o.MissingPolicy); err != nil {
		return err
	}
	if err := o.TransformConfig().Validate(); err != nil {
		return err
	}
	if err := o.GeneratorConfig().Validate(); err != nil {
		return err
	}
	if err := o.BarbConfig().Validate(); err != nil {
		return err
	}

	o.validated = true
	return nil
}

// Policy returns the parsed missing-sample policy.
func (o *Options) Policy() sounding.MissingPolicy {
	p, _ := sounding.ParseMissingPolicy(o.MissingPolicy)
	return p
}

// TransformConfig builds the coordinate transform configuration.
func (o *Options) TransformConfig() skewt.Config {
	return skewt.Config{
		RotationDegrees: o.RotationDegrees,
		PTop:            o.PTop,
		PBottom:         o.PBottom,
		Height:          o.Height,
	}
}

// GeneratorConfig builds the isopleth generation configuration.
func (o *Options) GeneratorConfig() skewt.GeneratorConfig {
	return skewt.GeneratorConfig{
		PTop:               o.PTop,
		PBottom:            o.PBottom,
		Samples:            o.Samples,
		DryAdiabatThetas:   o.DryAdiabatThetas,
		MoistAdiabatThetas: o.MoistAdiabatThetas,
		MixingRatios:       o.MixingRatios,
	}
}

// BarbConfig builds the wind barb placement configuration. Barbs sit
// just inside the right edge of the frame.
func (o *Options) BarbConfig() wind.BarbConfig {
	return wind.BarbConfig{
		Stride:      o.BarbStride,
		MinPressure: o.BarbMinPressure,
		XOffset:     o.Height * 0.95,
	}
}

// DiagramKeyOpts returns the cache key options for this configuration.
// Everything that changes the computed geometry or the serialized
// document must appear here.
func (o *Options) DiagramKeyOpts() cache.DiagramKeyOpts {
	return cache.DiagramKeyOpts{
		RotationDegrees:    o.RotationDegrees,
		PTop:               o.PTop,
		PBottom:            o.PBottom,
		Height:             o.Height,
		Samples:            o.Samples,
		DryAdiabatThetas:   o.DryAdiabatThetas,
		MoistAdiabatThetas: o.MoistAdiabatThetas,
		MixingRatios:       o.MixingRatios,
		BarbStride:         o.BarbStride,
		BarbMinPressure:    o.BarbMinPressure,
		RingIncrement:      o.RingIncrement,
		EmbedSounding:      o.EmbedSounding,
		Compact:            o.Compact,
	}
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// ID identifies this document; cached runs keep their original ID.
	ID string

	// Sounding is the validated input profile.
	Sounding *sounding.Profile

	// SoundingHash is the content hash of the profile.
	SoundingHash string

	// Diagram is the assembled geometry.
	Diagram *diagram.Diagram

	// Document is the serialized JSON diagram document.
	Document []byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks whether the run was served from cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Levels      int
	Isopleths   int
	ComputeTime time.Duration
	TotalTime   time.Duration
}

// CacheInfo tracks cache hits.
type CacheInfo struct {
	DiagramHit bool // Whether the document came from cache
}
