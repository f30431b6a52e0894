// Package cache provides pluggable byte caches and key derivation for
// computed diagram geometry. Keys are content-addressed: a sounding's
// hash plus the options that shaped the computation.
package cache

import (
	"context"
	"time"
)

// Default TTLs per entry class. Sounding-derived geometry is immutable
// for a given key, so the TTLs only bound storage growth.
const (
	// DiagramTTL bounds how long assembled diagram documents live.
	DiagramTTL = 7 * 24 * time.Hour

	// SoundingTTL bounds how long imported soundings live.
	SoundingTTL = 30 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with expiration.
type Cache interface {
	// Get retrieves a value. The second return reports a hit.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A non-positive ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value; deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any backing resources.
	Close() error
}

// DiagramKeyOpts captures every option that changes the computed
// geometry or the serialized document. Two runs with equal sounding
// hashes and equal opts produce identical documents, so they share a
// cache slot.
type DiagramKeyOpts struct {
	RotationDegrees    float64   `json:"rotation_degrees"`
	PTop               float64   `json:"p_top"`
	PBottom            float64   `json:"p_bottom"`
	Height             float64   `json:"height"`
	Samples            int       `json:"samples"`
	DryAdiabatThetas   []float64 `json:"dry_adiabat_thetas"`
	MoistAdiabatThetas []float64 `json:"moist_adiabat_thetas"`
	MixingRatios       []float64 `json:"mixing_ratios"`
	BarbStride         int       `json:"barb_stride"`
	BarbMinPressure    float64   `json:"barb_min_pressure"`
	RingIncrement      float64   `json:"ring_increment"`
	EmbedSounding      bool      `json:"embed_sounding"`
	Compact            bool      `json:"compact"`
}

// Keyer derives cache keys. Implementations must be deterministic.
type Keyer interface {
	// SoundingKey derives a key from raw sounding bytes.
	SoundingKey(data []byte) string

	// DiagramKey derives a key from a sounding hash and the options that
	// shaped the computation.
	DiagramKey(soundingHash string, opts DiagramKeyOpts) string
}

// DefaultKeyer is the standard content-hash keyer.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// SoundingKey hashes the raw sounding bytes.
func (k *DefaultKeyer) SoundingKey(data []byte) string {
	return "sounding:" + Hash(data)
}

// DiagramKey hashes the sounding hash together with the options.
func (k *DefaultKeyer) DiagramKey(soundingHash string, opts DiagramKeyOpts) string {
	return hashKey("diagram", soundingHash, opts)
}
