package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/aerogramlab/aerogram/pkg/cache"
	"github.com/aerogramlab/aerogram/pkg/convective"
	"github.com/aerogramlab/aerogram/pkg/diagram"
	"github.com/aerogramlab/aerogram/pkg/errors"
	"github.com/aerogramlab/aerogram/pkg/ingest"
	"github.com/aerogramlab/aerogram/pkg/parcel"
	"github.com/aerogramlab/aerogram/pkg/skewt"
	"github.com/aerogramlab/aerogram/pkg/sounding"
	"github.com/aerogramlab/aerogram/pkg/wind"
)

// Runner executes the pipeline with caching. It is stateless apart from
// the cache and logger; multiple goroutines can share one Runner with
// different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil keyer falls back to the default
// keyer, a nil cache disables caching, and a nil logger uses the
// package default.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// ExecuteCSV imports raw CSV bytes and runs the pipeline on the result.
func (r *Runner) ExecuteCSV(ctx context.Context, raw []byte, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	snd, err := ingest.ReadCSV(bytes.NewReader(raw), ingest.ImportOptions{
		Station: opts.Station,
		Time:    time.Now().UTC(),
		Policy:  opts.Policy(),
	})
	if err != nil {
		return nil, err
	}
	return r.Execute(ctx, snd, opts)
}

// Execute runs the compute → assemble → export pipeline with caching.
// The cache key is the sounding's content hash plus every option that
// shapes the geometry, so identical requests are served without
// recomputation.
func (r *Runner) Execute(ctx context.Context, snd *sounding.Profile, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	start := time.Now()

	result := &Result{Sounding: snd}
	result.Stats.Levels = snd.Len()

	sndData, err := json.Marshal(snd)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "serializing sounding for cache key")
	}
	result.SoundingHash = cache.Hash(sndData)
	key := r.Keyer.DiagramKey(result.SoundingHash, opts.DiagramKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if res, ok := r.resultFromDocument(snd, data); ok {
				res.Stats.Levels = snd.Len()
				res.SoundingHash = result.SoundingHash
				res.Stats.TotalTime = time.Since(start)
				opts.Logger.Info("served diagram from cache",
					"station", snd.Station,
					"levels", snd.Len())
				return res, nil
			}
			// Corrupt entry; fall through and recompute.
			_ = r.Cache.Delete(ctx, key)
		}
	}

	computeStart := time.Now()
	d, err := r.compute(ctx, snd, opts)
	if err != nil {
		return nil, err
	}
	result.Diagram = d
	result.Stats.Isopleths = len(d.Isopleths)
	result.Stats.ComputeTime = time.Since(computeStart)

	result.ID = uuid.NewString()
	jsonOpts := []diagram.JSONOption{diagram.WithJSONID(result.ID)}
	if opts.EmbedSounding {
		jsonOpts = append(jsonOpts, diagram.WithJSONSounding(snd))
	}
	if opts.Compact {
		jsonOpts = append(jsonOpts, diagram.WithJSONCompact())
	}
	doc, err := diagram.RenderJSON(d, jsonOpts...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "serializing diagram document")
	}
	result.Document = doc

	_ = r.Cache.Set(ctx, key, doc, cache.DiagramTTL)

	result.Stats.TotalTime = time.Since(start)
	opts.Logger.Info("computed diagram",
		"station", snd.Station,
		"levels", snd.Len(),
		"isopleths", result.Stats.Isopleths,
		"cape", d.CAPE,
		"cin", d.CIN,
		"duration", result.Stats.TotalTime)

	return result, nil
}

// compute runs the geometry stages in order: isopleths, parcel,
// convective energy, wind, assembly.
func (r *Runner) compute(ctx context.Context, snd *sounding.Profile, opts Options) (*diagram.Diagram, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tr, err := skewt.NewTransform(opts.TransformConfig())
	if err != nil {
		return nil, err
	}

	isopleths, err := skewt.Generate(opts.GeneratorConfig())
	if err != nil {
		return nil, err
	}

	par, err := parcel.ComputeProfile(snd)
	if err != nil {
		return nil, err
	}

	conv, err := convective.Compute(snd, par)
	if err != nil {
		return nil, err
	}

	barbs, err := wind.PlaceBarbs(snd, tr, opts.BarbConfig())
	if err != nil {
		return nil, err
	}
	hodo := wind.Hodograph(snd)
	var rings []wind.Ring
	if len(hodo) > 0 {
		rings, err = wind.RadialGrid(hodo, opts.RingIncrement)
		if err != nil {
			return nil, err
		}
	}

	return diagram.Assemble(snd, tr, isopleths, par, conv, barbs, hodo, rings)
}

// resultFromDocument rebuilds a Result from a cached document. A
// document that no longer unmarshals is treated as a miss.
func (r *Runner) resultFromDocument(snd *sounding.Profile, data []byte) (*Result, bool) {
	var doc struct {
		ID      string           `json:"id"`
		Diagram *diagram.Diagram `json:"diagram"`
	}
	if err := json.Unmarshal(data, &doc); err != nil || doc.Diagram == nil {
		return nil, false
	}
	res := &Result{
		ID:        doc.ID,
		Sounding:  snd,
		Diagram:   doc.Diagram,
		Document:  data,
		CacheInfo: CacheInfo{DiagramHit: true},
	}
	res.Stats.Isopleths = len(doc.Diagram.Isopleths)
	return res, true
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
