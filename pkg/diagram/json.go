package diagram

import (
	"encoding/json"
	"time"

	"github.com/aerogramlab/aerogram/pkg/sounding"
)

// JSONOption configures JSON export via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	id       string
	sounding *sounding.Profile
	compact  bool
	now      time.Time
}

// WithJSONID records a caller-assigned identifier in the output, so a
// stored document can be fetched again later.
func WithJSONID(id string) JSONOption { return func(r *jsonRenderer) { r.id = id } }

// WithJSONSounding embeds the source sounding levels alongside the
// geometry, enabling round-trip recomputation from the document alone.
func WithJSONSounding(snd *sounding.Profile) JSONOption {
	return func(r *jsonRenderer) { r.sounding = snd }
}

// WithJSONCompact disables indentation for wire transfer.
func WithJSONCompact() JSONOption { return func(r *jsonRenderer) { r.compact = true } }

// WithJSONGeneratedAt stamps the document with an explicit generation
// time instead of the wall clock.
func WithJSONGeneratedAt(t time.Time) JSONOption { return func(r *jsonRenderer) { r.now = t } }

type jsonDocument struct {
	ID          string            `json:"id,omitempty"`
	GeneratedAt time.Time         `json:"generated_at"`
	Sounding    *sounding.Profile `json:"sounding,omitempty"`
	Diagram     *Diagram          `json:"diagram"`
}

// RenderJSON exports the diagram as a JSON document, pretty-printed by
// default. The document is self-describing: every polyline and region
// carries its kind tag, so a renderer needs no out-of-band schema.
//
// RenderJSON does not modify d and is safe to call concurrently.
func RenderJSON(d *Diagram, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{now: time.Now().UTC()}
	for _, opt := range opts {
		opt(&r)
	}

	doc := jsonDocument{
		ID:          r.id,
		GeneratedAt: r.now,
		Sounding:    r.sounding,
		Diagram:     d,
	}
	if r.compact {
		return json.Marshal(doc)
	}
	return json.MarshalIndent(doc, "", "  ")
}
