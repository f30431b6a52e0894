package sounding

import (
	"encoding/json"
	"math"
)

// levelJSON is the wire form of a Level. Missing samples travel as
// omitted fields; encoding/json cannot represent NaN. The keys must
// stay in lockstep with Level's json tags: the custom codec is what
// actually hits the wire, the tags document the names.
type levelJSON struct {
	Pressure    *float64 `json:"pressure,omitempty"`
	Height      *float64 `json:"height,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	Dewpoint    *float64 `json:"dewpoint,omitempty"`
	U           *float64 `json:"u_wind,omitempty"`
	V           *float64 `json:"v_wind,omitempty"`
}

// MarshalJSON omits NaN samples instead of failing on them.
func (l Level) MarshalJSON() ([]byte, error) {
	return json.Marshal(levelJSON{
		Pressure:    optional(l.Pressure),
		Height:      optional(l.Height),
		Temperature: optional(l.Temperature),
		Dewpoint:    optional(l.Dewpoint),
		U:           optional(l.U),
		V:           optional(l.V),
	})
}

// UnmarshalJSON reads omitted fields back as NaN, so the missing-sample
// policy in New applies to API input the same way it does to CSV.
func (l *Level) UnmarshalJSON(data []byte) error {
	var w levelJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	l.Pressure = value(w.Pressure)
	l.Height = value(w.Height)
	l.Temperature = value(w.Temperature)
	l.Dewpoint = value(w.Dewpoint)
	l.U = value(w.U)
	l.V = value(w.V)
	return nil
}

func optional(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

func value(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}
