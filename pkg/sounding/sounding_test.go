package sounding

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/aerogramlab/aerogram/pkg/errors"
)

var nan = math.NaN()

func validLevels() []Level {
	return []Level{
		{Pressure: 1000, Height: 110, Temperature: 25, Dewpoint: 20, U: 2, V: 3},
		{Pressure: 850, Height: 1500, Temperature: 15, Dewpoint: 10, U: 5, V: 8},
		{Pressure: 700, Height: 3100, Temperature: 5, Dewpoint: -5, U: 10, V: 12},
		{Pressure: 500, Height: 5800, Temperature: -12, Dewpoint: -25, U: 18, V: 15},
		{Pressure: 300, Height: 9500, Temperature: -40, Dewpoint: -55, U: 30, V: 10},
	}
}

func TestNewValid(t *testing.T) {
	p, err := New("OUN", time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC), validLevels(), FailOnMissing)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if p.Len() != 5 {
		t.Errorf("Len() = %d, want 5", p.Len())
	}
	if p.Surface().Pressure != 1000 {
		t.Errorf("Surface().Pressure = %v, want 1000", p.Surface().Pressure)
	}
	if p.Top().Pressure != 300 {
		t.Errorf("Top().Pressure = %v, want 300", p.Top().Pressure)
	}
	if p.Station != "OUN" {
		t.Errorf("Station = %q, want OUN", p.Station)
	}
}

func TestNewSortsByPressure(t *testing.T) {
	levels := validLevels()
	levels[0], levels[3] = levels[3], levels[0]

	p, err := New("OUN", time.Time{}, levels, SkipMissing)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	for i := 1; i < p.Len(); i++ {
		if p.Levels[i].Pressure >= p.Levels[i-1].Pressure {
			t.Fatalf("levels not sorted by descending pressure: %v >= %v", p.Levels[i].Pressure, p.Levels[i-1].Pressure)
		}
	}
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name   string
		levels []Level
		policy MissingPolicy
		code   errors.Code
	}{
		{
			name:   "empty",
			levels: nil,
			policy: SkipMissing,
			code:   errors.ErrCodeEmptyProfile,
		},
		{
			name: "non-positive pressure",
			levels: []Level{
				{Pressure: 1000, Temperature: 20, Dewpoint: 15},
				{Pressure: -5, Temperature: 10, Dewpoint: 5},
			},
			policy: SkipMissing,
			code:   errors.ErrCodeInvalidPressure,
		},
		{
			name: "dewpoint above temperature",
			levels: []Level{
				{Pressure: 1000, Temperature: 20, Dewpoint: 21},
				{Pressure: 850, Temperature: 10, Dewpoint: 5},
			},
			policy: SkipMissing,
			code:   errors.ErrCodeInvalidDewpoint,
		},
		{
			name: "duplicate pressure",
			levels: []Level{
				{Pressure: 1000, Temperature: 20, Dewpoint: 15},
				{Pressure: 1000, Temperature: 19, Dewpoint: 14},
			},
			policy: SkipMissing,
			code:   errors.ErrCodeNonMonotonic,
		},
		{
			name: "missing sample with fail policy",
			levels: []Level{
				{Pressure: 1000, Temperature: 20, Dewpoint: 15},
				{Pressure: 850, Temperature: nan, Dewpoint: 5},
				{Pressure: 700, Temperature: 0, Dewpoint: -10},
			},
			policy: FailOnMissing,
			code:   errors.ErrCodeMissingData,
		},
		{
			name: "all levels missing with skip policy",
			levels: []Level{
				{Pressure: 1000, Temperature: nan, Dewpoint: nan},
				{Pressure: 850, Temperature: nan, Dewpoint: 5},
			},
			policy: SkipMissing,
			code:   errors.ErrCodeEmptyProfile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New("TST", time.Time{}, tt.levels, tt.policy)
			if err == nil {
				t.Fatal("New() expected error, got nil")
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("error code = %q, want %q (err: %v)", errors.GetCode(err), tt.code, err)
			}
		})
	}
}

func TestSkipMissingDropsLevels(t *testing.T) {
	levels := validLevels()
	levels[2].Temperature = nan

	p, err := New("TST", time.Time{}, levels, SkipMissing)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if p.Len() != 4 {
		t.Errorf("Len() = %d, want 4 after dropping the NaN level", p.Len())
	}
	for _, l := range p.Levels {
		if l.Pressure == 700 {
			t.Error("NaN level at 700 hPa should have been dropped")
		}
	}
}

func TestMissingWindIsKept(t *testing.T) {
	levels := validLevels()
	levels[1].U = nan
	levels[1].V = nan

	p, err := New("TST", time.Time{}, levels, FailOnMissing)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if p.Len() != 5 {
		t.Errorf("Len() = %d, want 5 (wind-only gaps are not thermodynamic gaps)", p.Len())
	}
	if p.Levels[1].HasWind() {
		t.Error("level 1 should report missing wind")
	}
}

func TestTemperatureAt(t *testing.T) {
	p, err := New("TST", time.Time{}, validLevels(), SkipMissing)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	tests := []struct {
		name     string
		pressure float64
		want     float64
		tol      float64
	}{
		{
			name:     "exact level",
			pressure: 850,
			want:     15,
			tol:      1e-12,
		},
		{
			name:     "surface clamp",
			pressure: 1050,
			want:     25,
			tol:      1e-12,
		},
		{
			name:     "top clamp",
			pressure: 250,
			want:     -40,
			tol:      1e-12,
		},
		{
			name:     "between levels",
			pressure: 600,
			want:     -2.79, // log-p interpolation between (700, 5) and (500, -12)
			tol:      0.1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.TemperatureAt(tt.pressure)
			if math.Abs(got-tt.want) > tt.tol {
				t.Errorf("TemperatureAt(%v) = %v, want %v ± %v", tt.pressure, got, tt.want, tt.tol)
			}
		})
	}
}

func TestParseMissingPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    MissingPolicy
		wantErr bool
	}{
		{"skip", SkipMissing, false},
		{"", SkipMissing, false},
		{"fail", FailOnMissing, false},
		{"bogus", SkipMissing, true},
	}

	for _, tt := range tests {
		got, err := ParseMissingPolicy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMissingPolicy(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseMissingPolicy(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLevelJSONRoundTrip(t *testing.T) {
	in := Level{
		Pressure:    850,
		Height:      math.NaN(),
		Temperature: 12.5,
		Dewpoint:    6,
		U:           math.NaN(),
		V:           math.NaN(),
	}

	raw, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	if strings.Contains(string(raw), "height") || strings.Contains(string(raw), "u_wind") {
		t.Errorf("missing samples should be omitted, got %s", raw)
	}

	var out Level
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if out.Pressure != 850 || out.Temperature != 12.5 || out.Dewpoint != 6 {
		t.Errorf("round trip = %+v", out)
	}
	if !math.IsNaN(out.Height) || out.HasWind() {
		t.Error("omitted fields should read back as missing")
	}
}

func TestLevelJSONWireNames(t *testing.T) {
	// The wire field names match the CSV columns; a client posting the
	// documented names must get its wind back.
	raw := []byte(`{"pressure": 850, "height": 1500, "temperature": 12.5, "dewpoint": 6, "u_wind": 10, "v_wind": 5}`)

	var lv Level
	if err := json.Unmarshal(raw, &lv); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if !lv.HasWind() || lv.U != 10 || lv.V != 5 {
		t.Errorf("wind not read from documented field names: %+v", lv)
	}

	out, err := json.Marshal(lv)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	for _, key := range []string{`"u_wind"`, `"v_wind"`} {
		if !strings.Contains(string(out), key) {
			t.Errorf("marshaled level missing %s: %s", key, out)
		}
	}
}

func TestProfileJSONWithGaps(t *testing.T) {
	levels := []Level{
		{Pressure: 1000, Height: 110, Temperature: 20, Dewpoint: 12, U: 2, V: 2},
		{Pressure: 850, Height: 1500, Temperature: 12, Dewpoint: 6, U: math.NaN(), V: math.NaN()},
	}
	snd, err := New("KOUN", time.Time{}, levels, SkipMissing)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	raw, err := json.Marshal(snd)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}

	var back Profile
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if len(back.Levels) != 2 {
		t.Fatalf("round trip kept %d levels, want 2", len(back.Levels))
	}
	if back.Levels[1].HasWind() {
		t.Error("wind gap lost in round trip")
	}
}
