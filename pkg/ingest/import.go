// Package ingest reads and writes soundings in the plain CSV exchange
// format used by level archives: one header row, one row per pressure
// level, missing samples marked with "M" or left empty.
package ingest

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/aerogramlab/aerogram/pkg/errors"
	"github.com/aerogramlab/aerogram/pkg/sounding"
)

// Column names recognized in the header row, in canonical order.
const (
	colPressure    = "pressure"
	colHeight      = "height"
	colTemperature = "temperature"
	colDewpoint    = "dewpoint"
	colUWind       = "u_wind"
	colVWind       = "v_wind"
)

// ImportOptions carries the metadata the CSV itself does not record.
type ImportOptions struct {
	Station string
	Time    time.Time
	Policy  sounding.MissingPolicy
}

// ReadCSV parses a sounding. Columns are matched by header name, so
// column order and extra columns are tolerated; pressure, temperature,
// and dewpoint are required, the rest default to missing.
func ReadCSV(r io.Reader, opts ImportOptions) (*sounding.Profile, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "reading CSV header")
	}
	cols, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	var levels []sounding.Level
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "reading CSV line %d", line)
		}

		lv := sounding.Level{
			Height: math.NaN(),
			U:      math.NaN(),
			V:      math.NaN(),
		}
		for name, idx := range cols {
			v, err := parseSample(record[idx])
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "line %d, column %s", line, name)
			}
			switch name {
			case colPressure:
				lv.Pressure = v
			case colHeight:
				lv.Height = v
			case colTemperature:
				lv.Temperature = v
			case colDewpoint:
				lv.Dewpoint = v
			case colUWind:
				lv.U = v
			case colVWind:
				lv.V = v
			}
		}
		levels = append(levels, lv)
	}

	return sounding.New(opts.Station, opts.Time, levels, opts.Policy)
}

// mapColumns resolves header names to field indexes.
func mapColumns(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		switch name {
		case colPressure, colHeight, colTemperature, colDewpoint, colUWind, colVWind:
			if _, dup := cols[name]; dup {
				return nil, errors.New(errors.ErrCodeInvalidFormat, "duplicate column %q", name)
			}
			cols[name] = i
		}
	}
	for _, required := range []string{colPressure, colTemperature, colDewpoint} {
		if _, ok := cols[required]; !ok {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "missing required column %q", required)
		}
	}
	return cols, nil
}

// parseSample converts one CSV field. Empty fields and the archive
// marker "M" mean missing; so does a literal NaN.
func parseSample(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "m") || strings.EqualFold(s, "nan") {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}
