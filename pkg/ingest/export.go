package ingest

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"

	"github.com/aerogramlab/aerogram/pkg/sounding"
)

// WriteCSV writes a sounding in the same format ReadCSV accepts, with
// missing samples rendered as "M". The round trip preserves level order
// and values.
func WriteCSV(w io.Writer, snd *sounding.Profile) error {
	cw := csv.NewWriter(w)

	header := []string{colPressure, colHeight, colTemperature, colDewpoint, colUWind, colVWind}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, lv := range snd.Levels {
		record := []string{
			formatSample(lv.Pressure),
			formatSample(lv.Height),
			formatSample(lv.Temperature),
			formatSample(lv.Dewpoint),
			formatSample(lv.U),
			formatSample(lv.V),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatSample(v float64) string {
	if math.IsNaN(v) {
		return "M"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
