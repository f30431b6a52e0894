// Package diagram assembles computed geometry into a single renderer-ready
// bundle. Everything here is already in screen space; a rendering
// collaborator only has to draw polylines, polygons, and glyphs.
package diagram

import (
	"github.com/aerogramlab/aerogram/pkg/convective"
	"github.com/aerogramlab/aerogram/pkg/parcel"
	"github.com/aerogramlab/aerogram/pkg/skewt"
	"github.com/aerogramlab/aerogram/pkg/sounding"
	"github.com/aerogramlab/aerogram/pkg/wind"
)

// Polyline is a tagged screen-space curve. Kind repeats the isopleth
// family name ("dry_adiabat", "moist_adiabat", "mixing_ratio") or
// one of "environment", "dewpoint", "parcel".
type Polyline struct {
	Kind   string              `json:"kind" bson:"kind"`
	Value  float64             `json:"value,omitempty" bson:"value,omitempty"`
	Points []skewt.ScreenPoint `json:"points" bson:"points"`
}

// Region is a closed screen-space polygon carrying its energy sign for
// CAPE/CIN shading.
type Region struct {
	Sign     string              `json:"sign" bson:"sign"`
	Energy   float64             `json:"energy" bson:"energy"` // J/kg
	Boundary []skewt.ScreenPoint `json:"boundary" bson:"boundary"`
}

// Marker is a labeled point of interest (LCL, LFC, EL).
type Marker struct {
	Label    string            `json:"label" bson:"label"`
	Pressure float64           `json:"pressure" bson:"pressure"`
	Point    skewt.ScreenPoint `json:"point" bson:"point"`
}

// Diagram is the full geometric output for one sounding: the skew-T
// panel plus its hodograph companion.
type Diagram struct {
	Station string       `json:"station" bson:"station"`
	Config  skewt.Config `json:"config" bson:"config"`

	Isopleths   []Polyline `json:"isopleths" bson:"isopleths"`
	Environment Polyline   `json:"environment" bson:"environment"`
	Dewpoint    Polyline   `json:"dewpoint" bson:"dewpoint"`
	Parcel      Polyline   `json:"parcel" bson:"parcel"`
	Regions     []Region   `json:"regions,omitempty" bson:"regions,omitempty"`
	Markers     []Marker   `json:"markers" bson:"markers"`

	CAPE float64 `json:"cape" bson:"cape"` // J/kg
	CIN  float64 `json:"cin" bson:"cin"`   // J/kg

	Barbs     []wind.Barb           `json:"barbs,omitempty" bson:"barbs,omitempty"`
	Hodograph []wind.HodographPoint `json:"hodograph,omitempty" bson:"hodograph,omitempty"`
	Rings     []wind.Ring           `json:"rings,omitempty" bson:"rings,omitempty"`
}

// Assemble projects every physical-space input through the transform and
// packs the result. The convective result, barbs, hodograph points, and
// rings may be zero values; the corresponding sections stay empty.
func Assemble(
	snd *sounding.Profile,
	tr *skewt.Transform,
	isopleths []skewt.Isopleth,
	par *parcel.Profile,
	conv convective.Result,
	barbs []wind.Barb,
	hodo []wind.HodographPoint,
	rings []wind.Ring,
) (*Diagram, error) {
	d := &Diagram{
		Station:   snd.Station,
		Config:    tr.Config(),
		CAPE:      conv.CAPE,
		CIN:       conv.CIN,
		Barbs:     barbs,
		Hodograph: hodo,
		Rings:     rings,
	}

	for _, iso := range isopleths {
		pts, err := tr.ProjectPolyline(iso.Points)
		if err != nil {
			return nil, err
		}
		d.Isopleths = append(d.Isopleths, Polyline{
			Kind:   iso.Kind.String(),
			Value:  iso.Value,
			Points: pts,
		})
	}

	env, dew, err := projectEnvironment(snd, tr)
	if err != nil {
		return nil, err
	}
	d.Environment = env
	d.Dewpoint = dew

	parPts, err := tr.ProjectPolyline(par.Samples)
	if err != nil {
		return nil, err
	}
	d.Parcel = Polyline{Kind: "parcel", Points: parPts}

	for _, reg := range conv.Regions {
		boundary, err := tr.ProjectPolyline(reg.Boundary)
		if err != nil {
			return nil, err
		}
		d.Regions = append(d.Regions, Region{
			Sign:     reg.Sign.String(),
			Energy:   reg.Energy,
			Boundary: boundary,
		})
	}

	if err := d.addMarker(tr, "lcl", par.LCL.Pressure, par.LCL.Temperature); err != nil {
		return nil, err
	}
	if conv.LFC != nil {
		if err := d.addMarker(tr, "lfc", conv.LFC.Pressure, conv.LFC.Temperature); err != nil {
			return nil, err
		}
	}
	if conv.EL != nil {
		if err := d.addMarker(tr, "el", conv.EL.Pressure, conv.EL.Temperature); err != nil {
			return nil, err
		}
	}

	return d, nil
}

func (d *Diagram) addMarker(tr *skewt.Transform, label string, pressure, temperature float64) error {
	pt, err := tr.ToScreen(pressure, temperature)
	if err != nil {
		return err
	}
	d.Markers = append(d.Markers, Marker{Label: label, Pressure: pressure, Point: pt})
	return nil
}

func projectEnvironment(snd *sounding.Profile, tr *skewt.Transform) (env, dew Polyline, err error) {
	envPhys := make([]skewt.PhysicalPoint, 0, len(snd.Levels))
	dewPhys := make([]skewt.PhysicalPoint, 0, len(snd.Levels))
	for _, lv := range snd.Levels {
		envPhys = append(envPhys, skewt.PhysicalPoint{Pressure: lv.Pressure, Temperature: lv.Temperature})
		dewPhys = append(dewPhys, skewt.PhysicalPoint{Pressure: lv.Pressure, Temperature: lv.Dewpoint})
	}

	envPts, err := tr.ProjectPolyline(envPhys)
	if err != nil {
		return Polyline{}, Polyline{}, err
	}
	dewPts, err := tr.ProjectPolyline(dewPhys)
	if err != nil {
		return Polyline{}, Polyline{}, err
	}
	return Polyline{Kind: "environment", Points: envPts},
		Polyline{Kind: "dewpoint", Points: dewPts}, nil
}
