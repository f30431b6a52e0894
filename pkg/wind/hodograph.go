package wind

import (
	"math"
	"sort"

	"github.com/aerogramlab/aerogram/pkg/errors"
	"github.com/aerogramlab/aerogram/pkg/sounding"
)

// HodographPoint is one wind vector in the hodograph's Cartesian plane,
// annotated with its height for color-mapping by the renderer.
type HodographPoint struct {
	U      float64 `json:"u" bson:"u"`
	V      float64 `json:"v" bson:"v"`
	Height float64 `json:"height" bson:"height"`
}

// Hodograph projects the sounding's wind vectors into the hodograph
// plane, ordered by increasing height. Levels without both wind
// components or without a height are skipped.
func Hodograph(snd *sounding.Profile) []HodographPoint {
	var pts []HodographPoint
	for _, lv := range snd.Levels {
		if !lv.HasWind() || math.IsNaN(lv.Height) {
			continue
		}
		pts = append(pts, HodographPoint{U: lv.U, V: lv.V, Height: lv.Height})
	}
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].Height < pts[j].Height })
	return pts
}

// Ring is one circle of the hodograph's radial speed grid, centered on
// the origin.
type Ring struct {
	Speed float64 `json:"speed" bson:"speed"`
}

// RadialGrid produces concentric speed rings at fixed increments,
// enough to enclose every projected point (with at least one ring even
// for a calm profile).
func RadialGrid(points []HodographPoint, increment float64) ([]Ring, error) {
	if increment <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "ring increment must be positive")
	}
	var max float64
	for _, p := range points {
		if s := math.Hypot(p.U, p.V); s > max {
			max = s
		}
	}
	n := int(math.Ceil(max/increment)) + 1
	rings := make([]Ring, 0, n)
	for i := 1; i <= n; i++ {
		rings = append(rings, Ring{Speed: float64(i) * increment})
	}
	return rings, nil
}

// BulkShear is the vector difference between the wind at the top of a
// layer and the wind at its base, interpolated by height above ground.
func BulkShear(snd *sounding.Profile, depth float64) (u, v float64, err error) {
	if depth <= 0 {
		return 0, 0, errors.New(errors.ErrCodeInvalidConfig, "shear depth must be positive")
	}
	pts := Hodograph(snd)
	if len(pts) < 2 {
		return 0, 0, errors.New(errors.ErrCodeMissingData, "sounding has fewer than two wind-bearing levels")
	}

	base := pts[0]
	top := base.Height + depth
	if pts[len(pts)-1].Height < top {
		return 0, 0, errors.New(errors.ErrCodeMissingData, "sounding does not reach the requested shear depth")
	}
	tu, tv := windAtHeight(pts, top)
	return tu - base.U, tv - base.V, nil
}

func windAtHeight(pts []HodographPoint, h float64) (u, v float64) {
	i := sort.Search(len(pts), func(i int) bool { return pts[i].Height >= h })
	if i == 0 {
		return pts[0].U, pts[0].V
	}
	if i == len(pts) {
		last := pts[len(pts)-1]
		return last.U, last.V
	}
	lo, hi := pts[i-1], pts[i]
	if hi.Height == lo.Height {
		return hi.U, hi.V
	}
	f := (h - lo.Height) / (hi.Height - lo.Height)
	return lo.U + f*(hi.U-lo.U), lo.V + f*(hi.V-lo.V)
}
