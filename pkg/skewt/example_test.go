package skewt_test

import (
	"fmt"

	"github.com/aerogramlab/aerogram/pkg/skewt"
)

func ExampleTransform_ToScreen() {
	tr, _ := skewt.NewTransform(skewt.DefaultConfig())

	// The bottom-left corner of the frame: 1050 hPa maps to y = 0, and at
	// y = 0 no skew is applied, so x is the plain temperature.
	pt, _ := tr.ToScreen(1050, 0)
	fmt.Printf("x=%.1f y=%.1f\n", pt.X, pt.Y)
	// Output:
	// x=0.0 y=0.0
}

func ExampleTransform_roundTrip() {
	tr, _ := skewt.NewTransform(skewt.DefaultConfig())

	pt, _ := tr.ToScreen(850, 20)
	p, t := tr.ToPhysical(pt)
	fmt.Printf("%.1f hPa %.1f °C\n", p, t)
	// Output:
	// 850.0 hPa 20.0 °C
}

func ExampleNewTransform_invalidConfig() {
	cfg := skewt.DefaultConfig()
	cfg.RotationDegrees = 95

	_, err := skewt.NewTransform(cfg)
	fmt.Println(err)
	// Output:
	// DOMAIN_INVALID_CONFIG: rotation must be in (0, 90) degrees, got 95.0
}
