package thermo_test

import (
	"fmt"

	"github.com/aerogramlab/aerogram/pkg/thermo"
)

func ExampleSaturationVaporPressure() {
	// At 0 °C the Bolton formula reduces to its leading coefficient.
	fmt.Printf("%.3f hPa\n", thermo.SaturationVaporPressure(0))
	// Output:
	// 6.112 hPa
}

func ExamplePotentialTemperature() {
	// At the 1000 hPa reference pressure, θ is simply the absolute
	// temperature.
	theta := thermo.PotentialTemperature(1000, 25)
	fmt.Printf("%.2f K\n", theta)
	// Output:
	// 298.15 K
}

func ExampleTemperatureOnDryAdiabat() {
	// Descending a dry adiabat back to the reference pressure recovers the
	// temperature its θ was defined by.
	theta := thermo.PotentialTemperature(1000, 25)
	t := thermo.TemperatureOnDryAdiabat(1000, theta)
	fmt.Printf("%.2f °C\n", t)
	// Output:
	// 25.00 °C
}
