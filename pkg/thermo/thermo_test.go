package thermo

import (
	"math"
	"testing"
)

func TestSaturationVaporPressure(t *testing.T) {
	tests := []struct {
		name string
		temp float64
		want float64
		tol  float64
	}{
		{
			name: "freezing point",
			temp: 0,
			want: 6.112,
			tol:  1e-9,
		},
		{
			name: "room temperature",
			temp: 20,
			want: 23.37,
			tol:  0.05,
		},
		{
			name: "warm surface",
			temp: 25,
			want: 31.67,
			tol:  0.05,
		},
		{
			name: "cold upper air",
			temp: -40,
			want: 0.19,
			tol:  0.01,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SaturationVaporPressure(tt.temp)
			if math.Abs(got-tt.want) > tt.tol {
				t.Errorf("SaturationVaporPressure(%v) = %v, want %v ± %v", tt.temp, got, tt.want, tt.tol)
			}
		})
	}
}

func TestDewpointForVaporPressureRoundTrip(t *testing.T) {
	for _, temp := range []float64{-60, -20, 0, 10, 25, 40} {
		e := SaturationVaporPressure(temp)
		got := DewpointForVaporPressure(e)
		if math.Abs(got-temp) > 1e-9 {
			t.Errorf("round trip at %v °C: got %v", temp, got)
		}
	}
}

func TestSaturationMixingRatio(t *testing.T) {
	// Standard reference value: ~14.9 g/kg at 1000 hPa, 20 °C.
	got := SaturationMixingRatio(1000, 20)
	if math.Abs(got-0.0149) > 0.0002 {
		t.Errorf("SaturationMixingRatio(1000, 20) = %v, want ~0.0149", got)
	}

	// Lower pressure holds more vapor per unit dry air.
	if SaturationMixingRatio(850, 20) <= got {
		t.Error("saturation mixing ratio should increase as pressure decreases")
	}
}

func TestTemperatureOnMixingRatioLineRoundTrip(t *testing.T) {
	tests := []struct {
		p, temp float64
	}{
		{1000, 20},
		{1000, -10},
		{850, 15},
		{700, 0},
		{500, -20},
	}

	for _, tt := range tests {
		w := SaturationMixingRatio(tt.p, tt.temp)
		got := TemperatureOnMixingRatioLine(tt.p, w)
		if math.Abs(got-tt.temp) > 1e-9 {
			t.Errorf("TemperatureOnMixingRatioLine(%v, %v) = %v, want %v", tt.p, w, got, tt.temp)
		}
	}
}

func TestPotentialTemperature(t *testing.T) {
	// At the reference pressure, θ is just the absolute temperature.
	got := PotentialTemperature(ReferencePressure, 25)
	if math.Abs(got-298.15) > 1e-9 {
		t.Errorf("PotentialTemperature(1000, 25) = %v, want 298.15", got)
	}

	// θ increases as the same temperature is found at lower pressure.
	if PotentialTemperature(500, 25) <= got {
		t.Error("potential temperature should increase with decreasing pressure at fixed T")
	}
}

func TestTemperatureOnDryAdiabatInverse(t *testing.T) {
	for _, p := range []float64{1000, 850, 700, 500, 300} {
		for _, temp := range []float64{-30, 0, 25} {
			theta := PotentialTemperature(p, temp)
			got := TemperatureOnDryAdiabat(p, theta)
			if math.Abs(got-temp) > 1e-9 {
				t.Errorf("dry adiabat inverse at p=%v T=%v: got %v", p, temp, got)
			}
		}
	}
}

func TestMoistLapseLogP(t *testing.T) {
	// The pseudoadiabatic lapse rate is positive (temperature drops as
	// pressure drops) and strictly smaller than the dry rate κ·T_k because
	// condensation releases latent heat.
	for _, tt := range []struct{ p, temp float64 }{
		{1000, 30},
		{1000, 0},
		{700, 5},
		{500, -15},
	} {
		moist := MoistLapseLogP(tt.p, tt.temp)
		dry := Kappa * (tt.temp + ZeroCelsius)
		if moist <= 0 {
			t.Errorf("MoistLapseLogP(%v, %v) = %v, want > 0", tt.p, tt.temp, moist)
		}
		if moist >= dry {
			t.Errorf("MoistLapseLogP(%v, %v) = %v, want < dry rate %v", tt.p, tt.temp, moist, dry)
		}
	}

	// Very cold air holds almost no vapor, so the moist rate approaches the
	// dry rate.
	moist := MoistLapseLogP(300, -60)
	dry := Kappa * (-60 + ZeroCelsius)
	if math.Abs(moist-dry)/dry > 0.02 {
		t.Errorf("moist rate at -60 °C = %v, want within 2%% of dry rate %v", moist, dry)
	}
}

func TestEquivalentPotentialTemperature(t *testing.T) {
	// Reference value for a saturated parcel at 1000 hPa, 20 °C: θe ≈ 334 K.
	got := EquivalentPotentialTemperature(1000, 20)
	if math.Abs(got-334) > 2 {
		t.Errorf("EquivalentPotentialTemperature(1000, 20) = %v, want ~334", got)
	}

	// θe grows with temperature at fixed pressure.
	if EquivalentPotentialTemperature(1000, 25) <= got {
		t.Error("θe should increase with temperature")
	}
}
