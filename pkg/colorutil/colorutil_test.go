package colorutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRGBToHSV(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b float64
		wantH   float64
		wantS   float64
		wantV   float64
	}{
		{"red", 255, 0, 0, 0, 255, 255},
		{"green", 0, 255, 0, 60, 255, 255},
		{"blue", 0, 0, 255, 120, 255, 255},
		{"black", 0, 0, 0, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, s, v := RGBToHSV(tt.r, tt.g, tt.b)
			assert.InDelta(t, tt.wantH, h, 0.01)
			assert.InDelta(t, tt.wantS, s, 0.01)
			assert.InDelta(t, tt.wantV, v, 0.01)
		})
	}
}

func TestHueDistanceWraps(t *testing.T) {
	assert.InDelta(t, 4, HueDistance(2, 178), 1e-9)
	assert.InDelta(t, 10, HueDistance(50, 60), 1e-9)
}

func TestMeanHueWraps(t *testing.T) {
	m := MeanHue([]float64{2, 178})
	assert.True(t, m < 0.5 || m > 179.5, "mean hue %v should sit at the wrap point", m)
	assert.InDelta(t, 60, MeanHue([]float64{55, 65}), 1e-6)
	assert.Equal(t, 0.0, MeanHue(nil))
}

func TestMarkerFromRGB(t *testing.T) {
	m := MarkerFromRGB(128, 0, 0)
	assert.Equal(t, [3]uint8{255, 0, 0}, m.RGB)
	assert.Equal(t, "#ff0000", m.Hex)
	assert.Equal(t, 0, m.HueDegrees)

	m = MarkerFromRGB(20, 100, 20)
	assert.Equal(t, 120, m.HueDegrees)
	assert.Equal(t, "#00ff00", m.Hex)
}
