package heatmap

import (
	"image/color"
	"testing"

	"github.com/cwbudde/imagefidelity/internal/imagef"
)

func TestRender_RampEndpoints(t *testing.T) {
	dm := imagef.NewImageF(4, 1)
	dm.Row(0)[0] = 0
	dm.Row(0)[1] = float32(DefaultMax) / 2
	dm.Row(0)[2] = float32(DefaultMax)
	dm.Row(0)[3] = float32(DefaultMax) * 10 // beyond the ceiling, must saturate

	img := Render(dm, 0)

	if got := img.NRGBAAt(0, 0); got != (color.NRGBA{A: 255}) {
		t.Errorf("zero maps to %v, want black", got)
	}
	if got := img.NRGBAAt(2, 0); got != (color.NRGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Errorf("max maps to %v, want white", got)
	}
	if got := img.NRGBAAt(3, 0); got != (color.NRGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Errorf("overflow maps to %v, want white", got)
	}
	mid := img.NRGBAAt(1, 0)
	if mid.R != 255 || mid.B != 0 {
		t.Errorf("midpoint maps to %v, want on the red/yellow segment", mid)
	}
}

func TestRender_CustomCeiling(t *testing.T) {
	dm := imagef.NewImageF(1, 1)
	dm.Row(0)[0] = 1

	img := Render(dm, 1)
	if got := img.NRGBAAt(0, 0); got != (color.NRGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Errorf("value at ceiling maps to %v, want white", got)
	}
}
