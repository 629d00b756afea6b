package heatmap

import (
	"image"
	"image/color"

	"github.com/cwbudde/imagefidelity/internal/imagef"
)

// False-color rendering of a difference map for visual inspection. The ramp
// runs black -> red -> yellow -> white over [0, maxValue]; values beyond
// maxValue saturate to white.

// DefaultMax is the ramp ceiling used when the caller passes 0: scores
// around 1.0 sit at the edge of visibility, so a ceiling of 3 keeps the
// interesting range colorful.
const DefaultMax = 3.0

// Render converts a difference map to an NRGBA heatmap.
func Render(distmap *imagef.ImageF, maxValue float64) *image.NRGBA {
	if maxValue <= 0 {
		maxValue = DefaultMax
	}

	out := image.NewNRGBA(image.Rect(0, 0, distmap.Width, distmap.Height))
	for y := 0; y < distmap.Height; y++ {
		row := distmap.Row(y)
		for x := 0; x < distmap.Width; x++ {
			out.SetNRGBA(x, y, rampColor(float64(row[x])/maxValue))
		}
	}
	return out
}

// rampColor maps t in [0, 1] onto the black/red/yellow/white ramp.
func rampColor(t float64) color.NRGBA {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	switch {
	case t < 1.0/3:
		return color.NRGBA{R: channel(t * 3), A: 255}
	case t < 2.0/3:
		return color.NRGBA{R: 255, G: channel(t*3 - 1), A: 255}
	default:
		return color.NRGBA{R: 255, G: 255, B: channel(t*3 - 2), A: 255}
	}
}

func channel(v float64) uint8 {
	if v >= 1 {
		return 255
	}
	if v <= 0 {
		return 0
	}
	return uint8(v*255 + 0.5)
}
