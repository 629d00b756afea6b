package butteraugli

import (
	"math"

	"github.com/cwbudde/imagefidelity/internal/imagef"
)

// Separable Gaussian blur over a single plane. The kernel is truncated at
// 3 sigma and renormalized near the borders so flat regions stay flat, which
// the diffmap relies on: blurring a constant plane must return the same
// constant.

func gaussianKernel(sigma float64) []float64 {
	radius := int(math.Ceil(3 * sigma))
	if radius < 1 {
		radius = 1
	}
	kernel := make([]float64, 2*radius+1)
	scaler := -1.0 / (2 * sigma * sigma)
	for i := -radius; i <= radius; i++ {
		kernel[i+radius] = math.Exp(scaler * float64(i*i))
	}
	return kernel
}

// convolveTranspose convolves every row of in horizontally with kernel and
// writes the result transposed into out (out must be height x width when in
// is width x height). Applying it twice yields a full 2D blur.
func convolveTranspose(in, out *imagef.ImageF, kernel []float64) {
	radius := len(kernel) / 2
	width := in.Width
	for y := 0; y < in.Height; y++ {
		row := in.Row(y)
		for x := 0; x < width; x++ {
			minx := x - radius
			if minx < 0 {
				minx = 0
			}
			maxx := x + radius
			if maxx > width-1 {
				maxx = width - 1
			}
			var sum, weight float64
			for j := minx; j <= maxx; j++ {
				w := kernel[j-x+radius]
				sum += w * float64(row[j])
				weight += w
			}
			out.Row(x)[y] = float32(sum / weight)
		}
	}
}

// blurPlane returns a Gaussian-blurred copy of the plane.
func blurPlane(in *imagef.ImageF, sigma float64) *imagef.ImageF {
	kernel := gaussianKernel(sigma)
	tmp := imagef.NewImageF(in.Height, in.Width)
	out := imagef.NewImageF(in.Width, in.Height)
	convolveTranspose(in, tmp, kernel)
	convolveTranspose(tmp, out, kernel)
	return out
}

func blurImage(in *imagef.Image3F, sigma float64) *imagef.Image3F {
	out := &imagef.Image3F{Width: in.Width, Height: in.Height}
	for c := range in.Planes {
		out.Planes[c] = blurPlane(in.Planes[c], sigma)
	}
	return out
}
