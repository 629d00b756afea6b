package metrics

import (
	"fmt"
	"math"

	"github.com/cwbudde/imagefidelity/internal/colorspace"
	"github.com/cwbudde/imagefidelity/internal/imagef"
	"github.com/cwbudde/imagefidelity/internal/packed"
	"github.com/cwbudde/imagefidelity/internal/worker"
)

// ColorTransform is the color-management capability consumed by the PSNR
// path and the distance facade. It must be idempotent when source and
// destination encodings are equal; callers skip the call in that case as an
// optimization, but correctness does not depend on the skip.
type ColorTransform func(img *imagef.Image3F, from colorspace.Encoding, intensityTarget float32, to colorspace.Encoding, pool *worker.Pool) error

// DefaultColorTransform is the built-in transfer-function engine.
var DefaultColorTransform ColorTransform = colorspace.ApplyTransform

// yuvMatrix projects an RGB difference into a luma/chroma basis
// (ITU-R-style weighting). Row 0 is luma; the PSNR channel weights assume
// this ordering.
var yuvMatrix = [3][3]float32{
	{0.299, 0.587, 0.114},
	{-0.14713, -0.28886, 0.436},
	{0.615, -0.51499, -0.10001},
}

// SumOfSquares accumulates per-channel sums of squared differences between
// two packed images in a perceptually weighted basis. Both inputs are
// normalized to gamma-encoded sRGB first: closer to perception than linear.
//
// The YUV projection is linear, so it runs on the per-pixel difference
// instead of on each image, saving a full transform pass.
//
// On any failure the sums are left at math.MaxFloat64 so partial
// accumulation can never be mistaken for a result.
func SumOfSquares(a, b *packed.Image, transform ColorTransform) (sums [3]float64, err error) {
	sums[0], sums[1], sums[2] = math.MaxFloat64, math.MaxFloat64, math.MaxFloat64
	if transform == nil {
		transform = DefaultColorTransform
	}

	isGray := a.IsGray()
	desired := colorspace.SRGB(isGray)

	srgb0, err := packed.ConvertToPlanar(a, nil)
	if err != nil {
		return sums, fmt.Errorf("%w: %v", ErrConversionFailure, err)
	}
	srgb1, err := packed.ConvertToPlanar(b, nil)
	if err != nil {
		return sums, fmt.Errorf("%w: %v", ErrConversionFailure, err)
	}

	encA := packed.GetColorEncoding(a)
	encB := packed.GetColorEncoding(b)
	intensityA := packed.GetIntensityTarget(a, encA)
	intensityB := packed.GetIntensityTarget(b, encB)

	if !encA.Equal(desired) {
		if err := transform(srgb0, encA, intensityA, desired, nil); err != nil {
			return sums, fmt.Errorf("%w: %v", ErrTransformFailure, err)
		}
	}
	if !encB.Equal(desired) {
		if err := transform(srgb1, encB, intensityB, desired, nil); err != nil {
			return sums, fmt.Errorf("%w: %v", ErrTransformFailure, err)
		}
	}

	sums[0], sums[1], sums[2] = 0, 0, 0

	for y := 0; y < a.Height; y++ {
		var row0, row1 [3][]float32
		for c := 0; c < 3; c++ {
			row0[c] = srgb0.PlaneRow(c, y)
			row1[c] = srgb1.PlaneRow(c, y)
		}
		for x := 0; x < a.Width; x++ {
			var cdiff [3]float32
			for c := 0; c < 3; c++ {
				cdiff[c] = row0[c][x] - row1[c][x]
			}
			for j := 0; j < 3; j++ {
				yuv := yuvMatrix[j][0]*cdiff[0] + yuvMatrix[j][1]*cdiff[1] + yuvMatrix[j][2]*cdiff[2]
				sums[j] += float64(yuv) * float64(yuv)
			}
		}
	}

	return sums, nil
}
