package metrics

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/cwbudde/imagefidelity/internal/butteraugli"
	"github.com/cwbudde/imagefidelity/internal/colorspace"
	"github.com/cwbudde/imagefidelity/internal/imagef"
	"github.com/cwbudde/imagefidelity/internal/packed"
	"github.com/cwbudde/imagefidelity/internal/worker"
)

// Facade over the full metric pipeline: packed inputs are converted to
// planar form, normalized into a canonical encoding, and reduced to a
// scalar. The strict entry points propagate typed errors; the lenient ones
// (DistanceOrSentinel, Psnr) degrade failures to sentinel values with a
// diagnostic, for batch callers that must not abort a whole run on one bad
// pair.

// checkCompatible validates the shared preconditions of all comparisons.
func checkCompatible(a, b *packed.Image) error {
	if a.Width != b.Width || a.Height != b.Height {
		return fmt.Errorf("%w: %dx%d vs %dx%d", ErrDimensionMismatch, a.Width, a.Height, b.Width, b.Height)
	}
	if a.NumColorChannels != b.NumColorChannels {
		return fmt.Errorf("%w: %d vs %d color channels", ErrChannelMismatch, a.NumColorChannels, b.NumColorChannels)
	}
	return nil
}

// normalize brings a packed input into the desired encoding as a planar
// image, skipping the transform when the source already matches.
func normalize(im *packed.Image, desired colorspace.Encoding, pool *worker.Pool) (*imagef.Image3F, error) {
	img, err := packed.ConvertToPlanar(im, pool)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConversionFailure, err)
	}
	enc := packed.GetColorEncoding(im)
	if !enc.Equal(desired) {
		intensity := packed.GetIntensityTarget(im, enc)
		if err := colorspace.ApplyTransform(img, enc, intensity, desired, pool); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTransformFailure, err)
		}
	}
	return img, nil
}

// Distance computes the perceptual distance between reference a and
// candidate b, returning the score and the retained difference map. Both
// inputs are normalized to linear-light sRGB (gray variant for single
// channel inputs) before the perceptual model runs.
func Distance(a, b *packed.Image, params butteraugli.Params, pool *worker.Pool) (float64, *imagef.ImageF, error) {
	if err := checkCompatible(a, b); err != nil {
		return 0, nil, err
	}

	desired := colorspace.LinearSRGB(a.IsGray())

	ref, err := normalize(a, desired, pool)
	if err != nil {
		return 0, nil, err
	}
	actual, err := normalize(b, desired, pool)
	if err != nil {
		return 0, nil, err
	}

	comparator, err := butteraugli.Make(ref, params)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrComparatorFailure, err)
	}
	distmap, err := comparator.Diffmap(actual)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrComparatorFailure, err)
	}

	norm := params.Norm
	if norm == 0 {
		norm = 3
	}
	return PoolNorm(distmap, params, norm), distmap, nil
}

// DistanceOrSentinel is the lenient variant of Distance for call sites that
// cannot handle failure: it logs the error and reports maximal difference
// instead of propagating it.
func DistanceOrSentinel(a, b *packed.Image, params butteraugli.Params, pool *worker.Pool) float64 {
	score, _, err := Distance(a, b, params, pool)
	if err != nil {
		slog.Error("distance computation failed", "error", err)
		return math.MaxFloat64
	}
	return score
}

// Norm3 computes the 3-norm pooled perceptual distance with default
// parameters. Purely a named shortcut over Distance + PoolNorm.
func Norm3(a, b *packed.Image, pool *worker.Pool) (float64, error) {
	params := butteraugli.DefaultParams()
	_, distmap, err := Distance(a, b, params, pool)
	if err != nil {
		return 0, err
	}
	return PoolNorm(distmap, params, 3), nil
}

// psnrChannelWeights assume channel 0 is luma-like, matching the ordering
// SumOfSquares emits: luma counts six times each chroma channel.
var psnrChannelWeights = [3]float64{6.0 / 8, 1.0 / 8, 1.0 / 8}

// psnrCeiling stands in for infinity on channels with zero error. Channels
// with any error report the raw formula value, which may exceed it.
const psnrCeiling = 99.99

// Psnr computes the perceptually weighted PSNR between two packed images.
// It is a lenient entry point: failures produce a diagnostic and 0.
func Psnr(a, b *packed.Image, transform ColorTransform) float64 {
	if err := checkCompatible(a, b); err != nil {
		slog.Error("psnr preconditions failed", "error", err)
		return 0
	}

	sums, err := SumOfSquares(a, b, transform)
	if err != nil {
		slog.Error("sum of squares failed", "error", err)
		return 0
	}

	pixels := float64(a.Width * a.Height)
	var avg float64
	for i := 0; i < 3; i++ {
		psnr := psnrCeiling
		if sums[i] != 0 {
			rmse := math.Sqrt(sums[i] / pixels)
			psnr = 20 * math.Log10(1/rmse)
		}
		avg += psnrChannelWeights[i] * psnr
	}
	return avg
}
