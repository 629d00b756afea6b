package butteraugli

import (
	"errors"
	"math"

	"github.com/cwbudde/imagefidelity/internal/imagef"
)

// Perceptual difference estimator. Given a reference image in linear-light
// RGB it produces a per-pixel difference map against candidates of the same
// size. The model mixes linear RGB into an opsin-like basis, splits each
// channel into low and high frequency bands with a Gaussian blur, and
// combines the per-band squared differences with fixed channel weights. High
// frequency differences can be weighted asymmetrically so that added
// artifacts cost more than removed detail.

var (
	// ErrDegenerate is returned by Make for references with a zero dimension.
	ErrDegenerate = errors.New("butteraugli: reference image is empty")
	// ErrSizeMismatch is returned by Diffmap when the candidate's dimensions
	// differ from the reference the comparator was built from.
	ErrSizeMismatch = errors.New("butteraugli: image sizes do not match")
)

// Quality anchors of the metric scale; a score of 1.0 is the boundary of
// visible difference.
const (
	kGlobalScale = 1.0 / 12.84
	kBlurSigma   = 2.3
)

// Opsin mixing coefficients for the long/medium/short channels.
const (
	mixL0 = 0.19334520917582404
	mixL1 = -0.08311773494921797
	mixM0 = 0.07713792858953174
	mixM1 = 0.2208810782725995
	mixS0 = 0.26188332580170837
)

// Per-channel weights for the low and high frequency bands.
var (
	lfWeights = [3]float64{17.8, 36.9, 4.9}
	hfWeights = [3]float64{29.4, 52.3, 2.1}
)

// Params controls the perceptual model and the pooling norm derived from its
// difference map. The zero value is not useful; use DefaultParams.
type Params struct {
	// HFAsymmetry multiplies high-frequency differences where the candidate
	// has more energy than the reference. 1 is symmetric.
	HFAsymmetry float64
	// IntensityTarget is the assumed peak luminance in nits.
	IntensityTarget float64
	// Norm is the pooling exponent used to reduce the difference map.
	Norm float64
}

// DefaultParams returns the standard metric configuration.
func DefaultParams() Params {
	return Params{
		HFAsymmetry:     1.0,
		IntensityTarget: 80,
		Norm:            3,
	}
}

// Comparator holds the precomputed opsin representation of the reference so
// repeated Diffmap calls against the same reference only pay for the
// candidate's share of the work.
type Comparator struct {
	width  int
	height int
	params Params

	refOpsin *imagef.Image3F
	refLow   *imagef.Image3F
}

// Make builds a comparator for the given linear-light reference image.
func Make(ref *imagef.Image3F, params Params) (*Comparator, error) {
	if ref.Width == 0 || ref.Height == 0 {
		return nil, ErrDegenerate
	}
	if params.HFAsymmetry <= 0 {
		params.HFAsymmetry = 1
	}
	opsin := opsinDynamics(ref)
	return &Comparator{
		width:    ref.Width,
		height:   ref.Height,
		params:   params,
		refOpsin: opsin,
		refLow:   blurImage(opsin, kBlurSigma),
	}, nil
}

// Diffmap computes the per-pixel difference map between the reference and a
// candidate of the same dimensions.
func (c *Comparator) Diffmap(actual *imagef.Image3F) (*imagef.ImageF, error) {
	if !actual.SameSize(c.refOpsin) {
		return nil, ErrSizeMismatch
	}

	opsin := opsinDynamics(actual)
	low := blurImage(opsin, kBlurSigma)

	out := imagef.NewImageF(c.width, c.height)
	asym := c.params.HFAsymmetry

	for y := 0; y < c.height; y++ {
		dst := out.Row(y)
		for ch := 0; ch < 3; ch++ {
			refFull := c.refOpsin.PlaneRow(ch, y)
			refLow := c.refLow.PlaneRow(ch, y)
			actFull := opsin.PlaneRow(ch, y)
			actLow := low.PlaneRow(ch, y)
			wlf := lfWeights[ch]
			whf := hfWeights[ch]
			for x := 0; x < c.width; x++ {
				dlf := float64(actLow[x] - refLow[x])
				refHF := float64(refFull[x] - refLow[x])
				actHF := float64(actFull[x] - actLow[x])
				dhf := actHF - refHF
				if actHF*actHF > refHF*refHF {
					// Candidate added energy the reference does not have.
					dhf *= asym
				}
				dst[x] += float32(wlf*dlf*dlf + whf*dhf*dhf)
			}
		}
		for x := 0; x < c.width; x++ {
			dst[x] = float32(math.Sqrt(float64(dst[x])) * kGlobalScale)
		}
	}

	return out, nil
}

// opsinDynamics mixes linear RGB into the long/medium/short opsin basis with
// a mild dynamic compression, scaled to the 0..255 domain of the model's
// constants.
func opsinDynamics(img *imagef.Image3F) *imagef.Image3F {
	out := imagef.NewImage3F(img.Width, img.Height)
	for y := 0; y < img.Height; y++ {
		r := img.PlaneRow(0, y)
		g := img.PlaneRow(1, y)
		b := img.PlaneRow(2, y)
		l := out.PlaneRow(0, y)
		m := out.PlaneRow(1, y)
		s := out.PlaneRow(2, y)
		for x := range r {
			rv := float64(r[x]) * 255
			gv := float64(g[x]) * 255
			bv := float64(b[x]) * 255
			l[x] = float32(compress(mixL0*rv + mixL1*gv))
			m[x] = float32(compress(mixM0*rv + mixM1*gv))
			s[x] = float32(compress(mixS0 * bv))
		}
	}
	return out
}

// compress applies a cube-root-like response so equal signal ratios map to
// roughly equal perceptual steps.
func compress(v float64) float64 {
	if v <= 0 {
		return 0
	}
	return math.Cbrt(v)
}
