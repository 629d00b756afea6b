package colorspace

import (
	"fmt"
	"math"

	"github.com/cwbudde/imagefidelity/internal/imagef"
	"github.com/cwbudde/imagefidelity/internal/worker"
)

// Transform engine. Remaps planar images between encodings that share
// primaries and white point by decoding the source transfer function to
// linear light and re-encoding with the destination's. PQ is absolute
// (mastered in nits), so the intensity target scales in and out of the
// nominal [0,1] signal range.
//
// Gamut conversion between different primaries is out of reach without a
// full color-management engine and is reported as an error.

// SMPTE ST 2084 (PQ) constants.
const (
	pqM1 = 2610.0 / 16384
	pqM2 = 2523.0 / 4096 * 128
	pqC1 = 3424.0 / 4096
	pqC2 = 2413.0 / 4096 * 32
	pqC3 = 2392.0 / 4096 * 32
)

// DefaultIntensityTarget is the assumed peak luminance in nits for SDR
// content whose container does not say otherwise.
const DefaultIntensityTarget = 255.0

// LinearIntensityTarget is the assumed peak luminance for linear-light
// encodings.
const LinearIntensityTarget = 80.0

func decodeSample(t Transfer, v, intensityTarget float64) float64 {
	switch t.Kind {
	case TransferLinear:
		return v
	case TransferSRGB:
		if v <= 0.04045 {
			return v / 12.92
		}
		return math.Pow((v+0.055)/1.055, 2.4)
	case Transfer709:
		if v < 0.081 {
			return v / 4.5
		}
		return math.Pow((v+0.099)/1.099, 1/0.45)
	case TransferPQ:
		if v < 0 {
			v = 0
		}
		vp := math.Pow(v, 1/pqM2)
		num := vp - pqC1
		if num < 0 {
			num = 0
		}
		y := math.Pow(num/(pqC2-pqC3*vp), 1/pqM1)
		return y * 10000 / intensityTarget
	case TransferGamma:
		if v < 0 {
			return 0
		}
		return math.Pow(v, 1/t.Gamma)
	default:
		return v
	}
}

func encodeSample(t Transfer, v, intensityTarget float64) float64 {
	switch t.Kind {
	case TransferLinear:
		return v
	case TransferSRGB:
		if v <= 0.0031308 {
			return v * 12.92
		}
		return 1.055*math.Pow(v, 1/2.4) - 0.055
	case Transfer709:
		if v < 0.018 {
			return v * 4.5
		}
		return 1.099*math.Pow(v, 0.45) - 0.099
	case TransferPQ:
		y := v * intensityTarget / 10000
		if y < 0 {
			y = 0
		}
		yp := math.Pow(y, pqM1)
		return math.Pow((pqC1+pqC2*yp)/(1+pqC3*yp), pqM2)
	case TransferGamma:
		if v < 0 {
			return 0
		}
		return math.Pow(v, t.Gamma)
	default:
		return v
	}
}

// ApplyTransform remaps img in place from one encoding to another. It is a
// no-op when the encodings are structurally equal; callers may skip the call
// in that case but do not have to. Rows are processed in parallel when a
// pool is supplied.
func ApplyTransform(img *imagef.Image3F, from Encoding, intensityTarget float32, to Encoding, pool *worker.Pool) error {
	if from.Equal(to) {
		return nil
	}
	if from.Gray != to.Gray {
		return fmt.Errorf("transform %s -> %s: gray/color mismatch", from, to)
	}
	if !from.Gray && (from.Primaries != to.Primaries || from.WhitePoint != to.WhitePoint) {
		return fmt.Errorf("transform %s -> %s: gamut conversion not supported", from, to)
	}

	intensity := float64(intensityTarget)
	if intensity <= 0 {
		intensity = DefaultIntensityTarget
	}

	decode := from.Transfer
	encode := to.Transfer

	pool.Run(img.Height, func(y int) {
		for c := 0; c < 3; c++ {
			row := img.PlaneRow(c, y)
			for x := range row {
				v := decodeSample(decode, float64(row[x]), intensity)
				row[x] = float32(encodeSample(encode, v, intensity))
			}
		}
	})

	return nil
}
