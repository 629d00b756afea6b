package metrics

import (
	"log/slog"
	"math"
	"sync"

	"github.com/cwbudde/imagefidelity/internal/butteraugli"
	"github.com/cwbudde/imagefidelity/internal/imagef"
	"golang.org/x/sys/cpu"
)

// Multi-norm pooling of a difference map.
//
// PoolNorm blends the generalized p-mean, 2p-mean and 4p-mean of the map:
//
//	score = ((S1/N)^(1/p) + (S2/N)^(1/2p) + (S4/N)^(1/4p)) / 3
//
// where S1, S2, S4 are the sums of d^p, d^(2p) and d^(4p). The higher
// exponents are produced by repeatedly squaring the running per-pixel term
// rather than by separate pow calls; the squaring chain is part of the
// metric definition and must not be replaced by a closed form.
//
// For the common p = 3 the per-pixel term is a cube and the whole reduction
// runs on a lane-parallel kernel selected once at init; any other exponent
// falls back to a scalar pow loop.

// PoolBackend indicates which pooling kernel is active.
type PoolBackend int

const (
	PoolBackendScalar PoolBackend = iota // portable 4-lane kernel
	PoolBackendAVX2                      // 8-lane kernel on AVX2-capable x86-64
	PoolBackendNEON                      // 4-lane kernel on ARM64 ASIMD
)

func (b PoolBackend) String() string {
	switch b {
	case PoolBackendAVX2:
		return "AVX2"
	case PoolBackendNEON:
		return "NEON"
	case PoolBackendScalar:
		return "scalar"
	default:
		return "unknown"
	}
}

// ActivePoolBackend reports which kernel was selected at initialization.
var ActivePoolBackend PoolBackend

// poolSums accumulates the row's d^3, d^6 and d^12 partial sums.
// Set once by init() based on CPU feature detection.
var poolSums func(row []float32, sums *[3]float64)

func init() {
	switch {
	case cpu.X86.HasAVX2:
		ActivePoolBackend = PoolBackendAVX2
		poolSums = poolSumsLanes8
	case cpu.ARM64.HasASIMD:
		ActivePoolBackend = PoolBackendNEON
		poolSums = poolSumsLanes4
	default:
		ActivePoolBackend = PoolBackendScalar
		poolSums = poolSumsLanes4
	}
	slog.Debug("pooling kernel initialized", "backend", ActivePoolBackend.String())
}

// slowPoolOnce gates the process-lifetime diagnostic for the generic path.
var slowPoolOnce sync.Once

// PoolNorm reduces a difference map to a scalar score. Empty maps pool to
// exactly 0 regardless of p, without touching params.
func PoolNorm(distmap *imagef.ImageF, params butteraugli.Params, p float64) float64 {
	if distmap.Empty() {
		return 0
	}

	onePerPixels := 1.0 / float64(distmap.PixelCount())

	if math.Abs(p-3.0) < 1e-6 {
		var sums [3]float64
		for y := 0; y < distmap.Height; y++ {
			poolSums(distmap.Row(y), &sums)
		}
		v := math.Pow(onePerPixels*sums[0], 1.0/(p*1))
		v += math.Pow(onePerPixels*sums[1], 1.0/(p*2))
		v += math.Pow(onePerPixels*sums[2], 1.0/(p*4))
		return v / 3
	}

	slowPoolOnce.Do(func() {
		slog.Warn("using slow generic pooling path", "p", p)
	})

	var sums [3]float64
	for y := 0; y < distmap.Height; y++ {
		row := distmap.Row(y)
		for x := range row {
			t := math.Pow(float64(row[x]), p)
			sums[0] += t
			t *= t
			sums[1] += t
			t *= t
			sums[2] += t
		}
	}
	var v float64
	for i := 0; i < 3; i++ {
		v += math.Pow(onePerPixels*sums[i], 1.0/(p*float64(int(1)<<i)))
	}
	return v / 3
}
