package metrics

import (
	"math"
	"math/rand"
	"testing"

	"github.com/cwbudde/imagefidelity/internal/butteraugli"
	"github.com/cwbudde/imagefidelity/internal/imagef"
)

// constantMap creates a difference map filled with a single value.
func constantMap(width, height int, v float32) *imagef.ImageF {
	m := imagef.NewImageF(width, height)
	for i := range m.Pix {
		m.Pix[i] = v
	}
	return m
}

// randomMap creates a difference map with values in [0, 2).
func randomMap(width, height int, seed int64) *imagef.ImageF {
	rng := rand.New(rand.NewSource(seed))
	m := imagef.NewImageF(width, height)
	for i := range m.Pix {
		m.Pix[i] = rng.Float32() * 2
	}
	return m
}

// referencePoolNorm is the straightforward closed-form evaluation used to
// validate the kernels.
func referencePoolNorm(m *imagef.ImageF, p float64) float64 {
	if m.PixelCount() == 0 {
		return 0
	}
	var s1, s2, s4 float64
	for _, d := range m.Pix {
		t := math.Pow(float64(d), p)
		s1 += t
		t *= t
		s2 += t
		t *= t
		s4 += t
	}
	n := float64(m.PixelCount())
	return (math.Pow(s1/n, 1/(p*1)) + math.Pow(s2/n, 1/(p*2)) + math.Pow(s4/n, 1/(p*4))) / 3
}

func TestPoolNorm_EmptyMap(t *testing.T) {
	params := butteraugli.DefaultParams()
	for _, p := range []float64{0.5, 2, 3, 6} {
		for _, dims := range [][2]int{{0, 0}, {0, 7}, {7, 0}} {
			m := imagef.NewImageF(dims[0], dims[1])
			if got := PoolNorm(m, params, p); got != 0 {
				t.Errorf("PoolNorm(%dx%d, p=%g) = %v, want 0", dims[0], dims[1], p, got)
			}
		}
	}
}

func TestPoolNorm_AllZero(t *testing.T) {
	params := butteraugli.DefaultParams()
	for _, dims := range [][2]int{{1, 1}, {3, 5}, {64, 64}, {257, 31}} {
		m := imagef.NewImageF(dims[0], dims[1])
		if got := PoolNorm(m, params, 3); got != 0 {
			t.Errorf("PoolNorm(zero %dx%d) = %v, want 0", dims[0], dims[1], got)
		}
	}
}

func TestPoolNorm_ConstantMap(t *testing.T) {
	params := butteraugli.DefaultParams()

	// All three pooled means degenerate to v when every sample equals v,
	// independent of the map size and the exponent.
	for _, v := range []float32{0.25, 0.5, 1.0, 1.75} {
		for _, p := range []float64{2, 3, 5} {
			for _, dims := range [][2]int{{1, 1}, {9, 7}, {100, 50}} {
				m := constantMap(dims[0], dims[1], v)
				got := PoolNorm(m, params, p)
				if math.Abs(got-float64(v)) > 1e-5 {
					t.Errorf("PoolNorm(const %v, %dx%d, p=%g) = %v, want %v",
						v, dims[0], dims[1], p, got, v)
				}
			}
		}
	}
}

func TestPoolNorm_FastMatchesGeneric(t *testing.T) {
	params := butteraugli.DefaultParams()

	for _, dims := range [][2]int{{16, 16}, {33, 17}, {255, 13}} {
		m := randomMap(dims[0], dims[1], int64(dims[0]))

		fast := PoolNorm(m, params, 3)
		// Nudging p outside the 1e-6 window forces the generic path; both
		// evaluate the same closed form.
		slow := PoolNorm(m, params, 3+2e-6)

		if relDiff(fast, slow) > 1e-4 {
			t.Errorf("fast path %v and generic path %v diverge on %dx%d", fast, slow, dims[0], dims[1])
		}
	}
}

func TestPoolNorm_MatchesReference(t *testing.T) {
	params := butteraugli.DefaultParams()

	for _, p := range []float64{2, 3, 4.5} {
		m := randomMap(41, 23, 7)
		got := PoolNorm(m, params, p)
		want := referencePoolNorm(m, p)
		if relDiff(got, want) > 1e-9 {
			t.Errorf("PoolNorm(p=%g) = %v, want %v", p, got, want)
		}
	}
}

func TestPoolSumsKernelsAgree(t *testing.T) {
	// Widths chosen to exercise full lane groups and every remainder count.
	for width := 1; width <= 33; width++ {
		m := randomMap(width, 1, int64(width))
		row := m.Row(0)

		var s4, s8 [3]float64
		poolSumsLanes4(row, &s4)
		poolSumsLanes8(row, &s8)

		for i := 0; i < 3; i++ {
			if relDiff(s4[i], s8[i]) > 1e-12 {
				t.Errorf("width %d sum[%d]: lanes4 %v vs lanes8 %v", width, i, s4[i], s8[i])
			}
		}
	}
}

func relDiff(a, b float64) float64 {
	if a == b {
		return 0
	}
	den := math.Max(math.Abs(a), math.Abs(b))
	if den == 0 {
		return 0
	}
	return math.Abs(a-b) / den
}
