package metrics

// Lane-parallel kernels for the p = 3 pooling fast path.
//
// Each lane carries an independent set of partial sums so the accumulation
// chains do not serialize; lanes are combined horizontally once per row.
// Pixels that do not fill a full lane group go through an equivalent scalar
// remainder loop over the same cube/square/square chain. Accumulation is
// float64 in every lane, so lane width only changes grouping, never the
// numeric result beyond summation order.

// poolSumsLanes4 processes four pixels per iteration with four accumulator
// lanes. Used on ARM64 and as the portable fallback.
func poolSumsLanes4(row []float32, sums *[3]float64) {
	var c0, c1, c2, c3 float64 // d^3 lanes
	var q0, q1, q2, q3 float64 // d^6 lanes
	var o0, o1, o2, o3 float64 // d^12 lanes

	x := 0
	for ; x+4 <= len(row); x += 4 {
		d0 := float64(row[x+0])
		d1 := float64(row[x+1])
		d2 := float64(row[x+2])
		d3 := float64(row[x+3])

		t0 := d0 * d0 * d0
		t1 := d1 * d1 * d1
		t2 := d2 * d2 * d2
		t3 := d3 * d3 * d3
		c0 += t0
		c1 += t1
		c2 += t2
		c3 += t3

		t0 *= t0
		t1 *= t1
		t2 *= t2
		t3 *= t3
		q0 += t0
		q1 += t1
		q2 += t2
		q3 += t3

		t0 *= t0
		t1 *= t1
		t2 *= t2
		t3 *= t3
		o0 += t0
		o1 += t1
		o2 += t2
		o3 += t3
	}

	sums[0] += c0 + c1 + c2 + c3
	sums[1] += q0 + q1 + q2 + q3
	sums[2] += o0 + o1 + o2 + o3

	for ; x < len(row); x++ {
		d := float64(row[x])
		t := d * d * d
		sums[0] += t
		t *= t
		sums[1] += t
		t *= t
		sums[2] += t
	}
}

// poolSumsLanes8 processes eight pixels per iteration with eight accumulator
// lanes. Selected on AVX2-capable hosts where the compiler can keep the
// wider lane group in vector registers.
func poolSumsLanes8(row []float32, sums *[3]float64) {
	var cubes, sixths, twelfths [8]float64

	x := 0
	for ; x+8 <= len(row); x += 8 {
		var t [8]float64
		for l := 0; l < 8; l++ {
			d := float64(row[x+l])
			t[l] = d * d * d
			cubes[l] += t[l]
		}
		for l := 0; l < 8; l++ {
			t[l] *= t[l]
			sixths[l] += t[l]
		}
		for l := 0; l < 8; l++ {
			t[l] *= t[l]
			twelfths[l] += t[l]
		}
	}

	for l := 0; l < 8; l++ {
		sums[0] += cubes[l]
		sums[1] += sixths[l]
		sums[2] += twelfths[l]
	}

	for ; x < len(row); x++ {
		d := float64(row[x])
		t := d * d * d
		sums[0] += t
		t *= t
		sums[1] += t
		t *= t
		sums[2] += t
	}
}
