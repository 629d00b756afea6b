package packed

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cwbudde/imagefidelity/internal/imagef"
	"github.com/cwbudde/imagefidelity/internal/worker"
)

// ConvertToPlanar deinterleaves a packed image into a three-plane float
// image. Gray inputs are replicated across all three planes so downstream
// reductions see a uniform layout. Alpha is dropped. Rows convert in
// parallel when a pool is supplied; each row writes disjoint output.
func ConvertToPlanar(im *Image, pool *worker.Pool) (*imagef.Image3F, error) {
	if err := im.validate(); err != nil {
		return nil, fmt.Errorf("convert to planar: %w", err)
	}

	out := imagef.NewImage3F(im.Width, im.Height)
	spp := im.SamplesPerPixel()
	stride := im.Stride()

	pool.Run(im.Height, func(y int) {
		src := im.Pix[y*stride : (y+1)*stride]
		rows := [3][]float32{out.PlaneRow(0, y), out.PlaneRow(1, y), out.PlaneRow(2, y)}
		switch im.Format {
		case FormatU8:
			convertRowU8(src, rows, im.Width, im.NumColorChannels, spp)
		case FormatU16:
			convertRowU16(src, rows, im.Width, im.NumColorChannels, spp)
		case FormatF32:
			convertRowF32(src, rows, im.Width, im.NumColorChannels, spp)
		}
	})

	return out, nil
}

func convertRowU8(src []byte, rows [3][]float32, width, channels, spp int) {
	const scale = 1.0 / 255
	for x := 0; x < width; x++ {
		i := x * spp
		if channels == 1 {
			v := float32(src[i]) * scale
			rows[0][x], rows[1][x], rows[2][x] = v, v, v
			continue
		}
		rows[0][x] = float32(src[i+0]) * scale
		rows[1][x] = float32(src[i+1]) * scale
		rows[2][x] = float32(src[i+2]) * scale
	}
}

func convertRowU16(src []byte, rows [3][]float32, width, channels, spp int) {
	const scale = 1.0 / 65535
	for x := 0; x < width; x++ {
		i := x * spp * 2
		if channels == 1 {
			v := float32(binary.LittleEndian.Uint16(src[i:])) * scale
			rows[0][x], rows[1][x], rows[2][x] = v, v, v
			continue
		}
		rows[0][x] = float32(binary.LittleEndian.Uint16(src[i:])) * scale
		rows[1][x] = float32(binary.LittleEndian.Uint16(src[i+2:])) * scale
		rows[2][x] = float32(binary.LittleEndian.Uint16(src[i+4:])) * scale
	}
}

func convertRowF32(src []byte, rows [3][]float32, width, channels, spp int) {
	for x := 0; x < width; x++ {
		i := x * spp * 4
		if channels == 1 {
			v := math.Float32frombits(binary.LittleEndian.Uint32(src[i:]))
			rows[0][x], rows[1][x], rows[2][x] = v, v, v
			continue
		}
		rows[0][x] = math.Float32frombits(binary.LittleEndian.Uint32(src[i:]))
		rows[1][x] = math.Float32frombits(binary.LittleEndian.Uint32(src[i+4:]))
		rows[2][x] = math.Float32frombits(binary.LittleEndian.Uint32(src[i+8:]))
	}
}
