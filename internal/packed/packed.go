package packed

import (
	"encoding/binary"
	"fmt"
	"image"
	"math"

	"github.com/cwbudde/imagefidelity/internal/colorspace"
)

// Packed interleaved pixel buffers, the external input format of the metric
// pipeline. Samples are stored row-major and channel-interleaved, in one of
// three sample formats. Color metadata travels with the buffer; when absent,
// readers assume gamma-encoded sRGB.

// SampleFormat enumerates the supported per-sample storage formats.
type SampleFormat int

const (
	FormatU8 SampleFormat = iota
	FormatU16
	FormatF32
)

// BytesPerSample returns the storage width of one sample.
func (f SampleFormat) BytesPerSample() int {
	switch f {
	case FormatU8:
		return 1
	case FormatU16:
		return 2
	case FormatF32:
		return 4
	default:
		return 0
	}
}

func (f SampleFormat) String() string {
	switch f {
	case FormatU8:
		return "u8"
	case FormatU16:
		return "u16"
	case FormatF32:
		return "f32"
	default:
		return "unknown"
	}
}

// Image is a packed interleaved pixel buffer with color metadata.
type Image struct {
	Width  int
	Height int

	// NumColorChannels is 1 (gray) or 3 (RGB). An optional alpha channel
	// follows the color channels in each pixel.
	NumColorChannels int
	HasAlpha         bool

	Format SampleFormat
	Pix    []byte

	// Encoding is the source color encoding; nil means sRGB is assumed.
	Encoding *colorspace.Encoding

	// IntensityTarget is the peak luminance in nits; 0 means unset.
	IntensityTarget float32
}

// New allocates a zeroed packed image.
func New(width, height, numColorChannels int, format SampleFormat, hasAlpha bool) *Image {
	im := &Image{
		Width:            width,
		Height:           height,
		NumColorChannels: numColorChannels,
		HasAlpha:         hasAlpha,
		Format:           format,
	}
	im.Pix = make([]byte, height*im.Stride())
	return im
}

// SamplesPerPixel returns color channels plus alpha, if present.
func (im *Image) SamplesPerPixel() int {
	n := im.NumColorChannels
	if im.HasAlpha {
		n++
	}
	return n
}

// Stride returns the byte length of one row.
func (im *Image) Stride() int {
	return im.Width * im.SamplesPerPixel() * im.Format.BytesPerSample()
}

// IsGray reports whether the image has a single color channel.
func (im *Image) IsGray() bool {
	return im.NumColorChannels == 1
}

// sampleOffset returns the byte offset of sample c of pixel (x, y).
func (im *Image) sampleOffset(x, y, c int) int {
	return y*im.Stride() + (x*im.SamplesPerPixel()+c)*im.Format.BytesPerSample()
}

// Sample reads sample c of pixel (x, y) normalized to [0, 1] for integer
// formats; float samples are returned as stored.
func (im *Image) Sample(x, y, c int) float32 {
	i := im.sampleOffset(x, y, c)
	switch im.Format {
	case FormatU8:
		return float32(im.Pix[i]) / 255
	case FormatU16:
		return float32(binary.LittleEndian.Uint16(im.Pix[i:])) / 65535
	case FormatF32:
		return math.Float32frombits(binary.LittleEndian.Uint32(im.Pix[i:]))
	default:
		return 0
	}
}

// SetSample writes sample c of pixel (x, y) from a normalized value.
// Integer formats round and clamp; float stores verbatim.
func (im *Image) SetSample(x, y, c int, v float32) {
	i := im.sampleOffset(x, y, c)
	switch im.Format {
	case FormatU8:
		im.Pix[i] = uint8(clampRound(v, 255))
	case FormatU16:
		binary.LittleEndian.PutUint16(im.Pix[i:], uint16(clampRound(v, 65535)))
	case FormatF32:
		binary.LittleEndian.PutUint32(im.Pix[i:], math.Float32bits(v))
	}
}

func clampRound(v float32, scale float32) float32 {
	v = v*scale + 0.5
	if v < 0 {
		return 0
	}
	if v > scale {
		return scale
	}
	return v
}

// FromImage converts a stdlib image to a packed 8-bit buffer. Gray inputs
// keep a single color channel; everything else becomes RGB, with alpha
// preserved when the source carries one.
func FromImage(img image.Image) *Image {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if gray, ok := img.(*image.Gray); ok {
		out := New(width, height, 1, FormatU8, false)
		for y := 0; y < height; y++ {
			src := gray.Pix[y*gray.Stride : y*gray.Stride+width]
			copy(out.Pix[y*out.Stride():], src)
		}
		return out
	}

	hasAlpha := !opaque(img)
	out := New(width, height, 3, FormatU8, hasAlpha)
	spp := out.SamplesPerPixel()
	for y := 0; y < height; y++ {
		row := out.Pix[y*out.Stride():]
		for x := 0; x < width; x++ {
			r, g, b, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			i := x * spp
			row[i+0] = uint8(r >> 8)
			row[i+1] = uint8(g >> 8)
			row[i+2] = uint8(b >> 8)
			if hasAlpha {
				row[i+3] = uint8(a >> 8)
			}
		}
	}
	return out
}

func opaque(img image.Image) bool {
	type opaquer interface{ Opaque() bool }
	if o, ok := img.(opaquer); ok {
		return o.Opaque()
	}
	return false
}

// GetColorEncoding returns the image's source encoding, defaulting to
// gamma-encoded sRGB of the matching channel count when unset.
func GetColorEncoding(im *Image) colorspace.Encoding {
	if im.Encoding != nil {
		return *im.Encoding
	}
	return colorspace.SRGB(im.IsGray())
}

// GetIntensityTarget returns the image's peak luminance, falling back to the
// conventional defaults when the container does not say: 80 nits for linear
// encodings, 255 otherwise.
func GetIntensityTarget(im *Image, enc colorspace.Encoding) float32 {
	if im.IntensityTarget > 0 {
		return im.IntensityTarget
	}
	if enc.IsLinear() {
		return colorspace.LinearIntensityTarget
	}
	return colorspace.DefaultIntensityTarget
}

func (im *Image) validate() error {
	if im.NumColorChannels != 1 && im.NumColorChannels != 3 {
		return fmt.Errorf("unsupported channel count %d", im.NumColorChannels)
	}
	if im.Format.BytesPerSample() == 0 {
		return fmt.Errorf("unsupported sample format %d", int(im.Format))
	}
	if want := im.Height * im.Stride(); len(im.Pix) < want {
		return fmt.Errorf("pixel buffer too short: have %d bytes, want %d", len(im.Pix), want)
	}
	return nil
}
