package imagef

// Planar float32 image types used throughout the metric pipeline.
//
// ImageF is a single-channel row-major grid; Image3F bundles three planes of
// identical size. Planes are stored as flat slices, one row after another,
// so row access is a cheap re-slice and parallel row writers never overlap.

// ImageF is a single-channel float32 image.
type ImageF struct {
	Width  int
	Height int
	Pix    []float32
}

// NewImageF allocates a zeroed Width x Height plane.
func NewImageF(width, height int) *ImageF {
	return &ImageF{
		Width:  width,
		Height: height,
		Pix:    make([]float32, width*height),
	}
}

// Row returns the pixels of row y as a sub-slice (shared storage).
func (m *ImageF) Row(y int) []float32 {
	return m.Pix[y*m.Width : (y+1)*m.Width]
}

// PixelCount returns Width*Height.
func (m *ImageF) PixelCount() int {
	return m.Width * m.Height
}

// Empty reports whether either dimension is zero.
func (m *ImageF) Empty() bool {
	return m == nil || m.Width == 0 || m.Height == 0
}

// Clone returns a deep copy.
func (m *ImageF) Clone() *ImageF {
	out := NewImageF(m.Width, m.Height)
	copy(out.Pix, m.Pix)
	return out
}

// Image3F is a three-plane float32 image. All planes share dimensions.
type Image3F struct {
	Width  int
	Height int
	Planes [3]*ImageF
}

// NewImage3F allocates three zeroed planes.
func NewImage3F(width, height int) *Image3F {
	img := &Image3F{Width: width, Height: height}
	for c := range img.Planes {
		img.Planes[c] = NewImageF(width, height)
	}
	return img
}

// PlaneRow returns row y of plane c.
func (m *Image3F) PlaneRow(c, y int) []float32 {
	return m.Planes[c].Row(y)
}

// PixelCount returns Width*Height.
func (m *Image3F) PixelCount() int {
	return m.Width * m.Height
}

// Clone returns a deep copy of all three planes.
func (m *Image3F) Clone() *Image3F {
	out := &Image3F{Width: m.Width, Height: m.Height}
	for c := range m.Planes {
		out.Planes[c] = m.Planes[c].Clone()
	}
	return out
}

// SameSize reports whether two images have identical dimensions.
func (m *Image3F) SameSize(o *Image3F) bool {
	return m.Width == o.Width && m.Height == o.Height
}
