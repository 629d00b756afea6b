package imagef

import "testing"

func TestImageF_RowsShareStorage(t *testing.T) {
	m := NewImageF(4, 3)
	m.Row(1)[2] = 7

	if got := m.Pix[1*4+2]; got != 7 {
		t.Errorf("backing store = %v, want 7", got)
	}
	if m.PixelCount() != 12 {
		t.Errorf("PixelCount = %d, want 12", m.PixelCount())
	}
}

func TestImageF_Empty(t *testing.T) {
	var nilMap *ImageF
	if !nilMap.Empty() {
		t.Error("nil map must be empty")
	}
	if !NewImageF(0, 5).Empty() || !NewImageF(5, 0).Empty() {
		t.Error("zero-dimension maps must be empty")
	}
	if NewImageF(1, 1).Empty() {
		t.Error("1x1 map must not be empty")
	}
}

func TestClone_IsDeep(t *testing.T) {
	m := NewImageF(2, 2)
	m.Pix[0] = 1

	c := m.Clone()
	c.Pix[0] = 2
	if m.Pix[0] != 1 {
		t.Error("clone shares storage with original")
	}

	img := NewImage3F(2, 2)
	img.PlaneRow(1, 0)[0] = 3
	c3 := img.Clone()
	c3.PlaneRow(1, 0)[0] = 4
	if img.PlaneRow(1, 0)[0] != 3 {
		t.Error("Image3F clone shares storage with original")
	}
}

func TestImage3F_SameSize(t *testing.T) {
	a := NewImage3F(3, 4)
	if !a.SameSize(NewImage3F(3, 4)) {
		t.Error("identical dimensions must compare equal")
	}
	if a.SameSize(NewImage3F(4, 3)) {
		t.Error("transposed dimensions must not compare equal")
	}
}
