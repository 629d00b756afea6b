package packed

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/cwbudde/imagefidelity/internal/colorspace"
	"github.com/cwbudde/imagefidelity/internal/worker"
)

func TestSampleRoundTrip(t *testing.T) {
	for _, format := range []SampleFormat{FormatU8, FormatU16, FormatF32} {
		im := New(3, 2, 3, format, false)
		im.SetSample(1, 1, 2, 0.5)
		got := im.Sample(1, 1, 2)

		tol := float32(0)
		switch format {
		case FormatU8:
			tol = 1.0 / 255
		case FormatU16:
			tol = 1.0 / 65535
		}
		if diff := float32(math.Abs(float64(got - 0.5))); diff > tol {
			t.Errorf("%v: round trip = %v, want 0.5 +/- %v", format, got, tol)
		}
	}
}

func TestFromImage_Gray(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 4, 3))
	src.SetGray(2, 1, color.Gray{Y: 128})

	im := FromImage(src)
	if !im.IsGray() || im.HasAlpha {
		t.Fatalf("gray conversion produced %d channels, alpha=%v", im.NumColorChannels, im.HasAlpha)
	}
	if got := im.Sample(2, 1, 0); math.Abs(float64(got)-128.0/255) > 1e-6 {
		t.Errorf("sample = %v, want %v", got, 128.0/255)
	}
}

func TestFromImage_NRGBA(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	src.SetNRGBA(0, 0, color.NRGBA{R: 255, G: 128, B: 0, A: 255})
	src.SetNRGBA(1, 1, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	im := FromImage(src)
	if im.NumColorChannels != 3 {
		t.Fatalf("channels = %d, want 3", im.NumColorChannels)
	}
	if got := im.Sample(0, 0, 0); got != 1 {
		t.Errorf("red sample = %v, want 1", got)
	}
	if got := im.Sample(1, 1, 2); math.Abs(float64(got)-30.0/255) > 1e-6 {
		t.Errorf("blue sample = %v, want %v", got, 30.0/255)
	}
}

func TestConvertToPlanar_GrayReplicates(t *testing.T) {
	im := New(4, 4, 1, FormatU8, false)
	im.SetSample(3, 2, 0, 1.0)

	img, err := ConvertToPlanar(im, nil)
	if err != nil {
		t.Fatalf("ConvertToPlanar failed: %v", err)
	}
	for c := 0; c < 3; c++ {
		if got := img.PlaneRow(c, 2)[3]; got != 1 {
			t.Errorf("plane %d = %v, want 1", c, got)
		}
		if got := img.PlaneRow(c, 0)[0]; got != 0 {
			t.Errorf("plane %d background = %v, want 0", c, got)
		}
	}
}

func TestConvertToPlanar_DropsAlpha(t *testing.T) {
	im := New(2, 2, 3, FormatU16, true)
	im.SetSample(0, 0, 0, 0.25)
	im.SetSample(0, 0, 3, 0.5) // alpha, must not leak into planes

	img, err := ConvertToPlanar(im, nil)
	if err != nil {
		t.Fatalf("ConvertToPlanar failed: %v", err)
	}
	if got := img.PlaneRow(0, 0)[0]; math.Abs(float64(got)-0.25) > 1e-4 {
		t.Errorf("red = %v, want 0.25", got)
	}
	if got := img.PlaneRow(1, 0)[0]; got != 0 {
		t.Errorf("green = %v, want 0", got)
	}
}

func TestConvertToPlanar_ParallelMatchesSerial(t *testing.T) {
	im := New(31, 17, 3, FormatU8, false)
	for y := 0; y < 17; y++ {
		for x := 0; x < 31; x++ {
			im.SetSample(x, y, 0, float32(x)/31)
			im.SetSample(x, y, 1, float32(y)/17)
			im.SetSample(x, y, 2, 0.5)
		}
	}

	serial, err := ConvertToPlanar(im, nil)
	if err != nil {
		t.Fatalf("serial conversion failed: %v", err)
	}
	parallel, err := ConvertToPlanar(im, worker.New(4))
	if err != nil {
		t.Fatalf("parallel conversion failed: %v", err)
	}
	for c := 0; c < 3; c++ {
		for i := range serial.Planes[c].Pix {
			if serial.Planes[c].Pix[i] != parallel.Planes[c].Pix[i] {
				t.Fatalf("plane %d pixel %d diverges", c, i)
			}
		}
	}
}

func TestConvertToPlanar_RejectsBadLayout(t *testing.T) {
	im := New(4, 4, 2, FormatU8, false)
	if _, err := ConvertToPlanar(im, nil); err == nil {
		t.Error("expected error for 2-channel layout")
	}

	short := New(4, 4, 3, FormatU8, false)
	short.Pix = short.Pix[:10]
	if _, err := ConvertToPlanar(short, nil); err == nil {
		t.Error("expected error for truncated pixel buffer")
	}
}

func TestGetColorEncodingDefaults(t *testing.T) {
	gray := New(2, 2, 1, FormatU8, false)
	if enc := GetColorEncoding(gray); !enc.Equal(colorspace.SRGB(true)) {
		t.Errorf("gray default encoding = %v", enc)
	}

	rgb := New(2, 2, 3, FormatU8, false)
	if enc := GetColorEncoding(rgb); !enc.Equal(colorspace.SRGB(false)) {
		t.Errorf("rgb default encoding = %v", enc)
	}

	linear := colorspace.LinearSRGB(false)
	rgb.Encoding = &linear
	if enc := GetColorEncoding(rgb); !enc.Equal(linear) {
		t.Errorf("explicit encoding not honored: %v", enc)
	}
}

func TestGetIntensityTargetDefaults(t *testing.T) {
	im := New(2, 2, 3, FormatU8, false)

	if got := GetIntensityTarget(im, colorspace.SRGB(false)); got != colorspace.DefaultIntensityTarget {
		t.Errorf("SDR default = %v, want %v", got, colorspace.DefaultIntensityTarget)
	}
	if got := GetIntensityTarget(im, colorspace.LinearSRGB(false)); got != colorspace.LinearIntensityTarget {
		t.Errorf("linear default = %v, want %v", got, colorspace.LinearIntensityTarget)
	}

	im.IntensityTarget = 4000
	if got := GetIntensityTarget(im, colorspace.SRGB(false)); got != 4000 {
		t.Errorf("explicit target = %v, want 4000", got)
	}
}
