package analyzer

import (
	"image"
	"image/color"
	"math"
	"testing"
)

func TestResizeToBound(t *testing.T) {
	testCases := []struct {
		name          string
		width, height int
		bound         int
		wantW, wantH  int
	}{
		{"within bound", 40, 30, 50, 40, 30},
		{"exactly at bound", 50, 50, 50, 50, 50},
		{"landscape", 1000, 500, 500, 500, 250},
		{"portrait", 300, 1200, 500, 125, 500},
		{"truncates", 640, 479, 50, 50, 37},
		{"thin strip keeps one pixel", 5000, 2, 50, 50, 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			img := createTestImage(tc.width, tc.height, color.RGBA{10, 20, 30, 255})
			got := ResizeToBound(img, tc.bound)
			b := got.Bounds()
			if b.Dx() != tc.wantW || b.Dy() != tc.wantH {
				t.Errorf("Expected %dx%d, got %dx%d", tc.wantW, tc.wantH, b.Dx(), b.Dy())
			}
		})
	}
}

func TestResizeToBound_ReturnsSameBuffer(t *testing.T) {
	img := createTestImage(20, 20, color.RGBA{1, 2, 3, 255})
	if got := ResizeToBound(img, 50); got != image.Image(img) {
		t.Error("Expected the input buffer back when within bound")
	}
}

func TestResizeToBound_PreservesAspect(t *testing.T) {
	img := createTestImage(1234, 789, color.RGBA{0, 0, 0, 255})
	got := ResizeToBound(img, 500).Bounds()

	want := 789.0 * 500 / 1234
	if math.Abs(float64(got.Dy())-want) > 1 {
		t.Errorf("Expected height within one pixel of %f, got %d", want, got.Dy())
	}
	if got.Dx() != 500 {
		t.Errorf("Expected larger side 500, got %d", got.Dx())
	}
}

func TestCenterCropSquare(t *testing.T) {
	img := createTestImage(200, 100, color.RGBA{255, 0, 0, 255})

	testCases := []struct {
		name     string
		fraction float64
		wantSide int
		noop     bool
	}{
		{"half", 0.5, 50, false},
		{"full", 1, 100, false},
		{"zero", 0, 0, false},
		{"rounds half up", 0.125, 13, false},
		{"negative is noop", -0.1, 0, true},
		{"above one is noop", 1.5, 0, true},
		{"NaN is noop", math.NaN(), 0, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := CenterCropSquare(img, tc.fraction)
			if tc.noop {
				if got != image.Image(img) {
					t.Error("Expected input returned unchanged")
				}
				return
			}
			b := got.Bounds()
			if b.Dx() != tc.wantSide || b.Dy() != tc.wantSide {
				t.Errorf("Expected %dx%d square, got %dx%d", tc.wantSide, tc.wantSide, b.Dx(), b.Dy())
			}
		})
	}
}

func TestCenterCropSquare_Centered(t *testing.T) {
	// Left half black, right half white: a centred crop straddles the seam.
	img := createTestImage(100, 40, color.RGBA{255, 255, 255, 255})
	for y := 0; y < 40; y++ {
		for x := 0; x < 50; x++ {
			img.Set(x, y, color.RGBA{0, 0, 0, 255})
		}
	}

	crop := CenterCropSquare(img, 0.5)
	b := crop.Bounds()
	left := color.GrayModel.Convert(crop.At(b.Min.X, b.Min.Y)).(color.Gray).Y
	right := color.GrayModel.Convert(crop.At(b.Max.X-1, b.Min.Y)).(color.Gray).Y
	if left != 0 || right != 255 {
		t.Errorf("Expected crop to straddle the seam, got left=%d right=%d", left, right)
	}
}

func TestToGray(t *testing.T) {
	img := createTestImage(4, 3, color.RGBA{255, 255, 255, 255})
	sub := img.SubImage(image.Rect(1, 1, 3, 3))

	gray := ToGray(sub)
	if gray.Rect.Min != (image.Point{}) {
		t.Errorf("Expected origin-anchored buffer, got %v", gray.Rect)
	}
	if gray.Rect.Dx() != 2 || gray.Rect.Dy() != 2 {
		t.Errorf("Expected 2x2, got %v", gray.Rect)
	}
	for _, v := range gray.Pix {
		if v != 255 {
			t.Errorf("Expected white pixels, got %d", v)
		}
	}
}
