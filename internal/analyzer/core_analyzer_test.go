package analyzer

import (
	"image"
	"image/color"
	"math/rand"
	"testing"

	apperrors "github.com/anime-shed/photo-curator-go/internal/errors"
)

// createTestImage creates a uniformly filled test image
func createTestImage(width, height int, fillColor color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, fillColor)
		}
	}
	return img
}

// createCheckerboard creates a black and white checkerboard with square cells
func createCheckerboard(width, height, cell int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.RGBA{0, 0, 0, 255}
			if (x/cell+y/cell)%2 == 0 {
				c = color.RGBA{255, 255, 255, 255}
			}
			img.Set(x, y, c)
		}
	}
	return img
}

// createNoiseImage creates a seeded random color image
func createNoiseImage(seed int64, width, height int) *image.RGBA {
	rng := rand.New(rand.NewSource(seed))
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = uint8(rng.Intn(256))
		img.Pix[i+1] = uint8(rng.Intn(256))
		img.Pix[i+2] = uint8(rng.Intn(256))
		img.Pix[i+3] = 255
	}
	return img
}

func TestAnalyzeDarkness(t *testing.T) {
	a := NewImageAnalyzer(DefaultOptions())

	testCases := []struct {
		name     string
		img      image.Image
		wantDark bool
	}{
		{"all black", createTestImage(640, 480, color.RGBA{0, 0, 0, 255}), true},
		{"all white", createTestImage(640, 480, color.RGBA{255, 255, 255, 255}), false},
		{"just below tolerance", createTestImage(100, 100, color.RGBA{119, 119, 119, 255}), true},
		{"at tolerance", createTestImage(100, 100, color.RGBA{121, 121, 121, 255}), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := a.AnalyzeDarkness(tc.img)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if result.Dark != tc.wantDark {
				t.Errorf("Expected dark=%v, got %v (fraction %f)", tc.wantDark, result.Dark, result.DarkFraction)
			}
			if result.TotalPixels > 50*50 {
				t.Errorf("Expected image bounded to 50px before counting, got %d pixels", result.TotalPixels)
			}
		})
	}
}

func TestAnalyzeDarkness_Monotonic(t *testing.T) {
	a := NewImageAnalyzer(DefaultOptions())

	// Paint an increasing number of black rows onto a white image.
	previous := -1.0
	for rows := 0; rows <= 50; rows += 10 {
		img := createTestImage(50, 50, color.RGBA{255, 255, 255, 255})
		for y := 0; y < rows; y++ {
			for x := 0; x < 50; x++ {
				img.Set(x, y, color.RGBA{0, 0, 0, 255})
			}
		}

		result, err := a.AnalyzeDarkness(img)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if result.DarkFraction < previous {
			t.Errorf("Dark fraction decreased from %f to %f at %d rows", previous, result.DarkFraction, rows)
		}
		previous = result.DarkFraction
	}
	if previous != 1 {
		t.Errorf("Expected fully black image to have fraction 1, got %f", previous)
	}
}

func TestAnalyzeBlur(t *testing.T) {
	a := NewImageAnalyzer(DefaultOptions())

	t.Run("uniform image is blurry", func(t *testing.T) {
		result, err := a.AnalyzeBlur(createTestImage(800, 600, color.RGBA{200, 200, 200, 255}))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if !result.Blurry {
			t.Errorf("Expected flat image to be blurry, max response %d", result.MaxResponse)
		}
		if result.MaxResponse != 0 {
			t.Errorf("Expected zero edge response, got %d", result.MaxResponse)
		}
		// 800x600 bounds to 500x375, crop 0.5 of 375.
		if result.Width != 188 || result.Height != 188 {
			t.Errorf("Expected 188x188 crop, got %dx%d", result.Width, result.Height)
		}
	})

	t.Run("checkerboard is sharp", func(t *testing.T) {
		result, err := a.AnalyzeBlur(createCheckerboard(200, 200, 10))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if result.Blurry {
			t.Errorf("Expected checkerboard to be sharp, max response %d", result.MaxResponse)
		}
		if result.LaplacianVariance <= 0 {
			t.Errorf("Expected positive Laplacian variance, got %f", result.LaplacianVariance)
		}
	})

	t.Run("configurable threshold", func(t *testing.T) {
		strict := NewImageAnalyzer(DefaultOptions().WithThresholds(DefaultThresholds().WithBlurThreshold(256)))
		result, err := strict.AnalyzeBlur(createCheckerboard(200, 200, 10))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if !result.Blurry {
			t.Error("Expected saturated response to stay below an unreachable threshold")
		}
	})
}

func TestAnalyzeSimilarity(t *testing.T) {
	a := NewImageAnalyzer(DefaultOptions())

	t.Run("identical images", func(t *testing.T) {
		img := createNoiseImage(42, 400, 300)
		result, err := a.AnalyzeSimilarity(img, img)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if !result.Similar {
			t.Errorf("Expected identical images to be similar, sum %d", result.SumDistance)
		}
		if result.SumDistance != 0 {
			t.Errorf("Expected zero summed distance, got %d", result.SumDistance)
		}
		if result.Window != 11 {
			t.Errorf("Expected window 11, got %d", result.Window)
		}
	})

	t.Run("unrelated noise", func(t *testing.T) {
		result, err := a.AnalyzeSimilarity(createNoiseImage(1, 400, 300), createNoiseImage(2, 400, 300))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if result.Similar {
			t.Errorf("Expected unrelated noise to differ, sum %d", result.SumDistance)
		}
	})

	t.Run("no keypoints means not similar", func(t *testing.T) {
		flat := createTestImage(300, 300, color.RGBA{90, 90, 90, 255})
		result, err := a.AnalyzeSimilarity(flat, flat)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if result.Similar || result.Matches != 0 {
			t.Errorf("Expected empty match list to be not similar, got %+v", result)
		}
	})
}

func TestAnalyzeMemo(t *testing.T) {
	a := NewImageAnalyzer(DefaultOptions())
	img := createNoiseImage(9, 120, 80)

	baseline, err := ComputeHistogram(img)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	for _, board := range []BoardType{WhiteBoard, DarkBoard} {
		t.Run("self correlation "+board.String(), func(t *testing.T) {
			result, err := a.AnalyzeMemo(img, Correlation, board, []*Histogram{baseline})
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if !result.Memo {
				t.Errorf("Expected memo verdict, score %f threshold %f", result.AverageScore, result.Threshold)
			}
			if result.AverageScore < 0.999 {
				t.Errorf("Expected score close to 1, got %f", result.AverageScore)
			}
		})
	}

	t.Run("empty baselines", func(t *testing.T) {
		_, err := a.AnalyzeMemo(img, Correlation, WhiteBoard, nil)
		if !apperrors.IsType(err, apperrors.ErrorTypePrecondition) {
			t.Errorf("Expected precondition violation, got %v", err)
		}
	})
}

func TestAnalyzer_EmptyImage(t *testing.T) {
	a := NewImageAnalyzer(DefaultOptions())
	empty := image.NewRGBA(image.Rectangle{})

	if _, err := a.AnalyzeDarkness(empty); !apperrors.IsType(err, apperrors.ErrorTypeNumeric) {
		t.Errorf("Expected numeric fault for darkness, got %v", err)
	}
	if _, err := a.AnalyzeBlur(nil); !apperrors.IsType(err, apperrors.ErrorTypeNumeric) {
		t.Errorf("Expected numeric fault for blur, got %v", err)
	}
	if _, err := a.AnalyzeSimilarity(empty, empty); !apperrors.IsType(err, apperrors.ErrorTypeNumeric) {
		t.Errorf("Expected numeric fault for similarity, got %v", err)
	}
}

// panicImage panics on every pixel read.
type panicImage struct{ image.RGBA }

func (p *panicImage) At(x, y int) color.Color { panic("pixel out of range") }

func TestAnalyzer_RecoversPanics(t *testing.T) {
	a := NewImageAnalyzer(DefaultOptions())
	img := &panicImage{RGBA: *image.NewRGBA(image.Rect(0, 0, 10, 10))}

	_, err := a.AnalyzeDarkness(img)
	if !apperrors.IsType(err, apperrors.ErrorTypeNumeric) {
		t.Errorf("Expected recovered panic as numeric fault, got %v", err)
	}
}

func TestPerceptualDistance(t *testing.T) {
	a := NewImageAnalyzer(DefaultOptions())
	img := createNoiseImage(3, 64, 64)

	d, err := a.PerceptualDistance(img, img)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if d != 0 {
		t.Errorf("Expected distance 0 for identical images, got %d", d)
	}

	if _, err := a.PerceptualDistance(img, nil); err == nil {
		t.Error("Expected error for nil image")
	}
}
