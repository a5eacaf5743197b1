package analyzer

import (
	"image"
	"image/color"
	"math"

	apperrors "github.com/anime-shed/photo-curator-go/internal/errors"
)

// Luminance returns the perceptual luminance of an 8-bit RGB sample,
// rounded half-up to the nearest integer.
func Luminance(r, g, b uint8) int {
	return int(math.Floor(0.299*float64(r) + 0.5876*float64(g) + 0.114*float64(b) + 0.5))
}

// MeasureDarkness counts the pixels whose luminance is strictly below
// tolerance. Samples are read un-premultiplied so translucent pixels are
// judged by their color, not their coverage.
func MeasureDarkness(img image.Image, tolerance int) (DarknessResult, error) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	total := width * height
	if total == 0 {
		return DarknessResult{}, apperrors.NewNumericError("cannot measure darkness of an empty image", nil)
	}

	dark := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if Luminance(c.R, c.G, c.B) < tolerance {
				dark++
			}
		}
	}

	return DarknessResult{
		DarkPixels:   dark,
		TotalPixels:  total,
		DarkFraction: float64(dark) / float64(total),
	}, nil
}
