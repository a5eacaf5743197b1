package analyzer

import (
	"image"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"
)

// ResizeToBound scales img down so that its larger side equals maxDimension,
// preserving the aspect ratio with bilinear resampling. Images already within
// the bound are returned as-is; the function never upscales.
func ResizeToBound(img image.Image, maxDimension int) image.Image {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	if maxDimension <= 0 || (width <= maxDimension && height <= maxDimension) {
		return img
	}

	var newWidth, newHeight int
	if width < height {
		newHeight = maxDimension
		newWidth = width * maxDimension / height
	} else {
		newWidth = maxDimension
		newHeight = height * maxDimension / width
	}
	if newWidth < 1 {
		newWidth = 1
	}
	if newHeight < 1 {
		newHeight = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), img, bounds, xdraw.Src, nil)
	return dst
}

// CenterCropSquare cuts the centered square whose side is
// round(min(width, height) * fraction). A fraction outside [0, 1] leaves the
// image untouched.
func CenterCropSquare(img image.Image, fraction float64) image.Image {
	if math.IsNaN(fraction) || fraction < 0 || fraction > 1 {
		return img
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	side := int(math.Floor(float64(min(width, height))*fraction + 0.5))
	x := bounds.Min.X + (width-side)/2
	y := bounds.Min.Y + (height-side)/2

	return imaging.Crop(img, image.Rect(x, y, x+side, y+side))
}

// ToGray converts img to an 8-bit greyscale buffer anchored at the origin.
func ToGray(img image.Image) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(gray, gray.Bounds(), img, bounds.Min, draw.Src)
	return gray
}
