package analyzer

import (
	"image"

	"gonum.org/v1/gonum/stat"

	apperrors "github.com/anime-shed/photo-curator-go/internal/errors"
)

// laplacianAt evaluates the 4-neighbour Laplacian kernel
// [0 1 0; 1 -4 1; 0 1 0] at (x, y), mirroring borders without repeating the
// edge pixel.
func laplacianAt(gray *image.Gray, x, y, width, height int) int {
	center := int(gray.Pix[y*gray.Stride+x])
	top := int(gray.Pix[reflect101(y-1, height)*gray.Stride+x])
	bottom := int(gray.Pix[reflect101(y+1, height)*gray.Stride+x])
	left := int(gray.Pix[y*gray.Stride+reflect101(x-1, width)])
	right := int(gray.Pix[y*gray.Stride+reflect101(x+1, width)])
	return top + bottom + left + right - 4*center
}

func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	if i < 0 {
		return -i
	}
	if i >= n {
		return 2*n - i - 2
	}
	return i
}

// LaplacianResponse filters gray with the Laplacian operator and saturates
// the result to the unsigned 8-bit range. The output has the same size.
func LaplacianResponse(gray *image.Gray) *image.Gray {
	width, height := gray.Rect.Dx(), gray.Rect.Dy()
	src := gray
	if gray.Rect.Min != (image.Point{}) {
		src = ToGray(gray)
	}

	out := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			out.Pix[y*out.Stride+x] = saturateUint8(laplacianAt(src, x, y, width, height))
		}
	}
	return out
}

// MaxResponse returns the peak value of an edge-response buffer.
func MaxResponse(response *image.Gray) (int, error) {
	width, height := response.Rect.Dx(), response.Rect.Dy()
	if width == 0 || height == 0 {
		return 0, apperrors.NewNumericError("edge response buffer is empty", nil)
	}

	peak := 0
	for y := 0; y < height; y++ {
		row := response.Pix[y*response.Stride : y*response.Stride+width]
		for _, v := range row {
			if int(v) > peak {
				peak = int(v)
			}
		}
	}
	return peak, nil
}

// LaplacianVariance returns the variance of the unsaturated Laplacian over
// the whole buffer, a secondary sharpness measure reported alongside the peak.
func LaplacianVariance(gray *image.Gray) float64 {
	width, height := gray.Rect.Dx(), gray.Rect.Dy()
	if width == 0 || height == 0 {
		return 0
	}
	src := gray
	if gray.Rect.Min != (image.Point{}) {
		src = ToGray(gray)
	}

	data := make([]float64, 0, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			data = append(data, float64(laplacianAt(src, x, y, width, height)))
		}
	}
	if len(data) < 2 {
		return 0
	}
	return stat.Variance(data, nil)
}

func saturateUint8(v int) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	default:
		return uint8(v)
	}
}
