package analyzer

import (
	"image"
	"image/color"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	apperrors "github.com/anime-shed/photo-curator-go/internal/errors"
)

const (
	// HistogramBinsPerChannel splits each of R, G and B into equal bins over [0, 256).
	HistogramBinsPerChannel = 8
	// HistogramSize is the total number of bins in the 3-D RGB grid.
	HistogramSize = HistogramBinsPerChannel * HistogramBinsPerChannel * HistogramBinsPerChannel

	binShift = 5 // 256 / 8 == 1 << 5

	chiEpsilon = 2.220446049250313e-16
)

// Histogram is an 8x8x8 RGB color histogram stored flat with index
// r*64 + g*8 + b. Histograms produced by ComputeHistogram have unit L2 norm.
type Histogram struct {
	Bins []float64 `json:"bins"`
}

// NewHistogram wraps bins, which must hold exactly HistogramSize values.
func NewHistogram(bins []float64) (*Histogram, error) {
	if len(bins) != HistogramSize {
		return nil, apperrors.NewPreconditionError("histogram must have 512 bins", nil)
	}
	return &Histogram{Bins: bins}, nil
}

// ComputeHistogram bins every pixel of img (no resizing or cropping) and
// normalizes the result to unit L2 norm.
func ComputeHistogram(img image.Image) (*Histogram, error) {
	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, apperrors.NewNumericError("cannot build histogram of an empty image", nil)
	}

	bins := make([]float64, HistogramSize)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			idx := int(c.R>>binShift)*HistogramBinsPerChannel*HistogramBinsPerChannel +
				int(c.G>>binShift)*HistogramBinsPerChannel +
				int(c.B>>binShift)
			bins[idx]++
		}
	}

	h := &Histogram{Bins: bins}
	if err := h.Normalize(); err != nil {
		return nil, err
	}
	return h, nil
}

// Normalize scales the bins in place to unit L2 norm.
func (h *Histogram) Normalize() error {
	norm := floats.Norm(h.Bins, 2)
	if norm == 0 || math.IsNaN(norm) || math.IsInf(norm, 0) {
		return apperrors.NewNumericError("histogram has no finite L2 norm", nil)
	}
	floats.Scale(1/norm, h.Bins)
	return nil
}

// Norm returns the L2 norm of the bins.
func (h *Histogram) Norm() float64 {
	return floats.Norm(h.Bins, 2)
}

// correlation is Pearson's coefficient between the two bin vectors.
func correlation(a, b *Histogram) (float64, error) {
	r := stat.Correlation(a.Bins, b.Bins, nil)
	if math.IsNaN(r) {
		return 0, apperrors.NewNumericError("correlation undefined for constant histogram", nil)
	}
	return r, nil
}

// chiSquared is sum((a-b)^2 / a) over bins where the baseline a is non-zero.
func chiSquared(a, b *Histogram) float64 {
	var sum float64
	for i, av := range a.Bins {
		if math.Abs(av) > chiEpsilon {
			d := av - b.Bins[i]
			sum += d * d / av
		}
	}
	return sum
}

// intersection is sum(min(a, b)).
func intersection(a, b *Histogram) float64 {
	var sum float64
	for i, av := range a.Bins {
		sum += math.Min(av, b.Bins[i])
	}
	return sum
}

// hellinger is the Bhattacharyya-based distance
// sqrt(1 - sum(sqrt(a*b)) / sqrt(sum(a) * sum(b))), clamped at zero.
func hellinger(a, b *Histogram) float64 {
	sumA, sumB := floats.Sum(a.Bins), floats.Sum(b.Bins)
	var coeff float64
	for i, av := range a.Bins {
		coeff += math.Sqrt(av * b.Bins[i])
	}

	denom := math.Sqrt(sumA * sumB)
	if denom == 0 {
		return 1
	}
	return math.Sqrt(math.Max(1-coeff/denom, 0))
}
