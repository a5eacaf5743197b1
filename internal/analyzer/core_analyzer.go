package analyzer

import (
	"fmt"
	"image"

	apperrors "github.com/anime-shed/photo-curator-go/internal/errors"
	"github.com/anime-shed/photo-curator-go/internal/features"
)

// coreAnalyzer implements ImageAnalyzer over a read-only copy of its options.
type coreAnalyzer struct {
	thresholds Thresholds
	features   features.Options
}

// NewImageAnalyzer creates an analyzer using opts for every verdict.
func NewImageAnalyzer(opts AnalysisOptions) ImageAnalyzer {
	return &coreAnalyzer{
		thresholds: opts.Thresholds,
		features:   opts.Features,
	}
}

// Thresholds returns a copy of the thresholds in use.
func (ca *coreAnalyzer) Thresholds() Thresholds {
	return ca.thresholds
}

// AnalyzeDarkness downscales img to the dark bound and reports the fraction
// of pixels below the luminance tolerance.
func (ca *coreAnalyzer) AnalyzeDarkness(img image.Image) (result DarknessResult, err error) {
	defer recoverFault("darkness", &err)
	if err := checkImage(img); err != nil {
		return DarknessResult{}, err
	}

	small := ResizeToBound(img, ca.thresholds.DarkBound)
	result, err = MeasureDarkness(small, ca.thresholds.DarkTolerance)
	if err != nil {
		return DarknessResult{}, err
	}
	result.Dark = result.DarkFraction > ca.thresholds.DarkFraction
	return result, nil
}

// AnalyzeBlur measures the peak Laplacian response of the centre crop. It
// does not check darkness; callers sequence that.
func (ca *coreAnalyzer) AnalyzeBlur(img image.Image) (result BlurResult, err error) {
	defer recoverFault("blur", &err)
	if err := checkImage(img); err != nil {
		return BlurResult{}, err
	}

	cropped := CenterCropSquare(ResizeToBound(img, ca.thresholds.BlurBound), ca.thresholds.BlurCropFraction)
	gray := ToGray(cropped)

	peak, err := MaxResponse(LaplacianResponse(gray))
	if err != nil {
		return BlurResult{}, err
	}
	return BlurResult{
		Blurry:            peak < ca.thresholds.BlurMaxResponse,
		MaxResponse:       peak,
		LaplacianVariance: LaplacianVariance(gray),
		Width:             gray.Rect.Dx(),
		Height:            gray.Rect.Dy(),
	}, nil
}

// AnalyzeSimilarity runs keypoint matching between source and target. It
// does not check darkness; callers sequence that.
func (ca *coreAnalyzer) AnalyzeSimilarity(source, target image.Image) (result SimilarityResult, err error) {
	defer recoverFault("similarity", &err)
	if err := checkImage(source); err != nil {
		return SimilarityResult{}, err
	}
	if err := checkImage(target); err != nil {
		return SimilarityResult{}, err
	}
	return MeasureSimilarity(source, target, ca.thresholds, ca.features), nil
}

// AnalyzeMemo histograms the full image and compares it with baselines.
func (ca *coreAnalyzer) AnalyzeMemo(img image.Image, metric CompareMetric, board BoardType, baselines []*Histogram) (result MemoResult, err error) {
	defer recoverFault("memo", &err)
	// Preconditions are checked before touching pixels so a bad call fails
	// the same way for every image.
	if err := CheckMemoPreconditions(metric, board, baselines); err != nil {
		return MemoResult{}, err
	}
	if err := checkImage(img); err != nil {
		return MemoResult{}, err
	}

	candidate, err := ComputeHistogram(img)
	if err != nil {
		return MemoResult{}, err
	}
	return ClassifyMemo(candidate, metric, board, baselines, ca.thresholds)
}

// PerceptualDistance returns the dHash distance between a and b.
func (ca *coreAnalyzer) PerceptualDistance(a, b image.Image) (distance int, err error) {
	defer recoverFault("perceptual_distance", &err)
	ha, err := PerceptualHash(a)
	if err != nil {
		return 0, err
	}
	hb, err := PerceptualHash(b)
	if err != nil {
		return 0, err
	}
	return HashDistance(ha, hb)
}

func checkImage(img image.Image) error {
	if img == nil {
		return apperrors.NewNumericError("image is nil", nil)
	}
	if img.Bounds().Empty() {
		return apperrors.NewNumericError("image has no pixels", nil)
	}
	return nil
}

// recoverFault converts a panic inside pixel code into a numeric fault.
func recoverFault(op string, err *error) {
	if r := recover(); r != nil {
		*err = apperrors.NewNumericError(fmt.Sprintf("%s analysis panicked: %v", op, r), nil)
	}
}
