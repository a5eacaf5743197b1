package analyzer

import "image"

// ImageAnalyzer evaluates decoded images. Implementations hold no mutable
// state and are safe for concurrent use. Errors are AppErrors of type
// numeric_fault or precondition_violation.
type ImageAnalyzer interface {
	AnalyzeDarkness(img image.Image) (DarknessResult, error)
	AnalyzeBlur(img image.Image) (BlurResult, error)
	AnalyzeSimilarity(source, target image.Image) (SimilarityResult, error)
	AnalyzeMemo(img image.Image, metric CompareMetric, board BoardType, baselines []*Histogram) (MemoResult, error)
	PerceptualDistance(a, b image.Image) (int, error)
	Thresholds() Thresholds
}
