package analyzer

// Thresholds holds the numeric constants used by every classification.
// A Thresholds value is copied into each analyzer and never mutated afterwards,
// so it can be shared freely between goroutines.
type Thresholds struct {
	// Darkness
	DarkBound     int     // images are downscaled to this bound before counting
	DarkTolerance int     // luminance strictly below this counts as dark
	DarkFraction  float64 // image is dark when the dark-pixel fraction exceeds this

	// Blur
	BlurBound        int     // resize bound before cropping
	BlurCropFraction float64 // center square crop fraction
	BlurMaxResponse  int     // image is blurry when the peak Laplacian response is below this

	// Similarity
	SimilarBound       int // resize bound for both images
	SimilarMatchWindow int // number of lowest-distance matches summed
	SimilarMaxDistance int // pair is similar when the summed distance is below this

	// Memo boards
	MemoDarkBoard  float64
	MemoWhiteBoard float64

	// Batch grouping
	PerceptualDistance int // dHash distance at or below which two photos become a candidate pair
}

// DefaultThresholds returns the tuned production thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		DarkBound:          50,
		DarkTolerance:      120,
		DarkFraction:       0.8,
		BlurBound:          500,
		BlurCropFraction:   0.5,
		BlurMaxResponse:    110,
		SimilarBound:       500,
		SimilarMatchWindow: 11,
		SimilarMaxDistance: 200,
		MemoDarkBoard:      0.55,
		MemoWhiteBoard:     0.68,
		PerceptualDistance: 10,
	}
}

// WithMatchWindow returns a copy with a different similarity match window.
func (t Thresholds) WithMatchWindow(window int) Thresholds {
	t.SimilarMatchWindow = window
	return t
}

// WithBlurThreshold returns a copy with a different peak-response threshold.
func (t Thresholds) WithBlurThreshold(maxResponse int) Thresholds {
	t.BlurMaxResponse = maxResponse
	return t
}

// WithDarkness returns a copy with different darkness parameters.
func (t Thresholds) WithDarkness(tolerance int, fraction float64) Thresholds {
	t.DarkTolerance = tolerance
	t.DarkFraction = fraction
	return t
}
