package analyzer

// DarknessResult reports how much of a downscaled image falls below the
// luminance tolerance.
type DarknessResult struct {
	Dark         bool    `json:"dark"`
	DarkPixels   int     `json:"dark_pixels"`
	TotalPixels  int     `json:"total_pixels"`
	DarkFraction float64 `json:"dark_fraction"`
}

// BlurResult reports the edge response of the centre crop.
type BlurResult struct {
	Blurry            bool    `json:"blurry"`
	MaxResponse       int     `json:"max_response"`
	LaplacianVariance float64 `json:"laplacian_variance"`
	Width             int     `json:"width"`
	Height            int     `json:"height"`
	// SkippedDark is set when the image was classified dark and the edge
	// analysis never ran.
	SkippedDark bool `json:"skipped_dark,omitempty"`
}

// SimilarityResult reports keypoint matching between two images.
type SimilarityResult struct {
	Similar         bool `json:"similar"`
	SourceKeypoints int  `json:"source_keypoints"`
	TargetKeypoints int  `json:"target_keypoints"`
	Matches         int  `json:"matches"`
	SumDistance     int  `json:"sum_distance"`
	Window          int  `json:"window"`
	// PerceptualDistance is the dHash distance, -1 when not computed.
	PerceptualDistance int  `json:"perceptual_distance"`
	SkippedDark        bool `json:"skipped_dark,omitempty"`
}

// MemoResult reports the averaged histogram comparison against baselines.
type MemoResult struct {
	Memo         bool          `json:"memo"`
	AverageScore float64       `json:"average_score"`
	Threshold    float64       `json:"threshold"`
	Metric       CompareMetric `json:"metric"`
	Board        BoardType     `json:"board"`
	Baselines    int           `json:"baselines"`
}
