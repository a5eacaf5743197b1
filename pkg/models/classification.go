package models

import "time"

// ClassificationReport gathers every single-image verdict for one reference.
type ClassificationReport struct {
	Image             string    `json:"image"`
	Timestamp         time.Time `json:"timestamp"`
	ProcessingTimeSec float64   `json:"processing_time_sec"`

	Dark                Verdict  `json:"dark"`
	Blurry              Verdict  `json:"blurry"`
	Decorated           Verdict  `json:"decorated"`
	DecoratedBySoftware Verdict  `json:"decorated_by_software"`
	Screenshot          Verdict  `json:"screenshot"`
	Supported           Verdict  `json:"supported"`
	Memo                *Verdict `json:"memo,omitempty"`

	Metrics ReportMetrics `json:"metrics"`
}

// ReportMetrics carries the intermediate numbers behind the verdicts.
type ReportMetrics struct {
	Width             int      `json:"width,omitempty"`
	Height            int      `json:"height,omitempty"`
	MIME              string   `json:"mime,omitempty"`
	DarkFraction      float64  `json:"dark_fraction"`
	MaxResponse       *int     `json:"max_response,omitempty"`
	LaplacianVariance *float64 `json:"laplacian_variance,omitempty"`
	MemoScore         *float64 `json:"memo_score,omitempty"`
	Software          string   `json:"software,omitempty"`
}

// CurationItem holds the verdicts of the requested checks for one image.
type CurationItem struct {
	Image             string             `json:"image"`
	Checks            map[string]Verdict `json:"checks"`
	ProcessingTimeSec float64            `json:"processing_time_sec"`
}

// CurationResult is the outcome of a batch run.
type CurationResult struct {
	Items []CurationItem `json:"items"`
	// Groups lists sets of near-duplicate references, largest first.
	Groups            [][]string `json:"groups,omitempty"`
	ProcessingTimeSec float64    `json:"processing_time_sec"`
}

// OCRResult represents memo text extraction results.
type OCRResult struct {
	ExtractedText string  `json:"extracted_text"`
	ExpectedText  string  `json:"expected_text,omitempty"`
	Confidence    float64 `json:"confidence"`

	// Error rates, present only when expected text was supplied
	WER *float64 `json:"word_error_rate,omitempty"`
	CER *float64 `json:"character_error_rate,omitempty"`
}
