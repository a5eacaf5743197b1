package models

// ClassifyRequest names a single image.
type ClassifyRequest struct {
	Image string `json:"image" binding:"required"`
}

// SimilarRequest names the pair to compare.
type SimilarRequest struct {
	Image     string `json:"image" binding:"required"`
	CompareTo string `json:"compare_to" binding:"required"`
}

// MemoRequest selects the comparison metric and board type. Empty values
// default to correlation on a white board.
type MemoRequest struct {
	Image  string `json:"image" binding:"required"`
	Metric string `json:"metric,omitempty"`
	Board  string `json:"board,omitempty"`
}

// ReportRequest asks for every single-image verdict. Memo adds the memo
// verdict with the given metric and board.
type ReportRequest struct {
	Image  string `json:"image" binding:"required"`
	Memo   bool   `json:"memo,omitempty"`
	Metric string `json:"metric,omitempty"`
	Board  string `json:"board,omitempty"`
}

// ShortVideoRequest names a video file.
type ShortVideoRequest struct {
	Video string `json:"video" binding:"required"`
}

// ThumbnailRequest asks for a still of a video, OffsetMillis into it.
type ThumbnailRequest struct {
	Video        string `json:"video" binding:"required"`
	OffsetMillis int64  `json:"offset_ms"`
}

// CurateRequest runs the named checks over many images. No checks means the
// default set.
type CurateRequest struct {
	Images []string `json:"images" binding:"required,min=1,max=500"`
	Checks []string `json:"checks,omitempty"`
	Group  bool     `json:"group,omitempty"`
}

// MemoTextRequest asks for OCR of a memo photo.
type MemoTextRequest struct {
	Image        string `json:"image" binding:"required"`
	ExpectedText string `json:"expected_text,omitempty"`
}

// VerdictResponse wraps a verdict with the metrics that produced it.
type VerdictResponse struct {
	Verdict
	Image   string `json:"image"`
	Details any    `json:"details,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Type    string `json:"type,omitempty"`
}
