package analyzer

import (
	"fmt"
	"strings"

	apperrors "github.com/anime-shed/photo-curator-go/internal/errors"
)

// CompareMetric selects how a candidate histogram is scored against a
// baseline. The set is closed; the zero value is Correlation.
type CompareMetric int

const (
	Correlation CompareMetric = iota
	ChiSquared
	Intersection
	Hellinger
)

var compareMetricNames = map[CompareMetric]string{
	Correlation:  "correlation",
	ChiSquared:   "chi_squared",
	Intersection: "intersection",
	Hellinger:    "hellinger",
}

// String returns the wire name of the metric.
func (m CompareMetric) String() string {
	if name, ok := compareMetricNames[m]; ok {
		return name
	}
	return fmt.Sprintf("CompareMetric(%d)", int(m))
}

// IsValid reports whether m is one of the four known metrics.
func (m CompareMetric) IsValid() bool {
	_, ok := compareMetricNames[m]
	return ok
}

// HigherIsSimilar is true for similarity-increasing metrics and false for
// distance-increasing ones.
func (m CompareMetric) HigherIsSimilar() bool {
	return m == Correlation || m == Intersection
}

// Accepts applies the metric's comparison direction: similarity metrics
// accept scores at or above threshold, distance metrics at or below it.
func (m CompareMetric) Accepts(score, threshold float64) bool {
	if m.HigherIsSimilar() {
		return score >= threshold
	}
	return score <= threshold
}

// Score compares baseline against candidate with this metric.
func (m CompareMetric) Score(baseline, candidate *Histogram) (float64, error) {
	if baseline == nil || candidate == nil || len(baseline.Bins) != len(candidate.Bins) {
		return 0, apperrors.NewPreconditionError("histograms must be non-nil and the same size", nil)
	}
	switch m {
	case Correlation:
		return correlation(baseline, candidate)
	case ChiSquared:
		return chiSquared(baseline, candidate), nil
	case Intersection:
		return intersection(baseline, candidate), nil
	case Hellinger:
		return hellinger(baseline, candidate), nil
	default:
		return 0, apperrors.NewPreconditionError(fmt.Sprintf("unknown compare metric %d", int(m)), nil)
	}
}

// ParseCompareMetric accepts the wire names plus a few common aliases.
func ParseCompareMetric(s string) (CompareMetric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "correlation", "correl", "":
		return Correlation, nil
	case "chi_squared", "chi-squared", "chisqr":
		return ChiSquared, nil
	case "intersection", "intersect":
		return Intersection, nil
	case "hellinger", "bhattacharyya":
		return Hellinger, nil
	default:
		return 0, fmt.Errorf("unknown compare metric %q", s)
	}
}

// BoardType hints at the memo board background and selects the threshold.
type BoardType int

const (
	WhiteBoard BoardType = iota
	DarkBoard
)

// String returns the wire name of the board type.
func (b BoardType) String() string {
	switch b {
	case WhiteBoard:
		return "white"
	case DarkBoard:
		return "dark"
	default:
		return fmt.Sprintf("BoardType(%d)", int(b))
	}
}

// IsValid reports whether b is a known board type.
func (b BoardType) IsValid() bool {
	return b == WhiteBoard || b == DarkBoard
}

// Threshold picks the memo threshold for this board from t.
func (b BoardType) Threshold(t Thresholds) float64 {
	if b == DarkBoard {
		return t.MemoDarkBoard
	}
	return t.MemoWhiteBoard
}

// ParseBoardType accepts "dark"/"white" (and the *_board forms).
func ParseBoardType(s string) (BoardType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "white", "white_board", "":
		return WhiteBoard, nil
	case "dark", "dark_board":
		return DarkBoard, nil
	default:
		return 0, fmt.Errorf("unknown board type %q", s)
	}
}

// MarshalText encodes the metric by its wire name.
func (m CompareMetric) MarshalText() ([]byte, error) {
	if !m.IsValid() {
		return nil, fmt.Errorf("invalid compare metric %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText decodes a wire name through ParseCompareMetric.
func (m *CompareMetric) UnmarshalText(text []byte) error {
	parsed, err := ParseCompareMetric(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// MarshalText encodes the board type by its wire name.
func (b BoardType) MarshalText() ([]byte, error) {
	if !b.IsValid() {
		return nil, fmt.Errorf("invalid board type %d", int(b))
	}
	return []byte(b.String()), nil
}

// UnmarshalText decodes a wire name through ParseBoardType.
func (b *BoardType) UnmarshalText(text []byte) error {
	parsed, err := ParseBoardType(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}
