package analyzer

import (
	"fmt"

	apperrors "github.com/anime-shed/photo-curator-go/internal/errors"
)

// ClassifyMemo averages metric scores of candidate against every baseline
// and applies the board threshold in the metric's direction.
func ClassifyMemo(candidate *Histogram, metric CompareMetric, board BoardType, baselines []*Histogram, t Thresholds) (MemoResult, error) {
	if err := CheckMemoPreconditions(metric, board, baselines); err != nil {
		return MemoResult{}, err
	}

	var total float64
	for i, baseline := range baselines {
		score, err := metric.Score(baseline, candidate)
		if err != nil {
			return MemoResult{}, fmt.Errorf("baseline %d: %w", i, err)
		}
		total += score
	}

	avg := total / float64(len(baselines))
	threshold := board.Threshold(t)
	return MemoResult{
		Memo:         metric.Accepts(avg, threshold),
		AverageScore: avg,
		Threshold:    threshold,
		Metric:       metric,
		Board:        board,
		Baselines:    len(baselines),
	}, nil
}

// CheckMemoPreconditions reports the precondition error a memo
// classification with these arguments would fail with, before any image is
// read.
func CheckMemoPreconditions(metric CompareMetric, board BoardType, baselines []*Histogram) error {
	if len(baselines) == 0 {
		return apperrors.NewPreconditionError("memo classification needs at least one baseline histogram", apperrors.ErrEmptyBaselines)
	}
	if !metric.IsValid() {
		return apperrors.NewPreconditionError(fmt.Sprintf("unknown compare metric %d", int(metric)), nil)
	}
	if !board.IsValid() {
		return apperrors.NewPreconditionError(fmt.Sprintf("unknown board type %d", int(board)), nil)
	}
	return nil
}
