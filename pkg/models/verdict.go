package models

import apperrors "github.com/anime-shed/photo-curator-go/internal/errors"

// Verdict is the outcome of one classification. Result keeps the safe
// default (false) when the check could not run; Evaluated tells the two
// cases apart.
type Verdict struct {
	Result    bool   `json:"result"`
	Evaluated bool   `json:"evaluated"`
	Error     string `json:"error,omitempty"`
	ErrorType string `json:"error_type,omitempty"`
}

// NewVerdict builds a verdict from a result and the error that may have
// prevented it. A non-nil err always yields a negative result.
func NewVerdict(result bool, err error) Verdict {
	if err != nil {
		return Verdict{
			Error:     err.Error(),
			ErrorType: string(apperrors.GetType(err)),
		}
	}
	return Verdict{Result: result, Evaluated: true}
}

// Positive reports whether the check ran and detected its condition.
func (v Verdict) Positive() bool {
	return v.Evaluated && v.Result
}
