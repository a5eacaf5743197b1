package models

import (
	"encoding/json"
	"fmt"
	"testing"

	apperrors "github.com/anime-shed/photo-curator-go/internal/errors"
)

func TestNewVerdict(t *testing.T) {
	testCases := []struct {
		name          string
		result        bool
		err           error
		wantResult    bool
		wantEvaluated bool
		wantType      string
	}{
		{"positive", true, nil, true, true, ""},
		{"negative", false, nil, false, true, ""},
		{"decode failure masks result", true, apperrors.NewDecodeError("corrupt", nil), false, false, "decode_failure"},
		{"foreign error", false, fmt.Errorf("boom"), false, false, "internal"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := NewVerdict(tc.result, tc.err)
			if v.Result != tc.wantResult || v.Evaluated != tc.wantEvaluated {
				t.Errorf("Expected result=%v evaluated=%v, got %+v", tc.wantResult, tc.wantEvaluated, v)
			}
			if v.ErrorType != tc.wantType {
				t.Errorf("Expected error type %q, got %q", tc.wantType, v.ErrorType)
			}
			if v.Positive() != (tc.wantResult && tc.wantEvaluated) {
				t.Errorf("Unexpected Positive() for %+v", v)
			}
		})
	}
}

func TestVerdictResponse_JSON(t *testing.T) {
	resp := VerdictResponse{Verdict: NewVerdict(true, nil), Image: "a.jpg"}
	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if decoded["result"] != true || decoded["evaluated"] != true || decoded["image"] != "a.jpg" {
		t.Errorf("Expected flattened verdict fields, got %s", data)
	}
	if _, ok := decoded["error"]; ok {
		t.Errorf("Expected no error field, got %s", data)
	}
}
