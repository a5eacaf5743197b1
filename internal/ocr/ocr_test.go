package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWords(t *testing.T) {
	assert.Equal(t, []string{"buy", "milk", "2", "eggs"}, Words("  Buy MILK,\n2 eggs! "))
	assert.Empty(t, Words(" \t-- "))
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name      string
		expected  string
		extracted string
		wantWER   float64
		wantCER   float64
	}{
		{"exact match ignoring case", "Team Sync 10am", "team sync 10AM", 0, 0},
		{"both empty", "", "  ", 0, 0},
		{"nothing expected but text read", "", "noise", 1, 1},
		{"one word substituted", "call bob today", "call rob today", 1.0 / 3.0, 1.0 / 14.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := Compare(tt.expected, tt.extracted)
			assert.InDelta(t, tt.wantWER, score.WER, 1e-9)
			assert.InDelta(t, tt.wantCER, score.CER, 1e-9)
		})
	}
}

func TestNewTesseractEngine_DefaultLanguage(t *testing.T) {
	assert.Equal(t, []string{"eng"}, NewTesseractEngine().languages)
	assert.Equal(t, []string{"deu", "eng"}, NewTesseractEngine("deu", "eng").languages)
}
