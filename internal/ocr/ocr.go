// Package ocr extracts text from memo photos and scores it against the text
// the caller expected to find.
package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"
	"unicode"

	"github.com/arbovm/levenshtein"
	"github.com/codycollier/wer"
	"github.com/otiai10/gosseract/v2"
)

// Recognition is the text read from one image.
type Recognition struct {
	Text string
	// Confidence is the mean word confidence in [0, 1].
	Confidence float64
}

// Engine reads text from a decoded image.
type Engine interface {
	Recognize(ctx context.Context, img image.Image) (Recognition, error)
}

// TesseractEngine runs tesseract through gosseract. A new client is created
// per call, so the engine is safe for concurrent use.
type TesseractEngine struct {
	languages []string
}

// NewTesseractEngine creates an engine for the given tesseract languages.
func NewTesseractEngine(languages ...string) *TesseractEngine {
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	return &TesseractEngine{languages: languages}
}

// Recognize implements Engine.
func (e *TesseractEngine) Recognize(ctx context.Context, img image.Image) (Recognition, error) {
	if err := ctx.Err(); err != nil {
		return Recognition{}, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Recognition{}, fmt.Errorf("encode image for ocr: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(e.languages...); err != nil {
		return Recognition{}, fmt.Errorf("set ocr language: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return Recognition{}, fmt.Errorf("load ocr image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return Recognition{}, fmt.Errorf("ocr text: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return Recognition{}, fmt.Errorf("ocr word boxes: %w", err)
	}
	var sum float64
	for _, box := range boxes {
		sum += box.Confidence
	}
	var confidence float64
	if len(boxes) > 0 {
		confidence = sum / float64(len(boxes)) / 100
	}

	return Recognition{Text: strings.TrimSpace(text), Confidence: confidence}, nil
}

// Score holds error rates of extracted text against expected text.
type Score struct {
	WER float64
	CER float64
}

// Compare scores extracted against expected after normalizing case and
// whitespace. Empty expected text scores zero only when nothing was read.
func Compare(expected, extracted string) Score {
	refWords := Words(expected)
	candWords := Words(extracted)

	if len(refWords) == 0 {
		if len(candWords) == 0 {
			return Score{}
		}
		return Score{WER: 1, CER: 1}
	}

	wordRate, _ := wer.WER(refWords, candWords)

	ref := strings.Join(refWords, " ")
	cand := strings.Join(candWords, " ")
	charRate := float64(levenshtein.Distance(ref, cand)) / float64(len([]rune(ref)))

	return Score{WER: wordRate, CER: charRate}
}

// Words lower-cases s and splits it on anything that is not a letter or digit.
func Words(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
