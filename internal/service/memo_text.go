package service

import (
	"context"

	apperrors "github.com/anime-shed/photo-curator-go/internal/errors"
	"github.com/anime-shed/photo-curator-go/internal/ocr"
	"github.com/anime-shed/photo-curator-go/pkg/models"
)

// ExtractMemoText reads the text on a memo photo. Error rates are filled in
// only when expectedText is not empty.
func (s *classificationService) ExtractMemoText(ctx context.Context, ref, expectedText string) (*models.OCRResult, error) {
	if s.ocr == nil {
		return nil, apperrors.NewNotFoundError("memo text extraction is disabled", nil)
	}

	var result *models.OCRResult
	err := s.track(ctx, "memo_text", ref, func() (bool, error) {
		img, err := s.fetch(ctx, ref)
		if err != nil {
			return false, err
		}
		rec, err := s.ocr.Recognize(ctx, img)
		if err != nil {
			return false, apperrors.NewInternalError("text recognition failed", err)
		}

		result = &models.OCRResult{
			ExtractedText: rec.Text,
			ExpectedText:  expectedText,
			Confidence:    rec.Confidence,
		}
		if expectedText != "" {
			score := ocr.Compare(expectedText, rec.Text)
			result.WER = &score.WER
			result.CER = &score.CER
		}
		return rec.Text != "", nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
