package service

import (
	"context"

	"github.com/anime-shed/photo-curator-go/internal/analyzer"
)

func (s *classificationService) IsDark(ctx context.Context, ref string) bool {
	result, err := s.DetectDark(ctx, ref)
	if err != nil {
		s.absorb("dark", ref, err)
		return false
	}
	return result.Dark
}

func (s *classificationService) IsBlur(ctx context.Context, ref string) bool {
	result, err := s.DetectBlur(ctx, ref)
	if err != nil {
		s.absorb("blur", ref, err)
		return false
	}
	return result.Blurry
}

func (s *classificationService) IsSimilar(ctx context.Context, ref, compareTo string) bool {
	result, err := s.DetectSimilar(ctx, ref, compareTo)
	if err != nil {
		s.absorb("similar", ref, err)
		return false
	}
	return result.Similar
}

// IsMemo returns an error only for precondition violations such as an
// empty baseline collection.
func (s *classificationService) IsMemo(ctx context.Context, ref string, metric analyzer.CompareMetric, board analyzer.BoardType, baselines []*analyzer.Histogram) (bool, error) {
	result, err := s.DetectMemo(ctx, ref, metric, board, baselines)
	if err != nil {
		if s.absorb("memo", ref, err) {
			return false, nil
		}
		return false, err
	}
	return result.Memo, nil
}

func (s *classificationService) IsScreenshot(ctx context.Context, ref string) bool {
	screenshot, err := s.DetectScreenshot(ctx, ref)
	if err != nil {
		s.absorb("screenshot", ref, err)
		return false
	}
	return screenshot
}

func (s *classificationService) IsShortVideo(ctx context.Context, ref string) bool {
	short, err := s.DetectShortVideo(ctx, ref)
	if err != nil {
		s.absorb("short_video", ref, err)
		return false
	}
	return short
}

func (s *classificationService) IsSupportedImage(ctx context.Context, ref string) bool {
	supported, err := s.DetectSupportedImage(ctx, ref)
	if err != nil {
		s.absorb("supported", ref, err)
		return false
	}
	return supported
}

func (s *classificationService) DecoratedBySoftware(ctx context.Context, ref string) bool {
	decorated, err := s.DetectDecoratedBySoftware(ctx, ref)
	if err != nil {
		s.absorb("decorated_by_software", ref, err)
		return false
	}
	return decorated
}
