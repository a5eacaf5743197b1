package service

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/anime-shed/photo-curator-go/internal/analyzer"
	apperrors "github.com/anime-shed/photo-curator-go/internal/errors"
)

// supportedMIME lists the content types accepted as photos.
var supportedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

func (s *classificationService) DetectDark(ctx context.Context, ref string) (result analyzer.DarknessResult, err error) {
	err = s.track(ctx, "dark", ref, func() (bool, error) {
		img, err := s.fetch(ctx, ref)
		if err != nil {
			return false, err
		}
		result, err = s.analyzer.AnalyzeDarkness(img)
		if err != nil {
			return false, err
		}
		s.log.WithFields(logrus.Fields{
			"image":         ref,
			"dark_fraction": result.DarkFraction,
		}).Debug("Measured darkness")
		return result.Dark, nil
	})
	return result, err
}

// DetectBlur reports dark images as not blurry without running the edge
// analysis.
func (s *classificationService) DetectBlur(ctx context.Context, ref string) (result analyzer.BlurResult, err error) {
	err = s.track(ctx, "blur", ref, func() (bool, error) {
		img, err := s.fetch(ctx, ref)
		if err != nil {
			return false, err
		}
		dark, err := s.analyzer.AnalyzeDarkness(img)
		if err != nil {
			return false, err
		}
		if dark.Dark {
			result = analyzer.BlurResult{SkippedDark: true}
			return false, nil
		}
		result, err = s.analyzer.AnalyzeBlur(img)
		if err != nil {
			return false, err
		}
		s.log.WithFields(logrus.Fields{
			"image":        ref,
			"max_response": result.MaxResponse,
		}).Debug("Measured edge response")
		return result.Blurry, nil
	})
	return result, err
}

// DetectSimilar reports the pair as not similar when either image is dark.
func (s *classificationService) DetectSimilar(ctx context.Context, ref, compareTo string) (result analyzer.SimilarityResult, err error) {
	err = s.track(ctx, "similar", ref, func() (bool, error) {
		source, err := s.fetch(ctx, ref)
		if err != nil {
			return false, err
		}
		target, err := s.fetch(ctx, compareTo)
		if err != nil {
			return false, err
		}

		sourceDark, err := s.analyzer.AnalyzeDarkness(source)
		if err != nil {
			return false, err
		}
		targetDark, err := s.analyzer.AnalyzeDarkness(target)
		if err != nil {
			return false, err
		}
		if sourceDark.Dark || targetDark.Dark {
			result = analyzer.SimilarityResult{SkippedDark: true, PerceptualDistance: -1}
			return false, nil
		}

		result, err = s.analyzer.AnalyzeSimilarity(source, target)
		if err != nil {
			return false, err
		}
		result.PerceptualDistance = -1
		if d, err := s.analyzer.PerceptualDistance(source, target); err == nil {
			result.PerceptualDistance = d
		} else {
			s.log.WithError(err).WithField("image", ref).Debug("Perceptual distance unavailable")
		}

		s.log.WithFields(logrus.Fields{
			"image":        ref,
			"compare_to":   compareTo,
			"matches":      result.Matches,
			"sum_distance": result.SumDistance,
		}).Debug("Matched keypoints")
		return result.Similar, nil
	})
	return result, err
}

// DetectMemo fails fast on an empty baseline collection or unknown modes
// before any image is read.
func (s *classificationService) DetectMemo(ctx context.Context, ref string, metric analyzer.CompareMetric, board analyzer.BoardType, baselines []*analyzer.Histogram) (result analyzer.MemoResult, err error) {
	err = s.track(ctx, "memo", ref, func() (bool, error) {
		if err := analyzer.CheckMemoPreconditions(metric, board, baselines); err != nil {
			return false, err
		}

		img, err := s.fetch(ctx, ref)
		if err != nil {
			return false, err
		}
		result, err = s.analyzer.AnalyzeMemo(img, metric, board, baselines)
		if err != nil {
			return false, err
		}
		s.log.WithFields(logrus.Fields{
			"image":     ref,
			"metric":    metric.String(),
			"board":     board.String(),
			"avg_score": result.AverageScore,
		}).Debug("Compared histograms")
		return result.Memo, nil
	})
	return result, err
}

// DetectScreenshot only considers PNG references and compares the header
// dimensions with the display exactly.
func (s *classificationService) DetectScreenshot(ctx context.Context, ref string) (screenshot bool, err error) {
	err = s.track(ctx, "screenshot", ref, func() (bool, error) {
		if s.display == nil {
			return false, missingCollaborator("display geometry")
		}
		if !isPNGRef(ref) {
			return false, nil
		}
		cfg, _, err := s.imageRepo.FetchImageConfig(ctx, ref)
		if err != nil {
			return false, err
		}
		screenshot, err = s.matchesDisplay(ctx, cfg.Width, cfg.Height)
		return screenshot, err
	})
	return screenshot, err
}

func (s *classificationService) matchesDisplay(ctx context.Context, width, height int) (bool, error) {
	displayWidth, displayHeight, err := s.display.ScreenSize(ctx)
	if err != nil {
		return false, apperrors.NewInternalError("display geometry unavailable", err)
	}
	return height == displayHeight && width == displayWidth, nil
}

// DetectShortVideo is true when the duration in whole seconds is exactly 1.
func (s *classificationService) DetectShortVideo(ctx context.Context, ref string) (short bool, err error) {
	err = s.track(ctx, "short_video", ref, func() (bool, error) {
		if s.video == nil {
			return false, missingCollaborator("video metadata")
		}
		if err := s.imageRepo.ValidateImageRef(ref); err != nil {
			return false, err
		}
		ms, err := s.video.DurationMillis(ctx, ref)
		if err != nil {
			return false, apperrors.NewDecodeError(fmt.Sprintf("failed to read duration of %s", ref), err)
		}
		short = ms/1000 == 1
		return short, nil
	})
	return short, err
}

// DetectSupportedImage is true for JPEG and PNG content.
func (s *classificationService) DetectSupportedImage(ctx context.Context, ref string) (supported bool, err error) {
	err = s.track(ctx, "supported", ref, func() (bool, error) {
		meta, err := s.imageRepo.FetchMetadata(ctx, ref)
		if err != nil {
			return false, err
		}
		supported = supportedMIME[meta.MIME]
		return supported, nil
	})
	return supported, err
}

// DetectDecoratedBySoftware checks the editing-software metadata tags.
func (s *classificationService) DetectDecoratedBySoftware(ctx context.Context, ref string) (decorated bool, err error) {
	err = s.track(ctx, "decorated_by_software", ref, func() (bool, error) {
		meta, err := s.imageRepo.FetchMetadata(ctx, ref)
		if err != nil {
			return false, err
		}
		for _, tool := range meta.Tools() {
			if matchesDecorator(tool) {
				decorated = true
				break
			}
		}
		return decorated, nil
	})
	return decorated, err
}

// isPNGRef checks the extension of the path part of ref, ignoring case and
// any query string.
func isPNGRef(ref string) bool {
	p := ref
	if strings.Contains(ref, "://") {
		if u, err := url.Parse(ref); err == nil {
			p = u.Path
		}
	}
	return strings.EqualFold(path.Ext(p), ".png")
}
