package service

import (
	"context"
	"time"

	"github.com/anime-shed/photo-curator-go/internal/analyzer"
	"github.com/anime-shed/photo-curator-go/pkg/models"
)

// Report evaluates every single-image verdict for ref. The image and its
// metadata are read once; a failed read marks the dependent verdicts as not
// evaluated. Dark images skip the blur analysis.
func (s *classificationService) Report(ctx context.Context, ref string, memo *MemoQuery) *models.ClassificationReport {
	start := time.Now()
	report := &models.ClassificationReport{
		Image:     ref,
		Timestamp: start,
		Decorated: models.NewVerdict(s.IsDecorated(ref), nil),
	}

	_ = s.track(ctx, "report", ref, func() (bool, error) {
		s.reportMetadata(ctx, ref, report)

		img, err := s.fetch(ctx, ref)
		if err != nil {
			report.Dark = models.NewVerdict(false, err)
			report.Blurry = models.NewVerdict(false, err)
			report.Screenshot = models.NewVerdict(false, err)
			if memo != nil {
				v := models.NewVerdict(false, err)
				report.Memo = &v
			}
			return false, err
		}

		bounds := img.Bounds()
		report.Metrics.Width = bounds.Dx()
		report.Metrics.Height = bounds.Dy()

		dark, err := s.analyzer.AnalyzeDarkness(img)
		report.Dark = models.NewVerdict(dark.Dark, err)
		report.Metrics.DarkFraction = dark.DarkFraction

		switch {
		case err != nil:
			report.Blurry = models.NewVerdict(false, err)
		case dark.Dark:
			report.Blurry = models.NewVerdict(false, nil)
		default:
			blur, err := s.analyzer.AnalyzeBlur(img)
			report.Blurry = models.NewVerdict(blur.Blurry, err)
			if err == nil {
				report.Metrics.MaxResponse = &blur.MaxResponse
				report.Metrics.LaplacianVariance = &blur.LaplacianVariance
			}
		}

		report.Screenshot = s.reportScreenshot(ctx, ref, bounds.Dx(), bounds.Dy())

		if memo != nil {
			result, err := s.analyzer.AnalyzeMemo(img, memo.Metric, memo.Board, s.baselines)
			v := models.NewVerdict(result.Memo, err)
			report.Memo = &v
			if err == nil {
				report.Metrics.MemoScore = &result.AverageScore
			}
		}
		return report.Dark.Result, nil
	})

	report.ProcessingTimeSec = time.Since(start).Seconds()
	return report
}

func (s *classificationService) reportMetadata(ctx context.Context, ref string, report *models.ClassificationReport) {
	meta, err := s.imageRepo.FetchMetadata(ctx, ref)
	if err != nil {
		report.Supported = models.NewVerdict(false, err)
		report.DecoratedBySoftware = models.NewVerdict(false, err)
		return
	}
	report.Metrics.MIME = meta.MIME
	report.Supported = models.NewVerdict(supportedMIME[meta.MIME], nil)

	decorated := false
	for _, tool := range meta.Tools() {
		if report.Metrics.Software == "" {
			report.Metrics.Software = tool
		}
		if matchesDecorator(tool) {
			decorated = true
		}
	}
	report.DecoratedBySoftware = models.NewVerdict(decorated, nil)
}

func (s *classificationService) reportScreenshot(ctx context.Context, ref string, width, height int) models.Verdict {
	if s.display == nil {
		return models.NewVerdict(false, missingCollaborator("display geometry"))
	}
	if !isPNGRef(ref) {
		return models.NewVerdict(false, nil)
	}
	return models.NewVerdict(s.matchesDisplay(ctx, width, height))
}

// ParseMemoQuery builds a memo query from wire names.
func ParseMemoQuery(metric, board string) (*MemoQuery, error) {
	m, err := analyzer.ParseCompareMetric(metric)
	if err != nil {
		return nil, err
	}
	b, err := analyzer.ParseBoardType(board)
	if err != nil {
		return nil, err
	}
	return &MemoQuery{Metric: m, Board: b}, nil
}
