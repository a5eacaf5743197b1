package service

import (
	"context"
	"image"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/anime-shed/photo-curator-go/internal/analyzer"
	apperrors "github.com/anime-shed/photo-curator-go/internal/errors"
	"github.com/anime-shed/photo-curator-go/internal/logger"
	"github.com/anime-shed/photo-curator-go/internal/observer"
	"github.com/anime-shed/photo-curator-go/internal/ocr"
	"github.com/anime-shed/photo-curator-go/internal/repository"
	"github.com/anime-shed/photo-curator-go/pkg/models"
)

// DisplayGeometryProvider reports the size of the current display.
type DisplayGeometryProvider interface {
	ScreenSize(ctx context.Context) (width, height int, err error)
}

// VideoMetadataProvider reports the duration of a video in milliseconds.
type VideoMetadataProvider interface {
	DurationMillis(ctx context.Context, ref string) (int64, error)
}

// VideoThumbnailer extracts a still frame from a video.
type VideoThumbnailer interface {
	Thumbnail(ctx context.Context, ref string, offset time.Duration) (image.Image, error)
}

// ClassificationService classifies photos by reference.
//
// Detect* methods return the measurement or the fault that prevented it.
// Is* methods apply the safe-default policy: decode and numeric faults are
// logged and reported as a negative verdict. Precondition violations are
// never absorbed.
type ClassificationService interface {
	DetectDark(ctx context.Context, ref string) (analyzer.DarknessResult, error)
	DetectBlur(ctx context.Context, ref string) (analyzer.BlurResult, error)
	DetectSimilar(ctx context.Context, ref, compareTo string) (analyzer.SimilarityResult, error)
	DetectMemo(ctx context.Context, ref string, metric analyzer.CompareMetric, board analyzer.BoardType, baselines []*analyzer.Histogram) (analyzer.MemoResult, error)
	DetectScreenshot(ctx context.Context, ref string) (bool, error)
	DetectShortVideo(ctx context.Context, ref string) (bool, error)
	DetectSupportedImage(ctx context.Context, ref string) (bool, error)
	DetectDecoratedBySoftware(ctx context.Context, ref string) (bool, error)

	IsDark(ctx context.Context, ref string) bool
	IsBlur(ctx context.Context, ref string) bool
	IsSimilar(ctx context.Context, ref, compareTo string) bool
	IsMemo(ctx context.Context, ref string, metric analyzer.CompareMetric, board analyzer.BoardType, baselines []*analyzer.Histogram) (bool, error)
	IsDecorated(ref string) bool
	DecoratedBySoftware(ctx context.Context, ref string) bool
	IsScreenshot(ctx context.Context, ref string) bool
	IsShortVideo(ctx context.Context, ref string) bool
	IsSupportedImage(ctx context.Context, ref string) bool

	Report(ctx context.Context, ref string, memo *MemoQuery) *models.ClassificationReport
	GroupSimilar(ctx context.Context, refs []string) ([][]string, error)
	ExtractMemoText(ctx context.Context, ref, expectedText string) (*models.OCRResult, error)
	VideoThumbnail(ctx context.Context, ref string, offset time.Duration) (image.Image, error)

	// Baselines returns the memo baselines loaded at startup.
	Baselines() []*analyzer.Histogram
	Thresholds() analyzer.Thresholds
	ValidateImageRef(ref string) error
}

// MemoQuery asks Report to include a memo verdict.
type MemoQuery struct {
	Metric analyzer.CompareMetric
	Board  analyzer.BoardType
}

// Option configures the classification service.
type Option func(*classificationService)

// WithDisplay sets the display-geometry collaborator for screenshot checks.
func WithDisplay(display DisplayGeometryProvider) Option {
	return func(s *classificationService) { s.display = display }
}

// WithVideo sets the video-metadata collaborator for short-video checks.
func WithVideo(video VideoMetadataProvider) Option {
	return func(s *classificationService) { s.video = video }
}

// WithThumbnailer enables video thumbnails.
func WithThumbnailer(thumbnailer VideoThumbnailer) Option {
	return func(s *classificationService) { s.thumbnails = thumbnailer }
}

// WithPublisher sends classification events to publisher.
func WithPublisher(publisher observer.Subject) Option {
	return func(s *classificationService) { s.events = publisher }
}

// WithBaselines sets the memo baselines used by Report and the HTTP API.
func WithBaselines(baselines []*analyzer.Histogram) Option {
	return func(s *classificationService) { s.baselines = baselines }
}

// WithOCR enables memo text extraction.
func WithOCR(engine ocr.Engine) Option {
	return func(s *classificationService) { s.ocr = engine }
}

// WithThresholds replaces the analyzer with one using t.
func WithThresholds(t analyzer.Thresholds) Option {
	return func(s *classificationService) {
		s.analyzer = analyzer.NewImageAnalyzer(analyzer.DefaultOptions().WithThresholds(t))
	}
}

// classificationService implements ClassificationService
type classificationService struct {
	imageRepo  repository.ImageRepository
	analyzer   analyzer.ImageAnalyzer
	display    DisplayGeometryProvider
	video      VideoMetadataProvider
	thumbnails VideoThumbnailer
	events     observer.Subject
	baselines  []*analyzer.Histogram
	ocr        ocr.Engine
	log        *logrus.Entry
}

// NewClassificationService creates the classification facade.
func NewClassificationService(
	imageRepository repository.ImageRepository,
	imageAnalyzer analyzer.ImageAnalyzer,
	opts ...Option,
) ClassificationService {
	s := &classificationService{
		imageRepo: imageRepository,
		analyzer:  imageAnalyzer,
		log:       logger.WithComponent("classification"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *classificationService) Baselines() []*analyzer.Histogram {
	return s.baselines
}

func (s *classificationService) Thresholds() analyzer.Thresholds {
	return s.analyzer.Thresholds()
}

func (s *classificationService) ValidateImageRef(ref string) error {
	return s.imageRepo.ValidateImageRef(ref)
}

// track runs fn as one observable classification.
func (s *classificationService) track(ctx context.Context, op, ref string, fn func() (bool, error)) error {
	start := time.Now()
	s.publish(ctx, observer.ClassificationEvent{
		EventType: observer.ClassificationStarted,
		Operation: op,
		Image:     ref,
	})

	result, err := fn()

	event := observer.ClassificationEvent{
		EventType: observer.ClassificationCompleted,
		Operation: op,
		Image:     ref,
		Duration:  time.Since(start),
		Result:    result,
	}
	if err != nil {
		event.EventType = observer.ClassificationFaulted
		event.Result = false
		event.ErrorType = string(apperrors.GetType(err))
		event.ErrorMessage = err.Error()
	}
	s.publish(ctx, event)
	return err
}

func (s *classificationService) publish(ctx context.Context, event observer.ClassificationEvent) {
	if s.events == nil {
		return
	}
	event.Timestamp = time.Now()
	s.events.NotifyObservers(ctx, event)
}

// absorb logs err and reports whether it may be turned into a negative verdict.
func (s *classificationService) absorb(op, ref string, err error) bool {
	if !apperrors.IsSafeDefault(err) {
		return false
	}
	s.log.WithFields(logrus.Fields{
		"operation":  op,
		"image":      ref,
		"error_type": apperrors.GetType(err),
	}).WithError(err).Warn("Classification fault, returning negative verdict")
	return true
}

func (s *classificationService) fetch(ctx context.Context, ref string) (image.Image, error) {
	return s.imageRepo.FetchImage(ctx, ref)
}

func missingCollaborator(name string) error {
	return apperrors.NewPreconditionError(name+" provider is not configured", nil)
}
