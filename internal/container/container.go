package container

import (
	"context"
	"fmt"
	"net/http"

	"github.com/anime-shed/photo-curator-go/internal/analyzer"
	"github.com/anime-shed/photo-curator-go/internal/baseline"
	"github.com/anime-shed/photo-curator-go/internal/config"
	"github.com/anime-shed/photo-curator-go/internal/factory"
	"github.com/anime-shed/photo-curator-go/internal/logger"
	"github.com/anime-shed/photo-curator-go/internal/observer"
	"github.com/anime-shed/photo-curator-go/internal/ocr"
	"github.com/anime-shed/photo-curator-go/internal/platform"
	"github.com/anime-shed/photo-curator-go/internal/repository"
	"github.com/anime-shed/photo-curator-go/internal/service"
	"github.com/anime-shed/photo-curator-go/internal/strategy"
	"github.com/anime-shed/photo-curator-go/internal/transport"
)

// Container holds all application dependencies
type Container struct {
	config                *config.Config
	imageRepository       repository.ImageRepository
	imageAnalyzer         analyzer.ImageAnalyzer
	classificationService service.ClassificationService
	curator               *strategy.Curator
	metrics               *observer.MetricsObserver
	handler               http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	router, err := factory.NewStorageFactory(cfg).CreateRouter(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create image sources: %w", err)
	}
	imageRepository := repository.NewSourceImageRepository(router, factory.NewRefValidator(cfg))
	imageAnalyzer := analyzer.NewImageAnalyzer(analyzer.DefaultOptions())

	baselineRepository := repository.NewSourceImageRepository(router, factory.NewBaselineRefValidator(cfg))
	baselines, err := baseline.NewBuilder(baselineRepository).LoadOrBuild(ctx, cfg.BaselineCache, cfg.BaselineDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load memo baselines: %w", err)
	}
	if len(baselines) == 0 {
		logger.WithComponent("container").Warn("No memo baselines configured; memo classification is unavailable")
	}

	metrics := observer.NewMetricsObserver()
	publisher := observer.NewEventPublisher()
	publisher.Subscribe(observer.NewLoggingObserver(logger.WithComponent("events")))
	publisher.Subscribe(metrics)

	opts := []service.Option{
		service.WithDisplay(platform.NewStaticDisplay(cfg.DisplayWidth, cfg.DisplayHeight)),
		service.WithVideo(platform.NewFFprobe(cfg.FFprobePath)),
		service.WithThumbnailer(platform.NewFFmpeg(cfg.FFmpegPath)),
		service.WithPublisher(publisher),
		service.WithBaselines(baselines),
	}
	if cfg.OCREnabled {
		opts = append(opts, service.WithOCR(ocr.NewTesseractEngine(cfg.OCRLanguage)))
	}
	classificationService := service.NewClassificationService(imageRepository, imageAnalyzer, opts...)

	curator := strategy.NewCurator(classificationService, strategy.NewRegistry(classificationService), cfg.CurateWorkers)
	handler := transport.NewHandler(classificationService, curator, metrics, cfg)

	return &Container{
		config:                cfg,
		imageRepository:       imageRepository,
		imageAnalyzer:         imageAnalyzer,
		classificationService: classificationService,
		curator:               curator,
		metrics:               metrics,
		handler:               handler,
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Service returns the classification facade
func (c *Container) Service() service.ClassificationService {
	return c.classificationService
}
