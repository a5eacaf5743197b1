package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/anime-shed/photo-curator-go/internal/config"
	apperrors "github.com/anime-shed/photo-curator-go/internal/errors"
	"github.com/anime-shed/photo-curator-go/internal/logger"
	"github.com/anime-shed/photo-curator-go/internal/observer"
	"github.com/anime-shed/photo-curator-go/internal/service"
	"github.com/anime-shed/photo-curator-go/internal/strategy"
	"github.com/anime-shed/photo-curator-go/pkg/models"
)

// Handler serves the classification API.
type Handler struct {
	service service.ClassificationService
	curator *strategy.Curator
	metrics *observer.MetricsObserver
	cfg     *config.Config
}

// NewHandler builds the gin engine with every route and middleware.
func NewHandler(svc service.ClassificationService, curator *strategy.Curator, metrics *observer.MetricsObserver, cfg *config.Config) http.Handler {
	h := &Handler{service: svc, curator: curator, metrics: metrics, cfg: cfg}

	r := gin.New()
	r.Use(
		gin.Recovery(),
		requestLogger(),
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	r.GET("/health", healthCheck)

	v1 := r.Group("/v1", rateLimiter(rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)))
	v1.GET("/stats", h.stats)

	classify := v1.Group("/classify")
	classify.POST("/dark", h.classifyDark)
	classify.POST("/blur", h.classifyBlur)
	classify.POST("/decorated", h.classifyDecorated)
	classify.POST("/screenshot", h.classifyScreenshot)
	classify.POST("/supported", h.classifySupported)
	classify.POST("/similar", h.classifySimilar)
	classify.POST("/memo", h.classifyMemo)
	classify.POST("/short-video", h.classifyShortVideo)

	v1.POST("/report", h.report)
	v1.POST("/curate", h.curate)
	v1.POST("/memo/text", h.memoText)
	v1.POST("/video/thumbnail", h.videoThumbnail)

	return r
}

func (h *Handler) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
}

// bindImage binds the request body and validates the image reference.
func (h *Handler) bindImage(c *gin.Context, req any, refs ...*string) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request format", apperrors.NewValidationError("invalid request body", err))
		return false
	}
	for _, ref := range refs {
		if err := h.service.ValidateImageRef(*ref); err != nil {
			respondError(c, apperrors.GetStatusCode(err), "invalid image reference", err)
			return false
		}
	}
	return true
}

func (h *Handler) classifyDark(c *gin.Context) {
	var req models.ClassifyRequest
	if !h.bindImage(c, &req, &req.Image) {
		return
	}
	ctx, cancel := h.requestContext(c)
	defer cancel()

	result, err := h.service.DetectDark(ctx, req.Image)
	respondVerdict(c, req.Image, result.Dark, err, result)
}

func (h *Handler) classifyBlur(c *gin.Context) {
	var req models.ClassifyRequest
	if !h.bindImage(c, &req, &req.Image) {
		return
	}
	ctx, cancel := h.requestContext(c)
	defer cancel()

	result, err := h.service.DetectBlur(ctx, req.Image)
	respondVerdict(c, req.Image, result.Blurry, err, result)
}

func (h *Handler) classifyDecorated(c *gin.Context) {
	var req models.ClassifyRequest
	if !h.bindImage(c, &req, &req.Image) {
		return
	}
	ctx, cancel := h.requestContext(c)
	defer cancel()

	bySoftware, err := h.service.DetectDecoratedBySoftware(ctx, req.Image)
	details := gin.H{"by_software": models.NewVerdict(bySoftware, err)}
	respondVerdict(c, req.Image, h.service.IsDecorated(req.Image), nil, details)
}

func (h *Handler) classifyScreenshot(c *gin.Context) {
	var req models.ClassifyRequest
	if !h.bindImage(c, &req, &req.Image) {
		return
	}
	ctx, cancel := h.requestContext(c)
	defer cancel()

	screenshot, err := h.service.DetectScreenshot(ctx, req.Image)
	respondVerdict(c, req.Image, screenshot, err, nil)
}

func (h *Handler) classifySupported(c *gin.Context) {
	var req models.ClassifyRequest
	if !h.bindImage(c, &req, &req.Image) {
		return
	}
	ctx, cancel := h.requestContext(c)
	defer cancel()

	supported, err := h.service.DetectSupportedImage(ctx, req.Image)
	respondVerdict(c, req.Image, supported, err, nil)
}

func (h *Handler) classifySimilar(c *gin.Context) {
	var req models.SimilarRequest
	if !h.bindImage(c, &req, &req.Image, &req.CompareTo) {
		return
	}
	ctx, cancel := h.requestContext(c)
	defer cancel()

	result, err := h.service.DetectSimilar(ctx, req.Image, req.CompareTo)
	respondVerdict(c, req.Image, result.Similar, err, result)
}

func (h *Handler) classifyMemo(c *gin.Context) {
	var req models.MemoRequest
	if !h.bindImage(c, &req, &req.Image) {
		return
	}
	query, err := service.ParseMemoQuery(req.Metric, req.Board)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid memo options", apperrors.NewValidationError(err.Error(), err))
		return
	}
	ctx, cancel := h.requestContext(c)
	defer cancel()

	result, err := h.service.DetectMemo(ctx, req.Image, query.Metric, query.Board, h.service.Baselines())
	respondVerdict(c, req.Image, result.Memo, err, result)
}

func (h *Handler) classifyShortVideo(c *gin.Context) {
	var req models.ShortVideoRequest
	if !h.bindImage(c, &req, &req.Video) {
		return
	}
	ctx, cancel := h.requestContext(c)
	defer cancel()

	short, err := h.service.DetectShortVideo(ctx, req.Video)
	respondVerdict(c, req.Video, short, err, nil)
}

func (h *Handler) report(c *gin.Context) {
	var req models.ReportRequest
	if !h.bindImage(c, &req, &req.Image) {
		return
	}
	var query *service.MemoQuery
	if req.Memo {
		q, err := service.ParseMemoQuery(req.Metric, req.Board)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid memo options", apperrors.NewValidationError(err.Error(), err))
			return
		}
		query = q
	}
	ctx, cancel := h.requestContext(c)
	defer cancel()

	c.JSON(http.StatusOK, h.service.Report(ctx, req.Image, query))
}

func (h *Handler) curate(c *gin.Context) {
	var req models.CurateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request format", apperrors.NewValidationError("invalid request body", err))
		return
	}
	for _, ref := range req.Images {
		if err := h.service.ValidateImageRef(ref); err != nil {
			respondError(c, apperrors.GetStatusCode(err), fmt.Sprintf("invalid image reference %q", ref), err)
			return
		}
	}
	ctx, cancel := h.requestContext(c)
	defer cancel()

	result, err := h.curator.Curate(ctx, req.Images, req.Checks, req.Group)
	if err != nil {
		respondError(c, determineStatusCode(err), "curation failed", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) memoText(c *gin.Context) {
	var req models.MemoTextRequest
	if !h.bindImage(c, &req, &req.Image) {
		return
	}
	ctx, cancel := h.requestContext(c)
	defer cancel()

	result, err := h.service.ExtractMemoText(ctx, req.Image, req.ExpectedText)
	if err != nil {
		respondError(c, determineStatusCode(err), "memo text extraction failed", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// videoThumbnail answers with the frame encoded as PNG.
func (h *Handler) videoThumbnail(c *gin.Context) {
	var req models.ThumbnailRequest
	if !h.bindImage(c, &req, &req.Video) {
		return
	}
	ctx, cancel := h.requestContext(c)
	defer cancel()

	thumb, err := h.service.VideoThumbnail(ctx, req.Video, time.Duration(req.OffsetMillis)*time.Millisecond)
	if err != nil {
		respondError(c, determineStatusCode(err), "thumbnail extraction failed", err)
		return
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, thumb); err != nil {
		respondError(c, http.StatusInternalServerError, "thumbnail encoding failed", apperrors.NewInternalError("failed to encode thumbnail", err))
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

func (h *Handler) stats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"operations": h.metrics.GetMetrics(),
		"baselines":  len(h.service.Baselines()),
	})
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": "1.0.0",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// respondVerdict answers 200 for evaluated verdicts and for data faults the
// safe-default policy absorbs. Caller errors keep their own status.
func respondVerdict(c *gin.Context, ref string, result bool, err error, details any) {
	if err != nil && !absorbable(err) {
		respondError(c, determineStatusCode(err), "classification failed", err)
		return
	}
	c.JSON(http.StatusOK, models.VerdictResponse{
		Verdict: models.NewVerdict(result, err),
		Image:   ref,
		Details: details,
	})
}

func absorbable(err error) bool {
	switch apperrors.GetType(err) {
	case apperrors.ErrorTypeDecode, apperrors.ErrorTypeNumeric:
		return true
	default:
		return false
	}
}

// Middleware and helper functions
func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func rateLimiter(limiter *rate.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow() {
			respondError(c, http.StatusTooManyRequests, "rate limit exceeded", errors.New("too many requests"))
			return
		}
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.WithFields(logrus.Fields{
			"method":             c.Request.Method,
			"path":               c.Request.URL.Path,
			"status":             c.Writer.Status(),
			"ip":                 c.ClientIP(),
			"processing_time_ms": time.Since(start).Milliseconds(),
		}).Info("Request completed")
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			err := c.Errors.Last()
			respondError(c, determineStatusCode(err.Err), "request processing failed", err.Err)
		}
	}
}

func determineStatusCode(err error) int {
	// Check if it's a custom app error first
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	// Fallback to context-based errors
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, code int, message string, err error) {
	// Log the error with context
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	resp := models.ErrorResponse{
		Error:   http.StatusText(code),
		Message: fmt.Sprintf("%s: %v", message, err),
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		resp.Type = string(appErr.Type)
	}
	c.AbortWithStatusJSON(code, resp)
}
