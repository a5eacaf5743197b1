package strategy

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/anime-shed/photo-curator-go/internal/analyzer"
	apperrors "github.com/anime-shed/photo-curator-go/internal/errors"
	"github.com/anime-shed/photo-curator-go/internal/logger"
	"github.com/anime-shed/photo-curator-go/internal/service"
	"github.com/anime-shed/photo-curator-go/pkg/models"
)

// Curator runs named checks over batches of references on a worker pool.
type Curator struct {
	registry *Registry
	service  service.ClassificationService
	workers  int
	log      *logrus.Entry
}

// NewCurator creates a curator; workers <= 0 means one per CPU.
func NewCurator(svc service.ClassificationService, registry *Registry, workers int) *Curator {
	return &Curator{
		registry: registry,
		service:  svc,
		workers:  workers,
		log:      logger.WithComponent("curator"),
	}
}

// Curate evaluates checks for every ref. Items keep the order of refs. When
// group is set, near-duplicate groups are computed after the checks.
func (c *Curator) Curate(ctx context.Context, refs []string, checkNames []string, group bool) (*models.CurationResult, error) {
	start := time.Now()
	checks, err := c.registry.Resolve(checkNames)
	if err != nil {
		return nil, err
	}

	pool := analyzer.NewWorkerPool(c.workers)
	pool.Start()
	items := c.evaluateAll(ctx, pool, refs, checks)
	pool.Close()

	stats := pool.GetStats()
	c.log.WithFields(logrus.Fields{
		"images":    len(refs),
		"checks":    len(checks),
		"workers":   stats.Workers,
		"completed": stats.CompletedJobs,
	}).Info("Curated batch")

	result := &models.CurationResult{Items: items}
	if group {
		groups, err := c.service.GroupSimilar(ctx, refs)
		if err != nil {
			return nil, apperrors.NewTimeoutError("grouping was interrupted", err)
		}
		result.Groups = groups
	}
	result.ProcessingTimeSec = time.Since(start).Seconds()
	return result, nil
}

// evaluateAll fans refs out over pool and waits for them. A ref whose job
// the pool rejects gets a not-evaluated verdict for every check.
func (c *Curator) evaluateAll(ctx context.Context, pool *analyzer.WorkerPool, refs []string, checks []ClassificationCheck) []models.CurationItem {
	items := make([]models.CurationItem, len(refs))
	for i, ref := range refs {
		accepted := pool.Submit(func() {
			items[i] = c.evaluate(ctx, ref, checks)
		})
		if !accepted {
			c.log.WithField("image", ref).Warn("Worker pool rejected curation job")
			items[i] = notEvaluated(ref, checks, apperrors.NewInternalError("curation pool rejected job", nil))
		}
	}
	pool.Wait()
	return items
}

func notEvaluated(ref string, checks []ClassificationCheck, err error) models.CurationItem {
	item := models.CurationItem{
		Image:  ref,
		Checks: make(map[string]models.Verdict, len(checks)),
	}
	for _, check := range checks {
		item.Checks[check.GetCheckName()] = models.NewVerdict(false, err)
	}
	return item
}

func (c *Curator) evaluate(ctx context.Context, ref string, checks []ClassificationCheck) models.CurationItem {
	start := time.Now()
	item := models.CurationItem{
		Image:  ref,
		Checks: make(map[string]models.Verdict, len(checks)),
	}
	for _, check := range checks {
		if err := ctx.Err(); err != nil {
			item.Checks[check.GetCheckName()] = models.NewVerdict(false, apperrors.NewTimeoutError("batch cancelled", err))
			continue
		}
		item.Checks[check.GetCheckName()] = check.Evaluate(ctx, ref)
	}
	item.ProcessingTimeSec = time.Since(start).Seconds()
	return item
}
