package strategy

import (
	"context"
	"fmt"
	"sort"

	"github.com/anime-shed/photo-curator-go/internal/analyzer"
	apperrors "github.com/anime-shed/photo-curator-go/internal/errors"
	"github.com/anime-shed/photo-curator-go/internal/service"
	"github.com/anime-shed/photo-curator-go/pkg/models"
)

// Check names accepted by the registry.
const (
	CheckDark                = "dark"
	CheckBlur                = "blur"
	CheckMemoWhite           = "memo_white"
	CheckMemoDark            = "memo_dark"
	CheckDecorated           = "decorated"
	CheckDecoratedBySoftware = "decorated_by_software"
	CheckScreenshot          = "screenshot"
	CheckSupported           = "supported"
)

// DefaultChecks run when a batch names none.
var DefaultChecks = []string{CheckDark, CheckBlur, CheckDecorated, CheckScreenshot, CheckSupported}

// ClassificationCheck evaluates one named verdict for a reference.
type ClassificationCheck interface {
	Evaluate(ctx context.Context, ref string) models.Verdict
	GetCheckName() string
}

// verdictCheck adapts a Detect* method of the service.
type verdictCheck struct {
	name   string
	detect func(ctx context.Context, ref string) (bool, error)
}

func (c *verdictCheck) Evaluate(ctx context.Context, ref string) models.Verdict {
	return models.NewVerdict(c.detect(ctx, ref))
}

func (c *verdictCheck) GetCheckName() string {
	return c.name
}

// MemoCheck classifies memo boards against the service baselines with the
// correlation metric.
type MemoCheck struct {
	service service.ClassificationService
	board   analyzer.BoardType
}

// NewMemoCheck creates a memo check for one board type.
func NewMemoCheck(svc service.ClassificationService, board analyzer.BoardType) ClassificationCheck {
	return &MemoCheck{service: svc, board: board}
}

// Evaluate performs the memo classification
func (c *MemoCheck) Evaluate(ctx context.Context, ref string) models.Verdict {
	result, err := c.service.DetectMemo(ctx, ref, analyzer.Correlation, c.board, c.service.Baselines())
	return models.NewVerdict(result.Memo, err)
}

// GetCheckName returns the check name
func (c *MemoCheck) GetCheckName() string {
	if c.board == analyzer.DarkBoard {
		return CheckMemoDark
	}
	return CheckMemoWhite
}

// Registry resolves check names to checks bound to one service.
type Registry struct {
	checks map[string]ClassificationCheck
}

// NewRegistry creates the registry of every known check.
func NewRegistry(svc service.ClassificationService) *Registry {
	r := &Registry{checks: make(map[string]ClassificationCheck)}
	r.register(&verdictCheck{name: CheckDark, detect: func(ctx context.Context, ref string) (bool, error) {
		result, err := svc.DetectDark(ctx, ref)
		return result.Dark, err
	}})
	r.register(&verdictCheck{name: CheckBlur, detect: func(ctx context.Context, ref string) (bool, error) {
		result, err := svc.DetectBlur(ctx, ref)
		return result.Blurry, err
	}})
	r.register(&verdictCheck{name: CheckDecorated, detect: func(ctx context.Context, ref string) (bool, error) {
		return svc.IsDecorated(ref), nil
	}})
	r.register(&verdictCheck{name: CheckDecoratedBySoftware, detect: svc.DetectDecoratedBySoftware})
	r.register(&verdictCheck{name: CheckScreenshot, detect: svc.DetectScreenshot})
	r.register(&verdictCheck{name: CheckSupported, detect: svc.DetectSupportedImage})
	r.register(NewMemoCheck(svc, analyzer.WhiteBoard))
	r.register(NewMemoCheck(svc, analyzer.DarkBoard))
	return r
}

func (r *Registry) register(check ClassificationCheck) {
	r.checks[check.GetCheckName()] = check
}

// Get returns the named check or a validation error.
func (r *Registry) Get(name string) (ClassificationCheck, error) {
	check, ok := r.checks[name]
	if !ok {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown check %q", name), nil)
	}
	return check, nil
}

// Resolve returns the named checks, or DefaultChecks when names is empty.
// Duplicates are dropped.
func (r *Registry) Resolve(names []string) ([]ClassificationCheck, error) {
	if len(names) == 0 {
		names = DefaultChecks
	}
	seen := make(map[string]bool, len(names))
	checks := make([]ClassificationCheck, 0, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		check, err := r.Get(name)
		if err != nil {
			return nil, err
		}
		checks = append(checks, check)
	}
	return checks, nil
}

// Names lists the registered check names in order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.checks))
	for name := range r.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
