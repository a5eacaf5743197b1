package validation

import (
	"net/url"
	"path/filepath"
	"slices"
	"strings"

	apperrors "github.com/anime-shed/photo-curator-go/internal/errors"
)

// DefaultSchemes are the reference schemes accepted out of the box. Local
// files are opt-in: the "file" scheme covers both plain paths and file://
// references.
var DefaultSchemes = []string{"http", "https"}

// RefValidator checks image references before any byte is fetched.
type RefValidator struct {
	allowedSchemes []string
	allowedHosts   []string
	// localRoot confines local references when set.
	localRoot string
}

// NewRefValidator creates a validator accepting DefaultSchemes and any host.
func NewRefValidator() *RefValidator {
	return &RefValidator{
		allowedSchemes: slices.Clone(DefaultSchemes),
		allowedHosts:   []string{}, // empty means all hosts allowed
	}
}

// NewRefValidatorWithOptions creates a validator with custom schemes and an
// http(s) host allow-list.
func NewRefValidatorWithOptions(schemes []string, hosts []string) *RefValidator {
	return &RefValidator{
		allowedSchemes: schemes,
		allowedHosts:   hosts,
	}
}

// ValidateImageRef accepts <scheme>://... references whose scheme is allowed.
// Local paths and file:// references also need the file scheme and must stay
// under the local root when one is set. Remote http(s) references need a host, which must be in
// the allow-list when one is configured.
func (v *RefValidator) ValidateImageRef(ref string) error {
	if strings.TrimSpace(ref) == "" {
		return apperrors.NewValidationError("image reference cannot be empty", nil)
	}

	scheme, _, hasScheme := strings.Cut(ref, "://")
	if !hasScheme {
		if !v.isSchemeAllowed("file") {
			return apperrors.NewValidationError("local paths are not allowed", nil)
		}
		return v.validateLocal(ref)
	}

	scheme = strings.ToLower(scheme)
	if !v.isSchemeAllowed(scheme) {
		return apperrors.NewValidationError("reference scheme not allowed", nil)
	}

	parsed, err := url.Parse(ref)
	if err != nil {
		return apperrors.NewValidationError("invalid reference format", err)
	}

	switch scheme {
	case "file":
		// Validate what the local source opens, not the parsed URL path.
		p, _ := strings.CutPrefix(ref, "file://")
		if parsed.Path == "" {
			return apperrors.NewValidationError("file reference must have a path", nil)
		}
		if err := v.validateLocal(p); err != nil {
			return err
		}
	case "http", "https":
		if parsed.Host == "" {
			return apperrors.NewValidationError("URL must have a valid host", nil)
		}
		if !v.isHostAllowed(parsed.Hostname()) {
			return apperrors.NewValidationError("URL host not allowed", nil)
		}
	default:
		if parsed.Host == "" || strings.Trim(parsed.Path, "/") == "" {
			return apperrors.NewValidationError("reference must name a container and an object", nil)
		}
	}

	return nil
}

// NewLocalRefValidator accepts only local references under root.
func NewLocalRefValidator(root string) *RefValidator {
	return NewRefValidatorWithOptions([]string{"file"}, nil).WithLocalRoot(root)
}

// WithLocalRoot confines local references to root and returns v. An empty
// root leaves local references unconfined.
func (v *RefValidator) WithLocalRoot(root string) *RefValidator {
	if root == "" {
		v.localRoot = ""
		return v
	}
	v.localRoot = resolvePath(root)
	return v
}

func (v *RefValidator) validateLocal(p string) error {
	if strings.TrimSpace(p) == "" {
		return apperrors.NewValidationError("file reference must have a path", nil)
	}
	if v.localRoot == "" {
		return nil
	}
	// ".." is resolved by the OS after symlinks, so it is never accepted.
	if slices.Contains(strings.Split(filepath.ToSlash(p), "/"), "..") {
		return apperrors.NewValidationError("local path must not contain '..'", nil)
	}
	rel, err := filepath.Rel(v.localRoot, resolvePath(p))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return apperrors.NewValidationError("local path is outside the allowed root", nil)
	}
	return nil
}

// resolvePath returns the absolute path with symlinks resolved up to its
// deepest existing ancestor.
func resolvePath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.Clean(p)
	}
	tail := ""
	for dir := abs; ; {
		if resolved, err := filepath.EvalSymlinks(dir); err == nil {
			return filepath.Join(resolved, tail)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return abs
		}
		tail = filepath.Join(filepath.Base(dir), tail)
		dir = parent
	}
}

func (v *RefValidator) isSchemeAllowed(scheme string) bool {
	return slices.Contains(v.allowedSchemes, scheme)
}

// isHostAllowed returns true if no host restrictions are set (empty allowedHosts)
func (v *RefValidator) isHostAllowed(host string) bool {
	if len(v.allowedHosts) == 0 {
		return true
	}
	return slices.Contains(v.allowedHosts, host)
}
