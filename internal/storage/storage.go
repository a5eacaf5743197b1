package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	// ErrNotFound is returned when a reference points at nothing.
	ErrNotFound = errors.New("image not found")

	// ErrUnsupportedScheme is returned for references no source is registered for.
	ErrUnsupportedScheme = errors.New("unsupported reference scheme")
)

// ImageSource opens the raw bytes behind an image reference. Callers close
// the returned reader.
type ImageSource interface {
	Open(ctx context.Context, ref string) (io.ReadCloser, error)
}

// Scheme returns the lower-cased scheme of ref. Plain paths report "file".
func Scheme(ref string) string {
	scheme, _, ok := strings.Cut(ref, "://")
	if !ok || scheme == "" {
		return "file"
	}
	return strings.ToLower(scheme)
}

// Router dispatches references to the source registered for their scheme.
type Router struct {
	sources map[string]ImageSource
}

// NewRouter creates a router that serves local files by default.
func NewRouter() *Router {
	return &Router{sources: map[string]ImageSource{"file": NewLocalSource()}}
}

// Register serves references with the given schemes from source.
func (r *Router) Register(source ImageSource, schemes ...string) {
	for _, s := range schemes {
		r.sources[strings.ToLower(s)] = source
	}
}

// Supports reports whether a source is registered for scheme.
func (r *Router) Supports(scheme string) bool {
	_, ok := r.sources[strings.ToLower(scheme)]
	return ok
}

// Open implements ImageSource.
func (r *Router) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	scheme := Scheme(ref)
	source, ok := r.sources[scheme]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, scheme)
	}
	return source.Open(ctx, ref)
}

// splitBucketKey parses "<scheme>://<bucket>/<key>".
func splitBucketKey(ref, scheme string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(ref, scheme+"://")
	if !ok {
		return "", "", fmt.Errorf("reference %q is not a %s reference", ref, scheme)
	}
	bucket, key, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("reference %q must be %s://<container>/<name>", ref, scheme)
	}
	return bucket, key, nil
}
