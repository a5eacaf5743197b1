package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
)

// LocalSource reads references from the local filesystem. Both plain paths
// and file:// references are accepted.
type LocalSource struct{}

// NewLocalSource creates a local filesystem source.
func NewLocalSource() *LocalSource {
	return &LocalSource{}
}

// Path strips an optional file:// prefix.
func Path(ref string) string {
	if p, ok := strings.CutPrefix(ref, "file://"); ok {
		return p
	}
	return ref
}

// Open implements ImageSource.
func (s *LocalSource) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(Path(ref))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
		}
		return nil, fmt.Errorf("open %s: %w", ref, err)
	}
	return f, nil
}
