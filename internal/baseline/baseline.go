// Package baseline builds the reference histograms used for memo detection
// and caches them in a zstd-compressed JSON file.
package baseline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/sirupsen/logrus"

	"github.com/anime-shed/photo-curator-go/internal/analyzer"
	apperrors "github.com/anime-shed/photo-curator-go/internal/errors"
	"github.com/anime-shed/photo-curator-go/internal/logger"
	"github.com/anime-shed/photo-curator-go/internal/repository"
)

// CacheVersion is the current cache file layout.
const CacheVersion = 1

// ErrNoBaselines is returned when no reference photo yields a histogram.
var ErrNoBaselines = errors.New("no baseline histograms could be built")

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// Builder computes baseline histograms from reference memo photos.
type Builder struct {
	repo repository.ImageRepository
	log  *logrus.Entry
}

// NewBuilder creates a builder decoding photos through repo.
func NewBuilder(repo repository.ImageRepository) *Builder {
	return &Builder{repo: repo, log: logger.WithComponent("baseline")}
}

// FromDir builds one histogram per image file under dir, in path order.
func (b *Builder) FromDir(ctx context.Context, dir string) ([]*analyzer.Histogram, error) {
	var refs []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && imageExtensions[strings.ToLower(filepath.Ext(path))] {
			refs = append(refs, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan baseline dir %s: %w", dir, err)
	}
	sort.Strings(refs)
	return b.FromRefs(ctx, refs)
}

// FromRefs builds one histogram per readable reference. Unreadable photos
// are skipped; an empty result is an error.
func (b *Builder) FromRefs(ctx context.Context, refs []string) ([]*analyzer.Histogram, error) {
	histograms := make([]*analyzer.Histogram, 0, len(refs))
	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := b.repo.FetchImage(ctx, ref)
		if err != nil {
			b.log.WithError(err).WithField("image", ref).Warn("Skipping unreadable baseline photo")
			continue
		}
		h, err := analyzer.ComputeHistogram(img)
		if err != nil {
			b.log.WithError(err).WithField("image", ref).Warn("Skipping baseline photo without histogram")
			continue
		}
		histograms = append(histograms, h)
	}
	if len(histograms) == 0 {
		return nil, ErrNoBaselines
	}
	b.log.WithField("count", len(histograms)).Info("Built baseline histograms")
	return histograms, nil
}

type cacheFile struct {
	Version        int         `json:"version"`
	BinsPerChannel int         `json:"bins_per_channel"`
	Histograms     [][]float64 `json:"histograms"`
}

// Encode writes histograms as zstd-compressed JSON.
func Encode(w io.Writer, histograms []*analyzer.Histogram) error {
	file := cacheFile{
		Version:        CacheVersion,
		BinsPerChannel: analyzer.HistogramBinsPerChannel,
		Histograms:     make([][]float64, len(histograms)),
	}
	for i, h := range histograms {
		file.Histograms[i] = h.Bins
	}

	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("create zstd writer: %w", err)
	}
	if err := json.NewEncoder(enc).Encode(file); err != nil {
		enc.Close()
		return fmt.Errorf("encode baselines: %w", err)
	}
	return enc.Close()
}

// Decode reads histograms written by Encode and checks that each one has
// the expected size and unit norm.
func Decode(r io.Reader) ([]*analyzer.Histogram, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("create zstd reader: %w", err)
	}
	defer dec.Close()

	var file cacheFile
	if err := json.NewDecoder(dec).Decode(&file); err != nil {
		return nil, fmt.Errorf("decode baselines: %w", err)
	}
	if file.Version != CacheVersion {
		return nil, fmt.Errorf("unsupported baseline cache version %d", file.Version)
	}
	if file.BinsPerChannel != analyzer.HistogramBinsPerChannel {
		return nil, fmt.Errorf("baseline cache has %d bins per channel, want %d", file.BinsPerChannel, analyzer.HistogramBinsPerChannel)
	}

	histograms := make([]*analyzer.Histogram, 0, len(file.Histograms))
	for i, bins := range file.Histograms {
		h, err := analyzer.NewHistogram(bins)
		if err != nil {
			return nil, fmt.Errorf("baseline %d: %w", i, err)
		}
		if math.Abs(h.Norm()-1) > 1e-6 {
			return nil, apperrors.NewPreconditionError(fmt.Sprintf("baseline %d is not normalized", i), nil)
		}
		histograms = append(histograms, h)
	}
	if len(histograms) == 0 {
		return nil, ErrNoBaselines
	}
	return histograms, nil
}

// Save writes the cache file atomically.
func Save(path string, histograms []*analyzer.Histogram) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".baselines-*")
	if err != nil {
		return fmt.Errorf("create baseline cache: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, histograms); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close baseline cache: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

// Load reads a cache file written by Save.
func Load(path string) ([]*analyzer.Histogram, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// LoadOrBuild prefers the cache at cachePath and falls back to building
// from dir, saving the result when cachePath is set. With neither path set
// it returns no baselines and no error.
func (b *Builder) LoadOrBuild(ctx context.Context, cachePath, dir string) ([]*analyzer.Histogram, error) {
	if cachePath != "" {
		histograms, err := Load(cachePath)
		if err == nil {
			b.log.WithFields(logrus.Fields{"cache": cachePath, "count": len(histograms)}).Info("Loaded baseline cache")
			return histograms, nil
		}
		if !errors.Is(err, fs.ErrNotExist) || dir == "" {
			return nil, err
		}
	}
	if dir == "" {
		return nil, nil
	}

	histograms, err := b.FromDir(ctx, dir)
	if err != nil {
		return nil, err
	}
	if cachePath != "" {
		if err := Save(cachePath, histograms); err != nil {
			b.log.WithError(err).WithField("cache", cachePath).Warn("Could not write baseline cache")
		}
	}
	return histograms, nil
}
