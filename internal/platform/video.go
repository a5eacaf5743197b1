package platform

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io/fs"
	"math"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"

	"github.com/anime-shed/photo-curator-go/internal/logger"
	"github.com/anime-shed/photo-curator-go/internal/storage"
)

// ErrVideoNotFound is returned when the video file does not exist.
var ErrVideoNotFound = errors.New("video file not found")

// RunFunc executes a command and returns its standard output.
type RunFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// FFprobe reads container durations with the ffprobe binary.
type FFprobe struct {
	binary  string
	timeout time.Duration
	run     RunFunc
}

// NewFFprobe creates a provider running binary (default "ffprobe").
func NewFFprobe(binary string) *FFprobe {
	if binary == "" {
		binary = "ffprobe"
	}
	return &FFprobe{
		binary:  binary,
		timeout: 10 * time.Second,
		run:     execRun,
	}
}

// WithRunner replaces the command runner.
func (p *FFprobe) WithRunner(run RunFunc) *FFprobe {
	p.run = run
	return p
}

// DurationMillis returns the container duration of the local video at ref.
func (p *FFprobe) DurationMillis(ctx context.Context, ref string) (int64, error) {
	path, err := localVideo(ref)
	if err != nil {
		return 0, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	out, err := p.run(ctx, p.binary,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", path, err)
	}

	ms, err := ParseDurationMillis(string(out))
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", path, err)
	}

	logger.WithFields(logrus.Fields{
		"video":       path,
		"duration_ms": ms,
	}).Debug("Probed video duration")
	return ms, nil
}

// Thumbnail bounds, matching the platform "mini" video thumbnail.
const (
	ThumbnailWidth  = 512
	ThumbnailHeight = 384
)

// FFmpeg extracts still frames with the ffmpeg binary.
type FFmpeg struct {
	binary  string
	timeout time.Duration
	run     RunFunc
}

// NewFFmpeg creates an extractor running binary (default "ffmpeg").
func NewFFmpeg(binary string) *FFmpeg {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &FFmpeg{
		binary:  binary,
		timeout: 10 * time.Second,
		run:     execRun,
	}
}

// WithRunner replaces the command runner.
func (f *FFmpeg) WithRunner(run RunFunc) *FFmpeg {
	f.run = run
	return f
}

// Thumbnail decodes the frame at offset of the local video at ref and fits
// it inside ThumbnailWidth x ThumbnailHeight, keeping the aspect ratio.
// Frames already inside the bounds are returned unscaled.
func (f *FFmpeg) Thumbnail(ctx context.Context, ref string, offset time.Duration) (image.Image, error) {
	path, err := localVideo(ref)
	if err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	out, err := f.run(ctx, f.binary,
		"-v", "error",
		"-ss", strconv.FormatFloat(offset.Seconds(), 'f', 3, 64),
		"-i", path,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-",
	)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg %s: %w", path, err)
	}
	frame, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		return nil, fmt.Errorf("ffmpeg %s: decode frame: %w", path, err)
	}

	b := frame.Bounds()
	if b.Dx() > ThumbnailWidth || b.Dy() > ThumbnailHeight {
		frame = imaging.Fit(frame, ThumbnailWidth, ThumbnailHeight, imaging.Lanczos)
	}
	logger.WithFields(logrus.Fields{
		"video":  path,
		"width":  frame.Bounds().Dx(),
		"height": frame.Bounds().Dy(),
	}).Debug("Extracted video thumbnail")
	return frame, nil
}

func localVideo(ref string) (string, error) {
	path := storage.Path(ref)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrVideoNotFound, path)
		}
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	return path, nil
}

// ParseDurationMillis converts ffprobe's seconds output into milliseconds,
// truncating sub-millisecond precision.
func ParseDurationMillis(output string) (int64, error) {
	s := strings.TrimSpace(output)
	if s == "" || s == "N/A" {
		return 0, fmt.Errorf("no duration reported")
	}
	seconds, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	// The epsilon absorbs binary representation error such as 1.999*1000.
	return int64(math.Floor(seconds*1000 + 1e-6)), nil
}

func execRun(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}
