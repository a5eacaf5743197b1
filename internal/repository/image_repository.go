package repository

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/bep/imagemeta"
	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/webp"

	apperrors "github.com/anime-shed/photo-curator-go/internal/errors"
	"github.com/anime-shed/photo-curator-go/internal/storage"
)

// RefValidator validates references before they are opened.
type RefValidator interface {
	ValidateImageRef(ref string) error
}

// SourceImageRepository implements ImageRepository over a storage source.
type SourceImageRepository struct {
	source    storage.ImageSource
	validator RefValidator
}

// NewSourceImageRepository creates a repository reading through source.
func NewSourceImageRepository(source storage.ImageSource, validator RefValidator) ImageRepository {
	return &SourceImageRepository{
		source:    source,
		validator: validator,
	}
}

// ValidateImageRef implements ImageRepository.
func (r *SourceImageRepository) ValidateImageRef(ref string) error {
	if r.validator == nil {
		return nil
	}
	return r.validator.ValidateImageRef(ref)
}

// FetchImage implements ImageRepository.
func (r *SourceImageRepository) FetchImage(ctx context.Context, ref string) (image.Image, error) {
	rc, err := r.open(ctx, ref)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	img, _, err := image.Decode(bufio.NewReader(rc))
	if err != nil {
		return nil, apperrors.NewDecodeError(fmt.Sprintf("failed to decode %s", ref), err)
	}
	return img, nil
}

// FetchImageConfig implements ImageRepository.
func (r *SourceImageRepository) FetchImageConfig(ctx context.Context, ref string) (image.Config, string, error) {
	rc, err := r.open(ctx, ref)
	if err != nil {
		return image.Config{}, "", err
	}
	defer rc.Close()

	cfg, format, err := image.DecodeConfig(bufio.NewReader(rc))
	if err != nil {
		return image.Config{}, "", apperrors.NewDecodeError(fmt.Sprintf("failed to read header of %s", ref), err)
	}
	return cfg, format, nil
}

// FetchMetadata implements ImageRepository. Unparseable metadata is not an
// error; only unreadable content is.
func (r *SourceImageRepository) FetchMetadata(ctx context.Context, ref string) (*ImageMetadata, error) {
	rc, err := r.open(ctx, ref)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, storage.MaxDownloadBytes))
	if err != nil {
		return nil, apperrors.NewDecodeError(fmt.Sprintf("failed to read %s", ref), err)
	}

	meta := &ImageMetadata{
		MIME: mimetype.Detect(data).String(),
		Size: int64(len(data)),
	}
	readSoftwareTags(data, meta)
	return meta, nil
}

func (r *SourceImageRepository) open(ctx context.Context, ref string) (io.ReadCloser, error) {
	if err := r.ValidateImageRef(ref); err != nil {
		return nil, err
	}
	rc, err := r.source.Open(ctx, ref)
	if err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			return nil, apperrors.NewTimeoutError(fmt.Sprintf("timed out opening %s", ref), err)
		case errors.Is(err, storage.ErrNotFound):
			return nil, apperrors.NewDecodeError(fmt.Sprintf("image %s not found", ref), err)
		default:
			return nil, apperrors.NewDecodeError(fmt.Sprintf("failed to open %s", ref), err)
		}
	}
	return rc, nil
}

// softwareTags are the EXIF and XMP fields naming the editing application.
var softwareTags = map[imagemeta.Source]string{
	imagemeta.EXIF: "Software",
	imagemeta.XMP:  "CreatorTool",
}

func readSoftwareTags(data []byte, meta *ImageMetadata) {
	_, _ = imagemeta.Decode(imagemeta.Options{
		R:       bytes.NewReader(data),
		Sources: imagemeta.EXIF | imagemeta.XMP,
		ShouldHandleTag: func(ti imagemeta.TagInfo) bool {
			return softwareTags[ti.Source] == ti.Tag
		},
		HandleTag: func(ti imagemeta.TagInfo) error {
			s := tagValueString(ti.Value)
			if s == "" {
				return nil
			}
			switch ti.Source {
			case imagemeta.EXIF:
				meta.Software = s
			case imagemeta.XMP:
				meta.CreatorTool = s
			}
			return nil
		},
	})
}

// tagValueString extracts a string from a tag value; XMP lists yield their
// first element.
func tagValueString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []string:
		if len(val) > 0 {
			return val[0]
		}
	case []any:
		if len(val) > 0 {
			if s, ok := val[0].(string); ok {
				return s
			}
		}
	}
	return ""
}
