package service

import (
	"context"
	"fmt"
	"image"
	"time"

	apperrors "github.com/anime-shed/photo-curator-go/internal/errors"
)

// VideoThumbnail returns a bounded still of the video at ref, taken offset
// into the stream.
func (s *classificationService) VideoThumbnail(ctx context.Context, ref string, offset time.Duration) (image.Image, error) {
	if s.thumbnails == nil {
		return nil, missingCollaborator("video thumbnail")
	}
	if err := s.imageRepo.ValidateImageRef(ref); err != nil {
		return nil, err
	}

	thumb, err := s.thumbnails.Thumbnail(ctx, ref, offset)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, apperrors.NewTimeoutError("thumbnail extraction was interrupted", ctxErr)
		}
		return nil, apperrors.NewDecodeError(fmt.Sprintf("failed to extract a frame from %s", ref), err)
	}
	return thumb, nil
}
