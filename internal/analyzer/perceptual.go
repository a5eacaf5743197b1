package analyzer

import (
	"image"

	"github.com/corona10/goimagehash"

	apperrors "github.com/anime-shed/photo-curator-go/internal/errors"
)

// PerceptualHash returns the 64-bit difference hash of img.
func PerceptualHash(img image.Image) (*goimagehash.ImageHash, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, apperrors.NewNumericError("cannot hash an empty image", nil)
	}
	hash, err := goimagehash.DifferenceHash(img)
	if err != nil {
		return nil, apperrors.NewNumericError("difference hash failed", err)
	}
	return hash, nil
}

// HashDistance returns the Hamming distance between two perceptual hashes.
func HashDistance(a, b *goimagehash.ImageHash) (int, error) {
	d, err := a.Distance(b)
	if err != nil {
		return 0, apperrors.NewNumericError("perceptual hash distance failed", err)
	}
	return d, nil
}
