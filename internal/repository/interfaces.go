package repository

import (
	"context"
	"image"
)

// ImageRepository turns image references into decoded pixels and metadata.
// Every failure to read or decode is an AppError of type decode_failure;
// rejected references are validation errors.
type ImageRepository interface {
	// FetchImage decodes the full image.
	FetchImage(ctx context.Context, ref string) (image.Image, error)

	// FetchImageConfig decodes only the header: dimensions and format name.
	FetchImageConfig(ctx context.Context, ref string) (image.Config, string, error)

	// FetchMetadata sniffs the content type and reads editing-software tags.
	FetchMetadata(ctx context.Context, ref string) (*ImageMetadata, error)

	// ValidateImageRef rejects references that must not be fetched.
	ValidateImageRef(ref string) error
}

// ImageMetadata contains content information read without decoding pixels.
type ImageMetadata struct {
	MIME        string `json:"mime"`
	Size        int64  `json:"size"`
	Software    string `json:"software,omitempty"`
	CreatorTool string `json:"creator_tool,omitempty"`
}

// Tools returns the non-empty editing-software fields.
func (m *ImageMetadata) Tools() []string {
	var tools []string
	for _, s := range []string{m.Software, m.CreatorTool} {
		if s != "" {
			tools = append(tools, s)
		}
	}
	return tools
}
