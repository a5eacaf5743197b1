package platform

import (
	"context"
	"fmt"
)

// StaticDisplay reports a fixed screen geometry, typically from config.
type StaticDisplay struct {
	Width  int
	Height int
}

// NewStaticDisplay creates a display of the given portrait size.
func NewStaticDisplay(width, height int) *StaticDisplay {
	return &StaticDisplay{Width: width, Height: height}
}

// ScreenSize returns the configured width and height.
func (d *StaticDisplay) ScreenSize(ctx context.Context) (int, int, error) {
	if d.Width <= 0 || d.Height <= 0 {
		return 0, 0, fmt.Errorf("display size %dx%d is not configured", d.Width, d.Height)
	}
	return d.Width, d.Height, nil
}
