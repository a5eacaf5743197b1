package features

import (
	"image"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"
)

// level is one rung of the scale pyramid.
type level struct {
	index  int
	gray   *image.Gray
	smooth *image.Gray
	// scale converts level coordinates to level-0 coordinates.
	scale float64
}

// grayscale converts img to an 8-bit gray image anchored at the origin.
func grayscale(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok && g.Rect.Min == (image.Point{}) {
		return g
	}
	b := img.Bounds()
	g := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(g, g.Rect, img, b.Min, draw.Src)
	return g
}

// buildPyramid downscales gray by ScaleFactor per level until a level is too
// small to host a single keypoint.
func buildPyramid(gray *image.Gray, opts Options) []level {
	w, h := gray.Rect.Dx(), gray.Rect.Dy()
	minSide := 2*opts.EdgeThreshold + 1

	levels := make([]level, 0, opts.Levels)
	for l := 0; l < opts.Levels; l++ {
		scale := math.Pow(opts.ScaleFactor, float64(l))
		lw := int(math.Round(float64(w) / scale))
		lh := int(math.Round(float64(h) / scale))
		if lw < minSide || lh < minSide {
			break
		}

		img := gray
		if l > 0 {
			img = image.NewGray(image.Rect(0, 0, lw, lh))
			xdraw.BiLinear.Scale(img, img.Rect, gray, gray.Rect, xdraw.Src, nil)
		}
		levels = append(levels, level{
			index:  l,
			gray:   img,
			smooth: smooth(img, opts.BlurSigma),
			scale:  scale,
		})
	}
	return levels
}

// smooth applies a Gaussian blur and returns the result as gray.
func smooth(g *image.Gray, sigma float64) *image.Gray {
	if sigma <= 0 {
		return g
	}
	blurred := imaging.Blur(g, sigma)
	out := image.NewGray(g.Rect)
	w, h := g.Rect.Dx(), g.Rect.Dy()
	for y := 0; y < h; y++ {
		src := blurred.Pix[y*blurred.Stride : y*blurred.Stride+4*w]
		dst := out.Pix[y*out.Stride : y*out.Stride+w]
		for x := range dst {
			dst[x] = src[4*x]
		}
	}
	return out
}
