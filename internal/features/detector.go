package features

import (
	"image"
	"math"
	"sort"
)

// Keypoint is a detected corner expressed in the coordinates of the input
// image.
type Keypoint struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Size     float64 `json:"size"`
	Angle    float64 `json:"angle"`
	Response float64 `json:"response"`
	Level    int     `json:"level"`
}

// DetectAndCompute finds up to opts.MaxFeatures keypoints in img and returns
// them with one descriptor each; keypoints[i] is described by descriptors[i].
// Images too small for a single level yield no keypoints.
func DetectAndCompute(img image.Image, opts Options) ([]Keypoint, []Descriptor) {
	opts = opts.normalized()
	if img == nil || img.Bounds().Empty() {
		return nil, nil
	}

	levels := buildPyramid(grayscale(img), opts)
	if len(levels) == 0 {
		return nil, nil
	}

	quotas := levelQuotas(opts.MaxFeatures, opts.ScaleFactor, len(levels))
	pattern := samplingPattern(opts.PatchSize)
	radius := opts.PatchSize / 2

	var keypoints []Keypoint
	var descriptors []Descriptor
	for i, lv := range levels {
		for _, c := range strongest(lv, opts, quotas[i]) {
			angle := orientation(lv.gray, c.x, c.y, radius)
			keypoints = append(keypoints, Keypoint{
				X:        float64(c.x) * lv.scale,
				Y:        float64(c.y) * lv.scale,
				Size:     float64(opts.PatchSize) * lv.scale,
				Angle:    angle,
				Response: c.response,
				Level:    lv.index,
			})
			descriptors = append(descriptors, describe(lv.smooth, c.x, c.y, angle, pattern))
		}
	}
	return keypoints, descriptors
}

type rankedCorner struct {
	corner
	response float64
}

// strongest returns up to quota corners of lv ordered by Harris response.
func strongest(lv level, opts Options, quota int) []rankedCorner {
	if quota <= 0 {
		return nil
	}
	corners := detectCorners(lv, opts)
	ranked := make([]rankedCorner, len(corners))
	for i, c := range corners {
		ranked[i] = rankedCorner{corner: c, response: harrisResponse(lv.gray, c.x, c.y, opts.HarrisK)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].response > ranked[j].response
	})
	if len(ranked) > quota {
		ranked = ranked[:quota]
	}
	return ranked
}

// levelQuotas spreads total across levels geometrically so that each level
// receives a share proportional to its area scale. The last level takes the
// remainder.
func levelQuotas(total int, scaleFactor float64, levels int) []int {
	quotas := make([]int, levels)
	factor := 1 / scaleFactor
	perLevel := float64(total) * (1 - factor) / (1 - math.Pow(factor, float64(levels)))
	assigned := 0
	for l := 0; l < levels-1; l++ {
		quotas[l] = int(math.Round(perLevel))
		assigned += quotas[l]
		perLevel *= factor
	}
	quotas[levels-1] = max(total-assigned, 0)
	return quotas
}
