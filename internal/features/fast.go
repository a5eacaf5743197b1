package features

// circle holds the 16 Bresenham offsets of radius 3 around a FAST candidate.
var circle = [16][2]int{
	{0, -3}, {1, -3}, {2, -2}, {3, -1},
	{3, 0}, {3, 1}, {2, 2}, {1, 3},
	{0, 3}, {-1, 3}, {-2, 2}, {-3, 1},
	{-3, 0}, {-3, -1}, {-2, -2}, {-1, -3},
}

// arcLength is the number of contiguous circle pixels a corner needs.
const arcLength = 9

type corner struct {
	x, y  int
	score int
}

// fastScore reports whether (x, y) passes the FAST-9 segment test and, if so,
// returns the summed excess contrast of the circle pixels beyond threshold.
func fastScore(pix []uint8, stride, x, y, threshold int) (int, bool) {
	center := int(pix[y*stride+x])
	hi, lo := center+threshold, center-threshold

	var signs [16]int8
	brighter, darker := 0, 0
	for i, off := range circle {
		v := int(pix[(y+off[1])*stride+x+off[0]])
		switch {
		case v > hi:
			signs[i] = 1
			brighter++
		case v < lo:
			signs[i] = -1
			darker++
		}
	}
	if brighter < arcLength && darker < arcLength {
		return 0, false
	}

	found := false
	for _, want := range [2]int8{1, -1} {
		run := 0
		for i := 0; i < len(circle)+arcLength-1; i++ {
			if signs[i%len(circle)] == want {
				run++
				if run >= arcLength {
					found = true
					break
				}
			} else {
				run = 0
			}
		}
		if found {
			break
		}
	}
	if !found {
		return 0, false
	}

	score := 0
	for _, off := range circle {
		d := int(pix[(y+off[1])*stride+x+off[0]]) - center
		if d < 0 {
			d = -d
		}
		if d > threshold {
			score += d - threshold
		}
	}
	return score, true
}

// detectCorners runs FAST-9 inside the border and keeps 3x3 local maxima.
func detectCorners(lv level, opts Options) []corner {
	g := lv.gray
	w, h := g.Rect.Dx(), g.Rect.Dy()
	border := opts.EdgeThreshold
	if w <= 2*border || h <= 2*border {
		return nil
	}

	scores := make([]int, w*h)
	for y := border; y < h-border; y++ {
		for x := border; x < w-border; x++ {
			if s, ok := fastScore(g.Pix, g.Stride, x, y, opts.FastThreshold); ok {
				scores[y*w+x] = s
			}
		}
	}

	var corners []corner
	for y := border; y < h-border; y++ {
		for x := border; x < w-border; x++ {
			s := scores[y*w+x]
			if s == 0 || !isLocalMax(scores, w, x, y, s) {
				continue
			}
			corners = append(corners, corner{x: x, y: y, score: s})
		}
	}
	return corners
}

func isLocalMax(scores []int, w, x, y, s int) bool {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if scores[(y+dy)*w+x+dx] > s {
				return false
			}
		}
	}
	return true
}
