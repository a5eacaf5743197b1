package features

import "image"

// harrisBlock is the side of the window accumulating the structure tensor.
const harrisBlock = 7

// harrisResponse computes det(M) - k*trace(M)^2 over a harrisBlock window of
// Sobel gradients centred on (x, y). The caller guarantees the window plus
// the Sobel support lies inside g.
func harrisResponse(g *image.Gray, x, y int, k float64) float64 {
	half := harrisBlock / 2
	var a, b, c float64
	at := func(px, py int) float64 { return float64(g.Pix[py*g.Stride+px]) }
	for dy := -half; dy <= half; dy++ {
		for dx := -half; dx <= half; dx++ {
			px, py := x+dx, y+dy
			ix := (at(px+1, py-1) + 2*at(px+1, py) + at(px+1, py+1)) -
				(at(px-1, py-1) + 2*at(px-1, py) + at(px-1, py+1))
			iy := (at(px-1, py+1) + 2*at(px, py+1) + at(px+1, py+1)) -
				(at(px-1, py-1) + 2*at(px, py-1) + at(px+1, py-1))
			a += ix * ix
			b += iy * iy
			c += ix * iy
		}
	}
	// Normalise so the response is independent of the window size.
	norm := 1.0 / (4.0 * 255.0 * harrisBlock * harrisBlock)
	a, b, c = a*norm, b*norm, c*norm
	return a*b - c*c - k*(a+b)*(a+b)
}
