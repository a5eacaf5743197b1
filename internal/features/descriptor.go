package features

import (
	"image"
	"math"
	"math/bits"
	"math/rand"
)

// DescriptorBits is the length of a binary descriptor.
const DescriptorBits = 256

// Descriptor is a 256-bit binary patch signature.
type Descriptor [DescriptorBits / 64]uint64

// Hamming returns the number of differing bits between two descriptors.
func Hamming(a, b Descriptor) int {
	d := 0
	for i := range a {
		d += bits.OnesCount64(a[i] ^ b[i])
	}
	return d
}

// patternSeed fixes the sampling pattern so descriptors are comparable
// across processes.
const patternSeed = 0x0b5eed

type samplePair struct {
	x1, y1, x2, y2 float64
}

// samplingPattern draws DescriptorBits point pairs from an isotropic
// Gaussian with sigma patchSize/5, clamped to stay within the patch.
func samplingPattern(patchSize int) []samplePair {
	rng := rand.New(rand.NewSource(patternSeed))
	sigma := float64(patchSize) / 5
	bound := float64(patchSize/2 - 2)
	draw := func() float64 {
		v := math.Round(rng.NormFloat64() * sigma)
		return math.Max(-bound, math.Min(bound, v))
	}
	pairs := make([]samplePair, DescriptorBits)
	for i := range pairs {
		pairs[i] = samplePair{x1: draw(), y1: draw(), x2: draw(), y2: draw()}
	}
	return pairs
}

// orientation returns the angle of the intensity centroid of the disc of the
// given radius around (x, y).
func orientation(g *image.Gray, x, y, radius int) float64 {
	var m01, m10 float64
	r2 := radius * radius
	for dy := -radius; dy <= radius; dy++ {
		row := (y + dy) * g.Stride
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy > r2 {
				continue
			}
			v := float64(g.Pix[row+x+dx])
			m10 += float64(dx) * v
			m01 += float64(dy) * v
		}
	}
	return math.Atan2(m01, m10)
}

// describe samples the smoothed level along the pattern rotated by angle.
func describe(g *image.Gray, x, y int, angle float64, pattern []samplePair) Descriptor {
	sin, cos := math.Sincos(angle)
	at := func(px, py float64) uint8 {
		rx := x + int(math.Round(px*cos-py*sin))
		ry := y + int(math.Round(px*sin+py*cos))
		return g.Pix[ry*g.Stride+rx]
	}

	var d Descriptor
	for i, p := range pattern {
		if at(p.x1, p.y1) < at(p.x2, p.y2) {
			d[i/64] |= 1 << (uint(i) % 64)
		}
	}
	return d
}
