package features

// Options tunes keypoint detection and description.
type Options struct {
	// MaxFeatures caps the number of keypoints kept across all levels.
	MaxFeatures int
	// ScaleFactor is the size ratio between consecutive pyramid levels.
	ScaleFactor float64
	// Levels is the maximum number of pyramid levels.
	Levels int
	// EdgeThreshold is the border, in level pixels, where no keypoint is detected.
	EdgeThreshold int
	// PatchSize is the side of the square patch used for orientation and description.
	PatchSize int
	// FastThreshold is the intensity difference required by the FAST test.
	FastThreshold int
	// HarrisK is the Harris detector free parameter.
	HarrisK float64
	// BlurSigma smooths each level before descriptor sampling.
	BlurSigma float64
}

// DefaultOptions returns the detector configuration used for near-duplicate
// detection.
func DefaultOptions() Options {
	return Options{
		MaxFeatures:   500,
		ScaleFactor:   1.2,
		Levels:        8,
		EdgeThreshold: 31,
		PatchSize:     31,
		FastThreshold: 20,
		HarrisK:       0.04,
		BlurSigma:     2,
	}
}

// WithMaxFeatures returns options keeping at most n keypoints.
func (o Options) WithMaxFeatures(n int) Options {
	o.MaxFeatures = n
	return o
}

// WithLevels returns options with a different pyramid depth.
func (o Options) WithLevels(levels int) Options {
	o.Levels = levels
	return o
}

// WithFastThreshold returns options with a different FAST threshold.
func (o Options) WithFastThreshold(threshold int) Options {
	o.FastThreshold = threshold
	return o
}

// normalized replaces unusable values with defaults.
func (o Options) normalized() Options {
	d := DefaultOptions()
	if o.MaxFeatures <= 0 {
		o.MaxFeatures = d.MaxFeatures
	}
	if o.ScaleFactor <= 1 {
		o.ScaleFactor = d.ScaleFactor
	}
	if o.Levels <= 0 {
		o.Levels = d.Levels
	}
	if o.PatchSize < 8 {
		o.PatchSize = d.PatchSize
	}
	// Rotated samples reach halfPatch*sqrt(2); the border must cover them.
	if minEdge := o.PatchSize/2*3/2 + 2; o.EdgeThreshold < minEdge {
		o.EdgeThreshold = minEdge
	}
	if o.FastThreshold <= 0 {
		o.FastThreshold = d.FastThreshold
	}
	if o.HarrisK <= 0 {
		o.HarrisK = d.HarrisK
	}
	if o.BlurSigma < 0 {
		o.BlurSigma = d.BlurSigma
	}
	return o
}
