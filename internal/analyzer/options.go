package analyzer

import "github.com/anime-shed/photo-curator-go/internal/features"

// AnalysisOptions configures an ImageAnalyzer.
type AnalysisOptions struct {
	Thresholds Thresholds
	Features   features.Options
}

// DefaultOptions returns the production thresholds and detector settings.
func DefaultOptions() AnalysisOptions {
	return AnalysisOptions{
		Thresholds: DefaultThresholds(),
		Features:   features.DefaultOptions(),
	}
}

// WithThresholds returns options using t for every verdict.
func (opts AnalysisOptions) WithThresholds(t Thresholds) AnalysisOptions {
	opts.Thresholds = t
	return opts
}

// WithFeatures returns options using a different keypoint detector setup.
func (opts AnalysisOptions) WithFeatures(f features.Options) AnalysisOptions {
	opts.Features = f
	return opts
}
