package analyzer

import (
	"image"

	"github.com/anime-shed/photo-curator-go/internal/features"
)

// MeasureSimilarity matches keypoints of source against target after both
// are bounded to t.SimilarBound and sums the lowest t.SimilarMatchWindow
// distances. An empty match list is never similar.
func MeasureSimilarity(source, target image.Image, t Thresholds, opts features.Options) SimilarityResult {
	src := ResizeToBound(source, t.SimilarBound)
	dst := ResizeToBound(target, t.SimilarBound)

	srcKeypoints, srcDescriptors := features.DetectAndCompute(src, opts)
	dstKeypoints, dstDescriptors := features.DetectAndCompute(dst, opts)

	matches := features.MatchBruteForce(srcDescriptors, dstDescriptors)
	features.SortByDistance(matches)

	result := SimilarityResult{
		SourceKeypoints:    len(srcKeypoints),
		TargetKeypoints:    len(dstKeypoints),
		Matches:            len(matches),
		Window:             t.SimilarMatchWindow,
		PerceptualDistance: -1,
	}
	if len(matches) == 0 {
		return result
	}

	result.SumDistance = features.SumLowest(matches, t.SimilarMatchWindow)
	result.Similar = result.SumDistance < t.SimilarMaxDistance
	return result
}
