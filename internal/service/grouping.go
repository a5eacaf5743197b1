package service

import (
	"context"
	"image"
	"sort"

	"github.com/corona10/goimagehash"

	"github.com/anime-shed/photo-curator-go/internal/analyzer"
)

type groupCandidate struct {
	index int
	img   image.Image
	hash  *goimagehash.ImageHash
}

// GroupSimilar buckets refs into near-duplicate groups. Pairs whose
// difference hashes are close are confirmed with keypoint matching.
// Unreadable and dark images never join a group. Groups of two or more are
// returned largest first.
func (s *classificationService) GroupSimilar(ctx context.Context, refs []string) ([][]string, error) {
	t := s.analyzer.Thresholds()

	candidates := make([]groupCandidate, 0, len(refs))
	for i, ref := range refs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c, ok := s.groupCandidate(ctx, ref, t)
		if !ok {
			continue
		}
		c.index = i
		candidates = append(candidates, c)
	}

	parent := make([]int, len(refs))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}

	for a := 0; a < len(candidates); a++ {
		for b := a + 1; b < len(candidates); b++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			ca, cb := candidates[a], candidates[b]
			if find(ca.index) == find(cb.index) {
				continue
			}
			d, err := analyzer.HashDistance(ca.hash, cb.hash)
			if err != nil || d > t.PerceptualDistance {
				continue
			}
			result, err := s.analyzer.AnalyzeSimilarity(ca.img, cb.img)
			if err != nil {
				s.absorb("group_similar", refs[ca.index], err)
				continue
			}
			if result.Similar {
				parent[find(cb.index)] = find(ca.index)
			}
		}
	}

	members := make(map[int][]int)
	for _, c := range candidates {
		root := find(c.index)
		members[root] = append(members[root], c.index)
	}

	var groups [][]int
	for _, idx := range members {
		if len(idx) > 1 {
			sort.Ints(idx)
			groups = append(groups, idx)
		}
	}
	sort.Slice(groups, func(i, j int) bool {
		if len(groups[i]) != len(groups[j]) {
			return len(groups[i]) > len(groups[j])
		}
		return groups[i][0] < groups[j][0]
	})

	out := make([][]string, len(groups))
	for i, idx := range groups {
		out[i] = make([]string, len(idx))
		for j, k := range idx {
			out[i][j] = refs[k]
		}
	}
	return out, nil
}

// groupCandidate decodes ref, drops dark images and keeps a copy bounded
// for keypoint matching.
func (s *classificationService) groupCandidate(ctx context.Context, ref string, t analyzer.Thresholds) (groupCandidate, bool) {
	img, err := s.fetch(ctx, ref)
	if err != nil {
		s.absorb("group_similar", ref, err)
		return groupCandidate{}, false
	}
	dark, err := s.analyzer.AnalyzeDarkness(img)
	if err != nil {
		s.absorb("group_similar", ref, err)
		return groupCandidate{}, false
	}
	if dark.Dark {
		return groupCandidate{}, false
	}

	small := analyzer.ResizeToBound(img, t.SimilarBound)
	hash, err := analyzer.PerceptualHash(small)
	if err != nil {
		s.absorb("group_similar", ref, err)
		return groupCandidate{}, false
	}
	return groupCandidate{img: small, hash: hash}, true
}
