package features

import "sort"

// Match pairs a query descriptor with its nearest train descriptor.
type Match struct {
	QueryIndex int `json:"query_index"`
	TrainIndex int `json:"train_index"`
	Distance   int `json:"distance"`
}

// MatchBruteForce returns, for every query descriptor, the train descriptor
// at the smallest Hamming distance. Ties keep the lowest train index. The
// result is empty when either side is empty.
func MatchBruteForce(query, train []Descriptor) []Match {
	if len(query) == 0 || len(train) == 0 {
		return nil
	}
	matches := make([]Match, 0, len(query))
	for qi, q := range query {
		best := Match{QueryIndex: qi, TrainIndex: -1, Distance: DescriptorBits + 1}
		for ti, t := range train {
			if d := Hamming(q, t); d < best.Distance {
				best.TrainIndex = ti
				best.Distance = d
			}
		}
		matches = append(matches, best)
	}
	return matches
}

// SortByDistance orders matches by ascending distance, preserving the
// relative order of equal distances.
func SortByDistance(matches []Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})
}

// SumLowest adds the distances of the first window matches of an ascending
// list. A window that is not positive or exceeds the list covers all of it.
func SumLowest(sorted []Match, window int) int {
	if window <= 0 || window > len(sorted) {
		window = len(sorted)
	}
	sum := 0
	for _, m := range sorted[:window] {
		sum += m.Distance
	}
	return sum
}
