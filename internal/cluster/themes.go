package cluster

import "sort"

// DefaultThemeCount is how many theme terms a cluster carries.
const DefaultThemeCount = 3

// Themes returns the n terms with the largest centroid weight, heaviest first.
// Equal weights keep vocabulary order. Fewer than n terms are returned when the
// vocabulary is smaller.
func Themes(centroid []float64, terms []string, n int) []string {
	size := len(terms)
	if len(centroid) < size {
		size = len(centroid)
	}
	order := make([]int, size)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return centroid[order[i]] > centroid[order[j]]
	})
	if n < 0 {
		n = 0
	}
	if n < len(order) {
		order = order[:n]
	}
	out := make([]string, len(order))
	for i, idx := range order {
		out[i] = terms[idx]
	}
	return out
}
