// Package cluster partitions vectors with k-means++ and names clusters by their heaviest terms.
package cluster

import (
	"fmt"
	"math/rand"

	"github.com/hyperjump/bunseki/internal/vector"
)

// DefaultMaxIterations caps Lloyd iterations when Options leaves it unset.
const DefaultMaxIterations = 50

// Options controls a k-means run.
type Options struct {
	MaxIterations int
	// Seed feeds the pseudo-random source used for seeding. Equal seeds give equal results.
	Seed int64
}

// Result holds the final centroids and, per point, the index of its centroid.
type Result struct {
	Centroids   [][]float64
	Assignments []int
	Iterations  int
}

// Members returns the point indices assigned to each centroid, in point order.
// Centroids with no points yield empty slices.
func (r *Result) Members() [][]int {
	members := make([][]int, len(r.Centroids))
	for i := range members {
		members[i] = []int{}
	}
	for p, c := range r.Assignments {
		members[c] = append(members[c], p)
	}
	return members
}

// KMeans clusters points into exactly k groups. Seeding follows k-means++: the first
// centroid is a uniformly chosen point, each following one is drawn with probability
// proportional to its squared distance from the nearest chosen centroid. When k exceeds
// the number of points, the surplus centroids repeat earlier seeds and stay empty.
func KMeans(points [][]float64, k int, opts Options) (*Result, error) {
	if k <= 0 {
		return nil, fmt.Errorf("cluster count must be positive, got %d", k)
	}
	if len(points) == 0 {
		return &Result{Centroids: [][]float64{}, Assignments: []int{}}, nil
	}
	maxIter := opts.MaxIterations
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	centroids := seed(points, k, rng)

	var assignments []int
	iterations := 0
	for iterations < maxIter {
		next := Assign(points, centroids)
		iterations++
		if assignments != nil && equal(assignments, next) {
			break
		}
		assignments = next
		centroids = update(points, centroids, assignments)
	}

	return &Result{
		Centroids:   centroids,
		Assignments: Assign(points, centroids),
		Iterations:  iterations,
	}, nil
}

// seed picks k initial centroids, never choosing the same point twice while points remain.
func seed(points [][]float64, k int, rng *rand.Rand) [][]float64 {
	n := len(points)
	chosen := make([]bool, n)
	seeds := make([]int, 0, k)

	first := rng.Intn(n)
	chosen[first] = true
	seeds = append(seeds, first)

	dist := make([]float64, n)
	for i, p := range points {
		dist[i] = vector.SquaredDistance(p, points[first])
	}

	for len(seeds) < k && len(seeds) < n {
		next := pick(dist, chosen, rng)
		chosen[next] = true
		seeds = append(seeds, next)
		for i, p := range points {
			if d := vector.SquaredDistance(p, points[next]); d < dist[i] {
				dist[i] = d
			}
		}
	}

	centroids := make([][]float64, k)
	for i := range centroids {
		centroids[i] = clone(points[seeds[i%len(seeds)]])
	}
	return centroids
}

// pick draws an unchosen index with probability proportional to dist. When every
// unchosen point sits on a centroid the draw is uniform over the unchosen points.
func pick(dist []float64, chosen []bool, rng *rand.Rand) int {
	var total float64
	remaining := 0
	for i, d := range dist {
		if !chosen[i] {
			total += d
			remaining++
		}
	}

	if total > 0 {
		target := rng.Float64() * total
		last := -1
		for i, d := range dist {
			if chosen[i] || d == 0 {
				continue
			}
			last = i
			target -= d
			if target < 0 {
				return i
			}
		}
		return last
	}

	target := rng.Intn(remaining)
	for i := range dist {
		if chosen[i] {
			continue
		}
		if target == 0 {
			return i
		}
		target--
	}
	return -1
}

// Assign returns, for every point, the index of the nearest centroid by Euclidean
// distance. Ties go to the lowest index.
func Assign(points, centroids [][]float64) []int {
	out := make([]int, len(points))
	for p, point := range points {
		best := 0
		bestDist := -1.0
		for c, centroid := range centroids {
			d := vector.SquaredDistance(point, centroid)
			if bestDist < 0 || d < bestDist {
				best, bestDist = c, d
			}
		}
		out[p] = best
	}
	return out
}

// update recomputes each centroid as the mean of its members. A centroid with no
// members keeps its previous position.
func update(points, centroids [][]float64, assignments []int) [][]float64 {
	groups := make([][][]float64, len(centroids))
	for p, c := range assignments {
		groups[c] = append(groups[c], points[p])
	}
	next := make([][]float64, len(centroids))
	for c, g := range groups {
		if len(g) == 0 {
			next[c] = centroids[c]
			continue
		}
		next[c] = vector.Mean(g)
	}
	return next
}

func equal(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func clone(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}
