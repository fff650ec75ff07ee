package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoBlobs() [][]float64 {
	return [][]float64{
		{0, 0}, {0.1, 0}, {0, 0.1},
		{10, 10}, {10.1, 10}, {10, 10.1},
	}
}

func TestKMeans_SeparatesBlobs(t *testing.T) {
	res, err := KMeans(twoBlobs(), 2, Options{Seed: 42})
	require.NoError(t, err)
	require.Len(t, res.Centroids, 2)

	a := res.Assignments
	assert.Equal(t, a[0], a[1])
	assert.Equal(t, a[0], a[2])
	assert.Equal(t, a[3], a[4])
	assert.Equal(t, a[3], a[5])
	assert.NotEqual(t, a[0], a[3])
}

func TestKMeans_Completeness(t *testing.T) {
	points := twoBlobs()
	for k := 1; k <= len(points); k++ {
		res, err := KMeans(points, k, Options{Seed: 7})
		require.NoError(t, err)
		require.Len(t, res.Centroids, k)

		seen := make(map[int]int)
		for _, m := range res.Members() {
			for _, p := range m {
				seen[p]++
			}
		}
		require.Len(t, seen, len(points), "k=%d", k)
		for p, c := range seen {
			assert.Equal(t, 1, c, "point %d assigned %d times with k=%d", p, c, k)
		}
	}
}

func TestKMeans_Deterministic(t *testing.T) {
	points := [][]float64{{1, 2}, {3, 1}, {0, 0}, {5, 5}, {4, 4}, {2, 2}, {9, 1}}
	first, err := KMeans(points, 3, Options{Seed: 42})
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := KMeans(points, 3, Options{Seed: 42})
		require.NoError(t, err)
		assert.Equal(t, first.Assignments, again.Assignments)
		assert.Equal(t, first.Centroids, again.Centroids)
	}
}

func TestKMeans_MoreClustersThanPoints(t *testing.T) {
	points := [][]float64{{0, 1}, {1, 0}}
	res, err := KMeans(points, 4, Options{Seed: 1})
	require.NoError(t, err)
	require.Len(t, res.Centroids, 4)

	members := res.Members()
	nonEmpty := 0
	for _, m := range members {
		if len(m) > 0 {
			nonEmpty++
		}
	}
	assert.Equal(t, 2, nonEmpty)
	assert.NotEqual(t, res.Assignments[0], res.Assignments[1])
}

func TestKMeans_IdenticalPoints(t *testing.T) {
	points := [][]float64{{0, 0}, {0, 0}, {0, 0}}
	res, err := KMeans(points, 2, Options{Seed: 3})
	require.NoError(t, err)
	// Every point ties between identical centroids and goes to the first.
	assert.Equal(t, []int{0, 0, 0}, res.Assignments)
}

func TestKMeans_InvalidK(t *testing.T) {
	_, err := KMeans(twoBlobs(), 0, Options{})
	assert.Error(t, err)
}

func TestKMeans_Empty(t *testing.T) {
	res, err := KMeans(nil, 3, Options{})
	require.NoError(t, err)
	assert.Empty(t, res.Centroids)
	assert.Empty(t, res.Assignments)
}

func TestKMeans_IterationCap(t *testing.T) {
	res, err := KMeans(twoBlobs(), 2, Options{Seed: 42, MaxIterations: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Iterations)
}

func TestAssign_TiesToLowestIndex(t *testing.T) {
	got := Assign([][]float64{{1, 0}}, [][]float64{{0, 0}, {2, 0}})
	assert.Equal(t, []int{0}, got)
}

func TestThemes(t *testing.T) {
	terms := []string{"alpha", "beta", "gamma", "delta"}
	assert.Equal(t, []string{"gamma", "alpha", "delta"}, Themes([]float64{0.5, 0.1, 0.9, 0.5}, terms, 3))
	assert.Equal(t, []string{"alpha", "beta"}, Themes([]float64{0, 0}, terms[:2], 3))
	assert.Empty(t, Themes(nil, nil, 3))
	assert.Empty(t, Themes([]float64{1}, []string{"x"}, 0))
}
