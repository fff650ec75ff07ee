// Package vector provides dense float64 vector math shared by ranking and clustering.
package vector

import "math"

// Dot returns the inner product of a and b. Vectors of different length yield 0.
func Dot(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot float64
	for i := range a {
		dot += a[i] * b[i]
	}
	return dot
}

// L2Norm returns the L2 norm of a vector.
func L2Norm(x []float64) float64 {
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// Cosine returns the cosine similarity of a and b. It is 0 when either norm is 0,
// never NaN. For nonnegative vectors the result is clamped to [0, 1] so rounding
// cannot push a parallel pair above 1.
func Cosine(a, b []float64) float64 {
	na, nb := L2Norm(a), L2Norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	s := Dot(a, b) / (na * nb)
	if s > 1 {
		return 1
	}
	if s < -1 {
		return -1
	}
	return s
}

// SquaredDistance returns the squared Euclidean distance between a and b.
// It assumes equal length; extra trailing components of the longer vector are ignored.
func SquaredDistance(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// Mean returns the component-wise mean of the given rows, or nil when rows is empty.
func Mean(rows [][]float64) []float64 {
	if len(rows) == 0 {
		return nil
	}
	out := make([]float64, len(rows[0]))
	for _, r := range rows {
		for i := range out {
			out[i] += r[i]
		}
	}
	n := float64(len(rows))
	for i := range out {
		out[i] /= n
	}
	return out
}
