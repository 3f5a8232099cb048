// Package kmeans implements Lloyd's algorithm over flattened float32
// vectors. Inputs are expected to be L2-normalized, so squared
// Euclidean distance orders pairs the same way cosine similarity does.
package kmeans

import (
	"math"
	"math/rand"
)

// Result holds trained centroids (flattened k * dim) and the cluster
// assignment of each input vector.
type Result struct {
	Centroids   []float32
	Assignments []int
	Counts      []int
}

func sqDist(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// Train clusters n = len(vectors)/dim vectors into k groups. The rng
// drives centroid seeding, so a fixed seed gives reproducible runs.
// Returns nil when there are fewer vectors than clusters.
func Train(vectors []float32, dim, k, maxIter int, rng *rand.Rand) *Result {
	n := len(vectors) / dim
	if n < k || k < 1 {
		return nil
	}

	centroids := make([]float32, k*dim)

	// Seed centroids from distinct data points.
	perm := rng.Perm(n)
	for i := 0; i < k; i++ {
		copy(centroids[i*dim:(i+1)*dim], vectors[perm[i]*dim:(perm[i]+1)*dim])
	}

	assignments := make([]int, n)
	counts := make([]int, k)
	sums := make([]float32, k*dim)

	for iter := 0; iter < maxIter; iter++ {
		changed := false

		// Assignment step
		for i := 0; i < n; i++ {
			vec := vectors[i*dim : (i+1)*dim]
			best := -1
			minDist := float32(math.MaxFloat32)

			for j := 0; j < k; j++ {
				d := sqDist(vec, centroids[j*dim:(j+1)*dim])
				if d < minDist {
					minDist = d
					best = j
				}
			}

			if assignments[i] != best {
				assignments[i] = best
				changed = true
			}
		}

		if !changed {
			break
		}

		// Update step
		for i := range sums {
			sums[i] = 0
		}
		for i := range counts {
			counts[i] = 0
		}

		for i := 0; i < n; i++ {
			cluster := assignments[i]
			vec := vectors[i*dim : (i+1)*dim]
			for d := 0; d < dim; d++ {
				sums[cluster*dim+d] += vec[d]
			}
			counts[cluster]++
		}

		for j := 0; j < k; j++ {
			if counts[j] > 0 {
				scale := 1.0 / float32(counts[j])
				for d := 0; d < dim; d++ {
					centroids[j*dim+d] = sums[j*dim+d] * scale
				}
			} else {
				// Re-seed an empty cluster with a random point.
				idx := rng.Intn(n)
				copy(centroids[j*dim:(j+1)*dim], vectors[idx*dim:(idx+1)*dim])
			}
		}
	}

	for i := range counts {
		counts[i] = 0
	}
	for _, a := range assignments {
		counts[a]++
	}

	return &Result{Centroids: centroids, Assignments: assignments, Counts: counts}
}

// Silhouette scores a clustering in [-1, 1] using centroid distances:
// for each point, (b-a)/max(a,b) with a the distance to its own
// centroid and b the distance to the nearest other centroid. Higher is
// better separated. Requires k >= 2.
func Silhouette(vectors []float32, dim int, res *Result) float64 {
	k := len(res.Centroids) / dim
	if k < 2 {
		return 0
	}

	n := len(vectors) / dim
	var total float64
	for i := 0; i < n; i++ {
		vec := vectors[i*dim : (i+1)*dim]
		own := res.Assignments[i]

		a := math.Sqrt(float64(sqDist(vec, res.Centroids[own*dim:(own+1)*dim])))
		b := math.MaxFloat64
		for j := 0; j < k; j++ {
			if j == own {
				continue
			}
			d := math.Sqrt(float64(sqDist(vec, res.Centroids[j*dim:(j+1)*dim])))
			if d < b {
				b = d
			}
		}

		if m := math.Max(a, b); m > 0 {
			total += (b - a) / m
		}
	}

	return total / float64(n)
}
