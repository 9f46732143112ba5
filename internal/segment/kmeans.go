// Package segment clusters customers by age and spend and labels each
// cluster with a persona.
package segment

import (
	"errors"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
)

// ErrTooFewSamples is returned when there are fewer samples than clusters.
var ErrTooFewSamples = errors.New("fewer samples than clusters")

// KMeans is Lloyd's algorithm with k-means++ seeding, restarted NInit times.
type KMeans struct {
	K       int
	NInit   int
	MaxIter int
	Tol     float64
	Seed    uint64
}

// NewKMeans returns the default configuration: three clusters, ten restarts, seed 42.
func NewKMeans() KMeans {
	return KMeans{K: 3, NInit: 10, MaxIter: 300, Tol: 1e-4, Seed: 42}
}

// Fit is the outcome of the best restart.
type Fit struct {
	Labels    []int
	Centroids [][]float64
	Inertia   float64
	Iter      int
}

// FitPredict clusters x (row-major samples) and returns the lowest-inertia run.
func (km KMeans) FitPredict(x [][]float64) (*Fit, error) {
	k := km.K
	if k <= 0 {
		k = 3
	}
	if len(x) < k {
		return nil, ErrTooFewSamples
	}
	nInit := km.NInit
	if nInit <= 0 {
		nInit = 1
	}
	maxIter := km.MaxIter
	if maxIter <= 0 {
		maxIter = 300
	}
	tol := km.Tol * meanVariance(x)

	rng := rand.New(rand.NewPCG(km.Seed, km.Seed^0x9e3779b97f4a7c15))
	var best *Fit
	for run := 0; run < nInit; run++ {
		centers := seedPlusPlus(x, k, rng)
		fit := lloyd(x, centers, maxIter, tol)
		if best == nil || fit.Inertia < best.Inertia {
			best = fit
		}
	}
	return best, nil
}

func lloyd(x [][]float64, centers [][]float64, maxIter int, tol float64) *Fit {
	k := len(centers)
	dim := len(x[0])
	labels := make([]int, len(x))
	iter := 0
	for iter < maxIter {
		iter++
		assign(x, centers, labels)

		next := make([][]float64, k)
		counts := make([]int, k)
		for c := range next {
			next[c] = make([]float64, dim)
		}
		for i, p := range x {
			floats.Add(next[labels[i]], p)
			counts[labels[i]]++
		}
		for c := range next {
			if counts[c] == 0 {
				// reseed an empty cluster at the point farthest from its centroid
				far := farthest(x, centers, labels)
				copy(next[c], x[far])
				labels[far] = c
				continue
			}
			floats.Scale(1/float64(counts[c]), next[c])
		}
		shift := 0.0
		for c := range centers {
			shift += sqDist(centers[c], next[c])
		}
		centers = next
		if shift <= tol {
			break
		}
	}
	inertia := assign(x, centers, labels)
	return &Fit{Labels: labels, Centroids: centers, Inertia: inertia, Iter: iter}
}

// assign labels each point with its nearest centroid and returns the inertia.
func assign(x [][]float64, centers [][]float64, labels []int) float64 {
	total := 0.0
	for i, p := range x {
		best, bestD := 0, math.Inf(1)
		for c, ctr := range centers {
			if d := sqDist(p, ctr); d < bestD {
				best, bestD = c, d
			}
		}
		labels[i] = best
		total += bestD
	}
	return total
}

func seedPlusPlus(x [][]float64, k int, rng *rand.Rand) [][]float64 {
	centers := make([][]float64, 0, k)
	first := x[rng.IntN(len(x))]
	centers = append(centers, append([]float64(nil), first...))
	d2 := make([]float64, len(x))
	for len(centers) < k {
		sum := 0.0
		for i, p := range x {
			d := math.Inf(1)
			for _, c := range centers {
				d = math.Min(d, sqDist(p, c))
			}
			d2[i] = d
			sum += d
		}
		pick := 0
		if sum == 0 {
			pick = rng.IntN(len(x))
		} else {
			r := rng.Float64() * sum
			for i, d := range d2 {
				r -= d
				if r <= 0 {
					pick = i
					break
				}
				pick = i
			}
		}
		centers = append(centers, append([]float64(nil), x[pick]...))
	}
	return centers
}

func farthest(x [][]float64, centers [][]float64, labels []int) int {
	idx, best := 0, -1.0
	for i, p := range x {
		if d := sqDist(p, centers[labels[i]]); d > best {
			idx, best = i, d
		}
	}
	return idx
}

func sqDist(a, b []float64) float64 {
	d := floats.Distance(a, b, 2)
	return d * d
}

func meanVariance(x [][]float64) float64 {
	dim := len(x[0])
	col := make([]float64, len(x))
	total := 0.0
	for j := 0; j < dim; j++ {
		for i := range x {
			col[i] = x[i][j]
		}
		mean := floats.Sum(col) / float64(len(col))
		v := 0.0
		for _, c := range col {
			v += (c - mean) * (c - mean)
		}
		total += v / float64(len(col))
	}
	return total / float64(dim)
}
