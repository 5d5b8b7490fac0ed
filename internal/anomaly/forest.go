package anomaly

import (
	"math"
	"math/rand/v2"
)

const eulerGamma = 0.5772156649

// forest is an isolation forest fitted on one feature matrix.
type forest struct {
	trees []*node
	psi   int
}

type node struct {
	feature     int
	split       float64
	left, right *node
	size        int // points reaching a leaf; 0 for internal nodes
}

func (n *node) leaf() bool { return n.left == nil }

// fitForest grows trees isolation trees, each on a sample of
// min(sampleSize, len(x)) rows drawn without replacement.
func fitForest(x [][]float64, trees, sampleSize int, rng *rand.Rand) *forest {
	psi := min(sampleSize, len(x))
	limit := int(math.Ceil(math.Log2(float64(psi))))

	f := &forest{psi: psi, trees: make([]*node, 0, trees)}
	for range trees {
		idx := rng.Perm(len(x))[:psi]
		f.trees = append(f.trees, grow(x, idx, 0, limit, rng))
	}
	return f
}

func grow(x [][]float64, idx []int, depth, limit int, rng *rand.Rand) *node {
	if depth >= limit || len(idx) <= 1 {
		return &node{size: len(idx)}
	}

	// Only features that still vary within the node can split it.
	type span struct {
		feature int
		lo, hi  float64
	}
	var candidates []span
	for q := range x[idx[0]] {
		lo, hi := x[idx[0]][q], x[idx[0]][q]
		for _, i := range idx[1:] {
			lo = math.Min(lo, x[i][q])
			hi = math.Max(hi, x[i][q])
		}
		if hi > lo {
			candidates = append(candidates, span{q, lo, hi})
		}
	}
	if len(candidates) == 0 {
		return &node{size: len(idx)}
	}

	c := candidates[rng.IntN(len(candidates))]
	p := c.lo + rng.Float64()*(c.hi-c.lo)
	for p <= c.lo {
		p = c.lo + rng.Float64()*(c.hi-c.lo)
	}

	var left, right []int
	for _, i := range idx {
		if x[i][c.feature] < p {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	return &node{
		feature: c.feature,
		split:   p,
		left:    grow(x, left, depth+1, limit, rng),
		right:   grow(x, right, depth+1, limit, rng),
	}
}

// pathLength is the depth at which p is isolated in the tree, plus the
// expected remaining depth of the unbuilt subtree at a leaf.
func pathLength(n *node, p []float64) float64 {
	depth := 0.0
	for !n.leaf() {
		if p[n.feature] < n.split {
			n = n.left
		} else {
			n = n.right
		}
		depth++
	}
	return depth + avgPathLength(n.size)
}

// score is the anomaly score 2^(-E[h(p)]/c(psi)), in (0, 1]. Values near 1
// are isolated quickly.
func (f *forest) score(p []float64) float64 {
	var total float64
	for _, t := range f.trees {
		total += pathLength(t, p)
	}
	mean := total / float64(len(f.trees))
	norm := avgPathLength(f.psi)
	if norm == 0 {
		return 0.5
	}
	return math.Pow(2, -mean/norm)
}

// avgPathLength is c(n), the average path length of an unsuccessful
// search in a binary search tree of n points.
func avgPathLength(n int) float64 {
	switch {
	case n <= 1:
		return 0
	case n == 2:
		return 1
	}
	fn := float64(n)
	return 2*harmonic(n-1) - 2*(fn-1)/fn
}

func harmonic(i int) float64 {
	return math.Log(float64(i)) + eulerGamma
}
