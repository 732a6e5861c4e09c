package insights

import (
	"math"
	"math/rand"
)

const (
	defaultTrees      = 100
	defaultSampleSize = 256
)

// isolationForest is an unsupervised outlier scorer: points that isolate in
// few random splits receive scores near 1, inliers near 0.5 or below. The
// forest is deterministic for a given seed.
type isolationForest struct {
	rng        *rand.Rand
	numTrees   int
	sampleSize int

	// fitSample is the per-tree sample size actually used by fit, which is
	// capped at the dataset size.
	fitSample int
	trees     []*isoNode
}

type isoNode struct {
	left, right *isoNode
	splitDim    int
	splitValue  float64
	size        int
}

func newIsolationForest(seed int64, numTrees, sampleSize int) *isolationForest {
	return &isolationForest{
		rng:        rand.New(rand.NewSource(seed)),
		numTrees:   numTrees,
		sampleSize: sampleSize,
	}
}

// fit builds the forest over the given feature vectors. It returns false
// when the data cannot be split at all (every vector identical).
func (f *isolationForest) fit(features [][]float64) bool {
	if len(features) == 0 || !hasSpread(features) {
		return false
	}

	sample := f.sampleSize
	if sample > len(features) {
		sample = len(features)
	}
	f.fitSample = sample
	maxDepth := int(math.Ceil(math.Log2(float64(sample)))) + 1

	f.trees = make([]*isoNode, f.numTrees)
	for i := 0; i < f.numTrees; i++ {
		subset := f.subsample(features, sample)
		f.trees[i] = f.buildTree(subset, 0, maxDepth)
	}
	return true
}

// score returns the anomaly score for one vector: 2^(-E[pathLen]/c(n)).
func (f *isolationForest) score(x []float64) float64 {
	var total float64
	for _, tree := range f.trees {
		total += pathLength(tree, x, 0)
	}
	avg := total / float64(len(f.trees))
	norm := averagePathLength(f.fitSample)
	if norm == 0 {
		norm = 1
	}
	return math.Pow(2, -avg/norm)
}

func (f *isolationForest) subsample(features [][]float64, n int) [][]float64 {
	if n >= len(features) {
		return features
	}
	perm := f.rng.Perm(len(features))
	subset := make([][]float64, n)
	for i := 0; i < n; i++ {
		subset[i] = features[perm[i]]
	}
	return subset
}

func (f *isolationForest) buildTree(subset [][]float64, depth, maxDepth int) *isoNode {
	if len(subset) <= 1 || depth >= maxDepth {
		return &isoNode{size: len(subset)}
	}

	dims := len(subset[0])
	// Try a few dimensions before giving up on a degenerate subset.
	for attempt := 0; attempt < dims; attempt++ {
		dim := f.rng.Intn(dims)
		lo, hi := subset[0][dim], subset[0][dim]
		for _, x := range subset {
			if x[dim] < lo {
				lo = x[dim]
			}
			if x[dim] > hi {
				hi = x[dim]
			}
		}
		if hi <= lo {
			continue
		}

		split := lo + f.rng.Float64()*(hi-lo)
		var left, right [][]float64
		for _, x := range subset {
			if x[dim] < split {
				left = append(left, x)
			} else {
				right = append(right, x)
			}
		}
		if len(left) == 0 || len(right) == 0 {
			continue
		}
		return &isoNode{
			splitDim:   dim,
			splitValue: split,
			left:       f.buildTree(left, depth+1, maxDepth),
			right:      f.buildTree(right, depth+1, maxDepth),
			size:       len(subset),
		}
	}
	return &isoNode{size: len(subset)}
}

func pathLength(node *isoNode, x []float64, depth float64) float64 {
	if node.left == nil && node.right == nil {
		return depth + averagePathLength(node.size)
	}
	if x[node.splitDim] < node.splitValue {
		return pathLength(node.left, x, depth+1)
	}
	return pathLength(node.right, x, depth+1)
}

// averagePathLength is c(n): the expected path length of an unsuccessful
// BST search over n points, used to normalize isolation depths.
func averagePathLength(n int) float64 {
	if n <= 1 {
		return 0
	}
	if n == 2 {
		return 1
	}
	nf := float64(n)
	harmonic := math.Log(nf-1) + 0.5772156649
	return 2*harmonic - 2*(nf-1)/nf
}

func hasSpread(features [][]float64) bool {
	first := features[0]
	for _, x := range features[1:] {
		for d, v := range x {
			if v != first[d] {
				return true
			}
		}
	}
	return false
}
