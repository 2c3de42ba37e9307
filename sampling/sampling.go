// Package sampling balances and subsamples training data: class weights
// for binary label vectors and uniform-group subsampling over binned values.
package sampling

import (
	"errors"
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/stat"
)

// ErrBadEdges reports a bin-edge vector with fewer than two edges.
var ErrBadEdges = errors.New("sampling: need at least two bin edges")

// BalanceWeights computes per-class weights that balance a binary {0,1}
// label vector for mini-batches of the given size. The raw weights are the
// per-batch counts of each class; the larger class is then scaled so the
// majority weight is exactly 1.
func BalanceWeights(labels []float64, batchSize int) (wPos, wNeg float64) {
	sum := 0.0
	for _, y := range labels {
		sum += y
	}
	wPos = sum / float64(batchSize)
	wNeg = float64(len(labels))/float64(batchSize) - wPos

	switch {
	case wPos > wNeg:
		wPos, wNeg = wNeg/wPos, 1.0
	case wPos < wNeg:
		wPos, wNeg = 1.0, wPos/wNeg
	default:
		wPos, wNeg = 1.0, 1.0
	}
	return wPos, wNeg
}

// GroupOptions controls UniformGroups
type GroupOptions struct {
	// Strict draws exactly the smallest bin count from every bin; relaxed
	// mode lets larger bins keep up to std(counts) extra random samples.
	Strict bool

	// Rand drives bin budgets and per-bin permutations; nil uses a
	// fixed-seed source.
	Rand *rand.Rand
}

// UniformGroups subsamples x so its distribution over the given bins is as
// uniform as possible, returning the indices of x to keep grouped in bin
// order. Bins are right-open intervals [edges[i], edges[i+1]); values
// outside the edge range belong to no bin and are never selected.
//
// The generator is consumed identically in strict and relaxed mode, so both
// runs over the same data and seed draw the same per-bin permutations.
func UniformGroups(x []float64, edges []float64, opts *GroupOptions) ([]int, error) {
	if len(edges) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrBadEdges, len(edges))
	}
	if opts == nil {
		opts = &GroupOptions{Strict: true}
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(0))
	}

	nBins := len(edges) - 1
	bins := make([][]int, nBins)
	counts := make([]float64, nBins)
	for i, v := range x {
		j := digitize(v, edges)
		if j < 0 {
			continue
		}
		bins[j] = append(bins[j], i)
		counts[j]++
	}

	minCount := counts[0]
	for _, c := range counts[1:] {
		if c < minCount {
			minCount = c
		}
	}

	budget := make([]int, nBins)
	std := stat.PopStdDev(counts, nil)
	for i := range budget {
		// Consume the rng in strict mode too, keeping the per-bin
		// permutations below aligned between the two modes.
		u := rng.Float64()
		if opts.Strict {
			budget[i] = int(minCount)
		} else {
			budget[i] = int(minCount + std*u)
			if budget[i] > len(bins[i]) {
				budget[i] = len(bins[i])
			}
		}
	}

	var keep []int
	for i, members := range bins {
		perm := rng.Perm(len(members))
		for k := 0; k < budget[i] && k < len(members); k++ {
			keep = append(keep, members[perm[k]])
		}
	}
	return keep, nil
}

// digitize returns the right-open bin of v, or -1 when v lies outside the
// edge range.
func digitize(v float64, edges []float64) int {
	if v < edges[0] || v >= edges[len(edges)-1] {
		return -1
	}
	for j := 0; j < len(edges)-1; j++ {
		if v < edges[j+1] {
			return j
		}
	}
	return -1
}
