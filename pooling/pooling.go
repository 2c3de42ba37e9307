// Package pooling reduces stacks of feature vectors to fixed-size
// descriptors. A stack is an [m x d] matrix: m feature vectors of
// dimensionality d, ordered by time. The reductions here collapse the
// temporal axis, either globally or over contiguous partitions of it.
package pooling

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrUnknownKind reports a pooling kind outside the closed Kind set.
	ErrUnknownKind = errors.New("pooling: unknown kind")

	// ErrEmptyRegion reports a partition region with no rows. Pooling an
	// empty region has no defined value, so it is rejected instead of
	// producing NaN columns.
	ErrEmptyRegion = errors.New("pooling: empty region")
)

// Kind selects the elementwise reduction applied along the stacking axis
type Kind int

const (
	// Mean averages each feature dimension over the pooled rows
	Mean Kind = iota
	// Max takes the elementwise maximum over the pooled rows
	Max
)

func (k Kind) String() string {
	switch k {
	case Mean:
		return "mean"
	case Max:
		return "max"
	default:
		return "unknown"
	}
}

// Reduce collapses all m rows of x into a single d-vector using the given
// kind. An empty matrix cannot be reduced and returns ErrEmptyRegion.
func Reduce(x *mat.Dense, kind Kind) ([]float64, error) {
	m, _ := x.Dims()
	return reduceRegion(x, 0, m, kind)
}

// reduceRegion pools rows [lo, hi) of x into one d-vector
func reduceRegion(x *mat.Dense, lo, hi int, kind Kind) ([]float64, error) {
	_, d := x.Dims()
	if hi <= lo {
		return nil, fmt.Errorf("%w: rows [%d, %d)", ErrEmptyRegion, lo, hi)
	}

	out := make([]float64, d)
	switch kind {
	case Mean:
		for i := lo; i < hi; i++ {
			floats.Add(out, x.RawRowView(i))
		}
		floats.Scale(1.0/float64(hi-lo), out)
	case Max:
		copy(out, x.RawRowView(lo))
		for i := lo + 1; i < hi; i++ {
			row := x.RawRowView(i)
			for j, v := range row {
				if v > out[j] {
					out[j] = v
				}
			}
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(kind))
	}

	return out, nil
}

// partitionEdges splits m rows into n contiguous regions and returns the
// n+1 region boundaries. Boundaries are the running sum of 1/n scaled to m
// and rounded half-to-even, matching the numpy pipeline this format comes
// from; adjacent boundaries may coincide when n > m.
func partitionEdges(m, n int) []int {
	edges := make([]int, n+1)
	step := 1.0 / float64(n)
	cum := 0.0
	for k := 1; k <= n; k++ {
		cum += step
		edges[k] = int(math.RoundToEven(cum * float64(m)))
	}
	return edges
}

// normalizeRegion scales v to unit L2 norm. A zero vector is left as-is:
// the zero norm is treated as 1 so silent regions stay zero instead of NaN.
func normalizeRegion(v []float64) {
	norm := floats.Norm(v, 2)
	if norm == 0 {
		return
	}
	floats.Scale(1.0/norm, v)
}
