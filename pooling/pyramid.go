package pooling

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// PyramidPool computes a multi-resolution descriptor of the [m x d] stack x.
// Level i (for i in 0..levels inclusive) partitions the m rows into 2^i
// contiguous regions; every region is pooled with kind into a d-vector.
// The 2^(levels+1) - 1 region vectors are concatenated in level-then-position
// order, so the result has d * (2^(levels+1) - 1) entries and level 0 is a
// global pool of the whole stack.
//
// With normalize, each region vector is scaled to unit L2 norm before
// concatenation (a zero norm is treated as 1). With unit, the concatenated
// descriptor is scaled by 1/(2^(levels+1) - 1).
//
// A partition whose boundaries coincide yields no rows to pool and fails
// with ErrEmptyRegion; this happens once 2^levels exceeds m.
func PyramidPool(x *mat.Dense, levels int, kind Kind, normalize, unit bool) ([]float64, error) {
	if levels < 0 {
		return nil, fmt.Errorf("pooling: negative pyramid levels %d", levels)
	}

	m, d := x.Dims()
	regions := 1<<(levels+1) - 1
	out := make([]float64, 0, regions*d)

	for i := 0; i <= levels; i++ {
		n := 1 << i
		edges := partitionEdges(m, n)
		for j := 0; j < n; j++ {
			v, err := reduceRegion(x, edges[j], edges[j+1], kind)
			if err != nil {
				return nil, fmt.Errorf("level %d region %d: %w", i, j, err)
			}
			if normalize {
				normalizeRegion(v)
			}
			out = append(out, v...)
		}
	}

	if unit {
		scale := 1.0 / float64(regions)
		for i := range out {
			out[i] *= scale
		}
	}
	return out, nil
}

// ChunkPool pools the [m x d] stack x over a single partition of exactly n
// contiguous regions and concatenates the n pooled d-vectors. Region
// boundaries, pooling and normalization behave as in PyramidPool; with unit
// the concatenated descriptor is scaled by 1/n. ChunkPool with n = 1 is a
// plain global pool.
func ChunkPool(x *mat.Dense, n int, kind Kind, normalize, unit bool) ([]float64, error) {
	if n < 1 {
		return nil, fmt.Errorf("pooling: chunk count %d < 1", n)
	}

	m, d := x.Dims()
	edges := partitionEdges(m, n)
	out := make([]float64, 0, n*d)

	for j := 0; j < n; j++ {
		v, err := reduceRegion(x, edges[j], edges[j+1], kind)
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", j, err)
		}
		if normalize {
			normalizeRegion(v)
		}
		out = append(out, v...)
	}

	if unit {
		scale := 1.0 / float64(n)
		for i := range out {
			out[i] *= scale
		}
	}
	return out, nil
}
