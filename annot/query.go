package annot

import (
	"math/rand"
)

// QueryOptions controls IndexOfQueries
type QueryOptions struct {
	// Samples truncates the result to a random subset of this size;
	// 0 keeps every match in query order.
	Samples int

	// Rand draws the subset permutation; nil uses a fixed-seed source so
	// repeated runs select the same subset.
	Rand *rand.Rand
}

// IndexOfQueries returns the row indices whose value in the named column
// equals any of the queries, concatenated in query order. With
// opts.Samples > 0 the concatenated indices are randomly permuted and
// truncated to that many samples.
func IndexOfQueries(cols Columns, column string, queries []string, opts *QueryOptions) ([]int, error) {
	values, err := cols.Strings(column)
	if err != nil {
		return nil, err
	}

	var idx []int
	for _, q := range queries {
		for i, v := range values {
			if v == q {
				idx = append(idx, i)
			}
		}
	}

	if opts == nil || opts.Samples <= 0 {
		return idx, nil
	}

	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(0))
	}
	perm := rng.Perm(len(idx))
	n := opts.Samples
	if n > len(idx) {
		n = len(idx)
	}
	out := make([]int, n)
	for i := 0; i < n; i++ {
		out[i] = idx[perm[i]]
	}
	return out, nil
}
