package sampling

import (
	"errors"
	"math/rand"
	"testing"
)

func TestBalanceWeightsMorePositives(t *testing.T) {
	labels := []float64{1, 1, 1, 0}

	wPos, wNeg := BalanceWeights(labels, 1)
	if wNeg != 1.0 {
		t.Fatalf("expected majority weight 1, got %v", wNeg)
	}
	if wPos != 1.0/3 {
		t.Fatalf("expected positive weight 1/3, got %v", wPos)
	}
}

func TestBalanceWeightsMoreNegatives(t *testing.T) {
	labels := []float64{1, 0, 0, 0}

	wPos, wNeg := BalanceWeights(labels, 1)
	if wPos != 1.0 {
		t.Fatalf("expected majority weight 1, got %v", wPos)
	}
	if wNeg != 1.0/3 {
		t.Fatalf("expected negative weight 1/3, got %v", wNeg)
	}
}

func TestBalanceWeightsBalanced(t *testing.T) {
	labels := []float64{1, 1, 0, 0}

	wPos, wNeg := BalanceWeights(labels, 2)
	if wPos != 1.0 || wNeg != 1.0 {
		t.Fatalf("expected (1, 1), got (%v, %v)", wPos, wNeg)
	}
}

func TestUniformGroupsStrict(t *testing.T) {
	// Bin [0,10) has 4 members, bin [10,20) has 2.
	x := []float64{1, 2, 3, 4, 11, 12}
	edges := []float64{0, 10, 20}

	keep, err := UniformGroups(x, edges, &GroupOptions{
		Strict: true,
		Rand:   rand.New(rand.NewSource(3)),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Strict mode draws min(counts) = 2 from each bin.
	if len(keep) != 4 {
		t.Fatalf("expected 4 kept indices, got %v", keep)
	}

	firstBin, secondBin := 0, 0
	for _, i := range keep {
		if x[i] < 10 {
			firstBin++
		} else {
			secondBin++
		}
	}
	if firstBin != 2 || secondBin != 2 {
		t.Fatalf("expected 2 per bin, got %d and %d", firstBin, secondBin)
	}
}

func TestUniformGroupsRelaxedCappedByCounts(t *testing.T) {
	x := []float64{1, 2, 3, 4, 11, 12}
	edges := []float64{0, 10, 20}

	keep, err := UniformGroups(x, edges, &GroupOptions{
		Rand: rand.New(rand.NewSource(3)),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(keep) < 4 || len(keep) > 6 {
		t.Fatalf("relaxed selection out of bounds: %v", keep)
	}

	seen := make(map[int]bool)
	for _, i := range keep {
		if i < 0 || i >= len(x) {
			t.Fatalf("index %d out of range", i)
		}
		if seen[i] {
			t.Fatalf("index %d selected twice", i)
		}
		seen[i] = true
	}
}

func TestUniformGroupsIgnoresOutOfRange(t *testing.T) {
	x := []float64{-5, 1, 2, 25, 11}
	edges := []float64{0, 10, 20}

	keep, err := UniformGroups(x, edges, &GroupOptions{
		Strict: true,
		Rand:   rand.New(rand.NewSource(1)),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, i := range keep {
		if x[i] < 0 || x[i] >= 20 {
			t.Fatalf("selected out-of-range value %v", x[i])
		}
	}
}

func TestUniformGroupsBadEdges(t *testing.T) {
	_, err := UniformGroups([]float64{1}, []float64{0}, nil)
	if !errors.Is(err, ErrBadEdges) {
		t.Fatalf("expected ErrBadEdges, got %v", err)
	}
}

func TestDigitize(t *testing.T) {
	edges := []float64{0, 10, 20}

	cases := []struct {
		v    float64
		want int
	}{
		{-1, -1},
		{0, 0},
		{9.99, 0},
		{10, 1},
		{19.99, 1},
		{20, -1},
	}
	for _, c := range cases {
		if got := digitize(c.v, edges); got != c.want {
			t.Errorf("digitize(%v) = %d, expected %d", c.v, got, c.want)
		}
	}
}
