package segment

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func matEqual(a, b *mat.Dense) bool {
	ra, ca := a.Dims()
	rb, cb := b.Dims()
	if ra != rb || ca != cb {
		return false
	}
	for i := 0; i < ra; i++ {
		for j := 0; j < ca; j++ {
			if math.Abs(a.At(i, j)-b.At(i, j)) > 1e-12 {
				return false
			}
		}
	}
	return true
}

func TestConvertLengthToBounds(t *testing.T) {
	x := mat.NewDense(1, 2, []float64{5, 10})

	got, err := Convert(x, LengthToBounds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := mat.NewDense(1, 2, []float64{5, 14}); !matEqual(got, want) {
		t.Fatalf("expected [5 14], got %v", mat.Formatted(got))
	}
}

func TestConvertCenterToBounds(t *testing.T) {
	x := mat.NewDense(2, 2, []float64{
		10, 5,
		8, 4,
	})

	got, err := Convert(x, CenterToBounds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// center 10 dur 5: start = ceil(7.5) = 8, end = 12.
	// center 8 dur 4: start = ceil(6) = 6, end = 9.
	want := mat.NewDense(2, 2, []float64{
		8, 12,
		6, 9,
	})
	if !matEqual(got, want) {
		t.Fatalf("expected %v, got %v", mat.Formatted(want), mat.Formatted(got))
	}
}

func TestConvertBoundsToCenter(t *testing.T) {
	x := mat.NewDense(1, 2, []float64{8, 12})

	got, err := Convert(x, BoundsToCenter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := mat.NewDense(1, 2, []float64{10, 5}); !matEqual(got, want) {
		t.Fatalf("expected [10 5], got %v", mat.Formatted(got))
	}
}

func TestConvertRoundTripOddDuration(t *testing.T) {
	x := mat.NewDense(3, 2, []float64{
		10, 5,
		100, 33,
		7, 1,
	})

	bounds, err := Convert(x, CenterToBounds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	back, err := Convert(bounds, BoundsToCenter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !matEqual(back, x) {
		t.Fatalf("round trip changed %v into %v", mat.Formatted(x), mat.Formatted(back))
	}
}

func TestConvertEvenDurationRounding(t *testing.T) {
	// With an even duration the true midpoint of the recovered bounds falls
	// on a half-integer; half-to-even rounding picks the even neighbor.
	x := mat.NewDense(1, 2, []float64{10, 4})

	bounds, err := Convert(x, CenterToBounds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// start = ceil(8) = 8, end = 11, midpoint 9.5 rounds to 10.
	back, err := Convert(bounds, BoundsToCenter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if back.At(0, 0) != 10 || back.At(0, 1) != 4 {
		t.Fatalf("expected [10 4], got %v", mat.Formatted(back))
	}
}

func TestConvertBadShape(t *testing.T) {
	x := mat.NewDense(1, 3, []float64{1, 2, 3})

	if _, err := Convert(x, CenterToBounds); !errors.Is(err, ErrBadShape) {
		t.Fatalf("expected ErrBadShape, got %v", err)
	}
}

func TestIntersectionRatio(t *testing.T) {
	target := mat.NewDense(1, 2, []float64{0, 9})
	test := mat.NewDense(1, 2, []float64{5, 14})

	lo, hi, ratio, err := IntersectionRatio(target, test)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lo.At(0, 0) != 5 || hi.At(0, 0) != 9 {
		t.Fatalf("expected bounds [5 9], got [%v %v]", lo.At(0, 0), hi.At(0, 0))
	}
	// Overlap covers frames 5..9, 5 of the 10 target frames.
	if ratio.At(0, 0) != 0.5 {
		t.Fatalf("expected ratio 0.5, got %v", ratio.At(0, 0))
	}
}

func TestIntersectionNotClamped(t *testing.T) {
	target := mat.NewDense(1, 2, []float64{0, 4})
	test := mat.NewDense(1, 2, []float64{10, 14})

	lo, hi, err := Intersection(target, test)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Disjoint segments keep raw bounds with hi < lo.
	if lo.At(0, 0) != 10 || hi.At(0, 0) != 4 {
		t.Fatalf("expected raw bounds [10 4], got [%v %v]", lo.At(0, 0), hi.At(0, 0))
	}
}

func TestIntersectionRatioDegenerateTarget(t *testing.T) {
	// A zero-length target in bounds form: end = start - 1, size 0.
	target := mat.NewDense(1, 2, []float64{5, 4})
	test := mat.NewDense(1, 2, []float64{0, 9})

	_, _, ratio, err := IntersectionRatio(target, test)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v := ratio.At(0, 0); math.IsNaN(v) || math.IsInf(v, 0) || v != 0 {
		t.Fatalf("expected degenerate ratio 0, got %v", v)
	}
}

func TestIoUDisjoint(t *testing.T) {
	target := mat.NewDense(1, 2, []float64{0, 9})
	test := mat.NewDense(1, 2, []float64{10, 19})

	iou, err := IoU(target, test)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if iou.At(0, 0) != 0 {
		t.Fatalf("expected IoU 0, got %v", iou.At(0, 0))
	}
}

func TestIoUSelf(t *testing.T) {
	x := mat.NewDense(3, 2, []float64{
		0, 9,
		5, 5,
		100, 250,
	})

	iou, err := IoU(x, x)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 3; i++ {
		if iou.At(i, i) != 1 {
			t.Fatalf("expected IoU(x, x)[%d,%d] = 1, got %v", i, i, iou.At(i, i))
		}
	}
}

func TestIoUSymmetry(t *testing.T) {
	a := mat.NewDense(2, 2, []float64{
		0, 9,
		3, 12,
	})
	b := mat.NewDense(3, 2, []float64{
		5, 14,
		0, 4,
		9, 9,
	})

	ab, err := IoU(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ba, err := IoU(b, a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var baT mat.Dense
	baT.CloneFrom(ba.T())
	if !matEqual(ab, &baT) {
		t.Fatalf("IoU(a,b) = %v differs from IoU(b,a)^T = %v", mat.Formatted(ab), mat.Formatted(&baT))
	}
}

func TestIoUDegenerateUnion(t *testing.T) {
	// Zero-length segments in bounds form: end = start - 1.
	target := mat.NewDense(1, 2, []float64{5, 4})
	test := mat.NewDense(1, 2, []float64{5, 4})

	iou, err := IoU(target, test)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v := iou.At(0, 0); math.IsNaN(v) || v != 0 {
		t.Fatalf("expected degenerate IoU 0, got %v", v)
	}
}

func TestUnitRescaleCopies(t *testing.T) {
	x := mat.NewDense(2, 2, []float64{
		10, 16,
		20, 32,
	})

	got, err := UnitRescale(x, 101, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if x.At(0, 0) != 10 {
		t.Fatal("input was mutated without InPlace")
	}
	if got.At(0, 0) != 0.1 || got.At(1, 1) != 32.0/101 {
		t.Fatalf("unexpected rescale result %v", mat.Formatted(got))
	}
}

func TestUnitRescaleInPlaceWithInit(t *testing.T) {
	x := mat.NewDense(2, 2, []float64{
		15, 16,
		25, 32,
	})

	got, err := UnitRescale(x, 101, &RescaleOptions{
		Init:    []float64{5, 5},
		InPlace: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != x {
		t.Fatal("expected in-place result to alias the input")
	}
	if x.At(0, 0) != 0.1 || x.At(1, 0) != 0.2 {
		t.Fatalf("unexpected in-place result %v", mat.Formatted(x))
	}
}

func TestUnitRescaleIncompatibleInit(t *testing.T) {
	x := mat.NewDense(2, 2, nil)

	_, err := UnitRescale(x, 100, &RescaleOptions{Init: []float64{1}})
	if !errors.Is(err, ErrIncompatibleInit) {
		t.Fatalf("expected ErrIncompatibleInit, got %v", err)
	}
}
