// Package segment implements interval arithmetic over temporal annotations.
// A segment batch is an [n x 2] matrix of independent closed intervals over
// frame indices; the canonical form is end-inclusive [start, end] bounds.
// All operations return new matrices unless in-place is requested explicitly.
package segment

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrBadShape reports a segment batch without exactly 2 columns.
	ErrBadShape = errors.New("segment: batch must have 2 columns")

	// ErrIncompatibleInit reports a reference-offset vector whose length
	// does not match the batch row count.
	ErrIncompatibleInit = errors.New("segment: init length does not match row count")
)

// Mode identifies a segment representation conversion
type Mode int

const (
	// CenterToBounds turns [center, duration] into [start, end]
	CenterToBounds Mode = iota
	// BoundsToCenter turns [start, end] into [center, duration]
	BoundsToCenter
	// LengthToBounds turns [start, length] into [start, end]
	LengthToBounds
)

func (m Mode) String() string {
	switch m {
	case CenterToBounds:
		return "center-to-bounds"
	case BoundsToCenter:
		return "bounds-to-center"
	case LengthToBounds:
		return "length-to-bounds"
	default:
		return "unknown"
	}
}

func checkBatch(x *mat.Dense) (int, error) {
	r, c := x.Dims()
	if c != 2 {
		return 0, fmt.Errorf("%w: got %dx%d", ErrBadShape, r, c)
	}
	return r, nil
}

// Convert transforms a segment batch between representations and returns a
// new [n x 2] matrix.
//
// CenterToBounds computes start = ceil(center - duration/2) and
// end = start + duration - 1. BoundsToCenter computes
// center = round(0.5*(start+end)) and duration = end - start + 1; rounding is
// half-to-even, so for even durations the recovered center is the
// half-to-even neighbor of the true midpoint. LengthToBounds keeps start and
// computes end = start + length - 1.
func Convert(x *mat.Dense, mode Mode) (*mat.Dense, error) {
	n, err := checkBatch(x)
	if err != nil {
		return nil, err
	}

	out := mat.NewDense(n, 2, nil)
	for i := 0; i < n; i++ {
		a, b := x.At(i, 0), x.At(i, 1)
		switch mode {
		case CenterToBounds:
			start := math.Ceil(a - 0.5*b)
			out.Set(i, 0, start)
			out.Set(i, 1, start+b-1)
		case BoundsToCenter:
			out.Set(i, 0, math.RoundToEven(0.5*(a+b)))
			out.Set(i, 1, b-a+1)
		case LengthToBounds:
			out.Set(i, 0, a)
			out.Set(i, 1, a+b-1)
		default:
			return nil, fmt.Errorf("segment: unknown conversion mode %d", int(mode))
		}
	}
	return out, nil
}

// Intersection computes the pairwise intersection bounds between every
// target segment i and test segment j: lo = max of starts, hi = min of ends.
// The result is returned as two [m x n] matrices. Bounds are not clamped:
// hi < lo signals an empty intersection.
func Intersection(target, test *mat.Dense) (lo, hi *mat.Dense, err error) {
	m, err := checkBatch(target)
	if err != nil {
		return nil, nil, err
	}
	n, err := checkBatch(test)
	if err != nil {
		return nil, nil, err
	}

	lo = mat.NewDense(m, n, nil)
	hi = mat.NewDense(m, n, nil)
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			lo.Set(i, j, math.Max(target.At(i, 0), test.At(j, 0)))
			hi.Set(i, j, math.Min(target.At(i, 1), test.At(j, 1)))
		}
	}
	return lo, hi, nil
}

// IntersectionRatio computes pairwise intersection bounds like Intersection
// plus the ratio of the intersection size over the size of the target
// segment. Sizes count frames of a closed interval (hi - lo + 1) and empty
// intersections contribute ratio 0. A degenerate zero-length target yields
// ratio 0 for its whole row, never NaN, matching the IoU convention.
func IntersectionRatio(target, test *mat.Dense) (lo, hi, ratio *mat.Dense, err error) {
	lo, hi, err = Intersection(target, test)
	if err != nil {
		return nil, nil, nil, err
	}

	m, n := lo.Dims()
	ratio = mat.NewDense(m, n, nil)
	for i := 0; i < m; i++ {
		targetSize := target.At(i, 1) - target.At(i, 0) + 1
		if targetSize <= 0 {
			continue
		}
		for j := 0; j < n; j++ {
			overlap := math.Max(hi.At(i, j)-lo.At(i, j)+1, 0)
			ratio.Set(i, j, overlap/targetSize)
		}
	}
	return lo, hi, ratio, nil
}

// IoU computes the pairwise intersection-over-union between every target
// segment i and test segment j as an [m x n] matrix. Intervals are closed,
// so a segment's size is end - start + 1 and any positive-length segment has
// IoU 1 with itself. A non-positive union, possible only for degenerate
// zero-length segments, yields IoU 0 instead of NaN.
func IoU(target, test *mat.Dense) (*mat.Dense, error) {
	m, err := checkBatch(target)
	if err != nil {
		return nil, err
	}
	n, err := checkBatch(test)
	if err != nil {
		return nil, err
	}

	iou := mat.NewDense(m, n, nil)
	for i := 0; i < m; i++ {
		targetSize := target.At(i, 1) - target.At(i, 0) + 1
		for j := 0; j < n; j++ {
			lo := math.Max(target.At(i, 0), test.At(j, 0))
			hi := math.Min(target.At(i, 1), test.At(j, 1))
			inter := math.Max(hi-lo+1, 0)

			testSize := test.At(j, 1) - test.At(j, 0) + 1
			union := testSize + targetSize - inter
			if union <= 0 {
				continue
			}
			iou.Set(i, j, inter/union)
		}
	}
	return iou, nil
}

// RescaleOptions controls UnitRescale
type RescaleOptions struct {
	// Init holds a per-row reference offset subtracted from the start
	// column before scaling. Its length must equal the batch row count.
	Init []float64

	// InPlace rescales the input batch itself instead of a copy.
	InPlace bool
}

// UnitRescale maps a [center, duration] (or [start, length]) batch onto the
// unit reference scale of a video lasting totalDuration frames: the first
// column is divided by totalDuration-1 and the second by totalDuration.
// The input is copied unless opts.InPlace is set.
func UnitRescale(x *mat.Dense, totalDuration float64, opts *RescaleOptions) (*mat.Dense, error) {
	n, err := checkBatch(x)
	if err != nil {
		return nil, err
	}
	if opts == nil {
		opts = &RescaleOptions{}
	}
	if opts.Init != nil && len(opts.Init) != n {
		return nil, fmt.Errorf("%w: %d rows, %d offsets", ErrIncompatibleInit, n, len(opts.Init))
	}

	out := x
	if !opts.InPlace {
		out = mat.DenseCopyOf(x)
	}

	for i := 0; i < n; i++ {
		start := out.At(i, 0)
		if opts.Init != nil {
			start -= opts.Init[i]
		}
		out.Set(i, 0, start/(totalDuration-1))
		out.Set(i, 1, out.At(i, 1)/totalDuration)
	}
	return out, nil
}
