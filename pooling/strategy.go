package pooling

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Mode selects the partition scheme a Strategy pools over
type Mode int

const (
	// ModeGlobal pools the whole stack into one region
	ModeGlobal Mode = iota
	// ModePyramid pools a multi-resolution pyramid of partitions
	ModePyramid
	// ModeChunked pools a single partition of fixed-count chunks
	ModeChunked
)

func (m Mode) String() string {
	switch m {
	case ModeGlobal:
		return "global"
	case ModePyramid:
		return "pyramid"
	case ModeChunked:
		return "chunked"
	default:
		return "unknown"
	}
}

// Strategy is a closed description of a pooling scheme: the partition mode,
// its parameters and the per-region reduction. It replaces string-keyed
// dispatch ("mean", "max", "pyr:2,max") so an unknown scheme is a compile
// error, not a runtime typo.
type Strategy struct {
	Mode Mode
	Kind Kind

	// Levels is the pyramid depth; used only by ModePyramid.
	Levels int
	// Chunks is the region count; used only by ModeChunked.
	Chunks int

	// Normalize scales every region vector to unit L2 norm.
	Normalize bool
	// Unit scales the concatenated descriptor by 1/regionCount.
	Unit bool
}

// Global returns a strategy pooling the whole stack into one d-vector
func Global(kind Kind) Strategy {
	return Strategy{Mode: ModeGlobal, Kind: kind}
}

// Pyramid returns a multi-resolution pyramid pooling strategy
func Pyramid(levels int, kind Kind, normalize, unit bool) Strategy {
	return Strategy{Mode: ModePyramid, Kind: kind, Levels: levels, Normalize: normalize, Unit: unit}
}

// Chunked returns a fixed-chunk concatenation pooling strategy
func Chunked(n int, kind Kind, normalize, unit bool) Strategy {
	return Strategy{Mode: ModeChunked, Kind: kind, Chunks: n, Normalize: normalize, Unit: unit}
}

// Regions returns the number of pooled regions the strategy concatenates
func (s Strategy) Regions() int {
	switch s.Mode {
	case ModePyramid:
		return 1<<(s.Levels+1) - 1
	case ModeChunked:
		return s.Chunks
	default:
		return 1
	}
}

// OutputDim returns the descriptor length produced for a stack of
// dimensionality d.
func (s Strategy) OutputDim(d int) int {
	return d * s.Regions()
}

func (s Strategy) String() string {
	switch s.Mode {
	case ModePyramid:
		return fmt.Sprintf("pyramid(levels=%d,%s)", s.Levels, s.Kind)
	case ModeChunked:
		return fmt.Sprintf("chunked(n=%d,%s)", s.Chunks, s.Kind)
	default:
		return fmt.Sprintf("global(%s)", s.Kind)
	}
}

// Apply pools the [m x d] stack x according to the strategy and returns the
// concatenated descriptor.
func (s Strategy) Apply(x *mat.Dense) ([]float64, error) {
	switch s.Mode {
	case ModeGlobal:
		return Reduce(x, s.Kind)
	case ModePyramid:
		return PyramidPool(x, s.Levels, s.Kind, s.Normalize, s.Unit)
	case ModeChunked:
		return ChunkPool(x, s.Chunks, s.Kind, s.Normalize, s.Unit)
	default:
		return nil, fmt.Errorf("pooling: unknown mode %d", int(s.Mode))
	}
}
