package c3d

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/maruel/natural"
	"gonum.org/v1/gonum/mat"

	"github.com/bityangke/deep-action-proposals/logging"
	"github.com/bityangke/deep-action-proposals/pooling"
)

// DefaultLayer is the layer suffix stacked when none is configured
const DefaultLayer = ".fc7-1"

// StackOptions configures Stack
type StackOptions struct {
	// Keys lists the basenames (without layer suffix) to read. Empty means
	// stack every file in the directory carrying the layer suffix.
	Keys []string

	// Layer is the filename suffix of the layer of interest; defaults to
	// DefaultLayer.
	Layer string

	// Pool reduces the stacked matrix to a single descriptor row.
	Pool *pooling.Strategy

	// SaveFile dumps the result (pooled or not) as a compressed npz file;
	// the ".npz" extension is appended when the name carries none.
	SaveFile string
}

// DefaultStackOptions returns the default stacking configuration
func DefaultStackOptions() *StackOptions {
	return &StackOptions{Layer: DefaultLayer}
}

// Stack reads the C3D feature dumps of one video directory and stacks them
// row-wise into an [m x d] matrix, m being the number of dumps and d the
// flattened dimensionality of the first one. Files are stacked in natural
// order, so frame 2 precedes frame 10, keeping rows aligned with temporal
// order regardless of zero padding in the names.
//
// With a pooling strategy the matrix is reduced to a single row and
// returned as [1 x D], D being the strategy output width. Errors are
// fail-fast: a missing directory, an empty resolved file list, a malformed
// dump or a dimensionality mismatch abort the stack with no partial result.
func Stack(dir string, opts *StackOptions) (*mat.Dense, error) {
	if opts == nil {
		opts = DefaultStackOptions()
	}
	layer := opts.Layer
	if layer == "" {
		layer = DefaultLayer
	}

	logger := logging.WithFields(logging.Fields{
		"component": "c3d_stacker",
		"dir":       dir,
		"layer":     layer,
	})

	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("c3d: feature dir: %w", err)
	}

	files, err := resolveFiles(dir, opts.Keys, layer)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s with layer %q", ErrNoInput, dir, layer)
	}
	sort.Slice(files, func(i, j int) bool { return natural.Less(files[i], files[j]) })

	first, err := ReadBlob(files[0])
	if err != nil {
		return nil, err
	}
	d := first.Dim()

	arr := mat.NewDense(len(files), d, nil)
	fillRow(arr, 0, first.Data)
	for i := 1; i < len(files); i++ {
		blob, err := ReadBlob(files[i])
		if err != nil {
			return nil, err
		}
		if blob.Dim() != d {
			return nil, fmt.Errorf("%w: %s: dimensionality %d, stack expects %d",
				ErrMalformedDump, files[i], blob.Dim(), d)
		}
		fillRow(arr, i, blob.Data)
	}

	logger.Debug("Stacked feature dumps", logging.Fields{
		"files": len(files),
		"dim":   d,
	})

	out := arr
	if opts.Pool != nil {
		desc, err := opts.Pool.Apply(arr)
		if err != nil {
			return nil, fmt.Errorf("c3d: pool %v: %w", *opts.Pool, err)
		}
		out = mat.NewDense(1, len(desc), desc)
	}

	if opts.SaveFile != "" {
		savefile := opts.SaveFile
		if filepath.Ext(savefile) == "" {
			savefile += ".npz"
		}
		if err := SaveNPZ(savefile, map[string]*mat.Dense{"features": out}); err != nil {
			return nil, err
		}
		logger.Debug("Saved stacked features", logging.Fields{"savefile": savefile})
	}
	return out, nil
}

// resolveFiles builds the dump paths for explicit keys, or globs the layer
// suffix when no keys are given.
func resolveFiles(dir string, keys []string, layer string) ([]string, error) {
	if len(keys) > 0 {
		files := make([]string, len(keys))
		for i, k := range keys {
			files[i] = filepath.Join(dir, k+layer)
		}
		return files, nil
	}

	files, err := filepath.Glob(filepath.Join(dir, "*"+layer))
	if err != nil {
		return nil, fmt.Errorf("c3d: glob %s: %w", dir, err)
	}
	return files, nil
}

func fillRow(arr *mat.Dense, i int, data []float32) {
	row := arr.RawRowView(i)
	for j, v := range data {
		row[j] = float64(v)
	}
}
