package c3d

import (
	"fmt"
	"path/filepath"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/bityangke/deep-action-proposals/annot"
	"github.com/bityangke/deep-action-proposals/logging"
)

// BatchOptions configures StackBatch
type BatchOptions struct {
	// WindowSize is the temporal receptive field of the network; defaults
	// to DefaultWindowSize.
	WindowSize int

	// Stride is the frame distance between consecutive features; defaults
	// to DefaultStepSize.
	Stride int

	// Stack configures the per-segment stacking; its Keys are overwritten
	// per segment and its SaveFile is derived from SaveDir.
	Stack StackOptions

	// SaveDir, when set, dumps every segment's features as
	// "<video-name>_<f-init>.npz" inside it.
	SaveDir string
}

// StackBatch stacks C3D features for every segment of an annotation table
// with columns video-name, f-init and duration. Segment i covers frames
// f-init .. f-init+duration-1 of its video, so its feature keys are the
// frames f-init, f-init+Stride, ... while the window of WindowSize frames
// still fits. Features of video v are read from rootDir/v.
//
// One matrix per table row is returned, in row order. The batch is
// fail-fast: the first failing segment aborts it, wrapped with the video
// name, and nothing is returned. A segment shorter than the window fits no
// feature key at all and fails with ErrNoInput rather than stacking
// unrelated files.
func StackBatch(cols annot.Columns, rootDir string, opts *BatchOptions) ([]*mat.Dense, error) {
	if opts == nil {
		opts = &BatchOptions{}
	}
	window := opts.WindowSize
	if window <= 0 {
		window = DefaultWindowSize
	}
	stride := opts.Stride
	if stride <= 0 {
		stride = DefaultStepSize
	}

	logger := logging.WithFields(logging.Fields{
		"component": "c3d_batch_stacker",
		"root_dir":  rootDir,
	})

	videos, err := cols.Strings("video-name")
	if err != nil {
		return nil, err
	}
	initFrames, err := cols.Ints("f-init")
	if err != nil {
		return nil, err
	}
	durations, err := cols.Ints("duration")
	if err != nil {
		return nil, err
	}

	out := make([]*mat.Dense, cols.Len())
	for i := range out {
		keys := frameKeys(initFrames[i], durations[i], window, stride)
		if len(keys) == 0 {
			return nil, fmt.Errorf("segment %d of video %s: %w: duration %d is shorter than the %d-frame window",
				i, videos[i], ErrNoInput, durations[i], window)
		}

		stackOpts := opts.Stack
		stackOpts.Keys = keys
		if opts.SaveDir != "" {
			name := fmt.Sprintf("%s_%d", videos[i], initFrames[i])
			stackOpts.SaveFile = filepath.Join(opts.SaveDir, name)
		}

		arr, err := Stack(filepath.Join(rootDir, videos[i]), &stackOpts)
		if err != nil {
			return nil, fmt.Errorf("segment %d of video %s: %w", i, videos[i], err)
		}
		out[i] = arr
	}

	logger.Debug("Stacked feature batch", logging.Fields{"segments": len(out)})
	return out, nil
}

// frameKeys lists the start frames of every feature window inside a segment
func frameKeys(init, duration, window, stride int) []string {
	var keys []string
	for f := init; f <= init+duration-window; f += stride {
		keys = append(keys, strconv.Itoa(f))
	}
	return keys
}
