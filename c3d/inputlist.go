package c3d

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/bityangke/deep-action-proposals/annot"
	"github.com/bityangke/deep-action-proposals/fileutil"
	"github.com/bityangke/deep-action-proposals/logging"
)

// DefaultWindowSize is the temporal receptive field of the C3D network
const DefaultWindowSize = 16

// DefaultStepSize is the default stride between extracted clips
const DefaultStepSize = 8

// ListOptions configures GenerateInputLists
type ListOptions struct {
	// WindowSize is the temporal receptive field of the network; segments
	// shorter than this are skipped. Defaults to DefaultWindowSize.
	WindowSize int

	// StepSize is the stride between clip start frames inside a segment.
	// Defaults to DefaultStepSize.
	StepSize int

	// OutputList, when set together with FeatureFolder, is the path of the
	// companion list of per-clip output prefixes for feature extraction.
	OutputList string

	// FeatureFolder is the root folder that will hold extracted features.
	FeatureFolder string

	// MkDirs creates one feature directory per distinct video under
	// FeatureFolder.
	MkDirs bool
}

// Summary reports statistics of an input-list generation run
type Summary struct {
	Success bool

	// OutputList is the written output-prefix list, empty when none was
	// requested.
	OutputList string

	// PctSkippedSegments is the fraction of segments shorter than the
	// window size.
	PctSkippedSegments float64

	// RatioClipsSegments is the number of emitted clips over the number of
	// input segments.
	RatioClipsSegments float64
}

// GenerateInputLists writes the text files consumed by the C3D feature
// extractor from an annotation table with columns video-name, num-frame,
// i-frame and duration (label is optional and defaults to 0).
//
// Every segment of at least WindowSize frames contributes
// (duration-WindowSize)/StepSize + 1 clips starting at i-frame and advancing
// by StepSize. The input list holds one "video-name start-frame label" line
// per clip with duplicates removed, first occurrence kept. When OutputList
// and FeatureFolder are configured, a companion list of cleaned
// "folder/video/start" prefixes is written the same way.
func GenerateInputLists(cols annot.Columns, inputList string, opts *ListOptions) (*Summary, error) {
	if opts == nil {
		opts = &ListOptions{}
	}
	window := opts.WindowSize
	if window <= 0 {
		window = DefaultWindowSize
	}
	step := opts.StepSize
	if step <= 0 {
		step = DefaultStepSize
	}

	logger := logging.WithFields(logging.Fields{
		"component":   "c3d_input_lists",
		"window_size": window,
		"step_size":   step,
	})

	for _, name := range []string{"video-name", "num-frame", "i-frame", "duration"} {
		if !cols.Has(name) {
			return nil, fmt.Errorf("annotation table lacks required column %q", name)
		}
	}

	videos, err := cols.Strings("video-name")
	if err != nil {
		return nil, err
	}
	initFrames, err := cols.Ints("i-frame")
	if err != nil {
		return nil, err
	}
	durations, err := cols.Ints("duration")
	if err != nil {
		return nil, err
	}
	labels := make([]int, cols.Len())
	if cols.Has("label") {
		if labels, err = cols.Ints("label"); err != nil {
			return nil, err
		}
	}

	nSegments := cols.Len()
	skipped, clips := 0, 0
	var inputLines, outputLines []string
	seenInput := make(map[string]bool)
	seenOutput := make(map[string]bool)
	wantOutput := opts.OutputList != "" && opts.FeatureFolder != ""

	for i := 0; i < nSegments; i++ {
		if durations[i] < window {
			skipped++
			continue
		}
		nClips := (durations[i]-window)/step + 1
		for k := 0; k < nClips; k++ {
			start := initFrames[i] + k*step
			clips++

			line := fmt.Sprintf("%s %d %d", videos[i], start, labels[i])
			if !seenInput[line] {
				seenInput[line] = true
				inputLines = append(inputLines, line)
			}
			if wantOutput {
				prefix := filepath.Clean(filepath.Join(opts.FeatureFolder, videos[i], strconv.Itoa(start)))
				if !seenOutput[prefix] {
					seenOutput[prefix] = true
					outputLines = append(outputLines, prefix)
				}
			}
		}
	}

	if err := writeLines(inputList, inputLines); err != nil {
		return nil, fmt.Errorf("write C3D input list %s: %w", inputList, err)
	}

	summary := &Summary{Success: true}
	if nSegments > 0 {
		summary.PctSkippedSegments = float64(skipped) / float64(nSegments)
		summary.RatioClipsSegments = float64(clips) / float64(nSegments)
	}

	if wantOutput {
		if err := writeLines(opts.OutputList, outputLines); err != nil {
			return nil, fmt.Errorf("write C3D output list %s: %w", opts.OutputList, err)
		}
		summary.OutputList = opts.OutputList

		if opts.MkDirs {
			for _, v := range uniqueStrings(videos) {
				dir := filepath.Join(opts.FeatureFolder, v)
				if err := fileutil.EnsureDir(dir); err != nil {
					return nil, fmt.Errorf("feature dir %s: %w", dir, err)
				}
			}
		}
	}

	logger.Info("Generated C3D input lists", logging.Fields{
		"segments": nSegments,
		"skipped":  skipped,
		"clips":    clips,
	})
	return summary, nil
}

func writeLines(path string, lines []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(f)
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			f.Close()
			return err
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// uniqueStrings keeps the first occurrence of every value in order
func uniqueStrings(values []string) []string {
	seen := make(map[string]bool, len(values))
	var out []string
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
