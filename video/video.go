// Package video wraps the external ffmpeg/ffprobe tools for the video-side
// chores of the pipeline: counting frames, probing frame rate and duration,
// and dumping frames to image files. Videos are never decoded in-process;
// every operation shells out and parses the tool output.
package video

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bityangke/deep-action-proposals/fileutil"
	"github.com/bityangke/deep-action-proposals/logging"
)

// ToolsConfig holds the external tool configuration
type ToolsConfig struct {
	FFmpegPath  string        `json:"ffmpeg_path"`
	FFprobePath string        `json:"ffprobe_path"`
	Timeout     time.Duration `json:"timeout"`
}

// DefaultToolsConfig returns the default tool configuration, assuming both
// binaries are on PATH.
func DefaultToolsConfig() *ToolsConfig {
	return &ToolsConfig{
		FFmpegPath:  "ffmpeg",
		FFprobePath: "ffprobe",
		Timeout:     30 * time.Second,
	}
}

// Tools invokes ffmpeg and ffprobe on video files
type Tools struct {
	config *ToolsConfig
}

// NewTools creates a Tools instance; a nil config uses the defaults
func NewTools(config *ToolsConfig) *Tools {
	if config == nil {
		config = DefaultToolsConfig()
	}
	return &Tools{config: config}
}

// streamInfo is the slice of ffprobe stream output this package reads
type streamInfo struct {
	NbReadFrames string `json:"nb_read_frames"`
	AvgFrameRate string `json:"avg_frame_rate"`
	Duration     string `json:"duration"`
}

// CountFrames counts the frames of a video file by decoding its first video
// stream with ffprobe.
func (t *Tools) CountFrames(ctx context.Context, path string) (int, error) {
	stream, err := t.probeStream(ctx, path, "-count_frames")
	if err != nil {
		return 0, err
	}

	n, err := strconv.Atoi(strings.TrimSpace(stream.NbReadFrames))
	if err != nil {
		return 0, fmt.Errorf("video: bad frame count %q for %s: %w", stream.NbReadFrames, path, err)
	}
	return n, nil
}

// CountFrameImages counts pre-extracted frame images with the given
// extension (e.g. ".jpg") inside a directory.
func CountFrameImages(dir, ext string) (int, error) {
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	files, err := filepath.Glob(filepath.Join(dir, "*"+ext))
	if err != nil {
		return 0, fmt.Errorf("video: glob %s: %w", dir, err)
	}
	return len(files), nil
}

// FrameRate returns the average frame rate of a video file. ffprobe reports
// the rate as a fraction such as "30000/1001"; the fraction is parsed, not
// evaluated as an expression.
func (t *Tools) FrameRate(ctx context.Context, path string) (float64, error) {
	stream, err := t.probeStream(ctx, path)
	if err != nil {
		return 0, err
	}

	rate, err := parseFraction(strings.TrimSpace(stream.AvgFrameRate))
	if err != nil {
		return 0, fmt.Errorf("video: bad frame rate %q for %s: %w", stream.AvgFrameRate, path, err)
	}
	return rate, nil
}

// Duration returns the duration of a video file in seconds
func (t *Tools) Duration(ctx context.Context, path string) (float64, error) {
	stream, err := t.probeStream(ctx, path)
	if err != nil {
		return 0, err
	}

	d, err := strconv.ParseFloat(strings.TrimSpace(stream.Duration), 64)
	if err != nil {
		return 0, fmt.Errorf("video: bad duration %q for %s: %w", stream.Duration, path, err)
	}
	return d, nil
}

// DumpFrames extracts every frame of a video into outDir as JPEG images
// named by the given pattern (e.g. "%06d.jpg"). An empty pattern derives a
// zero-padded default wide enough for the frame count, at least six digits.
// The output directory is created when missing.
func (t *Tools) DumpFrames(ctx context.Context, path, outDir, pattern string) error {
	logger := logging.WithFields(logging.Fields{
		"component": "video_tools",
		"function":  "DumpFrames",
		"path":      path,
	})

	if err := fileutil.EnsureDir(outDir); err != nil {
		return fmt.Errorf("video: frame dir: %w", err)
	}

	if pattern == "" {
		n, err := t.CountFrames(ctx, path)
		if err != nil {
			return err
		}
		pattern = defaultFramePattern(n)
	}

	args := []string{
		"-v", "error",
		"-i", path,
		"-qscale:v", "2",
		"-f", "image2",
		filepath.Join(outDir, pattern),
	}

	runCtx, cancel := t.withTimeout(ctx)
	defer cancel()

	logger.Debug("Running ffmpeg frame dump", logging.Fields{
		"args": strings.Join(args, " "),
	})

	cmd := exec.CommandContext(runCtx, t.config.FFmpegPath, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("video: ffmpeg frame dump failed: %w, output: %s", err, string(output))
	}
	return nil
}

// probeStream runs ffprobe on the first video stream and decodes its JSON
func (t *Tools) probeStream(ctx context.Context, path string, extraArgs ...string) (*streamInfo, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("video: probe: %w", err)
	}

	args := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		"-select_streams", "v:0",
	}
	args = append(args, extraArgs...)
	args = append(args, path)

	runCtx, cancel := t.withTimeout(ctx)
	defer cancel()

	cmd := exec.CommandContext(runCtx, t.config.FFprobePath, args...)
	output, err := cmd.Output()
	if err != nil {
		if exitError, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("video: ffprobe failed: %w, stderr: %s", err, string(exitError.Stderr))
		}
		return nil, fmt.Errorf("video: ffprobe failed: %w", err)
	}

	var probe struct {
		Streams []streamInfo `json:"streams"`
	}
	if err := json.Unmarshal(output, &probe); err != nil {
		return nil, fmt.Errorf("video: parse ffprobe output: %w", err)
	}
	if len(probe.Streams) == 0 {
		return nil, fmt.Errorf("video: no video streams in %s", path)
	}
	return &probe.Streams[0], nil
}

func (t *Tools) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if t.config.Timeout > 0 {
		return context.WithTimeout(ctx, t.config.Timeout)
	}
	return context.WithCancel(ctx)
}

// parseFraction parses "num/den" or a plain decimal into a float
func parseFraction(s string) (float64, error) {
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0, err
		}
		d, err := strconv.ParseFloat(den, 64)
		if err != nil {
			return 0, err
		}
		if d == 0 {
			return 0, fmt.Errorf("zero denominator in %q", s)
		}
		return n / d, nil
	}
	return strconv.ParseFloat(s, 64)
}

// defaultFramePattern returns a zero-padded image name pattern wide enough
// for n frames, with at least six digits.
func defaultFramePattern(n int) string {
	digits := 0
	for n > 0 {
		n /= 10
		digits++
	}
	if digits < 6 {
		digits = 6
	}
	return fmt.Sprintf("%%0%dd.jpg", digits)
}
