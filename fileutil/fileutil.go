// Package fileutil holds small filesystem helpers shared by the pipeline.
package fileutil

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DumpJSON serializes v as a JSON file
func DumpJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("fileutil: marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("fileutil: write %s: %w", path, err)
	}
	return nil
}

// DumpJSONIndent serializes v as an indented JSON file
func DumpJSONIndent(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("fileutil: marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("fileutil: write %s: %w", path, err)
	}
	return nil
}

// FileAsFolder turns a filename into the matching folder path: the
// extension is stripped and a trailing path separator appended, so
// "videos/v_001.mp4" becomes "videos/v_001/".
func FileAsFolder(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + string(os.PathSeparator)
}

// EnsureDir creates a directory and its parents when missing
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("fileutil: create dir: %w", err)
	}
	return nil
}
