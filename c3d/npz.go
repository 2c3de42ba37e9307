package c3d

import (
	"archive/zip"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"
)

// ErrNoSuchEntry reports an npz archive without the requested array.
var ErrNoSuchEntry = errors.New("c3d: no such npz entry")

// SaveNPZ serializes the named matrices as a compressed npz archive: a zip
// container with one deflate-compressed .npy entry per matrix, readable by
// the numpy side of the pipeline. Entries are written in sorted name order
// so the archive bytes are deterministic.
func SaveNPZ(path string, arrays map[string]*mat.Dense) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("c3d: create npz: %w", err)
	}

	zw := zip.NewWriter(f)
	names := make([]string, 0, len(arrays))
	for name := range arrays {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:   name + ".npy",
			Method: zip.Deflate,
		})
		if err != nil {
			f.Close()
			return fmt.Errorf("c3d: npz entry %s: %w", name, err)
		}
		if err := npyio.Write(w, arrays[name]); err != nil {
			f.Close()
			return fmt.Errorf("c3d: npz entry %s: %w", name, err)
		}
	}

	if err := zw.Close(); err != nil {
		f.Close()
		return fmt.Errorf("c3d: close npz %s: %w", path, err)
	}
	return f.Close()
}

// LoadNPZ reads one named array back from an npz archive written by SaveNPZ
func LoadNPZ(path, name string) (*mat.Dense, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("c3d: open npz: %w", err)
	}
	defer zr.Close()

	entry := name + ".npy"
	for _, zf := range zr.File {
		if zf.Name != entry {
			continue
		}
		r, err := zf.Open()
		if err != nil {
			return nil, fmt.Errorf("c3d: npz entry %s: %w", name, err)
		}
		defer r.Close()

		var m mat.Dense
		if err := npyio.Read(r, &m); err != nil {
			return nil, fmt.Errorf("c3d: npz entry %s: %w", name, err)
		}
		return &m, nil
	}
	return nil, fmt.Errorf("%w: %q in %s", ErrNoSuchEntry, name, path)
}
