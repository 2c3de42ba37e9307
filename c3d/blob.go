// Package c3d reads, stacks and persists the binary feature dumps written
// by the C3D feature-extraction tool, and generates the input lists the
// tool consumes. One dump holds the activations of one network layer for
// one temporal window of one video.
package c3d

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

var (
	// ErrMalformedDump reports a feature dump whose header or payload is
	// truncated or whose declared shape is not positive.
	ErrMalformedDump = errors.New("c3d: malformed feature dump")

	// ErrNoInput reports a stack request that resolved to no files.
	ErrNoInput = errors.New("c3d: no feature files to stack")
)

// shapeDims is the fixed number of header dimensions in a C3D dump
const shapeDims = 5

// Blob is one decoded C3D feature dump: a shape header of
// [num, channels, length, height, width] and the flat row-major payload.
//
// The on-disk format is 5 little-endian int32 followed by prod(shape)
// little-endian float32 values, with no padding, magic number or version
// field. Little-endian is the compatibility contract of this package; the
// producing tool writes host-endian, which is little-endian on every
// platform the extraction pipeline runs on.
type Blob struct {
	Shape [shapeDims]int32
	Data  []float32
}

// Dim returns the flattened feature dimensionality, the product of the
// shape header.
func (b *Blob) Dim() int {
	d := 1
	for _, s := range b.Shape {
		d *= int(s)
	}
	return d
}

// ReadBlob reads and decodes one feature dump from disk. A missing or
// unreadable path returns the wrapped os error; a truncated header or
// payload, or a non-positive shape dimension, returns ErrMalformedDump
// wrapped with the path. Trailing bytes beyond the declared payload are
// ignored.
func ReadBlob(path string) (*Blob, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("c3d: open feature dump: %w", err)
	}
	defer f.Close()

	b, err := decodeBlob(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedDump, path, err)
	}
	return b, nil
}

func decodeBlob(r io.Reader) (*Blob, error) {
	var b Blob
	if err := binary.Read(r, binary.LittleEndian, b.Shape[:]); err != nil {
		return nil, fmt.Errorf("short shape header: %v", err)
	}
	for _, s := range b.Shape {
		if s <= 0 {
			return nil, fmt.Errorf("non-positive shape %v", b.Shape)
		}
	}

	b.Data = make([]float32, b.Dim())
	if err := binary.Read(r, binary.LittleEndian, b.Data); err != nil {
		return nil, fmt.Errorf("short payload, want %d values: %v", len(b.Data), err)
	}
	return &b, nil
}

// Encode serializes the blob in the on-disk dump format. A valid blob
// round-trips byte-identically through ReadBlob.
func (b *Blob) Encode(w io.Writer) error {
	if len(b.Data) != b.Dim() {
		return fmt.Errorf("%w: shape %v declares %d values, have %d",
			ErrMalformedDump, b.Shape, b.Dim(), len(b.Data))
	}
	if err := binary.Write(w, binary.LittleEndian, b.Shape[:]); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, b.Data)
}

// WriteBlob serializes the blob to a file in the on-disk dump format
func WriteBlob(path string, b *Blob) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("c3d: create feature dump: %w", err)
	}

	bw := bufio.NewWriter(f)
	if err := b.Encode(bw); err != nil {
		f.Close()
		return fmt.Errorf("c3d: write feature dump %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("c3d: write feature dump %s: %w", path, err)
	}
	return f.Close()
}
