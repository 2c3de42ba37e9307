// Package annot handles tabular video annotations: space-separated tables
// with a header row and columns such as video-name, i-frame, duration and
// label. Consumers depend on the narrow Columns accessor rather than a
// concrete table type, so any columnar source can feed them.
package annot

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
)

// ErrNoColumn reports access to a column the table does not carry.
var ErrNoColumn = errors.New("annot: no such column")

// Columns is read-only access to a table by column name. All accessors
// return one value per row in row order.
type Columns interface {
	// Len returns the number of rows.
	Len() int

	// Has reports whether the named column exists.
	Has(name string) bool

	Strings(name string) ([]string, error)
	Ints(name string) ([]int, error)
	Floats(name string) ([]float64, error)
}

// Table is an in-memory annotation table parsed from a space-separated file
type Table struct {
	cols  map[string]int
	names []string
	rows  [][]string
}

var _ Columns = (*Table)(nil)

// ReadTable parses a space-separated annotation file with a header row
func ReadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("annot: open table: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = ' '
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("annot: parse table %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("annot: table %s has no header row", path)
	}

	t := &Table{
		cols:  make(map[string]int, len(records[0])),
		names: records[0],
		rows:  records[1:],
	}
	for i, name := range records[0] {
		t.cols[name] = i
	}
	return t, nil
}

// NewTable builds a table from column names and rows of cells. Every row
// must have one cell per column.
func NewTable(names []string, rows [][]string) (*Table, error) {
	t := &Table{cols: make(map[string]int, len(names)), names: names, rows: rows}
	for i, name := range names {
		t.cols[name] = i
	}
	for i, row := range rows {
		if len(row) != len(names) {
			return nil, fmt.Errorf("annot: row %d has %d cells, want %d", i, len(row), len(names))
		}
	}
	return t, nil
}

// Names returns the column names in file order
func (t *Table) Names() []string { return t.names }

func (t *Table) Len() int { return len(t.rows) }

func (t *Table) Has(name string) bool {
	_, ok := t.cols[name]
	return ok
}

func (t *Table) column(name string) (int, error) {
	j, ok := t.cols[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrNoColumn, name)
	}
	return j, nil
}

func (t *Table) Strings(name string) ([]string, error) {
	j, err := t.column(name)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(t.rows))
	for i, row := range t.rows {
		out[i] = row[j]
	}
	return out, nil
}

func (t *Table) Ints(name string) ([]int, error) {
	j, err := t.column(name)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(t.rows))
	for i, row := range t.rows {
		v, err := strconv.Atoi(row[j])
		if err != nil {
			return nil, fmt.Errorf("annot: column %q row %d: %w", name, i, err)
		}
		out[i] = v
	}
	return out, nil
}

func (t *Table) Floats(name string) ([]float64, error) {
	j, err := t.column(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(t.rows))
	for i, row := range t.rows {
		v, err := strconv.ParseFloat(row[j], 64)
		if err != nil {
			return nil, fmt.Errorf("annot: column %q row %d: %w", name, i, err)
		}
		out[i] = v
	}
	return out, nil
}
