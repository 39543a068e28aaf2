package reference

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

var nullTokens = map[string]bool{
	"":     true,
	"NA":   true,
	"NaN":  true,
	"nan":  true,
	"null": true,
	"None": true,
}

func isNull(v string) bool {
	return nullTokens[strings.TrimSpace(v)]
}

// Table is an in-memory reference table read from CSV.
type Table struct {
	header []string
	index  map[string]int
	rows   [][]string
}

// LoadCSV reads a reference table with a header row from path.
func LoadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// ReadCSV parses a reference table with a header row.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("reference table is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	t := &Table{header: header, index: make(map[string]int, len(header))}
	for i, name := range header {
		t.index[strings.TrimSpace(name)] = i
	}

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(t.rows)+2, err)
		}
		t.rows = append(t.rows, rec)
	}
	return t, nil
}

// Columns returns the header in file order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.header...)
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// ListDistinct returns the sorted distinct non-null values of column.
func (t *Table) ListDistinct(_ context.Context, column string) ([]string, error) {
	idx, ok := t.index[column]
	if !ok {
		return nil, fmt.Errorf("column %q not found in reference table", column)
	}

	values := make([]string, 0, len(t.rows))
	for _, row := range t.rows {
		values = append(values, strings.TrimSpace(row[idx]))
	}
	return sortedUnique(values), nil
}
