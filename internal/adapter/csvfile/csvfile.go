// Package csvfile reads and writes datasets as CSV files with a header row.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/couchcryptid/street-tree-map/internal/adapter/atomicfile"
	"github.com/couchcryptid/street-tree-map/internal/domain"
)

const utf8BOM = "\ufeff"

// Reader loads a CSV file into a table. It implements pipeline.RowSource.
type Reader struct {
	path string
}

// NewReader creates a Reader for path.
func NewReader(path string) *Reader {
	return &Reader{path: path}
}

// ReadTable reads the whole file.
func (r *Reader) ReadTable(_ context.Context) (*domain.Table, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	t, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.path, err)
	}
	return t, nil
}

// Read parses CSV with a header row. Short records leave the trailing columns
// absent; extra cells beyond the header are ignored.
func Read(r io.Reader) (*domain.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, domain.ErrEmptyInput
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	header[0] = strings.TrimPrefix(header[0], utf8BOM)
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	t := &domain.Table{Header: header}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		row := make(domain.Row, len(header))
		for i, v := range rec {
			if i >= len(header) {
				break
			}
			row[header[i]] = v
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// Writer writes a table to a CSV file atomically. It implements pipeline.TableSink.
type Writer struct {
	path string
}

// NewWriter creates a Writer for path.
func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// WriteTable writes the header and every row in table order.
func (w *Writer) WriteTable(_ context.Context, t *domain.Table) error {
	return atomicfile.Write(w.path, func(out io.Writer) error {
		return Write(out, t)
	})
}

// Write encodes a table as CSV.
func Write(w io.Writer, t *domain.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	rec := make([]string, len(t.Header))
	for _, row := range t.Rows {
		for i, col := range t.Header {
			rec[i] = row[col]
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Column returns every value of one column, in row order.
func Column(t *domain.Table, col string) ([]string, error) {
	if err := t.Require(col); err != nil {
		return nil, err
	}
	vals := make([]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		vals = append(vals, row[col])
	}
	return vals, nil
}
