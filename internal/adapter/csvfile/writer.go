// Package csvfile writes parsed station records as a tidy CSV table.
package csvfile

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/ncasuk/ncas-aws-10-software/internal/domain"
)

// Writer writes one row per record under a header of field codes.
type Writer struct {
	codes  []string
	csv    *csv.Writer
	closer io.Closer
	rows   int
}

// NewWriter writes the header for fields to w.
func NewWriter(w io.Writer, fields domain.FieldSpec) (*Writer, error) {
	cw := &Writer{codes: fields.Codes(), csv: csv.NewWriter(w)}
	if err := cw.csv.Write(cw.codes); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	return cw, nil
}

// Write appends rec. Fields absent from the record are left empty.
func (w *Writer) Write(rec domain.ParsedRecord) error {
	row := make([]string, len(w.codes))
	for i, code := range w.codes {
		row[i] = rec.Text(code)
	}
	if err := w.csv.Write(row); err != nil {
		return fmt.Errorf("write csv row: %w", err)
	}
	w.rows++
	return nil
}

// Rows reports how many records were written.
func (w *Writer) Rows() int { return w.rows }

// Flush writes buffered rows to the underlying writer.
func (w *Writer) Flush() error {
	w.csv.Flush()
	return w.csv.Error()
}

// Create creates path and writes the header. Close must be called to flush.
func Create(path string, fields domain.FieldSpec) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create csv: %w", err)
	}
	w, err := NewWriter(f, fields)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	w.closer = f
	return w, nil
}

// Close flushes buffered rows and closes the file opened by Create.
func (w *Writer) Close() error {
	err := w.Flush()
	if w.closer != nil {
		if cerr := w.closer.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close csv: %w", cerr)
		}
		w.closer = nil
	}
	return err
}

// WriteFile writes records to path, replacing any existing file.
func WriteFile(path string, fields domain.FieldSpec, records []domain.ParsedRecord) (err error) {
	w, err := Create(path, fields)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	for _, rec := range records {
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}
