// Package awsfile reads raw weather station log files.
package awsfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"

	"github.com/ncasuk/ncas-aws-10-software/internal/domain"
)

// Reader yields parsed records from one raw station file.
type Reader struct {
	path   string
	parser *domain.Parser
}

// NewReader creates a Reader for path.
func NewReader(path string, parser *domain.Parser) *Reader {
	return &Reader{path: path, parser: parser}
}

// Path returns the file being read.
func (r *Reader) Path() string { return r.path }

// Records returns a lazy sequence of parsed records, one per line. Each call
// to the returned function reopens the file and starts from the first line.
// The sequence stops at the first error, which carries the line number.
func (r *Reader) Records() iter.Seq2[domain.ParsedRecord, error] {
	return func(yield func(domain.ParsedRecord, error) bool) {
		f, err := os.Open(r.path)
		if err != nil {
			yield(domain.ParsedRecord{}, fmt.Errorf("open raw file: %w", err))
			return
		}
		defer f.Close()

		for rec, err := range r.parse(f) {
			if !yield(rec, err) || err != nil {
				return
			}
		}
	}
}

// ReadAll collects every record, stopping at the first error.
func (r *Reader) ReadAll() ([]domain.ParsedRecord, error) {
	var records []domain.ParsedRecord
	for rec, err := range r.Records() {
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// Parse yields parsed records from an arbitrary stream. Unlike Records it is
// single-use, since src cannot be rewound.
func Parse(src io.Reader, parser *domain.Parser) iter.Seq2[domain.ParsedRecord, error] {
	return (&Reader{parser: parser}).parse(src)
}

func (r *Reader) parse(src io.Reader) iter.Seq2[domain.ParsedRecord, error] {
	return func(yield func(domain.ParsedRecord, error) bool) {
		cr := csv.NewReader(src)
		cr.FieldsPerRecord = -1
		cr.LazyQuotes = true

		for {
			tokens, err := cr.Read()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(domain.ParsedRecord{}, fmt.Errorf("read raw file: %w", err))
				return
			}
			line, _ := cr.FieldPos(0)

			rec, err := r.parser.ParseLine(tokens)
			if err != nil {
				yield(domain.ParsedRecord{}, fmt.Errorf("line %d: %w", line, err))
				return
			}
			if !yield(rec, nil) {
				return
			}
		}
	}
}
