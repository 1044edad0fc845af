// Package tabular streams spreadsheet rows keyed by normalized header names.
package tabular

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

var (
	ErrSourceUnreadable  = errors.New("source unreadable")
	ErrEmptyDataset      = errors.New("no data rows after header")
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// Row is one data row. Number is 1-based and excludes the header, so the first
// row under the header is row 1.
type Row struct {
	Number int
	Values map[string]string
}

// source yields raw records one at a time and io.EOF when exhausted.
type source interface {
	next() ([]string, error)
	Close() error
}

// Iterator is a single pass, forward-only row sequence. Trailing blank rows are
// never yielded; blank rows between data rows are.
type Iterator struct {
	src     source
	headers []string

	read      int
	pending   []int
	lookahead *Row
	current   Row
	err       error
}

// Open opens path and consumes its header row. The format is chosen by file
// extension (.xlsx, .xls, .csv).
func Open(path string) (*Iterator, error) {
	src, err := openSource(path)
	if err != nil {
		return nil, err
	}

	it, err := newIterator(src)
	if err != nil {
		_ = src.Close()
		return nil, err
	}
	return it, nil
}

func openSource(path string) (source, error) {
	var (
		src source
		err error
	)

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".xlsx", ".xlsm":
		src, err = openXLSX(path)
	case ".xls":
		src, err = openXLS(path)
	case ".csv":
		src, err = openCSV(path)
	default:
		return nil, fmt.Errorf("%w: %w %q", ErrSourceUnreadable, ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, err
	}
	return src, nil
}

func newIterator(src source) (*Iterator, error) {
	header, err := src.next()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyDataset
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnreadable, err)
	}
	if isBlankRecord(header) {
		return nil, fmt.Errorf("%w: header row is empty", ErrSourceUnreadable)
	}

	it := &Iterator{src: src, headers: sanitizeHeaders(header)}
	if !it.fill() {
		if it.err != nil {
			return nil, it.err
		}
		return nil, ErrEmptyDataset
	}
	return it, nil
}

// Headers returns the normalized column names in sheet order.
func (it *Iterator) Headers() []string {
	out := make([]string, len(it.headers))
	copy(out, it.headers)
	return out
}

// Next advances to the next row. It returns false at the end of data or on error.
func (it *Iterator) Next() bool {
	if len(it.pending) > 0 {
		it.current = Row{Number: it.pending[0], Values: it.blankValues()}
		it.pending = it.pending[1:]
		return true
	}
	if it.lookahead != nil {
		it.current = *it.lookahead
		it.lookahead = nil
		return true
	}
	if !it.fill() {
		return false
	}
	return it.Next()
}

// Row returns the row Next advanced to.
func (it *Iterator) Row() Row {
	return it.current
}

// Err returns the first read error, wrapped with ErrSourceUnreadable.
func (it *Iterator) Err() error {
	return it.err
}

func (it *Iterator) Close() error {
	return it.src.Close()
}

// fill reads ahead to the next non-blank record, remembering the numbers of
// blank rows skipped on the way. Blank rows followed only by EOF are dropped.
func (it *Iterator) fill() bool {
	if it.err != nil {
		return false
	}

	var blanks []int
	for {
		record, err := it.src.next()
		if errors.Is(err, io.EOF) {
			return false
		}
		if err != nil {
			it.err = fmt.Errorf("%w: %w", ErrSourceUnreadable, err)
			return false
		}

		it.read++
		if isBlankRecord(record) {
			blanks = append(blanks, it.read)
			continue
		}

		it.pending = blanks
		it.lookahead = &Row{Number: it.read, Values: it.toValues(record)}
		return true
	}
}

func (it *Iterator) toValues(record []string) map[string]string {
	record = padRow(record, len(it.headers))
	values := make(map[string]string, len(it.headers))
	for i, h := range it.headers {
		values[h] = record[i]
	}
	return values
}

func (it *Iterator) blankValues() map[string]string {
	values := make(map[string]string, len(it.headers))
	for _, h := range it.headers {
		values[h] = ""
	}
	return values
}

// sanitizeHeaders lower-cases and trims header cells. Inner spaces, dots and
// dashes become underscores; duplicates get a numeric suffix.
func sanitizeHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	seen := make(map[string]int)

	for idx, value := range raw {
		name := strings.ToLower(strings.TrimSpace(value))
		name = strings.ReplaceAll(name, " ", "_")
		name = strings.ReplaceAll(name, ".", "_")
		name = strings.ReplaceAll(name, "-", "_")
		name = strings.Trim(name, "_")
		if name == "" {
			name = fmt.Sprintf("column_%d", idx+1)
		}

		base := name
		count := seen[base]
		if count > 0 {
			name = fmt.Sprintf("%s_%d", base, count+1)
		}
		seen[base] = count + 1

		headers[idx] = name
	}

	return headers
}

func padRow(row []string, length int) []string {
	if len(row) >= length {
		return row[:length]
	}
	padded := make([]string, length)
	copy(padded, row)
	return padded
}

func isBlankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
