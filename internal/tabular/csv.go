package tabular

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var byteOrderMark = []byte{0xEF, 0xBB, 0xBF}

const sniffSize = 64 << 10

// csvSource reads comma or semicolon separated exports. Files that are not
// valid UTF-8 are decoded as Windows-1252, the default of spreadsheet exports
// on Indonesian Windows installs.
type csvSource struct {
	file   *os.File
	reader *csv.Reader
}

func openCSV(path string) (*csvSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnreadable, err)
	}

	buffered := bufio.NewReaderSize(f, sniffSize)
	if prefix, err := buffered.Peek(len(byteOrderMark)); err == nil && bytes.Equal(prefix, byteOrderMark) {
		_, _ = buffered.Discard(len(byteOrderMark))
	}

	sample, err := buffered.Peek(sniffSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %w", ErrSourceUnreadable, err)
	}

	var r io.Reader = buffered
	if !validUTF8Prefix(sample) {
		r = charmap.Windows1252.NewDecoder().Reader(buffered)
	}

	reader := csv.NewReader(r)
	reader.Comma = detectDelimiter(sample)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	return &csvSource{file: f, reader: reader}, nil
}

func (s *csvSource) next() ([]string, error) {
	return s.reader.Read()
}

func (s *csvSource) Close() error {
	return s.file.Close()
}

// validUTF8Prefix ignores a rune cut off at the end of the sample.
func validUTF8Prefix(sample []byte) bool {
	for i := 0; i < utf8.UTFMax && len(sample) > 0; i++ {
		if utf8.Valid(sample) {
			return true
		}
		sample = sample[:len(sample)-1]
	}
	return utf8.Valid(sample)
}

// detectDelimiter picks ';' when the header line has more semicolons than commas.
func detectDelimiter(sample []byte) rune {
	line := sample
	if idx := bytes.IndexAny(sample, "\r\n"); idx >= 0 {
		line = sample[:idx]
	}
	if bytes.Count(line, []byte{';'}) > bytes.Count(line, []byte{','}) {
		return ';'
	}
	return ','
}
