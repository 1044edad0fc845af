package tabular

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// xlsxSource streams the first worksheet without loading it into memory.
type xlsxSource struct {
	file *excelize.File
	rows *excelize.Rows
}

func openXLSX(path string) (*xlsxSource, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open xlsx: %w", ErrSourceUnreadable, err)
	}

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		_ = f.Close()
		return nil, fmt.Errorf("%w: excel file has no sheets", ErrSourceUnreadable)
	}

	rows, err := f.Rows(sheets[0])
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: failed to read rows from xlsx: %w", ErrSourceUnreadable, err)
	}

	return &xlsxSource{file: f, rows: rows}, nil
}

func (s *xlsxSource) next() ([]string, error) {
	if !s.rows.Next() {
		if err := s.rows.Error(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	// Raw values keep numeric cells free of display formatting such as thousand separators.
	return s.rows.Columns(excelize.Options{RawCellValue: true})
}

func (s *xlsxSource) Close() error {
	return errors.Join(s.rows.Close(), s.file.Close())
}
