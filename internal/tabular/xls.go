package tabular

import (
	"fmt"
	"io"
	"os"

	"github.com/extrame/xls"
)

// xlsSource walks the first sheet of a legacy BIFF workbook.
type xlsSource struct {
	file   *os.File
	sheet  *xls.WorkSheet
	cursor int
	last   int
}

func openXLS(path string) (src *xlsSource, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnreadable, err)
	}

	// The BIFF parser panics on some malformed inputs.
	defer func() {
		if p := recover(); p != nil {
			_ = f.Close()
			src, err = nil, fmt.Errorf("%w: malformed xls: %v", ErrSourceUnreadable, p)
		}
	}()

	wb, err := xls.OpenReader(f, "utf-8")
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: failed to open xls: %w", ErrSourceUnreadable, err)
	}
	if wb.NumSheets() == 0 {
		_ = f.Close()
		return nil, fmt.Errorf("%w: excel file has no sheets", ErrSourceUnreadable)
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: excel file has no sheets", ErrSourceUnreadable)
	}

	return &xlsSource{file: f, sheet: sheet, last: int(sheet.MaxRow)}, nil
}

func (s *xlsSource) next() (record []string, err error) {
	if s.cursor > s.last {
		return nil, io.EOF
	}

	defer func() {
		if p := recover(); p != nil {
			record, err = nil, fmt.Errorf("malformed xls row %d: %v", s.cursor, p)
		}
	}()

	row := s.sheet.Row(s.cursor)
	s.cursor++
	if row == nil {
		return []string{}, nil
	}

	record = make([]string, row.LastCol())
	for col := row.FirstCol(); col < row.LastCol(); col++ {
		record[col] = row.Col(col)
	}
	return record, nil
}

func (s *xlsSource) Close() error {
	return s.file.Close()
}
