/*
Package document extracts the schedule table from uploaded files.

PURPOSE:
  The roster engine consumes a plain [][]string table; this package is
  the collaborator that produces it from the .xlsx workbook the clinic's
  scheduler uploads. Only the first sheet matters - by convention the
  monthly grid is the first (and usually only) table in the workbook.

SEE ALSO:
  - roster/store.go: the TableExtractor interface this satisfies
  - roster/ingest.go: the consumer
*/
package document

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ErrEmptyWorkbook is returned when the workbook has no sheets or the
// first sheet has no rows.
var ErrEmptyWorkbook = errors.New("workbook contains no table")

// XLSXExtractor reads the first sheet of an Excel workbook as a table.
// It implements roster.TableExtractor.
type XLSXExtractor struct{}

// NewXLSXExtractor returns an extractor for .xlsx uploads.
func NewXLSXExtractor() *XLSXExtractor {
	return &XLSXExtractor{}
}

// ExtractTable returns the first sheet's rows. Cells come back as raw
// strings with empty cells preserved; rows may be ragged (excelize trims
// trailing empties), which the ingester tolerates.
func (x *XLSXExtractor) ExtractTable(r io.Reader) ([][]string, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyWorkbook
	}

	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyWorkbook
	}

	return rows, nil
}
