package ledger

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// NormalizeWorkbook loads the first sheet of an Excel upload and runs it
// through the same header canonicalization as CSV files.
func NormalizeWorkbook(raw []byte) ([]Entry, error) {
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	if len(rows) == 0 || len(rows[0]) < 2 {
		return nil, ErrUnreadable
	}

	entries := fromRows(rows[0], rows[1:])
	if len(entries) == 0 {
		return nil, ErrUnreadable
	}
	return entries, nil
}
