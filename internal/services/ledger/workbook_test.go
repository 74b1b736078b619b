package ledger

import (
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("setting row %d: %v", i, err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("writing workbook: %v", err)
	}
	return buf.Bytes()
}

func TestNormalizeWorkbook(t *testing.T) {
	raw := buildWorkbook(t, [][]interface{}{
		{"JournalCode", "CompteNum", "EcritureDate", "EcritureLib", "Debit", "Credit"},
		{"OD", "530000", "20240106", "Retrait especes", "9500", "0"},
		{"VT", "411000", "20240107", "Facture client", "1200,50", "0"},
	})

	entries, err := Load(raw, "export.xlsx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].AccountNum != "530000" || entries[0].Debit != 9500 {
		t.Errorf("first entry: %+v", entries[0])
	}
	if entries[1].Debit != 1200.50 {
		t.Errorf("expected decimal-comma coercion, got %v", entries[1].Debit)
	}
}

func TestNormalizeWorkbookUnreadable(t *testing.T) {
	if _, err := Load([]byte("not a zip archive"), "export.xlsx"); !errors.Is(err, ErrUnreadable) {
		t.Errorf("garbage bytes: expected ErrUnreadable, got %v", err)
	}

	empty := buildWorkbook(t, nil)
	if _, err := Load(empty, "export.xlsx"); !errors.Is(err, ErrUnreadable) {
		t.Errorf("empty sheet: expected ErrUnreadable, got %v", err)
	}
}
