package ledger

import "time"

// Entry is one canonical general-ledger row. Column names follow the FEC
// (Fichier des Écritures Comptables) field names; every column is present on
// every entry, with empty string / zero fallbacks when the source file lacked
// the column.
type Entry struct {
	JournalCode string  `json:"journal_code"`
	EntryNum    string  `json:"ecriture_num"`
	EntryDate   string  `json:"ecriture_date"`
	AccountNum  string  `json:"compte_num"`
	Label       string  `json:"ecriture_lib"`
	Debit       float64 `json:"debit"`
	Credit      float64 `json:"credit"`
}

var dateLayouts = []string{
	"20060102", // FEC standard
	"2006-01-02",
	"02/01/2006",
}

// ParseDate parses an entry date against the accepted layouts.
func ParseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
