package ledger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var (
	// ErrUnreadable means no supported encoding/delimiter combination parsed
	// the upload into at least two columns with at least one data row.
	ErrUnreadable = errors.New("unreadable ledger file")

	// ErrUnsupportedFormat means the file extension is not handled.
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

var delimiters = []rune{'\t', ';', '|', ','}

// aliases maps the header spellings seen in real exports to the canonical
// FEC column names. Canonical names map to themselves so re-normalizing an
// already-canonical file is a no-op.
var aliases = map[string]string{
	"journal_code": "journal_code",
	"journalcode":  "journal_code",
	"codejournal":  "journal_code",
	"journal":      "journal_code",
	"jnl":          "journal_code",

	"ecriture_num": "ecriture_num",
	"ecriturenum":  "ecriture_num",
	"numecriture":  "ecriture_num",

	"ecriture_date": "ecriture_date",
	"ecrituredate":  "ecriture_date",
	"dateecriture":  "ecriture_date",
	"date":          "ecriture_date",

	"compte_num": "compte_num",
	"comptenum":  "compte_num",
	"numcompte":  "compte_num",
	"compte":     "compte_num",

	"ecriture_lib":    "ecriture_lib",
	"ecriturelib":     "ecriture_lib",
	"libelleecriture": "ecriture_lib",
	"libelle":         "ecriture_lib",
	"lib":             "ecriture_lib",

	"debit":  "debit",
	"credit": "credit",
}

// Load dispatches an uploaded file by extension to the matching parser.
func Load(raw []byte, filename string) ([]Entry, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		return Normalize(raw)
	case ".xlsx", ".xls":
		return NormalizeWorkbook(raw)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
	}
}

// Normalize turns raw CSV/TXT bytes into the canonical ledger form. It tries
// every supported (encoding, delimiter) combination in a fixed order and
// keeps the first one whose header splits into more than one column.
// Malformed individual lines are skipped, missing canonical columns are
// synthesized, and unparsable amounts coerce to zero: a partial analysis
// beats no analysis.
func Normalize(raw []byte) ([]Entry, error) {
	for _, text := range decodings(raw) {
		for _, delim := range delimiters {
			header, rows, ok := parseCSV(text, delim)
			if !ok {
				continue
			}
			entries := fromRows(header, rows)
			if len(entries) == 0 {
				return nil, ErrUnreadable
			}
			return entries, nil
		}
	}
	return nil, ErrUnreadable
}

// decodings returns the candidate text decodings of raw, in trial order.
func decodings(raw []byte) []string {
	var out []string
	if utf8.Valid(raw) {
		out = append(out, string(raw))
	}
	for _, cm := range []*charmap.Charmap{charmap.ISO8859_1, charmap.Windows1252} {
		if decoded, err := cm.NewDecoder().Bytes(raw); err == nil {
			out = append(out, string(decoded))
		}
	}
	return out
}

// parseCSV reads text with the given delimiter. It reports ok only when the
// header splits into more than one column. Rows that fail to parse are
// dropped rather than failing the whole file.
func parseCSV(text string, delim rune) (header []string, rows [][]string, ok bool) {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil || len(header) < 2 {
		return nil, nil, false
	}
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		if len(record) == 0 || strings.Join(record, "") == "" {
			continue
		}
		rows = append(rows, record)
	}
	return header, rows, true
}

// fromRows maps a parsed header+rows table onto canonical entries.
func fromRows(header []string, rows [][]string) []Entry {
	// First occurrence of each canonical column wins.
	index := map[string]int{}
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		if canonical, known := aliases[name]; known {
			name = canonical
		}
		if _, seen := index[name]; !seen {
			index[name] = i
		}
	}

	field := func(row []string, col string) string {
		i, found := index[col]
		if !found || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		if strings.Join(row, "") == "" {
			continue
		}
		entries = append(entries, Entry{
			JournalCode: field(row, "journal_code"),
			EntryNum:    field(row, "ecriture_num"),
			EntryDate:   field(row, "ecriture_date"),
			AccountNum:  field(row, "compte_num"),
			Label:       field(row, "ecriture_lib"),
			Debit:       parseAmount(field(row, "debit")),
			Credit:      parseAmount(field(row, "credit")),
		})
	}
	return entries
}

// parseAmount coerces a raw amount cell to a float. French exports use the
// decimal comma and sometimes non-breaking spaces as thousands separators.
func parseAmount(s string) float64 {
	s = strings.Map(func(r rune) rune {
		if r == ' ' || r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, s)
	s = strings.ReplaceAll(s, ",", ".")
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
