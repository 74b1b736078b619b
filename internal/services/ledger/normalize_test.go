package ledger

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"golang.org/x/text/encoding/charmap"
)

func TestNormalizeDelimiterEncodingGrid(t *testing.T) {
	delims := []string{"\t", ";", "|", ","}
	encoders := map[string]func(string) []byte{
		"utf-8": func(s string) []byte { return []byte(s) },
		"latin1": func(s string) []byte {
			b, _ := charmap.ISO8859_1.NewEncoder().Bytes([]byte(s))
			return b
		},
		"cp1252": func(s string) []byte {
			b, _ := charmap.Windows1252.NewEncoder().Bytes([]byte(s))
			return b
		},
	}

	for _, delim := range delims {
		for name, encode := range encoders {
			t.Run(fmt.Sprintf("%q/%s", delim, name), func(t *testing.T) {
				content := strings.Join([]string{
					"CompteNum" + delim + "Debit",
					"601000é" + delim + "100.50",
				}, "\n")
				entries, err := Normalize(encode(content))
				if err != nil {
					t.Fatalf("expected readable file, got %v", err)
				}
				if len(entries) != 1 {
					t.Fatalf("expected 1 entry, got %d", len(entries))
				}
				if entries[0].Debit != 100.50 {
					t.Fatalf("expected debit 100.50, got %v", entries[0].Debit)
				}
				if !strings.HasPrefix(entries[0].AccountNum, "601000") {
					t.Fatalf("unexpected account number %q", entries[0].AccountNum)
				}
			})
		}
	}
}

func TestNormalizeHeaderAliases(t *testing.T) {
	content := "CodeJournal;NumCompte;DateEcriture;Libelle;Debit;Credit\n" +
		"OD;530000;20240115;Achat divers;250,00;0"

	entries, err := Normalize([]byte(content))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	e := entries[0]
	if e.JournalCode != "OD" {
		t.Errorf("journal_code: got %q", e.JournalCode)
	}
	if e.AccountNum != "530000" {
		t.Errorf("compte_num: got %q", e.AccountNum)
	}
	if e.EntryDate != "20240115" {
		t.Errorf("ecriture_date: got %q", e.EntryDate)
	}
	if e.Label != "Achat divers" {
		t.Errorf("ecriture_lib: got %q", e.Label)
	}
	if e.Debit != 250 || e.Credit != 0 {
		t.Errorf("amounts: got debit=%v credit=%v", e.Debit, e.Credit)
	}
}

func TestNormalizeSynthesizesMissingColumns(t *testing.T) {
	content := "Debit;Credit\n100;50"

	entries, err := Normalize([]byte(content))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	e := entries[0]
	if e.JournalCode != "" || e.EntryNum != "" || e.EntryDate != "" || e.AccountNum != "" || e.Label != "" {
		t.Errorf("expected empty text columns, got %+v", e)
	}
	if e.Debit != 100 || e.Credit != 50 {
		t.Errorf("amounts: got debit=%v credit=%v", e.Debit, e.Credit)
	}
}

func TestNormalizeAmountCoercion(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"100,50", 100.50},
		{"100.50", 100.50},
		{"1 234,56", 1234.56},
		{"1 234,56", 1234.56},
		{" 42 ", 42},
		{"not-a-number", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := parseAmount(tt.raw); got != tt.want {
			t.Errorf("parseAmount(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestNormalizeUnreadable(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
	}{
		{"empty", []byte{}},
		{"single column", []byte("debit\n100\n200")},
		{"header only", []byte("compte_num;debit")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Normalize(tt.raw); !errors.Is(err, ErrUnreadable) {
				t.Fatalf("expected ErrUnreadable, got %v", err)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	content := "Journal;Compte;Date;Lib;Debit;Credit\n" +
		"VT;411000;20240301;Facture client;1200,00;0\n" +
		"BQ;512000;20240302;Virement;0;1200,00"

	first, err := Normalize([]byte(content))
	if err != nil {
		t.Fatalf("first pass: %v", err)
	}

	// Render the canonical table back out and normalize again.
	var b strings.Builder
	b.WriteString("journal_code;ecriture_num;ecriture_date;compte_num;ecriture_lib;debit;credit\n")
	for _, e := range first {
		fmt.Fprintf(&b, "%s;%s;%s;%s;%s;%v;%v\n",
			e.JournalCode, e.EntryNum, e.EntryDate, e.AccountNum, e.Label, e.Debit, e.Credit)
	}

	second, err := Normalize([]byte(b.String()))
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("normalization not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestLoadDispatch(t *testing.T) {
	csv := []byte("compte_num;debit\n530000;100")

	if _, err := Load(csv, "export.csv"); err != nil {
		t.Errorf("csv: unexpected error %v", err)
	}
	if _, err := Load(csv, "EXPORT.TXT"); err != nil {
		t.Errorf("txt (uppercase ext): unexpected error %v", err)
	}
	if _, err := Load(csv, "report.pdf"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("pdf: expected ErrUnsupportedFormat, got %v", err)
	}
	if _, err := Load(csv, "no-extension"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("bare name: expected ErrUnsupportedFormat, got %v", err)
	}
}
