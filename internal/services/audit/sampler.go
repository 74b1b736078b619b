package audit

import (
	"math"
	"sort"
	"strings"

	"fec-audit-backend/internal/services/ledger"
)

const (
	SampleLimit       = 40
	SampleMinFallback = 10
)

// French ledger labels that warrant a second look.
var riskKeywords = []string{
	"cadeau",      // gift
	"espece",      // cash
	"divers",      // miscellaneous
	"ajust",       // adjustment
	"honoraires",  // fees
	"conseil",     // consulting
	"exceptionnel",
}

const miscOpsJournal = "OD"

// SampleHighRisk selects a bounded, high-signal subset of the ledger for the
// qualitative review: round amounts, suspicious labels and miscellaneous
// operations, largest debits first. When the filter yields fewer than
// minFallback rows, the top debits overall are mixed in so the reviewer
// always sees something meaningful.
func SampleHighRisk(entries []ledger.Entry, limit, minFallback int) []ledger.Entry {
	byDebitDesc := func(idx []int) {
		sort.SliceStable(idx, func(a, b int) bool {
			return entries[idx[a]].Debit > entries[idx[b]].Debit
		})
	}

	var matched []int
	for i, e := range entries {
		if isHighRisk(e) {
			matched = append(matched, i)
		}
	}
	byDebitDesc(matched)
	if len(matched) > limit {
		matched = matched[:limit]
	}

	if len(matched) < minFallback {
		all := make([]int, len(entries))
		for i := range entries {
			all[i] = i
		}
		byDebitDesc(all)
		if len(all) > minFallback {
			all = all[:minFallback]
		}

		seen := make(map[int]bool, len(matched))
		for _, i := range matched {
			seen[i] = true
		}
		for _, i := range all {
			if !seen[i] {
				matched = append(matched, i)
			}
		}
		byDebitDesc(matched)
	}

	sample := make([]ledger.Entry, 0, len(matched))
	for _, i := range matched {
		sample = append(sample, entries[i])
	}
	return sample
}

func isHighRisk(e ledger.Entry) bool {
	if e.Debit > 0 && math.Mod(e.Debit, 100) == 0 {
		return true
	}
	if strings.EqualFold(strings.TrimSpace(e.JournalCode), miscOpsJournal) {
		return true
	}
	label := strings.ToLower(e.Label)
	for _, kw := range riskKeywords {
		if strings.Contains(label, kw) {
			return true
		}
	}
	return false
}
