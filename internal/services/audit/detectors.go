package audit

import (
	"fmt"
	"math"
	"strings"
	"time"

	"fec-audit-backend/internal/models"
	"fec-audit-backend/internal/services/ledger"
)

// Audit cycles.
const (
	CycleGeneral  = "general"
	CycleTreasury = "treasury"
	CycleMiscOps  = "misc_operations"
)

// A Detector is a stateless check over the canonical ledger. Detectors never
// fail on malformed rows; they coerce or skip them.
type Detector struct {
	Name string
	Run  func(entries []ledger.Entry) []Draft
}

func DefaultDetectors() []Detector {
	return []Detector{
		{Name: "benford", Run: DetectBenford},
		{Name: "threshold_clustering", Run: DetectThresholdClustering},
		{Name: "cash_balance", Run: DetectCashBalance},
		{Name: "weekend_postings", Run: DetectWeekendPostings},
	}
}

const (
	benfordMinSample = 50
	benfordBandLow   = 0.25
	benfordBandHigh  = 0.35
	benfordExpected  = 0.301
)

// DetectBenford tests the leading-digit distribution of positive debit
// amounts. Genuine accounting data puts the digit 1 first about 30.1% of the
// time; a frequency outside the acceptance band suggests invented figures.
// Below the minimum sample size the test abstains.
func DetectBenford(entries []ledger.Entry) []Draft {
	var n, ones int
	for _, e := range entries {
		if e.Debit <= 0 {
			continue
		}
		d := leadingDigit(e.Debit)
		if d == 0 {
			continue
		}
		n++
		if d == 1 {
			ones++
		}
	}
	if n < benfordMinSample {
		return nil
	}

	freq := float64(ones) / float64(n)
	if freq >= benfordBandLow && freq <= benfordBandHigh {
		return nil
	}

	criticality, score := models.CriticalityCritical, 90.0
	if freq > benfordBandHigh {
		criticality, score = models.CriticalityHigh, 85.0
	}
	return []Draft{{
		Cycle:       CycleGeneral,
		Type:        "potential_fraud",
		Criticality: criticality,
		Score:       score,
		Description: fmt.Sprintf(
			"Benford's Law deviation: leading digit 1 appears in %.1f%% of debit amounts (expected ~30.1%%, accepted 25.0%%-35.0%%).",
			freq*100),
		Recommendation: "Verify the authenticity of the supporting documents.",
		Source:         models.SourceStatistical,
		Details: map[string]any{
			"observed_frequency": freq,
			"expected_frequency": benfordExpected,
			"band_low":           benfordBandLow,
			"band_high":          benfordBandHigh,
			"sample_size":        n,
		},
	}}
}

func leadingDigit(v float64) int {
	v = math.Abs(v)
	for v >= 10 {
		v /= 10
	}
	for v > 0 && v < 1 {
		v *= 10
	}
	return int(v)
}

const (
	clusterBandLow  = 9000.0
	clusterBandHigh = 10000.0 // cash declaration threshold, exclusive
)

// DetectThresholdClustering flags debit amounts sitting just under the
// 10,000 cash reporting threshold. Splitting payments to stay below a
// declaration threshold is a classic structuring pattern, so all hits are
// aggregated into a single critical anomaly.
func DetectThresholdClustering(entries []ledger.Entry) []Draft {
	var count int
	var total float64
	for _, e := range entries {
		if e.Debit >= clusterBandLow && e.Debit < clusterBandHigh {
			count++
			total += e.Debit
		}
	}
	if count == 0 {
		return nil
	}
	return []Draft{{
		Cycle:       CycleTreasury,
		Type:        "structuring",
		Criticality: models.CriticalityCritical,
		Score:       92,
		Amount:      total,
		Description: fmt.Sprintf(
			"%d debit entries between 9,000.00 and 10,000.00, totalling %.2f. Amounts just under the declaration threshold suggest payment structuring.",
			count, total),
		Recommendation: "Trace the origin of the funds and the identity of the beneficiaries.",
		Source:         models.SourceStatistical,
		Details: map[string]any{
			"entry_count": count,
			"band_low":    clusterBandLow,
			"band_high":   clusterBandHigh,
		},
	}}
}

const (
	cashAccountPrefix    = "53"
	cashBalanceTolerance = -50.0
)

// DetectCashBalance checks the class 53 (till) accounts. A physical till can
// never hold a negative balance, so anything below the tolerance is flagged
// at maximum confidence.
func DetectCashBalance(entries []ledger.Entry) []Draft {
	var balance float64
	var seen bool
	for _, e := range entries {
		if !strings.HasPrefix(strings.TrimSpace(e.AccountNum), cashAccountPrefix) {
			continue
		}
		seen = true
		balance += e.Debit - e.Credit
	}
	if !seen || balance >= cashBalanceTolerance {
		return nil
	}
	return []Draft{{
		Cycle:       CycleTreasury,
		Type:        "impossible_balance",
		Criticality: models.CriticalityCritical,
		Score:       100,
		Amount:      math.Abs(balance),
		AccountNum:  cashAccountPrefix,
		Description: fmt.Sprintf(
			"Cash accounts (class 53) show a negative balance of %.2f. A physical till cannot be negative.",
			balance),
		Recommendation: "Perform a physical cash count and reconcile the till.",
		Source:         models.SourceStatistical,
		Details: map[string]any{
			"balance":   balance,
			"tolerance": cashBalanceTolerance,
		},
	}}
}

const weekendDebitFloor = 1000.0

// DetectWeekendPostings flags material entries dated on a Saturday or
// Sunday. Rows whose date does not parse are skipped.
func DetectWeekendPostings(entries []ledger.Entry) []Draft {
	var drafts []Draft
	for _, e := range entries {
		if e.Debit <= weekendDebitFloor {
			continue
		}
		t, ok := ledger.ParseDate(e.EntryDate)
		if !ok {
			continue
		}
		day := t.Weekday()
		if day != time.Saturday && day != time.Sunday {
			continue
		}
		drafts = append(drafts, Draft{
			Cycle:          CycleMiscOps,
			Type:           "internal_control",
			Criticality:    models.CriticalityModerate,
			Score:          60,
			Amount:         e.Debit,
			AccountNum:     e.AccountNum,
			Label:          e.Label,
			Description:    fmt.Sprintf("Entry of %.2f posted on a %s.", e.Debit, day),
			Recommendation: "Justify postings made on non-business days.",
			Source:         models.SourceStatistical,
		})
	}
	return drafts
}
