package audit

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Thresholds are the ISA 320 materiality levels derived from the mission's
// financial inputs.
type Thresholds struct {
	Significance float64 `json:"significance"`
	Planning     float64 `json:"planning"`
	Reporting    float64 `json:"reporting"`
}

// MinimumSignificance is the technical floor applied when none of the
// candidate bases is positive (missing or zeroed financial inputs). The
// fallback is deliberate: a mission with no usable inputs still needs a
// threshold for the opinion to be derivable.
const MinimumSignificance = 1000.0

// ComputeThresholds derives the significance threshold as the largest of the
// positive ISA 320 candidates (1% of revenue, 5% of net income when
// positive, 0.5% of total assets), then the planning (75%) and reporting
// (5%) thresholds from it.
func ComputeThresholds(revenue, netIncome, totalAssets float64) Thresholds {
	candidates := []float64{revenue * 0.01, totalAssets * 0.005}
	if netIncome > 0 {
		candidates = append(candidates, netIncome*0.05)
	}

	var significance float64
	for _, c := range candidates {
		if c > significance {
			significance = c
		}
	}
	if significance <= 0 {
		significance = MinimumSignificance
	}

	return Thresholds{
		Significance: round2(significance),
		Planning:     round2(significance * 0.75),
		Reporting:    round2(significance * 0.05),
	}
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Opinion verdicts.
const (
	VerdictUnqualified = "unqualified" // certified
	VerdictQualified   = "qualified"   // certified with reservations
)

type Opinion struct {
	Verdict               string  `json:"verdict"`
	Rationale             string  `json:"rationale"`
	TotalAnomalyAmount    float64 `json:"total_anomaly_amount"`
	SignificanceThreshold float64 `json:"significance_threshold"`
}

// DeriveOpinion compares the total flagged financial impact against the
// significance threshold. The opinion is qualified only when the total
// strictly exceeds the threshold.
func DeriveOpinion(totalAnomalyAmount, significance float64) Opinion {
	o := Opinion{
		TotalAnomalyAmount:    totalAnomalyAmount,
		SignificanceThreshold: significance,
	}
	if totalAnomalyAmount > significance {
		o.Verdict = VerdictQualified
		o.Rationale = fmt.Sprintf(
			"total anomaly impact %.2f exceeds the significance threshold %.2f",
			totalAnomalyAmount, significance)
	} else {
		o.Verdict = VerdictUnqualified
		o.Rationale = fmt.Sprintf(
			"total anomaly impact %.2f does not exceed the significance threshold %.2f",
			totalAnomalyAmount, significance)
	}
	return o
}
