package audit

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"fec-audit-backend/internal/services/ledger"
)

// Reviewer is the qualitative reasoning collaborator. Given a bounded,
// risk-sampled subset of the ledger it returns zero or more drafts, or an
// error the engine treats as "no additional anomalies".
type Reviewer interface {
	Review(ctx context.Context, sample []ledger.Entry) ([]Draft, error)
}

type Result struct {
	Anomalies        []Draft
	RowCount         int
	DetectorFailures int
	ReviewFailed     bool
}

// Engine runs the detector set and the qualitative review over a canonical
// ledger. It is stateless between calls; one engine can serve concurrent
// analyses.
type Engine struct {
	Detectors   []Detector
	Reviewer    Reviewer
	SampleLimit int
	Log         *logrus.Logger
}

func NewEngine(reviewer Reviewer, log *logrus.Logger) *Engine {
	return &Engine{
		Detectors:   DefaultDetectors(),
		Reviewer:    reviewer,
		SampleLimit: SampleLimit,
		Log:         log,
	}
}

// Run fans the detectors out in parallel with the sampled qualitative
// review, then merges their drafts in detector order. Every branch is
// isolated: a panicking detector or a failing reviewer contributes nothing
// instead of aborting the analysis.
func (e *Engine) Run(ctx context.Context, entries []ledger.Entry) *Result {
	res := &Result{RowCount: len(entries)}

	detectorDrafts := make([][]Draft, len(e.Detectors))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i, d := range e.Detectors {
		wg.Add(1)
		go func(i int, d Detector) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					mu.Lock()
					res.DetectorFailures++
					mu.Unlock()
					e.Log.WithFields(logrus.Fields{"detector": d.Name, "panic": r}).
						Warn("detector failed, continuing without its results")
				}
			}()
			detectorDrafts[i] = d.Run(entries)
		}(i, d)
	}

	var reviewDrafts []Draft
	if e.Reviewer != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					mu.Lock()
					res.ReviewFailed = true
					mu.Unlock()
					e.Log.WithField("panic", r).Warn("qualitative review panicked")
				}
			}()
			sample := SampleHighRisk(entries, e.SampleLimit, SampleMinFallback)
			drafts, err := e.Reviewer.Review(ctx, sample)
			if err != nil {
				mu.Lock()
				res.ReviewFailed = true
				mu.Unlock()
				e.Log.WithError(err).Warn("qualitative review failed, continuing with statistical results only")
				return
			}
			reviewDrafts = drafts
		}()
	}

	wg.Wait()

	for _, drafts := range detectorDrafts {
		res.Anomalies = append(res.Anomalies, drafts...)
	}
	res.Anomalies = append(res.Anomalies, reviewDrafts...)
	return res
}
