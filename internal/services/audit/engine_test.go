package audit

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"fec-audit-backend/internal/models"
	"fec-audit-backend/internal/services/ledger"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type stubReviewer struct {
	drafts     []Draft
	err        error
	sampleSize int
}

func (s *stubReviewer) Review(_ context.Context, sample []ledger.Entry) ([]Draft, error) {
	s.sampleSize = len(sample)
	return s.drafts, s.err
}

func TestEngineIsolatesFailingDetector(t *testing.T) {
	engine := &Engine{
		Detectors: []Detector{
			{Name: "boom", Run: func([]ledger.Entry) []Draft { panic("detector blew up") }},
			{Name: "ok", Run: func([]ledger.Entry) []Draft {
				return []Draft{{Type: "test", Criticality: models.CriticalityHigh}}
			}},
		},
		SampleLimit: SampleLimit,
		Log:         quietLogger(),
	}

	res := engine.Run(context.Background(), []ledger.Entry{{Debit: 100}})
	if len(res.Anomalies) != 1 {
		t.Fatalf("expected the healthy detector's draft, got %d drafts", len(res.Anomalies))
	}
	if res.DetectorFailures != 1 {
		t.Fatalf("expected 1 detector failure, got %d", res.DetectorFailures)
	}
}

func TestEngineIsolatesReviewerFailure(t *testing.T) {
	reviewer := &stubReviewer{err: errors.New("transport down")}
	engine := &Engine{
		Detectors: []Detector{
			{Name: "ok", Run: func([]ledger.Entry) []Draft { return []Draft{{Type: "test"}} }},
		},
		Reviewer:    reviewer,
		SampleLimit: SampleLimit,
		Log:         quietLogger(),
	}

	res := engine.Run(context.Background(), []ledger.Entry{{Debit: 100}})
	if !res.ReviewFailed {
		t.Fatalf("expected review failure to be recorded")
	}
	if len(res.Anomalies) != 1 {
		t.Fatalf("statistical drafts must survive a reviewer failure, got %d", len(res.Anomalies))
	}
}

func TestEngineMergesReviewerDrafts(t *testing.T) {
	reviewer := &stubReviewer{drafts: []Draft{{Type: "llm_finding", Source: models.SourceLLM}}}
	engine := &Engine{
		Detectors: []Detector{
			{Name: "ok", Run: func([]ledger.Entry) []Draft { return []Draft{{Type: "stat_finding"}} }},
		},
		Reviewer:    reviewer,
		SampleLimit: SampleLimit,
		Log:         quietLogger(),
	}

	entries := []ledger.Entry{{JournalCode: "OD", Debit: 100}, {Debit: 33}}
	res := engine.Run(context.Background(), entries)

	if len(res.Anomalies) != 2 {
		t.Fatalf("expected merged drafts, got %d", len(res.Anomalies))
	}
	if res.Anomalies[0].Type != "stat_finding" || res.Anomalies[1].Type != "llm_finding" {
		t.Fatalf("expected detector drafts before reviewer drafts: %+v", res.Anomalies)
	}
	if reviewer.sampleSize == 0 {
		t.Fatalf("reviewer should receive a non-empty sample")
	}
	if res.RowCount != 2 {
		t.Fatalf("expected row count 2, got %d", res.RowCount)
	}
}

func TestEngineWithoutReviewer(t *testing.T) {
	engine := NewEngine(nil, quietLogger())
	entries := repeatEntries(60, ledger.Entry{Debit: 900, AccountNum: "601000"})

	res := engine.Run(context.Background(), entries)
	if res.ReviewFailed {
		t.Fatalf("no reviewer configured, nothing should be marked failed")
	}
	if len(res.Anomalies) == 0 {
		t.Fatalf("default detectors should flag this ledger")
	}
}

func TestDefaultDetectorsEndToEnd(t *testing.T) {
	// One ledger tripping every detector at once.
	entries := repeatEntries(60, ledger.Entry{AccountNum: "601000", Debit: 900, EntryDate: "20240108"})
	entries = append(entries,
		ledger.Entry{AccountNum: "602000", Debit: 9500, EntryDate: "20240108"},
		ledger.Entry{AccountNum: "530000", Credit: 600, EntryDate: "20240108"},
		ledger.Entry{AccountNum: "603000", Label: "Achat urgent", Debit: 2000, EntryDate: "20240106"},
	)

	engine := NewEngine(nil, quietLogger())
	res := engine.Run(context.Background(), entries)

	types := map[string]bool{}
	for _, d := range res.Anomalies {
		types[d.Type] = true
	}
	for _, want := range []string{"potential_fraud", "structuring", "impossible_balance", "internal_control"} {
		if !types[want] {
			t.Errorf("expected a %q anomaly, got %v", want, types)
		}
	}
	if res.DetectorFailures != 0 {
		t.Errorf("expected no detector failures, got %d", res.DetectorFailures)
	}
}
