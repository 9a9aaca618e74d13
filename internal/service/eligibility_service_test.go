package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/decide-fyi/refund-notary/internal/domain/audit"
	"github.com/decide-fyi/refund-notary/internal/domain/refund"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testEngine() *refund.Engine {
	table := &refund.PolicyTable{
		RulesVersion: "v-test",
		Vendors: map[string]refund.VendorPolicy{
			"adobe":   {WindowDays: 14},
			"spotify": {WindowDays: 0},
		},
	}
	return refund.NewEngine(table, refund.StrictnessStrict)
}

// recordingStore captures appended records for assertions.
type recordingStore struct {
	mu      sync.Mutex
	records []audit.DecisionRecord
}

func (s *recordingStore) Append(ctx context.Context, record audit.DecisionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return nil
}

func (s *recordingStore) Close() error { return nil }

func (s *recordingStore) all() []audit.DecisionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]audit.DecisionRecord(nil), s.records...)
}

func daysPtr(d float64) *float64 { return &d }

func TestEligibilityService_EvaluateRecordsAudit(t *testing.T) {
	store := &recordingStore{}
	svc := NewEligibilityService(testEngine(), store, testLogger())

	verdict := svc.Evaluate(context.Background(), audit.SourceHTTP, "req-1", refund.Request{
		Vendor:            "adobe",
		DaysSincePurchase: daysPtr(12),
		Region:            "US",
		Plan:              "individual",
	})

	if verdict.Verdict != refund.VerdictAllowed {
		t.Errorf("verdict = %q, want ALLOWED", verdict.Verdict)
	}

	records := store.all()
	if len(records) != 1 {
		t.Fatalf("got %d audit records, want 1", len(records))
	}
	rec := records[0]
	if rec.RequestID != "req-1" || rec.Source != audit.SourceHTTP {
		t.Errorf("record = %+v", rec)
	}
	if rec.Vendor != "adobe" || rec.Verdict != "ALLOWED" || rec.Code != "WITHIN_WINDOW" {
		t.Errorf("record = %+v", rec)
	}
	if rec.RulesVersion != "v-test" {
		t.Errorf("rules_version = %q", rec.RulesVersion)
	}
}

func TestEligibilityService_NilAuditStore(t *testing.T) {
	svc := NewEligibilityService(testEngine(), nil, testLogger())

	verdict := svc.Evaluate(context.Background(), audit.SourceMCP, "req-2", refund.Request{
		Vendor:            "spotify",
		DaysSincePurchase: daysPtr(1),
		Region:            "US",
		Plan:              "individual",
	})

	if verdict.Verdict != refund.VerdictDenied || verdict.Code != refund.CodeNoRefunds {
		t.Errorf("verdict = %q code = %q, want DENIED/NO_REFUNDS", verdict.Verdict, verdict.Code)
	}
}

func TestEligibilityService_Accessors(t *testing.T) {
	svc := NewEligibilityService(testEngine(), nil, testLogger())

	if svc.RulesVersion() != "v-test" {
		t.Errorf("RulesVersion = %q", svc.RulesVersion())
	}
	vendors := svc.SupportedVendors()
	if len(vendors) != 2 || vendors[0] != "adobe" || vendors[1] != "spotify" {
		t.Errorf("SupportedVendors = %v", vendors)
	}
}
