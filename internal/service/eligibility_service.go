// Package service contains the application services that sit between the
// domain and the inbound adapters.
package service

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/decide-fyi/refund-notary/internal/domain/audit"
	"github.com/decide-fyi/refund-notary/internal/domain/refund"
)

// EligibilityService evaluates refund-eligibility requests on behalf of
// the presentation adapters, recording a decision audit record per call.
// The engine itself stays pure; everything with a side effect lives here.
type EligibilityService struct {
	engine *refund.Engine
	audits audit.Store
	logger *slog.Logger
	tracer trace.Tracer
}

// NewEligibilityService wires the engine to the audit store.
// A nil audit store disables decision records.
func NewEligibilityService(engine *refund.Engine, audits audit.Store, logger *slog.Logger) *EligibilityService {
	if audits == nil {
		audits = nopAuditStore{}
	}
	return &EligibilityService{
		engine: engine,
		audits: audits,
		logger: logger,
		tracer: otel.Tracer("refund-notary/eligibility"),
	}
}

// RulesVersion returns the loaded policy table version.
func (s *EligibilityService) RulesVersion() string {
	return s.engine.RulesVersion()
}

// SupportedVendors returns the sorted vendor ids the engine can decide on.
func (s *EligibilityService) SupportedVendors() []string {
	return s.engine.SupportedVendors()
}

// Evaluate runs the compute engine and records the outcome.
// source identifies the calling adapter (http or mcp); requestID is the
// adapter's correlation id.
func (s *EligibilityService) Evaluate(ctx context.Context, source, requestID string, req refund.Request) refund.Eligibility {
	ctx, span := s.tracer.Start(ctx, "eligibility.evaluate")
	defer span.End()

	start := time.Now()
	verdict := s.engine.Evaluate(req)
	latency := time.Since(start)

	span.SetAttributes(
		attribute.String("refund.vendor", verdict.Vendor),
		attribute.String("refund.verdict", string(verdict.Verdict)),
		attribute.String("refund.code", string(verdict.Code)),
	)

	if err := s.audits.Append(ctx, audit.DecisionRecord{
		Timestamp:     start.UTC(),
		RequestID:     requestID,
		Source:        source,
		Vendor:        verdict.Vendor,
		Verdict:       string(verdict.Verdict),
		Code:          string(verdict.Code),
		RulesVersion:  verdict.RulesVersion,
		LatencyMicros: latency.Microseconds(),
	}); err != nil {
		s.logger.Warn("failed to append decision record", "error", err, "request_id", requestID)
	}

	return verdict
}

// nopAuditStore discards records when no audit sink is configured.
type nopAuditStore struct{}

func (nopAuditStore) Append(ctx context.Context, record audit.DecisionRecord) error { return nil }
func (nopAuditStore) Close() error                                                 { return nil }
