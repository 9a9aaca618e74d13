// Package audit contains domain types for the decision audit trail.
package audit

import (
	"context"
	"time"
)

// Source constants identify which adapter produced a decision record.
const (
	// SourceHTTP marks verdicts computed for the plain HTTP JSON API.
	SourceHTTP = "http"
	// SourceMCP marks verdicts computed for the MCP JSON-RPC tool.
	SourceMCP = "mcp"
	// SourceOracle marks yes/no oracle answers.
	SourceOracle = "oracle"
)

// DecisionRecord is one operational log entry for a computed decision.
// It carries verdict metadata only, never the caller's payload: the
// system persists no request data beyond these fields.
type DecisionRecord struct {
	// Timestamp when the decision was computed.
	Timestamp time.Time `json:"timestamp"`
	// RequestID correlates the record with transport logs.
	RequestID string `json:"request_id"`
	// Source names the adapter that received the request.
	Source string `json:"source"`
	// Vendor is the normalized vendor id (refund decisions only).
	Vendor string `json:"vendor,omitempty"`
	// Verdict is ALLOWED/DENIED/UNKNOWN for refund decisions, or the
	// oracle outcome category.
	Verdict string `json:"verdict"`
	// Code is the machine-readable reason for the verdict.
	Code string `json:"code,omitempty"`
	// RulesVersion is the policy table version at evaluation time.
	RulesVersion string `json:"rules_version,omitempty"`
	// LatencyMicros is the evaluation latency in microseconds.
	LatencyMicros int64 `json:"latency_micros"`
}

// Store persists decision records.
// Interface owned by the domain per hexagonal architecture; adapters
// provide stdout and file implementations.
type Store interface {
	// Append stores a record. Implementations must not block the
	// request path on slow sinks.
	Append(ctx context.Context, record DecisionRecord) error

	// Close flushes and releases resources.
	Close() error
}
