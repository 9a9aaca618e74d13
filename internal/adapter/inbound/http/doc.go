// Package http provides the HTTP transport for the refund notary.
//
// This package implements the inbound JSON API. It hosts the refund
// eligibility endpoint, the yes/no oracle endpoint, and (optionally) an
// MCP JSON-RPC handler on one listener.
//
// # Usage
//
// Create and start an HTTP transport:
//
//	transport := http.NewTransport(eligibilityService,
//	    http.WithAddr(":8080"),
//	    http.WithAllowedOrigins([]string{"https://example.com"}),
//	    http.WithOracle(oracleService),
//	    http.WithLogger(logger),
//	)
//	err := transport.Start(ctx)
//
// # Endpoints
//
//	POST /refund/eligibility        - Compute a refund eligibility verdict
//	GET  /refund/eligibility        - Discovery payload describing the endpoint
//	POST /api/v1/refund/eligibility - Versioned alias of the same handler
//	GET/POST /api/decide            - Yes/no oracle (question via ?question= or JSON body)
//	POST /mcp                       - MCP JSON-RPC (when an MCP handler is mounted)
//	GET  /health                    - Component health report
//	GET  /metrics                   - Prometheus metrics
//
// # Response convention
//
// Verdicts always return HTTP 200, including UNKNOWN verdicts for
// invalid or out-of-scope inputs. HTTP error statuses are reserved for
// transport-level failures: an undecodable body (400), a wrong method
// (405), and a handler panic (500).
//
// # Middleware Chain
//
// Requests pass through middleware in this order:
//
//  1. MetricsMiddleware - Records request counts and durations
//  2. RequestIDMiddleware - Extracts/generates X-Request-ID, enriches logger
//  3. CORSMiddleware - Preflight handling and Origin allowlist
//  4. RecoverMiddleware - Converts panics to 500 responses
package http
