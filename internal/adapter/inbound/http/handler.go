// Package http provides the HTTP transport adapter for the refund notary.
package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/decide-fyi/refund-notary/internal/domain/audit"
	"github.com/decide-fyi/refund-notary/internal/domain/oracle"
	"github.com/decide-fyi/refund-notary/internal/domain/refund"
	"github.com/decide-fyi/refund-notary/internal/service"
)

// maxRequestBodySize is the maximum allowed request body size (1 MB).
const maxRequestBodySize = 1 << 20

// discoveryResponse is returned for GET on the eligibility endpoint so a
// browser poking the URL learns how to call it.
type discoveryResponse struct {
	OK           bool   `json:"ok"`
	Message      string `json:"message"`
	Endpoint     string `json:"endpoint"`
	RulesVersion string `json:"rules_version"`
}

// errorResponse is the envelope for HTTP-boundary failures (bad body,
// wrong method, panic). Verdicts, including UNKNOWN ones, never use it.
type errorResponse struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// eligibilityHandler serves the refund eligibility endpoint.
// POST computes a verdict, GET returns a discovery payload, everything
// else is 405 with an Allow header.
func eligibilityHandler(svc *service.EligibilityService, metrics *Metrics) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			handleEligibilityPost(w, r, svc, metrics)
		case http.MethodGet:
			writeJSON(w, http.StatusOK, discoveryResponse{
				OK:           true,
				Message:      "POST a JSON body with vendor, days_since_purchase, region, plan",
				Endpoint:     "POST " + r.URL.Path,
				RulesVersion: svc.RulesVersion(),
			})
		default:
			w.Header().Set("Allow", "GET, POST, OPTIONS")
			writeError(w, http.StatusMethodNotAllowed, "", "method not allowed, use POST")
		}
	})
}

func handleEligibilityPost(w http.ResponseWriter, r *http.Request, svc *service.EligibilityService, metrics *Metrics) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	defer func() { _ = r.Body.Close() }()

	var req refund.Request
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "", "request body must be a JSON object")
		return
	}

	requestID := RequestIDFromContext(r.Context())
	verdict := svc.Evaluate(r.Context(), audit.SourceHTTP, requestID, req)
	metrics.RecordVerdict(string(verdict.Verdict), string(verdict.Code))

	LoggerFromContext(r.Context()).Info("eligibility verdict",
		"method", r.Method,
		"path", r.URL.Path,
		"vendor", verdict.Vendor,
		"verdict", verdict.Verdict,
		"code", verdict.Code,
	)

	writeJSON(w, http.StatusOK, verdict)
}

// decideHandler serves the yes/no oracle endpoint. The question arrives
// as a ?question= (or ?q=) query parameter on GET, or a {"question": ...}
// JSON body on POST. A nil service means the upstream API key is absent;
// the endpoint then degrades to a logged 500 "try again".
func decideHandler(svc *service.OracleService, metrics *Metrics) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var question string
		switch r.Method {
		case http.MethodGet:
			question = r.URL.Query().Get("question")
			if question == "" {
				question = r.URL.Query().Get("q")
			}
		case http.MethodPost:
			r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
			defer func() { _ = r.Body.Close() }()
			var body struct {
				Question string `json:"question"`
			}
			// A malformed body is treated like an empty question.
			_ = json.NewDecoder(r.Body).Decode(&body)
			question = body.Question
		default:
			w.Header().Set("Allow", "GET, POST, OPTIONS")
			writeJSON(w, http.StatusMethodNotAllowed, oracle.TryAgain())
			return
		}

		if svc == nil {
			LoggerFromContext(r.Context()).Error("oracle unavailable: upstream API key not configured")
			writeJSON(w, http.StatusInternalServerError, oracle.TryAgain())
			return
		}

		requestID := RequestIDFromContext(r.Context())
		answer := svc.Decide(r.Context(), requestID, strings.TrimSpace(question))
		metrics.RecordOracleOutcome(string(answer.C))

		writeJSON(w, http.StatusOK, answer)
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: errorDetail{Code: code, Message: message}})
}
