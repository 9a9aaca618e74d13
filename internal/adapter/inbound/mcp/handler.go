// Package mcp implements the MCP presentation adapter: a minimal JSON-RPC
// 2.0 request/response cycle over a single POST endpoint, exposing the
// compute engine as one tool.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/decide-fyi/refund-notary/internal/ctxkey"
	"github.com/decide-fyi/refund-notary/internal/domain/audit"
	"github.com/decide-fyi/refund-notary/internal/domain/refund"
	"github.com/decide-fyi/refund-notary/internal/service"
	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
)

// supportedProtocols lists the MCP protocol versions this server speaks,
// preferred version first.
var supportedProtocols = []string{"2025-11-25", "2024-11-05"}

// maxRequestBodySize is the maximum allowed request body size (1 MB).
const maxRequestBodySize = 1 << 20

// serverName identifies this server in the initialize handshake.
const serverName = "refund-notary"

// VerdictRecorder counts computed verdicts. Satisfied by the HTTP
// transport's Metrics; nil-safe implementations are expected.
type VerdictRecorder interface {
	RecordVerdict(verdict, code string)
}

// Handler serves MCP JSON-RPC over HTTP POST. It is stateless: the
// initialize/initialized exchange is a protocol formality and no session
// is tracked between calls.
type Handler struct {
	eligibility *service.EligibilityService
	logger      *slog.Logger
	recorder    VerdictRecorder
	version     string
}

// HandlerOption is a functional option for configuring Handler.
type HandlerOption func(*Handler)

// WithVerdictRecorder wires verdict metrics into the handler.
func WithVerdictRecorder(r VerdictRecorder) HandlerOption {
	return func(h *Handler) {
		h.recorder = r
	}
}

// WithServerVersion sets the version reported in serverInfo.
func WithServerVersion(v string) HandlerOption {
	return func(h *Handler) {
		h.version = v
	}
}

// NewHandler creates the MCP adapter wrapping the given eligibility service.
func NewHandler(eligibility *service.EligibilityService, logger *slog.Logger, opts ...HandlerOption) *Handler {
	h := &Handler{
		eligibility: eligibility,
		logger:      logger,
		version:     "dev",
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{
			"ok":      false,
			"error":   "METHOD_NOT_ALLOWED",
			"allowed": []string{"POST"},
		})
		return
	}

	// Validate content type (before reading body to fail fast)
	contentType := r.Header.Get("Content-Type")
	if contentType != "" && !strings.HasPrefix(contentType, "application/json") {
		writeRPCError(w, nil, -32700, "Parse error: content type must be application/json")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	defer func() { _ = r.Body.Close() }()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeRPCError(w, nil, -32700, "Parse error: request body too large (max 1MB)")
			return
		}
		writeRPCError(w, nil, -32700, "Parse error: failed to read request body")
		return
	}
	if len(body) == 0 {
		writeRPCError(w, nil, -32700, "Parse error: empty request body")
		return
	}

	msg, err := jsonrpc.DecodeMessage(body)
	if err != nil {
		writeRPCError(w, nil, -32700, "Parse error: invalid JSON-RPC message")
		return
	}
	req, ok := msg.(*jsonrpc.Request)
	if !ok {
		writeRPCError(w, nil, -32600, "Invalid Request: expected a JSON-RPC request")
		return
	}

	// The SDK's ID type doesn't marshal correctly through interface{},
	// so the raw id is extracted straight from the body for the reply.
	id := rawID(body)

	switch req.Method {
	case "initialize":
		h.handleInitialize(w, id, req.Params)
	case "notifications/initialized":
		// Stateless server: acknowledged, nothing to transition.
		writeJSON(w, http.StatusOK, map[string]any{"jsonrpc": "2.0", "result": map[string]any{}})
	case "tools/list":
		writeRPCResult(w, id, map[string]any{"tools": []toolDescriptor{refundTool}})
	case "tools/call":
		h.handleToolsCall(r.Context(), w, id, req.Params)
	default:
		writeRPCError(w, id, -32601, "Method not found: "+req.Method)
	}
}

// handleInitialize negotiates a protocol version: the client's requested
// version when supported, else this server's preferred version.
func (h *Handler) handleInitialize(w http.ResponseWriter, id json.RawMessage, params json.RawMessage) {
	var p struct {
		ProtocolVersion string `json:"protocolVersion"`
	}
	if len(params) > 0 {
		_ = json.Unmarshal(params, &p)
	}

	chosen := supportedProtocols[0]
	for _, v := range supportedProtocols {
		if p.ProtocolVersion == v {
			chosen = v
			break
		}
	}

	writeRPCResult(w, id, map[string]any{
		"protocolVersion": chosen,
		"capabilities": map[string]any{
			"tools": map[string]any{"listChanged": false},
		},
		"serverInfo": map[string]any{
			"name":        serverName,
			"title":       "Refund Eligibility Notary",
			"version":     h.version,
			"description": "Deterministic refund eligibility notary (stateless).",
		},
		"instructions": "Call tools/list, then tools/call with " + ToolName + ".",
	})
}

// toolResult is the tools/call result envelope.
type toolResult struct {
	Content           []contentBlock     `json:"content"`
	StructuredContent refund.Eligibility `json:"structuredContent"`
	IsError           bool               `json:"isError"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func (h *Handler) handleToolsCall(ctx context.Context, w http.ResponseWriter, id json.RawMessage, params json.RawMessage) {
	var p struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		writeRPCError(w, id, -32602, "Invalid params")
		return
	}
	if p.Name != ToolName {
		writeRPCError(w, id, -32602, "Unknown tool: "+p.Name)
		return
	}

	var req refund.Request
	if len(p.Arguments) > 0 {
		// Malformed arguments behave like an empty request; the engine
		// answers UNKNOWN with a field-specific code.
		_ = json.Unmarshal(p.Arguments, &req)
	}

	requestID, _ := ctx.Value(ctxkey.RequestIDKey{}).(string)
	verdict := h.eligibility.Evaluate(ctx, audit.SourceMCP, requestID, req)
	if h.recorder != nil {
		h.recorder.RecordVerdict(string(verdict.Verdict), string(verdict.Code))
	}

	h.logger.Info("tool call verdict",
		"request_id", requestID,
		"tool", p.Name,
		"vendor", verdict.Vendor,
		"verdict", verdict.Verdict,
		"code", verdict.Code,
	)

	text, err := json.Marshal(verdict)
	if err != nil {
		writeRPCError(w, id, -32603, "Internal error")
		return
	}

	// UNKNOWN is an error only when it is not one of the two benign
	// out-of-scope outcomes.
	isErr := verdict.Verdict == refund.VerdictUnknown && !verdict.OutOfPolicyScope()

	writeRPCResult(w, id, toolResult{
		Content:           []contentBlock{{Type: "text", Text: string(text)}},
		StructuredContent: verdict,
		IsError:           isErr,
	})
}

// rawID extracts the request ID from the raw message bytes. Preserves the
// original format (number, string, or null).
func rawID(body []byte) json.RawMessage {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil
	}
	return raw["id"]
}

// rpcResponse is a hand-rolled JSON-RPC 2.0 success envelope. The SDK's
// response type is not used for writing because its ID field does not
// survive a round-trip through encoding/json.
type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result"`
}

type rpcErrorResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Error   rpcErrorDetail  `json:"error"`
}

type rpcErrorDetail struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeRPCResult(w http.ResponseWriter, id json.RawMessage, result any) {
	writeJSON(w, http.StatusOK, rpcResponse{JSONRPC: "2.0", ID: id, Result: result})
}

// writeRPCError writes a JSON-RPC error response.
// Protocol errors still return 200 OK; only the envelope signals failure.
func writeRPCError(w http.ResponseWriter, id json.RawMessage, code int, message string) {
	writeJSON(w, http.StatusOK, rpcErrorResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   rpcErrorDetail{Code: code, Message: message},
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
