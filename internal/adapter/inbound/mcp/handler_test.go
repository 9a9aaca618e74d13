package mcp

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/decide-fyi/refund-notary/internal/domain/refund"
	"github.com/decide-fyi/refund-notary/internal/service"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testHandler() *Handler {
	table := &refund.PolicyTable{
		RulesVersion: "v-test",
		Vendors: map[string]refund.VendorPolicy{
			"adobe":        {WindowDays: 14},
			"netflix":      {WindowDays: 0, Mode: refund.ModeNoRefunds},
			"amazon_prime": {WindowDays: 0, Mode: refund.ModeRequiresUsageVerification},
		},
	}
	engine := refund.NewEngine(table, refund.StrictnessStrict)
	svc := service.NewEligibilityService(engine, nil, testLogger())
	return NewHandler(svc, testLogger(), WithServerVersion("test"))
}

// post drives the handler with a JSON-RPC body and returns the recorder.
func post(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// rpcReply is the decoded shape of any JSON-RPC response for assertions.
type rpcReply struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeReply(t *testing.T, rec *httptest.ResponseRecorder) rpcReply {
	t.Helper()
	var reply rpcReply
	if err := json.Unmarshal(rec.Body.Bytes(), &reply); err != nil {
		t.Fatalf("decode reply: %v (body %s)", err, rec.Body.String())
	}
	return reply
}

func TestInitialize_NegotiatesSupportedVersion(t *testing.T) {
	h := testHandler()

	rec := post(t, h, `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05"}}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	reply := decodeReply(t, rec)
	if reply.Error != nil {
		t.Fatalf("unexpected error: %+v", reply.Error)
	}
	var result struct {
		ProtocolVersion string `json:"protocolVersion"`
		ServerInfo      struct {
			Name string `json:"name"`
		} `json:"serverInfo"`
	}
	if err := json.Unmarshal(reply.Result, &result); err != nil {
		t.Fatal(err)
	}
	if result.ProtocolVersion != "2024-11-05" {
		t.Errorf("protocolVersion = %q, want client's supported version", result.ProtocolVersion)
	}
	if result.ServerInfo.Name != "refund-notary" {
		t.Errorf("serverInfo.name = %q", result.ServerInfo.Name)
	}
	if string(reply.ID) != "1" {
		t.Errorf("id = %s, want 1", reply.ID)
	}
}

func TestInitialize_UnknownVersionFallsBack(t *testing.T) {
	h := testHandler()

	rec := post(t, h, `{"jsonrpc":"2.0","id":"init-1","method":"initialize","params":{"protocolVersion":"1999-01-01"}}`)

	reply := decodeReply(t, rec)
	var result struct {
		ProtocolVersion string `json:"protocolVersion"`
	}
	if err := json.Unmarshal(reply.Result, &result); err != nil {
		t.Fatal(err)
	}
	if result.ProtocolVersion != supportedProtocols[0] {
		t.Errorf("protocolVersion = %q, want preferred %q", result.ProtocolVersion, supportedProtocols[0])
	}
	if string(reply.ID) != `"init-1"` {
		t.Errorf("id = %s, want string id echoed", reply.ID)
	}
}

func TestNotificationsInitialized_EmptyResult(t *testing.T) {
	h := testHandler()

	rec := post(t, h, `{"jsonrpc":"2.0","method":"notifications/initialized"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	reply := decodeReply(t, rec)
	if reply.Error != nil {
		t.Errorf("unexpected error: %+v", reply.Error)
	}
	if string(reply.Result) != "{}" {
		t.Errorf("result = %s, want {}", reply.Result)
	}
}

func TestToolsList_SingleTool(t *testing.T) {
	h := testHandler()

	rec := post(t, h, `{"jsonrpc":"2.0","id":2,"method":"tools/list"}`)

	reply := decodeReply(t, rec)
	var result struct {
		Tools []struct {
			Name        string          `json:"name"`
			InputSchema json.RawMessage `json:"inputSchema"`
		} `json:"tools"`
	}
	if err := json.Unmarshal(reply.Result, &result); err != nil {
		t.Fatal(err)
	}
	if len(result.Tools) != 1 || result.Tools[0].Name != ToolName {
		t.Fatalf("tools = %+v, want one %s", result.Tools, ToolName)
	}

	var schema struct {
		Required []string `json:"required"`
	}
	if err := json.Unmarshal(result.Tools[0].InputSchema, &schema); err != nil {
		t.Fatal(err)
	}
	want := []string{"vendor", "days_since_purchase", "region", "plan"}
	if len(schema.Required) != len(want) {
		t.Fatalf("required = %v, want %v", schema.Required, want)
	}
	for i, field := range want {
		if schema.Required[i] != field {
			t.Errorf("required[%d] = %q, want %q", i, schema.Required[i], field)
		}
	}
}

func TestToolsCall_AllowedVerdict(t *testing.T) {
	h := testHandler()

	rec := post(t, h, `{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"refund_eligibility","arguments":{"vendor":"adobe","days_since_purchase":12,"region":"US","plan":"individual"}}}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	reply := decodeReply(t, rec)
	if reply.Error != nil {
		t.Fatalf("unexpected error: %+v", reply.Error)
	}

	var result toolResult
	if err := json.Unmarshal(reply.Result, &result); err != nil {
		t.Fatal(err)
	}
	if result.IsError {
		t.Error("isError = true for an ALLOWED verdict")
	}
	if len(result.Content) != 1 || result.Content[0].Type != "text" {
		t.Fatalf("content = %+v", result.Content)
	}
	if !strings.Contains(result.Content[0].Text, "ALLOWED") {
		t.Errorf("content text = %q, should contain ALLOWED", result.Content[0].Text)
	}
	if result.StructuredContent.Verdict != refund.VerdictAllowed {
		t.Errorf("structuredContent.verdict = %s", result.StructuredContent.Verdict)
	}
}

func TestToolsCall_IsErrorFlag(t *testing.T) {
	h := testHandler()

	cases := []struct {
		name      string
		arguments string
		wantErr   bool
		wantCode  refund.Code
	}{
		{
			"missing vendor is an error",
			`{"days_since_purchase":1,"region":"US","plan":"individual"}`,
			true, refund.CodeMissingVendor,
		},
		{
			"unsupported vendor is an error",
			`{"vendor":"hulu","days_since_purchase":1,"region":"US","plan":"individual"}`,
			true, refund.CodeUnsupportedVendor,
		},
		{
			"usage verification is an error",
			`{"vendor":"amazon_prime","days_since_purchase":1,"region":"US","plan":"individual"}`,
			true, refund.CodeRequiresUsageVerification,
		},
		{
			"non-US region is benign",
			`{"vendor":"adobe","days_since_purchase":1,"region":"DE","plan":"individual"}`,
			false, refund.CodeNonUSRegion,
		},
		{
			"non-individual plan is benign",
			`{"vendor":"adobe","days_since_purchase":1,"region":"US","plan":"team"}`,
			false, refund.CodeNonIndividualPlan,
		},
		{
			"denied is not an error",
			`{"vendor":"netflix","days_since_purchase":1,"region":"US","plan":"individual"}`,
			false, refund.CodeNoRefunds,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := post(t, h, `{"jsonrpc":"2.0","id":7,"method":"tools/call","params":{"name":"refund_eligibility","arguments":`+tc.arguments+`}}`)
			reply := decodeReply(t, rec)
			var result toolResult
			if err := json.Unmarshal(reply.Result, &result); err != nil {
				t.Fatal(err)
			}
			if result.IsError != tc.wantErr {
				t.Errorf("isError = %v, want %v", result.IsError, tc.wantErr)
			}
			if result.StructuredContent.Code != tc.wantCode {
				t.Errorf("code = %s, want %s", result.StructuredContent.Code, tc.wantCode)
			}
		})
	}
}

func TestToolsCall_UnknownTool(t *testing.T) {
	h := testHandler()

	rec := post(t, h, `{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"other_tool","arguments":{}}}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	reply := decodeReply(t, rec)
	if reply.Error == nil || reply.Error.Code != -32602 {
		t.Errorf("error = %+v, want -32602", reply.Error)
	}
}

func TestUnknownMethod(t *testing.T) {
	h := testHandler()

	rec := post(t, h, `{"jsonrpc":"2.0","id":5,"method":"resources/list"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	reply := decodeReply(t, rec)
	if reply.Error == nil || reply.Error.Code != -32601 {
		t.Errorf("error = %+v, want -32601", reply.Error)
	}
}

func TestMalformedJSON_ParseError(t *testing.T) {
	h := testHandler()

	rec := post(t, h, `{not json`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (errors live in the envelope)", rec.Code)
	}
	reply := decodeReply(t, rec)
	if reply.Error == nil || reply.Error.Code != -32700 {
		t.Errorf("error = %+v, want -32700", reply.Error)
	}
}

func TestEmptyBody_ParseError(t *testing.T) {
	h := testHandler()

	rec := post(t, h, "")

	reply := decodeReply(t, rec)
	if reply.Error == nil || reply.Error.Code != -32700 {
		t.Errorf("error = %+v, want -32700", reply.Error)
	}
}

func TestNonPost_RealHTTP405(t *testing.T) {
	h := testHandler()

	req := httptest.NewRequest(http.MethodGet, "/mcp", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
	if allow := rec.Header().Get("Allow"); allow != "POST" {
		t.Errorf("Allow = %q, want POST", allow)
	}
}

func TestWrongContentType_ParseError(t *testing.T) {
	h := testHandler()

	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	reply := decodeReply(t, rec)
	if reply.Error == nil || reply.Error.Code != -32700 {
		t.Errorf("error = %+v, want -32700", reply.Error)
	}
}
