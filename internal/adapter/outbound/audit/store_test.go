package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/decide-fyi/refund-notary/internal/domain/audit"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewStore_FileAppendsJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "decisions.jsonl")
	store, err := NewStore("file://"+path, testLogger())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	records := []audit.DecisionRecord{
		{Timestamp: time.Now().UTC(), RequestID: "r1", Source: audit.SourceHTTP, Vendor: "adobe", Verdict: "ALLOWED", Code: "WITHIN_WINDOW", RulesVersion: "v1"},
		{Timestamp: time.Now().UTC(), RequestID: "r2", Source: audit.SourceMCP, Vendor: "spotify", Verdict: "DENIED", Code: "NO_REFUNDS", RulesVersion: "v1"},
	}
	for _, r := range records {
		if err := store.Append(context.Background(), r); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var got []audit.DecisionRecord
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var r audit.DecisionRecord
		if err := json.Unmarshal(scanner.Bytes(), &r); err != nil {
			t.Fatalf("line not valid JSON: %v\n%s", err, scanner.Text())
		}
		got = append(got, r)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	if got[0].RequestID != "r1" || got[1].RequestID != "r2" {
		t.Errorf("record order = %s, %s", got[0].RequestID, got[1].RequestID)
	}
	if got[1].Code != "NO_REFUNDS" {
		t.Errorf("code = %q, want NO_REFUNDS", got[1].Code)
	}
}

func TestNewStore_None(t *testing.T) {
	store, err := NewStore("none", testLogger())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := store.Append(context.Background(), audit.DecisionRecord{RequestID: "x"}); err != nil {
		t.Errorf("Append: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestNewStore_InvalidOutput(t *testing.T) {
	_, err := NewStore("syslog://nope", testLogger())
	if err == nil {
		t.Fatal("expected error for invalid output")
	}
	if !strings.Contains(err.Error(), "invalid audit output") {
		t.Errorf("error = %q", err)
	}
}

func TestAppend_AfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "decisions.jsonl")
	store, err := NewStore("file://"+path, testLogger())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Append after close must not panic or error.
	if err := store.Append(context.Background(), audit.DecisionRecord{RequestID: "late"}); err != nil {
		t.Errorf("Append after close: %v", err)
	}
}
