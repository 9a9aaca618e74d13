// Package audit provides decision-record persistence as JSON Lines,
// written to stdout or an append-only file.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/decide-fyi/refund-notary/internal/domain/audit"
)

// OutputStdout writes records to standard output.
const OutputStdout = "stdout"

// OutputNone discards all records.
const OutputNone = "none"

// filePrefix selects file output: "file:///var/log/notary/decisions.jsonl".
const filePrefix = "file://"

// JSONLStore implements audit.Store by appending one JSON object per line.
type JSONLStore struct {
	mu     sync.Mutex
	out    *os.File
	owned  bool // whether Close should close out
	logger *slog.Logger
}

// NopStore implements audit.Store by discarding everything.
type NopStore struct{}

// Append discards the record.
func (NopStore) Append(ctx context.Context, record audit.DecisionRecord) error { return nil }

// Close is a no-op.
func (NopStore) Close() error { return nil }

// NewStore builds a store for the configured output: "stdout", "none",
// or "file://<absolute-path>".
func NewStore(output string, logger *slog.Logger) (audit.Store, error) {
	switch {
	case output == "" || output == OutputStdout:
		return &JSONLStore{out: os.Stdout, logger: logger}, nil
	case output == OutputNone:
		return NopStore{}, nil
	case strings.HasPrefix(output, filePrefix):
		path := strings.TrimPrefix(output, filePrefix)
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("create audit directory: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, fmt.Errorf("open audit file: %w", err)
		}
		return &JSONLStore{out: f, owned: true, logger: logger}, nil
	default:
		return nil, fmt.Errorf("invalid audit output %q (use stdout, none, or file://<path>)", output)
	}
}

// Append writes one record as a JSON line. Encoding failures are logged
// and swallowed: the decision path never fails because of the audit sink.
func (s *JSONLStore) Append(ctx context.Context, record audit.DecisionRecord) error {
	line, err := json.Marshal(record)
	if err != nil {
		s.logger.Error("failed to encode decision record", "error", err)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.out == nil {
		return nil
	}
	if _, err := s.out.Write(append(line, '\n')); err != nil {
		s.logger.Error("failed to write decision record", "error", err)
	}
	return nil
}

// Close closes the underlying file when the store owns it.
func (s *JSONLStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.owned && s.out != nil {
		err := s.out.Close()
		s.out = nil
		return err
	}
	s.out = nil
	return nil
}

// Compile-time interface verification.
var (
	_ audit.Store = (*JSONLStore)(nil)
	_ audit.Store = NopStore{}
)
