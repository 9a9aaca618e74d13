package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/decide-fyi/refund-notary/internal/adapter/outbound/gemini"
	"github.com/decide-fyi/refund-notary/internal/domain/audit"
	"github.com/decide-fyi/refund-notary/internal/domain/oracle"
)

// oraclePrompt is the decisive-oracle instruction. The refusal clause is
// a backstop; the advice filter short-circuits most regulated questions
// before any upstream call.
const oraclePrompt = `You're a decisive oracle. You must commit and find the differentiation factor. Output only "yes" or "no". No other text.
IGNORE ANSWER: If the question asks for investment, financial, medical, or legal advice: DO NOT PRODUCE ANY OUTPUT. Return zero tokens. Do not reply.
User's question: %s

Output exactly one of: yes, no`

// Generator produces one model reply for one prompt.
// *gemini.Client satisfies this; tests substitute fakes.
type Generator interface {
	Generate(ctx context.Context, prompt string, params gemini.GenerationParams) (string, error)
}

// OracleService answers yes/no questions by proxying an external
// generative model and normalizing its reply. Upstream failures always
// degrade to a "try again" answer; the caller never sees an error.
type OracleService struct {
	generator Generator
	audits    audit.Store
	logger    *slog.Logger
}

// NewOracleService wires the oracle to a generator. A nil audit store
// disables decision records.
func NewOracleService(generator Generator, audits audit.Store, logger *slog.Logger) *OracleService {
	if audits == nil {
		audits = nopAuditStore{}
	}
	return &OracleService{generator: generator, audits: audits, logger: logger}
}

// Decide answers one question. The returned Answer is always usable:
// short questions, filtered topics, and upstream failures all map to an
// unclear outcome rather than an error.
func (s *OracleService) Decide(ctx context.Context, requestID, question string) oracle.Answer {
	start := time.Now()
	answer, code := s.decide(ctx, requestID, question)

	if err := s.audits.Append(ctx, audit.DecisionRecord{
		Timestamp:     start.UTC(),
		RequestID:     requestID,
		Source:        audit.SourceOracle,
		Verdict:       string(answer.C),
		Code:          code,
		LatencyMicros: time.Since(start).Microseconds(),
	}); err != nil {
		s.logger.Warn("failed to append decision record", "error", err, "request_id", requestID)
	}

	return answer
}

func (s *OracleService) decide(ctx context.Context, requestID, question string) (oracle.Answer, string) {
	q := strings.TrimSpace(question)
	if len(q) < oracle.MinQuestionLength {
		return oracle.AskAQuestion(), "QUESTION_TOO_SHORT"
	}

	if category, matched := oracle.ClassifyAdvice(q); matched {
		s.logger.Info("advice question filtered",
			"request_id", requestID,
			"category", string(category),
		)
		return oracle.TryAgain(), "ADVICE_FILTERED"
	}

	raw, err := s.generator.Generate(ctx, fmt.Sprintf(oraclePrompt, q), gemini.GenerationParams{
		Temperature:     0.7,
		MaxOutputTokens: 10,
	})
	if err != nil {
		s.logger.Warn("oracle upstream failed", "request_id", requestID, "error", err)
		return oracle.TryAgain(), "UPSTREAM_FAILED"
	}

	answer := oracle.NormalizeReply(raw)
	return answer, "ANSWERED"
}
