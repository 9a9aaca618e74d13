package oracle

import (
	"regexp"
	"strings"
)

var nonWordChars = regexp.MustCompile(`[^\w\s]`)

// NormalizeReply reduces a model's free-text reply to an Answer.
// Lowercases, trims, strips surrounding quotes and punctuation; only an
// exact "yes" or "no" counts as a committed answer, everything else
// (refusals, hedges, empty output) is unclear.
func NormalizeReply(raw string) Answer {
	out := strings.ToLower(strings.TrimSpace(raw))
	out = strings.Trim(out, `"`)
	out = nonWordChars.ReplaceAllString(out, "")
	out = strings.TrimSpace(out)

	switch out {
	case "yes":
		return Yes()
	case "no":
		return No()
	default:
		return TryAgain()
	}
}
