// Package oracle contains domain types for the yes/no decision oracle.
// The oracle itself is an external generative-model API; this package only
// models the question, the normalized reply, and the advice-category filter.
package oracle

// Outcome is the normalized oracle reply category.
type Outcome string

const (
	// OutcomeYes is a committed affirmative answer.
	OutcomeYes Outcome = "yes"
	// OutcomeNo is a committed negative answer.
	OutcomeNo Outcome = "no"
	// OutcomeUnclear covers refusals, filtered questions, upstream
	// failures, and anything the model said that isn't exactly yes or no.
	OutcomeUnclear Outcome = "unclear"
)

// Answer is the wire shape returned to oracle clients.
// The field names are part of the public API: "c" is the outcome category,
// "v" is the display value.
type Answer struct {
	C Outcome `json:"c"`
	V string  `json:"v"`
}

// Yes is the committed affirmative answer.
func Yes() Answer { return Answer{C: OutcomeYes, V: "yes"} }

// No is the committed negative answer.
func No() Answer { return Answer{C: OutcomeNo, V: "no"} }

// TryAgain is the fallback answer for refusals and upstream failures.
func TryAgain() Answer { return Answer{C: OutcomeUnclear, V: "try again"} }

// AskAQuestion is returned for questions too short to decide on.
func AskAQuestion() Answer { return Answer{C: OutcomeUnclear, V: "Ask a question"} }

// MinQuestionLength is the minimum trimmed question length the oracle
// will forward upstream.
const MinQuestionLength = 3
