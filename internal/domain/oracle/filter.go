package oracle

import "regexp"

// AdviceCategory names a regulated-advice topic the oracle refuses.
type AdviceCategory string

const (
	// AdviceInvestment covers stock picks, trading, crypto buys.
	AdviceInvestment AdviceCategory = "investment"
	// AdviceFinancial covers loans, mortgages, debt decisions.
	AdviceFinancial AdviceCategory = "financial"
	// AdviceMedical covers diagnosis, treatment, medication.
	AdviceMedical AdviceCategory = "medical"
	// AdviceLegal covers lawsuits, contracts, liability.
	AdviceLegal AdviceCategory = "legal"
)

// adviceFilters maps each category to its keyword pattern. A simple
// keyword classifier, not core decision logic: false negatives are
// backstopped by the prompt's own refusal instruction.
var adviceFilters = map[AdviceCategory]*regexp.Regexp{
	AdviceInvestment: regexp.MustCompile(`(?i)\b(invest(ing|ment)?|stocks?|shares?|crypto(currency)?|bitcoin|etf|portfolio|trading|buy\s+(stock|shares|crypto))\b`),
	AdviceFinancial:  regexp.MustCompile(`(?i)\b(loan|mortgage|refinanc\w*|401k|ira\b|retirement\s+fund|debt|bankruptcy|credit\s+(score|card\s+debt))\b`),
	AdviceMedical:    regexp.MustCompile(`(?i)\b(diagnos\w*|symptoms?|medication|prescri\w*|dosage|treatment|cancer|surgery|should\s+i\s+(take|stop\s+taking))\b`),
	AdviceLegal:      regexp.MustCompile(`(?i)\b(sue|lawsuit|lawyer|attorney|legal(ly)?|contract\s+dispute|liab\w*|custody|divorce\s+settlement)\b`),
}

// ClassifyAdvice reports whether the question asks for regulated advice,
// and which category matched first. Categories are checked in a fixed
// order so classification is deterministic.
func ClassifyAdvice(question string) (AdviceCategory, bool) {
	for _, cat := range []AdviceCategory{AdviceInvestment, AdviceFinancial, AdviceMedical, AdviceLegal} {
		if adviceFilters[cat].MatchString(question) {
			return cat, true
		}
	}
	return "", false
}
