package oracle

import "testing"

func TestNormalizeReply(t *testing.T) {
	tests := []struct {
		raw  string
		want Outcome
	}{
		{"yes", OutcomeYes},
		{"Yes", OutcomeYes},
		{"YES.", OutcomeYes},
		{`"yes"`, OutcomeYes},
		{"  yes\n", OutcomeYes},
		{"no", OutcomeNo},
		{"No!", OutcomeNo},
		{`"No."`, OutcomeNo},
		{"", OutcomeUnclear},
		{"maybe", OutcomeUnclear},
		{"yes, definitely", OutcomeUnclear},
		{"I cannot answer that", OutcomeUnclear},
		{"Try again", OutcomeUnclear},
	}

	for _, tt := range tests {
		got := NormalizeReply(tt.raw)
		if got.C != tt.want {
			t.Errorf("NormalizeReply(%q).C = %q, want %q", tt.raw, got.C, tt.want)
		}
	}
}

func TestNormalizeReply_DisplayValues(t *testing.T) {
	if got := NormalizeReply("Yes"); got.V != "yes" {
		t.Errorf("yes display = %q, want %q", got.V, "yes")
	}
	if got := NormalizeReply("nonsense"); got.V != "try again" {
		t.Errorf("unclear display = %q, want %q", got.V, "try again")
	}
}

func TestClassifyAdvice(t *testing.T) {
	tests := []struct {
		question string
		category AdviceCategory
		match    bool
	}{
		{"Should I buy Bitcoin now?", AdviceInvestment, true},
		{"Is this stock going up?", AdviceInvestment, true},
		{"Should I refinance my mortgage?", AdviceFinancial, true},
		{"Should I declare bankruptcy?", AdviceFinancial, true},
		{"What dosage of ibuprofen should I take?", AdviceMedical, true},
		{"Do my symptoms mean anything?", AdviceMedical, true},
		{"Should I sue my landlord?", AdviceLegal, true},
		{"Do I need a lawyer for this?", AdviceLegal, true},
		{"Is it going to rain tomorrow?", "", false},
		{"Should I order pizza tonight?", "", false},
		{"Is water wet?", "", false},
	}

	for _, tt := range tests {
		cat, ok := ClassifyAdvice(tt.question)
		if ok != tt.match {
			t.Errorf("ClassifyAdvice(%q) matched = %v, want %v", tt.question, ok, tt.match)
			continue
		}
		if ok && cat != tt.category {
			t.Errorf("ClassifyAdvice(%q) = %q, want %q", tt.question, cat, tt.category)
		}
	}
}

func TestAnswerConstructors(t *testing.T) {
	if a := Yes(); a.C != OutcomeYes || a.V != "yes" {
		t.Errorf("Yes() = %+v", a)
	}
	if a := No(); a.C != OutcomeNo || a.V != "no" {
		t.Errorf("No() = %+v", a)
	}
	if a := TryAgain(); a.C != OutcomeUnclear || a.V != "try again" {
		t.Errorf("TryAgain() = %+v", a)
	}
	if a := AskAQuestion(); a.C != OutcomeUnclear || a.V != "Ask a question" {
		t.Errorf("AskAQuestion() = %+v", a)
	}
}
