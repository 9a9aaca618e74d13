package refund

import (
	"fmt"
	"math"
	"strings"
)

// Strictness selects how days_since_purchase is validated.
// The two levels exist as configurations of one engine rather than as
// divergent handler copies.
type Strictness string

const (
	// StrictnessStrict requires a finite, non-negative whole number.
	StrictnessStrict Strictness = "strict"
	// StrictnessLoose accepts any finite, non-negative number.
	StrictnessLoose Strictness = "loose"
)

// Valid reports whether s names a known strictness level.
func (s Strictness) Valid() bool {
	return s == StrictnessStrict || s == StrictnessLoose
}

// validateShape checks the four request fields before any policy lookup.
// Returns nil when the request is well-formed; otherwise an UNKNOWN
// verdict with a field-specific code.
func validateShape(req Request, strictness Strictness, rulesVersion string) *Eligibility {
	if strings.TrimSpace(req.Vendor) == "" {
		return &Eligibility{
			Verdict:      VerdictUnknown,
			Code:         CodeMissingVendor,
			Message:      "vendor is required and must be a non-empty string",
			RulesVersion: rulesVersion,
		}
	}

	if req.DaysSincePurchase == nil {
		return &Eligibility{
			Verdict:      VerdictUnknown,
			Code:         CodeInvalidDays,
			Message:      "days_since_purchase is required and must be a number",
			RulesVersion: rulesVersion,
		}
	}

	days := *req.DaysSincePurchase
	if math.IsNaN(days) || math.IsInf(days, 0) || days < 0 {
		return &Eligibility{
			Verdict:      VerdictUnknown,
			Code:         CodeInvalidDays,
			Message:      "days_since_purchase must be a non-negative finite number",
			RulesVersion: rulesVersion,
		}
	}

	if strictness == StrictnessStrict && days != math.Trunc(days) {
		return &Eligibility{
			Verdict:      VerdictUnknown,
			Code:         CodeInvalidDays,
			Message:      "days_since_purchase must be an integer (whole number)",
			RulesVersion: rulesVersion,
		}
	}

	if strings.TrimSpace(req.Region) == "" {
		return &Eligibility{
			Verdict:      VerdictUnknown,
			Code:         CodeMissingRegion,
			Message:      "region is required and must be a non-empty string",
			RulesVersion: rulesVersion,
		}
	}

	if strings.TrimSpace(req.Plan) == "" {
		return &Eligibility{
			Verdict:      VerdictUnknown,
			Code:         CodeMissingPlan,
			Message:      "plan is required and must be a non-empty string",
			RulesVersion: rulesVersion,
		}
	}

	return nil
}

// NormalizeVendor canonicalizes a vendor name for table lookup.
func NormalizeVendor(vendor string) string {
	return strings.ToLower(strings.TrimSpace(vendor))
}

// ValidateTable checks a loaded policy table for structural problems.
// Called once at load time so the engine can trust the table afterwards.
func ValidateTable(t *PolicyTable) error {
	if t.RulesVersion == "" {
		return fmt.Errorf("policy table: rules_version is required")
	}
	if len(t.Vendors) == 0 {
		return fmt.Errorf("policy table: at least one vendor is required")
	}
	for id, p := range t.Vendors {
		if id != NormalizeVendor(id) {
			return fmt.Errorf("policy table: vendor id %q must be lowercase and trimmed", id)
		}
		if p.WindowDays < 0 {
			return fmt.Errorf("policy table: vendor %q has negative window_days", id)
		}
		switch p.Mode {
		case "", ModeStandard, ModeNoRefunds, ModeRequiresUsageVerification:
		default:
			return fmt.Errorf("policy table: vendor %q has unknown mode %q", id, p.Mode)
		}
	}
	return nil
}
