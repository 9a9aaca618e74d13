// Package refund contains domain types and the compute engine for
// refund-eligibility evaluation.
package refund

import "sort"

// Verdict is the tri-state outcome of an eligibility evaluation.
type Verdict string

const (
	// VerdictAllowed means the refund is within policy.
	VerdictAllowed Verdict = "ALLOWED"
	// VerdictDenied means the refund is outside policy.
	VerdictDenied Verdict = "DENIED"
	// VerdictUnknown means eligibility cannot be determined from the inputs.
	VerdictUnknown Verdict = "UNKNOWN"
)

// Code is the machine-readable reason attached to every verdict.
type Code string

const (
	// CodeMissingVendor indicates the vendor field was empty or absent.
	CodeMissingVendor Code = "MISSING_VENDOR"
	// CodeInvalidDays indicates days_since_purchase was missing, negative,
	// non-finite, or (in strict mode) not a whole number.
	CodeInvalidDays Code = "INVALID_DAYS_SINCE_PURCHASE"
	// CodeMissingRegion indicates the region field was empty or absent.
	CodeMissingRegion Code = "MISSING_REGION"
	// CodeMissingPlan indicates the plan field was empty or absent.
	CodeMissingPlan Code = "MISSING_PLAN"
	// CodeNonUSRegion indicates a region other than "US".
	CodeNonUSRegion Code = "NON_US_REGION"
	// CodeNonIndividualPlan indicates a plan other than "individual".
	CodeNonIndividualPlan Code = "NON_INDIVIDUAL_PLAN"
	// CodeUnsupportedVendor indicates the vendor is not in the policy table.
	CodeUnsupportedVendor Code = "UNSUPPORTED_VENDOR"
	// CodeRequiresUsageVerification indicates the vendor's eligibility
	// cannot be decided from elapsed time alone.
	CodeRequiresUsageVerification Code = "REQUIRES_USAGE_VERIFICATION"
	// CodeNoRefunds indicates the vendor never refunds individual plans.
	CodeNoRefunds Code = "NO_REFUNDS"
	// CodeWithinWindow indicates the purchase is inside the refund window.
	CodeWithinWindow Code = "WITHIN_WINDOW"
	// CodeOutsideWindow indicates the purchase is past the refund window.
	CodeOutsideWindow Code = "OUTSIDE_WINDOW"
)

// Mode overrides pure window-day arithmetic for vendors whose eligibility
// cannot be decided from elapsed time alone.
type Mode string

const (
	// ModeStandard applies plain window-day arithmetic.
	ModeStandard Mode = "standard"
	// ModeNoRefunds denies regardless of day count.
	ModeNoRefunds Mode = "no_refunds"
	// ModeRequiresUsageVerification routes to manual benefits review.
	ModeRequiresUsageVerification Mode = "requires_usage_verification"
)

// VendorPolicy describes one vendor's refund policy.
type VendorPolicy struct {
	// WindowDays is the refund window in whole days. 0 means never refundable.
	WindowDays int `json:"window_days" yaml:"window_days"`
	// Mode optionally overrides window arithmetic. Empty means standard.
	Mode Mode `json:"mode,omitempty" yaml:"mode,omitempty"`
}

// PolicyTable is the versioned, immutable vendor policy data.
// Loaded once at process start; never mutated afterwards.
type PolicyTable struct {
	// RulesVersion is an opaque version string echoed in every verdict so
	// downstream clients can detect policy drift.
	RulesVersion string `json:"rules_version" yaml:"rules_version"`
	// Vendors maps vendor id (lowercase, underscore-separated) to policy.
	Vendors map[string]VendorPolicy `json:"vendors" yaml:"vendors"`
}

// Lookup returns the policy for a normalized vendor id.
func (t *PolicyTable) Lookup(vendor string) (VendorPolicy, bool) {
	p, ok := t.Vendors[vendor]
	return p, ok
}

// SupportedVendors returns the sorted list of vendor ids in the table.
func (t *PolicyTable) SupportedVendors() []string {
	ids := make([]string, 0, len(t.Vendors))
	for id := range t.Vendors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Request is one ephemeral eligibility question.
// DaysSincePurchase is a pointer so a missing field is distinguishable
// from an explicit zero.
type Request struct {
	Vendor            string   `json:"vendor"`
	DaysSincePurchase *float64 `json:"days_since_purchase"`
	Region            string   `json:"region"`
	Plan              string   `json:"plan"`
}

// Days returns the day count or 0 when the field is absent.
func (r Request) Days() float64 {
	if r.DaysSincePurchase == nil {
		return 0
	}
	return *r.DaysSincePurchase
}

// Eligibility is the verdict returned for every well-typed request.
// Refundable uses a pointer for the tri-state true/false/null contract:
// nil always pairs with VerdictUnknown.
type Eligibility struct {
	Refundable        *bool    `json:"refundable"`
	Verdict           Verdict  `json:"verdict"`
	Code              Code     `json:"code"`
	Message           string   `json:"message,omitempty"`
	RulesVersion      string   `json:"rules_version"`
	Vendor            string   `json:"vendor,omitempty"`
	WindowDays        *int     `json:"window_days,omitempty"`
	DaysSincePurchase *int     `json:"days_since_purchase,omitempty"`
	SupportedVendors  []string `json:"supported_vendors,omitempty"`
}

// Decided reports whether the verdict carries a definite yes/no outcome.
func (e Eligibility) Decided() bool {
	return e.Verdict != VerdictUnknown
}

// OutOfPolicyScope reports whether an UNKNOWN verdict is one of the two
// benign "outside current policy scope" outcomes (non-US region,
// non-individual plan). These are expected results, not errors.
func (e Eligibility) OutOfPolicyScope() bool {
	return e.Verdict == VerdictUnknown &&
		(e.Code == CodeNonUSRegion || e.Code == CodeNonIndividualPlan)
}
