package refund

import (
	"fmt"
	"strings"
)

// Engine derives eligibility verdicts from a policy table snapshot.
// Evaluate is a pure function of (request, table): no I/O, no clock, no
// hidden state. Logging and correlation belong to the adapters.
type Engine struct {
	table      *PolicyTable
	strictness Strictness
}

// NewEngine creates an engine over an immutable policy table.
// Strictness defaults to strict when empty.
func NewEngine(table *PolicyTable, strictness Strictness) *Engine {
	if !strictness.Valid() {
		strictness = StrictnessStrict
	}
	return &Engine{table: table, strictness: strictness}
}

// RulesVersion returns the version of the loaded policy table.
func (e *Engine) RulesVersion() string {
	return e.table.RulesVersion
}

// SupportedVendors returns the sorted vendor ids the engine can decide on.
func (e *Engine) SupportedVendors() []string {
	return e.table.SupportedVendors()
}

// Evaluate computes the eligibility verdict for one request.
// Never panics for well-typed input; always returns a verdict.
// Rule order is load-bearing: shape, region, plan, vendor, mode, window.
func (e *Engine) Evaluate(req Request) Eligibility {
	if bad := validateShape(req, e.strictness, e.table.RulesVersion); bad != nil {
		return *bad
	}

	vendor := NormalizeVendor(req.Vendor)
	days := req.Days()

	if req.Region != "US" {
		return Eligibility{
			Verdict:      VerdictUnknown,
			Code:         CodeNonUSRegion,
			Message:      fmt.Sprintf("Region %q is not supported. Currently only \"US\" is supported.", req.Region),
			RulesVersion: e.table.RulesVersion,
		}
	}

	if req.Plan != "individual" {
		return Eligibility{
			Verdict:      VerdictUnknown,
			Code:         CodeNonIndividualPlan,
			Message:      fmt.Sprintf("Plan %q is not supported. Currently only \"individual\" plans are supported.", req.Plan),
			RulesVersion: e.table.RulesVersion,
		}
	}

	policy, ok := e.table.Lookup(vendor)
	if !ok {
		supported := e.table.SupportedVendors()
		return Eligibility{
			Verdict:          VerdictUnknown,
			Code:             CodeUnsupportedVendor,
			Message:          fmt.Sprintf("Vendor %q is not supported. Supported vendors: %s", vendor, strings.Join(supported, ", ")),
			RulesVersion:     e.table.RulesVersion,
			Vendor:           vendor,
			SupportedVendors: supported,
		}
	}

	if policy.Mode == ModeRequiresUsageVerification {
		return Eligibility{
			Verdict:      VerdictUnknown,
			Code:         CodeRequiresUsageVerification,
			Message:      fmt.Sprintf("%s refunds depend on benefit usage and require manual verification.", vendor),
			RulesVersion: e.table.RulesVersion,
			Vendor:       vendor,
			WindowDays:   intPtr(policy.WindowDays),
		}
	}

	if policy.WindowDays == 0 || policy.Mode == ModeNoRefunds {
		return Eligibility{
			Refundable:   boolPtr(false),
			Verdict:      VerdictDenied,
			Code:         CodeNoRefunds,
			Message:      fmt.Sprintf("%s does not offer refunds for individual plans", vendor),
			RulesVersion: e.table.RulesVersion,
			Vendor:       vendor,
			WindowDays:   intPtr(policy.WindowDays),
		}
	}

	allowed := days <= float64(policy.WindowDays)
	verdict := Eligibility{
		Refundable:        boolPtr(allowed),
		RulesVersion:      e.table.RulesVersion,
		Vendor:            vendor,
		WindowDays:        intPtr(policy.WindowDays),
		DaysSincePurchase: intPtr(int(days)),
	}
	if allowed {
		verdict.Verdict = VerdictAllowed
		verdict.Code = CodeWithinWindow
		verdict.Message = fmt.Sprintf("Refund is allowed. Purchase is %d day(s) old, within %d day window.", int(days), policy.WindowDays)
	} else {
		verdict.Verdict = VerdictDenied
		verdict.Code = CodeOutsideWindow
		verdict.Message = fmt.Sprintf("Refund window expired. Purchase is %d day(s) old, exceeds %d day window.", int(days), policy.WindowDays)
	}
	return verdict
}

func boolPtr(b bool) *bool { return &b }

func intPtr(n int) *int { return &n }
