package mcp

import "encoding/json"

// ToolName is the single tool this server exposes.
const ToolName = "refund_eligibility"

// toolDescriptor is the tools/list entry for the refund eligibility tool.
type toolDescriptor struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

// refundTool mirrors the EligibilityRequest shape. The schema is static
// JSON rather than built structs since it never varies at runtime.
var refundTool = toolDescriptor{
	Name: ToolName,
	Description: "Deterministic refund eligibility notary for US consumer subscriptions. " +
		"Returns ALLOWED / DENIED / UNKNOWN.",
	InputSchema: json.RawMessage(`{
		"type": "object",
		"additionalProperties": false,
		"properties": {
			"vendor": {"type": "string", "description": "e.g. adobe, spotify, netflix"},
			"days_since_purchase": {"type": "number"},
			"region": {"type": "string", "enum": ["US"]},
			"plan": {"type": "string", "enum": ["individual"]}
		},
		"required": ["vendor", "days_since_purchase", "region", "plan"]
	}`),
}
