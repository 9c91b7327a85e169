package domain

// Intent is a short label classifying what the user wants.
type Intent string

const (
	IntentPropertyCreate      Intent = "property.create"
	IntentPropertyList        Intent = "property.list"
	IntentPropertyDelete      Intent = "property.delete"
	IntentPropertySwitch      Intent = "property.switch"
	IntentGeneralConversation Intent = "general_conversation"
)

func ValidIntent(s string) bool {
	switch Intent(s) {
	case IntentPropertyCreate, IntentPropertyList, IntentPropertyDelete,
		IntentPropertySwitch, IntentGeneralConversation:
		return true
	}
	return false
}

// Agent names known to the dispatcher.
const (
	AgentMain     = "MainAgent"
	AgentProperty = "PropertyAgent"
	AgentDocument = "DocumentAgent"
	AgentContract = "ContractAgent"
)

// RoutingMethod records which tier produced a routing decision.
type RoutingMethod string

const (
	MethodKeywords      RoutingMethod = "keywords"
	MethodLLMFallback   RoutingMethod = "llm_fallback"
	MethodFlowValidator RoutingMethod = "flow_validator"
)

// RoutingDecision is the transient per-turn output of the router.
// It is returned to the caller and logged, never persisted.
type RoutingDecision struct {
	Intent      Intent        `json:"intent"`
	Confidence  float64       `json:"confidence"`
	TargetAgent string        `json:"target_agent"`
	Method      RoutingMethod `json:"method"`
	Reason      string        `json:"reason,omitempty"`
	DurationMS  int64         `json:"duration_ms"`
}
