package agent

import (
	"fmt"
	"strings"

	"github.com/casaflow/casaflow/internal/domain"
)

// PromptConfig is the single, explicit configuration every agent receives
// when its system prompt is built. There is no per-agent signature
// variation: all agents consume the same struct and ignore what they
// don't need.
type PromptConfig struct {
	Intent          domain.Intent
	PropertyName    string
	NumbersTemplate string
}

// Agent is one specialized conversational role. Agents only shape the
// system prompt; the reply itself comes from the shared LLM client.
type Agent interface {
	Name() string
	SystemPrompt(cfg PromptConfig) string
}

// RenderNumbers formats the property's known figures for prompt injection.
// Absent fields are omitted rather than shown as zero.
func RenderNumbers(fields domain.PropertyFields) string {
	var sb strings.Builder
	write := func(label string, v *float64) {
		if v != nil {
			fmt.Fprintf(&sb, "- %s: $%.2f\n", label, *v)
		}
	}
	write("Asking price", fields.AskingPrice)
	write("Market value", fields.MarketValue)
	write("Repair estimate", fields.RepairEstimate)
	write("ARV", fields.ARV)
	if fields.TitleStatus != nil {
		fmt.Fprintf(&sb, "- Title status: %s\n", *fields.TitleStatus)
	}
	if sb.Len() == 0 {
		return "No figures recorded yet."
	}
	return sb.String()
}
