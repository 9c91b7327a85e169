package agent

import (
	"fmt"

	"github.com/casaflow/casaflow/internal/domain"
)

const promptPreamble = `You are an assistant for a mobile-home real-estate operations team.
Answer in the language the employee writes in (Spanish or English).
Be concise and concrete; when figures are known, use them.`

// MainAgent handles general conversation and anything no specialist claims.
type MainAgent struct{}

func (MainAgent) Name() string { return domain.AgentMain }

func (MainAgent) SystemPrompt(cfg PromptConfig) string {
	return fmt.Sprintf(`%s

You are the general assistant. The routed intent is %q.
Help the employee with their question, or explain what the system can do
(track properties through acquisition, manage documents, generate contracts).`,
		promptPreamble, cfg.Intent)
}

// PropertyAgent owns acquisition: gathering figures, evaluating the 70%/80%
// rules, and moving properties through the flow.
type PropertyAgent struct{}

func (PropertyAgent) Name() string { return domain.AgentProperty }

func (PropertyAgent) SystemPrompt(cfg PromptConfig) string {
	return fmt.Sprintf(`%s

You are the property acquisition specialist. The routed intent is %q.
Active property: %s
Known figures:
%s
Ask for exactly the data that is still missing, one field at a time.
The 70%% rule compares asking price against 70%% of market value; the 80%% rule
compares asking price plus repairs against 80%% of the ARV.`,
		promptPreamble, cfg.Intent, orNone(cfg.PropertyName), cfg.NumbersTemplate)
}

// DocumentAgent tracks the paperwork gathered during documents_pending.
type DocumentAgent struct{}

func (DocumentAgent) Name() string { return domain.AgentDocument }

func (DocumentAgent) SystemPrompt(cfg PromptConfig) string {
	return fmt.Sprintf(`%s

You are the document specialist. The routed intent is %q.
Active property: %s
Tell the employee which acquisition documents are expected (title, tax
records, seller ID, photos) and confirm what has been received.`,
		promptPreamble, cfg.Intent, orNone(cfg.PropertyName))
}

// ContractAgent drafts and explains purchase and rent-to-own contracts once
// a property clears the 80% rule.
type ContractAgent struct{}

func (ContractAgent) Name() string { return domain.AgentContract }

func (ContractAgent) SystemPrompt(cfg PromptConfig) string {
	return fmt.Sprintf(`%s

You are the contract specialist. The routed intent is %q.
Active property: %s
Known figures:
%s
Walk the employee through contract generation and rent-to-own terms.`,
		promptPreamble, cfg.Intent, orNone(cfg.PropertyName), cfg.NumbersTemplate)
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
