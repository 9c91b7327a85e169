package agent

import (
	"context"

	"github.com/casaflow/casaflow/internal/domain"
	"go.uber.org/zap"
)

// FallbackReply is what the user sees when the chosen agent cannot produce
// a reply. Downstream failures end the turn gracefully, not the request.
const FallbackReply = "Lo siento, ocurrió un error procesando tu solicitud. Por favor intenta de nuevo."

// Dispatcher resolves a routing decision to a registered agent and produces
// the turn's reply.
type Dispatcher struct {
	agents map[string]Agent
	llm    domain.LLMClient
	logger *zap.Logger
}

func NewDispatcher(llm domain.LLMClient, logger *zap.Logger) *Dispatcher {
	d := &Dispatcher{
		agents: make(map[string]Agent),
		llm:    llm,
		logger: logger,
	}
	for _, a := range []Agent{MainAgent{}, PropertyAgent{}, DocumentAgent{}, ContractAgent{}} {
		d.agents[a.Name()] = a
	}
	return d
}

// Resolve returns the agent for the given name, falling back to MainAgent
// for unknown names so a bad routing decision still lands somewhere safe.
func (d *Dispatcher) Resolve(name string) Agent {
	if a, ok := d.agents[name]; ok {
		return a
	}
	d.logger.Warn("unknown agent name, falling back to MainAgent", zap.String("agent", name))
	return d.agents[domain.AgentMain]
}

// Dispatch hands the turn to the routed agent and returns the reply text.
// It never fails: LLM errors degrade to FallbackReply.
func (d *Dispatcher) Dispatch(ctx context.Context, decision domain.RoutingDecision, property *domain.Property, history []domain.ChatMessage) string {
	a := d.Resolve(decision.TargetAgent)

	cfg := PromptConfig{Intent: decision.Intent}
	if property != nil {
		cfg.PropertyName = property.Address
		cfg.NumbersTemplate = RenderNumbers(property.Fields)
	}

	if d.llm == nil {
		d.logger.Warn("no llm client configured, returning fallback reply")
		return FallbackReply
	}

	reply, err := d.llm.Respond(ctx, a.SystemPrompt(cfg), history)
	if err != nil {
		d.logger.Error("agent reply failed",
			zap.String("agent", a.Name()), zap.Error(err))
		return FallbackReply
	}
	return reply
}
