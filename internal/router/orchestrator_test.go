package router

import (
	"context"
	"errors"
	"testing"

	"github.com/casaflow/casaflow/internal/domain"
	"github.com/casaflow/casaflow/internal/flow"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type fakeTracer struct {
	path []string
	err  error
}

func (f *fakeTracer) AppendAgentPath(ctx context.Context, sessionID uuid.UUID, agent string) error {
	if f.err != nil {
		return f.err
	}
	f.path = append(f.path, agent)
	return nil
}

func newTestOrchestrator(llm domain.LLMClient, tracer Tracer) *Orchestrator {
	logger := zap.NewNop()
	return NewOrchestrator(flow.NewValidator(logger), NewLLMClassifier(llm, logger), tracer, logger)
}

func f64(v float64) *float64 { return &v }

func TestRoute_FlowValidatorTakesPrecedence(t *testing.T) {
	tracer := &fakeTracer{}
	llm := &fakeLLM{intentReply: "property.list"}
	o := newTestOrchestrator(llm, tracer)

	prop := &domain.Property{
		ID:    uuid.New(),
		Stage: domain.StageInspectionDone,
		Fields: domain.PropertyFields{
			AskingPrice: f64(40000),
		},
	}

	d := o.Route(context.Background(), Input{
		SessionID: uuid.New(),
		Text:      "the arv came back at 65000",
		Property:  prop,
	})

	if d.Method != domain.MethodFlowValidator {
		t.Fatalf("method = %s, want %s", d.Method, domain.MethodFlowValidator)
	}
	if d.TargetAgent != domain.AgentProperty {
		t.Fatalf("agent = %s, want %s (inspection_done owner)", d.TargetAgent, domain.AgentProperty)
	}
	if d.Intent != domain.Intent(flow.ProvideFieldIntent(domain.FieldARV)) {
		t.Fatalf("intent = %s, want provide_arv", d.Intent)
	}
	if llm.classifyCalls != 0 {
		t.Fatal("flow routing must not consult the llm classifier")
	}
	if len(tracer.path) != 1 || tracer.path[0] != domain.AgentProperty {
		t.Fatalf("agent_path = %v, want [%s]", tracer.path, domain.AgentProperty)
	}
}

func TestRoute_KeywordTierWithoutProperty(t *testing.T) {
	llm := &fakeLLM{intentReply: "property.list"}
	o := newTestOrchestrator(llm, &fakeTracer{})

	d := o.Route(context.Background(), Input{
		SessionID: uuid.New(),
		Text:      "elimina esta propiedad",
	})

	if d.Method != domain.MethodKeywords {
		t.Fatalf("method = %s, want %s", d.Method, domain.MethodKeywords)
	}
	if d.Intent != domain.IntentPropertyDelete || d.Confidence != 0.90 {
		t.Fatalf("got (%s, %.2f), want (property.delete, 0.90)", d.Intent, d.Confidence)
	}
	if llm.classifyCalls != 0 {
		t.Fatal("confident keyword match must not trigger the llm tier")
	}
}

func TestRoute_LowConfidenceTriggersLLMFallback(t *testing.T) {
	llm := &fakeLLM{intentReply: "property.switch"}
	o := newTestOrchestrator(llm, &fakeTracer{})

	d := o.Route(context.Background(), Input{
		SessionID: uuid.New(),
		Text:      "hmm, the one we talked about yesterday",
	})

	if llm.classifyCalls != 1 {
		t.Fatalf("llm classifier called %d times, want 1", llm.classifyCalls)
	}
	if d.Method != domain.MethodLLMFallback {
		t.Fatalf("method = %s, want %s", d.Method, domain.MethodLLMFallback)
	}
	if d.Intent != domain.IntentPropertySwitch {
		t.Fatalf("intent = %s, want %s", d.Intent, domain.IntentPropertySwitch)
	}
}

func TestRoute_LLMFailureStillRoutes(t *testing.T) {
	llm := &fakeLLM{intentErr: errors.New("boom")}
	o := newTestOrchestrator(llm, &fakeTracer{})

	d := o.Route(context.Background(), Input{Text: "something ambiguous"})

	if d.TargetAgent != domain.AgentMain {
		t.Fatalf("agent = %s, want %s", d.TargetAgent, domain.AgentMain)
	}
	if d.Confidence != 0.40 {
		t.Fatalf("confidence = %.2f, want 0.40", d.Confidence)
	}
}

func TestRoute_UnknownStageStillRoutes(t *testing.T) {
	o := newTestOrchestrator(&fakeLLM{}, &fakeTracer{})

	prop := &domain.Property{ID: uuid.New(), Stage: "corrupted_stage"}
	d := o.Route(context.Background(), Input{SessionID: uuid.New(), Text: "hello", Property: prop})

	if d.TargetAgent == "" {
		t.Fatal("corrupt stage data must still yield a target agent")
	}
	if d.Method != domain.MethodFlowValidator {
		t.Fatalf("method = %s, want %s", d.Method, domain.MethodFlowValidator)
	}
}

func TestRoute_TracerFailureDoesNotAffectDecision(t *testing.T) {
	o := newTestOrchestrator(&fakeLLM{}, &fakeTracer{err: errors.New("db down")})

	d := o.Route(context.Background(), Input{
		SessionID: uuid.New(),
		Text:      "lista mis propiedades",
	})

	if d.Intent != domain.IntentPropertyList {
		t.Fatalf("intent = %s, want %s", d.Intent, domain.IntentPropertyList)
	}
}

func TestRoute_AgentPathAccumulates(t *testing.T) {
	tracer := &fakeTracer{}
	o := newTestOrchestrator(&fakeLLM{intentReply: "general_conversation"}, tracer)
	sessionID := uuid.New()

	o.Route(context.Background(), Input{SessionID: sessionID, Text: "lista mis propiedades"})
	o.Route(context.Background(), Input{SessionID: sessionID, Text: "thanks!"})

	if len(tracer.path) != 2 {
		t.Fatalf("agent_path has %d entries, want 2", len(tracer.path))
	}
	if tracer.path[0] != domain.AgentProperty || tracer.path[1] != domain.AgentMain {
		t.Fatalf("agent_path = %v, want [PropertyAgent MainAgent]", tracer.path)
	}
}
