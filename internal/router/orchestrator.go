package router

import (
	"context"
	"fmt"
	"time"

	"github.com/casaflow/casaflow/internal/domain"
	"github.com/casaflow/casaflow/internal/flow"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// flowRouteConfidence applies when the flow validator picks the agent: once
// a property is mid-flow, the business-process state outweighs free-text
// pattern matching.
const flowRouteConfidence = 0.95

// Tracer records the chosen agent on the session's agent_path. Trace
// failures are logged, never surfaced; the path is observability only.
type Tracer interface {
	AppendAgentPath(ctx context.Context, sessionID uuid.UUID, agent string) error
}

// Input is one user turn to route.
type Input struct {
	SessionID uuid.UUID
	Text      string
	// Property is the session's active property context, nil when the
	// conversation is not working on a specific property.
	Property *domain.Property
}

// Orchestrator combines flow-validator routing (when a property context
// exists) with the hybrid keyword/LLM classifier (otherwise).
type Orchestrator struct {
	validator  *flow.Validator
	classifier *LLMClassifier
	tracer     Tracer
	logger     *zap.Logger
}

func NewOrchestrator(validator *flow.Validator, classifier *LLMClassifier, tracer Tracer, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		validator:  validator,
		classifier: classifier,
		tracer:     tracer,
		logger:     logger,
	}
}

// Route produces the routing decision for one user turn. It never fails:
// every path yields a usable decision.
func (o *Orchestrator) Route(ctx context.Context, in Input) domain.RoutingDecision {
	start := time.Now()

	var decision domain.RoutingDecision
	if in.Property != nil {
		decision = o.routeByFlow(in)
	} else {
		decision = o.routeByClassifier(ctx, in.Text)
	}
	decision.DurationMS = time.Since(start).Milliseconds()

	if o.tracer != nil && in.SessionID != uuid.Nil {
		if err := o.tracer.AppendAgentPath(ctx, in.SessionID, decision.TargetAgent); err != nil {
			o.logger.Warn("failed to record agent path",
				zap.String("session_id", in.SessionID.String()), zap.Error(err))
		}
	}

	o.logger.Info("routing decision",
		zap.String("intent", string(decision.Intent)),
		zap.Float64("confidence", decision.Confidence),
		zap.String("target_agent", decision.TargetAgent),
		zap.String("method", string(decision.Method)),
		zap.Int64("duration_ms", decision.DurationMS),
	)

	return decision
}

func (o *Orchestrator) routeByFlow(in Input) domain.RoutingDecision {
	res := o.validator.ValidateStage(in.Property.Stage, in.Property.Fields)
	stageIntent := o.validator.DetectStageIntent(in.Property.Stage, in.Property.Fields, in.Text)

	intent := domain.IntentGeneralConversation
	if stageIntent != flow.StageIntentUnknown {
		intent = domain.Intent(stageIntent)
	}

	return domain.RoutingDecision{
		Intent:      intent,
		Confidence:  flowRouteConfidence,
		TargetAgent: res.RecommendedAgent,
		Method:      domain.MethodFlowValidator,
		Reason:      fmt.Sprintf("stage %q owned by %s", res.CurrentStep, res.RecommendedAgent),
	}
}

func (o *Orchestrator) routeByClassifier(ctx context.Context, text string) domain.RoutingDecision {
	cls := ClassifyKeywords(text)
	method := domain.MethodKeywords

	if cls.Confidence < llmFallbackThreshold {
		cls = o.classifier.Classify(ctx, text)
		method = domain.MethodLLMFallback
	}

	return domain.RoutingDecision{
		Intent:      cls.Intent,
		Confidence:  cls.Confidence,
		TargetAgent: cls.TargetAgent,
		Method:      method,
		Reason:      cls.Reason,
	}
}
