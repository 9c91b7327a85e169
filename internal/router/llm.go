package router

import (
	"context"
	"strings"

	"github.com/casaflow/casaflow/internal/domain"
	"go.uber.org/zap"
)

// llmFallbackThreshold is the tier-1 confidence below which the LLM tier
// is consulted.
const llmFallbackThreshold = 0.70

// llmIntentMap fixes the confidence and agent for each label the model may
// return. Anything outside this map degrades to general conversation.
var llmIntentMap = map[domain.Intent]Classification{
	domain.IntentPropertyCreate: {
		Intent: domain.IntentPropertyCreate, Confidence: 0.85, TargetAgent: domain.AgentProperty,
	},
	domain.IntentPropertyList: {
		Intent: domain.IntentPropertyList, Confidence: 0.85, TargetAgent: domain.AgentProperty,
	},
	domain.IntentPropertyDelete: {
		Intent: domain.IntentPropertyDelete, Confidence: 0.85, TargetAgent: domain.AgentProperty,
	},
	domain.IntentPropertySwitch: {
		Intent: domain.IntentPropertySwitch, Confidence: 0.85, TargetAgent: domain.AgentProperty,
	},
	domain.IntentGeneralConversation: {
		Intent: domain.IntentGeneralConversation, Confidence: 0.65, TargetAgent: domain.AgentMain,
	},
}

// degraded is the floor classification for LLM failures and unparseable
// replies. Its confidence is deliberately the lowest the router emits.
func degraded(reason string) Classification {
	return Classification{
		Intent:      domain.IntentGeneralConversation,
		Confidence:  0.40,
		TargetAgent: domain.AgentMain,
		Reason:      reason,
	}
}

// LLMClassifier is the tier-2 fallback. It never returns an error: any
// failure collapses into a low-confidence general-conversation routing.
type LLMClassifier struct {
	client domain.LLMClient
	logger *zap.Logger
}

func NewLLMClassifier(client domain.LLMClient, logger *zap.Logger) *LLMClassifier {
	return &LLMClassifier{client: client, logger: logger}
}

// Classify sends the constrained intent prompt and maps the single-token
// reply through llmIntentMap.
func (c *LLMClassifier) Classify(ctx context.Context, text string) Classification {
	if c.client == nil {
		return degraded("no llm client configured")
	}

	reply, err := c.client.ClassifyIntent(ctx, text)
	if err != nil {
		c.logger.Warn("llm intent classification failed", zap.Error(err))
		return degraded("llm call failed")
	}

	label := normalizeIntentReply(reply)
	cls, ok := llmIntentMap[domain.Intent(label)]
	if !ok {
		c.logger.Warn("llm returned unrecognized intent", zap.String("reply", reply))
		return degraded("unrecognized llm reply")
	}

	cls.Reason = "llm classification"
	return cls
}

// normalizeIntentReply strips the quoting, fencing and stray punctuation
// chat models wrap single-token answers in.
func normalizeIntentReply(reply string) string {
	s := strings.ToLower(strings.TrimSpace(reply))
	s = strings.Trim(s, "`\"'.: \n")
	// Keep only the first token if the model got chatty.
	if i := strings.IndexAny(s, " \n\t"); i > 0 {
		s = s[:i]
	}
	return s
}
