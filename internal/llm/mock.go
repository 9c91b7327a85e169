package llm

import (
	"context"

	"github.com/casaflow/casaflow/internal/domain"
)

// MockClient is a configurable LLM client for testing.
// Set the response fields to control what each method returns.
type MockClient struct {
	ClassifyIntentResponse   string
	ClassifyIntentError      error
	RespondResponse          string
	RespondError             error
	SummarizeHistoryResponse string
	SummarizeHistoryError    error

	// Call tracking for assertions
	ClassifyIntentCalls   []string
	RespondCalls          []string
	SummarizeHistoryCalls [][]domain.ChatMessage
}

func NewMockClient() *MockClient {
	return &MockClient{
		ClassifyIntentResponse:   string(domain.IntentGeneralConversation),
		RespondResponse:          "Mock reply",
		SummarizeHistoryResponse: "Mock summary",
	}
}

func (c *MockClient) ClassifyIntent(ctx context.Context, text string) (string, error) {
	c.ClassifyIntentCalls = append(c.ClassifyIntentCalls, text)
	if c.ClassifyIntentError != nil {
		return "", c.ClassifyIntentError
	}
	return c.ClassifyIntentResponse, nil
}

func (c *MockClient) Respond(ctx context.Context, system string, history []domain.ChatMessage) (string, error) {
	c.RespondCalls = append(c.RespondCalls, system)
	if c.RespondError != nil {
		return "", c.RespondError
	}
	return c.RespondResponse, nil
}

func (c *MockClient) SummarizeHistory(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	c.SummarizeHistoryCalls = append(c.SummarizeHistoryCalls, messages)
	if c.SummarizeHistoryError != nil {
		return "", c.SummarizeHistoryError
	}
	return c.SummarizeHistoryResponse, nil
}

// Reset clears all recorded calls and resets responses to defaults.
func (c *MockClient) Reset() {
	c.ClassifyIntentResponse = string(domain.IntentGeneralConversation)
	c.ClassifyIntentError = nil
	c.RespondResponse = "Mock reply"
	c.RespondError = nil
	c.SummarizeHistoryResponse = "Mock summary"
	c.SummarizeHistoryError = nil
	c.ClassifyIntentCalls = nil
	c.RespondCalls = nil
	c.SummarizeHistoryCalls = nil
}
