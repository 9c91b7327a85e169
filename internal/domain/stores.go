package domain

import (
	"context"

	"github.com/google/uuid"
)

type TenantStore interface {
	Create(ctx context.Context, t *Tenant) error
	GetByAPIKeyHash(ctx context.Context, apiKeyHash string) (*Tenant, error)
}

// PropertyListOpts narrows List results.
type PropertyListOpts struct {
	Stage  *AcquisitionStage
	Status *PropertyStatus
	Limit  int
}

type PropertyStore interface {
	Create(ctx context.Context, p *Property) error
	GetByID(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*Property, error)
	List(ctx context.Context, tenantID uuid.UUID, opts PropertyListOpts) ([]Property, error)
	Update(ctx context.Context, p *Property) error
	UpdateStage(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, stage AcquisitionStage) error
	UpdateStatus(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, status PropertyStatus) error
	Delete(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error
	Search(ctx context.Context, tenantID uuid.UUID, embedding []float32, limit int) ([]PropertyWithScore, error)
}

type SessionStore interface {
	Create(ctx context.Context, s *Session) error
	GetByID(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*Session, error)
	SetProperty(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, propertyID *uuid.UUID) error
	AppendAgentPath(ctx context.Context, id uuid.UUID, agent string) error

	AppendMessage(ctx context.Context, m *ChatMessage) error
	GetMessages(ctx context.Context, sessionID uuid.UUID) ([]ChatMessage, error)
	CountMessages(ctx context.Context, sessionID uuid.UUID) (int, error)
	// ReplaceOldest deletes the first n messages of a session and inserts
	// the summary message in their place, keeping seq order intact.
	ReplaceOldest(ctx context.Context, sessionID uuid.UUID, n int, summary *ChatMessage) error
}

// LLMClient is the chat-completion surface the router and agents depend on.
// Implementations live in internal/llm; tests substitute a mock.
type LLMClient interface {
	// ClassifyIntent asks the model for a single-token intent label.
	ClassifyIntent(ctx context.Context, text string) (string, error)
	// Respond produces an assistant reply for the given system prompt and
	// conversation history.
	Respond(ctx context.Context, system string, history []ChatMessage) (string, error)
	// SummarizeHistory condenses a slice of messages into one summary.
	SummarizeHistory(ctx context.Context, messages []ChatMessage) (string, error)
}

type EmbeddingClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
