package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/casaflow/casaflow/internal/agent"
	"github.com/casaflow/casaflow/internal/domain"
	"github.com/casaflow/casaflow/internal/router"
	"github.com/casaflow/casaflow/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrEmptyMessage    = errors.New("message text is required")
)

// TurnResult is what a chat turn returns to the caller: the reply plus the
// routing decision that produced it, for client-side display and debugging.
type TurnResult struct {
	SessionID uuid.UUID              `json:"session_id"`
	Reply     string                 `json:"reply"`
	Decision  domain.RoutingDecision `json:"routing"`
}

// ConversationService runs chat turns: session bookkeeping, routing,
// dispatch, and history compaction.
type ConversationService struct {
	sessions    domain.SessionStore
	properties  domain.PropertyStore
	router      *router.Orchestrator
	dispatcher  *agent.Dispatcher
	llm         domain.LLMClient
	maxMessages int
	logger      *zap.Logger
}

func NewConversationService(
	sessions domain.SessionStore,
	properties domain.PropertyStore,
	orch *router.Orchestrator,
	dispatcher *agent.Dispatcher,
	llm domain.LLMClient,
	maxMessages int,
	logger *zap.Logger,
) *ConversationService {
	if maxMessages <= 0 {
		maxMessages = 40
	}
	return &ConversationService{
		sessions:    sessions,
		properties:  properties,
		router:      orch,
		dispatcher:  dispatcher,
		llm:         llm,
		maxMessages: maxMessages,
		logger:      logger,
	}
}

// HandleTurn processes one user message. A nil sessionID starts a new
// session. When propertyID is given it becomes the session's active property
// and the flow validator takes over routing for subsequent turns.
func (s *ConversationService) HandleTurn(ctx context.Context, tenantID uuid.UUID, sessionID *uuid.UUID, propertyID *uuid.UUID, text string) (*TurnResult, error) {
	if text == "" {
		return nil, ErrEmptyMessage
	}

	sess, err := s.resolveSession(ctx, tenantID, sessionID, propertyID)
	if err != nil {
		return nil, err
	}

	// Property context is best-effort: a stale or foreign property id must
	// not kill the turn, it just routes without flow context.
	var property *domain.Property
	if sess.PropertyID != nil {
		property, err = s.properties.GetByID(ctx, *sess.PropertyID, tenantID)
		if err != nil {
			s.logger.Warn("active property unavailable, routing without flow context",
				zap.String("session_id", sess.ID.String()),
				zap.String("property_id", sess.PropertyID.String()),
				zap.Error(err))
			property = nil
		}
	}

	userMsg := &domain.ChatMessage{
		SessionID: sess.ID,
		Role:      domain.RoleUser,
		Content:   text,
	}
	if err := s.sessions.AppendMessage(ctx, userMsg); err != nil {
		return nil, fmt.Errorf("append user message: %w", err)
	}

	decision := s.router.Route(ctx, router.Input{
		SessionID: sess.ID,
		Text:      text,
		Property:  property,
	})

	history, err := s.sessions.GetMessages(ctx, sess.ID)
	if err != nil {
		s.logger.Warn("history unavailable, replying with the current turn only",
			zap.String("session_id", sess.ID.String()), zap.Error(err))
		history = []domain.ChatMessage{*userMsg}
	}

	reply := s.dispatcher.Dispatch(ctx, decision, property, history)

	assistantMsg := &domain.ChatMessage{
		SessionID: sess.ID,
		Role:      domain.RoleAssistant,
		Content:   reply,
	}
	if err := s.sessions.AppendMessage(ctx, assistantMsg); err != nil {
		return nil, fmt.Errorf("append assistant message: %w", err)
	}

	s.compactIfNeeded(ctx, sess.ID)

	return &TurnResult{
		SessionID: sess.ID,
		Reply:     reply,
		Decision:  decision,
	}, nil
}

// Messages returns the session's full ordered history.
func (s *ConversationService) Messages(ctx context.Context, tenantID uuid.UUID, sessionID uuid.UUID) ([]domain.ChatMessage, error) {
	if _, err := s.sessions.GetByID(ctx, sessionID, tenantID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	msgs, err := s.sessions.GetMessages(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get messages: %w", err)
	}
	return msgs, nil
}

func (s *ConversationService) resolveSession(ctx context.Context, tenantID uuid.UUID, sessionID *uuid.UUID, propertyID *uuid.UUID) (*domain.Session, error) {
	if sessionID == nil {
		sess := &domain.Session{TenantID: tenantID, PropertyID: propertyID}
		if err := s.sessions.Create(ctx, sess); err != nil {
			return nil, fmt.Errorf("create session: %w", err)
		}
		return sess, nil
	}

	sess, err := s.sessions.GetByID(ctx, *sessionID, tenantID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	if propertyID != nil {
		if err := s.sessions.SetProperty(ctx, sess.ID, tenantID, propertyID); err != nil {
			return nil, fmt.Errorf("set session property: %w", err)
		}
		sess.PropertyID = propertyID
	}
	return sess, nil
}

// compactIfNeeded keeps the history bounded: when the message count exceeds
// the cap, the oldest half is summarized into one message. Compaction is
// best-effort; a failed summary leaves the history intact for the next turn.
func (s *ConversationService) compactIfNeeded(ctx context.Context, sessionID uuid.UUID) {
	if s.llm == nil {
		return
	}

	count, err := s.sessions.CountMessages(ctx, sessionID)
	if err != nil {
		s.logger.Warn("message count unavailable, skipping compaction",
			zap.String("session_id", sessionID.String()), zap.Error(err))
		return
	}
	if count <= s.maxMessages {
		return
	}

	msgs, err := s.sessions.GetMessages(ctx, sessionID)
	if err != nil {
		s.logger.Warn("history unavailable, skipping compaction",
			zap.String("session_id", sessionID.String()), zap.Error(err))
		return
	}

	n := len(msgs) / 2
	if n == 0 {
		return
	}

	summary, err := s.llm.SummarizeHistory(ctx, msgs[:n])
	if err != nil {
		s.logger.Warn("history summarization failed, skipping compaction",
			zap.String("session_id", sessionID.String()), zap.Error(err))
		return
	}

	summaryMsg := &domain.ChatMessage{
		SessionID: sessionID,
		Role:      domain.RoleSystem,
		Content:   summary,
		Summary:   true,
	}
	if err := s.sessions.ReplaceOldest(ctx, sessionID, n, summaryMsg); err != nil {
		s.logger.Warn("history compaction failed",
			zap.String("session_id", sessionID.String()), zap.Error(err))
		return
	}

	s.logger.Info("history compacted",
		zap.String("session_id", sessionID.String()),
		zap.Int("replaced", n))
}
