package service

import (
	"context"
	"errors"
	"testing"

	"github.com/casaflow/casaflow/internal/agent"
	"github.com/casaflow/casaflow/internal/domain"
	"github.com/casaflow/casaflow/internal/flow"
	"github.com/casaflow/casaflow/internal/llm"
	"github.com/casaflow/casaflow/internal/router"
	"github.com/casaflow/casaflow/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type mockSessionStore struct {
	sessions map[uuid.UUID]*domain.Session
	messages map[uuid.UUID][]domain.ChatMessage

	replaceCalls int
}

func newMockSessionStore() *mockSessionStore {
	return &mockSessionStore{
		sessions: make(map[uuid.UUID]*domain.Session),
		messages: make(map[uuid.UUID][]domain.ChatMessage),
	}
}

func (m *mockSessionStore) Create(ctx context.Context, s *domain.Session) error {
	s.ID = uuid.New()
	if s.AgentPath == nil {
		s.AgentPath = []string{}
	}
	cp := *s
	m.sessions[s.ID] = &cp
	return nil
}

func (m *mockSessionStore) GetByID(ctx context.Context, id, tenantID uuid.UUID) (*domain.Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *mockSessionStore) SetProperty(ctx context.Context, id, tenantID uuid.UUID, propertyID *uuid.UUID) error {
	s, ok := m.sessions[id]
	if !ok {
		return store.ErrNotFound
	}
	s.PropertyID = propertyID
	return nil
}

func (m *mockSessionStore) AppendAgentPath(ctx context.Context, id uuid.UUID, agent string) error {
	s, ok := m.sessions[id]
	if !ok {
		return store.ErrNotFound
	}
	s.AgentPath = append(s.AgentPath, agent)
	return nil
}

func (m *mockSessionStore) AppendMessage(ctx context.Context, msg *domain.ChatMessage) error {
	msg.ID = uuid.New()
	msg.Seq = len(m.messages[msg.SessionID]) + 1
	m.messages[msg.SessionID] = append(m.messages[msg.SessionID], *msg)
	return nil
}

func (m *mockSessionStore) GetMessages(ctx context.Context, sessionID uuid.UUID) ([]domain.ChatMessage, error) {
	out := make([]domain.ChatMessage, len(m.messages[sessionID]))
	copy(out, m.messages[sessionID])
	return out, nil
}

func (m *mockSessionStore) CountMessages(ctx context.Context, sessionID uuid.UUID) (int, error) {
	return len(m.messages[sessionID]), nil
}

func (m *mockSessionStore) ReplaceOldest(ctx context.Context, sessionID uuid.UUID, n int, summary *domain.ChatMessage) error {
	m.replaceCalls++
	msgs := m.messages[sessionID]
	if n > len(msgs) {
		n = len(msgs)
	}
	summary.ID = uuid.New()
	summary.Seq = n
	m.messages[sessionID] = append([]domain.ChatMessage{*summary}, msgs[n:]...)
	return nil
}

func newConversationService(ss *mockSessionStore, ps *mockPropertyStore, mock *llm.MockClient, maxMessages int) *ConversationService {
	logger := zap.NewNop()
	validator := flow.NewValidator(logger)
	orch := router.NewOrchestrator(validator, router.NewLLMClassifier(mock, logger), ss, logger)
	disp := agent.NewDispatcher(mock, logger)
	return NewConversationService(ss, ps, orch, disp, mock, maxMessages, logger)
}

func TestHandleTurn_NewSessionAppendsBothMessages(t *testing.T) {
	ss := newMockSessionStore()
	mock := llm.NewMockClient()
	mock.RespondResponse = "Hola, ¿en qué te ayudo?"
	svc := newConversationService(ss, newMockPropertyStore(), mock, 40)

	res, err := svc.HandleTurn(context.Background(), uuid.New(), nil, nil, "hola")
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	if res.SessionID == uuid.Nil {
		t.Fatal("expected a new session id")
	}
	if res.Reply != "Hola, ¿en qué te ayudo?" {
		t.Errorf("reply = %q", res.Reply)
	}

	msgs := ss.messages[res.SessionID]
	if len(msgs) != 2 {
		t.Fatalf("messages = %d, want user + assistant", len(msgs))
	}
	if msgs[0].Role != domain.RoleUser || msgs[0].Content != "hola" {
		t.Errorf("first message = %+v", msgs[0])
	}
	if msgs[1].Role != domain.RoleAssistant {
		t.Errorf("second message role = %s", msgs[1].Role)
	}
}

func TestHandleTurn_EmptyTextRejected(t *testing.T) {
	svc := newConversationService(newMockSessionStore(), newMockPropertyStore(), llm.NewMockClient(), 40)

	if _, err := svc.HandleTurn(context.Background(), uuid.New(), nil, nil, ""); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("err = %v, want ErrEmptyMessage", err)
	}
}

func TestHandleTurn_UnknownSessionRejected(t *testing.T) {
	svc := newConversationService(newMockSessionStore(), newMockPropertyStore(), llm.NewMockClient(), 40)

	missing := uuid.New()
	if _, err := svc.HandleTurn(context.Background(), uuid.New(), &missing, nil, "hola"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestHandleTurn_PropertyContextRoutesByFlow(t *testing.T) {
	ss := newMockSessionStore()
	ps := newMockPropertyStore()
	mock := llm.NewMockClient()
	svc := newConversationService(ss, ps, mock, 40)

	tenantID := uuid.New()
	prop := seed(t, ps, domain.StageInspectionDone, domain.PropertyFields{})

	res, err := svc.HandleTurn(context.Background(), tenantID, nil, &prop.ID, "the arv is 65000")
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	if res.Decision.Method != domain.MethodFlowValidator {
		t.Errorf("method = %s, want flow_validator", res.Decision.Method)
	}
	if res.Decision.Intent != "provide_arv" {
		t.Errorf("intent = %s, want provide_arv", res.Decision.Intent)
	}
	if res.Decision.TargetAgent != domain.AgentProperty {
		t.Errorf("agent = %s, want PropertyAgent", res.Decision.TargetAgent)
	}
	if len(mock.ClassifyIntentCalls) != 0 {
		t.Error("flow routing must not consult the intent classifier")
	}

	sess := ss.sessions[res.SessionID]
	if len(sess.AgentPath) != 1 || sess.AgentPath[0] != domain.AgentProperty {
		t.Errorf("agent_path = %v", sess.AgentPath)
	}
}

func TestHandleTurn_MissingPropertyFallsBackToClassifier(t *testing.T) {
	ss := newMockSessionStore()
	mock := llm.NewMockClient()
	svc := newConversationService(ss, newMockPropertyStore(), mock, 40)

	stale := uuid.New()
	res, err := svc.HandleTurn(context.Background(), uuid.New(), nil, &stale, "muéstrame todas las propiedades")
	if err != nil {
		t.Fatalf("HandleTurn must survive a stale property id: %v", err)
	}
	if res.Decision.Method != domain.MethodKeywords {
		t.Errorf("method = %s, want keywords", res.Decision.Method)
	}
	if res.Decision.Intent != domain.IntentPropertyList {
		t.Errorf("intent = %s, want property.list", res.Decision.Intent)
	}
}

func TestHandleTurn_CompactsHistoryAboveCap(t *testing.T) {
	ss := newMockSessionStore()
	mock := llm.NewMockClient()
	mock.SummarizeHistoryResponse = "Resumen: se discutió la propiedad de Oak Lane."
	svc := newConversationService(ss, newMockPropertyStore(), mock, 4)

	tenantID := uuid.New()
	res, err := svc.HandleTurn(context.Background(), tenantID, nil, nil, "hola")
	if err != nil {
		t.Fatalf("turn 1: %v", err)
	}
	sid := res.SessionID

	// Turns 2 and 3 push the count past the cap of 4.
	for i := 0; i < 2; i++ {
		if _, err := svc.HandleTurn(context.Background(), tenantID, &sid, nil, "cuéntame más"); err != nil {
			t.Fatalf("turn %d: %v", i+2, err)
		}
	}

	if ss.replaceCalls == 0 {
		t.Fatal("expected history compaction to run")
	}
	if len(mock.SummarizeHistoryCalls) == 0 {
		t.Fatal("expected a summarization call")
	}

	msgs := ss.messages[sid]
	if !msgs[0].Summary || msgs[0].Role != domain.RoleSystem {
		t.Errorf("first message must be the summary, got %+v", msgs[0])
	}
}

func TestHandleTurn_SummaryFailureSkipsCompaction(t *testing.T) {
	ss := newMockSessionStore()
	mock := llm.NewMockClient()
	mock.SummarizeHistoryError = errors.New("summarizer down")
	svc := newConversationService(ss, newMockPropertyStore(), mock, 2)

	tenantID := uuid.New()
	res, err := svc.HandleTurn(context.Background(), tenantID, nil, nil, "hola")
	if err != nil {
		t.Fatalf("turn 1: %v", err)
	}
	sid := res.SessionID
	if _, err := svc.HandleTurn(context.Background(), tenantID, &sid, nil, "sigo aquí"); err != nil {
		t.Fatalf("turn 2: %v", err)
	}

	if ss.replaceCalls != 0 {
		t.Error("compaction must be skipped when summarization fails")
	}
	if len(ss.messages[sid]) != 4 {
		t.Errorf("messages = %d, want all 4 kept", len(ss.messages[sid]))
	}
}

func TestMessages_UnknownSession(t *testing.T) {
	svc := newConversationService(newMockSessionStore(), newMockPropertyStore(), llm.NewMockClient(), 40)

	if _, err := svc.Messages(context.Background(), uuid.New(), uuid.New()); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("err = %v, want ErrSessionNotFound", err)
	}
}
