package store

import (
	"context"
	"errors"

	"github.com/casaflow/casaflow/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SessionStore struct {
	db *pgxpool.Pool
}

func NewSessionStore(db *pgxpool.Pool) *SessionStore {
	return &SessionStore{db: db}
}

func (s *SessionStore) Create(ctx context.Context, sess *domain.Session) error {
	if sess.AgentPath == nil {
		sess.AgentPath = []string{}
	}
	return s.db.QueryRow(ctx,
		`INSERT INTO sessions (tenant_id, property_id, agent_path)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		sess.TenantID, sess.PropertyID, sess.AgentPath,
	).Scan(&sess.ID, &sess.CreatedAt, &sess.UpdatedAt)
}

func (s *SessionStore) GetByID(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*domain.Session, error) {
	sess := &domain.Session{}
	err := s.db.QueryRow(ctx,
		`SELECT id, tenant_id, property_id, agent_path, created_at, updated_at
		 FROM sessions WHERE id = $1 AND tenant_id = $2`,
		id, tenantID,
	).Scan(&sess.ID, &sess.TenantID, &sess.PropertyID, &sess.AgentPath, &sess.CreatedAt, &sess.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return sess, nil
}

func (s *SessionStore) SetProperty(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, propertyID *uuid.UUID) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE sessions SET property_id = $3, updated_at = NOW()
		 WHERE id = $1 AND tenant_id = $2`,
		id, tenantID, propertyID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SessionStore) AppendAgentPath(ctx context.Context, id uuid.UUID, agent string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE sessions SET agent_path = array_append(agent_path, $2), updated_at = NOW()
		 WHERE id = $1`,
		id, agent,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AppendMessage assigns the next seq atomically so messages within one
// session keep strict arrival order.
func (s *SessionStore) AppendMessage(ctx context.Context, m *domain.ChatMessage) error {
	return s.db.QueryRow(ctx,
		`INSERT INTO messages (session_id, seq, role, content, summary)
		 SELECT $1, COALESCE(MAX(seq), 0) + 1, $2, $3, $4 FROM messages WHERE session_id = $1
		 RETURNING id, seq, created_at`,
		m.SessionID, m.Role, m.Content, m.Summary,
	).Scan(&m.ID, &m.Seq, &m.CreatedAt)
}

func (s *SessionStore) GetMessages(ctx context.Context, sessionID uuid.UUID) ([]domain.ChatMessage, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, session_id, seq, role, content, summary, created_at
		 FROM messages WHERE session_id = $1 ORDER BY seq ASC`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.ChatMessage
	for rows.Next() {
		var m domain.ChatMessage
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Seq, &m.Role, &m.Content, &m.Summary, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (s *SessionStore) CountMessages(ctx context.Context, sessionID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM messages WHERE session_id = $1`, sessionID,
	).Scan(&count)
	return count, err
}

// ReplaceOldest deletes the first n messages of the session and inserts the
// summary at a seq below the survivors, so the summary reads first.
func (s *SessionStore) ReplaceOldest(ctx context.Context, sessionID uuid.UUID, n int, summary *domain.ChatMessage) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var maxDeleted int
	err = tx.QueryRow(ctx,
		`WITH victims AS (
		    SELECT id, seq FROM messages WHERE session_id = $1 ORDER BY seq ASC LIMIT $2
		 ), deleted AS (
		    DELETE FROM messages WHERE id IN (SELECT id FROM victims) RETURNING seq
		 )
		 SELECT COALESCE(MAX(seq), 0) FROM deleted`,
		sessionID, n,
	).Scan(&maxDeleted)
	if err != nil {
		return err
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO messages (session_id, seq, role, content, summary)
		 VALUES ($1, $2, $3, $4, TRUE)
		 RETURNING id, seq, created_at`,
		sessionID, maxDeleted, summary.Role, summary.Content,
	).Scan(&summary.ID, &summary.Seq, &summary.CreatedAt)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}
