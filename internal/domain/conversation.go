package domain

import (
	"time"

	"github.com/google/uuid"
)

// MessageRole tags who produced a conversation message.
type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleTool      MessageRole = "tool"
)

func ValidRole(s string) bool {
	switch MessageRole(s) {
	case RoleSystem, RoleUser, RoleAssistant, RoleTool:
		return true
	}
	return false
}

// ChatMessage is one entry in a session's ordered history. Seq is assigned
// by the store and is strictly increasing within a session.
type ChatMessage struct {
	ID        uuid.UUID   `json:"id"`
	SessionID uuid.UUID   `json:"session_id"`
	Seq       int         `json:"seq"`
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	Summary   bool        `json:"summary,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// Session is one employee conversation. PropertyID is set once the session
// is working on a specific property; AgentPath is an observability trace of
// which agents handled each turn, in order.
type Session struct {
	ID         uuid.UUID  `json:"id"`
	TenantID   uuid.UUID  `json:"tenant_id,omitempty"`
	PropertyID *uuid.UUID `json:"property_id,omitempty"`
	AgentPath  []string   `json:"agent_path"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
