package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/casaflow/casaflow/internal/api/middleware"
	"github.com/casaflow/casaflow/internal/domain"
	"github.com/casaflow/casaflow/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type ChatHandler struct {
	svc *service.ConversationService
}

func NewChatHandler(svc *service.ConversationService) *ChatHandler {
	return &ChatHandler{svc: svc}
}

type chatRequest struct {
	SessionID  string `json:"session_id,omitempty"`
	PropertyID string `json:"property_id,omitempty"`
	Message    string `json:"message"`
}

func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	tenant := middleware.TenantFromContext(r.Context())
	if tenant == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var sessionID *uuid.UUID
	if req.SessionID != "" {
		id, err := uuid.Parse(req.SessionID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid session_id")
			return
		}
		sessionID = &id
	}

	var propertyID *uuid.UUID
	if req.PropertyID != "" {
		id, err := uuid.Parse(req.PropertyID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid property_id")
			return
		}
		propertyID = &id
	}

	result, err := h.svc.HandleTurn(r.Context(), tenant.ID, sessionID, propertyID, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyMessage):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrSessionNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to process message")
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type messagesResponse struct {
	Messages []domain.ChatMessage `json:"messages"`
	Count    int                  `json:"count"`
}

func (h *ChatHandler) Messages(w http.ResponseWriter, r *http.Request) {
	tenant := middleware.TenantFromContext(r.Context())
	if tenant == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	messages, err := h.svc.Messages(r.Context(), tenant.ID, id)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get messages")
		return
	}

	if messages == nil {
		messages = []domain.ChatMessage{}
	}

	writeJSON(w, http.StatusOK, messagesResponse{
		Messages: messages,
		Count:    len(messages),
	})
}
