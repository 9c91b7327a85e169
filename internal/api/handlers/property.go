package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/casaflow/casaflow/internal/api/middleware"
	"github.com/casaflow/casaflow/internal/domain"
	"github.com/casaflow/casaflow/internal/flow"
	"github.com/casaflow/casaflow/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type PropertyHandler struct {
	svc *service.PropertyService
}

func NewPropertyHandler(svc *service.PropertyService) *PropertyHandler {
	return &PropertyHandler{svc: svc}
}

type propertyRequest struct {
	Address     string                `json:"address"`
	Description string                `json:"description,omitempty"`
	Fields      domain.PropertyFields `json:"fields"`
}

func (h *PropertyHandler) Create(w http.ResponseWriter, r *http.Request) {
	tenant := middleware.TenantFromContext(r.Context())
	if tenant == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req propertyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	property := &domain.Property{
		Address:     req.Address,
		Description: req.Description,
		Fields:      req.Fields,
	}

	if err := h.svc.Create(r.Context(), tenant.ID, property); err != nil {
		switch {
		case errors.Is(err, service.ErrAddressRequired):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrPropertyConflict):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to create property")
		}
		return
	}

	writeJSON(w, http.StatusCreated, property)
}

func (h *PropertyHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	tenant := middleware.TenantFromContext(r.Context())
	if tenant == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid property id")
		return
	}

	property, err := h.svc.Get(r.Context(), id, tenant.ID)
	if err != nil {
		if errors.Is(err, service.ErrPropertyNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get property")
		return
	}

	writeJSON(w, http.StatusOK, property)
}

type listPropertiesResponse struct {
	Properties []domain.Property `json:"properties"`
	Count      int               `json:"count"`
}

func (h *PropertyHandler) List(w http.ResponseWriter, r *http.Request) {
	tenant := middleware.TenantFromContext(r.Context())
	if tenant == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var opts domain.PropertyListOpts

	if stageStr := r.URL.Query().Get("stage"); stageStr != "" {
		if !domain.ValidStage(stageStr) {
			writeError(w, http.StatusBadRequest, "invalid stage parameter")
			return
		}
		stage := domain.AcquisitionStage(stageStr)
		opts.Stage = &stage
	}

	if statusStr := r.URL.Query().Get("status"); statusStr != "" {
		if !domain.ValidStatus(statusStr) {
			writeError(w, http.StatusBadRequest, "invalid status parameter")
			return
		}
		status := domain.PropertyStatus(statusStr)
		opts.Status = &status
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			opts.Limit = limit
		}
	}

	properties, err := h.svc.List(r.Context(), tenant.ID, opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list properties")
		return
	}

	if properties == nil {
		properties = []domain.Property{}
	}

	writeJSON(w, http.StatusOK, listPropertiesResponse{
		Properties: properties,
		Count:      len(properties),
	})
}

func (h *PropertyHandler) Update(w http.ResponseWriter, r *http.Request) {
	tenant := middleware.TenantFromContext(r.Context())
	if tenant == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid property id")
		return
	}

	var req propertyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	current, err := h.svc.Get(r.Context(), id, tenant.ID)
	if err != nil {
		if errors.Is(err, service.ErrPropertyNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get property")
		return
	}

	current.Address = req.Address
	current.Description = req.Description
	current.Fields = req.Fields

	if err := h.svc.Update(r.Context(), tenant.ID, current); err != nil {
		switch {
		case errors.Is(err, service.ErrAddressRequired):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrPropertyNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to update property")
		}
		return
	}

	writeJSON(w, http.StatusOK, current)
}

func (h *PropertyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	tenant := middleware.TenantFromContext(r.Context())
	if tenant == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid property id")
		return
	}

	if err := h.svc.Delete(r.Context(), id, tenant.ID); err != nil {
		if errors.Is(err, service.ErrPropertyNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete property")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type searchResponse struct {
	Results []domain.PropertyWithScore `json:"results"`
	Query   string                     `json:"query"`
	Count   int                        `json:"count"`
}

func (h *PropertyHandler) Search(w http.ResponseWriter, r *http.Request) {
	tenant := middleware.TenantFromContext(r.Context())
	if tenant == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	query := r.URL.Query().Get("query")
	if query == "" {
		writeError(w, http.StatusBadRequest, "query parameter is required")
		return
	}

	limit := 10
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	results, err := h.svc.Search(r.Context(), tenant.ID, query, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to search properties")
		return
	}

	if results == nil {
		results = []domain.PropertyWithScore{}
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Results: results,
		Query:   query,
		Count:   len(results),
	})
}

func (h *PropertyHandler) Advance(w http.ResponseWriter, r *http.Request) {
	tenant := middleware.TenantFromContext(r.Context())
	if tenant == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid property id")
		return
	}

	result, err := h.svc.AdvanceStage(r.Context(), id, tenant.ID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPropertyNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrTerminalStage),
			errors.Is(err, service.ErrReviewPending):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to advance stage")
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type reviewRequest struct {
	Approve bool `json:"approve"`
}

func (h *PropertyHandler) Review(w http.ResponseWriter, r *http.Request) {
	tenant := middleware.TenantFromContext(r.Context())
	if tenant == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid property id")
		return
	}

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.svc.ResolveReview(r.Context(), id, tenant.ID, req.Approve)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPropertyNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrNotReviewStage),
			errors.Is(err, service.ErrRejectNotAllowed):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to resolve review")
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *PropertyHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	tenant := middleware.TenantFromContext(r.Context())
	if tenant == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid property id")
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.svc.UpdateStatus(r.Context(), id, tenant.ID, domain.PropertyStatus(req.Status)); err != nil {
		switch {
		case errors.Is(err, service.ErrPropertyNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrInvalidStatus):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrStatusTransition):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to update status")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type flowResponse struct {
	Property *domain.Property `json:"property"`
	Flow     flow.Result      `json:"flow"`
}

func (h *PropertyHandler) Flow(w http.ResponseWriter, r *http.Request) {
	tenant := middleware.TenantFromContext(r.Context())
	if tenant == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid property id")
		return
	}

	property, result, err := h.svc.Validate(r.Context(), id, tenant.ID)
	if err != nil {
		if errors.Is(err, service.ErrPropertyNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to validate property")
		return
	}

	writeJSON(w, http.StatusOK, flowResponse{
		Property: property,
		Flow:     result,
	})
}
