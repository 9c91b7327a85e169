package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/casaflow/casaflow/internal/domain"
	"github.com/casaflow/casaflow/internal/flow"
	"github.com/casaflow/casaflow/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrPropertyNotFound = errors.New("property not found")
	ErrPropertyConflict = errors.New("property already exists")
	ErrAddressRequired  = errors.New("address is required")
	ErrInvalidStage     = errors.New("invalid acquisition stage")
	ErrInvalidStatus    = errors.New("invalid property status")
	ErrTerminalStage    = errors.New("stage is terminal")
	ErrReviewPending    = errors.New("stage requires manual review")
	ErrNotReviewStage   = errors.New("stage is not under review")
	ErrRejectNotAllowed = errors.New("rejection is not allowed from this stage")
	ErrStatusTransition = errors.New("invalid status transition")
)

// AdvanceResult reports what happened when a property tried to leave its
// current stage.
type AdvanceResult struct {
	Advanced    bool                    `json:"advanced"`
	FromStage   domain.AcquisitionStage `json:"from_stage"`
	ToStage     domain.AcquisitionStage `json:"to_stage"`
	MissingData []string                `json:"missing_data,omitempty"`
	Reason      string                  `json:"reason,omitempty"`
}

// PropertyService owns property CRUD and the acquisition flow transitions.
type PropertyService struct {
	properties domain.PropertyStore
	embedder   domain.EmbeddingClient
	validator  *flow.Validator
	logger     *zap.Logger
}

func NewPropertyService(properties domain.PropertyStore, embedder domain.EmbeddingClient, validator *flow.Validator, logger *zap.Logger) *PropertyService {
	return &PropertyService{
		properties: properties,
		embedder:   embedder,
		validator:  validator,
		logger:     logger,
	}
}

// Create stores a new property at the start of the acquisition flow.
// Embedding is best-effort: a failed embed logs a warning and the property
// is still created, just without semantic search coverage.
func (s *PropertyService) Create(ctx context.Context, tenantID uuid.UUID, p *domain.Property) error {
	p.Address = strings.TrimSpace(p.Address)
	if p.Address == "" {
		return ErrAddressRequired
	}
	p.TenantID = tenantID
	if p.Stage == "" {
		p.Stage = domain.StageDocumentsPending
	}
	if !domain.ValidStage(string(p.Stage)) {
		return ErrInvalidStage
	}
	if p.Status == "" {
		p.Status = domain.StatusPurchased
	}
	if !domain.ValidStatus(string(p.Status)) {
		return ErrInvalidStatus
	}

	if s.embedder != nil {
		vec, err := s.embedder.Embed(ctx, embedText(p))
		if err != nil {
			s.logger.Warn("property embedding failed, creating without vector",
				zap.String("address", p.Address), zap.Error(err))
		} else {
			p.Embedding = vec
		}
	}

	if err := s.properties.Create(ctx, p); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return ErrPropertyConflict
		}
		return fmt.Errorf("create property: %w", err)
	}
	return nil
}

func (s *PropertyService) Get(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*domain.Property, error) {
	p, err := s.properties.GetByID(ctx, id, tenantID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, fmt.Errorf("get property: %w", err)
	}
	return p, nil
}

func (s *PropertyService) List(ctx context.Context, tenantID uuid.UUID, opts domain.PropertyListOpts) ([]domain.Property, error) {
	props, err := s.properties.List(ctx, tenantID, opts)
	if err != nil {
		return nil, fmt.Errorf("list properties: %w", err)
	}
	return props, nil
}

// Update persists field edits. The acquisition stage is not touched here;
// stage moves go through AdvanceStage and ResolveReview only.
func (s *PropertyService) Update(ctx context.Context, tenantID uuid.UUID, p *domain.Property) error {
	p.Address = strings.TrimSpace(p.Address)
	if p.Address == "" {
		return ErrAddressRequired
	}
	p.TenantID = tenantID

	if s.embedder != nil {
		vec, err := s.embedder.Embed(ctx, embedText(p))
		if err != nil {
			s.logger.Warn("property re-embedding failed, keeping previous vector",
				zap.String("property_id", p.ID.String()), zap.Error(err))
		} else {
			p.Embedding = vec
		}
	}

	if err := s.properties.Update(ctx, p); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrPropertyNotFound
		}
		return fmt.Errorf("update property: %w", err)
	}
	return nil
}

func (s *PropertyService) Delete(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error {
	if err := s.properties.Delete(ctx, id, tenantID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrPropertyNotFound
		}
		return fmt.Errorf("delete property: %w", err)
	}
	return nil
}

// Validate reports the property's completeness against its current stage.
func (s *PropertyService) Validate(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*domain.Property, flow.Result, error) {
	p, err := s.Get(ctx, id, tenantID)
	if err != nil {
		return nil, flow.Result{}, err
	}
	return p, s.validator.ValidateStage(p.Stage, p.Fields), nil
}

// AdvanceStage tries to move the property forward one step. The move is
// refused when the stage is terminal or under review, when required data is
// missing, and when the stage's business gate fails the property into a
// review branch. Gate failures still persist the move to the review stage.
func (s *PropertyService) AdvanceStage(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*AdvanceResult, error) {
	p, err := s.Get(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}

	if flow.IsTerminal(p.Stage) {
		return nil, ErrTerminalStage
	}
	if flow.IsReviewStage(p.Stage) {
		return nil, ErrReviewPending
	}

	res := s.validator.ValidateStage(p.Stage, p.Fields)
	if !res.IsComplete {
		return &AdvanceResult{
			Advanced:    false,
			FromStage:   p.Stage,
			ToStage:     p.Stage,
			MissingData: res.MissingData,
			Reason:      "required data missing",
		}, nil
	}

	outcome := flow.EvaluateGate(p.Stage, p.Fields)
	target := res.NextStep
	reason := ""
	if !outcome.Passed {
		target = outcome.FailStage
		reason = outcome.Reason
	}

	if err := s.properties.UpdateStage(ctx, id, tenantID, target); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, fmt.Errorf("advance stage: %w", err)
	}

	s.logger.Info("property stage advanced",
		zap.String("property_id", id.String()),
		zap.String("from", string(p.Stage)),
		zap.String("to", string(target)),
		zap.Bool("gate_passed", outcome.Passed))

	return &AdvanceResult{
		Advanced:  outcome.Passed,
		FromStage: p.Stage,
		ToStage:   target,
		Reason:    reason,
	}, nil
}

// ResolveReview applies a human decision to a property sitting in a review
// stage. Approval re-enters the main chain; rejection is only legal from the
// 70% and 80% gates and moves the property to rejected.
func (s *PropertyService) ResolveReview(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, approve bool) (*AdvanceResult, error) {
	p, err := s.Get(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}

	if !flow.IsReviewStage(p.Stage) {
		return nil, ErrNotReviewStage
	}

	target := flow.Table[p.Stage].NextStage
	if !approve {
		if !flow.CanReject(p.Stage) {
			return nil, ErrRejectNotAllowed
		}
		target = domain.StageRejected
	}

	if err := s.properties.UpdateStage(ctx, id, tenantID, target); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, fmt.Errorf("resolve review: %w", err)
	}

	s.logger.Info("review resolved",
		zap.String("property_id", id.String()),
		zap.String("stage", string(p.Stage)),
		zap.Bool("approved", approve),
		zap.String("to", string(target)))

	return &AdvanceResult{
		Advanced:  approve,
		FromStage: p.Stage,
		ToStage:   target,
	}, nil
}

// UpdateStatus moves the property's post-acquisition status along the
// status state machine.
func (s *PropertyService) UpdateStatus(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, status domain.PropertyStatus) error {
	if !domain.ValidStatus(string(status)) {
		return ErrInvalidStatus
	}

	p, err := s.Get(ctx, id, tenantID)
	if err != nil {
		return err
	}

	if !flow.IsValidStatusTransition(p.Status, status) {
		return fmt.Errorf("%w: %s -> %s", ErrStatusTransition, p.Status, status)
	}

	if err := s.properties.UpdateStatus(ctx, id, tenantID, status); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrPropertyNotFound
		}
		return fmt.Errorf("update status: %w", err)
	}
	return nil
}

// Search runs semantic search over property addresses and descriptions.
func (s *PropertyService) Search(ctx context.Context, tenantID uuid.UUID, query string, limit int) ([]domain.PropertyWithScore, error) {
	if s.embedder == nil {
		return nil, errors.New("semantic search unavailable: no embedding client")
	}
	if limit <= 0 {
		limit = 10
	}

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := s.properties.Search(ctx, tenantID, vec, limit)
	if err != nil {
		return nil, fmt.Errorf("search properties: %w", err)
	}
	return results, nil
}

func embedText(p *domain.Property) string {
	if p.Description == "" {
		return p.Address
	}
	return p.Address + "\n" + p.Description
}
