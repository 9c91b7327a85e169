package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/casaflow/casaflow/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
)

type PropertyStore struct {
	db *pgxpool.Pool
}

func NewPropertyStore(db *pgxpool.Pool) *PropertyStore {
	return &PropertyStore{db: db}
}

const propertyColumns = `id, tenant_id, address, description, acquisition_stage, status,
	asking_price, market_value, repair_estimate, arv, title_status, created_at, updated_at`

func scanProperty(row pgx.Row, p *domain.Property) error {
	return row.Scan(
		&p.ID, &p.TenantID, &p.Address, &p.Description, &p.Stage, &p.Status,
		&p.Fields.AskingPrice, &p.Fields.MarketValue, &p.Fields.RepairEstimate,
		&p.Fields.ARV, &p.Fields.TitleStatus, &p.CreatedAt, &p.UpdatedAt,
	)
}

func (s *PropertyStore) Create(ctx context.Context, p *domain.Property) error {
	var embedding *pgvector.Vector
	if len(p.Embedding) > 0 {
		v := pgvector.NewVector(p.Embedding)
		embedding = &v
	}

	if p.Stage == "" {
		p.Stage = domain.StageDocumentsPending
	}
	if p.Status == "" {
		p.Status = domain.StatusPurchased
	}

	err := s.db.QueryRow(ctx,
		`INSERT INTO properties (tenant_id, address, description, acquisition_stage, status,
		    asking_price, market_value, repair_estimate, arv, title_status, embedding)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id, created_at, updated_at`,
		p.TenantID, p.Address, p.Description, p.Stage, p.Status,
		p.Fields.AskingPrice, p.Fields.MarketValue, p.Fields.RepairEstimate,
		p.Fields.ARV, p.Fields.TitleStatus, embedding,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return err
	}
	return nil
}

func (s *PropertyStore) GetByID(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*domain.Property, error) {
	p := &domain.Property{}
	err := scanProperty(s.db.QueryRow(ctx,
		`SELECT `+propertyColumns+` FROM properties WHERE id = $1 AND tenant_id = $2`,
		id, tenantID,
	), p)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *PropertyStore) List(ctx context.Context, tenantID uuid.UUID, opts domain.PropertyListOpts) ([]domain.Property, error) {
	if opts.Limit <= 0 {
		opts.Limit = 50
	}

	query := `SELECT ` + propertyColumns + ` FROM properties WHERE tenant_id = $1`
	args := []any{tenantID}

	if opts.Stage != nil {
		args = append(args, string(*opts.Stage))
		query += fmt.Sprintf(" AND acquisition_stage = $%d", len(args))
	}
	if opts.Status != nil {
		args = append(args, string(*opts.Status))
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}

	args = append(args, opts.Limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var properties []domain.Property
	for rows.Next() {
		var p domain.Property
		if err := scanProperty(rows, &p); err != nil {
			return nil, err
		}
		properties = append(properties, p)
	}
	return properties, rows.Err()
}

func (s *PropertyStore) Update(ctx context.Context, p *domain.Property) error {
	var embedding *pgvector.Vector
	if len(p.Embedding) > 0 {
		v := pgvector.NewVector(p.Embedding)
		embedding = &v
	}

	tag, err := s.db.Exec(ctx,
		`UPDATE properties SET address = $3, description = $4,
		    asking_price = $5, market_value = $6, repair_estimate = $7, arv = $8, title_status = $9,
		    embedding = COALESCE($10, embedding), updated_at = NOW()
		 WHERE id = $1 AND tenant_id = $2`,
		p.ID, p.TenantID, p.Address, p.Description,
		p.Fields.AskingPrice, p.Fields.MarketValue, p.Fields.RepairEstimate,
		p.Fields.ARV, p.Fields.TitleStatus, embedding,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PropertyStore) UpdateStage(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, stage domain.AcquisitionStage) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE properties SET acquisition_stage = $3, updated_at = NOW()
		 WHERE id = $1 AND tenant_id = $2`,
		id, tenantID, stage,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PropertyStore) UpdateStatus(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, status domain.PropertyStatus) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE properties SET status = $3, updated_at = NOW()
		 WHERE id = $1 AND tenant_id = $2`,
		id, tenantID, status,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PropertyStore) Delete(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM properties WHERE id = $1 AND tenant_id = $2`,
		id, tenantID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PropertyStore) Search(ctx context.Context, tenantID uuid.UUID, embedding []float32, limit int) ([]domain.PropertyWithScore, error) {
	if limit <= 0 {
		limit = 10
	}

	vec := pgvector.NewVector(embedding)
	rows, err := s.db.Query(ctx,
		`SELECT `+propertyColumns+`, 1 - (embedding <=> $2) AS score
		 FROM properties
		 WHERE tenant_id = $1 AND embedding IS NOT NULL
		 ORDER BY embedding <=> $2
		 LIMIT $3`,
		tenantID, vec, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.PropertyWithScore
	for rows.Next() {
		var r domain.PropertyWithScore
		err := rows.Scan(
			&r.ID, &r.TenantID, &r.Address, &r.Description, &r.Stage, &r.Status,
			&r.Fields.AskingPrice, &r.Fields.MarketValue, &r.Fields.RepairEstimate,
			&r.Fields.ARV, &r.Fields.TitleStatus, &r.CreatedAt, &r.UpdatedAt,
			&r.Score,
		)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
