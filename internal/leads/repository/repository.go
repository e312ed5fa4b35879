package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("lead not found")

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Lead carries denormalized address and owner fields so the sales pipeline
// can be worked without joining back to properties.
type Lead struct {
	ID                uuid.UUID
	PropertyID        *uuid.UUID
	StormImpactID     *uuid.UUID
	StormEventID      *uuid.UUID
	OwnerName         *string
	OwnerPhone        *string
	StreetAddress     string
	City              string
	State             string
	ZipCode           string
	Stage             domain.Stage
	DamageProbability *float64
	PriorityScore     int
	AIInsights        json.RawMessage
	Source            string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type CreateLeadParams struct {
	PropertyID        *uuid.UUID
	StormImpactID     *uuid.UUID
	StormEventID      *uuid.UUID
	OwnerName         *string
	OwnerPhone        *string
	StreetAddress     string
	City              string
	State             string
	ZipCode           string
	Stage             domain.Stage
	DamageProbability *float64
	PriorityScore     int
	AIInsights        json.RawMessage
	Source            string
}

const leadColumns = `id, property_id, storm_impact_id, storm_event_id, owner_name, owner_phone,
	street_address, city, state, zip_code, stage, damage_probability, priority_score,
	ai_insights, source, created_at, updated_at`

func (r *Repository) Create(ctx context.Context, params CreateLeadParams) (Lead, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO leads (
			property_id, storm_impact_id, storm_event_id, owner_name, owner_phone,
			street_address, city, state, zip_code, stage, damage_probability,
			priority_score, ai_insights, source
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING `+leadColumns+`
	`,
		params.PropertyID, params.StormImpactID, params.StormEventID, params.OwnerName,
		params.OwnerPhone, params.StreetAddress, params.City, params.State, params.ZipCode,
		params.Stage, params.DamageProbability, params.PriorityScore, params.AIInsights,
		params.Source,
	)

	return scanLead(row)
}

// ExistsForImpact reports whether a lead already covers the exact
// (property, storm impact) pair. Promotion uses it for idempotent re-runs.
func (r *Repository) ExistsForImpact(ctx context.Context, propertyID, stormImpactID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM leads WHERE property_id = $1 AND storm_impact_id = $2
		)
	`, propertyID, stormImpactID).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Lead, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)

	lead, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	if err != nil {
		return Lead{}, err
	}

	return lead, nil
}

type ListLeadsParams struct {
	StormEventID *uuid.UUID
	Stage        *domain.Stage
	Limit        int
}

func (r *Repository) List(ctx context.Context, params ListLeadsParams) ([]Lead, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		WHERE ($1::uuid IS NULL OR storm_event_id = $1)
		  AND ($2::text IS NULL OR stage = $2)
		ORDER BY priority_score DESC, created_at DESC
		LIMIT $3
	`, params.StormEventID, params.Stage, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leads := make([]Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return leads, nil
}

func (r *Repository) UpdateStage(ctx context.Context, id uuid.UUID, stage domain.Stage) (Lead, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE leads SET stage = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+leadColumns+`
	`, id, stage)

	lead, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	if err != nil {
		return Lead{}, err
	}

	return lead, nil
}

// AddActivity appends an audit row to the lead's activity log.
func (r *Repository) AddActivity(ctx context.Context, leadID uuid.UUID, activityType string, metadata any) error {
	payload, err := json.Marshal(metadata)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO lead_activities (lead_id, activity_type, metadata)
		VALUES ($1, $2, $3)
	`, leadID, activityType, payload)
	return err
}

func scanLead(row pgx.Row) (Lead, error) {
	var lead Lead
	err := row.Scan(
		&lead.ID, &lead.PropertyID, &lead.StormImpactID, &lead.StormEventID,
		&lead.OwnerName, &lead.OwnerPhone, &lead.StreetAddress, &lead.City,
		&lead.State, &lead.ZipCode, &lead.Stage, &lead.DamageProbability,
		&lead.PriorityScore, &lead.AIInsights, &lead.Source,
		&lead.CreatedAt, &lead.UpdatedAt,
	)
	if err != nil {
		return Lead{}, err
	}
	return lead, nil
}
