package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("storm event not found")

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// StormEvent is immutable once ingested; it is the source of truth for a
// discovery run.
type StormEvent struct {
	ID             uuid.UUID
	County         string
	State          string
	Latitude       float64
	Longitude      float64
	HailSizeInches float64
	OccurredAt     time.Time
	Source         *string
	CreatedAt      time.Time
}

type CreateStormParams struct {
	County         string
	State          string
	Latitude       float64
	Longitude      float64
	HailSizeInches float64
	OccurredAt     time.Time
	Source         *string
}

func (r *Repository) Create(ctx context.Context, params CreateStormParams) (StormEvent, error) {
	var storm StormEvent
	err := r.pool.QueryRow(ctx, `
		INSERT INTO storm_events (county, state, latitude, longitude, hail_size_inches, occurred_at, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, county, state, latitude, longitude, hail_size_inches, occurred_at, source, created_at
	`,
		params.County, params.State, params.Latitude, params.Longitude,
		params.HailSizeInches, params.OccurredAt, params.Source,
	).Scan(
		&storm.ID, &storm.County, &storm.State, &storm.Latitude, &storm.Longitude,
		&storm.HailSizeInches, &storm.OccurredAt, &storm.Source, &storm.CreatedAt,
	)
	if err != nil {
		return StormEvent{}, err
	}

	return storm, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (StormEvent, error) {
	var storm StormEvent
	err := r.pool.QueryRow(ctx, `
		SELECT id, county, state, latitude, longitude, hail_size_inches, occurred_at, source, created_at
		FROM storm_events WHERE id = $1
	`, id).Scan(
		&storm.ID, &storm.County, &storm.State, &storm.Latitude, &storm.Longitude,
		&storm.HailSizeInches, &storm.OccurredAt, &storm.Source, &storm.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return StormEvent{}, ErrNotFound
	}
	if err != nil {
		return StormEvent{}, err
	}

	return storm, nil
}

func (r *Repository) List(ctx context.Context, limit int) ([]StormEvent, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, county, state, latitude, longitude, hail_size_inches, occurred_at, source, created_at
		FROM storm_events
		ORDER BY occurred_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanStorms(rows)
}

// ListWithoutImpacts returns storms that have no impact records yet. The batch
// discovery command uses it to find storms whose pipeline never ran.
func (r *Repository) ListWithoutImpacts(ctx context.Context, limit int) ([]StormEvent, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.pool.Query(ctx, `
		SELECT s.id, s.county, s.state, s.latitude, s.longitude, s.hail_size_inches, s.occurred_at, s.source, s.created_at
		FROM storm_events s
		LEFT JOIN storm_property_impacts i ON i.storm_event_id = s.id
		WHERE i.id IS NULL
		ORDER BY s.occurred_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanStorms(rows)
}

func scanStorms(rows pgx.Rows) ([]StormEvent, error) {
	storms := make([]StormEvent, 0)
	for rows.Next() {
		var storm StormEvent
		if err := rows.Scan(
			&storm.ID, &storm.County, &storm.State, &storm.Latitude, &storm.Longitude,
			&storm.HailSizeInches, &storm.OccurredAt, &storm.Source, &storm.CreatedAt,
		); err != nil {
			return nil, err
		}
		storms = append(storms, storm)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return storms, nil
}
