package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("property not found")

const uniqueViolationCode = "23505"

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type Property struct {
	ID                 uuid.UUID
	StreetAddress      string
	City               string
	State              string
	ZipCode            string
	County             string
	Latitude           float64
	Longitude          float64
	PropertyType       string
	YearBuilt          *int
	RoofType           string
	RoofAgeYears       *int
	RoofAgeEstimated   bool
	SquareFootage      *int
	OwnerName          *string
	OwnerPhone         *string
	DataSource         string
	GeocodeAccuracy    string
	ExternalBuildingID *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type CreatePropertyParams struct {
	StreetAddress      string
	City               string
	State              string
	ZipCode            string
	County             string
	Latitude           float64
	Longitude          float64
	PropertyType       string
	RoofType           string
	RoofAgeYears       *int
	RoofAgeEstimated   bool
	DataSource         string
	GeocodeAccuracy    string
	ExternalBuildingID *string
}

const propertyColumns = `id, street_address, city, state, zip_code, county, latitude, longitude,
	property_type, year_built, roof_type, roof_age_years, roof_age_estimated, square_footage,
	owner_name, owner_phone, data_source, geocode_accuracy, external_building_id, created_at, updated_at`

// FindByAddress looks up a property by its (street, city, zip) identity.
// Street and city comparisons are case-insensitive to match the discovery
// dedup key.
func (r *Repository) FindByAddress(ctx context.Context, street, city, zip string) (Property, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+propertyColumns+`
		FROM properties
		WHERE lower(street_address) = lower($1) AND lower(city) = lower($2) AND zip_code = $3
	`, street, city, zip)

	property, err := scanProperty(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Property{}, ErrNotFound
	}
	if err != nil {
		return Property{}, err
	}

	return property, nil
}

func (r *Repository) Insert(ctx context.Context, params CreatePropertyParams) (Property, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO properties (
			street_address, city, state, zip_code, county, latitude, longitude,
			property_type, roof_type, roof_age_years, roof_age_estimated,
			data_source, geocode_accuracy, external_building_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING `+propertyColumns+`
	`,
		params.StreetAddress, params.City, params.State, params.ZipCode, params.County,
		params.Latitude, params.Longitude, params.PropertyType, params.RoofType,
		params.RoofAgeYears, params.RoofAgeEstimated, params.DataSource,
		params.GeocodeAccuracy, params.ExternalBuildingID,
	)

	return scanProperty(row)
}

// FindOrCreate resolves a property by address, inserting it when absent.
// A concurrent insert losing the unique-constraint race is resolved by
// re-reading the winner's row, so callers always get one stable identifier.
func (r *Repository) FindOrCreate(ctx context.Context, params CreatePropertyParams) (Property, bool, error) {
	existing, err := r.FindByAddress(ctx, params.StreetAddress, params.City, params.ZipCode)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Property{}, false, err
	}

	property, err := r.Insert(ctx, params)
	if err == nil {
		return property, true, nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		existing, findErr := r.FindByAddress(ctx, params.StreetAddress, params.City, params.ZipCode)
		if findErr != nil {
			return Property{}, false, findErr
		}
		return existing, false, nil
	}

	return Property{}, false, err
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Property, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+propertyColumns+`
		FROM properties WHERE id = $1
	`, id)

	property, err := scanProperty(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Property{}, ErrNotFound
	}
	if err != nil {
		return Property{}, err
	}

	return property, nil
}

func (r *Repository) List(ctx context.Context, limit int) ([]Property, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+propertyColumns+`
		FROM properties
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	properties := make([]Property, 0)
	for rows.Next() {
		property, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		properties = append(properties, property)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return properties, nil
}

func scanProperty(row pgx.Row) (Property, error) {
	var p Property
	err := row.Scan(
		&p.ID, &p.StreetAddress, &p.City, &p.State, &p.ZipCode, &p.County,
		&p.Latitude, &p.Longitude, &p.PropertyType, &p.YearBuilt, &p.RoofType,
		&p.RoofAgeYears, &p.RoofAgeEstimated, &p.SquareFootage,
		&p.OwnerName, &p.OwnerPhone, &p.DataSource, &p.GeocodeAccuracy,
		&p.ExternalBuildingID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return Property{}, err
	}
	return p, nil
}
