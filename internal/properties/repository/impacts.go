package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/scoring"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Impact is the storm/property join row holding the scoring output. One row
// per (storm_event_id, property_id); re-running discovery overwrites it.
type Impact struct {
	ID                 uuid.UUID
	StormEventID       uuid.UUID
	PropertyID         uuid.UUID
	DistanceMiles      float64
	HailSizeAtLocation float64
	DamageProbability  float64
	PriorityScore      int
	DamageFactors      scoring.DamageFactors
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type UpsertImpactParams struct {
	StormEventID       uuid.UUID
	PropertyID         uuid.UUID
	DistanceMiles      float64
	HailSizeAtLocation float64
	DamageProbability  float64
	PriorityScore      int
	DamageFactors      scoring.DamageFactors
}

// UpsertImpact inserts or overwrites the impact row for the conflict key
// (storm_event_id, property_id).
func (r *Repository) UpsertImpact(ctx context.Context, params UpsertImpactParams) (Impact, error) {
	factors, err := json.Marshal(params.DamageFactors)
	if err != nil {
		return Impact{}, err
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO storm_property_impacts (
			storm_event_id, property_id, distance_miles, hail_size_at_location,
			damage_probability, priority_score, damage_factors
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (storm_event_id, property_id) DO UPDATE SET
			distance_miles = EXCLUDED.distance_miles,
			hail_size_at_location = EXCLUDED.hail_size_at_location,
			damage_probability = EXCLUDED.damage_probability,
			priority_score = EXCLUDED.priority_score,
			damage_factors = EXCLUDED.damage_factors,
			updated_at = now()
		RETURNING id, storm_event_id, property_id, distance_miles, hail_size_at_location,
			damage_probability, priority_score, damage_factors, created_at, updated_at
	`,
		params.StormEventID, params.PropertyID, params.DistanceMiles,
		params.HailSizeAtLocation, params.DamageProbability, params.PriorityScore, factors,
	)

	return scanImpact(row)
}

// ImpactWithProperty joins an impact with its property for ranking display
// and lead promotion.
type ImpactWithProperty struct {
	Impact
	Property Property
}

// ListImpacts returns a storm's impacts at or above the damage threshold,
// highest priority first.
func (r *Repository) ListImpacts(ctx context.Context, stormEventID uuid.UUID, minDamageProbability float64, limit int) ([]ImpactWithProperty, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.pool.Query(ctx, `
		SELECT i.id, i.storm_event_id, i.property_id, i.distance_miles, i.hail_size_at_location,
			i.damage_probability, i.priority_score, i.damage_factors, i.created_at, i.updated_at,
			p.id, p.street_address, p.city, p.state, p.zip_code, p.county, p.latitude, p.longitude,
			p.property_type, p.year_built, p.roof_type, p.roof_age_years, p.roof_age_estimated, p.square_footage,
			p.owner_name, p.owner_phone, p.data_source, p.geocode_accuracy, p.external_building_id, p.created_at, p.updated_at
		FROM storm_property_impacts i
		JOIN properties p ON p.id = i.property_id
		WHERE i.storm_event_id = $1 AND i.damage_probability >= $2
		ORDER BY i.priority_score DESC, i.damage_probability DESC
		LIMIT $3
	`, stormEventID, minDamageProbability, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]ImpactWithProperty, 0)
	for rows.Next() {
		var item ImpactWithProperty
		var factors []byte
		if err := rows.Scan(
			&item.ID, &item.StormEventID, &item.PropertyID, &item.DistanceMiles, &item.HailSizeAtLocation,
			&item.DamageProbability, &item.PriorityScore, &factors, &item.Impact.CreatedAt, &item.Impact.UpdatedAt,
			&item.Property.ID, &item.Property.StreetAddress, &item.Property.City, &item.Property.State,
			&item.Property.ZipCode, &item.Property.County, &item.Property.Latitude, &item.Property.Longitude,
			&item.Property.PropertyType, &item.Property.YearBuilt, &item.Property.RoofType,
			&item.Property.RoofAgeYears, &item.Property.RoofAgeEstimated, &item.Property.SquareFootage,
			&item.Property.OwnerName, &item.Property.OwnerPhone, &item.Property.DataSource,
			&item.Property.GeocodeAccuracy, &item.Property.ExternalBuildingID,
			&item.Property.CreatedAt, &item.Property.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if len(factors) > 0 {
			if err := json.Unmarshal(factors, &item.DamageFactors); err != nil {
				return nil, err
			}
		}
		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return items, nil
}

func scanImpact(row pgx.Row) (Impact, error) {
	var impact Impact
	var factors []byte
	err := row.Scan(
		&impact.ID, &impact.StormEventID, &impact.PropertyID, &impact.DistanceMiles,
		&impact.HailSizeAtLocation, &impact.DamageProbability, &impact.PriorityScore,
		&factors, &impact.CreatedAt, &impact.UpdatedAt,
	)
	if err != nil {
		return Impact{}, err
	}
	if len(factors) > 0 {
		if err := json.Unmarshal(factors, &impact.DamageFactors); err != nil {
			return Impact{}, err
		}
	}
	return impact, nil
}
