// Package transport defines request and response DTOs for the storms API.
package transport

import (
	"time"

	"github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/storms/repository"

	"github.com/google/uuid"
)

type CreateStormRequest struct {
	County         string    `json:"county" validate:"required,max=100"`
	State          string    `json:"state" validate:"required,len=2"`
	Latitude       float64   `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude      float64   `json:"longitude" validate:"required,gte=-180,lte=180"`
	HailSizeInches float64   `json:"hailSizeInches" validate:"required,gt=0,lte=10"`
	OccurredAt     time.Time `json:"occurredAt" validate:"required"`
	Source         *string   `json:"source,omitempty" validate:"omitempty,max=100"`
}

// DiscoverRequest overrides the configured discovery defaults. Both fields
// are optional; absent fields fall back to config.
type DiscoverRequest struct {
	RadiusMiles   *float64 `json:"radiusMiles" validate:"omitempty,gt=0,lte=50"`
	MaxProperties *int     `json:"maxProperties" validate:"omitempty,gt=0,lte=1000"`
}

// PromoteLeadsRequest overrides the configured promotion defaults.
type PromoteLeadsRequest struct {
	MinDamageProbability *float64 `json:"minDamageProbability" validate:"omitempty,gte=0,lte=1"`
	Limit                *int     `json:"limit" validate:"omitempty,gt=0,lte=1000"`
}

type StormResponse struct {
	ID             uuid.UUID `json:"id"`
	County         string    `json:"county"`
	State          string    `json:"state"`
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	HailSizeInches float64   `json:"hailSizeInches"`
	OccurredAt     time.Time `json:"occurredAt"`
	Source         *string   `json:"source,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

func NewStormResponse(storm repository.StormEvent) StormResponse {
	return StormResponse{
		ID:             storm.ID,
		County:         storm.County,
		State:          storm.State,
		Latitude:       storm.Latitude,
		Longitude:      storm.Longitude,
		HailSizeInches: storm.HailSizeInches,
		OccurredAt:     storm.OccurredAt,
		Source:         storm.Source,
		CreatedAt:      storm.CreatedAt,
	}
}

func NewStormResponses(storms []repository.StormEvent) []StormResponse {
	responses := make([]StormResponse, 0, len(storms))
	for _, storm := range storms {
		responses = append(responses, NewStormResponse(storm))
	}
	return responses
}
