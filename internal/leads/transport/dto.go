// Package transport defines request and response DTOs for the leads API.
package transport

import (
	"encoding/json"
	"time"

	"github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/leads/repository"

	"github.com/google/uuid"
)

type CreateLeadRequest struct {
	OwnerName     *string `json:"ownerName" validate:"omitempty,max=200"`
	OwnerPhone    *string `json:"ownerPhone" validate:"omitempty,max=30"`
	StreetAddress string  `json:"streetAddress" validate:"required,max=200"`
	City          string  `json:"city" validate:"required,max=100"`
	State         string  `json:"state" validate:"required,len=2"`
	ZipCode       string  `json:"zipCode" validate:"required,min=5,max=10"`
	Source        *string `json:"source" validate:"omitempty,max=100"`
}

type UpdateStageRequest struct {
	Stage string `json:"stage" validate:"required,max=30"`
}

type LeadResponse struct {
	ID                uuid.UUID       `json:"id"`
	PropertyID        *uuid.UUID      `json:"propertyId,omitempty"`
	StormImpactID     *uuid.UUID      `json:"stormImpactId,omitempty"`
	StormEventID      *uuid.UUID      `json:"stormEventId,omitempty"`
	OwnerName         *string         `json:"ownerName,omitempty"`
	OwnerPhone        *string         `json:"ownerPhone,omitempty"`
	StreetAddress     string          `json:"streetAddress"`
	City              string          `json:"city"`
	State             string          `json:"state"`
	ZipCode           string          `json:"zipCode"`
	Stage             string          `json:"stage"`
	DamageProbability *float64        `json:"damageProbability,omitempty"`
	PriorityScore     int             `json:"priorityScore"`
	AIInsights        json.RawMessage `json:"aiInsights,omitempty"`
	Source            string          `json:"source"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

func NewLeadResponse(lead repository.Lead) LeadResponse {
	return LeadResponse{
		ID:                lead.ID,
		PropertyID:        lead.PropertyID,
		StormImpactID:     lead.StormImpactID,
		StormEventID:      lead.StormEventID,
		OwnerName:         lead.OwnerName,
		OwnerPhone:        lead.OwnerPhone,
		StreetAddress:     lead.StreetAddress,
		City:              lead.City,
		State:             lead.State,
		ZipCode:           lead.ZipCode,
		Stage:             string(lead.Stage),
		DamageProbability: lead.DamageProbability,
		PriorityScore:     lead.PriorityScore,
		AIInsights:        lead.AIInsights,
		Source:            lead.Source,
		CreatedAt:         lead.CreatedAt,
		UpdatedAt:         lead.UpdatedAt,
	}
}

func NewLeadResponses(leads []repository.Lead) []LeadResponse {
	responses := make([]LeadResponse, 0, len(leads))
	for _, lead := range leads {
		responses = append(responses, NewLeadResponse(lead))
	}
	return responses
}
