// Package transport defines response DTOs for the properties read API.
package transport

import (
	"time"

	"github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/properties/repository"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/scoring"

	"github.com/google/uuid"
)

type PropertyResponse struct {
	ID                 uuid.UUID `json:"id"`
	StreetAddress      string    `json:"streetAddress"`
	City               string    `json:"city"`
	State              string    `json:"state"`
	ZipCode            string    `json:"zipCode"`
	County             string    `json:"county"`
	Latitude           float64   `json:"latitude"`
	Longitude          float64   `json:"longitude"`
	PropertyType       string    `json:"propertyType"`
	YearBuilt          *int      `json:"yearBuilt,omitempty"`
	RoofType           string    `json:"roofType,omitempty"`
	RoofAgeYears       *int      `json:"roofAgeYears,omitempty"`
	RoofAgeEstimated   bool      `json:"roofAgeEstimated"`
	SquareFootage      *int      `json:"squareFootage,omitempty"`
	OwnerName          *string   `json:"ownerName,omitempty"`
	OwnerPhone         *string   `json:"ownerPhone,omitempty"`
	DataSource         string    `json:"dataSource"`
	GeocodeAccuracy    string    `json:"geocodeAccuracy"`
	ExternalBuildingID *string   `json:"externalBuildingId,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

func NewPropertyResponse(property repository.Property) PropertyResponse {
	return PropertyResponse{
		ID:                 property.ID,
		StreetAddress:      property.StreetAddress,
		City:               property.City,
		State:              property.State,
		ZipCode:            property.ZipCode,
		County:             property.County,
		Latitude:           property.Latitude,
		Longitude:          property.Longitude,
		PropertyType:       property.PropertyType,
		YearBuilt:          property.YearBuilt,
		RoofType:           property.RoofType,
		RoofAgeYears:       property.RoofAgeYears,
		RoofAgeEstimated:   property.RoofAgeEstimated,
		SquareFootage:      property.SquareFootage,
		OwnerName:          property.OwnerName,
		OwnerPhone:         property.OwnerPhone,
		DataSource:         property.DataSource,
		GeocodeAccuracy:    property.GeocodeAccuracy,
		ExternalBuildingID: property.ExternalBuildingID,
		CreatedAt:          property.CreatedAt,
		UpdatedAt:          property.UpdatedAt,
	}
}

func NewPropertyResponses(properties []repository.Property) []PropertyResponse {
	responses := make([]PropertyResponse, 0, len(properties))
	for _, property := range properties {
		responses = append(responses, NewPropertyResponse(property))
	}
	return responses
}

// ImpactResponse is one ranked row of a storm's impact list.
type ImpactResponse struct {
	ID                 uuid.UUID             `json:"id"`
	StormEventID       uuid.UUID             `json:"stormEventId"`
	PropertyID         uuid.UUID             `json:"propertyId"`
	DistanceMiles      float64               `json:"distanceMiles"`
	HailSizeAtLocation float64               `json:"hailSizeAtLocation"`
	DamageProbability  float64               `json:"damageProbability"`
	PriorityScore      int                   `json:"priorityScore"`
	DamageFactors      scoring.DamageFactors `json:"damageFactors"`
	Property           PropertyResponse      `json:"property"`
}

func NewImpactResponses(impacts []repository.ImpactWithProperty) []ImpactResponse {
	responses := make([]ImpactResponse, 0, len(impacts))
	for _, impact := range impacts {
		responses = append(responses, ImpactResponse{
			ID:                 impact.ID,
			StormEventID:       impact.StormEventID,
			PropertyID:         impact.PropertyID,
			DistanceMiles:      impact.DistanceMiles,
			HailSizeAtLocation: impact.HailSizeAtLocation,
			DamageProbability:  impact.DamageProbability,
			PriorityScore:      impact.PriorityScore,
			DamageFactors:      impact.DamageFactors,
			Property:           NewPropertyResponse(impact.Property),
		})
	}
	return responses
}
