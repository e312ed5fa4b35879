// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Storm Domain Events
// =============================================================================

// StormIngested is published when a new storm event is recorded.
type StormIngested struct {
	BaseEvent
	StormEventID   uuid.UUID `json:"stormEventId"`
	County         string    `json:"county"`
	State          string    `json:"state"`
	HailSizeInches float64   `json:"hailSizeInches"`
}

func (e StormIngested) EventName() string { return "storms.storm.ingested" }

// DiscoveryCompleted is published when a property discovery run finishes,
// including partial-success runs.
type DiscoveryCompleted struct {
	BaseEvent
	StormEventID    uuid.UUID `json:"stormEventId"`
	PropertiesFound int       `json:"propertiesFound"`
	PropertiesSaved int       `json:"propertiesSaved"`
	ImpactsRecorded int       `json:"impactsRecorded"`
}

func (e DiscoveryCompleted) EventName() string { return "storms.discovery.completed" }

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadCreated is published when a new lead is created, either by storm
// promotion or manual entry.
type LeadCreated struct {
	BaseEvent
	LeadID        uuid.UUID  `json:"leadId"`
	PropertyID    *uuid.UUID `json:"propertyId,omitempty"`
	StormImpactID *uuid.UUID `json:"stormImpactId,omitempty"`
	PriorityScore int        `json:"priorityScore"`
	Source        string     `json:"source"`
}

func (e LeadCreated) EventName() string { return "leads.lead.created" }

// LeadStageChanged is published when a lead moves through the sales pipeline.
type LeadStageChanged struct {
	BaseEvent
	LeadID   uuid.UUID `json:"leadId"`
	OldStage string    `json:"oldStage"`
	NewStage string    `json:"newStage"`
}

func (e LeadStageChanged) EventName() string { return "leads.stage.changed" }
