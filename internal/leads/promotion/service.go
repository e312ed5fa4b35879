// Package promotion turns scored storm impacts into sales leads. It is a
// separate, re-runnable operation from discovery so damage thresholds can be
// tuned and replayed without re-discovering properties.
package promotion

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/events"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/leads/domain"
	leadrepo "github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/leads/repository"
	proprepo "github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/properties/repository"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/scoring"
	stormrepo "github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/storms/repository"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/platform/apperr"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/platform/logger"

	"github.com/google/uuid"
)

const (
	// DefaultMinDamageProbability filters out impacts unlikely to convert.
	DefaultMinDamageProbability = 0.3
	// DefaultLimit bounds one promotion run.
	DefaultLimit = 100

	// SourceStormDiscovery tags leads created by this pipeline.
	SourceStormDiscovery = "storm_discovery"

	activityLeadCreated = "lead_created"
)

// StormStore re-validates the storm before promoting its impacts.
type StormStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (stormrepo.StormEvent, error)
}

// ImpactLister supplies scored impacts above the damage threshold.
type ImpactLister interface {
	ListImpacts(ctx context.Context, stormEventID uuid.UUID, minDamageProbability float64, limit int) ([]proprepo.ImpactWithProperty, error)
}

// LeadStore persists leads and their activity log.
type LeadStore interface {
	Create(ctx context.Context, params leadrepo.CreateLeadParams) (leadrepo.Lead, error)
	ExistsForImpact(ctx context.Context, propertyID, stormImpactID uuid.UUID) (bool, error)
	AddActivity(ctx context.Context, leadID uuid.UUID, activityType string, metadata any) error
}

type Service struct {
	storms  StormStore
	impacts ImpactLister
	leads   LeadStore
	bus     events.Bus
	log     *logger.Logger
}

func New(storms StormStore, impacts ImpactLister, leads LeadStore, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		storms:  storms,
		impacts: impacts,
		leads:   leads,
		bus:     bus,
		log:     log,
	}
}

// Insights is the traceability payload stored on each promoted lead.
type Insights struct {
	StormEventID       uuid.UUID             `json:"stormEventId"`
	DamageProbability  float64               `json:"damageProbability"`
	DistanceMiles      float64               `json:"distanceMiles"`
	HailSizeAtLocation float64               `json:"hailSizeAtLocation"`
	Factors            scoring.DamageFactors `json:"factors"`
}

// PromotedLead is one row of the promotion result.
type PromotedLead struct {
	LeadID            uuid.UUID `json:"leadId"`
	PropertyID        uuid.UUID `json:"propertyId"`
	StreetAddress     string    `json:"streetAddress"`
	City              string    `json:"city"`
	DamageProbability float64   `json:"damageProbability"`
	PriorityScore     int       `json:"priorityScore"`
}

// Summary reports a promotion run. Skipped pairs are impacts that already
// have a lead from an earlier run.
type Summary struct {
	StormEventID uuid.UUID      `json:"stormEventId"`
	Created      int            `json:"created"`
	Skipped      int            `json:"skipped"`
	Leads        []PromotedLead `json:"leads"`
}

// CreateLeadsFromStorm creates at most one lead per (property, impact) pair
// for impacts at or above minDamageProbability, highest priority first.
// Re-running with the same inputs creates nothing new.
func (s *Service) CreateLeadsFromStorm(ctx context.Context, stormEventID uuid.UUID, minDamageProbability float64, limit int) (Summary, error) {
	if minDamageProbability <= 0 {
		minDamageProbability = DefaultMinDamageProbability
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	storm, err := s.storms.GetByID(ctx, stormEventID)
	if errors.Is(err, stormrepo.ErrNotFound) {
		return Summary{}, apperr.NotFound("storm event not found")
	}
	if err != nil {
		return Summary{}, apperr.Wrap(apperr.KindInternal, "failed to load storm event", err)
	}

	impacts, err := s.impacts.ListImpacts(ctx, storm.ID, minDamageProbability, limit)
	if err != nil {
		return Summary{}, apperr.Wrap(apperr.KindInternal, "failed to list storm impacts", err)
	}

	summary := Summary{
		StormEventID: storm.ID,
		Leads:        make([]PromotedLead, 0, len(impacts)),
	}

	for _, impact := range impacts {
		exists, err := s.leads.ExistsForImpact(ctx, impact.PropertyID, impact.ID)
		if err != nil {
			s.log.CandidateSkipped("lead_promotion", impact.Property.StreetAddress, err)
			continue
		}
		if exists {
			summary.Skipped++
			continue
		}

		lead, err := s.createLead(ctx, storm.ID, impact)
		if err != nil {
			s.log.CandidateSkipped("lead_promotion", impact.Property.StreetAddress, err)
			continue
		}

		summary.Created++
		summary.Leads = append(summary.Leads, PromotedLead{
			LeadID:            lead.ID,
			PropertyID:        impact.PropertyID,
			StreetAddress:     lead.StreetAddress,
			City:              lead.City,
			DamageProbability: impact.DamageProbability,
			PriorityScore:     impact.PriorityScore,
		})
	}

	s.log.Info("lead promotion completed",
		"stormEventId", storm.ID,
		"created", summary.Created,
		"skipped", summary.Skipped,
	)

	return summary, nil
}

func (s *Service) createLead(ctx context.Context, stormEventID uuid.UUID, impact proprepo.ImpactWithProperty) (leadrepo.Lead, error) {
	insights, err := json.Marshal(Insights{
		StormEventID:       stormEventID,
		DamageProbability:  impact.DamageProbability,
		DistanceMiles:      impact.DistanceMiles,
		HailSizeAtLocation: impact.HailSizeAtLocation,
		Factors:            impact.DamageFactors,
	})
	if err != nil {
		return leadrepo.Lead{}, err
	}

	propertyID := impact.PropertyID
	impactID := impact.ID
	damageProbability := impact.DamageProbability

	lead, err := s.leads.Create(ctx, leadrepo.CreateLeadParams{
		PropertyID:        &propertyID,
		StormImpactID:     &impactID,
		StormEventID:      &stormEventID,
		OwnerName:         impact.Property.OwnerName,
		OwnerPhone:        impact.Property.OwnerPhone,
		StreetAddress:     impact.Property.StreetAddress,
		City:              impact.Property.City,
		State:             impact.Property.State,
		ZipCode:           impact.Property.ZipCode,
		Stage:             domain.InitialStage,
		DamageProbability: &damageProbability,
		PriorityScore:     impact.PriorityScore,
		AIInsights:        insights,
		Source:            SourceStormDiscovery,
	})
	if err != nil {
		return leadrepo.Lead{}, err
	}

	if err := s.leads.AddActivity(ctx, lead.ID, activityLeadCreated, map[string]any{
		"stormEventId":      stormEventID,
		"damageProbability": impact.DamageProbability,
		"priorityScore":     impact.PriorityScore,
		"source":            SourceStormDiscovery,
	}); err != nil {
		// The lead exists; a missing audit row is not worth failing over.
		s.log.DatabaseError("lead_activity_insert", err)
	}

	s.bus.Publish(ctx, events.LeadCreated{
		BaseEvent:     events.NewBaseEvent(),
		LeadID:        lead.ID,
		PropertyID:    &propertyID,
		StormImpactID: &impactID,
		PriorityScore: impact.PriorityScore,
		Source:        SourceStormDiscovery,
	})

	return lead, nil
}
