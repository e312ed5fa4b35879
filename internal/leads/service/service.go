// Package service implements manual lead entry and pipeline stage changes.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/events"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/leads/domain"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/leads/repository"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/leads/transport"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/scoring"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/platform/apperr"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/platform/logger"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/platform/phone"

	"github.com/google/uuid"
)

const (
	// SourceManual tags leads entered through the API rather than promoted
	// from a storm.
	SourceManual = "manual"

	activityLeadCreated  = "lead_created"
	activityStageChanged = "stage_changed"
)

// Store is the persistence surface this service needs.
type Store interface {
	Create(ctx context.Context, params repository.CreateLeadParams) (repository.Lead, error)
	GetByID(ctx context.Context, id uuid.UUID) (repository.Lead, error)
	List(ctx context.Context, params repository.ListLeadsParams) ([]repository.Lead, error)
	UpdateStage(ctx context.Context, id uuid.UUID, stage domain.Stage) (repository.Lead, error)
	AddActivity(ctx context.Context, leadID uuid.UUID, activityType string, metadata any) error
}

type Service struct {
	store Store
	bus   events.Bus
	log   *logger.Logger
}

func New(store Store, bus events.Bus, log *logger.Logger) *Service {
	return &Service{store: store, bus: bus, log: log}
}

// Create records a manually entered lead. The phone number is normalized to
// E.164 before the contactability bonus is applied.
func (s *Service) Create(ctx context.Context, req transport.CreateLeadRequest) (repository.Lead, error) {
	ownerPhone := req.OwnerPhone
	if ownerPhone != nil {
		normalized := phone.NormalizeE164(*ownerPhone)
		if normalized == "" {
			ownerPhone = nil
		} else {
			ownerPhone = &normalized
		}
	}

	source := SourceManual
	if req.Source != nil && *req.Source != "" {
		source = *req.Source
	}

	hasPhone := ownerPhone != nil
	priority := scoring.PriorityScore(0, scoring.DefaultPropertyValue, 0, hasPhone)

	lead, err := s.store.Create(ctx, repository.CreateLeadParams{
		OwnerName:     req.OwnerName,
		OwnerPhone:    ownerPhone,
		StreetAddress: req.StreetAddress,
		City:          req.City,
		State:         req.State,
		ZipCode:       req.ZipCode,
		Stage:         domain.InitialStage,
		PriorityScore: priority,
		Source:        source,
	})
	if err != nil {
		s.log.DatabaseError("lead_create", err)
		return repository.Lead{}, apperr.Wrap(apperr.KindInternal, "failed to create lead", err)
	}

	if err := s.store.AddActivity(ctx, lead.ID, activityLeadCreated, map[string]any{
		"source": source,
	}); err != nil {
		s.log.DatabaseError("lead_activity_insert", err)
	}

	s.bus.Publish(ctx, events.LeadCreated{
		BaseEvent:     events.NewBaseEvent(),
		LeadID:        lead.ID,
		PriorityScore: lead.PriorityScore,
		Source:        source,
	})

	return lead, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (repository.Lead, error) {
	lead, err := s.store.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.Lead{}, apperr.NotFound("lead not found")
	}
	if err != nil {
		s.log.DatabaseError("lead_get", err)
		return repository.Lead{}, apperr.Wrap(apperr.KindInternal, "failed to load lead", err)
	}

	return lead, nil
}

func (s *Service) List(ctx context.Context, params repository.ListLeadsParams) ([]repository.Lead, error) {
	if params.Stage != nil && !params.Stage.IsValid() {
		return nil, apperr.Validation(fmt.Sprintf("unknown stage %q", *params.Stage))
	}

	leads, err := s.store.List(ctx, params)
	if err != nil {
		s.log.DatabaseError("lead_list", err)
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list leads", err)
	}

	return leads, nil
}

// UpdateStage moves a lead through the pipeline, enforcing the legal
// transitions and recording the change in the activity log.
func (s *Service) UpdateStage(ctx context.Context, id uuid.UUID, next domain.Stage) (repository.Lead, error) {
	if !next.IsValid() {
		return repository.Lead{}, apperr.Validation(fmt.Sprintf("unknown stage %q", next))
	}

	lead, err := s.GetByID(ctx, id)
	if err != nil {
		return repository.Lead{}, err
	}

	if lead.Stage == next {
		return lead, nil
	}
	if !lead.Stage.CanTransitionTo(next) {
		return repository.Lead{}, apperr.Conflict(fmt.Sprintf("cannot move lead from %s to %s", lead.Stage, next))
	}

	updated, err := s.store.UpdateStage(ctx, id, next)
	if err != nil {
		s.log.DatabaseError("lead_stage_update", err)
		return repository.Lead{}, apperr.Wrap(apperr.KindInternal, "failed to update lead stage", err)
	}

	if err := s.store.AddActivity(ctx, id, activityStageChanged, map[string]any{
		"from": string(lead.Stage),
		"to":   string(next),
	}); err != nil {
		s.log.DatabaseError("lead_activity_insert", err)
	}

	s.bus.Publish(ctx, events.LeadStageChanged{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    id,
		OldStage:  string(lead.Stage),
		NewStage:  string(next),
	})

	return updated, nil
}
