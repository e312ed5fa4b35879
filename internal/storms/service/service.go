// Package service implements storm event ingestion and lookup.
package service

import (
	"context"
	"errors"

	"github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/events"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/storms/repository"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/storms/transport"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/platform/apperr"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/platform/logger"

	"github.com/google/uuid"
)

// PipelineEnqueuer schedules the discovery pipeline for a freshly ingested
// storm. Implemented by the asynq scheduler client; nil when Redis is not
// configured.
type PipelineEnqueuer interface {
	EnqueueDiscovery(ctx context.Context, stormEventID uuid.UUID) error
}

type Service struct {
	repo     *repository.Repository
	bus      events.Bus
	enqueuer PipelineEnqueuer
	log      *logger.Logger
}

func New(repo *repository.Repository, bus events.Bus, enqueuer PipelineEnqueuer, log *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		bus:      bus,
		enqueuer: enqueuer,
		log:      log,
	}
}

// Ingest records a storm event, publishes StormIngested and schedules the
// discovery job when a scheduler is configured. Enqueue failures are logged
// and do not fail ingestion; discovery can always be triggered manually.
func (s *Service) Ingest(ctx context.Context, req transport.CreateStormRequest) (repository.StormEvent, error) {
	storm, err := s.repo.Create(ctx, repository.CreateStormParams{
		County:         req.County,
		State:          req.State,
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
		HailSizeInches: req.HailSizeInches,
		OccurredAt:     req.OccurredAt,
		Source:         req.Source,
	})
	if err != nil {
		s.log.DatabaseError("storm_create", err)
		return repository.StormEvent{}, apperr.Wrap(apperr.KindInternal, "failed to record storm event", err)
	}

	s.bus.Publish(ctx, events.StormIngested{
		BaseEvent:      events.NewBaseEvent(),
		StormEventID:   storm.ID,
		County:         storm.County,
		State:          storm.State,
		HailSizeInches: storm.HailSizeInches,
	})

	if s.enqueuer != nil {
		if err := s.enqueuer.EnqueueDiscovery(ctx, storm.ID); err != nil {
			s.log.Error("discovery enqueue failed", "error", err, "stormEventId", storm.ID)
		}
	}

	return storm, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (repository.StormEvent, error) {
	storm, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.StormEvent{}, apperr.NotFound("storm event not found")
	}
	if err != nil {
		s.log.DatabaseError("storm_get", err)
		return repository.StormEvent{}, apperr.Wrap(apperr.KindInternal, "failed to load storm event", err)
	}

	return storm, nil
}

func (s *Service) List(ctx context.Context, limit int) ([]repository.StormEvent, error) {
	storms, err := s.repo.List(ctx, limit)
	if err != nil {
		s.log.DatabaseError("storm_list", err)
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list storm events", err)
	}

	return storms, nil
}
