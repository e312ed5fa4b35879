// Package storms provides the storm-event bounded context module: ingestion,
// lookup, and the manual discovery/promotion triggers.
package storms

import (
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/events"
	apphttp "github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/http"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/storms/handler"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/storms/repository"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/storms/service"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/platform/config"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/platform/logger"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the storms bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	repo    *repository.Repository
	svc     *service.Service
}

// NewModule wires the storms module. The discovery and promotion services are
// built in the composition root because they span bounded contexts.
func NewModule(
	pool *pgxpool.Pool,
	eventBus events.Bus,
	val *validator.Validator,
	cfg *config.Config,
	log *logger.Logger,
	enqueuer service.PipelineEnqueuer,
	discoverer handler.Discoverer,
	promoter handler.LeadPromoter,
) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, eventBus, enqueuer, log)
	h := handler.New(svc, discoverer, promoter, cfg, val)

	return &Module{
		handler: h,
		repo:    repo,
		svc:     svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "storms"
}

// Repository exposes the storm store for cross-context services wired in the
// composition root.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts storm routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	stormsGroup := ctx.V1.Group("/storms")
	m.handler.RegisterRoutes(stormsGroup)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
