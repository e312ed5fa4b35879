// Package leads provides the lead pipeline bounded context module.
package leads

import (
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/events"
	apphttp "github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/http"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/leads/handler"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/leads/repository"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/leads/service"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/platform/logger"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	repo    *repository.Repository
	svc     *service.Service
}

// NewModule creates and initializes the leads module with all its dependencies.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, eventBus, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		repo:    repo,
		svc:     svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Repository exposes the lead store for the promotion service wired in the
// composition root.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts leads routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	leadsGroup := ctx.V1.Group("/leads")
	m.handler.RegisterRoutes(leadsGroup)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
