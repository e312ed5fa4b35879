// Package properties provides the property inventory bounded context module:
// the discovered-property read surface and the per-storm impact ranking.
package properties

import (
	apphttp "github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/http"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/properties/handler"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/properties/repository"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the properties bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	repo    *repository.Repository
}

func NewModule(pool *pgxpool.Pool) *Module {
	repo := repository.New(pool)

	return &Module{
		handler: handler.New(repo),
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "properties"
}

// Repository exposes the property store for the discovery and promotion
// services wired in the composition root.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts property routes on the provided router context. The
// impact ranking lives under /storms/:id/impacts next to the other per-storm
// operations.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	propertiesGroup := ctx.V1.Group("/properties")
	m.handler.RegisterRoutes(propertiesGroup)

	ctx.V1.GET("/storms/:id/impacts", m.handler.ListStormImpacts)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
