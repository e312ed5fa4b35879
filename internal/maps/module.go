package maps

import (
	apphttp "github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/http"
)

// Module wires the address lookup HTTP routes.
type Module struct {
	handler *Handler
}

func NewModule(searcher AddressSearcher) *Module {
	return &Module{handler: NewHandler(searcher)}
}

func (m *Module) Name() string {
	return "maps"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/maps")
	group.GET("/address-lookup", m.handler.LookupAddress)
}

var _ apphttp.Module = (*Module)(nil)
