package handler

import (
	"context"
	"net/http"

	"github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/discovery"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/leads/promotion"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/storms/service"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/storms/transport"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/platform/config"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/platform/httpkit"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Discoverer runs the property discovery pipeline for a storm.
type Discoverer interface {
	DiscoverPropertiesNearStorm(ctx context.Context, stormEventID uuid.UUID, radiusMiles float64, maxProperties int) (discovery.Summary, error)
}

// LeadPromoter promotes a storm's scored impacts into leads.
type LeadPromoter interface {
	CreateLeadsFromStorm(ctx context.Context, stormEventID uuid.UUID, minDamageProbability float64, limit int) (promotion.Summary, error)
}

type Handler struct {
	svc       *service.Service
	discovery Discoverer
	promotion LeadPromoter
	defaults  config.DiscoveryConfig
	val       *validator.Validator
}

func New(svc *service.Service, discoverer Discoverer, promoter LeadPromoter, defaults config.DiscoveryConfig, val *validator.Validator) *Handler {
	return &Handler{
		svc:       svc,
		discovery: discoverer,
		promotion: promoter,
		defaults:  defaults,
		val:       val,
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.GetByID)
	rg.POST("/:id/discover", h.Discover)
	rg.POST("/:id/leads", h.PromoteLeads)
}

func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateStormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	storm, err := h.svc.Ingest(c.Request.Context(), req)
	if err != nil {
		httpkit.RespondError(c, err)
		return
	}

	httpkit.JSON(c, http.StatusCreated, transport.NewStormResponse(storm))
}

func (h *Handler) List(c *gin.Context) {
	storms, err := h.svc.List(c.Request.Context(), 0)
	if err != nil {
		httpkit.RespondError(c, err)
		return
	}

	httpkit.OK(c, transport.NewStormResponses(storms))
}

func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	storm, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		httpkit.RespondError(c, err)
		return
	}

	httpkit.OK(c, transport.NewStormResponse(storm))
}

// Discover runs property discovery synchronously. A run can take minutes at
// Nominatim cadence, so large radii are better routed through the scheduler;
// this endpoint is the manual trigger.
func (h *Handler) Discover(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	req := transport.DiscoverRequest{}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
			return
		}
		if err := h.val.Struct(req); err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
			return
		}
	}

	radius := h.defaults.GetDiscoveryRadiusMiles()
	if req.RadiusMiles != nil {
		radius = *req.RadiusMiles
	}
	maxProperties := h.defaults.GetDiscoveryMaxProperties()
	if req.MaxProperties != nil {
		maxProperties = *req.MaxProperties
	}

	summary, err := h.discovery.DiscoverPropertiesNearStorm(c.Request.Context(), id, radius, maxProperties)
	if err != nil {
		httpkit.RespondError(c, err)
		return
	}

	httpkit.OK(c, summary)
}

func (h *Handler) PromoteLeads(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	req := transport.PromoteLeadsRequest{}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
			return
		}
		if err := h.val.Struct(req); err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
			return
		}
	}

	minProbability := h.defaults.GetLeadMinDamageProbability()
	if req.MinDamageProbability != nil {
		minProbability = *req.MinDamageProbability
	}
	limit := h.defaults.GetLeadPromotionLimit()
	if req.Limit != nil {
		limit = *req.Limit
	}

	summary, err := h.promotion.CreateLeadsFromStorm(c.Request.Context(), id, minProbability, limit)
	if err != nil {
		httpkit.RespondError(c, err)
		return
	}

	httpkit.OK(c, summary)
}
