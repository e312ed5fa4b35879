package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/properties/repository"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/properties/transport"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const msgInvalidRequest = "invalid request"

type Handler struct {
	repo *repository.Repository
}

func New(repo *repository.Repository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/:id", h.GetByID)
}

func (h *Handler) List(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			httpkit.Error(c, http.StatusBadRequest, "invalid limit", nil)
			return
		}
		limit = parsed
	}

	properties, err := h.repo.List(c.Request.Context(), limit)
	if err != nil {
		httpkit.Error(c, http.StatusInternalServerError, "failed to list properties", nil)
		return
	}

	httpkit.OK(c, transport.NewPropertyResponses(properties))
}

func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	property, err := h.repo.GetByID(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		httpkit.Error(c, http.StatusNotFound, "property not found", nil)
		return
	}
	if err != nil {
		httpkit.Error(c, http.StatusInternalServerError, "failed to load property", nil)
		return
	}

	httpkit.OK(c, transport.NewPropertyResponse(property))
}

// ListStormImpacts serves the ranked impact list for one storm. It mounts
// under the storms path but belongs to this context because impacts are
// stored with properties.
func (h *Handler) ListStormImpacts(c *gin.Context) {
	stormID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	minProbability := 0.0
	if raw := c.Query("minDamageProbability"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed < 0 || parsed > 1 {
			httpkit.Error(c, http.StatusBadRequest, "invalid minDamageProbability", nil)
			return
		}
		minProbability = parsed
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			httpkit.Error(c, http.StatusBadRequest, "invalid limit", nil)
			return
		}
		limit = parsed
	}

	impacts, err := h.repo.ListImpacts(c.Request.Context(), stormID, minProbability, limit)
	if err != nil {
		httpkit.Error(c, http.StatusInternalServerError, "failed to list impacts", nil)
		return
	}

	httpkit.OK(c, transport.NewImpactResponses(impacts))
}
