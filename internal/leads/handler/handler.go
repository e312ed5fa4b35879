package handler

import (
	"net/http"
	"strconv"

	"github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/leads/domain"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/leads/repository"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/leads/service"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/leads/transport"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/platform/httpkit"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.GetByID)
	rg.PATCH("/:id/stage", h.UpdateStage)
}

func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	lead, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		httpkit.RespondError(c, err)
		return
	}

	httpkit.JSON(c, http.StatusCreated, transport.NewLeadResponse(lead))
}

func (h *Handler) List(c *gin.Context) {
	params := repository.ListLeadsParams{}

	if raw := c.Query("stormEventId"); raw != "" {
		stormID, err := uuid.Parse(raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid stormEventId", nil)
			return
		}
		params.StormEventID = &stormID
	}
	if raw := c.Query("stage"); raw != "" {
		stage := domain.Stage(raw)
		params.Stage = &stage
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			httpkit.Error(c, http.StatusBadRequest, "invalid limit", nil)
			return
		}
		params.Limit = limit
	}

	leads, err := h.svc.List(c.Request.Context(), params)
	if err != nil {
		httpkit.RespondError(c, err)
		return
	}

	httpkit.OK(c, transport.NewLeadResponses(leads))
}

func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	lead, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		httpkit.RespondError(c, err)
		return
	}

	httpkit.OK(c, transport.NewLeadResponse(lead))
}

func (h *Handler) UpdateStage(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.UpdateStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	lead, err := h.svc.UpdateStage(c.Request.Context(), id, domain.Stage(req.Stage))
	if err != nil {
		httpkit.RespondError(c, err)
		return
	}

	httpkit.OK(c, transport.NewLeadResponse(lead))
}
