package maps

import (
	"context"
	"net/http"

	"github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/geocoding"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// AddressSearcher resolves free-text queries to candidate addresses.
type AddressSearcher interface {
	SearchAddress(ctx context.Context, query string, limit int) ([]geocoding.Suggestion, error)
}

// LookupRequest represents the query parameters from the frontend.
type LookupRequest struct {
	Query string `form:"q" binding:"required,min=3"`
	Limit int    `form:"limit" binding:"omitempty,gt=0,lte=10"`
}

// AddressSuggestion is the normalized data returned to the frontend form.
type AddressSuggestion struct {
	Label     string  `json:"label"`
	Street    string  `json:"street"`
	City      string  `json:"city"`
	State     string  `json:"state"`
	ZipCode   string  `json:"zipCode"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Handler exposes the address lookup endpoint.
type Handler struct {
	searcher AddressSearcher
}

func NewHandler(searcher AddressSearcher) *Handler {
	return &Handler{searcher: searcher}
}

// LookupAddress handles GET /api/v1/maps/address-lookup?q=...
func (h *Handler) LookupAddress(c *gin.Context) {
	var req LookupRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "query 'q' is required (min 3 chars)", nil)
		return
	}

	suggestions, err := h.searcher.SearchAddress(c.Request.Context(), req.Query, req.Limit)
	if err != nil {
		httpkit.Error(c, http.StatusBadGateway, "address lookup service unavailable", nil)
		return
	}

	results := make([]AddressSuggestion, 0, len(suggestions))
	for _, s := range suggestions {
		results = append(results, AddressSuggestion{
			Label:     s.Label,
			Street:    s.Street,
			City:      s.City,
			State:     s.State,
			ZipCode:   s.ZipCode,
			Latitude:  s.Latitude,
			Longitude: s.Longitude,
		})
	}

	httpkit.OK(c, results)
}
