// Package geocoding wraps the Nominatim reverse/forward geocoder and the
// Overpass building-footprint service. Every Nominatim call passes through a
// single shared rate limiter: the upstream enforces a strict per-IP cadence
// and a violation risks an IP ban for the whole system.
package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/natelasko528/wisconsin-hail-tracker-sub000/platform/config"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/platform/logger"

	"golang.org/x/time/rate"
)

const defaultSearchLimit = 10

// Client talks to a Nominatim-compatible geocoding service.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	userAgent  string
	log        *logger.Logger
}

// NewClient creates a geocoder client. The limiter is shared process-wide;
// construct it once in the composition root and inject it everywhere a
// client is built. Tests can pass rate.NewLimiter(rate.Inf, 0).
func NewClient(cfg config.GeocoderConfig, limiter *rate.Limiter, log *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    limiter,
		baseURL:    strings.TrimRight(cfg.GetNominatimBaseURL(), "/"),
		userAgent:  cfg.GetGeocoderContact(),
		log:        log,
	}
}

// ReverseGeocode resolves a point to address fields. It fails soft: any
// upstream error, decode failure, or unresolvable address yields ok=false
// and never an error. Placeholder "Near <place>" results are returned with
// Placeholder set so callers can exclude them from persistence.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) (Address, bool) {
	params := url.Values{}
	params.Add("lat", strconv.FormatFloat(lat, 'f', 7, 64))
	params.Add("lon", strconv.FormatFloat(lon, 'f', 7, 64))
	params.Add("format", "json")
	params.Add("addressdetails", "1")
	params.Add("zoom", "18")

	var raw nominatimResponse
	if err := c.get(ctx, "/reverse", params, &raw); err != nil {
		c.log.UpstreamError("nominatim", "reverse_geocode", err)
		return Address{}, false
	}

	addr, ok := buildAddress(raw)
	if !ok {
		return Address{}, false
	}
	return addr, true
}

// SearchAddress resolves a free-text query to candidate addresses with
// coordinates, capped at limit (default 10).
func (c *Client) SearchAddress(ctx context.Context, query string, limit int) ([]Suggestion, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	params := url.Values{}
	params.Add("q", query)
	params.Add("format", "json")
	params.Add("addressdetails", "1")
	params.Add("limit", strconv.Itoa(limit))
	params.Add("countrycodes", "us")

	var rawResults []nominatimResponse
	if err := c.get(ctx, "/search", params, &rawResults); err != nil {
		c.log.UpstreamError("nominatim", "search_address", err)
		return nil, err
	}

	suggestions := make([]Suggestion, 0, len(rawResults))
	for _, raw := range rawResults {
		suggestion, ok := buildSuggestion(raw)
		if !ok {
			continue
		}
		suggestions = append(suggestions, suggestion)
		if len(suggestions) == limit {
			break
		}
	}

	return suggestions, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("upstream api error: %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// buildAddress normalizes a reverse-geocode payload. Street preference:
// "{house_number} {road}", then road alone, then a building name, then a
// synthetic "Near {place}" placeholder.
func buildAddress(raw nominatimResponse) (Address, bool) {
	addr := Address{
		City:    pickCity(raw.Address),
		State:   raw.Address.State,
		ZipCode: raw.Address.Postcode,
		County:  raw.Address.County,
	}

	switch {
	case raw.Address.HouseNumber != "" && raw.Address.Road != "":
		addr.Street = raw.Address.HouseNumber + " " + raw.Address.Road
		addr.Accuracy = AccuracyRooftop
	case raw.Address.Road != "":
		addr.Street = raw.Address.Road
		addr.Accuracy = AccuracyStreet
	case raw.Address.Building != "":
		addr.Street = raw.Address.Building
		addr.Accuracy = AccuracyStreet
	case raw.Name != "":
		addr.Street = raw.Name
		addr.Accuracy = AccuracyStreet
	default:
		place := pickPlace(raw.Address)
		if place == "" {
			return Address{}, false
		}
		addr.Street = "Near " + place
		addr.Accuracy = AccuracyPlace
		addr.Placeholder = true
	}

	return addr, true
}

func buildSuggestion(raw nominatimResponse) (Suggestion, bool) {
	if raw.Address.Road == "" {
		return Suggestion{}, false
	}

	city := pickCity(raw.Address)
	if city == "" {
		return Suggestion{}, false
	}

	lat, err := strconv.ParseFloat(raw.Lat, 64)
	if err != nil {
		return Suggestion{}, false
	}
	lon, err := strconv.ParseFloat(raw.Lon, 64)
	if err != nil {
		return Suggestion{}, false
	}

	street := raw.Address.Road
	if raw.Address.HouseNumber != "" {
		street = raw.Address.HouseNumber + " " + raw.Address.Road
	}

	suggestion := Suggestion{
		Street:    street,
		City:      city,
		State:     raw.Address.State,
		ZipCode:   raw.Address.Postcode,
		Latitude:  lat,
		Longitude: lon,
	}
	suggestion.Label = buildLabel(suggestion)

	return suggestion, true
}

func pickCity(address nominatimAddress) string {
	if address.City != "" {
		return address.City
	}
	if address.Town != "" {
		return address.Town
	}
	if address.Village != "" {
		return address.Village
	}
	if address.Municipality != "" {
		return address.Municipality
	}
	return address.Hamlet
}

// pickPlace finds the nearest named place for placeholder addresses.
func pickPlace(address nominatimAddress) string {
	if address.Neighbourhood != "" {
		return address.Neighbourhood
	}
	if address.Suburb != "" {
		return address.Suburb
	}
	if city := pickCity(address); city != "" {
		return city
	}
	return address.County
}

func buildLabel(suggestion Suggestion) string {
	parts := []string{suggestion.Street + ","}
	if suggestion.City != "" {
		parts = append(parts, suggestion.City)
	}
	if suggestion.State != "" {
		parts = append(parts, suggestion.State)
	}
	if suggestion.ZipCode != "" {
		parts = append(parts, suggestion.ZipCode)
	}
	return strings.TrimSuffix(strings.TrimSpace(strings.Join(parts, " ")), ",")
}
