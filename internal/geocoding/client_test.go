package geocoding

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/natelasko528/wisconsin-hail-tracker-sub000/platform/logger"

	"golang.org/x/time/rate"
)

type testGeocoderConfig struct {
	nominatimURL string
	overpassURL  string
}

func (c testGeocoderConfig) GetNominatimBaseURL() string           { return c.nominatimURL }
func (c testGeocoderConfig) GetOverpassBaseURL() string            { return c.overpassURL }
func (c testGeocoderConfig) GetGeocoderContact() string            { return "hail-tracker-test/1.0 (test@example.com)" }
func (c testGeocoderConfig) GetGeocoderMinInterval() time.Duration { return 0 }

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(
		testGeocoderConfig{nominatimURL: server.URL},
		rate.NewLimiter(rate.Inf, 0),
		logger.New("development"),
	)
	return client, server
}

func TestReverseGeocodeRooftop(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/reverse" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if ua := r.Header.Get("User-Agent"); ua != "hail-tracker-test/1.0 (test@example.com)" {
			t.Errorf("unexpected user-agent %q", ua)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"lat": "43.0731", "lon": "-89.4012",
			"address": {
				"house_number": "123", "road": "N Main St",
				"city": "Madison", "county": "Dane County",
				"state": "Wisconsin", "postcode": "53703"
			}
		}`))
	}))

	addr, ok := client.ReverseGeocode(context.Background(), 43.0731, -89.4012)
	if !ok {
		t.Fatal("expected resolved address")
	}
	if addr.Street != "123 N Main St" {
		t.Errorf("street = %q, want %q", addr.Street, "123 N Main St")
	}
	if addr.Accuracy != AccuracyRooftop {
		t.Errorf("accuracy = %q, want rooftop", addr.Accuracy)
	}
	if addr.Placeholder {
		t.Error("rooftop address must not be a placeholder")
	}
	if addr.City != "Madison" || addr.ZipCode != "53703" || addr.County != "Dane County" {
		t.Errorf("unexpected address fields: %+v", addr)
	}
}

func TestReverseGeocodeRoadOnly(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"address": {"road": "County Road M", "town": "Verona", "postcode": "53593"}}`))
	}))

	addr, ok := client.ReverseGeocode(context.Background(), 42.99, -89.53)
	if !ok {
		t.Fatal("expected resolved address")
	}
	if addr.Street != "County Road M" {
		t.Errorf("street = %q, want road fallback", addr.Street)
	}
	if addr.Accuracy != AccuracyStreet {
		t.Errorf("accuracy = %q, want street", addr.Accuracy)
	}
	if addr.City != "Verona" {
		t.Errorf("city = %q, want town fallback", addr.City)
	}
}

func TestReverseGeocodePlaceholder(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"address": {"village": "Paoli", "county": "Dane County"}}`))
	}))

	addr, ok := client.ReverseGeocode(context.Background(), 42.93, -89.52)
	if !ok {
		t.Fatal("expected placeholder address")
	}
	if addr.Street != "Near Paoli" {
		t.Errorf("street = %q, want %q", addr.Street, "Near Paoli")
	}
	if !addr.Placeholder {
		t.Error("expected Placeholder to be set")
	}
	if addr.Accuracy != AccuracyPlace {
		t.Errorf("accuracy = %q, want place", addr.Accuracy)
	}
}

func TestReverseGeocodeSoftFailsOnUpstreamError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	if _, ok := client.ReverseGeocode(context.Background(), 43.0, -89.4); ok {
		t.Error("expected soft failure on upstream 500")
	}
}

func TestReverseGeocodeSoftFailsOnUnresolvablePoint(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"address": {}}`))
	}))

	if _, ok := client.ReverseGeocode(context.Background(), 43.0, -89.4); ok {
		t.Error("expected soft failure when no place component resolves")
	}
}

func TestSearchAddress(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("limit"); got != "5" {
			t.Errorf("limit = %q, want 5", got)
		}
		_, _ = w.Write([]byte(`[
			{"lat": "43.07", "lon": "-89.40",
			 "address": {"house_number": "10", "road": "State St", "city": "Madison", "state": "Wisconsin", "postcode": "53703"}},
			{"lat": "43.08", "lon": "-89.41",
			 "address": {"city": "Madison"}},
			{"lat": "bogus", "lon": "-89.41",
			 "address": {"road": "Johnson St", "city": "Madison"}}
		]`))
	}))

	suggestions, err := client.SearchAddress(context.Background(), "10 State St Madison", 5)
	if err != nil {
		t.Fatalf("SearchAddress: %v", err)
	}
	if len(suggestions) != 1 {
		t.Fatalf("got %d suggestions, want 1 (road-less and unparsable entries skipped)", len(suggestions))
	}
	s := suggestions[0]
	if s.Street != "10 State St" || s.City != "Madison" || s.Latitude != 43.07 {
		t.Errorf("unexpected suggestion: %+v", s)
	}
	if s.Label != "10 State St, Madison Wisconsin 53703" {
		t.Errorf("label = %q", s.Label)
	}
}

func TestSearchAddressUpstreamError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	if _, err := client.SearchAddress(context.Background(), "anything", 0); err == nil {
		t.Error("expected error from upstream 429")
	}
}
