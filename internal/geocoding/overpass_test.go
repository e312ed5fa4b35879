package geocoding

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/natelasko528/wisconsin-hail-tracker-sub000/platform/logger"
)

func newTestFootprintClient(t *testing.T, handler http.Handler) *FootprintClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewFootprintClient(testGeocoderConfig{overpassURL: server.URL}, logger.New("development"))
}

func TestFindBuildingsInArea(t *testing.T) {
	client := newTestFootprintClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		query := r.PostForm.Get("data")
		if !strings.Contains(query, `"addr:housenumber"`) {
			t.Errorf("query missing house-number restriction: %q", query)
		}
		_, _ = w.Write([]byte(`{"elements": [
			{"type": "way", "id": 101,
			 "center": {"lat": 43.074, "lon": -89.402},
			 "tags": {"addr:housenumber": "123", "addr:street": "N Main St", "addr:city": "Madison", "addr:postcode": "53703"}},
			{"type": "node", "id": 202, "lat": 43.075, "lon": -89.403,
			 "tags": {"addr:housenumber": "77", "addr:street": "W Gorham St"}},
			{"type": "way", "id": 303,
			 "center": {"lat": 43.076, "lon": -89.404},
			 "tags": {"building": "yes"}}
		]}`))
	}))

	buildings, err := client.FindBuildingsInArea(context.Background(), 43.0731, -89.4012, 3)
	if err != nil {
		t.Fatalf("FindBuildingsInArea: %v", err)
	}
	if len(buildings) != 2 {
		t.Fatalf("got %d buildings, want 2 (untagged feature excluded)", len(buildings))
	}

	first := buildings[0]
	if first.Street != "123 N Main St" {
		t.Errorf("street = %q", first.Street)
	}
	if first.BuildingID != "way/101" {
		t.Errorf("building id = %q, want way/101", first.BuildingID)
	}
	if first.DistanceMiles <= 0 || first.DistanceMiles > 1 {
		t.Errorf("distance = %v, want small positive value", first.DistanceMiles)
	}

	if buildings[1].BuildingID != "node/202" {
		t.Errorf("building id = %q, want node/202", buildings[1].BuildingID)
	}
}

func TestFindBuildingsInAreaUpstreamError(t *testing.T) {
	client := newTestFootprintClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGatewayTimeout)
	}))

	if _, err := client.FindBuildingsInArea(context.Background(), 43.0731, -89.4012, 3); err == nil {
		t.Error("expected error from upstream 504")
	}
}
