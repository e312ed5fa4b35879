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

	"github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/geo"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/platform/config"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/platform/logger"
)

// FootprintClient queries an Overpass-compatible API for building footprints.
// Unlike Nominatim there is no cadence limiter; the query is bounded by the
// server-side timeout instead.
type FootprintClient struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	log        *logger.Logger
}

// NewFootprintClient creates an Overpass client.
func NewFootprintClient(cfg config.GeocoderConfig, log *logger.Logger) *FootprintClient {
	return &FootprintClient{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    cfg.GetOverpassBaseURL(),
		userAgent:  cfg.GetGeocoderContact(),
		log:        log,
	}
}

type overpassElement struct {
	Type   string  `json:"type"`
	ID     int64   `json:"id"`
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Center *struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"center"`
	Tags map[string]string `json:"tags"`
}

type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

// FindBuildingsInArea returns addressed buildings within radiusMiles of the
// center, restricted to features carrying a house-number tag. The radius is
// converted to a bounding box with the equirectangular approximation, so
// corner results can sit slightly beyond the radius; callers re-check with
// the returned haversine distance when it matters.
func (c *FootprintClient) FindBuildingsInArea(ctx context.Context, centerLat, centerLon, radiusMiles float64) ([]Building, error) {
	south, west, north, east := geo.BoundingBox(centerLat, centerLon, radiusMiles)

	query := fmt.Sprintf(`[out:json][timeout:50];
nwr["building"]["addr:housenumber"](%f,%f,%f,%f);
out center tags;`, south, west, north, east)

	form := url.Values{}
	form.Set("data", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.UpstreamError("overpass", "find_buildings", err)
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("upstream api error: %d", resp.StatusCode)
		c.log.UpstreamError("overpass", "find_buildings", err)
		return nil, err
	}

	var payload overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.log.UpstreamError("overpass", "find_buildings", err)
		return nil, err
	}

	buildings := make([]Building, 0, len(payload.Elements))
	for _, element := range payload.Elements {
		building, ok := buildBuilding(element, centerLat, centerLon)
		if !ok {
			continue
		}
		buildings = append(buildings, building)
	}

	return buildings, nil
}

func buildBuilding(element overpassElement, centerLat, centerLon float64) (Building, bool) {
	houseNumber := element.Tags["addr:housenumber"]
	street := element.Tags["addr:street"]
	if houseNumber == "" || street == "" {
		return Building{}, false
	}

	lat, lon := element.Lat, element.Lon
	if element.Center != nil {
		lat, lon = element.Center.Lat, element.Center.Lon
	}
	if lat == 0 && lon == 0 {
		return Building{}, false
	}

	return Building{
		Street:        houseNumber + " " + street,
		City:          element.Tags["addr:city"],
		State:         element.Tags["addr:state"],
		ZipCode:       element.Tags["addr:postcode"],
		Latitude:      lat,
		Longitude:     lon,
		DistanceMiles: geo.DistanceMiles(centerLat, centerLon, lat, lon),
		BuildingID:    element.Type + "/" + strconv.FormatInt(element.ID, 10),
	}, true
}
