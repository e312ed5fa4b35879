// Package discovery implements the storm to candidate-property pipeline:
// footprint lookup, sampled reverse geocoding, dedup, scoring and persistence.
package discovery

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/events"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/geo"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/geocoding"
	proprepo "github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/properties/repository"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/scoring"
	stormrepo "github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/storms/repository"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/platform/apperr"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/platform/logger"

	"github.com/google/uuid"
)

const (
	// DefaultRadiusMiles is the discovery radius when none is requested.
	DefaultRadiusMiles = 5.0
	// DefaultMaxProperties bounds a discovery run when no target is requested.
	DefaultMaxProperties = 100

	// maxFootprintRadiusMiles caps the footprint query regardless of the
	// requested radius; broader footprint queries are unreliable and slow
	// on the upstream service.
	maxFootprintRadiusMiles = 3.0

	// Synthetic roof-age range assigned when the real age is unknown.
	// Downstream scoring requires an age, and most of the housing stock in
	// the covered counties falls in this band.
	minEstimatedRoofAge  = 8
	estimatedRoofAgeSpan = 18 // ages drawn from [8, 25]

	dataSourceFootprint = "osm_footprint"
	dataSourceSampled   = "reverse_geocode"

	sampleLimit = 10
)

// StormStore resolves the storm a discovery run is anchored to.
type StormStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (stormrepo.StormEvent, error)
}

// PropertyStore persists discovered properties and their impact rows.
type PropertyStore interface {
	FindOrCreate(ctx context.Context, params proprepo.CreatePropertyParams) (proprepo.Property, bool, error)
	UpsertImpact(ctx context.Context, params proprepo.UpsertImpactParams) (proprepo.Impact, error)
}

// FootprintFinder queries building footprints around the storm center.
type FootprintFinder interface {
	FindBuildingsInArea(ctx context.Context, centerLat, centerLon, radiusMiles float64) ([]geocoding.Building, error)
}

type Service struct {
	storms     StormStore
	properties PropertyStore
	geocoder   geocoding.ReverseGeocoder
	footprints FootprintFinder
	bus        events.Bus
	log        *logger.Logger

	propertyValue int

	// rng backs point sampling and roof-age estimates. rand.Rand is not
	// safe for concurrent use; runs for different storms may overlap.
	mu  sync.Mutex
	rng *rand.Rand
}

func New(
	storms StormStore,
	properties PropertyStore,
	geocoder geocoding.ReverseGeocoder,
	footprints FootprintFinder,
	bus events.Bus,
	rng *rand.Rand,
	defaultPropertyValue int,
	log *logger.Logger,
) *Service {
	if defaultPropertyValue <= 0 {
		defaultPropertyValue = scoring.DefaultPropertyValue
	}
	return &Service{
		storms:        storms,
		properties:    properties,
		geocoder:      geocoder,
		footprints:    footprints,
		bus:           bus,
		log:           log,
		propertyValue: defaultPropertyValue,
		rng:           rng,
	}
}

// PropertySample is one row of the bounded result preview.
type PropertySample struct {
	PropertyID        uuid.UUID `json:"propertyId"`
	StreetAddress     string    `json:"streetAddress"`
	City              string    `json:"city"`
	ZipCode           string    `json:"zipCode"`
	DistanceMiles     float64   `json:"distanceMiles"`
	DamageProbability float64   `json:"damageProbability"`
	PriorityScore     int       `json:"priorityScore"`
}

// Summary reports the outcome of a discovery run. Partial success, such as
// 40 of 100 candidates saved, is a valid outcome and not an error.
type Summary struct {
	StormEventID    uuid.UUID        `json:"stormEventId"`
	PropertiesFound int              `json:"propertiesFound"`
	PropertiesSaved int              `json:"propertiesSaved"`
	ImpactsRecorded int              `json:"impactsRecorded"`
	Samples         []PropertySample `json:"samples"`
}

type candidate struct {
	street        string
	city          string
	state         string
	zipCode       string
	county        string
	latitude      float64
	longitude     float64
	distanceMiles float64
	accuracy      string
	dataSource    string
	buildingID    *string
}

// DiscoverPropertiesNearStorm assembles the candidate property set around a
// storm, persists new properties, and records one impact row per property.
// Only a missing storm or a storm without coordinates fails the call; every
// per-candidate failure is logged and skipped.
func (s *Service) DiscoverPropertiesNearStorm(ctx context.Context, stormEventID uuid.UUID, radiusMiles float64, maxProperties int) (Summary, error) {
	if radiusMiles <= 0 {
		radiusMiles = DefaultRadiusMiles
	}
	if maxProperties <= 0 {
		maxProperties = DefaultMaxProperties
	}

	storm, err := s.storms.GetByID(ctx, stormEventID)
	if errors.Is(err, stormrepo.ErrNotFound) {
		return Summary{}, apperr.NotFound("storm event not found")
	}
	if err != nil {
		return Summary{}, apperr.Wrap(apperr.KindInternal, "failed to load storm event", err)
	}
	if storm.Latitude == 0 && storm.Longitude == 0 {
		return Summary{}, apperr.NotFound("storm event has no coordinates")
	}

	candidates := s.collectFootprintCandidates(ctx, storm, radiusMiles)

	// Footprints alone often cover only the dense part of the radius.
	// Top up with sampled reverse-geocode probes when the yield is thin.
	if len(candidates) < maxProperties/2 {
		candidates = append(candidates, s.collectSampledCandidates(ctx, storm, radiusMiles, maxProperties-len(candidates))...)
	}

	candidates = dedupCandidates(candidates)
	if len(candidates) > maxProperties {
		candidates = candidates[:maxProperties]
	}

	summary := Summary{
		StormEventID:    storm.ID,
		PropertiesFound: len(candidates),
		Samples:         make([]PropertySample, 0, sampleLimit),
	}

	daysSinceStorm := int(time.Since(storm.OccurredAt).Hours() / 24)

	for _, cand := range candidates {
		sample, created, err := s.persistCandidate(ctx, storm, cand, daysSinceStorm)
		if err != nil {
			s.log.CandidateSkipped("discovery", cand.street, err)
			continue
		}
		if created {
			summary.PropertiesSaved++
		}
		summary.ImpactsRecorded++
		if len(summary.Samples) < sampleLimit {
			summary.Samples = append(summary.Samples, sample)
		}
	}

	s.bus.Publish(ctx, events.DiscoveryCompleted{
		BaseEvent:       events.NewBaseEvent(),
		StormEventID:    storm.ID,
		PropertiesFound: summary.PropertiesFound,
		PropertiesSaved: summary.PropertiesSaved,
		ImpactsRecorded: summary.ImpactsRecorded,
	})

	s.log.Info("discovery completed",
		"stormEventId", storm.ID,
		"found", summary.PropertiesFound,
		"saved", summary.PropertiesSaved,
		"impacted", summary.ImpactsRecorded,
	)

	return summary, nil
}

func (s *Service) collectFootprintCandidates(ctx context.Context, storm stormrepo.StormEvent, radiusMiles float64) []candidate {
	footprintRadius := min(radiusMiles, maxFootprintRadiusMiles)

	buildings, err := s.footprints.FindBuildingsInArea(ctx, storm.Latitude, storm.Longitude, footprintRadius)
	if err != nil {
		// Soft failure: discovery continues on sampled probes alone.
		s.log.UpstreamError("overpass", "discovery_footprints", err)
		return nil
	}

	candidates := make([]candidate, 0, len(buildings))
	for _, b := range buildings {
		buildingID := b.BuildingID
		candidates = append(candidates, candidate{
			street:        b.Street,
			city:          b.City,
			state:         b.State,
			zipCode:       b.ZipCode,
			county:        storm.County,
			latitude:      b.Latitude,
			longitude:     b.Longitude,
			distanceMiles: b.DistanceMiles,
			accuracy:      geocoding.AccuracyRooftop,
			dataSource:    dataSourceFootprint,
			buildingID:    &buildingID,
		})
	}

	return candidates
}

func (s *Service) collectSampledCandidates(ctx context.Context, storm stormrepo.StormEvent, radiusMiles float64, target int) []candidate {
	if target <= 0 {
		return nil
	}

	candidates := make([]candidate, 0, target)
	budget := 2 * target

	for attempt := 0; attempt < budget && len(candidates) < target; attempt++ {
		if ctx.Err() != nil {
			break
		}

		lat, lon := s.randomPoint(storm.Latitude, storm.Longitude, radiusMiles)

		addr, ok := s.geocoder.ReverseGeocode(ctx, lat, lon)
		if !ok || addr.Placeholder {
			continue
		}

		county := addr.County
		if county == "" {
			county = storm.County
		}

		candidates = append(candidates, candidate{
			street:        addr.Street,
			city:          addr.City,
			state:         addr.State,
			zipCode:       addr.ZipCode,
			county:        county,
			latitude:      lat,
			longitude:     lon,
			distanceMiles: geo.DistanceMiles(storm.Latitude, storm.Longitude, lat, lon),
			accuracy:      addr.Accuracy,
			dataSource:    dataSourceSampled,
		})
	}

	return candidates
}

func (s *Service) persistCandidate(ctx context.Context, storm stormrepo.StormEvent, cand candidate, daysSinceStorm int) (PropertySample, bool, error) {
	roofAge := s.estimateRoofAge()

	property, created, err := s.properties.FindOrCreate(ctx, proprepo.CreatePropertyParams{
		StreetAddress:      cand.street,
		City:               cand.city,
		State:              cand.state,
		ZipCode:            cand.zipCode,
		County:             cand.county,
		Latitude:           cand.latitude,
		Longitude:          cand.longitude,
		PropertyType:       "residential",
		RoofAgeYears:       &roofAge,
		RoofAgeEstimated:   true,
		DataSource:         cand.dataSource,
		GeocodeAccuracy:    cand.accuracy,
		ExternalBuildingID: cand.buildingID,
	})
	if err != nil {
		return PropertySample{}, false, err
	}

	// An existing property may carry a real roof age from enrichment; it
	// wins over this run's estimate.
	if property.RoofAgeYears != nil {
		roofAge = *property.RoofAgeYears
	}

	probability, factors := scoring.DamageProbability(storm.HailSizeInches, cand.distanceMiles, roofAge, property.RoofType)
	hasPhone := property.OwnerPhone != nil && *property.OwnerPhone != ""
	priority := scoring.PriorityScore(probability, s.propertyValue, daysSinceStorm, hasPhone)

	_, err = s.properties.UpsertImpact(ctx, proprepo.UpsertImpactParams{
		StormEventID:       storm.ID,
		PropertyID:         property.ID,
		DistanceMiles:      cand.distanceMiles,
		HailSizeAtLocation: scoring.HailSizeAtDistance(storm.HailSizeInches, cand.distanceMiles),
		DamageProbability:  probability,
		PriorityScore:      priority,
		DamageFactors:      factors,
	})
	if err != nil {
		return PropertySample{}, false, err
	}

	return PropertySample{
		PropertyID:        property.ID,
		StreetAddress:     property.StreetAddress,
		City:              property.City,
		ZipCode:           property.ZipCode,
		DistanceMiles:     cand.distanceMiles,
		DamageProbability: probability,
		PriorityScore:     priority,
	}, created, nil
}

func (s *Service) randomPoint(centerLat, centerLon, radiusMiles float64) (float64, float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return geo.RandomPointInRadius(s.rng, centerLat, centerLon, radiusMiles)
}

func (s *Service) estimateRoofAge() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(estimatedRoofAgeSpan) + minEstimatedRoofAge
}

// dedupCandidates drops later candidates that collide on the address+zip key.
// Footprint candidates come first in the slice, so they win over sampled ones.
func dedupCandidates(candidates []candidate) []candidate {
	seen := make(map[string]struct{}, len(candidates))
	deduped := make([]candidate, 0, len(candidates))

	for _, cand := range candidates {
		if cand.street == "" {
			continue
		}
		key := geo.DedupKey(cand.street, cand.zipCode)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, cand)
	}

	return deduped
}
