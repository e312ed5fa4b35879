package discovery

import (
	"context"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/events"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/geocoding"
	proprepo "github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/properties/repository"
	stormrepo "github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/storms/repository"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/platform/apperr"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/platform/logger"

	"github.com/google/uuid"
)

type fakeStormStore struct {
	storms map[uuid.UUID]stormrepo.StormEvent
}

func (f *fakeStormStore) GetByID(ctx context.Context, id uuid.UUID) (stormrepo.StormEvent, error) {
	storm, ok := f.storms[id]
	if !ok {
		return stormrepo.StormEvent{}, stormrepo.ErrNotFound
	}
	return storm, nil
}

type fakePropertyStore struct {
	properties  map[string]proprepo.Property
	impacts     map[string]proprepo.UpsertImpactParams
	failStreets map[string]bool
}

func newFakePropertyStore() *fakePropertyStore {
	return &fakePropertyStore{
		properties:  make(map[string]proprepo.Property),
		impacts:     make(map[string]proprepo.UpsertImpactParams),
		failStreets: make(map[string]bool),
	}
}

func (f *fakePropertyStore) addressKey(street, city, zip string) string {
	return strings.ToLower(street) + "|" + strings.ToLower(city) + "|" + zip
}

func (f *fakePropertyStore) FindOrCreate(ctx context.Context, params proprepo.CreatePropertyParams) (proprepo.Property, bool, error) {
	if f.failStreets[params.StreetAddress] {
		return proprepo.Property{}, false, context.DeadlineExceeded
	}

	key := f.addressKey(params.StreetAddress, params.City, params.ZipCode)
	if existing, ok := f.properties[key]; ok {
		return existing, false, nil
	}

	property := proprepo.Property{
		ID:               uuid.New(),
		StreetAddress:    params.StreetAddress,
		City:             params.City,
		State:            params.State,
		ZipCode:          params.ZipCode,
		County:           params.County,
		Latitude:         params.Latitude,
		Longitude:        params.Longitude,
		PropertyType:     params.PropertyType,
		RoofAgeYears:     params.RoofAgeYears,
		RoofAgeEstimated: params.RoofAgeEstimated,
		DataSource:       params.DataSource,
		GeocodeAccuracy:  params.GeocodeAccuracy,
	}
	f.properties[key] = property
	return property, true, nil
}

func (f *fakePropertyStore) UpsertImpact(ctx context.Context, params proprepo.UpsertImpactParams) (proprepo.Impact, error) {
	key := params.StormEventID.String() + "|" + params.PropertyID.String()
	f.impacts[key] = params
	return proprepo.Impact{
		ID:                uuid.New(),
		StormEventID:      params.StormEventID,
		PropertyID:        params.PropertyID,
		DamageProbability: params.DamageProbability,
		PriorityScore:     params.PriorityScore,
	}, nil
}

type fakeFootprints struct {
	buildings []geocoding.Building
	err       error
	calls     int
}

func (f *fakeFootprints) FindBuildingsInArea(ctx context.Context, lat, lon, radiusMiles float64) ([]geocoding.Building, error) {
	f.calls++
	return f.buildings, f.err
}

type scriptedGeocoder struct {
	addresses []geocoding.Address
	calls     int
}

func (g *scriptedGeocoder) ReverseGeocode(ctx context.Context, lat, lon float64) (geocoding.Address, bool) {
	g.calls++
	if len(g.addresses) == 0 {
		return geocoding.Address{}, false
	}
	addr := g.addresses[0]
	g.addresses = g.addresses[1:]
	return addr, true
}

func newTestService(storms *fakeStormStore, props *fakePropertyStore, geocoder geocoding.ReverseGeocoder, footprints *fakeFootprints) *Service {
	log := logger.New("development")
	return New(storms, props, geocoder, footprints, events.NewInMemoryBus(log), rand.New(rand.NewSource(42)), 250000, log)
}

func testStorm() stormrepo.StormEvent {
	return stormrepo.StormEvent{
		ID:             uuid.New(),
		County:         "Dane",
		State:          "WI",
		Latitude:       43.07,
		Longitude:      -89.40,
		HailSizeInches: 2.5,
		OccurredAt:     time.Now().Add(-48 * time.Hour),
	}
}

func TestDiscoverStormNotFound(t *testing.T) {
	svc := newTestService(
		&fakeStormStore{storms: map[uuid.UUID]stormrepo.StormEvent{}},
		newFakePropertyStore(), &scriptedGeocoder{}, &fakeFootprints{},
	)

	_, err := svc.DiscoverPropertiesNearStorm(context.Background(), uuid.New(), 5, 100)
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("err = %v, want not-found", err)
	}
}

func TestDiscoverStormWithoutCoordinates(t *testing.T) {
	storm := testStorm()
	storm.Latitude, storm.Longitude = 0, 0
	svc := newTestService(
		&fakeStormStore{storms: map[uuid.UUID]stormrepo.StormEvent{storm.ID: storm}},
		newFakePropertyStore(), &scriptedGeocoder{}, &fakeFootprints{},
	)

	_, err := svc.DiscoverPropertiesNearStorm(context.Background(), storm.ID, 5, 100)
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("err = %v, want not-found", err)
	}
}

func TestDiscoverFootprintsOnly(t *testing.T) {
	storm := testStorm()
	footprints := &fakeFootprints{buildings: []geocoding.Building{
		{Street: "1 Elm St", City: "Madison", ZipCode: "53703", Latitude: 43.071, Longitude: -89.401, DistanceMiles: 0.1, BuildingID: "way/1"},
		{Street: "2 Elm St", City: "Madison", ZipCode: "53703", Latitude: 43.072, Longitude: -89.402, DistanceMiles: 0.2, BuildingID: "way/2"},
		{Street: "3 Elm St", City: "Madison", ZipCode: "53703", Latitude: 43.073, Longitude: -89.403, DistanceMiles: 0.3, BuildingID: "way/3"},
	}}
	geocoder := &scriptedGeocoder{}
	props := newFakePropertyStore()
	svc := newTestService(&fakeStormStore{storms: map[uuid.UUID]stormrepo.StormEvent{storm.ID: storm}}, props, geocoder, footprints)

	summary, err := svc.DiscoverPropertiesNearStorm(context.Background(), storm.ID, 5, 4)
	if err != nil {
		t.Fatalf("DiscoverPropertiesNearStorm: %v", err)
	}

	if summary.PropertiesFound != 3 || summary.PropertiesSaved != 3 || summary.ImpactsRecorded != 3 {
		t.Errorf("summary = %+v, want 3/3/3", summary)
	}
	if geocoder.calls != 0 {
		t.Errorf("geocoder called %d times, want 0 when footprints satisfy half the target", geocoder.calls)
	}
	if len(summary.Samples) != 3 {
		t.Errorf("samples = %d, want 3", len(summary.Samples))
	}
	for _, impact := range props.impacts {
		if impact.DamageProbability <= 0 || impact.DamageProbability > 0.99 {
			t.Errorf("damage probability %v out of range", impact.DamageProbability)
		}
		if impact.PriorityScore < 1 || impact.PriorityScore > 100 {
			t.Errorf("priority score %d out of range", impact.PriorityScore)
		}
	}
}

func TestDiscoverSupplementsWithSampling(t *testing.T) {
	storm := testStorm()
	footprints := &fakeFootprints{buildings: []geocoding.Building{
		{Street: "1 Elm St", City: "Madison", ZipCode: "53703", Latitude: 43.071, Longitude: -89.401, DistanceMiles: 0.1, BuildingID: "way/1"},
	}}
	geocoder := &scriptedGeocoder{addresses: []geocoding.Address{
		{Street: "9 Oak Ave", City: "Madison", ZipCode: "53703", Accuracy: geocoding.AccuracyRooftop},
		{Street: "Near Paoli", Placeholder: true, Accuracy: geocoding.AccuracyPlace},
		{Street: "1 ELM ST", City: "Madison", ZipCode: "53703", Accuracy: geocoding.AccuracyRooftop},
		{Street: "12 Pine Rd", City: "Madison", ZipCode: "53711", Accuracy: geocoding.AccuracyStreet},
	}}
	props := newFakePropertyStore()
	svc := newTestService(&fakeStormStore{storms: map[uuid.UUID]stormrepo.StormEvent{storm.ID: storm}}, props, geocoder, footprints)

	summary, err := svc.DiscoverPropertiesNearStorm(context.Background(), storm.ID, 5, 10)
	if err != nil {
		t.Fatalf("DiscoverPropertiesNearStorm: %v", err)
	}

	// 1 footprint + 3 sampled, minus the case-insensitive duplicate of the
	// footprint address; the placeholder never becomes a candidate.
	if summary.PropertiesFound != 3 {
		t.Errorf("found = %d, want 3", summary.PropertiesFound)
	}
	if summary.PropertiesSaved != 3 {
		t.Errorf("saved = %d, want 3", summary.PropertiesSaved)
	}
	if len(props.properties) != 3 {
		t.Errorf("stored %d properties, want 3", len(props.properties))
	}
	for _, p := range props.properties {
		if strings.HasPrefix(p.StreetAddress, "Near ") {
			t.Errorf("placeholder address persisted: %q", p.StreetAddress)
		}
		if p.RoofAgeYears == nil || *p.RoofAgeYears < 8 || *p.RoofAgeYears > 25 {
			t.Errorf("roof age estimate out of range: %+v", p.RoofAgeYears)
		}
		if !p.RoofAgeEstimated {
			t.Error("synthetic roof age must be flagged as estimated")
		}
	}
}

func TestDiscoverIdempotent(t *testing.T) {
	storm := testStorm()
	footprints := &fakeFootprints{buildings: []geocoding.Building{
		{Street: "1 Elm St", City: "Madison", ZipCode: "53703", Latitude: 43.071, Longitude: -89.401, DistanceMiles: 0.1, BuildingID: "way/1"},
		{Street: "2 Elm St", City: "Madison", ZipCode: "53703", Latitude: 43.072, Longitude: -89.402, DistanceMiles: 0.2, BuildingID: "way/2"},
	}}
	props := newFakePropertyStore()
	svc := newTestService(&fakeStormStore{storms: map[uuid.UUID]stormrepo.StormEvent{storm.ID: storm}}, props, &scriptedGeocoder{}, footprints)

	first, err := svc.DiscoverPropertiesNearStorm(context.Background(), storm.ID, 5, 4)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := svc.DiscoverPropertiesNearStorm(context.Background(), storm.ID, 5, 4)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if first.PropertiesSaved != 2 {
		t.Errorf("first saved = %d, want 2", first.PropertiesSaved)
	}
	if second.PropertiesSaved != 0 {
		t.Errorf("second saved = %d, want 0 (existing properties reused)", second.PropertiesSaved)
	}
	if second.ImpactsRecorded != 2 {
		t.Errorf("second impacted = %d, want 2 (upsert, not duplicate)", second.ImpactsRecorded)
	}
	if len(props.properties) != 2 || len(props.impacts) != 2 {
		t.Errorf("stored %d properties / %d impacts, want 2/2", len(props.properties), len(props.impacts))
	}
}

func TestDiscoverContinuesPastCandidateFailure(t *testing.T) {
	storm := testStorm()
	footprints := &fakeFootprints{buildings: []geocoding.Building{
		{Street: "1 Elm St", City: "Madison", ZipCode: "53703", Latitude: 43.071, Longitude: -89.401, DistanceMiles: 0.1, BuildingID: "way/1"},
		{Street: "2 Elm St", City: "Madison", ZipCode: "53703", Latitude: 43.072, Longitude: -89.402, DistanceMiles: 0.2, BuildingID: "way/2"},
		{Street: "3 Elm St", City: "Madison", ZipCode: "53703", Latitude: 43.073, Longitude: -89.403, DistanceMiles: 0.3, BuildingID: "way/3"},
	}}
	props := newFakePropertyStore()
	props.failStreets["2 Elm St"] = true
	svc := newTestService(&fakeStormStore{storms: map[uuid.UUID]stormrepo.StormEvent{storm.ID: storm}}, props, &scriptedGeocoder{}, footprints)

	summary, err := svc.DiscoverPropertiesNearStorm(context.Background(), storm.ID, 5, 6)
	if err != nil {
		t.Fatalf("partial failure must not fail the batch: %v", err)
	}

	if summary.PropertiesFound != 3 {
		t.Errorf("found = %d, want 3", summary.PropertiesFound)
	}
	if summary.PropertiesSaved != 2 || summary.ImpactsRecorded != 2 {
		t.Errorf("saved/impacted = %d/%d, want 2/2", summary.PropertiesSaved, summary.ImpactsRecorded)
	}
}

func TestDiscoverFootprintFailureFallsBackToSampling(t *testing.T) {
	storm := testStorm()
	footprints := &fakeFootprints{err: context.DeadlineExceeded}
	geocoder := &scriptedGeocoder{addresses: []geocoding.Address{
		{Street: "9 Oak Ave", City: "Madison", ZipCode: "53703", Accuracy: geocoding.AccuracyRooftop},
	}}
	props := newFakePropertyStore()
	svc := newTestService(&fakeStormStore{storms: map[uuid.UUID]stormrepo.StormEvent{storm.ID: storm}}, props, geocoder, footprints)

	summary, err := svc.DiscoverPropertiesNearStorm(context.Background(), storm.ID, 5, 10)
	if err != nil {
		t.Fatalf("footprint failure must be soft: %v", err)
	}

	if summary.PropertiesFound != 1 || summary.PropertiesSaved != 1 {
		t.Errorf("summary = %+v, want one sampled property", summary)
	}
}
