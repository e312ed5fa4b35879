// Command storm-discover runs the discovery and promotion pipeline for every
// storm that has no impact records yet. Useful after bulk storm imports or
// when the scheduler was down during ingestion.
package main

import (
	"context"
	"math/rand"
	"time"

	"github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/discovery"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/events"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/geocoding"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/leads/promotion"
	leadrepo "github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/leads/repository"
	proprepo "github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/properties/repository"
	stormrepo "github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/storms/repository"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/platform/config"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/platform/db"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/platform/logger"

	"golang.org/x/time/rate"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting storm discovery backfill")

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	eventBus := events.NewInMemoryBus(log)

	nominatimLimiter := rate.NewLimiter(rate.Every(cfg.GeocoderMinInterval), 1)
	geocoder := geocoding.NewClient(cfg, nominatimLimiter, log)
	cachedGeocoder := geocoding.NewCachedReverseGeocoder(geocoder, cfg.GeocodeCacheSize)
	footprints := geocoding.NewFootprintClient(cfg, log)

	stormStore := stormrepo.New(pool)
	propertyStore := proprepo.New(pool)
	leadStore := leadrepo.New(pool)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	discoverySvc := discovery.New(stormStore, propertyStore, cachedGeocoder, footprints, eventBus, rng, cfg.DefaultPropertyValue, log)
	promotionSvc := promotion.New(stormStore, propertyStore, leadStore, eventBus, log)

	const batchSize = 10
	for {
		storms, err := stormStore.ListWithoutImpacts(ctx, batchSize)
		if err != nil {
			log.Error("failed to list storms", "error", err)
			return
		}
		if len(storms) == 0 {
			log.Info("no storms left to process")
			return
		}

		progress := false

		for _, storm := range storms {
			summary, err := discoverySvc.DiscoverPropertiesNearStorm(ctx, storm.ID,
				cfg.GetDiscoveryRadiusMiles(), cfg.GetDiscoveryMaxProperties())
			if err != nil {
				log.Error("discovery failed", "stormEventId", storm.ID, "error", err)
				continue
			}

			log.Info("storm discovered",
				"stormEventId", storm.ID,
				"county", storm.County,
				"found", summary.PropertiesFound,
				"saved", summary.PropertiesSaved,
				"impacted", summary.ImpactsRecorded,
			)

			if summary.ImpactsRecorded == 0 {
				continue
			}
			progress = true

			promoted, err := promotionSvc.CreateLeadsFromStorm(ctx, storm.ID,
				cfg.GetLeadMinDamageProbability(), cfg.GetLeadPromotionLimit())
			if err != nil {
				log.Error("promotion failed", "stormEventId", storm.ID, "error", err)
				continue
			}

			log.Info("storm leads promoted",
				"stormEventId", storm.ID,
				"created", promoted.Created,
				"skipped", promoted.Skipped,
			)
		}

		if !progress {
			log.Info("no discovery progress in batch, stopping")
			return
		}
	}
}
