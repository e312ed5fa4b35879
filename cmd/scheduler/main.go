package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/discovery"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/events"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/geocoding"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/leads/promotion"
	leadrepo "github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/leads/repository"
	proprepo "github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/properties/repository"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/scheduler"
	stormrepo "github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/storms/repository"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/platform/config"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/platform/db"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/time/rate"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
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

	schedClient, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		panic("failed to initialize scheduler client: " + err.Error())
	}
	defer func() { _ = schedClient.Close() }()

	worker, err := scheduler.NewWorker(cfg, discoverySvc, promotionSvc, schedClient, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
