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
	apphttp "github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/http"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/http/router"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/leads"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/leads/promotion"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/maps"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/properties"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/scheduler"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/storms"
	stormrepo "github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/storms/repository"
	stormservice "github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/storms/service"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/platform/config"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/platform/db"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/platform/logger"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/time/rate"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

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
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	// One process-wide limiter serializes every Nominatim call; the upstream
	// service enforces a strict per-IP cadence and a violation risks an IP
	// ban for the whole deployment.
	nominatimLimiter := rate.NewLimiter(rate.Every(cfg.GeocoderMinInterval), 1)

	geocoder := geocoding.NewClient(cfg, nominatimLimiter, log)
	cachedGeocoder := geocoding.NewCachedReverseGeocoder(geocoder, cfg.GeocodeCacheSize)
	footprints := geocoding.NewFootprintClient(cfg, log)

	var enqueuer stormservice.PipelineEnqueuer
	if cfg.IsSchedulerEnabled() {
		schedClient, err := scheduler.NewClient(cfg)
		if err != nil {
			log.Error("failed to initialize scheduler client", "error", err)
			panic("failed to initialize scheduler client: " + err.Error())
		}
		defer func() { _ = schedClient.Close() }()
		enqueuer = schedClient
	} else {
		log.Warn("REDIS_URL not configured; background discovery disabled")
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	propertiesModule := properties.NewModule(pool)
	leadsModule := leads.NewModule(pool, eventBus, val, log)
	mapsModule := maps.NewModule(geocoder)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	// Discovery and promotion span the storms, properties and leads contexts,
	// so they are assembled here rather than inside a module.
	stormStore := stormrepo.New(pool)
	discoverySvc := discovery.New(
		stormStore,
		propertiesModule.Repository(),
		cachedGeocoder,
		footprints,
		eventBus,
		rng,
		cfg.DefaultPropertyValue,
		log,
	)
	promotionSvc := promotion.New(
		stormStore,
		propertiesModule.Repository(),
		leadsModule.Repository(),
		eventBus,
		log,
	)
	stormsModule := storms.NewModule(pool, eventBus, val, cfg, log, enqueuer, discoverySvc, promotionSvc)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   pool,
		EventBus: eventBus,
		Modules: []apphttp.Module{
			stormsModule,
			propertiesModule,
			leadsModule,
			mapsModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = shutdownCtx
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
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
