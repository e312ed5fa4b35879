package scheduler

import (
	"context"
	"fmt"

	"github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/discovery"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/internal/leads/promotion"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/platform/config"
	"github.com/natelasko528/wisconsin-hail-tracker-sub000/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	discovery *discovery.Service
	promotion *promotion.Service
	client    *Client
	cfg       *config.Config
	log       *logger.Logger
}

// NewWorker builds the asynq worker handling the storm pipeline tasks.
// The client is used to chain promotion after a completed discovery run;
// it may be nil, in which case promotion has to be triggered separately.
func NewWorker(cfg *config.Config, discoverySvc *discovery.Service, promotionSvc *promotion.Service, client *Client, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:    server,
		mux:       mux,
		discovery: discoverySvc,
		promotion: promotionSvc,
		client:    client,
		cfg:       cfg,
		log:       log,
	}

	mux.HandleFunc(TaskStormDiscover, w.handleStormDiscover)
	mux.HandleFunc(TaskStormPromoteLeads, w.handleStormPromoteLeads)

	return w, nil
}

func (w *Worker) handleStormDiscover(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseStormPipelinePayload(task)
	if err != nil {
		return err
	}

	stormID, err := uuid.Parse(payload.StormEventID)
	if err != nil {
		return err
	}

	summary, err := w.discovery.DiscoverPropertiesNearStorm(ctx, stormID,
		w.cfg.GetDiscoveryRadiusMiles(), w.cfg.GetDiscoveryMaxProperties())
	if err != nil {
		return err
	}

	w.log.Info("scheduled discovery finished",
		"stormEventId", stormID,
		"found", summary.PropertiesFound,
		"saved", summary.PropertiesSaved,
		"impacted", summary.ImpactsRecorded,
	)

	// Chain promotion so ingested storms produce leads without a manual
	// trigger. Failure to enqueue is not worth retrying the whole run.
	if w.client != nil && summary.ImpactsRecorded > 0 {
		if err := w.client.EnqueuePromotion(ctx, stormID); err != nil {
			w.log.Error("promotion enqueue failed", "error", err, "stormEventId", stormID)
		}
	}

	return nil
}

func (w *Worker) handleStormPromoteLeads(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseStormPipelinePayload(task)
	if err != nil {
		return err
	}

	stormID, err := uuid.Parse(payload.StormEventID)
	if err != nil {
		return err
	}

	summary, err := w.promotion.CreateLeadsFromStorm(ctx, stormID,
		w.cfg.GetLeadMinDamageProbability(), w.cfg.GetLeadPromotionLimit())
	if err != nil {
		return err
	}

	w.log.Info("scheduled promotion finished",
		"stormEventId", stormID,
		"created", summary.Created,
		"skipped", summary.Skipped,
	)

	return nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
