package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"

	"no-lights-schedule/internal/cache"
	"no-lights-schedule/internal/config"
	"no-lights-schedule/internal/logger"
	"no-lights-schedule/internal/metrics"
	"no-lights-schedule/internal/mq"
	"no-lights-schedule/internal/outage"
	"no-lights-schedule/internal/schedule"
)

func main() {
	// Load .env if present.
	_ = godotenv.Load()

	log := logger.New("server")
	cfg, err := config.Load()
	if err != nil {
		log.Errorf("config: %v", err)
		os.Exit(1)
	}
	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		log.Warnf("log level %q: %v", cfg.LogLevel, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Metrics ---
	rec, err := metrics.NewProm(nil)
	if err != nil {
		log.Errorf("metrics: %v", err)
		os.Exit(1)
	}

	h := &outage.Handlers{
		CacheTTL:     time.Duration(cfg.CacheTTLSec) * time.Second,
		DefaultGroup: cfg.DefaultGroup,
		Metrics:      rec,
		Log:          logger.New("api"),
	}

	// --- Redis ---
	// Views are rendered on every request when Redis is unavailable.
	redisCache, err := cache.New(cfg.RedisURL)
	if err != nil {
		log.Warnf("redis: %v; serving without view cache", err)
	} else {
		defer redisCache.Close()
		h.Cache = redisCache
		log.Infof("redis connected")
	}

	// --- RabbitMQ ---
	var notifier *mq.UpdateNotifier
	publisher, err := mq.NewPublisher(cfg.RabbitMQURL)
	if err != nil {
		log.Warnf("rabbitmq: %v; updates will not be announced, render requests disabled", err)
	} else {
		defer publisher.Close()
		notifier = mq.NewUpdateNotifier(publisher)
		h.Renders = mq.NewRenderRequester(publisher)
		log.Infof("rabbitmq connected")
	}

	onUpdate := func(ctx context.Context, e *outage.Entry) {
		if h.Cache != nil {
			if _, err := redisCache.DropRegion(ctx, e.Region); err != nil {
				log.Warnf("drop cached views of %s: %v", e.Region, err)
			}
		}
		if notifier != nil {
			notifier.NotifyUpdated(ctx, e.Region, e.ContentHash, e.Dataset.LastUpdate(time.Now()), schedule.DatasetGroups(e.Dataset))
		}
	}

	// --- Dataset fetcher ---
	fetcher := outage.NewFetcher(outage.NewSources(cfg.Sources), cfg.FetchIntervalSec,
		outage.WithMetrics(rec), outage.WithOnUpdate(onUpdate))
	h.Store = fetcher
	go fetcher.Start(ctx)
	log.Infof("fetcher started for %d region(s)", len(cfg.Sources))

	// --- Fiber HTTP Server ---
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New())

	h.RegisterRoutes(app.Group("/api"))
	app.Get("/metrics", metrics.Handler(nil))

	// --- Graceful shutdown ---
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Infof("shutting down...")
		cancel()
		_ = app.Shutdown()
	}()

	log.Infof("server starting on :%s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Errorf("server: %v", err)
		os.Exit(1)
	}
}
