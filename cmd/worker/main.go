package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"no-lights-schedule/cmd/worker/views"
	"no-lights-schedule/internal/config"
	"no-lights-schedule/internal/logger"
	"no-lights-schedule/internal/metrics"
	"no-lights-schedule/internal/mq"
	"no-lights-schedule/internal/outage"
)

func main() {
	// Load .env if present.
	_ = godotenv.Load()

	log := logger.New("worker")
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

	// --- RabbitMQ ---
	publisher, err := mq.NewPublisher(cfg.RabbitMQURL)
	if err != nil {
		log.Errorf("rabbitmq publisher: %v", err)
		os.Exit(1)
	}
	defer publisher.Close()

	consumer, err := mq.NewConsumer(cfg.RabbitMQURL)
	if err != nil {
		log.Errorf("rabbitmq consumer: %v", err)
		os.Exit(1)
	}
	defer consumer.Close()
	log.Infof("rabbitmq connected")

	// --- Datasets ---
	rec, err := metrics.NewProm(nil)
	if err != nil {
		log.Errorf("metrics: %v", err)
		os.Exit(1)
	}
	fetcher := outage.NewFetcher(outage.NewSources(cfg.Sources), cfg.FetchIntervalSec, outage.WithMetrics(rec))
	go fetcher.Start(ctx)

	// --- Metrics endpoint ---
	metricsApp := metrics.NewApp(nil)
	go func() {
		if err := metricsApp.Listen(":" + cfg.MetricsPort); err != nil {
			log.Warnf("metrics listener: %v", err)
		}
	}()
	defer func() { _ = metricsApp.Shutdown() }()
	log.Infof("metrics on :%s/metrics", cfg.MetricsPort)

	// --- Render requests ---
	handler := views.NewHandler(fetcher, publisher, cfg.DefaultGroup, rec)
	go func() {
		if err := handler.Listen(ctx, consumer); err != nil {
			log.Errorf("listen: %v", err)
			cancel()
		}
	}()
	log.Infof("render worker started")

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}
	log.Infof("shutting down worker...")
	cancel()
}
