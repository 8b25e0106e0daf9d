package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/dermanow/dermanow/internal/config"
	"github.com/dermanow/dermanow/internal/database"
	"github.com/dermanow/dermanow/internal/events"
	"github.com/dermanow/dermanow/internal/metrics"
	"github.com/dermanow/dermanow/internal/order"
	orderStore "github.com/dermanow/dermanow/internal/order/store"
	"github.com/dermanow/dermanow/internal/settlement"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if cfg.App.Env != "dev" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	}

	if !cfg.KafkaEnabled() {
		slog.Error("settlement needs KAFKA_BROKERS")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	defer rdb.Close()

	metrics.Register()

	// Completion events go back on the same topic for other consumers.
	producer := events.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, 256)
	producer.Start()

	var (
		// Settlement only moves existing orders, it never creates one.
		orderService = order.NewService(orderStore.New(db), producer, nil)
		settler      = settlement.New(orderService, settlement.NewRedisDeduper(rdb, cfg.Settlement.DedupTTL))
		consumer     = events.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Group, cfg.Kafka.Topic, cfg.Kafka.Workers)
	)

	slog.Info("settlement started", "topic", cfg.Kafka.Topic, "group", cfg.Kafka.Group, "workers", cfg.Kafka.Workers)

	if err := consumer.Start(ctx, settler.Handle); err != nil {
		slog.Error("consumer stopped", "error", err)
		stop()
	}

	// Start has waited for the workers, so no handler publishes after this.
	producer.Close()
	slog.Info("settlement stopped")
}
