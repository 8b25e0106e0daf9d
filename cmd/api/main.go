package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/dermanow/dermanow/internal/auth"
	"github.com/dermanow/dermanow/internal/campaign"
	campaignStore "github.com/dermanow/dermanow/internal/campaign/store"
	"github.com/dermanow/dermanow/internal/catalog"
	catalogStore "github.com/dermanow/dermanow/internal/catalog/store"
	"github.com/dermanow/dermanow/internal/chat"
	chatStore "github.com/dermanow/dermanow/internal/chat/store"
	"github.com/dermanow/dermanow/internal/config"
	"github.com/dermanow/dermanow/internal/database"
	"github.com/dermanow/dermanow/internal/events"
	dermaHttp "github.com/dermanow/dermanow/internal/http"
	campaignHandler "github.com/dermanow/dermanow/internal/http/campaigns"
	catalogHandler "github.com/dermanow/dermanow/internal/http/catalog"
	chatHandler "github.com/dermanow/dermanow/internal/http/chat"
	importHandler "github.com/dermanow/dermanow/internal/http/importcsv"
	orderHandler "github.com/dermanow/dermanow/internal/http/orders"
	reportHandler "github.com/dermanow/dermanow/internal/http/reports"
	sessionHandler "github.com/dermanow/dermanow/internal/http/session"
	userHandler "github.com/dermanow/dermanow/internal/http/users"
	"github.com/dermanow/dermanow/internal/identity"
	identityCache "github.com/dermanow/dermanow/internal/identity/cache"
	identityStore "github.com/dermanow/dermanow/internal/identity/store"
	"github.com/dermanow/dermanow/internal/importer"
	"github.com/dermanow/dermanow/internal/metrics"
	"github.com/dermanow/dermanow/internal/order"
	orderStore "github.com/dermanow/dermanow/internal/order/store"
	"github.com/dermanow/dermanow/internal/report"
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if cfg.DB.Migrate {
		if err := database.Migrate(ctx, db); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	defer rdb.Close()

	publisher, closePublisher := newPublisher(cfg)

	metrics.Register()

	var (
		tokens          = auth.NewTokenManager(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
		identityService = identity.NewService(identityStore.New(db), identityCache.NewRedis(rdb, cfg.Redis.RoleTTL))
		orderService    = order.NewService(orderStore.New(db), publisher, identityService)
		chatService     = chat.NewService(chatStore.New(db), orderService)
		campaignService = campaign.NewService(campaignStore.New(db))
		catalogService  = catalog.NewService(catalogStore.New(db))
		importService   = importer.NewService(catalogService)
		reportService   = report.NewService(orderService, campaignService)
	)

	router := dermaHttp.New(
		dermaHttp.Options{AllowedOrigins: cfg.Server.AllowedOrigins, Tokens: tokens},
		dermaHttp.Handlers{
			Session:   sessionHandler.NewHandler(identityService, tokens),
			Users:     userHandler.NewHandler(identityService, tokens),
			Orders:    orderHandler.NewHandler(orderService),
			Chat:      chatHandler.NewHandler(chatService),
			Import:    importHandler.NewHandler(importService),
			Campaigns: campaignHandler.NewHandler(campaignService),
			Catalog:   catalogHandler.NewHandler(catalogService),
			Reports:   reportHandler.NewHandler(reportService),
		},
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
	}

	go func() {
		slog.Info("starting server", "port", srv.Addr, "env", cfg.App.Env)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shut down server", "error", err)
	}

	// Handlers have returned, so nothing publishes any more.
	closePublisher()
}

// newPublisher returns the Kafka producer when brokers are configured. The
// returned func flushes queued events and must run after the server stops.
func newPublisher(cfg *config.Config) (order.Publisher, func()) {
	if !cfg.KafkaEnabled() {
		slog.Info("kafka disabled, lifecycle events are dropped")
		return events.Discard{}, func() {}
	}

	p := events.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, 1024)
	p.Start()

	return p, p.Close
}
