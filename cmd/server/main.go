package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"studio-wizard-backend/internal/catalog"
	"studio-wizard-backend/internal/config"
	"studio-wizard-backend/internal/events"
	"studio-wizard-backend/internal/handlers"
	"studio-wizard-backend/internal/logging"
	"studio-wizard-backend/internal/persistence"
	"studio-wizard-backend/internal/session"
	"studio-wizard-backend/internal/simclock"
	"studio-wizard-backend/internal/supabase"
	"studio-wizard-backend/internal/validation"
	"studio-wizard-backend/internal/wizard"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cat := catalog.Default()
	if cfg.CatalogPath != "" {
		cat, err = catalog.Load(cfg.CatalogPath)
		if err != nil {
			logger.Fatal("failed to load model catalog", zap.String("path", cfg.CatalogPath), zap.Error(err))
		}
	}

	store, closeStore, err := openStore(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize persistence", zap.String("backend", cfg.PersistenceBackend), zap.Error(err))
	}
	defer closeStore()

	notifier, closeNotifier := openNotifier(ctx, cfg, logger)
	defer closeNotifier()

	var quality validation.QualityChecker = validation.NewRandomQuality(cfg.QualityFailureRate, nil)
	if cfg.QualityServiceURL != "" {
		quality = validation.NewRemoteQuality(cfg.QualityServiceURL, cfg.QualityServiceAPIKey)
		logger.Info("using remote quality service", zap.String("url", cfg.QualityServiceURL))
	}

	clock := simclock.Real()
	validator := validation.NewSimulator(validation.WithClock(clock), validation.WithQuality(quality))

	registry := session.NewRegistry(func(id uuid.UUID) *wizard.Controller {
		return wizard.New(wizard.Options{
			ID:         id,
			Clock:      clock,
			Catalog:    cat,
			Validator:  validator,
			Persister:  store,
			Notifier:   notifier,
			Logger:     logger,
			PreviewURL: handlers.PreviewURL,
		})
	}, clock, logger)

	if _, err := session.ScheduleJanitor(ctx, registry, cfg.SessionSweepSchedule, cfg.SessionIdleTimeout); err != nil {
		logger.Fatal("failed to schedule session janitor", zap.Error(err))
	}

	router := handlers.NewRouter(handlers.RouterConfig{
		Registry:       registry,
		Catalog:        cat,
		Store:          store,
		Logger:         logger,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("port", cfg.Port), zap.String("persistence", cfg.PersistenceBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func openStore(cfg *config.Config, logger *zap.Logger) (persistence.Store, func(), error) {
	switch cfg.PersistenceBackend {
	case config.BackendPostgres:
		db, err := persistence.OpenPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := persistence.NewMigrator(db, logger).Run(); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		logger.Info("migrations completed")
		return persistence.NewPostgresStore(db), func() { _ = db.Close() }, nil

	case config.BackendSupabase:
		table, err := supabase.NewTable(cfg.SupabaseURL, cfg.SupabasePublishableKey, cfg.SupabaseDraftsTable)
		if err != nil {
			return nil, nil, err
		}
		objects := supabase.NewStorageClient(cfg.SupabaseURL, cfg.SupabasePublishableKey, cfg.SupabaseStorageBucket)
		return persistence.NewSupabaseStore(objects, table), func() {}, nil
	}

	logger.Warn("saved projects are kept in memory and lost on restart")
	return persistence.NewMemoryStore(), func() {}, nil
}

func openNotifier(ctx context.Context, cfg *config.Config, logger *zap.Logger) (wizard.Notifier, func()) {
	if cfg.RedisURL == "" {
		return events.Nop{}, func() {}
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Warn("invalid REDIS_URL, session events disabled", zap.Error(err))
		return events.Nop{}, func() {}
	}
	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unavailable, session events disabled", zap.Error(err))
		_ = client.Close()
		return events.Nop{}, func() {}
	}
	return events.NewRedisPublisher(client), func() { _ = client.Close() }
}
