package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bhakti2406/local-service-finder/internal/api"
	"github.com/bhakti2406/local-service-finder/internal/auth"
	"github.com/bhakti2406/local-service-finder/internal/config"
	"github.com/bhakti2406/local-service-finder/internal/database"
	"github.com/bhakti2406/local-service-finder/internal/events"
	"github.com/bhakti2406/local-service-finder/internal/export"
	"github.com/bhakti2406/local-service-finder/internal/logging"
	"github.com/bhakti2406/local-service-finder/internal/metrics"
	"github.com/bhakti2406/local-service-finder/internal/realtime"
	"github.com/bhakti2406/local-service-finder/internal/repository"
	"github.com/bhakti2406/local-service-finder/internal/service"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer func() { _ = closer.Close() }()
	}

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return err
	}
	defer db.Close()

	redisClient := initRedis(cfg, &logger)
	if redisClient != nil {
		defer redisClient.Close()
	}
	presence := buildPresence(redisClient, &logger)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	bus := events.NewEventBus()

	hub := realtime.NewHub(cfg.Realtime.SendBuffer, &logger)
	realtime.NewBridge(hub, bus, &logger)
	realtimeHandler := realtime.NewHandler(hub, tokens, presence, cfg.Realtime, &logger)

	deps := api.Deps{
		Users:    service.NewUserService(db, tokens, &logger),
		Bookings: service.NewBookingService(db, bus, &logger),
		Messages: service.NewMessageService(db, presence, bus, cfg.Chat, &logger),
		Catalog:  service.NewCatalogService(db, db, &logger),
		Exporter: export.NewExporter(cfg.Exports.Path, &logger),
		Tokens:   tokens,
		Realtime: realtimeHandler,
	}
	httpServer := api.NewHTTPServer(cfg.Server, deps, &logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startMetrics(ctx, cfg, &logger)

	if cfg.Backup.Enabled {
		backups := database.NewBackupService(cfg.Database.Path, cfg.Backup, &logger)
		go backups.Start(ctx)
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()
	logger.Info().Int("port", cfg.Server.Port).Msg("server started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)

	logger.Info().Msg("server stopped")
	return nil
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "server-main").Logger()

	return cfg, logger, closer, nil
}

func initRedis(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if !cfg.Redis.Enabled || cfg.Redis.Address == "" {
		return nil
	}

	client := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(context.Background(), client); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return client
}

// buildPresence prefers Redis with an in-memory fallback so that presence and
// chat rate limits survive a Redis outage.
func buildPresence(client *redis.Client, logger *zerolog.Logger) repository.PresenceRepository {
	memory := repository.NewMemoryPresenceRepository(2 * time.Minute)
	if client == nil {
		return memory
	}
	primary := repository.NewRedisPresenceRepository(client, 2*time.Minute)
	return repository.NewFailoverPresenceRepository(primary, memory, logger)
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
