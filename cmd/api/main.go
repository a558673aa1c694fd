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

	"miles/internal/api"
	"miles/internal/catalog"
	"miles/internal/config"
	"miles/internal/domain"
	"miles/internal/events"
	"miles/internal/logging"
	"miles/internal/metrics"
	"miles/internal/models"
	"miles/internal/notify"
	"miles/internal/repository"
	"miles/internal/resend"
	"miles/internal/service"
	"miles/internal/supabase"
	"miles/internal/wizard"
	"miles/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
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
		defer (func() { _ = closer.Close() })()
	}

	redisClient := initRedis(cfg, &logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	experiences, err := loadExperiences(cfg, &logger)
	if err != nil {
		return err
	}

	states := initStateRepository(cfg, redisClient, &logger)
	cat := catalog.New(experiences)
	wiz := wizard.NewManager(states, cat, cfg.Booking.MaxGuests)

	supabaseClient := supabase.NewClient(cfg.Supabase.URL, cfg.Supabase.AnonKey)
	resendClient := resend.NewClient(cfg.Resend.APIKey)
	notifier := notify.NewClient(cfg.Booking.NotifyEndpoint)
	bus := events.NewEventBus()
	bindEventLogging(bus, &logger)

	bookings := service.NewBookingService(cat, notifier, supabaseClient, bus, &logger)

	httpServer := api.NewHTTPServer(cfg, cat, wiz, bookings, supabaseClient, supabaseClient, resendClient, bus, &logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startMetrics(ctx, cfg, &logger)
	startReportWorker(ctx, cfg, supabaseClient, bus, &logger)

	return startServer(ctx, httpServer, cfg, &logger)
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
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

// loadExperiences prefers the catalog embedded in the config and falls
// back to the experiences file.
func loadExperiences(cfg *config.Config, logger *zerolog.Logger) ([]models.Experience, error) {
	if len(cfg.Experiences) > 0 {
		return cfg.Experiences, nil
	}

	path := os.Getenv("EXPERIENCES_PATH")
	if path == "" {
		path = "configs/experiences.yaml"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error().Err(err).Str("experiences_path", path).Msg("read experiences")
		return nil, err
	}

	var parsed struct {
		Experiences []models.Experience `yaml:"experiences"`
	}
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		logger.Error().Err(err).Str("experiences_path", path).Msg("parse experiences")
		return nil, err
	}
	if err := config.ValidateExperiences(parsed.Experiences); err != nil {
		return nil, err
	}

	return parsed.Experiences, nil
}

func bindEventLogging(bus *events.EventBus, logger *zerolog.Logger) {
	for _, eventType := range []string{
		events.EventBookingCreated,
		events.EventEmailSent,
		events.EventEmailFailed,
		events.EventContactReceived,
	} {
		eventType := eventType
		bus.Subscribe(eventType, func(event *events.Event) error {
			logger.Info().Str("event", eventType).RawJSON("payload", event.Payload).Msg("domain event")
			return nil
		})
	}
}

func initRedis(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

// initStateRepository wires sessions through redis with an in-memory
// fallback. Without redis, sessions live in process memory only.
func initStateRepository(cfg *config.Config, redisClient *redis.Client, logger *zerolog.Logger) domain.StateRepository {
	ttl := time.Duration(cfg.Booking.SessionTTLSeconds) * time.Second
	memory := repository.NewMemoryStateRepository(ttl)
	if redisClient == nil {
		logger.Warn().Msg("sessions are in-memory only, restarts drop active bookings")
		return memory
	}
	primary := repository.NewRedisStateRepository(redisClient, ttl)
	return repository.NewFailoverStateRepository(primary, memory, logger)
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

func startReportWorker(ctx context.Context, cfg *config.Config, source worker.ReportSource, bus *events.EventBus, logger *zerolog.Logger) {
	if cfg.Exports.Path == "" {
		return
	}
	if err := os.MkdirAll(cfg.Exports.Path, 0o755); err != nil {
		logger.Warn().Err(err).Str("dir", cfg.Exports.Path).Msg("report dir unavailable, reports disabled")
		return
	}

	interval := time.Duration(cfg.Exports.IntervalMinutes) * time.Minute
	reportLogger := logger.With().Str("component", "report-worker").Logger()
	reports := worker.NewReportWorker(source, cfg.Exports.Path, interval, worker.RetryPolicy{}, &reportLogger)
	reports.BindEvents(bus)
	go reports.Run(ctx)
}

func startServer(ctx context.Context, httpServer *api.HTTPServer, cfg *config.Config, logger *zerolog.Logger) error {
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	logger.Info().Int("http_port", cfg.API.HTTP.Port).Msg("API server started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown failed")
	}

	logger.Info().Msg("API server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info().Int("port", port).Msg("metrics server started")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server stopped")
	}
}
