package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"resort-facilities-backend/config"
	"resort-facilities-backend/internal/api"
	"resort-facilities-backend/internal/booking"
	"resort-facilities-backend/internal/db"
	"resort-facilities-backend/internal/identity"
	"resort-facilities-backend/internal/metrics"
	"resort-facilities-backend/internal/notification"
	"resort-facilities-backend/internal/refresh"
	"resort-facilities-backend/internal/slot"
	"resort-facilities-backend/internal/store"
	"resort-facilities-backend/internal/stream"
)

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

func main() {
	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration from %s: %v\n", configPath, err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)
	logger.Info("configuration loaded", zap.String("path", configPath))

	if cfg.Auth.JWTSecret == "" {
		logger.Fatal("auth.jwt_secret must be configured")
	}

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appStore := store.NewGormStore(gormDB)
	broker := stream.NewBroker()
	m := metrics.New(prometheus.DefaultRegisterer)
	grid := slot.NewGrid(cfg.Booking.Location, cfg.Booking.FirstWeekday)

	opts := []booking.Option{
		booking.WithPublisher(broker),
		booking.WithMetrics(m),
		booking.WithLogger(logger),
	}

	webpushOptions := webpush.Options{
		VAPIDPublicKey:  cfg.Push.PublicKey,
		VAPIDPrivateKey: cfg.Push.PrivateKey,
		Subscriber:      cfg.Push.Subject,
		TTL:             cfg.Push.TTL,
	}
	if cfg.Push.Enabled() {
		pool := notification.NewWorkerPool(cfg.WorkerPool.Size, gormDB, &webpushOptions, m)
		pool.Start(ctx)
		opts = append(opts, booking.WithNotifier(pool))
		logger.Info("push notifications enabled", zap.Int("workers", cfg.WorkerPool.Size))
	} else {
		logger.Warn("VAPID keys not configured, push notifications disabled")
	}

	bookings := booking.NewHandler(appStore, grid, booking.NewPending(cfg.Booking.PendingTTL()), opts...)

	refreshSvc := refresh.NewService(cfg.Refresh, appStore, broker)
	go refreshSvc.Run(ctx)

	router := api.NewRouter(cfg.Server, api.Deps{
		Store:    appStore,
		Bookings: bookings,
		Broker:   broker,
		Verifier: identity.NewProvider(cfg.Auth.JWTSecret, cfg.Auth.Issuer),
		WebPush:  &webpushOptions,
		Metrics:  m,
		Gatherer: prometheus.DefaultGatherer,
	})
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("HTTP server starting", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server ListenAndServe", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received, stopping services")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("HTTP server Shutdown", zap.Error(err))
	}
	logger.Info("server gracefully stopped")
}
