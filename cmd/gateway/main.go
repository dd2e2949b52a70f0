package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"audiora/internal/config"
	"audiora/internal/events"
	"audiora/internal/gateway"
	"audiora/internal/observability"
	"audiora/internal/observability/logging"
	"audiora/internal/observability/metrics"
	"audiora/internal/providers/recognizer"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.LoadGateway()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid gateway configuration")
	}
	logging.Init(cfg.Log.Logging())
	gin.SetMode(gin.ReleaseMode)

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("gateway stopped with error")
	}
}

func run(cfg config.GatewayConfig) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	publisher := events.New(events.Config{
		Enabled: cfg.Kafka.Enabled,
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
	}, metrics.DefaultMetrics)
	defer publisher.Close()

	engine := recognizer.NewClient(recognizer.Config{URL: cfg.EngineURL, Timeout: cfg.EngineTimeout})
	handler := gateway.NewHandler(engine, publisher, metrics.DefaultMetrics, cfg.MaxUploadBytes)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           gateway.NewRouter(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	var obs *observability.Server
	if cfg.Metrics.Addr != "" {
		obs = observability.NewServer(cfg.Metrics.Addr)
		obs.Start()
		obs.SetReady(true)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.Addr).Str("engine", cfg.EngineURL).Msg("upload gateway started")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down upload gateway")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if obs != nil {
			obs.SetReady(false)
			if err := obs.Shutdown(shutdownCtx); err != nil {
				log.Warn().Err(err).Msg("observability server shutdown failed")
			}
		}
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
