package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/swdee/go-posture/config"
	"github.com/swdee/go-posture/extractor"
	"github.com/swdee/go-posture/pipeline"
	"github.com/swdee/go-posture/rules"
	"github.com/swdee/go-posture/server"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()

	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	zerolog.SetGlobalLevel(cfg.LogLevel)

	normalizer, err := cfg.Normalizer()

	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create frame normalizer")
	}

	evaluator, err := rules.NewEvaluator(cfg.Thresholds)

	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create rule evaluator")
	}

	// create pool of extractor sessions, one per concurrent request
	pool, err := extractor.NewPool(cfg.PoolSize, cfg.ModelFile, cfg.Detection)

	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create extractor pool")
	}

	defer pool.Close()

	svc := pipeline.NewService(normalizer, pool, evaluator, cfg.ServiceOptions(), logger)

	app := server.New(svc, server.Config{
		AppName:       "posture",
		ReadTimeout:   cfg.ReadTimeout,
		WriteTimeout:  cfg.WriteTimeout,
		MaxFrameBytes: cfg.MaxFrameBytes,
		Logger:        logger,
	})

	go func() {
		logger.Info().Str("addr", cfg.ListenAddr).Int("pool_size", pool.Size()).
			Msg("posture server listening")

		if err := app.Listen(cfg.ListenAddr); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(app, logger)
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
