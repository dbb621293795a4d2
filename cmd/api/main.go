package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/joho/godotenv"

	"imagen/internal/http/handlers"
	httpapi "imagen/internal/http/httpapi"
	"imagen/internal/imagegen"
	"imagen/internal/infra"
	"imagen/internal/providers/bedrock"
	"imagen/internal/storage"
)

func main() {
	// Muat .env (opsional)
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	// Klien AWS dibuat sekali dan dipakai bersama oleh semua adapter
	ctx := context.Background()
	awsCfg, err := infra.NewAWSConfig(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load aws config")
	}

	invoker, err := bedrock.NewClient(bedrock.Options{
		Runtime:          infra.NewBedrockRuntimeClient(awsCfg),
		GuardrailID:      cfg.GuardrailID,
		GuardrailVersion: cfg.GuardrailVersion,
		Timeout:          cfg.ProviderTimeout,
		Logger:           &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build bedrock client")
	}

	store, err := newStore(cfg, awsCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build image store")
	}

	pipeline, err := imagegen.NewPipeline(imagegen.Options{
		Invoker:       invoker,
		Store:         store,
		UploadTimeout: cfg.UploadTimeout,
		Logger:        &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build pipeline")
	}

	app := handlers.NewApp(cfg, logger, pipeline)
	router := httpapi.NewRouter(app, logger)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().
			Str("addr", server.Addr()).
			Str("storage", cfg.StorageDriver).
			Bool("guardrail", invoker.HasGuardrail()).
			Msg("API listening")
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

func newStore(cfg *infra.Config, awsCfg aws.Config) (imagegen.Store, error) {
	if cfg.StorageDriver == infra.StorageDriverFilesystem {
		return storage.NewFileStore(cfg.StoragePath, cfg.StorageBaseURL)
	}
	return storage.NewS3Store(infra.NewS3Client(awsCfg), cfg.BucketName, cfg.AWSRegion), nil
}
