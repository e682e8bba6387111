package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JacobItopa/plan-elevation/internal/elevation"
	httpapi "github.com/JacobItopa/plan-elevation/internal/http"
	"github.com/JacobItopa/plan-elevation/internal/http/handlers"
	"github.com/JacobItopa/plan-elevation/internal/infra"
	"github.com/JacobItopa/plan-elevation/internal/nanobanana"
	"github.com/JacobItopa/plan-elevation/internal/publicurl"
	"github.com/JacobItopa/plan-elevation/internal/storage"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	store, err := storage.NewFileStore(cfg.UploadDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to prepare upload directory")
	}

	locator := publicurl.NewLocator(publicurl.Options{
		UploadURL: cfg.PublicUploadURL,
		Strict:    cfg.StrictAssetResolution,
		Logger:    logger,
	})
	client := nanobanana.NewClient(nanobanana.Options{
		BaseURL: cfg.NanoBananaBaseURL,
		APIKey:  cfg.NanoBananaAPIKey,
		Logger:  logger,
	})
	service := elevation.NewService(elevation.Options{
		Store:   store,
		Locator: locator,
		Client:  client,
		Wait: nanobanana.WaitOptions{
			MaxWait:      cfg.GenerateMaxWait,
			PollInterval: cfg.GeneratePollInterval,
		},
		Logger: logger,
	})

	app := handlers.NewApp(service, logger, cfg.PublicBaseURL)
	router := httpapi.NewRouter(app, logger, store.BasePath())
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

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
