package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/PraverBajaj/PulsePlay/internal/adapters/http"
	"github.com/PraverBajaj/PulsePlay/internal/adapters/stream"
	"github.com/PraverBajaj/PulsePlay/internal/app"
	"github.com/PraverBajaj/PulsePlay/internal/config"
	"github.com/PraverBajaj/PulsePlay/internal/queue"
	"github.com/PraverBajaj/PulsePlay/internal/store"
	"github.com/PraverBajaj/PulsePlay/internal/youtube"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.Mode == "debug" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	db, err := store.Open(cfg.DBUrl)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}
	defer db.Close()

	engine := queue.NewEngine(db, db, cfg.StoreTimeout)
	registry := app.NewRegistry()
	dispatcher := app.NewDispatcher(registry, app.KickPolicy{})
	controller := stream.NewController(cfg, engine, registry, dispatcher)
	api := router.NewStreamAPI(engine, dispatcher, youtube.NewClient(cfg.YoutubeAPIKey))

	r := router.SetupRouter(ctx, cfg, controller, api)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("PulsePlay server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
