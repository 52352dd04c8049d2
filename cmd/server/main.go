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

	router "github.com/convene/convene/internal/adapters/http"
	wssignal "github.com/convene/convene/internal/adapters/signal"
	"github.com/convene/convene/internal/app"
	"github.com/convene/convene/internal/config"
	"github.com/convene/convene/internal/core"
	"github.com/convene/convene/internal/domain"
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

	defaults := domain.DefaultSettings()
	defaults.MaxParticipants = cfg.DefaultMaxParticipants

	store := core.NewMeetingStore(cfg.BaseURL, defaults)
	registry := app.NewRegistry()
	coordinator := app.NewCoordinator(store, registry, cfg.DisconnectGrace)
	relay := app.NewRelay(registry)
	reaper := app.NewReaper(store, cfg.Retention, cfg.ReapInterval)

	limiter := wssignal.NewMessageRateLimiter(cfg.MessageRateLimit, cfg.MessageRateInterval)
	wsCtl := wssignal.NewMeetingWSController(coordinator, relay, limiter, cfg.ReadLimit)

	go reaper.Run(ctx)

	r := router.SetupRouter(ctx, cfg, store, wsCtl)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Convene server started")
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
