package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/botify/storebot/backend/internal/app"
	"github.com/botify/storebot/backend/internal/config"
	"github.com/botify/storebot/backend/internal/handler"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	app.SetupLogger(cfg.Log)

	if envErr != nil {
		log.Debug().Err(envErr).Msg("no .env file loaded, using system environment only")
	}

	components, err := app.Build(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize services")
	}
	defer func() {
		if err := components.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close database")
		}
	}()

	router := handler.NewRouter(handler.Dependencies{
		Assistant:   components.Assistant,
		History:     components.History,
		Policies:    components.Policies,
		Sender:      components.Sender,
		VerifyToken: cfg.Messaging.VerifyToken,
		CORSOrigins: cfg.Server.CORSOrigins,
	})

	if err := startServer(ctx, cfg.Server, router); err != nil {
		log.Error().Err(err).Msg("server error")
		os.Exit(1)
	}
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) error {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Info().Str("addr", serverCfg.Addr).Msg("storebot backend listening")
	return runServer(ctx, srv)
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
