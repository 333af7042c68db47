package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"esports-scoreboard/internal/config"
	"esports-scoreboard/internal/constants"
	fxmodules "esports-scoreboard/internal/fx"
	"esports-scoreboard/internal/notify"
	"esports-scoreboard/internal/server"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(runServer),
	).Run()
}

func runServer(
	lc fx.Lifecycle,
	scoreboard *server.ScoreboardServer,
	httpServer *server.HTTPServer,
	hub *notify.Hub,
	cfg *config.Config,
	db *sql.DB,
	logger zerolog.Logger,
) {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: server.NewRouter(scoreboard, httpServer, logger),
	}
	// watch streams end once the hub closes its subscribers
	srv.RegisterOnShutdown(hub.Close)

	hubCtx, stopHub := context.WithCancel(context.Background())
	hubDone := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				defer close(hubDone)
				if err := hub.Run(hubCtx); err != nil {
					logger.Error().Err(err).Msg("event hub stopped")
				}
			}()
			go func() {
				logger.Info().Str("addr", srv.Addr).Msg("server starting")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Fatal().Err(err).Msg("server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("server shutdown failed")
			}

			select {
			case <-hubDone:
			case <-shutdownCtx.Done():
				logger.Warn().Int("pending", hub.Pending()).Msg("event hub did not drain in time")
				stopHub()
				<-hubDone
			}
			stopHub()

			if err := db.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing database connection")
			}
			logger.Info().Msg("server stopped gracefully")
			return nil
		},
	})
}
