package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"alcyxob/gym-manager/internal/api"
	mongorepo "alcyxob/gym-manager/internal/repository/mongo"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveCommand = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Run:   serve,
}

func serve(_ *cobra.Command, _ []string) {
	cfg := resolveConfig()
	ctx := context.Background()

	a, err := newApp(cfg)
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	defer a.close()
	log := a.logger

	go func() {
		ctx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		mongorepo.EnsureIndexes(ctx, a.db, log)
	}()

	if err := a.wireServices(ctx); err != nil {
		log.Error().Err(err).Msg("unable to initialize services")
		return
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	api.SetupRoutes(router, a.services, cfg.Server.RateLimit, log)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("address", cfg.Server.Address).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down server")
	case err := <-serverErr:
		log.Error().Err(err).Msg("server stopped unexpectedly")
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		return
	}
	log.Info().Msg("shutdown complete")
}
