// @title           Library API
// @version         1.0
// @description     Library lending catalog: books, authors, genres, copies and loans.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
// @description     "Bearer <token>", issued with `libraryctl token issue`
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	_ "github.com/xiebiao/library/docs"
	"github.com/xiebiao/library/pkg/logger"
	"github.com/xiebiao/library/pkg/metrics"
	"github.com/xiebiao/library/pkg/tracing"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("library api stopped")
	}
}

func run() error {
	// Logging before config so startup failures are structured too.
	logger.Init(os.Getenv("LIBRARY_LOG_LEVEL"), "console", os.Stdout)
	metrics.InitMetrics()

	app, cleanup, err := InitializeApp()
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	defer cleanup()

	cfg := app.Config
	logger.Init(cfg.Log.Level, cfg.Log.Format, os.Stdout)

	if cfg.Tracing.Enabled {
		shutdown, err := tracing.InitTracer(context.Background(), cfg.Tracing.ServiceName, cfg.Tracing.Endpoint)
		if err != nil {
			return fmt.Errorf("init tracing: %w", err)
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logger.Error("tracer shutdown", err)
			}
		}()
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      app.Engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 2)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("mode", cfg.Server.Mode).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	if cfg.GRPC.Port > 0 {
		go func() {
			log.Info().Int("port", cfg.GRPC.Port).Msg("grpc health server listening")
			if err := app.Health.ListenAndServe(cfg.GRPC.Port); err != nil {
				errCh <- err
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-errCh:
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	app.Health.GracefulStop()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	log.Info().Msg("library api stopped cleanly")
	return nil
}
