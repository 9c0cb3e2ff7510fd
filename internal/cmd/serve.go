package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gesturequiz/gesturequiz/internal/config"
	"github.com/gesturequiz/gesturequiz/internal/genai"
	"github.com/gesturequiz/gesturequiz/internal/objectstore"
	"github.com/gesturequiz/gesturequiz/internal/observability"
	"github.com/gesturequiz/gesturequiz/internal/ratelimit"
	"github.com/gesturequiz/gesturequiz/internal/server"
	"github.com/gesturequiz/gesturequiz/internal/server/handlers"
	"github.com/gesturequiz/gesturequiz/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP server with graceful shutdown support.

Connects to Postgres and runs schema migrations, then serves the quiz,
generation, and storage endpoints behind the security gate. SIGINT or
SIGTERM triggers a graceful shutdown.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		logger, err := observability.NewServerLogger(cfg.Logging.Level)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		if cfg.Security.GeneratedSecret {
			logger.Warn("no API secret configured, generated a random one; cross-origin clients will not be able to authenticate")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := store.New(ctx, cfg.Database.URL, logger)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return err
		}

		objects, err := objectstore.New(ctx, cfg.Storage.Region, cfg.Storage.Bucket)
		if err != nil {
			return err
		}

		gen := genai.NewClient(cfg.OpenAI.BaseURL, cfg.OpenAI.APIKey)
		limiter := ratelimit.NewMemory(cfg.Security.RateLimitWindow, cfg.Security.RateLimitMax)

		health := handlers.NewHealth(versionInfo.Version)
		health.Register("database", st)

		srv := server.New(cfg.Server, server.Deps{
			Questions: handlers.NewQuestions(st, logger),
			GenAI:     handlers.NewGenAI(gen, logger),
			Storage:   handlers.NewStorage(objects, cfg.Storage.AllowedSourceHosts, logger),
			Health:    health,
			Limiter:   limiter,
			Security:  cfg.Security,
			Logger:    logger,
		})

		errCh := make(chan error, 1)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		select {
		case err := <-errCh:
			logger.Error("server failed", zap.Error(err))
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", zap.Error(err))
			return err
		}

		logger.Info("server stopped")
		return nil
	},
}
