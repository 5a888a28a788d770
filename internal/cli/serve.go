package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/pymovements/gazeseg/internal/config"
	"github.com/pymovements/gazeseg/internal/httpserver"
	"github.com/pymovements/gazeseg/internal/logging"

	"go.uber.org/zap"
)

// Execute implements the go-flags Commander interface for ServeCommand.
func (c *ServeCommand) Execute(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if c.Addr != "" {
		cfg.HTTPAddr = c.Addr
	}

	signalCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return c.serve(signalCtx, cfg)
}

// serve runs the HTTP service until ctx is done, then shuts it down gracefully.
func (c *ServeCommand) serve(ctx context.Context, cfg config.Config) error {
	logger, err := logging.New(cfg.Environment, cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer logger.Sync()

	library, err := loadLibrary(profilePath(c.globals, cfg.DetectionProfile))
	if err != nil {
		return err
	}

	store, err := openRepository(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	router, err := httpserver.NewRouter(cfg.Environment, store, library, logger)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}

	logger.Info("server starting",
		zap.String("addr", cfg.HTTPAddr),
		zap.String("version", c.version),
		zap.String("storage", cfg.Storage),
	)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			logger.Info("server stopped")
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	err = <-serverErr
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	logger.Info("server stopped")
	return nil
}
