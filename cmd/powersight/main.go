package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"powersight-server/internal/config"
	"powersight-server/internal/decoding"
	"powersight-server/internal/filesystem"
	"powersight-server/internal/lock"
	"powersight-server/internal/logging"
	"powersight-server/internal/metrics"
	"powersight-server/internal/service"
	"powersight-server/internal/transport"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "powersight: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	// 1. Parse & validate config
	cfg, err := config.Load(args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// 2. Logger
	logger, err := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logEffectiveConfig(logger, cfg)

	// 3. Dependencies
	decoders, err := decoding.NewChain(cfg.Encodings)
	if err != nil {
		return fmt.Errorf("building decoder chain: %w", err)
	}

	opts := []service.Option{service.WithReadLocks(lock.NewLockManager(), cfg.ReadLockTimeout)}
	var m *metrics.Metrics
	if cfg.EnableMetrics {
		m = metrics.New()
		opts = append(opts, service.WithObserver(m))
	}

	fileService, err := service.NewDefaultFileBrowserService(filesystem.NewDefaultFileSystemAdapter(), decoders, opts...)
	if err != nil {
		return fmt.Errorf("initializing file service: %w", err)
	}
	logger.Info("core services initialized")

	// 4. Transport
	httpServer := transport.NewServer(cfg, transport.NewHTTPHandler(fileService, logger, m).Handler(cfg))

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdownChan)

	serverDoneChan := make(chan error, 1)
	go func() {
		logger.Info("starting HTTP server", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverDoneChan <- err
			return
		}
		serverDoneChan <- nil
	}()

	// 5. Wait for signal or server error
	select {
	case sig := <-shutdownChan:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			logger.Error("HTTP server graceful shutdown failed", zap.Error(err))
			return err
		}
		<-serverDoneChan
		logger.Info("HTTP server gracefully stopped")

	case err := <-serverDoneChan:
		if err != nil {
			logger.Error("HTTP server stopped", zap.Error(err))
			return err
		}
	}

	return nil
}

func logEffectiveConfig(logger *zap.Logger, cfg *config.Config) {
	logger.Info("effective configuration",
		zap.String("addr", cfg.Addr()),
		zap.Strings("encodings", cfg.Encodings),
		zap.Duration("read_lock_timeout", cfg.ReadLockTimeout),
		zap.Duration("read_timeout", cfg.ReadTimeout),
		zap.Duration("write_timeout", cfg.WriteTimeout),
		zap.Duration("shutdown_timeout", cfg.ShutdownTimeout),
		zap.Bool("gzip", cfg.EnableGzip),
		zap.Bool("metrics", cfg.EnableMetrics),
		zap.Strings("cors_origins", cfg.CORSOrigins),
	)
}
