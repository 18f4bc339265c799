// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/valpere/OGScrapexter/internal/config"
	"github.com/valpere/OGScrapexter/internal/utils"
)

// Version information (set by build flags)
var version = "dev"

const shutdownTimeout = 30 * time.Second

func main() {
	configFile := flag.String("config", "", "configuration file")
	listen := flag.String("listen", "", "listen address, overrides server.listen")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	if err := serve(*configFile, *listen, *verbose); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(configFile string) (*config.Config, error) {
	if configFile != "" {
		return config.LoadFromFile(configFile)
	}
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, err
	}
	return config.Default(), nil
}

func serve(configFile, listen string, verbose bool) error {
	cfg, err := loadConfig(configFile)
	if err != nil {
		return err
	}
	if listen != "" {
		cfg.Server.Listen = listen
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	logger := cfg.NewLogger()

	server, err := NewServer(cfg, logger)
	if err != nil {
		return err
	}
	defer server.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if configFile != "" {
		watcher, err := config.NewConfigWatcher(configFile, logger)
		if err != nil {
			logger.Warnf("configuration hot reload disabled: %v", err)
		} else {
			defer watcher.Close()
			watcher.OnChange(func(updated *config.Config) {
				if listen != "" {
					updated.Server.Listen = listen
				}
				if err := server.Reload(updated); err != nil {
					logger.Errorf("failed to apply reloaded configuration: %v", err)
				}
			})
		}
	}

	if addr := cfg.Metrics.ListenAddress; cfg.Metrics.Enabled && addr != "" {
		metrics := server.current().runtime.Metrics
		go func() {
			if err := metrics.StartMetricsServer(ctx, addr, cfg.Metrics.MetricsPath); err != nil {
				logger.Errorf("metrics server stopped: %v", err)
			}
		}()
	}

	httpServer := &http.Server{
		Addr:         cfg.Server.Listen,
		Handler:      server.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("listen", cfg.Server.Listen).Info("server started")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return utils.WrapError(err, utils.ErrCodeNetworkFailure, "server failed")
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
