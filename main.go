// ABOUTME: Entry point for the Adobe VIP Marketplace proxy
// ABOUTME: Wires configuration, IMS token cache, upstream clients and HTTP routes

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"

	"github.com/markalston/vip-marketplace-proxy/config"
	"github.com/markalston/vip-marketplace-proxy/logger"
	"github.com/markalston/vip-marketplace-proxy/server"
)

const appName = "vip-proxy"

func main() {
	// Initialize structured logging
	logger.Init()

	if err := run(); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Server stopped")
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	displayBanner()
	slog.Info("Starting VIP Marketplace proxy", "environments", cfg.EnvironmentNames())
	for _, name := range cfg.EnvironmentNames() {
		env, _ := cfg.Environment(name)
		if !env.HasCredentials() {
			slog.Warn("Environment has no client credentials; token requests will fail", "environment", name)
		}
		slog.Info("Environment configured", "environment", name, "api", env.APIBaseURL, "ims", env.IMSBaseURL)
	}

	proxy, err := server.New(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer proxy.Close()

	srv := server.NewHTTPServer(cfg, proxy.Handler)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

func displayBanner() {
	fig := figure.NewFigure(appName, "cybermedium", true)
	fig.Print()
	fmt.Println()
}
