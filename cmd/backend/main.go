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

	"github.com/samber/do/v2"

	audioimpl "github.com/pitchperfect/pitchperfect/external/audio"
	captureimpl "github.com/pitchperfect/pitchperfect/external/capture"
	configloader "github.com/pitchperfect/pitchperfect/external/config"
	repositoryimpl "github.com/pitchperfect/pitchperfect/external/repository"
	scorerimpl "github.com/pitchperfect/pitchperfect/external/scorer"
	transcriberimpl "github.com/pitchperfect/pitchperfect/external/transcriber"
	voiceimpl "github.com/pitchperfect/pitchperfect/external/voice"
	webhookimpl "github.com/pitchperfect/pitchperfect/external/webhook"
	"github.com/pitchperfect/pitchperfect/internal/agents"
	"github.com/pitchperfect/pitchperfect/internal/api"
	"github.com/pitchperfect/pitchperfect/internal/config"
	"github.com/pitchperfect/pitchperfect/internal/highlight"
	"github.com/pitchperfect/pitchperfect/internal/session"
)

const shutdownTimeout = 30 * time.Second

func main() {
	slog.Info("startup: loading configuration")
	cfg := mustLoadConfig()
	initLogger(cfg)
	slog.Info("startup: configuration loaded", "env", cfg.Env)

	slog.Info("startup: building dependency graph")
	injector := setupDI(cfg)

	slog.Info("startup: launching http server")
	runServer(cfg, injector)
}

func mustLoadConfig() *config.Config {
	cfg, err := configloader.Load()
	if err != nil {
		slog.Error("config validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

func initLogger(cfg *config.Config) {
	logLevel := slog.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))
}

func setupDI(cfg *config.Config) do.Injector {
	injector := do.New()

	do.ProvideValue(injector, cfg)
	repositoryimpl.RegisterDI(injector)
	voiceimpl.RegisterDI(injector)
	captureimpl.RegisterDI(injector)
	audioimpl.RegisterDI(injector)
	transcriberimpl.RegisterDI(injector)
	scorerimpl.RegisterDI(injector)
	webhookimpl.RegisterDI(injector)
	highlight.RegisterDI(injector)
	session.RegisterDI(injector)
	agents.RegisterDI(injector)
	api.RegisterDI(injector)

	return injector
}

func runServer(cfg *config.Config, injector do.Injector) {
	handler, err := do.Invoke[http.Handler](injector)
	if err != nil {
		slog.Error("failed to resolve http handler", "error", err)
		os.Exit(1)
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: handler,
	}

	done := make(chan struct{})
	go func() {
		slog.Info("http server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "error", err)
		}
		close(done)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		slog.Info("shutting down")
	case <-done:
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("http shutdown failed", "error", err)
	}
}
