package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/danielhkuo/pokerbot/cliparse"
	"github.com/danielhkuo/pokerbot/commands"
	"github.com/danielhkuo/pokerbot/notify"
	"github.com/danielhkuo/pokerbot/poker"
	"github.com/danielhkuo/pokerbot/router"
	"github.com/danielhkuo/pokerbot/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		slog.Error("Error configuring logger", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	// signal.NotifyContext cancels ctx on Ctrl-C or SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Open session storage (pings with backoff and creates the schema for SQL backends)
	st, err := store.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("store initialization failed", "type", cfg.DatabaseType, "error", err)
		os.Exit(1)
	}
	defer st.Close()
	slog.Info("Session store ready", "type", cfg.DatabaseType)

	dispatcher := notify.NewDispatcher(&http.Client{}, notify.Config{
		Timeout:     cfg.NotifyTimeout,
		MaxInFlight: cfg.NotifyMaxInFlight,
		MaxPerSink:  cfg.NotifyMaxPerSink,
	})

	engine := poker.NewEngine(st, cfg.Scale, dispatcher)
	commandRouter := commands.NewRouter(engine, commands.ImagesFromBaseURL(cfg.ImageBaseURL, cfg.Scale))

	// Create server
	server := http.Server{
		Handler:           router.NewRouter(commandRouter, cfg),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("graceful shutdown failed", "error", err)
		}
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port, "scale", cfg.Scale.String())
	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed")
	}

	// Let in-flight delayed messages finish before the store closes
	dispatcher.Wait()
}

func newLogger(level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	switch strings.ToLower(format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
}
