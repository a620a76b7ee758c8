// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/pokerbot/cliparse"
	"github.com/danielhkuo/pokerbot/commands"
	"github.com/danielhkuo/pokerbot/handlers"
	"github.com/danielhkuo/pokerbot/middleware"
)

func NewRouter(rt *commands.Router, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	slackHandler := handlers.NewSlackHandler(rt, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Slash commands and interactive buttons
	mux.HandleFunc("POST /slack", middleware.WithLogging(slackHandler.Handle))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pokerbot v1"))
	})

	return mux
}
