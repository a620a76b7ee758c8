// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/danielhkuo/pokerbot/auth"
	"github.com/danielhkuo/pokerbot/cliparse"
	"github.com/danielhkuo/pokerbot/commands"
	"github.com/danielhkuo/pokerbot/middleware"
	"github.com/danielhkuo/pokerbot/slack"
)

// SlackHandler serves slash commands and button clicks.
type SlackHandler struct {
	router   *commands.Router
	cfg      cliparse.Config
	validate *validator.Validate
}

func NewSlackHandler(router *commands.Router, cfg cliparse.Config) *SlackHandler {
	return &SlackHandler{
		router:   router,
		cfg:      cfg,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Handle handles POST /slack
func (h *SlackHandler) Handle(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.RequestID(r.Context())

	body, err := middleware.ReadBody(r)
	if errors.Is(err, middleware.ErrBodyTooLarge) {
		middleware.ErrorResponse(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	}
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Could not read request body")
		return
	}

	// Signed requests are verified before anything in them is trusted
	if h.cfg.SigningSecret != "" {
		if err := auth.ValidateSignature(h.cfg.SigningSecret, r.Header, body); err != nil {
			slog.Warn("rejected slack request", "request_id", requestID, "error", err)
			middleware.ErrorResponse(w, http.StatusUnauthorized, err.Error())
			return
		}
	}

	r.Body = io.NopCloser(bytes.NewReader(body))
	cmd, token, err := slack.ParseRequest(r)

	if h.cfg.SigningSecret == "" {
		if aerr := auth.ValidateToken(token, h.cfg.SlackTokens); aerr != nil {
			slog.Warn("rejected slack request", "request_id", requestID, "error", aerr)
			middleware.ErrorResponse(w, http.StatusUnauthorized, aerr.Error())
			return
		}
	}

	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.validate.Struct(cmd); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	slog.Info("slack command",
		"request_id", requestID,
		"subcommand", cmd.Subcommand,
		"team_id", cmd.TeamID,
		"channel_id", cmd.ChannelID,
		"user_id", cmd.UserID,
	)

	env := h.router.Dispatch(r.Context(), cmd)
	middleware.JSONResponse(w, http.StatusOK, slack.Render(env))
}
