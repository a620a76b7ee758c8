// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("POST /slack", middleware.WithLogging(h.Handle))

Logs request start (request_id, method, path, remote) and completion
(status, duration_ms). The request ID is taken from X-Request-ID or
generated, echoed in the response header, and available to handlers via
RequestID(r.Context()).

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

# Request Bodies

ReadBody returns the raw body, capped at MaxBodyBytes. Handlers that
verify signatures need the exact bytes Slack signed.

# Client IP Extraction

	ip := middleware.GetClientIP(r)

Checks X-Forwarded-For, then X-Real-IP, then RemoteAddr.
*/
package middleware
