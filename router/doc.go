// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for pokerbot.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(commandRouter, cfg)

# Endpoints

	GET  /health - liveness, returns OK
	POST /slack  - slash commands and button clicks (Request URL and
	               Interactivity URL in the Slack app settings)
	GET  /       - banner

Only POST /slack is wrapped with request logging.
*/
package router
