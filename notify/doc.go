// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package notify delivers "someone voted" messages to Slack response URLs.

	d := notify.NewDispatcher(http.DefaultClient, notify.Config{Timeout: 3 * time.Second})
	engine := poker.NewEngine(st, scale, d)
	defer d.Wait()

Notify never blocks the caller. Each delivery runs on its own goroutine
with a timeout, is attempted once, and logs its failure instead of
returning it. Two caps apply:

  - MaxInFlight: concurrent deliveries, excess is dropped
  - MaxPerSink: deliveries per response URL within Window, excess is dropped
*/
package notify
