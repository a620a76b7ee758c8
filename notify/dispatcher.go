// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/danielhkuo/pokerbot/models"
	"github.com/danielhkuo/pokerbot/slack"
)

// Defaults match Slack's response_url limits: five messages per URL
// within thirty minutes.
const (
	DefaultTimeout     = 3 * time.Second
	DefaultMaxInFlight = 16
	DefaultMaxPerSink  = 5
	DefaultWindow      = 30 * time.Minute
)

const pruneThreshold = 1024

type Config struct {
	Timeout     time.Duration
	MaxInFlight int
	MaxPerSink  int
	Window      time.Duration
}

type budget struct {
	count int
	since time.Time
}

// Dispatcher posts notifications to response URLs in the background.
// Deliveries are attempted at most once; failures are logged and dropped.
type Dispatcher struct {
	client     *http.Client
	timeout    time.Duration
	sem        *semaphore.Weighted
	maxPerSink int
	window     time.Duration

	mu      sync.Mutex
	budgets map[string]*budget

	wg  sync.WaitGroup
	now func() time.Time
}

func NewDispatcher(client *http.Client, cfg Config) *Dispatcher {
	if client == nil {
		client = http.DefaultClient
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxInFlight <= 0 {
		cfg.MaxInFlight = DefaultMaxInFlight
	}
	if cfg.MaxPerSink <= 0 {
		cfg.MaxPerSink = DefaultMaxPerSink
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}

	return &Dispatcher{
		client:     client,
		timeout:    cfg.Timeout,
		sem:        semaphore.NewWeighted(int64(cfg.MaxInFlight)),
		maxPerSink: cfg.MaxPerSink,
		window:     cfg.Window,
		budgets:    make(map[string]*budget),
		now:        time.Now,
	}
}

// Notify schedules delivery and returns immediately.
func (d *Dispatcher) Notify(ctx context.Context, n models.Notification) {
	if n.Sink == "" {
		return
	}
	// A cap drop must not charge the sink budget
	if !d.sem.TryAcquire(1) {
		slog.Warn("notification dropped, too many in flight", "host", sinkHost(n.Sink))
		return
	}
	if !d.allow(n.Sink) {
		d.sem.Release(1)
		slog.Warn("notification dropped, sink budget exhausted", "host", sinkHost(n.Sink))
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer d.sem.Release(1)

		// Detached from the request; only the timeout bounds delivery
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
		defer cancel()

		if err := d.send(ctx, n); err != nil {
			slog.Error("could not send delayed message", "host", sinkHost(n.Sink), "error", err)
			return
		}
		slog.Info("notification sent", "host", sinkHost(n.Sink))
	}()
}

// Wait blocks until every scheduled delivery has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) allow(sink string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if len(d.budgets) > pruneThreshold {
		for s, b := range d.budgets {
			if now.Sub(b.since) > d.window {
				delete(d.budgets, s)
			}
		}
	}

	b, ok := d.budgets[sink]
	if !ok || now.Sub(b.since) > d.window {
		b = &budget{since: now}
		d.budgets[sink] = b
	}
	if b.count >= d.maxPerSink {
		return false
	}
	b.count++
	return true
}

func (d *Dispatcher) send(ctx context.Context, n models.Notification) error {
	body, err := json.Marshal(slack.RenderNotification(n))
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.Sink, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

// sinkHost keeps response URL paths, which act as credentials, out of logs.
func sinkHost(sink string) string {
	u, err := url.Parse(sink)
	if err != nil {
		return "invalid"
	}
	return u.Host
}
