// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/pokerbot/models"
	"github.com/danielhkuo/pokerbot/slack"
)

func TestNotifyDelivers(t *testing.T) {
	var (
		mu          sync.Mutex
		received    []slack.Message
		methods     []string
		contentType string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var msg slack.Message
		err := json.NewDecoder(r.Body).Decode(&msg)

		mu.Lock()
		methods = append(methods, r.Method)
		contentType = r.Header.Get("Content-Type")
		if err == nil {
			received = append(received, msg)
		}
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := NewDispatcher(srv.Client(), Config{})
	d.Notify(context.Background(), models.Notification{Sink: srv.URL, Text: "alice voted"})
	d.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{http.MethodPost}, methods)
	require.Equal(t, "application/json", contentType)
	require.Len(t, received, 1)
	require.Equal(t, "alice voted", received[0].Text)
	require.Equal(t, slack.ResponseTypeInChannel, received[0].ResponseType)
}

func TestNotifyDoesNotBlock(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	d := NewDispatcher(srv.Client(), Config{Timeout: 5 * time.Second})

	start := time.Now()
	d.Notify(context.Background(), models.Notification{Sink: srv.URL, Text: "bob voted"})
	require.Less(t, time.Since(start), time.Second)
}

func TestNotifySwallowsFailures(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	d := NewDispatcher(srv.Client(), Config{})
	d.Notify(context.Background(), models.Notification{Sink: srv.URL, Text: "x voted"})
	d.Notify(context.Background(), models.Notification{Sink: "http://127.0.0.1:1/unreachable", Text: "y voted"})
	d.Wait()

	require.Equal(t, int32(1), hits.Load(), "failed deliveries must not be retried")
}

func TestNotifyTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	d := NewDispatcher(srv.Client(), Config{Timeout: 50 * time.Millisecond})
	d.Notify(context.Background(), models.Notification{Sink: srv.URL, Text: "slow"})

	done := make(chan struct{})
	go func() {
		d.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("delivery was not bounded by the timeout")
	}
}

func TestNotifySinkBudget(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	d := NewDispatcher(srv.Client(), Config{MaxPerSink: 2})
	for i := 0; i < 5; i++ {
		d.Notify(context.Background(), models.Notification{Sink: srv.URL + "/a", Text: "voted"})
	}
	d.Notify(context.Background(), models.Notification{Sink: srv.URL + "/b", Text: "voted"})
	d.Wait()

	require.Equal(t, int32(3), hits.Load())
}

func TestNotifyBudgetWindowResets(t *testing.T) {
	d := NewDispatcher(nil, Config{MaxPerSink: 1, Window: time.Minute})
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return now }

	require.True(t, d.allow("https://hooks.example.com/1"))
	require.False(t, d.allow("https://hooks.example.com/1"))

	now = now.Add(2 * time.Minute)
	require.True(t, d.allow("https://hooks.example.com/1"))
}

func TestNotifyInFlightCap(t *testing.T) {
	release := make(chan struct{})
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
	}))
	defer srv.Close()

	d := NewDispatcher(srv.Client(), Config{MaxInFlight: 1, Timeout: 5 * time.Second})
	d.Notify(context.Background(), models.Notification{Sink: srv.URL + "/1", Text: "a"})
	d.Notify(context.Background(), models.Notification{Sink: srv.URL + "/2", Text: "b"})
	close(release)
	d.Wait()

	require.Equal(t, int32(1), hits.Load())
}

func TestNotifyCapDropKeepsBudget(t *testing.T) {
	release := make(chan struct{})
	var mu sync.Mutex
	paths := map[string]int{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths[r.URL.Path]++
		mu.Unlock()
		if r.URL.Path == "/busy" {
			<-release
		}
	}))
	defer srv.Close()

	d := NewDispatcher(srv.Client(), Config{MaxInFlight: 1, MaxPerSink: 1, Timeout: 5 * time.Second})
	d.Notify(context.Background(), models.Notification{Sink: srv.URL + "/busy", Text: "a"})
	d.Notify(context.Background(), models.Notification{Sink: srv.URL + "/quiet", Text: "dropped"})
	close(release)
	d.Wait()

	// /quiet still has its single slot
	d.Notify(context.Background(), models.Notification{Sink: srv.URL + "/quiet", Text: "b"})
	d.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, map[string]int{"/busy": 1, "/quiet": 1}, paths)
}

func TestNotifyIgnoresEmptySink(t *testing.T) {
	d := NewDispatcher(nil, Config{})
	d.Notify(context.Background(), models.Notification{Text: "nobody"})
	d.Wait()
}

func TestSinkHost(t *testing.T) {
	require.Equal(t, "hooks.slack.com", sinkHost("https://hooks.slack.com/commands/T1/123/secret"))
}
