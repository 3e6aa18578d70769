// Tunegraph - Social Music Recommendations and Leaderboards
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tunegraph

package similarity

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/tomtom215/tunegraph/internal/graph"
)

func testClient(url string) *Client {
	cfg := DefaultClientConfig()
	cfg.URL = url
	cfg.Timeout = 5 * time.Second
	cfg.MaxRetries = 2
	return NewClient(cfg)
}

func TestClient_Fetch(t *testing.T) {
	t.Parallel()

	var gotBody similarityRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &gotBody); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"1":[{"trackId":2,"similarity":0.9},{"trackId":3,"similarity":0.4}],"2":[]}`))
	}))
	defer server.Close()

	c := testClient(server.URL)
	got, err := c.Fetch(context.Background(), []graph.TrackID{1, 2, 3})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(gotBody.TrackIDs) != 3 {
		t.Errorf("expected 3 track ids in request, got %v", gotBody.TrackIDs)
	}
	if len(got[1]) != 2 || got[1][0].TrackID != 2 || got[1][0].Similarity != 0.9 {
		t.Errorf("unexpected neighbors for track 1: %v", got[1])
	}
	if _, ok := got[2]; !ok {
		t.Error("expected track 2 present with empty neighbor list")
	}
}

func TestClient_Fetch_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{name: "server error", status: http.StatusInternalServerError, body: "boom", wantErr: "unexpected status 500"},
		{name: "malformed json", status: http.StatusOK, body: `{"1":`, wantErr: "decode response"},
		{name: "non-numeric key", status: http.StatusOK, body: `{"abc":[]}`, wantErr: "non-numeric track id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := testClient(server.URL).Fetch(context.Background(), []graph.TrackID{1})
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestClient_RetriesOnRateLimit(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"5":[{"trackId":6,"similarity":0.5}]}`))
	}))
	defer server.Close()

	got, err := testClient(server.URL).Fetch(context.Background(), []graph.TrackID{5})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 calls, got %d", calls.Load())
	}
	if len(got[5]) != 1 {
		t.Errorf("expected one neighbor for track 5, got %v", got[5])
	}
}

func TestClient_BreakerOpensAfterFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c := testClient(server.URL)
	for i := 0; i < 3; i++ {
		_, _ = c.Fetch(context.Background(), []graph.TrackID{1})
	}
	if c.State() != "open" {
		t.Fatalf("expected breaker open after 3 failures, got %s", c.State())
	}

	_, err := c.Fetch(context.Background(), []graph.TrackID{1})
	if err == nil {
		t.Fatal("expected rejection while breaker is open")
	}
	if calls.Load() != 3 {
		t.Errorf("expected open breaker to skip the request, got %d calls", calls.Load())
	}
}
