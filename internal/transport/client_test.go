package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestFetchJSON_SendsHeaders(t *testing.T) {
	var gotUserAgent, gotAccept, gotAPIKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		gotAPIKey = r.Header.Get("X-API-Key")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(0, "driftwatch-go/test", "secret-key")
	defer c.Close()

	if _, err := c.FetchJSON(context.Background(), srv.URL); err != nil {
		t.Fatalf("FetchJSON() error = %v", err)
	}

	if gotUserAgent != "driftwatch-go/test" {
		t.Errorf("User-Agent = %q, want %q", gotUserAgent, "driftwatch-go/test")
	}
	if gotAccept != "application/json" {
		t.Errorf("Accept = %q, want %q", gotAccept, "application/json")
	}
	if gotAPIKey != "secret-key" {
		t.Errorf("X-API-Key = %q, want %q", gotAPIKey, "secret-key")
	}
}

func TestFetchJSON_NoAPIKeyHeaderWithoutKey(t *testing.T) {
	var hasAPIKey bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasAPIKey = r.Header["X-Api-Key"]
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(0, "driftwatch-go/test", "")
	defer c.Close()

	if _, err := c.FetchJSON(context.Background(), srv.URL); err != nil {
		t.Fatalf("FetchJSON() error = %v", err)
	}
	if hasAPIKey {
		t.Error("X-API-Key header sent without a configured key")
	}
}

func TestFetchJSON_Decodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"cursor": "c1", "ttl_sec": 60}`))
	}))
	defer srv.Close()

	c := NewClient(0, "test", "")
	defer c.Close()

	doc, err := c.FetchJSON(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("FetchJSON() error = %v", err)
	}
	if doc["cursor"] != "c1" {
		t.Errorf("doc[cursor] = %v, want c1", doc["cursor"])
	}
}

func TestFetchJSON_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(0, "test", "")
	defer c.Close()

	_, err := c.FetchJSON(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("FetchJSON() error = nil, want *StatusError")
	}

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("error type = %T, want *StatusError", err)
	}
	if statusErr.Code != http.StatusServiceUnavailable {
		t.Errorf("Code = %v, want %v", statusErr.Code, http.StatusServiceUnavailable)
	}
	if statusErr.URL != srv.URL {
		t.Errorf("URL = %q, want %q", statusErr.URL, srv.URL)
	}
}

func TestFetchJSON_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	c := NewClient(0, "test", "")
	defer c.Close()

	_, err := c.FetchJSON(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("FetchJSON() error = nil, want decode error")
	}
	if !strings.Contains(err.Error(), "invalid JSON") {
		t.Errorf("error = %q, want mention of invalid JSON", err)
	}
}

func TestFetchJSON_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(50*time.Millisecond, "test", "")
	defer c.Close()

	start := time.Now()
	_, err := c.FetchJSON(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("FetchJSON() error = nil, want timeout")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("FetchJSON() took %v, want prompt timeout", elapsed)
	}
}

func TestFetchJSON_ContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(0, "test", "")
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.FetchJSON(ctx, srv.URL); err == nil {
		t.Error("FetchJSON() error = nil, want cancellation error")
	}
}

func TestNewClient_DefaultTimeout(t *testing.T) {
	c := NewClient(0, "test", "")
	defer c.Close()

	if c.Timeout() != DefaultTimeout {
		t.Errorf("Timeout() = %v, want %v", c.Timeout(), DefaultTimeout)
	}
}

func TestClose_Safe(t *testing.T) {
	c := NewClient(0, "test", "")
	c.Close()
	c.Close() // idempotent

	var nilClient *Client
	nilClient.Close() // nil-safe
}
