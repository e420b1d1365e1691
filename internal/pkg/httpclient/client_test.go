package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"
)

type payload struct {
	Value string `json:"value"`
}

func newTestClient(retries int) *Client {
	return NewClient(Config{
		Timeout:        time.Second,
		MaxRetries:     retries,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
	}, nil, func(body []byte) string { return string(body) })
}

func TestClient_GetJSON_DecodesBodyAndSendsHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("x-test"); got != "yes" {
			t.Errorf("expected x-test header, got %q", got)
		}
		if got := r.URL.Query().Get("vs_currency"); got != "eur" {
			t.Errorf("expected vs_currency=eur, got %q", got)
		}
		_, _ = w.Write([]byte(`{"value":"ok"}`))
	}))
	defer server.Close()

	var out payload
	err := newTestClient(0).GetJSON(context.Background(), RequestConfig{
		URL:     server.URL,
		Query:   url.Values{"vs_currency": {"eur"}},
		Headers: map[string]string{"x-test": "yes"},
	}, &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Value != "ok" {
		t.Errorf("expected value ok, got %q", out.Value)
	}
}

func TestClient_GetJSON_StatusErrors(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		retries      int
		wantAttempts int32
	}{
		{name: "not found is not retried", status: http.StatusNotFound, retries: 2, wantAttempts: 1},
		{name: "server error is retried", status: http.StatusBadGateway, retries: 2, wantAttempts: 3},
		{name: "rate limit is retried", status: http.StatusTooManyRequests, retries: 1, wantAttempts: 2},
		{name: "no retries configured", status: http.StatusInternalServerError, retries: 0, wantAttempts: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var attempts atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				attempts.Add(1)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("nope"))
			}))
			defer server.Close()

			var out payload
			err := newTestClient(tt.retries).GetJSON(context.Background(), RequestConfig{URL: server.URL}, &out)
			if err == nil {
				t.Fatal("expected error")
			}
			if !IsStatus(err, tt.status) {
				t.Errorf("expected StatusError %d, got %v", tt.status, err)
			}
			var statusErr *StatusError
			if errors.As(err, &statusErr) && statusErr.Message != "nope" {
				t.Errorf("expected parsed message, got %q", statusErr.Message)
			}
			if got := attempts.Load(); got != tt.wantAttempts {
				t.Errorf("expected %d attempts, got %d", tt.wantAttempts, got)
			}
		})
	}
}

func TestClient_GetJSON_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer server.Close()

	var out payload
	err := newTestClient(3).GetJSON(context.Background(), RequestConfig{URL: server.URL}, &out)
	if err == nil {
		t.Fatal("expected parse error")
	}
	var nonRetryable *NonRetryableError
	if !errors.As(err, &nonRetryable) {
		t.Errorf("expected non-retryable error, got %T", err)
	}
}

func TestClient_GetJSON_CancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out payload
	err := newTestClient(0).GetJSON(ctx, RequestConfig{URL: server.URL}, &out)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestStatusError_Error(t *testing.T) {
	err := &StatusError{StatusCode: 404}
	if got := err.Error(); got != "HTTP 404 Not Found" {
		t.Errorf("unexpected message: %s", got)
	}
	err.Message = "coin not found"
	if got := err.Error(); got != "HTTP 404 Not Found: coin not found" {
		t.Errorf("unexpected message: %s", got)
	}
}
