package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/archon-research/cryptoplace/internal/adapters/outbound/fixtures"
	"github.com/archon-research/cryptoplace/internal/adapters/outbound/memory"
	"github.com/archon-research/cryptoplace/internal/domain/entity"
	"github.com/archon-research/cryptoplace/internal/services/coin_detail"
	"github.com/archon-research/cryptoplace/internal/services/content"
	"github.com/archon-research/cryptoplace/internal/services/market_data"
)

type testEnv struct {
	provider *memory.MarketProvider
	store    *market_data.Store
	server   *Server
	recorder *countingRecorder
}

type countingRecorder struct {
	mu     sync.Mutex
	routes []string
}

func (r *countingRecorder) RecordRequest(_ context.Context, method, route string, status int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, method+" "+route)
}

func newTestEnv(t *testing.T, load bool) *testEnv {
	t.Helper()

	provider := memory.NewSampleProvider(time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC))
	store, err := market_data.NewStore(market_data.StoreConfig{}, provider)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if load {
		if err := store.Load(context.Background()); err != nil {
			t.Fatalf("Load: %v", err)
		}
	}

	details, err := coin_detail.NewService(coin_detail.Config{}, provider)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	catalog, err := fixtures.NewCatalog()
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	pages, err := content.NewService(catalog)
	if err != nil {
		t.Fatalf("content.NewService: %v", err)
	}

	handler, err := NewHandler(HandlerConfig{}, store, details, pages)
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}

	recorder := &countingRecorder{}
	server := NewServer(ServerConfig{Metrics: recorder}, handler, NewHealthHandler(store, nil))
	return &testEnv{provider: provider, store: store, server: server, recorder: recorder}
}

func (e *testEnv) do(t *testing.T, method, target string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(w, req)

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode %s %s: %v (body %q)", method, target, err, w.Body.String())
	}
	return w, resp
}

func coinIDs(t *testing.T, resp map[string]any) []string {
	t.Helper()
	raw, ok := resp["coins"].([]any)
	if !ok {
		t.Fatalf("coins missing from %v", resp)
	}
	out := make([]string, 0, len(raw))
	for _, c := range raw {
		out = append(out, c.(map[string]any)["id"].(string))
	}
	return out
}

func TestNewHandler_RequiresCollaborators(t *testing.T) {
	if _, err := NewHandler(HandlerConfig{}, nil, nil, nil); err == nil {
		t.Fatal("expected error")
	}
}

func TestListCurrencies(t *testing.T) {
	env := newTestEnv(t, true)

	w, resp := env.do(t, http.MethodGet, "/api/currencies", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if len(resp["currencies"].([]any)) != 3 {
		t.Errorf("expected 3 currencies, got %v", resp["currencies"])
	}
	if resp["active"] != "usd" {
		t.Errorf("expected usd active, got %v", resp["active"])
	}
}

func TestListMarkets(t *testing.T) {
	env := newTestEnv(t, true)

	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantIDs    []string
	}{
		{
			name:       "default rank order",
			target:     "/api/markets?per_page=3",
			wantStatus: http.StatusOK,
			wantIDs:    []string{"bitcoin", "ethereum", "tether"},
		},
		{
			name:       "second page",
			target:     "/api/markets?per_page=3&page=2",
			wantStatus: http.StatusOK,
			wantIDs:    []string{"solana", "ripple", "cardano"},
		},
		{
			name:       "losers by change ascending",
			target:     "/api/markets?category=losers&sort=change_24h&dir=asc",
			wantStatus: http.StatusOK,
			wantIDs:    []string{"dogecoin", "ethereum", "ripple"},
		},
		{
			name:       "search",
			target:     "/api/markets?q=COIN",
			wantStatus: http.StatusOK,
			wantIDs:    []string{"bitcoin", "dogecoin"},
		},
		{
			name:       "bad category",
			target:     "/api/markets?category=trending",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "bad page",
			target:     "/api/markets?page=two",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "per_page too large",
			target:     "/api/markets?per_page=500",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := env.do(t, http.MethodGet, tt.target, nil)
			if w.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %v", tt.wantStatus, w.Code, resp)
			}
			if tt.wantIDs == nil {
				return
			}
			got := coinIDs(t, resp)
			if strings.Join(got, ",") != strings.Join(tt.wantIDs, ",") {
				t.Errorf("expected %v, got %v", tt.wantIDs, got)
			}
		})
	}
}

func TestListMarkets_FormatsValues(t *testing.T) {
	env := newTestEnv(t, true)

	_, resp := env.do(t, http.MethodGet, "/api/markets?per_page=1", nil)
	coin := resp["coins"].([]any)[0].(map[string]any)

	if coin["symbol"] != "BTC" {
		t.Errorf("expected upper-case symbol, got %v", coin["symbol"])
	}
	if coin["price_display"] != "$ 67,123.45" {
		t.Errorf("unexpected price_display %v", coin["price_display"])
	}
	if coin["market_cap_display"] != "$1.32T" {
		t.Errorf("unexpected market_cap_display %v", coin["market_cap_display"])
	}
	if coin["change_display"] != "+2.15%" {
		t.Errorf("unexpected change_display %v", coin["change_display"])
	}
}

func TestSetCurrency(t *testing.T) {
	env := newTestEnv(t, true)

	w, resp := env.do(t, http.MethodPut, "/api/currency", map[string]string{"currency": "EUR"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", w.Code, resp)
	}
	if got := resp["currency"].(map[string]any)["name"]; got != "eur" {
		t.Errorf("expected eur, got %v", got)
	}
	if got := env.provider.CallCount("markets:eur"); got != 1 {
		t.Errorf("expected one eur fetch, got %d", got)
	}

	_, resp = env.do(t, http.MethodGet, "/api/markets?per_page=1", nil)
	coin := resp["coins"].([]any)[0].(map[string]any)
	if !strings.HasPrefix(coin["price_display"].(string), "€") {
		t.Errorf("expected euro prices, got %v", coin["price_display"])
	}
}

func TestSetCurrency_Errors(t *testing.T) {
	env := newTestEnv(t, true)

	w, _ := env.do(t, http.MethodPut, "/api/currency", map[string]string{"currency": "gbp"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown currency: expected 400, got %d", w.Code)
	}

	w, _ = env.do(t, http.MethodPut, "/api/currency", map[string]string{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing field: expected 400, got %d", w.Code)
	}

	env.provider.FailMarkets(errors.New("HTTP 429 Too Many Requests"))
	w, resp := env.do(t, http.MethodPut, "/api/currency", map[string]string{"currency": "inr"})
	if w.Code != http.StatusBadGateway {
		t.Fatalf("upstream failure: expected 502, got %d", w.Code)
	}
	status := resp["status"].(map[string]any)
	if status["phase"] != "error" {
		t.Errorf("expected error phase, got %v", status["phase"])
	}
}

func TestSetCurrency_OutlivesDisconnectedClient(t *testing.T) {
	env := newTestEnv(t, true)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPut, "/api/currency", strings.NewReader(`{"currency":"eur"}`)).WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	env.server.Handler().ServeHTTP(httptest.NewRecorder(), req)

	state := env.store.State()
	if state.Currency != entity.EUR {
		t.Errorf("expected eur, got %s", state.Currency.Name)
	}
	if state.Err != "" {
		t.Errorf("expected no error, got %q", state.Err)
	}
	if state.Coins[0].CurrentPrice == 0 {
		t.Error("expected eur coins")
	}
}

func TestRetryMarkets_KeepsStaleCoins(t *testing.T) {
	env := newTestEnv(t, true)
	env.provider.FailMarkets(errors.New("HTTP 500 Internal Server Error"))

	w, _ := env.do(t, http.MethodPost, "/api/markets/retry", nil)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}

	w, resp := env.do(t, http.MethodGet, "/api/markets", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if len(coinIDs(t, resp)) != 8 {
		t.Errorf("expected stale coins to be served, got %v", coinIDs(t, resp))
	}
	if resp["status"].(map[string]any)["error"] == nil {
		t.Error("expected error in status")
	}

	env.provider.FailMarkets(nil)
	w, _ = env.do(t, http.MethodPost, "/api/markets/retry", nil)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 after recovery, got %d", w.Code)
	}
}

func TestMarketStats(t *testing.T) {
	env := newTestEnv(t, true)

	_, resp := env.do(t, http.MethodGet, "/api/markets/stats", nil)
	stats := resp["stats"].(map[string]any)
	if stats["count"].(float64) != 8 {
		t.Errorf("expected 8 coins, got %v", stats["count"])
	}
	if stats["gainers"].(float64) != 5 || stats["losers"].(float64) != 3 {
		t.Errorf("unexpected gainers/losers %v/%v", stats["gainers"], stats["losers"])
	}
}

func TestGetCoin(t *testing.T) {
	env := newTestEnv(t, true)

	w, resp := env.do(t, http.MethodGet, "/api/coins/bitcoin?currency=inr", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", w.Code, resp)
	}
	if resp["name"] != "Bitcoin" || resp["has_chart"] != true {
		t.Errorf("unexpected coin page %v", resp)
	}
	chart := resp["chart"].([]any)
	if len(chart) != 11 {
		t.Errorf("expected 11 chart points, got %d", len(chart))
	}
	if label := chart[len(chart)-1].(map[string]any)["label"]; label != "3/10/2024" {
		t.Errorf("unexpected last label %v", label)
	}
	quote := resp["quote"].(map[string]any)
	if !strings.HasPrefix(quote["current_price_display"].(string), "₹") {
		t.Errorf("expected rupee price, got %v", quote["current_price_display"])
	}
}

func TestGetCoin_Errors(t *testing.T) {
	env := newTestEnv(t, true)

	w, _ := env.do(t, http.MethodGet, "/api/coins/not-a-coin", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}

	w, _ = env.do(t, http.MethodGet, "/api/coins/bitcoin?currency=gbp", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}

	env.provider.FailChart(errors.New("HTTP 503 Service Unavailable"))
	w, resp := env.do(t, http.MethodGet, "/api/coins/bitcoin", nil)
	if w.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", w.Code)
	}
	if _, ok := resp["name"]; ok {
		t.Error("expected no partial page on failure")
	}
}

func TestGetBlog(t *testing.T) {
	env := newTestEnv(t, false)

	w, resp := env.do(t, http.MethodGet, "/api/blog?category=ethereum&q=layer", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	articles := resp["articles"].([]any)
	if len(articles) != 1 {
		t.Fatalf("expected 1 article, got %d", len(articles))
	}
	if got := articles[0].(map[string]any)["published_display"]; got != "January 9, 2024" {
		t.Errorf("unexpected published_display %v", got)
	}
}

func TestGetPricing(t *testing.T) {
	env := newTestEnv(t, false)

	w, resp := env.do(t, http.MethodGet, "/api/pricing?cycle=yearly", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	plans := resp["plans"].([]any)
	pro := plans[1].(map[string]any)
	if pro["price"].(float64) != 290 || pro["savings_percent"].(float64) != 17 {
		t.Errorf("unexpected pro plan %v", pro)
	}

	w, _ = env.do(t, http.MethodGet, "/api/pricing?cycle=weekly", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestRequestMetrics_UsesRoutePattern(t *testing.T) {
	env := newTestEnv(t, true)
	env.do(t, http.MethodGet, "/api/coins/bitcoin", nil)

	env.recorder.mu.Lock()
	defer env.recorder.mu.Unlock()
	if len(env.recorder.routes) != 1 || env.recorder.routes[0] != "GET /api/coins/:id" {
		t.Errorf("unexpected recorded routes %v", env.recorder.routes)
	}
}
