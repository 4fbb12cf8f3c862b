package api

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/valshi/whaletracker/internal/auth"
)

func testSigner(t *testing.T, keyID string) *auth.Signer {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to generate test key: %v", err)
	}
	return &auth.Signer{KeyID: keyID, PrivateKey: key}
}

func TestGetMarket(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/trade-api/v2/markets/FED-24DEC" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"market":{"ticker":"FED-24DEC","event_ticker":"FED-24","title":"Fed decision?","status":"active","yes_bid":45,"yes_ask":47}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	market, err := client.GetMarket(context.Background(), "FED-24DEC")
	if err != nil {
		t.Fatalf("GetMarket failed: %v", err)
	}

	if market.Ticker != "FED-24DEC" {
		t.Errorf("Ticker = %q, want FED-24DEC", market.Ticker)
	}
	if market.Title != "Fed decision?" {
		t.Errorf("Title = %q", market.Title)
	}
	if market.YesBid != 45 {
		t.Errorf("YesBid = %d, want 45", market.YesBid)
	}
}

func TestGetEvent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/trade-api/v2/events/FED-24" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"event":{"event_ticker":"FED-24","series_ticker":"FED","title":"Fed decisions","category":"Economics"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	event, err := client.GetEvent(context.Background(), "FED-24")
	if err != nil {
		t.Fatalf("GetEvent failed: %v", err)
	}

	if event.SeriesTicker != "FED" {
		t.Errorf("SeriesTicker = %q, want FED", event.SeriesTicker)
	}
	if event.Category != "Economics" {
		t.Errorf("Category = %q, want Economics", event.Category)
	}
}

func TestGetSeries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/trade-api/v2/series/FED" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"series":{"ticker":"FED","title":"Fed decisions","category":"Economics","tags":["Economy","Macro"]}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	series, err := client.GetSeries(context.Background(), "FED")
	if err != nil {
		t.Fatalf("GetSeries failed: %v", err)
	}

	if len(series.Tags) != 2 || series.Tags[0] != "Economy" {
		t.Errorf("Tags = %v, want [Economy Macro]", series.Tags)
	}
}

func TestGetTrades(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/trade-api/v2/markets/trades" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("limit") != "100" {
			t.Errorf("limit = %q, want 100", q.Get("limit"))
		}
		if q.Get("min_ts") != "1700000000" {
			t.Errorf("min_ts = %q, want 1700000000", q.Get("min_ts"))
		}
		w.Write([]byte(`{"trades":[{"trade_id":"t-1","ticker":"FED-24DEC","count":1000,"yes_price":80,"no_price":20,"taker_side":"yes","created_time":"2024-01-15T14:30:00Z"}],"cursor":"next-page"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	resp, err := client.GetTrades(context.Background(), GetTradesOptions{
		Limit: 100,
		MinTS: 1700000000,
	})
	if err != nil {
		t.Fatalf("GetTrades failed: %v", err)
	}

	if len(resp.Trades) != 1 {
		t.Fatalf("got %d trades, want 1", len(resp.Trades))
	}
	if resp.Trades[0].TakerSide != "yes" {
		t.Errorf("TakerSide = %q, want yes", resp.Trades[0].TakerSide)
	}
	if resp.Cursor != "next-page" {
		t.Errorf("Cursor = %q, want next-page", resp.Cursor)
	}
}

func TestGetLeaderboard(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/social/leaderboard" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("metric") != "profit" {
			t.Errorf("metric = %q, want profit", r.URL.Query().Get("metric"))
		}
		w.Write([]byte(`{"leaderboard":[{"rank":1,"username":"whale1","value":"1250000.00"}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	resp, err := client.GetLeaderboard(context.Background(), "profit", 10, 30)
	if err != nil {
		t.Fatalf("GetLeaderboard failed: %v", err)
	}

	if len(resp.Entries) != 1 || resp.Entries[0].Username != "whale1" {
		t.Errorf("Entries = %+v", resp.Entries)
	}
}

func TestRetryOn500(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"market":{"ticker":"FED-24DEC"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, nil, WithRetries(3, 10*time.Millisecond))
	if _, err := client.GetMarket(context.Background(), "FED-24DEC"); err != nil {
		t.Fatalf("GetMarket failed after retries: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestRetryOn429(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"trades":[],"cursor":""}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, nil, WithRetries(2, 10*time.Millisecond))
	if _, err := client.GetTrades(context.Background(), GetTradesOptions{}); err != nil {
		t.Fatalf("GetTrades failed after retry: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestNoRetryOn404(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, nil, WithRetries(3, 10*time.Millisecond))
	_, err := client.GetMarket(context.Background(), "MISSING")
	if err == nil {
		t.Fatal("expected error for 404")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", apiErr.StatusCode)
	}
	if apiErr.IsRetryable() {
		t.Error("404 should not be retryable")
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1 (no retries)", calls.Load())
	}
}

func TestMaxRetriesExceeded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL, nil, WithRetries(2, time.Millisecond))
	_, err := client.GetMarket(context.Background(), "FED-24DEC")
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected wrapped *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("StatusCode = %d, want 503", apiErr.StatusCode)
	}
}

func TestContextCancelDuringBackoff(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, nil, WithRetries(5, time.Minute))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.GetMarket(ctx, "FED-24DEC")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected context.DeadlineExceeded, got %v", err)
	}
}

func TestSignedRequestHeaders(t *testing.T) {
	var gotKey, gotTS, gotSig string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("KALSHI-ACCESS-KEY")
		gotTS = r.Header.Get("KALSHI-ACCESS-TIMESTAMP")
		gotSig = r.Header.Get("KALSHI-ACCESS-SIGNATURE")
		w.Write([]byte(`{"market":{"ticker":"FED-24DEC"}}`))
	}))
	defer server.Close()

	signer := testSigner(t, "rest-key")
	client := NewClient(server.URL, signer)
	if _, err := client.GetMarket(context.Background(), "FED-24DEC"); err != nil {
		t.Fatalf("GetMarket failed: %v", err)
	}

	if gotKey != "rest-key" {
		t.Errorf("KALSHI-ACCESS-KEY = %q, want rest-key", gotKey)
	}
	if gotTS == "" {
		t.Error("KALSHI-ACCESS-TIMESTAMP not set")
	}
	if gotSig == "" {
		t.Error("KALSHI-ACCESS-SIGNATURE not set")
	}
}

func TestUnsignedRequestOmitsHeaders(t *testing.T) {
	var gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("KALSHI-ACCESS-KEY")
		w.Write([]byte(`{"trades":[],"cursor":""}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	if _, err := client.GetTrades(context.Background(), GetTradesOptions{}); err != nil {
		t.Fatalf("GetTrades failed: %v", err)
	}
	if gotKey != "" {
		t.Errorf("KALSHI-ACCESS-KEY = %q, want unset", gotKey)
	}
}
