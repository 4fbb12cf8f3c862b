// Package metrics exposes Prometheus metrics for monitoring.
//
// Key metrics:
//   - Trade throughput by classification result
//   - Alert delivery outcomes
//   - Stream connection state and reconnect counts
//   - REST fallback poll activity
package metrics

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// TradesProcessed counts inbound trades by result: "kept", "dropped",
	// or "malformed".
	TradesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "whaletracker_trades_processed_total",
		Help: "Trades processed, by classification result.",
	}, []string{"result"})

	// AlertsSent counts delivery attempts by result: "ok" or "error".
	AlertsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "whaletracker_alerts_sent_total",
		Help: "Alert deliveries, by result.",
	}, []string{"result"})

	// Reconnects counts stream reconnect attempts.
	Reconnects = promauto.NewCounter(prometheus.CounterOpts{
		Name: "whaletracker_stream_reconnects_total",
		Help: "WebSocket reconnect attempts.",
	})

	// FallbackPolls counts REST fallback poll cycles.
	FallbackPolls = promauto.NewCounter(prometheus.CounterOpts{
		Name: "whaletracker_rest_fallback_polls_total",
		Help: "REST fallback poll cycles.",
	})

	// StreamConnected is 1 while the WebSocket is up.
	StreamConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "whaletracker_stream_connected",
		Help: "Whether the trade stream is currently connected.",
	})
)

// Serve runs the metrics endpoint until ctx is cancelled.
func Serve(ctx context.Context, port int, path string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	mux.Handle(path, promhttp.Handler())

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("metrics server listening", "addr", srv.Addr, "path", path)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	}
}
