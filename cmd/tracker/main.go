package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/valshi/whaletracker/internal/alert"
	"github.com/valshi/whaletracker/internal/api"
	"github.com/valshi/whaletracker/internal/auth"
	"github.com/valshi/whaletracker/internal/classify"
	"github.com/valshi/whaletracker/internal/config"
	"github.com/valshi/whaletracker/internal/market"
	"github.com/valshi/whaletracker/internal/metrics"
	"github.com/valshi/whaletracker/internal/store"
	"github.com/valshi/whaletracker/internal/stream"
	"github.com/valshi/whaletracker/internal/supervisor"
	"github.com/valshi/whaletracker/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/tracker.local.yaml", "path to config file")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting tracker",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"api_url", cfg.API.RestURL,
		"ws_url", cfg.API.WSURL,
		"min_notional", cfg.Alerts.MinNotional,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Connect to database
	logger.Info("connecting to database",
		"host", cfg.Database.Host,
		"port", cfg.Database.Port,
		"database", cfg.Database.Name,
	)

	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	st := store.New(pool, logger)
	defer st.Close()

	if err := st.Migrate(ctx); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	logger.Info("database ready")

	// Credentials are optional. Without them the stream handshake cannot be
	// signed, so the supervisor runs in REST polling mode.
	var signer *auth.Signer
	if cfg.API.KeyID != "" && cfg.API.PrivateKeyPath != "" {
		signer, err = auth.NewSigner(cfg.API.KeyID, cfg.API.PrivateKeyPath)
		if err != nil {
			logger.Error("failed to load API credentials", "error", err)
			os.Exit(1)
		}
	} else {
		logger.Warn("no API credentials configured, stream disabled")
	}

	// Create API client
	apiClient := api.NewClient(
		cfg.API.RestURL,
		signer,
		api.WithLogger(logger),
		api.WithTimeout(cfg.API.Timeout),
		api.WithRetries(cfg.API.MaxRetries, time.Second),
	)

	// Supervisor is created after the cache, but the cache's memory tier
	// keys off stream liveness; bridge the cycle with a late-bound probe.
	var sup *supervisor.Supervisor
	connected := func() bool { return sup != nil && sup.IsConnected() }

	cache := market.NewCache(st, market.NewAPIFetcher(apiClient), connected, logger)

	// Delivery adapter
	var notifier alert.Notifier
	if cfg.Telegram.BotToken != "" {
		notifier, err = alert.NewTelegramNotifier(cfg.Telegram.BotToken)
		if err != nil {
			logger.Error("failed to initialize telegram bot", "error", err)
			os.Exit(1)
		}
		logger.Info("telegram delivery enabled")
	} else {
		logger.Warn("no telegram token configured, logging alerts instead")
		notifier = alert.NewLogNotifier(logger)
	}

	fanout := alert.NewFanout(st, cache, notifier, cfg.Topics, cfg.Alerts.MaxConcurrentDeliveries, logger)
	fanout.Grace = cfg.Alerts.ShutdownGrace
	fanout.Delivered = func(err error) {
		result := "ok"
		if err != nil {
			result = "error"
		}
		metrics.AlertsSent.WithLabelValues(result).Inc()
	}

	classifier := classify.New(decimal.NewFromFloat(cfg.Alerts.MinNotional))

	factory := func() stream.Transport {
		streamCfg := stream.ClientConfig{
			URL:          cfg.API.WSURL,
			PingInterval: cfg.Stream.PingInterval,
			PingTimeout:  cfg.Stream.PingTimeout,
			WriteTimeout: cfg.Stream.WriteTimeout,
			BufferSize:   cfg.Stream.BufferSize,
		}
		return stream.NewTransport(streamCfg, wsHeaders(signer), logger)
	}

	sup = supervisor.New(
		supervisor.Config{
			Channels:           cfg.Stream.Channels,
			SubscribeTimeout:   cfg.Stream.SubscribeTimeout,
			ReconnectBaseDelay: cfg.Stream.ReconnectBaseDelay,
			ReconnectMaxDelay:  cfg.Stream.ReconnectMaxDelay,
			PollInterval:       cfg.Poller.Interval,
			PollPageSize:       cfg.Poller.PageSize,
			Streaming:          signer != nil,
		},
		factory,
		apiClient,
		classifier,
		st,
		fanout,
		cache,
		logger,
	)

	// Metrics endpoint
	go func() {
		if err := metrics.Serve(ctx, cfg.Metrics.Port, cfg.Metrics.Path, logger); err != nil {
			logger.Error("metrics server error", "error", err)
		}
	}()

	// Health endpoint
	healthServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port+1),
		Handler: createHealthHandler(st, sup, cache),
	}
	go func() {
		logger.Info("starting health server", "addr", healthServer.Addr)
		if err := healthServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("health server error", "error", err)
		}
	}()

	logger.Info("tracker running",
		"streaming", signer != nil,
		"health_url", fmt.Sprintf("http://localhost%s/health", healthServer.Addr),
	)

	err = sup.Run(ctx)
	if err != nil && err != context.Canceled {
		logger.Error("supervisor stopped", "error", err)
	}

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Alerts.ShutdownGrace)
	defer shutdownCancel()
	healthServer.Shutdown(shutdownCtx)

	logger.Info("tracker stopped")
}

// wsHeaders adapts the signer to the transport's header callback. Signatures
// embed a timestamp, so they are generated per handshake, not once.
func wsHeaders(signer *auth.Signer) stream.HeaderSource {
	if signer == nil {
		return nil
	}
	return func() (http.Header, error) {
		raw, err := signer.WebSocketHeaders()
		if err != nil {
			return nil, err
		}
		headers := make(http.Header, len(raw))
		for k, v := range raw {
			headers.Set(k, v)
		}
		return headers, nil
	}
}

// createHealthHandler creates the HTTP handler for health checks.
func createHealthHandler(st *store.Store, sup *supervisor.Supervisor, cache *market.Cache) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := struct {
			Status     string                 `json:"status"`
			Components map[string]interface{} `json:"components"`
		}{
			Status:     "healthy",
			Components: make(map[string]interface{}),
		}

		// Check database
		if err := st.Ping(ctx); err != nil {
			health.Status = "unhealthy"
			health.Components["postgres"] = map[string]string{
				"status": "disconnected",
				"error":  err.Error(),
			}
		} else {
			health.Components["postgres"] = "connected"
		}

		// Stream state: degraded while polling is fine, but worth surfacing
		if sup.IsConnected() {
			health.Components["stream"] = "connected"
		} else {
			health.Components["stream"] = "polling"
			if health.Status == "healthy" {
				health.Status = "degraded"
			}
		}

		health.Components["market_cache"] = map[string]interface{}{
			"markets": cache.Len(),
		}

		w.Header().Set("Content-Type", "application/json")
		if health.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(health)
	})

	return mux
}
