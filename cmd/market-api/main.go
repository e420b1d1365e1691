// Package main serves the cryptoplace JSON API.
//
// The market list is fetched once at startup and again on every currency
// switch or retry. /health/ready reports 503 until the first list has landed.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"sync/atomic"
	"syscall"
	"time"

	httpadapter "github.com/archon-research/cryptoplace/internal/adapters/inbound/http"
	"github.com/archon-research/cryptoplace/internal/adapters/outbound/coingecko"
	"github.com/archon-research/cryptoplace/internal/adapters/outbound/fixtures"
	"github.com/archon-research/cryptoplace/internal/adapters/outbound/memory"
	"github.com/archon-research/cryptoplace/internal/adapters/outbound/redis"
	"github.com/archon-research/cryptoplace/internal/adapters/outbound/telemetry"
	"github.com/archon-research/cryptoplace/internal/config"
	"github.com/archon-research/cryptoplace/internal/pkg/env"
	"github.com/archon-research/cryptoplace/internal/ports/outbound"
	"github.com/archon-research/cryptoplace/internal/services/coin_detail"
	"github.com/archon-research/cryptoplace/internal/services/content"
	"github.com/archon-research/cryptoplace/internal/services/market_data"
	"github.com/archon-research/cryptoplace/internal/services/shared"
)

const serviceName = "market-api"

// Build-time variables - can be set via ldflags, otherwise populated from Go's build info.
var (
	GitCommit string
	GitBranch string
	BuildTime string
)

func init() {
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				if GitCommit == "" {
					GitCommit = setting.Value
				}
			case "vcs.time":
				if BuildTime == "" {
					BuildTime = setting.Value
				}
			}
		}
	}
}

func main() {
	configPath := flag.String("config", "", "config file (default is $HOME/.config/cryptoplace/config.yml)")
	offline := flag.Bool("offline", false, "serve built-in sample data instead of calling CoinGecko")
	showVersion := flag.Bool("version", false, "Show version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s\n", serviceName)
		fmt.Printf("  Commit:     %s\n", GitCommit)
		fmt.Printf("  Branch:     %s\n", GitBranch)
		fmt.Printf("  Build Time: %s\n", BuildTime)
		os.Exit(0)
	}

	if err := config.LoadEnvFiles(config.DefaultEnvFiles...); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading env files: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: env.ParseLogLevel(cfg.LogLevel, slog.LevelInfo),
	}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("starting "+serviceName,
		"commit", GitCommit,
		"addr", cfg.ListenAddr,
		"currency", cfg.Currency,
		"offline", *offline,
	)

	if err := run(ctx, logger, cfg, *offline); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

func run(ctx context.Context, logger *slog.Logger, cfg config.Config, offline bool) error {
	shutdownTracer, err := telemetry.InitTracer(ctx, telemetry.TracerConfig{
		ServiceName:    serviceName,
		ServiceVersion: GitCommit,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
	})
	if err != nil {
		return fmt.Errorf("initializing tracer: %w", err)
	}
	shutdownMetrics, err := telemetry.InitMetrics(ctx, telemetry.MetricConfig{
		ServiceName:    serviceName,
		ServiceVersion: GitCommit,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
	})
	if err != nil {
		return fmt.Errorf("initializing metrics: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(flushCtx); err != nil {
			logger.Warn("tracer shutdown failed", "error", err)
		}
		if err := shutdownMetrics(flushCtx); err != nil {
			logger.Warn("metrics shutdown failed", "error", err)
		}
	}()

	appMetrics, err := shared.NewAppTelemetry()
	if err != nil {
		return fmt.Errorf("creating app metrics: %w", err)
	}
	httpMetrics, err := telemetry.NewHTTPMetrics(serviceName)
	if err != nil {
		return fmt.Errorf("creating http metrics: %w", err)
	}

	provider, err := newProvider(cfg, offline, logger)
	if err != nil {
		return err
	}

	storeConfig := market_data.StoreConfig{
		InitialCurrency: cfg.InitialCurrency(),
		Logger:          logger,
		Metrics:         appMetrics,
	}
	if cfg.RedisAddr != "" {
		cache, err := redis.NewSnapshotCache(cfg.Redis(), logger)
		if err != nil {
			return fmt.Errorf("creating snapshot cache: %w", err)
		}
		defer cache.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err = cache.Ping(pingCtx)
		cancel()
		if err != nil {
			logger.Warn("redis unreachable, continuing without snapshot cache", "addr", cfg.RedisAddr, "error", err)
		} else {
			storeConfig.Cache = cache
			logger.Info("market snapshot cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.CacheTTL)
		}
	}

	store, err := market_data.NewStore(storeConfig, provider)
	if err != nil {
		return fmt.Errorf("creating market store: %w", err)
	}

	details, err := coin_detail.NewService(coin_detail.Config{
		Logger:  logger,
		Metrics: appMetrics,
	}, provider)
	if err != nil {
		return fmt.Errorf("creating coin detail service: %w", err)
	}

	catalog, err := fixtures.NewCatalog()
	if err != nil {
		return fmt.Errorf("loading content catalog: %w", err)
	}
	pages, err := content.NewService(catalog)
	if err != nil {
		return fmt.Errorf("creating content service: %w", err)
	}

	handler, err := httpadapter.NewHandler(httpadapter.HandlerConfig{
		MarketPageSize: cfg.MarketPageSize,
		Logger:         logger,
	}, store, details, pages)
	if err != nil {
		return fmt.Errorf("creating handler: %w", err)
	}

	var shuttingDown atomic.Bool
	server := httpadapter.NewServer(httpadapter.ServerConfig{
		Addr:    cfg.ListenAddr,
		Logger:  logger,
		Metrics: httpMetrics,
	}, handler, httpadapter.NewHealthHandler(store, &shuttingDown))

	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}

	go func() {
		if err := store.Load(ctx); err != nil {
			logger.Warn("initial market fetch failed", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("received signal, shutting down")
	shuttingDown.Store(true)

	if err := server.Shutdown(10 * time.Second); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

func newProvider(cfg config.Config, offline bool, logger *slog.Logger) (outbound.MarketDataProvider, error) {
	if offline {
		logger.Info("serving sample market data")
		return memory.NewSampleProvider(time.Now()), nil
	}
	clientConfig := cfg.CoinGecko()
	clientConfig.Logger = logger
	client, err := coingecko.NewClient(clientConfig)
	if err != nil {
		return nil, fmt.Errorf("creating coingecko client: %w", err)
	}
	return client, nil
}
