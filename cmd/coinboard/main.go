// Package main runs the cryptoplace terminal dashboard.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

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
	"github.com/archon-research/cryptoplace/internal/tui"
)

const serviceName = "coinboard"

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
	offline := flag.Bool("offline", false, "use built-in sample data instead of calling CoinGecko")
	showVersion := flag.Bool("version", false, "print version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("Coinboard - Cryptoplace Dashboard\n")
		fmt.Printf("  Commit:     %s\n", GitCommit)
		fmt.Printf("  Branch:     %s\n", GitBranch)
		fmt.Printf("  Build Time: %s\n", BuildTime)
		return
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

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, *offline); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, offline bool) error {
	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()

	logger := slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{
		Level: env.ParseLogLevel(cfg.LogLevel, slog.LevelInfo),
	}))
	slog.SetDefault(logger)
	logger.Info("starting "+serviceName, "commit", GitCommit, "offline", offline)

	// The screen belongs to bubbletea, so spans only leave the process
	// through OTLP.
	shutdownTracer, err := telemetry.InitTracer(ctx, telemetry.TracerConfig{
		ServiceName:    serviceName,
		ServiceVersion: GitCommit,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		StdoutWriter:   io.Discard,
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

	model, err := tui.NewModel(ctx, tui.Config{
		HomePageSize:   cfg.HomePageSize,
		MarketPageSize: cfg.MarketPageSize,
		Logger:         logger,
	}, store, details, pages)
	if err != nil {
		return fmt.Errorf("creating dashboard: %w", err)
	}
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		if strings.Contains(err.Error(), "TTY") || strings.Contains(err.Error(), "/dev/tty") {
			return fmt.Errorf("coinboard requires a real terminal")
		}
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}

func newProvider(cfg config.Config, offline bool, logger *slog.Logger) (outbound.MarketDataProvider, error) {
	if offline {
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
