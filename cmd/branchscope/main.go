package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/branchscope/branchscope/internal/adapter/api"
	"github.com/branchscope/branchscope/internal/adapter/cache/sqlite"
	"github.com/branchscope/branchscope/internal/adapter/cli"
	"github.com/branchscope/branchscope/internal/adapter/gitlab"
	"github.com/branchscope/branchscope/internal/adapter/local"
	"github.com/branchscope/branchscope/internal/adapter/observability"
	"github.com/branchscope/branchscope/internal/adapter/output/markdown"
	"github.com/branchscope/branchscope/internal/adapter/rest"
	"github.com/branchscope/branchscope/internal/config"
	"github.com/branchscope/branchscope/internal/usecase/compare"
	"github.com/branchscope/branchscope/internal/version"
)

func main() {
	if err := run(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

func run() error {
	// Cancellable context with signal handling for graceful shutdown.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(config.LoaderOptions{
		ConfigPaths: defaultConfigPaths(),
		FileName:    "branchscope",
		EnvPrefix:   "BRANCHSCOPE",
	})
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	obs := buildObservability(cfg.Observability)

	source := buildSource(cfg, obs)

	deps := compare.Deps{Source: source}
	if obs.logger != nil {
		deps.Logger = observability.NewCompareLogger(obs.logger)
	}

	if cfg.Cache.Enabled {
		store, storeErr := sqlite.NewStore(cfg.Cache.Path, parseDuration(cfg.Cache.TTL, 10*time.Minute))
		if storeErr != nil {
			log.Printf("warning: commit cache disabled: %v", storeErr)
		} else {
			deps.Cache = store
			defer store.Close()
		}
	}

	orchestrator := compare.NewOrchestrator(deps)

	server := api.NewServer(orchestrator, cfg.Server.Addr)
	server.SetRequestTimeout(parseDuration(cfg.Server.RequestTimeout, 2*time.Minute))
	if obs.logger != nil {
		server.SetLogger(obs.logger)
	}

	// Timestamp function for deterministic report file naming.
	nowFunc := func() string {
		return time.Now().UTC().Format("20060102T150405Z")
	}

	root := cli.NewRootCommand(cli.Dependencies{
		Comparer:      orchestrator,
		Server:        server,
		Reports:       markdown.NewWriter(nowFunc),
		DefaultToken:  cfg.GitLab.Token,
		DefaultOutput: cfg.Output.Directory,
		Version:       version.Value(),
	})

	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, cli.ErrVersionRequested) {
			return nil
		}
		return fmt.Errorf("command failed: %w", err)
	}
	return nil
}

// buildSource selects the repository data source: the GitLab REST API by
// default, or local bare mirrors when mirror mode is enabled.
func buildSource(cfg config.Config, obs observabilityComponents) compare.Source {
	if cfg.Mirror.Enabled {
		engine := local.NewEngine(cfg.Mirror.Dir)
		engine.SetTimeouts(
			parseDuration(cfg.Mirror.CloneTimeout, 5*time.Minute),
			parseDuration(cfg.Mirror.FetchTimeout, 2*time.Minute),
		)
		if obs.logger != nil {
			engine.SetLogger(obs.logger)
		}
		return engine
	}

	client := gitlab.NewClient()
	client.SetTimeout(parseDuration(cfg.HTTP.Timeout, 30*time.Second))
	client.SetRetryConfig(buildRetryConfig(cfg.HTTP))
	if obs.logger != nil {
		client.SetLogger(obs.logger)
	}
	if obs.metrics != nil {
		client.SetMetrics(obs.metrics)
	}
	return client
}

func buildRetryConfig(cfg config.HTTPConfig) rest.RetryConfig {
	conf := rest.DefaultRetryConfig()
	if cfg.MaxRetries > 0 {
		conf.MaxRetries = cfg.MaxRetries
	}
	conf.InitialBackoff = parseDuration(cfg.InitialBackoff, conf.InitialBackoff)
	conf.MaxBackoff = parseDuration(cfg.MaxBackoff, conf.MaxBackoff)
	if cfg.BackoffMultiplier > 0 {
		conf.Multiplier = cfg.BackoffMultiplier
	}
	return conf
}

// observabilityComponents holds shared observability instances.
type observabilityComponents struct {
	logger  rest.Logger
	metrics rest.Metrics
}

// buildObservability creates observability components based on configuration.
func buildObservability(cfg config.ObservabilityConfig) observabilityComponents {
	var obs observabilityComponents

	if cfg.Logging.Enabled {
		level := rest.LogLevelInfo
		switch cfg.Logging.Level {
		case "debug":
			level = rest.LogLevelDebug
		case "error":
			level = rest.LogLevelError
		}

		format := rest.LogFormatHuman
		if cfg.Logging.Format == "json" {
			format = rest.LogFormatJSON
		}

		obs.logger = rest.NewDefaultLogger(level, format, cfg.Logging.RedactTokens)
	}

	if cfg.Metrics.Enabled {
		obs.metrics = rest.NewDefaultMetrics()
	}

	return obs
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("warning: invalid duration %q, using %s", value, fallback)
		return fallback
	}
	return parsed
}

func defaultConfigPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "branchscope"))
	}
	return paths
}

// Compile-time interface compliance checks
var _ compare.Source = (*gitlab.Client)(nil)
var _ compare.Source = (*local.Engine)(nil)
var _ compare.Cache = (*sqlite.Store)(nil)
var _ cli.Comparer = (*compare.Orchestrator)(nil)
var _ cli.APIServer = (*api.Server)(nil)
var _ cli.ReportWriter = (*markdown.Writer)(nil)
