// Package cli provides the command-line interface for CortexBrief
package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/dyike/CortexBrief/config"
	"github.com/dyike/CortexBrief/internal/briefing"
	"github.com/dyike/CortexBrief/internal/debug"
	"github.com/dyike/CortexBrief/internal/display"
	"github.com/dyike/CortexBrief/internal/httpcache"
	"github.com/dyike/CortexBrief/internal/logger"
	"github.com/dyike/CortexBrief/internal/metrics"
	"github.com/dyike/CortexBrief/internal/notify"
	"github.com/dyike/CortexBrief/internal/service"
	"github.com/dyike/CortexBrief/internal/summary"
)

// Version is stamped at build time with -ldflags "-X ...cli.Version=v1.2.3".
var Version = "dev"

// Run starts the CLI application
func Run() {
	rootCmd := NewRootCmd()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app holds everything a command needs once configuration is loaded.
type app struct {
	cfg         *config.Config
	sources     config.Sources
	sourcesPath string
	logger      zerolog.Logger
	registry    *prometheus.Registry
	metrics     *metrics.Recorder
	transport   http.RoundTripper
	printer     *display.Printer
}

type flags struct {
	debug       bool
	sourcesFile string
	logFormat   string
	plain       bool
}

func bootstrap(f *flags) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if f.debug {
		cfg.Debug = true
		cfg.LogLevel = "debug"
	}
	if f.sourcesFile != "" {
		cfg.SourcesFile = f.sourcesFile
	}
	if f.logFormat != "" {
		cfg.LogFormat = f.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		return nil, err
	}

	var managerOpts []config.ManagerOption
	if cfg.SourcesFile != "" {
		managerOpts = append(managerOpts, config.WithConfigPath(cfg.SourcesFile))
	}
	manager, err := config.NewManager(managerOpts...)
	if err != nil {
		return nil, fmt.Errorf("load sources: %w", err)
	}
	if err := manager.SaveError(); err != nil {
		log.Warn().Err(err).Str("path", manager.Path()).Msg("sources file not saved, using built-in tables")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	rec := metrics.New(reg)

	var transport http.RoundTripper = http.DefaultTransport
	if cfg.CacheEnabled {
		transport = httpcache.New(httpcache.WithTTL(cfg.CacheTTL), httpcache.WithMetrics(rec))
	}

	printer := display.New(os.Stdout)
	if f.plain {
		printer = printer.Plain()
	}

	return &app{
		cfg:         cfg,
		sources:     manager.Get(),
		sourcesPath: manager.Path(),
		logger:      log,
		registry:    reg,
		metrics:     rec,
		transport:   transport,
		printer:     printer,
	}, nil
}

// aggregator wires the briefing pipeline; the closer releases provider
// connections.
func (a *app) aggregator() (*briefing.Aggregator, func() error) {
	return briefing.Build(a.cfg, &a.sources, briefing.Deps{
		Transport: a.transport,
		Logger:    a.logger,
		Metrics:   a.metrics,
		Now:       time.Now,
	})
}

func (a *app) summarizer(ctx context.Context) (summary.Summarizer, error) {
	if err := debug.NewEinoDebugger(a.cfg, a.logger).Initialize(ctx); err != nil {
		return nil, err
	}

	gen, err := summary.NewGenerator(ctx, a.cfg, a.logger)
	if err != nil {
		a.logger.Warn().Err(err).Str("provider", a.cfg.LLMProvider).Msg("summarizer unavailable")
		gen = summary.Unavailable(err)
	}
	return summary.NewAnalyst(gen, a.sources.Watchlist, a.logger), nil
}

// pipeline is one fully wired briefing stack.
type pipeline struct {
	aggregator *briefing.Aggregator
	analyst    summary.Summarizer
	mission    *service.Mission
	close      func() error
}

func (a *app) pipeline(ctx context.Context) (*pipeline, error) {
	agg, closer := a.aggregator()

	analyst, err := a.summarizer(ctx)
	if err != nil {
		_ = closer()
		return nil, err
	}

	dispatcher, err := notify.FromConfig(a.cfg, a.transport, a.printer, a.logger)
	if err != nil {
		_ = closer()
		return nil, err
	}

	return &pipeline{
		aggregator: agg,
		analyst:    analyst,
		mission:    service.NewMission(agg, analyst, dispatcher, a.logger),
		close:      closer,
	}, nil
}
