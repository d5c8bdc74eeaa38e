package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dyike/CortexBrief/internal/scheduler"
	"github.com/dyike/CortexBrief/internal/server"
	"github.com/dyike/CortexBrief/internal/service"
)

// missionTimeout bounds one scheduled run, LLM call included.
const missionTimeout = 10 * time.Minute

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	f := &flags{}
	var a *app

	rootCmd := &cobra.Command{
		Use:   "cortexbrief",
		Short: "CortexBrief - daily market intelligence briefing",
		Long: `CortexBrief collects policy, market, macro, sentiment and news signals into one
plain-text briefing, summarizes it with an LLM and delivers the result.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			var err error
			a, err = bootstrap(f)
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Default behavior: run the mission once
			return runMission(cmd.Context(), a, false)
		},
	}

	rootCmd.AddCommand(newRunCmd(&a))
	rootCmd.AddCommand(newRawCmd(&a))
	rootCmd.AddCommand(newServeCmd(&a))
	rootCmd.AddCommand(newScheduleCmd(&a))
	rootCmd.AddCommand(newConfigCmd(&a))
	rootCmd.AddCommand(newVersionCmd())

	// Global flags
	rootCmd.PersistentFlags().BoolVar(&f.debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&f.sourcesFile, "sources", "", "Sources YAML file path")
	rootCmd.PersistentFlags().StringVar(&f.logFormat, "log-format", "", "Log format: console or json")
	rootCmd.PersistentFlags().BoolVar(&f.plain, "plain", false, "Disable styled terminal output")

	return rootCmd
}

func newRunCmd(a **app) *cobra.Command {
	var confirm bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Generate, summarize and deliver today's briefing",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMission(cmd.Context(), *a, confirm)
		},
	}
	cmd.Flags().BoolVar(&confirm, "confirm", false, "Ask before delivering the note")
	return cmd
}

func runMission(ctx context.Context, a *app, confirm bool) error {
	p, err := a.pipeline(ctx)
	if err != nil {
		return err
	}
	defer p.close()

	var confirmFn service.ConfirmFunc
	if confirm {
		confirmFn = confirmDispatch(a.cfg.NotifyChannels)
	}

	out, err := p.mission.Run(ctx, confirmFn)
	if err != nil {
		a.printer.Error(err, "dispatch")
		return err
	}
	if !out.Delivered {
		a.printer.Info("Briefing generated, nothing delivered.")
	}
	return nil
}

func newRawCmd(a **app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "raw",
		Short: "Print the raw briefing without summarizing or delivering it",
		RunE: func(cmd *cobra.Command, args []string) error {
			agg, closer := (*a).aggregator()
			defer closer()

			report := agg.Generate(cmd.Context())
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			(*a).printer.Raw(report.Text)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the fragments and portfolio as JSON")
	return cmd
}

func newServeCmd(a **app) *cobra.Command {
	var addr string
	var withSchedule bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the briefing and metrics over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			env := *a
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			p, err := env.pipeline(ctx)
			if err != nil {
				return err
			}
			defer p.close()

			if withSchedule {
				s := scheduler.New(missionJob(p.mission), missionTimeout, env.logger)
				if err := s.Start(env.cfg.Schedule); err != nil {
					return err
				}
				defer s.Stop()
			}

			if addr == "" {
				addr = env.cfg.ServeAddr
			}
			srv := server.NewServer(&server.Handler{
				Generator:  p.aggregator,
				Summarizer: p.analyst,
				Mission:    p.mission,
			},
				server.WithAddr(addr),
				server.WithGatherer(env.registry),
				server.WithLogger(env.logger),
			)
			return srv.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default SERVE_ADDR)")
	cmd.Flags().BoolVar(&withSchedule, "schedule", false, "Also run the daily schedule")
	return cmd
}

func newScheduleCmd(a **app) *cobra.Command {
	var now bool
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the mission on the BRIEFING_SCHEDULE cron spec",
		RunE: func(cmd *cobra.Command, args []string) error {
			env := *a
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			p, err := env.pipeline(ctx)
			if err != nil {
				return err
			}
			defer p.close()

			s := scheduler.New(missionJob(p.mission), missionTimeout, env.logger)
			if err := s.Start(env.cfg.Schedule); err != nil {
				return err
			}
			env.printer.Info(fmt.Sprintf("Next briefing at %s", s.Next().Format("Mon 2006-01-02 15:04 MST")))
			if now {
				s.RunNow()
			}

			<-ctx.Done()
			s.Stop()
			return nil
		},
	}
	cmd.Flags().BoolVar(&now, "now", false, "Also run once immediately")
	return cmd
}

func missionJob(m *service.Mission) scheduler.Job {
	return func(ctx context.Context) error {
		_, err := m.Run(ctx, nil)
		return err
	}
}

// newVersionCmd creates the version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("CortexBrief %s\n", Version)
		},
	}
}

// newConfigCmd creates the config command
func newConfigCmd(a **app) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration with credentials masked",
		Run: func(cmd *cobra.Command, args []string) {
			showConfig(*a)
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration and report disabled sources",
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateConfig(*a)
		},
	})

	return configCmd
}

func showConfig(a *app) {
	settings := a.cfg.Redacted()
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Println("📋 Current CortexBrief Configuration:")
	fmt.Println("═══════════════════════════════════════")
	for _, k := range keys {
		fmt.Printf("%-20s %s\n", k+":", settings[k])
	}
	fmt.Println()
	fmt.Printf("%-20s %s\n", "sources file:", a.sourcesPath)
	fmt.Printf("%-20s %v\n", "watchlist:", a.sources.Watchlist)
}

// sourceWarnings lists the features a missing credential disables.
func sourceWarnings(a *app) []string {
	var warnings []string
	if a.cfg.CongressAPIKey == "" {
		warnings = append(warnings, "CONGRESS_KEY not set: hearings, nominations and bills will read Unavailable")
	}
	if a.cfg.FredAPIKey == "" {
		warnings = append(warnings, "FRED_API_KEY not set: macro dashboard will read No FRED Key")
	}
	if a.cfg.FinnhubAPIKey == "" {
		warnings = append(warnings, "FINNHUB_KEY not set: insider sentiment will read No Key")
	}
	if !a.cfg.HasLongport() {
		warnings = append(warnings, "Longport credentials incomplete: watchlist prices come from Yahoo")
	}
	return warnings
}

func validateConfig(a *app) error {
	fmt.Println("🔍 Validating CortexBrief Configuration...")

	if err := a.cfg.Validate(); err != nil {
		a.printer.Error(err, "config")
		return err
	}
	if err := a.sources.Validate(); err != nil {
		a.printer.Error(err, "sources")
		return err
	}

	warnings := sourceWarnings(a)
	for _, w := range warnings {
		a.printer.Warning(w)
	}
	if len(warnings) == 0 {
		a.printer.Success("Configuration validation completed successfully!")
	} else {
		a.printer.Info(fmt.Sprintf("Configuration valid with %d warnings.", len(warnings)))
	}
	return nil
}
