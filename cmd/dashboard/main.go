package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/localink/localink-backend/config"
	"github.com/localink/localink-backend/internal/logging"
)

var (
	// Global flags
	relayURL string
	variant  string
	schedule string
	timeout  time.Duration
	verbose  bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "localink-dashboard",
	Short: "Terminal view of the LocaLink relay dashboards",
	Long: `localink-dashboard reads the business or consumer relay endpoint and
prints the dashboard record whenever the automation delivers new content.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := "info"
		if verbose {
			level = "debug"
		}
		var err error
		logger, err = logging.New(level, "development")
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return validateVariant(variant)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll the relay and print every new record until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWatch(cmd.Context(), cmd.OutOrStdout(), cmd.InOrStdin())
	},
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Read the relay once and print the current record",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFetch(cmd.Context(), cmd.OutOrStdout())
	},
}

func init() {
	cfg, err := config.Load()
	defaults := config.DashboardConfig{
		RelayURL:     "http://localhost:8080/functions/v1/dashboard-webhook-proxy",
		PollSchedule: "@every 10s",
		Variant:      variantBusiness,
		Timeout:      15 * time.Second,
	}
	if err == nil {
		defaults = cfg.Dashboard
	}

	rootCmd.PersistentFlags().StringVar(&relayURL, "url", defaults.RelayURL, "Relay endpoint URL (DASHBOARD_RELAY_URL)")
	rootCmd.PersistentFlags().StringVar(&variant, "variant", defaults.Variant, "Dashboard variant: business or consumer")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", defaults.Timeout, "Per-request timeout")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	watchCmd.Flags().StringVar(&schedule, "schedule", defaults.PollSchedule, "Poll schedule, cron syntax or @every (DASHBOARD_POLL_SCHEDULE)")

	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(fetchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
