// edgarwatch watches SEC EDGAR filings for a list of companies and reports
// how much each filing's narrative sections changed since the previous
// filing of the same form type.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/seenimoa/edgarwatch/internal/config"
	"github.com/seenimoa/edgarwatch/internal/logger"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "edgarwatch",
	Short: "Detect changes between consecutive SEC filings",
	Long: `edgarwatch resolves a watchlist of companies to SEC CIKs, fetches their
recent filings from EDGAR, extracts the standard 10-K/10-Q item sections and
scores how much each filing changed against the previous filing of the same
form type.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		level := cfg.Logging.Level
		if override, _ := cmd.Flags().GetString("log-level"); override != "" {
			level = override
		}
		logger.Setup(logger.Options{Level: level, Format: cfg.Logging.Format})
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(statusCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("edgarwatch %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and secret status",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  edgarwatch status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:       %s (%s)\n", version, commit)
		fmt.Println()

		fmt.Println("  Configuration:")
		fmt.Printf("    User-Agent:    %s\n", cfg.SEC.UserAgent)
		fmt.Printf("    Listing:       %s (%d req/s)\n", cfg.SEC.Listing, cfg.SEC.RequestsPerSecond)
		fmt.Printf("    Watchlist:     %d companies\n", len(cfg.Run.Watchlist))
		fmt.Printf("    Form types:    %v (max %d per company)\n", cfg.Run.FormTypes, cfg.Run.MaxFilings)
		fmt.Printf("    Narrative:     %v (model: %s)\n", cfg.Narrative.Enabled, cfg.Narrative.Model)
		fmt.Printf("    Output:        %s\n", cfg.Output.Path)
		if cfg.Metrics.Listen != "" {
			fmt.Printf("    Metrics:       %s\n", cfg.Metrics.Listen)
		}
		fmt.Println()

		fmt.Println("  EDGAR:")
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()
		if err := newEdgarClient(cfg).Ping(ctx); err != nil {
			fmt.Printf("    unreachable: %v\n", err)
		} else {
			fmt.Println("    reachable")
		}
		fmt.Println()

		fmt.Println("  Secrets:")
		for _, s := range config.CheckSecrets(cfg) {
			status := "not set"
			if s.IsSet {
				status = fmt.Sprintf("set (%s: %s)", s.Source, s.Masked)
			}
			fmt.Printf("    %-25s %s\n", s.Name+":", status)
		}
		fmt.Println()

		if err := cfg.Validate(); err != nil {
			fmt.Printf("  Config problems:\n    %v\n", err)
		} else {
			fmt.Println("  Config: OK")
		}
		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}
