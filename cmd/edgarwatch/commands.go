package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/seenimoa/edgarwatch/internal/change"
	"github.com/seenimoa/edgarwatch/internal/config"
	"github.com/seenimoa/edgarwatch/internal/edgar"
	"github.com/seenimoa/edgarwatch/internal/metrics"
	"github.com/seenimoa/edgarwatch/internal/narrative"
	"github.com/seenimoa/edgarwatch/internal/pipeline"
	"github.com/seenimoa/edgarwatch/internal/resolver"
	"github.com/seenimoa/edgarwatch/internal/sections"
	"github.com/seenimoa/edgarwatch/internal/sink"
	"github.com/seenimoa/edgarwatch/pkg/models"
)

func newEdgarClient(c *config.Config) *edgar.Client {
	return edgar.New(edgar.Options{
		UserAgent:         c.SEC.UserAgent,
		RequestsPerSecond: c.SEC.RequestsPerSecond,
		Timeout:           config.Seconds(c.SEC.TimeoutSec),
		DirectoryTTL:      config.Seconds(c.SEC.DirectoryTTLSec),
		SecurityIDsFile:   c.SEC.SecurityIDsFile,
		Listing:           edgar.Listing(c.SEC.Listing),
	})
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// --- Run Command ---

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process the configured watchlist once",
	Long: `Resolve every watchlist entry, fetch recent filings and emit one JSON line
per filing with its change report. The run summary is printed at the end.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if ids, _ := cmd.Flags().GetStringSlice("company"); len(ids) > 0 {
			watchlist, err := parseIdentifiers(ids)
			if err != nil {
				return err
			}
			cfg.Run.Watchlist = watchlist
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		client := newEdgarClient(cfg)
		narrator, err := narrative.New(narrative.Options{
			Enabled:  cfg.Narrative.Enabled,
			APIKey:   cfg.Narrative.OpenAIKey,
			Model:    cfg.Narrative.Model,
			BaseURL:  cfg.Narrative.BaseURL,
			MaxChars: cfg.Narrative.MaxChars,
		})
		if err != nil {
			return err
		}

		out, err := sink.Open(cfg.Output.Path)
		if err != nil {
			return err
		}
		defer out.Close()

		deps := pipeline.Deps{
			Resolver: resolver.New(client),
			Fetcher:  client,
			Sink:     out,
			Narrator: narrator,
			Metrics:  metrics.New(),
		}
		if cfg.Webhook.URL != "" {
			deps.Notifier = sink.NewWebhook(cfg.Webhook.URL, cfg.Webhook.Headers, config.Seconds(cfg.Webhook.TimeoutSec))
		}
		if cfg.Metrics.Listen != "" {
			shutdown := serveMetrics(cfg.Metrics.Listen, deps.Metrics)
			defer shutdown()
		}

		p := pipeline.New(deps, pipeline.Options{
			FormTypes:           cfg.Run.FormTypes,
			MaxFilings:          cfg.Run.MaxFilings,
			LookbackDays:        cfg.Run.LookbackDays,
			CompanyDelay:        time.Duration(cfg.Run.CompanyDelayMS) * time.Millisecond,
			PrefetchConcurrency: cfg.Run.PrefetchConcurrency,
			IncludeFullText:     cfg.Run.IncludeFullText,
			Version:             version,
		})
		summary, runErr := p.Run(ctx, cfg.Run.Watchlist)

		// Keep stdout clean for the result stream when it is in use.
		summaryOut := io.Writer(os.Stdout)
		if cfg.Output.Path == "" || cfg.Output.Path == "-" {
			summaryOut = os.Stderr
		}
		if summary != nil {
			if err := printJSON(summaryOut, summary); err != nil {
				return err
			}
		}
		return runErr
	},
}

func init() {
	runCmd.Flags().StringSlice("company", nil, "watchlist override as type:value (e.g. ticker:AAPL, cik:320193)")
}

// parseIdentifiers parses "type:value" pairs. A bare value is taken as a ticker.
func parseIdentifiers(raw []string) ([]models.CompanyIdentifier, error) {
	ids := make([]models.CompanyIdentifier, 0, len(raw))
	for _, r := range raw {
		kind, value, ok := strings.Cut(r, ":")
		if !ok {
			kind, value = string(models.KindTicker), r
		}
		if strings.TrimSpace(value) == "" {
			return nil, fmt.Errorf("empty identifier in %q", r)
		}
		ids = append(ids, models.CompanyIdentifier{Kind: models.IdentifierKind(strings.ToLower(kind)), Value: value})
	}
	return ids, nil
}

func serveMetrics(addr string, m *metrics.Metrics) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server failed", "addr", addr, "error", err)
		}
	}()
	slog.Info("metrics server listening", "addr", addr)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

// --- Resolve Command ---

var resolveCmd = &cobra.Command{
	Use:   "resolve [type] [value]",
	Short: "Resolve a company identifier to its CIK",
	Long: `Resolve a cik, ticker, name or cusip identifier against the EDGAR company
directory.

Examples:
  edgarwatch resolve ticker AAPL
  edgarwatch resolve name "microsoft corp"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := models.CompanyIdentifier{Kind: models.IdentifierKind(strings.ToLower(args[0])), Value: args[1]}
		m, err := resolver.New(newEdgarClient(cfg)).ResolveMatch(cmd.Context(), id)
		if err != nil {
			return err
		}
		return printJSON(os.Stdout, m)
	},
}

// --- Diff Command ---

var diffCmd = &cobra.Command{
	Use:   "diff [previous] [current]",
	Short: "Compare two local filing documents",
	Long:  "Extract sections from two local HTML or text filings and print the change report.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		prev, err := readSections(args[0])
		if err != nil {
			return err
		}
		cur, err := readSections(args[1])
		if err != nil {
			return err
		}
		return printJSON(os.Stdout, change.Compare(cur, prev))
	},
}

func readSections(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text, err := edgar.DocumentText(raw)
	if err != nil {
		return nil, fmt.Errorf("convert %s: %w", path, err)
	}
	return sections.Extract(text), nil
}
