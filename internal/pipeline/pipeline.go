// Package pipeline runs a watchlist through resolution, filing enumeration,
// section extraction and change detection, emitting one result per filing.
//
// Companies are processed one at a time. Within a company, filings are
// diffed strictly in ascending chronological order because each filing's
// baseline is the cache entry left by the previous filing of the same form
// type. Filing texts may be prefetched concurrently; everything after the
// fetch is sequential.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/seenimoa/edgarwatch/internal/logger"
	"github.com/seenimoa/edgarwatch/internal/metrics"
	"github.com/seenimoa/edgarwatch/internal/narrative"
	"github.com/seenimoa/edgarwatch/internal/sink"
	"github.com/seenimoa/edgarwatch/internal/versioncache"
	"github.com/seenimoa/edgarwatch/pkg/models"
)

// Run status values.
const (
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Resolver maps a watchlist identifier to a canonical CIK.
type Resolver interface {
	Resolve(ctx context.Context, id models.CompanyIdentifier) (string, error)
}

// Fetcher retrieves company and filing data.
type Fetcher interface {
	FetchProfile(ctx context.Context, cik string) (*models.CompanyProfile, error)
	// FetchRecentFilings lists filings in source order, unfiltered.
	FetchRecentFilings(ctx context.Context, cik string) ([]models.Filing, error)
	FetchFilingText(ctx context.Context, cik string, f models.Filing) (string, error)
	FilingURLs(cik string, f models.Filing) models.FilingURLs
}

// Deps are the collaborators of a pipeline. Narrator, Notifier and Metrics
// are optional.
type Deps struct {
	Resolver Resolver
	Fetcher  Fetcher
	Sink     sink.Sink
	Narrator narrative.Narrator
	Notifier sink.Notifier
	Metrics  *metrics.Metrics
}

// Options control filing selection and pacing.
type Options struct {
	FormTypes           []string // accepted form types; empty or "ALL" accepts every type
	MaxFilings          int      // per-company cap after filtering; <= 0 means no cap
	LookbackDays        int      // 0 disables the filing date window
	CompanyDelay        time.Duration
	PrefetchConcurrency int
	IncludeFullText     bool
	Version             string
	RunID               string           // generated when empty
	Now                 func() time.Time // defaults to time.Now
}

// Pipeline processes watchlists. A Pipeline may run many times; each run
// gets its own version cache.
type Pipeline struct {
	deps Deps
	opts Options
}

// New creates a pipeline.
func New(deps Deps, opts Options) *Pipeline {
	if deps.Narrator == nil {
		deps.Narrator = narrative.Noop{}
	}
	if deps.Sink == nil {
		deps.Sink = sink.Discard{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.PrefetchConcurrency < 1 {
		opts.PrefetchConcurrency = 1
	}
	return &Pipeline{deps: deps, opts: opts}
}

// run is the state of one Run call.
type run struct {
	*Pipeline
	id    string
	cache *versioncache.Cache
	stats models.RunStats
}

// Run processes every company in the watchlist and returns the run summary.
// A cancelled context stops the run between filings; the summary covers
// the work done so far and the context error is returned alongside it.
func (p *Pipeline) Run(ctx context.Context, watchlist []models.CompanyIdentifier) (*models.RunSummary, error) {
	r := &run{
		Pipeline: p,
		id:       p.opts.RunID,
		cache:    versioncache.New(),
	}
	if r.id == "" {
		r.id = uuid.NewString()
	}
	ctx = logger.WithLogFields(ctx, logger.LogFields{RunID: r.id, Component: "edgarwatch.pipeline"})

	summary := &models.RunSummary{
		RunID:     r.id,
		Status:    StatusCompleted,
		StartedAt: p.opts.Now(),
		Companies: make([]models.CompanySummary, 0, len(watchlist)),
	}
	slog.InfoContext(ctx, "run started", "companies", len(watchlist))

	var runErr error
	for i, id := range watchlist {
		if i > 0 && p.opts.CompanyDelay > 0 {
			if err := sleep(ctx, p.opts.CompanyDelay); err != nil {
				runErr = err
				break
			}
		}
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		cs, err := r.processCompany(ctx, id)
		summary.Companies = append(summary.Companies, cs)
		if err != nil {
			runErr = err
			break
		}
	}

	if runErr != nil {
		summary.Status = StatusCancelled
	}
	summary.CompletedAt = p.opts.Now()
	summary.Statistics = r.stats
	slog.InfoContext(ctx, "run finished",
		"status", summary.Status,
		"companies_processed", r.stats.CompaniesProcessed,
		"filings_found", r.stats.FilingsFound,
		"changes_detected", r.stats.ChangesDetected,
		"webhooks_sent", r.stats.WebhooksSent,
		"errors", r.stats.Errors,
		"baselines", r.cache.Len(),
	)
	return summary, runErr
}

// failCompany records a company-fatal error.
func (r *run) failCompany(ctx context.Context, cs *models.CompanySummary, stage string, err error) {
	cs.Failed = true
	cs.Error = stage + ": " + err.Error()
	r.stats.Errors++
	r.deps.Metrics.CompanyProcessed(true)
	slog.ErrorContext(ctx, "company failed", "identifier", cs.Identifier.String(), "stage", stage, "error", err)
}

// processCompany runs one company. The returned error is non-nil only when
// the context was cancelled mid-company.
func (r *run) processCompany(ctx context.Context, id models.CompanyIdentifier) (models.CompanySummary, error) {
	cs := models.CompanySummary{Identifier: id}
	slog.InfoContext(ctx, "processing company", "identifier", id.String())

	cik, err := r.deps.Resolver.Resolve(ctx, id)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return cs, ctxErr
		}
		r.failCompany(ctx, &cs, "resolve", err)
		return cs, nil
	}
	cs.CIK = cik
	ctx = logger.WithLogFields(ctx, logger.LogFields{CIK: cik})

	profile, err := r.deps.Fetcher.FetchProfile(ctx, cik)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return cs, ctxErr
		}
		r.failCompany(ctx, &cs, "profile", err)
		return cs, nil
	}
	cs.Name = profile.Name

	listed, err := r.deps.Fetcher.FetchRecentFilings(ctx, cik)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return cs, ctxErr
		}
		r.failCompany(ctx, &cs, "enumerate", err)
		return cs, nil
	}
	filings := SelectFilings(listed, r.opts.FormTypes, r.opts.LookbackDays, r.opts.MaxFilings, r.opts.Now())
	cs.FilingsFound = len(filings)
	r.stats.FilingsFound += len(filings)
	slog.InfoContext(ctx, "filings selected", "name", profile.Name, "listed", len(listed), "selected", len(filings))

	texts := r.texts(ctx, cik, filings)
	for i, f := range filings {
		// Cancellation is honored between filings, never mid-diff.
		if err := ctx.Err(); err != nil {
			return cs, err
		}
		out := r.processFiling(ctx, profile, f, func() (string, error) { return texts(i) })
		if out.Failure != nil {
			if err := ctx.Err(); err != nil {
				return cs, err
			}
			cs.Failures = append(cs.Failures, *out.Failure)
			r.stats.Errors++
			continue
		}
		cs.FilingsEmitted++
	}

	r.stats.CompaniesProcessed++
	r.deps.Metrics.CompanyProcessed(false)
	return cs, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
