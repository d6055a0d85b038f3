package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/seenimoa/edgarwatch/internal/change"
	"github.com/seenimoa/edgarwatch/internal/logger"
	"github.com/seenimoa/edgarwatch/internal/sections"
	"github.com/seenimoa/edgarwatch/internal/versioncache"
	"github.com/seenimoa/edgarwatch/pkg/models"
)

// Stages at which a filing can fail.
const (
	StageFetch = "fetch"
	StageEmit  = "emit"
)

// FilingOutcome is the result of one filing attempt: either a result or a failure.
type FilingOutcome struct {
	Result  *models.Result
	Failure *models.FilingFailure
}

func failed(f models.Filing, stage string, err error) FilingOutcome {
	return FilingOutcome{Failure: &models.FilingFailure{
		AccessionNumber: f.AccessionNumber,
		FormType:        f.FormType,
		Stage:           stage,
		Error:           err.Error(),
	}}
}

// processFiling fetches, extracts, diffs against the cached baseline,
// updates the cache and emits. A fetch failure leaves the cache untouched.
func (r *run) processFiling(ctx context.Context, profile *models.CompanyProfile, f models.Filing, text func() (string, error)) FilingOutcome {
	start := time.Now()
	ctx = logger.WithLogFields(ctx, logger.LogFields{FormType: f.FormType, Accession: f.AccessionNumber})
	slog.InfoContext(ctx, "processing filing", "filing_date", f.FilingDate.Format(time.DateOnly))

	body, err := text()
	if err != nil {
		slog.ErrorContext(ctx, "filing fetch failed", "error", err)
		r.deps.Metrics.FilingFailed(f.FormType)
		return failed(f, StageFetch, err)
	}

	extracted := sections.Extract(body)
	key := versioncache.Key{CIK: profile.CIK, FormType: f.FormType}
	report := change.Detect(extracted, r.cache.Get(key))

	result := models.Result{
		Metadata: models.ResultMetadata{
			Timestamp: r.opts.Now(),
			RunID:     r.id,
			Version:   r.opts.Version,
		},
		Company:         *profile,
		Filing:          f,
		URLs:            r.deps.Fetcher.FilingURLs(profile.CIK, f),
		Excerpts:        extracted,
		ChangeDetection: report,
	}
	if r.opts.IncludeFullText {
		result.FullText = body
	}

	if n, err := r.deps.Narrator.Generate(ctx, body, report); err != nil {
		slog.WarnContext(ctx, "narrative analysis failed, continuing without it", "error", err)
		r.deps.Metrics.NarrativeFailed()
	} else {
		result.AIAnalysis = n
	}

	r.cache.Put(key, models.FilingContent{Text: body, Sections: extracted})

	if err := r.deps.Sink.Emit(ctx, result); err != nil {
		slog.ErrorContext(ctx, "emit failed", "error", err)
		r.deps.Metrics.FilingFailed(f.FormType)
		return failed(f, StageEmit, err)
	}

	if report.HasChanges {
		r.stats.ChangesDetected++
	}
	r.deps.Metrics.FilingEmitted(f.FormType, report, time.Since(start))
	slog.InfoContext(ctx, "filing emitted",
		"has_baseline", report.HasBaseline,
		"change_score", report.ChangeScore,
		"severity", report.EffectiveSeverity(),
		"sections", len(extracted),
	)

	r.notify(ctx, result)
	return FilingOutcome{Result: &result}
}

// notify delivers the result to the notifier. Failures are logged only.
func (r *run) notify(ctx context.Context, result models.Result) {
	if r.deps.Notifier == nil {
		return
	}
	sent, err := r.deps.Notifier.Notify(ctx, result)
	switch {
	case err != nil:
		slog.WarnContext(ctx, "webhook failed", "error", err)
		r.deps.Metrics.Webhook("failed")
	case sent:
		r.stats.WebhooksSent++
		r.deps.Metrics.Webhook("sent")
	default:
		r.deps.Metrics.Webhook("skipped")
	}
}
