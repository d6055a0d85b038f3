package pipeline

import (
	"context"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/edgarwatch/pkg/models"
	"github.com/seenimoa/edgarwatch/pkg/utils"
)

// SelectFilings filters filings by form type and lookback window, keeps the
// newest limit of them and returns them in ascending chronological order:
// filing date, then acceptance time, then accession number.
func SelectFilings(filings []models.Filing, formTypes []string, lookbackDays, limit int, now time.Time) []models.Filing {
	accept := formTypeFilter(formTypes)
	selected := make([]models.Filing, 0, len(filings))
	for _, f := range filings {
		if !accept(f.FormType) {
			continue
		}
		if !utils.WithinLookback(f.FilingDate, now, lookbackDays) {
			continue
		}
		selected = append(selected, f)
	}

	sort.SliceStable(selected, func(i, j int) bool {
		return filingBefore(selected[i], selected[j])
	})
	if limit > 0 && len(selected) > limit {
		selected = selected[len(selected)-limit:]
	}
	return selected
}

func filingBefore(a, b models.Filing) bool {
	if !a.FilingDate.Equal(b.FilingDate) {
		return a.FilingDate.Before(b.FilingDate)
	}
	at, bt := acceptance(a), acceptance(b)
	if !at.Equal(bt) {
		return at.Before(bt)
	}
	return a.AccessionNumber < b.AccessionNumber
}

func acceptance(f models.Filing) time.Time {
	if f.AcceptanceDateTime == nil {
		return time.Time{}
	}
	return *f.AcceptanceDateTime
}

// formTypeFilter matches form types exactly. An empty list or the ALL
// sentinel accepts everything.
func formTypeFilter(formTypes []string) func(string) bool {
	if len(formTypes) == 0 {
		return func(string) bool { return true }
	}
	set := make(map[string]bool, len(formTypes))
	for _, ft := range formTypes {
		ft = strings.TrimSpace(ft)
		if strings.EqualFold(ft, models.AllFormTypes) {
			return func(string) bool { return true }
		}
		set[ft] = true
	}
	return func(ft string) bool { return set[ft] }
}

// texts returns an accessor for the text of filings[i]. With a prefetch
// concurrency above one, all texts are fetched up front in parallel and
// each failure stays attached to its filing; otherwise each text is
// fetched on first access.
func (r *run) texts(ctx context.Context, cik string, filings []models.Filing) func(i int) (string, error) {
	fetch := func(i int) (string, error) {
		return r.deps.Fetcher.FetchFilingText(ctx, cik, filings[i])
	}
	if r.opts.PrefetchConcurrency <= 1 || len(filings) < 2 {
		return fetch
	}

	bodies := make([]string, len(filings))
	errs := make([]error, len(filings))

	var g errgroup.Group
	g.SetLimit(r.opts.PrefetchConcurrency)
	for i := range filings {
		g.Go(func() error {
			bodies[i], errs[i] = fetch(i)
			return nil // non-fatal, reported per filing
		})
	}
	_ = g.Wait()

	return func(i int) (string, error) {
		body := bodies[i]
		bodies[i] = "" // release once handed to the filing loop
		return body, errs[i]
	}
}
