package edgar

import (
	"context"
	"fmt"
	"strings"

	"github.com/seenimoa/edgarwatch/internal/infra"
	"github.com/seenimoa/edgarwatch/pkg/models"
	"github.com/seenimoa/edgarwatch/pkg/utils"
)

func submissionsKey(cik string) string {
	return "submissions:" + utils.PadCIK(cik)
}

// submissions fetches the submissions record for a canonical CIK. Records
// are cached briefly so a profile lookup and the filing listing that
// follows share one request.
func (c *Client) submissions(ctx context.Context, cik string) (*submissionsResponse, error) {
	cacheKey := submissionsKey(cik)
	if cached, ok := c.cache.Get(cacheKey); ok {
		return cached.(*submissionsResponse), nil
	}

	u := fmt.Sprintf("%s/submissions/CIK%s.json", c.opts.DataURL, utils.PadCIK(cik))
	var resp submissionsResponse
	if err := c.getJSON(ctx, u, &resp); err != nil {
		if infra.IsNotFound(err) {
			return nil, fmt.Errorf("%w: CIK %s", ErrProfileNotFound, cik)
		}
		return nil, fmt.Errorf("edgar submissions %s: %w", cik, err)
	}

	c.cache.SetWithTTL(cacheKey, &resp, submissionsTTL)
	return &resp, nil
}

// FetchProfile returns the company profile for a canonical CIK.
func (c *Client) FetchProfile(ctx context.Context, cik string) (*models.CompanyProfile, error) {
	resp, err := c.submissions(ctx, cik)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(resp.Name) == "" {
		return nil, fmt.Errorf("%w: CIK %s has no entity name", ErrProfileNotFound, cik)
	}

	p := &models.CompanyProfile{
		Name:                 resp.Name,
		CIK:                  utils.PadCIK(cik),
		SIC:                  resp.SIC,
		SICDescription:       resp.SICDesc,
		FiscalYearEnd:        resp.FiscalYearEnd,
		StateOfIncorporation: resp.StateOfIncorp,
		Category:             resp.Category,
		EntityType:           resp.EntityType,
	}
	if len(resp.Tickers) > 0 {
		p.Ticker = resp.Tickers[0]
	}
	return p, nil
}

// FetchRecentFilings lists the company's recent filings, newest first, as
// published by the configured listing source. No filtering is applied.
// The cached submissions record is released afterwards.
func (c *Client) FetchRecentFilings(ctx context.Context, cik string) ([]models.Filing, error) {
	if c.opts.Listing == ListingFeed {
		return c.feedFilings(ctx, cik)
	}

	resp, err := c.submissions(ctx, cik)
	if err != nil {
		return nil, err
	}
	// The listing is the record's last consumer in a run.
	c.cache.Invalidate(submissionsKey(cik))
	return recentFilings(resp.Filings.Recent), nil
}

func recentFilings(recent filingSet) []models.Filing {
	filings := make([]models.Filing, 0, len(recent.AccessionNumber))
	for i, acc := range recent.AccessionNumber {
		form := at(recent.Form, i)
		report := utils.ParseSECDatePtr(at(recent.ReportDate, i))
		filings = append(filings, models.Filing{
			AccessionNumber:    acc,
			FormType:           form,
			FilingDate:         utils.ParseSECDate(at(recent.FilingDate, i)),
			ReportDate:         report,
			AcceptanceDateTime: utils.ParseSECDatePtr(at(recent.AcceptanceDateTime, i)),
			PrimaryDocument:    at(recent.PrimaryDocument, i),
			Description:        at(recent.Description, i),
			IsAmendment:        models.IsAmendmentForm(form),
			FiscalYear:         utils.FiscalYear(report),
			FiscalPeriod:       utils.FiscalPeriod(form, report),
		})
	}
	return filings
}
