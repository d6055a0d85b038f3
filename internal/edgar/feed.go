package edgar

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/seenimoa/edgarwatch/pkg/models"
	"github.com/seenimoa/edgarwatch/pkg/utils"
)

const feedCount = 100

var (
	accessionRe = regexp.MustCompile(`\d{10}-\d{2}-\d{6}`)
	filedRe     = regexp.MustCompile(`Filed:\D*?(\d{4}-\d{2}-\d{2})`)
)

// feedFilings enumerates filings from the browse-edgar Atom feed.
// The feed has no primary document reference, so text fetches for these
// filings fall back to the full submission file.
func (c *Client) feedFilings(ctx context.Context, cik string) ([]models.Filing, error) {
	q := url.Values{}
	q.Set("action", "getcompany")
	q.Set("CIK", utils.PadCIK(cik))
	q.Set("type", "")
	q.Set("dateb", "")
	q.Set("owner", "include")
	q.Set("count", fmt.Sprint(feedCount))
	q.Set("output", "atom")

	body, err := c.get(ctx, c.opts.BaseURL+"/cgi-bin/browse-edgar?"+q.Encode(), "application/atom+xml")
	if err != nil {
		return nil, fmt.Errorf("edgar feed %s: %w", cik, err)
	}
	defer body.Close()

	feed, err := c.parser.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse EDGAR feed %s: %w", cik, err)
	}

	filings := make([]models.Filing, 0, len(feed.Items))
	for _, item := range feed.Items {
		if f, ok := feedFiling(item); ok {
			filings = append(filings, f)
		}
	}
	return filings, nil
}

// feedFiling maps one Atom entry to a filing. Entries without an
// accession number are skipped.
func feedFiling(item *gofeed.Item) (models.Filing, bool) {
	acc := accessionRe.FindString(item.GUID)
	if acc == "" {
		acc = accessionRe.FindString(item.Link)
	}
	if acc == "" {
		return models.Filing{}, false
	}

	form, desc := splitFeedTitle(item.Title)
	if len(item.Categories) > 0 && item.Categories[0] != "" {
		form = item.Categories[0]
	}

	f := models.Filing{
		AccessionNumber: acc,
		FormType:        form,
		Description:     desc,
		IsAmendment:     models.IsAmendmentForm(form),
		FiscalPeriod:    utils.FiscalPeriod(form, nil),
	}
	if item.UpdatedParsed != nil {
		accepted := *item.UpdatedParsed
		f.AcceptanceDateTime = &accepted
		f.FilingDate = time.Date(accepted.Year(), accepted.Month(), accepted.Day(), 0, 0, 0, 0, time.UTC)
	}
	if m := filedRe.FindStringSubmatch(cleanHTML(item.Description)); m != nil {
		f.FilingDate = utils.ParseSECDate(m[1])
	}
	return f, true
}

// splitFeedTitle splits "10-K  - Annual report [...]" into form and description.
func splitFeedTitle(title string) (string, string) {
	form, desc, found := strings.Cut(title, " - ")
	if !found {
		return strings.TrimSpace(title), ""
	}
	return strings.TrimSpace(form), strings.TrimSpace(desc)
}

// cleanHTML strips HTML tags from a string using goquery.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}
