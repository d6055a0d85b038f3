// Package edgar fetches company directories, profiles, filing listings and
// filing documents from SEC EDGAR.
//
// No API key required. Every request carries a User-Agent naming the
// operator, per SEC fair-access policy, and is paced by a token bucket
// (EDGAR allows 10 requests/second per user agent).
// Docs: https://www.sec.gov/edgar/sec-api-documentation
package edgar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/seenimoa/edgarwatch/internal/infra"
)

const (
	// DefaultBaseURL serves archives, viewers and the browse-edgar feed.
	DefaultBaseURL = "https://www.sec.gov"
	// DefaultDataURL serves the JSON data API.
	DefaultDataURL = "https://data.sec.gov"

	DefaultUserAgent = "edgarwatch/1.0 (github.com/seenimoa/edgarwatch)"

	defaultRequestsPerSecond = 10
	defaultTimeout           = 30 * time.Second
	defaultDirectoryTTL      = 24 * time.Hour
	submissionsTTL           = 5 * time.Minute

	// maxDocumentBytes caps how much of one filing document is read.
	maxDocumentBytes = 64 << 20
)

// Listing selects how recent filings are enumerated.
type Listing string

const (
	ListingSubmissions Listing = "submissions" // data.sec.gov submissions JSON
	ListingFeed        Listing = "feed"        // browse-edgar Atom feed
)

// ErrProfileNotFound is returned when EDGAR has no submissions record for a CIK.
var ErrProfileNotFound = errors.New("edgar: company profile not found")

// Options configures a Client. Zero values select the defaults.
type Options struct {
	BaseURL           string
	DataURL           string
	UserAgent         string
	RequestsPerSecond int
	Timeout           time.Duration
	DirectoryTTL      time.Duration
	SecurityIDsFile   string
	Listing           Listing
}

// Client talks to SEC EDGAR. It is safe for concurrent use.
type Client struct {
	opts    Options
	http    *http.Client
	limiter *infra.RateLimiter
	cache   *infra.Cache
	parser  *gofeed.Parser
}

// New creates a client, filling unset options with defaults.
func New(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.DataURL == "" {
		opts.DataURL = DefaultDataURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.RequestsPerSecond == 0 {
		opts.RequestsPerSecond = defaultRequestsPerSecond
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.DirectoryTTL <= 0 {
		opts.DirectoryTTL = defaultDirectoryTTL
	}
	if opts.Listing == "" {
		opts.Listing = ListingSubmissions
	}
	return &Client{
		opts:    opts,
		http:    &http.Client{Timeout: opts.Timeout},
		limiter: infra.NewRateLimiter(opts.RequestsPerSecond, time.Second),
		cache:   infra.NewCache(opts.DirectoryTTL),
		parser:  gofeed.NewParser(),
	}
}

// Ping checks connectivity to the data API.
func (c *Client) Ping(ctx context.Context) error {
	body, err := c.get(ctx, c.opts.DataURL+"/submissions/CIK0000320193.json", "application/json")
	if err != nil {
		return fmt.Errorf("edgar ping: %w", err)
	}
	body.Close()
	return nil
}

// --- Shared helpers ---

func (c *Client) headers(accept string) map[string]string {
	return map[string]string{
		"User-Agent": c.opts.UserAgent,
		"Accept":     accept,
	}
}

// get waits for a rate-limit token and performs a GET.
// The caller must close the returned body.
func (c *Client) get(ctx context.Context, url, accept string) (io.ReadCloser, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	body, _, err := infra.DoGetWithClient(ctx, c.http, url, c.headers(accept))
	return body, err
}

// getJSON performs a GET request and decodes the JSON response into dest.
func (c *Client) getJSON(ctx context.Context, url string, dest any) error {
	body, err := c.get(ctx, url, "application/json")
	if err != nil {
		return err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read EDGAR response: %w", err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("parse EDGAR JSON: %w", err)
	}
	return nil
}
