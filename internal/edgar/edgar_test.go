package edgar

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/seenimoa/edgarwatch/internal/similarity"
	"github.com/seenimoa/edgarwatch/pkg/models"
)

const tickersJSON = `{
  "0": {"cik_str": 320193, "ticker": "AAPL", "title": "Apple Inc."},
  "10": {"cik_str": 1018724, "ticker": "AMZN", "title": "AMAZON COM INC"},
  "1": {"cik_str": 789019, "ticker": "MSFT", "title": "MICROSOFT CORP"},
  "2": {"cik_str": 1652044, "ticker": "GOOGL", "title": "Alphabet Inc."}
}`

const submissionsJSON = `{
  "cik": "320193",
  "entityType": "operating",
  "sic": "3571",
  "sicDescription": "Electronic Computers",
  "name": "Apple Inc.",
  "tickers": ["AAPL"],
  "category": "Large accelerated filer",
  "stateOfIncorporation": "CA",
  "fiscalYearEnd": "0928",
  "filings": {
    "recent": {
      "accessionNumber": ["0000320193-24-000123", "0000320193-24-000081"],
      "filingDate": ["2024-11-01", "2024-08-02"],
      "reportDate": ["2024-09-28", "2024-06-29"],
      "acceptanceDateTime": ["2024-11-01T06:01:36.000Z", "2024-08-02T06:01:41.000Z"],
      "form": ["10-K", "10-Q/A"],
      "primaryDocument": ["aapl-20240928.htm", ""],
      "primaryDocDescription": ["10-K", "10-Q"]
    }
  }
}`

const feedXML = `<?xml version="1.0" encoding="UTF-8" ?>
<feed xmlns="http://www.w3.org/2005/Atom">
<title>APPLE INC.  (0000320193)</title>
<updated>2024-11-01T12:00:00-04:00</updated>
<entry>
<category label="form type" scheme="https://www.sec.gov/" term="10-K"/>
<id>urn:tag:sec.gov,2008:accession-number=0000320193-24-000123</id>
<link href="https://www.sec.gov/Archives/edgar/data/320193/000032019324000123/0000320193-24-000123-index.htm" rel="alternate" type="text/html"/>
<summary type="html"> &lt;b&gt;Filed:&lt;/b&gt; 2024-11-01 &lt;b&gt;AccNo:&lt;/b&gt; 0000320193-24-000123 &lt;b&gt;Size:&lt;/b&gt; 9 MB</summary>
<title>10-K  - Annual report [Section 13 and 15(d), not S-K Item 405]</title>
<updated>2024-11-01T06:01:36-04:00</updated>
</entry>
<entry>
<id>urn:tag:sec.gov,2008:something-else</id>
<title>no accession here</title>
<updated>2024-10-01T06:01:36-04:00</updated>
</entry>
</feed>`

const documentHTML = `<!DOCTYPE html>
<html><head><title>aapl-20240928</title><style>p { color: red }</style></head>
<body>
<div><p>  ITEM 1. BUSINESS  </p><p>Apple designs <b>smartphones</b>.</p></div>
<script>var tracking = true;</script>
<!-- page break -->
<p>&nbsp;</p>
<p>ITEM 1A. RISK FACTORS</p>
</body></html>`

type edgarServer struct {
	*httptest.Server
	hits      map[string]*atomic.Int32
	userAgent atomic.Value
}

func newEdgarServer(t *testing.T) *edgarServer {
	t.Helper()
	s := &edgarServer{hits: map[string]*atomic.Int32{}}
	routes := map[string]func(w http.ResponseWriter, r *http.Request){
		"/files/company_tickers.json": func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(tickersJSON))
		},
		"/submissions/CIK0000320193.json": func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(submissionsJSON))
		},
		"/submissions/CIK0000000001.json": func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"cik": "1", "name": ""}`))
		},
		"/cgi-bin/browse-edgar": func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("output") != "atom" || r.URL.Query().Get("CIK") != "0000320193" {
				http.Error(w, "bad query", http.StatusBadRequest)
				return
			}
			w.Header().Set("Content-Type", "application/atom+xml")
			w.Write([]byte(feedXML))
		},
		"/Archives/edgar/data/320193/000032019324000123/aapl-20240928.htm": func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(documentHTML))
		},
		"/Archives/edgar/data/320193/000032019324000081/0000320193-24-000081.txt": func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte("plain submission text"))
		},
	}
	for path := range routes {
		s.hits[path] = &atomic.Int32{}
	}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.userAgent.Store(r.Header.Get("User-Agent"))
		h, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		s.hits[r.URL.Path].Add(1)
		h(w, r)
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *edgarServer) client(opts Options) *Client {
	opts.BaseURL = s.URL
	opts.DataURL = s.URL
	opts.RequestsPerSecond = -1
	return New(opts)
}

func TestDirectoryOrderAndCache(t *testing.T) {
	srv := newEdgarServer(t)
	c := srv.client(Options{UserAgent: "test-agent admin@example.com"})

	rows, err := c.Directory(context.Background())
	if err != nil {
		t.Fatalf("Directory: %v", err)
	}
	wantSymbols := []string{"AAPL", "MSFT", "GOOGL", "AMZN"}
	if len(rows) != len(wantSymbols) {
		t.Fatalf("expected %d rows, got %d", len(wantSymbols), len(rows))
	}
	for i, sym := range wantSymbols {
		if rows[i].Symbol != sym {
			t.Errorf("row %d = %s, want %s", i, rows[i].Symbol, sym)
		}
	}
	if rows[0].CIK != "0000320193" {
		t.Errorf("CIK = %q, want padded", rows[0].CIK)
	}
	if got := srv.userAgent.Load(); got != "test-agent admin@example.com" {
		t.Errorf("User-Agent = %v", got)
	}

	if _, err := c.Directory(context.Background()); err != nil {
		t.Fatal(err)
	}
	if n := srv.hits["/files/company_tickers.json"].Load(); n != 1 {
		t.Errorf("directory fetched %d times, want 1", n)
	}
}

func TestDirectoryMergesSecurityIDs(t *testing.T) {
	srv := newEdgarServer(t)
	path := filepath.Join(t.TempDir(), "cusips.yaml")
	yml := "securities:\n" +
		"  - cusip: \"037833100\"\n    cik: \"320193\"\n" +
		"  - cusip: \"88160r101\"\n    cik: \"1318605\"\n    name: Tesla, Inc.\n"
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatal(err)
	}

	c := srv.client(Options{SecurityIDsFile: path})
	rows, err := c.Directory(context.Background())
	if err != nil {
		t.Fatalf("Directory: %v", err)
	}
	if rows[0].SecurityID != "037833100" {
		t.Errorf("Apple security id = %q", rows[0].SecurityID)
	}
	last := rows[len(rows)-1]
	if last.CIK != "0001318605" || last.SecurityID != "88160R101" || last.Name != "Tesla, Inc." {
		t.Errorf("appended row = %+v", last)
	}
}

func TestLoadSecurityIDsRejectsBadEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("securities:\n  - cusip: \"X\"\n    cik: \"abc\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSecurityIDs(path); err == nil {
		t.Error("expected error for non-numeric cik")
	}
	if _, err := LoadSecurityIDs(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestFetchProfile(t *testing.T) {
	srv := newEdgarServer(t)
	c := srv.client(Options{})

	p, err := c.FetchProfile(context.Background(), "0000320193")
	if err != nil {
		t.Fatalf("FetchProfile: %v", err)
	}
	if p.Name != "Apple Inc." || p.Ticker != "AAPL" || p.SIC != "3571" || p.FiscalYearEnd != "0928" {
		t.Errorf("unexpected profile %+v", p)
	}
	if p.Category != "Large accelerated filer" || p.EntityType != "operating" {
		t.Errorf("unexpected category/entity %+v", p)
	}
}

func TestFetchProfileNotFound(t *testing.T) {
	srv := newEdgarServer(t)
	c := srv.client(Options{})

	for _, cik := range []string{"0000999999", "0000000001"} {
		_, err := c.FetchProfile(context.Background(), cik)
		if !errors.Is(err, ErrProfileNotFound) {
			t.Errorf("FetchProfile(%s) error = %v, want ErrProfileNotFound", cik, err)
		}
	}
}

func TestFetchRecentFilingsSubmissions(t *testing.T) {
	srv := newEdgarServer(t)
	c := srv.client(Options{})
	ctx := context.Background()

	if _, err := c.FetchProfile(ctx, "0000320193"); err != nil {
		t.Fatal(err)
	}
	filings, err := c.FetchRecentFilings(ctx, "0000320193")
	if err != nil {
		t.Fatalf("FetchRecentFilings: %v", err)
	}
	if n := srv.hits["/submissions/CIK0000320193.json"].Load(); n != 1 {
		t.Errorf("submissions fetched %d times, want 1", n)
	}
	if len(filings) != 2 {
		t.Fatalf("expected 2 filings, got %d", len(filings))
	}

	k := filings[0]
	if k.AccessionNumber != "0000320193-24-000123" || k.FormType != "10-K" || k.IsAmendment {
		t.Errorf("unexpected first filing %+v", k)
	}
	if !k.FilingDate.Equal(time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("FilingDate = %v", k.FilingDate)
	}
	if k.AcceptanceDateTime == nil || k.AcceptanceDateTime.Hour() != 6 {
		t.Errorf("AcceptanceDateTime = %v", k.AcceptanceDateTime)
	}
	if k.FiscalYear != 2024 || k.FiscalPeriod != "FY" {
		t.Errorf("fiscal = %d %s", k.FiscalYear, k.FiscalPeriod)
	}
	if k.PrimaryDocument != "aapl-20240928.htm" {
		t.Errorf("PrimaryDocument = %q", k.PrimaryDocument)
	}

	q := filings[1]
	if !q.IsAmendment || q.FormType != "10-Q/A" {
		t.Errorf("expected amendment, got %+v", q)
	}

	// The listing releases the cached record, so a later lookup refetches.
	if _, err := c.FetchProfile(ctx, "320193"); err != nil {
		t.Fatal(err)
	}
	if n := srv.hits["/submissions/CIK0000320193.json"].Load(); n != 2 {
		t.Errorf("submissions fetched %d times after listing, want 2", n)
	}
}

func TestFetchRecentFilingsFeed(t *testing.T) {
	srv := newEdgarServer(t)
	c := srv.client(Options{Listing: ListingFeed})

	filings, err := c.FetchRecentFilings(context.Background(), "320193")
	if err != nil {
		t.Fatalf("FetchRecentFilings: %v", err)
	}
	if len(filings) != 1 {
		t.Fatalf("expected entries without accession to be skipped, got %d filings", len(filings))
	}
	f := filings[0]
	if f.AccessionNumber != "0000320193-24-000123" {
		t.Errorf("AccessionNumber = %q", f.AccessionNumber)
	}
	if f.FormType != "10-K" || f.FiscalPeriod != "FY" {
		t.Errorf("FormType = %q FiscalPeriod = %q", f.FormType, f.FiscalPeriod)
	}
	if !strings.HasPrefix(f.Description, "Annual report") {
		t.Errorf("Description = %q", f.Description)
	}
	if !f.FilingDate.Equal(time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("FilingDate = %v", f.FilingDate)
	}
	if f.AcceptanceDateTime == nil {
		t.Error("expected acceptance time from <updated>")
	}
}

func TestFetchFilingText(t *testing.T) {
	srv := newEdgarServer(t)
	c := srv.client(Options{})
	ctx := context.Background()

	text, err := c.FetchFilingText(ctx, "0000320193", models.Filing{
		AccessionNumber: "0000320193-24-000123",
		PrimaryDocument: "aapl-20240928.htm",
	})
	if err != nil {
		t.Fatalf("FetchFilingText: %v", err)
	}
	want := "aapl-20240928\nITEM 1. BUSINESS\nApple designs\nsmartphones\n.\nITEM 1A. RISK FACTORS"
	if text != want {
		t.Errorf("text =\n%q\nwant\n%q", text, want)
	}

	plain, err := c.FetchFilingText(ctx, "0000320193", models.Filing{AccessionNumber: "0000320193-24-000081"})
	if err != nil {
		t.Fatalf("FetchFilingText fallback: %v", err)
	}
	if plain != "plain submission text" {
		t.Errorf("fallback text = %q", plain)
	}

	if _, err := c.FetchFilingText(ctx, "0000320193", models.Filing{AccessionNumber: "0000320193-99-000001"}); err == nil {
		t.Error("expected error for missing document")
	}
}

func TestHTMLToTextDropsScriptsAndComments(t *testing.T) {
	got, err := HTMLToText(strings.NewReader(`<html><body><p> Hello </p><!-- hidden --><style>.x{}</style><p>World</p><script>alert(1)</script></body></html>`))
	if err != nil {
		t.Fatal(err)
	}
	if got != "Hello\nWorld" {
		t.Errorf("HTMLToText = %q", got)
	}
}

func TestDocumentTextPlain(t *testing.T) {
	in := "ITEM 1. BUSINESS\n  indented & unescaped <not a tag>"
	got, err := DocumentText([]byte(in))
	if err != nil {
		t.Fatal(err)
	}
	if got != in {
		t.Errorf("plain text should pass through unchanged, got %q", got)
	}
}

func TestDocumentTextDecodesLegacyCharsets(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"declared windows-1252",
			"<html><head><meta charset=\"windows-1252\"></head><body><p>Management\x92s Discussion</p><p>caf\xe9</p></body></html>",
			"Management\u2019s Discussion\ncaf\u00e9",
		},
		{
			"declared iso-8859-1",
			"<html><head><meta http-equiv=\"Content-Type\" content=\"text/html; charset=ISO-8859-1\"></head><body>na\xefve</body></html>",
			"na\u00efve",
		},
		{
			"declared utf-8 but not",
			"<html><head><meta charset=\"utf-8\"></head><body>caf\xe9</body></html>",
			"caf\u00e9",
		},
		{"undeclared plain text", "caf\xe9 \xe0 \xe8", "caf\u00e9 \u00e0 \u00e8"},
		{"valid utf-8 untouched", strings.Repeat("a", 2000) + " caf\u00e9", strings.Repeat("a", 2000) + " caf\u00e9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DocumentText([]byte(tt.in))
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("DocumentText = %q, want %q", got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Error("output is not valid UTF-8")
			}
		})
	}
}

func TestDecodedTextsKeepTheirDifferences(t *testing.T) {
	a, err := DocumentText([]byte("caf\xe9 \xe0 \xe8"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := DocumentText([]byte("caf\xe8 \xf1 \xfc"))
	if err != nil {
		t.Fatal(err)
	}
	if r := similarity.Ratio(a, b); r >= 1 {
		t.Errorf("different legacy-encoded texts compare as identical (ratio %v)", r)
	}
}

func TestHTMLToTextDecodesReader(t *testing.T) {
	got, err := HTMLToText(strings.NewReader("<html><head><meta charset=\"windows-1252\"></head><body>\x93quoted\x94</body></html>"))
	if err != nil {
		t.Fatal(err)
	}
	if got != "\u201cquoted\u201d" {
		t.Errorf("HTMLToText = %q", got)
	}
}

func TestFilingURLs(t *testing.T) {
	c := New(Options{})
	f := models.Filing{AccessionNumber: "0000320193-24-000123", PrimaryDocument: "aapl-20240928.htm"}
	urls := c.FilingURLs("0000320193", f)

	if urls.PrimaryDocument != "https://www.sec.gov/Archives/edgar/data/320193/000032019324000123/aapl-20240928.htm" {
		t.Errorf("PrimaryDocument = %s", urls.PrimaryDocument)
	}
	if !strings.Contains(urls.EdgarFiling, "CIK=0000320193") {
		t.Errorf("EdgarFiling = %s", urls.EdgarFiling)
	}
	if !strings.HasSuffix(urls.XBRLViewer, "&xbrl_type=v") || !strings.HasPrefix(urls.XBRLViewer, urls.HTMLViewer) {
		t.Errorf("viewers = %s / %s", urls.HTMLViewer, urls.XBRLViewer)
	}

	f.PrimaryDocument = ""
	if got := c.FilingURLs("0000320193", f).PrimaryDocument; !strings.HasSuffix(got, "/0000320193-24-000123.htm") {
		t.Errorf("fallback PrimaryDocument = %s", got)
	}
}

func TestRateLimitRespectsContext(t *testing.T) {
	srv := newEdgarServer(t)
	c := New(Options{BaseURL: srv.URL, DataURL: srv.URL, RequestsPerSecond: 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Directory(ctx); err == nil {
		t.Error("expected error from cancelled context")
	}
}

func TestPing(t *testing.T) {
	srv := newEdgarServer(t)
	c := srv.client(Options{UserAgent: "ping-agent ops@example.com"})
	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if ua, _ := srv.userAgent.Load().(string); ua != "ping-agent ops@example.com" {
		t.Errorf("User-Agent = %q", ua)
	}

	down := New(Options{DataURL: "http://127.0.0.1:1", RequestsPerSecond: -1, Timeout: time.Second})
	if err := down.Ping(context.Background()); err == nil {
		t.Error("expected error for unreachable EDGAR")
	}
}
