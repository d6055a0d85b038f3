package edgar

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"

	"github.com/seenimoa/edgarwatch/pkg/models"
	"github.com/seenimoa/edgarwatch/pkg/utils"
)

// sniffBytes is how much of a document is inspected to decide whether it is HTML.
const sniffBytes = 64 << 10

// FetchFilingText downloads a filing's primary document and converts it to
// plain text. Filings without a primary document use the full submission file.
func (c *Client) FetchFilingText(ctx context.Context, cik string, f models.Filing) (string, error) {
	u := c.documentURL(cik, f)
	body, err := c.get(ctx, u, "text/html, text/plain, */*")
	if err != nil {
		return "", fmt.Errorf("edgar document %s: %w", f.AccessionNumber, err)
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, maxDocumentBytes))
	if err != nil {
		return "", fmt.Errorf("read document %s: %w", f.AccessionNumber, err)
	}
	return DocumentText(data)
}

// DocumentText converts a downloaded document to UTF-8 text. HTML is
// flattened with HTMLToText; anything else is only decoded.
func DocumentText(data []byte) (string, error) {
	data, err := decode(data)
	if err != nil {
		return "", err
	}
	if !looksLikeHTML(data) {
		return string(data), nil
	}
	return htmlText(bytes.NewReader(data))
}

// decode converts data to UTF-8. Valid UTF-8 is kept as is. Otherwise the
// encoding comes from a BOM or <meta> declaration, defaulting to
// windows-1252, which also covers ISO-8859-1.
func decode(data []byte) ([]byte, error) {
	if utf8.Valid(data) {
		return data, nil
	}
	enc, name, _ := charset.DetermineEncoding(data, "")
	if name == "utf-8" {
		// Declared UTF-8 but not valid UTF-8.
		enc, name = charset.Lookup("windows-1252")
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("decode document as %s: %w", name, err)
	}
	return out, nil
}

func looksLikeHTML(data []byte) bool {
	head := data
	if len(head) > sniffBytes {
		head = head[:sniffBytes]
	}
	lower := bytes.ToLower(head)
	for _, tag := range [][]byte{[]byte("<html"), []byte("<body"), []byte("<!doctype html")} {
		if bytes.Contains(lower, tag) {
			return true
		}
	}
	return false
}

// HTMLToText returns the visible text of an HTML document: every non-blank
// text node, trimmed, one per line. Script and style content is dropped.
// Documents in a legacy charset are decoded first.
func HTMLToText(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read filing HTML: %w", err)
	}
	if data, err = decode(data); err != nil {
		return "", err
	}
	return htmlText(bytes.NewReader(data))
}

// htmlText parses UTF-8 HTML.
func htmlText(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("parse filing HTML: %w", err)
	}
	doc.Find("script, style").Remove()

	var lines []string
	for _, n := range doc.Nodes {
		collectText(n, &lines)
	}
	return strings.Join(lines, "\n"), nil
}

func collectText(n *html.Node, lines *[]string) {
	switch n.Type {
	case html.TextNode:
		if s := strings.TrimSpace(n.Data); s != "" {
			*lines = append(*lines, s)
		}
		return
	case html.CommentNode, html.DoctypeNode:
		return
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		collectText(child, lines)
	}
}

// --- URLs ---

func (c *Client) archiveDir(cik, accession string) string {
	return fmt.Sprintf("%s/Archives/edgar/data/%s/%s", c.opts.BaseURL, utils.UnpadCIK(cik), utils.CleanAccession(accession))
}

// documentURL is the primary document when known, otherwise the full
// submission text file.
func (c *Client) documentURL(cik string, f models.Filing) string {
	if f.PrimaryDocument != "" {
		return c.archiveDir(cik, f.AccessionNumber) + "/" + f.PrimaryDocument
	}
	return c.archiveDir(cik, f.AccessionNumber) + "/" + f.AccessionNumber + ".txt"
}

// FilingURLs returns the public EDGAR links for a filing.
func (c *Client) FilingURLs(cik string, f models.Filing) models.FilingURLs {
	primary := f.PrimaryDocument
	if primary == "" {
		primary = f.AccessionNumber + ".htm"
	}
	viewer := fmt.Sprintf("%s/cgi-bin/viewer?action=view&cik=%s&accession_number=%s", c.opts.BaseURL, cik, f.AccessionNumber)
	return models.FilingURLs{
		EdgarFiling:     fmt.Sprintf("%s/cgi-bin/browse-edgar?action=getcompany&CIK=%s&type=&dateb=&owner=exclude&count=100", c.opts.BaseURL, cik),
		PrimaryDocument: c.archiveDir(cik, f.AccessionNumber) + "/" + primary,
		HTMLViewer:      viewer,
		XBRLViewer:      viewer + "&xbrl_type=v",
	}
}
