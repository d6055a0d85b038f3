// Package sections locates the standard disclosure items inside filing text.
//
// Each canonical heading is searched independently over the whole text, so
// sections can overlap or come out of document order when headings recur
// (for example a table of contents followed by the body). Consumers must
// tolerate overlap; this is a heuristic, not a structural parse.
package sections

import (
	"regexp"
	"sort"
	"unicode/utf8"
)

// Canonical section names, in extraction order.
const (
	Business            = "business"
	RiskFactors         = "risk_factors"
	MDandA              = "md_and_a"
	FinancialStatements = "financial_statements"
)

// headingGuard is how many characters past a section's own start the search
// for the next item heading begins, so the heading cannot re-match itself.
const headingGuard = 100

// ws matches one whitespace character including Unicode spaces such as the
// non-breaking spaces left behind by HTML conversion, and the \x1c-\x1f
// separators. Digits in the patterns are ASCII only; headings in EDGAR text
// never use other digit forms.
const ws = `[\s\v\x1c-\x1f\x{85}\p{Z}]`

type heading struct {
	name    string
	pattern *regexp.Regexp
}

var headings = []heading{
	{Business, regexp.MustCompile(`(?i)ITEM` + ws + `+1\.?` + ws + `+BUSINESS`)},
	{RiskFactors, regexp.MustCompile(`(?i)ITEM` + ws + `+1A\.?` + ws + `+RISK` + ws + `+FACTORS`)},
	{MDandA, regexp.MustCompile(`(?i)ITEM` + ws + `+7\.?` + ws + `+MANAGEMENT.*DISCUSSION`)},
	{FinancialStatements, regexp.MustCompile(`(?i)ITEM` + ws + `+8\.?` + ws + `+FINANCIAL` + ws + `+STATEMENTS`)},
}

// nextItem matches any numbered item heading.
var nextItem = regexp.MustCompile(`(?i)ITEM` + ws + `+\d+`)

// Names returns the canonical section names in extraction order.
func Names() []string {
	out := make([]string, len(headings))
	for i, h := range headings {
		out[i] = h.name
	}
	return out
}

// Bounds is the byte range of one located section.
type Bounds struct {
	Name  string
	Start int
	End   int
}

// Locate returns the bounds of every canonical section found in text, in
// canonical order. Sections whose heading is absent are omitted.
func Locate(text string) []Bounds {
	var out []Bounds
	for _, h := range headings {
		loc := h.pattern.FindStringIndex(text)
		if loc == nil {
			continue
		}
		start := loc[0]
		end := len(text)
		from := advanceRunes(text, start, headingGuard)
		if next := nextItem.FindStringIndex(text[from:]); next != nil {
			end = from + next[0]
		}
		out = append(out, Bounds{Name: h.name, Start: start, End: end})
	}
	return out
}

// Extract maps section name to the section's text.
func Extract(text string) map[string]string {
	found := Locate(text)
	out := make(map[string]string, len(found))
	for _, b := range found {
		out[b.Name] = text[b.Start:b.End]
	}
	return out
}

// OrderedNames returns the keys of m with canonical names first, in canonical
// order, followed by any other names sorted lexically.
func OrderedNames(m map[string]string) []string {
	names := make([]string, 0, len(m))
	seen := make(map[string]bool, len(headings))
	for _, h := range headings {
		if _, ok := m[h.name]; ok {
			names = append(names, h.name)
			seen[h.name] = true
		}
	}
	var rest []string
	for name := range m {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}

// advanceRunes returns the byte offset n characters after start, clamped to len(s).
func advanceRunes(s string, start, n int) int {
	i := start
	for k := 0; k < n && i < len(s); k++ {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return i
}
