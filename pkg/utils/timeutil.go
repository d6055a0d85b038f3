package utils

import (
	"time"
)

// secDateLayouts are the layouts seen across EDGAR JSON and Atom payloads.
var secDateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05.000Z",
	"2006-01-02T15:04:05Z07:00",
	"01/02/2006",
	time.RFC3339,
}

// ParseSECDate parses an EDGAR date or timestamp. It returns the zero time
// when s matches none of the known layouts.
func ParseSECDate(s string) time.Time {
	for _, layout := range secDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// ParseSECDatePtr is ParseSECDate for optional fields; empty or unparsable
// input yields nil.
func ParseSECDatePtr(s string) *time.Time {
	if s == "" {
		return nil
	}
	t := ParseSECDate(s)
	if t.IsZero() {
		return nil
	}
	return &t
}

// FiscalYear returns the calendar year of the report date, or 0 when unknown.
func FiscalYear(reportDate *time.Time) int {
	if reportDate == nil {
		return 0
	}
	return reportDate.Year()
}

// FiscalPeriod derives the fiscal period label for annual and quarterly forms.
// 10-K → "FY"; 10-Q → quarter of the report month (Q1 when the date is unknown);
// every other form has no period.
func FiscalPeriod(formType string, reportDate *time.Time) string {
	switch formType {
	case "10-K":
		return "FY"
	case "10-Q":
		if reportDate == nil {
			return "Q1"
		}
		switch m := reportDate.Month(); {
		case m <= time.March:
			return "Q1"
		case m <= time.June:
			return "Q2"
		case m <= time.September:
			return "Q3"
		default:
			return "Q4"
		}
	}
	return ""
}

// WithinLookback reports whether date falls within the last days days of now.
// A non-positive window accepts everything.
func WithinLookback(date, now time.Time, days int) bool {
	if days <= 0 {
		return true
	}
	return !date.Before(now.AddDate(0, 0, -days))
}
