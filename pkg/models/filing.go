package models

import (
	"strings"
	"time"
)

// AmendmentSuffix marks an amended form type, e.g. "10-K/A".
const AmendmentSuffix = "/A"

// AllFormTypes is the sentinel accepting every form type.
const AllFormTypes = "ALL"

// --- SEC Filings ---

// Filing is one submission as listed by the EDGAR feed.
type Filing struct {
	AccessionNumber    string     `json:"accessionNumber"`
	FormType           string     `json:"filingType"`
	FilingDate         time.Time  `json:"filingDate"`
	ReportDate         *time.Time `json:"reportDate,omitempty"`
	AcceptanceDateTime *time.Time `json:"acceptanceDateTime,omitempty"`
	PrimaryDocument    string     `json:"primaryDocument,omitempty"`
	Description        string     `json:"primaryDocDescription,omitempty"`
	IsAmendment        bool       `json:"isAmendment"`
	FiscalYear         int        `json:"fiscalYear,omitempty"`
	FiscalPeriod       string     `json:"fiscalPeriod,omitempty"`
}

// IsAmendmentForm reports whether formType carries the amendment suffix.
func IsAmendmentForm(formType string) bool {
	return strings.HasSuffix(formType, AmendmentSuffix)
}

// FilingURLs are the EDGAR links published alongside a result.
type FilingURLs struct {
	EdgarFiling     string `json:"edgarFiling"`
	PrimaryDocument string `json:"primaryDocument,omitempty"`
	HTMLViewer      string `json:"htmlViewer"`
	XBRLViewer      string `json:"xbrlData"`
}

// FilingContent is the converted text of one filing plus its extracted sections.
type FilingContent struct {
	Text     string            `json:"text"`
	Sections map[string]string `json:"sections"`
}
