package models

// ChangeType classifies one section-level difference.
type ChangeType string

const (
	ChangeAdded    ChangeType = "added"
	ChangeModified ChangeType = "modified"
	ChangeRemoved  ChangeType = "removed"
)

// Severity is the discrete label derived from a change score.
type Severity string

const (
	SeverityMinor       Severity = "minor"
	SeverityModerate    Severity = "moderate"
	SeveritySignificant Severity = "significant"
	SeverityCritical    Severity = "critical"
)

// ChangeEntry describes how one named section moved between two filings.
type ChangeEntry struct {
	SectionName      string     `json:"sectionName"`
	ChangeType       ChangeType `json:"changeType"`
	ChangePercentage float64    `json:"changePercentage"`
	WordCountDelta   *int       `json:"wordCountDelta,omitempty"`
}

// ChangeReport is the outcome of comparing a filing with its baseline.
// Severity is empty when there was no baseline to compare against.
type ChangeReport struct {
	HasChanges  bool          `json:"hasChanges"`
	HasBaseline bool          `json:"hasBaseline"`
	ChangeScore float64       `json:"changeScore"`
	Severity    Severity      `json:"changeSeverity,omitempty"`
	Entries     []ChangeEntry `json:"sections"`
}

// EffectiveSeverity returns the severity, treating an uncompared report as minor.
func (r ChangeReport) EffectiveSeverity() Severity {
	if r.Severity == "" {
		return SeverityMinor
	}
	return r.Severity
}

// IsMaterial reports whether the severity warrants notification.
func (s Severity) IsMaterial() bool {
	return s == SeveritySignificant || s == SeverityCritical
}
