package models

// --- Company identifiers ---

// IdentifierKind tags the form of a watchlist identifier.
type IdentifierKind string

const (
	KindCIK        IdentifierKind = "cik"
	KindTicker     IdentifierKind = "ticker"
	KindName       IdentifierKind = "name"
	KindSecurityID IdentifierKind = "cusip"
)

// CompanyIdentifier is a watchlist entry before resolution to a CIK.
type CompanyIdentifier struct {
	Kind  IdentifierKind `json:"type"  mapstructure:"type"  yaml:"type"`
	Value string         `json:"value" mapstructure:"value" yaml:"value"`
}

func (id CompanyIdentifier) String() string {
	return string(id.Kind) + ":" + id.Value
}

// CIKMapping is one row of the reference directory used for resolution.
// Rows keep the order of the upstream source; ties in fuzzy matching go to
// the earlier row.
type CIKMapping struct {
	CIK        string `json:"cik"`
	Symbol     string `json:"symbol,omitempty"`
	Name       string `json:"name"`
	SecurityID string `json:"cusip,omitempty"`
}

// --- Company profile ---

// CompanyProfile is the registrant snapshot fetched once per company per run.
type CompanyProfile struct {
	Name                 string `json:"name"`
	CIK                  string `json:"cik"`
	SIC                  string `json:"sic,omitempty"`
	SICDescription       string `json:"sicDescription,omitempty"`
	FiscalYearEnd        string `json:"fiscalYearEnd,omitempty"`
	StateOfIncorporation string `json:"stateOfIncorporation,omitempty"`
	Ticker               string `json:"ticker,omitempty"`
	Category             string `json:"category,omitempty"`
	EntityType           string `json:"entityType,omitempty"`
}
