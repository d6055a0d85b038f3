package edgar

import "encoding/json"

// --- Company tickers (data.sec.gov/files/company_tickers.json) ---
// The file is an object keyed by row number: {"0": {cik_str, ticker, title}, ...}

type tickerEntry struct {
	CIK    json.Number `json:"cik_str"`
	Ticker string      `json:"ticker"`
	Title  string      `json:"title"`
}

// --- Submissions (data.sec.gov/submissions/CIK##########.json) ---

type submissionsResponse struct {
	CIK           string   `json:"cik"`
	EntityType    string   `json:"entityType"`
	SIC           string   `json:"sic"`
	SICDesc       string   `json:"sicDescription"`
	Name          string   `json:"name"`
	Tickers       []string `json:"tickers"`
	Category      string   `json:"category"`
	StateOfIncorp string   `json:"stateOfIncorporation"`
	FiscalYearEnd string   `json:"fiscalYearEnd"`
	Filings       struct {
		Recent filingSet `json:"recent"`
	} `json:"filings"`
}

// filingSet holds parallel arrays, one element per filing, newest first.
type filingSet struct {
	AccessionNumber    []string `json:"accessionNumber"`
	FilingDate         []string `json:"filingDate"`
	ReportDate         []string `json:"reportDate"`
	AcceptanceDateTime []string `json:"acceptanceDateTime"`
	Form               []string `json:"form"`
	PrimaryDocument    []string `json:"primaryDocument"`
	Description        []string `json:"primaryDocDescription"`
}

// --- Security identifier supplement (YAML) ---

type securityFile struct {
	Securities []securityEntry `yaml:"securities"`
}

type securityEntry struct {
	CUSIP  string `yaml:"cusip"`
	CIK    string `yaml:"cik"`
	Name   string `yaml:"name"`
	Ticker string `yaml:"ticker"`
}

// at returns s[i], or "" when the array is shorter than the accession list.
func at(s []string, i int) string {
	if i < len(s) {
		return s[i]
	}
	return ""
}
