package models

import "time"

// --- Narrative analysis ---

// Sentiment is the narrative collaborator's tone assessment.
type Sentiment struct {
	Overall    string  `json:"overall"`
	Score      float64 `json:"score"`
	Confidence float64 `json:"confidence"`
}

// RiskScore is a 0-100 risk rating with a coarse category.
type RiskScore struct {
	Overall  int    `json:"overall"`
	Category string `json:"category"`
}

// Narrative is the optional AI-generated analysis attached to a result.
type Narrative struct {
	Summary      string    `json:"summary"`
	KeyTakeaways []string  `json:"keyTakeaways,omitempty"`
	Sentiment    Sentiment `json:"sentiment"`
	RiskScore    RiskScore `json:"riskScore"`
	Model        string    `json:"model,omitempty"`
}

// --- Result records ---

// ResultMetadata stamps each emitted record.
type ResultMetadata struct {
	Timestamp time.Time `json:"timestamp"`
	RunID     string    `json:"runId"`
	Version   string    `json:"version"`
}

// Result is one record per processed filing, handed to the sink in processing order.
type Result struct {
	Metadata        ResultMetadata    `json:"metadata"`
	Company         CompanyProfile    `json:"company"`
	Filing          Filing            `json:"filing"`
	URLs            FilingURLs        `json:"urls"`
	Excerpts        map[string]string `json:"excerpts,omitempty"`
	FullText        string            `json:"fullText,omitempty"`
	ChangeDetection ChangeReport      `json:"changeDetection"`
	AIAnalysis      *Narrative        `json:"aiAnalysis,omitempty"`
}

// --- Run summary ---

// FilingFailure records a filing that could not be processed.
type FilingFailure struct {
	AccessionNumber string `json:"accessionNumber"`
	FormType        string `json:"filingType"`
	Stage           string `json:"stage"`
	Error           string `json:"error"`
}

// CompanySummary is the per-company outcome of a run.
type CompanySummary struct {
	Identifier     CompanyIdentifier `json:"identifier"`
	CIK            string            `json:"cik,omitempty"`
	Name           string            `json:"name,omitempty"`
	Failed         bool              `json:"failed"`
	Error          string            `json:"error,omitempty"`
	FilingsFound   int               `json:"filingsFound"`
	FilingsEmitted int               `json:"filingsEmitted"`
	Failures       []FilingFailure   `json:"failures,omitempty"`
}

// RunStats are the aggregate counters of a run.
type RunStats struct {
	CompaniesProcessed int `json:"companiesProcessed"`
	FilingsFound       int `json:"filingsFound"`
	ChangesDetected    int `json:"changesDetected"`
	WebhooksSent       int `json:"webhooksSent"`
	Errors             int `json:"errors"`
}

// RunSummary is written once at the end of a run.
type RunSummary struct {
	RunID       string           `json:"runId"`
	Status      string           `json:"status"`
	StartedAt   time.Time        `json:"startedAt"`
	CompletedAt time.Time        `json:"completedAt"`
	Statistics  RunStats         `json:"statistics"`
	Companies   []CompanySummary `json:"companies"`
}
