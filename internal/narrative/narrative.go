// Package narrative produces optional AI-written analysis of a filing.
//
// A Narrator is a capability: when narrative analysis is disabled the
// pipeline receives a Noop and results carry no analysis. Failures are
// reported as ErrNarrative and never abort filing processing.
package narrative

import (
	"context"
	"errors"

	"github.com/seenimoa/edgarwatch/pkg/models"
)

// ErrNarrative wraps every failure of a narrative backend.
var ErrNarrative = errors.New("narrative: analysis failed")

// Narrator produces a narrative for a filing's text and change report.
// A nil narrative with a nil error means no analysis is available.
type Narrator interface {
	Generate(ctx context.Context, text string, report models.ChangeReport) (*models.Narrative, error)
}

// Noop never produces a narrative.
type Noop struct{}

// Generate always returns nil, nil.
func (Noop) Generate(context.Context, string, models.ChangeReport) (*models.Narrative, error) {
	return nil, nil
}

// Options configures narrative analysis.
type Options struct {
	Enabled  bool
	APIKey   string
	Model    string
	BaseURL  string // optional OpenAI-compatible endpoint
	MaxChars int    // leading characters of filing text sent for analysis
}

// New returns the configured narrator, or Noop when analysis is disabled.
func New(opts Options) (Narrator, error) {
	if !opts.Enabled {
		return Noop{}, nil
	}
	return NewOpenAI(opts)
}

// riskCategory buckets a 0-100 risk score.
func riskCategory(score int) string {
	switch {
	case score > 66:
		return "high"
	case score > 33:
		return "moderate"
	default:
		return "low"
	}
}

// sentimentScore maps a sentiment label to [-1, 1].
func sentimentScore(label string) float64 {
	switch label {
	case "positive":
		return 1
	case "negative":
		return -1
	default:
		return 0
	}
}

// truncateRunes returns the first n characters of s.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
