// Package change scores how much a filing's sections moved relative to the
// previous filing of the same company and form type.
package change

import (
	"strings"

	"github.com/seenimoa/edgarwatch/internal/sections"
	"github.com/seenimoa/edgarwatch/internal/similarity"
	"github.com/seenimoa/edgarwatch/pkg/models"
)

const (
	// ItemizeThreshold is the change percentage a modified section must
	// strictly exceed to be listed. Smaller drift still counts toward the score.
	ItemizeThreshold = 5.0

	// ChangedThreshold is the score above which a report has changes.
	ChangedThreshold = 0.05
)

// Severity thresholds, evaluated high to low with strict comparison.
const (
	CriticalAbove    = 0.5
	SignificantAbove = 0.3
	ModerateAbove    = 0.1
)

// Classify maps a change score to a severity label.
func Classify(score float64) models.Severity {
	switch {
	case score > CriticalAbove:
		return models.SeverityCritical
	case score > SignificantAbove:
		return models.SeveritySignificant
	case score > ModerateAbove:
		return models.SeverityModerate
	default:
		return models.SeverityMinor
	}
}

// NoBaseline is the report for a filing with nothing to compare against.
func NoBaseline() models.ChangeReport {
	return models.ChangeReport{Entries: []models.ChangeEntry{}}
}

// Detect compares current sections against baseline. A nil baseline yields
// the NoBaseline report regardless of current.
func Detect(current map[string]string, baseline *models.FilingContent) models.ChangeReport {
	if baseline == nil {
		return NoBaseline()
	}
	return Compare(current, baseline.Sections)
}

// Compare diffs two section maps. Every section present on either side
// contributes to the score: added and removed sections count 100%, shared
// sections count (1 - similarity) * 100. The score is the mean contribution
// scaled to [0, 1].
func Compare(current, previous map[string]string) models.ChangeReport {
	report := models.ChangeReport{
		HasBaseline: true,
		Entries:     []models.ChangeEntry{},
	}

	var total float64
	var count int

	for _, name := range sections.OrderedNames(current) {
		cur := current[name]
		prev, ok := previous[name]
		if !ok {
			report.Entries = append(report.Entries, models.ChangeEntry{
				SectionName:      name,
				ChangeType:       models.ChangeAdded,
				ChangePercentage: 100.0,
			})
			total += 100
			count++
			continue
		}

		pct := (1 - similarity.Ratio(prev, cur)) * 100
		if pct > ItemizeThreshold {
			delta := wordCount(cur) - wordCount(prev)
			report.Entries = append(report.Entries, models.ChangeEntry{
				SectionName:      name,
				ChangeType:       models.ChangeModified,
				ChangePercentage: pct,
				WordCountDelta:   &delta,
			})
		}
		total += pct
		count++
	}

	for _, name := range sections.OrderedNames(previous) {
		if _, ok := current[name]; ok {
			continue
		}
		report.Entries = append(report.Entries, models.ChangeEntry{
			SectionName:      name,
			ChangeType:       models.ChangeRemoved,
			ChangePercentage: 100.0,
		})
		total += 100
		count++
	}

	if count > 0 {
		report.ChangeScore = total / float64(count) / 100
	}
	report.HasChanges = report.ChangeScore > ChangedThreshold
	report.Severity = Classify(report.ChangeScore)
	return report
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}
