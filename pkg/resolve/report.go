package resolve

import (
	"fmt"
	"strings"
)

// Report summarizes one document's short-form resolution.
type Report struct {
	TotalCitations int `json:"total_citations"`
	ShortForms     int `json:"short_forms"`

	Resolved     int `json:"resolved"`
	Failed       int `json:"failed"`
	FuzzyMatches int `json:"fuzzy_matches"`

	// ResolutionRate is Resolved over ShortForms.
	ResolutionRate float64 `json:"resolution_rate"`

	// Unresolved lists the failed short forms when requested.
	Unresolved []*ResolvedCitation `json:"unresolved,omitempty"`
}

// GenerateReport tallies resolution results. includeUnresolved attaches
// the failed citations themselves for review.
func GenerateReport(results []*ResolvedCitation, includeUnresolved bool) *Report {
	report := &Report{TotalCitations: len(results)}

	for _, rc := range results {
		if rc.Resolution == nil {
			continue
		}
		report.ShortForms++
		switch rc.Resolution.Status {
		case StatusResolved:
			report.Resolved++
			if rc.Resolution.Confidence < 1.0 {
				report.FuzzyMatches++
			}
		case StatusFailed:
			report.Failed++
			if includeUnresolved {
				report.Unresolved = append(report.Unresolved, rc)
			}
		}
	}

	if report.ShortForms > 0 {
		report.ResolutionRate = float64(report.Resolved) / float64(report.ShortForms)
	}
	return report
}

// String returns a human-readable summary.
func (r *Report) String() string {
	var sb strings.Builder

	sb.WriteString("Short-Form Resolution Report\n")
	sb.WriteString("============================\n\n")
	sb.WriteString(fmt.Sprintf("Total citations: %d\n", r.TotalCitations))
	sb.WriteString(fmt.Sprintf("Short forms:     %d\n\n", r.ShortForms))

	sb.WriteString(fmt.Sprintf("  Resolved: %d\n", r.Resolved))
	sb.WriteString(fmt.Sprintf("  Failed:   %d\n", r.Failed))
	sb.WriteString(fmt.Sprintf("  Fuzzy:    %d\n\n", r.FuzzyMatches))

	sb.WriteString(fmt.Sprintf("Resolution rate: %.1f%%\n", r.ResolutionRate*100))

	if len(r.Unresolved) > 0 {
		sb.WriteString("\nUnresolved:\n")
		for _, rc := range r.Unresolved {
			sb.WriteString(fmt.Sprintf("  - paragraph %d: %q - %s\n",
				rc.Paragraph, rc.Citation.MatchedText, rc.Resolution.Reason))
		}
	}

	return sb.String()
}
