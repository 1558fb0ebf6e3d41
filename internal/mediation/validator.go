package mediation

import (
	"encoding/json"
	"strings"

	"github.com/rs/zerolog/log"
)

const minSummaryLength = 50

// harmfulPhrases flag a result for downstream review. The flag never blocks
// persistence: an imperfect insight is more useful to a couple in conflict
// than none.
var harmfulPhrases = []string{
	"leave them", "divorce", "break up", "worthless", "stupid", "idiot",
}

// ValidationReport records quality findings about a parsed result.
type ValidationReport struct {
	Valid          bool
	MissingFields  []string
	ContentFlagged bool
}

// ValidateResult checks a parsed result for completeness and quality:
// all six fields present, at least two suggestions, a non-trivial summary.
// Failures are logged and reported, never fatal.
func ValidateResult(result parsedResult) ValidationReport {
	report := ValidationReport{Valid: true}

	if result.Summary == "" {
		report.MissingFields = append(report.MissingFields, "summary")
	}
	if len(result.CommonGround) == 0 {
		report.MissingFields = append(report.MissingFields, "common_ground")
	}
	if len(result.Disagreements) == 0 {
		report.MissingFields = append(report.MissingFields, "disagreements")
	}
	if len(result.RootCauses) == 0 {
		report.MissingFields = append(report.MissingFields, "root_causes")
	}
	if len(result.Suggestions) == 0 {
		report.MissingFields = append(report.MissingFields, "suggestions")
	}
	if len(result.CommunicationTips) == 0 {
		report.MissingFields = append(report.MissingFields, "communication_tips")
	}

	if len(report.MissingFields) > 0 {
		report.Valid = false
		log.Warn().Strs("missing", report.MissingFields).Msg("mediation result missing fields")
	}

	if len(result.Suggestions) < 2 {
		report.Valid = false
		log.Warn().Int("count", len(result.Suggestions)).Msg("mediation result has fewer than 2 suggestions")
	}

	if len(result.Summary) < minSummaryLength {
		report.Valid = false
		log.Warn().Msg("mediation result summary is too short or missing")
	}

	serialized, err := json.Marshal(result)
	if err == nil {
		text := strings.ToLower(string(serialized))
		for _, phrase := range harmfulPhrases {
			if strings.Contains(text, phrase) {
				report.ContentFlagged = true
				log.Warn().Str("phrase", phrase).Msg("potentially harmful content detected in mediation result")
				break
			}
		}
	}

	return report
}
