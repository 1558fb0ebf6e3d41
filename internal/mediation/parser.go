package mediation

import (
	"encoding/json"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/heka-app/heka-server-go/internal/model"
)

// parsedResult is the structured LLM output with every field defaulted.
// Parsing fills absent fields explicitly; nothing relies on the provider
// returning a complete object.
type parsedResult struct {
	Summary           string             `json:"summary"`
	CommonGround      []string           `json:"common_ground"`
	Disagreements     []string           `json:"disagreements"`
	RootCauses        []string           `json:"root_causes"`
	Suggestions       []model.Suggestion `json:"suggestions"`
	CommunicationTips []string           `json:"communication_tips"`
}

func (r *parsedResult) fillDefaults() {
	if r.CommonGround == nil {
		r.CommonGround = []string{}
	}
	if r.Disagreements == nil {
		r.Disagreements = []string{}
	}
	if r.RootCauses == nil {
		r.RootCauses = []string{}
	}
	if r.Suggestions == nil {
		r.Suggestions = []model.Suggestion{}
	}
	if r.CommunicationTips == nil {
		r.CommunicationTips = []string{}
	}
}

const degradedSummaryLimit = 200

// attempt is one stage of the parse chain. ok=false means "try the next
// stage", never an error: the chain as a whole cannot fail.
type attempt func(content string) (parsedResult, bool)

// parseChain is the ordered fallback: strict JSON parse, then the first
// balanced curly-brace span, then a degraded result built from the raw text.
// The final stage always succeeds, so ParseResponse never propagates a parse
// failure after the provider call has already been paid for.
var parseChain = []attempt{parseStrict, parseBraceSpan, degrade}

// ParseResponse turns raw provider output into a structured result. The
// second return value is the raw JSON that was parsed (or a synthesized
// object for degraded results), stored verbatim for auditing.
func ParseResponse(content string) (parsedResult, json.RawMessage) {
	for i, stage := range parseChain {
		if result, ok := stage(content); ok {
			if i > 0 {
				log.Warn().Int("parse_stage", i).Msg("mediation response required fallback parsing")
			}
			result.fillDefaults()
			raw, err := json.Marshal(result)
			if err != nil {
				raw = json.RawMessage(`{}`)
			}
			return result, raw
		}
	}
	// Unreachable: degrade always succeeds.
	return parsedResult{}, json.RawMessage(`{}`)
}

func parseStrict(content string) (parsedResult, bool) {
	var result parsedResult
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &result); err != nil {
		return parsedResult{}, false
	}
	return result, true
}

// parseBraceSpan extracts the first balanced {...} span and parses it.
// Handles prose-wrapped and markdown-fenced responses.
func parseBraceSpan(content string) (parsedResult, bool) {
	span, ok := firstBraceSpan(content)
	if !ok {
		return parsedResult{}, false
	}
	return parseStrict(span)
}

func firstBraceSpan(content string) (string, bool) {
	start := strings.IndexByte(content, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(content); i++ {
		c := content[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return content[start : i+1], true
			}
		}
	}
	return "", false
}

// degrade synthesizes a minimal result from unstructured text: a truncated
// summary preview with all list fields empty.
func degrade(content string) (parsedResult, bool) {
	summary := strings.TrimSpace(content)
	if len(summary) > degradedSummaryLimit {
		summary = summary[:degradedSummaryLimit] + "..."
	}
	return parsedResult{Summary: summary}, true
}
