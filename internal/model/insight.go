package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Suggestion is one structured mediation suggestion.
type Suggestion struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	ActionableSteps []string `json:"actionable_steps"`
}

// StringList stores a JSON array of strings in a jsonb column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(src any) error {
	return scanJSON(l, src)
}

// SuggestionList stores a JSON array of suggestions in a jsonb column.
type SuggestionList []Suggestion

func (l SuggestionList) Value() (driver.Value, error) {
	if l == nil {
		l = SuggestionList{}
	}
	return json.Marshal(l)
}

func (l *SuggestionList) Scan(src any) error {
	return scanJSON(l, src)
}

func scanJSON(dest any, src any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	}
	return fmt.Errorf("unsupported jsonb source type %T", src)
}

// AIInsight is the persisted mediation result. One row per argument,
// immutable after insert.
type AIInsight struct {
	ID                string          `db:"id" json:"id"`
	ArgumentID        string          `db:"argument_id" json:"argumentId"`
	Summary           string          `db:"summary" json:"summary"`
	CommonGround      StringList      `db:"common_ground" json:"common_ground"`
	Disagreements     StringList      `db:"disagreements" json:"disagreements"`
	RootCauses        StringList      `db:"root_causes" json:"root_causes"`
	Suggestions       SuggestionList  `db:"suggestions" json:"suggestions"`
	CommunicationTips StringList      `db:"communication_tips" json:"communication_tips"`
	FullResponse      json.RawMessage `db:"full_response" json:"-"`
	ModelUsed         string          `db:"model_used" json:"model_used"`
	Cost              float64         `db:"cost" json:"cost"`
	InputTokens       int             `db:"input_tokens" json:"inputTokens"`
	OutputTokens      int             `db:"output_tokens" json:"outputTokens"`
	GeneratedAt       time.Time       `db:"generated_at" json:"generated_at"`
}

type CreateInsightParams struct {
	ArgumentID        string
	Summary           string
	CommonGround      StringList
	Disagreements     StringList
	RootCauses        StringList
	Suggestions       SuggestionList
	CommunicationTips StringList
	FullResponse      json.RawMessage
	ModelUsed         string
	Cost              float64
	InputTokens       int
	OutputTokens      int
}
