package safety

import "strings"

// Assessment is the classifier's result. It is ephemeral: computed per
// request, never persisted.
type Assessment struct {
	HasConcerns  bool          `json:"has_concerns"`
	ConcernTypes []ConcernType `json:"concern_types"`
	Severity     Severity      `json:"severity"`
	Action       Action        `json:"action"`
	Message      string        `json:"message,omitempty"`
}

// Blocked reports whether mediation must not proceed. Critical is the only
// blocking severity.
func (a Assessment) Blocked() bool {
	return a.Severity == SeverityCritical
}

type Classifier struct {
	rules *Ruleset
}

func NewClassifier(rules *Ruleset) *Classifier {
	return &Classifier{rules: rules}
}

// Classify scans both perspectives for crisis and abuse signals. It is a pure
// function of its inputs and never fails; no matches is a common, valid
// result. A concern is recorded on the first keyword hit per category; the
// overall severity derives only from the highest matched score, not from how
// many keywords matched.
func (c *Classifier) Classify(perspective1, perspective2 string) Assessment {
	allText := strings.ToLower(perspective1 + " " + perspective2)

	var concerns []ConcernType
	for _, concern := range []ConcernType{
		ConcernViolence, ConcernAbuse, ConcernSelfHarm,
		ConcernSubstance, ConcernMentalHealthCrisis,
	} {
		for _, keyword := range c.rules.Keywords[concern] {
			if strings.Contains(allText, strings.ToLower(keyword)) {
				concerns = append(concerns, concern)
				break
			}
		}
	}

	if !containsConcern(concerns, ConcernAbuse) {
		for _, pattern := range c.rules.AbusePatterns {
			if pattern.MatchString(allText) {
				concerns = append(concerns, ConcernAbuse)
				break
			}
		}
	}

	if len(concerns) == 0 {
		return Assessment{
			HasConcerns:  false,
			ConcernTypes: []ConcernType{},
			Severity:     SeverityNone,
			Action:       ActionProceed,
		}
	}

	maxScore := 0
	for _, concern := range concerns {
		score := c.rules.Scores[concern]
		if score == 0 {
			score = 1
		}
		if score > maxScore {
			maxScore = score
		}
	}

	var severity Severity
	var action Action
	var message string
	switch {
	case maxScore >= 4:
		severity = SeverityCritical
		action = ActionBlockMediation
		message = c.rules.Messages.Critical
	case maxScore == 3:
		severity = SeverityHigh
		action = ActionShowCrisisResources
		message = c.rules.Messages.High
	default:
		severity = SeverityMedium
		action = ActionShowCrisisResources
		message = c.rules.Messages.Medium
	}

	return Assessment{
		HasConcerns:  true,
		ConcernTypes: concerns,
		Severity:     severity,
		Action:       action,
		Message:      message,
	}
}

func containsConcern(concerns []ConcernType, target ConcernType) bool {
	for _, c := range concerns {
		if c == target {
			return true
		}
	}
	return false
}
