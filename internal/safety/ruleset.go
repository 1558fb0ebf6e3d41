package safety

import "regexp"

type ConcernType string

const (
	ConcernViolence           ConcernType = "violence"
	ConcernAbuse              ConcernType = "abuse"
	ConcernSelfHarm           ConcernType = "self_harm"
	ConcernSubstance          ConcernType = "substance"
	ConcernMentalHealthCrisis ConcernType = "mental_health_crisis"
)

type Severity string

const (
	SeverityNone     Severity = "none"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

type Action string

const (
	ActionProceed             Action = "proceed"
	ActionShowCrisisResources Action = "show_crisis_resources"
	ActionBlockMediation      Action = "block_mediation"
)

// Ruleset is the classifier's immutable configuration: keyword sets per
// concern, subtle abuse-pattern regexes, and per-concern severity scores.
// It is injected at construction so tests can substitute rulesets and so the
// production rule list can be versioned and audited.
type Ruleset struct {
	Keywords      map[ConcernType][]string
	AbusePatterns []*regexp.Regexp
	Scores        map[ConcernType]int
	Messages      Messages
}

// Messages are the user-facing texts per severity band.
type Messages struct {
	Critical string
	High     string
	Medium   string
}

// DefaultRuleset returns the production rules. Matching is heuristic by
// design: a conservative, auditable, zero-latency pre-filter, not an ML
// classifier. False positives are acceptable; missed crises are the failure
// mode the broad keyword lists guard against.
func DefaultRuleset() *Ruleset {
	return &Ruleset{
		Keywords: map[ConcernType][]string{
			ConcernViolence: {
				"hit", "hitting", "punch", "punching", "hurt", "hurting", "hurt me",
				"violent", "violence", "attack", "attacking", "beat", "beating",
				"assault", "assaulting", "physical", "physically", "harm", "harming",
				"abuse", "abusive", "abused", "threaten", "threatening", "threat",
				"threats", "fear", "afraid", "scared", "intimidate", "intimidating",
			},
			ConcernAbuse: {
				"abuse", "abusive", "abused", "control", "controlling", "manipulate",
				"manipulating", "manipulation", "threaten", "threatening", "threat",
				"threats", "force", "forcing", "coerce", "coercing", "isolate",
				"isolating", "isolated", "financial control", "emotional abuse",
				"verbal abuse", "psychological abuse", "gaslight", "gaslighting",
			},
			ConcernSelfHarm: {
				"suicide", "suicidal", "kill myself", "end my life", "want to die",
				"self-harm", "self harm", "cutting", "cut myself", "hurt myself",
				"end it all", "no point", "hopeless", "worthless", "better off dead",
			},
			ConcernSubstance: {
				"drunk", "drinking", "alcohol", "alcoholic", "high", "drugs",
				"drug", "addiction", "addicted", "substance abuse", "overdose",
				"using", "binge", "binge drinking",
			},
			ConcernMentalHealthCrisis: {
				"depression", "depressed", "anxiety", "panic", "panic attack",
				"mental breakdown", "breakdown", "can't cope", "overwhelmed",
				"crisis", "emergency", "help me", "need help", "desperate",
			},
		},
		AbusePatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)you can't`),
			regexp.MustCompile(`(?i)you're not allowed`),
			regexp.MustCompile(`(?i)i won't let you`),
			regexp.MustCompile(`(?i)you have to`),
			regexp.MustCompile(`(?i)you must`),
			regexp.MustCompile(`(?i)don't tell anyone`),
			regexp.MustCompile(`(?i)no one will believe you`),
			regexp.MustCompile(`(?i)you're crazy`),
			regexp.MustCompile(`(?i)you're imagining things`),
		},
		Scores: map[ConcernType]int{
			ConcernViolence:           4,
			ConcernAbuse:              4,
			ConcernSelfHarm:           5,
			ConcernSubstance:          2,
			ConcernMentalHealthCrisis: 3,
		},
		Messages: Messages{
			Critical: "We've detected language that suggests this situation may involve " +
				"safety concerns. Heka is not equipped to handle situations involving " +
				"violence, abuse, or crisis. Please seek immediate professional help.",
			High: "We've detected language that suggests professional support may be helpful. " +
				"While Heka can assist with communication, some situations benefit from " +
				"professional guidance.",
			Medium: "If you're dealing with substance use or mental health concerns, " +
				"consider consulting with a professional alongside using Heka.",
		},
	}
}
