// Package rules provides the deterministic compliance rule engine.
// Rules run before semantic evaluation to catch well-known prohibited
// language with zero latency and no model cost.
package rules

import (
	"regexp"

	"github.com/jarvish/compliance-engine/internal/domain"
)

// Rule represents a single lexical compliance check.
type Rule struct {
	// Code is the stable regulatory identifier (e.g. AD-001).
	Code string

	// Category groups related rules for cross-stage deduplication.
	Category string

	// Name is a human-readable name for the rule.
	Name string

	// Description explains the violation to the advisor.
	Description string

	// Suggestion is an optional remediation hint.
	Suggestion string

	// Severity is the impact level of a match.
	Severity domain.Severity

	// Patterns are regex patterns matched against the content.
	Patterns []*regexp.Regexp

	// Languages restricts the rule to specific languages.
	// Empty means the rule applies to every language.
	Languages []domain.Language
}

// AppliesTo reports whether the rule is active for the language.
func (r *Rule) AppliesTo(lang domain.Language) bool {
	if len(r.Languages) == 0 {
		return true
	}
	for _, l := range r.Languages {
		if l == lang {
			return true
		}
	}
	return false
}

// Match returns every span of content the rule matches.
// Multiple matches on different spans are all reported; the
// aggregation stage owns deduplication.
func (r *Rule) Match(content string) []domain.Span {
	var spans []domain.Span
	for _, pattern := range r.Patterns {
		for _, loc := range pattern.FindAllStringIndex(content, -1) {
			spans = append(spans, domain.Span{Start: loc[0], End: loc[1]})
		}
	}
	return spans
}

// DefaultRules returns the built-in ordered rule set for advisor
// marketing content. Ordering is significant: critical rules run
// first so early-reject decisions surface the worst violation.
func DefaultRules() []*Rule {
	return []*Rule{
		guaranteedReturns(),
		misleadingClaims(),
		insiderInformation(),
		prohibitedTermsHindi(),
		prohibitedTermsMarathi(),
		absoluteClaims(),
		specificReturns(),
		marketBeating(),
		urgencyTactics(),
		superlativeClaims(),
		promotionalPressure(),
	}
}

func guaranteedReturns() *Rule {
	return &Rule{
		Code:        "AD-001",
		Category:    "guaranteed_returns",
		Name:        "Guaranteed Returns",
		Description: "Guaranteed returns or assured profits are strictly prohibited in advisory content",
		Suggestion:  `Use "potential returns" and reference historical performance with disclaimers`,
		Severity:    domain.SeverityCritical,
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)guaranteed?\s+(?:\d{1,3}(?:\.\d+)?%\s+)?returns?`),
			regexp.MustCompile(`(?i)assured\s+(?:profits?|returns?|gains?)`),
			regexp.MustCompile(`(?i)confirmed\s+returns?`),
			regexp.MustCompile(`(?i)definite\s+gains?`),
			regexp.MustCompile(`(?i)no[\s-]*loss\s+guarantee`),
			regexp.MustCompile(`(?i)100%\s+safe`),
			regexp.MustCompile(`(?i)risk[\s-]*free\s+invest\w*`),
		},
	}
}

func misleadingClaims() *Rule {
	return &Rule{
		Code:        "AD-002",
		Category:    "misleading_claims",
		Name:        "Misleading Wealth Claims",
		Description: "Wealth multiplication claims are misleading and prohibited",
		Suggestion:  "Describe long-term growth potential without multiplication promises",
		Severity:    domain.SeverityCritical,
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)double\s+your\s+money`),
			regexp.MustCompile(`(?i)get\s+rich\s+quick`),
			regexp.MustCompile(`(?i)multiply\s+your\s+(?:money|wealth)`),
			regexp.MustCompile(`(?i)become\s+a\s+crorepati`),
			regexp.MustCompile(`(?i)millionaire\s+in\s+\d+\s+(?:days|months)`),
		},
	}
}

func insiderInformation() *Rule {
	return &Rule{
		Code:        "AD-003",
		Category:    "insider_information",
		Name:        "Insider Information",
		Description: "Claims of insider information or exclusive tips are illegal",
		Suggestion:  "Base recommendations on published research only",
		Severity:    domain.SeverityCritical,
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)insider?\s+(?:information|news)`),
			regexp.MustCompile(`(?i)hot\s+tip`),
			regexp.MustCompile(`(?i)confidential\s+tip`),
			regexp.MustCompile(`(?i)exclusive\s+(?:stock\s+)?tip`),
		},
	}
}

func prohibitedTermsHindi() *Rule {
	return &Rule{
		Code:        "AD-010",
		Category:    "guaranteed_returns",
		Name:        "Prohibited Hindi Terms",
		Description: "Prohibited guarantee language in Hindi content",
		Suggestion:  "बाजार जोखिम का उल्लेख करें और गारंटी की भाषा हटाएं",
		Severity:    domain.SeverityCritical,
		Languages:   []domain.Language{domain.LanguageHindi},
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`गारंटीड\s+रिटर्न`),
			regexp.MustCompile(`पक्का\s+मुनाफा`),
			regexp.MustCompile(`निश्चित\s+लाभ`),
			regexp.MustCompile(`जोखिम\s+मुक्त`),
		},
	}
}

func prohibitedTermsMarathi() *Rule {
	return &Rule{
		Code:        "AD-011",
		Category:    "guaranteed_returns",
		Name:        "Prohibited Marathi Terms",
		Description: "Prohibited guarantee language in Marathi content",
		Suggestion:  "बाजार जोखमीचा उल्लेख करा आणि हमीची भाषा काढून टाका",
		Severity:    domain.SeverityCritical,
		Languages:   []domain.Language{domain.LanguageMarathi},
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`खात्रीशीर\s+परतावा`),
			regexp.MustCompile(`हमखास\s+नफा`),
			regexp.MustCompile(`जोखीम\s+मुक्त`),
		},
	}
}

func absoluteClaims() *Rule {
	return &Rule{
		Code:        "AD-004",
		Category:    "absolute_claims",
		Name:        "Prohibited Absolute Claims",
		Description: "Absolute risk or certainty claims are prohibited",
		Suggestion:  `Use qualified language such as "lower-risk" or "historically"`,
		Severity:    domain.SeverityHigh,
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(?:no|zero)\s+risk\b`),
			regexp.MustCompile(`(?i)risk[\s-]free`),
			regexp.MustCompile(`(?i)definitely\s+will`),
			regexp.MustCompile(`(?i)(?:cannot|can't|never)\s+lose`),
		},
	}
}

func specificReturns() *Rule {
	return &Rule{
		Code:        "AD-005",
		Category:    "specific_returns",
		Name:        "Specific Return Percentages",
		Description: "Specific return percentages without full context are prohibited",
		Suggestion:  "Replace specific percentages with general performance indicators",
		Severity:    domain.SeverityHigh,
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\d{1,3}(?:\.\d+)?%\s*(?:annual\s+|yearly\s+|monthly\s+)?(?:returns?|profits?|gains?)`),
			regexp.MustCompile(`(?i)returns?\s+of\s+\d{1,3}(?:\.\d+)?%`),
			regexp.MustCompile(`(?i)earn\s+\d{1,3}(?:\.\d+)?%`),
		},
	}
}

func marketBeating() *Rule {
	return &Rule{
		Code:        "AD-006",
		Category:    "market_beating",
		Name:        "Market-Beating Claims",
		Description: "Claims of beating or outperforming the market are misleading",
		Suggestion:  "Present fund performance alongside its benchmark with disclaimers",
		Severity:    domain.SeverityHigh,
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)beats?\s+the\s+market`),
			regexp.MustCompile(`(?i)outperforms?\s+the\s+market`),
			regexp.MustCompile(`(?i)better\s+than\s+(?:the\s+)?index`),
		},
	}
}

func urgencyTactics() *Rule {
	return &Rule{
		Code:        "AD-007",
		Category:    "urgency_tactics",
		Name:        "Urgency Tactics",
		Description: "Time-pressure tactics are inappropriate in financial advice",
		Suggestion:  "Remove time-pressure language and focus on education",
		Severity:    domain.SeverityMedium,
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)limited\s+time\s+offer`),
			regexp.MustCompile(`(?i)act\s+(?:now|fast)`),
			regexp.MustCompile(`(?i)hurry\s+up`),
			regexp.MustCompile(`(?i)last\s+chance`),
			regexp.MustCompile(`(?i)expires?\s+soon`),
			regexp.MustCompile(`(?i)limited\s+seats`),
		},
	}
}

func superlativeClaims() *Rule {
	return &Rule{
		Code:        "AD-008",
		Category:    "superlative_claims",
		Name:        "Unsubstantiated Superlatives",
		Description: "Unsubstantiated superlative claims about products",
		Suggestion:  `Use comparative language such as "well-performing" instead of superlatives`,
		Severity:    domain.SeverityMedium,
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)best\s+(?:performing\s+)?(?:fund|investment|scheme)`),
			regexp.MustCompile(`(?i)highest\s+growth\s+fund`),
			regexp.MustCompile(`(?i)number\s+one\s+fund`),
			regexp.MustCompile(`(?i)perfect\s+portfolio`),
			regexp.MustCompile(`(?i)must[\s-]have\s+investment`),
		},
	}
}

func promotionalPressure() *Rule {
	return &Rule{
		Code:        "AD-009",
		Category:    "promotional_pressure",
		Name:        "Excessive Promotion",
		Description: "Aggressive call-to-action language in advisory content",
		Suggestion:  "Invite questions instead of demanding immediate contact",
		Severity:    domain.SeverityMedium,
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)call\s+(?:me\s+)?now`),
			regexp.MustCompile(`(?i)whatsapp\s+me`),
			regexp.MustCompile(`(?i)dm\s+for\s+details`),
			regexp.MustCompile(`(?i)contact\s+immediately`),
		},
	}
}
