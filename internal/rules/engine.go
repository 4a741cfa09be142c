// Package rules provides the deterministic compliance rule engine.
package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jarvish/compliance-engine/internal/domain"
	"github.com/jarvish/compliance-engine/pkg/normalize"
	"go.uber.org/zap"
)

// Investment-related trigger terms. When content mentions any of
// these, a risk disclaimer becomes mandatory.
var investmentTerms = []string{
	"invest", "mutual fund", "sip", "equity", "stock", "portfolio",
	"returns", "elss", "निवेश", "म्यूचुअल फंड", "गुंतवणूक",
}

// Disclaimer phrases accepted as satisfying the market-risk
// requirement. A bare "risk" is not enough: "zero risk" must not
// count as a disclaimer.
var disclaimerPhrases = []string{
	"market risk", "subject to market risks", "read all scheme",
	"scheme related documents", "बाजार जोखिम", "बाजार जोखीम",
}

// euinPattern matches an advisor EUIN or ARN identity marker.
var euinPattern = regexp.MustCompile(`\b(?:E\d{6}|ARN-\d{3,6})\b`)

const minContentLength = 20
const maxEmojiCount = 3

// Engine runs the ordered rule set plus contextual structure checks.
// Evaluate is a pure function of its inputs: no network, no
// randomness, no hidden state.
type Engine struct {
	rules  []*Rule
	logger *zap.Logger
}

// NewEngine creates a rule engine over the given rule set.
func NewEngine(rules []*Rule, logger *zap.Logger) *Engine {
	return &Engine{
		rules:  rules,
		logger: logger.Named("rule_engine"),
	}
}

// Evaluate applies every applicable rule and contextual check to the
// content and returns all matches. Passed is false when any violation
// is high or critical severity; low and medium findings propagate to
// aggregation without failing the stage.
func (e *Engine) Evaluate(content string, lang domain.Language, contentType domain.ContentType) domain.RuleResult {
	var violations []domain.Violation

	for _, rule := range e.rules {
		if !rule.AppliesTo(lang) {
			continue
		}
		for _, span := range rule.Match(content) {
			span := span
			e.logger.Debug("rule matched",
				zap.String("rule", rule.Code),
				zap.String("severity", string(rule.Severity)),
				zap.Int("offset", span.Start),
			)
			violations = append(violations, domain.Violation{
				Rule:        rule.Code,
				Category:    rule.Category,
				Severity:    rule.Severity,
				Description: rule.Description,
				Suggestion:  rule.Suggestion,
				Span:        &span,
				Stage:       1,
			})
		}
	}

	violations = append(violations, e.disclaimerChecks(content)...)
	violations = append(violations, e.structureChecks(content, lang, contentType)...)

	passed := true
	for _, v := range violations {
		if v.Severity == domain.SeverityHigh || v.Severity == domain.SeverityCritical {
			passed = false
			break
		}
	}

	return domain.RuleResult{Passed: passed, Violations: violations}
}

// disclaimerChecks enforces the mandatory risk-disclosure phrase on
// investment content.
func (e *Engine) disclaimerChecks(content string) []domain.Violation {
	lower := strings.ToLower(content)

	mentionsInvestment := false
	for _, term := range investmentTerms {
		if strings.Contains(lower, term) {
			mentionsInvestment = true
			break
		}
	}
	if !mentionsInvestment {
		return nil
	}

	for _, phrase := range disclaimerPhrases {
		if strings.Contains(lower, phrase) {
			return nil
		}
	}

	return []domain.Violation{{
		Rule:        "DISC-001",
		Category:    "missing_disclaimer",
		Severity:    domain.SeverityHigh,
		Description: "Investment content is missing the mandatory market-risk disclaimer",
		Suggestion:  `Add "Mutual fund investments are subject to market risks. Please read all scheme related documents carefully."`,
		Stage:       1,
	}}
}

// structureChecks covers channel length limits, identity markers,
// emoji ceilings and language consistency.
func (e *Engine) structureChecks(content string, lang domain.Language, contentType domain.ContentType) []domain.Violation {
	var violations []domain.Violation

	if maxLen := contentType.MaxContentLength(); len(content) > maxLen {
		violations = append(violations, domain.Violation{
			Rule:        "STRUCT-001",
			Category:    "content_length",
			Severity:    domain.SeverityLow,
			Description: fmt.Sprintf("Content exceeds the %d character limit for %s", maxLen, contentType),
			Suggestion:  fmt.Sprintf("Shorten content to under %d characters", maxLen),
			Stage:       1,
		})
	}

	if len(strings.TrimSpace(content)) < minContentLength {
		violations = append(violations, domain.Violation{
			Rule:        "STRUCT-002",
			Category:    "content_length",
			Severity:    domain.SeverityLow,
			Description: "Content is too short to be meaningful advisory material",
			Suggestion:  "Expand content with more detail",
			Stage:       1,
		})
	}

	if count := normalize.CountEmojis(content); count > maxEmojiCount {
		violations = append(violations, domain.Violation{
			Rule:        "STRUCT-003",
			Category:    "emoji_usage",
			Severity:    domain.SeverityLow,
			Description: fmt.Sprintf("Excessive emoji usage (%d found, max %d allowed)", count, maxEmojiCount),
			Suggestion:  "Reduce emoji usage for a professional appearance",
			Stage:       1,
		})
	}

	if !euinPattern.MatchString(content) {
		violations = append(violations, domain.Violation{
			Rule:        "IDENT-001",
			Category:    "advisor_identity",
			Severity:    domain.SeverityMedium,
			Description: "Content is missing the advisor identity marker (EUIN or ARN)",
			Suggestion:  "Include your EUIN (e.g. E123456) in the content",
			Stage:       1,
		})
	}

	if lang == domain.LanguageHindi || lang == domain.LanguageMarathi {
		if normalize.DevanagariRatio(content) < 0.3 {
			violations = append(violations, domain.Violation{
				Rule:        "LANG-001",
				Category:    "language_consistency",
				Severity:    domain.SeverityMedium,
				Description: fmt.Sprintf("Insufficient Devanagari text for %s language selection", lang),
				Suggestion:  "Increase native-language text or switch the language to English",
				Stage:       1,
			})
		}
	}

	return violations
}
