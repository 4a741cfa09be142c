// Package ai provides the semantic evaluator client interface and
// implementations.
package ai

import (
	"context"
	"regexp"
	"strings"

	"github.com/jarvish/compliance-engine/internal/domain"
	"go.uber.org/zap"
)

// MockClient implements the Client interface for mock mode and tests.
// Its behaviour is deterministic: a small lexical sweep stands in for
// the model's semantic judgement, and the rewrite applies a fixed
// substitution table.
type MockClient struct {
	logger *zap.Logger
}

// NewMockClient creates a new mock model client.
func NewMockClient(logger *zap.Logger) *MockClient {
	return &MockClient{
		logger: logger.Named("mock_model_client"),
	}
}

// Phrases the mock treats as implied guarantees. A stand-in for the
// judgement a real model applies.
var mockImpliedGuarantees = []string{
	"you won't regret",
	"watch your money grow",
	"wealth is waiting",
	"secure your future today",
}

var mockBalanceUpside = regexp.MustCompile(`(?i)growth|profit|gain|returns?`)
var mockBalanceRisk = regexp.MustCompile(`(?i)risk|volatil|loss|caution`)

// EvaluateCompliance returns deterministic findings for the content.
func (c *MockClient) EvaluateCompliance(ctx context.Context, content string, lang domain.Language, contentType domain.ContentType) (*domain.SemanticResult, error) {
	c.logger.Debug("mock semantic evaluation", zap.Int("content_length", len(content)))

	var findings []domain.Violation
	lower := strings.ToLower(content)

	for _, phrase := range mockImpliedGuarantees {
		if idx := strings.Index(lower, phrase); idx != -1 {
			findings = append(findings, domain.Violation{
				Rule:        "implied_guarantee",
				Category:    "implied_guarantee",
				Severity:    domain.SeverityHigh,
				Description: "Phrase implies a guaranteed outcome without stating one literally",
				Suggestion:  "Frame outcomes as possibilities, not certainties",
				Span:        &domain.Span{Start: idx, End: idx + len(phrase)},
				Confidence:  0.9,
				Stage:       2,
			})
		}
	}

	if mockBalanceUpside.MatchString(content) && !mockBalanceRisk.MatchString(content) {
		findings = append(findings, domain.Violation{
			Rule:        "unbalanced_framing",
			Category:    "unbalanced_framing",
			Severity:    domain.SeverityMedium,
			Description: "Content presents upside without any balancing risk language",
			Suggestion:  "Mention that outcomes depend on market conditions",
			Confidence:  0.7,
			Stage:       2,
		})
	}

	return &domain.SemanticResult{Findings: findings, ModelLatencyMs: 0}, nil
}

// Substitution table for the mock rewrite, mirroring the remediation
// hints the rule set hands out.
var mockRewrites = []struct {
	pattern     *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`(?i)guaranteed\s+returns`), "potential returns"},
	{regexp.MustCompile(`(?i)assured\s+profits?`), "possible profit"},
	{regexp.MustCompile(`(?i)risk[\s-]free`), "lower-risk"},
	{regexp.MustCompile(`(?i)\b(?:no|zero)\s+risk\b`), "managed risk"},
	{regexp.MustCompile(`(?i)definitely`), "potentially"},
	{regexp.MustCompile(`(?i)best\s+performing`), "well-performing"},
	{regexp.MustCompile(`(?i)highest\s+growth`), "strong growth"},
	{regexp.MustCompile(`(?i)limited\s+time\s+offer`), "current opportunity"},
	{regexp.MustCompile(`(?i)act\s+now`), "consider this"},
	{regexp.MustCompile(`(?i)must[\s-]have`), "worth considering"},
}

// Rewrite applies the substitution table and appends a market-risk
// disclaimer when one is missing.
func (c *MockClient) Rewrite(ctx context.Context, content string, lang domain.Language, issues []domain.Violation) (string, error) {
	fixed := content
	for _, r := range mockRewrites {
		fixed = r.pattern.ReplaceAllString(fixed, r.replacement)
	}

	if !strings.Contains(strings.ToLower(fixed), "market risk") {
		fixed += " Mutual fund investments are subject to market risks."
	}

	c.logger.Debug("mock rewrite", zap.Bool("changed", fixed != content))
	return fixed, nil
}

// HealthCheck always returns success for the mock client.
func (c *MockClient) HealthCheck(ctx context.Context) error {
	return nil
}
