// Package ai provides the semantic evaluator client interface and
// implementations.
package ai

import (
	"context"

	"github.com/jarvish/compliance-engine/internal/domain"
)

// Client defines the interface for generative-model interactions.
// This interface allows for easy mocking and swapping of providers.
type Client interface {
	// EvaluateCompliance asks the model to flag nuanced compliance
	// issues the lexical rules cannot catch. The context should carry
	// timeout and cancellation signals.
	EvaluateCompliance(ctx context.Context, content string, lang domain.Language, contentType domain.ContentType) (*domain.SemanticResult, error)

	// Rewrite asks the model to remove flagged language while
	// preserving the content's intent.
	Rewrite(ctx context.Context, content string, lang domain.Language, issues []domain.Violation) (string, error)

	// HealthCheck verifies the model endpoint is reachable.
	HealthCheck(ctx context.Context) error
}

// PromptBuilder defines the interface for constructing model prompts.
type PromptBuilder interface {
	// BuildComplianceSystemPrompt returns the system prompt for
	// semantic evaluation, parameterized by language and content type.
	BuildComplianceSystemPrompt(lang domain.Language, contentType domain.ContentType) string

	// BuildComplianceUserPrompt wraps the content for evaluation.
	BuildComplianceUserPrompt(content string, lang domain.Language, contentType domain.ContentType) string

	// BuildRewriteSystemPrompt returns the system prompt for the
	// auto-fix rewrite pass.
	BuildRewriteSystemPrompt(lang domain.Language) string

	// BuildRewriteUserPrompt wraps the content and its violations for
	// the rewrite pass.
	BuildRewriteUserPrompt(content string, issues []domain.Violation) string
}

// ResponseValidator defines the interface for validating parsed model
// findings.
type ResponseValidator interface {
	// ValidateFinding checks one finding against the expected schema.
	ValidateFinding(v *domain.Violation) error
}
