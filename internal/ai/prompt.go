// Package ai provides the semantic evaluator client interface and
// implementations.
package ai

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/jarvish/compliance-engine/internal/domain"
)

// DefaultPromptBuilder implements PromptBuilder with templated prompts.
type DefaultPromptBuilder struct {
	complianceTmpl *template.Template
	rewriteTmpl    *template.Template
}

// complianceSystemText defines the evaluator's role. The lexical rule
// engine already catches literal prohibited phrases; the model is
// pointed at what rules miss.
const complianceSystemText = `You are a compliance reviewer for content written by Indian financial advisors.

Flag nuanced violations that literal keyword matching misses:
1. Implied or indirect guarantees of returns ("you won't regret it", "watch your money grow")
2. Misleading framing or selective performance disclosure
3. Inappropriately promotional or pressuring tone
4. Advice presented as certainty rather than opinion
5. Missing balance between upside claims and risk language

The content is written in %s for the %s channel. Judge idiom and tone in that language and channel.

CRITICAL: Respond with ONLY valid JSON matching the exact schema provided. No markdown, no explanations, just the JSON object.`

// complianceUserTemplate presents the content and the finding schema.
const complianceUserTemplate = `Analyze this financial advisory content for nuanced compliance issues:

Content: "{{.Content}}"
Channel: {{.ContentType}}
Language: {{.Language}}

Return a JSON object:
{
  "findings": [
    {
      "rule": "string - short identifier (e.g. 'implied_guarantee')",
      "severity": "low|medium|high|critical",
      "description": "string - what is wrong and why",
      "suggestion": "string - how to fix it while preserving intent",
      "confidence": 0.0-1.0
    }
  ]
}

Return {"findings": []} when the content is clean. Respond with ONLY the JSON object.`

// rewriteSystemText instructs the auto-fix rewrite pass.
const rewriteSystemText = `You rewrite non-compliant financial advisory content so it satisfies Indian advisory regulations.

Rules:
- Remove or soften every flagged phrase
- Preserve the advisor's intent and core message
- Keep the rewritten text in %s
- Include a market-risk disclaimer when investments are discussed
- Never add guarantees, specific return figures, or urgency language

CRITICAL: Respond with ONLY valid JSON: {"fixed_content": "..."}`

// rewriteUserTemplate presents the content and its violations.
const rewriteUserTemplate = `Rewrite this content to resolve the listed violations:

Content: "{{.Content}}"

Violations:
{{range .Issues}}- [{{.Severity}}] {{.Description}}{{if .Suggestion}} ({{.Suggestion}}){{end}}
{{end}}
Respond with ONLY the JSON object {"fixed_content": "..."}.`

// NewDefaultPromptBuilder creates a prompt builder with the built-in
// templates.
func NewDefaultPromptBuilder() (*DefaultPromptBuilder, error) {
	complianceTmpl, err := template.New("compliance_user").Parse(complianceUserTemplate)
	if err != nil {
		return nil, err
	}
	rewriteTmpl, err := template.New("rewrite_user").Parse(rewriteUserTemplate)
	if err != nil {
		return nil, err
	}
	return &DefaultPromptBuilder{
		complianceTmpl: complianceTmpl,
		rewriteTmpl:    rewriteTmpl,
	}, nil
}

// BuildComplianceSystemPrompt returns the evaluation system prompt.
func (p *DefaultPromptBuilder) BuildComplianceSystemPrompt(lang domain.Language, contentType domain.ContentType) string {
	return fmt.Sprintf(complianceSystemText, languageName(lang), contentType)
}

// BuildComplianceUserPrompt wraps the content for evaluation.
func (p *DefaultPromptBuilder) BuildComplianceUserPrompt(content string, lang domain.Language, contentType domain.ContentType) string {
	var buf bytes.Buffer
	data := struct {
		Content     string
		Language    domain.Language
		ContentType domain.ContentType
	}{content, lang, contentType}

	if err := p.complianceTmpl.Execute(&buf, data); err != nil {
		// Fallback to a plain format if the template fails
		return "Analyze this content for compliance issues and return JSON:\n\n" + content
	}
	return buf.String()
}

// BuildRewriteSystemPrompt returns the rewrite system prompt.
func (p *DefaultPromptBuilder) BuildRewriteSystemPrompt(lang domain.Language) string {
	return fmt.Sprintf(rewriteSystemText, languageName(lang))
}

// BuildRewriteUserPrompt wraps the content and violations for rewrite.
func (p *DefaultPromptBuilder) BuildRewriteUserPrompt(content string, issues []domain.Violation) string {
	var buf bytes.Buffer
	data := struct {
		Content string
		Issues  []domain.Violation
	}{content, issues}

	if err := p.rewriteTmpl.Execute(&buf, data); err != nil {
		var sb strings.Builder
		sb.WriteString("Rewrite this content to be compliant:\n\n")
		sb.WriteString(content)
		return sb.String()
	}
	return buf.String()
}

func languageName(lang domain.Language) string {
	switch lang {
	case domain.LanguageHindi:
		return "Hindi"
	case domain.LanguageMarathi:
		return "Marathi"
	default:
		return "English"
	}
}
