// Package ai provides the semantic evaluator client interface and
// implementations.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jarvish/compliance-engine/internal/config"
	"github.com/jarvish/compliance-engine/internal/domain"
	"go.uber.org/zap"
)

// OpenAIClient implements the Client interface using an
// OpenAI-compatible chat-completions API.
type OpenAIClient struct {
	config     *config.ModelConfig
	httpClient *http.Client
	prompter   PromptBuilder
	validator  ResponseValidator
	logger     *zap.Logger
}

// OpenAI API request/response structures
type chatRequest struct {
	Model          string              `json:"model"`
	Messages       []chatMessage       `json:"messages"`
	MaxTokens      int                 `json:"max_tokens"`
	Temperature    float64             `json:"temperature"`
	ResponseFormat *chatResponseFormat `json:"response_format,omitempty"`
}

type chatResponseFormat struct {
	Type string `json:"type"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// semanticPayload is the expected shape of an evaluation response.
// The model output is not trusted: every finding passes through the
// validator before it is kept.
type semanticPayload struct {
	Findings []semanticFinding `json:"findings"`
	// Confidence is an optional response-level confidence, used as a
	// fallback when a finding omits its own.
	Confidence float64 `json:"confidence,omitempty"`
}

type semanticFinding struct {
	Rule        string       `json:"rule"`
	Severity    string       `json:"severity"`
	Description string       `json:"description"`
	Suggestion  string       `json:"suggestion,omitempty"`
	Confidence  float64      `json:"confidence,omitempty"`
	Span        *domain.Span `json:"span,omitempty"`
}

// rewritePayload is the expected shape of a rewrite response.
type rewritePayload struct {
	FixedContent string `json:"fixed_content"`
}

// NewOpenAIClient creates a new OpenAI-compatible model client.
func NewOpenAIClient(cfg *config.ModelConfig, prompter PromptBuilder, validator ResponseValidator, logger *zap.Logger) *OpenAIClient {
	return &OpenAIClient{
		config: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		prompter:  prompter,
		validator: validator,
		logger:    logger.Named("model_client"),
	}
}

// EvaluateCompliance sends the content to the model and returns the
// parsed semantic findings.
func (c *OpenAIClient) EvaluateCompliance(ctx context.Context, content string, lang domain.Language, contentType domain.ContentType) (*domain.SemanticResult, error) {
	startTime := time.Now()
	c.logger.Debug("starting semantic evaluation",
		zap.Int("content_length", len(content)),
		zap.String("language", string(lang)),
		zap.String("content_type", string(contentType)),
	)

	reqBody := chatRequest{
		Model: c.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: c.prompter.BuildComplianceSystemPrompt(lang, contentType)},
			{Role: "user", Content: c.prompter.BuildComplianceUserPrompt(content, lang, contentType)},
		},
		MaxTokens:      c.config.MaxTokens,
		Temperature:    0.3, // Low temperature for reproducible findings
		ResponseFormat: &chatResponseFormat{Type: "json_object"},
	}

	raw, err := c.complete(ctx, reqBody)
	if err != nil {
		return nil, err
	}

	findings, err := c.parseFindings(raw)
	if err != nil {
		return nil, err
	}

	latency := time.Since(startTime)
	c.logger.Debug("semantic evaluation completed",
		zap.Duration("duration", latency),
		zap.Int("findings", len(findings)),
	)

	return &domain.SemanticResult{
		Findings:       findings,
		ModelLatencyMs: latency.Milliseconds(),
	}, nil
}

// Rewrite asks the model for a compliant rewrite of the content.
func (c *OpenAIClient) Rewrite(ctx context.Context, content string, lang domain.Language, issues []domain.Violation) (string, error) {
	reqBody := chatRequest{
		Model: c.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: c.prompter.BuildRewriteSystemPrompt(lang)},
			{Role: "user", Content: c.prompter.BuildRewriteUserPrompt(content, issues)},
		},
		MaxTokens:      c.config.MaxTokens,
		Temperature:    0.3,
		ResponseFormat: &chatResponseFormat{Type: "json_object"},
	}

	raw, err := c.complete(ctx, reqBody)
	if err != nil {
		return "", err
	}

	return c.parseRewrite(raw)
}

// complete executes the chat request with exponential backoff,
// retrying only on retryable failures.
func (c *OpenAIClient) complete(ctx context.Context, reqBody chatRequest) (string, error) {
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", domain.WrapError("marshal_request", err, false)
	}

	url := fmt.Sprintf("%s/chat/completions", strings.TrimSuffix(c.config.BaseURL, "/"))

	var content string
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt*attempt) * time.Second
			c.logger.Debug("retrying model request",
				zap.Int("attempt", attempt),
				zap.Duration("backoff", backoff),
			)
			select {
			case <-ctx.Done():
				return "", domain.WrapError("context_cancelled", ctx.Err(), false)
			case <-time.After(backoff):
			}
		}

		content, lastErr = c.executeRequest(ctx, url, jsonBody)
		if lastErr == nil {
			break
		}

		if !domain.IsRetryable(lastErr) {
			break
		}
	}

	if lastErr != nil {
		return "", lastErr
	}
	return content, nil
}

// executeRequest performs a single HTTP request to the model endpoint.
func (c *OpenAIClient) executeRequest(ctx context.Context, url string, jsonBody []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return "", domain.WrapError("create_request", err, false)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.config.APIKey))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", domain.WrapError("model_timeout", domain.ErrModelTimeout, true)
		}
		return "", domain.WrapError("http_request", err, true)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", domain.WrapError("read_response", err, true)
	}

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusTooManyRequests {
			return "", domain.WrapError("rate_limit", domain.ErrRateLimited, true)
		}
		if resp.StatusCode >= 500 {
			return "", domain.WrapError("model_unavailable", domain.ErrModelUnavailable, true)
		}
		return "", domain.WrapError("model_error",
			fmt.Errorf("model API returned status %d: %s", resp.StatusCode, truncate(string(body), 200)), false)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", domain.WrapError("parse_response", err, false)
	}

	if chatResp.Error != nil {
		return "", domain.WrapError("model_api_error",
			fmt.Errorf("%s: %s", chatResp.Error.Type, chatResp.Error.Message), false)
	}

	if len(chatResp.Choices) == 0 {
		return "", domain.WrapError("empty_response", domain.ErrInvalidModelResponse, false)
	}

	return chatResp.Choices[0].Message.Content, nil
}

// parseFindings extracts findings from the model response content.
// Individually malformed findings are dropped with a warning; an
// unparseable response is an error the pipeline degrades on.
func (c *OpenAIClient) parseFindings(content string) ([]domain.Violation, error) {
	jsonContent := extractJSON(content)
	if jsonContent == "" {
		c.logger.Warn("could not extract JSON from model response",
			zap.String("content_preview", truncate(content, 200)),
		)
		return nil, domain.WrapError("extract_json", domain.ErrInvalidModelResponse, false)
	}

	var payload semanticPayload
	if err := json.Unmarshal([]byte(jsonContent), &payload); err != nil {
		c.logger.Warn("failed to unmarshal model response",
			zap.Error(err),
			zap.String("json_content", truncate(jsonContent, 200)),
		)
		return nil, domain.WrapError("unmarshal_result", domain.ErrInvalidModelResponse, false)
	}

	findings := make([]domain.Violation, 0, len(payload.Findings))
	for i, f := range payload.Findings {
		confidence := f.Confidence
		if confidence == 0 {
			confidence = payload.Confidence
		}
		v := domain.Violation{
			Rule:        f.Rule,
			Category:    f.Rule,
			Severity:    domain.Severity(strings.ToLower(f.Severity)),
			Description: f.Description,
			Suggestion:  f.Suggestion,
			Span:        f.Span,
			Confidence:  confidence,
			Stage:       2,
		}
		if err := c.validator.ValidateFinding(&v); err != nil {
			c.logger.Warn("dropping malformed finding",
				zap.Int("index", i),
				zap.Error(err),
			)
			continue
		}
		findings = append(findings, v)
	}

	return findings, nil
}

// parseRewrite extracts the rewritten content from the response.
func (c *OpenAIClient) parseRewrite(content string) (string, error) {
	jsonContent := extractJSON(content)
	if jsonContent != "" {
		var payload rewritePayload
		if err := json.Unmarshal([]byte(jsonContent), &payload); err == nil && strings.TrimSpace(payload.FixedContent) != "" {
			return strings.TrimSpace(payload.FixedContent), nil
		}
	}

	// Some models reply with the bare rewritten text despite the
	// json_object instruction.
	plain := strings.TrimSpace(content)
	if plain != "" && !strings.HasPrefix(plain, "{") {
		return plain, nil
	}

	return "", domain.WrapError("parse_rewrite", domain.ErrInvalidModelResponse, false)
}

// HealthCheck verifies the model endpoint is reachable.
func (c *OpenAIClient) HealthCheck(ctx context.Context) error {
	url := fmt.Sprintf("%s/models", strings.TrimSuffix(c.config.BaseURL, "/"))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.config.APIKey))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.WrapError("health_check", domain.ErrModelUnavailable, true)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.WrapError("health_check", domain.ErrModelUnavailable, true)
	}

	return nil
}

// Helper functions

// extractJSON attempts to extract JSON from content that might include markdown.
func extractJSON(content string) string {
	// Try to parse the entire content as JSON first
	if isValidJSON(content) {
		return content
	}

	// Look for JSON within markdown code blocks
	start := -1
	end := -1

	for i, c := range content {
		if c == '{' {
			start = i
			break
		}
	}

	if start == -1 {
		return ""
	}

	// Find matching closing brace
	depth := 0
	for i := start; i < len(content); i++ {
		if content[i] == '{' {
			depth++
		} else if content[i] == '}' {
			depth--
			if depth == 0 {
				end = i + 1
				break
			}
		}
	}

	if end == -1 {
		return ""
	}

	extracted := content[start:end]
	if isValidJSON(extracted) {
		return extracted
	}

	return ""
}

func isValidJSON(s string) bool {
	var js json.RawMessage
	return json.Unmarshal([]byte(s), &js) == nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
