// Package service provides unit tests for the evaluation pipeline.
package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jarvish/compliance-engine/internal/cache"
	"github.com/jarvish/compliance-engine/internal/domain"
	"github.com/jarvish/compliance-engine/internal/metrics"
	"github.com/jarvish/compliance-engine/internal/rules"
	"github.com/jarvish/compliance-engine/internal/score"
	"github.com/jarvish/compliance-engine/pkg/normalize"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubClient is a controllable model client that counts invocations.
type stubClient struct {
	evalCalls    atomic.Int32
	rewriteCalls atomic.Int32

	findings   []domain.Violation
	evalErr    error
	rewritten  string
	rewriteErr error
}

func (s *stubClient) EvaluateCompliance(ctx context.Context, content string, lang domain.Language, contentType domain.ContentType) (*domain.SemanticResult, error) {
	s.evalCalls.Add(1)
	if s.evalErr != nil {
		return nil, s.evalErr
	}
	findings := make([]domain.Violation, len(s.findings))
	copy(findings, s.findings)
	return &domain.SemanticResult{Findings: findings, ModelLatencyMs: 1}, nil
}

func (s *stubClient) Rewrite(ctx context.Context, content string, lang domain.Language, issues []domain.Violation) (string, error) {
	s.rewriteCalls.Add(1)
	if s.rewriteErr != nil {
		return "", s.rewriteErr
	}
	return s.rewritten, nil
}

func (s *stubClient) HealthCheck(ctx context.Context) error {
	return nil
}

func newTestChecker(client *stubClient) *Checker {
	logger := zap.NewNop()
	return NewChecker(
		client,
		rules.NewEngine(rules.DefaultRules(), logger),
		score.NewAggregator(30, logger),
		cache.NewLayer(cache.NewMemoryStore(), time.Minute, logger),
		normalize.New(4096),
		metrics.New(prometheus.NewRegistry()),
		CheckerConfig{
			MinConfidence:  0.5,
			FixableCeiling: 70,
			ModelTimeout:   5 * time.Second,
		},
		logger,
	)
}

func englishRequest(content string) domain.ComplianceRequest {
	return domain.ComplianceRequest{
		Content:     content,
		Language:    domain.LanguageEnglish,
		ContentType: domain.ContentTypeWhatsApp,
		AdvisorID:   "advisor-1",
	}
}

const compliantContent = "Mutual fund investments are subject to market risks. Read all scheme related documents carefully. E123456"

func TestChecker_ValidationErrors(t *testing.T) {
	checker := newTestChecker(&stubClient{})

	tests := []struct {
		name    string
		req     domain.ComplianceRequest
		wantErr error
	}{
		{
			name:    "empty content",
			req:     englishRequest("   "),
			wantErr: domain.ErrEmptyContent,
		},
		{
			name:    "content too long",
			req:     englishRequest(string(make([]byte, 5000))),
			wantErr: domain.ErrContentTooLong,
		},
		{
			name: "invalid language",
			req: domain.ComplianceRequest{
				Content:     compliantContent,
				Language:    "fr",
				ContentType: domain.ContentTypeWhatsApp,
			},
			wantErr: domain.ErrInvalidLanguage,
		},
		{
			name: "invalid content type",
			req: domain.ComplianceRequest{
				Content:     compliantContent,
				Language:    domain.LanguageEnglish,
				ContentType: "carrier_pigeon",
			},
			wantErr: domain.ErrInvalidContentType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := checker.Check(context.Background(), tt.req, CheckOptions{})
			require.ErrorIs(t, err, tt.wantErr)
			assert.True(t, domain.IsValidation(err), "validation failures must be recognizable")
		})
	}
}

func TestChecker_CompliantContent(t *testing.T) {
	client := &stubClient{}
	checker := newTestChecker(client)

	result, err := checker.Check(context.Background(), englishRequest(compliantContent), CheckOptions{})
	require.NoError(t, err)

	assert.True(t, result.IsCompliant)
	assert.Zero(t, result.RiskScore)
	assert.Equal(t, 100, result.Score)
	assert.Equal(t, domain.RiskLevelLow, result.RiskLevel)
	assert.Equal(t, domain.StagesCompleted{Rules: true, AI: true, Final: true}, result.StagesCompleted)
	assert.EqualValues(t, 1, client.evalCalls.Load())
}

func TestChecker_CriticalViolationSkipsModel(t *testing.T) {
	client := &stubClient{}
	checker := newTestChecker(client)

	result, err := checker.Check(context.Background(), englishRequest("Invest now and get guaranteed 15% returns with zero risk!"), CheckOptions{})
	require.NoError(t, err)

	assert.False(t, result.IsCompliant)
	assert.Equal(t, 100, result.RiskScore)
	assert.Equal(t, domain.RiskLevelCritical, result.RiskLevel)
	assert.Equal(t, domain.StagesCompleted{Rules: true, AI: false, Final: true}, result.StagesCompleted)
	assert.Zero(t, client.evalCalls.Load(), "a critical rule violation must not spend model quota")
}

func TestChecker_SecondCallServedFromCache(t *testing.T) {
	client := &stubClient{}
	checker := newTestChecker(client)

	first, err := checker.Check(context.Background(), englishRequest(compliantContent), CheckOptions{})
	require.NoError(t, err)
	assert.False(t, first.Cached)

	// Same content with different incidental whitespace.
	second, err := checker.Check(context.Background(), englishRequest("Mutual fund investments are subject to market risks.  Read all scheme related documents carefully.  E123456"), CheckOptions{})
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.RiskScore, second.RiskScore)
	assert.EqualValues(t, 1, client.evalCalls.Load(), "cache hit must not invoke the model")
}

func TestChecker_SkipCacheForcesFreshEvaluation(t *testing.T) {
	client := &stubClient{}
	checker := newTestChecker(client)

	_, err := checker.Check(context.Background(), englishRequest(compliantContent), CheckOptions{})
	require.NoError(t, err)

	result, err := checker.Check(context.Background(), englishRequest(compliantContent), CheckOptions{SkipCache: true})
	require.NoError(t, err)
	assert.False(t, result.Cached)
	assert.EqualValues(t, 2, client.evalCalls.Load())
}

func TestChecker_ModelFailureDegrades(t *testing.T) {
	client := &stubClient{evalErr: domain.WrapError("model", domain.ErrModelUnavailable, true)}
	checker := newTestChecker(client)

	result, err := checker.Check(context.Background(), englishRequest(compliantContent), CheckOptions{})
	require.NoError(t, err, "a model outage must not fail the evaluation")

	assert.Equal(t, domain.StagesCompleted{Rules: true, AI: false, Final: true}, result.StagesCompleted)
	assert.True(t, result.IsCompliant, "rule findings alone decide when the model is down")
}

func TestChecker_MinConfidenceFilter(t *testing.T) {
	client := &stubClient{
		findings: []domain.Violation{
			{
				Rule:        "implied_guarantee",
				Category:    "implied_guarantee",
				Severity:    domain.SeverityHigh,
				Description: "Implies certainty",
				Confidence:  0.9,
				Stage:       2,
			},
			{
				Rule:        "weak_hunch",
				Category:    "weak_hunch",
				Severity:    domain.SeverityMedium,
				Description: "Barely a finding",
				Confidence:  0.3,
				Stage:       2,
			},
		},
	}
	checker := newTestChecker(client)

	result, err := checker.Check(context.Background(), englishRequest(compliantContent), CheckOptions{})
	require.NoError(t, err)

	require.Len(t, result.Issues, 1)
	assert.Equal(t, "implied_guarantee", result.Issues[0].Rule)
	// 25 * 0.9 = 22.5, rounded to 23.
	assert.Equal(t, 23, result.RiskScore)
	assert.True(t, result.IsCompliant)
}

func TestChecker_AuditRecord(t *testing.T) {
	checker := newTestChecker(&stubClient{})

	result, err := checker.Check(context.Background(), englishRequest(compliantContent), CheckOptions{})
	require.NoError(t, err)

	assert.NotEmpty(t, result.Audit.ID)
	assert.Len(t, result.Audit.ContentHash, 64)
	assert.Equal(t, "advisor-1", result.Audit.AdvisorID)
}

func TestChecker_HistoricalFramingIsCompliant(t *testing.T) {
	checker := newTestChecker(&stubClient{})

	content := "Historically, diversified equity investments have shown strong long-term growth potential, though all investments carry market risk."
	result, err := checker.Check(context.Background(), englishRequest(content), CheckOptions{})
	require.NoError(t, err)

	assert.True(t, result.IsCompliant)
	assert.Less(t, result.RiskScore, 30)
}

const fixableContent = "Our equity plan has zero risk for long-term investors, subject to market risks."

func TestChecker_AutoFix(t *testing.T) {
	client := &stubClient{
		rewritten: "Our equity plan targets managed risk for long-term investors, subject to market risks. E123456",
	}
	checker := newTestChecker(client)

	result, err := checker.AutoFix(context.Background(), fixableContent, domain.LanguageEnglish)
	require.NoError(t, err)

	assert.True(t, result.WasFixed)
	assert.Equal(t, client.rewritten, result.FixedContent)
	require.NotNil(t, result.Result)
	assert.True(t, result.Result.IsCompliant)
	assert.EqualValues(t, 1, client.rewriteCalls.Load())
}

func TestChecker_AutoFixRefusesCritical(t *testing.T) {
	client := &stubClient{rewritten: "anything"}
	checker := newTestChecker(client)

	result, err := checker.AutoFix(context.Background(), "Invest now for guaranteed returns!", domain.LanguageEnglish)
	require.NoError(t, err)

	assert.False(t, result.WasFixed)
	assert.Empty(t, result.FixedContent)
	assert.Zero(t, client.rewriteCalls.Load(), "critical violations must not be auto-fixed")
}

func TestChecker_AutoFixRewriteFailure(t *testing.T) {
	client := &stubClient{rewriteErr: errors.New("model exploded")}
	checker := newTestChecker(client)

	result, err := checker.AutoFix(context.Background(), fixableContent, domain.LanguageEnglish)
	require.NoError(t, err, "rewrite failures surface as WasFixed=false, never as errors")

	assert.False(t, result.WasFixed)
	require.NotNil(t, result.Result)
	assert.False(t, result.Result.IsCompliant)
}

func TestChecker_AutoFixStillNonCompliant(t *testing.T) {
	client := &stubClient{
		// The rewrite keeps the absolute risk claim.
		rewritten: "Our equity plan still has zero risk for investors, subject to market risks.",
	}
	checker := newTestChecker(client)

	result, err := checker.AutoFix(context.Background(), fixableContent, domain.LanguageEnglish)
	require.NoError(t, err)

	assert.False(t, result.WasFixed)
	assert.Empty(t, result.FixedContent)
}

func TestChecker_AutoFixAlreadyCompliant(t *testing.T) {
	client := &stubClient{rewritten: "anything"}
	checker := newTestChecker(client)

	result, err := checker.AutoFix(context.Background(), compliantContent, domain.LanguageEnglish)
	require.NoError(t, err)

	assert.False(t, result.WasFixed)
	assert.Zero(t, client.rewriteCalls.Load())
	require.NotNil(t, result.Result)
	assert.True(t, result.Result.IsCompliant)
}
