// Package service contains the compliance evaluation pipeline.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jarvish/compliance-engine/internal/ai"
	"github.com/jarvish/compliance-engine/internal/cache"
	"github.com/jarvish/compliance-engine/internal/domain"
	"github.com/jarvish/compliance-engine/internal/metrics"
	"github.com/jarvish/compliance-engine/internal/rules"
	"github.com/jarvish/compliance-engine/internal/score"
	"github.com/jarvish/compliance-engine/pkg/normalize"
	"go.uber.org/zap"
)

// Checker orchestrates the three-stage evaluation funnel:
// cache lookup, rule engine, semantic evaluation, aggregation.
// Stages run strictly in order; Stage 2 is skipped when Stage 1
// finds a critical violation.
type Checker struct {
	modelClient ai.Client
	ruleEngine  *rules.Engine
	aggregator  *score.Aggregator
	cache       *cache.Layer
	normalizer  *normalize.Normalizer
	metrics     *metrics.Metrics
	config      CheckerConfig
	logger      *zap.Logger
}

// CheckerConfig contains pipeline policy settings.
type CheckerConfig struct {
	// MinConfidence discards semantic findings below this confidence.
	MinConfidence float64

	// FixableCeiling is the risk score at and above which auto-fix is
	// refused.
	FixableCeiling int

	// ModelTimeout bounds each semantic evaluation call.
	ModelTimeout time.Duration
}

// CheckOptions controls one Check invocation.
type CheckOptions struct {
	// SkipCache forces a fresh evaluation; the result is still cached.
	SkipCache bool

	// TTLSeconds overrides the default cache lifetime when positive.
	TTLSeconds int
}

// NewChecker creates a Checker with all dependencies.
func NewChecker(
	modelClient ai.Client,
	ruleEngine *rules.Engine,
	aggregator *score.Aggregator,
	cacheLayer *cache.Layer,
	normalizer *normalize.Normalizer,
	m *metrics.Metrics,
	config CheckerConfig,
	logger *zap.Logger,
) *Checker {
	return &Checker{
		modelClient: modelClient,
		ruleEngine:  ruleEngine,
		aggregator:  aggregator,
		cache:       cacheLayer,
		normalizer:  normalizer,
		metrics:     m,
		config:      config,
		logger:      logger.Named("checker"),
	}
}

// Check is the single synchronous entry point for compliance
// evaluation. Only input validation failures return an error; every
// downstream dependency failure degrades into the returned result.
func (c *Checker) Check(ctx context.Context, req domain.ComplianceRequest, opts CheckOptions) (*domain.ComplianceResult, error) {
	if err := c.validate(req); err != nil {
		return nil, err
	}

	fingerprint := cache.Fingerprint(req)
	cacheOpts := cache.Options{
		SkipCache: opts.SkipCache,
		TTL:       time.Duration(opts.TTLSeconds) * time.Second,
	}

	result, err := c.cache.GetOrCompute(ctx, fingerprint, cacheOpts, func(ctx context.Context, fp string) (*domain.ComplianceResult, error) {
		return c.evaluate(ctx, req, fp)
	})
	if err != nil {
		return nil, err
	}

	switch {
	case result.Cached:
		c.metrics.ObserveCacheLookup("hit")
	case opts.SkipCache:
		c.metrics.ObserveCacheLookup("bypass")
	default:
		c.metrics.ObserveCacheLookup("miss")
	}

	return result, nil
}

// validate rejects malformed input before any stage runs.
func (c *Checker) validate(req domain.ComplianceRequest) error {
	if c.normalizer.IsEmpty(req.Content) {
		return domain.ErrEmptyContent
	}
	if c.normalizer.IsTooLong(req.Content) {
		return fmt.Errorf("%w: %d bytes, max %d", domain.ErrContentTooLong, len(req.Content), c.normalizer.MaxLength())
	}
	if !req.Language.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidLanguage, req.Language)
	}
	if !req.ContentType.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidContentType, req.ContentType)
	}
	return nil
}

// evaluate runs the three stages for one cache miss.
func (c *Checker) evaluate(ctx context.Context, req domain.ComplianceRequest, fingerprint string) (*domain.ComplianceResult, error) {
	startTime := time.Now()
	content := c.normalizer.Normalize(req.Content)

	// Stage 1: deterministic rule engine. Always runs first; Stage 2
	// depends on its critical-violation outcome.
	ruleResult := c.ruleEngine.Evaluate(content, req.Language, req.ContentType)
	stages := domain.StagesCompleted{Rules: true}

	// Stage 2: semantic evaluation, unless a critical violation makes
	// it pointless. No model call can make a guaranteed-return claim
	// compliant.
	var semantic *domain.SemanticResult
	if ruleResult.HasCritical() {
		c.logger.Info("critical violation, skipping semantic evaluation",
			zap.String("fingerprint", fingerprint[:12]),
		)
		c.metrics.ObserveDegradation("ai", "early_reject")
	} else {
		semantic = c.runSemanticStage(ctx, content, req, fingerprint)
		stages.AI = semantic != nil
	}

	// Stage 3: aggregation and final decision.
	result := c.aggregator.Aggregate(ruleResult, semantic, stages, fingerprint, req.AdvisorID)
	result.ElapsedMs = time.Since(startTime).Milliseconds()

	c.metrics.ObserveEvaluation(result.IsCompliant, string(req.ContentType), result.RiskScore, time.Since(startTime).Seconds())

	c.logger.Info("evaluation completed",
		zap.String("fingerprint", fingerprint[:12]),
		zap.Int("risk_score", result.RiskScore),
		zap.Bool("compliant", result.IsCompliant),
		zap.Bool("semantic_ran", stages.AI),
		zap.Duration("duration", time.Since(startTime)),
	)

	return result, nil
}

// runSemanticStage calls the model with a bounded timeout and filters
// its findings. Returns nil when the stage degraded: a timeout,
// transport failure or unparseable response must never block the
// compliance gate.
//
// The model context is detached from the caller's cancellation: once
// the call is in flight it is allowed to finish so the result can be
// cached for the next identical request.
func (c *Checker) runSemanticStage(ctx context.Context, content string, req domain.ComplianceRequest, fingerprint string) *domain.SemanticResult {
	modelCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.config.ModelTimeout)
	defer cancel()

	semantic, err := c.modelClient.EvaluateCompliance(modelCtx, content, req.Language, req.ContentType)
	if err != nil {
		c.logger.Warn("semantic evaluation degraded",
			zap.Error(err),
			zap.String("fingerprint", fingerprint[:12]),
		)
		c.metrics.ObserveDegradation("ai", degradeReason(err))
		return nil
	}

	c.metrics.ObserveModelCall(float64(semantic.ModelLatencyMs) / 1000)

	// Low-confidence model chatter must not move the score.
	kept := semantic.Findings[:0]
	for _, f := range semantic.Findings {
		if f.Confidence >= c.config.MinConfidence {
			kept = append(kept, f)
		}
	}
	semantic.Findings = kept

	return semantic
}

func degradeReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrModelTimeout):
		return "timeout"
	case errors.Is(err, domain.ErrRateLimited):
		return "rate_limited"
	case domain.IsRetryable(err):
		return "unavailable"
	default:
		return "invalid_response"
	}
}

// HealthCheck verifies the model endpoint is reachable.
func (c *Checker) HealthCheck(ctx context.Context) error {
	return c.modelClient.HealthCheck(ctx)
}
