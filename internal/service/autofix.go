package service

import (
	"context"

	"github.com/jarvish/compliance-engine/internal/domain"
	"go.uber.org/zap"
)

// AutoFix attempts a single model-driven rewrite of non-compliant
// content and re-runs the full pipeline on the rewritten text. It is
// best effort: rewrite failures, unfixable content and rewrites that
// still fail the re-check all surface as WasFixed=false, never as an
// error. Only input validation can fail hard.
//
// One attempt only. If the rewrite does not pass the re-check the
// content goes back to the advisor for manual revision.
func (c *Checker) AutoFix(ctx context.Context, content string, language domain.Language) (*domain.AutoFixResult, error) {
	req := domain.ComplianceRequest{
		Content:     content,
		Language:    language,
		ContentType: domain.ContentTypeWhatsApp,
	}

	current, err := c.Check(ctx, req, CheckOptions{})
	if err != nil {
		return nil, err
	}

	if current.IsCompliant {
		// Nothing to fix.
		return &domain.AutoFixResult{WasFixed: false, Result: current}, nil
	}

	if !c.fixable(current) {
		c.logger.Info("content not fixable",
			zap.Int("risk_score", current.RiskScore),
			zap.String("risk_level", string(current.RiskLevel)),
		)
		c.metrics.ObserveAutoFix("not_fixable")
		return &domain.AutoFixResult{WasFixed: false, Result: current}, nil
	}

	rewriteCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.config.ModelTimeout)
	defer cancel()

	rewritten, err := c.modelClient.Rewrite(rewriteCtx, content, language, current.Issues)
	if err != nil {
		c.logger.Warn("rewrite failed", zap.Error(err))
		c.metrics.ObserveAutoFix("rewrite_failed")
		return &domain.AutoFixResult{WasFixed: false, Result: current}, nil
	}
	if rewritten == "" || rewritten == content {
		c.metrics.ObserveAutoFix("rewrite_failed")
		return &domain.AutoFixResult{WasFixed: false, Result: current}, nil
	}

	// Re-run the whole funnel on the rewritten text. SkipCache so the
	// verdict reflects this exact rewrite, not a stale entry.
	recheck, err := c.Check(ctx, domain.ComplianceRequest{
		Content:     rewritten,
		Language:    language,
		ContentType: req.ContentType,
	}, CheckOptions{SkipCache: true})
	if err != nil {
		c.logger.Warn("rewritten content failed validation", zap.Error(err))
		c.metrics.ObserveAutoFix("recheck_failed")
		return &domain.AutoFixResult{WasFixed: false, Result: current}, nil
	}

	if !recheck.IsCompliant {
		c.metrics.ObserveAutoFix("still_noncompliant")
		return &domain.AutoFixResult{WasFixed: false, Result: recheck}, nil
	}

	c.metrics.ObserveAutoFix("fixed")
	return &domain.AutoFixResult{
		WasFixed:     true,
		FixedContent: rewritten,
		Result:       recheck,
	}, nil
}

// fixable reports whether a rewrite is worth attempting. Critical
// violations and very high risk scores need human review, not
// automated rephrasing.
func (c *Checker) fixable(result *domain.ComplianceResult) bool {
	if result.RiskScore >= c.config.FixableCeiling {
		return false
	}
	for _, issue := range result.Issues {
		if issue.Severity == domain.SeverityCritical {
			return false
		}
	}
	return true
}
