// Package score merges rule and semantic findings into the final
// compliance verdict. Aggregation is deterministic: identical inputs
// always produce the same risk score.
package score

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jarvish/compliance-engine/internal/domain"
	"go.uber.org/zap"
)

// DefaultWeights is the severity-to-penalty mapping. Values are
// monotonic in severity; semantic findings are additionally scaled by
// their confidence so low-certainty model output moves the score less.
var DefaultWeights = map[domain.Severity]int{
	domain.SeverityCritical: 40,
	domain.SeverityHigh:     25,
	domain.SeverityMedium:   10,
	domain.SeverityLow:      5,
}

// Aggregator computes the final ComplianceResult.
type Aggregator struct {
	weights       map[domain.Severity]int
	riskThreshold int
	logger        *zap.Logger
}

// NewAggregator creates an aggregator with the default weights.
// Content at or above riskThreshold is non-compliant: the boundary
// itself fails.
func NewAggregator(riskThreshold int, logger *zap.Logger) *Aggregator {
	return &Aggregator{
		weights:       DefaultWeights,
		riskThreshold: riskThreshold,
		logger:        logger.Named("aggregator"),
	}
}

// Aggregate merges Stage 1 and Stage 2 findings into a single result.
// semantic may be nil when Stage 2 was skipped or degraded.
func (a *Aggregator) Aggregate(
	ruleResult domain.RuleResult,
	semantic *domain.SemanticResult,
	stages domain.StagesCompleted,
	fingerprint string,
	advisorID string,
) *domain.ComplianceResult {
	candidates := make([]domain.Violation, 0, len(ruleResult.Violations))
	candidates = append(candidates, ruleResult.Violations...)
	if semantic != nil {
		candidates = append(candidates, semantic.Findings...)
	}

	issues := dedupe(candidates)

	var penalty float64
	for _, v := range issues {
		w := float64(a.weights[v.Severity])
		if v.Stage == 2 && v.Confidence > 0 {
			w *= v.Confidence
		}
		penalty += w
	}

	riskScore := int(math.Round(penalty))
	if riskScore > 100 {
		riskScore = 100
	}

	level := domain.RiskLevelFor(riskScore)
	stages.Final = true

	result := &domain.ComplianceResult{
		IsCompliant:     riskScore < a.riskThreshold,
		RiskScore:       riskScore,
		Score:           100 - riskScore,
		RiskLevel:       level,
		ColorCode:       level.ColorCode(),
		StagesCompleted: stages,
		Issues:          issues,
		Suggestions:     collectSuggestions(issues),
		Audit: domain.AuditRecord{
			ID:          uuid.NewString(),
			ContentHash: fingerprint,
			AdvisorID:   advisorID,
			Timestamp:   time.Now().UTC(),
		},
		ComputedAt: time.Now().UTC(),
	}

	a.logger.Debug("aggregated evaluation",
		zap.Int("risk_score", riskScore),
		zap.Bool("compliant", result.IsCompliant),
		zap.Int("issues", len(issues)),
	)

	return result
}

// dedupe collapses findings that report the same underlying problem:
// same category with overlapping spans (or both without spans). The
// highest-severity instance wins so two stages catching one issue do
// not double-penalize it. Order of first occurrence is preserved.
func dedupe(candidates []domain.Violation) []domain.Violation {
	issues := make([]domain.Violation, 0, len(candidates))

	for _, cand := range candidates {
		merged := false
		for i := range issues {
			if !sameIssue(issues[i], cand) {
				continue
			}
			if cand.Severity.Rank() > issues[i].Severity.Rank() {
				// Keep the original position, upgrade the instance.
				issues[i] = cand
			}
			merged = true
			break
		}
		if !merged {
			issues = append(issues, cand)
		}
	}

	return issues
}

func sameIssue(a, b domain.Violation) bool {
	if a.Category != b.Category {
		return false
	}
	if a.Span == nil && b.Span == nil {
		return true
	}
	if a.Span == nil || b.Span == nil {
		return false
	}
	return a.Span.Overlaps(*b.Span)
}

// collectSuggestions unions suggestion strings, deduplicated by
// equality, preserving first-occurrence order.
func collectSuggestions(issues []domain.Violation) []string {
	seen := make(map[string]struct{}, len(issues))
	var out []string
	for _, v := range issues {
		if v.Suggestion == "" {
			continue
		}
		if _, ok := seen[v.Suggestion]; ok {
			continue
		}
		seen[v.Suggestion] = struct{}{}
		out = append(out, v.Suggestion)
	}
	return out
}
