// Package domain contains the core domain models and types.
// These models represent the compliance contracts and are independent
// of any infrastructure concerns.
package domain

import "time"

// Severity represents the severity level of a compliance violation.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// IsValid checks if the severity value is one of the allowed values.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	default:
		return false
	}
}

// Rank returns the ordering of a severity, higher means more severe.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// Language is the language the content is written in.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageHindi   Language = "hi"
	LanguageMarathi Language = "mr"
)

// IsValid checks if the language is supported.
func (l Language) IsValid() bool {
	switch l {
	case LanguageEnglish, LanguageHindi, LanguageMarathi:
		return true
	default:
		return false
	}
}

// ContentType is the delivery channel the content is authored for.
type ContentType string

const (
	ContentTypeWhatsApp ContentType = "whatsapp"
	ContentTypeStatus   ContentType = "status"
	ContentTypeLinkedIn ContentType = "linkedin"
	ContentTypeEmail    ContentType = "email"
)

// IsValid checks if the content type is supported.
func (c ContentType) IsValid() bool {
	switch c {
	case ContentTypeWhatsApp, ContentTypeStatus, ContentTypeLinkedIn, ContentTypeEmail:
		return true
	default:
		return false
	}
}

// MaxContentLength returns the maximum content length for this channel.
func (c ContentType) MaxContentLength() int {
	if c == ContentTypeWhatsApp || c == ContentTypeStatus {
		return 1024
	}
	return 2000
}

// ComplianceRequest is the input tuple for one compliance evaluation.
// It is immutable once constructed.
type ComplianceRequest struct {
	// Content is the advisor-authored text to evaluate.
	Content string `json:"content" binding:"required"`

	// Language is the language of the content (en, hi, mr).
	Language Language `json:"language" binding:"required"`

	// ContentType is the delivery channel (whatsapp, status, linkedin, email).
	ContentType ContentType `json:"contentType" binding:"required"`

	// AdvisorID attributes the evaluation for audit purposes.
	// It never influences the evaluation outcome.
	AdvisorID string `json:"advisorId,omitempty"`
}

// Span marks the byte offsets of a matched phrase within the content.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Overlaps reports whether two spans share at least one byte.
func (s Span) Overlaps(other Span) bool {
	return s.Start < other.End && other.Start < s.End
}

// Violation is a single compliance finding. Stage 1 findings are
// deterministic (Confidence == 0 means "not probabilistic"); Stage 2
// findings carry a model confidence in (0, 1].
type Violation struct {
	// Rule is the stable identifier of the violated rule (e.g. AD-001).
	Rule string `json:"rule"`

	// Category groups related rules for deduplication across stages.
	Category string `json:"category"`

	// Severity indicates the impact level.
	Severity Severity `json:"severity"`

	// Description is a human-readable explanation of the violation.
	Description string `json:"description"`

	// Suggestion is an optional remediation hint.
	Suggestion string `json:"suggestion,omitempty"`

	// Span is the offset range of the matched phrase, when known.
	Span *Span `json:"span,omitempty"`

	// Confidence is the model confidence for semantic findings.
	// Zero for deterministic rule matches.
	Confidence float64 `json:"confidence,omitempty"`

	// Stage records which pipeline stage produced the finding (1 or 2).
	Stage int `json:"stage"`
}

// RuleResult is the outcome of the Stage 1 rule engine.
type RuleResult struct {
	// Passed is true when no high or critical violation was found.
	Passed bool

	// Violations holds every match, including repeats of the same rule
	// on different spans. Deduplication happens at aggregation.
	Violations []Violation
}

// HasCritical reports whether any violation is critical.
// A critical violation short-circuits semantic evaluation.
func (r RuleResult) HasCritical() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityCritical {
			return true
		}
	}
	return false
}

// SemanticResult is the outcome of the Stage 2 semantic evaluator.
type SemanticResult struct {
	// Findings are the model-reported violations that survived the
	// confidence filter.
	Findings []Violation

	// ModelLatencyMs is the wall time of the model call.
	ModelLatencyMs int64
}

// StagesCompleted records which pipeline stages actually ran.
// Early-reject and Stage 2 degradation leave AI false.
type StagesCompleted struct {
	Rules bool `json:"rules"`
	AI    bool `json:"ai"`
	Final bool `json:"final"`
}

// RiskLevel bands a risk score for caller-facing display.
type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "low"
	RiskLevelMedium   RiskLevel = "medium"
	RiskLevelHigh     RiskLevel = "high"
	RiskLevelCritical RiskLevel = "critical"
)

// RiskLevelFor maps a risk score to its band.
func RiskLevelFor(riskScore int) RiskLevel {
	switch {
	case riskScore <= 30:
		return RiskLevelLow
	case riskScore <= 70:
		return RiskLevelMedium
	case riskScore <= 90:
		return RiskLevelHigh
	default:
		return RiskLevelCritical
	}
}

// ColorCode returns the traffic-light colour for a risk level.
func (r RiskLevel) ColorCode() string {
	switch r {
	case RiskLevelLow:
		return "green"
	case RiskLevelMedium:
		return "yellow"
	default:
		return "red"
	}
}

// AuditRecord attributes one evaluation for regulatory audit trails.
type AuditRecord struct {
	// ID uniquely identifies this evaluation.
	ID string `json:"id"`

	// ContentHash is the fingerprint of the evaluated content.
	ContentHash string `json:"contentHash"`

	// AdvisorID is the advisor the evaluation was attributed to.
	AdvisorID string `json:"advisorId,omitempty"`

	// Timestamp is when the evaluation completed.
	Timestamp time.Time `json:"timestamp"`
}

// ComplianceResult is the aggregate output of one evaluation.
type ComplianceResult struct {
	// IsCompliant is true when RiskScore is strictly below the
	// configured threshold. The boundary itself is non-compliant.
	IsCompliant bool `json:"isCompliant"`

	// RiskScore is the 0-100 aggregate risk measure, higher is riskier.
	RiskScore int `json:"riskScore"`

	// Score is the complementary compliance score (100 - RiskScore).
	Score int `json:"score"`

	// RiskLevel bands the risk score for display.
	RiskLevel RiskLevel `json:"riskLevel"`

	// ColorCode is the traffic-light colour for the risk level.
	ColorCode string `json:"colorCode"`

	// StagesCompleted records which stages actually ran.
	StagesCompleted StagesCompleted `json:"stagesCompleted"`

	// Issues is the deduplicated, ordered list of findings.
	Issues []Violation `json:"issues"`

	// Suggestions is the deduplicated union of remediation hints.
	Suggestions []string `json:"suggestions"`

	// Audit attributes the evaluation.
	Audit AuditRecord `json:"audit"`

	// ComputedAt is when the result was produced.
	ComputedAt time.Time `json:"computedAt"`

	// TTLSeconds is the cache lifetime the result was stored with.
	TTLSeconds int `json:"ttlSeconds"`

	// Cached is true when the result was served from the cache.
	Cached bool `json:"cached"`

	// ElapsedMs is the compute time. Zero for cache hits.
	ElapsedMs int64 `json:"elapsedMs"`
}

// Clone returns a deep copy. Cached results are owned by the cache
// layer; callers always receive a copy they are free to mutate.
func (r *ComplianceResult) Clone() *ComplianceResult {
	out := *r
	out.Issues = make([]Violation, len(r.Issues))
	for i, v := range r.Issues {
		out.Issues[i] = v
		if v.Span != nil {
			span := *v.Span
			out.Issues[i].Span = &span
		}
	}
	out.Suggestions = append([]string(nil), r.Suggestions...)
	return &out
}

// AutoFixResult is the outcome of the one-shot remediation flow.
type AutoFixResult struct {
	// WasFixed is true only when the rewritten content passed a full
	// re-evaluation.
	WasFixed bool `json:"wasFixed"`

	// FixedContent is the rewritten content when WasFixed is true.
	FixedContent string `json:"fixedContent,omitempty"`

	// Result is the re-evaluation of the rewritten content, when a
	// rewrite was attempted.
	Result *ComplianceResult `json:"result,omitempty"`
}
