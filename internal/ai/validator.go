// Package ai provides the semantic evaluator client interface and
// implementations.
package ai

import (
	"fmt"

	"github.com/jarvish/compliance-engine/internal/domain"
)

// DefaultValidator implements ResponseValidator with schema checks on
// individual findings. The model response is duck-typed JSON; a
// finding that fails validation is dropped rather than trusted.
type DefaultValidator struct{}

// NewDefaultValidator creates a new response validator.
func NewDefaultValidator() *DefaultValidator {
	return &DefaultValidator{}
}

// ValidateFinding checks one parsed finding against the expected schema.
func (v *DefaultValidator) ValidateFinding(f *domain.Violation) error {
	if f == nil {
		return domain.WrapError("validate",
			fmt.Errorf("finding is nil"), false)
	}

	if f.Rule == "" {
		return domain.WrapError("validate_rule",
			fmt.Errorf("%w: rule identifier is required", domain.ErrInvalidModelResponse), false)
	}

	if !f.Severity.IsValid() {
		return domain.WrapError("validate_severity",
			fmt.Errorf("%w: severity must be low, medium, high or critical, got: %s",
				domain.ErrInvalidModelResponse, f.Severity), false)
	}

	if f.Description == "" {
		return domain.WrapError("validate_description",
			fmt.Errorf("%w: description is required", domain.ErrInvalidModelResponse), false)
	}

	if f.Confidence < 0 || f.Confidence > 1 {
		return domain.WrapError("validate_confidence",
			fmt.Errorf("%w: confidence must be between 0 and 1, got: %v",
				domain.ErrInvalidModelResponse, f.Confidence), false)
	}

	if f.Span != nil && (f.Span.Start < 0 || f.Span.End < f.Span.Start) {
		return domain.WrapError("validate_span",
			fmt.Errorf("%w: span offsets are inverted", domain.ErrInvalidModelResponse), false)
	}

	return nil
}
