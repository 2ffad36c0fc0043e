package service

import (
	"context"

	"github.com/study-buddy/study-buddy-backend/internal/application/pipeline"
	"github.com/study-buddy/study-buddy-backend/internal/infrastructure/external/linkcheck"
)

// LinkValidator adapts the HTTP link checker to the pipeline's
// LinkChecker port. The status code and probed URL stay behind; the
// pipeline only needs the verdict.
type LinkValidator struct {
	checker *linkcheck.Checker
}

// NewLinkValidator creates a new LinkValidator.
func NewLinkValidator(checker *linkcheck.Checker) *LinkValidator {
	return &LinkValidator{checker: checker}
}

// Check implements pipeline.LinkChecker.
func (v *LinkValidator) Check(ctx context.Context, reference string) pipeline.CheckResult {
	result := v.checker.Check(ctx, reference)
	return pipeline.CheckResult{
		OK:     result.OK,
		Reason: result.Reason,
	}
}
