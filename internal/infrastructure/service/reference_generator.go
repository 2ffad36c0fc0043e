// Package service contains thin adapters that plug the infrastructure
// clients into the application-side ports. Each adapter only translates
// shapes; behavior lives in the client it wraps.
package service

import (
	"context"

	"github.com/study-buddy/study-buddy-backend/internal/infrastructure/external/anthropic"
)

// ReferenceGenerator adapts the LLM client to the pipeline's Generator
// port.
type ReferenceGenerator struct {
	client *anthropic.Client
}

// NewReferenceGenerator creates a new ReferenceGenerator.
func NewReferenceGenerator(client *anthropic.Client) *ReferenceGenerator {
	return &ReferenceGenerator{client: client}
}

// Generate implements pipeline.Generator.
func (g *ReferenceGenerator) Generate(ctx context.Context, subject, language string) (string, error) {
	return g.client.GenerateReference(ctx, subject, language)
}
