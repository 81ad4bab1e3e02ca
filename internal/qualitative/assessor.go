// internal/qualitative/assessor.go
package qualitative

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"nil-matching/internal/common/config"
	"nil-matching/internal/models"
)

// ErrNotConfigured is returned by assessors that have no provider behind them.
var ErrNotConfigured = errors.New("qualitative assessment not configured")

// Assessor produces an external qualitative judgement of one pairing. The
// rule-based result is passed so the provider can see what the engine
// already concluded.
type Assessor interface {
	Assess(ctx context.Context, subject models.SubjectView, brand models.BrandView, result models.MatchResult) (*models.LLMAnalysis, error)
}

// NotConfigured always fails with ErrNotConfigured.
type NotConfigured struct{}

func (NotConfigured) Assess(context.Context, models.SubjectView, models.BrandView, models.MatchResult) (*models.LLMAnalysis, error) {
	return nil, ErrNotConfigured
}

// IsConfigured reports whether a is backed by a real provider.
func IsConfigured(a Assessor) bool {
	if a == nil {
		return false
	}
	_, off := a.(NotConfigured)
	return !off
}

// New builds the assessor named by cfg.Provider. A disabled stage or a
// missing API key yields NotConfigured rather than an error so workers can
// still start and fall back to rule-based scores.
func New(ctx context.Context, cfg config.QualitativeConfig) (Assessor, error) {
	if !cfg.Enabled || strings.TrimSpace(cfg.APIKey) == "" {
		return NotConfigured{}, nil
	}

	switch cfg.Provider {
	case config.ProviderClaude, "":
		return NewClaudeAssessor(ClaudeOptions{
			Endpoint:    cfg.BaseURL,
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			Timeout:     config.GetDuration(cfg.Timeout),
			MaxRetries:  cfg.MaxRetries,
		}), nil
	case config.ProviderGemini:
		return NewGeminiAssessor(ctx, GeminiOptions{
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			MaxRetries:  cfg.MaxRetries,
		})
	default:
		return nil, fmt.Errorf("unknown qualitative provider %q", cfg.Provider)
	}
}
