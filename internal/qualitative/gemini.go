// internal/qualitative/gemini.go
package qualitative

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"nil-matching/internal/common/config"
	apperrors "nil-matching/internal/common/errors"
	"nil-matching/internal/models"
)

const DefaultGeminiModel = "gemini-2.5-pro"

// contentGenerator is the slice of genai.Models the assessor needs.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type GeminiOptions struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	MaxRetries  int
}

// GeminiAssessor asks Gemini for a JSON assessment.
type GeminiAssessor struct {
	models      contentGenerator
	model       string
	maxTokens   int
	temperature float64
	maxRetries  int
	baseDelay   time.Duration
}

func NewGeminiAssessor(ctx context.Context, opts GeminiOptions) (*GeminiAssessor, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newGeminiAssessor(client.Models, opts), nil
}

func newGeminiAssessor(gen contentGenerator, opts GeminiOptions) *GeminiAssessor {
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = DefaultGeminiModel
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1000
	}
	return &GeminiAssessor{
		models:      gen,
		model:       model,
		maxTokens:   maxTokens,
		temperature: opts.Temperature,
		maxRetries:  opts.MaxRetries,
		baseDelay:   100 * time.Millisecond,
	}
}

func (g *GeminiAssessor) Assess(ctx context.Context, subject models.SubjectView, brand models.BrandView, result models.MatchResult) (*models.LLMAnalysis, error) {
	start := time.Now()

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr(float32(g.temperature)),
		MaxOutputTokens:   int32(g.maxTokens),
		ResponseMIMEType:  "application/json",
	}
	contents := genai.Text(BuildPrompt(subject, brand, result))

	var (
		resp *genai.GenerateContentResponse
		err  error
	)
	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := g.baseDelay * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, apperrors.NewQualitativeTimeoutError(ctx.Err())
			}
		}
		resp, err = g.models.GenerateContent(ctx, g.model, contents, cfg)
		if err == nil || !temporaryGenAIError(err) {
			break
		}
	}
	if err != nil {
		return nil, classifyProviderError(fmt.Errorf("generate content: %w", err))
	}

	text := responseText(resp)
	if text == "" {
		return nil, apperrors.NewQualitativeFailedError(errors.New("gemini api returned empty response"))
	}

	analysis, err := ParseAnalysis(text)
	if err != nil {
		return nil, apperrors.NewQualitativeFailedError(fmt.Errorf("parse Gemini response: %w", err))
	}

	analysis.Provider = config.ProviderGemini
	analysis.Model = g.model
	if resp.UsageMetadata != nil {
		analysis.TokensUsed = int(resp.UsageMetadata.TotalTokenCount)
	}
	analysis.LatencyMs = time.Since(start).Milliseconds()
	return analysis, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}
	return strings.TrimSpace(builder.String())
}

func temporaryGenAIError(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= 500
	}
	return false
}
