// internal/qualitative/claude.go
package qualitative

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"nil-matching/internal/common/config"
	apperrors "nil-matching/internal/common/errors"
	commonhttp "nil-matching/internal/common/http"
	"nil-matching/internal/models"
)

const (
	DefaultClaudeEndpoint = "https://api.anthropic.com/v1/messages"
	DefaultClaudeModel    = "claude-sonnet-4-20250514"
	claudeAPIVersion      = "2023-06-01"
)

type ClaudeOptions struct {
	Endpoint    string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
	MaxRetries  int
	HTTPClient  *commonhttp.Client
}

// ClaudeAssessor calls the Anthropic Messages API.
type ClaudeAssessor struct {
	client      *commonhttp.Client
	endpoint    string
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeRequest struct {
	Model       string          `json:"model"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float64         `json:"temperature"`
	System      string          `json:"system,omitempty"`
	Messages    []claudeMessage `json:"messages"`
}

type claudeResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

func NewClaudeAssessor(opts ClaudeOptions) *ClaudeAssessor {
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultClaudeEndpoint
	}
	if opts.Model == "" {
		opts.Model = DefaultClaudeModel
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 1000
	}
	if opts.Timeout <= 0 {
		opts.Timeout = config.GetDuration(30000)
	}
	client := opts.HTTPClient
	if client == nil {
		client = commonhttp.NewClient(opts.Timeout, commonhttp.WithRetries(opts.MaxRetries))
	}

	return &ClaudeAssessor{
		client:      client,
		endpoint:    opts.Endpoint,
		apiKey:      opts.APIKey,
		model:       opts.Model,
		maxTokens:   opts.MaxTokens,
		temperature: opts.Temperature,
	}
}

func (c *ClaudeAssessor) Assess(ctx context.Context, subject models.SubjectView, brand models.BrandView, result models.MatchResult) (*models.LLMAnalysis, error) {
	start := time.Now()

	req := claudeRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		System:      systemPrompt,
		Messages: []claudeMessage{
			{Role: "user", Content: BuildPrompt(subject, brand, result)},
		},
	}
	headers := map[string]string{
		"X-Api-Key":         c.apiKey,
		"Anthropic-Version": claudeAPIVersion,
	}

	var resp claudeResponse
	if err := c.client.PostJSON(ctx, c.endpoint, headers, req, &resp); err != nil {
		return nil, classifyProviderError(err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, apperrors.NewQualitativeFailedError(errors.New("no text content in Claude response"))
	}

	analysis, err := ParseAnalysis(text.String())
	if err != nil {
		return nil, apperrors.NewQualitativeFailedError(fmt.Errorf("parse Claude response: %w", err))
	}

	analysis.Provider = config.ProviderClaude
	analysis.Model = c.model
	analysis.TokensUsed = resp.Usage.InputTokens + resp.Usage.OutputTokens
	analysis.LatencyMs = time.Since(start).Milliseconds()
	return analysis, nil
}

// classifyProviderError maps transport failures onto the qualitative codes.
func classifyProviderError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewQualitativeTimeoutError(err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apperrors.NewQualitativeTimeoutError(err)
	}
	return apperrors.NewQualitativeFailedError(err)
}
