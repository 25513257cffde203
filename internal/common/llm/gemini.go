// Package llm wraps the generative text API behind a small interface so the
// extractor and summarizer can be tested without network access.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"work-planner/internal/common/config"
	apperrors "work-planner/internal/common/errors"
	"work-planner/internal/common/metrics"
)

// Generator produces text for a prompt. purpose labels metrics and errors.
type Generator interface {
	Generate(ctx context.Context, purpose, prompt string) (string, error)
}

// GeminiClient calls GenerateContent with the configured sampling settings.
type GeminiClient struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	genCfg  *genai.GenerateContentConfig
}

func NewGeminiClient(ctx context.Context, cfg config.GenAIConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, apperrors.NewConfigInvalidError("genai api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiClient{
		client:  client,
		model:   strings.TrimPrefix(cfg.Model, "models/"),
		timeout: config.GetDuration(cfg.Timeout),
		genCfg: &genai.GenerateContentConfig{
			Temperature:     genai.Ptr(cfg.Temperature),
			TopP:            genai.Ptr(cfg.TopP),
			TopK:            genai.Ptr(cfg.TopK),
			MaxOutputTokens: cfg.MaxOutputTokens,
		},
	}, nil
}

// Generate runs one request under the client timeout. Failures are returned
// as AI_TIMEOUT or AI_REQUEST_FAILED; the call is not retried.
func (g *GeminiClient) Generate(ctx context.Context, purpose, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), g.genCfg)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			metrics.AIRequests.WithLabelValues(purpose, "timeout").Inc()
			return "", apperrors.NewAITimeoutError(purpose, err)
		}
		metrics.AIRequests.WithLabelValues(purpose, "error").Inc()
		return "", apperrors.NewAIRequestFailedError(purpose, err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		metrics.AIRequests.WithLabelValues(purpose, "empty").Inc()
		return "", apperrors.NewAIRequestFailedError(purpose, errors.New("empty response"))
	}

	metrics.AIRequests.WithLabelValues(purpose, "success").Inc()
	return text, nil
}
