// Package openai adapts an OpenAI-compatible chat-completions API to the
// pipeline's infer capability.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/talentdex/talentdex/internal/domain"
	"github.com/talentdex/talentdex/internal/metrics"
)

// Inferencer is a chat-completion client bound to one purpose (compile or
// rerank), model, and temperature.
type Inferencer struct {
	client      *openai.Client
	model       string
	temperature float32
	purpose     string
	logger      *zap.Logger
}

// Config holds the inference provider settings.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	Purpose     string
	Logger      *zap.Logger
}

// NewInferencer creates an OpenAI-compatible inference client.
func NewInferencer(cfg *Config) *Inferencer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Inferencer{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		purpose:     cfg.Purpose,
		logger:      cfg.Logger,
	}
}

// Infer sends one system+user prompt pair and returns the raw completion
// text. Provider failures are wrapped in domain.ErrInferenceProvider.
func (i *Inferencer) Infer(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       i.model,
		Temperature: i.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	}

	start := time.Now()

	resp, err := i.client.CreateChatCompletion(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.InferenceRequestsTotal.WithLabelValues(i.purpose, i.model, "error").Inc()
		return "", parseAPIError(err)
	}

	if len(resp.Choices) == 0 {
		metrics.InferenceRequestsTotal.WithLabelValues(i.purpose, i.model, "error").Inc()
		return "", fmt.Errorf("empty completion response: %w", domain.ErrInferenceProvider)
	}

	metrics.InferenceRequestsTotal.WithLabelValues(i.purpose, i.model, "success").Inc()
	metrics.InferenceRequestDuration.WithLabelValues(i.purpose, i.model).Observe(duration.Seconds())

	return resp.Choices[0].Message.Content, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (i *Inferencer) HealthCheck(ctx context.Context) error {
	if _, err := i.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrInferenceProvider for correct 502 mapping.
func parseAPIError(err error) error {
	wrap := domain.ErrInferenceProvider

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail != "" {
			return fmt.Errorf("inference API error %d: %s: %w",
				reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("inference API error %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("inference API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("inference request failed: %w", wrap)
}

// extractDetail extracts the "detail" field from a JSON error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
