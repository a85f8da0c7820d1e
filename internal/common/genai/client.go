// Package genai wraps the Gemini API for the single-shot prompts used by
// the AI workers.
package genai

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	googlegenai "google.golang.org/genai"

	"realty-workers/internal/common/config"
	"realty-workers/internal/common/errors"
)

const DefaultModel = "gemini-2.0-flash"

// Generator produces a text completion for a prompt.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, prompt string) (string, error)
}

// ModelsAPI is the slice of the SDK models service used here.
type ModelsAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*googlegenai.Content, config *googlegenai.GenerateContentConfig) (*googlegenai.GenerateContentResponse, error)
}

type Client struct {
	models  ModelsAPI
	model   string
	timeout time.Duration
}

// NewClient returns AI_NOT_CONFIGURED when no API key is set.
func NewClient(ctx context.Context, cfg config.GenAIConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.NewAINotConfiguredError()
	}

	client, err := googlegenai.NewClient(ctx, &googlegenai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: googlegenai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return NewClientWithAPI(client.Models, cfg.Model, time.Duration(cfg.Timeout)*time.Millisecond), nil
}

func NewClientWithAPI(models ModelsAPI, model string, timeout time.Duration) *Client {
	if model == "" {
		model = DefaultModel
	}
	return &Client{models: models, model: model, timeout: timeout}
}

func (c *Client) Generate(ctx context.Context, systemPrompt, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var cfg *googlegenai.GenerateContentConfig
	if systemPrompt != "" {
		cfg = &googlegenai.GenerateContentConfig{
			SystemInstruction: googlegenai.NewContentFromText(systemPrompt, googlegenai.RoleUser),
		}
	}

	resp, err := c.models.GenerateContent(ctx, c.model, googlegenai.Text(prompt), cfg)
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) {
			return "", errors.NewAITimeoutError(c.timeout)
		}
		return "", errors.NewAIGenerationFailedError(err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.NewAIGenerationFailedError(fmt.Errorf("model %s returned no text", c.model))
	}
	return text, nil
}
