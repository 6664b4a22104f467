package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"nutrimori-ai/internal/infrastructure/config"

	"github.com/go-resty/resty/v2"
)

// OpenRouterClient is the chat-completions client behind candidate
// generation
type OpenRouterClient struct {
	config *config.Config
	client *resty.Client
}

// NewOpenRouterClient creates the OpenRouter client
func NewOpenRouterClient(cfg *config.Config) *OpenRouterClient {
	client := resty.New().
		SetBaseURL("https://openrouter.ai/api/v1").
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.OpenRouter.APIKey)).
		SetHeader("HTTP-Referer", "https://nutrimori.app").
		SetHeader("X-Title", "NutriMori AI").
		SetTimeout(cfg.OpenRouter.Timeout)

	return &OpenRouterClient{
		config: cfg,
		client: client,
	}
}

// Complete sends prompt as a single user message and returns the model's
// text response
func (c *OpenRouterClient) Complete(ctx context.Context, prompt string) (string, error) {
	req := map[string]interface{}{
		"model": c.config.OpenRouter.Model,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": prompt,
			},
		},
		"max_tokens": c.config.OpenRouter.MaxTokens,
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		Post("/chat/completions")

	if err != nil {
		return "", fmt.Errorf("failed to send request to OpenRouter: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("OpenRouter API returned error: %s", resp.String())
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return "", fmt.Errorf("failed to parse OpenRouter response: %w", err)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices in OpenRouter response")
	}

	return result.Choices[0].Message.Content, nil
}
