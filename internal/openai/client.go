package openai

import (
	"context"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
	"schema-generator/config"
	"schema-generator/internal/metrics"
	"schema-generator/internal/prompts"
	"schema-generator/internal/schema"
)

// Client wraps the OpenAI client with rate limiting and error handling
type Client struct {
	client      *openai.Client
	config      config.LLMConfig
	timeout     time.Duration
	rateLimiter *RateLimiter
}

// NewClient creates a new OpenAI client. The API key comes from cfg only.
func NewClient(cfg *config.Config) (*Client, error) {
	if err := cfg.RequireAPIKey(); err != nil {
		return nil, err
	}

	clientConfig := openai.DefaultConfig(cfg.LLM.APIKey)
	if cfg.LLM.BaseURL != "" {
		clientConfig.BaseURL = cfg.LLM.BaseURL
	}

	rateLimiter := NewRateLimiter(
		cfg.RateLimiting.RequestsPerMinute,
		cfg.RateLimiting.RequestsPerDay,
	)

	return &Client{
		client:      openai.NewClientWithConfig(clientConfig),
		config:      cfg.LLM,
		timeout:     cfg.GetRequestTimeout(),
		rateLimiter: rateLimiter,
	}, nil
}

// Model returns the configured model name
func (c *Client) Model() string {
	return c.config.Model
}

// Complete sends a prompt to the model and returns its text response
func (c *Client) Complete(ctx context.Context, prompt prompts.Prompt) (schema.Response, error) {
	// Wait for rate limiter
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit error: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.config.Model,
		Temperature: c.config.Temperature,
		MaxTokens:   c.config.MaxTokensPerRequest,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: prompt.System,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt.User,
			},
		},
	})
	if err == nil && len(resp.Choices) == 0 {
		err = fmt.Errorf("no response from OpenAI")
	}
	metrics.RecordLLMRequest(prompt.Name, err, time.Since(start))

	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	return schema.StructuredResponse{Text: resp.Choices[0].Message.Content}, nil
}

// RateLimitStats returns the remaining minute and day request budget
func (c *Client) RateLimitStats() (minuteTokens, dayTokens int) {
	return c.rateLimiter.GetStats()
}
