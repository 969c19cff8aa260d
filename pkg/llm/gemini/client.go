// Package gemini provides a chat completion client for the Gemini API.
package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"google.golang.org/genai"
)

const (
	// DefaultModel is the default chat model
	DefaultModel = "gemini-2.5-flash"

	// DefaultMaxOutputTokens bounds the completion length
	DefaultMaxOutputTokens = 8192

	// DefaultTemperature is the default sampling temperature
	DefaultTemperature = 0.7

	// DefaultMaxRetries is the default number of retries
	DefaultMaxRetries = 2

	// DefaultBaseDelay is the base delay for exponential backoff
	DefaultBaseDelay = 200 * time.Millisecond

	// DefaultMaxDelay is the maximum delay for exponential backoff
	DefaultMaxDelay = 10 * time.Second
)

// Config holds the configuration for the Gemini client
type Config struct {
	APIKey          string
	Model           string
	MaxOutputTokens int
	Temperature     float64
}

// Message is one conversational turn passed to the model
type Message struct {
	Role    string // "user" or "assistant"
	Content string
}

// Client is a Gemini chat completion client
type Client struct {
	client          *genai.Client
	model           string
	maxOutputTokens int
	temperature     float64
	log             *slog.Logger

	// Retry configuration
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// ClientOption configures the Client
type ClientOption func(*Client)

// WithMaxRetries sets the maximum number of retries
func WithMaxRetries(n int) ClientOption {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithBaseDelay sets the base delay for exponential backoff
func WithBaseDelay(d time.Duration) ClientOption {
	return func(c *Client) {
		c.baseDelay = d
	}
}

// WithLogger sets the logger
func WithLogger(log *slog.Logger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

// NewClient creates a new Gemini chat client
func NewClient(ctx context.Context, cfg Config, opts ...ClientOption) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxOutputTokens <= 0 {
		cfg.MaxOutputTokens = DefaultMaxOutputTokens
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = DefaultTemperature
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	c := &Client{
		client:          client,
		model:           cfg.Model,
		maxOutputTokens: cfg.MaxOutputTokens,
		temperature:     cfg.Temperature,
		log:             slog.Default(),
		maxRetries:      DefaultMaxRetries,
		baseDelay:       DefaultBaseDelay,
		maxDelay:        DefaultMaxDelay,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Generate produces a completion for the conversation, with the system
// prompt installed as the model's system instruction.
func (c *Client) Generate(ctx context.Context, system string, messages []Message) (string, error) {
	contents := make([]*genai.Content, 0, len(messages))
	for _, msg := range messages {
		var role genai.Role = genai.RoleUser
		if msg.Role == "assistant" {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(msg.Content, role))
	}

	temperature := float32(c.temperature)
	genConfig := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: int32(c.maxOutputTokens),
	}
	if system != "" {
		genConfig.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.calculateBackoff(attempt)
			c.log.Debug("retrying completion request",
				slog.Int("attempt", attempt),
				slog.Duration("delay", delay),
			)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
		}

		resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, genConfig)
		if err == nil {
			text := resp.Text()
			if text == "" {
				return "", fmt.Errorf("model returned an empty completion")
			}
			return text, nil
		}

		// Don't retry on context cancellation
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		lastErr = err
		c.log.Warn("completion request failed",
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()),
		)
	}

	return "", fmt.Errorf("all retries exhausted: %w", lastErr)
}

// calculateBackoff calculates the backoff delay for a given attempt
func (c *Client) calculateBackoff(attempt int) time.Duration {
	delay := float64(c.baseDelay) * math.Pow(2, float64(attempt-1))
	if delay > float64(c.maxDelay) {
		delay = float64(c.maxDelay)
	}
	return time.Duration(delay)
}
