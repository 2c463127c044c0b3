package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"
)

var DefaultGoogleModel = "gemini-2.0-flash"

// Google implements weft.PromptClient using the Gemini API.
type Google struct {
	client *genai.Client
	model  string
}

type GoogleOption func(*googleConfig)

type googleConfig struct {
	apiKey string
	model  string
}

// WithGoogleAPIKey overrides the GEMINI_API_KEY / GOOGLE_API_KEY
// environment variables.
func WithGoogleAPIKey(apiKey string) GoogleOption {
	return func(c *googleConfig) {
		c.apiKey = apiKey
	}
}

// WithGoogleModel sets the model name.
func WithGoogleModel(model string) GoogleOption {
	return func(c *googleConfig) {
		c.model = model
	}
}

// NewGoogle creates a Gemini-backed prompt client.
func NewGoogle(ctx context.Context, opts ...GoogleOption) (*Google, error) {
	config := &googleConfig{model: DefaultGoogleModel}
	if value := os.Getenv("GEMINI_API_KEY"); value != "" {
		config.apiKey = value
	} else if value := os.Getenv("GOOGLE_API_KEY"); value != "" {
		config.apiKey = value
	}
	for _, opt := range opts {
		opt(config)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: config.apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create google genai client: %w", err)
	}
	return &Google{client: client, model: config.model}, nil
}

// Generate sends the prompt and returns the concatenated text of the
// first candidate.
func (p *Google) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("google request failed: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("google response contained no candidates")
	}
	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			text.WriteString(part.Text)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("google response contained no text output")
	}
	return text.String(), nil
}
