// Package llm provides PromptClient implementations backed by hosted
// language model APIs, for use with semantic dependency analysis.
package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
)

var DefaultOpenAIModel = openai.ChatModel("gpt-4o")

// OpenAI implements weft.PromptClient using the OpenAI Responses API.
type OpenAI struct {
	client  openai.Client
	model   openai.ChatModel
	options []option.RequestOption
}

type OpenAIOption func(*OpenAI)

// WithOpenAIAPIKey overrides the OPENAI_API_KEY environment variable.
func WithOpenAIAPIKey(apiKey string) OpenAIOption {
	return func(p *OpenAI) {
		p.options = append(p.options, option.WithAPIKey(apiKey))
	}
}

// WithOpenAIBaseURL points the client at a compatible endpoint.
func WithOpenAIBaseURL(endpoint string) OpenAIOption {
	return func(p *OpenAI) {
		p.options = append(p.options, option.WithBaseURL(endpoint))
	}
}

// WithOpenAIModel sets the model name.
func WithOpenAIModel(model string) OpenAIOption {
	return func(p *OpenAI) {
		p.model = openai.ChatModel(model)
	}
}

// NewOpenAI creates an OpenAI-backed prompt client. The API key is
// read from OPENAI_API_KEY unless overridden with an option.
func NewOpenAI(opts ...OpenAIOption) *OpenAI {
	p := &OpenAI{model: DefaultOpenAIModel}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		p.options = append(p.options, option.WithAPIKey(key))
	}
	for _, opt := range opts {
		opt(p)
	}
	p.client = openai.NewClient(p.options...)
	return p
}

// Generate sends the prompt and returns the concatenated text output.
func (p *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	response, err := p.client.Responses.New(ctx, responses.ResponseNewParams{
		Model: p.model,
		Input: responses.ResponseNewParamsInputUnion{
			OfString: openai.String(prompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai request failed: %w", err)
	}
	var text strings.Builder
	for _, item := range response.Output {
		if item.Type != "message" {
			continue
		}
		message := item.AsMessage()
		for _, content := range message.Content {
			if content.Type == "output_text" {
				text.WriteString(content.AsOutputText().Text)
			}
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("openai response contained no text output")
	}
	return text.String(), nil
}
