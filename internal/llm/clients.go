package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/FACorreiaa/seoul-connect-api/internal/types"
)

const defaultModel = "gemini-2.0-flash"

// ChatClient abstracts the structured-completion capability needed by the
// planning and review pipelines.
type ChatClient interface {
	GenerateResponse(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	Model() string
}

// GeminiChatClient adapts the genai SDK to the ChatClient interface.
type GeminiChatClient struct {
	client *genai.Client
	model  string
}

// NewGeminiChatClient creates a ChatClient backed by Gemini. An empty model
// name selects the default flash model.
func NewGeminiChatClient(ctx context.Context, apiKey, model string) (*GeminiChatClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	if model == "" {
		model = defaultModel
	}
	return &GeminiChatClient{client: client, model: model}, nil
}

func (g *GeminiChatClient) GenerateResponse(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
}

func (g *GeminiChatClient) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}

// ConfigWithTemperature builds a generation config for a single completion
// call. JSON output is requested so downstream parsing stays predictable.
func ConfigWithTemperature(temperature float32) *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(temperature),
		ResponseMIMEType: "application/json",
	}
}

// ResponseText pulls the first non-empty candidate text out of a completion
// response.
func ResponseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", types.ErrEmptyCompletion
	}
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part != nil && part.Text != "" {
				return part.Text, nil
			}
		}
	}
	return "", types.ErrEmptyCompletion
}
