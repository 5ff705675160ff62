package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiClient wraps a Gemini API client shared by the per-model backends.
type GeminiClient struct {
	client *genai.Client
}

// NewGeminiClient creates a Gemini client for apiKey.
func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClient{client: client}, nil
}

// Close closes the Gemini client
func (c *GeminiClient) Close() {
	c.client.Close()
}

// Backends returns one backend per model name, in the given order.
func (c *GeminiClient) Backends(models ...string) []Backend {
	out := make([]Backend, 0, len(models))
	for _, name := range models {
		out = append(out, &geminiBackend{name: name, client: c.client})
	}
	return out
}

type geminiBackend struct {
	name   string
	client *genai.Client
}

func (b *geminiBackend) Name() string { return "gemini/" + b.name }

func (b *geminiBackend) Generate(ctx context.Context, prompt string) (string, error) {
	model := b.client.GenerativeModel(b.name)
	model.SetTemperature(0.2)
	model.SetTopP(0.95)
	model.SetMaxOutputTokens(8192)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	return responseText(resp), nil
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	return sb.String()
}
