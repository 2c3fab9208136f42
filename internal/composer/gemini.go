package composer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"healthnudge/internal/models"
)

// GeminiComposer generates messages through the Google Gemini API.
type GeminiComposer struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

func NewGeminiComposer(ctx context.Context, apiKey, model string, timeout time.Duration) (*GeminiComposer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = "gemini-1.5-flash"
	}
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiComposer{client: client, model: model, timeout: timeout}, nil
}

func (c *GeminiComposer) Generate(ctx context.Context, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	model := c.client.GenerativeModel(c.model)
	resp, err := model.GenerateContent(ctx, genai.Text(buildPrompt(req)))
	if err != nil {
		return "", fmt.Errorf("%w: gemini: %v", models.ErrComposerUnavailable, err)
	}

	message := collectText(resp)
	if message == "" {
		return "", fmt.Errorf("%w: gemini returned no text", models.ErrComposerUnavailable)
	}
	return message, nil
}

func (c *GeminiComposer) Close() error {
	return c.client.Close()
}

func collectText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
	}
	return strings.TrimSpace(b.String())
}
