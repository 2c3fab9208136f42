package composer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"healthnudge/internal/models"
)

// chatCompleter is the minimal slice of the OpenAI client we depend on,
// kept narrow so tests can substitute a mock.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIComposer generates messages through the OpenAI chat completion API.
type OpenAIComposer struct {
	client  chatCompleter
	model   string
	timeout time.Duration
}

func NewOpenAIComposer(apiKey, model string, timeout time.Duration) (*OpenAIComposer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &OpenAIComposer{client: openai.NewClient(apiKey), model: model, timeout: timeout}, nil
}

// newOpenAIComposerWithClient exists for tests.
func newOpenAIComposerWithClient(client chatCompleter, model string, timeout time.Duration) *OpenAIComposer {
	return &OpenAIComposer{client: client, model: model, timeout: timeout}
}

func (c *OpenAIComposer) Generate(ctx context.Context, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(req)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: openai: %v", models.ErrComposerUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: openai returned no choices", models.ErrComposerUnavailable)
	}

	message := strings.TrimSpace(resp.Choices[0].Message.Content)
	if message == "" {
		return "", fmt.Errorf("%w: openai returned an empty message", models.ErrComposerUnavailable)
	}
	return message, nil
}
