package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	temperature = 0.7
	maxTokens   = 4096
)

// Claude generates text with the Anthropic Messages API. It does not accept
// media.
type Claude struct {
	client anthropic.Client
	model  string
}

// NewClaude creates a Claude client for model.
func NewClaude(apiKey, model string) (*Claude, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: ANTHROPIC_API_KEY is not set", ErrMissingKey)
	}
	return &Claude{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}, nil
}

func (c *Claude) Model() string { return c.model }

func (c *Claude) Generate(ctx context.Context, parts []Part, opts Options) (string, error) {
	prompt, err := textOnly(parts)
	if err != nil {
		return "", err
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   maxTokens,
		Temperature: anthropic.Float(temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if opts.JSON {
		params.System = []anthropic.TextBlockParam{{Text: jsonInstruction}}
	}

	message, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("Claude generate: %w", err)
	}
	text := extractText(message)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("Claude generate: %w", ErrEmptyResponse)
	}
	return text, nil
}

func extractText(msg *anthropic.Message) string {
	var parts []string
	for _, block := range msg.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			parts = append(parts, tb.Text)
		}
	}
	return strings.Join(parts, "")
}
