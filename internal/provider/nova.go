package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

// ConverseAPI is the subset of the Bedrock runtime client Nova uses.
type ConverseAPI interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// Nova generates text with Amazon Nova through the Bedrock Converse API.
// It does not accept media.
type Nova struct {
	model  string
	client ConverseAPI
}

// NewNova loads the default AWS configuration and creates a Bedrock client.
func NewNova(ctx context.Context, model, region string) (*Nova, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return &Nova{model: model, client: bedrockruntime.NewFromConfig(cfg)}, nil
}

func (n *Nova) Model() string { return n.model }

func (n *Nova) Generate(ctx context.Context, parts []Part, opts Options) (string, error) {
	prompt, err := textOnly(parts)
	if err != nil {
		return "", err
	}

	input := &bedrockruntime.ConverseInput{
		ModelId: aws.String(n.model),
		Messages: []types.Message{
			{
				Role: types.ConversationRoleUser,
				Content: []types.ContentBlock{
					&types.ContentBlockMemberText{Value: prompt},
				},
			},
		},
		InferenceConfig: &types.InferenceConfiguration{
			MaxTokens:   aws.Int32(maxTokens),
			Temperature: aws.Float32(temperature),
		},
	}
	if opts.JSON {
		input.System = []types.SystemContentBlock{
			&types.SystemContentBlockMemberText{Value: jsonInstruction},
		}
	}

	resp, err := n.client.Converse(ctx, input)
	if err != nil {
		return "", fmt.Errorf("Bedrock converse: %w", err)
	}
	text := extractNovaText(resp)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("Bedrock converse: %w", ErrEmptyResponse)
	}
	return text, nil
}

func extractNovaText(resp *bedrockruntime.ConverseOutput) string {
	if resp.Output == nil {
		return ""
	}
	msg, ok := resp.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return ""
	}
	var parts []string
	for _, block := range msg.Value.Content {
		if tb, ok := block.(*types.ContentBlockMemberText); ok {
			parts = append(parts, tb.Value)
		}
	}
	return strings.Join(parts, "")
}
