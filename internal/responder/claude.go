package responder

import (
	"context"
	"fmt"
	"os"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/bedrock"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/aws/aws-sdk-go-v2/config"

	"github.com/kotori-ai/kotori/internal/promptctx"
)

// Client wraps the Anthropic SDK client shared by Claude-backed responders.
type Client struct {
	inner anthropic.Client
	model anthropic.Model
}

// ClientConfig contains configuration for creating a new Client.
type ClientConfig struct {
	// Model is the Claude model to use for responders.
	Model anthropic.Model
	// APIKey is the Anthropic API key. If empty, uses ANTHROPIC_API_KEY env var.
	APIKey string
	// UseAWSBedrock indicates whether to use AWS Bedrock instead of direct API.
	UseAWSBedrock bool
	// AWSRegion is the AWS region for Bedrock (e.g., "us-west-2").
	AWSRegion string
	// AWSProfile is the optional AWS profile name to use.
	AWSProfile string
}

// NewClient creates a new Anthropic API client.
func NewClient(cfg ClientConfig) (*Client, error) {
	var opts []option.RequestOption

	if cfg.UseAWSBedrock {
		ctx := context.Background()

		var loadOpts []func(*config.LoadOptions) error
		if cfg.AWSRegion != "" {
			loadOpts = append(loadOpts, config.WithRegion(cfg.AWSRegion))
		}
		if cfg.AWSProfile != "" {
			loadOpts = append(loadOpts, config.WithSharedConfigProfile(cfg.AWSProfile))
		}

		opts = append(opts, bedrock.WithLoadDefaultConfig(ctx, loadOpts...))
	} else {
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("ANTHROPIC_API_KEY")
		}
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable is not set")
		}
		opts = append(opts, option.WithAPIKey(apiKey))
	}

	model := cfg.Model
	if model == "" {
		model = anthropic.ModelClaudeSonnet4_20250514
	}
	if cfg.UseAWSBedrock {
		model = translateModelForBedrock(model)
	}

	return &Client{
		inner: anthropic.NewClient(opts...),
		model: model,
	}, nil
}

// translateModelForBedrock converts standard Anthropic model names to
// Bedrock cross-region inference profile format.
func translateModelForBedrock(model anthropic.Model) anthropic.Model {
	bedrockModels := map[anthropic.Model]string{
		anthropic.ModelClaudeSonnet4_20250514:   "us.anthropic.claude-sonnet-4-20250514-v1:0",
		anthropic.ModelClaude3_5Haiku20241022:   "us.anthropic.claude-3-5-haiku-20241022-v1:0",
		anthropic.ModelClaudeSonnet4_5_20250929: "us.anthropic.claude-sonnet-4-5-20250929-v1:0",
	}
	if bedrockModel, ok := bedrockModels[model]; ok {
		return anthropic.Model(bedrockModel)
	}
	return model
}

// maxResponseTokens bounds a single responder answer.
const maxResponseTokens = 1024

// ClaudeResponder is a Responder backed by the Anthropic Messages API.
type ClaudeResponder struct {
	id     string
	client *Client
}

// NewClaudeResponder creates a Claude-backed responder for the given
// registry id, sharing the provided client.
func NewClaudeResponder(id string, client *Client) *ClaudeResponder {
	return &ClaudeResponder{id: id, client: client}
}

// ID returns the responder's registry id.
func (r *ClaudeResponder) ID() string {
	return r.id
}

// Invoke sends the payload to the Messages API and returns the
// concatenated text blocks of the reply.
func (r *ClaudeResponder) Invoke(ctx context.Context, payload promptctx.Payload) (string, error) {
	messages := make([]anthropic.MessageParam, 0, len(payload.History)+1)
	for _, turn := range payload.History {
		block := anthropic.NewTextBlock(turn.Content)
		if turn.Role == "assistant" {
			messages = append(messages, anthropic.NewAssistantMessage(block))
		} else {
			messages = append(messages, anthropic.NewUserMessage(block))
		}
	}
	messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(payload.Message)))

	resp, err := r.client.inner.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     r.client.model,
		MaxTokens: maxResponseTokens,
		System: []anthropic.TextBlockParam{
			{Text: payload.System},
		},
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("responder %s: %w", r.id, err)
	}

	var text string
	for _, block := range resp.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			text += variant.Text
		}
	}
	return text, nil
}

// Factory creates responder implementations for registry ids so the
// routing pipeline never constructs API clients itself.
type Factory interface {
	NewResponder(id string) Responder
}

// ClaudeFactory creates ClaudeResponder instances over a shared client.
type ClaudeFactory struct {
	client *Client
}

// NewClaudeFactory creates a factory over the given client.
func NewClaudeFactory(client *Client) *ClaudeFactory {
	return &ClaudeFactory{client: client}
}

// NewResponder creates a Claude-backed responder for the id.
func (f *ClaudeFactory) NewResponder(id string) Responder {
	return NewClaudeResponder(id, f.client)
}
