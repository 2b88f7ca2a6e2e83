package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/CiZaii/ai-middle-platform/pkg/llm"
)

// Client is a ChatClient backed by an OpenAI-compatible endpoint.
type Client struct {
	model  string
	client *openai.Client
}

// New creates a Client for the given endpoint. An empty baseURL targets
// the official OpenAI API.
func New(baseURL string, apiKey string, model string) *Client {
	options := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if baseURL != "" {
		options = append(options, option.WithBaseURL(baseURL))
	}

	client := openai.NewClient(options...)

	return &Client{
		model:  model,
		client: &client,
	}
}

// Generate sends a single-turn prompt to the chat model and returns the
// generated completion as plain text. When a schema option is present the
// request asks for JSON-schema constrained output.
func (c *Client) Generate(
	ctx context.Context,
	prompt string,
	opts ...llm.GenerateOption,
) (string, error) {
	options := llm.GenerateOptions{
		Model:       c.model,
		Temperature: 0.3,
	}
	for _, o := range opts {
		o(&options)
	}

	body := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(options.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(options.Temperature),
	}

	if options.Schema != nil {
		body.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        options.Schema.Name,
					Description: openai.String(options.Schema.Description),
					Schema:      options.Schema.Schema,
					Strict:      openai.Bool(true),
				},
			},
		}
	}

	response, err := c.client.Chat.Completions.New(ctx, body)
	if err != nil {
		return "", err
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no choices in response from model")
	}
	message := response.Choices[0].Message.Content
	if message == "" {
		return "", fmt.Errorf("empty response from model (finish_reason: %s)", response.Choices[0].FinishReason)
	}

	return message, nil
}
