package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/ollama/ollama/api"

	"github.com/CiZaii/ai-middle-platform/pkg/llm"
)

// Client is a ChatClient backed by an Ollama server.
type Client struct {
	model  string
	client *api.Client
}

type headerTransport struct {
	headers map[string]string
	rt      http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	for k, v := range t.headers {
		if r.Header.Get(k) == "" {
			r.Header.Set(k, v)
		}
	}
	return t.rt.RoundTrip(r)
}

// New creates a Client for the Ollama server at baseURL (or the default
// local server when empty).
func New(baseURL string, apiKey string, model string) (*Client, error) {
	if baseURL == "" {
		baseURL = "http://127.0.0.1:11434"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	httpClient := http.DefaultClient
	if apiKey != "" {
		httpClient = &http.Client{
			Transport: &headerTransport{
				headers: map[string]string{
					"Authorization": "Bearer " + apiKey,
				},
				rt: http.DefaultTransport,
			},
		}
	}

	return &Client{
		model:  model,
		client: api.NewClient(u, httpClient),
	}, nil
}

// Generate sends a single-turn prompt and returns the assistant text.
// Schema options map onto Ollama's format parameter.
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

	stream := false
	req := &api.ChatRequest{
		Model: options.Model,
		Messages: []api.Message{
			{Role: "user", Content: prompt},
		},
		Stream:  &stream,
		Options: map[string]any{"temperature": options.Temperature},
	}

	if options.Schema != nil {
		format, err := json.Marshal(options.Schema.Schema)
		if err == nil {
			req.Format = format
		}
	}

	var final api.ChatResponse
	if err := c.client.Chat(ctx, req, func(cr api.ChatResponse) error {
		final.Message.Content += cr.Message.Content
		return nil
	}); err != nil {
		return "", err
	}

	return final.Message.Content, nil
}
