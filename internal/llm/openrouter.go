package llm

import (
	"context"
	"errors"
	"net/http"

	"github.com/openai/openai-go/v3"
	oaioption "github.com/openai/openai-go/v3/option"
)

// OpenRouterClient implements Client against an OpenAI-compatible chat completions API
type OpenRouterClient struct {
	client *openai.Client
	config *Config
}

// NewOpenRouterClient creates a client for config.BaseURL. Retries are disabled.
func NewOpenRouterClient(config *Config, apiKey string, opts ...oaioption.RequestOption) (*OpenRouterClient, error) {
	if apiKey == "" {
		return nil, &NotConfiguredError{Provider: ProviderOpenRouter}
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultOpenRouterBaseURL
	}

	options := []oaioption.RequestOption{
		oaioption.WithAPIKey(apiKey),
		oaioption.WithBaseURL(baseURL),
		oaioption.WithMaxRetries(0),
	}
	options = append(options, opts...)

	client := openai.NewClient(options...)
	return &OpenRouterClient{
		client: &client,
		config: config,
	}, nil
}

// Complete requests a single chat completion
func (c *OpenRouterClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	messages := []openai.ChatCompletionMessageParamUnion{}
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.config.GetModel(req.Model)),
		Messages:    messages,
		MaxTokens:   openai.Int(int64(c.config.maxTokens())),
		Temperature: openai.Float(req.Temperature),
		N:           openai.Int(1),
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", &StatusError{
				Provider:   ProviderOpenRouter,
				StatusCode: apiErr.StatusCode,
				Message:    http.StatusText(apiErr.StatusCode),
				Cause:      err,
			}
		}
		return "", &StatusError{Provider: ProviderOpenRouter, Message: err.Error(), Cause: err}
	}

	if len(resp.Choices) == 0 {
		return "", &ResponseError{Provider: ProviderOpenRouter, Message: "no choices in response"}
	}

	text := CleanReply(resp.Choices[0].Message.Content)
	if text == "" {
		return "", &ResponseError{Provider: ProviderOpenRouter, Message: "empty completion"}
	}
	return text, nil
}

// Model returns the configured default model
func (c *OpenRouterClient) Model() string {
	return c.config.GetModel("")
}

// Close is a no-op; the HTTP client holds no dedicated resources
func (c *OpenRouterClient) Close() error {
	return nil
}
