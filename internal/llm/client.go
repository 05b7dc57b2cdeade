package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// CompletionRequest is a single system+user exchange that yields one reply
type CompletionRequest struct {
	System      string
	Prompt      string
	Temperature float64
	// Model overrides the configured model when set
	Model string
}

// Client is an abstraction over LLM providers
type Client interface {
	// Complete requests exactly one completion. It never retries.
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	// Model returns the default model name
	Model() string
	// Close releases any resources held by the client
	Close() error
}

// NewClient creates a new LLM client based on configuration
func NewClient(ctx context.Context, config *Config, apiKey string) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Provider {
	case ProviderGemini:
		return NewGeminiClient(ctx, config, apiKey)
	case ProviderOpenRouter, "":
		return NewOpenRouterClient(config, apiKey)
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", config.Provider)
	}
}

// GeminiClient implements Client for Google Gemini
type GeminiClient struct {
	client *genai.Client
	config *Config
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(ctx context.Context, config *Config, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, &NotConfiguredError{Provider: ProviderGemini}
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		config: config,
	}, nil
}

// Complete generates one reply
func (c *GeminiClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	model := c.client.GenerativeModel(c.config.GetModel(req.Model))
	model.SetTemperature(float32(req.Temperature))
	model.SetMaxOutputTokens(int32(c.config.maxTokens()))
	model.SetCandidateCount(1)
	if req.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		statusErr := &StatusError{Provider: ProviderGemini, Message: err.Error(), Cause: err}
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			statusErr.StatusCode = apiErr.Code
			statusErr.Message = apiErr.Message
		}
		return "", statusErr
	}

	text, err := extractTextFromResponse(resp)
	if err != nil {
		return "", &ResponseError{Provider: ProviderGemini, Message: err.Error()}
	}
	return text, nil
}

// Model returns the configured default model
func (c *GeminiClient) Model() string {
	return c.config.GetModel("")
}

// Close releases resources held by the client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// extractTextFromResponse extracts text from Gemini API response
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	text := CleanReply(strings.Join(parts, ""))
	if text == "" {
		return "", fmt.Errorf("no text parts in response")
	}
	return text, nil
}
