// Package openaiprovider adapts llmprovider.Provider onto the OpenAI Chat
// Completions API via github.com/sashabaranov/go-openai, grounded on
// goa-ai's features/model/openai/client.go ChatClient sub-interface
// pattern.
package openaiprovider

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ospreyai/osprey/pkg/llmprovider"
)

// ChatClient captures the subset of the go-openai client the adapter
// calls, satisfied by *openai.Client in production and a fake in tests.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// RoleModels maps a configured model role to the concrete OpenAI model
// identifier to use for it.
type RoleModels map[string]string

// Provider implements llmprovider.Provider on top of OpenAI Chat
// Completions.
type Provider struct {
	chat      ChatClient
	roles     RoleModels
	maxTokens int
}

// New builds a Provider from an OpenAI chat client and a role-to-model map.
func New(chat ChatClient, roles RoleModels, maxTokens int) (*Provider, error) {
	if chat == nil {
		return nil, errors.New("openaiprovider: chat client is required")
	}
	if len(roles) == 0 {
		return nil, errors.New("openaiprovider: at least one model role is required")
	}
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	return &Provider{chat: chat, roles: roles, maxTokens: maxTokens}, nil
}

// NewFromAPIKey constructs a Provider using the default go-openai HTTP
// client.
func NewFromAPIKey(apiKey string, roles RoleModels, maxTokens int) (*Provider, error) {
	if apiKey == "" {
		return nil, errors.New("openaiprovider: api key is required")
	}
	return New(openai.NewClient(apiKey), roles, maxTokens)
}

func (p *Provider) CreateModel(_ context.Context, modelRole string) (string, error) {
	model, ok := p.roles[modelRole]
	if !ok {
		return "", fmt.Errorf("openaiprovider: no model configured for role %q", modelRole)
	}
	return model, nil
}

func (p *Provider) CheckHealth(ctx context.Context) error {
	model := firstRole(p.roles)
	_, err := p.chat.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     p.roles[model],
		MaxTokens: 1,
		Messages:  []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: "ping"}},
	})
	if err != nil {
		return fmt.Errorf("openaiprovider: health check failed: %w", err)
	}
	return nil
}

func (p *Provider) ExecuteCompletion(ctx context.Context, req llmprovider.Request) (llmprovider.Response, error) {
	model, err := p.CreateModel(ctx, req.ModelRole)
	if err != nil {
		return llmprovider.Response{}, err
	}
	if len(req.Messages) == 0 {
		return llmprovider.Response{}, errors.New("openaiprovider: at least one message is required")
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = p.maxTokens
	}

	messages := make([]openai.ChatCompletionMessage, len(req.Messages))
	for i, m := range req.Messages {
		messages[i] = openai.ChatCompletionMessage{Role: string(m.Role), Content: m.Content}
	}

	request := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: float32(req.Temperature),
		MaxTokens:   maxTokens,
	}
	if len(req.Schema) > 0 {
		request.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	completion, err := p.chat.CreateChatCompletion(ctx, request)
	if err != nil {
		if isRateLimited(err) {
			return llmprovider.Response{}, fmt.Errorf("%w: %w", llmprovider.ErrRateLimited, err)
		}
		return llmprovider.Response{}, fmt.Errorf("openaiprovider: chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return llmprovider.Response{}, errors.New("openaiprovider: response had no choices")
	}

	text := completion.Choices[0].Message.Content
	resp := llmprovider.Response{
		Text: text,
		Usage: llmprovider.Usage{
			InputTokens:  completion.Usage.PromptTokens,
			OutputTokens: completion.Usage.CompletionTokens,
		},
	}
	if len(req.Schema) > 0 {
		structured, err := llmprovider.ValidateStructured(req.Schema, text)
		if err != nil {
			return llmprovider.Response{}, err
		}
		resp.Structured = structured
	}
	return resp, nil
}

func firstRole(roles RoleModels) string {
	for role := range roles {
		return role
	}
	return ""
}

func isRateLimited(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	return false
}
