// Package anthropicprovider adapts llmprovider.Provider onto the
// Anthropic Claude Messages API. A MessagesClient sub-interface captures
// only the SDK surface used, so tests can substitute a fake without a
// live API key.
package anthropicprovider

import (
	"context"
	"errors"
	"fmt"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ospreyai/osprey/pkg/llmprovider"
)

// MessagesClient captures the subset of the Anthropic SDK client the
// adapter calls, satisfied by *sdk.MessageService in production and a
// fake in tests.
type MessagesClient interface {
	New(ctx context.Context, body sdk.MessageNewParams, opts...option.RequestOption) (*sdk.Message, error)
}

// RoleModels maps a configured model role (models.<role>) to
// the concrete Anthropic model identifier to use for it.
type RoleModels map[string]string

// Provider implements llmprovider.Provider on top of Anthropic Messages.
type Provider struct {
	msg MessagesClient
	roles RoleModels
	maxTokens int
}

// New builds a Provider from an Anthropic Messages client, a role-to-model
// map, and a default max_tokens applied when a request doesn't set one.
func New(msg MessagesClient, roles RoleModels, maxTokens int) (*Provider, error) {
	if msg == nil {
 return nil, errors.New("anthropicprovider: messages client is required")
	}
	if len(roles) == 0 {
 return nil, errors.New("anthropicprovider: at least one model role is required")
	}
	if maxTokens <= 0 {
 maxTokens = 4096
	}
	return &Provider{msg: msg, roles: roles, maxTokens: maxTokens}, nil
}

// NewFromAPIKey constructs a Provider using the default Anthropic HTTP
// client, reading ANTHROPIC_API_KEY via the SDK's usual environment
// lookup.
func NewFromAPIKey(apiKey string, roles RoleModels, maxTokens int) (*Provider, error) {
	if apiKey == "" {
 return nil, errors.New("anthropicprovider: api key is required")
	}
	client := sdk.NewClient(option.WithAPIKey(apiKey))
	return New(&client.Messages, roles, maxTokens)
}

func (p *Provider) CreateModel(_ context.Context, modelRole string) (string, error) {
	model, ok := p.roles[modelRole]
	if !ok {
 return "", fmt.Errorf("anthropicprovider: no model configured for role %q", modelRole)
	}
	return model, nil
}

func (p *Provider) CheckHealth(ctx context.Context) error {
	_, err := p.msg.New(ctx, sdk.MessageNewParams{
 Model: sdk.Model(p.roles[firstRole(p.roles)]),
 MaxTokens: 1,
 Messages: []sdk.MessageParam{
 sdk.NewUserMessage(sdk.NewTextBlock("ping")),
 },
	})
	if err != nil {
 return fmt.Errorf("anthropicprovider: health check failed: %w", err)
	}
	return nil
}

func (p *Provider) ExecuteCompletion(ctx context.Context, req llmprovider.Request) (llmprovider.Response, error) {
	model, err := p.CreateModel(ctx, req.ModelRole)
	if err != nil {
 return llmprovider.Response{}, err
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
 maxTokens = p.maxTokens
	}

	var system []sdk.TextBlockParam
	messages := make([]sdk.MessageParam, 0, len(req.Messages))
	for _, m := range req.Messages {
 switch m.Role {
 case llmprovider.RoleSystem:
 system = append(system, sdk.TextBlockParam{Text: m.Content})
 case llmprovider.RoleAssistant:
 messages = append(messages, sdk.NewAssistantMessage(sdk.NewTextBlock(m.Content)))
 default:
 messages = append(messages, sdk.NewUserMessage(sdk.NewTextBlock(m.Content)))
 }
	}
	if len(messages) == 0 {
 return llmprovider.Response{}, errors.New("anthropicprovider: at least one message is required")
	}

	params := sdk.MessageNewParams{
 Model: sdk.Model(model),
 MaxTokens: int64(maxTokens),
 Messages: messages,
	}
	if len(system) > 0 {
 params.System = system
	}
	if req.Temperature > 0 {
 params.Temperature = sdk.Float(req.Temperature)
	}

	msg, err := p.msg.New(ctx, params)
	if err != nil {
 if isRateLimited(err) {
 return llmprovider.Response{}, fmt.Errorf("%w: %w", llmprovider.ErrRateLimited, err)
 }
 return llmprovider.Response{}, fmt.Errorf("anthropicprovider: messages.new: %w", err)
	}

	text := concatenateText(msg)
	resp := llmprovider.Response{
 Text: text,
 Usage: llmprovider.Usage{
 InputTokens: int(msg.Usage.InputTokens),
 OutputTokens: int(msg.Usage.OutputTokens),
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

func concatenateText(msg *sdk.Message) string {
	var out string
	for _, block := range msg.Content {
 if text := block.Text; text != "" {
 out += text
 }
	}
	return out
}

func firstRole(roles RoleModels) string {
	for role := range roles {
 return role
	}
	return ""
}

func isRateLimited(err error) bool {
	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
 return apiErr.StatusCode == 429
	}
	return false
}
