// Package llmprovider defines the LLM provider contract.4
// describes: "each is an object implementing create_model,
// execute_completion, check_health. Requests carry a role, a prompt, an
// optional structured-output schema, and a timeout; responses are either
// parsed text or parsed structured output."
//
// Concrete adapters (anthropicprovider, openaiprovider) are reference
// implementations behind this interface — the graph nodes (pkg/graph)
// depend only on Provider, never on a specific SDK.
package llmprovider

import (
	"context"
	"time"
)

// Role names a chat turn, mirroring state.Role so prompts built from
// conversation history round-trip without translation.
type Role string

const (
	RoleSystem Role = "system"
	RoleUser Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a prompt.
type Message struct {
	Role Role
	Content string
}

// Request is one completion call. ModelRole names the
// configured role ("classifier", "orchestrator", "task_extraction",...)
// so CreateModel can resolve the concrete model identifier for it.
// Schema, when set, requires the response to validate against this
// JSON Schema (draft 2020-12, santhosh-tekuri/jsonschema/v6) before
// ExecuteCompletion returns it as Response.Structured.
type Request struct {
	ModelRole string
	Messages []Message
	Schema []byte
	Temperature float64
	MaxTokens int
	Timeout time.Duration
}

// Response is a completion result. Structured is only populated when the
// request carried a Schema and the raw text validated against it.
type Response struct {
	Text string
	Structured map[string]any
	Usage Usage
}

// Usage reports token accounting for cost/rate-limit bookkeeping.
type Usage struct {
	InputTokens int
	OutputTokens int
}

// Provider is the LLM provider contract every adapter implements
//.
type Provider interface {
	// CreateModel resolves the concrete model identifier configured for a
	// role (models.<role> = provider + model id).
	CreateModel(ctx context.Context, modelRole string) (string, error)

	// ExecuteCompletion issues one completion call, validating structured
	// output against Request.Schema when present.
	ExecuteCompletion(ctx context.Context, req Request) (Response, error)

	// CheckHealth reports whether the provider can currently serve
	// requests (credentials valid, endpoint reachable).
	CheckHealth(ctx context.Context) error
}

// ErrRateLimited is wrapped by adapters when the upstream provider signals
// a rate limit, so middleware (pkg/llmprovider/ratelimit) can react to it
// without depending on a specific SDK's error type.
var ErrRateLimited = providerError("llm provider: rate limited")

type providerError string

func (e providerError) Error() string { return string(e) }
