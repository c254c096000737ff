package openaiprovider

import (
	"context"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ospreyai/osprey/pkg/llmprovider"
)

type fakeChat struct {
	response openai.ChatCompletionResponse
	err      error
}

func (f *fakeChat) CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return f.response, nil
}

func TestExecuteCompletion_ReturnsText(t *testing.T) {
	fake := &fakeChat{response: openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: "hello"}}},
	}}
	p, err := New(fake, RoleModels{"response": "gpt-4o"}, 4096)
	require.NoError(t, err)

	resp, err := p.ExecuteCompletion(context.Background(), llmprovider.Request{
		ModelRole: "response",
		Messages:  []llmprovider.Message{{Role: llmprovider.RoleUser, Content: "hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", resp.Text)
}

func TestExecuteCompletion_ValidatesStructuredOutput(t *testing.T) {
	fake := &fakeChat{response: openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{
			Content: `{"is_relevant":true,"rationale":"channel read matches"}`,
		}}},
	}}
	p, err := New(fake, RoleModels{"classifier": "gpt-4o-mini"}, 4096)
	require.NoError(t, err)

	schema := []byte(`{"type":"object","required":["is_relevant","rationale"]}`)
	resp, err := p.ExecuteCompletion(context.Background(), llmprovider.Request{
		ModelRole: "classifier",
		Messages:  []llmprovider.Message{{Role: llmprovider.RoleUser, Content: "hi"}},
		Schema:    schema,
	})
	require.NoError(t, err)
	assert.Equal(t, true, resp.Structured["is_relevant"])
}

func TestExecuteCompletion_NoChoicesErrors(t *testing.T) {
	p, err := New(&fakeChat{response: openai.ChatCompletionResponse{}}, RoleModels{"response": "gpt-4o"}, 4096)
	require.NoError(t, err)

	_, err = p.ExecuteCompletion(context.Background(), llmprovider.Request{
		ModelRole: "response",
		Messages:  []llmprovider.Message{{Role: llmprovider.RoleUser, Content: "hi"}},
	})
	assert.Error(t, err)
}

func TestCreateModel_UnknownRoleErrors(t *testing.T) {
	p, err := New(&fakeChat{}, RoleModels{"response": "gpt-4o"}, 4096)
	require.NoError(t, err)

	_, err = p.CreateModel(context.Background(), "unknown")
	assert.Error(t, err)
}
