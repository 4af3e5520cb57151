package inference

import (
	"context"

	"github.com/go-go-golems/nexus/pkg/conversation"
	"github.com/go-go-golems/nexus/pkg/settings"
)

// Engine is the transport to a completion service. Implementations perform exactly one
// call per invocation and return provider errors unchanged.
type Engine interface {
	Complete(ctx context.Context, req *conversation.Request, options settings.CompletionOptions) (*Completion, error)
}

type Choice struct {
	Message      conversation.ChatMessage `json:"message"`
	FinishReason string                   `json:"finish_reason,omitempty"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// Completion is the structured result of a completion call.
type Completion struct {
	ID      string   `json:"id,omitempty"`
	Model   string   `json:"model,omitempty"`
	Choices []Choice `json:"choices"`
	Usage   *Usage   `json:"usage,omitempty"`
}

// Content returns the text of the first choice, or "" when there is none.
func (c *Completion) Content() string {
	if c == nil || len(c.Choices) == 0 {
		return ""
	}
	return c.Choices[0].Message.Content
}

// EngineFunc adapts a function to the Engine interface.
type EngineFunc func(ctx context.Context, req *conversation.Request, options settings.CompletionOptions) (*Completion, error)

func (f EngineFunc) Complete(ctx context.Context, req *conversation.Request, options settings.CompletionOptions) (*Completion, error) {
	return f(ctx, req, options)
}

var _ Engine = EngineFunc(nil)
