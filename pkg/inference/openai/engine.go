package openai

import (
	"context"
	"io"

	"github.com/go-go-golems/nexus/pkg/conversation"
	"github.com/go-go-golems/nexus/pkg/inference"
	"github.com/go-go-golems/nexus/pkg/settings"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	go_openai "github.com/sashabaranov/go-openai"
)

// Engine talks to an OpenAI compatible chat completion endpoint.
type Engine struct {
	client *go_openai.Client
}

func NewEngine(client *go_openai.Client) *Engine {
	return &Engine{client: client}
}

func NewEngineFromSettings(s *settings.ClientSettings) (*Engine, error) {
	client, err := s.CreateClient()
	if err != nil {
		return nil, err
	}
	return NewEngine(client), nil
}

// MakeCompletionRequest converts a rendered request into the go-openai format.
func MakeCompletionRequest(req *conversation.Request, options settings.CompletionOptions) go_openai.ChatCompletionRequest {
	msgs := make([]go_openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, msg := range req.Messages {
		msgs = append(msgs, go_openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}
	return go_openai.ChatCompletionRequest{
		Model:           req.Model,
		Messages:        msgs,
		Temperature:     float32(options.Temperature),
		PresencePenalty: float32(options.PresencePenalty),
		Stream:          options.Stream,
	}
}

func (e *Engine) Complete(
	ctx context.Context,
	req *conversation.Request,
	options settings.CompletionOptions,
) (*inference.Completion, error) {
	request := MakeCompletionRequest(req, options)
	log.Debug().
		Str("model", request.Model).
		Int("num_messages", len(request.Messages)).
		Bool("stream", request.Stream).
		Msg("openai chat completion")

	if request.Stream {
		return e.completeStream(ctx, request)
	}

	resp, err := e.client.CreateChatCompletion(ctx, request)
	if err != nil {
		return nil, err
	}

	ret := &inference.Completion{
		ID:    resp.ID,
		Model: resp.Model,
		Usage: &inference.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
		},
	}
	for _, choice := range resp.Choices {
		ret.Choices = append(ret.Choices, inference.Choice{
			Message: conversation.ChatMessage{
				Role:    conversation.Role(choice.Message.Role),
				Content: choice.Message.Content,
			},
			FinishReason: string(choice.FinishReason),
		})
	}
	return ret, nil
}

// completeStream accumulates the streamed deltas into a single choice.
func (e *Engine) completeStream(ctx context.Context, request go_openai.ChatCompletionRequest) (*inference.Completion, error) {
	stream, err := e.client.CreateChatCompletionStream(ctx, request)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	ret := &inference.Completion{Model: request.Model}
	message := ""
	finishReason := ""
	for {
		response, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if ret.ID == "" {
			ret.ID = response.ID
		}
		if len(response.Choices) > 0 {
			message += response.Choices[0].Delta.Content
			if response.Choices[0].FinishReason != "" {
				finishReason = string(response.Choices[0].FinishReason)
			}
		}
	}

	ret.Choices = []inference.Choice{{
		Message: conversation.ChatMessage{
			Role:    conversation.RoleAssistant,
			Content: message,
		},
		FinishReason: finishReason,
	}}
	return ret, nil
}

var _ inference.Engine = (*Engine)(nil)
