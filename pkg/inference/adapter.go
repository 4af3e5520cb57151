package inference

import (
	"context"
	"time"

	"github.com/go-go-golems/nexus/pkg/conversation"
	"github.com/go-go-golems/nexus/pkg/settings"
	"github.com/google/uuid"
	"github.com/iancoleman/strcase"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

var ErrEmptyCompletion = errors.New("completion returned no choices")

// Adapter invokes an Engine and records each call to its sinks, once before and
// once after. Faults from the engine are returned as they are; there is no retry.
type Adapter struct {
	engine Engine
	sinks  []EventSink
	tokens TokenCounter
	now    func() time.Time
}

func NewAdapter(engine Engine, options ...Option) (*Adapter, error) {
	ret := &Adapter{
		engine: engine,
		now:    time.Now,
	}
	for _, option := range options {
		if err := option(ret); err != nil {
			return nil, err
		}
	}
	return ret, nil
}

// Complete sends req with options. event names the protocol step in the records.
func (a *Adapter) Complete(
	ctx context.Context,
	event string,
	req *conversation.Request,
	options settings.CompletionOptions,
) (*Completion, error) {
	id := uuid.New()
	slug := strcase.ToSnake(event)

	request := &Record{
		ID:      id,
		Event:   event,
		Slug:    slug,
		Phase:   PhaseRequest,
		Time:    a.now(),
		Request: req,
		Options: options,
	}
	if a.tokens != nil {
		request.TokenCount = a.tokens.CountTokens(req)
	}
	a.publish(request)

	start := a.now()
	completion, err := a.engine.Complete(ctx, req, options)
	if err == nil && len(completion.Choices) == 0 {
		err = ErrEmptyCompletion
	}
	duration := a.now().Sub(start)

	if err != nil {
		a.publish(&Record{
			ID:       id,
			Event:    event,
			Slug:     slug,
			Phase:    PhaseError,
			Time:     a.now(),
			Options:  options,
			Duration: duration,
			Error:    err.Error(),
		})
		return nil, err
	}

	a.publish(&Record{
		ID:         id,
		Event:      event,
		Slug:       slug,
		Phase:      PhaseResponse,
		Time:       a.now(),
		Options:    options,
		Completion: completion,
		Duration:   duration,
	})

	return completion, nil
}

func (a *Adapter) publish(record *Record) {
	for _, sink := range a.sinks {
		if err := sink.PublishRecord(record); err != nil {
			log.Warn().Err(err).Str("event", record.Event).Msg("could not publish completion record")
		}
	}
}
