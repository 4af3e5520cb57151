package review

import (
	"context"

	"github.com/go-go-golems/nexus/pkg/conversation"
	"github.com/go-go-golems/nexus/pkg/inference"
	"github.com/go-go-golems/nexus/pkg/settings"
)

// Completer is satisfied by *inference.Adapter.
type Completer interface {
	Complete(ctx context.Context, event string, req *conversation.Request, options settings.CompletionOptions) (*inference.Completion, error)
}

// Prompts builds the persona messages appended during a turn. The text of the
// messages is opaque to the orchestrator; only agent, kind and target matter.
type Prompts interface {
	// Query wraps operator input into a human message addressed to the answering persona.
	Query(text string) *conversation.Message
	ReviewRequest() *conversation.Message
	RevisionRequest(round int, maxRounds int) *conversation.Message
}

// Event is an intermediate result reported while a turn is running.
type Event struct {
	State State
	Round int
	Title string
	Text  string
}

type Reporter interface {
	Report(event Event)
}

type NullReporter struct{}

func (NullReporter) Report(Event) {}

var _ Reporter = NullReporter{}
