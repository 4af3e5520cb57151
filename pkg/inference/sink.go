package inference

import (
	"time"

	"github.com/go-go-golems/nexus/pkg/conversation"
	"github.com/go-go-golems/nexus/pkg/settings"
	"github.com/google/uuid"
)

type Phase string

const (
	PhaseRequest  Phase = "request"
	PhaseResponse Phase = "response"
	PhaseError    Phase = "error"
)

// Record describes one side of a completion call. The request and response records
// of a call share the same ID.
type Record struct {
	ID         uuid.UUID                  `json:"id"`
	Event      string                     `json:"event"`
	Slug       string                     `json:"slug"`
	Phase      Phase                      `json:"phase"`
	Time       time.Time                  `json:"time"`
	Request    *conversation.Request      `json:"request,omitempty"`
	Options    settings.CompletionOptions `json:"options"`
	TokenCount int                        `json:"token_count,omitempty"`
	Completion *Completion                `json:"completion,omitempty"`
	Duration   time.Duration              `json:"duration,omitempty"`
	Error      string                     `json:"error,omitempty"`
}

// EventSink receives request/response records. Sinks are append-only.
type EventSink interface {
	PublishRecord(record *Record) error
}
