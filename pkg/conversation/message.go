package conversation

import (
	"fmt"

	"github.com/go-go-golems/nexus/pkg/settings"
	"github.com/huandu/go-clone"
)

// Kind classifies where a message comes from inside the protocol.
type Kind string

const (
	KindCore     Kind = "core"
	KindHuman    Kind = "human"
	KindResponse Kind = "response"
	KindRevise   Kind = "revise"
)

func (k Kind) Valid() bool {
	switch k {
	case KindCore, KindHuman, KindResponse, KindRevise:
		return true
	default:
		return false
	}
}

type Role string

const (
	RoleSystem    Role = "system"
	RoleAssistant Role = "assistant"
	RoleUser      Role = "user"
)

func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleAssistant, RoleUser:
		return true
	default:
		return false
	}
}

// RenderMode selects which content variant of a message goes into a request.
type RenderMode int

const (
	RenderFull RenderMode = iota
	RenderBrief
)

func (m RenderMode) String() string {
	if m == RenderBrief {
		return "brief"
	}
	return "full"
}

// SelectRenderMode renders a message in full when it is addressed to the persona being queried,
// when a human wrote it, or when it is the pending head of the chain. Everything else is brief.
func SelectRenderMode(isTarget, isHuman, isPendingHead bool) RenderMode {
	if isTarget || isHuman || isPendingHead {
		return RenderFull
	}
	return RenderBrief
}

// ChatMessage is a single role/content pair as sent to the completion service.
type ChatMessage struct {
	Role    Role   `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}

// Message is one conversational utterance. Messages are not mutated once built;
// use WithContent to derive a rewritten copy.
type Message struct {
	Agent   string `json:"agent" yaml:"agent"`
	Kind    Kind   `json:"kind" yaml:"kind"`
	Role    Role   `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
	Brief   string `json:"brief,omitempty" yaml:"brief,omitempty"`
	// Target is the persona a human query is addressed to.
	Target string `json:"target,omitempty" yaml:"target,omitempty"`
	// Options replaces the stage defaults when this message is the pending head of a request.
	Options *settings.CompletionOptions `json:"options,omitempty" yaml:"options,omitempty"`
}

type MessageOption func(*Message)

func WithBrief(brief string) MessageOption {
	return func(m *Message) {
		m.Brief = brief
	}
}

func WithTarget(target string) MessageOption {
	return func(m *Message) {
		m.Target = target
	}
}

func WithOptions(options *settings.CompletionOptions) MessageOption {
	return func(m *Message) {
		m.Options = options
	}
}

func NewMessage(agent string, kind Kind, role Role, content string, options ...MessageOption) *Message {
	ret := &Message{
		Agent:   agent,
		Kind:    kind,
		Role:    role,
		Content: content,
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// WithContent returns a deep copy of the message carrying new full content.
// The brief is dropped since it summarized the previous content.
func (m *Message) WithContent(content string) *Message {
	ret := clone.Clone(m).(*Message)
	ret.Content = content
	ret.Brief = ""
	return ret
}

// Digest renders the message for a request addressed to target.
func (m *Message) Digest(path Path, target string, pendingHead bool) ChatMessage {
	mode := SelectRenderMode(m.Agent == target, m.Kind == KindHuman, pendingHead)
	content := m.Content
	if mode == RenderBrief && m.Brief != "" {
		content = m.Brief
	}
	return ChatMessage{Role: m.Role, Content: content}
}

func (m *Message) String() string {
	return fmt.Sprintf("agent=%s, role=%s, content=%s", m.Agent, m.Role, m.Content)
}
