package conversation

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Manager owns the conversation tree of one session.
type Manager struct {
	ConversationID uuid.UUID
	Root           *Node
	// Head is the node most recently appended through the manager.
	Head *Node
}

type ManagerOption func(*Manager)

func WithConversationID(conversationID uuid.UUID) ManagerOption {
	return func(m *Manager) {
		m.ConversationID = conversationID
	}
}

// NewManager builds the fixed scaffold: the first message becomes the root and every
// following message is appended to the active chain.
func NewManager(scaffold []*Message, options ...ManagerOption) *Manager {
	ret := &Manager{}
	for _, option := range options {
		option(ret)
	}
	if ret.ConversationID == uuid.Nil {
		ret.ConversationID = uuid.New()
	}

	for _, msg := range scaffold {
		ret.AppendActive(NewNode(msg))
	}

	return ret
}

// AppendActive appends node at the end of the active chain and returns it.
func (m *Manager) AppendActive(node *Node) *Node {
	if m.Root == nil {
		m.Root = node.SetPath(Path{1})
		m.Head = node
		return node
	}

	leaf := m.Root.Leaf()
	m.Root.AppendActive(node)
	m.Head = node

	log.Trace().
		Str("conversation_id", m.ConversationID.String()).
		Str("parent_path", leaf.Path.String()).
		Str("path", node.Path.String()).
		Str("agent", node.Message.Agent).
		Str("kind", string(node.Message.Kind)).
		Msg("appended conversation node")

	return node
}

// Request renders the active chain for target.
func (m *Manager) Request(target string, model string) *Request {
	return BuildRequest(m.Root, target, model)
}

// Conversation returns the messages of the active chain.
func (m *Manager) Conversation() []*Message {
	if m.Root == nil {
		return nil
	}
	chat := m.Root.ActiveChat()
	ret := make([]*Message, len(chat))
	for i, entry := range chat {
		ret[i] = entry.Message
	}
	return ret
}
