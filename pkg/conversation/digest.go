package conversation

// Request is the ordered payload sent to the completion service.
type Request struct {
	Model    string        `json:"model" yaml:"model"`
	Messages []ChatMessage `json:"messages" yaml:"messages"`
}

// BuildRequest renders the active chain of root for the target persona. Only the
// deepest entry of the chain is treated as the pending head.
func BuildRequest(root *Node, target string, model string) *Request {
	chat := root.ActiveChat()
	messages := make([]ChatMessage, 0, len(chat))
	for i, entry := range chat {
		messages = append(messages, entry.Message.Digest(entry.Path, target, i == len(chat)-1))
	}
	return &Request{
		Model:    model,
		Messages: messages,
	}
}
