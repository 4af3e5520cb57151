package events

import (
	"io"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/pkg/errors"
)

// Transcript appends every message payload it handles as one line to a writer.
type Transcript struct {
	mu sync.Mutex
	w  io.Writer
}

func NewTranscript(w io.Writer) *Transcript {
	return &Transcript{w: w}
}

func (t *Transcript) Handle(msg *message.Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	line := append(append([]byte{}, msg.Payload...), '\n')
	if _, err := t.w.Write(line); err != nil {
		return errors.Wrap(err, "could not write transcript")
	}
	return nil
}
