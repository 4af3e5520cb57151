package cmds

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/tcnksm/go-input"
)

// ErrInterrupted is returned by an Asker when the operator pressed ctrl-c.
var ErrInterrupted = input.ErrInterrupted

// Asker reads one line of operator input.
type Asker interface {
	Ask(prompt string) (string, error)
}

type eofReader struct {
	r   io.Reader
	eof bool
}

func (e *eofReader) Read(p []byte) (int, error) {
	n, err := e.r.Read(p)
	if err == io.EOF {
		e.eof = true
	}
	return n, err
}

// TerminalAsker prompts on a terminal. It returns ErrInterrupted on ctrl-c and
// io.EOF once the input is exhausted.
type TerminalAsker struct {
	ui     *input.UI
	reader *eofReader
}

var _ Asker = (*TerminalAsker)(nil)

func NewTerminalAsker(r io.Reader, w io.Writer) *TerminalAsker {
	reader := &eofReader{r: r}
	return &TerminalAsker{
		ui: &input.UI{
			Writer: w,
			Reader: reader,
		},
		reader: reader,
	}
}

func (t *TerminalAsker) Ask(prompt string) (string, error) {
	answer, err := t.ui.Ask(prompt, &input.Options{
		HideOrder: true,
	})
	if err != nil {
		if errors.Is(err, input.ErrInterrupted) {
			return "", ErrInterrupted
		}
		return "", errors.Wrap(err, "could not read input")
	}
	answer = strings.TrimSpace(answer)
	if answer == "" && t.reader.eof {
		return "", io.EOF
	}
	return answer, nil
}
