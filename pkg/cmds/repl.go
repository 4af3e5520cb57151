package cmds

import (
	"context"
	"io"
	"strings"

	"github.com/go-go-golems/nexus/pkg/review"
	"github.com/go-go-golems/nexus/pkg/shell"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	QueryPrompt = "What is your query"
	InputPrompt = "<<<"
	ExitNotice  = "\nExiting...\n"
)

// Turner runs one query through the review protocol.
type Turner interface {
	Ask(ctx context.Context, text string) (*review.Turn, error)
}

// Output is what the loop writes to the operator.
type Output interface {
	WriteTurn(turn *review.Turn) error
	WriteShell(command string, stdout string, stderr string) error
	WriteError(err error) error
	WriteNotice(text string) error
}

// Loop answers a first query and, when interactive, keeps reading operator input.
// Lines starting with "!" are shell escapes, everything else is a new turn.
type Loop struct {
	turns       Turner
	shell       shell.Runner
	asker       Asker
	output      Output
	interactive bool
}

type LoopOption func(*Loop)

func WithInteractive(interactive bool) LoopOption {
	return func(l *Loop) {
		l.interactive = interactive
	}
}

func WithShell(runner shell.Runner) LoopOption {
	return func(l *Loop) {
		l.shell = runner
	}
}

func NewLoop(turns Turner, asker Asker, output Output, options ...LoopOption) *Loop {
	ret := &Loop{
		turns:  turns,
		shell:  shell.NewShell(),
		asker:  asker,
		output: output,
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// AskQuery prompts for a query when none was given on the command line.
func AskQuery(asker Asker) (string, error) {
	for {
		query, err := asker.Ask(QueryPrompt)
		if err != nil {
			return "", err
		}
		if query != "" {
			return query, nil
		}
	}
}

// Run answers query. Outside interactive mode a failed turn is returned as error;
// inside it the fault is shown and the loop waits for the next input.
func (l *Loop) Run(ctx context.Context, query string) error {
	if err := l.turn(ctx, query); err != nil {
		if !l.interactive {
			return err
		}
		if err := l.output.WriteError(err); err != nil {
			return err
		}
	}

	if !l.interactive {
		return nil
	}

	for {
		if ctx.Err() != nil {
			return l.exit()
		}

		line, err := l.asker.Ask(InputPrompt)
		switch {
		case errors.Is(err, ErrInterrupted), errors.Is(err, io.EOF):
			return l.exit()
		case err != nil:
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "!") {
			err = l.runShell(ctx, strings.TrimSpace(line[1:]))
		} else {
			err = l.turn(ctx, line)
		}
		if err != nil {
			var fault *review.ServiceFault
			if !errors.As(err, &fault) {
				log.Debug().Err(err).Msg("input failed")
			}
			if err := l.output.WriteError(err); err != nil {
				return err
			}
		}
	}
}

func (l *Loop) turn(ctx context.Context, text string) error {
	turn, err := l.turns.Ask(ctx, text)
	if err != nil {
		return err
	}
	return l.output.WriteTurn(turn)
}

func (l *Loop) runShell(ctx context.Context, command string) error {
	stdout, stderr, err := l.shell.Run(ctx, command)
	if err != nil {
		return err
	}
	return l.output.WriteShell(command, stdout, stderr)
}

func (l *Loop) exit() error {
	return l.output.WriteNotice(ExitNotice)
}
