// Package shell runs the operator's "!" escapes.
package shell

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Runner executes a command line and returns its trimmed output.
type Runner interface {
	Run(ctx context.Context, command string) (stdout string, stderr string, err error)
}

// Shell runs command lines through a POSIX shell.
type Shell struct {
	Path string
}

var _ Runner = (*Shell)(nil)

func NewShell() *Shell {
	return &Shell{Path: "sh"}
}

// Run executes command with "sh -c". A non-zero exit is not an error: its stderr is
// returned for display. Only a shell that cannot be started yields an error.
func (s *Shell) Run(ctx context.Context, command string) (string, string, error) {
	command = strings.TrimSpace(command)
	if command == "" {
		return "", "", errors.New("empty command")
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, s.Path, "-c", command)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	log.Debug().Str("command", command).Err(err).Msg("ran shell command")

	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return "", "", errors.Wrapf(err, "could not run %q", command)
	}

	return strings.TrimSpace(stdout.String()), strings.TrimSpace(stderr.String()), nil
}
