//go:build windows

package cmds

import (
	"io"

	"github.com/pkg/errors"
)

// OpenTTY is not supported on windows; callers fall back to stdin and stdout.
func OpenTTY() (io.ReadWriteCloser, error) {
	return nil, errors.New("no controlling terminal on windows")
}
