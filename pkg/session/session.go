// Package session names a run and lays out its log directory.
package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	MaxNameLength    = 64
	trimmedLength    = 61
	logSuffix        = "nexus.log"
	transcriptSuffix = "transcript.jsonl"
)

// TrimName shortens names longer than MaxNameLength to 61 characters followed by "...".
func TrimName(name string) string {
	runes := []rune(name)
	if len(runes) <= MaxNameLength {
		return name
	}
	return string(runes[:trimmedLength]) + "..."
}

// sanitize makes name usable as a single path component.
func sanitize(name string) string {
	name = strings.TrimSpace(name)
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', 0:
			return '_'
		case '\n', '\r', '\t':
			return ' '
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." {
		return "session"
	}
	return name
}

type Session struct {
	ID      uuid.UUID
	Name    string
	Started time.Time
	// Dir is logs/<date>/<HHMMSS>-<name> below the root the session was created in.
	Dir     string
	LogFile string
	// TranscriptFile receives one json record per completion request and response.
	TranscriptFile string
}

// New creates the log directory of a session named name below root.
func New(root string, name string, now time.Time) (*Session, error) {
	name = TrimName(strings.TrimSpace(name))
	if name == "" {
		return nil, errors.New("session needs a name")
	}

	dir := filepath.Join(
		root,
		"logs",
		now.Format("2006-01-02"),
		now.Format("150405")+"-"+sanitize(name),
	)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "could not create session directory %s", dir)
	}

	return &Session{
		ID:             uuid.New(),
		Name:           name,
		Started:        now,
		Dir:            dir,
		LogFile:        filepath.Join(dir, fmt.Sprintf("%d-%s", now.Unix(), logSuffix)),
		TranscriptFile: filepath.Join(dir, fmt.Sprintf("%d-%s", now.Unix(), transcriptSuffix)),
	}, nil
}

// OpenTranscript opens the transcript file for appending.
func (s *Session) OpenTranscript() (*os.File, error) {
	f, err := os.OpenFile(s.TranscriptFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errors.Wrap(err, "could not open transcript")
	}
	return f, nil
}

// LogWriter returns a rotating writer for the session log file.
func (s *Session) LogWriter() *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   s.LogFile,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}
}
