package render

import (
	"bytes"
	"testing"

	"github.com/go-go-golems/nexus/pkg/conversation"
	"github.com/go-go-golems/nexus/pkg/review"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConsole(t *testing.T, options ...ConsoleOption) (*Console, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	c, err := NewConsole(buf, options...)
	require.NoError(t, err)
	return c, buf
}

func newTurn(initial, review_, final string, revisions int) *review.Turn {
	query := conversation.NewNode(conversation.NewMessage(
		"alice", conversation.KindHuman, conversation.RoleUser, "alice:\n@GPT-OPS restart nginx",
	))
	response := conversation.NewNode(conversation.NewMessage(
		"GPT-OPS", conversation.KindResponse, conversation.RoleAssistant, "Revision: #0\n"+final,
	))
	query.AddChild(response)
	return &review.Turn{
		Query:           query,
		Response:        response,
		Revisions:       revisions,
		InitialResponse: initial,
		FirstReview:     review_,
		LastReview:      review_,
		FinalDraft:      final,
	}
}

func TestWriteMarkdown(t *testing.T) {
	c, buf := newTestConsole(t)
	require.NoError(t, c.WriteMarkdown("NEXUS:", "hello world"))

	out := buf.String()
	assert.Contains(t, out, "NEXUS:")
	assert.Contains(t, out, "-------------------------")
	assert.Contains(t, out, "hello world")
}

func TestWriteShell(t *testing.T) {
	c, buf := newTestConsole(t)
	require.NoError(t, c.WriteShell("uptime", "up 3 days", ""))
	assert.Contains(t, buf.String(), "Console: uptime")
	assert.Contains(t, buf.String(), "up 3 days")
	assert.NotContains(t, buf.String(), "no output")

	buf.Reset()
	require.NoError(t, c.WriteShell("false", "", "exit status 1"))
	assert.Contains(t, buf.String(), "command produced no output")
	assert.Contains(t, buf.String(), "Console (error): false")
	assert.Contains(t, buf.String(), "exit status 1")
}

func TestWriteDiff(t *testing.T) {
	c, buf := newTestConsole(t)
	require.NoError(t, c.WriteDiff("one\ntwo\nthree\n", "one\n2\nthree\n"))

	out := buf.String()
	assert.Contains(t, out, "[REVISION NOTES]")
	assert.Contains(t, out, "- two")
	assert.Contains(t, out, "+ 2")
	assert.Contains(t, out, "  one")

	buf.Reset()
	require.NoError(t, c.WriteDiff("same", "same"))
	assert.Empty(t, buf.String())
}

func TestWriteTurnQuiet(t *testing.T) {
	c, buf := newTestConsole(t)
	require.NoError(t, c.WriteTurn(newTurn("draft", "fine", "draft", 0)))

	out := buf.String()
	assert.Contains(t, out, "NEXUS:")
	assert.Contains(t, out, "Revision: #0")
	assert.NotContains(t, out, "Initial Reply")
}

func TestWriteTurnVerbose(t *testing.T) {
	c, buf := newTestConsole(t, WithVerbose(true), WithUser("alice"))
	require.NoError(t, c.WriteTurn(newTurn("draft", "looks fine", "draft", 0)))

	out := buf.String()
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "restart nginx")
	assert.Contains(t, out, "Initial Reply")
	assert.Contains(t, out, "looks fine")
	assert.Contains(t, out, "No Revision Requested")
	assert.NotContains(t, out, "REVISION NOTES")
	assert.NotContains(t, out, "Final grade")
}

func TestWriteTurnVerboseRevised(t *testing.T) {
	c, buf := newTestConsole(t, WithVerbose(true))
	turn := newTurn("first draft", "edit: true", "second draft", 2)
	turn.Verdict = &review.Verdict{Grade: 91}
	require.NoError(t, c.WriteTurn(turn))

	out := buf.String()
	assert.Contains(t, out, "revision 2")
	assert.Contains(t, out, "second draft")
	assert.Contains(t, out, "REVISION NOTES")
	assert.NotContains(t, out, "No Revision Requested")
	assert.Contains(t, out, "Final grade: 91")
}

func TestReportOnlyWhenVerbose(t *testing.T) {
	c, buf := newTestConsole(t)
	c.Report(review.Event{Title: "First Review", Text: "ok"})
	assert.Empty(t, buf.String())

	c, buf = newTestConsole(t, WithVerbose(true))
	c.Report(review.Event{Title: "First Review", Text: "ok"})
	assert.Contains(t, buf.String(), "First Review")
}

func TestWriteError(t *testing.T) {
	c, buf := newTestConsole(t)
	require.NoError(t, c.WriteError(errors.New("boom")))
	assert.Equal(t, "error: boom\n", buf.String())
}

func TestLineDiff(t *testing.T) {
	assert.Nil(t, LineDiff("a\nb\n", "a\nb\n"))

	lines := LineDiff("a\nb\n", "a\nc\n")
	assert.Equal(t, []Line{
		{Type: LineContext, Text: "a"},
		{Type: LineRemoved, Text: "b"},
		{Type: LineAdded, Text: "c"},
	}, lines)
}

func TestWithStylesPlainOutput(t *testing.T) {
	styles := DefaultStyles()
	styles.Error = styles.Warning
	c, buf := newTestConsole(t, WithStyles(styles), WithColor(false))
	require.NoError(t, c.WriteError(errors.New("boom")))
	assert.Equal(t, "error: boom\n", buf.String())
}
