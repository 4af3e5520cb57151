// Package render writes turns, shell output and revision diffs to a terminal.
package render

import (
	"embed"
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-go-golems/nexus/pkg/prompts"
	"github.com/go-go-golems/nexus/pkg/review"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(
	template.New("render").Funcs(sprig.TxtFuncMap()).ParseFS(templateFS, "templates/*.tmpl"),
)

const (
	DefaultWordWrap = 100

	plainStyle = "notty"
	colorStyle = "dark"
)

type Styles struct {
	Header  lipgloss.Style
	Rule    lipgloss.Style
	Added   lipgloss.Style
	Removed lipgloss.Style
	Context lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("141")),
		Rule:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Added:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Removed: lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		Context: lipgloss.NewStyle(),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		Error:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
	}
}

// Console is the operator facing output of a session. It also reports the
// intermediate results of a turn when verbose.
type Console struct {
	out      io.Writer
	color    bool
	verbose  bool
	wordWrap int
	user     string
	styles   Styles

	markdown *glamour.TermRenderer
}

var _ review.Reporter = (*Console)(nil)

type ConsoleOption func(*Console)

// WithColor switches between styled terminal output and plain text.
func WithColor(color bool) ConsoleOption {
	return func(c *Console) {
		c.color = color
	}
}

func WithVerbose(verbose bool) ConsoleOption {
	return func(c *Console) {
		c.verbose = verbose
	}
}

func WithWordWrap(width int) ConsoleOption {
	return func(c *Console) {
		c.wordWrap = width
	}
}

func WithUser(user string) ConsoleOption {
	return func(c *Console) {
		c.user = user
	}
}

func WithStyles(styles Styles) ConsoleOption {
	return func(c *Console) {
		c.styles = styles
	}
}

func NewConsole(out io.Writer, options ...ConsoleOption) (*Console, error) {
	ret := &Console{
		out:      out,
		wordWrap: DefaultWordWrap,
		user:     "user",
		styles:   DefaultStyles(),
	}
	for _, option := range options {
		option(ret)
	}

	style := plainStyle
	if ret.color {
		style = colorStyle
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(ret.wordWrap),
	)
	if err != nil {
		return nil, errors.Wrap(err, "could not create markdown renderer")
	}
	ret.markdown = r

	return ret, nil
}

// NewTerminalConsole writes to f, with colors only when f is a terminal.
func NewTerminalConsole(f *os.File, options ...ConsoleOption) (*Console, error) {
	isTerminal := isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	return NewConsole(f, append([]ConsoleOption{WithColor(isTerminal)}, options...)...)
}

func (c *Console) style(s lipgloss.Style, text string) string {
	if !c.color {
		return text
	}
	return s.Render(text)
}

func (c *Console) writeMarkdown(text string) error {
	rendered, err := c.markdown.Render(text)
	if err != nil {
		return errors.Wrap(err, "could not render markdown")
	}
	_, err = io.WriteString(c.out, rendered)
	return err
}

// WriteMarkdown writes a header line followed by body rendered as markdown.
func (c *Console) WriteMarkdown(header string, body string) error {
	_, err := fmt.Fprintf(c.out, "%s\n%s\n",
		c.style(c.styles.Header, header),
		c.style(c.styles.Rule, strings.Repeat("-", 25)),
	)
	if err != nil {
		return err
	}
	return c.writeMarkdown(body)
}

// WriteShell shows the result of a shell escape. Without stdout the command is
// shown as failed together with its stderr.
func (c *Console) WriteShell(command string, stdout string, stderr string) error {
	var b strings.Builder
	err := templates.ExecuteTemplate(&b, "shell.tmpl", map[string]interface{}{
		"Command": command,
		"Stdout":  stdout,
		"Stderr":  stderr,
	})
	if err != nil {
		return errors.Wrap(err, "could not render shell output")
	}
	if stdout == "" {
		if _, err := fmt.Fprintln(c.out, c.style(c.styles.Error, "command produced no output")); err != nil {
			return err
		}
	}
	return c.writeMarkdown(b.String())
}

// WriteDiff writes a line diff between two drafts, added lines in green and
// removed lines in red.
func (c *Console) WriteDiff(before string, after string) error {
	lines := LineDiff(before, after)
	if len(lines) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString(c.style(c.styles.Warning, "[REVISION NOTES]"))
	b.WriteString("\n")
	for _, line := range lines {
		switch line.Type {
		case LineAdded:
			b.WriteString(c.style(c.styles.Added, "+ "+line.Text))
		case LineRemoved:
			b.WriteString(c.style(c.styles.Removed, "- "+line.Text))
		default:
			b.WriteString(c.style(c.styles.Context, "  "+line.Text))
		}
		b.WriteString("\n")
	}
	_, err := io.WriteString(c.out, b.String())
	return err
}

// WriteError reports a failed turn.
func (c *Console) WriteError(err error) error {
	_, werr := fmt.Fprintln(c.out, c.style(c.styles.Error, "error: "+err.Error()))
	return werr
}

func (c *Console) WriteNotice(text string) error {
	_, err := fmt.Fprintln(c.out, c.style(c.styles.Removed, text))
	return err
}

// WriteTurn writes the finalized response, and in verbose mode a summary of the
// whole turn with the diff between the initial reply and the final draft.
func (c *Console) WriteTurn(turn *review.Turn) error {
	if c.verbose {
		var b strings.Builder
		err := templates.ExecuteTemplate(&b, "turn.tmpl", map[string]interface{}{
			"User":   c.user,
			"Query":  turn.Query.Message.Content,
			"Expert": prompts.PersonaExpert,
			"Turn":   turn,
		})
		if err != nil {
			return errors.Wrap(err, "could not render turn summary")
		}
		if err := c.writeMarkdown(b.String()); err != nil {
			return err
		}
		if turn.Revised() && turn.InitialResponse != turn.FinalDraft {
			if err := c.WriteDiff(turn.InitialResponse, turn.FinalDraft); err != nil {
				return err
			}
		}
	}

	return c.WriteMarkdown("NEXUS:", turn.Response.Message.Content)
}

// Report writes intermediate review results. Only verbose consoles show them.
func (c *Console) Report(event review.Event) {
	if !c.verbose {
		return
	}
	_ = c.WriteMarkdown(event.Title, event.Text)
}
