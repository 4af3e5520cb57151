package prompts

import (
	"embed"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/Masterminds/sprig"
	"github.com/go-go-golems/nexus/pkg/conversation"
	"github.com/go-go-golems/nexus/pkg/review"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	PersonaMaster        = "GPT-N"
	PersonaOps           = "GPT-OPS"
	PersonaKnowledgeBase = "GPT-NB"
	PersonaEditor        = "GPT-Edit"
	PersonaExpert        = "GPT-Expert"

	agentCore = "core"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(
	template.New("prompts").Funcs(sprig.TxtFuncMap()).ParseFS(templateFS, "templates/*.tmpl"),
)

type ModeKind string

const (
	ModeQuery         ModeKind = "query"
	ModeInteractive   ModeKind = "interactive"
	ModeKnowledgeBase ModeKind = "nb"
	ModeCustom        ModeKind = "custom"
)

// Mode selects the scaffold and the persona answering queries.
type Mode struct {
	Kind ModeKind
	// Directive is the one-line goal of a custom mode.
	Directive string
}

// Target is the persona queries are addressed to.
func (m Mode) Target() string {
	if m.Kind == ModeKnowledgeBase {
		return PersonaKnowledgeBase
	}
	return PersonaOps
}

type Options struct {
	User       string
	SkillLevel string
	Preamble   string
	// Context is dumped verbatim as yaml into the session message.
	Context map[string]interface{}
	Mode    Mode
	Now     func() time.Time
}

// Library renders the persona messages of a session.
type Library struct {
	options Options

	reviewRequest string
	reviseNew     string
	reviseFinal   string
	reviseBrief   string
}

var _ review.Prompts = (*Library)(nil)

func NewLibrary(options Options) (*Library, error) {
	if options.User == "" {
		return nil, errors.New("prompt library needs a user name")
	}
	if options.Mode.Kind == "" {
		options.Mode.Kind = ModeQuery
	}
	if options.Mode.Kind == ModeCustom && strings.TrimSpace(options.Mode.Directive) == "" {
		return nil, errors.New("custom mode needs a directive")
	}
	if options.Now == nil {
		options.Now = time.Now
	}

	ret := &Library{options: options}
	data := ret.data()

	var err error
	if ret.reviewRequest, err = render("review-request.tmpl", data); err != nil {
		return nil, err
	}
	if ret.reviseBrief, err = render("revise-brief.tmpl", data); err != nil {
		return nil, err
	}
	data["Revision"] = "new"
	if ret.reviseNew, err = render("revise.tmpl", data); err != nil {
		return nil, err
	}
	data["Revision"] = "final"
	if ret.reviseFinal, err = render("revise.tmpl", data); err != nil {
		return nil, err
	}

	return ret, nil
}

func (l *Library) data() map[string]interface{} {
	return map[string]interface{}{
		"User":       l.options.User,
		"SkillLevel": l.options.SkillLevel,
		"Preamble":   l.options.Preamble,
		"Target":     l.options.Mode.Target(),
		"Directive":  l.options.Mode.Directive,
		"Expert":     PersonaExpert,
		"Editor":     PersonaEditor,
		"Glyph":      review.AnnotationGlyph,
	}
}

func render(name string, data interface{}) (string, error) {
	var b strings.Builder
	if err := templates.ExecuteTemplate(&b, name, data); err != nil {
		return "", errors.Wrapf(err, "could not render %s", name)
	}
	return b.String(), nil
}

// Scaffold returns the fixed core messages a session tree starts with, root first.
func (l *Library) Scaffold() ([]*conversation.Message, error) {
	data := l.data()

	master, err := render("master.tmpl", data)
	if err != nil {
		return nil, err
	}
	notes, err := render("editor-notes.tmpl", data)
	if err != nil {
		return nil, err
	}
	reviewer, err := render("reviewer-system.tmpl", data)
	if err != nil {
		return nil, err
	}
	mode, err := l.modeMessage(data)
	if err != nil {
		return nil, err
	}
	session, err := l.sessionMessage(data)
	if err != nil {
		return nil, err
	}

	ret := []*conversation.Message{
		conversation.NewMessage(PersonaMaster, conversation.KindCore, conversation.RoleUser, master),
		conversation.NewMessage(agentCore, conversation.KindCore, conversation.RoleSystem, notes),
		conversation.NewMessage(PersonaExpert, conversation.KindRevise, conversation.RoleSystem, reviewer),
		mode,
		session,
	}

	if l.options.Mode.Kind == ModeInteractive {
		full, err := render("interactive.tmpl", data)
		if err != nil {
			return nil, err
		}
		brief, err := render("interactive-brief.tmpl", data)
		if err != nil {
			return nil, err
		}
		ret = append(ret, conversation.NewMessage(
			PersonaOps, conversation.KindRevise, conversation.RoleUser, full,
			conversation.WithBrief(brief),
		))
	}

	return ret, nil
}

func (l *Library) modeMessage(data map[string]interface{}) (*conversation.Message, error) {
	var full, brief string
	var err error
	switch l.options.Mode.Kind {
	case ModeKnowledgeBase:
		full, err = render("mode-nb.tmpl", data)
	case ModeCustom:
		if full, err = render("mode-custom.tmpl", data); err == nil {
			brief, err = render("mode-custom-brief.tmpl", data)
		}
	case ModeQuery, ModeInteractive:
		if full, err = render("mode-query.tmpl", data); err == nil {
			brief, err = render("mode-query-brief.tmpl", data)
		}
	default:
		return nil, errors.Errorf("unknown mode %q", l.options.Mode.Kind)
	}
	if err != nil {
		return nil, err
	}
	return conversation.NewMessage(
		agentCore, conversation.KindCore, conversation.RoleUser, full,
		conversation.WithBrief(brief),
	), nil
}

func (l *Library) sessionMessage(data map[string]interface{}) (*conversation.Message, error) {
	machine := ""
	if len(l.options.Context) > 0 {
		b, err := yaml.Marshal(l.options.Context)
		if err != nil {
			return nil, errors.Wrap(err, "could not serialize session context")
		}
		machine = string(b)
	}
	data["Context"] = machine
	data["Now"] = l.options.Now()

	content, err := render("session.tmpl", data)
	if err != nil {
		return nil, err
	}
	return conversation.NewMessage(agentCore, conversation.KindCore, conversation.RoleSystem, content), nil
}

func (l *Library) Query(text string) *conversation.Message {
	target := l.options.Mode.Target()
	content := fmt.Sprintf("%s:\n@%s %s", l.options.User, target, text)
	if l.options.Mode.Kind == ModeKnowledgeBase {
		content = fmt.Sprintf("%s:\n@%s Prepare an Article on %q", l.options.User, target, text)
	}
	return conversation.NewMessage(
		l.options.User, conversation.KindHuman, conversation.RoleUser, content,
		conversation.WithTarget(target),
	)
}

func (l *Library) ReviewRequest() *conversation.Message {
	return conversation.NewMessage(PersonaExpert, conversation.KindRevise, conversation.RoleUser, l.reviewRequest)
}

// RevisionRequest asks the editor for the next draft. The last allowed round asks for the final one.
func (l *Library) RevisionRequest(round int, maxRounds int) *conversation.Message {
	content := l.reviseNew
	if round >= maxRounds-1 {
		content = l.reviseFinal
	}
	return conversation.NewMessage(
		PersonaEditor, conversation.KindRevise, conversation.RoleUser, content,
		conversation.WithBrief(l.reviseBrief),
	)
}
