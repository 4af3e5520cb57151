package review

import (
	"context"
	"fmt"

	"github.com/go-go-golems/nexus/pkg/conversation"
	"github.com/go-go-golems/nexus/pkg/settings"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Turn is the outcome of one operator query.
type Turn struct {
	Query *conversation.Node
	// Response is the finalized response node. It has no children.
	Response        *conversation.Node
	Revisions       int
	InitialResponse string
	FirstReview     string
	LastReview      string
	FinalDraft      string
	// Verdict is decoded from LastReview; nil when the reviewer did not answer with yaml.
	Verdict *Verdict
	// History holds the replaced drafts with their review and revision branches,
	// all flagged for refresh.
	History []*conversation.Node
}

// Revised reports whether the first review asked for changes.
func (t *Turn) Revised() bool {
	return t.Revisions > 0
}

type Orchestrator struct {
	manager  *conversation.Manager
	client   Completer
	prompts  Prompts
	reporter Reporter
	model    string
	schedule Schedule
	options  settings.CompletionOptions
}

type Option func(*Orchestrator)

func WithReporter(reporter Reporter) Option {
	return func(o *Orchestrator) {
		o.reporter = reporter
	}
}

func WithModel(model string) Option {
	return func(o *Orchestrator) {
		o.model = model
	}
}

func WithSchedule(schedule Schedule) Option {
	return func(o *Orchestrator) {
		o.schedule = schedule
	}
}

// WithCompletionOptions sets the base options; each step overrides the temperature.
func WithCompletionOptions(options settings.CompletionOptions) Option {
	return func(o *Orchestrator) {
		o.options = options
	}
}

func NewOrchestrator(
	manager *conversation.Manager,
	client Completer,
	prompts Prompts,
	options ...Option,
) *Orchestrator {
	ret := &Orchestrator{
		manager:  manager,
		client:   client,
		prompts:  prompts,
		reporter: NullReporter{},
		model:    settings.DefaultModel,
		schedule: DefaultSchedule(),
		options:  settings.DefaultCompletionOptions(),
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

func (o *Orchestrator) Manager() *conversation.Manager {
	return o.manager
}

// Ask runs a full turn: the initial answer, one mandatory review, and up to
// MaxRevisions rounds of editing and reviewing. Any completion failure aborts the
// turn with a *ServiceFault and removes its query and partial drafts from the tree.
func (o *Orchestrator) Ask(ctx context.Context, text string) (*Turn, error) {
	var parent *conversation.Node
	if o.manager.Root != nil {
		parent = o.manager.Root.Leaf()
	}
	query := o.manager.AppendActive(conversation.NewNode(o.prompts.Query(text)))

	turn, err := o.run(ctx, query)
	if err != nil {
		o.abandon(parent, query)
		return nil, err
	}
	return turn, nil
}

// abandon takes a failed turn off the tree so the next query continues from parent.
func (o *Orchestrator) abandon(parent *conversation.Node, query *conversation.Node) {
	if parent == nil {
		o.manager.Root = nil
		o.manager.Head = nil
		return
	}
	if err := parent.RemoveChild(query); err != nil {
		log.Warn().Err(err).Str("query_path", query.Path.String()).Msg("could not drop failed turn")
		return
	}
	parent.ClearActive()
	o.manager.Head = parent
	log.Debug().Str("parent_path", parent.Path.String()).Msg("dropped failed turn")
}

func (o *Orchestrator) run(ctx context.Context, query *conversation.Node) (*Turn, error) {
	target := query.Message.Target
	turn := &Turn{Query: query}

	o.enter(StateInitialResponse, 0)
	initial, err := o.complete(ctx, "User Query", StateInitialResponse, target, o.schedule.Initial)
	if err != nil {
		return nil, err
	}
	turn.InitialResponse = initial
	response := query.AppendActive(conversation.NewNode(
		conversation.NewMessage(target, conversation.KindResponse, conversation.RoleAssistant, initial),
	))

	o.enter(StateFirstReview, 0)
	reviewer := query.AppendActive(conversation.NewNode(o.prompts.ReviewRequest()))
	review, err := o.complete(ctx, "Meta Review", StateFirstReview, reviewer.Message.Agent, o.schedule.FirstReview)
	if err != nil {
		return nil, err
	}
	turn.FirstReview = review
	o.reporter.Report(Event{State: StateFirstReview, Title: "First Review", Text: review})

	lastDraft := initial
	revise, draft := NeedsRevision(initial, review)
	round := 0
	for revise && round < MaxRevisions {
		o.enter(StateRevising, round)
		o.reporter.Report(Event{
			State: StateRevising,
			Round: round,
			Title: fmt.Sprintf("Revision Request %d", round),
			Text:  review,
		})

		// the editor sees the draft together with the notes that triggered the round
		response, err = o.rewrite(query, response, draft)
		if err != nil {
			return nil, err
		}
		editor := query.AppendActive(conversation.NewNode(o.prompts.RevisionRequest(round, MaxRevisions)))
		lastDraft, err = o.complete(ctx, fmt.Sprintf("Revision %d", round), StateRevising, editor.Message.Agent, o.schedule.Editor(round))
		if err != nil {
			return nil, err
		}
		o.reporter.Report(Event{
			State: StateRevising,
			Round: round,
			Title: fmt.Sprintf("Revision %d", round),
			Text:  lastDraft,
		})

		response, err = o.rewrite(query, response, lastDraft)
		if err != nil {
			return nil, err
		}

		o.enter(StateReviewing, round)
		reviewer = query.AppendActive(conversation.NewNode(o.prompts.ReviewRequest()))
		review, err = o.complete(ctx, "Meta Review", StateReviewing, reviewer.Message.Agent, o.schedule.Reviewer(round))
		if err != nil {
			return nil, err
		}

		round++
		revise, draft = NeedsRevision(lastDraft, review)
	}

	o.enter(StateFinalized, round)
	final, err := o.rewrite(query, response, fmt.Sprintf("Revision: #%d\n%s", round, lastDraft))
	if err != nil {
		return nil, err
	}
	turn.History = final.Detach()
	turn.Response = final
	turn.Revisions = round
	turn.LastReview = review
	turn.FinalDraft = lastDraft
	if verdict, err := ParseVerdict(review); err == nil {
		turn.Verdict = verdict
	} else {
		log.Debug().Err(err).Msg("last review has no yaml verdict")
	}

	log.Debug().
		Str("query_path", query.Path.String()).
		Str("response_path", final.Path.String()).
		Int("revisions", round).
		Int("history_nodes", countNodes(turn.History)).
		Msg("turn finalized")

	return turn, nil
}

// rewrite replaces the response node under query with a copy carrying content.
// The old node and everything below it stay as refresh-flagged history that is
// no longer part of the active chain.
func (o *Orchestrator) rewrite(query *conversation.Node, response *conversation.Node, content string) (*conversation.Node, error) {
	fresh := conversation.NewNode(response.Message.WithContent(content))
	if err := query.Replace(response, fresh); err != nil {
		return nil, errors.Wrap(err, "could not replace response")
	}
	fresh.ClearActive()
	return fresh, nil
}

// complete renders the active chain for target and returns the first choice's text.
func (o *Orchestrator) complete(
	ctx context.Context,
	event string,
	state State,
	target string,
	temperature float64,
) (string, error) {
	req := o.manager.Request(target, o.model)

	options := *o.options.With(settings.WithTemperature(temperature))
	if head := o.manager.Root.Leaf().Message; head.Options != nil {
		options = *head.Options
	}

	completion, err := o.client.Complete(ctx, event, req, options)
	if err != nil {
		log.Debug().Err(err).Str("state", state.String()).Str("event", event).Msg("turn aborted")
		return "", &ServiceFault{State: state, Event: event, Err: err}
	}
	return completion.Content(), nil
}

func (o *Orchestrator) enter(state State, round int) {
	log.Debug().Str("state", state.String()).Int("round", round).Msg("review state")
}

func countNodes(nodes []*conversation.Node) int {
	count := 0
	for _, n := range nodes {
		count += n.Count()
	}
	return count
}
