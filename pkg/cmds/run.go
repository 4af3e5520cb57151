package cmds

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/go-go-golems/nexus/pkg/config"
	"github.com/go-go-golems/nexus/pkg/conversation"
	"github.com/go-go-golems/nexus/pkg/events"
	"github.com/go-go-golems/nexus/pkg/inference"
	"github.com/go-go-golems/nexus/pkg/inference/openai"
	"github.com/go-go-golems/nexus/pkg/prompts"
	"github.com/go-go-golems/nexus/pkg/render"
	"github.com/go-go-golems/nexus/pkg/review"
	"github.com/go-go-golems/nexus/pkg/session"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// RunSettings are the per-invocation flags.
type RunSettings struct {
	Session string
	// KnowledgeBase switches to article mode answered by GPT-NB.
	KnowledgeBase bool
	// Mode is a custom one-line directive replacing the query directive.
	Mode        string
	Interactive bool
	// InteractiveSet is true when --interactive was given explicitly.
	InteractiveSet bool
	Verbose        bool
}

// IsInteractive resolves the interactive flag. A named session is interactive
// unless interactive mode was explicitly turned off.
func (r RunSettings) IsInteractive() bool {
	if r.Session != "" {
		return !r.InteractiveSet || r.Interactive
	}
	return r.Interactive
}

// PromptMode picks the scaffold. Knowledge base mode wins over a custom directive,
// and the interactive scaffold only extends the default query mode.
func (r RunSettings) PromptMode() prompts.Mode {
	switch {
	case r.KnowledgeBase:
		return prompts.Mode{Kind: prompts.ModeKnowledgeBase}
	case r.Mode != "":
		return prompts.Mode{Kind: prompts.ModeCustom, Directive: r.Mode}
	case r.IsInteractive():
		return prompts.Mode{Kind: prompts.ModeInteractive}
	default:
		return prompts.Mode{Kind: prompts.ModeQuery}
	}
}

// SessionName is the name logs are filed under.
func (r RunSettings) SessionName(query string) string {
	if r.Session != "" {
		return session.TrimName(r.Session)
	}
	return session.TrimName(query)
}

// Terminal is where operator input and output go.
type Terminal struct {
	In  io.Reader
	Out *os.File
}

// Run sets up a session for query and runs the loop until the operator leaves.
func Run(ctx context.Context, cfg *config.Settings, rs RunSettings, query string, terminal Terminal) error {
	asker := NewTerminalAsker(terminal.In, terminal.Out)
	if query == "" {
		var err error
		query, err = AskQuery(asker)
		if err != nil {
			if errors.Is(err, ErrInterrupted) || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}

	s, err := session.New(cfg.LogRoot, rs.SessionName(query), time.Now())
	if err != nil {
		return err
	}
	sessionLog := s.LogWriter()
	defer func() {
		_ = sessionLog.Close()
	}()
	log.Debug().
		Str("session", s.Name).
		Str("session_id", s.ID.String()).
		Str("log_file", s.LogFile).
		Msg("starting session")

	library, err := prompts.NewLibrary(prompts.Options{
		User:       cfg.UserInfo.Name,
		SkillLevel: cfg.UserInfo.SkillLevel,
		Preamble:   cfg.UserInfo.TailorPrompt,
		Context:    cfg.Context,
		Mode:       rs.PromptMode(),
	})
	if err != nil {
		return err
	}
	scaffold, err := library.Scaffold()
	if err != nil {
		return err
	}
	manager := conversation.NewManager(scaffold, conversation.WithConversationID(s.ID))

	transcript, err := s.OpenTranscript()
	if err != nil {
		return err
	}
	defer func() {
		_ = transcript.Close()
	}()

	router, err := events.NewEventRouter(events.WithLogger(events.NewWatermill(log.Logger)))
	if err != nil {
		return err
	}
	router.AddHandler("transcript", events.RecordsTopic, events.NewTranscript(transcript).Handle)

	engine, err := openai.NewEngineFromSettings(&cfg.Credentials)
	if err != nil {
		return err
	}
	adapter, err := inference.NewAdapter(
		engine,
		inference.WithSink(inference.NewLogSink(NewSessionLogger(sessionLog, s.ID.String()))),
		inference.WithSink(inference.NewWatermillSink(router.Publisher, events.RecordsTopic)),
		inference.WithTokenCounter(inference.NewTiktokenCounter()),
	)
	if err != nil {
		return err
	}

	console, err := render.NewTerminalConsole(
		terminal.Out,
		render.WithVerbose(rs.Verbose),
		render.WithUser(cfg.UserInfo.Name),
	)
	if err != nil {
		return err
	}

	orchestrator := review.NewOrchestrator(
		manager,
		adapter,
		library,
		review.WithReporter(console),
		review.WithModel(cfg.Credentials.Model),
		review.WithCompletionOptions(cfg.Completion),
	)

	loop := NewLoop(orchestrator, asker, console, WithInteractive(rs.IsInteractive()))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return router.Run(ctx)
	})
	eg.Go(func() error {
		defer func() {
			_ = router.Close()
		}()
		select {
		case <-router.Running():
		case <-ctx.Done():
			return nil
		}
		return loop.Run(ctx, query)
	})

	return eg.Wait()
}
