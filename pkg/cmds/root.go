package cmds

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/go-go-golems/nexus/pkg/config"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewRootCommand builds the nexus command. The query is every positional argument
// joined by spaces.
func NewRootCommand(v *viper.Viper) *cobra.Command {
	rs := RunSettings{}

	cmd := &cobra.Command{
		Use:   "nexus [query]",
		Short: "nexus answers operations questions with a reviewed, revised response",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// reinitialize the logger because we can now parse --log-level and co
			// from the command line flag
			if err := config.SetupViper(v, v.GetString("config")); err != nil {
				return err
			}
			return initLogger(v)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			rs.InteractiveSet = cmd.Flags().Changed("interactive")

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			in, closeInput := operatorInput(rs.IsInteractive())
			defer closeInput()
			return Run(ctx, cfg, rs, strings.Join(args, " "), Terminal{In: in, Out: os.Stdout})
		},
		SilenceUsage: true,
	}

	flags := cmd.Flags()
	flags.StringVar(&rs.Session, "session", "", "Session name for a large or interactive request")
	flags.BoolVar(&rs.KnowledgeBase, "nb", false, "Prepare an article with GPT-NB")
	flags.StringVar(&rs.Mode, "mode", "", "Alternative master prompt directive")
	flags.BoolVar(&rs.Interactive, "interactive", false, "Keep reading queries after the first answer")
	flags.BoolVar(&rs.Verbose, "verbose", false, "Show the initial reply, reviews and revisions")

	pflags := cmd.PersistentFlags()
	pflags.Bool("with-caller", false, "Log caller")
	pflags.String("log-level", "info", "Log level (trace, debug, info, warn, error, fatal)")
	pflags.String("log-format", "text", "Log format (json, text)")
	pflags.String("log-file", "", "Log file (default: stderr)")
	pflags.String("config", "", "Path to config file (default ~/.nexus/config.yaml)")

	_ = v.BindPFlags(pflags)

	return cmd
}

func initLogger(v *viper.Viper) error {
	return InitLogger(&LogConfig{
		Level:      v.GetString("log-level"),
		LogFile:    v.GetString("log-file"),
		LogFormat:  v.GetString("log-format"),
		WithCaller: v.GetBool("with-caller"),
	})
}

// operatorInput reads from the controlling terminal when an interactive session
// gets its stdin from a pipe.
func operatorInput(interactive bool) (io.Reader, func()) {
	if !interactive || isatty.IsTerminal(os.Stdin.Fd()) {
		return os.Stdin, func() {}
	}
	tty_, err := OpenTTY()
	if err != nil {
		log.Debug().Err(err).Msg("no controlling terminal, reading input from stdin")
		return os.Stdin, func() {}
	}
	return tty_, func() {
		if err := tty_.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close tty")
		}
	}
}
