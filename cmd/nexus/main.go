package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/go-go-golems/nexus/pkg/cmds"
	"github.com/go-go-golems/nexus/pkg/config"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

func main() {
	// log to stderr until the flags are parsed
	_ = cmds.InitLogger(&cmds.LogConfig{Level: "info", LogFormat: "text"})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	rootCmd := cmds.NewRootCommand(viper.New())
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if config.IsConfigurationError(err) {
			log.Error().Err(err).Msg("invalid configuration")
		} else {
			log.Debug().Err(err).Msg("nexus failed")
		}
		cancel()
		os.Exit(1)
	}
}
