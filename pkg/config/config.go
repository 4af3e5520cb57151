package config

import (
	"os"
	"strings"

	"github.com/go-go-golems/nexus/pkg/settings"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	EnvPrefix   = "nexus"
	EnvAPIKey   = "OPENAI_API_KEY"
	EnvModel    = "NEXUS_MODEL"
	configName  = "config"
	appDirName  = "nexus"
	homeDirName = ".nexus"
)

type UserInfo struct {
	Name         string `mapstructure:"name" yaml:"name"`
	SkillLevel   string `mapstructure:"skill_level" yaml:"skill_level"`
	TailorPrompt string `mapstructure:"tailor_prompt" yaml:"tailor_prompt"`
}

// Settings is everything the session needs from the configuration file.
type Settings struct {
	UserInfo    UserInfo                   `mapstructure:"user_info"`
	Credentials settings.ClientSettings    `mapstructure:"credentials"`
	Context     map[string]interface{}     `mapstructure:"context"`
	Completion  settings.CompletionOptions `mapstructure:"completion"`
	// LogRoot is the directory the logs/ tree of each session is created in.
	LogRoot string `mapstructure:"log_root"`
}

// SetupViper registers the configuration search path, environment binding and defaults.
// An explicit configPath disables the search.
func SetupViper(v *viper.Viper, configPath string) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	defaults := settings.DefaultCompletionOptions()
	v.SetDefault("credentials.model", settings.DefaultModel)
	v.SetDefault("credentials.timeout", settings.DefaultTimeout)
	v.SetDefault("completion.temperature", defaults.Temperature)
	v.SetDefault("completion.stream", defaults.Stream)
	v.SetDefault("completion.presence_penalty", defaults.PresencePenalty)
	v.SetDefault("log_root", ".")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home + "/" + homeDirName)
		}
		if xdg, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(xdg + "/" + appDirName)
		}
		v.AddConfigPath("/etc/" + appDirName)
	}

	err := v.ReadInConfig()
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		log.Debug().Msg("no configuration file found")
		return nil
	}
	if err != nil {
		return &ConfigurationError{Key: "file", Reason: "could not read configuration", Err: err}
	}

	log.Debug().Str("config", v.ConfigFileUsed()).Msg("loaded configuration")
	return nil
}

// Load decodes and validates the settings held by v.
func Load(v *viper.Viper) (*Settings, error) {
	ret := &Settings{}
	if err := v.Unmarshal(ret); err != nil {
		return nil, &ConfigurationError{Key: "file", Reason: "malformed configuration", Err: err}
	}

	if ret.Credentials.APIKey == "" {
		ret.Credentials.APIKey = os.Getenv(EnvAPIKey)
	}
	if model := os.Getenv(EnvModel); model != "" && !v.InConfig("credentials.model") {
		ret.Credentials.Model = model
	}
	if ret.Credentials.Model == "" {
		ret.Credentials.Model = settings.DefaultModel
	}
	if ret.LogRoot == "" {
		ret.LogRoot = "."
	}
	if ret.Credentials.Timeout <= 0 {
		ret.Credentials.Timeout = settings.DefaultTimeout
	}

	if err := ret.Validate(); err != nil {
		return nil, err
	}
	return ret, nil
}

func (s *Settings) Validate() error {
	if strings.TrimSpace(s.UserInfo.Name) == "" {
		return &ConfigurationError{Key: "user_info.name", Reason: "operator name is required"}
	}
	if err := s.Credentials.IsValid(); err != nil {
		return &ConfigurationError{
			Key:    "credentials.openai_key",
			Reason: "set it in the configuration or in " + EnvAPIKey,
			Err:    err,
		}
	}
	if err := s.Completion.Validate(); err != nil {
		return &ConfigurationError{Key: "completion", Reason: "invalid completion defaults", Err: err}
	}
	return nil
}

// IsConfigurationError reports whether err is, or wraps, a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}
