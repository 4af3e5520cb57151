package settings

import (
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	go_openai "github.com/sashabaranov/go-openai"
)

const (
	DefaultModel   = "gpt-3.5-turbo"
	DefaultTimeout = 60 * time.Second
)

var ErrMissingAPIKey = errors.New("missing api key")

type ClientSettings struct {
	APIKey       string        `yaml:"openai_key,omitempty" mapstructure:"openai_key"`
	Model        string        `yaml:"model,omitempty" mapstructure:"model"`
	BaseURL      string        `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Organization string        `yaml:"organization,omitempty" mapstructure:"organization"`
	Timeout      time.Duration `yaml:"timeout,omitempty" mapstructure:"timeout"`
}

func NewClientSettings() *ClientSettings {
	return &ClientSettings{
		Model:   DefaultModel,
		Timeout: DefaultTimeout,
	}
}

func (c *ClientSettings) IsValid() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// ToConfig builds the go-openai client configuration.
func (c *ClientSettings) ToConfig() go_openai.ClientConfig {
	config := go_openai.DefaultConfig(c.APIKey)
	if c.BaseURL != "" {
		config.BaseURL = c.BaseURL
	}
	if c.Organization != "" {
		config.OrgID = c.Organization
	}
	if c.Timeout > 0 {
		config.HTTPClient.Timeout = c.Timeout
	}
	return config
}

func (c *ClientSettings) CreateClient() (*go_openai.Client, error) {
	if err := c.IsValid(); err != nil {
		return nil, err
	}

	evt := log.Debug().Str("model", c.Model).Dur("timeout", c.Timeout)
	if c.BaseURL != "" {
		evt = evt.Str("base_url", c.BaseURL)
	}
	if c.Organization != "" {
		evt = evt.Str("organization", c.Organization)
	}
	evt.Msg("creating openai client")

	return go_openai.NewClientWithConfig(c.ToConfig()), nil
}
