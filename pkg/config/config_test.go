package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-go-golems/nexus/pkg/settings"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullConfig = `
user_info:
  name: Keith
  skill_level: senior
  tailor_prompt: prefer ansible
credentials:
  openai_key: sk-test
  model: gpt-4
  base_url: http://localhost:8080/v1
  timeout: 30s
completion:
  temperature: 0.3
  presence_penalty: 0.5
log_root: /tmp/nexus
context:
  os: debian
  shell: zsh
`

func readConfig(t *testing.T, body string) *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(bytes.NewBufferString(body)))
	return v
}

func TestLoadFullConfig(t *testing.T) {
	t.Setenv(EnvAPIKey, "")
	t.Setenv(EnvModel, "")

	s, err := Load(readConfig(t, fullConfig))
	require.NoError(t, err)

	assert.Equal(t, "Keith", s.UserInfo.Name)
	assert.Equal(t, "senior", s.UserInfo.SkillLevel)
	assert.Equal(t, "prefer ansible", s.UserInfo.TailorPrompt)
	assert.Equal(t, "sk-test", s.Credentials.APIKey)
	assert.Equal(t, "gpt-4", s.Credentials.Model)
	assert.Equal(t, "http://localhost:8080/v1", s.Credentials.BaseURL)
	assert.Equal(t, 30*time.Second, s.Credentials.Timeout)
	assert.InDelta(t, 0.3, s.Completion.Temperature, 1e-9)
	assert.InDelta(t, 0.5, s.Completion.PresencePenalty, 1e-9)
	assert.Equal(t, "/tmp/nexus", s.LogRoot)
	assert.Equal(t, "debian", s.Context["os"])
	assert.Equal(t, "zsh", s.Context["shell"])
}

func TestLoadEnvironmentFallbacks(t *testing.T) {
	t.Setenv(EnvAPIKey, "sk-env")
	t.Setenv(EnvModel, "gpt-4-turbo")

	s, err := Load(readConfig(t, "user_info:\n  name: Keith\n"))
	require.NoError(t, err)

	assert.Equal(t, "sk-env", s.Credentials.APIKey)
	assert.Equal(t, "gpt-4-turbo", s.Credentials.Model)
	assert.Equal(t, settings.DefaultTimeout, s.Credentials.Timeout)
	assert.Equal(t, ".", s.LogRoot)
}

func TestLoadConfiguredModelWinsOverEnvironment(t *testing.T) {
	t.Setenv(EnvModel, "gpt-4-turbo")

	s, err := Load(readConfig(t, "user_info:\n  name: K\ncredentials:\n  openai_key: k\n  model: gpt-4\n"))
	require.NoError(t, err)
	assert.Equal(t, "gpt-4", s.Credentials.Model)
}

func TestLoadDefaultModel(t *testing.T) {
	t.Setenv(EnvModel, "")

	s, err := Load(readConfig(t, "user_info:\n  name: K\ncredentials:\n  openai_key: k\n"))
	require.NoError(t, err)
	assert.Equal(t, settings.DefaultModel, s.Credentials.Model)
}

func TestLoadMissingUser(t *testing.T) {
	_, err := Load(readConfig(t, "credentials:\n  openai_key: k\n"))

	var ce *ConfigurationError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "user_info.name", ce.Key)
	assert.True(t, IsConfigurationError(err))
}

func TestLoadMissingAPIKey(t *testing.T) {
	t.Setenv(EnvAPIKey, "")

	_, err := Load(readConfig(t, "user_info:\n  name: K\n"))

	var ce *ConfigurationError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "credentials.openai_key", ce.Key)
	assert.True(t, errors.Is(err, settings.ErrMissingAPIKey))
	assert.Contains(t, err.Error(), EnvAPIKey)
}

func TestLoadInvalidCompletion(t *testing.T) {
	_, err := Load(readConfig(t, "user_info:\n  name: K\ncredentials:\n  openai_key: k\ncompletion:\n  temperature: 3\n"))

	var ce *ConfigurationError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "completion", ce.Key)
}

func TestSetupViperReadsFile(t *testing.T) {
	t.Setenv(EnvAPIKey, "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fullConfig), 0o600))

	v := viper.New()
	require.NoError(t, SetupViper(v, path))
	assert.Equal(t, path, v.ConfigFileUsed())

	s, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "Keith", s.UserInfo.Name)
}

func TestSetupViperDefaults(t *testing.T) {
	t.Setenv(EnvAPIKey, "sk-env")
	t.Setenv(EnvModel, "")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("user_info:\n  name: K\n"), 0o600))

	v := viper.New()
	require.NoError(t, SetupViper(v, path))

	s, err := Load(v)
	require.NoError(t, err)
	assert.InDelta(t, settings.DefaultTemperature, s.Completion.Temperature, 1e-9)
	assert.InDelta(t, settings.DefaultPresencePenalty, s.Completion.PresencePenalty, 1e-9)
	assert.Equal(t, settings.DefaultModel, s.Credentials.Model)
}

func TestSetupViperBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("user_info: [\n"), 0o600))

	err := SetupViper(viper.New(), path)
	assert.True(t, IsConfigurationError(err))
}
