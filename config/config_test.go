package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("TIMEZONE", "")
	t.Setenv("LOG_LEVEL", "")

	cfg := LoadConfig()
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.NotEmpty(t, cfg.DatabaseURL)
}

func TestLoadConfigReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("ANTHROPIC_MODEL=from-dotenv\n"), 0o600))
	chdir(t, dir)
	// Registers a restore so the value godotenv writes does not leak.
	t.Setenv("ANTHROPIC_MODEL", "unset")
	require.NoError(t, os.Unsetenv("ANTHROPIC_MODEL"))

	cfg := LoadConfig()
	assert.True(t, cfg.DotEnvLoaded)
	assert.Equal(t, "from-dotenv", cfg.AnthropicModel)
}

func TestLoadConfigWithoutDotEnv(t *testing.T) {
	chdir(t, t.TempDir())

	cfg := LoadConfig()
	assert.False(t, cfg.DotEnvLoaded)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("SLACK_BOT_TOKEN", "xoxb-test")
	t.Setenv("TIMEZONE", "Europe/Berlin")
	t.Setenv("ANTHROPIC_MODEL", "custom-model")

	cfg := LoadConfig()
	assert.Equal(t, "xoxb-test", cfg.SlackToken)
	assert.Equal(t, "Europe/Berlin", cfg.Timezone)
	assert.Equal(t, "custom-model", cfg.AnthropicModel)
}

func TestValidate(t *testing.T) {
	valid := Config{
		DatabaseURL:        "postgres://localhost/db",
		SlackToken:         "xoxb",
		SlackSigningSecret: "secret",
		AnthropicKey:       "key",
	}
	require.NoError(t, valid.Validate())

	tests := map[string]func(c *Config){
		"DATABASE_URL":         func(c *Config) { c.DatabaseURL = "" },
		"SLACK_BOT_TOKEN":      func(c *Config) { c.SlackToken = "" },
		"SLACK_SIGNING_SECRET": func(c *Config) { c.SlackSigningSecret = "" },
		"ANTHROPIC_API_KEY":    func(c *Config) { c.AnthropicKey = "" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := valid
			mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), name)
		})
	}
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
