package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/racketbot/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(Options{})
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000/recommend", cfg.Endpoint)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, domain.DefaultScript(), cfg.Script)
	assert.Equal(t, domain.DefaultMessages(), cfg.Messages)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, "racketbot:session:", cfg.Redis.Prefix)
	assert.Equal(t, 24*time.Hour, cfg.Redis.TTL)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 3, cfg.Catalog.Limit)
	assert.False(t, cfg.OpenAI.Enabled())
	assert.Equal(t, ".racketbot/sessions", cfg.SessionDir)
	assert.Equal(t, ":8081", cfg.MCP.Addr)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := writeFile(t, "racketbot.yaml", `
endpoint: http://catalog:9000/recommend
timeout: 2s
redis:
  url: redis://localhost:6379/0
script:
  - key: level
    text: Level?
  - key: budget
    text: Budget?
    numeric: true
messages:
  greeting: Hi
`)

	cfg, err := Load(Options{File: path})
	require.NoError(t, err)

	assert.Equal(t, "http://catalog:9000/recommend", cfg.Endpoint)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, "racketbot:session:", cfg.Redis.Prefix, "unset nested keys keep defaults")
	require.Len(t, cfg.Script, 2)
	assert.True(t, cfg.Script[1].Numeric)
	assert.Equal(t, "Hi", cfg.Messages.Greeting)
	assert.Equal(t, domain.DefaultMessages().Failure, cfg.Messages.Failure)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "racketbot.yaml", "timeout: 2s\nhttp:\n  addr: :9999\n")
	t.Setenv("RACKETBOT_TIMEOUT", "750ms")
	t.Setenv("RACKETBOT_MAX_INPUT_SIZE", "256")
	t.Setenv("RACKETBOT_LOG_JSON", "true")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load(Options{File: path})
	require.NoError(t, err)

	assert.Equal(t, 750*time.Millisecond, cfg.Timeout)
	assert.Equal(t, ":9999", cfg.HTTP.Addr)
	assert.Equal(t, 256, cfg.MaxInputSize)
	assert.True(t, cfg.Log.JSON)
	assert.True(t, cfg.OpenAI.Enabled())
}

func TestLoad_EnvFile(t *testing.T) {
	envFile := writeFile(t, ".env", "RACKETBOT_CATALOG_ADDR=:7000\n")
	t.Cleanup(func() { os.Unsetenv("RACKETBOT_CATALOG_ADDR") })

	cfg, err := Load(Options{EnvFile: envFile})
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Catalog.Addr)
}

func TestLoad_MissingEnvFileIgnored(t *testing.T) {
	_, err := Load(Options{EnvFile: filepath.Join(t.TempDir(), ".env")})
	assert.NoError(t, err)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown key", "endpont: http://x/recommend\n"},
		{"bad duration", "timeout: soon\n"},
		{"bad endpoint", "endpoint: not a url\n"},
		{"duplicate prompt", "script:\n  - {key: a, text: A}\n  - {key: a, text: B}\n"},
		{"malformed yaml", "endpoint: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(Options{File: writeFile(t, "c.yaml", tt.content)})
			assert.Error(t, err)
		})
	}

	_, err := Load(Options{File: filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)
}

func TestDecode_DuplicateKeyIsInvalidScript(t *testing.T) {
	tree := defaults()
	tree["script"] = []any{
		map[string]any{"key": "a", "text": "A"},
		map[string]any{"key": "a", "text": "B"},
	}
	_, err := Decode(tree)
	assert.ErrorIs(t, err, domain.ErrInvalidScript)
}
