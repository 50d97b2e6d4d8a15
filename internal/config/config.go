package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/aretw0/racketbot/pkg/domain"
	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// EnvPrefix namespaces the environment overrides.
const EnvPrefix = "RACKETBOT_"

// Config is the resolved application configuration.
type Config struct {
	// Endpoint is the recommendation service URL.
	Endpoint string `mapstructure:"endpoint"`
	// Timeout bounds one recommendation call. Zero means no timeout.
	Timeout time.Duration `mapstructure:"timeout"`

	Script   domain.Script   `mapstructure:"script"`
	Messages domain.Messages `mapstructure:"messages"`

	MaxInputSize int `mapstructure:"max_input_size"`
	// SessionDir holds file-backed sessions when Redis is not configured.
	SessionDir string `mapstructure:"session_dir"`

	Redis   RedisConfig   `mapstructure:"redis"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	MCP     MCPConfig     `mapstructure:"mcp"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	OpenAI  OpenAIConfig  `mapstructure:"openai"`
	Crypto  CryptoConfig  `mapstructure:"encryption"`
	Log     LogConfig     `mapstructure:"log"`
}

// RedisConfig enables the Redis session store when URL is set.
type RedisConfig struct {
	URL     string        `mapstructure:"url"`
	Prefix  string        `mapstructure:"prefix"`
	TTL     time.Duration `mapstructure:"ttl"`
	LockTTL time.Duration `mapstructure:"lock_ttl"`
}

// Enabled reports whether sessions go to Redis.
func (c RedisConfig) Enabled() bool {
	return c.URL != ""
}

// HTTPConfig configures the session API server.
type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

// MCPConfig configures the SSE transport of the MCP server.
type MCPConfig struct {
	Addr string `mapstructure:"addr"`
}

// CatalogConfig configures the bundled recommendation service.
type CatalogConfig struct {
	Path  string `mapstructure:"path"` // empty means the embedded sample catalogue
	Addr  string `mapstructure:"addr"`
	Limit int    `mapstructure:"limit"`
}

// OpenAIConfig enables model-written explanations when APIKey is set.
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

// Enabled reports whether an API key was configured.
func (c OpenAIConfig) Enabled() bool {
	return c.APIKey != ""
}

// CryptoConfig enables encryption of persisted sessions when Key is set.
// Keys are base64-encoded 32-byte AES keys.
type CryptoConfig struct {
	Key          string   `mapstructure:"key"`
	FallbackKeys []string `mapstructure:"fallback_keys"`
}

// Enabled reports whether sessions are sealed before storage.
func (c CryptoConfig) Enabled() bool {
	return c.Key != ""
}

// LogConfig selects the log level and format.
type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// Options tells Load where to look.
type Options struct {
	// File is an optional YAML config file. Missing files are an error.
	File string
	// EnvFile is a dotenv file loaded before the environment is read.
	// A missing EnvFile is ignored.
	EnvFile string
}

// defaults returns the baseline configuration tree.
func defaults() map[string]any {
	return map[string]any{
		"endpoint":       "http://localhost:8000/recommend",
		"timeout":        "10s",
		"script":         []any{},
		"messages":       map[string]any{},
		"max_input_size": 0,
		"session_dir":    ".racketbot/sessions",
		"redis": map[string]any{
			"url":      "",
			"prefix":   "racketbot:session:",
			"ttl":      "24h",
			"lock_ttl": "30s",
		},
		"http": map[string]any{
			"addr": ":8080",
		},
		"mcp": map[string]any{
			"addr": ":8081",
		},
		"catalog": map[string]any{
			"path":  "",
			"addr":  ":8000",
			"limit": 3,
		},
		"openai": map[string]any{
			"api_key":  "",
			"base_url": "",
			"model":    "gpt-3.5-turbo",
		},
		"encryption": map[string]any{
			"key":           "",
			"fallback_keys": []any{},
		},
		"log": map[string]any{
			"level": "info",
			"json":  false,
		},
	}
}

// envBindings maps environment variables onto config paths.
var envBindings = map[string]string{
	EnvPrefix + "ENDPOINT":       "endpoint",
	EnvPrefix + "TIMEOUT":        "timeout",
	EnvPrefix + "MAX_INPUT_SIZE": "max_input_size",
	EnvPrefix + "SESSION_DIR":    "session_dir",
	EnvPrefix + "REDIS_URL":      "redis.url",
	EnvPrefix + "REDIS_PREFIX":   "redis.prefix",
	EnvPrefix + "REDIS_TTL":      "redis.ttl",
	EnvPrefix + "REDIS_LOCK_TTL": "redis.lock_ttl",
	EnvPrefix + "HTTP_ADDR":      "http.addr",
	EnvPrefix + "MCP_ADDR":       "mcp.addr",
	EnvPrefix + "CATALOG_PATH":   "catalog.path",
	EnvPrefix + "CATALOG_ADDR":   "catalog.addr",
	EnvPrefix + "CATALOG_LIMIT":  "catalog.limit",
	EnvPrefix + "ENCRYPTION_KEY": "encryption.key",
	EnvPrefix + "LOG_LEVEL":      "log.level",
	EnvPrefix + "LOG_JSON":       "log.json",
	"OPENAI_API_KEY":             "openai.api_key",
	"OPENAI_BASE_URL":            "openai.base_url",
	"OPENAI_MODEL":               "openai.model",
}

// Load resolves the configuration: defaults, then the dotenv file, then the YAML
// file, then environment variables. Later layers win.
func Load(opts Options) (Config, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load %s: %w", opts.EnvFile, err)
		}
	}

	tree := defaults()

	if opts.File != "" {
		data, err := os.ReadFile(opts.File)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		var file map[string]any
		if err := yaml.Unmarshal(data, &file); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", opts.File, err)
		}
		merge(tree, file)
	}

	for env, path := range envBindings {
		if val, ok := os.LookupEnv(env); ok {
			set(tree, path, val)
		}
	}

	return Decode(tree)
}

// Decode converts a raw configuration tree into a validated Config.
func Decode(tree map[string]any) (Config, error) {
	var cfg Config
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &cfg,
	})
	if err != nil {
		return Config{}, err
	}
	if err := dec.Decode(tree); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	if len(cfg.Script) == 0 {
		cfg.Script = domain.DefaultScript()
	}
	cfg.Messages = cfg.Messages.WithDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	if err := c.Script.Validate(); err != nil {
		return err
	}
	u, err := url.Parse(c.Endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid endpoint %q", c.Endpoint)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if c.MaxInputSize < 0 {
		return fmt.Errorf("max_input_size must not be negative")
	}
	return nil
}

// merge copies src into dst, recursing into nested maps.
func merge(dst, src map[string]any) {
	for k, v := range src {
		if sm, ok := v.(map[string]any); ok {
			if dm, ok := dst[k].(map[string]any); ok {
				merge(dm, sm)
				continue
			}
		}
		dst[k] = v
	}
}

// set assigns a dotted path, creating intermediate maps.
func set(tree map[string]any, path string, val any) {
	parts := strings.Split(path, ".")
	node := tree
	for _, p := range parts[:len(parts)-1] {
		next, ok := node[p].(map[string]any)
		if !ok {
			next = map[string]any{}
			node[p] = next
		}
		node = next
	}
	node[parts[len(parts)-1]] = val
}
