// Package config loads engine configuration from an optional file and
// QUIZENGINE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/abhisek/quizengine/internal/llm"
	"github.com/abhisek/quizengine/internal/netstatus"
	"github.com/abhisek/quizengine/internal/resolver"
	"github.com/abhisek/quizengine/internal/store"
)

// Config is the full engine configuration.
type Config struct {
	DB       DBConfig       `mapstructure:"db"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Remote   RemoteConfig   `mapstructure:"remote"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Resolver ResolverConfig `mapstructure:"resolver"`
	Network  NetworkConfig  `mapstructure:"network"`
	Log      LogConfig      `mapstructure:"log"`
}

// DBConfig locates the local SQLite database.
type DBConfig struct {
	Path string `mapstructure:"path"`
}

// CacheConfig selects where exclusions, cached results and review items live.
type CacheConfig struct {
	Backend string      `mapstructure:"backend"` // sqlite, memory or redis
	Redis   RedisConfig `mapstructure:"redis"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addrs     []string `mapstructure:"addrs"`
	Password  string   `mapstructure:"password"`
	DB        int      `mapstructure:"db"`
	KeyPrefix string   `mapstructure:"key_prefix"`
}

// RemoteConfig selects the shared question repository.
type RemoteConfig struct {
	Driver string `mapstructure:"driver"` // sqlite, postgres or none
	DSN    string `mapstructure:"dsn"`
}

// LLMConfig selects and tunes the generative provider.
type LLMConfig struct {
	Provider          string        `mapstructure:"provider"`
	AnthropicAPIKey   string        `mapstructure:"anthropic_api_key"`
	AnthropicModel    string        `mapstructure:"anthropic_model"`
	OpenAIAPIKey      string        `mapstructure:"openai_api_key"`
	OpenAIModel       string        `mapstructure:"openai_model"`
	OpenAIBaseURL     string        `mapstructure:"openai_base_url"`
	GeminiAPIKey      string        `mapstructure:"gemini_api_key"`
	GeminiModel       string        `mapstructure:"gemini_model"`
	OpenRouterAPIKey  string        `mapstructure:"openrouter_api_key"`
	OpenRouterModel   string        `mapstructure:"openrouter_model"`
	Timeout           time.Duration `mapstructure:"timeout"`
	MaxAttempts       int           `mapstructure:"max_attempts"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
}

// ResolverConfig tunes question resolution.
type ResolverConfig struct {
	Target           int           `mapstructure:"target"`
	MinViable        int           `mapstructure:"min_viable"`
	RemoteCandidates int           `mapstructure:"remote_candidates"`
	SourceTimeout    time.Duration `mapstructure:"source_timeout"`
}

// NetworkConfig configures the reachability check.
type NetworkConfig struct {
	Offline    bool          `mapstructure:"offline"`
	CheckAddrs []string      `mapstructure:"check_addrs"`
	TTL        time.Duration `mapstructure:"ttl"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // text or json
}

var envBindings = map[string]string{
	"db.path":                    "QUIZENGINE_DB",
	"cache.backend":              "QUIZENGINE_CACHE_BACKEND",
	"cache.redis.addrs":          "QUIZENGINE_REDIS_ADDRS",
	"cache.redis.password":       "QUIZENGINE_REDIS_PASSWORD",
	"cache.redis.db":             "QUIZENGINE_REDIS_DB",
	"cache.redis.key_prefix":     "QUIZENGINE_REDIS_PREFIX",
	"remote.driver":              "QUIZENGINE_REMOTE_DRIVER",
	"remote.dsn":                 "QUIZENGINE_REMOTE_DSN",
	"llm.provider":               "QUIZENGINE_LLM_PROVIDER",
	"llm.anthropic_api_key":      "QUIZENGINE_ANTHROPIC_API_KEY",
	"llm.anthropic_model":        "QUIZENGINE_ANTHROPIC_MODEL",
	"llm.openai_api_key":         "QUIZENGINE_OPENAI_API_KEY",
	"llm.openai_model":           "QUIZENGINE_OPENAI_MODEL",
	"llm.openai_base_url":        "QUIZENGINE_OPENAI_BASE_URL",
	"llm.gemini_api_key":         "QUIZENGINE_GEMINI_API_KEY",
	"llm.gemini_model":           "QUIZENGINE_GEMINI_MODEL",
	"llm.openrouter_api_key":     "QUIZENGINE_OPENROUTER_API_KEY",
	"llm.openrouter_model":       "QUIZENGINE_OPENROUTER_MODEL",
	"llm.timeout":                "QUIZENGINE_LLM_TIMEOUT",
	"llm.max_attempts":           "QUIZENGINE_LLM_MAX_ATTEMPTS",
	"llm.requests_per_minute":    "QUIZENGINE_LLM_RPM",
	"resolver.target":            "QUIZENGINE_RESOLVER_TARGET",
	"resolver.min_viable":        "QUIZENGINE_RESOLVER_MIN_VIABLE",
	"resolver.remote_candidates": "QUIZENGINE_RESOLVER_REMOTE_CANDIDATES",
	"resolver.source_timeout":    "QUIZENGINE_RESOLVER_SOURCE_TIMEOUT",
	"network.offline":            "QUIZENGINE_OFFLINE",
	"network.check_addrs":        "QUIZENGINE_CHECK_ADDRS",
	"network.ttl":                "QUIZENGINE_CHECK_TTL",
	"log.level":                  "QUIZENGINE_LOG_LEVEL",
	"log.format":                 "QUIZENGINE_LOG_FORMAT",
}

func setDefaults(v *viper.Viper) {
	llmDef := llm.DefaultConfig()
	resDef := resolver.DefaultConfig()
	netDef := netstatus.DefaultCheckerConfig()

	v.SetDefault("cache.backend", "sqlite")
	v.SetDefault("cache.redis.key_prefix", "quizengine:")
	v.SetDefault("remote.driver", "none")
	v.SetDefault("llm.anthropic_model", llmDef.Anthropic.Model)
	v.SetDefault("llm.openai_model", llmDef.OpenAI.Model)
	v.SetDefault("llm.gemini_model", llmDef.Gemini.Model)
	v.SetDefault("llm.openrouter_model", llmDef.OpenRouter.Model)
	v.SetDefault("llm.timeout", llmDef.Timeout)
	v.SetDefault("llm.max_attempts", llmDef.Retry.MaxAttempts)
	v.SetDefault("llm.requests_per_minute", llmDef.RateLimit.RequestsPerMinute)
	v.SetDefault("resolver.target", resDef.Target)
	v.SetDefault("resolver.min_viable", resDef.MinViable)
	v.SetDefault("resolver.remote_candidates", resDef.RemoteCandidates)
	v.SetDefault("resolver.source_timeout", resDef.SourceTimeout)
	v.SetDefault("network.check_addrs", netDef.Addrs)
	v.SetDefault("network.ttl", netDef.TTL)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")
}

// Load reads configuration. path may be empty; a missing file is not an
// error, any other read failure is.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case "sqlite", "memory":
	case "redis":
		if len(c.Cache.Redis.Addrs) == 0 {
			return fmt.Errorf("cache.redis.addrs is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	if c.Remote.Driver != "none" && c.Remote.Driver != "" && c.Remote.DSN == "" {
		return fmt.Errorf("remote.dsn is required for the %s driver", c.Remote.Driver)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// LLMConfig builds the provider configuration. When no provider is
// configured the standard *_API_KEY variables are tried. ok is false when
// no provider with credentials is available.
func (c *Config) LLMConfig() (cfg llm.Config, ok bool) {
	cfg = llm.DefaultConfig()
	cfg.Anthropic = llm.AnthropicConfig{APIKey: c.LLM.AnthropicAPIKey, Model: c.LLM.AnthropicModel}
	cfg.OpenAI = llm.OpenAIConfig{APIKey: c.LLM.OpenAIAPIKey, Model: c.LLM.OpenAIModel, BaseURL: c.LLM.OpenAIBaseURL}
	cfg.Gemini = llm.GeminiConfig{APIKey: c.LLM.GeminiAPIKey, Model: c.LLM.GeminiModel}
	cfg.OpenRouter.APIKey = c.LLM.OpenRouterAPIKey
	cfg.OpenRouter.Model = c.LLM.OpenRouterModel
	cfg.Timeout = c.LLM.Timeout
	cfg.Retry.MaxAttempts = c.LLM.MaxAttempts
	cfg.RateLimit.RequestsPerMinute = c.LLM.RequestsPerMinute

	if c.LLM.Provider != "" {
		cfg.Provider = c.LLM.Provider
		return cfg, cfg.HasKey()
	}
	return llm.DiscoverConfig(cfg)
}

// ResolverConfig returns the resolver settings.
func (c *Config) ResolverConfig() resolver.Config {
	return resolver.Config{
		Target:           c.Resolver.Target,
		MinViable:        c.Resolver.MinViable,
		RemoteCandidates: c.Resolver.RemoteCandidates,
		SourceTimeout:    c.Resolver.SourceTimeout,
	}
}

// NetworkSignal returns the reachability signal.
func (c *Config) NetworkSignal(logger *slog.Logger) netstatus.Signal {
	if c.Network.Offline {
		return netstatus.Static(false)
	}
	return netstatus.NewChecker(netstatus.CheckerConfig{
		Addrs:   c.Network.CheckAddrs,
		TTL:     c.Network.TTL,
		Timeout: 2 * time.Second,
	}, logger)
}

// StoreRedisConfig returns the Redis content store settings.
func (c *Config) StoreRedisConfig() store.RedisConfig {
	return store.RedisConfig{
		Addrs:     c.Cache.Redis.Addrs,
		Password:  c.Cache.Redis.Password,
		DB:        c.Cache.Redis.DB,
		KeyPrefix: c.Cache.Redis.KeyPrefix,
	}
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return l, nil
}

// NewLogger builds a slog logger writing to w.
func NewLogger(cfg LogConfig, w io.Writer) *slog.Logger {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		level = slog.LevelWarn
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
