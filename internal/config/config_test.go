package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizengine/internal/netstatus"
)

func clearKeys(t *testing.T) {
	for _, k := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearKeys(t)
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Cache.Backend)
	assert.Equal(t, "none", cfg.Remote.Driver)
	assert.Equal(t, 10, cfg.Resolver.Target)
	assert.Equal(t, 5, cfg.Resolver.MinViable)
	assert.Equal(t, 30, cfg.Resolver.RemoteCandidates)
	assert.Equal(t, 10*time.Second, cfg.Resolver.SourceTimeout)
	assert.Equal(t, "warn", cfg.Log.Level)

	_, ok := cfg.LLMConfig()
	assert.False(t, ok)
}

func TestLoad_FileAndEnv(t *testing.T) {
	clearKeys(t)
	path := filepath.Join(t.TempDir(), "quizengine.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
cache:
  backend: redis
  redis:
    addrs: ["localhost:6379"]
remote:
  driver: postgres
  dsn: postgres://quiz@localhost/quiz
resolver:
  target: 8
  source_timeout: 3s
llm:
  provider: openai
log:
  level: debug
  format: json
`), 0o600))
	t.Setenv("QUIZENGINE_OPENAI_API_KEY", "sk-test")
	t.Setenv("QUIZENGINE_RESOLVER_TARGET", "12")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, []string{"localhost:6379"}, cfg.StoreRedisConfig().Addrs)
	assert.Equal(t, "quizengine:", cfg.StoreRedisConfig().KeyPrefix)
	assert.Equal(t, "postgres", cfg.Remote.Driver)
	assert.Equal(t, 12, cfg.ResolverConfig().Target, "environment wins over the file")
	assert.Equal(t, 3*time.Second, cfg.ResolverConfig().SourceTimeout)

	llmCfg, ok := cfg.LLMConfig()
	require.True(t, ok)
	assert.Equal(t, "openai", llmCfg.Provider)
	assert.Equal(t, "sk-test", llmCfg.OpenAI.APIKey)
}

func TestLoad_MissingFileIsFine(t *testing.T) {
	clearKeys(t)
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.NoError(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	clearKeys(t)
	tests := map[string]string{
		"QUIZENGINE_CACHE_BACKEND": "etcd",
		"QUIZENGINE_REMOTE_DRIVER": "postgres",
		"QUIZENGINE_LOG_LEVEL":     "loud",
	}
	for env, val := range tests {
		t.Run(env, func(t *testing.T) {
			t.Setenv(env, val)
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestLLMConfig_Discovery(t *testing.T) {
	clearKeys(t)
	t.Setenv("GEMINI_API_KEY", "g-key")

	cfg, err := Load("")
	require.NoError(t, err)
	llmCfg, ok := cfg.LLMConfig()
	require.True(t, ok)
	assert.Equal(t, "gemini", llmCfg.Provider)
	assert.Equal(t, "g-key", llmCfg.Gemini.APIKey)
}

func TestNetworkSignal(t *testing.T) {
	clearKeys(t)
	t.Setenv("QUIZENGINE_OFFLINE", "true")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, netstatus.Static(false), cfg.NetworkSignal(nil))

	cfg.Network.Offline = false
	_, isChecker := cfg.NetworkSignal(nil).(*netstatus.Checker)
	assert.True(t, isChecker)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(LogConfig{Level: "info", Format: "json"}, &buf)
	log.Debug("hidden")
	log.Info("shown", "k", "v")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"k":"v"`)
}
