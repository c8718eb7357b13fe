package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizengine/internal/bank"
	"github.com/abhisek/quizengine/internal/config"
	"github.com/abhisek/quizengine/internal/contentgen"
	"github.com/abhisek/quizengine/internal/exclusion"
	"github.com/abhisek/quizengine/internal/llm"
	"github.com/abhisek/quizengine/internal/quizcache"
	"github.com/abhisek/quizengine/internal/remote"
	"github.com/abhisek/quizengine/internal/resolver"
	"github.com/abhisek/quizengine/internal/srs"
	"github.com/abhisek/quizengine/internal/store"
)

// env holds the dependencies shared by commands.
type env struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *store.Store
	content  store.ContentStore
	bank     *bank.Bank
	remote   *remote.SQLRepository
	provider llm.Provider
	gen      *contentgen.Client

	closers []io.Closer
}

func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i].Close()
	}
}

// errNoProvider is returned by commands that need a generative provider.
var errNoProvider = errors.New("no LLM provider configured: set QUIZENGINE_LLM_PROVIDER and its API key, or one of GEMINI_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY, OPENROUTER_API_KEY")

// loadConfig reads the config file and applies persistent flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.DB.Path = p
	}
	if l, _ := cmd.Flags().GetString("log-level"); l != "" {
		cfg.Log.Level = l
	}
	if off, _ := cmd.Flags().GetBool("offline"); off {
		cfg.Network.Offline = true
	}
	return cfg, nil
}

// resolveDBPath returns the database path using --db / QUIZENGINE_DB,
// then the default XDG path.
func resolveDBPath(cfg *config.Config) (string, error) {
	if cfg.DB.Path != "" {
		return cfg.DB.Path, store.EnsureDir(cfg.DB.Path)
	}
	return store.DefaultDBPath()
}

// openEnv opens the local store and every configured backend. Optional
// backends that fail to start are logged and left out.
func openEnv(cmd *cobra.Command) (*env, error) {
	ctx := cmd.Context()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	e := &env{cfg: cfg, logger: config.NewLogger(cfg.Log, os.Stderr)}

	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	e.store = st
	e.closers = append(e.closers, st)

	if e.content, err = openContentStore(ctx, cfg, st, e); err != nil {
		e.Close()
		return nil, err
	}

	if e.bank, err = bank.Load(); err != nil {
		e.Close()
		return nil, fmt.Errorf("load question bank: %w", err)
	}

	if cfg.Remote.Driver != "" && cfg.Remote.Driver != "none" {
		if repo, err := openRemote(ctx, cfg); err != nil {
			e.logger.Warn("remote repository unavailable", "driver", cfg.Remote.Driver, "error", err)
		} else {
			e.remote = repo
			e.closers = append(e.closers, repo)
		}
	}

	if llmCfg, ok := cfg.LLMConfig(); ok {
		provider, err := llm.NewProvider(ctx, llmCfg, st.EventRepo(), e.logger)
		if err != nil {
			e.logger.Warn("LLM provider unavailable", "provider", llmCfg.Provider, "error", err)
		} else {
			e.provider = provider
			e.gen = contentgen.New(provider, st.EventRepo(), e.logger, contentgen.DefaultConfig())
		}
	}

	return e, nil
}

func openContentStore(ctx context.Context, cfg *config.Config, st *store.Store, e *env) (store.ContentStore, error) {
	switch cfg.Cache.Backend {
	case "memory":
		return store.NewMemoryContentStore(), nil
	case "redis":
		client, err := store.NewRedisClient(ctx, cfg.StoreRedisConfig())
		if err != nil {
			return nil, err
		}
		rs, err := store.NewRedisContentStore(client, cfg.Cache.Redis.KeyPrefix)
		if err != nil {
			client.Close()
			return nil, err
		}
		e.closers = append(e.closers, rs)
		return rs, nil
	default:
		return st.ContentStore(), nil
	}
}

func openRemote(ctx context.Context, cfg *config.Config) (*remote.SQLRepository, error) {
	driver, err := remote.ParseDriver(cfg.Remote.Driver)
	if err != nil {
		return nil, err
	}
	return remote.Open(ctx, driver, cfg.Remote.DSN)
}

func (e *env) exclusions() *exclusion.Tracker {
	return exclusion.NewTracker(e.content, e.logger)
}

func (e *env) cache() *quizcache.Cache {
	return quizcache.New(e.content, e.logger)
}

func (e *env) scheduler() *srs.Scheduler {
	return srs.New(e.content, e.logger)
}

func (e *env) resolver() *resolver.Resolver {
	deps := resolver.Deps{
		Exclusions: e.exclusions(),
		Cache:      e.cache(),
		Bank:       e.bank,
		Network:    e.cfg.NetworkSignal(e.logger),
		Logger:     e.logger,
	}
	// Leave interface fields nil rather than holding typed nil pointers.
	if e.remote != nil {
		deps.Remote = e.remote
	}
	if e.gen != nil {
		deps.Generator = e.gen
	}
	return resolver.New(e.cfg.ResolverConfig(), deps)
}

// openLocalStore opens only the local SQLite store, for commands that read
// the event log.
func openLocalStore(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}
