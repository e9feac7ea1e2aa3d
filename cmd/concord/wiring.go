package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/aretw0/concord/internal/config"
	"github.com/aretw0/concord/pkg/adapters/advisor"
	"github.com/aretw0/concord/pkg/adapters/file"
	"github.com/aretw0/concord/pkg/adapters/guidance"
	"github.com/aretw0/concord/pkg/adapters/memory"
	"github.com/aretw0/concord/pkg/adapters/redis"
	"github.com/aretw0/concord/pkg/adapters/sqlite"
	"github.com/aretw0/concord/pkg/persistence/middleware"
	"github.com/aretw0/concord/pkg/ports"
	"github.com/aretw0/concord/pkg/session"
)

func newGuidanceClient(c config.Config) *guidance.Client {
	return guidance.New(c.Guidance.Endpoint, guidance.WithTimeout(c.Guidance.Timeout))
}

func newAdvisor(c config.Config) (ports.Advisor, error) {
	switch c.Advisor.Provider {
	case config.ProviderOpenAI:
		key := c.Advisor.APIKey()
		if key == "" {
			return nil, fmt.Errorf("%w: set %s", advisor.ErrOpenAINoAPIKey, c.Advisor.APIKeyEnv)
		}
		return advisor.NewOpenAI(key,
			advisor.WithBaseURL(c.Advisor.BaseURL),
			advisor.WithModel(c.Advisor.Model),
			advisor.WithRequestTimeout(c.Advisor.Timeout),
		), nil
	default:
		return advisor.NewHeuristic(), nil
	}
}

// history is the opened history backend.
type history struct {
	Manager *session.Manager
	// Raw is the store below the middlewares.
	Raw   ports.HistoryStore
	close func() error
}

// Close releases the backend.
func (h *history) Close() error {
	if h == nil || h.close == nil {
		return nil
	}
	return h.close()
}

// openHistory opens the configured backend. It returns nil when recording is disabled.
func openHistory(c config.HistoryConfig, logger *slog.Logger) (*history, error) {
	h := &history{}
	var opts []session.Option

	switch c.Backend {
	case config.BackendNone:
		return nil, nil
	case config.BackendMemory:
		h.Raw = memory.NewStore()
	case config.BackendFile:
		h.Raw = file.New(c.Path)
	case config.BackendRedis:
		store := redis.New(c.Redis.Addr, c.Redis.Password, c.Redis.DB,
			redis.WithPrefix(c.Redis.Prefix),
			redis.WithTTL(c.Redis.TTL),
		)
		if err := store.Client().Ping(context.Background()).Err(); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("connect to redis at %s: %w", c.Redis.Addr, err)
		}
		h.Raw = store
		h.close = store.Close
		opts = append(opts, session.WithLocker(redis.NewLocker(store.Client(), store.Prefix())))
	case config.BackendSQLite:
		path := sqlitePath(c.Path)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
		store, err := sqlite.Open(path)
		if err != nil {
			return nil, err
		}
		h.Raw = store
		h.close = store.Close
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownBackend, c.Backend)
	}

	mws, err := historyMiddlewares(c)
	if err != nil {
		_ = h.Close()
		return nil, err
	}
	opts = append(opts, session.WithLogger(logger))
	h.Manager = session.NewManager(middleware.Chain(h.Raw, mws...), opts...)
	return h, nil
}

// historyMiddlewares masks configured fields before sealing the whole history.
func historyMiddlewares(c config.HistoryConfig) ([]middleware.Middleware, error) {
	var mws []middleware.Middleware
	if len(c.PIIFields) > 0 {
		for _, p := range c.PIIFields {
			if _, err := regexp.Compile(p); err != nil {
				return nil, fmt.Errorf("history pii field pattern %q: %w", p, err)
			}
		}
		mws = append(mws, middleware.NewPIIMiddleware(c.PIIFields))
	}
	if c.EncryptionKeyEnv != "" {
		raw := c.EncryptionKey()
		if raw == "" {
			return nil, fmt.Errorf("history encryption key variable %s is empty", c.EncryptionKeyEnv)
		}
		key, err := middleware.DecodeKey(raw)
		if err != nil {
			return nil, fmt.Errorf("history encryption key: %w", err)
		}
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}))
	}
	return mws, nil
}

func sqlitePath(p string) string {
	if strings.HasSuffix(p, ".db") || strings.HasSuffix(p, ".sqlite") {
		return p
	}
	return filepath.Join(p, "history.db")
}
