package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-prep/internal/config"
	"github.com/stemsi/exstem-prep/internal/storage"
)

// NeedsPostgres reports whether cfg requires a PostgreSQL pool.
func NeedsPostgres(cfg *config.Config) bool {
	return cfg.BankSource == config.BankSourcePostgres || cfg.ArchiveEnabled
}

// NeedsRedis reports whether cfg requires a Redis client.
func NeedsRedis(cfg *config.Config) bool {
	return cfg.StoreDriver == config.StoreRedis || cfg.ArchiveEnabled
}

// NewStore opens the session storage backend selected by cfg.StoreDriver.
// The returned close func releases the backend; it never closes rdb.
func NewStore(cfg *config.Config, rdb *redis.Client, log zerolog.Logger) (storage.Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.StoreDriver {
	case config.StoreMemory:
		log.Warn().Msg("Using in-memory session storage, state is lost on restart")
		return storage.NewMemoryStore(), noop, nil

	case config.StoreSQLite:
		if dir := filepath.Dir(cfg.SQLitePath); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, fmt.Errorf("create sqlite dir: %w", err)
			}
		}
		s, err := storage.NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("path", cfg.SQLitePath).Msg("SQLite session storage opened")
		return s, s.Close, nil

	case config.StoreRedis:
		if rdb == nil {
			return nil, nil, fmt.Errorf("store driver %q requires a redis client", cfg.StoreDriver)
		}
		return storage.NewRedisStore(rdb), noop, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
