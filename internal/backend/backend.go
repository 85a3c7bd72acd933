// Package backend builds the record store and the intent resolver chain
// selected by configuration.
package backend

import (
	"context"
	"fmt"

	"agenda/internal/config"
	"agenda/internal/log"
	"agenda/internal/records"
	"agenda/internal/records/memory"
	"agenda/internal/storage"
)

// BackendType names a record store implementation.
type BackendType string

const (
	MemoryBackend BackendType = "memory"
	SQLiteBackend BackendType = "sqlite"
)

func (t BackendType) IsValid() bool {
	return t == MemoryBackend || t == SQLiteBackend
}

func (t BackendType) String() string { return string(t) }

// Config holds what the store factory needs.
type Config struct {
	Type          BackendType
	SQLiteDBPath  string
	DataDirectory string
	// Skips, when set, counts rows the SQLite store could not decode.
	Skips         storage.SkipRecorder
}

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}
	cfg := Config{
		Type:          BackendType(appConfig.DataBackend),
		SQLiteDBPath:  appConfig.SQLiteDBPath,
		DataDirectory: appConfig.DataDirectory,
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}
	if c.Type == SQLiteBackend && c.SQLiteDBPath == "" {
		return fmt.Errorf("SQLite database path is required for sqlite backend")
	}
	return nil
}

// NewStore opens the configured record store. The caller must Close it.
func NewStore(ctx context.Context, cfg Config, logger *log.Logger) (records.Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger = logger.WithComponent(log.ComponentBackend)

	switch cfg.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath, logger)
		if err != nil {
			return nil, fmt.Errorf("initialize SQLite repository: %w", err)
		}
		if cfg.Skips != nil {
			repo.SetSkipRecorder(cfg.Skips)
		}
		logger.InfoContext(ctx, "Using SQLite record store", "path", cfg.SQLiteDBPath)
		return repo, nil
	default:
		dir := cfg.DataDirectory
		if dir == "" {
			dir = "data"
		}
		store, err := memory.NewFromDir(dir, logger)
		if err != nil {
			return nil, fmt.Errorf("initialize memory store: %w", err)
		}
		logger.InfoContext(ctx, "Using in-memory record store", "seed_dir", dir)
		return store, nil
	}
}
