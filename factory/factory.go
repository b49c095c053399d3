// Package factory wires configuration to concrete implementations.
package factory

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/vesper-bot/vesper-store/config"
	"github.com/vesper-bot/vesper-store/store"
	"github.com/vesper-bot/vesper-store/store/postgres"
	"github.com/vesper-bot/vesper-store/store/sqlite"
)

// NewStore creates the store selected by cfg.DBDriver, migrated and ready.
func NewStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (store.Store, error) {
	switch cfg.DBDriver {
	case "sqlite":
		log.Info().Str("path", cfg.SQLitePath).Msg("opening sqlite store")
		return sqlite.New(cfg.SQLitePath)
	case "postgres":
		log.Info().Msg("opening postgres store")
		return postgres.New(ctx, cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER: %s", cfg.DBDriver)
	}
}
