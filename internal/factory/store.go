package factory

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aurora-chat/aurora/internal/config"
	"github.com/aurora-chat/aurora/internal/localstate"
	storepkg "github.com/aurora-chat/aurora/internal/store"
	storepg "github.com/aurora-chat/aurora/internal/store/postgres"
	storelite "github.com/aurora-chat/aurora/internal/store/sqlite"
)

// NewStore builds the relational store named by cfg.DBDriver. The schema is
// ensured synchronously so health probes see real tables from the start.
func NewStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (storepkg.Store, error) {
	switch cfg.DBDriver {
	case "postgres":
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("AURORA_POSTGRES_DSN is required when DB_DRIVER=postgres")
		}
		db, err := storepg.Open(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if err := storepg.EnsureSchema(db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("postgres schema bootstrap: %w", err)
		}
		log.Info().Str("driver", "postgres").Msg("store ready")
		return storepg.NewWithDB(db), nil
	case "sqlite":
		path := cfg.SQLitePath
		if path == "" || path == "auto" {
			p, err := localstate.DBPath()
			if err != nil {
				return nil, err
			}
			path = p
		}
		db, err := storelite.Open(path)
		if err != nil {
			return nil, err
		}
		if err := storelite.EnsureSchema(db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite schema bootstrap: %w", err)
		}
		if cfg.DevMode {
			if err := localstate.EnsureDevUser(db, cfg.DefaultQuota); err != nil {
				_ = db.Close()
				return nil, fmt.Errorf("dev user bootstrap: %w", err)
			}
		}
		log.Info().Str("driver", "sqlite").Str("path", path).Msg("store ready")
		return storelite.NewWithDB(db), nil
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER: %s", cfg.DBDriver)
	}
}
