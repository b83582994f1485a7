package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// Registers the "postgres" database/sql driver used by goose.
	_ "github.com/lib/pq"

	"github.com/angelmondragon/shopfront-backend/pkg/config"
)

const postgresSQLDriver = "postgres"

// OpenSQL opens a plain *sql.DB on lib/pq for tooling that works below gorm,
// such as the migrate command. SQLite is rejected: it uses the built-in schema.
func OpenSQL(ctx context.Context, cfg config.DBConfig) (*sql.DB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database DSN is required")
	}
	if cfg.IsSQLite() {
		return nil, fmt.Errorf("goose migrations target postgres; sqlite uses the built-in schema")
	}

	sqlDB, err := sql.Open(postgresSQLDriver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s connection: %w", postgresSQLDriver, err)
	}
	configurePool(sqlDB, cfg)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping %s: %w", postgresSQLDriver, err)
	}
	return sqlDB, nil
}
