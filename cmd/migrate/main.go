// Command migrate applies the schema to the configured PostgreSQL database.
// The schema is idempotent (CREATE ... IF NOT EXISTS), so re-running is safe.
package main

import (
	"context"
	"database/sql"
	"os"
	"time"

	_ "github.com/lib/pq"

	"repute/internal/platform/config"
	"repute/internal/platform/logger"
	"repute/migrations"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if cfg.PostgresDSN == "" {
		log.Error("REPUTE_POSTGRES_DSN is required")
		os.Exit(1)
	}

	db, err := sql.Open("postgres", cfg.PostgresDSN)
	if err != nil {
		log.Error("postgres open failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		log.Error("postgres ping failed", "error", err)
		os.Exit(1)
	}
	if _, err := db.ExecContext(ctx, migrations.Schema); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("schema applied")
}
