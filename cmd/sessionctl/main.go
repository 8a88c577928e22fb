// Command sessionctl maintains the Postgres session store.
//
//	sessionctl ping     check the database connection
//	sessionctl migrate  apply pending session migrations
//	sessionctl purge    delete expired sessions
//
// Connection settings come from the same DB_* environment variables as the
// server.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: sessionctl ping|migrate|purge")
		os.Exit(2)
	}

	if err := run(os.Args[1]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(command string) error {
	cfg, err := config.LoadDatabase()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(config.LoggerConfig{Level: "info", Format: "console"})

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	switch command {
	case "migrate":
		return database.RunMigrations(cfg.ConnectionString(), logger)
	case "ping":
		return ping(ctx, cfg, logger)
	case "purge":
		return purge(ctx, cfg, logger)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func ping(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger) error {
	pool, err := database.NewPool(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	var dbName string
	if err := pool.QueryRow(ctx, "SELECT current_database()").Scan(&dbName); err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	logger.Info().Str("database", dbName).Msg("connected")
	return nil
}

func purge(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger) error {
	pool, err := database.NewPool(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	n, err := repository.NewPostgresSessionRepository(pool, logger).PurgeExpired(ctx, time.Now())
	if err != nil {
		return err
	}

	logger.Info().Int64("purged", n).Msg("expired sessions purged")
	return nil
}
