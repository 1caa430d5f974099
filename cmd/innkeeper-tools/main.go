// Command innkeeper-tools runs the hotel operations MCP tool server over stdio.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/karthik-pvr/innkeeper/internal/lockfile"
	"github.com/karthik-pvr/innkeeper/internal/store"
	"github.com/karthik-pvr/innkeeper/internal/toolserver"
)

func main() {
	initializeLogger()

	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	}

	dbDSN := flag.String("db-dsn", os.Getenv("DATABASE_URL"), "database DSN, SQLite file path or Postgres URL (overrides $DATABASE_URL); empty uses in-memory storage")
	flag.Parse()

	if *dbDSN != "" && store.DetectDSNType(*dbDSN) == "sqlite" {
		lock, err := lockfile.AcquireLock(filepath.Dir(*dbDSN))
		if err != nil {
			slog.Error("innkeeper-tools failed to lock data directory", "error", err)
			os.Exit(1)
		}
		defer lock.Release()
	}

	st, err := openStore(*dbDSN)
	if err != nil {
		slog.Error("innkeeper-tools failed to open store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	srv := toolserver.New(st)
	if err := srv.Run(context.Background()); err != nil {
		slog.Error("innkeeper-tools failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("innkeeper-tools exited successfully")
}

// initializeLogger sets up structured logging on stderr, honoring $LOG_LEVEL.
// Stdout carries the MCP protocol, so logs must not go there.
func initializeLogger() {
	level := slog.LevelInfo
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// openStore selects a storage backend from the DSN.
func openStore(dsn string) (store.Store, error) {
	if dsn == "" {
		slog.Debug("No database DSN provided, using in-memory store")
		return store.NewInMemoryStore(), nil
	}
	if store.DetectDSNType(dsn) == "postgres" {
		slog.Debug("Detected PostgreSQL DSN, configuring PostgreSQL store", "dsn_set", true)
		return store.NewPostgresStore(store.WithPostgresDSN(dsn))
	}
	slog.Debug("Detected SQLite DSN, configuring SQLite store", "db_path", dsn)
	return store.NewSQLiteStore(store.WithSQLiteDSN(dsn))
}
