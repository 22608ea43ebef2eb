package db

import (
	"database/sql"
	"embed"
	"fmt"
	"sync"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

var (
	once    sync.Once
	conn    *sql.DB
	connErr error
)

// Connect opens the process-wide Postgres connection exactly once and runs the
// embedded migrations. Concurrent first callers share the same sync.Once, so a
// burst of early requests cannot race to open duplicate pools.
func Connect(dsn string) (*sql.DB, error) {
	once.Do(func() {
		conn, connErr = open(dsn)
	})
	return conn, connErr
}

func open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}

	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("goose dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return nil, fmt.Errorf("goose up: %w", err)
	}
	return db, nil
}
