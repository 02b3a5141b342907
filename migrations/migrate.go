// Package migrations embeds the goose schema migrations of both databases:
// the server's PostgreSQL store-of-record and the client's SQLite outbox.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"
)

//go:embed postgres/*.sql sqlite/*.sql
var embedMigrations embed.FS

// Dialect selects the migration set and the goose dialect.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite3"
)

var ErrUnknownDialect = errors.New("unknown migration dialect")

// goose keeps its base FS and dialect in package globals.
var gooseMu sync.Mutex

func (d Dialect) dir() (string, error) {
	switch d {
	case Postgres:
		return "postgres", nil
	case SQLite:
		return "sqlite", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDialect, string(d))
	}
}

// Migrate applies all pending migrations of dialect to db.
func Migrate(db *sql.DB, dialect Dialect) error {
	if db == nil {
		return errors.New("migration error: db is nil")
	}

	dir, err := dialect.dir()
	if err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect(string(dialect)); err != nil {
		return fmt.Errorf("migration error setting dialect for db: %w", err)
	}

	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	return nil
}
