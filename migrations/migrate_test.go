// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package migrations

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_DBError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_ = mock // goose talks to the DB itself; every unexpected call fails

	err = Migrate(db, Postgres)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migration error")
}

func TestMigrate_NilDB(t *testing.T) {
	var db *sql.DB

	err := Migrate(db, Postgres)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db is nil")
}

func TestMigrate_UnknownDialect(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	assert.ErrorIs(t, Migrate(db, Dialect("oracle")), ErrUnknownDialect)
}

func TestMigrate_SQLiteCreatesQueue(t *testing.T) {
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "outbox.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Migrate(db, SQLite))
	// idempotent
	require.NoError(t, Migrate(db, SQLite))

	var name string
	err = db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='sync_queue'`).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "sync_queue", name)
}

func TestEmbeddedMigrations_Present(t *testing.T) {
	for _, dir := range []string{"postgres", "sqlite"} {
		entries, err := embedMigrations.ReadDir(dir)
		require.NoError(t, err)
		assert.NotEmpty(t, entries, dir)
	}
}
