package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/medsync/internal/client"
	"github.com/MKhiriev/medsync/internal/logger"
)

type cliFixture struct {
	keys string
	db   string
}

func newCLIFixture(t *testing.T) cliFixture {
	t.Helper()
	dir := t.TempDir()
	return cliFixture{keys: filepath.Join(dir, "keys.json"), db: filepath.Join(dir, "outbox.db")}
}

func (f cliFixture) exec(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	root := newRootCmd(&out, logger.Nop())
	root.SetArgs(append([]string{
		"--keys", f.keys,
		"--db", f.db,
		"--passphrase", "secret",
		"--server", "http://127.0.0.1:1",
	}, args...))
	root.SetOut(&out)
	root.SetErr(&out)

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestKeysGenerateAndExport(t *testing.T) {
	f := newCLIFixture(t)

	out, err := f.exec(t, "keys", "generate")
	require.NoError(t, err)
	assert.Contains(t, out, "Key ring created")

	_, err = f.exec(t, "keys", "generate")
	assert.ErrorIs(t, err, client.ErrKeyRingExists)

	out, err = f.exec(t, "keys", "export-public")
	require.NoError(t, err)
	assert.Contains(t, out, "-----BEGIN PUBLIC KEY-----")
}

func TestEnqueueAndStatus(t *testing.T) {
	f := newCLIFixture(t)

	out, err := f.exec(t, "enqueue", "--type", "note", "--data", `{"text":"hi"}`)
	require.NoError(t, err)
	assert.Contains(t, out, "Mutation queued")

	out, err = f.exec(t, "queue", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "1 pending")

	_, err = f.exec(t, "queue", "purge")
	assert.Error(t, err)

	out, err = f.exec(t, "queue", "purge", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "1 removed")
}

func TestEnqueue_Validation(t *testing.T) {
	f := newCLIFixture(t)

	_, err := f.exec(t, "enqueue", "--data", `{}`)
	assert.Error(t, err)

	out, err := f.exec(t, "enqueue", "--type", "note", "--data", `not json`)
	assert.Error(t, err)
	assert.Contains(t, out, "Enqueue failed")
}

func TestSync_Offline(t *testing.T) {
	f := newCLIFixture(t)
	_, err := f.exec(t, "keys", "generate")
	require.NoError(t, err)

	out, err := f.exec(t, "sync")
	require.NoError(t, err)
	assert.Contains(t, out, "Sync skipped")
	assert.Contains(t, out, "offline")
}
