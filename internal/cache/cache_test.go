package cache

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openInMemory(t *testing.T) *DB {
	t.Helper()

	db, err := Open(Config{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestCache_PutGet(t *testing.T) {
	c := NewCache(openInMemory(t))
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "record:1", json.RawMessage(`{"id":"1"}`), time.Hour))

	got, ok, err := c.Get(ctx, "record:1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"id":"1"}`, string(got))
}

func TestCache_Miss(t *testing.T) {
	c := NewCache(openInMemory(t))

	got, ok, err := c.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestCache_ExpiresAtBoundary(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	c := NewCache(openInMemory(t), WithClock(clock.Now))
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "k", json.RawMessage(`1`), 10*time.Second))

	clock.Advance(10*time.Second - time.Nanosecond)
	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok, "entry must be served before expiry")

	clock.Advance(time.Nanosecond)
	_, ok, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok, "entry must be absent once now reaches expires_at")
}

func TestCache_PutOverwritesAndRefreshesTTL(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	c := NewCache(openInMemory(t), WithClock(clock.Now))
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "k", json.RawMessage(`"old"`), time.Minute))
	clock.Advance(50 * time.Second)
	require.NoError(t, c.Put(ctx, "k", json.RawMessage(`"new"`), time.Minute))
	clock.Advance(30 * time.Second)

	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `"new"`, string(got))
}

func TestCache_Delete(t *testing.T) {
	c := NewCache(openInMemory(t))
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "k", json.RawMessage(`1`), time.Hour))
	require.NoError(t, c.Delete(ctx, "k"))
	require.NoError(t, c.Delete(ctx, "never-set"))

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_RejectsNonPositiveTTL(t *testing.T) {
	c := NewCache(openInMemory(t))

	err := c.Put(context.Background(), "k", json.RawMessage(`1`), 0)
	assert.ErrorIs(t, err, ErrInvalidTTL)
}

func TestOpen_PersistentRequiresDir(t *testing.T) {
	_, err := Open(Config{})
	assert.Error(t, err)
}

func TestOpen_PersistentSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	db, err := Open(Config{Dir: dir})
	require.NoError(t, err)
	require.NoError(t, NewCache(db).Put(ctx, "k", json.RawMessage(`"v"`), time.Hour))
	require.NoError(t, db.RunGC(0.5))
	require.NoError(t, db.Close())

	db, err = Open(Config{Dir: dir})
	require.NoError(t, err)
	defer db.Close()

	got, ok, err := NewCache(db).Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `"v"`, string(got))
}

func TestRunGC_InMemoryIsNoop(t *testing.T) {
	assert.NoError(t, openInMemory(t).RunGC(0.5))
}
