package checkpoint

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anthanhphan/go-inflow-generator/pkg/resilience"
)

func TestJournal_Persistence(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	j1, err := OpenJournal(dir, true)
	require.NoError(t, err)
	require.NoError(t, j1.MarkCompleted(ctx, "run-a", 3))
	require.NoError(t, j1.MarkCompleted(ctx, "run-a", 1))
	require.NoError(t, j1.MarkCompleted(ctx, "run-a", 3))
	require.NoError(t, j1.MarkCompleted(ctx, "run-b", 0))
	require.NoError(t, j1.Close())

	assert.ErrorIs(t, j1.MarkCompleted(ctx, "run-a", 7), ErrStoreClosed)

	j2, err := OpenJournal(dir, false)
	require.NoError(t, err)
	defer func() { _ = j2.Close() }()

	got, err := j2.Completed(ctx, "run-a")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, got)

	got, err = j2.Completed(ctx, "run-b")
	require.NoError(t, err)
	assert.Equal(t, []int{0}, got)

	got, err = j2.Completed(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, got)

	info, err := os.Stat(filepath.Join(dir, JournalFileName))
	require.NoError(t, err)
	assert.Equal(t, int64(3*len(encodeEntry("run-a", 0))), info.Size())
}

func TestJournal_TruncatesPartialTail(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	j1, err := OpenJournal(dir, false)
	require.NoError(t, err)
	require.NoError(t, j1.MarkCompleted(ctx, "run", 5))
	require.NoError(t, j1.Close())

	path := filepath.Join(dir, JournalFileName)
	valid, err := os.Stat(path)
	require.NoError(t, err)

	// Simulate a crash in the middle of the second entry.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0600)
	require.NoError(t, err)
	_, err = f.Write(encodeEntry("run", 6)[:7])
	require.NoError(t, err)
	require.NoError(t, f.Close())

	j2, err := OpenJournal(dir, false)
	require.NoError(t, err)
	defer func() { _ = j2.Close() }()

	got, err := j2.Completed(ctx, "run")
	require.NoError(t, err)
	assert.Equal(t, []int{5}, got)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, valid.Size(), info.Size())

	require.NoError(t, j2.MarkCompleted(ctx, "run", 6))
	got, err = j2.Completed(ctx, "run")
	require.NoError(t, err)
	assert.Equal(t, []int{5, 6}, got)
}

func TestJournal_CorruptChecksum(t *testing.T) {
	dir := t.TempDir()
	entry := encodeEntry("run", 2)
	entry[len(entry)-1] ^= 0xff
	good := encodeEntry("run", 1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, JournalFileName), append(good, entry...), 0600))

	j, err := OpenJournal(dir, false)
	require.NoError(t, err)
	defer func() { _ = j.Close() }()

	got, err := j.Completed(context.Background(), "run")
	require.NoError(t, err)
	assert.Equal(t, []int{1}, got)
}

func TestJournal_InvalidInput(t *testing.T) {
	j, err := OpenJournal(t.TempDir(), false)
	require.NoError(t, err)
	defer func() { _ = j.Close() }()

	assert.Error(t, j.MarkCompleted(context.Background(), "", 1))
	assert.Error(t, j.MarkCompleted(context.Background(), "run", -1))
}

type failingStore struct {
	calls int
}

func (f *failingStore) Completed(context.Context, string) ([]int, error) {
	f.calls++
	return nil, errors.New("store down")
}

func (f *failingStore) MarkCompleted(context.Context, string, int) error {
	f.calls++
	return errors.New("store down")
}

func (f *failingStore) Close() error { return nil }

func TestGuarded_SwallowsFailuresAndOpens(t *testing.T) {
	store := &failingStore{}
	g := NewGuarded(store, "checkpoint", 2, time.Minute)
	ctx := context.Background()

	got, err := g.Completed(ctx, "run")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, g.MarkCompleted(ctx, "run", 0))
	assert.Equal(t, resilience.CircuitOpen, g.State())

	// Open breaker short-circuits further calls.
	require.NoError(t, g.MarkCompleted(ctx, "run", 1))
	assert.Equal(t, 2, store.calls)
}

func TestGuarded_PassesThrough(t *testing.T) {
	j, err := OpenJournal(t.TempDir(), false)
	require.NoError(t, err)
	g := NewGuarded(j, "checkpoint", 3, time.Second)
	defer func() { _ = g.Close() }()

	ctx := context.Background()
	require.NoError(t, g.MarkCompleted(ctx, "run", 4))
	got, err := g.Completed(ctx, "run")
	require.NoError(t, err)
	assert.Equal(t, []int{4}, got)
	assert.Equal(t, resilience.CircuitClosed, g.State())
}

func TestRedisStore_UnreachableIsGuarded(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	store := NewRedisStore(client)

	_, err := store.Completed(context.Background(), "run")
	require.Error(t, err)

	g := NewGuarded(store, "redis", 1, time.Minute)
	defer func() { _ = g.Close() }()
	got, err := g.Completed(context.Background(), "run")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, g.MarkCompleted(context.Background(), "run", 1))
}
