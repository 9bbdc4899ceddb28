package session

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodingWeeb-Gaurav/backend/types"
)

func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewStore(NewMemoryCache(), time.Hour)

	s := New("s-1", "token")
	s.AppendExchange("hello", "hi there")
	require.NoError(t, store.Save(ctx, s))

	loaded, found, err := store.Load(ctx, "s-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, types.StageProductSelection, loaded.Stage)
	assert.Equal(t, "token", loaded.UserAuth)
	require.Len(t, loaded.History, 1)
	assert.Equal(t, "hello", loaded.History[0].User)

	_, found, err = store.Load(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStoreExpiry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cache := NewMemoryCache()
	store := NewStore(cache, time.Hour)

	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }

	require.NoError(t, store.Save(ctx, New("s-exp", "token")))

	// within the window the session is served
	clock = clock.Add(30 * time.Minute)
	_, found, err := store.Load(ctx, "s-exp")
	require.NoError(t, err)
	assert.True(t, found)

	// past the window it is treated as absent and purged
	clock = clock.Add(2 * time.Hour)
	_, found, err = store.Load(ctx, "s-exp")
	require.NoError(t, err)
	assert.False(t, found)

	_, okHit, err := cache.Get(ctx, sessionNamespace+"s-exp")
	require.NoError(t, err)
	assert.False(t, okHit)
}

func TestSweep(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cache := NewMemoryCache()
	store := NewStore(cache, time.Hour)

	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }

	require.NoError(t, store.Save(ctx, New("old", "t")))
	clock = clock.Add(90 * time.Minute)
	require.NoError(t, store.Save(ctx, New("fresh", "t")))

	// an undecodable record is swept too
	require.NoError(t, cache.Set(ctx, sessionNamespace+"broken", []byte("not json")))

	removed, err := store.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	_, found, err := store.Load(ctx, "fresh")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestSQLiteCache(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	cache, err := NewSQLiteCache(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })

	require.NoError(t, cache.Set(ctx, "agent:session:a", []byte("one")))
	require.NoError(t, cache.Set(ctx, "agent:session:a", []byte("two"))) // upsert
	require.NoError(t, cache.Set(ctx, "agent:chatlog:a", []byte("log")))

	val, okHit, err := cache.Get(ctx, "agent:session:a")
	require.NoError(t, err)
	require.True(t, okHit)
	assert.Equal(t, []byte("two"), val)

	keys, err := cache.Keys(ctx, "agent:session:")
	require.NoError(t, err)
	assert.Equal(t, []string{"agent:session:a"}, keys)

	require.NoError(t, cache.Del(ctx, "agent:session:a"))
	_, okHit, err = cache.Get(ctx, "agent:session:a")
	require.NoError(t, err)
	assert.False(t, okHit)
}

func TestMemoryCacheCopies(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cache := NewMemoryCache()

	val := []byte("abc")
	require.NoError(t, cache.Set(ctx, "k", val))
	val[0] = 'z'

	got, okHit, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, okHit)
	assert.Equal(t, []byte("abc"), got)
}

func TestChatLog(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	log := NewChatLog(NewMemoryCache())

	require.NoError(t, log.Append(ctx, "s-1", "hi", "hello"))
	require.NoError(t, log.Append(ctx, "s-1", "how much?", "12.5 per KG"))

	entries, err := log.Load(ctx, "s-1")
	require.NoError(t, err)
	require.Len(t, entries, 4)
	assert.Equal(t, "user", entries[0].Role)
	assert.Equal(t, "ai", entries[1].Role)
	assert.Equal(t, "how much?", entries[2].Message)

	empty, err := log.Load(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestExpandForDetailsSeedsUnit(t *testing.T) {
	t.Parallel()

	s := New("s", "t")
	s.Product = &types.Product{Unit: "KG"}
	s.ExpandForDetails()
	require.NotNil(t, s.Details)
	assert.Equal(t, "KG", s.Details.Unit)

	// a unit outside the allowed set is not seeded
	s2 := New("s2", "t")
	s2.Product = &types.Product{Unit: "Litre"}
	s2.ExpandForDetails()
	assert.Empty(t, s2.Details.Unit)
}

func TestRecentExchanges(t *testing.T) {
	t.Parallel()

	s := New("s", "t")
	for range 10 {
		s.AppendExchange("u", "a")
	}
	assert.Len(t, s.RecentExchanges(6), 6)
	assert.Len(t, s.RecentExchanges(0), 10)
	assert.Len(t, s.RecentExchanges(20), 10)
}
