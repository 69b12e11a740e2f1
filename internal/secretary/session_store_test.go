package secretary

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSession() *Session {
	at := time.Date(2025, 12, 8, 9, 0, 0, 0, time.UTC)
	s := NewSession("chat_1", at)
	s.Entities = Entities{Service: "Детский массаж", Name: "Анна"}
	s.State = StateCollectingPhone
	s.AddTurn("user", "Анна", at)
	return s
}

func TestRedisSessionStoreRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := NewRedisSessionStore(client, time.Hour)
	ctx := context.Background()

	_, err := store.Load(ctx, "chat_1")
	require.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, store.Save(ctx, sampleSession()))
	got, err := store.Load(ctx, "chat_1")
	require.NoError(t, err)
	assert.Equal(t, "Анна", got.Entities.Name)
	assert.Equal(t, StateCollectingPhone, got.State)
	assert.Len(t, got.History, 1)
	assert.Equal(t, time.Hour, mr.TTL(sessionKey("chat_1")))

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	mr.FastForward(2 * time.Hour)
	_, err = store.Load(ctx, "chat_1")
	require.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, store.Save(ctx, sampleSession()))
	require.NoError(t, store.Delete(ctx, "chat_1"))
	_, err = store.Load(ctx, "chat_1")
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemorySessionStoreExpires(t *testing.T) {
	store := NewMemorySessionStore(time.Hour)
	now := time.Date(2025, 12, 8, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleSession()))
	got, err := store.Load(ctx, "chat_1")
	require.NoError(t, err)
	got.Entities.Name = "Борис"

	again, err := store.Load(ctx, "chat_1")
	require.NoError(t, err)
	assert.Equal(t, "Анна", again.Entities.Name)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	now = now.Add(time.Hour)
	n, err = store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	_, err = store.Load(ctx, "chat_1")
	require.ErrorIs(t, err, ErrSessionNotFound)
}
