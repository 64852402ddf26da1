package chat

import (
	"context"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/museumai/kiosk/backend/internal/model/chat"
)

func newTestRedisStore(t *testing.T, capacity int) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client, "kiosk", capacity), srv
}

func TestRedisStoreKeyLayout(t *testing.T) {
	store := NewRedisStore(nil, "museum:", 0)
	assert.Equal(t, "museum:history:isaac_newton", store.key("isaac_newton"))
	assert.Equal(t, DefaultMaxHistory, store.Capacity())

	fallback := NewRedisStore(nil, "  ", 4)
	assert.Equal(t, "kiosk:history:p", fallback.key("p"))
}

func TestRedisStoreKeepsMostRecentTurns(t *testing.T) {
	ctx := context.Background()
	store, srv := newTestRedisStore(t, DefaultMaxHistory)
	require.NoError(t, store.Ping(ctx))

	for i := 0; i < 11; i++ {
		require.NoError(t, store.AppendUser(ctx, "isaac_newton", fmt.Sprintf("u%d", i)))
		require.NoError(t, store.AppendAssistant(ctx, "isaac_newton", fmt.Sprintf("a%d", i)))
	}

	turns, err := store.Snapshot(ctx, "isaac_newton")
	require.NoError(t, err)
	require.Len(t, turns, DefaultMaxHistory)
	assert.Equal(t, "u6", turns[0].Content)
	assert.Equal(t, chat.RoleUser, turns[0].Role)
	assert.Equal(t, "a10", turns[len(turns)-1].Content)
	assert.Equal(t, chat.RoleAssistant, turns[len(turns)-1].Role)

	stored, err := srv.List("kiosk:history:isaac_newton")
	require.NoError(t, err)
	assert.Len(t, stored, DefaultMaxHistory)
}

func TestRedisStoreIsolatesPersonas(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestRedisStore(t, 3)

	require.NoError(t, store.AppendUser(ctx, "marie_curie", "radium?"))
	require.NoError(t, store.AppendAssistant(ctx, "marie_curie", "glows."))
	require.NoError(t, store.AppendUser(ctx, "albert_einstein", "time?"))

	curie, err := store.Snapshot(ctx, "marie_curie")
	require.NoError(t, err)
	require.Len(t, curie, 2)
	assert.Equal(t, "radium?", curie[0].Content)
	assert.Equal(t, "glows.", curie[1].Content)

	einstein, err := store.Snapshot(ctx, "albert_einstein")
	require.NoError(t, err)
	require.Len(t, einstein, 1)
	assert.Equal(t, "time?", einstein[0].Content)

	empty, err := store.Snapshot(ctx, "galileo_galilei")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRedisStoreReset(t *testing.T) {
	ctx := context.Background()
	store, srv := newTestRedisStore(t, 0)

	require.NoError(t, store.AppendUser(ctx, "marie_curie", "hello"))
	require.NoError(t, store.AppendUser(ctx, "isaac_newton", "apples"))
	require.NoError(t, store.Reset(ctx, "marie_curie"))

	assert.False(t, srv.Exists("kiosk:history:marie_curie"))
	turns, err := store.Snapshot(ctx, "marie_curie")
	require.NoError(t, err)
	assert.Empty(t, turns)

	newton, err := store.Snapshot(ctx, "isaac_newton")
	require.NoError(t, err)
	assert.Len(t, newton, 1)

	require.NoError(t, store.AppendAssistant(ctx, "marie_curie", "again"))
	turns, err = store.Snapshot(ctx, "marie_curie")
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, "again", turns[0].Content)
}

func TestRedisStoreRequiresPersona(t *testing.T) {
	store, _ := newTestRedisStore(t, 0)
	assert.ErrorIs(t, store.AppendUser(context.Background(), "", "hi"), ErrPersonaRequired)
}

func TestRedisStoreUnavailable(t *testing.T) {
	ctx := context.Background()
	store, srv := newTestRedisStore(t, 0)
	srv.Close()

	assert.ErrorIs(t, store.Ping(ctx), ErrStoreUnavailable)
	assert.ErrorIs(t, store.AppendUser(ctx, "isaac_newton", "hi"), ErrStoreUnavailable)
	_, err := store.Snapshot(ctx, "isaac_newton")
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestTurnCodecRoundTrip(t *testing.T) {
	turn := chat.NewTurn(chat.RoleAssistant, "Gravity pulls.")
	encoded, err := encodeTurn(turn)
	require.NoError(t, err)

	decoded, err := decodeTurns([]string{encoded})
	require.NoError(t, err)
	require.Len(t, decoded, 1)
	assert.Equal(t, turn.ID, decoded[0].ID)
	assert.Equal(t, turn.Role, decoded[0].Role)
	assert.Equal(t, turn.Content, decoded[0].Content)
	assert.True(t, turn.CreatedAt.Equal(decoded[0].CreatedAt))
}

func TestDecodeTurnsRejectsGarbage(t *testing.T) {
	_, err := decodeTurns([]string{"{not json"})
	assert.Error(t, err)
}

func TestDecodeTurnsRejectsUnknownRole(t *testing.T) {
	_, err := decodeTurns([]string{`{"id":"1","role":"system","content":"x","createdAt":"2024-01-01T00:00:00Z"}`})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown role")
}
