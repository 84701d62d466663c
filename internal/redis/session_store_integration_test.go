package redis

import (
	"context"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *SessionStore {
	t.Helper()
	client := setupTestClient(t)
	return NewSessionStore(client, clockwork.NewFakeClock())
}

func TestSessionStore_MissingSlotsReadEmpty(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	token, err := store.GetToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", token)

	identity, err := store.GetIdentity(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", identity)
}

func TestSessionStore_TokenRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetToken(ctx, "tok-1"))

	token, err := store.GetToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)
}

func TestSessionStore_SetTokenOverwrites(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetToken(ctx, "tok-1"))
	require.NoError(t, store.SetToken(ctx, "tok-2"))

	token, err := store.GetToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-2", token)
}

func TestSessionStore_ClearTokenKeepsIdentity(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetToken(ctx, "tok-1"))
	require.NoError(t, store.SetIdentity(ctx, "2023001234"))
	require.NoError(t, store.ClearToken(ctx))

	token, err := store.GetToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", token)

	identity, err := store.GetIdentity(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2023001234", identity)
}

func TestSessionStore_ClearRemovesBothSlots(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetToken(ctx, "tok-1"))
	require.NoError(t, store.SetIdentity(ctx, "2023001234"))
	require.NoError(t, store.Clear(ctx))

	token, err := store.GetToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", token)

	identity, err := store.GetIdentity(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", identity)
}

func TestSessionStore_ClearTokenIdempotent(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.ClearToken(ctx))
	require.NoError(t, store.ClearToken(ctx))
}
