package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/railzwaylabs/waterworks/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*miniredis.Miniredis, Store) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisStore(client, config.Config{Session: config.SessionConfig{TTL: time.Hour}})
}

func TestCreateGetDelete(t *testing.T) {
	_, store := newStore(t)
	ctx := context.Background()

	sess, err := store.Create(ctx, 77)
	require.NoError(t, err)
	require.NotEmpty(t, sess.Token)

	got, err := store.Get(ctx, sess.Token)
	require.NoError(t, err)
	assert.EqualValues(t, 77, got.UserID)
	assert.Equal(t, sess.Token, got.Token)

	require.NoError(t, store.Delete(ctx, sess.Token))
	_, err = store.Get(ctx, sess.Token)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExpiresAfterTTL(t *testing.T) {
	mr, store := newStore(t)
	ctx := context.Background()

	sess, err := store.Create(ctx, 5)
	require.NoError(t, err)

	mr.FastForward(30 * time.Minute)
	_, err = store.Get(ctx, sess.Token)
	require.NoError(t, err)

	// The lookup above slid the expiry forward by a full hour.
	mr.FastForward(45 * time.Minute)
	_, err = store.Get(ctx, sess.Token)
	require.NoError(t, err)

	mr.FastForward(61 * time.Minute)
	_, err = store.Get(ctx, sess.Token)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGet_RejectsMalformedToken(t *testing.T) {
	_, store := newStore(t)

	_, err := store.Get(context.Background(), "../../etc")
	assert.ErrorIs(t, err, ErrNotFound)
}
