package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDenylist(t *testing.T) (*Denylist, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewDenylist(client), mr
}

func TestDenylist_RevokeAndCheck(t *testing.T) {
	dl, _ := newTestDenylist(t)
	ctx := context.Background()

	require.NoError(t, dl.Revoke(ctx, "token-abc", time.Minute))

	revoked, err := dl.IsRevoked(ctx, "token-abc")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = dl.IsRevoked(ctx, "token-other")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestDenylist_EntryExpires(t *testing.T) {
	dl, mr := newTestDenylist(t)
	ctx := context.Background()

	require.NoError(t, dl.Revoke(ctx, "token-abc", time.Minute))
	mr.FastForward(2 * time.Minute)

	revoked, err := dl.IsRevoked(ctx, "token-abc")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestDenylist_NonPositiveTTLIgnored(t *testing.T) {
	dl, _ := newTestDenylist(t)
	ctx := context.Background()

	require.NoError(t, dl.Revoke(ctx, "token-abc", -time.Second))

	revoked, err := dl.IsRevoked(ctx, "token-abc")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestDenylist_NilClientIsNoop(t *testing.T) {
	dl := NewDenylist(nil)
	ctx := context.Background()

	require.NoError(t, dl.Revoke(ctx, "token-abc", time.Minute))
	revoked, err := dl.IsRevoked(ctx, "token-abc")
	require.NoError(t, err)
	assert.False(t, revoked)
}
