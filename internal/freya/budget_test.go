package freya

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestGuard(t *testing.T, perMinute, perHour, perDay int) (*RedisGuard, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewRedisGuard(rdb, "agent-1", perMinute, perHour, perDay), mr
}

func TestGuardAllowsUntilMinuteLimit(t *testing.T) {
	g, _ := newTestGuard(t, 2, 100, 100)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := g.AllowRequest(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		require.NoError(t, g.RecordRequest(ctx))
	}

	ok, err := g.AllowRequest(ctx)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestGuardWindowRollsOver(t *testing.T) {
	g, _ := newTestGuard(t, 1, 100, 100)
	ctx := context.Background()

	base := time.Date(2026, 8, 30, 12, 0, 30, 0, time.UTC)
	g.now = func() time.Time { return base }

	require.NoError(t, g.RecordRequest(ctx))
	ok, err := g.AllowRequest(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	// next minute window
	g.now = func() time.Time { return base.Add(time.Minute) }
	ok, err = g.AllowRequest(ctx)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestGuardZeroLimitMeansUnlimited(t *testing.T) {
	g, _ := newTestGuard(t, 0, 0, 0)
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		require.NoError(t, g.RecordRequest(ctx))
	}
	ok, err := g.AllowRequest(ctx)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestTokenBudgetAccumulates(t *testing.T) {
	g, _ := newTestGuard(t, 10, 10, 10)
	ctx := context.Background()

	used, err := g.TokensUsed(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 0, used)

	require.NoError(t, g.AddTokens(ctx, 1200))
	require.NoError(t, g.AddTokens(ctx, 300))

	used, err = g.TokensUsed(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1500, used)
}

func TestTokenBudgetResetsNextDay(t *testing.T) {
	g, _ := newTestGuard(t, 10, 10, 10)
	ctx := context.Background()

	day1 := time.Date(2026, 8, 30, 23, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return day1 }
	require.NoError(t, g.AddTokens(ctx, 999))

	g.now = func() time.Time { return day1.Add(2 * time.Hour) } // next calendar day
	used, err := g.TokensUsed(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 0, used)
}
