package freya

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Skip reasons recorded in freya_runs.
const (
	ReasonAgentDisabled  = "agent_disabled"
	ReasonPostNotFound   = "post_not_found"
	ReasonBrandMismatch  = "brand_not_whitelisted"
	ReasonNotAQuestion   = "not_a_question"
	ReasonRateLimited    = "rate_limited"
	ReasonBudgetCap      = "budget_cap_reached"
	ReasonAlreadyComment = "already_auto_commented"
	ReasonAlreadyReplied = "already_replied"
	ReasonNotInThread    = "not_in_thread"
	ReasonProviderError  = "provider_error"
	ReasonPostFailed     = "comment_insert_failed"
)

// Guard bundles the request rate limiter and the daily token budget.
type Guard interface {
	// AllowRequest reports whether another generation attempt may run now.
	AllowRequest(ctx context.Context) (bool, error)
	// TokensUsed returns today's token consumption.
	TokensUsed(ctx context.Context) (int64, error)
	// RecordRequest counts one attempt against the per-minute/hour/day windows.
	RecordRequest(ctx context.Context) error
	// AddTokens adds actual usage after a successful generation. Atomic, so
	// concurrent dispatches cannot lose increments (bounded overshoot only
	// within requests already in flight).
	AddTokens(ctx context.Context, n int64) error
}

// RedisGuard implements Guard with fixed-window counters in Redis.
type RedisGuard struct {
	rdb     *redis.Client
	agentID string

	perMinute int
	perHour   int
	perDay    int

	now func() time.Time // test hook
}

func NewRedisGuard(rdb *redis.Client, agentID string, perMinute, perHour, perDay int) *RedisGuard {
	return &RedisGuard{
		rdb:       rdb,
		agentID:   agentID,
		perMinute: perMinute,
		perHour:   perHour,
		perDay:    perDay,
		now:       time.Now,
	}
}

func (g *RedisGuard) windowKeys(t time.Time) (string, string, string) {
	minute := fmt.Sprintf("freya:rl:%s:m:%d", g.agentID, t.Unix()/60)
	hour := fmt.Sprintf("freya:rl:%s:h:%d", g.agentID, t.Unix()/3600)
	day := fmt.Sprintf("freya:rl:%s:d:%s", g.agentID, t.Format("2006-01-02"))
	return minute, hour, day
}

func (g *RedisGuard) budgetKey(t time.Time) string {
	return fmt.Sprintf("freya:budget:%s:%s", g.agentID, t.Format("2006-01-02"))
}

func (g *RedisGuard) AllowRequest(ctx context.Context) (bool, error) {
	minute, hour, day := g.windowKeys(g.now())
	vals, err := g.rdb.MGet(ctx, minute, hour, day).Result()
	if err != nil {
		return false, err
	}
	limits := []int{g.perMinute, g.perHour, g.perDay}
	for i, v := range vals {
		if limits[i] <= 0 {
			continue
		}
		var n int64
		if s, ok := v.(string); ok {
			fmt.Sscan(s, &n)
		}
		if n >= int64(limits[i]) {
			return false, nil
		}
	}
	return true, nil
}

func (g *RedisGuard) RecordRequest(ctx context.Context) error {
	minute, hour, day := g.windowKeys(g.now())
	pipe := g.rdb.TxPipeline()
	pipe.Incr(ctx, minute)
	pipe.Expire(ctx, minute, 2*time.Minute)
	pipe.Incr(ctx, hour)
	pipe.Expire(ctx, hour, 2*time.Hour)
	pipe.Incr(ctx, day)
	pipe.Expire(ctx, day, 26*time.Hour)
	_, err := pipe.Exec(ctx)
	return err
}

func (g *RedisGuard) TokensUsed(ctx context.Context) (int64, error) {
	n, err := g.rdb.Get(ctx, g.budgetKey(g.now())).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return n, err
}

func (g *RedisGuard) AddTokens(ctx context.Context, n int64) error {
	key := g.budgetKey(g.now())
	pipe := g.rdb.TxPipeline()
	pipe.IncrBy(ctx, key, n)
	pipe.Expire(ctx, key, 48*time.Hour)
	_, err := pipe.Exec(ctx)
	return err
}
