package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/sublimes-drive/drive-core/internal/cacheperf"
	"github.com/sublimes-drive/drive-core/internal/model"
)

type request struct {
	page int
	size int
}

func main() {
	ctx := context.Background()

	// Use PostgreSQL for realistic testing
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "host=localhost user=postgres password=postgres dbname=postgres port=5434 sslmode=disable"
	}

	db := must(gorm.Open(postgres.Open(dsn), &gorm.Config{}))

	// Clean up existing test data
	mustDo(db.Exec("DROP TABLE IF EXISTS item_comments CASCADE").Error)
	mustDo(db.Exec("DROP TABLE IF EXISTS users CASCADE").Error)

	mustDo(db.AutoMigrate(&model.User{}, &model.ItemComment{}))

	const (
		commenterCount = 5000
		commentsPerHot = 10000 // comments per hot post
		ttlMinutes     = 10
		dbDelay        = 0 * time.Millisecond
	)

	fmt.Println("Setting up test data...")

	// 5k commenters
	commenters := make([]model.User, commenterCount)
	for i := 0; i < commenterCount; i++ {
		commenters[i] = model.User{
			ID:          uuid.NewString(),
			Username:    fmt.Sprintf("user_%d", i),
			Email:       fmt.Sprintf("user_%d@example.com", i),
			Password:    "secret",
			DisplayName: fmt.Sprintf("User %d", i),
		}
	}
	mustDo(db.CreateInBatches(&commenters, 1000).Error)

	// 3 hot posts with 10k comments each, commenters overlap across posts
	hotPosts := []string{"post-hot-1", "post-hot-2", "post-hot-3"}
	base := time.Now()
	for pi, postID := range hotPosts {
		rows := make([]model.ItemComment, commentsPerHot)
		for i := 0; i < commentsPerHot; i++ {
			rows[i] = model.ItemComment{
				ID:        uuid.NewString(),
				ItemType:  model.ItemTypePost,
				ItemID:    postID,
				UserID:    commenters[(i+pi*commenterCount/3)%commenterCount].ID,
				Content:   fmt.Sprintf("comment %d on %s", i, postID),
				CreatedAt: base.Add(-time.Duration(i) * time.Second),
			}
		}
		mustDo(db.CreateInBatches(&rows, 1000).Error)
	}
	fmt.Println("Test data ready: 3 hot posts with overlapping commenters")

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6380"
	}

	client := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer client.Close()

	if err := client.Ping(ctx).Err(); err != nil {
		panic(fmt.Sprintf("Failed to connect to Redis at %s: %v", redisAddr, err))
	}

	svc := cacheperf.NewCommentReadService(db, client, ttlMinutes*time.Minute, dbDelay)

	// Mix requests across the 3 hot posts
	allReqs := make([]struct {
		postID string
		req    request
	}, 0, 9000)
	for _, postID := range hotPosts {
		for _, r := range makeRequests(3000) {
			allReqs = append(allReqs, struct {
				postID string
				req    request
			}{postID, r})
		}
	}

	noCache := runScenario(ctx, svc, allReqs, false, func(ctx context.Context, postID string, r request) ([]cacheperf.CommentSnapshot, error) {
		return svc.FetchCommentsNoCache(ctx, model.ItemTypePost, postID, r.page, r.size)
	}, client)

	naive := runScenario(ctx, svc, allReqs, true, func(ctx context.Context, postID string, r request) ([]cacheperf.CommentSnapshot, error) {
		return svc.FetchCommentsNaiveCache(ctx, model.ItemTypePost, postID, r.page, r.size)
	}, client)

	optimized := runScenario(ctx, svc, allReqs, true, func(ctx context.Context, postID string, r request) ([]cacheperf.CommentSnapshot, error) {
		return svc.FetchCommentsOptimized(ctx, model.ItemTypePost, postID, r.page, r.size)
	}, client)

	fmt.Println("\nComment list latency (9k req across 3 hot posts, PostgreSQL + Redis)")
	for _, row := range []struct {
		name string
		res  scenarioResult
	}{
		{"No cache", noCache},
		{"Naive page cache", naive},
		{"Optimized cache", optimized},
	} {
		fmt.Printf("%-18s avg=%v p95=%v p99=%v db_page=%d db_index=%d db_bulk=%d cache_keys=%d mem=%s\n",
			row.name, avg(row.res.durations), pct(row.res.durations, 0.95), pct(row.res.durations, 0.99),
			row.res.counters.PageQueries, row.res.counters.IndexLoads, row.res.counters.CommentBulkLoad,
			row.res.cacheKeys, formatBytes(row.res.memoryBytes),
		)
	}
}

type scenarioResult struct {
	durations   []time.Duration
	counters    cacheperf.CommentDBCounters
	cacheKeys   int
	memoryBytes int64
}

func runScenario(ctx context.Context, svc *cacheperf.CommentReadService, reqs []struct {
	postID string
	req    request
}, warm bool, call func(context.Context, string, request) ([]cacheperf.CommentSnapshot, error), client *redis.Client) scenarioResult {
	client.FlushAll(ctx)
	svc.ResetCounters()

	if warm {
		fmt.Print("  Warming cache...")
		for _, r := range reqs {
			if _, err := call(ctx, r.postID, r.req); err != nil {
				panic(err)
			}
		}
		fmt.Println(" done")
	}

	fmt.Print("  Running benchmark...")
	out := make([]time.Duration, 0, len(reqs))
	for _, r := range reqs {
		start := time.Now()
		if _, err := call(ctx, r.postID, r.req); err != nil {
			panic(err)
		}
		out = append(out, time.Since(start))
	}
	fmt.Println(" done")

	keys, _ := client.Keys(ctx, "*").Result()
	keyCount := len(keys)

	info, err := client.Info(ctx, "memory").Result()
	var memBytes int64
	if err == nil {
		memBytes = parseRedisMemory(info)
	}

	return scenarioResult{
		durations:   out,
		counters:    svc.Counters(),
		cacheKeys:   keyCount,
		memoryBytes: memBytes,
	}
}

// parseRedisMemory extracts used_memory from Redis INFO
func parseRedisMemory(info string) int64 {
	lines := []rune(info)
	var result int64

	for i := 0; i < len(lines); {
		if i+12 < len(lines) && string(lines[i:i+12]) == "used_memory:" {
			i += 12
			var num int64
			for i < len(lines) && lines[i] >= '0' && lines[i] <= '9' {
				num = num*10 + int64(lines[i]-'0')
				i++
			}
			result = num
			break
		}
		i++
	}
	return result
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func makeRequests(n int) []request {
	sizes := []int{20, 40, 60}
	out := make([]request, n)
	rnd := rand.New(rand.NewSource(42))
	for i := 0; i < n; i++ {
		size := sizes[rnd.Intn(len(sizes))]
		page := 1
		if rnd.Float64() > 0.72 {
			// simulate deep pagination or different views
			page = 2 + rnd.Intn(120)
		}
		out[i] = request{page: page, size: size}
	}
	return out
}

func avg(vs []time.Duration) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range vs {
		sum += v
	}
	return sum / time.Duration(len(vs))
}

func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), vs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	idx := int(math.Ceil(p*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func mustDo(err error) {
	if err != nil {
		panic(err)
	}
}
