package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/sublimes-drive/drive-core/config"
	"github.com/sublimes-drive/drive-core/internal/model"
	"github.com/sublimes-drive/drive-core/internal/service"
	"github.com/sublimes-drive/drive-core/pkg/database"
)

func must[T any](v T, err error) T { if err != nil { panic(err) }; return v }

func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 { return 0 }
	xs := append([]time.Duration(nil), vs...)
	sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
	k := int(math.Ceil(p*float64(len(xs)))) - 1
	if k < 0 { k = 0 }
	if k >= len(xs) { k = len(xs)-1 }
	return xs[k]
}

// nopDispatcher measures pure outbox pipeline cost without LLM calls.
type nopDispatcher struct{}

func (nopDispatcher) Dispatch(ctx context.Context, ev *model.DispatchEvent) error { return nil }

func main() {
	cfg := must(config.Load())
	db := must(database.InitDB(cfg))
	if err := database.Migrate(db); err != nil { panic(err) }

	publisher := service.NewPublisher(db)

	POSTS := 1000
	WORKERS := 4
	CLAIM := 64
	if s := os.Getenv("POSTS"); s != "" { if v, e := strconv.Atoi(s); e == nil && v > 0 { POSTS = v } }
	if s := os.Getenv("WORKERS"); s != "" { if v, e := strconv.Atoi(s); e == nil && v > 0 { WORKERS = v } }
	if s := os.Getenv("CLAIM"); s != "" { if v, e := strconv.Atoi(s); e == nil && v > 0 { CLAIM = v } }

	// clean tables for a reproducible run (ok for local bench)
	_ = db.Exec("TRUNCATE TABLE dispatch_events, posts, users RESTART IDENTITY CASCADE").Error

	author := model.User{ID: "author0", Username: "author0", Email: "author0@example.com", Password: "p"}
	_ = db.Where("id = ?", author.ID).FirstOrCreate(&author).Error

	worker := service.NewDispatchWorker(db, nopDispatcher{}, WORKERS, CLAIM, 20*time.Millisecond)
	stop := worker.Start()
	defer stop(context.Background())

	// publish POSTS, each writes a pending dispatch event in-tx
	pubDurations := make([]time.Duration, 0, POSTS)
	for i := 0; i < POSTS; i++ {
		st := time.Now()
		_, err := publisher.PublishPost(context.Background(), author.ID, fmt.Sprintf("post %d", i), "which BYD trim?", "")
		if err != nil { panic(err) }
		pubDurations = append(pubDurations, time.Since(st))
	}

	// collect landing metrics (event created -> processed)
	land := make([]time.Duration, 0, POSTS)
	timeout := time.After(2 * time.Minute)
	for len(land) < POSTS {
		select {
		case d := <-worker.Metrics():
			land = append(land, d)
		case <-timeout:
			fmt.Printf("timeout while waiting for dispatch metrics: got=%d want=%d\n", len(land), POSTS)
			goto PRINT
		}
	}

PRINT:
	var pubSum time.Duration
	for _, d := range pubDurations { pubSum += d }
	fmt.Printf("POSTS=%d WORKERS=%d CLAIM=%d\n", POSTS, WORKERS, CLAIM)
	fmt.Printf("Publish tx latency: avg=%v p95=%v p99=%v\n", pubSum/time.Duration(len(pubDurations)), pct(pubDurations, 0.95), pct(pubDurations, 0.99))
	var landSum time.Duration
	for _, d := range land { landSum += d }
	if len(land) > 0 {
		fmt.Printf("Dispatch landing (outbox->done): samples=%d avg=%v p95=%v p99=%v\n", len(land), landSum/time.Duration(len(land)), pct(land, 0.95), pct(land, 0.99))
	}
}
