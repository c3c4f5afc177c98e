package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/sublimes-drive/drive-core/config"
	"github.com/sublimes-drive/drive-core/internal/model"
	"github.com/sublimes-drive/drive-core/internal/repository"
	"github.com/sublimes-drive/drive-core/pkg/database"
)

// Compares sequential vs fanned-out aggregation of the four engagement
// counters behind getCounts.
func main() {
	cfg, err := config.Load()
	if err != nil { panic(err) }
	db, err := database.InitDB(cfg)
	if err != nil { panic(err) }
	if err := database.Migrate(db); err != nil { panic(err) }

	REPEAT := 50
	if s := os.Getenv("REPEAT"); s != "" { if v, e := strconv.Atoi(s); e == nil && v > 0 { REPEAT = v } }
	ITEM := "post-hot"
	if s := os.Getenv("ITEM"); s != "" { ITEM = s }

	likeRepo := repository.NewLikeRepository(db)
	saveRepo := repository.NewSaveRepository(db)
	shareRepo := repository.NewShareRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	sequential := func(ctx context.Context) time.Duration {
		st := time.Now()
		_, _ = likeRepo.Count(ctx, model.ItemTypePost, ITEM)
		_, _ = saveRepo.Count(ctx, model.ItemTypePost, ITEM)
		_, _ = shareRepo.Count(ctx, model.ItemTypePost, ITEM)
		_, _ = commentRepo.Count(ctx, model.ItemTypePost, ITEM)
		return time.Since(st)
	}

	fanout := func(ctx context.Context) time.Duration {
		st := time.Now()
		var wg sync.WaitGroup
		wg.Add(4)
		go func() { defer wg.Done(); _, _ = likeRepo.Count(ctx, model.ItemTypePost, ITEM) }()
		go func() { defer wg.Done(); _, _ = saveRepo.Count(ctx, model.ItemTypePost, ITEM) }()
		go func() { defer wg.Done(); _, _ = shareRepo.Count(ctx, model.ItemTypePost, ITEM) }()
		go func() { defer wg.Done(); _, _ = commentRepo.Count(ctx, model.ItemTypePost, ITEM) }()
		wg.Wait()
		return time.Since(st)
	}

	ctx := context.Background()
	seqs := make([]time.Duration, 0, REPEAT)
	fans := make([]time.Duration, 0, REPEAT)
	for i := 0; i < REPEAT; i++ { seqs = append(seqs, sequential(ctx)) }
	for i := 0; i < REPEAT; i++ { fans = append(fans, fanout(ctx)) }

	pct := func(vs []time.Duration, p float64) time.Duration {
		xs := append([]time.Duration(nil), vs...)
		sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
		k := int(float64(len(xs))*p)
		if k < 0 { k = 0 }
		if k >= len(xs) { k = len(xs)-1 }
		return xs[k]
	}

	var sum1, sum2 time.Duration
	for _, d := range seqs { sum1 += d }
	for _, d := range fans { sum2 += d }
	fmt.Printf("ITEM=%s REPEAT=%d\n", ITEM, REPEAT)
	fmt.Printf("Sequential 4-count: avg=%v p95=%v p99=%v\n", sum1/time.Duration(len(seqs)), pct(seqs, 0.95), pct(seqs, 0.99))
	fmt.Printf("Fan-out 4-count: avg=%v p95=%v p99=%v\n", sum2/time.Duration(len(fans)), pct(fans, 0.95), pct(fans, 0.99))
}
