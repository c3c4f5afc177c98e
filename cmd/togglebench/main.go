package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/sublimes-drive/drive-core/config"
	"github.com/sublimes-drive/drive-core/internal/model"
	"github.com/sublimes-drive/drive-core/internal/service"
	"github.com/sublimes-drive/drive-core/pkg/database"
)

func must[T any](v T, err error) T { if err != nil { panic(err) }; return v }

func mustDo(err error) { if err != nil { panic(err) } }

func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 { return 0 }
	xs := append([]time.Duration(nil), vs...)
	sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
	k := int(math.Ceil(p*float64(len(xs)))) - 1
	if k < 0 { k = 0 }
	if k >= len(xs) { k = len(xs)-1 }
	return xs[k]
}

func main() {
	cfg := must(config.Load())
	db := must(database.InitDB(cfg))
	mustDo(database.Migrate(db))

	interactions := service.NewInteractionService(db, "")

	ctx := context.Background()

	N := 10000 // users toggling the hot post
	if s := os.Getenv("N"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 { N = n }
	}
	CONC := 1
	if s := os.Getenv("CONC"); s != "" {
		if c, err := strconv.Atoi(s); err == nil && c > 0 { CONC = c }
	}
	PAGE := 50
	if s := os.Getenv("PAGE"); s != "" {
		if p, err := strconv.Atoi(s); err == nil && p > 0 { PAGE = p }
	}

	// seed the hot post's author and N distinct likers
	author := model.User{ID: "author0", Username: "author0", Email: "author0@example.com", Password: "p"}
	_ = db.Where("id = ?", author.ID).FirstOrCreate(&author).Error
	post := model.Post{ID: "post-hot", AuthorID: author.ID, Title: "hot", Body: "hot post"}
	_ = db.Where("id = ?", post.ID).FirstOrCreate(&post).Error

	users := make([]model.User, N)
	batch := 1000
	for i := 0; i < N; i++ {
		id := uuid.New().String()
		users[i] = model.User{ID: id, Username: "u" + id[:8], Email: id[:8] + "@example.com", Password: "p"}
		if (i+1)%batch == 0 {
			sub := users[i+1-batch : i+1]
			_ = db.Create(&sub).Error
		}
	}
	if N%batch != 0 {
		sub := users[N-N%batch:]
		_ = db.Create(&sub).Error
	}

	// toggle-on from N distinct users with CONC workers
	toggleRecs := make([]time.Duration, 0, N)
	toggleCh := make(chan time.Duration, N)
	workers := CONC
	if workers > N { workers = N }
	feed := make(chan int, N)
	for i := 0; i < N; i++ { feed <- i }
	close(feed)
	errCh := make(chan error, workers)
	t0 := time.Now()
	for w := 0; w < workers; w++ {
		go func() {
			for i := range feed {
				st := time.Now()
				_, _ = interactions.ToggleLike(ctx, model.ItemTypePost, post.ID, users[i].ID)
				toggleCh <- time.Since(st)
			}
			errCh <- nil
		}()
	}
	for w := 0; w < workers; w++ { <-errCh }
	close(toggleCh)
	for d := range toggleCh { toggleRecs = append(toggleRecs, d) }
	toggleDur := time.Since(t0)

	// every user comments once (also writes a dispatch event in-tx)
	t1 := time.Now()
	for i := 0; i < N; i++ {
		_, _, _ = interactions.AddComment(ctx, model.ItemTypePost, post.ID, users[i].ID, fmt.Sprintf("comment %d", i), nil)
	}
	commentDur := time.Since(t1)

	// reads
	q0 := time.Now()
	counts, _ := interactions.GetCounts(ctx, model.ItemTypePost, post.ID)
	countsDur := time.Since(q0)

	q1 := time.Now()
	_, _ = interactions.ListComments(ctx, model.ItemTypePost, post.ID, 1, PAGE)
	listDur := time.Since(q1)

	fmt.Printf("N=%d, CONC=%d, PAGE=%d\n", N, CONC, PAGE)
	fmt.Printf("Toggle-like latency total: %v, per op: %v, p50: %v, p95: %v, p99: %v\n",
		toggleDur, toggleDur/time.Duration(N), pct(toggleRecs, 0.50), pct(toggleRecs, 0.95), pct(toggleRecs, 0.99))
	fmt.Printf("Add-comment (tx + dispatch event) total: %v, per op: %v\n", commentDur, commentDur/time.Duration(N))
	if counts != nil {
		fmt.Printf("Counts after run: likes=%d comments=%d\n", counts.LikeCount, counts.CommentCount)
	}
	fmt.Printf("Query counts latency: %v\n", countsDur)
	fmt.Printf("Query comments(%d) latency: %v\n", PAGE, listDur)
}
