package repository

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sublimes-drive/drive-core/internal/model"
)

func setupEngagementBenchDB(b *testing.B) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		b.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&model.User{}, &model.ItemLike{}, &model.ItemSave{}, &model.ItemComment{}); err != nil {
		b.Fatalf("migrate: %v", err)
	}
	return db
}

func BenchmarkLikeToggleWrite(b *testing.B) {
	db := setupEngagementBenchDB(b)
	likeRepo := NewLikeRepository(db)
	ctx := context.Background()

	// 预创建部分用户
	users := make([]model.User, 1000)
	for i := range users {
		users[i] = model.User{ID: fmt.Sprintf("u%04d", i), Username: fmt.Sprintf("u%04d", i), Email: fmt.Sprintf("u%04d@example.com", i), Password: "p"}
	}
	if err := db.Create(&users).Error; err != nil {
		b.Fatalf("seed users: %v", err)
	}

	rand.Seed(time.Now().UnixNano())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		uid := users[rand.Intn(len(users))].ID
		item := fmt.Sprintf("p%03d", rand.Intn(200))
		if i%2 == 0 {
			_ = likeRepo.Create(ctx, model.ItemTypePost, item, uid)
		} else {
			_ = likeRepo.Delete(ctx, model.ItemTypePost, item, uid)
		}
	}
}

func BenchmarkCountsAndUserState(b *testing.B) {
	db := setupEngagementBenchDB(b)
	likeRepo := NewLikeRepository(db)
	saveRepo := NewSaveRepository(db)
	ctx := context.Background()

	// 构造：一个热帖有 N 个赞和 N 个收藏
	const N = 5000
	for i := 1; i <= N; i++ {
		uid := fmt.Sprintf("u%v", i)
		_ = db.Create(&model.User{ID: uid, Username: uid, Email: uid + "@example.com", Password: "p"}).Error
		_ = likeRepo.Create(ctx, model.ItemTypePost, "hot", uid)
		_ = saveRepo.Create(ctx, model.ItemTypePost, "hot", uid)
	}

	b.ResetTimer()
	b.Run("LikeCount", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = likeRepo.Count(ctx, model.ItemTypePost, "hot")
		}
	})

	b.Run("UserState", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = likeRepo.Exists(ctx, model.ItemTypePost, "hot", "u1")
			_, _ = saveRepo.Exists(ctx, model.ItemTypePost, "hot", "u1")
		}
	})
}
