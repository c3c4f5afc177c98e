package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sublimes-drive/drive-core/config"
)

// InitRedis 建立 redis 连接并 ping 校验
func InitRedis(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return client, nil
}
