package cacheperf

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/sublimes-drive/drive-core/internal/model"
)

// CommentSnapshot contains the fields a comment list page actually renders.
type CommentSnapshot struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
}

// CommentReadService demonstrates different caching strategies for comment
// list reads on hot items.
type CommentReadService struct {
	db      *gorm.DB
	cache   *redis.Client
	ttl     time.Duration
	dbDelay time.Duration

	pageQueries     atomic.Int64
	indexLoads      atomic.Int64
	commentBulkLoad atomic.Int64
}

// NewCommentReadService builds a demo service using the provided DB + Redis
// client. dbDelay simulates the round-trip cost of hitting the primary store.
func NewCommentReadService(db *gorm.DB, cache *redis.Client, ttl, dbDelay time.Duration) *CommentReadService {
	return &CommentReadService{db: db, cache: cache, ttl: ttl, dbDelay: dbDelay}
}

func (s *CommentReadService) FetchCommentsNoCache(ctx context.Context, itemType model.ItemType, itemID string, page, size int) ([]CommentSnapshot, error) {
	return s.queryComments(ctx, itemType, itemID, page, size)
}

// FetchCommentsNaiveCache caches whole rendered pages. Simple, but every
// (page, size) combination is its own key and a new comment invalidates none
// of them until TTL.
func (s *CommentReadService) FetchCommentsNaiveCache(ctx context.Context, itemType model.ItemType, itemID string, page, size int) ([]CommentSnapshot, error) {
	key := fmt.Sprintf("comments:%s:%s:%d:%d", itemType, itemID, page, size)
	if data, err := s.cache.Get(ctx, key).Bytes(); err == nil {
		var out []CommentSnapshot
		if uErr := json.Unmarshal(data, &out); uErr == nil {
			return out, nil
		}
	}

	rows, err := s.queryComments(ctx, itemType, itemID, page, size)
	if err != nil {
		return nil, err
	}
	if payload, err := json.Marshal(rows); err == nil {
		_ = s.cache.Set(ctx, key, payload, s.ttl).Err()
	}
	return rows, nil
}

// FetchCommentsOptimized keeps one ID index list per item plus a per-comment
// body cache, so pagination is an LRANGE and bodies are shared across pages.
func (s *CommentReadService) FetchCommentsOptimized(ctx context.Context, itemType model.ItemType, itemID string, page, size int) ([]CommentSnapshot, error) {
	key := fmt.Sprintf("comments:index:%s:%s", itemType, itemID)

	start := (page - 1) * size
	end := start + size - 1

	exists, _ := s.cache.Exists(ctx, key).Result()
	var ids []string
	if exists > 0 {
		ids, _ = s.cache.LRange(ctx, key, int64(start), int64(end)).Result()
	}

	if len(ids) == 0 {
		allIDs, err := s.loadCommentIDsAndCache(ctx, itemType, itemID)
		if err != nil {
			return nil, err
		}
		if start >= len(allIDs) {
			return []CommentSnapshot{}, nil
		}
		endIdx := start + size
		if endIdx > len(allIDs) {
			endIdx = len(allIDs)
		}
		ids = allIDs[start:endIdx]
	}

	return s.loadComments(ctx, ids)
}

func (s *CommentReadService) loadCommentIDsAndCache(ctx context.Context, itemType model.ItemType, itemID string) ([]string, error) {
	time.Sleep(s.dbDelay)
	s.indexLoads.Add(1)

	var ids []string
	if err := s.db.WithContext(ctx).
		Table("item_comments").
		Select("id").
		Where("item_type = ? AND item_id = ?", itemType, itemID).
		Order("created_at ASC").
		Scan(&ids).Error; err != nil {
		return nil, err
	}

	key := fmt.Sprintf("comments:index:%s:%s", itemType, itemID)
	if len(ids) > 0 {
		pipe := s.cache.Pipeline()
		pipe.Del(ctx, key)
		pipe.RPush(ctx, key, interfaceSlice(ids)...)
		pipe.Expire(ctx, key, s.ttl)
		pipe.Exec(ctx)
	}
	return ids, nil
}

func (s *CommentReadService) queryComments(ctx context.Context, itemType model.ItemType, itemID string, page, size int) ([]CommentSnapshot, error) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}

	time.Sleep(s.dbDelay)
	s.pageQueries.Add(1)

	var rows []CommentSnapshot
	err := s.db.WithContext(ctx).
		Table("item_comments").
		Select("item_comments.id", "item_comments.user_id", "users.display_name", "item_comments.content", "item_comments.created_at").
		Joins("JOIN users ON item_comments.user_id = users.id").
		Where("item_comments.item_type = ? AND item_comments.item_id = ?", itemType, itemID).
		Order("item_comments.created_at ASC").
		Offset((page - 1) * size).
		Limit(size).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func interfaceSlice(strs []string) []interface{} {
	result := make([]interface{}, len(strs))
	for i, s := range strs {
		result[i] = s
	}
	return result
}

func (s *CommentReadService) loadComments(ctx context.Context, ids []string) ([]CommentSnapshot, error) {
	if len(ids) == 0 {
		return []CommentSnapshot{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = fmt.Sprintf("comment:%s", id)
	}

	cached := make(map[string]CommentSnapshot, len(ids))
	if vals, err := s.cache.MGet(ctx, keys...).Result(); err == nil {
		for i, v := range vals {
			if v == nil {
				continue
			}
			if str, ok := v.(string); ok {
				var snap CommentSnapshot
				if uErr := json.Unmarshal([]byte(str), &snap); uErr == nil {
					cached[ids[i]] = snap
				}
			}
		}
	}

	missing := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := cached[id]; !ok {
			missing = append(missing, id)
		}
	}

	if len(missing) > 0 {
		s.commentBulkLoad.Add(1)
		time.Sleep(s.dbDelay)

		var rows []struct {
			model.ItemComment
			DisplayName string
		}
		if err := s.db.WithContext(ctx).
			Table("item_comments").
			Select("item_comments.*", "users.display_name").
			Joins("JOIN users ON item_comments.user_id = users.id").
			Where("item_comments.id IN ?", missing).
			Scan(&rows).Error; err != nil {
			return nil, err
		}
		for _, r := range rows {
			snap := CommentSnapshot{
				ID:          r.ID,
				UserID:      r.UserID,
				DisplayName: r.DisplayName,
				Content:     r.Content,
				CreatedAt:   r.CreatedAt,
			}
			cached[r.ID] = snap
			if payload, err := json.Marshal(snap); err == nil {
				_ = s.cache.Set(ctx, fmt.Sprintf("comment:%s", r.ID), payload, s.ttl).Err()
			}
		}
	}

	result := make([]CommentSnapshot, 0, len(ids))
	for _, id := range ids {
		if snap, ok := cached[id]; ok {
			result = append(result, snap)
		}
	}
	return result, nil
}

// ResetCounters clears recorded db call counters.
func (s *CommentReadService) ResetCounters() {
	s.pageQueries.Store(0)
	s.indexLoads.Store(0)
	s.commentBulkLoad.Store(0)
}

// Counters reports how many underlying DB loads were executed.
func (s *CommentReadService) Counters() CommentDBCounters {
	return CommentDBCounters{
		PageQueries:     s.pageQueries.Load(),
		IndexLoads:      s.indexLoads.Load(),
		CommentBulkLoad: s.commentBulkLoad.Load(),
	}
}

// CommentDBCounters summarises DB hits during a run.
type CommentDBCounters struct {
	PageQueries     int64
	IndexLoads      int64
	CommentBulkLoad int64
}
