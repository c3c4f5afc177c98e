package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sublimes-drive/drive-core/internal/model"
	"github.com/sublimes-drive/drive-core/pkg/logger"
)

// Dispatcher 消费一条调度事件；守卫跳过不算错误
type Dispatcher interface {
	Dispatch(ctx context.Context, ev *model.DispatchEvent) error
}

// DispatchWorker 从 dispatch_events 拉取事件并交给助手调度
type DispatchWorker struct {
	db           *gorm.DB
	dispatcher   Dispatcher
	claimLimit   int
	pollInterval time.Duration
	workers      int
	metricsCh    chan time.Duration // event->processed latency
}

func NewDispatchWorker(db *gorm.DB, dispatcher Dispatcher, workers, claimLimit int, pollInterval time.Duration) *DispatchWorker {
	if workers <= 0 {
		workers = 4
	}
	if claimLimit <= 0 {
		claimLimit = 32
	}
	if pollInterval <= 0 {
		pollInterval = 200 * time.Millisecond
	}
	return &DispatchWorker{db: db, dispatcher: dispatcher, workers: workers, claimLimit: claimLimit, pollInterval: pollInterval, metricsCh: make(chan time.Duration, 65536)}
}

func (w *DispatchWorker) Metrics() <-chan time.Duration { return w.metricsCh }

// Start 启动若干 worker 轮询处理事件；返回停止函数。
func (w *DispatchWorker) Start() func(context.Context) error {
	stop := make(chan struct{})
	for i := 0; i < w.workers; i++ {
		go w.loop(stop)
	}
	return func(ctx context.Context) error { close(stop); return nil }
}

func (w *DispatchWorker) loop(stop <-chan struct{}) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			_ = w.ProcessOnce(context.Background())
		}
	}
}

// ProcessOnce claim一批 pending 事件并逐条调度
func (w *DispatchWorker) ProcessOnce(ctx context.Context) error {
	type de struct {
		ID        string
		EventType string
		PostID    string
		CommentID *string
		CreatedAt time.Time
	}
	var batch []de
	err := w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := `
            SELECT id, event_type, post_id, comment_id, created_at
            FROM dispatch_events
            WHERE status = 'pending'
            ORDER BY created_at
            LIMIT ?`
		if tx.Dialector.Name() == "postgres" {
			q += "\n            FOR UPDATE SKIP LOCKED"
		}
		if err := tx.Raw(q, w.claimLimit).Scan(&batch).Error; err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}
		ids := make([]string, len(batch))
		for i, b := range batch {
			ids[i] = b.ID
		}
		return tx.Model(&model.DispatchEvent{}).Where("id IN ?", ids).Update("status", "processing").Error
	})
	if err != nil {
		return err
	}
	if len(batch) == 0 {
		return nil
	}

	for _, b := range batch {
		ev := &model.DispatchEvent{ID: b.ID, EventType: b.EventType, PostID: b.PostID, CommentID: b.CommentID, CreatedAt: b.CreatedAt}
		if err := w.dispatcher.Dispatch(ctx, ev); err != nil {
			// 基础设施错误不消费事件：回置 pending，下一轮重试
			logger.Warn("dispatch failed", zap.String("event_id", b.ID), zap.Error(err))
			_ = w.db.WithContext(ctx).Model(&model.DispatchEvent{}).
				Where("id = ?", b.ID).Update("status", "pending").Error
			continue
		}
		now := time.Now()
		_ = w.db.WithContext(ctx).Model(&model.DispatchEvent{}).
			Where("id = ?", b.ID).
			Updates(map[string]any{"status": "done", "processed_at": now}).Error
		// record latency
		if !b.CreatedAt.IsZero() {
			select {
			case w.metricsCh <- time.Since(b.CreatedAt):
			default:
			}
		}
	}
	return nil
}
