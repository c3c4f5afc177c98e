package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sublimes-drive/drive-core/internal/model"
	"github.com/sublimes-drive/drive-core/internal/repository"
	"github.com/sublimes-drive/drive-core/pkg/logger"
)

// ActivityLogger 异步落 freya_runs 审计日志（尽力而为，队列满则丢弃并告警）
type ActivityLogger struct {
	repo      repository.FreyaRepository
	ch        chan *model.FreyaRun
	metricsCh chan time.Duration
}

func NewActivityLogger(repo repository.FreyaRepository, queueSize int) *ActivityLogger {
	if queueSize <= 0 {
		queueSize = 10000
	}
	return &ActivityLogger{repo: repo, ch: make(chan *model.FreyaRun, queueSize), metricsCh: make(chan time.Duration, 65536)}
}

func (l *ActivityLogger) Start(workers int) func(context.Context) error {
	if workers <= 0 {
		workers = 2
	}
	stopCh := make(chan struct{})
	for i := 0; i < workers; i++ {
		go func() {
			for {
				select {
				case run := <-l.ch:
					ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					enqAt := run.CreatedAt
					_ = l.repo.InsertRun(ctx, run)
					cancel()
					if !enqAt.IsZero() {
						select {
						case l.metricsCh <- time.Since(enqAt):
						default:
						}
					}
				case <-stopCh:
					return
				}
			}
		}()
	}
	return func(ctx context.Context) error {
		close(stopCh)
		// 等待队列自然排空一小段时间
		timeout := time.After(2 * time.Second)
		for {
			select {
			case <-timeout:
				return nil
			default:
				if len(l.ch) == 0 {
					return nil
				}
				time.Sleep(50 * time.Millisecond)
			}
		}
	}
}

func (l *ActivityLogger) Enqueue(run *model.FreyaRun) {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	select {
	case l.ch <- run:
	default:
		logger.Warn("activity log queue full, drop run",
			zap.String("post", run.PostID), zap.String("status", run.Status))
	}
}

// Metrics 返回落库耗时的只读通道（每处理一条发送一次 duration）。
func (l *ActivityLogger) Metrics() <-chan time.Duration { return l.metricsCh }

// QueueLen 返回当前队列长度（采样值）。
func (l *ActivityLogger) QueueLen() int { return len(l.ch) }
