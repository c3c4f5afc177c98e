package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sublimes-drive/drive-core/internal/model"
)

type recordingDispatcher struct {
	events []*model.DispatchEvent
}

func (d *recordingDispatcher) Dispatch(ctx context.Context, ev *model.DispatchEvent) error {
	d.events = append(d.events, ev)
	return nil
}

func setupWorkerDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.DispatchEvent{}))
	return db
}

func TestProcessOnceClaimsPendingInOrder(t *testing.T) {
	db := setupWorkerDB(t)
	disp := &recordingDispatcher{}
	w := NewDispatchWorker(db, disp, 1, 10, time.Second)
	ctx := context.Background()

	base := time.Now().Add(-time.Minute)
	for i, id := range []string{"e1", "e2", "e3"} {
		ev := model.DispatchEvent{
			ID: id, EventType: model.DispatchNewPost, PostID: "p" + id,
			Status: "pending", CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, db.Create(&ev).Error)
	}

	require.NoError(t, w.ProcessOnce(ctx))

	require.Len(t, disp.events, 3)
	require.Equal(t, "e1", disp.events[0].ID)
	require.Equal(t, "e3", disp.events[2].ID)

	var done int64
	require.NoError(t, db.Model(&model.DispatchEvent{}).Where("status = ?", "done").Count(&done).Error)
	require.EqualValues(t, 3, done)

	// nothing left to claim
	require.NoError(t, w.ProcessOnce(ctx))
	require.Len(t, disp.events, 3)
}

type flakyDispatcher struct {
	failures int
	calls    int
}

func (d *flakyDispatcher) Dispatch(ctx context.Context, ev *model.DispatchEvent) error {
	d.calls++
	if d.calls <= d.failures {
		return errors.New("post lookup failed")
	}
	return nil
}

func TestProcessOnceKeepsEventPendingOnDispatchError(t *testing.T) {
	db := setupWorkerDB(t)
	disp := &flakyDispatcher{failures: 1}
	w := NewDispatchWorker(db, disp, 1, 10, time.Second)
	ctx := context.Background()

	ev := model.DispatchEvent{ID: "e1", EventType: model.DispatchNewPost, PostID: "p1", Status: "pending", CreatedAt: time.Now()}
	require.NoError(t, db.Create(&ev).Error)

	// 首轮失败：事件回置 pending，不标记 done
	require.NoError(t, w.ProcessOnce(ctx))
	var after model.DispatchEvent
	require.NoError(t, db.Where("id = ?", "e1").First(&after).Error)
	require.Equal(t, "pending", after.Status)
	require.Nil(t, after.ProcessedAt)

	// 下一轮重试成功
	require.NoError(t, w.ProcessOnce(ctx))
	var done model.DispatchEvent
	require.NoError(t, db.Where("id = ?", "e1").First(&done).Error)
	require.Equal(t, "done", done.Status)
	require.NotNil(t, done.ProcessedAt)
	require.Equal(t, 2, disp.calls)
}

func TestProcessOnceHonorsClaimLimit(t *testing.T) {
	db := setupWorkerDB(t)
	disp := &recordingDispatcher{}
	w := NewDispatchWorker(db, disp, 1, 2, time.Second)
	ctx := context.Background()

	for _, id := range []string{"e1", "e2", "e3"} {
		ev := model.DispatchEvent{ID: id, EventType: model.DispatchNewPost, PostID: "p1", Status: "pending", CreatedAt: time.Now()}
		require.NoError(t, db.Create(&ev).Error)
	}

	require.NoError(t, w.ProcessOnce(ctx))
	require.Len(t, disp.events, 2)

	var pending int64
	require.NoError(t, db.Model(&model.DispatchEvent{}).Where("status = ?", "pending").Count(&pending).Error)
	require.EqualValues(t, 1, pending)
}
