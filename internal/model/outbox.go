package model

import "time"

// 调度事件类型
const (
	DispatchNewPost    = "new_post"
	DispatchNewComment = "new_comment"
)

// DispatchEvent 助手调度外发盒：与内容写入同事务落地，由 worker 认领
type DispatchEvent struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)"`
	EventType   string    `gorm:"type:varchar(16);index;not null"`
	PostID      string    `gorm:"type:varchar(36);index:idx_dispatch_post;not null"`
	CommentID   *string   `gorm:"type:varchar(36)"`
	CreatedAt   time.Time `gorm:"index"`
	Status      string    `gorm:"type:varchar(16);index"` // pending, processing, done
	ProcessedAt *time.Time
}

func (DispatchEvent) TableName() string { return "dispatch_events" }
