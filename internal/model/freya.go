package model

import "time"

// Freya 调度结果状态
const (
	RunStatusSuccess = "success"
	RunStatusSkipped = "skipped"
	RunStatusError   = "error"
)

// FreyaPostState 每帖状态标记：auto comment / summary reply 各至多一条
type FreyaPostState struct {
	PostID               string  `gorm:"primaryKey;type:varchar(36)"`
	AgentID              string  `gorm:"primaryKey;type:varchar(36)"`
	AutoCommentID        *string `gorm:"type:varchar(36)"`
	SummaryReplyCommentID *string `gorm:"type:varchar(36)"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func (FreyaPostState) TableName() string { return "freya_post_state" }

// FreyaRun 调度审计日志，append-only
type FreyaRun struct {
	ID        string  `gorm:"primaryKey;type:varchar(36)"`
	AgentID   string  `gorm:"type:varchar(36);index:idx_run_agent_created"`
	EventType string  `gorm:"type:varchar(16);index"` // new_post / new_comment
	PostID    string  `gorm:"type:varchar(36);index"`
	CommentID *string `gorm:"type:varchar(36)"`
	Status    string  `gorm:"type:varchar(16);index"` // success / skipped / error
	Reason    string  `gorm:"type:varchar(64)"`
	TokensIn  int     `gorm:"not null;default:0"`
	TokensOut int     `gorm:"not null;default:0"`
	Model     string  `gorm:"type:varchar(64)"`
	Language  string  `gorm:"type:varchar(8)"`
	CreatedAt time.Time `gorm:"index:idx_run_agent_created"`
}

func (FreyaRun) TableName() string { return "freya_runs" }

// FreyaImageAsset 标注图产物
type FreyaImageAsset struct {
	ID          string `gorm:"primaryKey;type:varchar(36)"`
	PostID      string `gorm:"type:varchar(36);index"`
	StoragePath string `gorm:"type:varchar(256);not null"`
	Description string `gorm:"type:varchar(256)"`
	CreatedAt   time.Time
}

func (FreyaImageAsset) TableName() string { return "freya_image_assets" }
