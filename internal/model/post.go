package model

import "time"

// Post 社区帖子
type Post struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	AuthorID  string `gorm:"type:varchar(36);index:idx_post_author"`
	Title     string `gorm:"type:varchar(256)"`
	Body      string `gorm:"type:text"`
	Media     string `gorm:"type:text"` // 图片 URL 列表（JSON 数组）
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Post) TableName() string { return "posts" }
