package model

import "time"

// ItemLike 点赞（item_type, item_id, user_id 三元组唯一）
type ItemLike struct {
	ID       string   `gorm:"primaryKey;type:varchar(36)"`
	ItemType ItemType `gorm:"type:varchar(16);index:idx_like_item;index:idx_like_triple,unique;not null"`
	ItemID   string   `gorm:"type:varchar(36);index:idx_like_item;index:idx_like_triple,unique;not null"`
	UserID   string   `gorm:"type:varchar(36);not null;index:idx_like_triple,unique;index:idx_like_user"`
	CreatedAt time.Time
}

func (ItemLike) TableName() string { return "item_likes" }

// ItemSave 收藏，与点赞同构但独立命名空间
type ItemSave struct {
	ID       string   `gorm:"primaryKey;type:varchar(36)"`
	ItemType ItemType `gorm:"type:varchar(16);index:idx_save_item;index:idx_save_triple,unique;not null"`
	ItemID   string   `gorm:"type:varchar(36);index:idx_save_item;index:idx_save_triple,unique;not null"`
	UserID   string   `gorm:"type:varchar(36);not null;index:idx_save_triple,unique;index:idx_save_user"`
	CreatedAt time.Time
}

func (ItemSave) TableName() string { return "item_saves" }

// ItemShare 分享事件，只增不删
type ItemShare struct {
	ID           string       `gorm:"primaryKey;type:varchar(36)"`
	ItemType     ItemType     `gorm:"type:varchar(16);index:idx_share_item;not null"`
	ItemID       string       `gorm:"type:varchar(36);index:idx_share_item;not null"`
	UserID       *string      `gorm:"type:varchar(36)"` // 匿名分享为空
	ShareChannel ShareChannel `gorm:"type:varchar(16);not null"`
	CreatedAt    time.Time
}

func (ItemShare) TableName() string { return "item_shares" }

// ItemComment 评论，支持一层回复
type ItemComment struct {
	ID              string   `gorm:"primaryKey;type:varchar(36)"`
	ItemType        ItemType `gorm:"type:varchar(16);index:idx_comment_item;not null"`
	ItemID          string   `gorm:"type:varchar(36);index:idx_comment_item;not null"`
	UserID          string   `gorm:"type:varchar(36);index:idx_comment_user;not null"`
	Content         string   `gorm:"type:text;not null"`
	ParentCommentID *string  `gorm:"type:varchar(36);index"`
	IsBot           bool     `gorm:"index"`
	CreatedAt       time.Time
}

func (ItemComment) TableName() string { return "item_comments" }
