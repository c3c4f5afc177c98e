package model

import "time"

// User 用户（含机器人账号）
type User struct {
	ID          string `gorm:"primaryKey;type:varchar(36)"`
	Username    string `gorm:"type:varchar(64);uniqueIndex;not null"`
	Email       string `gorm:"type:varchar(128);uniqueIndex;not null"`
	Password    string `gorm:"type:varchar(128);not null"`
	DisplayName string `gorm:"type:varchar(64)"`
	AvatarURL   string `gorm:"type:varchar(256)"`
	IsBot       bool   `gorm:"index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (User) TableName() string { return "users" }
