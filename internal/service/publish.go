package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sublimes-drive/drive-core/internal/model"
)

// Publisher 负责事务内写 posts + dispatch_events
type Publisher struct{ db *gorm.DB }

func NewPublisher(db *gorm.DB) *Publisher { return &Publisher{db: db} }

// PublishPost 在一个事务内落地 Post 与 new_post 调度事件
func (p *Publisher) PublishPost(ctx context.Context, authorID, title, body, media string) (string, error) {
	postID := uuid.New().String()
	now := time.Now()
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post := &model.Post{ID: postID, AuthorID: authorID, Title: title, Body: body, Media: media, CreatedAt: now, UpdatedAt: now}
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		ev := &model.DispatchEvent{ID: uuid.New().String(), EventType: model.DispatchNewPost, PostID: postID, CreatedAt: now, Status: "pending"}
		if err := tx.Create(ev).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return postID, nil
}
