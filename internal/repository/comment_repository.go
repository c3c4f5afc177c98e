package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sublimes-drive/drive-core/internal/model"
)

type CommentRepository interface {
	Create(ctx context.Context, c *model.ItemComment) error
	GetByID(ctx context.Context, id string) (*model.ItemComment, error)
	// DeleteByOwner 按作者过滤删除；非作者时删除 0 行，返回实际删除数
	DeleteByOwner(ctx context.Context, commentID, userID string) (int64, error)
	Count(ctx context.Context, itemType model.ItemType, itemID string) (int64, error)
	ListByItem(ctx context.Context, itemType model.ItemType, itemID string, offset, limit int) ([]*model.ItemComment, error)
	CountByAuthorOnItem(ctx context.Context, itemType model.ItemType, itemID, userID string) (int64, error)
}

type commentRepository struct{ db *gorm.DB }

func NewCommentRepository(db *gorm.DB) CommentRepository { return &commentRepository{db: db} }

func (r *commentRepository) Create(ctx context.Context, c *model.ItemComment) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *commentRepository) GetByID(ctx context.Context, id string) (*model.ItemComment, error) {
	var c model.ItemComment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *commentRepository) DeleteByOwner(ctx context.Context, commentID, userID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", commentID, userID).
		Delete(&model.ItemComment{})
	return res.RowsAffected, res.Error
}

func (r *commentRepository) Count(ctx context.Context, itemType model.ItemType, itemID string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).
		Model(&model.ItemComment{}).
		Where("item_type = ? AND item_id = ?", itemType, itemID).
		Count(&cnt).Error
	return cnt, err
}

func (r *commentRepository) ListByItem(ctx context.Context, itemType model.ItemType, itemID string, offset, limit int) ([]*model.ItemComment, error) {
	var res []*model.ItemComment
	err := r.db.WithContext(ctx).
		Where("item_type = ? AND item_id = ?", itemType, itemID).
		Order("created_at ASC").Offset(offset).Limit(limit).Find(&res).Error
	return res, err
}

func (r *commentRepository) CountByAuthorOnItem(ctx context.Context, itemType model.ItemType, itemID, userID string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).
		Model(&model.ItemComment{}).
		Where("item_type = ? AND item_id = ? AND user_id = ?", itemType, itemID, userID).
		Count(&cnt).Error
	return cnt, err
}
