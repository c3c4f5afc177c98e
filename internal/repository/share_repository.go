package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sublimes-drive/drive-core/internal/model"
)

type ShareRepository interface {
	Create(ctx context.Context, itemType model.ItemType, itemID string, userID *string, channel model.ShareChannel) error
	Count(ctx context.Context, itemType model.ItemType, itemID string) (int64, error)
}

type shareRepository struct{ db *gorm.DB }

func NewShareRepository(db *gorm.DB) ShareRepository { return &shareRepository{db: db} }

func (r *shareRepository) Create(ctx context.Context, itemType model.ItemType, itemID string, userID *string, channel model.ShareChannel) error {
	s := &model.ItemShare{ID: uuid.New().String(), ItemType: itemType, ItemID: itemID, UserID: userID, ShareChannel: channel}
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *shareRepository) Count(ctx context.Context, itemType model.ItemType, itemID string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).
		Model(&model.ItemShare{}).
		Where("item_type = ? AND item_id = ?", itemType, itemID).
		Count(&cnt).Error
	return cnt, err
}
