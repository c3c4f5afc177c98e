package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sublimes-drive/drive-core/internal/model"
)

type SaveRepository interface {
	Create(ctx context.Context, itemType model.ItemType, itemID, userID string) error
	Delete(ctx context.Context, itemType model.ItemType, itemID, userID string) error
	Exists(ctx context.Context, itemType model.ItemType, itemID, userID string) (bool, error)
	Count(ctx context.Context, itemType model.ItemType, itemID string) (int64, error)
	ListByUser(ctx context.Context, userID string, offset, limit int) ([]*model.ItemSave, error)
}

type saveRepository struct{ db *gorm.DB }

func NewSaveRepository(db *gorm.DB) SaveRepository { return &saveRepository{db: db} }

func (r *saveRepository) Create(ctx context.Context, itemType model.ItemType, itemID, userID string) error {
	s := &model.ItemSave{ID: uuid.New().String(), ItemType: itemType, ItemID: itemID, UserID: userID}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(s).Error
}

func (r *saveRepository) Delete(ctx context.Context, itemType model.ItemType, itemID, userID string) error {
	return r.db.WithContext(ctx).
		Where("item_type = ? AND item_id = ? AND user_id = ?", itemType, itemID, userID).
		Delete(&model.ItemSave{}).Error
}

func (r *saveRepository) Exists(ctx context.Context, itemType model.ItemType, itemID, userID string) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.ItemSave{}).
		Where("item_type = ? AND item_id = ? AND user_id = ?", itemType, itemID, userID).
		Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *saveRepository) Count(ctx context.Context, itemType model.ItemType, itemID string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).
		Model(&model.ItemSave{}).
		Where("item_type = ? AND item_id = ?", itemType, itemID).
		Count(&cnt).Error
	return cnt, err
}

func (r *saveRepository) ListByUser(ctx context.Context, userID string, offset, limit int) ([]*model.ItemSave, error) {
	var res []*model.ItemSave
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&res).Error
	return res, err
}
