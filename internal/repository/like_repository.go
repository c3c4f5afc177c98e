package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sublimes-drive/drive-core/internal/model"
)

type LikeRepository interface {
	Create(ctx context.Context, itemType model.ItemType, itemID, userID string) error
	Delete(ctx context.Context, itemType model.ItemType, itemID, userID string) error
	Exists(ctx context.Context, itemType model.ItemType, itemID, userID string) (bool, error)
	Count(ctx context.Context, itemType model.ItemType, itemID string) (int64, error)
}

type likeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) LikeRepository { return &likeRepository{db: db} }

func (r *likeRepository) Create(ctx context.Context, itemType model.ItemType, itemID, userID string) error {
	l := &model.ItemLike{ID: uuid.New().String(), ItemType: itemType, ItemID: itemID, UserID: userID}
	// 幂等：重复点赞不报错
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(l).Error
}

func (r *likeRepository) Delete(ctx context.Context, itemType model.ItemType, itemID, userID string) error {
	return r.db.WithContext(ctx).
		Where("item_type = ? AND item_id = ? AND user_id = ?", itemType, itemID, userID).
		Delete(&model.ItemLike{}).Error
}

func (r *likeRepository) Exists(ctx context.Context, itemType model.ItemType, itemID, userID string) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.ItemLike{}).
		Where("item_type = ? AND item_id = ? AND user_id = ?", itemType, itemID, userID).
		Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *likeRepository) Count(ctx context.Context, itemType model.ItemType, itemID string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).
		Model(&model.ItemLike{}).
		Where("item_type = ? AND item_id = ?", itemType, itemID).
		Count(&cnt).Error
	return cnt, err
}
