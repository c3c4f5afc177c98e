package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/sublimes-drive/drive-core/internal/model"
)

type PostRepository interface {
	Create(ctx context.Context, p *model.Post) error
	GetByID(ctx context.Context, id string) (*model.Post, error)
}

type postRepository struct{ db *gorm.DB }

func NewPostRepository(db *gorm.DB) PostRepository { return &postRepository{db: db} }

func (r *postRepository) Create(ctx context.Context, p *model.Post) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*model.Post, error) {
	var p model.Post
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
