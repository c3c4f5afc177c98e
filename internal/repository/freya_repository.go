package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sublimes-drive/drive-core/internal/model"
)

type FreyaRepository interface {
	GetPostState(ctx context.Context, agentID, postID string) (*model.FreyaPostState, error)
	MarkAutoComment(ctx context.Context, agentID, postID, commentID string) error
	MarkSummaryReply(ctx context.Context, agentID, postID, commentID string) error
	InsertRun(ctx context.Context, run *model.FreyaRun) error
	ListRuns(ctx context.Context, agentID string, offset, limit int) ([]*model.FreyaRun, error)
	InsertImageAsset(ctx context.Context, asset *model.FreyaImageAsset) error
}

type freyaRepository struct{ db *gorm.DB }

func NewFreyaRepository(db *gorm.DB) FreyaRepository { return &freyaRepository{db: db} }

func (r *freyaRepository) GetPostState(ctx context.Context, agentID, postID string) (*model.FreyaPostState, error) {
	var st model.FreyaPostState
	err := r.db.WithContext(ctx).
		Where("agent_id = ? AND post_id = ?", agentID, postID).
		First(&st).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (r *freyaRepository) MarkAutoComment(ctx context.Context, agentID, postID, commentID string) error {
	st := &model.FreyaPostState{PostID: postID, AgentID: agentID, AutoCommentID: &commentID}
	// 主键冲突说明已有标记，保持首条不变
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(st).Error
}

func (r *freyaRepository) MarkSummaryReply(ctx context.Context, agentID, postID, commentID string) error {
	return r.db.WithContext(ctx).
		Model(&model.FreyaPostState{}).
		Where("agent_id = ? AND post_id = ? AND summary_reply_comment_id IS NULL", agentID, postID).
		Update("summary_reply_comment_id", commentID).Error
}

func (r *freyaRepository) InsertRun(ctx context.Context, run *model.FreyaRun) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *freyaRepository) ListRuns(ctx context.Context, agentID string, offset, limit int) ([]*model.FreyaRun, error) {
	var runs []*model.FreyaRun
	err := r.db.WithContext(ctx).
		Where("agent_id = ?", agentID).
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&runs).Error
	return runs, err
}

func (r *freyaRepository) InsertImageAsset(ctx context.Context, asset *model.FreyaImageAsset) error {
	if asset.ID == "" {
		asset.ID = uuid.New().String()
	}
	return r.db.WithContext(ctx).Create(asset).Error
}
