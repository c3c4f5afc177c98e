package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sublimes-drive/drive-core/internal/model"
	"github.com/sublimes-drive/drive-core/internal/repository"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrInvalidItemType = errors.New("invalid item type")
	ErrEmptyContent    = errors.New("comment content is empty")
	ErrInvalidParent   = errors.New("parent comment belongs to a different item")
	ErrNotFound        = errors.New("not found")
)

// LikeState toggle 返回的权威状态
type LikeState struct {
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"like_count"`
}

type SaveState struct {
	Saved     bool  `json:"saved"`
	SaveCount int64 `json:"save_count"`
}

// Counts 四类互动的读时计数
type Counts struct {
	LikeCount    int64 `json:"like_count"`
	SaveCount    int64 `json:"save_count"`
	ShareCount   int64 `json:"share_count"`
	CommentCount int64 `json:"comment_count"`
}

type UserState struct {
	Liked bool `json:"liked"`
	Saved bool `json:"saved"`
}

// InteractionService 通用互动门面：任意 (item_type, item_id) 的赞/藏/享/评
type InteractionService interface {
	ToggleLike(ctx context.Context, itemType model.ItemType, itemID, userID string) (*LikeState, error)
	ToggleSave(ctx context.Context, itemType model.ItemType, itemID, userID string) (*SaveState, error)
	TrackShare(ctx context.Context, itemType model.ItemType, itemID string, userID *string, channel model.ShareChannel) (int64, error)
	AddComment(ctx context.Context, itemType model.ItemType, itemID, userID, content string, parentID *string) (*model.ItemComment, int64, error)
	DeleteComment(ctx context.Context, commentID, userID string) (bool, error)
	GetCounts(ctx context.Context, itemType model.ItemType, itemID string) (*Counts, error)
	GetUserState(ctx context.Context, itemType model.ItemType, itemID, userID string) (*UserState, error)
	ListComments(ctx context.Context, itemType model.ItemType, itemID string, page, pageSize int) ([]*model.ItemComment, error)
	ListSaves(ctx context.Context, userID string, page, pageSize int) ([]*model.ItemSave, error)
}

type interactionService struct {
	db          *gorm.DB
	likeRepo    repository.LikeRepository
	saveRepo    repository.SaveRepository
	shareRepo   repository.ShareRepository
	commentRepo repository.CommentRepository
	agentID     string // 机器人账号，其评论不再触发调度
}

func NewInteractionService(db *gorm.DB, agentID string) InteractionService {
	return &interactionService{
		db:          db,
		likeRepo:    repository.NewLikeRepository(db),
		saveRepo:    repository.NewSaveRepository(db),
		shareRepo:   repository.NewShareRepository(db),
		commentRepo: repository.NewCommentRepository(db),
		agentID:     agentID,
	}
}

// ToggleLike 单事务内翻转点赞并回读计数，调用方以返回值为准更新本地状态
func (s *interactionService) ToggleLike(ctx context.Context, itemType model.ItemType, itemID, userID string) (*LikeState, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	if !itemType.Valid() {
		return nil, ErrInvalidItemType
	}

	var res LikeState
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := repository.NewLikeRepository(tx)
		liked, err := repo.Exists(ctx, itemType, itemID, userID)
		if err != nil {
			return err
		}
		if liked {
			if err := repo.Delete(ctx, itemType, itemID, userID); err != nil {
				return err
			}
		} else {
			if err := repo.Create(ctx, itemType, itemID, userID); err != nil {
				return err
			}
		}
		cnt, err := repo.Count(ctx, itemType, itemID)
		if err != nil {
			return err
		}
		res = LikeState{Liked: !liked, LikeCount: cnt}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *interactionService) ToggleSave(ctx context.Context, itemType model.ItemType, itemID, userID string) (*SaveState, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	if !itemType.Valid() {
		return nil, ErrInvalidItemType
	}

	var res SaveState
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := repository.NewSaveRepository(tx)
		saved, err := repo.Exists(ctx, itemType, itemID, userID)
		if err != nil {
			return err
		}
		if saved {
			if err := repo.Delete(ctx, itemType, itemID, userID); err != nil {
				return err
			}
		} else {
			if err := repo.Create(ctx, itemType, itemID, userID); err != nil {
				return err
			}
		}
		cnt, err := repo.Count(ctx, itemType, itemID)
		if err != nil {
			return err
		}
		res = SaveState{Saved: !saved, SaveCount: cnt}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// TrackShare 分享只增不删，允许匿名
func (s *interactionService) TrackShare(ctx context.Context, itemType model.ItemType, itemID string, userID *string, channel model.ShareChannel) (int64, error) {
	if !itemType.Valid() {
		return 0, ErrInvalidItemType
	}
	if err := s.shareRepo.Create(ctx, itemType, itemID, userID, channel); err != nil {
		return 0, err
	}
	return s.shareRepo.Count(ctx, itemType, itemID)
}

// AddComment 写评论并回读计数；帖子下的用户评论同事务落一条调度事件
func (s *interactionService) AddComment(ctx context.Context, itemType model.ItemType, itemID, userID, content string, parentID *string) (*model.ItemComment, int64, error) {
	if userID == "" {
		return nil, 0, ErrUnauthenticated
	}
	if !itemType.Valid() {
		return nil, 0, ErrInvalidItemType
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, 0, ErrEmptyContent
	}

	var (
		created *model.ItemComment
		total   int64
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := repository.NewCommentRepository(tx)
		if parentID != nil {
			parent, err := repo.GetByID(ctx, *parentID)
			if err != nil {
				return err
			}
			if parent == nil {
				return ErrNotFound
			}
			if parent.ItemType != itemType || parent.ItemID != itemID {
				return ErrInvalidParent
			}
		}
		c := &model.ItemComment{
			ItemType:        itemType,
			ItemID:          itemID,
			UserID:          userID,
			Content:         content,
			ParentCommentID: parentID,
			IsBot:           userID == s.agentID && s.agentID != "",
		}
		if err := repo.Create(ctx, c); err != nil {
			return err
		}
		cnt, err := repo.Count(ctx, itemType, itemID)
		if err != nil {
			return err
		}
		created, total = c, cnt

		// 机器人自己的评论不再触发调度，避免自应答循环
		if itemType == model.ItemTypePost && !c.IsBot {
			ev := &model.DispatchEvent{
				ID:        uuid.New().String(),
				EventType: model.DispatchNewComment,
				PostID:    itemID,
				CommentID: &c.ID,
				CreatedAt: time.Now(),
				Status:    "pending",
			}
			if err := tx.Create(ev).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return created, total, nil
}

// DeleteComment 按作者过滤删除；非作者静默删除 0 行（宽容删除，见 DESIGN.md）
func (s *interactionService) DeleteComment(ctx context.Context, commentID, userID string) (bool, error) {
	if userID == "" {
		return false, ErrUnauthenticated
	}
	rows, err := s.commentRepo.DeleteByOwner(ctx, commentID, userID)
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// GetCounts 读时计数，四张表各查一次
func (s *interactionService) GetCounts(ctx context.Context, itemType model.ItemType, itemID string) (*Counts, error) {
	if !itemType.Valid() {
		return nil, ErrInvalidItemType
	}
	likes, err := s.likeRepo.Count(ctx, itemType, itemID)
	if err != nil {
		return nil, err
	}
	saves, err := s.saveRepo.Count(ctx, itemType, itemID)
	if err != nil {
		return nil, err
	}
	shares, err := s.shareRepo.Count(ctx, itemType, itemID)
	if err != nil {
		return nil, err
	}
	comments, err := s.commentRepo.Count(ctx, itemType, itemID)
	if err != nil {
		return nil, err
	}
	return &Counts{LikeCount: likes, SaveCount: saves, ShareCount: shares, CommentCount: comments}, nil
}

func (s *interactionService) GetUserState(ctx context.Context, itemType model.ItemType, itemID, userID string) (*UserState, error) {
	if !itemType.Valid() {
		return nil, ErrInvalidItemType
	}
	if userID == "" {
		return &UserState{}, nil
	}
	liked, err := s.likeRepo.Exists(ctx, itemType, itemID, userID)
	if err != nil {
		return nil, err
	}
	saved, err := s.saveRepo.Exists(ctx, itemType, itemID, userID)
	if err != nil {
		return nil, err
	}
	return &UserState{Liked: liked, Saved: saved}, nil
}

func (s *interactionService) ListComments(ctx context.Context, itemType model.ItemType, itemID string, page, pageSize int) ([]*model.ItemComment, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 50
	}
	offset := (page - 1) * pageSize
	return s.commentRepo.ListByItem(ctx, itemType, itemID, offset, pageSize)
}

// ListSaves 当前用户收藏列表，按收藏时间倒序
func (s *interactionService) ListSaves(ctx context.Context, userID string, page, pageSize int) ([]*model.ItemSave, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 50
	}
	return s.saveRepo.ListByUser(ctx, userID, (page-1)*pageSize, pageSize)
}
