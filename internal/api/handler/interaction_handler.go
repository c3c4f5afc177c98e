package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sublimes-drive/drive-core/internal/middleware"
	"github.com/sublimes-drive/drive-core/internal/model"
	"github.com/sublimes-drive/drive-core/internal/service"
	"github.com/sublimes-drive/drive-core/pkg/response"
)

type shareRequest struct {
	Channel string `json:"channel" binding:"required,sharechannel"`
}

type commentRequest struct {
	Content  string  `json:"content" binding:"required"`
	ParentID *string `json:"parent_id"`
}

func itemRef(c *gin.Context) (model.ItemType, string) {
	return model.ItemType(c.Param("item_type")), c.Param("item_id")
}

func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		response.Unauthorized(c, err.Error())
	case errors.Is(err, service.ErrInvalidItemType),
		errors.Is(err, service.ErrEmptyContent),
		errors.Is(err, service.ErrInvalidParent):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrNotFound):
		response.NotFound(c, err.Error())
	default:
		response.InternalError(c, err)
	}
}

// ToggleLike 点赞/取消点赞（幂等翻转）
// @Summary 点赞开关
// @Tags 互动
// @Produce json
// @Param item_type path string true "内容类型" Enums(listing, garage, event, meetup, repair_bid, post)
// @Param item_id path string true "内容ID"
// @Success 200 {object} response.Response{data=service.LikeState}
// @Failure 401 {object} response.Response
// @Router /api/v1/items/{item_type}/{item_id}/like/toggle [post]
func (h *Handler) ToggleLike(c *gin.Context) {
	itemType, itemID := itemRef(c)
	state, err := h.interactions.ToggleLike(c.Request.Context(), itemType, itemID, middleware.UserID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, state)
}

// ToggleSave 收藏/取消收藏
// @Summary 收藏开关
// @Tags 互动
// @Produce json
// @Param item_type path string true "内容类型"
// @Param item_id path string true "内容ID"
// @Success 200 {object} response.Response{data=service.SaveState}
// @Failure 401 {object} response.Response
// @Router /api/v1/items/{item_type}/{item_id}/save/toggle [post]
func (h *Handler) ToggleSave(c *gin.Context) {
	itemType, itemID := itemRef(c)
	state, err := h.interactions.ToggleSave(c.Request.Context(), itemType, itemID, middleware.UserID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, state)
}

// TrackShare 记录分享，只增不减，允许匿名
// @Summary 分享打点
// @Tags 互动
// @Accept json
// @Produce json
// @Param item_type path string true "内容类型"
// @Param item_id path string true "内容ID"
// @Param request body shareRequest true "分享渠道"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/items/{item_type}/{item_id}/share [post]
func (h *Handler) TrackShare(c *gin.Context) {
	var req shareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	itemType, itemID := itemRef(c)
	var userID *string
	if uid := middleware.UserID(c); uid != "" {
		userID = &uid
	}
	cnt, err := h.interactions.TrackShare(c.Request.Context(), itemType, itemID, userID, model.ShareChannel(req.Channel))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"share_count": cnt})
}

// AddComment 发表评论或回复
// @Summary 发表评论
// @Tags 互动
// @Accept json
// @Produce json
// @Param item_type path string true "内容类型"
// @Param item_id path string true "内容ID"
// @Param request body commentRequest true "评论内容"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /api/v1/items/{item_type}/{item_id}/comments [post]
func (h *Handler) AddComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	itemType, itemID := itemRef(c)
	comment, total, err := h.interactions.AddComment(c.Request.Context(), itemType, itemID, middleware.UserID(c), req.Content, req.ParentID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"comment": comment, "comment_count": total})
}

// DeleteComment 删除本人评论；非本人静默 0 行
// @Summary 删除评论
// @Tags 互动
// @Produce json
// @Param comment_id path string true "评论ID"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Failure 401 {object} response.Response
// @Router /api/v1/comments/{comment_id} [delete]
func (h *Handler) DeleteComment(c *gin.Context) {
	deleted, err := h.interactions.DeleteComment(c.Request.Context(), c.Param("comment_id"), middleware.UserID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": deleted})
}

// GetCounts 四类互动读时计数
// @Summary 查询互动计数
// @Tags 互动
// @Produce json
// @Param item_type path string true "内容类型"
// @Param item_id path string true "内容ID"
// @Success 200 {object} response.Response{data=service.Counts}
// @Router /api/v1/items/{item_type}/{item_id}/counts [get]
func (h *Handler) GetCounts(c *gin.Context) {
	itemType, itemID := itemRef(c)
	counts, err := h.interactions.GetCounts(c.Request.Context(), itemType, itemID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, counts)
}

// GetUserState 当前用户在该内容上的赞/藏状态
// @Summary 查询用户互动状态
// @Tags 互动
// @Produce json
// @Param item_type path string true "内容类型"
// @Param item_id path string true "内容ID"
// @Success 200 {object} response.Response{data=service.UserState}
// @Router /api/v1/items/{item_type}/{item_id}/state [get]
func (h *Handler) GetUserState(c *gin.Context) {
	itemType, itemID := itemRef(c)
	state, err := h.interactions.GetUserState(c.Request.Context(), itemType, itemID, middleware.UserID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, state)
}

// ListSaves 当前用户的收藏列表
// @Summary 查询我的收藏
// @Tags 互动
// @Produce json
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(50)
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Failure 401 {object} response.Response
// @Router /api/v1/users/me/saves [get]
func (h *Handler) ListSaves(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))
	list, err := h.interactions.ListSaves(c.Request.Context(), middleware.UserID(c), page, pageSize)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"page": page, "page_size": pageSize, "list": list})
}

// ListComments 按时间正序分页
// @Summary 查询评论列表
// @Tags 互动
// @Produce json
// @Param item_type path string true "内容类型"
// @Param item_id path string true "内容ID"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(50)
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/items/{item_type}/{item_id}/comments [get]
func (h *Handler) ListComments(c *gin.Context) {
	itemType, itemID := itemRef(c)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))
	list, err := h.interactions.ListComments(c.Request.Context(), itemType, itemID, page, pageSize)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"page": page, "page_size": pageSize, "list": list})
}
