package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/sublimes-drive/drive-core/internal/middleware"
	"github.com/sublimes-drive/drive-core/pkg/response"
)

type createPostRequest struct {
	Title string `json:"title" binding:"required,max=200"`
	Body  string `json:"body" binding:"required"`
	Media string `json:"media"` // JSON 数组，图片 URL 列表
}

// CreatePost 发帖，同事务写入调度事件
// @Summary 发布帖子
// @Tags 帖子
// @Accept json
// @Produce json
// @Param request body createPostRequest true "帖子内容"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /api/v1/posts [post]
func (h *Handler) CreatePost(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	postID, err := h.publisher.PublishPost(c.Request.Context(), middleware.UserID(c), req.Title, req.Body, req.Media)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"id": postID})
}

// GetPost 帖子详情
// @Summary 查询帖子
// @Tags 帖子
// @Produce json
// @Param post_id path string true "帖子ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/{post_id} [get]
func (h *Handler) GetPost(c *gin.Context) {
	post, err := h.posts.GetByID(c.Request.Context(), c.Param("post_id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if post == nil {
		response.NotFound(c, "post not found")
		return
	}
	response.Success(c, post)
}
