package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sublimes-drive/drive-core/internal/freya"
	"github.com/sublimes-drive/drive-core/pkg/response"
)

type annotateRequest struct {
	PostID      string             `json:"post_id" binding:"required"`
	ImageURL    string             `json:"image_url" binding:"required,url"`
	Description string             `json:"description"`
	Pins        []freya.Annotation `json:"pins" binding:"required,min=1,dive"`
}

// ListFreyaRuns 助手运行审计，供运营排查跳过原因与 token 消耗
// @Summary 查询助手运行记录
// @Tags 助手
// @Produce json
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/freya/runs [get]
func (h *Handler) ListFreyaRuns(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	runs, err := h.freyaRepo.ListRuns(c.Request.Context(), h.agentID, (page-1)*pageSize, pageSize)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"page": page, "page_size": pageSize, "list": runs})
}

// AnnotateImage 生成标注图并返回 7 天签名 URL
// @Summary 图片标注
// @Tags 助手
// @Accept json
// @Produce json
// @Param request body annotateRequest true "标注参数"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Failure 400 {object} response.Response
// @Router /api/v1/freya/annotate [post]
func (h *Handler) AnnotateImage(c *gin.Context) {
	if h.annotator == nil {
		response.BadRequest(c, "image annotation is not enabled")
		return
	}
	var req annotateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	signed, err := h.annotator.Annotate(c.Request.Context(), req.PostID, req.ImageURL, req.Description, req.Pins)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"url": signed})
}
