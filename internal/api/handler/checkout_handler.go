package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/sublimes-drive/drive-core/internal/billing"
	"github.com/sublimes-drive/drive-core/internal/middleware"
	"github.com/sublimes-drive/drive-core/pkg/response"
)

// CreateCheckout 创建托管收银台会话，先落 pending 订单再返回跳转链接
// @Summary 创建支付会话
// @Tags 支付
// @Accept json
// @Produce json
// @Param request body billing.CheckoutRequest true "支付请求"
// @Success 200 {object} response.Response{data=billing.CheckoutResult}
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /api/v1/billing/checkout [post]
func (h *Handler) CreateCheckout(c *gin.Context) {
	var req billing.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	email := c.GetHeader("X-User-Email")
	result, err := h.checkout.CreateCheckout(c.Request.Context(), middleware.UserID(c), email, req)
	if err != nil {
		switch {
		case errors.Is(err, billing.ErrValidation):
			response.BadRequest(c, err.Error())
		case errors.Is(err, billing.ErrProvider):
			c.JSON(502, response.Response{Code: 502, Message: err.Error()})
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.Success(c, result)
}
