package handler

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/sublimes-drive/drive-core/internal/model"
)

// 注册自定义枚举校验，绑定阶段即拒绝非法渠道
func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("sharechannel", func(fl validator.FieldLevel) bool {
			return model.ShareChannel(fl.Field().String()).Valid()
		})
	}
}
