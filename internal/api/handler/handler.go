package handler

import (
	"github.com/sublimes-drive/drive-core/internal/billing"
	"github.com/sublimes-drive/drive-core/internal/freya"
	"github.com/sublimes-drive/drive-core/internal/repository"
	"github.com/sublimes-drive/drive-core/internal/service"
)

// Handler 聚合各路由处理器的依赖
type Handler struct {
	auth         service.AuthService
	interactions service.InteractionService
	publisher    *service.Publisher
	posts        repository.PostRepository
	checkout     *billing.CheckoutService
	freyaRepo    repository.FreyaRepository
	annotator    *freya.Annotator // 未配置对象存储时为 nil
	agentID      string
}

func New(
	auth service.AuthService,
	interactions service.InteractionService,
	publisher *service.Publisher,
	posts repository.PostRepository,
	checkout *billing.CheckoutService,
	freyaRepo repository.FreyaRepository,
	annotator *freya.Annotator,
	agentID string,
) *Handler {
	return &Handler{
		auth:         auth,
		interactions: interactions,
		publisher:    publisher,
		posts:        posts,
		checkout:     checkout,
		freyaRepo:    freyaRepo,
		annotator:    annotator,
		agentID:      agentID,
	}
}
