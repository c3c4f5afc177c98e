package repository

import (
	"context"

	"github.com/sublimes-drive/drive-core/internal/model"
)

// OrderRepository 订单仓储接口
type OrderRepository interface {
	// Create 创建订单
	Create(ctx context.Context, order *model.Order) error

	// GetByID 根据订单ID查询订单
	GetByID(ctx context.Context, orderID string) (*model.Order, error)

	// GetByUserID 根据用户ID查询订单列表
	GetByUserID(ctx context.Context, userID string, limit int) ([]*model.Order, error)

	// UpdateStatus 更新订单状态
	UpdateStatus(ctx context.Context, orderID, status string) error

	// SetCheckoutSession 回写托管收银台 session id
	SetCheckoutSession(ctx context.Context, orderID, sessionID string) error

	// Count 统计订单数量
	Count(ctx context.Context) (int64, error)

	// Close 关闭数据库连接
	Close() error
}
