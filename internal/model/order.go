package model

import (
	"time"
)

// 支付类型
const (
	OrderKindWalletCredit  = "wallet_credit"
	OrderKindListingFee    = "listing_fee"
	OrderKindOfferPurchase = "offer_purchase"
	OrderKindParts         = "parts"
)

// OrderStatus 订单状态常量
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusFailed    = "failed"
	OrderStatusCancelled = "cancelled"
)

// Order 支付订单：跳转托管收银台前先落地 pending，webhook 对账改 paid
type Order struct {
	ID              string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID          string    `json:"user_id" gorm:"type:varchar(36);index:idx_order_user_created;not null"`
	Kind            string    `json:"kind" gorm:"type:varchar(32);index;not null"`
	Status          string    `json:"status" gorm:"type:varchar(16);index;not null;default:pending"`
	Currency        string    `json:"currency" gorm:"type:varchar(8);not null"`
	Amount          *int64    `json:"amount"` // 动态金额（最小货币单位），固定价 kind 为空
	PriceID         *string   `json:"price_id" gorm:"type:varchar(64)"`
	TargetID        *string   `json:"target_id" gorm:"type:varchar(36)"`
	Meta            string    `json:"meta" gorm:"type:text"` // JSON
	CheckoutSession string    `json:"checkout_session" gorm:"type:varchar(128);index"`
	CreatedAt       time.Time `json:"created_at" gorm:"index:idx_order_user_created"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName 指定表名 (用于单库)
func (Order) TableName() string {
	return "orders"
}

// BillingCustomer 用户与支付网关 customer 的映射
type BillingCustomer struct {
	UserID     string `gorm:"primaryKey;type:varchar(36)"`
	CustomerID string `gorm:"type:varchar(64);uniqueIndex;not null"`
	CreatedAt  time.Time
}

func (BillingCustomer) TableName() string { return "billing_customers" }

// Wallet 钱包余额（最小货币单位）
type Wallet struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	OwnerType string `gorm:"type:varchar(16);index:idx_wallet_owner,unique;not null"` // user / garage
	OwnerID   string `gorm:"type:varchar(36);index:idx_wallet_owner,unique;not null"`
	Currency  string `gorm:"type:varchar(8);not null"`
	Balance   int64  `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Wallet) TableName() string { return "billing_wallets" }
