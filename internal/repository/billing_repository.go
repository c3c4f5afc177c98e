package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sublimes-drive/drive-core/internal/model"
)

type BillingRepository interface {
	GetCustomer(ctx context.Context, userID string) (*model.BillingCustomer, error)
	SaveCustomer(ctx context.Context, userID, customerID string) error
	GetWallet(ctx context.Context, ownerType, ownerID string) (*model.Wallet, error)
	CreateWallet(ctx context.Context, w *model.Wallet) error
}

type billingRepository struct{ db *gorm.DB }

func NewBillingRepository(db *gorm.DB) BillingRepository { return &billingRepository{db: db} }

func (r *billingRepository) GetCustomer(ctx context.Context, userID string) (*model.BillingCustomer, error) {
	var c model.BillingCustomer
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *billingRepository) SaveCustomer(ctx context.Context, userID, customerID string) error {
	c := &model.BillingCustomer{UserID: userID, CustomerID: customerID}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(c).Error
}

func (r *billingRepository) GetWallet(ctx context.Context, ownerType, ownerID string) (*model.Wallet, error) {
	var w model.Wallet
	err := r.db.WithContext(ctx).
		Where("owner_type = ? AND owner_id = ?", ownerType, ownerID).
		First(&w).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *billingRepository) CreateWallet(ctx context.Context, w *model.Wallet) error {
	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(w).Error
}
