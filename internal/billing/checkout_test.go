package billing

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sublimes-drive/drive-core/internal/model"
	"github.com/sublimes-drive/drive-core/internal/repository"
)

type fakeProvider struct {
	customerCalls int
	sessionCalls  int
	lastParams    SessionParams
	customerErr   error
	sessionErr    error
}

func (p *fakeProvider) CreateCustomer(ctx context.Context, email, userID string) (string, error) {
	p.customerCalls++
	if p.customerErr != nil {
		return "", p.customerErr
	}
	return "cus_test_" + userID, nil
}

func (p *fakeProvider) CreateSession(ctx context.Context, params SessionParams) (*Session, error) {
	p.sessionCalls++
	p.lastParams = params
	if p.sessionErr != nil {
		return nil, p.sessionErr
	}
	return &Session{ID: "cs_test_123", URL: "https://checkout.example.com/cs_test_123"}, nil
}

func newCheckoutFixture(t *testing.T) (*CheckoutService, *fakeProvider, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Order{}, &model.BillingCustomer{}, &model.Wallet{}))

	provider := &fakeProvider{}
	svc := NewCheckoutService(
		repository.NewSingleDBOrderRepository(db),
		repository.NewBillingRepository(db),
		provider,
	)
	return svc, provider, db
}

func strPtr(s string) *string { return &s }
func amtPtr(n int64) *int64   { return &n }

func validRequest() CheckoutRequest {
	return CheckoutRequest{
		Kind:       model.OrderKindWalletCredit,
		Amount:     amtPtr(5000),
		SuccessURL: "https://app.example.com/ok",
		CancelURL:  "https://app.example.com/cancel",
	}
}

func TestCheckoutDynamicKindRequiresAmount(t *testing.T) {
	svc, provider, _ := newCheckoutFixture(t)

	req := validRequest()
	req.Amount = nil
	_, err := svc.CreateCheckout(context.Background(), "u1", "u1@example.com", req)
	require.ErrorIs(t, err, ErrValidation)

	req.Amount = amtPtr(0)
	_, err = svc.CreateCheckout(context.Background(), "u1", "u1@example.com", req)
	require.ErrorIs(t, err, ErrValidation)

	// validation rejects before any gateway traffic
	require.Zero(t, provider.customerCalls)
	require.Zero(t, provider.sessionCalls)
}

func TestCheckoutFixedKindRequiresPriceID(t *testing.T) {
	svc, provider, _ := newCheckoutFixture(t)

	req := CheckoutRequest{
		Kind:       "subscription",
		SuccessURL: "https://app.example.com/ok",
		CancelURL:  "https://app.example.com/cancel",
	}
	_, err := svc.CreateCheckout(context.Background(), "u1", "u1@example.com", req)
	require.ErrorIs(t, err, ErrValidation)
	require.Zero(t, provider.sessionCalls)

	req.PriceID = strPtr("price_abc")
	res, err := svc.CreateCheckout(context.Background(), "u1", "u1@example.com", req)
	require.NoError(t, err)
	require.NotEmpty(t, res.OrderID)
	require.Equal(t, "price_abc", *provider.lastParams.PriceID)
	require.Nil(t, provider.lastParams.Amount)
}

func TestCheckoutWalletCreditHappyPath(t *testing.T) {
	svc, provider, db := newCheckoutFixture(t)
	ctx := context.Background()

	res, err := svc.CreateCheckout(ctx, "u1", "u1@example.com", validRequest())
	require.NoError(t, err)
	require.Equal(t, "https://checkout.example.com/cs_test_123", res.RedirectURL)
	require.Equal(t, "cs_test_123", res.SessionID)

	// customer mapping persisted
	var cust model.BillingCustomer
	require.NoError(t, db.Where("user_id = ?", "u1").First(&cust).Error)
	require.Equal(t, "cus_test_u1", cust.CustomerID)

	// AED wallet created for the user
	var wallet model.Wallet
	require.NoError(t, db.Where("owner_type = ? AND owner_id = ?", "user", "u1").First(&wallet).Error)
	require.Equal(t, "AED", wallet.Currency)
	require.EqualValues(t, 0, wallet.Balance)

	// pending order with the session written back
	var order model.Order
	require.NoError(t, db.Where("id = ?", res.OrderID).First(&order).Error)
	require.Equal(t, model.OrderStatusPending, order.Status)
	require.Equal(t, "AED", order.Currency)
	require.EqualValues(t, 5000, *order.Amount)
	require.Equal(t, "cs_test_123", order.CheckoutSession)

	require.Equal(t, "Wallet Top-Up", provider.lastParams.ProductName)
	require.Equal(t, res.OrderID, provider.lastParams.Metadata["order_id"])
	require.Equal(t, model.OrderKindWalletCredit, provider.lastParams.Metadata["kind"])
	require.Equal(t, "u1", provider.lastParams.Metadata["user_id"])
	require.Equal(t, wallet.ID, provider.lastParams.Metadata["wallet_id"])
	require.Equal(t, "5000", provider.lastParams.Metadata["amount"])
}

func TestCheckoutReusesExistingCustomerAndWallet(t *testing.T) {
	svc, provider, db := newCheckoutFixture(t)
	ctx := context.Background()

	_, err := svc.CreateCheckout(ctx, "u1", "u1@example.com", validRequest())
	require.NoError(t, err)
	_, err = svc.CreateCheckout(ctx, "u1", "u1@example.com", validRequest())
	require.NoError(t, err)

	require.Equal(t, 1, provider.customerCalls)

	var walletCount int64
	require.NoError(t, db.Model(&model.Wallet{}).Count(&walletCount).Error)
	require.EqualValues(t, 1, walletCount)
}

func TestCheckoutTargetIDRouting(t *testing.T) {
	svc, provider, db := newCheckoutFixture(t)
	ctx := context.Background()

	// UUID target lands on the order column
	req := validRequest()
	req.Kind = model.OrderKindOfferPurchase
	req.TargetID = strPtr("0d1f3c55-2c1a-4b58-9d6e-3f2a1b4c5d6e")
	res, err := svc.CreateCheckout(ctx, "u1", "u1@example.com", req)
	require.NoError(t, err)

	var order model.Order
	require.NoError(t, db.Where("id = ?", res.OrderID).First(&order).Error)
	require.NotNil(t, order.TargetID)
	require.Equal(t, *req.TargetID, *order.TargetID)

	// non-UUID target only goes into meta
	req.TargetID = strPtr("listing-42")
	res, err = svc.CreateCheckout(ctx, "u1", "u1@example.com", req)
	require.NoError(t, err)

	// 重新声明，避免上一次查询残留的主键被 gorm 当作查询条件
	var second model.Order
	require.NoError(t, db.Where("id = ?", res.OrderID).First(&second).Error)
	require.Nil(t, second.TargetID)
	var meta map[string]string
	require.NoError(t, json.Unmarshal([]byte(second.Meta), &meta))
	require.Equal(t, "listing-42", meta["target_id"])
	require.Equal(t, "listing-42", provider.lastParams.Metadata["target_id"])
}

func TestCheckoutProviderFailureIsErrProvider(t *testing.T) {
	svc, provider, db := newCheckoutFixture(t)
	provider.sessionErr = errors.New("stripe down")

	_, err := svc.CreateCheckout(context.Background(), "u1", "u1@example.com", validRequest())
	require.ErrorIs(t, err, ErrProvider)

	// the pending order exists but never got a session id
	var order model.Order
	require.NoError(t, db.Where("user_id = ?", "u1").First(&order).Error)
	require.Equal(t, model.OrderStatusPending, order.Status)
	require.Empty(t, order.CheckoutSession)
}

func TestCheckoutCustomerFailureIsErrProvider(t *testing.T) {
	svc, provider, db := newCheckoutFixture(t)
	provider.customerErr = errors.New("stripe down")

	_, err := svc.CreateCheckout(context.Background(), "u1", "u1@example.com", validRequest())
	require.ErrorIs(t, err, ErrProvider)
	require.Zero(t, provider.sessionCalls)

	var cnt int64
	require.NoError(t, db.Model(&model.Order{}).Count(&cnt).Error)
	require.EqualValues(t, 0, cnt)
}
