package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/google/uuid"

	"github.com/sublimes-drive/drive-core/internal/model"
	"github.com/sublimes-drive/drive-core/internal/repository"
)

var (
	// ErrValidation covers malformed checkout input. Callers map it to 400.
	ErrValidation = errors.New("invalid checkout request")
	// ErrProvider covers upstream payment API failures. Callers map it to 502
	// and offer a retry.
	ErrProvider = errors.New("payment provider call failed")
)

const defaultCurrency = "AED"

// Kinds billed with a caller-supplied amount in minor units. Anything else
// must carry a gateway price reference.
var dynamicAmountKinds = map[string]bool{
	model.OrderKindWalletCredit:  true,
	model.OrderKindListingFee:    true,
	model.OrderKindOfferPurchase: true,
	model.OrderKindParts:         true,
}

var uuidRe = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[1-5][0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

// SessionParams is the provider-neutral shape of one hosted checkout session.
type SessionParams struct {
	CustomerID  string
	Kind        string
	Amount      *int64            // minor units, dynamic kinds only
	PriceID     *string           // fixed-price kinds only
	Currency    string
	ProductName string
	SuccessURL  string
	CancelURL   string
	Metadata    map[string]string
}

// Session is the provider's created checkout session.
type Session struct {
	ID  string
	URL string
}

// PaymentProvider abstracts the payment gateway so the service is testable
// without network access.
type PaymentProvider interface {
	CreateCustomer(ctx context.Context, email, userID string) (string, error)
	CreateSession(ctx context.Context, params SessionParams) (*Session, error)
}

// CheckoutRequest is one checkout attempt from an authenticated user.
type CheckoutRequest struct {
	Kind       string            `json:"kind" binding:"required"`
	Amount     *int64            `json:"amount"`
	PriceID    *string           `json:"price_id"`
	TargetID   *string           `json:"target_id"`
	SuccessURL string            `json:"success_url" binding:"required,url"`
	CancelURL  string            `json:"cancel_url" binding:"required,url"`
	Metadata   map[string]string `json:"metadata"`
}

// CheckoutResult carries everything the client needs to redirect.
type CheckoutResult struct {
	RedirectURL string `json:"url"`
	SessionID   string `json:"session_id"`
	OrderID     string `json:"order_id"`
}

// CheckoutService creates a pending order and a hosted checkout session.
// pending → paid reconciliation happens in the webhook handler, not here.
type CheckoutService struct {
	orders   repository.OrderRepository
	billing  repository.BillingRepository
	provider PaymentProvider
}

func NewCheckoutService(orders repository.OrderRepository, billing repository.BillingRepository, provider PaymentProvider) *CheckoutService {
	return &CheckoutService{orders: orders, billing: billing, provider: provider}
}

// CreateCheckout validates the request, ensures the customer (and, for wallet
// top-ups, the wallet) exists, writes the pending order and asks the provider
// for a session. All validation runs before the first provider call.
func (s *CheckoutService) CreateCheckout(ctx context.Context, userID, email string, req CheckoutRequest) (*CheckoutResult, error) {
	if req.Kind == "" {
		return nil, fmt.Errorf("%w: kind is required", ErrValidation)
	}
	if req.SuccessURL == "" || req.CancelURL == "" {
		return nil, fmt.Errorf("%w: success_url and cancel_url are required", ErrValidation)
	}
	dynamic := dynamicAmountKinds[req.Kind]
	if dynamic && (req.Amount == nil || *req.Amount <= 0) {
		return nil, fmt.Errorf("%w: amount (minor units) is required for kind %q", ErrValidation, req.Kind)
	}
	if !dynamic && (req.PriceID == nil || *req.PriceID == "") {
		return nil, fmt.Errorf("%w: price_id is required for kind %q", ErrValidation, req.Kind)
	}

	customerID, err := s.ensureCustomer(ctx, userID, email)
	if err != nil {
		return nil, err
	}

	var walletID string
	if req.Kind == model.OrderKindWalletCredit {
		walletID, err = s.ensureWallet(ctx, userID)
		if err != nil {
			return nil, err
		}
	}

	order := &model.Order{
		ID:       uuid.New().String(),
		UserID:   userID,
		Kind:     req.Kind,
		Status:   model.OrderStatusPending,
		Currency: defaultCurrency,
		PriceID:  req.PriceID,
	}
	if dynamic {
		order.Amount = req.Amount
	}

	meta := map[string]string{}
	for k, v := range req.Metadata {
		meta[k] = v
	}
	// target_id 仅在形如 UUID 时入列，否则只进 meta
	if req.TargetID != nil && *req.TargetID != "" {
		if uuidRe.MatchString(*req.TargetID) {
			order.TargetID = req.TargetID
		} else {
			meta["target_id"] = *req.TargetID
		}
	}
	if metaJSON, err := json.Marshal(meta); err == nil {
		order.Meta = string(metaJSON)
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	sessionMeta := map[string]string{
		"order_id": order.ID,
		"kind":     req.Kind,
		"user_id":  userID,
	}
	for k, v := range req.Metadata {
		sessionMeta[k] = v
	}
	if req.TargetID != nil && *req.TargetID != "" {
		sessionMeta["target_id"] = *req.TargetID
	}
	if walletID != "" {
		sessionMeta["wallet_id"] = walletID
	}
	if dynamic {
		sessionMeta["amount"] = fmt.Sprintf("%d", *req.Amount)
	}

	session, err := s.provider.CreateSession(ctx, SessionParams{
		CustomerID:  customerID,
		Kind:        req.Kind,
		Amount:      order.Amount,
		PriceID:     req.PriceID,
		Currency:    defaultCurrency,
		ProductName: productName(req.Kind),
		SuccessURL:  req.SuccessURL,
		CancelURL:   req.CancelURL,
		Metadata:    sessionMeta,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}

	if err := s.orders.SetCheckoutSession(ctx, order.ID, session.ID); err != nil {
		return nil, err
	}
	return &CheckoutResult{RedirectURL: session.URL, SessionID: session.ID, OrderID: order.ID}, nil
}

func (s *CheckoutService) ensureCustomer(ctx context.Context, userID, email string) (string, error) {
	existing, err := s.billing.GetCustomer(ctx, userID)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return existing.CustomerID, nil
	}
	customerID, err := s.provider.CreateCustomer(ctx, email, userID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProvider, err)
	}
	if err := s.billing.SaveCustomer(ctx, userID, customerID); err != nil {
		return "", err
	}
	return customerID, nil
}

func (s *CheckoutService) ensureWallet(ctx context.Context, userID string) (string, error) {
	w, err := s.billing.GetWallet(ctx, "user", userID)
	if err != nil {
		return "", err
	}
	if w != nil {
		return w.ID, nil
	}
	created := &model.Wallet{OwnerType: "user", OwnerID: userID, Currency: defaultCurrency}
	if err := s.billing.CreateWallet(ctx, created); err != nil {
		return "", err
	}
	return created.ID, nil
}

func productName(kind string) string {
	switch kind {
	case model.OrderKindWalletCredit:
		return "Wallet Top-Up"
	case model.OrderKindListingFee:
		return "Listing Fee"
	case model.OrderKindOfferPurchase:
		return "Offer Purchase"
	default:
		return "Payment"
	}
}
