package billing

import (
	"context"
	"strings"

	stripe "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
)

// StripeProvider implements PaymentProvider against the Stripe API.
type StripeProvider struct {
	api *client.API
}

func NewStripeProvider(secretKey string) *StripeProvider {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeProvider{api: api}
}

func (p *StripeProvider) CreateCustomer(ctx context.Context, email, userID string) (string, error) {
	params := &stripe.CustomerParams{
		Params: stripe.Params{Context: ctx},
		Email:  stripe.String(email),
	}
	params.AddMetadata("user_id", userID)
	c, err := p.api.Customers.New(params)
	if err != nil {
		return "", err
	}
	return c.ID, nil
}

func (p *StripeProvider) CreateSession(ctx context.Context, sp SessionParams) (*Session, error) {
	var lineItem *stripe.CheckoutSessionLineItemParams
	if sp.Amount != nil {
		lineItem = &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(strings.ToLower(sp.Currency)),
				UnitAmount: stripe.Int64(*sp.Amount),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(sp.ProductName),
				},
			},
			Quantity: stripe.Int64(1),
		}
	} else {
		lineItem = &stripe.CheckoutSessionLineItemParams{
			Price:    sp.PriceID,
			Quantity: stripe.Int64(1),
		}
	}

	params := &stripe.CheckoutSessionParams{
		Params:     stripe.Params{Context: ctx},
		Customer:   stripe.String(sp.CustomerID),
		LineItems:  []*stripe.CheckoutSessionLineItemParams{lineItem},
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(sp.SuccessURL),
		CancelURL:  stripe.String(sp.CancelURL),
	}
	for k, v := range sp.Metadata {
		params.AddMetadata(k, v)
	}

	sess, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, err
	}
	return &Session{ID: sess.ID, URL: sess.URL}, nil
}
