package payments

import (
	"context"
	"fmt"
	"strconv"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
)

// StripeClient implements SessionClient on an explicitly constructed
// Stripe API handle. No package-global key is set.
type StripeClient struct {
	api *client.API
}

// NewStripeClient creates a Stripe-backed session client.
func NewStripeClient(secretKey string) *StripeClient {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeClient{api: api}
}

// CreateSession creates a hosted Checkout session carrying the request id
// and the fee breakdown in its metadata.
func (c *StripeClient) CreateSession(ctx context.Context, p SessionParams) (*Session, error) {
	committee := p.Committee
	if committee == "" {
		committee = "Community Request"
	}
	description := p.Needs
	if description == "" {
		description = "Feast / Holy Day music support"
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		ClientReferenceID: stripe.String(p.RequestID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(string(stripe.CurrencyAUD)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(fmt.Sprintf("Jala Music Request — %s", committee)),
						Description: stripe.String(description),
					},
					UnitAmount: stripe.Int64(p.Total),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(p.Origin + "/?payment=success&session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(p.Origin + "/?payment=cancel"),
	}
	params.Context = ctx
	params.AddMetadata("requestId", p.RequestID)
	params.AddMetadata("baseAmount", strconv.FormatInt(p.BaseAmount, 10))
	params.AddMetadata("platformFee", strconv.FormatInt(p.PlatformFee, 10))

	sess, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe session create failed: %w", err)
	}

	return &Session{
		ID:        sess.ID,
		URL:       sess.URL,
		RequestID: p.RequestID,
	}, nil
}

// GetSession retrieves a session and reports its paid state along with
// the request id stored in its metadata.
func (c *StripeClient) GetSession(ctx context.Context, id string) (*Session, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	sess, err := c.api.CheckoutSessions.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("stripe session retrieve failed: %w", err)
	}

	return &Session{
		ID:        sess.ID,
		URL:       sess.URL,
		RequestID: sess.Metadata["requestId"],
		Paid:      sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
	}, nil
}
