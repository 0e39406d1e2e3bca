// Package payments keeps a request's status consistent with the lifecycle
// of its Stripe Checkout session, across checkout creation, explicit
// verification and asynchronous webhook events.
package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
	"go.uber.org/zap"

	"github.com/jala-community/jala-match/pkg/store"
)

// Checkout amounts are collected in AUD minor units, bounds inclusive.
const (
	minAmountCents = 500
	maxAmountCents = 30000
)

var (
	// ErrValidation marks malformed caller input.
	ErrValidation = errors.New("invalid payment input")
	// ErrSignatureInvalid marks a webhook whose signature cannot be
	// verified. A hard failure, distinct from an event that merely does
	// not apply.
	ErrSignatureInvalid = errors.New("webhook signature verification failed")
)

// SessionParams carries everything needed to create a checkout session.
type SessionParams struct {
	RequestID   string
	Committee   string
	Needs       string
	Origin      string
	Total       int64
	BaseAmount  int64
	PlatformFee int64
}

// Session is the reconciler's view of a checkout session.
type Session struct {
	ID        string
	URL       string
	RequestID string
	Paid      bool
}

// SessionClient abstracts the payment processor. Satisfied by
// StripeClient; tests substitute a fake.
type SessionClient interface {
	CreateSession(ctx context.Context, p SessionParams) (*Session, error)
	GetSession(ctx context.Context, id string) (*Session, error)
}

// Reconciler updates request status in response to payment events. All
// transitions are unconditional patches; verify and webhook racing for
// the same session converge on the same terminal state.
type Reconciler struct {
	store         store.Store
	sessions      SessionClient
	webhookSecret string
	logger        *zap.Logger
}

// NewReconciler wires a reconciler. sessions may be nil when Stripe is
// not configured; checkout and verify then fail with ErrConfigMissing.
func NewReconciler(st store.Store, sessions SessionClient, webhookSecret string, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		store:         st,
		sessions:      sessions,
		webhookSecret: webhookSecret,
		logger:        logger,
	}
}

// AmountBreakdown validates an AUD amount and returns base, platform fee
// (10% of base) and session total, all in minor units.
func AmountBreakdown(amountAud float64) (base, fee, total int64, err error) {
	base = int64(math.Round(amountAud * 100))
	if base < minAmountCents || base > maxAmountCents {
		return 0, 0, 0, fmt.Errorf("%w: amount must be between AUD 5 and AUD 300", ErrValidation)
	}
	fee = int64(math.Round(float64(base) * 0.1))
	return base, fee, base + fee, nil
}

// CheckoutInput is the caller-supplied payload for session creation.
type CheckoutInput struct {
	RequestID string
	Committee string
	Needs     string
	AmountAUD float64
	Origin    string
}

// Checkout creates a checkout session for a request and moves the request
// to Awaiting Payment. Returns the hosted session URL.
func (r *Reconciler) Checkout(ctx context.Context, in CheckoutInput) (string, error) {
	if in.RequestID == "" || in.AmountAUD == 0 {
		return "", fmt.Errorf("%w: requestId and amountAud are required", ErrValidation)
	}
	if r.sessions == nil {
		return "", store.ConfigMissing("set stripe.secretKey to enable payments")
	}

	base, fee, total, err := AmountBreakdown(in.AmountAUD)
	if err != nil {
		return "", err
	}

	sess, err := r.sessions.CreateSession(ctx, SessionParams{
		RequestID:   in.RequestID,
		Committee:   in.Committee,
		Needs:       in.Needs,
		Origin:      in.Origin,
		Total:       total,
		BaseAmount:  base,
		PlatformFee: fee,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}

	if _, err := r.store.Patch(ctx, store.KindRequests, in.RequestID, store.Record{
		"status": store.StatusAwaitingPayment,
	}); err != nil {
		return "", fmt.Errorf("failed to mark request awaiting payment: %w", err)
	}

	r.logger.Info("checkout session created",
		zap.String("requestId", in.RequestID),
		zap.Int64("baseAmount", base),
		zap.Int64("platformFee", fee),
	)

	return sess.URL, nil
}

// VerifyResult reports the outcome of an explicit verification call.
type VerifyResult struct {
	Paid      bool
	RequestID string
}

// Verify retrieves a session by id and, when it has been paid and links
// back to a request, marks that request Paid. Idempotent: repeating the
// call leaves the request Paid with no further effect.
func (r *Reconciler) Verify(ctx context.Context, sessionID string) (VerifyResult, error) {
	if sessionID == "" {
		return VerifyResult{}, fmt.Errorf("%w: sessionId required", ErrValidation)
	}
	if r.sessions == nil {
		return VerifyResult{}, store.ConfigMissing("set stripe.secretKey to enable payments")
	}

	sess, err := r.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return VerifyResult{}, fmt.Errorf("failed to retrieve session: %w", err)
	}

	if !sess.Paid || sess.RequestID == "" {
		return VerifyResult{Paid: false}, nil
	}

	if _, err := r.store.Patch(ctx, store.KindRequests, sess.RequestID, store.Record{
		"status": store.StatusPaid,
	}); err != nil {
		return VerifyResult{}, fmt.Errorf("failed to mark request paid: %w", err)
	}

	return VerifyResult{Paid: true, RequestID: sess.RequestID}, nil
}

// HandleWebhook verifies the Stripe signature over the raw body and
// applies the matching status transition. Unknown event types are
// acknowledged without effect.
func (r *Reconciler) HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error {
	if sigHeader == "" || r.webhookSecret == "" {
		return fmt.Errorf("%w: missing stripe signature or webhook secret", ErrSignatureInvalid)
	}

	event, err := webhook.ConstructEventWithOptions(payload, sigHeader, r.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	}

	switch event.Type {
	case "checkout.session.completed":
		sess, err := sessionFromEvent(event)
		if err != nil {
			return err
		}
		if sess.Metadata["requestId"] != "" && sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid {
			if _, err := r.store.Patch(ctx, store.KindRequests, sess.Metadata["requestId"], store.Record{
				"status": store.StatusPaid,
			}); err != nil {
				return fmt.Errorf("failed to mark request paid: %w", err)
			}
			r.logger.Info("webhook marked request paid", zap.String("requestId", sess.Metadata["requestId"]))
		}
	case "checkout.session.expired":
		sess, err := sessionFromEvent(event)
		if err != nil {
			return err
		}
		if sess.Metadata["requestId"] != "" {
			if _, err := r.store.Patch(ctx, store.KindRequests, sess.Metadata["requestId"], store.Record{
				"status": store.StatusPaymentExpired,
			}); err != nil {
				return fmt.Errorf("failed to mark request expired: %w", err)
			}
			r.logger.Info("webhook marked request expired", zap.String("requestId", sess.Metadata["requestId"]))
		}
	default:
		r.logger.Debug("ignoring webhook event", zap.String("type", string(event.Type)))
	}

	return nil
}

func sessionFromEvent(event stripe.Event) (*stripe.CheckoutSession, error) {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, fmt.Errorf("failed to decode session from event: %w", err)
	}
	return &sess, nil
}
