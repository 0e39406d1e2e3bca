package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jala-community/jala-match/pkg/store"
	"github.com/jala-community/jala-match/pkg/store/memstore"
)

type fakeSessions struct {
	created    []SessionParams
	session    *Session
	createErr  error
	getErr     error
	requestIDs []string
}

func (f *fakeSessions) CreateSession(_ context.Context, p SessionParams) (*Session, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, p)
	return &Session{ID: "cs_test_1", URL: "https://checkout.example/cs_test_1", RequestID: p.RequestID}, nil
}

func (f *fakeSessions) GetSession(_ context.Context, id string) (*Session, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	f.requestIDs = append(f.requestIDs, id)
	return f.session, nil
}

func newTestReconciler(t *testing.T, sessions SessionClient, secret string) (*Reconciler, *memstore.Store, string) {
	t.Helper()
	st := memstore.New()
	created, err := st.Append(t.Context(), store.KindRequests, store.Record{
		"committee": "Feast Committee",
		"needs":     "Two songs",
	})
	require.NoError(t, err)
	return NewReconciler(st, sessions, secret, zap.NewNop()), st, created["id"].(string)
}

func requestStatus(t *testing.T, st *memstore.Store, id string) string {
	t.Helper()
	records, err := st.List(t.Context(), store.KindRequests)
	require.NoError(t, err)
	for _, rec := range records {
		if rec["id"] == id {
			return rec["status"].(string)
		}
	}
	t.Fatalf("request %s not found", id)
	return ""
}

func TestAmountBreakdown(t *testing.T) {
	base, fee, total, err := AmountBreakdown(100.00)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), base)
	assert.Equal(t, int64(1000), fee)
	assert.Equal(t, int64(11000), total)
}

func TestAmountBreakdownBounds(t *testing.T) {
	// Inclusive boundaries
	_, _, _, err := AmountBreakdown(5.00)
	assert.NoError(t, err)
	_, _, _, err = AmountBreakdown(300.00)
	assert.NoError(t, err)

	_, _, _, err = AmountBreakdown(4.99)
	assert.ErrorIs(t, err, ErrValidation)
	_, _, _, err = AmountBreakdown(300.01)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCheckoutMovesRequestToAwaitingPayment(t *testing.T) {
	sessions := &fakeSessions{}
	rec, st, requestID := newTestReconciler(t, sessions, "whsec_test")

	url, err := rec.Checkout(t.Context(), CheckoutInput{
		RequestID: requestID,
		Committee: "Feast Committee",
		Needs:     "Two songs",
		AmountAUD: 50,
		Origin:    "https://jala.example.org",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.example/cs_test_1", url)
	assert.Equal(t, store.StatusAwaitingPayment, requestStatus(t, st, requestID))

	require.Len(t, sessions.created, 1)
	assert.Equal(t, int64(5000), sessions.created[0].BaseAmount)
	assert.Equal(t, int64(500), sessions.created[0].PlatformFee)
	assert.Equal(t, int64(5500), sessions.created[0].Total)
}

func TestCheckoutValidation(t *testing.T) {
	rec, st, requestID := newTestReconciler(t, &fakeSessions{}, "whsec_test")

	_, err := rec.Checkout(t.Context(), CheckoutInput{AmountAUD: 50})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = rec.Checkout(t.Context(), CheckoutInput{RequestID: requestID, AmountAUD: 3})
	assert.ErrorIs(t, err, ErrValidation)

	// No session was created, so the request stays Open
	assert.Equal(t, store.StatusOpen, requestStatus(t, st, requestID))
}

func TestCheckoutWithoutStripeConfigured(t *testing.T) {
	rec, _, requestID := newTestReconciler(t, nil, "")

	_, err := rec.Checkout(t.Context(), CheckoutInput{RequestID: requestID, AmountAUD: 50})
	assert.ErrorIs(t, err, store.ErrConfigMissing)
}

func TestVerifyMarksPaidIdempotently(t *testing.T) {
	sessions := &fakeSessions{}
	rec, st, requestID := newTestReconciler(t, sessions, "whsec_test")
	sessions.session = &Session{ID: "cs_test_1", RequestID: requestID, Paid: true}

	result, err := rec.Verify(t.Context(), "cs_test_1")
	require.NoError(t, err)
	assert.True(t, result.Paid)
	assert.Equal(t, requestID, result.RequestID)
	assert.Equal(t, store.StatusPaid, requestStatus(t, st, requestID))

	// Applying the same transition again is a no-op, not an error
	result, err = rec.Verify(t.Context(), "cs_test_1")
	require.NoError(t, err)
	assert.True(t, result.Paid)
	assert.Equal(t, store.StatusPaid, requestStatus(t, st, requestID))
}

func TestVerifyUnpaidSession(t *testing.T) {
	sessions := &fakeSessions{session: &Session{ID: "cs_test_1", RequestID: "req-1", Paid: false}}
	rec, st, requestID := newTestReconciler(t, sessions, "whsec_test")

	result, err := rec.Verify(t.Context(), "cs_test_1")
	require.NoError(t, err)
	assert.False(t, result.Paid)
	assert.Empty(t, result.RequestID)
	assert.Equal(t, store.StatusOpen, requestStatus(t, st, requestID))
}

func TestVerifyRequiresSessionID(t *testing.T) {
	rec, _, _ := newTestReconciler(t, &fakeSessions{}, "whsec_test")

	_, err := rec.Verify(t.Context(), "")
	assert.ErrorIs(t, err, ErrValidation)
}

// signPayload produces a Stripe-Signature header for the given body, the
// same scheme ConstructEvent verifies.
func signPayload(payload []byte, secret string) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func sessionEvent(eventType, requestID, paymentStatus string) []byte {
	return []byte(fmt.Sprintf(
		`{"id":"evt_1","object":"event","type":"%s","data":{"object":{"id":"cs_test_1","metadata":{"requestId":"%s"},"payment_status":"%s"}}}`,
		eventType, requestID, paymentStatus,
	))
}

func TestWebhookCompletedMarksPaid(t *testing.T) {
	const secret = "whsec_test"
	rec, st, requestID := newTestReconciler(t, &fakeSessions{}, secret)

	payload := sessionEvent("checkout.session.completed", requestID, "paid")
	err := rec.HandleWebhook(t.Context(), payload, signPayload(payload, secret))
	require.NoError(t, err)
	assert.Equal(t, store.StatusPaid, requestStatus(t, st, requestID))
}

func TestWebhookExpiredMarksExpired(t *testing.T) {
	const secret = "whsec_test"
	sessions := &fakeSessions{}
	rec, st, requestID := newTestReconciler(t, sessions, secret)

	payload := sessionEvent("checkout.session.expired", requestID, "unpaid")
	err := rec.HandleWebhook(t.Context(), payload, signPayload(payload, secret))
	require.NoError(t, err)
	assert.Equal(t, store.StatusPaymentExpired, requestStatus(t, st, requestID))

	// A later verify for the now-irrelevant session reports unpaid and
	// does not revert the expiry.
	sessions.session = &Session{ID: "cs_test_1", RequestID: requestID, Paid: false}
	result, err := rec.Verify(t.Context(), "cs_test_1")
	require.NoError(t, err)
	assert.False(t, result.Paid)
	assert.Equal(t, store.StatusPaymentExpired, requestStatus(t, st, requestID))
}

func TestWebhookInvalidSignature(t *testing.T) {
	rec, st, requestID := newTestReconciler(t, &fakeSessions{}, "whsec_test")

	payload := sessionEvent("checkout.session.completed", requestID, "paid")
	err := rec.HandleWebhook(t.Context(), payload, signPayload(payload, "whsec_wrong"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSignatureInvalid))
	assert.Equal(t, store.StatusOpen, requestStatus(t, st, requestID))
}

func TestWebhookMissingSignature(t *testing.T) {
	rec, _, _ := newTestReconciler(t, &fakeSessions{}, "whsec_test")

	err := rec.HandleWebhook(t.Context(), []byte(`{}`), "")
	assert.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestWebhookUnknownEventIgnored(t *testing.T) {
	const secret = "whsec_test"
	rec, st, requestID := newTestReconciler(t, &fakeSessions{}, secret)

	payload := []byte(`{"id":"evt_2","object":"event","type":"payment_intent.created","data":{"object":{}}}`)
	err := rec.HandleWebhook(t.Context(), payload, signPayload(payload, secret))
	require.NoError(t, err)
	assert.Equal(t, store.StatusOpen, requestStatus(t, st, requestID))
}
