package server

import (
	"io"
	"net/http"

	"github.com/jala-community/jala-match/pkg/payments"
)

type checkoutRequest struct {
	RequestID string  `json:"requestId"`
	Committee string  `json:"committee"`
	Needs     string  `json:"needs"`
	AmountAUD float64 `json:"amountAud"`
}

type checkoutResponse struct {
	URL string `json:"url"`
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var body checkoutRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	url, err := s.payments.Checkout(r.Context(), payments.CheckoutInput{
		RequestID: body.RequestID,
		Committee: body.Committee,
		Needs:     body.Needs,
		AmountAUD: body.AmountAUD,
		Origin:    requestOrigin(r),
	})
	if err != nil {
		s.fail(w, err)
		return
	}

	writeJSON(w, http.StatusOK, checkoutResponse{URL: url})
}

type verifyRequest struct {
	SessionID string `json:"sessionId"`
}

type verifyResponse struct {
	OK        bool   `json:"ok"`
	Paid      bool   `json:"paid"`
	RequestID string `json:"requestId,omitempty"`
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var body verifyRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	result, err := s.payments.Verify(r.Context(), body.SessionID)
	if err != nil {
		s.fail(w, err)
		return
	}

	writeJSON(w, http.StatusOK, verifyResponse{OK: true, Paid: result.Paid, RequestID: result.RequestID})
}

// handleWebhook reads the raw body before any JSON decoding; the Stripe
// signature covers the exact bytes on the wire.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}

	if err := s.payments.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature")); err != nil {
		s.fail(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}

// requestOrigin reconstructs the caller-facing origin, preferring
// forwarded headers set by the fronting proxy.
func requestOrigin(r *http.Request) string {
	proto := r.Header.Get("X-Forwarded-Proto")
	if proto == "" {
		proto = "https"
	}
	host := r.Header.Get("X-Forwarded-Host")
	if host == "" {
		host = r.Host
	}
	return proto + "://" + host
}
