// Package server wires the HTTP API: one handler per resource kind, the
// payment endpoints, and health/metrics.
package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/jala-community/jala-match/pkg/payments"
	"github.com/jala-community/jala-match/pkg/store"
)

// Server holds handler dependencies. The store and reconciler are
// constructed once at startup and injected; handlers never build their
// own backend clients.
type Server struct {
	store    store.Store
	payments *payments.Reconciler
	logger   *zap.Logger
}

// New creates an API server.
func New(st store.Store, rec *payments.Reconciler, logger *zap.Logger) *Server {
	return &Server{
		store:    st,
		payments: rec,
		logger:   logger,
	}
}

// Register attaches all routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	for _, kind := range store.Kinds {
		mux.HandleFunc("/api/"+string(kind), s.wrap(string(kind), s.resourceHandler(kind)))
	}

	mux.HandleFunc("/api/payments/checkout", s.wrap("payments_checkout", s.handleCheckout))
	mux.HandleFunc("/api/payments/verify", s.wrap("payments_verify", s.handleVerify))
	mux.HandleFunc("/api/payments/webhook", s.wrap("payments_webhook", s.handleWebhook))

	mux.HandleFunc("/healthz", s.wrap("healthz", s.handleHealth))
	mux.Handle("/metrics", promhttp.Handler())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
