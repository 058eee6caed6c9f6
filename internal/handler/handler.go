// Package handler exposes the domain services over JSON HTTP endpoints.
// Handlers stay thin: decode, delegate, encode, map domain errors to status
// codes.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/JYOTHISHTM/FOXHUB/internal/domain/catalog"
	"github.com/JYOTHISHTM/FOXHUB/internal/domain/coupon"
	"github.com/JYOTHISHTM/FOXHUB/internal/domain/order"
	"github.com/JYOTHISHTM/FOXHUB/internal/domain/payment"
	"github.com/JYOTHISHTM/FOXHUB/internal/domain/pricing"
	"github.com/JYOTHISHTM/FOXHUB/internal/domain/report"
	"github.com/JYOTHISHTM/FOXHUB/internal/domain/user"
	"github.com/JYOTHISHTM/FOXHUB/internal/domain/wallet"
)

// Handler wires the domain services to the HTTP surface.
type Handler struct {
	products   catalog.Repository
	resolver   *pricing.Resolver
	checkout   *order.CheckoutService
	lifecycle  *order.LifecycleService
	views      *order.Views
	verifier   *payment.Verifier
	reconciler *payment.Reconciler
	reports    *report.Builder
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	products catalog.Repository,
	resolver *pricing.Resolver,
	checkout *order.CheckoutService,
	lifecycle *order.LifecycleService,
	views *order.Views,
	verifier *payment.Verifier,
	reconciler *payment.Reconciler,
	reports *report.Builder,
) *Handler {
	return &Handler{
		products:   products,
		resolver:   resolver,
		checkout:   checkout,
		lifecycle:  lifecycle,
		views:      views,
		verifier:   verifier,
		reconciler: reconciler,
		reports:    reports,
	}
}

// Register mounts all API routes on the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/products", h.listProducts)
	mux.HandleFunc("POST /api/checkout", h.placeOrder)
	mux.HandleFunc("GET /api/checkout/preview", h.previewCheckout)
	mux.HandleFunc("GET /api/orders", h.listUserOrders)
	mux.HandleFunc("POST /api/orders/return", h.requestReturn)
	mux.HandleFunc("POST /api/orders/cancel", h.cancelItem)
	mux.HandleFunc("POST /api/payment/verify", h.verifyPayment)
	mux.HandleFunc("POST /api/payment/failed", h.paymentFailed)
	mux.HandleFunc("POST /api/payment/abandoned", h.paymentAbandoned)
	mux.HandleFunc("GET /api/admin/orders", h.adminListOrders)
	mux.HandleFunc("POST /api/admin/orders/approve-return", h.approveReturn)
	mux.HandleFunc("POST /api/admin/orders/item-status", h.setItemStatus)
	mux.HandleFunc("POST /api/admin/orders/status", h.setOrderStatus)
	mux.HandleFunc("GET /api/admin/sales-report", h.salesReport)
	mux.HandleFunc("GET /api/admin/sales-report/pdf", h.salesReportPDF)
	mux.HandleFunc("GET /api/admin/sales-report/xlsx", h.salesReportXLSX)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto HTTP status codes. Unexpected errors
// are logged and reported as a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var invalid *order.InvalidTransitionError
	switch {
	case errors.Is(err, order.ErrMissingAddress),
		errors.Is(err, order.ErrInvalidPaymentMethod),
		errors.Is(err, order.ErrEmptyCart),
		errors.Is(err, coupon.ErrInvalidCoupon),
		errors.Is(err, report.ErrInvalidRange),
		errors.Is(err, payment.ErrSignatureMismatch):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, wallet.ErrInsufficientBalance):
		writeJSON(w, http.StatusPaymentRequired, errorResponse{Error: err.Error()})
	case errors.As(err, &invalid):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, order.ErrNotFound),
		errors.Is(err, order.ErrItemNotFound),
		errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, user.ErrNotFound),
		errors.Is(err, wallet.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	default:
		zctx.From(r.Context()).Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Wrap(err, "decode request body")
	}
	return nil
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

// userIDFrom extracts the explicit user identity from the X-User-ID header.
func userIDFrom(r *http.Request) string {
	return r.Header.Get("X-User-ID")
}
