package handler

import (
	"net/http"

	"github.com/JYOTHISHTM/FOXHUB/internal/domain/order"
)

type verifyRequest struct {
	GatewayOrderID string `json:"razorpayOrderId"`
	PaymentID      string `json:"razorpayPaymentId"`
	Signature      string `json:"razorpaySignature"`
}

func (h *Handler) verifyPayment(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.GatewayOrderID == "" || req.PaymentID == "" || req.Signature == "" {
		badRequest(w, "missing payment verification fields")
		return
	}

	o, err := h.verifier.Confirm(r.Context(), req.GatewayOrderID, req.PaymentID, req.Signature)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"orderId": o.ID,
		"status":  string(o.Status),
	})
}

type failureRequest struct {
	GatewayOrderID string `json:"razorpayOrderId"`
	UserID         string `json:"userId"`
}

func (h *Handler) paymentFailed(w http.ResponseWriter, r *http.Request) {
	var req failureRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.UserID == "" {
		req.UserID = userIDFrom(r)
	}
	if req.GatewayOrderID == "" || req.UserID == "" {
		badRequest(w, "missing gateway order or user id")
		return
	}

	o, err := h.reconciler.HandleFailure(r.Context(), req.GatewayOrderID, req.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"orderId": o.ID,
		"status":  string(order.StatusFailed),
	})
}

type abandonedRequest struct {
	GatewayOrderID string `json:"razorpayOrderId"`
}

func (h *Handler) paymentAbandoned(w http.ResponseWriter, r *http.Request) {
	var req abandonedRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.GatewayOrderID == "" {
		badRequest(w, "missing gateway order id")
		return
	}

	o, err := h.reconciler.HandleAbandoned(r.Context(), req.GatewayOrderID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"orderId": o.ID,
		"status":  string(order.StatusPending),
	})
}
