package handler

import (
	"net/http"

	"github.com/JYOTHISHTM/FOXHUB/internal/domain/order"
)

type placeOrderRequest struct {
	UserID        string        `json:"userId"`
	Address       order.Address `json:"address"`
	PaymentMethod string        `json:"paymentMethod"`
	CouponCode    string        `json:"couponCode,omitempty"`
}

type placeOrderResponse struct {
	OrderID        string `json:"orderId"`
	Status         string `json:"status"`
	Total          string `json:"total"`
	Payable        string `json:"payable"`
	GatewayOrderID string `json:"gatewayOrderId,omitempty"`
	CartCleared    bool   `json:"cartCleared"`
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.UserID == "" {
		req.UserID = userIDFrom(r)
	}
	if req.UserID == "" {
		badRequest(w, "missing user id")
		return
	}

	res, err := h.checkout.PlaceOrder(r.Context(), order.PlaceOrderRequest{
		UserID:        req.UserID,
		Address:       req.Address,
		PaymentMethod: order.PaymentMethod(req.PaymentMethod),
		CouponCode:    req.CouponCode,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, placeOrderResponse{
		OrderID:        res.Order.ID,
		Status:         string(res.Order.Status),
		Total:          res.Total.StringFixed(2),
		Payable:        res.Payable.StringFixed(2),
		GatewayOrderID: res.Order.GatewayOrderID,
		CartCleared:    res.CartCleared,
	})
}

type previewLineDTO struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unitPrice"`
	LineTotal string `json:"lineTotal"`
}

type previewResponse struct {
	Lines []previewLineDTO `json:"lines"`
	Total string           `json:"total"`
}

func (h *Handler) previewCheckout(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r)
	if userID == "" {
		badRequest(w, "missing user id")
		return
	}

	lines, total, err := h.checkout.Preview(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := previewResponse{
		Lines: make([]previewLineDTO, 0, len(lines)),
		Total: total.StringFixed(2),
	}
	for _, l := range lines {
		resp.Lines = append(resp.Lines, previewLineDTO{
			ProductID: l.ProductID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice.StringFixed(2),
			LineTotal: l.LineTotal.StringFixed(2),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
