package handler

import (
	"net/http"
	"time"

	"github.com/JYOTHISHTM/FOXHUB/internal/domain/order"
)

type orderLineDTO struct {
	ItemID       string `json:"itemId"`
	ProductID    string `json:"productId"`
	ProductName  string `json:"productName,omitempty"`
	Quantity     int    `json:"quantity"`
	Status       string `json:"status"`
	UnitPrice    string `json:"unitPrice"`
	LineTotal    string `json:"lineTotal"`
	Discount     string `json:"discount"`
	NetTotal     string `json:"netTotal"`
	CancelReason string `json:"cancelReason,omitempty"`
	ReturnReason string `json:"returnReason,omitempty"`
}

type orderViewDTO struct {
	OrderID       string         `json:"orderId"`
	BuyerName     string         `json:"buyerName,omitempty"`
	Status        string         `json:"status"`
	PaymentMethod string         `json:"paymentMethod"`
	CouponCode    string         `json:"couponCode,omitempty"`
	HasRequest    bool           `json:"hasRequest"`
	OrderDate     time.Time      `json:"orderDate"`
	Subtotal      string         `json:"subtotal"`
	Discount      string         `json:"discount"`
	Payable       string         `json:"payable"`
	Lines         []orderLineDTO `json:"items"`
}

func toOrderViewDTO(ov order.OrderView) orderViewDTO {
	dto := orderViewDTO{
		OrderID:       ov.ID,
		BuyerName:     ov.BuyerName,
		Status:        string(ov.Status),
		PaymentMethod: string(ov.PaymentMethod),
		CouponCode:    ov.CouponCode,
		HasRequest:    ov.HasRequest,
		OrderDate:     ov.OrderDate,
		Subtotal:      ov.Subtotal.StringFixed(2),
		Discount:      ov.TotalDiscount.StringFixed(2),
		Payable:       ov.Payable.StringFixed(2),
		Lines:         make([]orderLineDTO, 0, len(ov.Lines)),
	}
	for _, l := range ov.Lines {
		dto.Lines = append(dto.Lines, orderLineDTO{
			ItemID:       l.ID,
			ProductID:    l.ProductID,
			ProductName:  l.ProductName,
			Quantity:     l.Quantity,
			Status:       string(l.Status),
			UnitPrice:    l.UnitPrice.StringFixed(2),
			LineTotal:    l.LineTotal.StringFixed(2),
			Discount:     l.Discount.StringFixed(2),
			NetTotal:     l.NetTotal.StringFixed(2),
			CancelReason: l.CancelReason,
			ReturnReason: l.ReturnReason,
		})
	}
	return dto
}

func (h *Handler) listUserOrders(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r)
	if userID == "" {
		badRequest(w, "missing user id")
		return
	}

	views, err := h.views.ListUserOrders(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]orderViewDTO, 0, len(views))
	for _, ov := range views {
		out = append(out, toOrderViewDTO(ov))
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": out})
}

type returnRequest struct {
	OrderID string `json:"orderId"`
	ItemID  string `json:"itemId"`
	Reason  string `json:"reason"`
}

func (h *Handler) requestReturn(w http.ResponseWriter, r *http.Request) {
	var req returnRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.OrderID == "" || req.ItemID == "" {
		badRequest(w, "missing order or item id")
		return
	}

	if err := h.lifecycle.RequestReturn(r.Context(), req.OrderID, req.ItemID, req.Reason); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(order.StatusPendingReturn)})
}

type cancelRequest struct {
	OrderID   string `json:"orderId"`
	ItemID    string `json:"itemId"`
	ProductID string `json:"productId"`
	Reason    string `json:"reason"`
}

func (h *Handler) cancelItem(w http.ResponseWriter, r *http.Request) {
	var req cancelRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.OrderID == "" || req.ItemID == "" || req.ProductID == "" {
		badRequest(w, "missing order, item or product id")
		return
	}

	refund, err := h.lifecycle.CancelItem(r.Context(), req.OrderID, req.ItemID, req.ProductID, req.Reason)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": string(order.StatusCancelled),
		"refund": refund.StringFixed(2),
	})
}
