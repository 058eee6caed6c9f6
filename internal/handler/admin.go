package handler

import (
	"net/http"
	"strconv"

	"github.com/JYOTHISHTM/FOXHUB/internal/domain/order"
)

func (h *Handler) adminListOrders(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}

	views, pages, err := h.views.ListOrders(r.Context(), page)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]orderViewDTO, 0, len(views))
	for _, ov := range views {
		out = append(out, toOrderViewDTO(ov))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"orders":     out,
		"page":       page,
		"totalPages": pages,
	})
}

type approveReturnRequest struct {
	OrderID   string `json:"orderId"`
	ProductID string `json:"productId"`
}

func (h *Handler) approveReturn(w http.ResponseWriter, r *http.Request) {
	var req approveReturnRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.OrderID == "" || req.ProductID == "" {
		badRequest(w, "missing order or product id")
		return
	}

	refund, err := h.lifecycle.ApproveReturn(r.Context(), req.OrderID, req.ProductID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": string(order.StatusReturned),
		"refund": refund.StringFixed(2),
	})
}

type itemStatusRequest struct {
	OrderID   string `json:"orderId"`
	ProductID string `json:"productId"`
	Status    string `json:"status"`
}

func (h *Handler) setItemStatus(w http.ResponseWriter, r *http.Request) {
	var req itemStatusRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	st, err := order.ParseStatus(req.Status)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if req.OrderID == "" || req.ProductID == "" {
		badRequest(w, "missing order or product id")
		return
	}

	if err := h.lifecycle.SetItemStatus(r.Context(), req.OrderID, req.ProductID, st); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(st)})
}

type orderStatusRequest struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

func (h *Handler) setOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req orderStatusRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	st, err := order.ParseStatus(req.Status)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if req.OrderID == "" {
		badRequest(w, "missing order id")
		return
	}

	if err := h.lifecycle.SetOrderStatus(r.Context(), req.OrderID, st); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(st)})
}
