package handler

import (
	"net/http"

	"github.com/shopspring/decimal"
)

type productDTO struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Price      string `json:"price"`
	FinalPrice string `json:"finalPrice"`
	Quantity   int    `json:"quantity"`
	Category   string `json:"category"`
}

// listProducts returns the catalog with standing offers applied, so clients
// can show both the base and the discounted price.
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]productDTO, 0, len(products))
	for _, p := range products {
		q, err := h.resolver.Resolve(r.Context(), p, decimal.Zero)
		if err != nil {
			writeError(w, r, err)
			return
		}
		out = append(out, productDTO{
			ID:         p.ID,
			Name:       p.Name,
			Price:      p.Price.StringFixed(2),
			FinalPrice: q.Final.StringFixed(2),
			Quantity:   p.Quantity,
			Category:   p.Category,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": out})
}
