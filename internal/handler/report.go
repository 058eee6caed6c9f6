package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/JYOTHISHTM/FOXHUB/internal/domain/report"
)

type reportRowDTO struct {
	OrderID       string `json:"orderId"`
	Date          string `json:"date"`
	Buyer         string `json:"buyer"`
	Products      string `json:"products"`
	Amount        string `json:"amount"`
	Discount      string `json:"discount"`
	FinalPrice    string `json:"finalPrice"`
	PaymentMethod string `json:"paymentMethod"`
	Status        string `json:"status"`
}

type reportSummaryDTO struct {
	Count    int    `json:"count"`
	Amount   string `json:"amount"`
	Discount string `json:"discount"`
	Profit   string `json:"profit"`
}

func toReportRowDTO(row report.Row) reportRowDTO {
	return reportRowDTO{
		OrderID:       row.OrderID,
		Date:          row.Date.Format("2006-01-02"),
		Buyer:         row.Buyer,
		Products:      row.Products,
		Amount:        row.Amount.StringFixed(2),
		Discount:      row.Discount.StringFixed(2),
		FinalPrice:    row.FinalPrice.StringFixed(2),
		PaymentMethod: string(row.PaymentMethod),
		Status:        string(row.Status),
	}
}

func reportFilterFrom(r *http.Request) (report.Filter, error) {
	q := r.URL.Query()
	f := report.Filter{Kind: report.RangeKind(q.Get("range"))}
	if f.Kind == report.RangeCustom {
		start, err := time.Parse("2006-01-02", q.Get("start"))
		if err != nil {
			return f, report.ErrInvalidRange
		}
		end, err := time.Parse("2006-01-02", q.Get("end"))
		if err != nil {
			return f, report.ErrInvalidRange
		}
		f.Start, f.End = start, end
	}
	return f, nil
}

func (h *Handler) salesReport(w http.ResponseWriter, r *http.Request) {
	f, err := reportFilterFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}

	rep, err := h.reports.Build(r.Context(), f, page)
	if err != nil {
		writeError(w, r, err)
		return
	}

	rows := make([]reportRowDTO, 0, len(rep.Rows))
	for _, row := range rep.Rows {
		rows = append(rows, toReportRowDTO(row))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"rows": rows,
		"summary": reportSummaryDTO{
			Count:    rep.Summary.Count,
			Amount:   rep.Summary.Amount.StringFixed(2),
			Discount: rep.Summary.Discount.StringFixed(2),
			Profit:   rep.Summary.Profit.StringFixed(2),
		},
		"page":       page,
		"totalPages": rep.Pages,
		"start":      rep.Start.Format("2006-01-02"),
		"end":        rep.End.Format("2006-01-02"),
	})
}

func (h *Handler) salesReportPDF(w http.ResponseWriter, r *http.Request) {
	f, err := reportFilterFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rep, err := h.reports.BuildAll(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="sales-report.pdf"`)
	if err := report.WritePDF(w, rep); err != nil {
		zctx.From(r.Context()).Error("Write report pdf", zap.Error(err))
	}
}

func (h *Handler) salesReportXLSX(w http.ResponseWriter, r *http.Request) {
	f, err := reportFilterFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rep, err := h.reports.BuildAll(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="sales-report.xlsx"`)
	if err := report.WriteXLSX(w, rep); err != nil {
		zctx.From(r.Context()).Error("Write report xlsx", zap.Error(err))
	}
}
