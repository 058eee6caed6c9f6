package report

import (
	"io"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-pdf/fpdf"
	"github.com/xuri/excelize/v2"
)

var exportColumns = []string{
	"Date", "Buyer", "Products", "Amount", "Discount", "Final Price", "Payment", "Status",
}

func (r *Row) cells() []string {
	return []string{
		r.Date.Format("2006-01-02"),
		r.Buyer,
		r.Products,
		r.Amount.StringFixed(2),
		r.Discount.StringFixed(2),
		r.FinalPrice.StringFixed(2),
		string(r.PaymentMethod),
		string(r.Status),
	}
}

func (s *Summary) cells() []string {
	return []string{
		"Total (" + strconv.Itoa(s.Count) + " orders)",
		"", "",
		s.Amount.StringFixed(2),
		s.Discount.StringFixed(2),
		s.Profit.StringFixed(2),
		"", "",
	}
}

// WritePDF renders the report as a landscape A4 table. Rows and summary are
// taken verbatim from the report so the export always matches the paginated
// view.
func WritePDF(w io.Writer, rep *Report) error {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("Sales Report", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, "Sales Report", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	period := rep.Start.Format("2006-01-02") + " to " + rep.End.Format("2006-01-02")
	pdf.CellFormat(0, 8, period, "", 1, "C", false, 0, "")
	pdf.Ln(2)

	widths := []float64{24, 34, 70, 28, 28, 28, 34, 28}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for i, col := range exportColumns {
		pdf.CellFormat(widths[i], 8, col, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for i := range rep.Rows {
		for j, cell := range rep.Rows[i].cells() {
			pdf.CellFormat(widths[j], 7, cell, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.SetFont("Helvetica", "B", 9)
	for j, cell := range rep.Summary.cells() {
		pdf.CellFormat(widths[j], 8, cell, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	if err := pdf.Output(w); err != nil {
		return errors.Wrap(err, "render pdf")
	}
	return nil
}

// WriteXLSX renders the report as a single-sheet workbook with the same rows
// and summary as the PDF export.
func WriteXLSX(w io.Writer, rep *Report) error {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()
	const sheet = "Sheet1"

	if err := setRow(f, sheet, 1, exportColumns); err != nil {
		return err
	}
	rowNum := 2
	for i := range rep.Rows {
		if err := setRow(f, sheet, rowNum, rep.Rows[i].cells()); err != nil {
			return err
		}
		rowNum++
	}
	if err := setRow(f, sheet, rowNum, rep.Summary.cells()); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return errors.Wrap(err, "write workbook")
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, cells []string) error {
	for i, cell := range cells {
		ref, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return errors.Wrap(err, "cell name")
		}
		if err := f.SetCellValue(sheet, ref, cell); err != nil {
			return errors.Wrap(err, "set cell")
		}
	}
	return nil
}
