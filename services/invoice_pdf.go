package services

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"github.com/vnkhanh/rental-server/models"
	"github.com/vnkhanh/rental-server/utils"
)

// InvoiceRenderer turns an invoice with its booking and room into PDF bytes.
type InvoiceRenderer interface {
	Render(inv *models.Invoice, booking *models.Booking, room *models.Room, tenant *models.User) ([]byte, error)
}

type FPDFRenderer struct {
	Currency string
}

func (r FPDFRenderer) money(v decimal.Decimal) string {
	return r.Currency + " " + v.StringFixed(2)
}

func (r FPDFRenderer) Render(inv *models.Invoice, booking *models.Booking, room *models.Room, tenant *models.User) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Invoice "+inv.InvoiceNumber, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 12, "INVOICE", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Room Rental Platform", "", 1, "C", false, 0, "")
	pdf.Ln(6)

	section := func(title string) {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.SetFillColor(230, 236, 245)
		pdf.CellFormat(0, 8, title, "", 1, "L", true, 0, "")
		pdf.SetFont("Helvetica", "", 10)
	}
	row := func(label, value string) {
		pdf.CellFormat(60, 7, label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, value, "1", 1, "L", false, 0, "")
	}

	section("Invoice details")
	row("Invoice number", inv.InvoiceNumber)
	row("Issued", utils.FormatDate(inv.IssuedDate))
	row("Due", utils.FormatDate(inv.DueDate))
	row("Status", string(inv.Status))
	if tenant != nil {
		row("Billed to", tenant.DisplayName())
	}
	pdf.Ln(4)

	section("Booking")
	row("Room", room.Title)
	row("Location", room.Location)
	row("Period", utils.FormatDate(booking.StartDate)+" to "+utils.FormatDate(booking.EndDate))
	row("Duration", fmt.Sprintf("%d month(s)", booking.Months))
	pdf.Ln(4)

	section("Billing")
	row(fmt.Sprintf("Rent (%s x %d)", room.Price.StringFixed(2), booking.Months), r.money(inv.Subtotal))
	row(fmt.Sprintf("Tax (%s%%)", inv.TaxRate.String()), r.money(inv.TaxAmount))
	pdf.SetFont("Helvetica", "B", 10)
	row("Total", r.money(inv.TotalAmount))

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.MultiCell(0, 5, "Please pay before the due date. This invoice was generated electronically.", "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render invoice pdf: %w", err)
	}
	return buf.Bytes(), nil
}
