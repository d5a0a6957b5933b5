package dtos

import (
	"time"

	"github.com/vnkhanh/rental-server/models"
	"github.com/vnkhanh/rental-server/utils"
)

type BookingDetails struct {
	RoomTitle string `json:"room_title"`
	Location  string `json:"location"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Months    int    `json:"months"`
}

type InvoiceResponse struct {
	ID             uint            `json:"id"`
	BookingID      uint            `json:"booking"`
	InvoiceNumber  string          `json:"invoice_number"`
	IssuedDate     string          `json:"issued_date"`
	DueDate        string          `json:"due_date"`
	Subtotal       string          `json:"subtotal"`
	TaxRate        string          `json:"tax_rate"`
	TaxAmount      string          `json:"tax_amount"`
	TotalAmount    string          `json:"total_amount"`
	Status         string          `json:"status"`
	PDFAvailable   bool            `json:"pdf_available"`
	BookingDetails *BookingDetails `json:"booking_details,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// NewInvoiceResponse fills booking_details when Booking.Room is loaded.
func NewInvoiceResponse(inv models.Invoice) InvoiceResponse {
	out := InvoiceResponse{
		ID:            inv.ID,
		BookingID:     inv.BookingID,
		InvoiceNumber: inv.InvoiceNumber,
		IssuedDate:    utils.FormatDate(inv.IssuedDate),
		DueDate:       utils.FormatDate(inv.DueDate),
		Subtotal:      inv.Subtotal.StringFixed(2),
		TaxRate:       inv.TaxRate.StringFixed(2),
		TaxAmount:     inv.TaxAmount.StringFixed(2),
		TotalAmount:   inv.TotalAmount.StringFixed(2),
		Status:        string(inv.Status),
		PDFAvailable:  inv.PDFPath != "",
		CreatedAt:     inv.CreatedAt,
	}
	if inv.Booking.ID != 0 {
		out.BookingDetails = &BookingDetails{
			RoomTitle: inv.Booking.Room.Title,
			Location:  inv.Booking.Room.Location,
			StartDate: utils.FormatDate(inv.Booking.StartDate),
			EndDate:   utils.FormatDate(inv.Booking.EndDate),
			Months:    inv.Booking.Months,
		}
	}
	return out
}

func NewInvoiceList(invoices []models.Invoice) []InvoiceResponse {
	out := make([]InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, NewInvoiceResponse(inv))
	}
	return out
}
