package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type InvoiceStatus string

const (
	InvoiceDraft   InvoiceStatus = "draft"
	InvoiceSent    InvoiceStatus = "sent"
	InvoicePaid    InvoiceStatus = "paid"
	InvoiceOverdue InvoiceStatus = "overdue"
)

// TaxRate is the fixed percentage applied to every invoice.
var TaxRate = decimal.NewFromInt(18)

type Invoice struct {
	ID            uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	BookingID     uint            `gorm:"uniqueIndex;not null" json:"booking_id"`
	InvoiceNumber string          `gorm:"size:50;uniqueIndex;not null" json:"invoice_number"`
	IssuedDate    time.Time       `gorm:"type:date;not null" json:"issued_date"`
	DueDate       time.Time       `gorm:"type:date;not null" json:"due_date"`
	Subtotal      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	TaxRate       decimal.Decimal `gorm:"type:numeric(5,2);not null" json:"tax_rate"`
	TaxAmount     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"tax_amount"`
	TotalAmount   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_amount"`
	Status        InvoiceStatus   `gorm:"size:20;index;not null;default:'draft'" json:"status"`
	PDFPath       string          `gorm:"column:pdf_path;size:500" json:"-"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	Booking  Booking   `gorm:"foreignKey:BookingID" json:"-"`
	Payments []Payment `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"-"`
}
