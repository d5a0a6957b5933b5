package dtos

import (
	"time"

	"github.com/vnkhanh/rental-server/models"
)

type InitiatePaymentRequest struct {
	InvoiceID     uint   `json:"invoice_id" binding:"required"`
	PaymentMethod string `json:"payment_method" binding:"omitempty,oneof=razorpay"`
}

// RazorpayCallbackRequest binds either a JSON body or the form post the
// checkout widget sends. The widget names the payment id
// razorpay_payment_id; API clients send payment_id.
type RazorpayCallbackRequest struct {
	PaymentID         string `json:"payment_id" form:"payment_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id" form:"razorpay_payment_id"`
	OrderID           string `json:"razorpay_order_id" form:"razorpay_order_id"`
	Signature         string `json:"razorpay_signature" form:"razorpay_signature"`
}

func (r RazorpayCallbackRequest) GatewayPaymentID() string {
	if r.PaymentID != "" {
		return r.PaymentID
	}
	return r.RazorpayPaymentID
}

type PaymentFailureRequest struct {
	OrderID string `json:"razorpay_order_id" form:"razorpay_order_id"`
	Reason  string `json:"reason" form:"reason" binding:"max=500"`
}

type PaymentResponse struct {
	ID             uint       `json:"id"`
	InvoiceID      uint       `json:"invoice"`
	InvoiceNumber  string     `json:"invoice_number,omitempty"`
	PaymentMethod  string     `json:"payment_method"`
	TransactionID  string     `json:"transaction_id"`
	Amount         string     `json:"amount"`
	Status         string     `json:"status"`
	GatewayOrderID string     `json:"gateway_order_id"`
	PaymentDate    *time.Time `json:"payment_date"`
	Notes          string     `json:"notes,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

func NewPaymentResponse(p models.Payment) PaymentResponse {
	return PaymentResponse{
		ID:             p.ID,
		InvoiceID:      p.InvoiceID,
		InvoiceNumber:  p.Invoice.InvoiceNumber,
		PaymentMethod:  string(p.PaymentMethod),
		TransactionID:  p.TransactionID,
		Amount:         p.Amount.StringFixed(2),
		Status:         string(p.Status),
		GatewayOrderID: p.GatewayOrderID,
		PaymentDate:    p.PaymentDate,
		Notes:          p.Notes,
		CreatedAt:      p.CreatedAt,
	}
}

func NewPaymentList(payments []models.Payment) []PaymentResponse {
	out := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, NewPaymentResponse(p))
	}
	return out
}
