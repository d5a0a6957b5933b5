package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type PaymentMethod string

const (
	MethodRazorpay     PaymentMethod = "razorpay"
	MethodCard         PaymentMethod = "card"
	MethodBankTransfer PaymentMethod = "bank_transfer"
)

type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "pending"
	PaymentProcessing PaymentStatus = "processing"
	PaymentCompleted  PaymentStatus = "completed"
	PaymentFailed     PaymentStatus = "failed"
	PaymentRefunded   PaymentStatus = "refunded"
)

type Payment struct {
	ID             uint              `gorm:"primaryKey;autoIncrement" json:"id"`
	InvoiceID      uint              `gorm:"index;not null" json:"invoice_id"`
	PaymentMethod  PaymentMethod     `gorm:"size:20;not null" json:"payment_method"`
	TransactionID  string            `gorm:"size:100;uniqueIndex;not null" json:"transaction_id"`
	Amount         decimal.Decimal   `gorm:"type:numeric(12,2);not null" json:"amount"`
	Status         PaymentStatus     `gorm:"size:20;index;not null;default:'pending'" json:"status"`
	GatewayOrderID string            `gorm:"size:100;index" json:"gateway_order_id"`
	GatewayResp    datatypes.JSONMap `gorm:"column:gateway_response" json:"gateway_response"`
	PaymentDate    *time.Time        `json:"payment_date"`
	Notes          string            `gorm:"type:text" json:"notes"`
	CreatedAt      time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time         `gorm:"autoUpdateTime" json:"updated_at"`

	Invoice Invoice `gorm:"foreignKey:InvoiceID" json:"-"`
}
