package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vnkhanh/rental-server/models"
	"github.com/vnkhanh/rental-server/utils"
)

const gatewayTimeout = 30 * time.Second

type CheckoutOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	KeyID    string `json:"key_id"`
}

type CheckoutCustomer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// InitiatePaymentResult is everything the checkout widget needs.
type InitiatePaymentResult struct {
	PaymentID     uint             `json:"payment_id"`
	TransactionID string           `json:"transaction_id"`
	Order         CheckoutOrder    `json:"order"`
	Customer      CheckoutCustomer `json:"customer"`
	CallbackURL   string           `json:"callback_url"`
	Description   string           `json:"description"`
	InvoiceNumber string           `json:"invoice_number"`
}

type CallbackInput struct {
	PaymentID string
	OrderID   string
	Signature string
}

type ReconcileResult struct {
	Success          bool   `json:"success"`
	Message          string `json:"message"`
	PaymentID        uint   `json:"payment_id"`
	InvoiceID        uint   `json:"invoice_id"`
	InvoiceNumber    string `json:"invoice_number"`
	AlreadyProcessed bool   `json:"already_processed,omitempty"`
}

type PaymentService struct {
	db          *gorm.DB
	gateway     PaymentGateway
	notifier    Notifier
	mailer      Mailer
	currency    string
	callbackURL string
	now         func() time.Time

	// collapses concurrent initiate calls for the same invoice
	sf singleflight.Group
}

func NewPaymentService(db *gorm.DB, gateway PaymentGateway, notifier Notifier, mailer Mailer, currency, callbackURL string) *PaymentService {
	return &PaymentService{
		db:          db,
		gateway:     gateway,
		notifier:    notifier,
		mailer:      mailer,
		currency:    currency,
		callbackURL: callbackURL,
		now:         time.Now,
	}
}

func (s *PaymentService) InitiatePayment(ctx context.Context, tenant models.User, invoiceID uint) (*InitiatePaymentResult, error) {
	key := fmt.Sprintf("initiate_%d_%d", invoiceID, tenant.ID)
	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		return s.initiate(ctx, tenant, invoiceID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*InitiatePaymentResult), nil
}

func (s *PaymentService) initiate(ctx context.Context, tenant models.User, invoiceID uint) (*InitiatePaymentResult, error) {
	db := s.db.WithContext(ctx)

	var inv models.Invoice
	err := db.Preload("Booking.Room").
		Where("id = ? AND booking_id IN (?)", invoiceID,
			db.Model(&models.Booking{}).Select("id").Where("user_id = ?", tenant.ID)).
		First(&inv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("Invoice not found")
		}
		return nil, fmt.Errorf("load invoice %d: %w", invoiceID, err)
	}
	if inv.Status == models.InvoicePaid {
		return nil, utils.InvalidOperation(utils.ErrCodeAlreadyPaid, "Invoice is already paid")
	}

	var completed int64
	if err := db.Model(&models.Payment{}).
		Where("invoice_id = ? AND status = ?", inv.ID, models.PaymentCompleted).
		Count(&completed).Error; err != nil {
		return nil, fmt.Errorf("count completed payments: %w", err)
	}
	if completed > 0 {
		return nil, utils.InvalidOperation(utils.ErrCodeAlreadyPaid, "Invoice is already paid")
	}

	fields := logrus.Fields{"invoice_id": inv.ID, "invoice_number": inv.InvoiceNumber}

	gctx, cancel := context.WithTimeout(ctx, gatewayTimeout)
	defer cancel()
	order, err := s.gateway.CreateOrder(gctx, utils.ToMinorUnits(inv.TotalAmount), s.currency, inv.InvoiceNumber, map[string]string{
		"invoice_id": strconv.FormatUint(uint64(inv.ID), 10),
		"booking_id": strconv.FormatUint(uint64(inv.BookingID), 10),
	})
	if err != nil {
		utils.Logger.WithFields(fields).WithError(err).Error("gateway order creation failed")
		return nil, utils.DependencyFailure("Failed to create payment order", err)
	}

	payment := models.Payment{
		InvoiceID:      inv.ID,
		PaymentMethod:  models.MethodRazorpay,
		TransactionID:  fmt.Sprintf("TXN-%d-%s", s.now().Unix(), utils.RandomNumericString(4)),
		Amount:         inv.TotalAmount,
		Status:         models.PaymentProcessing,
		GatewayOrderID: order.ID,
		GatewayResp: datatypes.JSONMap{
			"order_id": order.ID,
			"amount":   order.Amount,
			"currency": order.Currency,
		},
	}
	if err := db.Omit(clause.Associations).Create(&payment).Error; err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}

	fields["payment_id"] = payment.ID
	fields["gateway_order_id"] = order.ID
	utils.Logger.WithFields(fields).Info("payment initiated")

	return &InitiatePaymentResult{
		PaymentID:     payment.ID,
		TransactionID: payment.TransactionID,
		Order: CheckoutOrder{
			ID:       order.ID,
			Amount:   order.Amount,
			Currency: order.Currency,
			KeyID:    s.gateway.KeyID(),
		},
		Customer: CheckoutCustomer{
			Name:  tenant.DisplayName(),
			Email: tenant.Email,
		},
		CallbackURL:   s.callbackURL,
		Description:   fmt.Sprintf("Payment for %s - %s", inv.InvoiceNumber, inv.Booking.Room.Title),
		InvoiceNumber: inv.InvoiceNumber,
	}, nil
}

// ReconcileCallback settles a payment after the gateway redirects back with
// a signed (order, payment) pair.
func (s *PaymentService) ReconcileCallback(ctx context.Context, in CallbackInput) (*ReconcileResult, error) {
	if in.PaymentID == "" || in.OrderID == "" || in.Signature == "" {
		return nil, utils.InvalidOperation(utils.ErrCodeMissingFields, "payment_id, razorpay_order_id and razorpay_signature are required")
	}
	fields := logrus.Fields{"gateway_order_id": in.OrderID, "gateway_payment_id": in.PaymentID}
	if !s.gateway.VerifySignature(in.OrderID, in.PaymentID, in.Signature) {
		utils.Logger.WithFields(fields).Warn("payment callback rejected: invalid signature")
		return nil, utils.InvalidOperation(utils.ErrCodeInvalidSignature, "Payment signature verification failed")
	}

	db := s.db.WithContext(ctx)
	var payment models.Payment
	err := db.Where("gateway_order_id = ? AND status = ?", in.OrderID, models.PaymentProcessing).
		First(&payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.alreadyProcessed(ctx, in)
	}
	if err != nil {
		return nil, fmt.Errorf("load payment for order %s: %w", in.OrderID, err)
	}

	paidAt := s.now().UTC()
	resp := datatypes.JSONMap{}
	for k, v := range payment.GatewayResp {
		resp[k] = v
	}
	resp["razorpay_payment_id"] = in.PaymentID
	resp["razorpay_order_id"] = in.OrderID
	resp["razorpay_signature"] = in.Signature

	err = db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Payment{}).
			Where("id = ? AND status = ?", payment.ID, models.PaymentProcessing).
			Updates(map[string]interface{}{
				"status":           models.PaymentCompleted,
				"payment_date":     paidAt,
				"gateway_response": resp,
			})
		if res.Error != nil {
			return fmt.Errorf("complete payment %d: %w", payment.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			return utils.InvalidOperation(utils.ErrCodeWrongStatus, "Payment is no longer processing")
		}

		res = tx.Model(&models.Invoice{}).
			Where("id = ? AND status <> ?", payment.InvoiceID, models.InvoicePaid).
			Update("status", models.InvoicePaid)
		if res.Error != nil {
			return fmt.Errorf("mark invoice %d paid: %w", payment.InvoiceID, res.Error)
		}
		if res.RowsAffected == 0 {
			return utils.InvalidOperation(utils.ErrCodeAlreadyPaid, "Invoice is already paid")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var inv models.Invoice
	if err := db.Preload("Booking.Room").Preload("Booking.User").First(&inv, payment.InvoiceID).Error; err != nil {
		return nil, fmt.Errorf("reload invoice %d: %w", payment.InvoiceID, err)
	}

	fields["payment_id"] = payment.ID
	fields["invoice_id"] = inv.ID
	utils.Logger.WithFields(fields).Info("payment completed")

	tenant := inv.Booking.User
	if tenant.Email != "" {
		bestEffort("email payment confirmation", fields, func() error {
			return s.mailer.Send(ctx, tenant.Email,
				"Payment received for "+inv.InvoiceNumber,
				fmt.Sprintf("Hello %s,\n\nWe received your payment of %s %s for invoice %s (%s).\nTransaction: %s\n",
					tenant.DisplayName(), s.currency, payment.Amount.StringFixed(2), inv.InvoiceNumber,
					inv.Booking.Room.Title, payment.TransactionID))
		})
	}
	bestEffort("notify tenant of payment", fields, func() error {
		return s.notifier.Notify(ctx, tenant.ID, "Payment successful",
			fmt.Sprintf("Your payment for invoice %s was received.", inv.InvoiceNumber),
			"/payments")
	})

	return &ReconcileResult{
		Success:       true,
		Message:       "Payment completed successfully",
		PaymentID:     payment.ID,
		InvoiceID:     inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
	}, nil
}

// alreadyProcessed makes a repeated callback for a settled payment a no-op.
func (s *PaymentService) alreadyProcessed(ctx context.Context, in CallbackInput) (*ReconcileResult, error) {
	var payment models.Payment
	err := s.db.WithContext(ctx).Preload("Invoice").
		Where("gateway_order_id = ? AND status = ?", in.OrderID, models.PaymentCompleted).
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("Payment not found")
		}
		return nil, fmt.Errorf("load completed payment for order %s: %w", in.OrderID, err)
	}
	if id, _ := payment.GatewayResp["razorpay_payment_id"].(string); id != in.PaymentID {
		return nil, utils.NotFound("Payment not found")
	}
	return &ReconcileResult{
		Success:          true,
		Message:          "Payment already processed",
		PaymentID:        payment.ID,
		InvoiceID:        payment.InvoiceID,
		InvoiceNumber:    payment.Invoice.InvoiceNumber,
		AlreadyProcessed: true,
	}, nil
}

// MarkFailed records a checkout failure reported by the tenant who started
// the payment. Orders belonging to other tenants are reported as not found.
func (s *PaymentService) MarkFailed(ctx context.Context, tenantID uint, orderID, reason string) (*models.Payment, error) {
	if orderID == "" {
		return nil, utils.InvalidOperation(utils.ErrCodeMissingFields, "razorpay_order_id is required")
	}
	if reason == "" {
		reason = "Payment failed at gateway"
	}

	db := s.db.WithContext(ctx)
	var payment models.Payment
	owned := db.Model(&models.Invoice{}).Select("invoices.id").
		Joins("JOIN bookings ON bookings.id = invoices.booking_id").
		Where("bookings.user_id = ?", tenantID)
	if err := db.Where("gateway_order_id = ? AND status = ? AND invoice_id IN (?)", orderID, models.PaymentProcessing, owned).
		First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("Payment not found")
		}
		return nil, fmt.Errorf("load payment for order %s: %w", orderID, err)
	}

	res := db.Model(&models.Payment{}).
		Where("id = ? AND status = ?", payment.ID, models.PaymentProcessing).
		Updates(map[string]interface{}{"status": models.PaymentFailed, "notes": reason})
	if res.Error != nil {
		return nil, fmt.Errorf("mark payment %d failed: %w", payment.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, utils.NotFound("Payment not found")
	}
	payment.Status = models.PaymentFailed
	payment.Notes = reason

	utils.Logger.WithFields(logrus.Fields{
		"payment_id":       payment.ID,
		"tenant_id":        tenantID,
		"gateway_order_id": orderID,
	}).Warn("payment failed: " + reason)
	return &payment, nil
}

func (s *PaymentService) ListTenantPayments(ctx context.Context, tenantID uint) ([]models.Payment, error) {
	db := s.db.WithContext(ctx)
	bookings := db.Model(&models.Booking{}).Select("id").Where("user_id = ?", tenantID)
	invoices := db.Model(&models.Invoice{}).Select("id").Where("booking_id IN (?)", bookings)

	var out []models.Payment
	if err := db.Preload("Invoice").
		Where("invoice_id IN (?)", invoices).
		Order("created_at DESC, id DESC").
		Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return out, nil
}
