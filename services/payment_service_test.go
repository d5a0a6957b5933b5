package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnkhanh/rental-server/models"
	"github.com/vnkhanh/rental-server/utils"
)

type paymentFixture struct {
	*invoiceFixture
	payments *PaymentService
	gateway  *fakeGateway
	invoice  *models.Invoice
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	inf := newInvoiceFixture(t)
	res, err := inf.invoices.CreateInvoice(inf.ctx, inf.tenant, inf.booking.ID)
	require.NoError(t, err)

	f := &paymentFixture{invoiceFixture: inf, gateway: &fakeGateway{}, invoice: res.Invoice}
	f.payments = NewPaymentService(inf.db, f.gateway, inf.notes, inf.mailer, "INR", "http://localhost/callback")
	return f
}

func (f *paymentFixture) callback(orderID, paymentID string) CallbackInput {
	return CallbackInput{
		OrderID:   orderID,
		PaymentID: paymentID,
		Signature: utils.RazorpaySignature(orderID, paymentID, testKeySecret),
	}
}

func (f *paymentFixture) countPayments(t *testing.T) int64 {
	var n int64
	require.NoError(t, f.db.Model(&models.Payment{}).Count(&n).Error)
	return n
}

func TestInitiatePayment(t *testing.T) {
	f := newPaymentFixture(t)

	res, err := f.payments.InitiatePayment(f.ctx, f.tenant, f.invoice.ID)
	require.NoError(t, err)

	assert.EqualValues(t, 283200, res.Order.Amount)
	assert.Equal(t, "INR", res.Order.Currency)
	assert.Equal(t, "rzp_test_key", res.Order.KeyID)
	assert.Equal(t, f.invoice.InvoiceNumber, res.InvoiceNumber)
	assert.Equal(t, f.tenant.Email, res.Customer.Email)
	assert.Regexp(t, `^TXN-\d+-\d{4}$`, res.TransactionID)

	var p models.Payment
	require.NoError(t, f.db.First(&p, res.PaymentID).Error)
	assert.Equal(t, models.PaymentProcessing, p.Status)
	assert.Equal(t, models.MethodRazorpay, p.PaymentMethod)
	assert.Equal(t, res.Order.ID, p.GatewayOrderID)
	assert.Equal(t, "2832.00", p.Amount.StringFixed(2))
	assert.Equal(t, res.Order.ID, p.GatewayResp["order_id"])
	assert.Nil(t, p.PaymentDate)
}

func TestInitiatePaymentOnPaidInvoice(t *testing.T) {
	f := newPaymentFixture(t)
	require.NoError(t, f.db.Model(&models.Invoice{}).Where("id = ?", f.invoice.ID).
		Update("status", models.InvoicePaid).Error)

	_, err := f.payments.InitiatePayment(f.ctx, f.tenant, f.invoice.ID)
	require.Error(t, err)
	assert.Equal(t, utils.KindInvalidOperation, utils.KindOf(err))
	assert.Zero(t, f.countPayments(t))
	assert.Zero(t, f.gateway.callCount())
}

func TestInitiatePaymentNotOwned(t *testing.T) {
	f := newPaymentFixture(t)

	_, err := f.payments.InitiatePayment(f.ctx, f.owner, f.invoice.ID)
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))
	assert.Zero(t, f.countPayments(t))
}

func TestInitiatePaymentGatewayFailure(t *testing.T) {
	f := newPaymentFixture(t)
	f.gateway.err = errors.New("gateway down")

	_, err := f.payments.InitiatePayment(f.ctx, f.tenant, f.invoice.ID)
	require.Error(t, err)
	assert.Equal(t, utils.KindDependencyFailure, utils.KindOf(err))
	assert.Zero(t, f.countPayments(t))
}

func TestInitiatePaymentDeduplicatesConcurrentCalls(t *testing.T) {
	f := newPaymentFixture(t)
	f.gateway.delay = 100 * time.Millisecond

	var wg sync.WaitGroup
	results := make([]*InitiatePaymentResult, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := f.payments.InitiatePayment(context.Background(), f.tenant, f.invoice.ID)
			assert.NoError(t, err)
			results[i] = res
		}(i)
	}
	wg.Wait()

	assert.Less(t, f.gateway.callCount(), 5)
	assert.EqualValues(t, f.gateway.callCount(), f.countPayments(t))
}

func TestReconcileCallback(t *testing.T) {
	f := newPaymentFixture(t)
	started, err := f.payments.InitiatePayment(f.ctx, f.tenant, f.invoice.ID)
	require.NoError(t, err)

	res, err := f.payments.ReconcileCallback(f.ctx, f.callback(started.Order.ID, "pay_123"))
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.False(t, res.AlreadyProcessed)
	assert.Equal(t, started.PaymentID, res.PaymentID)

	var p models.Payment
	require.NoError(t, f.db.First(&p, started.PaymentID).Error)
	assert.Equal(t, models.PaymentCompleted, p.Status)
	require.NotNil(t, p.PaymentDate)
	assert.Equal(t, "pay_123", p.GatewayResp["razorpay_payment_id"])
	assert.Equal(t, started.Order.ID, p.GatewayResp["order_id"])

	var inv models.Invoice
	require.NoError(t, f.db.First(&inv, f.invoice.ID).Error)
	assert.Equal(t, models.InvoicePaid, inv.Status)

	var confirmed bool
	for _, m := range f.mailer.sent {
		if m.Subject == "Payment received for "+inv.InvoiceNumber {
			confirmed = true
		}
	}
	assert.True(t, confirmed)

	// the same callback again is a no-op
	again, err := f.payments.ReconcileCallback(f.ctx, f.callback(started.Order.ID, "pay_123"))
	require.NoError(t, err)
	assert.True(t, again.AlreadyProcessed)

	_, err = f.payments.ReconcileCallback(f.ctx, f.callback(started.Order.ID, "pay_other"))
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))

	_, err = f.payments.InitiatePayment(f.ctx, f.tenant, f.invoice.ID)
	assert.Equal(t, utils.KindInvalidOperation, utils.KindOf(err))
}

func TestReconcileCallbackInvalidSignature(t *testing.T) {
	f := newPaymentFixture(t)
	started, err := f.payments.InitiatePayment(f.ctx, f.tenant, f.invoice.ID)
	require.NoError(t, err)

	in := f.callback(started.Order.ID, "pay_123")
	in.Signature = "deadbeef"
	_, err = f.payments.ReconcileCallback(f.ctx, in)
	require.Error(t, err)
	assert.Equal(t, utils.KindInvalidOperation, utils.KindOf(err))
	assert.Equal(t, utils.ErrCodeInvalidSignature, utils.CodeOf(err))

	var p models.Payment
	require.NoError(t, f.db.First(&p, started.PaymentID).Error)
	assert.Equal(t, models.PaymentProcessing, p.Status)
	var inv models.Invoice
	require.NoError(t, f.db.First(&inv, f.invoice.ID).Error)
	assert.Equal(t, models.InvoiceSent, inv.Status)
}

func TestReconcileCallbackUnknownOrder(t *testing.T) {
	f := newPaymentFixture(t)
	started, err := f.payments.InitiatePayment(f.ctx, f.tenant, f.invoice.ID)
	require.NoError(t, err)

	_, err = f.payments.ReconcileCallback(f.ctx, f.callback("order_unknown", "pay_1"))
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))

	var p models.Payment
	require.NoError(t, f.db.First(&p, started.PaymentID).Error)
	assert.Equal(t, models.PaymentProcessing, p.Status)
}

func TestReconcileCallbackMissingFields(t *testing.T) {
	f := newPaymentFixture(t)

	_, err := f.payments.ReconcileCallback(f.ctx, CallbackInput{OrderID: "order_1"})
	assert.Equal(t, utils.KindInvalidOperation, utils.KindOf(err))
	assert.Equal(t, utils.ErrCodeMissingFields, utils.CodeOf(err))
}

func TestReconcileCallbackOnPaidInvoiceRollsBack(t *testing.T) {
	f := newPaymentFixture(t)
	first, err := f.payments.InitiatePayment(f.ctx, f.tenant, f.invoice.ID)
	require.NoError(t, err)
	second, err := f.payments.InitiatePayment(f.ctx, f.tenant, f.invoice.ID)
	require.NoError(t, err)
	require.NotEqual(t, first.Order.ID, second.Order.ID)

	_, err = f.payments.ReconcileCallback(f.ctx, f.callback(first.Order.ID, "pay_1"))
	require.NoError(t, err)

	_, err = f.payments.ReconcileCallback(f.ctx, f.callback(second.Order.ID, "pay_2"))
	require.Error(t, err)
	assert.Equal(t, utils.KindInvalidOperation, utils.KindOf(err))

	var p models.Payment
	require.NoError(t, f.db.First(&p, second.PaymentID).Error)
	assert.Equal(t, models.PaymentProcessing, p.Status)

	var completed int64
	require.NoError(t, f.db.Model(&models.Payment{}).
		Where("invoice_id = ? AND status = ?", f.invoice.ID, models.PaymentCompleted).
		Count(&completed).Error)
	assert.EqualValues(t, 1, completed)
}

func TestMarkFailed(t *testing.T) {
	f := newPaymentFixture(t)
	started, err := f.payments.InitiatePayment(f.ctx, f.tenant, f.invoice.ID)
	require.NoError(t, err)

	_, err = f.payments.MarkFailed(f.ctx, f.owner.ID, started.Order.ID, "not my order")
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))

	p, err := f.payments.MarkFailed(f.ctx, f.tenant.ID, started.Order.ID, "card declined")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentFailed, p.Status)

	var stored models.Payment
	require.NoError(t, f.db.First(&stored, started.PaymentID).Error)
	assert.Equal(t, models.PaymentFailed, stored.Status)
	assert.Equal(t, "card declined", stored.Notes)

	_, err = f.payments.MarkFailed(f.ctx, f.tenant.ID, started.Order.ID, "again")
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))

	_, err = f.payments.ReconcileCallback(f.ctx, f.callback(started.Order.ID, "pay_late"))
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))
}

func TestListTenantPayments(t *testing.T) {
	f := newPaymentFixture(t)
	_, err := f.payments.InitiatePayment(f.ctx, f.tenant, f.invoice.ID)
	require.NoError(t, err)

	list, err := f.payments.ListTenantPayments(f.ctx, f.tenant.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, f.invoice.InvoiceNumber, list[0].Invoice.InvoiceNumber)

	list, err = f.payments.ListTenantPayments(f.ctx, f.owner.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}
