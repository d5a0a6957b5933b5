package services

import (
	"context"
	"errors"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"

	"github.com/vnkhanh/rental-server/utils"
)

var ErrGatewayNotConfigured = errors.New("payment gateway is not configured")

type GatewayOrder struct {
	ID       string
	Amount   int64 // minor units
	Currency string
}

// PaymentGateway is the external order/checkout provider.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string, notes map[string]string) (*GatewayOrder, error)
	VerifySignature(orderID, paymentID, signature string) bool
	KeyID() string
}

type RazorpayGateway struct {
	client    *razorpay.Client
	keyID     string
	keySecret string
}

func NewRazorpayGateway(keyID, keySecret string) *RazorpayGateway {
	g := &RazorpayGateway{keyID: keyID, keySecret: keySecret}
	if keyID != "" && keySecret != "" {
		g.client = razorpay.NewClient(keyID, keySecret)
	}
	return g
}

func (g *RazorpayGateway) KeyID() string { return g.keyID }

func (g *RazorpayGateway) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string, notes map[string]string) (*GatewayOrder, error) {
	if g.client == nil {
		return nil, ErrGatewayNotConfigured
	}

	data := map[string]interface{}{
		"amount":          amountMinor,
		"currency":        currency,
		"receipt":         receipt,
		"payment_capture": 1,
	}
	if len(notes) > 0 {
		data["notes"] = notes
	}

	type result struct {
		body map[string]interface{}
		err  error
	}
	// the SDK takes no context, so the call is raced against ctx
	ch := make(chan result, 1)
	go func() {
		body, err := g.client.Order.Create(data, nil)
		ch <- result{body, err}
	}()

	var res result
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("razorpay create order: %w", ctx.Err())
	case res = <-ch:
	}
	if res.err != nil {
		return nil, fmt.Errorf("razorpay create order: %w", res.err)
	}

	id, _ := res.body["id"].(string)
	if id == "" {
		return nil, errors.New("razorpay create order: response has no order id")
	}
	order := &GatewayOrder{ID: id, Amount: amountMinor, Currency: currency}
	if amt, ok := res.body["amount"].(float64); ok {
		order.Amount = int64(amt)
	}
	if cur, ok := res.body["currency"].(string); ok && cur != "" {
		order.Currency = cur
	}
	return order, nil
}

func (g *RazorpayGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return utils.VerifyRazorpaySignature(orderID, paymentID, signature, g.keySecret)
}
