package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// RazorpaySignature computes hex(HMAC-SHA256(orderID + "|" + paymentID, secret)),
// the value Razorpay Checkout returns as razorpay_signature.
func RazorpaySignature(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyRazorpaySignature compares in constant time. An empty secret never verifies.
func VerifyRazorpaySignature(orderID, paymentID, signature, secret string) bool {
	if secret == "" || signature == "" {
		return false
	}
	expected := RazorpaySignature(orderID, paymentID, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}
