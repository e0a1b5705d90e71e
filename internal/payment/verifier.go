// Package payment checks payment confirmations returned by the gateway
// checkout before a SaaS subscription is activated.
package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

var ErrInvalidSignature = errors.New("payment signature verification failed")

// Verifier confirms that a (order, payment) pair was signed by the gateway.
type Verifier interface {
	Verify(ctx context.Context, orderID, paymentID, signature string) error
}

// HMACVerifier validates hex HMAC-SHA256 signatures of "orderID|paymentID".
type HMACVerifier struct {
	secret []byte
}

func NewHMACVerifier(secret string) *HMACVerifier {
	return &HMACVerifier{secret: []byte(secret)}
}

func (v *HMACVerifier) Verify(_ context.Context, orderID, paymentID, signature string) error {
	if len(v.secret) == 0 || orderID == "" || paymentID == "" || signature == "" {
		return ErrInvalidSignature
	}
	got, err := hex.DecodeString(signature)
	if err != nil {
		return ErrInvalidSignature
	}
	if !hmac.Equal(got, v.sign(orderID, paymentID)) {
		return ErrInvalidSignature
	}
	return nil
}

// Sign returns the hex signature for an order and payment. Used by tests and
// local tooling that simulates gateway callbacks.
func (v *HMACVerifier) Sign(orderID, paymentID string) string {
	return hex.EncodeToString(v.sign(orderID, paymentID))
}

func (v *HMACVerifier) sign(orderID, paymentID string) []byte {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(orderID + "|" + paymentID))
	return mac.Sum(nil)
}
