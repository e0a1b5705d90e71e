package payment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHMACVerifier(t *testing.T) {
	v := NewHMACVerifier("s3cret")
	ctx := context.Background()

	sig := v.Sign("order_1", "pay_1")
	assert.NoError(t, v.Verify(ctx, "order_1", "pay_1", sig))

	assert.ErrorIs(t, v.Verify(ctx, "order_1", "pay_2", sig), ErrInvalidSignature)
	assert.ErrorIs(t, v.Verify(ctx, "order_1", "pay_1", "not-hex"), ErrInvalidSignature)
	assert.ErrorIs(t, v.Verify(ctx, "", "pay_1", sig), ErrInvalidSignature)
}

func TestHMACVerifier_EmptySecretRejectsEverything(t *testing.T) {
	v := NewHMACVerifier("")
	assert.ErrorIs(t, v.Verify(context.Background(), "o", "p", v.Sign("o", "p")), ErrInvalidSignature)
}
