package payment

import (
	"context"
	"encoding/json"
)

// Intent is the gateway-side result of creating a payment intent.
type Intent struct {
	ID           string
	ClientSecret string
	Raw          json.RawMessage
}

// Gateway abstracts the payment provider. Amounts are in minor units
// (cents for usd).
type Gateway interface {
	CreatePaymentIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (*Intent, error)
}
