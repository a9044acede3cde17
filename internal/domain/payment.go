package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// PaymentGateway identifies the payment provider
type PaymentGateway string

const (
	GatewayStripe PaymentGateway = "stripe"
	GatewayPayPal PaymentGateway = "paypal"
)

// PaymentIntentStatus tracks the lifecycle of a checkout attempt.
// Terminal states are set by gateway confirmation, not by this service.
type PaymentIntentStatus string

const (
	PaymentStatusPending   PaymentIntentStatus = "pending"
	PaymentStatusSucceeded PaymentIntentStatus = "succeeded"
	PaymentStatusFailed    PaymentIntentStatus = "failed"
)

// ShippingAddress is the destination captured at checkout initiation
type ShippingAddress struct {
	Street     string `json:"street" db:"street"`
	City       string `json:"city" db:"city"`
	State      string `json:"state" db:"state"`
	PostalCode string `json:"postal_code" db:"postal_code"`
	Country    string `json:"country" db:"country"`
}

// PaymentIntent is the durable record of a checkout attempt, used to
// reconcile later gateway confirmations. Immutable once created except
// for the status field.
type PaymentIntent struct {
	ID              uuid.UUID           `json:"id" db:"id"`
	UserID          uuid.UUID           `json:"user_id" db:"user_id"`
	Gateway         PaymentGateway      `json:"gateway" db:"gateway"`
	Status          PaymentIntentStatus `json:"status" db:"status"`
	Amount          float64             `json:"amount" db:"amount"`
	ShippingAddress ShippingAddress     `json:"shipping_address"`
	GatewayResponse json.RawMessage     `json:"gateway_response,omitempty" db:"gateway_response"`
	CreatedAt       time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at" db:"updated_at"`
}
