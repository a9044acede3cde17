package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrEmptyCart                = errors.New("cart is empty")
	ErrUnsupportedPaymentMethod = errors.New("payment method not supported")
	ErrGatewayFailure           = errors.New("payment gateway request failed")
)

// InsufficientStockError reports a requested quantity exceeding the
// variant's available stock, naming the offending product and variant.
type InsufficientStockError struct {
	ProductID    uuid.UUID
	VariantName  string
	VariantValue string
	Requested    int
	Available    int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf(
		"product %s with variant %s=%s is out of stock: requested %d, available %d",
		e.ProductID, e.VariantName, e.VariantValue, e.Requested, e.Available,
	)
}

// PriceResolutionError reports a cart item whose current catalog price
// cannot be determined at checkout time.
type PriceResolutionError struct {
	ProductID    uuid.UUID
	VariantName  string
	VariantValue string
}

func (e *PriceResolutionError) Error() string {
	return fmt.Sprintf(
		"price not found for product %s variant %s=%s",
		e.ProductID, e.VariantName, e.VariantValue,
	)
}
