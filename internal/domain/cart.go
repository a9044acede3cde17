package domain

import (
	"time"

	"github.com/google/uuid"
)

// Cart holds a user's cart. One cart per user, created lazily on the
// first mutation and never hard-deleted; an empty cart is the normal
// state after the last item is removed.
type Cart struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	UserID    uuid.UUID  `json:"user_id" db:"user_id"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// CartItem is one line in a cart. Price and images are snapshots taken
// when the item was first added; the checkout flow never trusts them
// and recomputes against the catalog.
type CartItem struct {
	ID           uuid.UUID `json:"id" db:"id"`
	CartID       uuid.UUID `json:"cart_id" db:"cart_id"`
	ProductID    uuid.UUID `json:"product_id" db:"product_id"`
	ProductName  string    `json:"product_name" db:"product_name"`
	VariantName  string    `json:"variant_name" db:"variant_name"`
	VariantValue string    `json:"variant_value" db:"variant_value"`
	Quantity     int       `json:"quantity" db:"quantity"`
	Price        float64   `json:"price" db:"price"`
	Images       []string  `json:"images" db:"images"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// EmptyCart returns the cart shape served when a user has no cart row yet.
func EmptyCart(userID uuid.UUID) *Cart {
	return &Cart{UserID: userID, Items: []CartItem{}}
}

// IsEmpty reports whether the cart has no items.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// FindItem returns the item for the (product, variant) combination, or nil.
// At most one such item exists per cart.
func (c *Cart) FindItem(productID uuid.UUID, variantName, variantValue string) *CartItem {
	for i := range c.Items {
		it := &c.Items[i]
		if it.ProductID == productID && it.VariantName == variantName && it.VariantValue == variantValue {
			return it
		}
	}
	return nil
}

// FindItemByID returns the item with the given id, or nil.
func (c *Cart) FindItemByID(itemID uuid.UUID) *CartItem {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			return &c.Items[i]
		}
	}
	return nil
}
