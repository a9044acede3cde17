package domain

import (
	"time"

	"github.com/google/uuid"
)

// Wishlist holds a user's saved products. One wishlist per user,
// created lazily, deduplicated on (product, variant), no quantities.
type Wishlist struct {
	ID        uuid.UUID      `json:"id" db:"id"`
	UserID    uuid.UUID      `json:"user_id" db:"user_id"`
	Items     []WishlistItem `json:"items"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" db:"updated_at"`
}

// WishlistItem references a product variant with display snapshots
// captured at add time.
type WishlistItem struct {
	ID           uuid.UUID `json:"id" db:"id"`
	WishlistID   uuid.UUID `json:"wishlist_id" db:"wishlist_id"`
	ProductID    uuid.UUID `json:"product_id" db:"product_id"`
	ProductName  string    `json:"product_name" db:"product_name"`
	VariantName  string    `json:"variant_name" db:"variant_name"`
	VariantValue string    `json:"variant_value" db:"variant_value"`
	Price        float64   `json:"price" db:"price"`
	Images       []string  `json:"images" db:"images"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// EmptyWishlist returns the wishlist shape served when a user has no
// wishlist row yet.
func EmptyWishlist(userID uuid.UUID) *Wishlist {
	return &Wishlist{UserID: userID, Items: []WishlistItem{}}
}
