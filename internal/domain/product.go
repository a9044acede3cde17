package domain

import (
	"time"

	"github.com/google/uuid"
)

// ProductStatus controls catalog visibility
type ProductStatus string

const (
	ProductStatusActive       ProductStatus = "active"
	ProductStatusDraft        ProductStatus = "draft"
	ProductStatusOutOfStock   ProductStatus = "out_of_stock"
	ProductStatusDiscontinued ProductStatus = "discontinued"
)

// Product represents a product in the catalog. A product is purchasable
// only through one of its variants; price and stock live on the variant.
type Product struct {
	ID          uuid.UUID     `json:"id" db:"id"`
	Name        string        `json:"name" db:"name"`
	Description string        `json:"description" db:"description"`
	CategoryID  uuid.UUID     `json:"category_id" db:"category_id"`
	Images      []string      `json:"images" db:"images"`
	Status      ProductStatus `json:"status" db:"status"`
	Variants    []Variant     `json:"variants"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" db:"updated_at"`
}

// Variant is a specific purchasable configuration of a product,
// identified within the product by its (name, value) pair,
// e.g. ("Size", "M") or ("Color", "Red").
type Variant struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	SKU       string    `json:"sku" db:"sku"`
	Name      string    `json:"name" db:"name"`
	Value     string    `json:"value" db:"value"`
	Price     float64   `json:"price" db:"price"`
	Stock     int       `json:"stock" db:"stock"`
	Images    []string  `json:"images" db:"images"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// FindVariant returns the variant matching the (name, value) selector,
// or nil when the product has no such variant.
func (p *Product) FindVariant(name, value string) *Variant {
	for i := range p.Variants {
		if p.Variants[i].Name == name && p.Variants[i].Value == value {
			return &p.Variants[i]
		}
	}
	return nil
}

// TotalStock is the aggregate stock across all variants.
func (p *Product) TotalStock() int {
	total := 0
	for i := range p.Variants {
		total += p.Variants[i].Stock
	}
	return total
}

// Category represents a product category
type Category struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
