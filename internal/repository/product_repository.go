package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrVariantNotFound = errors.New("product variant not found")
)

// SortOrder represents the sort direction
type SortOrder string

const (
	SortOrderAsc  SortOrder = "ASC"
	SortOrderDesc SortOrder = "DESC"
)

// ProductRepository defines the interface for product data access.
// FindByID and List inline the product's variants, the relational
// equivalent of a populate-by-reference read.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	FindVariant(ctx context.Context, productID uuid.UUID, variantName, variantValue string) (*domain.Variant, error)
	List(ctx context.Context, categoryID *uuid.UUID, page, pageSize int, sortBy string, sortOrder SortOrder) ([]*domain.Product, int, error)
	Search(ctx context.Context, query string, page, pageSize int) ([]*domain.Product, int, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

// encodeImages serializes an image URL list for a jsonb column
func encodeImages(images []string) ([]byte, error) {
	if images == nil {
		images = []string{}
	}
	return json.Marshal(images)
}

// decodeImages deserializes a jsonb image URL list
func decodeImages(data []byte) ([]string, error) {
	images := []string{}
	if len(data) == 0 {
		return images, nil
	}
	if err := json.Unmarshal(data, &images); err != nil {
		return nil, err
	}
	return images, nil
}

// Create inserts a product and its variants in one transaction
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	images, err := encodeImages(product.Images)
	if err != nil {
		return fmt.Errorf("failed to encode product images: %w", err)
	}

	query := `
		INSERT INTO products (id, name, description, category_id, images, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = tx.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Description,
		product.CategoryID,
		images,
		product.Status,
		product.CreatedAt,
		product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	for i := range product.Variants {
		if err := r.insertVariant(ctx, tx, &product.Variants[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit product creation: %w", err)
	}

	return nil
}

func (r *productRepository) insertVariant(ctx context.Context, tx *sql.Tx, v *domain.Variant) error {
	images, err := encodeImages(v.Images)
	if err != nil {
		return fmt.Errorf("failed to encode variant images: %w", err)
	}

	query := `
		INSERT INTO product_variants (id, product_id, sku, name, value, price, stock, images, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = tx.ExecContext(
		ctx,
		query,
		v.ID,
		v.ProductID,
		v.SKU,
		v.Name,
		v.Value,
		v.Price,
		v.Stock,
		images,
		v.CreatedAt,
		v.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create product variant: %w", err)
	}
	return nil
}

// Update replaces a product row and its variant set in one transaction
func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	images, err := encodeImages(product.Images)
	if err != nil {
		return fmt.Errorf("failed to encode product images: %w", err)
	}

	query := `
		UPDATE products
		SET name = $2, description = $3, category_id = $4, images = $5, status = $6, updated_at = $7
		WHERE id = $1
	`
	result, err := tx.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Description,
		product.CategoryID,
		images,
		product.Status,
		product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM product_variants WHERE product_id = $1`, product.ID); err != nil {
		return fmt.Errorf("failed to clear product variants: %w", err)
	}
	for i := range product.Variants {
		if err := r.insertVariant(ctx, tx, &product.Variants[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit product update: %w", err)
	}

	return nil
}

// Delete removes a product; variants go with it via ON DELETE CASCADE
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// FindByID retrieves a product with its variants inlined
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `
		SELECT id, name, description, category_id, images, status, created_at, updated_at
		FROM products
		WHERE id = $1
	`

	product := &domain.Product{}
	var images []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.CategoryID,
		&images,
		&product.Status,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	if product.Images, err = decodeImages(images); err != nil {
		return nil, fmt.Errorf("failed to decode product images: %w", err)
	}

	if product.Variants, err = r.loadVariants(ctx, id); err != nil {
		return nil, err
	}

	return product, nil
}

func (r *productRepository) loadVariants(ctx context.Context, productID uuid.UUID) ([]domain.Variant, error) {
	query := `
		SELECT id, product_id, sku, name, value, price, stock, images, created_at, updated_at
		FROM product_variants
		WHERE product_id = $1
		ORDER BY name, value
	`

	rows, err := r.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to load product variants: %w", err)
	}
	defer rows.Close()

	variants := []domain.Variant{}
	for rows.Next() {
		var v domain.Variant
		var images []byte
		err := rows.Scan(
			&v.ID,
			&v.ProductID,
			&v.SKU,
			&v.Name,
			&v.Value,
			&v.Price,
			&v.Stock,
			&images,
			&v.CreatedAt,
			&v.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product variant: %w", err)
		}
		if v.Images, err = decodeImages(images); err != nil {
			return nil, fmt.Errorf("failed to decode variant images: %w", err)
		}
		variants = append(variants, v)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product variants: %w", err)
	}

	return variants, nil
}

// FindVariant retrieves a single variant by its (name, value) selector.
// Returns ErrProductNotFound when the product is absent and
// ErrVariantNotFound when the product exists but the selector does not
// resolve.
func (r *productRepository) FindVariant(ctx context.Context, productID uuid.UUID, variantName, variantValue string) (*domain.Variant, error) {
	query := `
		SELECT id, product_id, sku, name, value, price, stock, images, created_at, updated_at
		FROM product_variants
		WHERE product_id = $1 AND name = $2 AND value = $3
	`

	v := &domain.Variant{}
	var images []byte
	err := r.db.QueryRowContext(ctx, query, productID, variantName, variantValue).Scan(
		&v.ID,
		&v.ProductID,
		&v.SKU,
		&v.Name,
		&v.Value,
		&v.Price,
		&v.Stock,
		&images,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			var exists bool
			if checkErr := r.db.QueryRowContext(ctx,
				`SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, productID,
			).Scan(&exists); checkErr != nil {
				return nil, fmt.Errorf("failed to check product existence: %w", checkErr)
			}
			if !exists {
				return nil, ErrProductNotFound
			}
			return nil, ErrVariantNotFound
		}
		return nil, fmt.Errorf("failed to find product variant: %w", err)
	}

	if v.Images, err = decodeImages(images); err != nil {
		return nil, fmt.Errorf("failed to decode variant images: %w", err)
	}

	return v, nil
}

// List retrieves products with optional category filtering, pagination, and sorting
func (r *productRepository) List(ctx context.Context, categoryID *uuid.UUID, page, pageSize int, sortBy string, sortOrder SortOrder) ([]*domain.Product, int, error) {
	// Validate sort field to prevent SQL injection
	validSortFields := map[string]bool{
		"name":       true,
		"created_at": true,
		"status":     true,
	}
	if !validSortFields[sortBy] {
		sortBy = "created_at"
	}
	if sortOrder != SortOrderAsc && sortOrder != SortOrderDesc {
		sortOrder = SortOrderDesc
	}

	whereClause := ""
	args := []interface{}{}
	argIndex := 1

	if categoryID != nil {
		whereClause = fmt.Sprintf("WHERE category_id = $%d", argIndex)
		args = append(args, *categoryID)
		argIndex++
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM products %s", whereClause)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	offset := (page - 1) * pageSize

	query := fmt.Sprintf(`
		SELECT id, name, description, category_id, images, status, created_at, updated_at
		FROM products
		%s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, whereClause, sortBy, sortOrder, argIndex, argIndex+1)

	args = append(args, pageSize, offset)

	return r.queryProducts(ctx, query, total, args...)
}

// Search searches for products by name or description with pagination
func (r *productRepository) Search(ctx context.Context, query string, page, pageSize int) ([]*domain.Product, int, error) {
	if strings.TrimSpace(query) == "" {
		return r.List(ctx, nil, page, pageSize, "created_at", SortOrderDesc)
	}

	searchPattern := "%" + query + "%"

	countQuery := `
		SELECT COUNT(*)
		FROM products
		WHERE name ILIKE $1 OR description ILIKE $1
	`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, searchPattern).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count search results: %w", err)
	}

	offset := (page - 1) * pageSize

	searchQuery := `
		SELECT id, name, description, category_id, images, status, created_at, updated_at
		FROM products
		WHERE name ILIKE $1 OR description ILIKE $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	return r.queryProducts(ctx, searchQuery, total, searchPattern, pageSize, offset)
}

func (r *productRepository) queryProducts(ctx context.Context, query string, total int, args ...interface{}) ([]*domain.Product, int, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product := &domain.Product{}
		var images []byte
		err := rows.Scan(
			&product.ID,
			&product.Name,
			&product.Description,
			&product.CategoryID,
			&images,
			&product.Status,
			&product.CreatedAt,
			&product.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan product: %w", err)
		}
		if product.Images, err = decodeImages(images); err != nil {
			return nil, 0, fmt.Errorf("failed to decode product images: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating products: %w", err)
	}

	for _, p := range products {
		if p.Variants, err = r.loadVariants(ctx, p.ID); err != nil {
			return nil, 0, err
		}
	}

	return products, total, nil
}
