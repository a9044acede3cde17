package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain"

	"github.com/google/uuid"
)

var ErrWishlistItemNotFound = errors.New("item not found in wishlist")

// WishlistRepository defines the interface for wishlist data access.
// Same one-row-per-user shape as carts, without quantities.
type WishlistRepository interface {
	FindByUser(ctx context.Context, userID uuid.UUID) (*domain.Wishlist, error)
	AddItem(ctx context.Context, userID uuid.UUID, item *domain.WishlistItem) (*domain.Wishlist, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID, variantName, variantValue string) (*domain.Wishlist, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

type wishlistRepository struct {
	db *sql.DB
}

// NewWishlistRepository creates a new instance of WishlistRepository
func NewWishlistRepository(db *sql.DB) WishlistRepository {
	return &wishlistRepository{db: db}
}

// FindByUser retrieves the user's wishlist, or an empty wishlist object
// when the user has never added anything.
func (r *wishlistRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*domain.Wishlist, error) {
	query := `
		SELECT id, user_id, created_at, updated_at
		FROM wishlists
		WHERE user_id = $1
	`

	wl := &domain.Wishlist{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&wl.ID,
		&wl.UserID,
		&wl.CreatedAt,
		&wl.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.EmptyWishlist(userID), nil
		}
		return nil, fmt.Errorf("failed to find wishlist: %w", err)
	}

	if wl.Items, err = r.loadItems(ctx, wl.ID); err != nil {
		return nil, err
	}

	return wl, nil
}

func (r *wishlistRepository) loadItems(ctx context.Context, wishlistID uuid.UUID) ([]domain.WishlistItem, error) {
	query := `
		SELECT id, wishlist_id, product_id, product_name, variant_name, variant_value, price, images, created_at
		FROM wishlist_items
		WHERE wishlist_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, wishlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to load wishlist items: %w", err)
	}
	defer rows.Close()

	items := []domain.WishlistItem{}
	for rows.Next() {
		var item domain.WishlistItem
		var images []byte
		err := rows.Scan(
			&item.ID,
			&item.WishlistID,
			&item.ProductID,
			&item.ProductName,
			&item.VariantName,
			&item.VariantValue,
			&item.Price,
			&images,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wishlist item: %w", err)
		}
		if item.Images, err = decodeImages(images); err != nil {
			return nil, fmt.Errorf("failed to decode wishlist item images: %w", err)
		}
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating wishlist items: %w", err)
	}

	return items, nil
}

// AddItem inserts the item if the (product, variant) pair is not already
// present; a duplicate add is a no-op rather than an error.
func (r *wishlistRepository) AddItem(ctx context.Context, userID uuid.UUID, item *domain.WishlistItem) (*domain.Wishlist, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()

	var wishlistID uuid.UUID
	err = tx.QueryRowContext(ctx, `
		INSERT INTO wishlists (id, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (user_id) DO UPDATE SET updated_at = EXCLUDED.updated_at
		RETURNING id
	`, uuid.New(), userID, now).Scan(&wishlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure wishlist: %w", err)
	}

	images, err := encodeImages(item.Images)
	if err != nil {
		return nil, fmt.Errorf("failed to encode wishlist item images: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO wishlist_items (id, wishlist_id, product_id, product_name, variant_name, variant_value, price, images, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (wishlist_id, product_id, variant_name, variant_value) DO NOTHING
	`, uuid.New(), wishlistID, item.ProductID, item.ProductName, item.VariantName, item.VariantValue, item.Price, images, now)
	if err != nil {
		return nil, fmt.Errorf("failed to add wishlist item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit wishlist mutation: %w", err)
	}

	return r.FindByUser(ctx, userID)
}

// RemoveItem deletes the item for the (product, variant) pair.
func (r *wishlistRepository) RemoveItem(ctx context.Context, userID, productID uuid.UUID, variantName, variantValue string) (*domain.Wishlist, error) {
	query := `
		DELETE FROM wishlist_items
		WHERE wishlist_id = (SELECT id FROM wishlists WHERE user_id = $1)
		  AND product_id = $2 AND variant_name = $3 AND variant_value = $4
	`

	result, err := r.db.ExecContext(ctx, query, userID, productID, variantName, variantValue)
	if err != nil {
		return nil, fmt.Errorf("failed to remove wishlist item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrWishlistItemNotFound
	}

	return r.FindByUser(ctx, userID)
}

// Clear removes every item from the user's wishlist.
func (r *wishlistRepository) Clear(ctx context.Context, userID uuid.UUID) error {
	query := `
		DELETE FROM wishlist_items
		WHERE wishlist_id = (SELECT id FROM wishlists WHERE user_id = $1)
	`

	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to clear wishlist: %w", err)
	}

	return nil
}
