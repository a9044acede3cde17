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

var (
	ErrCartNotFound     = errors.New("cart not found")
	ErrCartItemNotFound = errors.New("item not found in cart")
)

// CartRepository defines the interface for cart data access. Every
// mutation returns the full cart as persisted, so callers can overwrite
// the cache entry with exactly what the store holds.
type CartRepository interface {
	FindByUser(ctx context.Context, userID uuid.UUID) (*domain.Cart, error)
	AddItem(ctx context.Context, userID uuid.UUID, item *domain.CartItem) (*domain.Cart, error)
	SetItemQuantity(ctx context.Context, userID, productID uuid.UUID, variantName, variantValue string, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*domain.Cart, error)
}

type cartRepository struct {
	db *sql.DB
}

// NewCartRepository creates a new instance of CartRepository
func NewCartRepository(db *sql.DB) CartRepository {
	return &cartRepository{db: db}
}

// FindByUser retrieves the user's cart with its items. Returns
// ErrCartNotFound when the user has never mutated a cart.
func (r *cartRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*domain.Cart, error) {
	query := `
		SELECT id, user_id, created_at, updated_at
		FROM carts
		WHERE user_id = $1
	`

	cart := &domain.Cart{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&cart.ID,
		&cart.UserID,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to find cart: %w", err)
	}

	if cart.Items, err = r.loadItems(ctx, cart.ID); err != nil {
		return nil, err
	}

	return cart, nil
}

func (r *cartRepository) loadItems(ctx context.Context, cartID uuid.UUID) ([]domain.CartItem, error) {
	query := `
		SELECT id, cart_id, product_id, product_name, variant_name, variant_value, quantity, price, images, created_at, updated_at
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart items: %w", err)
	}
	defer rows.Close()

	items := []domain.CartItem{}
	for rows.Next() {
		var item domain.CartItem
		var images []byte
		err := rows.Scan(
			&item.ID,
			&item.CartID,
			&item.ProductID,
			&item.ProductName,
			&item.VariantName,
			&item.VariantValue,
			&item.Quantity,
			&item.Price,
			&images,
			&item.CreatedAt,
			&item.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		if item.Images, err = decodeImages(images); err != nil {
			return nil, fmt.Errorf("failed to decode cart item images: %w", err)
		}
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	return items, nil
}

// ensureCart returns the id of the user's cart row, creating it if
// absent. The upsert keeps concurrent first-mutations from racing on
// the one-cart-per-user constraint.
func (r *cartRepository) ensureCart(ctx context.Context, tx *sql.Tx, userID uuid.UUID) (uuid.UUID, error) {
	now := time.Now()

	query := `
		INSERT INTO carts (id, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (user_id) DO UPDATE SET updated_at = EXCLUDED.updated_at
		RETURNING id
	`

	var cartID uuid.UUID
	if err := tx.QueryRowContext(ctx, query, uuid.New(), userID, now).Scan(&cartID); err != nil {
		return uuid.Nil, fmt.Errorf("failed to ensure cart: %w", err)
	}

	return cartID, nil
}

// AddItem appends the item to the user's cart, or atomically increments
// the quantity when an item for the same (product, variant) already
// exists. The price/image snapshot of an existing item is preserved;
// only the first add captures it. The cart row is created lazily.
func (r *cartRepository) AddItem(ctx context.Context, userID uuid.UUID, item *domain.CartItem) (*domain.Cart, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	cartID, err := r.ensureCart(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	images, err := encodeImages(item.Images)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cart item images: %w", err)
	}

	now := time.Now()

	// Single-statement merge: the increment happens inside the store, so
	// two concurrent adds for the same item both land instead of
	// last-write-wins on a read-modify-write cycle.
	query := `
		INSERT INTO cart_items (id, cart_id, product_id, product_name, variant_name, variant_value, quantity, price, images, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		ON CONFLICT (cart_id, product_id, variant_name, variant_value)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = EXCLUDED.updated_at
	`
	_, err = tx.ExecContext(
		ctx,
		query,
		uuid.New(),
		cartID,
		item.ProductID,
		item.ProductName,
		item.VariantName,
		item.VariantValue,
		item.Quantity,
		item.Price,
		images,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit cart mutation: %w", err)
	}

	return r.FindByUser(ctx, userID)
}

// SetItemQuantity sets (not increments) the quantity of an existing
// item. Returns ErrCartNotFound or ErrCartItemNotFound when the cart or
// the (product, variant) item is absent.
func (r *cartRepository) SetItemQuantity(ctx context.Context, userID, productID uuid.UUID, variantName, variantValue string, quantity int) (*domain.Cart, error) {
	query := `
		UPDATE cart_items
		SET quantity = $5, updated_at = $6
		WHERE cart_id = (SELECT id FROM carts WHERE user_id = $1)
		  AND product_id = $2 AND variant_name = $3 AND variant_value = $4
	`

	result, err := r.db.ExecContext(ctx, query, userID, productID, variantName, variantValue, quantity, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		// Distinguish a missing cart from a missing item
		var exists bool
		if checkErr := r.db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM carts WHERE user_id = $1)`, userID,
		).Scan(&exists); checkErr != nil {
			return nil, fmt.Errorf("failed to check cart existence: %w", checkErr)
		}
		if !exists {
			return nil, ErrCartNotFound
		}
		return nil, ErrCartItemNotFound
	}

	return r.FindByUser(ctx, userID)
}

// RemoveItem deletes one item by id. The cart row itself survives even
// when its last item is removed.
func (r *cartRepository) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*domain.Cart, error) {
	query := `
		DELETE FROM cart_items
		WHERE id = $2 AND cart_id = (SELECT id FROM carts WHERE user_id = $1)
	`

	result, err := r.db.ExecContext(ctx, query, userID, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to remove cart item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		var exists bool
		if checkErr := r.db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM carts WHERE user_id = $1)`, userID,
		).Scan(&exists); checkErr != nil {
			return nil, fmt.Errorf("failed to check cart existence: %w", checkErr)
		}
		if !exists {
			return nil, ErrCartNotFound
		}
		return nil, ErrCartItemNotFound
	}

	return r.FindByUser(ctx, userID)
}
