package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/cache"
	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AddToCartInput identifies a product variant and the quantity to add.
type AddToCartInput struct {
	ProductID    uuid.UUID
	VariantName  string
	VariantValue string
	Quantity     int
}

// UpdateCartItemInput sets an absolute quantity for an existing item.
type UpdateCartItemInput struct {
	ProductID    uuid.UUID
	VariantName  string
	VariantValue string
	Quantity     int
}

// CartService owns the authoritative cart for a user: stock validation
// on every mutation, price snapshotting at add time, and a read-through
// write-through cache keyed per user.
type CartService interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*domain.Cart, error)
	AddToCart(ctx context.Context, userID uuid.UUID, input AddToCartInput) (*domain.Cart, error)
	UpdateCartItem(ctx context.Context, userID uuid.UUID, input UpdateCartItemInput) (*domain.Cart, error)
	RemoveFromCart(ctx context.Context, userID, itemID uuid.UUID) (*domain.Cart, error)
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	cache       *cache.Store
	cacheTTL    time.Duration
	logger      *zap.Logger
}

// NewCartService creates a new instance of CartService
func NewCartService(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	cacheStore *cache.Store,
	cacheTTL time.Duration,
	logger *zap.Logger,
) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		cache:       cacheStore,
		cacheTTL:    cacheTTL,
		logger:      logger,
	}
}

func cartCacheKey(userID uuid.UUID) string {
	return "cart:" + userID.String()
}

// GetCart returns the user's cart, reading the cache first and falling
// back to the store on a miss. A user without a cart gets an empty cart
// object, never an error.
func (s *cartService) GetCart(ctx context.Context, userID uuid.UUID) (*domain.Cart, error) {
	key := cartCacheKey(userID)

	cached := &domain.Cart{}
	hit, err := s.cache.GetJSON(ctx, key, cached)
	if err != nil {
		return nil, fmt.Errorf("failed to read cart cache: %w", err)
	}
	if hit {
		return cached, nil
	}

	cart, err := s.cartRepo.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrCartNotFound) {
			cart = domain.EmptyCart(userID)
		} else {
			return nil, fmt.Errorf("failed to fetch cart: %w", err)
		}
	}

	if err := s.cache.SetJSON(ctx, key, cart, s.cacheTTL); err != nil {
		return nil, err
	}

	return cart, nil
}

// AddToCart resolves the variant, validates stock, and merges the item
// into the cart. The stock check is advisory: nothing is reserved, and
// checkout re-validates against the catalog before charging.
func (s *cartService) AddToCart(ctx context.Context, userID uuid.UUID, input AddToCartInput) (*domain.Cart, error) {
	variant, err := s.productRepo.FindVariant(ctx, input.ProductID, input.VariantName, input.VariantValue)
	if err != nil {
		return nil, err
	}

	if variant.Stock < input.Quantity {
		return nil, &InsufficientStockError{
			ProductID:    input.ProductID,
			VariantName:  input.VariantName,
			VariantValue: input.VariantValue,
			Requested:    input.Quantity,
			Available:    variant.Stock,
		}
	}

	product, err := s.productRepo.FindByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}

	images := variant.Images
	if len(images) == 0 {
		images = product.Images
	}

	item := &domain.CartItem{
		ProductID:    input.ProductID,
		ProductName:  product.Name,
		VariantName:  input.VariantName,
		VariantValue: input.VariantValue,
		Quantity:     input.Quantity,
		Price:        variant.Price,
		Images:       images,
	}

	cart, err := s.cartRepo.AddItem(ctx, userID, item)
	if err != nil {
		return nil, fmt.Errorf("failed to add item to cart: %w", err)
	}

	if err := s.writeThrough(ctx, userID, cart); err != nil {
		return nil, err
	}

	s.logger.Info("Item added to cart",
		zap.String("user_id", userID.String()),
		zap.String("product_id", input.ProductID.String()),
		zap.String("variant", input.VariantName+"="+input.VariantValue),
		zap.Int("quantity", input.Quantity),
	)

	return cart, nil
}

// UpdateCartItem sets the quantity of an existing item after the same
// stock validation as AddToCart.
func (s *cartService) UpdateCartItem(ctx context.Context, userID uuid.UUID, input UpdateCartItemInput) (*domain.Cart, error) {
	variant, err := s.productRepo.FindVariant(ctx, input.ProductID, input.VariantName, input.VariantValue)
	if err != nil {
		return nil, err
	}

	if variant.Stock < input.Quantity {
		return nil, &InsufficientStockError{
			ProductID:    input.ProductID,
			VariantName:  input.VariantName,
			VariantValue: input.VariantValue,
			Requested:    input.Quantity,
			Available:    variant.Stock,
		}
	}

	cart, err := s.cartRepo.SetItemQuantity(ctx, userID, input.ProductID, input.VariantName, input.VariantValue, input.Quantity)
	if err != nil {
		if errors.Is(err, repository.ErrCartNotFound) || errors.Is(err, repository.ErrCartItemNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}

	if err := s.writeThrough(ctx, userID, cart); err != nil {
		return nil, err
	}

	return cart, nil
}

// RemoveFromCart deletes one item by id. Removing the last item leaves
// an empty cart, not a missing one.
func (s *cartService) RemoveFromCart(ctx context.Context, userID, itemID uuid.UUID) (*domain.Cart, error) {
	cart, err := s.cartRepo.RemoveItem(ctx, userID, itemID)
	if err != nil {
		if errors.Is(err, repository.ErrCartNotFound) || errors.Is(err, repository.ErrCartItemNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to remove cart item: %w", err)
	}

	if err := s.writeThrough(ctx, userID, cart); err != nil {
		return nil, err
	}

	return cart, nil
}

// writeThrough overwrites the user's cache entry with the state just
// persisted. The entry is always replaced whole, never patched, so the
// cache can be stale but never structurally inconsistent.
func (s *cartService) writeThrough(ctx context.Context, userID uuid.UUID, cart *domain.Cart) error {
	if err := s.cache.SetJSON(ctx, cartCacheKey(userID), cart, s.cacheTTL); err != nil {
		return err
	}
	return nil
}
