package service

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/cache"
	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WishlistService mirrors the cart's read-through/write-through shape
// without quantities or stock checks.
type WishlistService interface {
	GetWishlist(ctx context.Context, userID uuid.UUID) (*domain.Wishlist, error)
	AddProduct(ctx context.Context, userID, productID uuid.UUID, variantName, variantValue string) (*domain.Wishlist, error)
	RemoveProduct(ctx context.Context, userID, productID uuid.UUID, variantName, variantValue string) (*domain.Wishlist, error)
	ClearWishlist(ctx context.Context, userID uuid.UUID) error
}

type wishlistService struct {
	wishlistRepo repository.WishlistRepository
	productRepo  repository.ProductRepository
	cache        *cache.Store
	cacheTTL     time.Duration
	logger       *zap.Logger
}

// NewWishlistService creates a new instance of WishlistService
func NewWishlistService(
	wishlistRepo repository.WishlistRepository,
	productRepo repository.ProductRepository,
	cacheStore *cache.Store,
	cacheTTL time.Duration,
	logger *zap.Logger,
) WishlistService {
	return &wishlistService{
		wishlistRepo: wishlistRepo,
		productRepo:  productRepo,
		cache:        cacheStore,
		cacheTTL:     cacheTTL,
		logger:       logger,
	}
}

func wishlistCacheKey(userID uuid.UUID) string {
	return "wishlist:user:" + userID.String()
}

// GetWishlist returns the user's wishlist, cache first.
func (s *wishlistService) GetWishlist(ctx context.Context, userID uuid.UUID) (*domain.Wishlist, error) {
	key := wishlistCacheKey(userID)

	cached := &domain.Wishlist{}
	hit, err := s.cache.GetJSON(ctx, key, cached)
	if err != nil {
		return nil, fmt.Errorf("failed to read wishlist cache: %w", err)
	}
	if hit {
		return cached, nil
	}

	wl, err := s.wishlistRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch wishlist: %w", err)
	}

	if err := s.cache.SetJSON(ctx, key, wl, s.cacheTTL); err != nil {
		return nil, err
	}

	return wl, nil
}

// AddProduct saves a product variant with a price/image snapshot. A
// duplicate (product, variant) add is a no-op.
func (s *wishlistService) AddProduct(ctx context.Context, userID, productID uuid.UUID, variantName, variantValue string) (*domain.Wishlist, error) {
	variant, err := s.productRepo.FindVariant(ctx, productID, variantName, variantValue)
	if err != nil {
		return nil, err
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	images := variant.Images
	if len(images) == 0 {
		images = product.Images
	}

	item := &domain.WishlistItem{
		ProductID:    productID,
		ProductName:  product.Name,
		VariantName:  variantName,
		VariantValue: variantValue,
		Price:        variant.Price,
		Images:       images,
	}

	wl, err := s.wishlistRepo.AddItem(ctx, userID, item)
	if err != nil {
		return nil, fmt.Errorf("failed to add wishlist item: %w", err)
	}

	if err := s.cache.SetJSON(ctx, wishlistCacheKey(userID), wl, s.cacheTTL); err != nil {
		return nil, err
	}

	return wl, nil
}

// RemoveProduct drops the (product, variant) entry.
func (s *wishlistService) RemoveProduct(ctx context.Context, userID, productID uuid.UUID, variantName, variantValue string) (*domain.Wishlist, error) {
	wl, err := s.wishlistRepo.RemoveItem(ctx, userID, productID, variantName, variantValue)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetJSON(ctx, wishlistCacheKey(userID), wl, s.cacheTTL); err != nil {
		return nil, err
	}

	return wl, nil
}

// ClearWishlist empties the wishlist and drops its cache entry.
func (s *wishlistService) ClearWishlist(ctx context.Context, userID uuid.UUID) error {
	if err := s.wishlistRepo.Clear(ctx, userID); err != nil {
		return err
	}

	if err := s.cache.Delete(ctx, wishlistCacheKey(userID)); err != nil {
		return err
	}

	s.logger.Info("Wishlist cleared", zap.String("user_id", userID.String()))
	return nil
}
