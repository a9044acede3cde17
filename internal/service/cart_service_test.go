package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront/internal/cache"
	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Mock repositories for testing

type mockCartRepository struct {
	carts map[uuid.UUID]*domain.Cart
}

func newMockCartRepository() *mockCartRepository {
	return &mockCartRepository{carts: make(map[uuid.UUID]*domain.Cart)}
}

func (m *mockCartRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*domain.Cart, error) {
	cart, exists := m.carts[userID]
	if !exists {
		return nil, repository.ErrCartNotFound
	}
	return cart, nil
}

func (m *mockCartRepository) ensure(userID uuid.UUID) *domain.Cart {
	cart, exists := m.carts[userID]
	if !exists {
		now := time.Now()
		cart = &domain.Cart{ID: uuid.New(), UserID: userID, Items: []domain.CartItem{}, CreatedAt: now, UpdatedAt: now}
		m.carts[userID] = cart
	}
	return cart
}

func (m *mockCartRepository) AddItem(ctx context.Context, userID uuid.UUID, item *domain.CartItem) (*domain.Cart, error) {
	cart := m.ensure(userID)
	if existing := cart.FindItem(item.ProductID, item.VariantName, item.VariantValue); existing != nil {
		existing.Quantity += item.Quantity
	} else {
		stored := *item
		stored.ID = uuid.New()
		stored.CartID = cart.ID
		cart.Items = append(cart.Items, stored)
	}
	return cart, nil
}

func (m *mockCartRepository) SetItemQuantity(ctx context.Context, userID, productID uuid.UUID, variantName, variantValue string, quantity int) (*domain.Cart, error) {
	cart, exists := m.carts[userID]
	if !exists {
		return nil, repository.ErrCartNotFound
	}
	item := cart.FindItem(productID, variantName, variantValue)
	if item == nil {
		return nil, repository.ErrCartItemNotFound
	}
	item.Quantity = quantity
	return cart, nil
}

func (m *mockCartRepository) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*domain.Cart, error) {
	cart, exists := m.carts[userID]
	if !exists {
		return nil, repository.ErrCartNotFound
	}
	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			return cart, nil
		}
	}
	return nil, repository.ErrCartItemNotFound
}

type mockProductRepository struct {
	products map[uuid.UUID]*domain.Product
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{products: make(map[uuid.UUID]*domain.Product)}
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	if _, exists := m.products[product.ID]; !exists {
		return repository.ErrProductNotFound
	}
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, exists := m.products[id]; !exists {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, exists := m.products[id]
	if !exists {
		return nil, repository.ErrProductNotFound
	}
	return product, nil
}

func (m *mockProductRepository) FindVariant(ctx context.Context, productID uuid.UUID, variantName, variantValue string) (*domain.Variant, error) {
	product, exists := m.products[productID]
	if !exists {
		return nil, repository.ErrProductNotFound
	}
	if v := product.FindVariant(variantName, variantValue); v != nil {
		return v, nil
	}
	return nil, repository.ErrVariantNotFound
}

func (m *mockProductRepository) List(ctx context.Context, categoryID *uuid.UUID, page, pageSize int, sortBy string, sortOrder repository.SortOrder) ([]*domain.Product, int, error) {
	products := make([]*domain.Product, 0, len(m.products))
	for _, p := range m.products {
		products = append(products, p)
	}
	return products, len(products), nil
}

func (m *mockProductRepository) Search(ctx context.Context, query string, page, pageSize int) ([]*domain.Product, int, error) {
	return m.List(ctx, nil, page, pageSize, "", "")
}

// newTestCache spins up a miniredis-backed Store
func newTestCache(t *testing.T) (*cache.Store, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return cache.NewStore(client, zap.NewNop()), mr
}

func seedProduct(repo *mockProductRepository, price float64, stock int) *domain.Product {
	product := &domain.Product{
		ID:         uuid.New(),
		Name:       "Trail Runner",
		CategoryID: uuid.New(),
		Images:     []string{"https://cdn.example.com/trail-runner.jpg"},
		Status:     domain.ProductStatusActive,
		Variants: []domain.Variant{
			{
				ID:    uuid.New(),
				SKU:   "TR-RED-42",
				Name:  "size",
				Value: "42",
				Price: price,
				Stock: stock,
			},
		},
	}
	product.Variants[0].ProductID = product.ID
	repo.Create(context.Background(), product)
	return product
}

func TestGetCart_ReturnsEmptyCartForNewUser(t *testing.T) {
	cacheStore, _ := newTestCache(t)
	svc := NewCartService(newMockCartRepository(), newMockProductRepository(), cacheStore, time.Hour, zap.NewNop())

	userID := uuid.New()
	cart, err := svc.GetCart(context.Background(), userID)

	require.NoError(t, err)
	assert.Equal(t, userID, cart.UserID)
	assert.True(t, cart.IsEmpty())
}

func TestAddToCart_SnapshotsPriceAndImages(t *testing.T) {
	cacheStore, _ := newTestCache(t)
	productRepo := newMockProductRepository()
	product := seedProduct(productRepo, 19.99, 10)
	svc := NewCartService(newMockCartRepository(), productRepo, cacheStore, time.Hour, zap.NewNop())

	cart, err := svc.AddToCart(context.Background(), uuid.New(), AddToCartInput{
		ProductID:    product.ID,
		VariantName:  "size",
		VariantValue: "42",
		Quantity:     2,
	})

	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	item := cart.Items[0]
	assert.Equal(t, "Trail Runner", item.ProductName)
	assert.Equal(t, 19.99, item.Price)
	assert.Equal(t, 2, item.Quantity)
	// Variant has no images, so the product image is the fallback
	assert.Equal(t, product.Images, item.Images)
}

func TestAddToCart_RejectsInsufficientStock(t *testing.T) {
	cacheStore, _ := newTestCache(t)
	productRepo := newMockProductRepository()
	product := seedProduct(productRepo, 19.99, 3)
	svc := NewCartService(newMockCartRepository(), productRepo, cacheStore, time.Hour, zap.NewNop())

	userID := uuid.New()
	_, err := svc.AddToCart(context.Background(), userID, AddToCartInput{
		ProductID:    product.ID,
		VariantName:  "size",
		VariantValue: "42",
		Quantity:     4,
	})

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 4, stockErr.Requested)
	assert.Equal(t, 3, stockErr.Available)

	// The rejected add must not have touched the cart
	cart, err := svc.GetCart(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
}

func TestAddToCart_UnknownVariantFails(t *testing.T) {
	cacheStore, _ := newTestCache(t)
	productRepo := newMockProductRepository()
	product := seedProduct(productRepo, 19.99, 10)
	svc := NewCartService(newMockCartRepository(), productRepo, cacheStore, time.Hour, zap.NewNop())

	_, err := svc.AddToCart(context.Background(), uuid.New(), AddToCartInput{
		ProductID:    product.ID,
		VariantName:  "size",
		VariantValue: "47",
		Quantity:     1,
	})

	assert.ErrorIs(t, err, repository.ErrVariantNotFound)
}

func TestAddToCart_WriteThroughMakesCacheAuthoritative(t *testing.T) {
	cacheStore, _ := newTestCache(t)
	cartRepo := newMockCartRepository()
	productRepo := newMockProductRepository()
	product := seedProduct(productRepo, 5.50, 100)
	svc := NewCartService(cartRepo, productRepo, cacheStore, time.Hour, zap.NewNop())

	userID := uuid.New()
	_, err := svc.AddToCart(context.Background(), userID, AddToCartInput{
		ProductID:    product.ID,
		VariantName:  "size",
		VariantValue: "42",
		Quantity:     1,
	})
	require.NoError(t, err)

	// Mutate the backing store directly; the cached entry must win on read
	delete(cartRepo.carts, userID)

	cart, err := svc.GetCart(context.Background(), userID)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)
}

func TestUpdateCartItem_MissingItemSurfacesNotFound(t *testing.T) {
	cacheStore, _ := newTestCache(t)
	productRepo := newMockProductRepository()
	product := seedProduct(productRepo, 5.50, 100)
	svc := NewCartService(newMockCartRepository(), productRepo, cacheStore, time.Hour, zap.NewNop())

	_, err := svc.UpdateCartItem(context.Background(), uuid.New(), UpdateCartItemInput{
		ProductID:    product.ID,
		VariantName:  "size",
		VariantValue: "42",
		Quantity:     1,
	})

	assert.True(t, errors.Is(err, repository.ErrCartNotFound) || errors.Is(err, repository.ErrCartItemNotFound))
}

func TestRemoveFromCart_LastItemLeavesEmptyCart(t *testing.T) {
	cacheStore, _ := newTestCache(t)
	productRepo := newMockProductRepository()
	product := seedProduct(productRepo, 12.00, 10)
	svc := NewCartService(newMockCartRepository(), productRepo, cacheStore, time.Hour, zap.NewNop())

	userID := uuid.New()
	cart, err := svc.AddToCart(context.Background(), userID, AddToCartInput{
		ProductID:    product.ID,
		VariantName:  "size",
		VariantValue: "42",
		Quantity:     1,
	})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)

	cart, err = svc.RemoveFromCart(context.Background(), userID, cart.Items[0].ID)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())

	// The empty state is also what subsequent reads serve
	cart, err = svc.GetCart(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
}

// Property: repeated adds of the same variant merge into a single line
// whose quantity is the sum of every add
func TestProperty_RepeatedAddsMergeQuantities(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("duplicate variant adds accumulate into one cart item", prop.ForAll(
		func(quantities []int) bool {
			cacheStore, _ := newTestCache(t)
			productRepo := newMockProductRepository()
			product := seedProduct(productRepo, 9.99, 1<<30)
			svc := NewCartService(newMockCartRepository(), productRepo, cacheStore, time.Hour, zap.NewNop())

			userID := uuid.New()
			ctx := context.Background()
			expected := 0

			var cart *domain.Cart
			var err error
			for _, q := range quantities {
				cart, err = svc.AddToCart(ctx, userID, AddToCartInput{
					ProductID:    product.ID,
					VariantName:  "size",
					VariantValue: "42",
					Quantity:     q,
				})
				if err != nil {
					t.Logf("FAIL: AddToCart returned error: %v", err)
					return false
				}
				expected += q
			}

			if len(cart.Items) != 1 {
				t.Logf("FAIL: expected one merged item, got %d", len(cart.Items))
				return false
			}
			if cart.Items[0].Quantity != expected {
				t.Logf("FAIL: expected quantity %d, got %d", expected, cart.Items[0].Quantity)
				return false
			}
			return true
		},
		gen.SliceOfN(5, gen.IntRange(1, 20)),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Property: distinct variant values of the same product stay separate lines
func TestProperty_DistinctVariantsStaySeparate(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("each variant value gets its own cart item", prop.ForAll(
		func(values []string) bool {
			cacheStore, _ := newTestCache(t)
			productRepo := newMockProductRepository()
			svc := NewCartService(newMockCartRepository(), productRepo, cacheStore, time.Hour, zap.NewNop())

			distinct := make(map[string]bool)
			product := &domain.Product{
				ID:     uuid.New(),
				Name:   "Trail Runner",
				Status: domain.ProductStatusActive,
			}
			for _, v := range values {
				if distinct[v] {
					continue
				}
				distinct[v] = true
				product.Variants = append(product.Variants, domain.Variant{
					ID:        uuid.New(),
					ProductID: product.ID,
					SKU:       "TR-" + v,
					Name:      "size",
					Value:     v,
					Price:     9.99,
					Stock:     100,
				})
			}
			if len(distinct) == 0 {
				return true
			}
			productRepo.Create(context.Background(), product)

			userID := uuid.New()
			ctx := context.Background()

			var cart *domain.Cart
			for v := range distinct {
				var err error
				cart, err = svc.AddToCart(ctx, userID, AddToCartInput{
					ProductID:    product.ID,
					VariantName:  "size",
					VariantValue: v,
					Quantity:     1,
				})
				if err != nil {
					t.Logf("FAIL: AddToCart returned error: %v", err)
					return false
				}
			}

			if len(cart.Items) != len(distinct) {
				t.Logf("FAIL: expected %d items, got %d", len(distinct), len(cart.Items))
				return false
			}
			return true
		},
		gen.SliceOfN(4, gen.RegexMatch(`[0-9]{2}`)),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
