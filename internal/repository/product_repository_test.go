package repository

import (
	"context"
	"testing"
	"time"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedTestProduct(t *testing.T) *domain.Product {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Millisecond)
	product := &domain.Product{
		ID:          uuid.New(),
		Name:        "Trail Runner",
		Description: "Lightweight trail running shoe",
		CategoryID:  uuid.New(),
		Images:      []string{"https://cdn.example.com/trail-runner.jpg"},
		Status:      domain.ProductStatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	product.Variants = []domain.Variant{
		{
			ID:        uuid.New(),
			ProductID: product.ID,
			SKU:       "TR-" + uuid.New().String()[:8],
			Name:      "size",
			Value:     "42",
			Price:     89.99,
			Stock:     12,
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:        uuid.New(),
			ProductID: product.ID,
			SKU:       "TR-" + uuid.New().String()[:8],
			Name:      "size",
			Value:     "43",
			Price:     89.99,
			Stock:     0,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	repo := NewProductRepository(testDB)
	require.NoError(t, repo.Create(context.Background(), product))
	return product
}

func TestProductRepository_CreateAndFindByID(t *testing.T) {
	repo := NewProductRepository(testDB)
	product := seedTestProduct(t)

	found, err := repo.FindByID(context.Background(), product.ID)

	require.NoError(t, err)
	assert.Equal(t, product.Name, found.Name)
	assert.Equal(t, product.Images, found.Images)
	require.Len(t, found.Variants, 2)
	assert.Equal(t, 89.99, found.Variants[0].Price)
}

func TestProductRepository_FindByIDMissing(t *testing.T) {
	repo := NewProductRepository(testDB)

	_, err := repo.FindByID(context.Background(), uuid.New())

	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductRepository_FindVariant(t *testing.T) {
	repo := NewProductRepository(testDB)
	product := seedTestProduct(t)
	ctx := context.Background()

	variant, err := repo.FindVariant(ctx, product.ID, "size", "42")
	require.NoError(t, err)
	assert.Equal(t, 12, variant.Stock)

	// Product exists, variant does not
	_, err = repo.FindVariant(ctx, product.ID, "size", "99")
	assert.ErrorIs(t, err, ErrVariantNotFound)

	// Product does not exist at all
	_, err = repo.FindVariant(ctx, uuid.New(), "size", "42")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductRepository_UpdateReplacesVariantSet(t *testing.T) {
	repo := NewProductRepository(testDB)
	product := seedTestProduct(t)
	ctx := context.Background()

	now := time.Now()
	product.Name = "Trail Runner v2"
	product.Variants = []domain.Variant{
		{
			ID:        uuid.New(),
			ProductID: product.ID,
			SKU:       "TR2-" + uuid.New().String()[:8],
			Name:      "size",
			Value:     "44",
			Price:     99.99,
			Stock:     5,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
	product.UpdatedAt = now

	require.NoError(t, repo.Update(ctx, product))

	found, err := repo.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Trail Runner v2", found.Name)
	require.Len(t, found.Variants, 1)
	assert.Equal(t, "44", found.Variants[0].Value)
}

func TestProductRepository_UpdateMissingProduct(t *testing.T) {
	repo := NewProductRepository(testDB)

	product := &domain.Product{ID: uuid.New(), Name: "Ghost", Status: domain.ProductStatusActive}
	err := repo.Update(context.Background(), product)

	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductRepository_DeleteCascadesToVariants(t *testing.T) {
	repo := NewProductRepository(testDB)
	product := seedTestProduct(t)
	ctx := context.Background()

	require.NoError(t, repo.Delete(ctx, product.ID))

	_, err := repo.FindByID(ctx, product.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)

	_, err = repo.FindVariant(ctx, product.ID, "size", "42")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductRepository_DeleteMissingProduct(t *testing.T) {
	repo := NewProductRepository(testDB)

	err := repo.Delete(context.Background(), uuid.New())

	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductRepository_ListFiltersByCategory(t *testing.T) {
	repo := NewProductRepository(testDB)
	product := seedTestProduct(t)
	ctx := context.Background()

	products, total, err := repo.List(ctx, &product.CategoryID, 1, 20, "", "")
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, products, 1)
	assert.Equal(t, product.ID, products[0].ID)

	other := uuid.New()
	_, total, err = repo.List(ctx, &other, 1, 20, "", "")
	require.NoError(t, err)
	assert.Zero(t, total)
}
