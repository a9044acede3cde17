package service

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
)

// ProductInput carries the fields for creating or updating a product.
type ProductInput struct {
	Name        string
	Description string
	CategoryID  uuid.UUID
	Images      []string
	Status      domain.ProductStatus
	Variants    []VariantInput
}

// VariantInput carries the fields for one variant of a product.
type VariantInput struct {
	SKU    string
	Name   string
	Value  string
	Price  float64
	Stock  int
	Images []string
}

// ProductService defines catalog business logic
type ProductService interface {
	Create(ctx context.Context, input ProductInput) (*domain.Product, error)
	Update(ctx context.Context, id uuid.UUID, input ProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	List(ctx context.Context, categoryID *uuid.UUID, page, pageSize int, sortBy string, sortOrder repository.SortOrder) ([]*domain.Product, int, error)
	Search(ctx context.Context, query string, page, pageSize int) ([]*domain.Product, int, error)
	CreateCategory(ctx context.Context, name, description string) (*domain.Category, error)
	ListCategories(ctx context.Context) ([]*domain.Category, error)
}

type productService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

// NewProductService creates a new instance of ProductService
func NewProductService(productRepo repository.ProductRepository, categoryRepo repository.CategoryRepository) ProductService {
	return &productService{productRepo: productRepo, categoryRepo: categoryRepo}
}

func buildVariants(productID uuid.UUID, inputs []VariantInput, now time.Time) []domain.Variant {
	variants := make([]domain.Variant, 0, len(inputs))
	for _, in := range inputs {
		variants = append(variants, domain.Variant{
			ID:        uuid.New(),
			ProductID: productID,
			SKU:       in.SKU,
			Name:      in.Name,
			Value:     in.Value,
			Price:     in.Price,
			Stock:     in.Stock,
			Images:    in.Images,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	return variants
}

// Create adds a product with its variants to the catalog. The category
// must already exist.
func (s *productService) Create(ctx context.Context, input ProductInput) (*domain.Product, error) {
	if _, err := s.categoryRepo.FindByID(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	now := time.Now()
	status := input.Status
	if status == "" {
		status = domain.ProductStatusDraft
	}

	product := &domain.Product{
		ID:          uuid.New(),
		Name:        input.Name,
		Description: input.Description,
		CategoryID:  input.CategoryID,
		Images:      input.Images,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	product.Variants = buildVariants(product.ID, input.Variants, now)

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

// Update replaces a product's fields and variant set
func (s *productService) Update(ctx context.Context, id uuid.UUID, input ProductInput) (*domain.Product, error) {
	existing, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.CategoryID != existing.CategoryID {
		if _, err := s.categoryRepo.FindByID(ctx, input.CategoryID); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	existing.Name = input.Name
	existing.Description = input.Description
	existing.CategoryID = input.CategoryID
	existing.Images = input.Images
	if input.Status != "" {
		existing.Status = input.Status
	}
	existing.UpdatedAt = now
	existing.Variants = buildVariants(id, input.Variants, now)

	if err := s.productRepo.Update(ctx, existing); err != nil {
		return nil, err
	}

	return existing, nil
}

// Delete removes a product from the catalog
func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.productRepo.Delete(ctx, id)
}

// GetByID retrieves a product with variants
func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

// List retrieves products with filtering and pagination
func (s *productService) List(ctx context.Context, categoryID *uuid.UUID, page, pageSize int, sortBy string, sortOrder repository.SortOrder) ([]*domain.Product, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.productRepo.List(ctx, categoryID, page, pageSize, sortBy, sortOrder)
}

// Search finds products by name or description
func (s *productService) Search(ctx context.Context, query string, page, pageSize int) ([]*domain.Product, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.productRepo.Search(ctx, query, page, pageSize)
}

// CreateCategory adds a category
func (s *productService) CreateCategory(ctx context.Context, name, description string) (*domain.Category, error) {
	category := &domain.Category{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		CreatedAt:   time.Now(),
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

// ListCategories returns every category
func (s *productService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.categoryRepo.List(ctx)
}
