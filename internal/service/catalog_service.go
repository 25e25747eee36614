package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"aura-store/internal/domain"
	"aura-store/internal/repository"

	"github.com/google/uuid"
)

// ProductDetails bundles a product with its size variants and images
type ProductDetails struct {
	Product *domain.Product       `json:"product"`
	Sizes   []*domain.ProductSize `json:"sizes"`
	Images  []*domain.ProductImage `json:"images"`
}

// CreateProductInput carries the fields for a new catalog product
type CreateProductInput struct {
	Name        string
	Description string
	Price       int64
	Discount    int
	CategoryID  uuid.UUID
	Featured    bool
	Sizes       map[string]int // size label -> initial stock
	Images      []string       // URLs in gallery order
}

// CatalogService defines the interface for catalog browsing and admin CRUD
type CatalogService interface {
	ListProducts(ctx context.Context, categoryID *uuid.UUID, page, pageSize int, sortBy string, sortOrder repository.SortOrder) ([]*domain.Product, int, error)
	SearchProducts(ctx context.Context, query string, page, pageSize int) ([]*domain.Product, int, error)
	GetProductBySlug(ctx context.Context, slug string) (*ProductDetails, error)
	CreateProduct(ctx context.Context, input CreateProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	CreateCategory(ctx context.Context, name, description string) (*domain.Category, error)
}

type catalogService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(productRepo repository.ProductRepository, categoryRepo repository.CategoryRepository) CatalogService {
	return &catalogService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
	}
}

// ListProducts retrieves a page of products, optionally scoped to a category
func (s *catalogService) ListProducts(ctx context.Context, categoryID *uuid.UUID, page, pageSize int, sortBy string, sortOrder repository.SortOrder) ([]*domain.Product, int, error) {
	return s.productRepo.List(ctx, categoryID, page, pageSize, sortBy, sortOrder)
}

// SearchProducts retrieves products matching a free-text query
func (s *catalogService) SearchProducts(ctx context.Context, query string, page, pageSize int) ([]*domain.Product, int, error) {
	return s.productRepo.Search(ctx, query, page, pageSize)
}

// GetProductBySlug retrieves a product with its sizes and images
func (s *catalogService) GetProductBySlug(ctx context.Context, slug string) (*ProductDetails, error) {
	product, err := s.productRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	sizes, err := s.productRepo.Sizes(ctx, product.ID)
	if err != nil {
		return nil, err
	}

	images, err := s.productRepo.Images(ctx, product.ID)
	if err != nil {
		return nil, err
	}

	return &ProductDetails{Product: product, Sizes: sizes, Images: images}, nil
}

// CreateProduct creates a product with its initial sizes and images
func (s *catalogService) CreateProduct(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	if _, err := s.categoryRepo.FindByID(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	now := time.Now()
	product := &domain.Product{
		ID:          uuid.New(),
		Name:        input.Name,
		Slug:        Slugify(input.Name),
		Description: input.Description,
		Price:       input.Price,
		Discount:    input.Discount,
		CategoryID:  input.CategoryID,
		Featured:    input.Featured,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	for size, stock := range input.Sizes {
		productSize := &domain.ProductSize{
			ID:        uuid.New(),
			ProductID: product.ID,
			Size:      size,
			Stock:     stock,
		}
		if err := s.productRepo.AddSize(ctx, productSize); err != nil {
			return nil, fmt.Errorf("failed to add size %s: %w", size, err)
		}
	}

	for i, url := range input.Images {
		image := &domain.ProductImage{
			ID:        uuid.New(),
			ProductID: product.ID,
			URL:       url,
			Position:  i,
		}
		if err := s.productRepo.AddImage(ctx, image); err != nil {
			return nil, fmt.Errorf("failed to add image: %w", err)
		}
	}

	return product, nil
}

// DeleteProduct removes a product from the catalog. Existing order items
// keep their snapshot of the product.
func (s *catalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return s.productRepo.Delete(ctx, id)
}

// ListCategories retrieves all categories
func (s *catalogService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.categoryRepo.List(ctx)
}

// CreateCategory creates a category with a slug derived from its name
func (s *catalogService) CreateCategory(ctx context.Context, name, description string) (*domain.Category, error) {
	category := &domain.Category{
		ID:          uuid.New(),
		Name:        name,
		Slug:        Slugify(name),
		Description: description,
		CreatedAt:   time.Now(),
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

var (
	slugInvalidChars = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpaces       = regexp.MustCompile(`\s+`)
	slugDashes       = regexp.MustCompile(`-+`)
)

// Slugify derives a URL slug from a display name: lowercase, special
// characters stripped, whitespace collapsed to single dashes.
func Slugify(name string) string {
	slug := strings.ToLower(name)
	slug = slugInvalidChars.ReplaceAllString(slug, "")
	slug = strings.TrimSpace(slug)
	slug = slugSpaces.ReplaceAllString(slug, "-")
	slug = slugDashes.ReplaceAllString(slug, "-")
	return slug
}
