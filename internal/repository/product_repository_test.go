package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"aura-store/internal/domain"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func seedTestCategory(t *testing.T) *domain.Category {
	t.Helper()
	category := &domain.Category{
		ID:        uuid.New(),
		Name:      "Category " + uuid.New().String(),
		Slug:      "cat-" + uuid.New().String(),
		CreatedAt: time.Now(),
	}
	if err := NewCategoryRepository(testDB).Create(context.Background(), category); err != nil {
		t.Fatalf("Failed to seed category: %v", err)
	}
	return category
}

func TestProperty_ProductCreationPreservesAttributes(t *testing.T) {
	productRepo := NewProductRepository(testDB)
	ctx := context.Background()

	category := seedTestCategory(t)

	properties := gopter.NewProperties(nil)

	properties.Property("creating and retrieving a product preserves all attributes", prop.ForAll(
		func(name string, description string, price int64, discount int, featured bool) bool {
			product := &domain.Product{
				ID:          uuid.New(),
				Name:        name,
				Slug:        "slug-" + uuid.New().String(),
				Description: description,
				Price:       price,
				Discount:    discount,
				CategoryID:  category.ID,
				Featured:    featured,
				CreatedAt:   time.Now(),
				UpdatedAt:   time.Now(),
			}

			if err := productRepo.Create(ctx, product); err != nil {
				t.Logf("FAIL: Failed to create product: %v", err)
				return false
			}

			retrieved, err := productRepo.FindByID(ctx, product.ID)
			if err != nil {
				t.Logf("FAIL: Failed to retrieve product: %v", err)
				return false
			}

			ok := retrieved.ID == product.ID &&
				retrieved.Name == product.Name &&
				retrieved.Slug == product.Slug &&
				retrieved.Description == product.Description &&
				retrieved.Price == product.Price &&
				retrieved.Discount == product.Discount &&
				retrieved.CategoryID == product.CategoryID &&
				retrieved.Featured == product.Featured

			if !ok {
				t.Logf("FAIL: Attribute mismatch. Expected %+v, got %+v", product, retrieved)
			}

			// Cleanup
			_ = productRepo.Delete(ctx, product.ID)

			return ok
		},
		gen.RegexMatch(`[A-Za-z0-9 ]{3,50}`),       // name
		gen.RegexMatch(`[A-Za-z0-9 .,!?]{10,200}`), // description
		gen.Int64Range(1, 100_000_000),             // price in minor units
		gen.IntRange(0, 100),                       // discount percentage
		gen.Bool(),                                 // featured
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProductDuplicateSlug(t *testing.T) {
	productRepo := NewProductRepository(testDB)
	ctx := context.Background()

	category := seedTestCategory(t)

	product := &domain.Product{
		ID:         uuid.New(),
		Name:       "Slug Holder",
		Slug:       "slug-holder",
		Price:      1000,
		CategoryID: category.ID,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	if err := productRepo.Create(ctx, product); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	duplicate := &domain.Product{
		ID:         uuid.New(),
		Name:       "Slug Holder Again",
		Slug:       "slug-holder",
		Price:      2000,
		CategoryID: category.ID,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	if err := productRepo.Create(ctx, duplicate); !errors.Is(err, ErrProductAlreadyExists) {
		t.Fatalf("Expected ErrProductAlreadyExists, got %v", err)
	}
}

func TestProductFindBySlug(t *testing.T) {
	productRepo := NewProductRepository(testDB)
	ctx := context.Background()

	product := seedTestProduct(t, "Slug Lookup")

	found, err := productRepo.FindBySlug(ctx, product.Slug)
	if err != nil {
		t.Fatalf("FindBySlug failed: %v", err)
	}
	if found.ID != product.ID {
		t.Error("FindBySlug returned wrong product")
	}

	if _, err := productRepo.FindBySlug(ctx, "no-such-slug"); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("Expected ErrProductNotFound, got %v", err)
	}
}

func TestProductSizesAndImages(t *testing.T) {
	productRepo := NewProductRepository(testDB)
	ctx := context.Background()

	product := seedTestProduct(t, "Variant Holder")
	seedTestStock(t, product.ID, "S", 1)
	seedTestStock(t, product.ID, "M", 2)

	for i, url := range []string{"https://example.com/1.jpg", "https://example.com/2.jpg"} {
		err := productRepo.AddImage(ctx, &domain.ProductImage{
			ID:        uuid.New(),
			ProductID: product.ID,
			URL:       url,
			Position:  i,
		})
		if err != nil {
			t.Fatalf("AddImage failed: %v", err)
		}
	}

	sizes, err := productRepo.Sizes(ctx, product.ID)
	if err != nil {
		t.Fatalf("Sizes failed: %v", err)
	}
	if len(sizes) != 2 {
		t.Errorf("Expected 2 sizes, got %d", len(sizes))
	}

	images, err := productRepo.Images(ctx, product.ID)
	if err != nil {
		t.Fatalf("Images failed: %v", err)
	}
	if len(images) != 2 {
		t.Fatalf("Expected 2 images, got %d", len(images))
	}
	if images[0].Position != 0 {
		t.Error("Images should be ordered by position")
	}
}

func TestProductSearch(t *testing.T) {
	productRepo := NewProductRepository(testDB)
	ctx := context.Background()

	needle := "Zephyr" + uuid.New().String()[:8]
	product := seedTestProduct(t, "Aura "+needle+" Jacket")

	results, total, err := productRepo.Search(ctx, needle, 1, 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if total != 1 || len(results) != 1 {
		t.Fatalf("Expected exactly one match, got %d", total)
	}
	if results[0].ID != product.ID {
		t.Error("Search returned wrong product")
	}
}
