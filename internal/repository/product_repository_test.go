package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"catalog-api/internal/domain"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
)

func TestProductCreate_RoundTripsWithCategorySet(t *testing.T) {
	resetCatalog(t)
	categoryRepo := NewCategoryRepository(testDB)
	productRepo := NewProductRepository(testDB)
	ctx := context.Background()

	a := mustCreateCategory(t, categoryRepo, "Eletrônicos")
	b := mustCreateCategory(t, categoryRepo, "Jogos")

	date := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	product := &domain.Product{
		Name:        "Console",
		Description: "8K console",
		Price:       decimal.RequireFromString("3999.90"),
		ImageURL:    "https://cdn.example.com/console.png",
		Date:        date,
		Categories:  []domain.Category{*a, *b},
	}
	if err := productRepo.Create(ctx, product); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	found, err := productRepo.FindByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if found.Name != "Console" || found.Description != "8K console" {
		t.Errorf("Scalar fields not preserved: %+v", found)
	}
	if !found.Price.Equal(product.Price) {
		t.Errorf("Expected price %s, got %s", product.Price, found.Price)
	}
	if found.ImageURL != product.ImageURL {
		t.Errorf("Expected image url %q, got %q", product.ImageURL, found.ImageURL)
	}
	if !found.Date.Equal(date) {
		t.Errorf("Expected date %s, got %s", date, found.Date)
	}
	if len(found.Categories) != 2 {
		t.Fatalf("Expected 2 categories, got %+v", found.Categories)
	}
}

func TestProductCreate_EmptyImageURLReadsBackEmpty(t *testing.T) {
	resetCatalog(t)
	productRepo := NewProductRepository(testDB)

	product := mustCreateProduct(t, productRepo, "TV", nil)

	found, err := productRepo.FindByID(context.Background(), product.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if found.ImageURL != "" {
		t.Errorf("Expected empty image url, got %q", found.ImageURL)
	}
	if found.Categories == nil || len(found.Categories) != 0 {
		t.Errorf("Expected an empty category slice, got %#v", found.Categories)
	}
}

func TestProductUpdate_ReplacesCategorySet(t *testing.T) {
	resetCatalog(t)
	categoryRepo := NewCategoryRepository(testDB)
	productRepo := NewProductRepository(testDB)
	ctx := context.Background()

	a := mustCreateCategory(t, categoryRepo, "Eletrônicos")
	b := mustCreateCategory(t, categoryRepo, "Jogos")
	product := mustCreateProduct(t, productRepo, "Console", []domain.Category{*a})

	product.Categories = []domain.Category{*b}
	if err := productRepo.Update(ctx, product, true); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	found, err := productRepo.FindByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if len(found.Categories) != 1 || found.Categories[0].ID != b.ID {
		t.Errorf("Expected the set to be replaced by Jogos, got %+v", found.Categories)
	}
}

func TestProductUpdate_WithoutReplaceKeepsCategorySet(t *testing.T) {
	resetCatalog(t)
	categoryRepo := NewCategoryRepository(testDB)
	productRepo := NewProductRepository(testDB)
	ctx := context.Background()

	a := mustCreateCategory(t, categoryRepo, "Eletrônicos")
	product := mustCreateProduct(t, productRepo, "Console", []domain.Category{*a})

	product.Name = "Console Pro"
	product.Categories = nil
	if err := productRepo.Update(ctx, product, false); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	found, err := productRepo.FindByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if found.Name != "Console Pro" {
		t.Errorf("Expected the rename to land, got %q", found.Name)
	}
	if len(found.Categories) != 1 || found.Categories[0].ID != a.ID {
		t.Errorf("Expected the category set untouched, got %+v", found.Categories)
	}
}

func TestProductDelete_CascadesJoinRows(t *testing.T) {
	resetCatalog(t)
	categoryRepo := NewCategoryRepository(testDB)
	productRepo := NewProductRepository(testDB)
	ctx := context.Background()

	a := mustCreateCategory(t, categoryRepo, "Eletrônicos")
	product := mustCreateProduct(t, productRepo, "TV", []domain.Category{*a})

	if err := productRepo.Delete(ctx, product.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	var joinRows int
	if err := testDB.QueryRow(`SELECT COUNT(*) FROM product_categories WHERE product_id = $1`, product.ID).Scan(&joinRows); err != nil {
		t.Fatalf("Failed to count join rows: %v", err)
	}
	if joinRows != 0 {
		t.Errorf("Expected join rows to cascade, found %d", joinRows)
	}

	// The category itself survives.
	if _, err := categoryRepo.FindByID(ctx, a.ID); err != nil {
		t.Errorf("Category should survive product deletion: %v", err)
	}

	if _, err := productRepo.FindByID(ctx, product.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after deletion, got %v", err)
	}
}

func TestProperty_ReplaceCategoryLinksMatchesRequestedSubset(t *testing.T) {
	resetCatalog(t)
	categoryRepo := NewCategoryRepository(testDB)
	productRepo := NewProductRepository(testDB)
	ctx := context.Background()

	pool := make([]domain.Category, 0, 5)
	for _, name := range []string{"Acessórios", "Eletrônicos", "Jogos", "Livros", "Móveis"} {
		pool = append(pool, *mustCreateCategory(t, categoryRepo, name))
	}
	product := mustCreateProduct(t, productRepo, "Console", nil)

	properties := gopter.NewProperties(nil)

	properties.Property("the stored set equals the requested subset after update", prop.ForAll(
		func(membership []bool) bool {
			want := []domain.Category{}
			for i, include := range membership {
				if include {
					want = append(want, pool[i])
				}
			}

			product.Categories = want
			if err := productRepo.Update(ctx, product, true); err != nil {
				t.Logf("FAIL: Update: %v", err)
				return false
			}

			found, err := productRepo.FindByID(ctx, product.ID)
			if err != nil {
				t.Logf("FAIL: FindByID: %v", err)
				return false
			}
			if len(found.Categories) != len(want) {
				return false
			}

			wantIDs := make(map[int64]bool, len(want))
			for _, c := range want {
				wantIDs[c.ID] = true
			}
			for _, c := range found.Categories {
				if !wantIDs[c.ID] {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(5, gen.Bool()),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
