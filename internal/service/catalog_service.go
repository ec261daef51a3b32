package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"catalog-api/internal/domain"
	"catalog-api/internal/pagination"
	"catalog-api/internal/repository"

	"github.com/shopspring/decimal"
)

// ProductFields carries the scalar fields of a product create request.
// Strings are trimmed before storage; Date defaults to now when nil.
type ProductFields struct {
	Name        string
	Description string
	Price       decimal.Decimal
	ImageURL    string
	Date        *time.Time
}

// UpdateProductFields carries a partial product update. A nil scalar
// leaves the stored value untouched. CategoryIDs is three-valued: nil
// leaves the association set alone, non-nil (including empty) replaces it.
type UpdateProductFields struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	ImageURL    *string
	Date        *time.Time
	CategoryIDs *[]int64
}

// CatalogService defines the business operations over products and
// categories. Category membership always follows replace-all semantics:
// a successful mutation leaves the product with exactly the resolved
// target set.
type CatalogService interface {
	CreateProduct(ctx context.Context, fields ProductFields, categoryIDs []int64) (*domain.Product, error)
	CreateProductByNames(ctx context.Context, fields ProductFields, categoryNames []string) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, fields UpdateProductFields) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	ListProducts(ctx context.Context, page, pageSize int) (*pagination.Page[domain.Product], error)

	CreateCategory(ctx context.Context, name string) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id int64, name string) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
	GetCategory(ctx context.Context, id int64) (*domain.Category, error)
	ListCategories(ctx context.Context, page, pageSize int) (*pagination.Page[domain.Category], error)
}

type catalogService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	now          func() time.Time
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(productRepo repository.ProductRepository, categoryRepo repository.CategoryRepository) CatalogService {
	return &catalogService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		now:          time.Now,
	}
}

// resolveCategory returns the category whose identity key (trimmed,
// case-folded name) matches rawName, creating it when it does not exist.
// If a concurrent caller wins the create race, the unique-constraint
// conflict is swallowed and the now-existing row is re-read; after one
// conflict the identity is guaranteed to exist, so a single retry is
// enough. rawName must not be blank; callers filter blanks beforehand.
func (s *catalogService) resolveCategory(ctx context.Context, rawName string) (*domain.Category, error) {
	name := strings.TrimSpace(rawName)

	existing, err := s.categoryRepo.FindByNameCaseInsensitive(ctx, name)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	category := &domain.Category{Name: capitalizeFirst(strings.ToLower(name))}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			// Lost the first-use race; the row exists now.
			return s.categoryRepo.FindByNameCaseInsensitive(ctx, name)
		}
		return nil, err
	}

	return category, nil
}

// reconcileByIDs replaces the product's category membership with the
// categories named by ids. Closed-world: every id must already exist, and
// the error names all missing ids, not just the first.
func (s *catalogService) reconcileByIDs(ctx context.Context, product *domain.Product, ids []int64) error {
	product.Categories = []domain.Category{}
	if len(ids) == 0 {
		return nil
	}

	found, err := s.categoryRepo.FindAllByIDs(ctx, ids)
	if err != nil {
		return err
	}

	foundIDs := make(map[int64]bool, len(found))
	for _, c := range found {
		foundIDs[c.ID] = true
	}

	var missing []int64
	reported := make(map[int64]bool)
	for _, id := range ids {
		if !foundIDs[id] && !reported[id] {
			missing = append(missing, id)
			reported[id] = true
		}
	}
	if len(missing) > 0 {
		return &domain.UnknownReferenceError{IDs: missing}
	}

	product.Categories = found
	return nil
}

// reconcileByNames replaces the product's category membership with one
// category per distinct normalized name, in first-seen order. Open-world:
// unknown names are created via resolveCategory, never rejected.
func (s *catalogService) reconcileByNames(ctx context.Context, product *domain.Product, names []string) error {
	product.Categories = []domain.Category{}

	seen := make(map[string]bool)
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true

		category, err := s.resolveCategory(ctx, name)
		if err != nil {
			return err
		}
		product.Categories = append(product.Categories, *category)
	}

	return nil
}

// CreateProduct creates a product associated with pre-existing categories.
func (s *catalogService) CreateProduct(ctx context.Context, fields ProductFields, categoryIDs []int64) (*domain.Product, error) {
	product, err := s.newProduct(fields)
	if err != nil {
		return nil, err
	}

	if err := s.reconcileByIDs(ctx, product, categoryIDs); err != nil {
		return nil, err
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, classifyError(err, "product", 0)
	}

	return product, nil
}

// CreateProductByNames creates a product associated with categories by
// name, creating any that do not exist yet.
func (s *catalogService) CreateProductByNames(ctx context.Context, fields ProductFields, categoryNames []string) (*domain.Product, error) {
	product, err := s.newProduct(fields)
	if err != nil {
		return nil, err
	}

	if err := s.reconcileByNames(ctx, product, categoryNames); err != nil {
		return nil, err
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, classifyError(err, "product", 0)
	}

	return product, nil
}

// UpdateProduct applies a partial update. Only non-nil scalar fields are
// re-applied; the category set is replaced only when CategoryIDs is
// present, where an explicitly empty list clears all membership.
func (s *catalogService) UpdateProduct(ctx context.Context, id int64, fields UpdateProductFields) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, classifyError(err, "product", id)
	}

	if fields.Name != nil {
		name, err := requireNonBlank("name", *fields.Name)
		if err != nil {
			return nil, err
		}
		product.Name = name
	}
	if fields.Description != nil {
		description, err := requireNonBlank("description", *fields.Description)
		if err != nil {
			return nil, err
		}
		product.Description = description
	}
	if fields.Price != nil {
		product.Price = *fields.Price
	}
	if fields.ImageURL != nil {
		product.ImageURL = strings.TrimSpace(*fields.ImageURL)
	}
	if fields.Date != nil {
		product.Date = *fields.Date
	}

	replaceCategories := fields.CategoryIDs != nil
	if replaceCategories {
		if err := s.reconcileByIDs(ctx, product, *fields.CategoryIDs); err != nil {
			return nil, err
		}
	}

	if err := s.productRepo.Update(ctx, product, replaceCategories); err != nil {
		return nil, classifyError(err, "product", id)
	}

	return product, nil
}

// DeleteProduct removes a product and its category associations.
func (s *catalogService) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return classifyError(err, "product", id)
	}
	return nil
}

// GetProduct retrieves a product by id.
func (s *catalogService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, classifyError(err, "product", id)
	}
	return product, nil
}

// ListProducts retrieves one page of products.
func (s *catalogService) ListProducts(ctx context.Context, page, pageSize int) (*pagination.Page[domain.Product], error) {
	products, total, err := s.productRepo.List(ctx, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return pagination.NewPage(products, page, pageSize, total), nil
}

// CreateCategory creates a category with the trimmed name as given; unlike
// name resolution it does not rewrite casing. A name that is blank after
// trimming is rejected, never stored.
func (s *catalogService) CreateCategory(ctx context.Context, name string) (*domain.Category, error) {
	trimmed, err := requireNonBlank("name", name)
	if err != nil {
		return nil, err
	}

	category := &domain.Category{Name: trimmed}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, classifyError(err, "category", 0)
	}
	return category, nil
}

// UpdateCategory renames a category. Blank-after-trim names are rejected.
func (s *catalogService) UpdateCategory(ctx context.Context, id int64, name string) (*domain.Category, error) {
	trimmed, err := requireNonBlank("name", name)
	if err != nil {
		return nil, err
	}

	category := &domain.Category{ID: id, Name: trimmed}
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, classifyError(err, "category", id)
	}
	return category, nil
}

// DeleteCategory removes a category. Categories still referenced by a
// product cannot be deleted; that surfaces as a ConflictError.
func (s *catalogService) DeleteCategory(ctx context.Context, id int64) error {
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return classifyError(err, "category", id)
	}
	return nil
}

// GetCategory retrieves a category by id.
func (s *catalogService) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, classifyError(err, "category", id)
	}
	return category, nil
}

// ListCategories retrieves one page of categories.
func (s *catalogService) ListCategories(ctx context.Context, page, pageSize int) (*pagination.Page[domain.Category], error) {
	categories, total, err := s.categoryRepo.List(ctx, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return pagination.NewPage(categories, page, pageSize, total), nil
}

func (s *catalogService) newProduct(fields ProductFields) (*domain.Product, error) {
	name, err := requireNonBlank("name", fields.Name)
	if err != nil {
		return nil, err
	}
	description, err := requireNonBlank("description", fields.Description)
	if err != nil {
		return nil, err
	}

	date := s.now()
	if fields.Date != nil {
		date = *fields.Date
	}

	return &domain.Product{
		Name:        name,
		Description: description,
		Price:       fields.Price,
		ImageURL:    strings.TrimSpace(fields.ImageURL),
		Date:        date,
		Categories:  []domain.Category{},
	}, nil
}

// requireNonBlank trims the value and rejects it when nothing remains.
// Catalog names and descriptions are never stored blank.
func requireNonBlank(field, value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", &domain.InvalidInputError{Field: field, Detail: "must not be blank"}
	}
	return trimmed, nil
}

// classifyError shapes a storage outcome into a domain error carrying the
// entity kind and, where known, the requested id. Unclassified failures
// pass through untouched.
func classifyError(err error, entity string, id int64) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return &domain.NotFoundError{Entity: entity, ID: id}
	case errors.Is(err, repository.ErrDuplicateEntry):
		return &domain.DuplicateEntryError{Entity: entity, Detail: "name must be unique"}
	case errors.Is(err, repository.ErrConflict):
		return &domain.ConflictError{Detail: fmt.Sprintf("%s is still referenced", entity)}
	}
	return err
}

// capitalizeFirst upper-cases only the first rune; multi-word names keep
// the rest of the string as-is.
func capitalizeFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError && size <= 1 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
