package repository

import (
	"context"
	"database/sql"
	"fmt"

	"catalog-api/internal/domain"
)

// CategoryRepository defines the interface for category data access
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	Update(ctx context.Context, category *domain.Category) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*domain.Category, error)
	FindAllByIDs(ctx context.Context, ids []int64) ([]domain.Category, error)
	FindByNameCaseInsensitive(ctx context.Context, name string) (*domain.Category, error)
	ExistsByNameCaseInsensitive(ctx context.Context, name string) (bool, error)
	List(ctx context.Context, page, pageSize int) ([]domain.Category, int64, error)
}

type categoryRepository struct {
	db *sql.DB
}

// NewCategoryRepository creates a new instance of CategoryRepository
func NewCategoryRepository(db *sql.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

// Create inserts a new category. A name colliding case-insensitively with
// an existing row surfaces as ErrDuplicateEntry.
func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) error {
	query := `
		INSERT INTO categories (name)
		VALUES ($1)
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query, category.Name).Scan(&category.ID)
	if err != nil {
		return translateError("create category", err)
	}

	return nil
}

// Update renames an existing category.
func (r *categoryRepository) Update(ctx context.Context, category *domain.Category) error {
	query := `UPDATE categories SET name = $2 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, category.ID, category.Name)
	if err != nil {
		return translateError("update category", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update category: failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("update category: %w", ErrNotFound)
	}

	return nil
}

// Delete removes a category. Deleting a category still referenced by a
// product violates the join-table foreign key and surfaces as ErrConflict.
func (r *categoryRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM categories WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return translateError("delete category", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete category: failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("delete category: %w", ErrNotFound)
	}

	return nil
}

// FindByID retrieves a category by ID using parameterized queries
func (r *categoryRepository) FindByID(ctx context.Context, id int64) (*domain.Category, error) {
	query := `SELECT id, name FROM categories WHERE id = $1`

	category := &domain.Category{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&category.ID, &category.Name)
	if err != nil {
		return nil, translateError("find category by id", err)
	}

	return category, nil
}

// FindAllByIDs batch-fetches categories. Ids with no matching row are
// simply absent from the result; the caller decides whether that is an error.
func (r *categoryRepository) FindAllByIDs(ctx context.Context, ids []int64) ([]domain.Category, error) {
	if len(ids) == 0 {
		return []domain.Category{}, nil
	}

	query := `SELECT id, name FROM categories WHERE id = ANY($1) ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, ids)
	if err != nil {
		return nil, translateError("find categories by ids", err)
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		var category domain.Category
		if err := rows.Scan(&category.ID, &category.Name); err != nil {
			return nil, fmt.Errorf("find categories by ids: failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("find categories by ids: error iterating categories: %w", err)
	}

	return categories, nil
}

// FindByNameCaseInsensitive looks a category up by its identity key (the
// trimmed, case-folded name). The stored casing is returned unchanged.
func (r *categoryRepository) FindByNameCaseInsensitive(ctx context.Context, name string) (*domain.Category, error) {
	query := `SELECT id, name FROM categories WHERE LOWER(name) = LOWER($1)`

	category := &domain.Category{}
	err := r.db.QueryRowContext(ctx, query, name).Scan(&category.ID, &category.Name)
	if err != nil {
		return nil, translateError("find category by name", err)
	}

	return category, nil
}

// ExistsByNameCaseInsensitive reports whether a category with the given
// identity key exists.
func (r *categoryRepository) ExistsByNameCaseInsensitive(ctx context.Context, name string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM categories WHERE LOWER(name) = LOWER($1))`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, name).Scan(&exists); err != nil {
		return false, translateError("category exists by name", err)
	}

	return exists, nil
}

// List retrieves one page of categories ordered by name, plus the total
// row count. Page numbering is zero-based.
func (r *categoryRepository) List(ctx context.Context, page, pageSize int) ([]domain.Category, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&total); err != nil {
		return nil, 0, translateError("count categories", err)
	}

	query := `
		SELECT id, name
		FROM categories
		ORDER BY name ASC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, pageSize, page*pageSize)
	if err != nil {
		return nil, 0, translateError("list categories", err)
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		var category domain.Category
		if err := rows.Scan(&category.ID, &category.Name); err != nil {
			return nil, 0, fmt.Errorf("list categories: failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list categories: error iterating categories: %w", err)
	}

	return categories, total, nil
}
