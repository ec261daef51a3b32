package repository

import (
	"context"
	"database/sql"
	"fmt"

	"catalog-api/internal/domain"
)

// ProductRepository defines the interface for product data access. Create
// and Update persist the product's category set with clear-and-assign
// semantics inside a single transaction: a concurrent reader sees either
// the old set or the new one, never a partial union.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product, replaceCategories bool) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context, page, pageSize int) ([]domain.Product, int64, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

// Create inserts the product row and its category associations atomically.
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("create product: failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO products (name, description, price, image_url, date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err = tx.QueryRowContext(
		ctx,
		query,
		product.Name,
		product.Description,
		product.Price,
		nullString(product.ImageURL),
		product.Date,
	).Scan(&product.ID)
	if err != nil {
		return translateError("create product", err)
	}

	if err := replaceCategoryLinks(ctx, tx, product.ID, product.CategoryIDs()); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return translateError("create product", err)
	}

	return nil
}

// Update rewrites the product row and, when replaceCategories is set,
// clears and re-inserts the category associations in the same transaction.
func (r *productRepository) Update(ctx context.Context, product *domain.Product, replaceCategories bool) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("update product: failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE products
		SET name = $2, description = $3, price = $4, image_url = $5, date = $6
		WHERE id = $1
	`

	result, err := tx.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Description,
		product.Price,
		nullString(product.ImageURL),
		product.Date,
	)
	if err != nil {
		return translateError("update product", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update product: failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("update product: %w", ErrNotFound)
	}

	if replaceCategories {
		if err := replaceCategoryLinks(ctx, tx, product.ID, product.CategoryIDs()); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return translateError("update product", err)
	}

	return nil
}

// Delete removes a product; join rows go with it via ON DELETE CASCADE.
func (r *productRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return translateError("delete product", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete product: failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("delete product: %w", ErrNotFound)
	}

	return nil
}

// FindByID retrieves a product together with its category set.
func (r *productRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := `
		SELECT id, name, description, price, COALESCE(image_url, ''), date
		FROM products
		WHERE id = $1
	`

	product := &domain.Product{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.ImageURL,
		&product.Date,
	)
	if err != nil {
		return nil, translateError("find product by id", err)
	}

	categories, err := r.categoriesFor(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	product.Categories = categories[id]
	if product.Categories == nil {
		product.Categories = []domain.Category{}
	}

	return product, nil
}

// List retrieves one page of products ordered by name, with their category
// sets, plus the total row count. Page numbering is zero-based.
func (r *productRepository) List(ctx context.Context, page, pageSize int) ([]domain.Product, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&total); err != nil {
		return nil, 0, translateError("count products", err)
	}

	query := `
		SELECT id, name, description, price, COALESCE(image_url, ''), date
		FROM products
		ORDER BY name ASC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, pageSize, page*pageSize)
	if err != nil {
		return nil, 0, translateError("list products", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	ids := []int64{}
	for rows.Next() {
		var product domain.Product
		err := rows.Scan(
			&product.ID,
			&product.Name,
			&product.Description,
			&product.Price,
			&product.ImageURL,
			&product.Date,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("list products: failed to scan product: %w", err)
		}
		products = append(products, product)
		ids = append(ids, product.ID)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list products: error iterating products: %w", err)
	}

	categories, err := r.categoriesFor(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range products {
		products[i].Categories = categories[products[i].ID]
		if products[i].Categories == nil {
			products[i].Categories = []domain.Category{}
		}
	}

	return products, total, nil
}

// categoriesFor loads the category sets for the given product ids in one
// round trip, keyed by product id.
func (r *productRepository) categoriesFor(ctx context.Context, productIDs []int64) (map[int64][]domain.Category, error) {
	result := make(map[int64][]domain.Category, len(productIDs))
	if len(productIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT pc.product_id, c.id, c.name
		FROM product_categories pc
		JOIN categories c ON c.id = pc.category_id
		WHERE pc.product_id = ANY($1)
		ORDER BY c.id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, productIDs)
	if err != nil {
		return nil, translateError("load product categories", err)
	}
	defer rows.Close()

	for rows.Next() {
		var productID int64
		var category domain.Category
		if err := rows.Scan(&productID, &category.ID, &category.Name); err != nil {
			return nil, fmt.Errorf("load product categories: failed to scan row: %w", err)
		}
		result[productID] = append(result[productID], category)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("load product categories: error iterating rows: %w", err)
	}

	return result, nil
}

// replaceCategoryLinks clears the product's join rows and inserts the new
// set. Runs inside the caller's transaction so clear and assign are never
// observed separately.
func replaceCategoryLinks(ctx context.Context, tx *sql.Tx, productID int64, categoryIDs []int64) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM product_categories WHERE product_id = $1`, productID); err != nil {
		return translateError("clear product categories", err)
	}

	for _, categoryID := range categoryIDs {
		_, err := tx.ExecContext(
			ctx,
			`INSERT INTO product_categories (product_id, category_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			productID,
			categoryID,
		)
		if err != nil {
			return translateError("assign product category", err)
		}
	}

	return nil
}

// nullString maps the empty string to SQL NULL for optional columns.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
