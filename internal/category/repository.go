package category

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound      = errors.New("category not found")
	ErrDuplicateName = errors.New("a category with this name already exists")
	ErrReferenced    = errors.New("category is referenced by products")
)

// ReferencedError reports a delete blocked by products that still point
// at the category.
type ReferencedError struct {
	Name     string
	Products int64
}

func (e *ReferencedError) Error() string {
	return fmt.Sprintf("Cannot delete category %q as it has %d associated products.", e.Name, e.Products)
}

type Repository interface {
	Create(ctx context.Context, c *Category) error
	List(ctx context.Context) ([]Category, error)
	GetByID(ctx context.Context, id int64) (*Category, error)
	Update(ctx context.Context, c *Category) error
	Delete(ctx context.Context, id int64) error
	CountProducts(ctx context.Context, categoryID int64) (int64, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, c *Category) error {
	query := `
		INSERT INTO categories (name, description, image_url)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query, c.Name, c.Description, c.ImageURL).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateName
		}
		return fmt.Errorf("repository: failed to insert category: %w", err)
	}

	return nil
}

func (r *postgresRepository) List(ctx context.Context) ([]Category, error) {
	query := `
		SELECT id, name, description, image_url, created_at, updated_at
		FROM categories
		ORDER BY name ASC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := make([]Category, 0)
	for rows.Next() {
		var c Category
		err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.ImageURL, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating categories: %w", err)
	}

	return categories, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*Category, error) {
	query := `
		SELECT id, name, description, image_url, created_at, updated_at
		FROM categories
		WHERE id = $1
	`

	var c Category
	err := r.db.QueryRow(ctx, query, id).
		Scan(&c.ID, &c.Name, &c.Description, &c.ImageURL, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select category by id %d: %w", id, err)
	}

	return &c, nil
}

func (r *postgresRepository) Update(ctx context.Context, c *Category) error {
	query := `
		UPDATE categories
		SET name = $1, description = $2, image_url = $3, updated_at = now()
		WHERE id = $4
		RETURNING updated_at
	`

	err := r.db.QueryRow(ctx, query, c.Name, c.Description, c.ImageURL, c.ID).
		Scan(&c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if isUniqueViolation(err) {
			return ErrDuplicateName
		}
		return fmt.Errorf("repository: failed to update category %d: %w", c.ID, err)
	}

	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrReferenced
		}
		return fmt.Errorf("repository: failed to delete category %d: %w", id, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *postgresRepository) CountProducts(ctx context.Context, categoryID int64) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM products WHERE category_id = $1`, categoryID).
		Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("repository: failed to count products for category %d: %w", categoryID, err)
	}

	return count, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
