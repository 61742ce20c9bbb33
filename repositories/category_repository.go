package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/league-system/models"
)

var (
	ErrCategoryNotFound     = errors.New("category not found")
	ErrCategoryNameConflict = errors.New("category name already exists for this season")
	ErrCategoryInUse        = errors.New("category is referenced by players or rounds")
)

type CategoryRepository interface {
	Create(ctx context.Context, exec SQLExecutor, category *models.Category) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Category, error)
	List(ctx context.Context, exec SQLExecutor) ([]*models.Category, error)
	Update(ctx context.Context, exec SQLExecutor, category *models.Category) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
	// Neighbour returns the category right above (before) or below (after)
	// the given one in display order within the same season.
	Neighbour(ctx context.Context, exec SQLExecutor, category *models.Category, before bool) (*models.Category, error)
	UpdateDisplayOrder(ctx context.Context, exec SQLExecutor, id, displayOrder int) error
	NextDisplayOrder(ctx context.Context, exec SQLExecutor, seasonYear int) (int, error)
}

type postgresCategoryRepository struct {
	db *sql.DB
}

func NewPostgresCategoryRepository(db *sql.DB) CategoryRepository {
	return &postgresCategoryRepository{db: db}
}

func (r *postgresCategoryRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const categoryColumns = `id, name, season_year, display_order, created_at, updated_at`

func scanCategory(row rowScanner) (*models.Category, error) {
	var c models.Category
	err := row.Scan(&c.ID, &c.Name, &c.SeasonYear, &c.DisplayOrder, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *postgresCategoryRepository) Create(ctx context.Context, exec SQLExecutor, category *models.Category) error {
	query := `
		INSERT INTO categories (name, season_year, display_order)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`
	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		category.Name, category.SeasonYear, category.DisplayOrder,
	).Scan(&category.ID, &category.CreatedAt, &category.UpdatedAt)
	return r.handleCategoryError(err)
}

func (r *postgresCategoryRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`
	c, err := scanCategory(r.getExecutor(exec).QueryRowContext(ctx, query, id))
	if err != nil && !errors.Is(err, ErrCategoryNotFound) {
		return nil, fmt.Errorf("failed to scan category by id %d: %w", id, err)
	}
	return c, err
}

func (r *postgresCategoryRepository) List(ctx context.Context, exec SQLExecutor) ([]*models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories ORDER BY season_year DESC, display_order ASC, id ASC`
	rows, err := r.getExecutor(exec).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := make([]*models.Category, 0)
	for rows.Next() {
		c, scanErr := scanCategory(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan category row: %w", scanErr)
		}
		categories = append(categories, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during category rows iteration: %w", err)
	}
	return categories, nil
}

func (r *postgresCategoryRepository) Update(ctx context.Context, exec SQLExecutor, category *models.Category) error {
	query := `
		UPDATE categories
		SET name = $1, season_year = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING updated_at`
	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		category.Name, category.SeasonYear, category.ID,
	).Scan(&category.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrCategoryNotFound
	}
	return r.handleCategoryError(err)
}

func (r *postgresCategoryRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	result, err := r.getExecutor(exec).ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return r.handleCategoryError(err)
	}
	return checkAffectedRows(result, ErrCategoryNotFound)
}

func (r *postgresCategoryRepository) Neighbour(ctx context.Context, exec SQLExecutor, category *models.Category, before bool) (*models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories
		WHERE season_year = $1 AND display_order > $2
		ORDER BY display_order ASC LIMIT 1`
	if before {
		query = `SELECT ` + categoryColumns + ` FROM categories
		WHERE season_year = $1 AND display_order < $2
		ORDER BY display_order DESC LIMIT 1`
	}
	return scanCategory(r.getExecutor(exec).QueryRowContext(ctx, query, category.SeasonYear, category.DisplayOrder))
}

func (r *postgresCategoryRepository) UpdateDisplayOrder(ctx context.Context, exec SQLExecutor, id, displayOrder int) error {
	query := `UPDATE categories SET display_order = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, displayOrder, id)
	if err != nil {
		return fmt.Errorf("failed to update display order of category %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrCategoryNotFound)
}

func (r *postgresCategoryRepository) NextDisplayOrder(ctx context.Context, exec SQLExecutor, seasonYear int) (int, error) {
	var next int
	query := `SELECT COALESCE(MAX(display_order), 0) + 1 FROM categories WHERE season_year = $1`
	if err := r.getExecutor(exec).QueryRowContext(ctx, query, seasonYear).Scan(&next); err != nil {
		return 0, fmt.Errorf("failed to compute next display order: %w", err)
	}
	return next, nil
}

func (r *postgresCategoryRepository) handleCategoryError(err error) error {
	if err == nil {
		return nil
	}
	switch code, _ := pqErrorCode(err); code {
	case pqUniqueViolation:
		return ErrCategoryNameConflict
	case pqForeignKeyViolation:
		return ErrCategoryInUse
	}
	return err
}
