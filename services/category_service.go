package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/league-system/models"
	"github.com/Dosada05/league-system/repositories"
)

type CategoryInput struct {
	Name       string `json:"name"`
	SeasonYear int    `json:"season_year"`
}

func (in CategoryInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: category name is required", ErrValidationFailed)
	}
	if in.SeasonYear < 2000 || in.SeasonYear > 2100 {
		return fmt.Errorf("%w: season year %d is out of range", ErrValidationFailed, in.SeasonYear)
	}
	return nil
}

type CategoryService interface {
	Create(ctx context.Context, input CategoryInput) (*models.Category, error)
	Get(ctx context.Context, id int) (*models.Category, error)
	List(ctx context.Context) ([]*models.Category, error)
	Update(ctx context.Context, id int, input CategoryInput) (*models.Category, error)
	Delete(ctx context.Context, id int) error
	MoveUp(ctx context.Context, id int) error
	MoveDown(ctx context.Context, id int) error
}

type categoryService struct {
	db           *sql.DB
	categoryRepo repositories.CategoryRepository
	logger       *slog.Logger
}

func NewCategoryService(db *sql.DB, categoryRepo repositories.CategoryRepository, logger *slog.Logger) CategoryService {
	return &categoryService{db: db, categoryRepo: categoryRepo, logger: logger}
}

func (s *categoryService) Create(ctx context.Context, input CategoryInput) (*models.Category, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	category := &models.Category{Name: strings.TrimSpace(input.Name), SeasonYear: input.SeasonYear}
	err := runInTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		next, err := s.categoryRepo.NextDisplayOrder(ctx, tx, category.SeasonYear)
		if err != nil {
			return err
		}
		category.DisplayOrder = next
		return handleRepositoryError(s.categoryRepo.Create(ctx, tx, category), "create category")
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

func (s *categoryService) Get(ctx context.Context, id int) (*models.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, handleRepositoryError(err, "get category")
	}
	return category, nil
}

func (s *categoryService) List(ctx context.Context) ([]*models.Category, error) {
	categories, err := s.categoryRepo.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return emptyIfNil(categories), nil
}

func (s *categoryService) Update(ctx context.Context, id int, input CategoryInput) (*models.Category, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	category, err := s.categoryRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, handleRepositoryError(err, "update category: load")
	}
	category.Name = strings.TrimSpace(input.Name)
	category.SeasonYear = input.SeasonYear
	if err := s.categoryRepo.Update(ctx, nil, category); err != nil {
		return nil, handleRepositoryError(err, "update category")
	}
	return category, nil
}

func (s *categoryService) Delete(ctx context.Context, id int) error {
	return handleRepositoryError(s.categoryRepo.Delete(ctx, nil, id), "delete category")
}

func (s *categoryService) MoveUp(ctx context.Context, id int) error {
	return s.swapWithNeighbour(ctx, id, true)
}

func (s *categoryService) MoveDown(ctx context.Context, id int) error {
	return s.swapWithNeighbour(ctx, id, false)
}

// swapWithNeighbour меняет display_order с соседом внутри сезона.
// На краю списка ничего не делает.
func (s *categoryService) swapWithNeighbour(ctx context.Context, id int, before bool) error {
	return runInTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		category, err := s.categoryRepo.GetByID(ctx, tx, id)
		if err != nil {
			return handleRepositoryError(err, "move category: load")
		}
		neighbour, err := s.categoryRepo.Neighbour(ctx, tx, category, before)
		if errors.Is(err, repositories.ErrCategoryNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("move category: load neighbour: %w", err)
		}
		if err := s.categoryRepo.UpdateDisplayOrder(ctx, tx, category.ID, neighbour.DisplayOrder); err != nil {
			return handleRepositoryError(err, "move category")
		}
		return handleRepositoryError(s.categoryRepo.UpdateDisplayOrder(ctx, tx, neighbour.ID, category.DisplayOrder), "move neighbour category")
	})
}
