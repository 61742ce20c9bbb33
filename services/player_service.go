package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/league-system/models"
	"github.com/Dosada05/league-system/repositories"
	"github.com/Dosada05/league-system/utils"
)

type PlayerInput struct {
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	Email      string  `json:"email"`
	Phone      *string `json:"phone,omitempty"`
	Notes      *string `json:"notes,omitempty"`
	CategoryID int     `json:"category_id"`
}

func (in *PlayerInput) normalize() error {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.FirstName == "" || in.LastName == "" {
		return fmt.Errorf("%w: first and last name are required", ErrValidationFailed)
	}
	if !utils.IsValidEmail(in.Email) {
		return fmt.Errorf("%w: invalid email %q", ErrValidationFailed, in.Email)
	}
	if in.CategoryID <= 0 {
		return fmt.Errorf("%w: category is required", ErrValidationFailed)
	}
	if in.Phone != nil && strings.TrimSpace(*in.Phone) == "" {
		in.Phone = nil
	}
	if in.Notes != nil && strings.TrimSpace(*in.Notes) == "" {
		in.Notes = nil
	}
	return nil
}

// CategoryRoster разделяет игроков категории по статусу.
type CategoryRoster struct {
	Active   []*models.Player `json:"active"`
	Inactive []*models.Player `json:"inactive"`
}

type PlayerService interface {
	Create(ctx context.Context, input PlayerInput) (*models.Player, error)
	Get(ctx context.Context, id int) (*models.Player, error)
	Update(ctx context.Context, id int, input PlayerInput) (*models.Player, error)
	Deactivate(ctx context.Context, id int) (*models.Player, error)
	Reactivate(ctx context.Context, id int) (*models.Player, error)
	ListByCategory(ctx context.Context, categoryID int) (*CategoryRoster, error)
}

type playerService struct {
	categoryRepo repositories.CategoryRepository
	playerRepo   repositories.PlayerRepository
	logger       *slog.Logger
	now          func() time.Time
}

func NewPlayerService(categoryRepo repositories.CategoryRepository, playerRepo repositories.PlayerRepository, logger *slog.Logger) PlayerService {
	return &playerService{
		categoryRepo: categoryRepo,
		playerRepo:   playerRepo,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *playerService) Create(ctx context.Context, input PlayerInput) (*models.Player, error) {
	if err := input.normalize(); err != nil {
		return nil, err
	}
	if _, err := s.categoryRepo.GetByID(ctx, nil, input.CategoryID); err != nil {
		return nil, handleRepositoryError(err, "create player: load category")
	}
	player := &models.Player{
		FirstName:         input.FirstName,
		LastName:          input.LastName,
		Email:             input.Email,
		Phone:             input.Phone,
		Notes:             input.Notes,
		Status:            models.PlayerStatusActive,
		InitialCategoryID: input.CategoryID,
		CurrentCategoryID: input.CategoryID,
	}
	if err := s.playerRepo.Create(ctx, nil, player); err != nil {
		return nil, handleRepositoryError(err, "create player")
	}
	s.logger.InfoContext(ctx, "player created", slog.Int("player_id", player.ID), slog.Int("category_id", player.CurrentCategoryID))
	return player, nil
}

func (s *playerService) Get(ctx context.Context, id int) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, handleRepositoryError(err, "get player")
	}
	return player, nil
}

func (s *playerService) Update(ctx context.Context, id int, input PlayerInput) (*models.Player, error) {
	if err := input.normalize(); err != nil {
		return nil, err
	}
	player, err := s.playerRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, handleRepositoryError(err, "update player: load")
	}
	player.FirstName = input.FirstName
	player.LastName = input.LastName
	player.Email = input.Email
	player.Phone = input.Phone
	player.Notes = input.Notes
	player.CurrentCategoryID = input.CategoryID
	if err := s.playerRepo.Update(ctx, nil, player); err != nil {
		return nil, handleRepositoryError(err, "update player")
	}
	return player, nil
}

func (s *playerService) Deactivate(ctx context.Context, id int) (*models.Player, error) {
	now := s.now().UTC()
	return s.setStatus(ctx, id, models.PlayerStatusInactive, &now)
}

func (s *playerService) Reactivate(ctx context.Context, id int) (*models.Player, error) {
	return s.setStatus(ctx, id, models.PlayerStatusActive, nil)
}

func (s *playerService) setStatus(ctx context.Context, id int, status models.PlayerStatus, deactivatedAt *time.Time) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, handleRepositoryError(err, "change player status: load")
	}
	if player.Status == status {
		return player, nil
	}
	if err := s.playerRepo.UpdateStatus(ctx, nil, id, status, deactivatedAt); err != nil {
		return nil, handleRepositoryError(err, "change player status")
	}
	player.Status = status
	player.DeactivatedAt = deactivatedAt
	s.logger.InfoContext(ctx, "player status changed", slog.Int("player_id", id), slog.String("status", string(status)))
	return player, nil
}

func (s *playerService) ListByCategory(ctx context.Context, categoryID int) (*CategoryRoster, error) {
	if _, err := s.categoryRepo.GetByID(ctx, nil, categoryID); err != nil {
		return nil, handleRepositoryError(err, "list players: load category")
	}
	players, err := s.playerRepo.ListByCategory(ctx, nil, categoryID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list players of category %d: %w", categoryID, err)
	}
	roster := &CategoryRoster{Active: []*models.Player{}, Inactive: []*models.Player{}}
	for _, p := range players {
		if p.IsActive() {
			roster.Active = append(roster.Active, p)
		} else {
			roster.Inactive = append(roster.Inactive, p)
		}
	}
	return roster, nil
}
