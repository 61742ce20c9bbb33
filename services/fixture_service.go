package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/Dosada05/league-system/fixture"
	"github.com/Dosada05/league-system/models"
	"github.com/Dosada05/league-system/repositories"
	"github.com/Dosada05/league-system/standings"
)

type FixtureService interface {
	// GenerateFixture creates every round and match of the category at once.
	// roundLengthDays <= 0 falls back to the configured default.
	GenerateFixture(ctx context.Context, categoryID int, startDate time.Time, roundLengthDays int) ([]*models.Round, error)
	DeleteFixture(ctx context.Context, categoryID int) error
}

type fixtureService struct {
	db                 *sql.DB
	categoryRepo       repositories.CategoryRepository
	playerRepo         repositories.PlayerRepository
	roundRepo          repositories.RoundRepository
	matchRepo          repositories.MatchRepository
	standingRepo       repositories.StandingRepository
	defaultRoundLength int
	minPlayers         int
	logger             *slog.Logger
}

func NewFixtureService(
	db *sql.DB,
	categoryRepo repositories.CategoryRepository,
	playerRepo repositories.PlayerRepository,
	roundRepo repositories.RoundRepository,
	matchRepo repositories.MatchRepository,
	standingRepo repositories.StandingRepository,
	defaultRoundLength int,
	minPlayers int,
	logger *slog.Logger,
) FixtureService {
	if minPlayers < 2 {
		minPlayers = 2
	}
	return &fixtureService{
		db:                 db,
		categoryRepo:       categoryRepo,
		playerRepo:         playerRepo,
		roundRepo:          roundRepo,
		matchRepo:          matchRepo,
		standingRepo:       standingRepo,
		defaultRoundLength: defaultRoundLength,
		minPlayers:         minPlayers,
		logger:             logger,
	}
}

func (s *fixtureService) GenerateFixture(ctx context.Context, categoryID int, startDate time.Time, roundLengthDays int) ([]*models.Round, error) {
	if startDate.IsZero() {
		return nil, fmt.Errorf("%w: start date is required", ErrValidationFailed)
	}
	if roundLengthDays <= 0 {
		roundLengthDays = s.defaultRoundLength
	}
	if _, err := s.categoryRepo.GetByID(ctx, nil, categoryID); err != nil {
		return nil, handleRepositoryError(err, "generate fixture: load category")
	}

	active := models.PlayerStatusActive
	players, err := s.playerRepo.ListByCategory(ctx, nil, categoryID, &active)
	if err != nil {
		return nil, fmt.Errorf("generate fixture: load players of category %d: %w", categoryID, err)
	}
	if len(players) < s.minPlayers {
		return nil, fmt.Errorf("%w: need %d, category %d has %d", ErrInsufficientPlayers, s.minPlayers, categoryID, len(players))
	}
	// порядок по id, чтобы переименование игроков не меняло сетку
	sort.Slice(players, func(i, j int) bool { return players[i].ID < players[j].ID })
	playerIDs := make([]int, len(players))
	for i, p := range players {
		playerIDs[i] = p.ID
	}

	planned, err := fixture.Generate(playerIDs, startDate, roundLengthDays)
	if err != nil {
		if errors.Is(err, fixture.ErrInvalidRoundLength) {
			return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
		}
		return nil, fmt.Errorf("generate fixture: %w", err)
	}

	var created []*models.Round
	err = runInTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		existing, err := s.roundRepo.CountByCategory(ctx, tx, categoryID)
		if err != nil {
			return fmt.Errorf("count rounds of category %d: %w", categoryID, err)
		}
		if existing > 0 {
			return ErrDuplicateSchedule
		}

		created = make([]*models.Round, 0, len(planned))
		for _, pr := range planned {
			round := &models.Round{
				CategoryID:  categoryID,
				Number:      pr.Number,
				PeriodStart: pr.PeriodStart,
				PeriodEnd:   pr.PeriodEnd,
				Status:      models.RoundStatusPending,
			}
			if err := s.roundRepo.Create(ctx, tx, round); err != nil {
				if errors.Is(err, repositories.ErrRoundNumberConflict) {
					return ErrDuplicateSchedule
				}
				return handleRepositoryError(err, fmt.Sprintf("create round %d", pr.Number))
			}
			round.Matches = make([]*models.Match, 0, len(pr.Pairings))
			for _, pairing := range pr.Pairings {
				match := &models.Match{
					RoundID:    round.ID,
					CategoryID: categoryID,
					Player1ID:  pairing.Player1ID,
					Player2ID:  pairing.Player2ID,
				}
				if err := s.matchRepo.Create(ctx, tx, match); err != nil {
					return fmt.Errorf("create match of round %d: %w", pr.Number, err)
				}
				round.Matches = append(round.Matches, match)
			}
			created = append(created, round)
		}

		// Нулевая таблица: позиции по алфавиту.
		rows := make([]*models.Standing, len(players))
		for i, p := range players {
			rows[i] = &models.Standing{CategoryID: categoryID, PlayerID: p.ID, Player: p}
		}
		standings.Rank(rows)
		if err := s.standingRepo.BatchUpsert(ctx, tx, rows); err != nil {
			return fmt.Errorf("create initial standings: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "fixture generated",
		slog.Int("category_id", categoryID),
		slog.Int("players", len(players)),
		slog.Int("rounds", len(created)),
		slog.Int("round_length_days", roundLengthDays))
	return created, nil
}

func (s *fixtureService) DeleteFixture(ctx context.Context, categoryID int) error {
	if _, err := s.categoryRepo.GetByID(ctx, nil, categoryID); err != nil {
		return handleRepositoryError(err, "delete fixture: load category")
	}
	err := runInTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		hasResults, err := s.matchRepo.HasResults(ctx, tx, categoryID)
		if err != nil {
			return fmt.Errorf("check results of category %d: %w", categoryID, err)
		}
		if hasResults {
			return ErrFixtureHasResults
		}
		if err := s.standingRepo.DeleteByCategory(ctx, tx, categoryID); err != nil {
			return fmt.Errorf("delete standings: %w", err)
		}
		if err := s.matchRepo.DeleteByCategory(ctx, tx, categoryID); err != nil {
			return fmt.Errorf("delete matches: %w", err)
		}
		if err := s.roundRepo.DeleteByCategory(ctx, tx, categoryID); err != nil {
			return fmt.Errorf("delete rounds: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "fixture deleted", slog.Int("category_id", categoryID))
	return nil
}
